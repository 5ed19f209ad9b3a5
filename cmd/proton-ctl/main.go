package main

import (
	"fmt"
	"os"
	"strings"

	cli "github.com/spf13/pflag"

	"proton/internal/ipc"
)

func main() {
	socket := cli.String("socket", ipc.DefaultSocketPath, "Control socket path")
	quit := cli.BoolP("quit", "q", false, "Ask proton to exit")
	cli.Parse()

	msg := ipc.ControlMessage{Cmd: ipc.CmdSay, Text: strings.Join(cli.Args(), " ")}
	if *quit {
		msg = ipc.ControlMessage{Cmd: ipc.CmdQuit}
	} else if strings.TrimSpace(msg.Text) == "" {
		fmt.Fprintln(os.Stderr, "usage: proton-ctl [--socket path] [-q] <words...>")
		os.Exit(2)
	}

	if err := ipc.SendCommand(*socket, msg); err != nil {
		fmt.Println("proton not running:", err)
		os.Exit(1)
	}
}
