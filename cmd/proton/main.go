package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/browser"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"proton/internal/audio"
	"proton/internal/command"
	"proton/internal/input"
	"proton/internal/ipc"
	"proton/internal/notify"
	"proton/internal/output"
	"proton/internal/proxy"
	"proton/internal/session"
	"proton/internal/system"
	"proton/internal/tts"
	"proton/internal/webui"
	"proton/pkg/stt"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	proxyAddr := cli.StringP("proxy", "p", "", "Socks proxy address for speech recognition, empty for direct")
	mic := cli.Int("mic", -1, "Microphone device index, -1 to choose interactively")
	engine := cli.String("stt", "openai", "Speech recognition engine: openai or whisper")
	model := cli.String("model", "models/ggml-base.bin", "Whisper model path")
	language := cli.String("language", "en", "Spoken language")
	inputDir := cli.String("input-dir", "", "Read utterances from audio files in this directory instead of the microphone")
	guiAddr := cli.String("gui-addr", "127.0.0.1:8765", "Web view listen address, empty to disable")
	noBrowser := cli.Bool("no-browser", false, "Do not open the web view in a browser")
	socket := cli.String("socket", ipc.DefaultSocketPath, "Control socket path")
	gesture := cli.String("gesture", "gesture_recognition.py", "Gesture recognition tool")
	beep := cli.String("beep", "", "Listening cue (mp3)")
	duck := cli.Bool("duck", false, "Lower other audio streams while listening")
	voice := cli.String("voice", "en", "Speech voice language")
	name := cli.String("name", "proton", "Wake word")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)

	transcriber, err := newTranscriber(*engine, *proxyAddr, *model, *language)
	if err != nil {
		log.Error("Failed to init speech recognition", "stt", *engine, "err", err)
		os.Exit(1)
	}
	defer transcriber.Close()

	log.Debug("Loaded speech recognition", "stt", *engine)

	speaker := tts.NewEspeak(*voice)
	sink := output.NewSink(*name, speaker)

	capturer, err := newCapturer(*inputDir, *mic)
	if err != nil {
		log.Error("Failed to init audio input", "err", err)
		os.Exit(1)
	}
	defer audio.Terminate()

	log.Debug("Loaded audio input", "source", capturer.Name())

	opts := []input.Option{input.WithCue(notify.NewCue(*beep))}
	if *duck {
		opts = append(opts, input.WithDucker(audio.NewDucker([]string{*name, "espeak-ng"}, 0.3, 5, 300*time.Millisecond)))
	}
	listener := input.NewListener(capturer, transcriber, sink, opts...)

	dispatcher := command.New(sink, command.Options{
		Name:      *name,
		Launcher:  system.Launcher{},
		Opener:    system.Opener{},
		Clipboard: system.Clipboard{},
		Gesture:   system.NewBackground(*gesture),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sess *session.Session
		gui  *webui.Server
	)

	sessOpts := []session.Option{}
	if *guiAddr != "" {
		gui = webui.NewServer(func(ctx context.Context, text string) {
			sess.Inject(ctx, text)
		})
		sink.Attach(gui)
		sessOpts = append(sessOpts, session.WithSurface(gui))
	}

	sess = session.New(listener, dispatcher, sink, sessOpts...)

	if gui != nil {
		if err := gui.Start(*guiAddr); err != nil {
			log.Error("Failed to start web view", "addr", *guiAddr, "err", err)
			os.Exit(1)
		}

		if !*noBrowser {
			if err := browser.OpenURL(gui.URL()); err != nil {
				log.Warn("Failed to open web view", "url", gui.URL(), "err", err)
			}
		}
	}

	ctl, err := ipc.StartServer(*socket, func(msg ipc.ControlMessage) {
		switch msg.Cmd {
		case ipc.CmdSay:
			sess.Inject(ctx, msg.Text)
		case ipc.CmdQuit:
			sess.Inject(ctx, "quit")
		default:
			log.Warn("Unknown command", "cmd", msg.Cmd)
		}
	})
	if err != nil {
		log.Error("Failed ipc server", "socket", *socket, "err", err)
		os.Exit(1)
	}
	defer ctl.Close()

	log.Info("Boot up - successful")

	if err := sess.Run(ctx); err != nil {
		log.Error("Session failed", "err", err)
		ctl.Close()
		os.Exit(1)
	}
}

func newTranscriber(engine, proxyAddr, model, language string) (stt.Transcriber, error) {
	switch engine {
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY not set")
		}

		httpClient, err := proxy.NewClient(proxyAddr)
		if err != nil {
			return nil, fmt.Errorf("dial socks proxy %s: %w", proxyAddr, err)
		}

		client := openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(httpClient),
		)
		return stt.NewRemote(client, language, audio.EncodeWAV), nil

	case "whisper":
		return stt.NewLocal(model, language)
	}

	return nil, fmt.Errorf("unknown engine %q", engine)
}

func newCapturer(dir string, index int) (input.Capturer, error) {
	if dir != "" {
		return input.NewDir(dir), nil
	}

	if err := audio.Init(); err != nil {
		return nil, fmt.Errorf("init audio: %w", err)
	}

	var (
		dev *audio.Device
		err error
	)
	if index >= 0 {
		dev, err = audio.DeviceByIndex(index)
	} else {
		dev, err = audio.SelectDevice(os.Stdin, os.Stdout)
	}
	if err != nil {
		return nil, err
	}

	if dev != nil {
		log.Info("Using microphone", "name", dev.Name, "index", dev.Index)
	} else {
		log.Info("Using default microphone")
	}

	return audio.NewMicrophone(dev, audio.DefaultDetector()), nil
}
