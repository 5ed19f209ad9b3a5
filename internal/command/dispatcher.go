// Package command maps transcripts to desktop actions.
//
// Matching is substring based and order dependent: the first rule whose
// keyword appears in the transcript wins, so "search and open" is a search.
package command

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

var (
	errNoLauncher = errors.New("no application launcher")
	errNoOpener   = errors.New("no opener")
)

// Replier is the output side of the assistant.
type Replier interface {
	Reply(text string)
}

// AppLauncher starts a local application without waiting for it.
type AppLauncher interface {
	Launch(ctx context.Context, target string) error
}

// Opener hands URLs and paths to the platform default handler.
type Opener interface {
	OpenURL(u string) error
	OpenFile(path string) error
}

// Clipboard reads and writes plain text.
type Clipboard interface {
	WriteText(text string) error
	ReadText() (string, error)
}

// ProcessHandle owns the single auxiliary background process.
type ProcessHandle interface {
	Start(ctx context.Context) error
	Running() bool
	Stop() error
}

// Outcome reports what Respond did.
type Outcome struct {
	Rule Rule
	Exit bool
}

type Options struct {
	// Name is the wake word stripped from transcripts, e.g. "proton".
	Name string

	Apps  map[string]string
	Sites map[string]string

	Launcher  AppLauncher
	Opener    Opener
	Clipboard Clipboard
	Gesture   ProcessHandle

	Now func() time.Time
}

type Dispatcher struct {
	name    string
	display string

	apps  map[string]string
	sites map[string]string

	out      Replier
	launcher AppLauncher
	opener   Opener
	clip     Clipboard
	gesture  ProcessHandle
	now      func() time.Time

	mu        sync.Mutex
	listening bool
}

func New(out Replier, opts Options) *Dispatcher {
	name := strings.ToLower(strings.TrimSpace(opts.Name))
	if name == "" {
		name = "proton"
	}

	apps := opts.Apps
	if apps == nil {
		apps = DefaultApps
	}
	sites := opts.Sites
	if sites == nil {
		sites = DefaultSites
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Dispatcher{
		name:      name,
		display:   capitalize(name),
		apps:      lowerKeys(apps),
		sites:     lowerKeys(sites),
		out:       out,
		launcher:  opts.Launcher,
		opener:    opts.Opener,
		clip:      opts.Clipboard,
		gesture:   opts.Gesture,
		now:       now,
		listening: true,
	}
}

// Listening reports whether the dispatcher is awake.
func (d *Dispatcher) Listening() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listening
}

// Respond runs the first matching rule for transcript.
func (d *Dispatcher) Respond(ctx context.Context, transcript string) Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()

	text := strings.TrimSpace(strings.ReplaceAll(strings.ToLower(transcript), d.name, ""))
	rule := d.respond(ctx, text)

	log.Debug("Dispatched", "text", text, "rule", rule.String())

	return Outcome{Rule: rule, Exit: rule == RuleExit}
}

func (d *Dispatcher) respond(ctx context.Context, text string) Rule {
	if !d.listening && !strings.Contains(text, "wake up") {
		d.reply(fmt.Sprintf("%s is sleeping. Say 'wake up' to activate.", d.display))
		return RuleSleeping
	}

	switch {
	case strings.Contains(text, "launch gesture recognition"):
		d.startGesture(ctx)
		return RuleGestureStart

	case strings.Contains(text, "stop gesture recognition"):
		d.stopGesture()
		return RuleGestureStop

	case strings.Contains(text, "search"):
		d.search(after(text, "search"))
		return RuleSearch

	case strings.Contains(text, "location"):
		d.location(after(text, "location"))
		return RuleLocation

	case strings.Contains(text, "open"):
		d.open(ctx, without(text, "open"))
		return RuleOpen

	case strings.Contains(text, "date") || strings.Contains(text, "time"):
		d.reply("The current date and time is " + d.now().Format(time.DateTime))
		return RuleClock

	case strings.Contains(text, "copy"):
		d.copy(without(text, "copy"))
		return RuleCopy

	case strings.Contains(text, "paste"):
		d.paste()
		return RulePaste

	case strings.Contains(text, "sleep"):
		d.listening = false
		d.reply(d.display + " is now sleeping.")
		return RuleSleep

	case strings.Contains(text, "wake up"):
		d.listening = true
		d.reply(d.display + " is awake.")
		return RuleWake

	case strings.Contains(text, "exit") || strings.Contains(text, "quit"):
		d.reply("Goodbye, Sir")
		return RuleExit
	}

	d.reply("I did not understand, can you repeat?")
	return RuleUnknown
}

func (d *Dispatcher) startGesture(ctx context.Context) {
	d.reply("Launching gesture recognition...")
	if d.gesture == nil {
		d.reply("Could not launch gesture recognition. Error: not configured")
		return
	}
	if err := d.gesture.Start(ctx); err != nil {
		log.Warn("Failed to launch gesture tool", "err", err)
		d.reply(fmt.Sprintf("Could not launch gesture recognition. Error: %v", err))
	}
}

func (d *Dispatcher) stopGesture() {
	d.reply("Stopping gesture recognition...")
	if d.gesture == nil || !d.gesture.Running() {
		d.reply("Gesture recognition is not running.")
		return
	}
	if err := d.gesture.Stop(); err != nil {
		log.Warn("Failed to stop gesture tool", "err", err)
		d.reply(fmt.Sprintf("Could not stop gesture recognition. Error: %v", err))
		return
	}
	d.reply("Gesture recognition stopped.")
}

func (d *Dispatcher) search(query string) {
	if query == "" {
		d.reply("Please tell me what to search")
		return
	}
	d.reply("Searching for " + query)
	if err := d.openURL(searchURL + url.QueryEscape(query)); err != nil {
		log.Warn("Failed to open search", "query", query, "err", err)
		d.reply("Please check your Internet connection")
		return
	}
	d.reply("This is what I found")
}

func (d *Dispatcher) location(place string) {
	if place == "" {
		d.reply("Please tell me which location to find")
		return
	}
	d.reply("Showing location of " + place)
	if err := d.openURL(placeURL + url.PathEscape(place)); err != nil {
		log.Warn("Failed to open map", "place", place, "err", err)
		d.reply("Please check your Internet connection")
		return
	}
	d.reply("Here you go")
}

func (d *Dispatcher) open(ctx context.Context, target string) {
	if target == "" {
		d.reply("Please specify what to open")
		return
	}

	d.reply("Opening " + target)

	var err error
	if app, ok := d.apps[target]; ok {
		err = d.launch(ctx, app)
	} else if site, ok := d.sites[target]; ok {
		err = d.openURL(site)
	} else {
		err = d.openFile(target)
	}

	if err != nil {
		log.Warn("Failed to open", "target", target, "err", err)
		d.reply(fmt.Sprintf("Could not open %s. Error: %v", target, err))
	}
}

func (d *Dispatcher) copy(text string) {
	if d.clip == nil {
		d.reply("Could not copy to clipboard. Error: clipboard unavailable")
		return
	}
	if err := d.clip.WriteText(text); err != nil {
		d.reply(fmt.Sprintf("Could not copy to clipboard. Error: %v", err))
		return
	}
	d.reply("Copied to clipboard.")
}

func (d *Dispatcher) paste() {
	if d.clip == nil {
		d.reply("Could not read the clipboard. Error: clipboard unavailable")
		return
	}
	text, err := d.clip.ReadText()
	if err != nil {
		d.reply(fmt.Sprintf("Could not read the clipboard. Error: %v", err))
		return
	}
	d.reply("Pasted: " + text)
}

func (d *Dispatcher) launch(ctx context.Context, target string) error {
	if d.launcher == nil {
		return errNoLauncher
	}
	return d.launcher.Launch(ctx, target)
}

func (d *Dispatcher) openURL(u string) error {
	if d.opener == nil {
		return errNoOpener
	}
	return d.opener.OpenURL(u)
}

func (d *Dispatcher) openFile(path string) error {
	if d.opener == nil {
		return errNoOpener
	}
	return d.opener.OpenFile(path)
}

func (d *Dispatcher) reply(text string) {
	if d.out != nil {
		d.out.Reply(text)
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// after returns the trimmed text following the first occurrence of keyword.
func after(text, keyword string) string {
	_, rest, _ := strings.Cut(text, keyword)
	return strings.TrimSpace(rest)
}

// without removes every occurrence of keyword.
func without(text, keyword string) string {
	return strings.TrimSpace(strings.ReplaceAll(text, keyword, ""))
}
