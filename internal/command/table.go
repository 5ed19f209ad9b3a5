package command

import "strings"

// DefaultApps maps spoken application names to the executable that is launched.
var DefaultApps = map[string]string{
	"text editor":  "gedit",
	"gedit":        "gedit",
	"file manager": "nautilus",
	"files":        "nautilus",
	"calculator":   "gnome-calculator",
	"terminal":     "gnome-terminal",
	"browser":      "firefox",
	"firefox":      "firefox",
	"chrome":       "google-chrome",
	"vlc":          "vlc",
	"libreoffice":  "libreoffice",
	"settings":     "gnome-control-center",
}

// DefaultSites maps spoken site names to the URL opened in the browser.
var DefaultSites = map[string]string{
	"youtube":       "https://www.youtube.com",
	"gmail":         "https://mail.google.com",
	"google":        "https://www.google.com",
	"facebook":      "https://www.facebook.com",
	"twitter":       "https://twitter.com",
	"github":        "https://github.com",
	"stackoverflow": "https://stackoverflow.com",
}

const (
	searchURL = "https://google.com/search?q="
	placeURL  = "https://google.com/maps/place/"
)

// Rule identifies which branch of the dispatcher handled a transcript.
type Rule uint

const (
	RuleNone Rule = iota
	RuleSleeping
	RuleGestureStart
	RuleGestureStop
	RuleSearch
	RuleLocation
	RuleOpen
	RuleClock
	RuleCopy
	RulePaste
	RuleSleep
	RuleWake
	RuleExit
	RuleUnknown
)

var ruleNames = [...]string{
	RuleNone:         "none",
	RuleSleeping:     "sleeping",
	RuleGestureStart: "gesture_start",
	RuleGestureStop:  "gesture_stop",
	RuleSearch:       "search",
	RuleLocation:     "location",
	RuleOpen:         "open",
	RuleClock:        "clock",
	RuleCopy:         "copy",
	RulePaste:        "paste",
	RuleSleep:        "sleep",
	RuleWake:         "wake",
	RuleExit:         "exit",
	RuleUnknown:      "unknown",
}

func (r Rule) String() string {
	if int(r) < len(ruleNames) {
		return ruleNames[r]
	}
	return "invalid"
}

func lowerKeys(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
