// Package notify raises desktop notifications for panel and story events.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/sketchstory/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventAccept fires when a capture passes the quality gate.
	EventAccept Event = "accept"
	// EventReject fires when a capture is turned away.
	EventReject Event = "reject"
	// EventStory fires when a story comes back from the service.
	EventStory Event = "story"
	// EventSave fires when a file is written.
	EventSave Event = "save"
	// EventCopy fires when a panel is copied to the clipboard.
	EventCopy Event = "copy"
)

// Events lists every event in display order.
var Events = []Event{EventAccept, EventReject, EventStory, EventSave, EventCopy}

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
	Urgency  platform.Urgency
}

// Preferences describes notification behaviour.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the built-in titles and templates.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "SketchStory",
		Events: map[Event]EventPreference{
			EventAccept: {Template: "Panel %s captured", Urgency: platform.UrgencyLow},
			EventReject: {Template: "%s", Urgency: platform.UrgencyNormal},
			EventStory:  {Template: "Your story is ready: %s", Urgency: platform.UrgencyNormal},
			EventSave:   {Template: "Saved %s", Urgency: platform.UrgencyLow},
			EventCopy:   {Template: "Copied %s to clipboard", Urgency: platform.UrgencyLow},
		},
	}
}

// LoadPreferences applies SKETCHSTORY_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("SKETCHSTORY_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, ev := range Events {
		key := "SKETCHSTORY_NOTIFY_" + strings.ToUpper(string(ev)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			p := prefs.Events[ev]
			p.Template = v
			prefs.Events[ev] = p
		}
	}
	return prefs
}

// send is swapped out in tests.
var send = platform.Notify

// Notifier sends notifications for the events that are enabled. All events
// start disabled.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
}

// New creates a Notifier using a copy of prefs.
func New(prefs Preferences) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool)}
}

// Enable toggles one event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event will be delivered.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Accepted announces panel number index (1-based) with a preview of img. The
// notification service may read the preview after Accepted returns, so the
// file is kept until the returned func runs. The func is never nil.
func (n *Notifier) Accepted(index int, img image.Image) func() {
	done := func() {}
	if !n.Enabled(EventAccept) {
		return done
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			log.Printf("notify: preview: %v", err)
		} else {
			done = cleanup
			opts.IconPath = path
		}
	}
	n.dispatch(EventAccept, fmt.Sprintf("%d of 3", index), opts)
	return done
}

// Rejected passes the gate's message through.
func (n *Notifier) Rejected(message string) {
	n.dispatch(EventReject, message, platform.Options{})
}

// Story announces a generated story by title.
func (n *Notifier) Story(title string) {
	n.dispatch(EventStory, title, platform.Options{})
}

// Save announces a written file, using it as the icon when it is an image.
func (n *Notifier) Save(path string) {
	if !n.Enabled(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if strings.EqualFold(filepath.Ext(abs), ".png") {
			if _, err := os.Stat(abs); err == nil {
				opts.IconPath = abs
			}
		}
	}
	n.dispatch(EventSave, detail, opts)
}

// Copy announces a clipboard write.
func (n *Notifier) Copy(detail string) {
	if strings.TrimSpace(detail) == "" {
		detail = "panel"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	if !n.Enabled(event) {
		return
	}
	pref, ok := n.prefs.Events[event]
	tmpl := strings.TrimSpace(pref.Template)
	if !ok || tmpl == "" {
		return
	}
	body := strings.TrimSpace(tmpl)
	if strings.Contains(tmpl, "%s") {
		body = strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	}
	if body == "" {
		return
	}
	opts.AppName = n.prefs.Title
	opts.Urgency = pref.Urgency
	if err := send(n.prefs.Title, body, opts); err != nil {
		log.Printf("notify: %s: %v", event, err)
	}
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "sketchstory-panel-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("notify: remove preview: %v", err)
		}
	}
	return path, cleanup, nil
}
