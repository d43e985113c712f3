package notify

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/sketchstory/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	orig := send
	send = func(title, body string, opts platform.Options) error {
		s := sent{title: title, body: body, opts: opts}
		if opts.IconPath != "" {
			_, err := os.Stat(opts.IconPath)
			s.iconExisted = err == nil
		}
		got = append(got, s)
		return nil
	}
	t.Cleanup(func() { send = orig })
	return &got
}

func TestDisabledByDefault(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Story("The Cat")
	n.Copy("")
	if len(*got) != 0 {
		t.Fatalf("expected no notifications, got %d", len(*got))
	}
}

func TestStory(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventStory, true)
	n.Story("The Cat")
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	if want := "Your story is ready: The Cat"; (*got)[0].body != want {
		t.Errorf("body %q, want %q", (*got)[0].body, want)
	}
	if (*got)[0].opts.AppName != "SketchStory" {
		t.Errorf("app name %q", (*got)[0].opts.AppName)
	}
}

func TestAcceptedPreview(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventAccept, true)
	release := n.Accepted(2, image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	s := (*got)[0]
	if s.body != "Panel 2 of 3 captured" {
		t.Errorf("unexpected body %q", s.body)
	}
	if !s.iconExisted {
		t.Error("preview should exist while sending")
	}
	if _, err := os.Stat(s.opts.IconPath); err != nil {
		t.Errorf("preview removed before release: %v", err)
	}
	release()
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Errorf("preview not removed: %v", err)
	}
}

func TestAcceptedDisabledReturnsNoop(t *testing.T) {
	got := capture(t)
	var nilNotifier *Notifier
	nilNotifier.Accepted(1, image.NewRGBA(image.Rect(0, 0, 4, 4)))()
	New(DefaultPreferences()).Accepted(1, nil)()
	if len(*got) != 0 {
		t.Fatalf("expected no notifications, got %d", len(*got))
	}
}

func TestRejectedUsesMessage(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventReject, true)
	n.Rejected("Add a clear shape.")
	if len(*got) != 1 || (*got)[0].body != "Add a clear shape." {
		t.Fatalf("unexpected notifications: %+v", *got)
	}
	if (*got)[0].opts.Urgency != platform.UrgencyNormal {
		t.Errorf("urgency %v", (*got)[0].opts.Urgency)
	}
}

func TestSaveIcon(t *testing.T) {
	got := capture(t)
	dir := t.TempDir()
	png := filepath.Join(dir, "sheet.png")
	if err := os.WriteFile(png, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	n.Save(png)
	n.Save(filepath.Join(dir, "story.pdf"))
	if len(*got) != 2 {
		t.Fatalf("expected two notifications, got %d", len(*got))
	}
	if (*got)[0].opts.IconPath != png {
		t.Errorf("png icon %q", (*got)[0].opts.IconPath)
	}
	if (*got)[1].opts.IconPath != "" {
		t.Errorf("pdf should have no icon, got %q", (*got)[1].opts.IconPath)
	}
}

func TestLoadPreferencesEnv(t *testing.T) {
	t.Setenv("SKETCHSTORY_NOTIFY_TITLE", "Studio")
	t.Setenv("SKETCHSTORY_NOTIFY_COPY_TEXT", "Clipboard has %s")
	p := LoadPreferences()
	if p.Title != "Studio" {
		t.Errorf("title %q", p.Title)
	}
	if p.Events[EventCopy].Template != "Clipboard has %s" {
		t.Errorf("copy template %q", p.Events[EventCopy].Template)
	}
	if p.Events[EventSave].Template != DefaultPreferences().Events[EventSave].Template {
		t.Error("save template should keep its default")
	}
}

func TestSendErrorIsLogged(t *testing.T) {
	orig := send
	send = func(string, string, platform.Options) error { return errors.New("no bus") }
	t.Cleanup(func() { send = orig })
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)
	n.Copy("panel 1")
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	n.Enable(EventStory, true)
	n.Story("x")
	if n.Enabled(EventStory) {
		t.Fatal("nil notifier reports enabled")
	}
}
