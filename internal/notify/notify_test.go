package notify

import (
	"errors"
	"testing"
)

type sent struct {
	title, body string
}

func newTestDesktop(err error) (*Desktop, *[]sent) {
	var got []sent
	d := &Desktop{send: func(title, message, _ string) error {
		got = append(got, sent{title, message})
		return err
	}}
	return d, &got
}

func TestNotifySends(t *testing.T) {
	d, got := newTestDesktop(nil)
	d.Notify("LM Studio", "Model qwen3 is now active")

	if len(*got) != 1 {
		t.Fatalf("sent = %d, want 1", len(*got))
	}
	if (*got)[0] != (sent{"LM Studio", "Model qwen3 is now active"}) {
		t.Errorf("sent = %+v", (*got)[0])
	}
}

func TestNotifySwallowsErrors(t *testing.T) {
	d, got := newTestDesktop(errors.New("no notification daemon"))
	d.Notify("Error", "boom")
	if len(*got) != 1 {
		t.Errorf("sent = %d, want 1", len(*got))
	}
}

func TestNotifyDisabled(t *testing.T) {
	d, got := newTestDesktop(nil)
	d.SetEnabled(false)
	d.Notify("LM Studio", "hidden")
	d.SetEnabled(true)
	d.Notify("LM Studio", "shown")

	if len(*got) != 1 || (*got)[0].body != "shown" {
		t.Errorf("sent = %+v, want only the enabled notification", *got)
	}
}
