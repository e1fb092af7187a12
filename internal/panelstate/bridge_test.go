package panelstate

import (
	"testing"

	"webvideo/internal/input"
)

type nopTarget struct{}

func (nopTarget) SendInput(input.Event) error { return nil }

func TestSetActiveReplaces(t *testing.T) {
	b := New()
	if b.Current() != nil {
		t.Fatalf("expected empty bridge")
	}
	b.SetActive(&Active{Panel: "a", Target: nopTarget{}})
	b.SetActive(&Active{Panel: "b", Target: nopTarget{}})
	if got := b.Current(); got == nil || got.Panel != "b" {
		t.Fatalf("expected b, got %+v", got)
	}
	b.SetActive(nil)
	if b.Current() != nil {
		t.Fatalf("expected cleared")
	}
}

func TestClearIfOnlyClearsOwner(t *testing.T) {
	b := New()
	b.SetActive(&Active{Panel: "a"})
	if b.ClearIf("b") {
		t.Fatalf("cleared reference of another panel")
	}
	if !b.ClearIf("a") || b.Current() != nil {
		t.Fatalf("expected reference cleared")
	}
	if b.ClearIf("a") {
		t.Fatalf("second clear should report false")
	}
}
