package gstprobe

import (
	"errors"
	"io"
	"log/slog"
	"testing"
)

func TestCheckElementCaches(t *testing.T) {
	calls := map[string]int{}
	missing := errors.New("no such element")

	p := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.create = func(name string) error {
		calls[name]++
		if name == "x264enc" {
			return missing
		}
		return nil
	}

	for i := 0; i < 3; i++ {
		if err := p.CheckElement("fakesrc"); err != nil {
			t.Fatalf("CheckElement(fakesrc) = %v", err)
		}
		if err := p.CheckElement("x264enc"); !errors.Is(err, missing) {
			t.Fatalf("CheckElement(x264enc) = %v, want %v", err, missing)
		}
	}

	if calls["fakesrc"] != 1 || calls["x264enc"] != 1 {
		t.Errorf("create calls = %v, want one per element", calls)
	}
}
