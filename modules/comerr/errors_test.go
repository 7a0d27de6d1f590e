package comerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{"nil", nil, ClassUnknown},
		{"invalid argument", ErrInvalidArgument, ClassBadInput},
		{"wrapped region", fmt.Errorf("load: %w", ErrInvalidRegion), ClassBadInput},
		{"type mismatch", ErrTypeMismatch, ClassBadInput},
		{"unsupported format", ErrUnsupportedFormat, ClassUnsupported},
		{"not implemented", ErrNotImplemented, ClassUnsupported},
		{"no interface", ErrNoInterface, ClassUnsupported},
		{"stack full", ErrStackFull, ClassBusy},
		{"not accepting", fmt.Errorf("stream 0: %w", ErrNotAccepting), ClassBusy},
		{"domain fail", ErrFail, ClassBusy},
		{"lock failure", errors.New("device lost"), ClassTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassString(t *testing.T) {
	if ClassBusy.String() != "busy" {
		t.Errorf("ClassBusy.String() = %q", ClassBusy.String())
	}
	if Class(42).String() != "unknown" {
		t.Errorf("Class(42).String() = %q", Class(42).String())
	}
}
