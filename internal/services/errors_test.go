package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	inner := errors.New("exit status 2")
	err := Wrap(ErrExternalTool, "ripping", "makemkv rip", "rip failed", inner)
	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("expected ErrExternalTool marker")
	}
	if !errors.Is(err, inner) {
		t.Fatal("expected wrapped inner error")
	}
	want := "external tool error: ripping: makemkv rip: rip failed: exit status 2"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("expected ErrTransient fallback")
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
