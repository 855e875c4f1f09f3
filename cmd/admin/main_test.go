package main

import (
	"testing"
)

func TestParseFlags(t *testing.T) {
	args, flags := parseFlags([]string{"photo.png", "--keep", "--json"})
	if len(args) != 1 || args[0] != "photo.png" {
		t.Fatalf("unexpected args: %v", args)
	}
	if !flags["keep"] || !flags["json"] {
		t.Fatalf("unexpected flags: %v", flags)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("a very long member name", 10); got != "a very ..." {
		t.Errorf("truncate long = %q", got)
	}
}
