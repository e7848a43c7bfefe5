package main

import (
	"io"
	"log"
	"testing"
)

func TestNewLogger(t *testing.T) {
	if got := newLogger(true); got != log.Default() {
		t.Errorf("Expected the standard logger when verbose")
	}
	if got := newLogger(true).Flags(); got != log.Flags() {
		t.Errorf("Expected flags %d, got %d", log.Flags(), got)
	}
	if got := newLogger(false).Writer(); got != io.Discard {
		t.Errorf("Expected a discarding logger, got writer %T", got)
	}
}
