package main

import (
	"strings"
	"testing"
)

func TestNewRunIDHonorsOverride(t *testing.T) {
	t.Setenv("ATLAS_RUN_ID", "atlas-fixed-run")
	if got := newRunID(); got != "atlas-fixed-run" {
		t.Errorf("newRunID() = %q, want the override", got)
	}
}

func TestNewRunIDGenerated(t *testing.T) {
	t.Setenv("ATLAS_RUN_ID", "")
	got := newRunID()
	if !strings.HasPrefix(got, "atlas-") {
		t.Errorf("newRunID() = %q, missing atlas- prefix", got)
	}
	if got == newRunID() {
		t.Error("consecutive generated run ids must differ")
	}
}
