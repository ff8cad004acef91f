package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/eringen/rango"
)

func TestDefaultSeedParses(t *testing.T) {
	seed, err := rango.LoadSeed(bytes.NewReader(defaultSeed))
	if err != nil {
		t.Fatalf("LoadSeed failed: %v", err)
	}
	if len(seed.Categories) != 3 {
		t.Fatalf("categories = %d, want 3", len(seed.Categories))
	}
	if seed.Categories[0].Name != "Python" || seed.Categories[0].Likes != 64 {
		t.Errorf("first category = %+v, want Python with 64 likes", seed.Categories[0])
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if got := out.String(); !strings.HasPrefix(got, "rango ") {
		t.Errorf("output = %q, want rango prefix", got)
	}
}

func TestPopulateCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DATABASE_PATH", dir+"/rango.db")
	t.Setenv("SESSION_SECRET", "test-secret")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"populate"})
	if err := root.Execute(); err != nil {
		t.Fatalf("populate failed: %v", err)
	}
	if !strings.Contains(out.String(), "populated 3 categories, 8 pages") {
		t.Errorf("output = %q", out.String())
	}

	store, err := rango.NewStore(dir + "/rango.db")
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	defer store.Close()
	cat, err := store.GetCategory("other-frameworks")
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if cat.Views != 32 {
		t.Errorf("views = %d, want 32", cat.Views)
	}
}

func TestCreateUserRejectsShortPassword(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"createuser", "--username", "bob", "--password", "short"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for short password")
	}
}
