package main

import (
	"flag"
	"io"
	"testing"
)

func parseTestArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	c := newConfig()
	fs := flag.NewFlagSet("atlas-view", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.defineFlags(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return c, c.setArgs(fs.Args())
}

func TestParseScale(t *testing.T) {
	c, err := parseTestArgs(t, "-scale", "3", "sheet.png", "sheet.json")
	if err != nil {
		t.Fatal(err)
	}

	want := Config{Image: "sheet.png", Descriptor: "sheet.json", ScaleFactor: 3}
	if *c != want {
		t.Fatalf("config mismatch:\nwant: %+v\nhave: %+v", want, *c)
	}
}

func TestParseDefaults(t *testing.T) {
	c, err := parseTestArgs(t, "sheet.png", "sheet.json")
	if err != nil {
		t.Fatal(err)
	}

	if c.ScaleFactor != 2 || c.Version {
		t.Fatalf("unexpected defaults: %+v", *c)
	}
}

func TestParseInvalid(t *testing.T) {
	for i, args := range [][]string{
		{"-scale-factor", "3", "sheet.png", "sheet.json"},
		{"-scale", "0", "sheet.png", "sheet.json"},
		{"sheet.png"},
		{"a", "b", "c"},
	} {
		if _, err := parseTestArgs(t, args...); err == nil {
			t.Fatalf("test %d: expected error for %v", i+1, args)
		}
	}
}
