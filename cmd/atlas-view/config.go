package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// Config defines program configuration.
type Config struct {
	Image       string // Atlas image to display.
	Descriptor  string // Atlas descriptor listing the frames.
	ScaleFactor int    // Amount by which each pixel is scaled.
	Version     bool   // Display version information and exit.
}

// newConfig returns a configuration with default settings.
func newConfig() *Config {
	return &Config{ScaleFactor: 2}
}

// defineFlags registers the command line flags for c with fs.
func (c *Config) defineFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.ScaleFactor, "scale", c.ScaleFactor, "Pixel scale factor for the display.")
	fs.BoolVar(&c.Version, "version", c.Version, "Display version information.")
}

// setArgs assigns the positional arguments and checks the settings.
func (c *Config) setArgs(args []string) error {
	if len(args) != 2 {
		return errors.Errorf("expected <image file> <descriptor file>, have %d arguments", len(args))
	}

	if c.ScaleFactor < 1 {
		return errors.Errorf("invalid scale factor %d", c.ScaleFactor)
	}

	c.Image = args[0]
	c.Descriptor = args[1]
	return nil
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	c := newConfig()

	flag.Usage = func() {
		fmt.Printf("%s [options] <image file> <descriptor file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	c.defineFlags(flag.CommandLine)
	flag.Parse()

	if c.Version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if err := c.setArgs(flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}

	return c
}
