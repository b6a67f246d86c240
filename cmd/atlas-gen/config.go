package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Config defines program configuration.
type Config struct {
	Input    string // Sprite sheet to read dimensions from. Empty when Width and Height are given.
	Width    int    // Sheet width in pixels.
	Height   int    // Sheet height in pixels.
	TileSize int    // Width and height of a single tile.
	Prefix   string // Frame name prefix.
	Image    string // Image name stored in the descriptor. Defaults to <prefix>.png.
	Output   string // Output file. Leave empty for stdout.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.TileSize = 64

	flag.Usage = func() {
		fmt.Printf("%s [options] <image file>\n", os.Args[0])
		fmt.Printf("%s [options] <width> <height>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.IntVar(&c.TileSize, "tile", c.TileSize, "Width and height of a single tile in pixels.")
	flag.StringVar(&c.Prefix, "prefix", c.Prefix, "Frame name prefix. Frames are named <prefix>_<index>.")
	flag.StringVar(&c.Image, "image", c.Image, "Image file name to store in the descriptor. Defaults to the input file name, or <prefix>.png.")
	flag.StringVar(&c.Output, "out", c.Output, "File path to write output to. Leave empty to use stdout.")
	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if c.Prefix == "" || flag.NArg() == 0 || flag.NArg() > 2 {
		flag.Usage()
		os.Exit(1)
	}

	if flag.NArg() == 1 {
		c.Input = flag.Arg(0)
		return &c
	}

	var err error
	if c.Width, err = strconv.Atoi(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid width %q\n", flag.Arg(0))
		os.Exit(1)
	}

	if c.Height, err = strconv.Atoi(flag.Arg(1)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid height %q\n", flag.Arg(1))
		os.Exit(1)
	}

	return &c
}
