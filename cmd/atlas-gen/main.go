package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/hexaflex/atlas/atlas"
	"github.com/hexaflex/atlas/imgio"
)

func main() {
	config := parseArgs()

	desc, err := generate(config)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	data, err := desc.Encode()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, close := makeWriter(config)
	defer close()

	if _, err = out.Write(data); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log.Printf("generated %d frames: %s_0 through %s_%d (%dx%d grid)",
		desc.Frames.Len(), config.Prefix, config.Prefix, desc.Frames.Len()-1,
		config.TileSize, config.TileSize)
}

// generate creates the grid descriptor for the configured sheet.
func generate(c *Config) (*atlas.Descriptor, error) {
	if c.Input != "" {
		w, h, err := imgio.DecodeSize(c.Input)
		if err != nil {
			return nil, err
		}

		c.Width, c.Height = w, h
		if c.Image == "" {
			c.Image = filepath.Base(c.Input)
		}
	}

	desc, err := atlas.Grid(c.Width, c.Height, c.TileSize, c.Prefix)
	if err != nil {
		return nil, err
	}

	if c.Image != "" {
		desc.Meta.Image = c.Image
	}

	return desc, nil
}

// makeWriter creates an output writer and a cleanup function for it.
func makeWriter(c *Config) (io.Writer, func()) {
	if c.Output == "" {
		return os.Stdout, func() {}
	}

	fd, err := imgio.Create(c.Output)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	return fd, func() { fd.Close() }
}
