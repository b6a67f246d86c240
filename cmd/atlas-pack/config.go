package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hexaflex/atlas/optimize"
	"github.com/hexaflex/atlas/pack"
)

// Config defines program configuration.
type Config struct {
	Batch         string // TOML batch file. When set, Image and Descriptor are ignored.
	Image         string // Source atlas image.
	Descriptor    string // Source atlas descriptor.
	OutImage      string // Destination image. Defaults to <image>_optimized.png.
	OutDescriptor string // Destination descriptor. Defaults to <descriptor>_optimized.json.
	Padding       int    // Transparent pixels around each sprite.
	MaxRowWidth   int    // Width at which a new row of sprites is started.
	RoundPow2     bool   // Round output dimensions up to powers of two.
	Workers       int    // Compositing workers per atlas.
	Parallel      int    // Atlases processed concurrently in batch mode.
	KeepGoing     bool   // Continue with the remaining atlases when one fails.
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	var c Config
	c.Padding = pack.DefaultPadding
	c.MaxRowWidth = pack.DefaultMaxRowWidth
	c.Workers = 1
	c.Parallel = 0

	flag.Usage = func() {
		fmt.Printf("%s [options] <image file> <descriptor file>\n", os.Args[0])
		fmt.Printf("%s [options] -config <batch file>\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.StringVar(&c.Batch, "config", c.Batch, "TOML file listing the atlases to optimize.")
	flag.StringVar(&c.OutImage, "out-image", c.OutImage, "Output image file. Defaults to <image>"+optimize.DefaultSuffix+".png.")
	flag.StringVar(&c.OutDescriptor, "out-json", c.OutDescriptor, "Output descriptor file. Defaults to <descriptor>"+optimize.DefaultSuffix+".json.")
	flag.IntVar(&c.Padding, "padding", c.Padding, "Transparent pixels around each sprite.")
	flag.IntVar(&c.MaxRowWidth, "max-width", c.MaxRowWidth, "Row width at which a new row of sprites is started.")
	flag.BoolVar(&c.RoundPow2, "pow2", c.RoundPow2, "Round output dimensions up to the next power of two.")
	flag.IntVar(&c.Workers, "workers", c.Workers, "Number of concurrent compositing workers per atlas.")
	flag.IntVar(&c.Parallel, "parallel", c.Parallel, "Number of atlases processed concurrently. Overrides the batch file when > 0.")
	flag.BoolVar(&c.KeepGoing, "keep-going", c.KeepGoing, "Continue with the remaining atlases when one fails. Overrides the batch file.")
	version := flag.Bool("version", false, "Display version information.")
	flag.Parse()

	if *version {
		fmt.Println(Version())
		os.Exit(0)
	}

	if c.Batch != "" {
		if flag.NArg() != 0 {
			flag.Usage()
			os.Exit(1)
		}
		return &c
	}

	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(1)
	}

	c.Image = flag.Arg(0)
	c.Descriptor = flag.Arg(1)
	return &c
}

// batch returns the batch configuration described by c.
func (c *Config) batch() (*optimize.Config, error) {
	var bc *optimize.Config

	if c.Batch != "" {
		var err error
		if bc, err = optimize.LoadConfig(c.Batch); err != nil {
			return nil, err
		}
	} else {
		bc = optimize.DefaultConfig()
		bc.Padding = c.Padding
		bc.MaxRowWidth = c.MaxRowWidth
		bc.RoundPow2 = c.RoundPow2
		bc.Workers = c.Workers
		bc.Atlases = []optimize.AtlasConfig{{
			Image:         c.Image,
			Descriptor:    c.Descriptor,
			OutImage:      c.OutImage,
			OutDescriptor: c.OutDescriptor,
		}}
	}

	if c.Parallel > 0 {
		bc.Parallel = c.Parallel
	}

	if c.KeepGoing {
		bc.FailFast = false
	}

	return bc, nil
}
