package optimize

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/hexaflex/atlas/pack"
)

// DefaultSuffix is appended to source names to derive default output names.
const DefaultSuffix = "_optimized"

// Config defines a batch of atlases to optimize.
//
// The top level packer settings apply to every atlas, unless an atlas
// overrides them.
type Config struct {
	Padding     int    `toml:"padding"`
	MaxRowWidth int    `toml:"max_row_width"`
	RoundPow2   bool   `toml:"round_pow2"`
	Workers     int    `toml:"workers"`   // Compositing workers per atlas.
	Parallel    int    `toml:"parallel"`  // Number of atlases processed concurrently.
	FailFast    bool   `toml:"fail_fast"` // Stop at the first failing atlas?
	Suffix      string `toml:"suffix"`    // Suffix for derived output names.

	Atlases []AtlasConfig `toml:"atlas"`
}

// AtlasConfig defines a single atlas in a batch.
type AtlasConfig struct {
	Image         string `toml:"image"`
	Descriptor    string `toml:"descriptor"`     // Defaults to Image with a .json extension.
	OutImage      string `toml:"out_image"`      // Defaults to Image with the batch suffix.
	OutDescriptor string `toml:"out_descriptor"` // Defaults to Descriptor with the batch suffix.
	Padding       *int   `toml:"padding"`
	MaxRowWidth   *int   `toml:"max_row_width"`
	RoundPow2     *bool  `toml:"round_pow2"`
}

// DefaultConfig returns an empty batch with default settings.
func DefaultConfig() *Config {
	return &Config{
		Padding:     pack.DefaultPadding,
		MaxRowWidth: pack.DefaultMaxRowWidth,
		Workers:     1,
		Parallel:    1,
		FailFast:    true,
		Suffix:      DefaultSuffix,
	}
}

// LoadConfig reads a batch file. Relative paths in the file are resolved
// against the file's directory.
func LoadConfig(path string) (*Config, error) {
	c := DefaultConfig()

	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "optimize: %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("optimize: %s: unknown keys %v", path, undecoded)
	}

	base := filepath.Dir(path)
	for i := range c.Atlases {
		c.Atlases[i].resolve(base)
	}

	return c, nil
}

func (a *AtlasConfig) resolve(base string) {
	for _, p := range []*string{&a.Image, &a.Descriptor, &a.OutImage, &a.OutDescriptor} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// Jobs returns the job list for the batch, with defaults filled in.
func (c *Config) Jobs() ([]*Job, error) {
	suffix := c.Suffix
	if suffix == "" {
		suffix = DefaultSuffix
	}

	jobs := make([]*Job, 0, len(c.Atlases))
	for i, a := range c.Atlases {
		if a.Image == "" {
			return nil, errors.Errorf("optimize: atlas %d has no image", i+1)
		}

		j := &Job{
			Image:         a.Image,
			Descriptor:    a.Descriptor,
			OutImage:      a.OutImage,
			OutDescriptor: a.OutDescriptor,
			Options: pack.Options{
				Padding:     c.Padding,
				MaxRowWidth: c.MaxRowWidth,
				RoundPow2:   c.RoundPow2,
				Workers:     c.Workers,
			},
		}

		if j.Descriptor == "" {
			j.Descriptor = withExt(j.Image, "", ".json")
		}
		if j.OutImage == "" {
			j.OutImage = withExt(j.Image, suffix, ".png")
		}
		if j.OutDescriptor == "" {
			j.OutDescriptor = withExt(j.Descriptor, suffix, ".json")
		}

		if a.Padding != nil {
			j.Options.Padding = *a.Padding
		}
		if a.MaxRowWidth != nil {
			j.Options.MaxRowWidth = *a.MaxRowWidth
		}
		if a.RoundPow2 != nil {
			j.Options.RoundPow2 = *a.RoundPow2
		}

		jobs = append(jobs, j)
	}

	return jobs, nil
}

// withExt returns path with its extension replaced by suffix + ext.
func withExt(path, suffix, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix + ext
}

// RunBatch optimizes every atlas in the batch.
//
// The returned results line up with c.Atlases; failed atlases have a nil
// entry. With FailFast, the first failure stops all jobs which have not yet
// started and is returned as is. Otherwise every atlas is attempted and
// failures are returned as an ErrorSet.
func RunBatch(ctx context.Context, c *Config) ([]*Result, error) {
	jobs, err := c.Jobs()
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if c.Parallel > 0 {
		g.SetLimit(c.Parallel)
	}

	var mu sync.Mutex
	var errs ErrorSet

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			r, err := Run(job)
			if err == nil {
				results[i] = r
				return nil
			}

			if c.FailFast {
				return err
			}

			mu.Lock()
			errs.Append(err)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}

	if err := ctx.Err(); err != nil {
		return results, err
	}

	if errs.Len() > 0 {
		return results, errs
	}

	return results, nil
}

// Summary returns a report of the total pixel reduction of the given results.
// Nil entries are skipped.
func Summary(results []*Result) string {
	var before, after, count int
	for _, r := range results {
		if r == nil {
			continue
		}
		before += r.OldArea()
		after += r.NewArea()
		count++
	}

	return fmt.Sprintf("%d atlases, total pixels before: %d, after: %d, overall reduction: %.1f%%",
		count, before, after, reduction(before, after))
}
