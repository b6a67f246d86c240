package optimize

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/hexaflex/atlas/atlas"
	"github.com/hexaflex/atlas/imgio"
	"github.com/hexaflex/atlas/pack"
)

// writeAtlas writes a sparse 300x200 atlas and its descriptor to dir.
// It returns the image and descriptor paths.
func writeAtlas(t *testing.T, dir, name string) (string, string) {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 300, 200))
	for y := 0; y < 200; y++ {
		for x := 0; x < 300; x++ {
			img.SetNRGBA(x, y, color.NRGBA{byte(x), byte(y), byte(x ^ y), byte(x+y) | 1})
		}
	}

	desc := atlas.New(name+".png", 300, 200)
	desc.Frames.Set("small", atlas.NewFrame(10, 10, 20, 20))
	desc.Frames.Set("tall", atlas.NewFrame(250, 20, 30, 60))
	desc.Frames.Set("wide", atlas.NewFrame(40, 150, 80, 20))
	desc.Frames.Set("block", atlas.NewFrame(150, 100, 60, 60))

	var buf bytes.Buffer
	if err := imgio.EncodePNG(&buf, img); err != nil {
		t.Fatal(err)
	}

	imagePath := filepath.Join(dir, name+".png")
	if err := imgio.WriteFile(imagePath, buf.Bytes()); err != nil {
		t.Fatal(err)
	}

	data, err := desc.Encode()
	if err != nil {
		t.Fatal(err)
	}

	descPath := filepath.Join(dir, name+".json")
	if err := os.WriteFile(descPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	return imagePath, descPath
}

func loadDescriptor(t *testing.T, path string) *atlas.Descriptor {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	d, err := atlas.Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	imagePath, descPath := writeAtlas(t, dir, "sheet")

	job := &Job{
		Image:         imagePath,
		Descriptor:    descPath,
		OutImage:      filepath.Join(dir, "out", "sheet_optimized.png"),
		OutDescriptor: filepath.Join(dir, "out", "sheet_optimized.json"),
		Options:       pack.DefaultOptions(),
	}

	r, err := Run(job)
	if err != nil {
		t.Fatal(err)
	}

	if r.Sprites != 4 || r.OldWidth != 300 || r.OldHeight != 200 {
		t.Fatalf("unexpected result: %v", r)
	}

	if r.NewArea() >= r.OldArea() || r.Reduction() <= 0 {
		t.Fatalf("expected a smaller atlas: %v", r)
	}

	before := loadDescriptor(t, descPath)
	after := loadDescriptor(t, job.OutDescriptor)

	if after.Meta.Image != "sheet_optimized.png" || after.Meta.Scale != "1" {
		t.Fatalf("unexpected meta: %+v", after.Meta)
	}

	if after.Meta.Size != (atlas.Size{W: r.NewWidth, H: r.NewHeight}) {
		t.Fatalf("meta size %+v does not match result %v", after.Meta.Size, r)
	}

	// Placement order: tallest first.
	if want := []string{"tall", "block", "small", "wide"}; !reflect.DeepEqual(after.Frames.Names(), want) {
		t.Fatalf("frame order mismatch:\nwant: %v\nhave: %v", want, after.Frames.Names())
	}

	oldImg, err := imgio.Load(imagePath)
	if err != nil {
		t.Fatal(err)
	}

	newImg, err := imgio.Load(job.OutImage)
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range before.Frames.Entries() {
		nf, ok := after.Frames.Get(e.Name)
		if !ok {
			t.Fatalf("frame %q missing from output", e.Name)
		}

		want, err := imgio.Crop(oldImg, e.Frame.Frame)
		if err != nil {
			t.Fatal(err)
		}

		have, err := imgio.Crop(newImg, nf.Frame)
		if err != nil {
			t.Fatal(err)
		}

		if !reflect.DeepEqual(have.Pix, want.Pix) {
			t.Fatalf("frame %q pixels differ after repacking", e.Name)
		}
	}
}

func TestRunInvalidFrame(t *testing.T) {
	dir := t.TempDir()
	imagePath, descPath := writeAtlas(t, dir, "sheet")

	desc := loadDescriptor(t, descPath)
	desc.Frames.Set("broken", atlas.NewFrame(0, 0, 0, 10))
	data, _ := desc.Encode()
	if err := os.WriteFile(descPath, data, 0644); err != nil {
		t.Fatal(err)
	}

	job := &Job{
		Image:         imagePath,
		Descriptor:    descPath,
		OutImage:      filepath.Join(dir, "bad.png"),
		OutDescriptor: filepath.Join(dir, "bad.json"),
		Options:       pack.DefaultOptions(),
	}

	_, err := Run(job)
	var dim *pack.InvalidDimensionError
	if !errors.As(err, &dim) {
		t.Fatalf("want InvalidDimensionError, have %v", err)
	}

	for _, p := range []string{job.OutImage, job.OutDescriptor} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s should not have been written", p)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.toml")

	const doc = `
padding = 4
parallel = 2
fail_fast = false

[[atlas]]
image = "fish_characters.png"

[[atlas]]
image = "terrain/flora.png"
descriptor = "terrain/flora_grid.json"
out_image = "/tmp/flora.png"
padding = 1
round_pow2 = true
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if c.Padding != 4 || c.MaxRowWidth != pack.DefaultMaxRowWidth || c.Parallel != 2 || c.FailFast {
		t.Fatalf("unexpected settings: %+v", c)
	}

	jobs, err := c.Jobs()
	if err != nil {
		t.Fatal(err)
	}

	want := []*Job{
		{
			Image:         filepath.Join(dir, "fish_characters.png"),
			Descriptor:    filepath.Join(dir, "fish_characters.json"),
			OutImage:      filepath.Join(dir, "fish_characters_optimized.png"),
			OutDescriptor: filepath.Join(dir, "fish_characters_optimized.json"),
			Options:       pack.Options{Padding: 4, MaxRowWidth: 512, Workers: 1},
		},
		{
			Image:         filepath.Join(dir, "terrain", "flora.png"),
			Descriptor:    filepath.Join(dir, "terrain", "flora_grid.json"),
			OutImage:      "/tmp/flora.png",
			OutDescriptor: filepath.Join(dir, "terrain", "flora_grid_optimized.json"),
			Options:       pack.Options{Padding: 1, MaxRowWidth: 512, RoundPow2: true, Workers: 1},
		},
	}

	if !reflect.DeepEqual(jobs, want) {
		for i := range jobs {
			t.Logf("job %d: %+v", i, jobs[i])
		}
		t.Fatalf("job mismatch")
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.toml")
	if err := os.WriteFile(path, []byte("padingg = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil || !strings.Contains(err.Error(), "padingg") {
		t.Fatalf("expected unknown key error, have %v", err)
	}
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	first, _ := writeAtlas(t, dir, "first")
	second, _ := writeAtlas(t, dir, "second")

	c := DefaultConfig()
	c.Parallel = 2
	c.Workers = 4
	c.Atlases = []AtlasConfig{{Image: first}, {Image: second}}

	results, err := RunBatch(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}

	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d missing", i)
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "second_optimized.json")); err != nil {
		t.Fatal(err)
	}

	if s := Summary(results); !strings.HasPrefix(s, "2 atlases") {
		t.Fatalf("unexpected summary: %s", s)
	}
}

func TestRunBatchCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	good, _ := writeAtlas(t, dir, "good")

	c := DefaultConfig()
	c.FailFast = false
	c.Atlases = []AtlasConfig{
		{Image: filepath.Join(dir, "missing.png")},
		{Image: good},
		{Image: filepath.Join(dir, "also_missing.png")},
	}

	results, err := RunBatch(context.Background(), c)

	var set ErrorSet
	if !errors.As(err, &set) || set.Len() != 2 {
		t.Fatalf("want ErrorSet with 2 errors, have %v", err)
	}

	if results[0] != nil || results[1] == nil || results[2] != nil {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestRunBatchFailFast(t *testing.T) {
	dir := t.TempDir()
	good, _ := writeAtlas(t, dir, "good")

	c := DefaultConfig()
	c.Atlases = []AtlasConfig{
		{Image: filepath.Join(dir, "missing.png")},
		{Image: good},
	}

	_, err := RunBatch(context.Background(), c)
	if err == nil {
		t.Fatalf("expected an error")
	}

	if _, ok := err.(ErrorSet); ok {
		t.Fatalf("fail fast should return the first error, have %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "good_optimized.png")); !os.IsNotExist(err) {
		t.Fatalf("jobs after a failure should not run")
	}
}

func TestRunBatchCanceled(t *testing.T) {
	dir := t.TempDir()
	good, _ := writeAtlas(t, dir, "good")

	c := DefaultConfig()
	c.Atlases = []AtlasConfig{{Image: good}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RunBatch(ctx, c); err != context.Canceled {
		t.Fatalf("want context.Canceled, have %v", err)
	}
}

func TestReduction(t *testing.T) {
	r := &Result{OldWidth: 100, OldHeight: 100, NewWidth: 50, NewHeight: 50}
	if r.Reduction() != 75 {
		t.Fatalf("want 75%%, have %v", r.Reduction())
	}

	if reduction(0, 10) != 0 {
		t.Fatalf("zero area must not divide by zero")
	}
}
