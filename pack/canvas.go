package pack

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// canvasSize returns the smallest canvas holding all placed sprites plus
// one trailing padding margin.
func canvasSize(placed []Placed, pad int, pow2 bool) (int, int) {
	var w, h int
	for i := range placed {
		p := &placed[i]
		if p.X+p.W > w {
			w = p.X + p.W
		}
		if p.Y+p.H > h {
			h = p.Y + p.H
		}
	}

	w += pad
	h += pad

	if pow2 {
		w = nextPow2(w)
		h = nextPow2(h)
	}

	return w, h
}

// nextPow2 returns the smallest power of two >= n.
func nextPow2(n int) int {
	v := 1
	for v < n {
		v <<= 1
	}
	return v
}

// compose creates a transparent canvas of the given size and copies every
// placed sprite into it.
//
// Placed sprites never overlap, so with more than one worker the sprites
// are drawn concurrently without further synchronization.
func compose(placed []Placed, w, h, workers int) (*image.NRGBA, error) {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))

	if workers < 2 {
		for i := range placed {
			blit(canvas, &placed[i])
		}
		return canvas, nil
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i := range placed {
		p := &placed[i]
		g.Go(func() error {
			blit(canvas, p)
			return nil
		})
	}

	return canvas, g.Wait()
}

// blit copies the sprite's pixels to its position in dst, replacing
// whatever is there. NRGBA sources are copied byte for byte, so alpha
// values survive unchanged.
func blit(dst *image.NRGBA, p *Placed) {
	sb := p.Image.Bounds()

	src, ok := p.Image.(*image.NRGBA)
	if !ok {
		draw.Draw(dst, p.Rect(), p.Image, sb.Min, draw.Src)
		return
	}

	stride := p.W * 4
	for y := 0; y < p.H; y++ {
		si := src.PixOffset(sb.Min.X, sb.Min.Y+y)
		di := dst.PixOffset(p.X, p.Y+y)
		copy(dst.Pix[di:di+stride], src.Pix[si:si+stride])
	}
}
