package render

import (
	"fmt"
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/kattn/djgenetics/pkg/pianoroll"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	labelWidth = 32.0
	axisHeight = 16.0
	fontSize   = 8.0
	// minLabelGap is the least horizontal room, in pixels, between two
	// second labels
	minLabelGap = 28.0
	// minLineGap is the least room between two second lines; closer
	// lines are only drawn where a label goes
	minLineGap = 2.0
)

// Image draws the matrix as a piano roll: one row per pitch of the
// active range, a vertical line and label every second, and notes
// shaded by velocity.
func Image(m *pianoroll.Matrix, fs float64, opts Options) (image.Image, error) {
	dc, err := draw(m, fs, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// PNG renders the matrix to a PNG file at path
func PNG(m *pianoroll.Matrix, fs float64, path string, opts Options) error {
	dc, err := draw(m, fs, opts)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// WritePNG renders the matrix as PNG to w
func WritePNG(w io.Writer, m *pianoroll.Matrix, fs float64, opts Options) error {
	dc, err := draw(m, fs, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func draw(m *pianoroll.Matrix, fs float64, opts Options) (*gg.Context, error) {
	if m == nil {
		return nil, errNilMatrix
	}
	if !pianoroll.ValidSampleRate(fs) {
		return nil, pianoroll.ErrInvalidSampleRate
	}
	opts = opts.withDefaults()

	low, high := pitchWindow(m)
	rows := high - low + 1
	steps := max(m.Steps(), 1)

	w := labelWidth + float64(steps)*opts.CellWidth
	h := float64(rows)*opts.CellHeight + axisHeight
	dc := gg.NewContext(int(math.Ceil(w)), int(math.Ceil(h)))

	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(font, &truetype.Options{Size: fontSize}))

	dc.SetRGB(0.17, 0.17, 0.17)
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	rowY := func(pitch int) float64 {
		return float64(high-pitch) * opts.CellHeight
	}

	// Key lanes and octave labels
	for p := low; p <= high; p++ {
		y := rowY(p)
		if isBlackKey(p) {
			dc.SetRGB(0.13, 0.13, 0.13)
		} else {
			dc.SetRGB(0.2, 0.2, 0.2)
		}
		dc.DrawRectangle(labelWidth, y, w-labelWidth, opts.CellHeight)
		dc.Fill()

		if p%12 == 0 {
			dc.SetRGBA(1, 1, 1, 0.6)
			dc.DrawStringAnchored(pianoroll.NoteName(p), labelWidth-4, y+opts.CellHeight/2, 1, 0.5)
		}
	}

	// Notes
	for p := low; p <= high; p++ {
		y := rowY(p)
		for t := 0; t < m.Steps(); t++ {
			v := m.At(p, t)
			if v == 0 {
				continue
			}
			shade := float64(v) / pianoroll.MaxVelocity
			dc.SetRGB(0.2+0.8*shade, 0.5*shade, 0.9-0.5*shade)
			dc.DrawRectangle(labelWidth+float64(t)*opts.CellWidth, y, opts.CellWidth, opts.CellHeight)
			dc.Fill()
		}
	}

	// Seconds
	pxPerSecond := fs * opts.CellWidth
	every := max(1, math.Ceil(minLabelGap/pxPerSecond))
	step := 1.0
	if pxPerSecond < minLineGap {
		step = every
	}
	seconds := float64(m.Steps()) / fs
	for i := 0; ; i++ {
		s := float64(i) * step
		if s > seconds || math.IsNaN(s) || math.IsInf(s, 0) {
			break
		}
		x := labelWidth + s*pxPerSecond
		dc.SetRGBA(1, 1, 1, 0.3)
		dc.SetLineWidth(0.5)
		dc.DrawLine(x, 0, x, h-axisHeight)
		dc.Stroke()

		if math.Mod(s, every) == 0 {
			dc.SetRGBA(1, 1, 1, 0.6)
			dc.DrawStringAnchored(fmt.Sprintf("%.0fs", s), x, h-axisHeight/2, 0.5, 0.5)
		}
	}

	return dc, nil
}
