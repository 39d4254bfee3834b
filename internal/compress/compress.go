// Package compress re-encodes images to fit a byte budget. It resizes the
// input to a bounding box (never upscaling) and searches the codec quality
// parameter for the highest setting that keeps the output under the target
// size. When even the lowest quality overshoots the target, the floor result
// is returned rather than an error.
package compress

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	// Registers the WebP decoder; WebP uploads are re-encoded as jpeg or png
	// on the way out since x/image has no WebP encoder.
	_ "golang.org/x/image/webp"
)

// Options configures one compression run. Zero fields fall back to the
// package defaults via WithDefaults.
type Options struct {
	TargetKB       int
	MaxWidth       int
	MaxHeight      int
	Format         string // "jpeg" or "png"
	QualityFloor   int
	QualityCeiling int
}

// Result is the outcome of a compression run. Quality is the codec setting
// actually used; callers can detect the best-effort floor case by comparing
// it against their configured floor.
type Result struct {
	Data    []byte
	Quality int
	Width   int
	Height  int
	Format  string
}

const (
	DefaultTargetKB  = 150
	DefaultMaxWidth  = 1600
	DefaultMaxHeight = 1600
	DefaultFloor     = 40
	DefaultCeiling   = 90
	DefaultFormat    = "jpeg"
)

// WithDefaults fills zero fields with the package defaults. Encode applies it
// internally; callers that inspect the result against their configured bounds
// (floor detection, budget checks) should normalize their own copy the same
// way so both sides compare against the values actually used.
func (o Options) WithDefaults() Options {
	if o.TargetKB <= 0 {
		o.TargetKB = DefaultTargetKB
	}
	if o.MaxWidth <= 0 {
		o.MaxWidth = DefaultMaxWidth
	}
	if o.MaxHeight <= 0 {
		o.MaxHeight = DefaultMaxHeight
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.QualityFloor <= 0 {
		o.QualityFloor = DefaultFloor
	}
	if o.QualityCeiling <= 0 {
		o.QualityCeiling = DefaultCeiling
	}
	return o
}

// Encode decodes src, fits it within the configured bounds and re-encodes it
// targeting opts.TargetKB kilobytes. It returns an error only when the input
// cannot be decoded or the output cannot be encoded; an unreachable target is
// not an error.
func Encode(src []byte, opts Options) (*Result, error) {
	opts = opts.WithDefaults()

	img, err := imaging.Decode(bytes.NewReader(src), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	img = fit(img, opts.MaxWidth, opts.MaxHeight)
	bounds := img.Bounds()

	if opts.Format == "png" {
		// PNG is lossless; there is no quality knob to search.
		data, err := encode(img, imaging.PNG, 0)
		if err != nil {
			return nil, err
		}
		return &Result{Data: data, Quality: opts.QualityCeiling, Width: bounds.Dx(), Height: bounds.Dy(), Format: "png"}, nil
	}

	target := opts.TargetKB * 1024

	best, err := encode(img, imaging.JPEG, opts.QualityCeiling)
	if err != nil {
		return nil, err
	}
	if len(best) <= target {
		return &Result{Data: best, Quality: opts.QualityCeiling, Width: bounds.Dx(), Height: bounds.Dy(), Format: "jpeg"}, nil
	}

	floor, err := encode(img, imaging.JPEG, opts.QualityFloor)
	if err != nil {
		return nil, err
	}
	if len(floor) > target {
		// Target unreachable at this resolution; best effort.
		return &Result{Data: floor, Quality: opts.QualityFloor, Width: bounds.Dx(), Height: bounds.Dy(), Format: "jpeg"}, nil
	}

	bestData, bestQuality := floor, opts.QualityFloor
	left, right := opts.QualityFloor, opts.QualityCeiling
	for left <= right {
		mid := (left + right) / 2
		data, err := encode(img, imaging.JPEG, mid)
		if err != nil {
			return nil, err
		}
		if len(data) <= target {
			bestData, bestQuality = data, mid
			left = mid + 1
		} else {
			right = mid - 1
		}
	}
	return &Result{Data: bestData, Quality: bestQuality, Width: bounds.Dx(), Height: bounds.Dy(), Format: "jpeg"}, nil
}

// fit scales the image down to the bounding box, preserving aspect ratio.
// Images already inside the box are returned unchanged.
func fit(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	if b.Dx() <= maxW && b.Dy() <= maxH {
		return img
	}
	return imaging.Fit(img, maxW, maxH, imaging.Lanczos)
}

func encode(img image.Image, format imaging.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if format == imaging.JPEG {
		err = imaging.Encode(&buf, img, format, imaging.JPEGQuality(quality))
	} else {
		err = imaging.Encode(&buf, img, format)
	}
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
