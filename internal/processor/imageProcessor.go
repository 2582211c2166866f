package processor

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
	"github.com/trunov/resizer/internal/entities"
)

// jpegQuality matches the encoder default the resized copies were always produced with.
const jpegQuality = 80

// ImageModifier defines an image modifier
type ImageModifier interface {
	Modify(img image.Image) image.Image
}

// ImageResizer fits an image inside Width x Height keeping its aspect ratio.
// Images already inside the box are returned untouched.
type ImageResizer struct {
	Width  int
	Height int
}

// Modify to implement ImageModifier interface
func (r *ImageResizer) Modify(img image.Image) image.Image {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	if w == 0 || h == 0 || r.Width <= 0 || r.Height <= 0 {
		return img
	}

	// Nothing to do - return original image
	if w <= r.Width && h <= r.Height {
		return img
	}

	// The bounding side lands exactly on the box, the other one is rounded.
	// w/W >= h/H compared in integers so no float error picks the wrong side.
	var newW, newH int
	if w*r.Height >= h*r.Width {
		newW, newH = r.Width, roundDiv(h*r.Width, w)
	} else {
		newW, newH = roundDiv(w*r.Height, h), r.Height
	}

	return imaging.Resize(img, atLeastOne(newW), atLeastOne(newH), imaging.Lanczos)
}

// roundDiv is a/b rounded half up, for non-negative a and positive b.
func roundDiv(a, b int) int {
	return (2*a + b) / (2 * b)
}

func atLeastOne(v int) int {
	if v < 1 {
		return 1
	}
	return v
}

// Load images, apply actions on them and then encode
type ImageProcessor struct {
	img image.Image
}

func (i *ImageProcessor) LoadJPEG(r io.Reader) error {
	img, err := jpeg.Decode(r)
	i.img = img

	return err
}

func (i *ImageProcessor) Apply(modifiers ...ImageModifier) {
	for _, modifier := range modifiers {
		i.img = modifier.Modify(i.img)
	}
}

func (i *ImageProcessor) GetJPEG() ([]byte, error) {
	buf := new(bytes.Buffer)
	err := jpeg.Encode(buf, i.img, &jpeg.Options{Quality: jpegQuality})
	return buf.Bytes(), err
}

// Transformer resizes JPEG buffers. It holds no state and is safe for concurrent use.
type Transformer struct{}

// Transform decodes input, fits it inside the conversion box without enlarging it and re-encodes it as JPEG.
func (Transformer) Transform(ctx context.Context, input []byte, conversion entities.ConversionSpec) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &entities.TransformError{Conversion: conversion, Err: err}
	}

	imgp := &ImageProcessor{}
	if err := imgp.LoadJPEG(bytes.NewReader(input)); err != nil {
		return nil, &entities.TransformError{Conversion: conversion, Err: err}
	}

	imgp.Apply(&ImageResizer{Width: conversion.MaxWidth, Height: conversion.MaxHeight})

	out, err := imgp.GetJPEG()
	if err != nil {
		return nil, &entities.TransformError{Conversion: conversion, Err: err}
	}
	return out, nil
}
