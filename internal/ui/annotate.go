package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// JPEG qualities used when re-encoding screenshots. Screenshots are large
// and agents fetch them often, so they are compressed fairly hard.
const (
	ScreenshotQuality = 60
	AnnotatedQuality  = 70
)

// EncodeJPEG re-encodes a PNG screenshot as JPEG, flattening any alpha
// channel onto a white background.
func EncodeJPEG(pngData []byte, quality int) ([]byte, error) {
	img, err := flattenPNG(pngData)
	if err != nil {
		return nil, err
	}
	return encodeJPEG(img, quality)
}

// Annotate draws a red bounding box and index label for every element on
// the screenshot, returning the result as JPEG. The labelled image pairs
// with tap_element(index=N) for precise interaction.
func Annotate(pngData []byte, elements []Element) ([]byte, error) {
	img, err := flattenPNG(pngData)
	if err != nil {
		return nil, err
	}

	red := color.RGBA{R: 255, A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	face := basicfont.Face7x13

	for _, elem := range elements {
		drawRect(img, elem.Bounds, red, 2)

		label := strconv.Itoa(elem.Index)
		labelW := font.MeasureString(face, label).Ceil() + 6
		labelH := face.Metrics().Height.Ceil() + 4

		// Label sits just above the element's top-left corner, clamped to
		// the image.
		labelX := elem.Bounds.Left
		if labelX < 0 {
			labelX = 0
		}
		labelY := elem.Bounds.Top - labelH
		if labelY < 0 {
			labelY = 0
		}

		labelBox := image.Rect(labelX, labelY, labelX+labelW, labelY+labelH)
		draw.Draw(img, labelBox.Intersect(img.Bounds()), &image.Uniform{C: red}, image.Point{}, draw.Src)

		drawer := font.Drawer{
			Dst:  img,
			Src:  &image.Uniform{C: white},
			Face: face,
			Dot: fixed.P(
				labelX+3,
				labelY+face.Metrics().Ascent.Ceil()+2,
			),
		}
		drawer.DrawString(label)
	}

	return encodeJPEG(img, AnnotatedQuality)
}

// flattenPNG decodes a PNG and composites it over white, producing an RGBA
// image JPEG encoding can handle.
func flattenPNG(pngData []byte) (*image.RGBA, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}

	bounds := src.Bounds()
	img := image.NewRGBA(bounds)
	draw.Draw(img, bounds, &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, bounds, src, bounds.Min, draw.Over)
	return img, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 {
		quality = ScreenshotQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawRect strokes a rectangle outline with the given thickness, clipped
// to the image bounds.
func drawRect(img *image.RGBA, r Rect, c color.Color, thickness int) {
	clip := img.Bounds()
	for t := 0; t < thickness; t++ {
		for x := r.Left; x <= r.Right; x++ {
			setIfInside(img, clip, x, r.Top+t, c)
			setIfInside(img, clip, x, r.Bottom-t, c)
		}
		for y := r.Top; y <= r.Bottom; y++ {
			setIfInside(img, clip, r.Left+t, y, c)
			setIfInside(img, clip, r.Right-t, y, c)
		}
	}
}

func setIfInside(img *image.RGBA, clip image.Rectangle, x, y int, c color.Color) {
	if image.Pt(x, y).In(clip) {
		img.Set(x, y, c)
	}
}
