package ocr

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// ScaleToWidth resizes img to width px keeping the aspect ratio. Images that
// are already at least that wide are returned unchanged.
func ScaleToWidth(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() == 0 || b.Dx() >= width {
		return img
	}
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// ScaleImageFile decodes src (png or jpeg), scales it to width and writes a
// PNG to dst. It returns the path recognizers should read.
func ScaleImageFile(src, dst string, width int) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	img, _, err := image.Decode(in)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if err := png.Encode(out, ScaleToWidth(img, width)); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("encode %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return dst, nil
}
