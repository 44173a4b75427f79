// Package visualization renders height fields as grayscale images for
// inspecting acquired stacks, reconstructed surfaces, and estimated tips.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/kakikik/ColabBTR/pkg/field"
)

// HeightImage converts a height field to a 16-bit grayscale image. Heights
// are normalized so the field minimum maps to black and the maximum to
// white; a constant field maps to black.
func HeightImage(f *field.Field) image.Image {
	img := image.NewGray16(image.Rect(0, 0, f.Cols, f.Rows))

	lo, hi := f.Min(), f.Max()
	span := hi - lo
	for i := 0; i < f.Rows; i++ {
		for j := 0; j < f.Cols; j++ {
			value := uint16(0)
			if span > 0 {
				value = uint16((f.At(i, j) - lo) / span * 65535)
			}
			img.SetGray16(j, i, color.Gray16{Y: value})
		}
	}
	return img
}

// SaveHeightPNG writes a height field to a PNG file.
func SaveHeightPNG(f *field.Field, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create image file: %v", err)
	}
	defer file.Close()

	if err := png.Encode(file, HeightImage(f)); err != nil {
		return fmt.Errorf("failed to encode image: %v", err)
	}
	return nil
}

// SaveStackPNGs writes every frame of an image stack into outputDir as
// numbered PNG files named <prefix>_NNN.png.
func SaveStackPNGs(images []*field.Field, outputDir, prefix string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %v", err)
	}
	for i, img := range images {
		filename := filepath.Join(outputDir, fmt.Sprintf("%s_%03d.png", prefix, i))
		if err := SaveHeightPNG(img, filename); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	return nil
}
