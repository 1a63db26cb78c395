package optimizer

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	// Decoders for the raster formats screenshots arrive in
	_ "image/gif"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	apperrors "go-screenshot-optimizer/internal/errors"
)

// decodeImage decodes raw bytes into an image handle
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewDecodeError("failed to decode image", err)
	}
	return img, nil
}

// encodeImage re-encodes an image according to the policy. Settings are
// fully determined by the policy so identical input and policy always
// produce byte-identical output.
func encodeImage(img image.Image, policy Policy) ([]byte, error) {
	var buf bytes.Buffer

	switch policy.Format {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: policy.Quality}); err != nil {
			return nil, apperrors.NewEncodeError("failed to encode JPEG", err)
		}
	case FormatPNG:
		encoder := png.Encoder{CompressionLevel: png.BestCompression}
		if err := encoder.Encode(&buf, img); err != nil {
			return nil, apperrors.NewEncodeError("failed to encode PNG", err)
		}
	case FormatWEBP:
		opts := &webp.Options{Lossless: false, Quality: float32(policy.Quality)}
		if err := webp.Encode(&buf, img, opts); err != nil {
			return nil, apperrors.NewEncodeError("failed to encode WebP", err)
		}
	default:
		return nil, apperrors.NewEncodeError("unsupported target format: "+string(policy.Format), nil)
	}

	return buf.Bytes(), nil
}

// fitWithin scales the image down so neither dimension exceeds its bound,
// preserving aspect ratio. Images already inside the bounds are returned
// unchanged; the image is never enlarged. A zero bound means that axis is
// unbounded.
func fitWithin(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if !exceedsBounds(width, height, maxWidth, maxHeight) {
		return img
	}

	scale := 1.0
	if maxWidth > 0 {
		scale = float64(maxWidth) / float64(width)
	}
	if maxHeight > 0 {
		if s := float64(maxHeight) / float64(height); s < scale {
			scale = s
		}
	}

	targetWidth := int(math.Round(float64(width) * scale))
	targetHeight := int(math.Round(float64(height) * scale))
	if targetWidth < 1 {
		targetWidth = 1
	}
	if targetHeight < 1 {
		targetHeight = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// exceedsBounds reports whether the image is strictly larger than either
// configured bound. An image exactly at the bounds passes through.
func exceedsBounds(width, height, maxWidth, maxHeight int) bool {
	if maxWidth > 0 && width > maxWidth {
		return true
	}
	if maxHeight > 0 && height > maxHeight {
		return true
	}
	return false
}
