// Package avatar recompresses uploaded profile images server side.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/draw"
)

// maxInputBytes caps how much of an upload is read before decoding.
const maxInputBytes = 10 << 20

// Recompress decodes a PNG or JPEG image, scales it down so neither dimension
// exceeds maxDim (aspect ratio preserved), and re-encodes it as JPEG at the
// given quality. Images already within bounds are re-encoded without scaling.
func Recompress(r io.Reader, maxDim, quality int) ([]byte, error) {
	img, _, err := image.Decode(io.LimitReader(r, maxInputBytes))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if maxDim > 0 && (w > maxDim || h > maxDim) {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}

		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
		img = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
