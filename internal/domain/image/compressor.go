package image

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"

	"facegate-server-go/internal/utils"
)

// Compression ladder constants. The first attempt encodes at quality 70
// inside an 800x800 box; every retry drops quality by 10 and shrinks the box
// to 600x600, bottoming out at quality 20.
const (
	initialQuality = 70
	minQuality     = 20
	qualityStep    = 10
	initialBox     = 800
	retryBox       = 600
)

// Compressor shrinks an input image to fit a vendor payload budget. It is
// best effort: when even the lowest rung of the ladder exceeds the budget the
// smallest attempt is returned rather than an error.
type Compressor struct {
	logger *utils.Logger
}

// NewCompressor constructs a compressor.
func NewCompressor(logger *utils.Logger) *Compressor {
	return &Compressor{logger: logger}
}

// Compress re-encodes the image as JPEG within targetSizeKB. The returned
// bytes are never larger than the input: when re-encoding would inflate a
// small input, the original bytes pass through untouched.
func (c *Compressor) Compress(data []byte, targetSizeKB int) (*Compressed, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	budget := targetSizeKB * 1024
	quality := initialQuality
	box := initialBox

	encoded, err := encodeScaled(src, box, quality)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	best := encoded
	bestQuality := quality
	bestBox := box

	for len(best) > budget && quality > minQuality {
		quality -= qualityStep
		box = retryBox

		encoded, err = encodeScaled(src, box, quality)
		if err != nil {
			return nil, fmt.Errorf("encode image: %w", err)
		}
		if len(encoded) < len(best) {
			best = encoded
			bestQuality = quality
			bestBox = box
		}
	}

	if len(best) > budget {
		c.logger.WarnTag("Image",
			"payload budget missed after full ladder: size=%d budget=%d quality=%d",
			len(best), budget, bestQuality)
	}

	result := &Compressed{
		Bytes:        best,
		OriginalSize: len(data),
		EncodedSize:  len(best),
		QualityUsed:  bestQuality,
		BoundingBox:  bestBox,
		Format:       "jpeg",
	}

	// compression must never inflate the payload
	if len(best) >= len(data) {
		result.Bytes = data
		result.EncodedSize = len(data)
		result.Format = format
	}

	return result, nil
}

// encodeScaled fits src into a box-by-box bounding square (aspect preserved,
// never upscaled) and encodes it as JPEG at the given quality.
func encodeScaled(src image.Image, box, quality int) ([]byte, error) {
	scaled := scaleToFit(src, box)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scaleToFit(src image.Image, box int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= box && h <= box {
		return src
	}

	ratio := float64(box) / float64(w)
	if hr := float64(box) / float64(h); hr < ratio {
		ratio = hr
	}

	dw := int(float64(w) * ratio)
	dh := int(float64(h) * ratio)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}
