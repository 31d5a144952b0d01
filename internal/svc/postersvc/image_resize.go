package postersvc

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

// ErrUnknownInterpolator is returned when an unsupported interpolation method
// is specified.
var ErrUnknownInterpolator = errors.New("unknown interpolator")

//nolint:gochecknoglobals
var (
	// interpolMap maps interpolator names to their implementations.
	// Supported values: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear".
	interpolMap = map[string]draw.Interpolator{
		"nearestneighbor": draw.NearestNeighbor,
		"catmullrom":      draw.CatmullRom,
		"bilinear":        draw.BiLinear,
		"approxbilinear":  draw.ApproxBiLinear,
	}
)

func getInterpolatorByName(name string) (draw.Interpolator, error) {
	interpol, ok := interpolMap[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterpolator, name)
	}

	return interpol, nil
}

// resizeImage resizes an image to the specified width while maintaining
// aspect ratio, and returns the result plus the MIME type it was encoded
// with. WebP sources are re-encoded as JPEG since WebP has no encoder.
// Returns ErrUnknownInterpolator if the interpolator is not supported.
// Returns ErrImageTypeNotSupported if the image format is not supported.
func resizeImage(data []byte, ctype string, width int, interpolator string) ([]byte, string, error) {
	original, err := decodeImage(bytes.NewReader(data), ctype)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}

	ratio := float64(width) / float64(original.Bounds().Dx())
	height := int(float64(original.Bounds().Dy()) * ratio)

	bitmap := image.NewRGBA(image.Rect(0, 0, width, height))

	interpol, err := getInterpolatorByName(interpolator)
	if err != nil {
		return nil, "", fmt.Errorf("get interpolator: %w", err)
	}

	interpol.Scale(bitmap, bitmap.Bounds(), original, original.Bounds(), draw.Over, nil)

	if ctype == MIMETypeWebP {
		ctype = MIMETypeJPEG
	}

	resized, err := encodeImage(bitmap, ctype)
	if err != nil {
		return nil, "", fmt.Errorf("encode image: %w", err)
	}

	return resized, ctype, nil
}

func decodeImage(reader io.Reader, ctype string) (image.Image, error) {
	decoder, err := getDecoderByType(ctype)
	if err != nil {
		return nil, err
	}

	original, err := decoder(reader)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return original, nil
}

func encodeImage(bitmap image.Image, ctype string) ([]byte, error) {
	encoder, err := getEncoderByType(ctype)
	if err != nil {
		return nil, err
	}

	var buffer bytes.Buffer
	if err := encoder(&buffer, bitmap); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buffer.Bytes(), nil
}
