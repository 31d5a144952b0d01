package domain

import "errors"

var (
	// ErrPosterNotFound is returned when an anime has no cover image to serve.
	ErrPosterNotFound = errors.New("poster not found")
	// ErrImageTypeNotSupported is returned for cover images in a format the
	// resizer cannot handle.
	ErrImageTypeNotSupported = errors.New("image type not supported")
	// ErrBlobNotFound is returned when a blob key has no stored data.
	ErrBlobNotFound = errors.New("blob not found")
)

// Poster is a ready-to-serve cover image.
type Poster struct {
	Data     []byte
	MIMEType string
}
