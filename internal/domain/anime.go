package domain

import "errors"

// ErrAnimeNotFound is returned when looking up a non-existent anime.
var ErrAnimeNotFound = errors.New("anime not found")

// Anime is a shared streaming entry. The video itself is hosted elsewhere;
// VideoURL points at the stream source.
type Anime struct {
	ID          int64    `json:"id"`
	MALID       int64    `json:"malId"` // MyAnimeList ID
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	CoverImage  string   `json:"coverImage,omitempty"`
	Genres      []string `json:"genres"`
	VideoURL    string   `json:"videoUrl"`
	Quality     string   `json:"quality"`
	UploaderID  int64    `json:"uploaderId"`
	CreatedAt   int64    `json:"createdAt"`
}

// AnimeWithUploader is the list/detail response shape with the uploader's
// public identity joined in.
type AnimeWithUploader struct {
	Anime

	Uploader *PublicIdentity `json:"uploader,omitempty"`
}
