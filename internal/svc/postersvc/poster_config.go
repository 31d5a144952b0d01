package postersvc

// PosterConfig holds configuration parameters for the poster service.
type PosterConfig struct {
	// Width is the target width in pixels for served posters
	Width int `env:"WIDTH" default:"300"`

	// Interpolator specifies the image scaling algorithm to use.
	// Valid values are: "nearestneighbor", "catmullrom", "bilinear", "approxbilinear"
	Interpolator string `env:"INTERPOLATOR" default:"catmullrom"`
}
