package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrConfigNotFound is returned when an explicitly requested configuration
	// file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrInvalidMaxDimension is returned when the preprocessing bound is not positive.
	ErrInvalidMaxDimension = errors.New("invalid max dimension: must be positive")

	// ErrInvalidKMeans is returned when a k-means tuning value is negative.
	ErrInvalidKMeans = errors.New("invalid kmeans settings: iterations, restarts and tolerance must be non-negative")

	// ErrInvalidMeanShift is returned when a mean shift tuning value is out of range.
	ErrInvalidMeanShift = errors.New("invalid meanshift settings: bandwidth must be non-negative and quantile within [0, 1]")

	// ErrInvalidAddr is returned when the server listen address is empty.
	ErrInvalidAddr = errors.New("invalid server address: must not be empty")

	// ErrInvalidUploadLimit is returned when the upload limit is not positive.
	ErrInvalidUploadLimit = errors.New("invalid max upload bytes: must be positive")

	// ErrInvalidPixelLimit is returned when the pixel limit is not positive.
	ErrInvalidPixelLimit = errors.New("invalid max pixels: must be positive")

	// ErrInvalidTimeout is returned when a server timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidConcurrency is returned when the batch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")
)
