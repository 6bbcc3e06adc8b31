package colour

import (
	"context"
	"fmt"
	"image"
	"slices"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Algorithm represents the clustering algorithm type.
type Algorithm string

const (
	// AlgorithmKMeans uses k-means clustering with a fixed cluster count.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmMeanShift uses mean shift clustering; the cluster count
	// emerges from the data.
	AlgorithmMeanShift Algorithm = "meanshift"
)

// DefaultTopN is the number of colours returned when none is requested.
const DefaultTopN = 2

// MaxTopN is the largest number of colours a request may ask for.
const MaxTopN = 256

// algorithmAliases maps accepted spellings to their algorithm.
var algorithmAliases = map[string]Algorithm{
	"kmeans":     AlgorithmKMeans,
	"meanshift":  AlgorithmMeanShift,
	"mean_shift": AlgorithmMeanShift,
	"mean-shift": AlgorithmMeanShift,
}

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmKMeans, AlgorithmMeanShift}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// ParseAlgorithm parses an algorithm name case-insensitively, accepting
// "mean_shift" and "mean-shift" for mean shift.
func ParseAlgorithm(s string) (Algorithm, error) {
	if alg, ok := algorithmAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return alg, nil
	}
	return "", fmt.Errorf("%w: unknown algorithm %q (valid algorithms: %v)", ErrInvalidOption, s, ValidAlgorithms())
}

// Options selects how colours are extracted and rendered for one request.
type Options struct {
	Algorithm         Algorithm `json:"algorithm" yaml:"algorithm"`
	K                 int       `json:"k" yaml:"k"`
	TopN              int       `json:"top_n" yaml:"top_n"`
	Format            Format    `json:"format" yaml:"format"`
	IncludePercentage bool      `json:"include_percentage" yaml:"include_percentage"`
}

// DefaultOptions returns the default extraction options.
func DefaultOptions() Options {
	return Options{
		Algorithm:         AlgorithmKMeans,
		K:                 DefaultK,
		TopN:              DefaultTopN,
		Format:            FormatHex,
		IncludePercentage: true,
	}
}

// Normalize canonicalises the algorithm and format spellings and validates
// the result.
func (o Options) Normalize() (Options, error) {
	alg, err := ParseAlgorithm(string(o.Algorithm))
	if err != nil {
		return o, err
	}
	f, err := ParseFormat(string(o.Format))
	if err != nil {
		return o, err
	}
	o.Algorithm = alg
	o.Format = f
	return o, o.Validate()
}

// Validate validates canonical options.
func (o Options) Validate() error {
	if !IsValidAlgorithm(o.Algorithm) {
		return fmt.Errorf("%w: unknown algorithm %q", ErrInvalidOption, o.Algorithm)
	}
	if !slices.Contains(ValidFormats(), o.Format) {
		return fmt.Errorf("%w: unknown format %q", ErrInvalidOption, o.Format)
	}
	if o.K < 1 || o.K > MaxK {
		return fmt.Errorf("%w: k must be between 1 and %d, got %d", ErrInvalidOption, MaxK, o.K)
	}
	if o.TopN < 1 || o.TopN > MaxTopN {
		return fmt.Errorf("%w: top_n must be between 1 and %d, got %d", ErrInvalidOption, MaxTopN, o.TopN)
	}
	return nil
}

// EngineConfig holds the tuning constants of the engine. They are not part
// of a request.
type EngineConfig struct {
	MaxDimension int
	KMeans       KMeansConfig
	MeanShift    MeanShiftConfig
}

// DefaultEngineConfig returns the default engine configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		MaxDimension: DefaultMaxDimension,
		KMeans: KMeansConfig{
			Seed:          DefaultKMeansSeed,
			MaxIterations: DefaultKMeansMaxIterations,
			Restarts:      DefaultKMeansRestarts,
			Tolerance:     DefaultKMeansTolerance,
		},
		MeanShift: MeanShiftConfig{
			Quantile:          DefaultBandwidthQuantile,
			EstimateSamples:   DefaultBandwidthSamples,
			FallbackBandwidth: DefaultFallbackBandwidth,
			MaxIterations:     DefaultMeanShiftMaxIterations,
			Seed:              DefaultMeanShiftSeed,
		},
	}
}

// Result is the outcome of one extraction.
type Result struct {
	// Colours holds exactly TopN records, most dominant first.
	Colours   []ColourRecord `json:"colors"`
	Algorithm Algorithm      `json:"algorithm"`
	Format    Format         `json:"format"`

	// Samples is the number of samples clustered after preprocessing.
	Samples int `json:"-"`
	// Clusters is the number of clusters the algorithm produced.
	Clusters int `json:"-"`
	// Converged is false when clustering stopped at its iteration cap.
	Converged bool `json:"-"`
}

// Extractor runs the extraction pipeline. It holds no per-request state and
// is safe for concurrent use.
type Extractor struct {
	cfg    EngineConfig
	logger hclog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger hclog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEngineConfig overrides the engine tuning constants.
func WithEngineConfig(cfg EngineConfig) ExtractorOption {
	return func(e *Extractor) {
		e.cfg = cfg
	}
}

// NewExtractor creates an Extractor with the default engine configuration.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		cfg:    DefaultEngineConfig(),
		logger: hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewClusterer creates the Clusterer for the options' algorithm.
func (e *Extractor) NewClusterer(opts Options) (Clusterer, error) {
	switch opts.Algorithm {
	case AlgorithmKMeans:
		cfg := e.cfg.KMeans
		cfg.K = opts.K
		return NewKMeansClusterer(cfg)
	case AlgorithmMeanShift:
		return NewMeanShiftClusterer(e.cfg.MeanShift)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %q (valid algorithms: %v)", ErrInvalidOption, opts.Algorithm, ValidAlgorithms())
	}
}

// ExtractImage extracts dominant colours from a decoded image.
func (e *Extractor) ExtractImage(ctx context.Context, img image.Image, opts Options) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("image cannot be nil")
	}
	return e.Extract(ctx, GridFromImage(img), opts)
}

// Extract extracts the opts.TopN dominant colours of grid. Either the full
// result is returned or an error; a clustering run that stops at its
// iteration cap is logged as a warning and still produces a result.
func (e *Extractor) Extract(ctx context.Context, grid Grid, opts Options) (*Result, error) {
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}

	prepared, err := Preprocess(grid, e.cfg.MaxDimension)
	if err != nil {
		return nil, err
	}
	if prepared.Width != grid.Width || prepared.Height != grid.Height {
		e.logger.Debug("downscaled image",
			"from", fmt.Sprintf("%dx%d", grid.Width, grid.Height),
			"to", fmt.Sprintf("%dx%d", prepared.Width, prepared.Height))
	}

	samples := prepared.Samples()
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	clusterer, err := e.NewClusterer(opts)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.logger.Debug("clustering samples", "algorithm", opts.Algorithm, "samples", len(samples))
	clustering, err := clusterer.Cluster(samples)
	if err != nil {
		return nil, fmt.Errorf("%s clustering failed: %w", opts.Algorithm, err)
	}
	if warning := clustering.Warning(); warning != nil {
		e.logger.Warn("returning best effort clusters", "algorithm", opts.Algorithm, "warning", warning)
	}

	total := TotalCount(clustering.Clusters)
	ranked, err := RankAndPad(clustering.Clusters, opts.TopN)
	if err != nil {
		return nil, err
	}

	colours := make([]ColourRecord, len(ranked))
	for i, c := range ranked {
		colours[i] = FormatCluster(c, total, opts.Format, opts.IncludePercentage)
	}

	e.logger.Debug("extracted colours",
		"clusters", len(clustering.Clusters),
		"iterations", clustering.Iterations,
		"returned", len(colours))

	return &Result{
		Colours:   colours,
		Algorithm: opts.Algorithm,
		Format:    opts.Format,
		Samples:   len(samples),
		Clusters:  len(clustering.Clusters),
		Converged: clustering.Converged,
	}, nil
}
