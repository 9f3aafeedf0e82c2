package extract

import "fmt"

const (
	// DefaultDPI is the rasterization resolution for scanned pages.
	DefaultDPI = 300

	// DefaultLanguage is the tesseract language pack.
	DefaultLanguage = "eng"

	// DefaultRasterizer renders a PDF page to PNG.
	DefaultRasterizer = "pdftoppm"

	// DefaultRecognizer reads text from an image.
	DefaultRecognizer = "tesseract"
)

// Config holds extraction settings.
type Config struct {
	// DPI is the resolution scanned pages are rendered at.
	DPI int

	// Language is the tesseract language, e.g. "eng" or "eng+deu".
	Language string

	// RasterizerPath and RecognizerPath name the OCR binaries.
	RasterizerPath string
	RecognizerPath string

	// KeepCleaned writes the watermark-free copy next to the source as
	// <name>_cleaned.<ext>.
	KeepCleaned bool
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDPI sets the rasterization resolution.
func WithDPI(dpi int) ConfigOption {
	return func(c *Config) {
		c.DPI = dpi
	}
}

// WithLanguage sets the OCR language.
func WithLanguage(lang string) ConfigOption {
	return func(c *Config) {
		c.Language = lang
	}
}

// WithKeepCleaned enables writing cleaned copies to disk.
func WithKeepCleaned(keep bool) ConfigOption {
	return func(c *Config) {
		c.KeepCleaned = keep
	}
}

// WithToolPaths overrides the OCR binaries.
func WithToolPaths(rasterizer, recognizer string) ConfigOption {
	return func(c *Config) {
		c.RasterizerPath = rasterizer
		c.RecognizerPath = recognizer
	}
}

// DefaultConfig returns a Config for 300 DPI English recognition.
func DefaultConfig() *Config {
	return &Config{
		DPI:            DefaultDPI,
		Language:       DefaultLanguage,
		RasterizerPath: DefaultRasterizer,
		RecognizerPath: DefaultRecognizer,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize fills unset tool paths with their defaults.
func (c *Config) Normalize() {
	if c.RasterizerPath == "" {
		c.RasterizerPath = DefaultRasterizer
	}
	if c.RecognizerPath == "" {
		c.RecognizerPath = DefaultRecognizer
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.DPI <= 0 {
		return fmt.Errorf("extract config: %w", ErrInvalidDPI)
	}
	if c.Language == "" {
		return fmt.Errorf("extract config: %w", ErrLanguageRequired)
	}
	return nil
}
