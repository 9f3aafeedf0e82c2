package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/renameio/v2"

	"github.com/Winter-Soldier02/FreQ/core"
)

// Extractor converts a document into raw text.
type Extractor interface {
	// Extract returns the document text, possibly empty. Failures are
	// *core.DocumentError values wrapping core.ErrUnsupportedFormat or
	// core.ErrExtractionFailure.
	Extract(ctx context.Context, doc core.Document) (string, error)
}

// formatExtractor handles a single format once the bytes are loaded.
type formatExtractor interface {
	extract(ctx context.Context, doc core.Document, data []byte) (string, error)
}

// Service dispatches documents to the extractor for their format.
type Service struct {
	config     *Config
	runner     CommandRunner
	opener     PageOpener
	stripper   AnnotationStripper
	recognizer Recognizer
	logger     *slog.Logger
	formats    map[core.Format]formatExtractor
}

var _ Extractor = (*Service)(nil)

// Option configures a Service.
type Option func(*Service) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRunner replaces the command runner used for OCR.
func WithRunner(runner CommandRunner) Option {
	return func(s *Service) error {
		if runner == nil {
			return errors.New("runner must not be nil")
		}
		s.runner = runner
		return nil
	}
}

// WithPageOpener replaces the PDF text-layer reader.
func WithPageOpener(opener PageOpener) Option {
	return func(s *Service) error {
		if opener == nil {
			return errors.New("page opener must not be nil")
		}
		s.opener = opener
		return nil
	}
}

// WithAnnotationStripper replaces the PDF annotation remover.
func WithAnnotationStripper(stripper AnnotationStripper) Option {
	return func(s *Service) error {
		if stripper == nil {
			return errors.New("annotation stripper must not be nil")
		}
		s.stripper = stripper
		return nil
	}
}

// WithRecognizer replaces the OCR engine. It takes precedence over WithRunner.
func WithRecognizer(recognizer Recognizer) Option {
	return func(s *Service) error {
		if recognizer == nil {
			return errors.New("recognizer must not be nil")
		}
		s.recognizer = recognizer
		return nil
	}
}

// New creates an extraction service. A nil config uses DefaultConfig.
func New(config *Config, opts ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		config:   config,
		runner:   execRunner{},
		opener:   OpenPDF,
		stripper: pdfcpuStripper{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.recognizer == nil {
		s.recognizer = newTesseractRecognizer(config, s.runner)
	}
	s.logger = s.logger.With("component", "extractor")

	s.formats = map[core.Format]formatExtractor{
		core.FormatPDF: &pdfExtractor{
			opener:     s.opener,
			stripper:   s.stripper,
			recognizer: s.recognizer,
			keep:       s.keepCleaned,
			logger:     s.logger.With("format", "pdf"),
		},
		core.FormatDOCX: &docxExtractor{
			keep:   s.keepCleaned,
			logger: s.logger.With("format", "docx"),
		},
	}
	return s, nil
}

// Extract reads doc and returns its raw text.
func (s *Service) Extract(ctx context.Context, doc core.Document) (string, error) {
	if err := core.ValidateDocument(doc); err != nil {
		return "", err
	}
	ex, ok := s.formats[doc.Format]
	if !ok {
		return "", &core.DocumentError{Path: doc.Name(), Err: core.ErrUnsupportedFormat}
	}

	data := doc.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(doc.Path)
		if err != nil {
			return "", &core.DocumentError{
				Path: doc.Name(),
				Err:  fmt.Errorf("%w: %w", core.ErrExtractionFailure, err),
			}
		}
	}

	text, err := ex.extract(ctx, doc, data)
	if err != nil {
		var docErr *core.DocumentError
		if errors.As(err, &docErr) {
			return "", err
		}
		if ctx.Err() == nil && !errors.Is(err, core.ErrExtractionFailure) {
			err = fmt.Errorf("%w: %w", core.ErrExtractionFailure, err)
		}
		return "", &core.DocumentError{Path: doc.Name(), Err: err}
	}

	s.logger.Debug("extracted document", "document", doc.Name(), "chars", len(text))
	return text, nil
}

// keepCleaned writes the cleaned copy of doc when configured. Failures are
// logged and never fail the extraction.
func (s *Service) keepCleaned(doc core.Document, data []byte) {
	if !s.config.KeepCleaned || doc.Path == "" {
		return
	}
	target := cleanedName(doc.Path)
	if err := renameio.WriteFile(target, data, 0o644); err != nil {
		s.logger.Warn("failed to write cleaned copy", "document", doc.Name(), "path", target, "error", err)
		return
	}
	s.logger.Debug("wrote cleaned copy", "document", doc.Name(), "path", target)
}
