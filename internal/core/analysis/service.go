package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

const scopeName = "github.com/steveyiyo/asanasense-backend/internal/core/analysis"

var tracer = otel.Tracer(scopeName)

// Vision is the remote image-understanding service.
type Vision interface {
	Describe(ctx context.Context, prompt string, image []byte, mime string) (string, error)
}

type Service struct {
	vision       Vision
	normalize    NormalizeOptions
	extraContext string
	log          *slog.Logger
}

type Option func(*Service)

func WithNormalizeOptions(o NormalizeOptions) Option {
	return func(s *Service) { s.normalize = o }
}

func WithExtraContext(extra string) Option {
	return func(s *Service) { s.extraContext = extra }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(v Vision, opts ...Option) *Service {
	s := &Service{vision: v, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.normalize = s.normalize.withDefaults()
	return s
}

// AnalyzeCapture runs the whole pipeline for one captured frame: payload
// decoding, normalization, prompting and response parsing. The raw model
// text is returned whenever the service answered, even if parsing failed.
func (s *Service) AnalyzeCapture(ctx context.Context, payload string) (types.Feedback, string, error) {
	ctx, span := tracer.Start(ctx, "analyze capture")
	defer span.End()

	fb, raw, err := s.analyzeCapture(ctx, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String("analysis.failure_category", Category(err)))
		s.log.Warn("analysis failed", "category", Category(err), "err", err)
		return fb, raw, err
	}
	span.SetAttributes(attribute.String("analysis.asana", fb.AsanaName))
	s.log.Info("analysis complete", "asana", fb.AsanaName)
	return fb, raw, nil
}

func (s *Service) analyzeCapture(ctx context.Context, payload string) (types.Feedback, string, error) {
	raw, err := DecodePayload(payload)
	if err != nil {
		return types.Feedback{}, "", err
	}
	img, err := NormalizeImage(raw, s.normalize)
	if err != nil {
		return types.Feedback{}, "", err
	}
	return s.Analyze(ctx, img, BuildPrompt(s.extraContext))
}

// Analyze sends an already normalized JPEG to the vision service.
func (s *Service) Analyze(ctx context.Context, image []byte, prompt string) (types.Feedback, string, error) {
	text, err := s.vision.Describe(ctx, prompt, image, MIMEType)
	if err != nil {
		return types.Feedback{}, "", fmt.Errorf("%w: %w", ErrService, err)
	}
	if strings.TrimSpace(text) == "" {
		return types.Feedback{}, "", ErrEmptyResponse
	}
	fb, err := ParseResponse(text)
	if err != nil {
		return types.Feedback{}, text, err
	}
	return fb, text, nil
}
