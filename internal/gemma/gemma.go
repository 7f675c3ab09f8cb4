// Package gemma adapts the external multimodal generation service behind a
// narrow interface. The engine never depends on the service being up: every
// caller has a deterministic fallback and treats any failure here uniformly.
package gemma

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Service is the narrow contract the engine consumes for text generation and
// free-text analysis. Both methods may fail; callers fall back locally.
type Service interface {
	GenerateText(ctx context.Context, prompt, system string) (string, error)
	GenerateMultimodal(ctx context.Context, text, imagePath, audioPath string) (string, error)
}

// ErrDisabled is returned by the disabled service so callers take their
// fallback path immediately.
var ErrDisabled = errors.New("generation service disabled")

// ServiceError wraps any failure talking to the generation service. Status
// carries the HTTP status code when the failure was an HTTP error reply.
type ServiceError struct {
	Op     string
	Status int
	Err    error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("gemma %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Config controls service construction.
type Config struct {
	Mode    string
	HTTPURL string
	Timeout time.Duration
	Retries int
}

// New builds a Service for the requested mode. In auto mode an HTTP URL
// selects the real backend, otherwise the deterministic mock is used so the
// engine stays fully functional offline.
func New(cfg Config, logger *zap.Logger) (Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.HTTPURL) != "" {
			return NewResilient(NewHTTPService(cfg.HTTPURL), cfg.Timeout, cfg.Retries, logger), nil
		}
		return NewMockService(), nil
	case "http":
		if strings.TrimSpace(cfg.HTTPURL) == "" {
			return nil, errors.New("gemma HTTP url is required for http mode")
		}
		return NewResilient(NewHTTPService(cfg.HTTPURL), cfg.Timeout, cfg.Retries, logger), nil
	case "mock":
		return NewMockService(), nil
	case "off":
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unsupported gemma mode %q", cfg.Mode)
	}
}

// Disabled always fails, forcing every caller onto its deterministic path.
type Disabled struct{}

func (Disabled) GenerateText(context.Context, string, string) (string, error) {
	return "", &ServiceError{Op: "generate_text", Err: ErrDisabled}
}

func (Disabled) GenerateMultimodal(context.Context, string, string, string) (string, error) {
	return "", &ServiceError{Op: "generate_multimodal", Err: ErrDisabled}
}
