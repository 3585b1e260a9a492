package scan

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khanhnv2901/sitecheck/internal/domain/check"
)

// Scanner runs one security inspection. *checker.Inspector implements it.
type Scanner interface {
	Scan(ctx context.Context, raw string) *check.Result
}

// Service is the entry point shared by the CLI and the HTTP API.
type Service struct {
	scanner Scanner
	logger  *zap.Logger
}

// NewService creates a new scan service
func NewService(scanner Scanner, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{scanner: scanner, logger: logger}
}

// Scan inspects a single URL. The returned result is never nil.
func (s *Service) Scan(ctx context.Context, raw string) *check.Result {
	raw = strings.TrimSpace(raw)
	s.logger.Debug("scan requested", zap.String("input", raw))

	result := s.scanner.Scan(ctx, raw)

	s.logger.Info("scan finished",
		zap.String("target", result.Target()),
		zap.Bool("secure", result.Secure()),
		zap.String("summary", result.Summary()),
		zap.Int("findings", len(result.Findings())),
	)
	return result
}
