package application

import (
	"go.uber.org/zap"

	scanapp "github.com/khanhnv2901/sitecheck/internal/application/scan"
	"github.com/khanhnv2901/sitecheck/internal/checker"
)

// Container holds all application services
// This is a simple dependency injection container
type Container struct {
	Inspector   *checker.Inspector
	ScanService *scanapp.Service
}

// NewContainer wires the inspector and the services built on it.
func NewContainer(cfg checker.Config, logger *zap.Logger, opts ...checker.Option) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts = append([]checker.Option{checker.WithLogger(logger.Named("checker"))}, opts...)
	inspector := checker.NewInspector(cfg, opts...)

	return &Container{
		Inspector:   inspector,
		ScanService: scanapp.NewService(inspector, logger.Named("scan")),
	}
}
