package observability

import (
	"context"

	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
)

// startTracing installs the global OpenTelemetry providers. The HTTP, ESPN
// and usecase tracers pick them up through otel.Tracer.
func startTracing(cfg config.Config, logger *logging.Logger) (func(context.Context) error, error) {
	switch {
	case !cfg.UptraceEnabled:
		logger.Debug("uptrace disabled")
		return nil, nil
	case cfg.UptraceDSN == "":
		logger.Warn("uptrace enabled without a DSN, skipping")
		return nil, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
	)
	logger.Info("uptrace enabled", "service", cfg.ServiceName, "version", cfg.ServiceVersion, "env", cfg.AppEnv)
	return uptrace.Shutdown, nil
}
