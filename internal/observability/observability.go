// Package observability starts the optional telemetry side-channels of the
// long-running ticker: Uptrace tracing, Pyroscope profiling and a local pprof
// listener. Each one is off unless its *_ENABLED variable is set.
package observability

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/sports-ticker/internal/config"
	"github.com/riskibarqy/sports-ticker/internal/platform/logging"
)

// Stack holds whatever Start brought up so it can be torn down in reverse.
type Stack struct {
	logger   *logging.Logger
	stoppers []stopper
}

type stopper struct {
	name string
	stop func(context.Context) error
}

// Start brings up every enabled component. On error the components already
// started are shut down before returning.
func Start(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	stack := &Stack{logger: logger.Named("observability")}

	steps := []struct {
		name  string
		start func(config.Config, *logging.Logger) (func(context.Context) error, error)
	}{
		{"uptrace", startTracing},
		{"pyroscope", startProfiler},
		{"pprof", startPprof},
	}
	for _, step := range steps {
		stop, err := step.start(cfg, stack.logger)
		if err != nil {
			_ = stack.Shutdown(ctx)
			return nil, crerr.Wrapf(err, "start %s", step.name)
		}
		if stop != nil {
			stack.stoppers = append(stack.stoppers, stopper{name: step.name, stop: stop})
		}
	}
	return stack, nil
}

// Enabled lists the running components in start order.
func (s *Stack) Enabled() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.stoppers))
	for _, st := range s.stoppers {
		names = append(names, st.name)
	}
	return names
}

// Shutdown stops components in reverse start order and reports every failure.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs error
	for i := len(s.stoppers) - 1; i >= 0; i-- {
		st := s.stoppers[i]
		if err := st.stop(ctx); err != nil {
			s.logger.Warn("observability shutdown failed", "component", st.name, "error", err)
			errs = crerr.CombineErrors(errs, crerr.Wrapf(err, "stop %s", st.name))
		}
	}
	s.stoppers = nil
	return errs
}
