package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/aretw0/dyntext"
	apphttp "github.com/aretw0/dyntext/internal/adapters/http"
	"github.com/aretw0/dyntext/internal/config"
	"github.com/aretw0/dyntext/internal/logging"
	"github.com/aretw0/dyntext/internal/presentation/tui"
	"github.com/aretw0/dyntext/pkg/domain"
	"github.com/aretw0/dyntext/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

// RotateOptions configures RunRotate.
type RotateOptions struct {
	Config   config.Config
	Duration time.Duration // 0 runs until ctx is done
	Version  string
	Logger   *slog.Logger
	Display  []tui.LabelOption

	// Registry receives the label metrics. A registry with the Go and
	// process collectors is created when nil.
	Registry *prometheus.Registry
}

// RunRotate shows the texts of the configured source on w one after another
// until ctx is done or Duration elapses. When Config.HTTP.Addr is set the
// status server runs alongside.
func RunRotate(ctx context.Context, w io.Writer, opts RotateOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	tokens, err := opts.Config.TokenConfiguration()
	if err != nil {
		return err
	}

	source, closer, err := OpenSource(opts.Config.Rotation, logger)
	if err != nil {
		return err
	}
	defer closer.Close()

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics, err := observability.NewMetrics(reg)
	if err != nil {
		return err
	}
	streams := apphttp.NewStreamManager()

	display := tui.NewTerminalLabel(w, opts.Display...)
	defer display.Finish()

	label, err := dyntext.NewRotating(source,
		dyntext.WithConfiguration(tokens),
		dyntext.WithDisplay(display),
		dyntext.WithDelegate(display),
		dyntext.WithLifecycleHooks(observability.Chain(
			metrics.Hooks(),
			observability.LogHooks(logger),
			apphttp.StreamHooks(streams),
		)),
		dyntext.WithLogger(logger),
		dyntext.WithQueryTimeout(opts.Config.Rotation.QueryTimeout),
	)
	if err != nil {
		return err
	}
	defer label.Close()

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if opts.Duration > 0 {
		runCtx, cancel = context.WithTimeout(ctx, opts.Duration)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	if addr := opts.Config.HTTP.Addr; addr != "" {
		server := apphttp.New(label,
			apphttp.WithGatherer(reg),
			apphttp.WithVersion(opts.Version),
			apphttp.WithStreams(streams),
			apphttp.WithLogger(logger),
		)
		bound, stop, err := Serve(addr, server.Handler(), logger)
		if err != nil {
			return err
		}
		defer stop()
		logger.Info("status server listening", "addr", bound)
	}

	if opts.Config.Rotation.Watch {
		go watchSource(runCtx, label, logger)
	}

	if err := label.StartRotations(runCtx); err != nil {
		return fmt.Errorf("failed to start rotations: %w", err)
	}
	if label.RotationState().Phase == domain.PhaseIdle {
		logger.Warn("rotation source is empty, nothing to rotate")
		return nil
	}

	<-runCtx.Done()
	label.StopRotations()
	logger.Debug("rotation finished", "state", label.RotationState().Phase)
	return nil
}

func watchSource(ctx context.Context, label *dyntext.RotatingLabel, logger *slog.Logger) {
	changes, err := label.Watch(ctx)
	if err != nil {
		logger.Warn("source cannot be watched", "err", err)
		return
	}
	for range changes {
		logger.Info("rotation source changed")
	}
}

// Serve starts an HTTP server for handler on addr. It returns the bound
// address and a func that shuts the server down.
func Serve(addr string, handler http.Handler, logger *slog.Logger) (string, func(), error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: shutdownTimeout,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("status server failed", "err", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// SSE clients keep connections open until the deadline.
		if err := srv.Shutdown(ctx); err != nil {
			logger.Debug("graceful shutdown incomplete", "err", err)
			_ = srv.Close()
		}
	}
	return ln.Addr().String(), stop, nil
}
