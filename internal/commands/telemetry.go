package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/goliatone/go-formbridge/internal/logging"
	"github.com/goliatone/go-formbridge/pkg/interfaces"
)

type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes one command execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
}

// Telemetry is called after every execution, successful or not.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs the outcome and duration with logger. Failures carry
// the go-errors text code when there is one.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"duration_ms", info.Duration.Milliseconds()}
		if info.Status == TelemetryStatusSuccess {
			entry.Info("command.execute.success", args...)
			return
		}
		args = append(args, "error", info.Error)
		var wrapped *goerrors.Error
		if errors.As(WrapExecuteError(info.Error), &wrapped) && wrapped.TextCode != "" {
			args = append(args, "code", wrapped.TextCode)
		}
		entry.Error("command.execute."+string(info.Status), args...)
	}
}

// Metrics counts command executions by outcome and observes their duration.
type Metrics struct {
	Executions *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics registers the command metrics on reg. A nil reg uses the
// default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Executions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formbridge",
			Subsystem: "commands",
			Name:      "executions_total",
			Help:      "Command executions by command type and status",
		}, []string{"command", "status"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "formbridge",
			Subsystem: "commands",
			Name:      "duration_seconds",
			Help:      "Command execution time in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
	}
}

// Observe records one execution.
func (m *Metrics) Observe(info TelemetryInfo) {
	if m == nil {
		return
	}
	m.Executions.WithLabelValues(info.Command, string(info.Status)).Inc()
	m.Duration.WithLabelValues(info.Command).Observe(info.Duration.Seconds())
}

// MetricsTelemetry logs like DefaultTelemetry and records the execution on
// metrics. A nil metrics only logs.
func MetricsTelemetry[T command.Message](logger interfaces.Logger, metrics *Metrics) Telemetry[T] {
	log := DefaultTelemetry[T](logger)
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		log(ctx, msg, info)
		metrics.Observe(info)
	}
}
