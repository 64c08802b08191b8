package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/drillgym/internal/metrics"
)

// LoggingProvider is a decorator that logs every request and records
// request, token and cost metrics.
type LoggingProvider struct {
	inner  Provider
	logger *zap.Logger
}

// WithLogging wraps a Provider with structured logging.
func WithLogging(p Provider, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	call := CallFrom(ctx)
	purpose := string(call.Purpose)

	resp, err := l.inner.Generate(ctx, req)

	fields := []zap.Field{
		zap.String("purpose", purpose),
		zap.String("subject", call.Subject),
		zap.String("model", l.inner.ModelID()),
		zap.Duration("latency", time.Since(start)),
	}
	if req.Schema != nil {
		fields = append(fields, zap.String("schema", req.Schema.Name))
	}

	if err != nil {
		err = annotate(err, call)
		metrics.LLMRequests.WithLabelValues(purpose, "error").Inc()
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	metrics.LLMRequests.WithLabelValues(purpose, "ok").Inc()
	metrics.LLMTokens.WithLabelValues(resp.Model, "input").Add(float64(resp.Usage.InputTokens))
	metrics.LLMTokens.WithLabelValues(resp.Model, "output").Add(float64(resp.Usage.OutputTokens))
	if cost := LookupCost(resp.Model); cost != nil {
		usd := cost.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)
		metrics.LLMCost.WithLabelValues(resp.Model).Add(usd)
		fields = append(fields, zap.Float64("cost_usd", usd))
	}

	l.logger.Debug("llm request",
		append(fields,
			zap.Int("input_tokens", resp.Usage.InputTokens),
			zap.Int("output_tokens", resp.Usage.OutputTokens),
			zap.String("stop_reason", resp.StopReason))...)

	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
