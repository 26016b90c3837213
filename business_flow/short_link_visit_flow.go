package businessflow

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var redirectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "shortlink_redirects_total",
	Help: "Short link redirects by resolution outcome",
}, []string{"outcome"})

// VisitResult is where the visitor is sent and why.
type VisitResult struct {
	Target  string
	Outcome ResolveOutcome
}

// ShortLinkVisitFlow resolves a public short link, records the click and picks the redirect target.
// It never fails: every problem ends at the fallback URL.
type ShortLinkVisitFlow interface {
	Visit(ctx context.Context, code string, headers RequestHeaders) VisitResult
	FallbackURL() string
}

type ShortLinkVisitFlowImpl struct {
	resolver    ShortLinkResolver
	recorder    ClickRecorder
	fallbackURL string
	logger      *zap.Logger
}

func NewShortLinkVisitFlow(resolver ShortLinkResolver, recorder ClickRecorder, fallbackURL string, logger *zap.Logger) ShortLinkVisitFlow {
	if fallbackURL == "" {
		fallbackURL = "/"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShortLinkVisitFlowImpl{
		resolver:    resolver,
		recorder:    recorder,
		fallbackURL: fallbackURL,
		logger:      logger,
	}
}

func (f *ShortLinkVisitFlowImpl) FallbackURL() string {
	return f.fallbackURL
}

func (f *ShortLinkVisitFlowImpl) Visit(ctx context.Context, code string, headers RequestHeaders) (result VisitResult) {
	defer func() {
		if p := recover(); p != nil {
			f.logger.Error("short link visit panicked", zap.String("code", code), zap.String("panic", fmt.Sprint(p)))
			result = VisitResult{Target: f.fallbackURL, Outcome: OutcomeError}
		}
		redirectsTotal.WithLabelValues(string(result.Outcome)).Inc()
	}()

	if ValidateCode(code) != nil {
		return f.fallback(OutcomeRejected)
	}

	res, err := f.resolver.Resolve(ctx, code)
	if err != nil {
		f.logger.Warn("short link lookup failed", zap.String("code", code), zap.Error(err))
		return f.fallback(OutcomeError)
	}
	if res.Outcome != OutcomeFound {
		f.logger.Debug("short link not redirectable", zap.String("code", code), zap.String("outcome", string(res.Outcome)))
		return f.fallback(res.Outcome)
	}

	f.recorder.Record(res.ShortLink.ID, ExtractRequestMetadata(headers))

	return VisitResult{Target: res.ShortLink.Destination, Outcome: OutcomeFound}
}

func (f *ShortLinkVisitFlowImpl) fallback(outcome ResolveOutcome) VisitResult {
	return VisitResult{Target: f.fallbackURL, Outcome: outcome}
}
