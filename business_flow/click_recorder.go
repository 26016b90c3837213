package businessflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	clickRecordFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shortlink_click_record_failures_total",
		Help: "Click writes that failed or panicked",
	}, []string{"reason"})
	clickRecordSuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shortlink_clicks_recorded_total",
		Help: "Click writes that were persisted",
	})
)

// ClickSaver is the single write the recorder needs.
type ClickSaver interface {
	Save(ctx context.Context, click *models.ShortLinkClick) error
}

// ClickRecorder persists clicks without making the caller wait.
type ClickRecorder interface {
	Record(shortLinkID uint, meta RequestMetadata)
	Drain(ctx context.Context) error
}

type ClickRecorderImpl struct {
	saver        ClickSaver
	logger       *zap.Logger
	writeTimeout time.Duration
	wg           sync.WaitGroup
}

// NewClickRecorder builds a recorder. A zero writeTimeout leaves timeouts to the storage client.
func NewClickRecorder(saver ClickSaver, logger *zap.Logger, writeTimeout time.Duration) ClickRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClickRecorderImpl{
		saver:        saver,
		logger:       logger,
		writeTimeout: writeTimeout,
	}
}

// NewClick builds the row for a click, truncating free-text fields to their column sizes.
func NewClick(shortLinkID uint, meta RequestMetadata) *models.ShortLinkClick {
	return &models.ShortLinkClick{
		ShortLinkID: shortLinkID,
		ClickedAt:   utils.UTCNow(),
		IPAddress:   utils.ToPtr(utils.Truncate(meta.IPAddress, utils.MaxClickIPLength)),
		UserAgent:   utils.TruncatePtr(meta.UserAgent, utils.MaxClickUserAgentLength),
		Referrer:    utils.TruncatePtr(meta.Referrer, utils.MaxClickReferrerLength),
		DeviceType:  utils.ToPtr(meta.DeviceType),
		Browser:     utils.ToPtr(meta.Browser),
	}
}

// Record returns as soon as the write has been handed to its goroutine.
func (r *ClickRecorderImpl) Record(shortLinkID uint, meta RequestMetadata) {
	click := NewClick(shortLinkID, meta)
	r.wg.Add(1)
	go r.persist(click)
}

func (r *ClickRecorderImpl) persist(click *models.ShortLinkClick) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			clickRecordFailures.WithLabelValues("panic").Inc()
			r.logger.Error("click record panicked",
				zap.Uint("short_link_id", click.ShortLinkID),
				zap.String("panic", fmt.Sprint(p)),
			)
		}
	}()

	// detached from the request so the redirect does not cancel the write
	ctx := context.Background()
	if r.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.writeTimeout)
		defer cancel()
	}

	if err := r.saver.Save(ctx, click); err != nil {
		clickRecordFailures.WithLabelValues("error").Inc()
		r.logger.Warn("click record failed",
			zap.Uint("short_link_id", click.ShortLinkID),
			zap.Error(err),
		)
		return
	}
	clickRecordSuccesses.Inc()
}

// Drain blocks until every in-flight write finished or ctx is done.
func (r *ClickRecorderImpl) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
