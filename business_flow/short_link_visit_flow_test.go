package businessflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	testingutil "github.com/amirphl/masuk10/testing"
	"github.com/amirphl/masuk10/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyRecorder struct {
	mu    sync.Mutex
	calls []recordCall
}

type recordCall struct {
	id   uint
	meta RequestMetadata
}

func (s *spyRecorder) Record(id uint, meta RequestMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, recordCall{id: id, meta: meta})
}

func (s *spyRecorder) Drain(context.Context) error { return nil }

type panickingResolver struct{}

func (panickingResolver) Resolve(context.Context, string) (ResolveResult, error) {
	panic("boom")
}

func TestShortLinkVisitFlow(t *testing.T) {
	now := utils.UTCNow()
	lookup := &stubLookup{links: map[string]*models.ShortLink{
		"promo":  {ID: 11, Code: "promo", Destination: "https://shop.example.com/sale", IsActive: utils.ToPtr(true)},
		"old":    {ID: 12, Code: "old", Destination: "https://example.com/old", IsActive: utils.ToPtr(true), ExpiresAt: utils.ToPtr(now.Add(-time.Hour))},
		"paused": {ID: 13, Code: "paused", Destination: "https://example.com/paused", IsActive: utils.ToPtr(false)},
		"admin":  {ID: 14, Code: "admin", Destination: "https://evil.example.com", IsActive: utils.ToPtr(true)},
	}}
	headers := RequestHeaders{ForwardedFor: "203.0.113.7", UserAgent: uaIPhone, Referer: "https://t.co/x"}
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		recorder := &spyRecorder{}
		flow := NewShortLinkVisitFlow(NewShortLinkResolver(lookup), recorder, "/", nil)

		res := flow.Visit(ctx, "promo", headers)
		assert.Equal(t, "https://shop.example.com/sale", res.Target)
		assert.Equal(t, OutcomeFound, res.Outcome)
		require.Len(t, recorder.calls, 1)
		assert.Equal(t, uint(11), recorder.calls[0].id)
		assert.Equal(t, "203.0.113.7", recorder.calls[0].meta.IPAddress)
		assert.Equal(t, models.DeviceMobile, recorder.calls[0].meta.DeviceType)
	})

	negative := []struct {
		name    string
		code    string
		outcome ResolveOutcome
	}{
		{"NotFound", "nope", OutcomeNotFound},
		{"Expired", "old", OutcomeExpired},
		{"Inactive", "paused", OutcomeInactive},
		{"Reserved", "admin", OutcomeRejected},
		{"ReservedUpperCase", "ADMIN", OutcomeRejected},
		{"Malformed", "bad code!", OutcomeRejected},
		{"TooShort", "a", OutcomeRejected},
	}
	for _, tt := range negative {
		t.Run(tt.name, func(t *testing.T) {
			recorder := &spyRecorder{}
			flow := NewShortLinkVisitFlow(NewShortLinkResolver(lookup), recorder, "https://masuk10.example.com/", nil)

			res := flow.Visit(ctx, tt.code, headers)
			assert.Equal(t, "https://masuk10.example.com/", res.Target)
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Empty(t, recorder.calls)
		})
	}

	t.Run("RejectedCodeIsNotLookedUp", func(t *testing.T) {
		counting := &stubLookup{}
		flow := NewShortLinkVisitFlow(NewShortLinkResolver(counting), &spyRecorder{}, "", nil)
		res := flow.Visit(ctx, "login", headers)
		assert.Equal(t, "/", res.Target)
		assert.Zero(t, counting.calls)
	})

	t.Run("LookupErrorFallsBack", func(t *testing.T) {
		flow := NewShortLinkVisitFlow(NewShortLinkResolver(&stubLookup{err: errors.New("db down")}), &spyRecorder{}, "/", nil)
		res := flow.Visit(ctx, "promo", headers)
		assert.Equal(t, VisitResult{Target: "/", Outcome: OutcomeError}, res)
	})

	t.Run("PanicFallsBack", func(t *testing.T) {
		flow := NewShortLinkVisitFlow(panickingResolver{}, &spyRecorder{}, "/", nil)
		var res VisitResult
		assert.NotPanics(t, func() { res = flow.Visit(ctx, "promo", headers) })
		assert.Equal(t, VisitResult{Target: "/", Outcome: OutcomeError}, res)
	})
}

func TestShortLinkVisitFlowEndToEnd(t *testing.T) {
	testDB := testingutil.MustSetupTestDB(t)
	fixtures := testingutil.NewTestFixtures(testDB)
	link, err := fixtures.CreateTestShortLink("fb1", "https://example.com/group")
	require.NoError(t, err)

	linkRepo := repository.NewShortLinkRepository(testDB.DB)
	clickRepo := repository.NewShortLinkClickRepository(testDB.DB)
	recorder := NewClickRecorder(clickRepo, nil, 0)
	flow := NewShortLinkVisitFlow(NewShortLinkResolver(linkRepo), recorder, "/", nil)
	ctx := context.Background()

	assert.Equal(t, "https://example.com/group", flow.Visit(ctx, "fb1", RequestHeaders{UserAgent: uaChromeDesktop}).Target)
	assert.Equal(t, "/", flow.Visit(ctx, "FB1", RequestHeaders{}).Target)
	drain(t, recorder)

	count, err := clickRepo.Count(ctx, models.ShortLinkClickFilter{ShortLinkID: &link.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestShortLinkVisitFlowDoesNotWaitForClickWrite(t *testing.T) {
	lookup := &stubLookup{links: map[string]*models.ShortLink{
		"fb1": {ID: 21, Code: "fb1", Destination: "https://example.com/group", IsActive: utils.ToPtr(true)},
	}}
	headers := RequestHeaders{ForwardedFor: "203.0.113.7", UserAgent: uaIPhone}
	ctx := context.Background()

	t.Run("HungSave", func(t *testing.T) {
		saver := &memoryClickSaver{hold: make(chan struct{})}
		recorder := NewClickRecorder(saver, nil, 0)
		flow := NewShortLinkVisitFlow(NewShortLinkResolver(lookup), recorder, "/", nil)

		done := make(chan VisitResult, 1)
		go func() { done <- flow.Visit(ctx, "fb1", headers) }()

		select {
		case res := <-done:
			assert.Equal(t, "https://example.com/group", res.Target)
			assert.Equal(t, OutcomeFound, res.Outcome)
		case <-time.After(2 * time.Second):
			t.Fatal("Visit blocked on the click write")
		}
		assert.Empty(t, saver.saved())

		close(saver.hold)
		drain(t, recorder)
		require.Len(t, saver.saved(), 1)
		assert.Equal(t, uint(21), saver.saved()[0].ShortLinkID)
	})

	failing := []struct {
		name  string
		saver *memoryClickSaver
	}{
		{"SaveError", &memoryClickSaver{err: errors.New("db down")}},
		{"SavePanics", &memoryClickSaver{panic: true}},
	}
	for _, tt := range failing {
		t.Run(tt.name, func(t *testing.T) {
			recorder := NewClickRecorder(tt.saver, nil, 0)
			flow := NewShortLinkVisitFlow(NewShortLinkResolver(lookup), recorder, "/", nil)

			res := flow.Visit(ctx, "fb1", headers)
			assert.Equal(t, "https://example.com/group", res.Target)
			assert.Equal(t, OutcomeFound, res.Outcome)

			drain(t, recorder)
			assert.Empty(t, tt.saver.saved())
		})
	}
}
