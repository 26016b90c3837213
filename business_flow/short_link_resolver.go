package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
)

// ResolveOutcome classifies a lookup. Only Found leads to the destination.
type ResolveOutcome string

const (
	OutcomeFound    ResolveOutcome = "found"
	OutcomeNotFound ResolveOutcome = "not_found"
	OutcomeExpired  ResolveOutcome = "expired"
	OutcomeInactive ResolveOutcome = "inactive"
	// OutcomeRejected is a code that is malformed or reserved and never looked up.
	OutcomeRejected ResolveOutcome = "rejected"
	// OutcomeError is a lookup failure or a recovered panic.
	OutcomeError ResolveOutcome = "error"
)

type ResolveResult struct {
	Outcome   ResolveOutcome
	ShortLink *models.ShortLink
}

// ShortLinkResolver maps a code to a resolution outcome. It never writes.
type ShortLinkResolver interface {
	Resolve(ctx context.Context, code string) (ResolveResult, error)
}

type ShortLinkResolverImpl struct {
	lookup repository.ShortLinkLookup
	now    func() time.Time
}

func NewShortLinkResolver(lookup repository.ShortLinkLookup) ShortLinkResolver {
	return &ShortLinkResolverImpl{lookup: lookup, now: utils.UTCNow}
}

func (r *ShortLinkResolverImpl) Resolve(ctx context.Context, code string) (ResolveResult, error) {
	link, err := r.lookup.ByCode(ctx, code)
	if err != nil {
		return ResolveResult{Outcome: OutcomeError}, NewBusinessError("SHORT_LINK_LOOKUP_FAILED", "Failed to lookup short link", err)
	}
	if link == nil {
		return ResolveResult{Outcome: OutcomeNotFound}, nil
	}
	if link.ExpiredAt(r.now()) {
		return ResolveResult{Outcome: OutcomeExpired}, nil
	}
	if !utils.IsTrue(link.IsActive) {
		return ResolveResult{Outcome: OutcomeInactive}, nil
	}
	return ResolveResult{Outcome: OutcomeFound, ShortLink: link}, nil
}
