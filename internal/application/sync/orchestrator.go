package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/acefarmer/backend/internal/domain/loan"
	"github.com/acefarmer/backend/internal/domain/member"
	"github.com/acefarmer/backend/internal/domain/savings"
	"github.com/acefarmer/backend/internal/domain/shared"
	"github.com/acefarmer/backend/internal/infrastructure/bijli"
	"github.com/acefarmer/backend/internal/infrastructure/cache"
)

// MemberFetcher fetches the raw external record for one member number.
// A nil record with a nil error means the source has no data for the member.
type MemberFetcher interface {
	FetchMember(ctx context.Context, memberNo string) (bijli.RawRecord, error)
}

// MemberSnapshot is the stored view of one member, served when the external
// source cannot be reached or as the read model for the API
type MemberSnapshot struct {
	Customer *member.Customer  `json:"customer"`
	Balances []savings.Balance `json:"balances"`
	Loans    []loan.Loan       `json:"loans"`
}

// Orchestrator drives one synchronization pass per member: rate limit check,
// external fetch with stored-snapshot fallback, then the reconciliation steps.
// Each step after the customer upsert fails independently; partial progress
// is kept and reported in the summary rather than rolled back.
type Orchestrator struct {
	fetcher        MemberFetcher
	reconciler     *Reconciler
	customers      member.CustomerRepository
	savings        savings.Repository
	loans          loan.Repository
	limiter        cache.RefreshLimiter
	logger         *zap.Logger
	cooldown       time.Duration
	fallbackStored bool
}

// NewOrchestrator creates a sync orchestrator
func NewOrchestrator(
	fetcher MemberFetcher,
	reconciler *Reconciler,
	customers member.CustomerRepository,
	savingsRepo savings.Repository,
	loans loan.Repository,
	limiter cache.RefreshLimiter,
	logger *zap.Logger,
	cooldown time.Duration,
	fallbackStored bool,
) *Orchestrator {
	return &Orchestrator{
		fetcher:        fetcher,
		reconciler:     reconciler,
		customers:      customers,
		savings:        savingsRepo,
		loans:          loans,
		limiter:        limiter,
		logger:         logger,
		cooldown:       cooldown,
		fallbackStored: fallbackStored,
	}
}

// passOptions tunes one sync pass. Bulk import bypasses the per-member
// limiter and enables the one-shot timeout retry.
type passOptions struct {
	bypassLimiter bool
	retryTimeout  bool
}

// SyncMember runs one interactive synchronization pass for a member.
// Returns shared.ErrRateLimited while the member is in cooldown and
// shared.ErrMemberNotFound when neither the source nor the store knows
// the member.
func (o *Orchestrator) SyncMember(ctx context.Context, memberNo string) (*Summary, error) {
	return o.run(ctx, memberNo, passOptions{})
}

func (o *Orchestrator) run(ctx context.Context, memberNo string, opts passOptions) (*Summary, error) {
	canonical, err := member.NormalizeMemberNo(memberNo)
	if err != nil {
		return nil, shared.ErrInvalidMemberNo
	}

	if !opts.bypassLimiter {
		allowed, err := o.limiter.Allow(ctx, canonical, o.cooldown)
		if err != nil {
			// a broken limiter backend must not block sync, fail open
			o.logger.Error("refresh limiter check failed", zap.String("member_no", canonical), zap.Error(err))
		} else if !allowed {
			return nil, shared.ErrRateLimited
		}
	}

	start := time.Now()
	b := newSummaryBuilder()

	raw := o.fetch(ctx, canonical, opts, b)
	if raw == nil {
		return o.fallback(ctx, canonical, start, b)
	}
	b.fetchedAt = time.Now()
	b.source = SourceExternal

	customer, warnings, err := o.reconciler.MapExternalToCustomer(raw, canonical)
	for _, w := range warnings {
		b.addWarning("%s", w)
	}
	if err != nil {
		b.addError("map customer: %s", err)
		o.logger.Error("customer mapping failed", zap.String("member_no", canonical), zap.Error(err))
		return o.fallback(ctx, canonical, start, b)
	}

	if _, diag := o.reconciler.ResolveGroup(customer); diag != "" {
		b.addWarning("%s", diag)
	}

	saved, err := o.reconciler.UpsertCustomer(ctx, customer)
	if err != nil {
		b.addError("upsert customer: %s", err)
		o.logger.Error("customer upsert failed", zap.String("member_no", canonical), zap.Error(err))
		return b.build(start), nil
	}
	b.saved = true

	savingsWarnings, present, err := o.reconciler.ReconcileSavings(ctx, saved.ID, raw)
	for _, w := range savingsWarnings {
		b.addWarning("%s", w)
	}
	if err != nil {
		b.addError("savings: %s", err)
		o.logger.Error("savings reconciliation failed", zap.String("member_no", canonical), zap.Error(err))
	} else if !present {
		b.addMissing("savings")
	}

	present, err = o.reconciler.ReconcileLoans(ctx, saved.ID, raw)
	if err != nil {
		b.addError("loans: %s", err)
		o.logger.Error("loan reconciliation failed", zap.String("member_no", canonical), zap.Error(err))
	} else if !present {
		b.addMissing("loans")
	}

	summary := b.build(start)
	o.logger.Info("sync pass finished",
		zap.String("member_no", canonical),
		zap.String("source", string(summary.Source)),
		zap.Bool("saved", summary.Saved),
		zap.Int("warnings", len(summary.Warnings)),
		zap.Int("errors", len(summary.Errors)),
		zap.Int64("duration_ms", summary.DurationMs))
	return summary, nil
}

// fetch calls the external source, retrying once on timeout when the pass
// options ask for it. Returns nil when no usable data came back; the
// builder carries the reason.
func (o *Orchestrator) fetch(ctx context.Context, memberNo string, opts passOptions, b *summaryBuilder) bijli.RawRecord {
	raw, err := o.fetcher.FetchMember(ctx, memberNo)
	if err != nil && opts.retryTimeout && bijli.IsTimeout(err) {
		o.logger.Warn("external fetch timed out, retrying once", zap.String("member_no", memberNo))
		raw, err = o.fetcher.FetchMember(ctx, memberNo)
	}
	if err != nil {
		b.addError("fetch: %s", err)
		o.logger.Error("external fetch failed", zap.String("member_no", memberNo), zap.Error(err))
		return nil
	}
	if raw == nil {
		b.addWarning("external source returned no data")
		return nil
	}
	return raw
}

// fallback serves the stored snapshot when no external data is usable.
// Without a snapshot the pass fails with member-not-found.
func (o *Orchestrator) fallback(ctx context.Context, memberNo string, start time.Time, b *summaryBuilder) (*Summary, error) {
	if !o.fallbackStored {
		return nil, shared.ErrMemberNotFound
	}
	exists, err := o.customers.ExistsByMemberNo(ctx, memberNo)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, shared.ErrMemberNotFound
	}
	b.source = SourceFallback
	o.logger.Warn("serving stored snapshot", zap.String("member_no", memberNo))
	return b.build(start), nil
}

// LoadSnapshot returns the stored view of a member
func (o *Orchestrator) LoadSnapshot(ctx context.Context, memberNo string) (*MemberSnapshot, error) {
	canonical, err := member.NormalizeMemberNo(memberNo)
	if err != nil {
		return nil, shared.ErrInvalidMemberNo
	}
	customer, err := o.customers.FindByMemberNo(ctx, canonical)
	if err != nil {
		return nil, err
	}
	balances, err := o.savings.FindBalances(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	loans, err := o.loans.FindByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, err
	}
	return &MemberSnapshot{Customer: customer, Balances: balances, Loans: loans}, nil
}
