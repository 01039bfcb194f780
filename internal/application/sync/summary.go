package sync

import (
	"fmt"
	"time"
)

// Source identifies where a sync pass got its data from
type Source string

const (
	SourceExternal Source = "external"
	SourceFallback Source = "fallback"
)

// Summary is the diagnostic result of one sync pass. It is never persisted;
// every terminal state of the orchestrator produces one for the caller.
type Summary struct {
	Source         Source    `json:"source"`
	Saved          bool      `json:"saved"`
	FetchedAt      time.Time `json:"fetched_at"`
	DurationMs     int64     `json:"duration_ms"`
	MissingModules []string  `json:"missing_modules"`
	Warnings       []string  `json:"warnings"`
	Errors         []string  `json:"errors"`
}

// summaryBuilder accumulates per-step outcomes. Sub-steps are independent:
// a failed step records its error here and the pass moves on, so one broken
// module never hides what the others did.
type summaryBuilder struct {
	source         Source
	saved          bool
	fetchedAt      time.Time
	missingModules []string
	warnings       []string
	errors         []string
}

func newSummaryBuilder() *summaryBuilder {
	return &summaryBuilder{source: SourceExternal}
}

func (b *summaryBuilder) addWarning(format string, args ...any) {
	b.warnings = append(b.warnings, fmt.Sprintf(format, args...))
}

func (b *summaryBuilder) addError(format string, args ...any) {
	b.errors = append(b.errors, fmt.Sprintf(format, args...))
}

func (b *summaryBuilder) addMissing(module string) {
	b.missingModules = append(b.missingModules, module)
}

func (b *summaryBuilder) build(start time.Time) *Summary {
	return &Summary{
		Source:         b.source,
		Saved:          b.saved,
		FetchedAt:      b.fetchedAt,
		DurationMs:     time.Since(start).Milliseconds(),
		MissingModules: b.missingModules,
		Warnings:       b.warnings,
		Errors:         b.errors,
	}
}
