package sync

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/acefarmer/backend/internal/domain/member"
)

// BulkResult is the outcome for one member in a bulk import
type BulkResult struct {
	MemberNo string   `json:"member_no"`
	Saved    bool     `json:"saved"`
	Source   Source   `json:"source,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// BulkReport aggregates a whole bulk import run
type BulkReport struct {
	Total      int          `json:"total"`
	Saved      int          `json:"saved"`
	Failed     int          `json:"failed"`
	DurationMs int64        `json:"duration_ms"`
	Results    []BulkResult `json:"results"`
}

// BulkImport synchronizes a list of member numbers with a fixed pool of
// workers. Bulk passes bypass the per-member cooldown and retry a timed-out
// fetch exactly once; any later failure is recorded for that member and the
// run keeps going.
func (o *Orchestrator) BulkImport(ctx context.Context, memberNos []string, workers int) *BulkReport {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	jobs := make(chan int)
	results := make([]BulkResult, len(memberNos))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.syncOne(ctx, memberNos[i])
			}
		}()
	}

	for i := range memberNos {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// mark the members that never got scheduled
			for j := i; j < len(memberNos); j++ {
				if canonical, err := member.NormalizeMemberNo(memberNos[j]); err == nil {
					results[j] = BulkResult{MemberNo: canonical, Error: ctx.Err().Error()}
				} else {
					results[j] = BulkResult{MemberNo: memberNos[j], Error: err.Error()}
				}
			}
			close(jobs)
			wg.Wait()
			return o.buildReport(results, start)
		}
	}
	close(jobs)
	wg.Wait()

	return o.buildReport(results, start)
}

func (o *Orchestrator) syncOne(ctx context.Context, memberNo string) BulkResult {
	result := BulkResult{MemberNo: memberNo}
	if canonical, err := member.NormalizeMemberNo(memberNo); err == nil {
		result.MemberNo = canonical
	}

	summary, err := o.run(ctx, result.MemberNo, passOptions{bypassLimiter: true, retryTimeout: true})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Saved = summary.Saved
	result.Source = summary.Source
	result.Warnings = summary.Warnings
	result.Errors = summary.Errors
	return result
}

func (o *Orchestrator) buildReport(results []BulkResult, start time.Time) *BulkReport {
	report := &BulkReport{
		Total:      len(results),
		DurationMs: time.Since(start).Milliseconds(),
		Results:    results,
	}
	for _, r := range results {
		if r.Saved {
			report.Saved++
		} else {
			report.Failed++
		}
	}
	o.logger.Info("bulk import finished",
		zap.Int("total", report.Total),
		zap.Int("saved", report.Saved),
		zap.Int("failed", report.Failed),
		zap.Int64("duration_ms", report.DurationMs))
	return report
}
