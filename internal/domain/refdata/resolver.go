package refdata

import (
	"encoding/json"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/acefarmer/backend/internal/domain/member"
)

// BranchGroup is one row of the static branch/group reference dataset
type BranchGroup struct {
	Branch    string `json:"Branch"`
	GroupCode string `json:"GroupCode"`
	GroupName string `json:"GroupName"`
}

// ResolutionReason explains why a group name failed to resolve
type ResolutionReason string

const (
	ReasonNotFound ResolutionReason = "NOT_FOUND"
	ReasonConflict ResolutionReason = "CONFLICT"
	ReasonInvalid  ResolutionReason = "INVALID"
)

// GroupResolution is the outcome of mapping a raw group name to a stable
// (groupCode, branchId, branchName) triple.
// Invariant: Found implies all three identifiers are set; !Found implies
// Reason is set.
type GroupResolution struct {
	Found               bool             `json:"found"`
	NormalizedGroupName string           `json:"normalized_group_name"`
	GroupCode           string           `json:"group_code,omitempty"`
	BranchID            string           `json:"branch_id,omitempty"`
	BranchName          string           `json:"branch_name,omitempty"`
	Reason              ResolutionReason `json:"reason,omitempty"`
}

// Resolver maps free-text group names from the external source to internal
// branch/group codes using a reference dataset loaded from disk. The index is
// built once on first use and never mutated afterwards; dataset updates
// require a restart.
type Resolver struct {
	logger *zap.Logger
	paths  []string

	once  sync.Once
	index map[string][]BranchGroup
}

// NewResolver creates a resolver that will load the reference dataset from
// the first readable candidate path. Construct one per process and inject it.
func NewResolver(logger *zap.Logger, candidatePaths ...string) *Resolver {
	return &Resolver{
		logger: logger,
		paths:  candidatePaths,
	}
}

// ResolveGroupName resolves a raw group name to its branch/group mapping.
// Misses and ambiguities are diagnostics, not errors: the caller persists the
// member with null group fields and moves on.
func (r *Resolver) ResolveGroupName(rawName string) GroupResolution {
	normalized := NormalizeGroupName(rawName)
	if normalized == "" {
		return GroupResolution{Reason: ReasonInvalid}
	}

	r.once.Do(r.load)

	candidates := r.index[strings.ToLower(normalized)]
	if len(candidates) == 0 {
		return GroupResolution{NormalizedGroupName: normalized, Reason: ReasonNotFound}
	}

	first := candidates[0]
	for _, c := range candidates[1:] {
		if c.GroupCode != first.GroupCode || c.Branch != first.Branch {
			return GroupResolution{NormalizedGroupName: normalized, Reason: ReasonConflict}
		}
	}

	branchID, branchName, ok := splitBranch(first.Branch)
	if !ok || first.GroupCode == "" {
		return GroupResolution{NormalizedGroupName: normalized, Reason: ReasonInvalid}
	}

	return GroupResolution{
		Found:               true,
		NormalizedGroupName: normalized,
		GroupCode:           first.GroupCode,
		BranchID:            branchID,
		BranchName:          branchName,
	}
}

// Size returns the number of distinct group names indexed, loading on demand
func (r *Resolver) Size() int {
	r.once.Do(r.load)
	return len(r.index)
}

// load builds the in-memory index. A missing or corrupt reference file must
// not take the process down: the resolver logs and serves an empty index, so
// every lookup reports NOT_FOUND until the dataset is fixed and the service
// restarted.
func (r *Resolver) load() {
	r.index = make(map[string][]BranchGroup)

	var lastErr error
	for _, path := range r.paths {
		data, err := os.ReadFile(path)
		if err != nil {
			lastErr = err
			continue
		}
		var rows []BranchGroup
		if err := json.Unmarshal(data, &rows); err != nil {
			lastErr = err
			r.logger.Error("branch group reference file is corrupt",
				zap.String("path", path),
				zap.Error(err))
			continue
		}
		for _, row := range rows {
			key := strings.ToLower(NormalizeGroupName(row.GroupName))
			if key == "" {
				continue
			}
			r.index[key] = append(r.index[key], row)
		}
		r.logger.Info("branch group reference loaded",
			zap.String("path", path),
			zap.Int("rows", len(rows)),
			zap.Int("distinct_groups", len(r.index)))
		return
	}

	r.logger.Error("no branch group reference file could be loaded, serving empty index",
		zap.Strings("candidates", r.paths),
		zap.Error(lastErr))
}

// NormalizeGroupName trims and collapses internal whitespace
func NormalizeGroupName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitBranch parses the dataset's "<branchId>-<branchName...>" encoding.
// The ID is everything before the first hyphen; the remainder is the
// title-cased branch name.
func splitBranch(raw string) (id, name string, ok bool) {
	raw = strings.TrimSpace(raw)
	idx := strings.Index(raw, "-")
	if idx <= 0 {
		return "", "", false
	}
	id = strings.TrimSpace(raw[:idx])
	name = member.FormatVietnameseName(raw[idx+1:])
	if id == "" || name == "" {
		return "", "", false
	}
	return id, name, true
}
