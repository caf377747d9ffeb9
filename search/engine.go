package search

import (
	"context"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/idea4rc/diagnosis-search/fuzz"
	"github.com/idea4rc/diagnosis-search/vocabularyparser/entities"
)

// ScorerFunc scores two normalized strings on a 0..100 scale. The
// engine's default is fuzz.TokenSetRatio; tests substitute deterministic
// stubs.
type ScorerFunc func(a, b string) int

// QuerySpec is one search request. Node IDs of 0 mean "not selected".
// Threshold outside [0,100] is clamped, never rejected.
type QuerySpec struct {
	Text      string
	MacroID   int32
	GroupID   int32
	SiteID    int32
	Threshold int
}

// MatchResult is one scored candidate.
type MatchResult struct {
	TermID string `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// Result is the outcome of one query evaluation. IDs always carries the
// complete ranked ID set regardless of the display limit; Matches is
// capped at the display limit and empty for filter-only queries.
type Result struct {
	IDs       []string
	Count     int
	Matches   []MatchResult
	Truncated bool
}

const (
	defaultTableLimit     = 500
	defaultParallelCutoff = 1024
)

// Engine evaluates queries against the current snapshot. It holds no
// per-request state, so one Engine serves concurrent queries.
type Engine struct {
	source         SnapshotSource
	scorer         ScorerFunc
	tableLimit     int
	parallelCutoff int
	workers        int
}

// Option configures an Engine.
type Option func(*Engine)

// WithScorer replaces the default token-set scorer.
func WithScorer(scorer ScorerFunc) Option {
	return func(e *Engine) {
		if scorer != nil {
			e.scorer = scorer
		}
	}
}

// WithTableLimit sets the display row cap. The full ID set is always
// returned regardless of this limit.
func WithTableLimit(limit int) Option {
	return func(e *Engine) {
		if limit > 0 {
			e.tableLimit = limit
		}
	}
}

// WithWorkers sets how many goroutines score a sharded candidate set.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithParallelCutoff sets the candidate count at which scoring switches
// from serial to sharded evaluation.
func WithParallelCutoff(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.parallelCutoff = n
		}
	}
}

// NewEngine creates an engine bound to a snapshot source.
func NewEngine(source SnapshotSource, opts ...Option) *Engine {
	e := &Engine{
		source:         source,
		scorer:         fuzz.TokenSetRatio,
		tableLimit:     defaultTableLimit,
		parallelCutoff: defaultParallelCutoff,
		workers:        runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TableLimit returns the configured display row cap.
func (e *Engine) TableLimit() int {
	return e.tableLimit
}

// Query evaluates one QuerySpec: resolve the candidate set from the
// filter selection, then either list it (no text) or fuzzy-rank it.
func (e *Engine) Query(ctx context.Context, spec QuerySpec) (*Result, error) {
	snap := e.source.GetSnapshot()

	nodeID, err := resolveFilter(snap, spec)
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(spec.Text)
	if text == "" && nodeID == 0 {
		return nil, ErrInvalidQuery
	}

	positions := e.candidates(snap, nodeID)

	if text == "" {
		ids := make([]string, len(positions))
		for i, pos := range positions {
			ids[i] = snap.Terms[pos].ID
		}
		return &Result{
			IDs:       ids,
			Count:     len(ids),
			Truncated: len(ids) > e.tableLimit,
		}, nil
	}

	query := Normalize(text)
	threshold := clampThreshold(spec.Threshold)

	scored, err := e.score(ctx, snap, query, positions, threshold)
	if err != nil {
		return nil, err
	}
	e.rank(snap, scored)

	ids := make([]string, len(scored))
	for i, m := range scored {
		ids[i] = snap.Terms[m.pos].ID
	}

	shown := len(scored)
	if shown > e.tableLimit {
		shown = e.tableLimit
	}
	matches := make([]MatchResult, shown)
	for i := 0; i < shown; i++ {
		term := snap.Terms[scored[i].pos]
		matches[i] = MatchResult{
			TermID: term.ID,
			Code:   term.Code,
			Name:   term.Name,
			Score:  scored[i].score,
		}
	}

	return &Result{
		IDs:       ids,
		Count:     len(ids),
		Matches:   matches,
		Truncated: len(ids) > e.tableLimit,
	}, nil
}

// FilterOptions lists the selectable nodes at a level for cascading
// selection UIs. Macrogroupings ignore the parent; groups require a
// macrogrouping parent, sites a group parent.
func (e *Engine) FilterOptions(level entities.Level, parentID int32) ([]entities.FilterNode, error) {
	snap := e.source.GetSnapshot()
	if snap == nil || snap.Index == nil {
		return nil, ErrInvalidFilterSelection
	}

	if level == entities.LevelMacrogrouping {
		return snap.Index.Macrogroupings(), nil
	}

	parent, ok := snap.Index.Node(parentID)
	if !ok {
		return nil, ErrInvalidFilterSelection
	}
	switch {
	case level == entities.LevelGroup && parent.Level == entities.LevelMacrogrouping:
	case level == entities.LevelSite && parent.Level == entities.LevelGroup:
	default:
		return nil, ErrInvalidFilterSelection
	}

	return snap.Index.ChildrenOf(parentID), nil
}

// resolveFilter validates the selection cascade and returns the most
// specific selected node, 0 when nothing is selected.
func resolveFilter(snap *Snapshot, spec QuerySpec) (int32, error) {
	if spec.MacroID == 0 && spec.GroupID == 0 && spec.SiteID == 0 {
		return 0, nil
	}
	if snap == nil || snap.Index == nil {
		return 0, ErrInvalidFilterSelection
	}
	if spec.GroupID != 0 && spec.MacroID == 0 {
		return 0, ErrInvalidFilterSelection
	}
	if spec.SiteID != 0 && spec.GroupID == 0 {
		return 0, ErrInvalidFilterSelection
	}

	macro, ok := snap.Index.Node(spec.MacroID)
	if !ok || macro.Level != entities.LevelMacrogrouping {
		return 0, ErrInvalidFilterSelection
	}
	if spec.GroupID == 0 {
		return spec.MacroID, nil
	}

	group, ok := snap.Index.Node(spec.GroupID)
	if !ok || group.Level != entities.LevelGroup || group.ParentID != spec.MacroID {
		return 0, ErrInvalidFilterSelection
	}
	if spec.SiteID == 0 {
		return spec.GroupID, nil
	}

	site, ok := snap.Index.Node(spec.SiteID)
	if !ok || site.Level != entities.LevelSite || site.ParentID != spec.GroupID {
		return 0, ErrInvalidFilterSelection
	}
	return spec.SiteID, nil
}

// candidates materializes the candidate term positions: the node's
// descendant set, or every term when no filter is selected.
func (e *Engine) candidates(snap *Snapshot, nodeID int32) []uint32 {
	if snap == nil {
		return nil
	}
	if nodeID != 0 {
		return snap.Index.DescendantTerms(nodeID).ToArray()
	}
	positions := make([]uint32, len(snap.Terms))
	for i := range positions {
		positions[i] = uint32(i)
	}
	return positions
}

type scoredTerm struct {
	pos   uint32
	score int
	exact bool
}

// score evaluates the scorer over the candidate positions, keeping
// everything at or above threshold. Large candidate sets are sharded
// across workers; partial slices are concatenated in shard order and
// ranked once, so the ordering is identical to the serial path.
func (e *Engine) score(ctx context.Context, snap *Snapshot, query string, positions []uint32, threshold int) ([]scoredTerm, error) {
	if len(positions) < e.parallelCutoff || e.workers < 2 {
		return e.scoreRange(snap, query, positions, threshold), nil
	}

	shards := e.workers
	if shards > len(positions) {
		shards = len(positions)
	}
	partial := make([][]scoredTerm, shards)
	chunk := (len(positions) + shards - 1) / shards

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for s := 0; s < shards; s++ {
		s := s
		start := s * chunk
		end := start + chunk
		if end > len(positions) {
			end = len(positions)
		}
		g.Go(func() error {
			partial[s] = e.scoreRange(snap, query, positions[start:end], threshold)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var total int
	for _, p := range partial {
		total += len(p)
	}
	merged := make([]scoredTerm, 0, total)
	for _, p := range partial {
		merged = append(merged, p...)
	}
	return merged, nil
}

func (e *Engine) scoreRange(snap *Snapshot, query string, positions []uint32, threshold int) []scoredTerm {
	var out []scoredTerm
	for _, pos := range positions {
		candidate := snap.Terms[pos].NormalizedName
		score := e.scorer(query, candidate)
		if score >= threshold {
			out = append(out, scoredTerm{pos: pos, score: score, exact: candidate == query})
		}
	}
	return out
}

// rank orders matches by descending score, breaking ties by exact
// normalized equality, then shorter name, then lexical name, then term
// ID, so re-running a query yields byte-identical ordering.
func (e *Engine) rank(snap *Snapshot, matches []scoredTerm) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.exact != b.exact {
			return a.exact
		}
		na, nb := snap.Terms[a.pos].Name, snap.Terms[b.pos].Name
		if len(na) != len(nb) {
			return len(na) < len(nb)
		}
		if na != nb {
			return na < nb
		}
		return snap.Terms[a.pos].ID < snap.Terms[b.pos].ID
	})
}

func clampThreshold(t int) int {
	if t < 0 {
		return 0
	}
	if t > 100 {
		return 100
	}
	return t
}
