// Package recall retrieves similar historical disruption cases, persists
// finished events, and mines recurring risk patterns over the ledger.
//
// Retrieval runs one of two strategies, selected by a capability check at
// the start of each call rather than by exception-driven control flow:
// nearest-neighbor search over the similarity index when both the index
// and the embedder answer, else deterministic keyword scoring over the
// full history. Both paths produce the same output shape.
package recall

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"disruption-response/internal/embedding"
	"disruption-response/internal/ledger"
	"disruption-response/internal/vector"
	"disruption-response/pkg/errors"
)

// DefaultTopK bounds recall when the caller does not ask for a count.
const DefaultTopK = 3

// Keyword scoring rubric. Exact type match outweighs substring evidence.
const (
	scoreTypeExact      = 3
	scoreRegionInRegion = 3
	scoreRegionInDesc   = 2
	scoreTypeInDesc     = 1
)

// Case is one recalled historical event, flattened for the driver.
type Case struct {
	EventID       string   `json:"event_id"`
	Date          string   `json:"date"`
	Type          string   `json:"type"`
	Description   string   `json:"description"`
	WhatWorked    string   `json:"what_worked"`
	Outcome       string   `json:"outcome"`
	CostUSD       float64  `json:"cost_usd"`
	ActualLossUSD *float64 `json:"actual_loss_usd"`
	Lesson        string   `json:"lesson"`
}

// RecallResult is the ordered recall output, identical in shape for both
// retrieval strategies. Warning is set when the similarity index was
// configured but could not serve the query and recall fell back to
// keyword scoring; the recall itself still succeeded.
type RecallResult struct {
	QueryType   string              `json:"query_type"`
	QueryRegion string              `json:"query_region"`
	CasesFound  int                 `json:"similar_cases_found"`
	Cases       []Case              `json:"cases"`
	Summary     string              `json:"summary"`
	Source      string              `json:"source"`
	Warning     *errors.EngineError `json:"warning,omitempty"`
}

// Retrieval sources.
const (
	SourceIndex   = "similarity_index"
	SourceKeyword = "keyword"
)

// Engine is the memory recall engine. It is stateless across calls except
// for the underlying ledger; recall never mutates the ledger.
type Engine struct {
	store    ledger.Store
	index    *vector.Client
	embedder *embedding.Client
	loggedBy string
	now      func() time.Time
}

// NewEngine builds a recall engine over the given ledger. index and
// embedder may be nil; the engine degrades to keyword retrieval.
func NewEngine(store ledger.Store, index *vector.Client, embedder *embedding.Client) *Engine {
	return &Engine{
		store:    store,
		index:    index,
		embedder: embedder,
		loggedBy: "Supply Chain Resilience Engine",
		now:      time.Now,
	}
}

// RetrieveSimilar returns up to topK historical cases similar to the given
// disruption type and region, most similar first.
func (e *Engine) RetrieveSimilar(ctx context.Context, disruptionType, region string, topK int) (*RecallResult, error) {
	if disruptionType == "" && region == "" {
		return nil, errors.NewInvalidInputError("disruption type and region are both empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	// Capability check once, then branch. The index path bails to the
	// keyword path on any failure; collaborator trouble is reported as a
	// warning on the result, never as a failure of the recall itself.
	if e.index.Available() && e.embedder.Available() {
		result, indexErr := e.retrieveFromIndex(ctx, disruptionType, region, topK)
		if indexErr == nil {
			return result, nil
		}
		result, err := e.retrieveByKeyword(ctx, disruptionType, region, topK)
		if err != nil {
			return nil, err
		}
		result.Warning = errors.NewCollaboratorUnavailableError("similarity index", indexErr)
		return result, nil
	}
	return e.retrieveByKeyword(ctx, disruptionType, region, topK)
}

func (e *Engine) retrieveFromIndex(ctx context.Context, disruptionType, region string, topK int) (*RecallResult, error) {
	queryVec, err := e.embedder.Embed(disruptionType + " " + region)
	if err != nil {
		return nil, err
	}
	if err := e.index.EnsureCollection(); err != nil {
		return nil, err
	}

	count, err := e.index.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		if err := e.backfill(ctx); err != nil {
			return nil, err
		}
	}

	hits, err := e.index.Search(queryVec, topK)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("index returned no hits")
	}

	cases := make([]Case, 0, len(hits))
	for _, hit := range hits {
		cases = append(cases, caseFromEvent(hit.Payload))
	}
	return &RecallResult{
		QueryType:   disruptionType,
		QueryRegion: region,
		CasesFound:  len(cases),
		Cases:       cases,
		Summary:     summarize(cases),
		Source:      SourceIndex,
	}, nil
}

// backfill lazily indexes the full ledger the first time the index is
// found empty. Reads only; the ledger itself is untouched.
func (e *Engine) backfill(ctx context.Context) error {
	history, err := e.store.All(ctx)
	if err != nil {
		return err
	}
	points := make([]vector.Point, 0, len(history))
	for _, ev := range history {
		text := ev.SearchText()
		if text == "" {
			continue
		}
		vec, err := e.embedder.Embed(text)
		if err != nil {
			return err
		}
		points = append(points, vector.Point{ID: ev.EventID, Vector: vec, Payload: ev})
	}
	return e.index.Upsert(points)
}

func (e *Engine) retrieveByKeyword(ctx context.Context, disruptionType, region string, topK int) (*RecallResult, error) {
	history, err := e.store.All(ctx)
	if err != nil {
		return nil, errors.NewPersistenceError(err)
	}

	type scored struct {
		ev    ledger.Event
		score int
	}
	matches := make([]scored, 0, len(history))
	for _, ev := range history {
		if s := keywordScore(ev, disruptionType, region); s > 0 {
			matches = append(matches, scored{ev: ev, score: s})
		}
	}
	// Stable: equal scores keep ledger (append) order.
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > topK {
		matches = matches[:topK]
	}

	cases := make([]Case, 0, len(matches))
	for _, m := range matches {
		cases = append(cases, caseFromEvent(m.ev))
	}
	return &RecallResult{
		QueryType:   disruptionType,
		QueryRegion: region,
		CasesFound:  len(cases),
		Cases:       cases,
		Summary:     summarize(cases),
		Source:      SourceKeyword,
	}, nil
}

func keywordScore(ev ledger.Event, disruptionType, region string) int {
	evType := strings.ToLower(ev.Type)
	evRegion := strings.ToLower(ev.Region)
	evDesc := strings.ToLower(ev.Description)
	qType := strings.ToLower(disruptionType)
	qRegion := strings.ToLower(region)

	score := 0
	if qType != "" && evType == qType {
		score += scoreTypeExact
	}
	if qRegion != "" && strings.Contains(evRegion, qRegion) {
		score += scoreRegionInRegion
	}
	if qRegion != "" && strings.Contains(evDesc, qRegion) {
		score += scoreRegionInDesc
	}
	if qType != "" && strings.Contains(evDesc, qType) {
		score += scoreTypeInDesc
	}
	return score
}

func caseFromEvent(ev ledger.Event) Case {
	return Case{
		EventID:       ev.EventID,
		Date:          ev.Date,
		Type:          ev.Type,
		Description:   ev.Description,
		WhatWorked:    ev.MitigationTaken.Action,
		Outcome:       ev.MitigationTaken.Outcome,
		CostUSD:       ev.MitigationTaken.CostUSD,
		ActualLossUSD: ev.Impact.ActualRevenueLostUSD,
		Lesson:        ev.LessonsLearned,
	}
}

func summarize(cases []Case) string {
	if len(cases) == 0 {
		return "No closely matching historical disruptions found. Proceeding without precedent."
	}
	first := cases[0]
	return fmt.Sprintf("Found %d similar past disruption(s). Most recent: %s - '%s' resulted in: %s.",
		len(cases), first.Date, first.WhatWorked, first.Outcome)
}
