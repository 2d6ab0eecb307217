package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"proplookup/feeds"
	"proplookup/models"
	"proplookup/pipeline"
	"proplookup/storage"
)

// AggregateService runs the full refresh cycle for an agency: fetch the
// raw feeds, normalize, group across sources, and swap the stored
// snapshot.
type AggregateService struct {
	store  *storage.PostgresStore
	ops    *storage.SQLiteStore
	client *feeds.Client
}

func NewAggregateService(store *storage.PostgresStore, ops *storage.SQLiteStore, client *feeds.Client) *AggregateService {
	return &AggregateService{
		store:  store,
		ops:    ops,
		client: client,
	}
}

// RefreshStats summarizes one agency refresh.
type RefreshStats struct {
	AgencyName    string
	ListingsFound int
	GroupsBuilt   int
	DupeGroups    int
	SourceErrors  []feeds.SourceError
}

// RefreshAgency fetches, normalizes, and groups one agency's listings,
// then replaces its stored snapshot. A run row tracks the outcome; feed
// errors make the run partial rather than failed as long as at least one
// source answered.
func (s *AggregateService) RefreshAgency(ctx context.Context, ag *models.Agency, sources map[string]bool) (*RefreshStats, error) {
	run := &models.ImportRun{
		AgencyName: ag.Name,
		Source:     sourcesLabel(sources),
		Status:     models.RunStatusRunning,
		StartedAt:  time.Now(),
	}
	runID, err := s.ops.CreateRun(run)
	if err != nil {
		log.Printf("Warning: failed to create run row: %v", err)
	}
	run.ID = runID

	stats, refreshErr := s.refresh(ctx, ag, sources, &runID)

	now := time.Now()
	run.FinishedAt = &now
	if stats != nil {
		run.ListingsFound = stats.ListingsFound
		run.GroupsBuilt = stats.GroupsBuilt
		run.ErrorsCount = len(stats.SourceErrors)
	}
	switch {
	case refreshErr != nil:
		run.Status = models.RunStatusFailed
		run.Message = refreshErr.Error()
	case stats != nil && len(stats.SourceErrors) > 0:
		run.Status = models.RunStatusPartial
		run.Message = joinSourceErrors(stats.SourceErrors)
	default:
		run.Status = models.RunStatusCompleted
	}
	if err := s.ops.UpdateRun(run); err != nil {
		log.Printf("Warning: failed to update run row: %v", err)
	}

	return stats, refreshErr
}

func (s *AggregateService) refresh(ctx context.Context, ag *models.Agency, sources map[string]bool, runID *int64) (*RefreshStats, error) {
	records, sourceErrs := s.client.FetchAgency(ctx, ag, sources)
	for _, se := range sourceErrs {
		log.Printf("Refresh %s: %s feed failed: %s", ag.Name, se.Source, se.Err)
		s.ops.Log(runID, models.LogWarn, se.Error(), ag.UniqueKey)
	}
	if len(records) == 0 && len(sourceErrs) > 0 {
		return &RefreshStats{AgencyName: ag.Name, SourceErrors: sourceErrs},
			fmt.Errorf("all feeds failed for %s", ag.Name)
	}

	listings := pipeline.NormalizeAll(records, ag.Hint())
	groups := pipeline.Group(listings)

	if err := s.store.ReplaceAgencyGroups(ctx, ag.Name, groups); err != nil {
		return &RefreshStats{AgencyName: ag.Name, ListingsFound: len(listings), SourceErrors: sourceErrs},
			fmt.Errorf("store snapshot: %w", err)
	}
	if err := s.store.SetAgencyTotal(ctx, ag.Name, len(groups)); err != nil {
		log.Printf("Warning: failed to update agency total: %v", err)
	}

	stats := &RefreshStats{
		AgencyName:    ag.Name,
		ListingsFound: len(listings),
		GroupsBuilt:   len(groups),
		SourceErrors:  sourceErrs,
	}
	for _, g := range groups {
		if g.Count() > 1 {
			stats.DupeGroups++
		}
	}

	log.Printf("Refresh %s: %d listings -> %d groups (%d cross-source)",
		ag.Name, stats.ListingsFound, stats.GroupsBuilt, stats.DupeGroups)
	s.ops.Log(runID, models.LogInfo,
		fmt.Sprintf("%d listings, %d groups, %d duplicates", stats.ListingsFound, stats.GroupsBuilt, stats.DupeGroups),
		ag.UniqueKey)

	return stats, nil
}

// RefreshAll refreshes every agency in turn. One agency failing does not
// stop the cycle.
func (s *AggregateService) RefreshAll(ctx context.Context) error {
	agencies, err := s.store.ListAgencies(ctx)
	if err != nil {
		return fmt.Errorf("list agencies: %w", err)
	}

	var failures int
	for i := range agencies {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := s.RefreshAgency(ctx, &agencies[i], nil); err != nil {
			log.Printf("Refresh failed for %s: %v", agencies[i].Name, err)
			failures++
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d agencies failed", failures, len(agencies))
	}
	return nil
}

// LiveFetch fetches and groups without touching the store. Used for the
// on-demand lookup path where the caller wants fresh data and the
// per-source errors.
func (s *AggregateService) LiveFetch(ctx context.Context, ag *models.Agency, sources map[string]bool) ([]models.ListingGroup, []feeds.SourceError) {
	records, sourceErrs := s.client.FetchAgency(ctx, ag, sources)
	listings := pipeline.NormalizeAll(records, ag.Hint())
	return pipeline.Group(listings), sourceErrs
}

func sourcesLabel(sources map[string]bool) string {
	if len(sources) == 0 {
		return "all"
	}
	var codes []string
	for code, on := range sources {
		if on {
			codes = append(codes, code)
		}
	}
	if len(codes) == 0 {
		return "all"
	}
	sort.Strings(codes)
	return strings.Join(codes, ",")
}

func joinSourceErrors(errs []feeds.SourceError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
