package services

import (
	"context"
	"fmt"
	"strings"

	"proplookup/config"
	"proplookup/models"
	"proplookup/storage"
)

// AgencyService manages the agency book, pipelines, and connector
// catalog.
type AgencyService struct {
	store *storage.PostgresStore
}

func NewAgencyService(store *storage.PostgresStore) *AgencyService {
	return &AgencyService{store: store}
}

// ResolveByKey finds an agency by any of its configured keys.
func (s *AgencyService) ResolveByKey(ctx context.Context, key string) (*models.Agency, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("agency key is required")
	}
	ag, err := s.store.GetAgencyByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if ag == nil {
		return nil, fmt.Errorf("unknown agency key %q", key)
	}
	return ag, nil
}

func (s *AgencyService) List(ctx context.Context) ([]models.Agency, error) {
	return s.store.ListAgencies(ctx)
}

func (s *AgencyService) Save(ctx context.Context, ag *models.Agency) error {
	if ag.UniqueKey == "" {
		return fmt.Errorf("agency %q has no unique key", ag.Name)
	}
	if ag.Name == "" {
		return fmt.Errorf("agency %q has no name", ag.UniqueKey)
	}
	return s.store.UpsertAgency(ctx, ag)
}

func (s *AgencyService) Delete(ctx context.Context, id int64) error {
	return s.store.DeleteAgency(ctx, id)
}

// GroupedListings reads the agency's stored snapshot with the query
// filters applied.
func (s *AgencyService) GroupedListings(ctx context.Context, key string, filter storage.GroupFilter) (*models.Agency, []models.ListingGroup, error) {
	ag, err := s.ResolveByKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}
	groups, err := s.store.GetAgencyGroups(ctx, ag.Name, filter)
	if err != nil {
		return nil, nil, err
	}
	return ag, groups, nil
}

// ParseSources turns a comma-separated source list into the filter set
// the fetch layer expects. Empty input means no filter.
func ParseSources(raw string) map[string]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	set := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		code := strings.ToLower(strings.TrimSpace(part))
		if code != "" {
			set[code] = true
		}
	}
	if len(set) == 0 {
		return nil
	}
	return set
}

// SeedFromConfig upserts the YAML-defined agencies so a fresh database
// starts with the configured agency book.
func (s *AgencyService) SeedFromConfig(ctx context.Context, seeds map[string]*config.AgencySeed) error {
	for _, seed := range seeds {
		ag := &models.Agency{
			Name:          seed.Name,
			Address:       seed.Address,
			Site:          seed.Site,
			SiteName:      seed.SiteName,
			SitePrefix:    seed.SitePrefix,
			MyHomeAPIKey:  seed.MyHomeAPIKey,
			MyHomeGroupID: seed.MyHomeGroupID,
			DaftAPIKey:    seed.DaftAPIKey,
			UniqueKey:     seed.UniqueKey,
			PrimarySource: seed.PrimarySource,
			WordPressURL:  seed.WordPressURL,
		}
		if err := s.Save(ctx, ag); err != nil {
			return fmt.Errorf("seed agency %s: %w", seed.UniqueKey, err)
		}
	}
	return nil
}

// SeedConnectors installs the built-in connector catalog.
func (s *AgencyService) SeedConnectors(ctx context.Context) error {
	builtin := []models.Connector{
		{
			Name:         "MyHome",
			ConfigFields: []string{"myhome_api_key", "myhome_group_id"},
			Description:  "MyHome.ie agent search API",
			Type:         models.ConnectorIn,
		},
		{
			Name:         "Acquaint",
			ConfigFields: []string{"site_prefix"},
			Description:  "Acquaint CRM standard XML datafeed",
			Type:         models.ConnectorIn,
		},
		{
			Name:         "Daft",
			ConfigFields: []string{"daft_api_key"},
			Description:  "Daft via the 4PM property API",
			Type:         models.ConnectorIn,
		},
		{
			Name:         "WordPress",
			ConfigFields: []string{"wordpress_url"},
			Description:  "WordPress property post-type REST feed",
			Type:         models.ConnectorIn,
		},
		{
			Name:         "Webhook",
			ConfigFields: []string{"url"},
			Description:  "Push grouped snapshots to a downstream URL",
			Type:         models.ConnectorOut,
		},
	}

	for i := range builtin {
		if err := s.store.UpsertConnector(ctx, &builtin[i]); err != nil {
			return fmt.Errorf("seed connector %s: %w", builtin[i].Name, err)
		}
	}
	return nil
}

func (s *AgencyService) Pipelines(ctx context.Context) ([]models.Pipeline, error) {
	return s.store.ListPipelines(ctx)
}

func (s *AgencyService) CreatePipeline(ctx context.Context, p *models.Pipeline) error {
	if p.Name == "" {
		return fmt.Errorf("pipeline has no name")
	}
	return s.store.CreatePipeline(ctx, p)
}

func (s *AgencyService) DeletePipeline(ctx context.Context, id int64) error {
	return s.store.DeletePipeline(ctx, id)
}

func (s *AgencyService) Connectors(ctx context.Context) ([]models.Connector, error) {
	return s.store.ListConnectors(ctx)
}
