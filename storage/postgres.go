package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"proplookup/models"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS agencies (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT DEFAULT '',
		logo TEXT DEFAULT '',
		site TEXT DEFAULT '',
		site_name TEXT DEFAULT '',
		site_prefix TEXT DEFAULT '',
		myhome_api_key TEXT DEFAULT '',
		myhome_group_id INTEGER DEFAULT 0,
		daft_api_key TEXT DEFAULT '',
		fourpm_branch_id INTEGER DEFAULT 0,
		unique_key TEXT UNIQUE NOT NULL,
		office_name TEXT DEFAULT '',
		primary_source TEXT DEFAULT '',
		wordpress_url TEXT DEFAULT '',
		total_properties INTEGER DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS pipelines (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT DEFAULT '',
		url TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS connectors (
		id BIGSERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL,
		config_fields TEXT[] DEFAULT '{}',
		description TEXT DEFAULT '',
		type TEXT DEFAULT 'IN'
	);

	CREATE TABLE IF NOT EXISTS listing_groups (
		id UUID PRIMARY KEY,
		agency_name TEXT NOT NULL,
		group_key TEXT NOT NULL,
		sources TEXT[] NOT NULL DEFAULT '{}',
		display_status TEXT DEFAULT '',
		variant_count INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS listing_variants (
		id UUID PRIMARY KEY,
		group_id UUID NOT NULL REFERENCES listing_groups(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		source TEXT DEFAULT '',
		listing JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_groups_agency ON listing_groups(agency_name, group_key);
	CREATE INDEX IF NOT EXISTS idx_variants_group ON listing_variants(group_id, position);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// =============================================================================
// Agencies
// =============================================================================

func (s *PostgresStore) UpsertAgency(ctx context.Context, a *models.Agency) error {
	query := `
		INSERT INTO agencies (
			name, address, logo, site, site_name, site_prefix,
			myhome_api_key, myhome_group_id, daft_api_key, fourpm_branch_id,
			unique_key, office_name, primary_source, wordpress_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (unique_key) DO UPDATE SET
			name = EXCLUDED.name,
			address = COALESCE(NULLIF(EXCLUDED.address, ''), agencies.address),
			logo = COALESCE(NULLIF(EXCLUDED.logo, ''), agencies.logo),
			site = COALESCE(NULLIF(EXCLUDED.site, ''), agencies.site),
			site_name = COALESCE(NULLIF(EXCLUDED.site_name, ''), agencies.site_name),
			site_prefix = COALESCE(NULLIF(EXCLUDED.site_prefix, ''), agencies.site_prefix),
			myhome_api_key = COALESCE(NULLIF(EXCLUDED.myhome_api_key, ''), agencies.myhome_api_key),
			myhome_group_id = COALESCE(NULLIF(EXCLUDED.myhome_group_id, 0), agencies.myhome_group_id),
			daft_api_key = COALESCE(NULLIF(EXCLUDED.daft_api_key, ''), agencies.daft_api_key),
			fourpm_branch_id = COALESCE(NULLIF(EXCLUDED.fourpm_branch_id, 0), agencies.fourpm_branch_id),
			office_name = COALESCE(NULLIF(EXCLUDED.office_name, ''), agencies.office_name),
			primary_source = COALESCE(NULLIF(EXCLUDED.primary_source, ''), agencies.primary_source),
			wordpress_url = COALESCE(NULLIF(EXCLUDED.wordpress_url, ''), agencies.wordpress_url),
			updated_at = NOW()
		RETURNING id`

	return s.pool.QueryRow(ctx, query,
		a.Name, a.Address, a.Logo, a.Site, a.SiteName, a.SitePrefix,
		a.MyHomeAPIKey, a.MyHomeGroupID, a.DaftAPIKey, a.FourPMBranchID,
		a.UniqueKey, a.OfficeName, a.PrimarySource, a.WordPressURL,
	).Scan(&a.ID)
}

const agencyColumns = `id, name, address, logo, site, site_name, site_prefix,
	myhome_api_key, myhome_group_id, daft_api_key, fourpm_branch_id,
	unique_key, office_name, primary_source, wordpress_url, total_properties,
	created_at, updated_at`

func scanAgency(row pgx.Row) (*models.Agency, error) {
	var a models.Agency
	err := row.Scan(
		&a.ID, &a.Name, &a.Address, &a.Logo, &a.Site, &a.SiteName, &a.SitePrefix,
		&a.MyHomeAPIKey, &a.MyHomeGroupID, &a.DaftAPIKey, &a.FourPMBranchID,
		&a.UniqueKey, &a.OfficeName, &a.PrimarySource, &a.WordPressURL, &a.TotalProperties,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetAgencyByKey looks an agency up by any of its keys: unique key,
// MyHome key, Daft key, site prefix, or site name.
func (s *PostgresStore) GetAgencyByKey(ctx context.Context, key string) (*models.Agency, error) {
	query := `
		SELECT ` + agencyColumns + `
		FROM agencies
		WHERE unique_key = $1 OR myhome_api_key = $1 OR daft_api_key = $1
			OR site_prefix = $1 OR site_name = $1
		LIMIT 1`
	return scanAgency(s.pool.QueryRow(ctx, query, key))
}

func (s *PostgresStore) GetAgencyByID(ctx context.Context, id int64) (*models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE id = $1`
	return scanAgency(s.pool.QueryRow(ctx, query, id))
}

func (s *PostgresStore) ListAgencies(ctx context.Context) ([]models.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies ORDER BY name`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []models.Agency
	for rows.Next() {
		a, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		agencies = append(agencies, *a)
	}
	return agencies, rows.Err()
}

func (s *PostgresStore) DeleteAgency(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM agencies WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) SetAgencyTotal(ctx context.Context, name string, total int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE agencies SET total_properties = $2, updated_at = NOW() WHERE name = $1`,
		name, total)
	return err
}

// =============================================================================
// Pipelines and connectors
// =============================================================================

func (s *PostgresStore) ListPipelines(ctx context.Context) ([]models.Pipeline, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, description, url FROM pipelines ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pipelines []models.Pipeline
	for rows.Next() {
		var p models.Pipeline
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.URL); err != nil {
			return nil, err
		}
		pipelines = append(pipelines, p)
	}
	return pipelines, rows.Err()
}

func (s *PostgresStore) CreatePipeline(ctx context.Context, p *models.Pipeline) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO pipelines (name, description, url) VALUES ($1, $2, $3) RETURNING id`,
		p.Name, p.Description, p.URL).Scan(&p.ID)
}

func (s *PostgresStore) DeletePipeline(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM pipelines WHERE id = $1`, id)
	return err
}

func (s *PostgresStore) ListConnectors(ctx context.Context) ([]models.Connector, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, config_fields, description, type FROM connectors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var connectors []models.Connector
	for rows.Next() {
		var c models.Connector
		if err := rows.Scan(&c.ID, &c.Name, &c.ConfigFields, &c.Description, &c.Type); err != nil {
			return nil, err
		}
		connectors = append(connectors, c)
	}
	return connectors, rows.Err()
}

func (s *PostgresStore) UpsertConnector(ctx context.Context, c *models.Connector) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO connectors (name, config_fields, description, type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET
			config_fields = EXCLUDED.config_fields,
			description = EXCLUDED.description,
			type = EXCLUDED.type
		RETURNING id`,
		c.Name, c.ConfigFields, c.Description, c.Type).Scan(&c.ID)
}

// =============================================================================
// Listing group snapshots
// =============================================================================

// ReplaceAgencyGroups swaps the agency's stored groups for a fresh
// snapshot in one transaction, so readers never see a half-imported
// state.
func (s *PostgresStore) ReplaceAgencyGroups(ctx context.Context, agencyName string, groups []models.ListingGroup) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM listing_groups WHERE agency_name = $1`, agencyName); err != nil {
		return fmt.Errorf("clear groups: %w", err)
	}

	for _, group := range groups {
		groupID := uuid.New()
		_, err := tx.Exec(ctx, `
			INSERT INTO listing_groups (id, agency_name, group_key, sources, display_status, variant_count)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			groupID, agencyName, group.AddressKey, group.SourceList, group.DisplayStatus, len(group.Variants))
		if err != nil {
			return fmt.Errorf("insert group %s: %w", group.AddressKey, err)
		}

		for i, variant := range group.Variants {
			payload, err := json.Marshal(variant)
			if err != nil {
				return fmt.Errorf("encode variant: %w", err)
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO listing_variants (id, group_id, position, source, listing)
				VALUES ($1, $2, $3, $4, $5)`,
				uuid.New(), groupID, i, variant.SourceCode, payload)
			if err != nil {
				return fmt.Errorf("insert variant: %w", err)
			}
		}
	}

	return tx.Commit(ctx)
}

// GroupFilter narrows a stored-group query. Zero values mean no filter.
type GroupFilter struct {
	OnlyDupes bool
	MinCount  int
	Sources   []string
	Limit     int
}

// GetAgencyGroups reads the agency's stored snapshot, most variants
// first, applying the filter.
func (s *PostgresStore) GetAgencyGroups(ctx context.Context, agencyName string, filter GroupFilter) ([]models.ListingGroup, error) {
	query := `
		SELECT id, group_key, sources, display_status
		FROM listing_groups
		WHERE agency_name = $1`
	args := []any{agencyName}

	minCount := filter.MinCount
	if filter.OnlyDupes && minCount < 2 {
		minCount = 2
	}
	if minCount > 0 {
		args = append(args, minCount)
		query += fmt.Sprintf(" AND variant_count >= $%d", len(args))
	}
	if len(filter.Sources) > 0 {
		args = append(args, filter.Sources)
		query += fmt.Sprintf(" AND sources && $%d", len(args))
	}
	query += " ORDER BY variant_count DESC, group_key"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type groupRow struct {
		id    uuid.UUID
		group models.ListingGroup
	}
	var groupRows []groupRow
	for rows.Next() {
		var gr groupRow
		if err := rows.Scan(&gr.id, &gr.group.AddressKey, &gr.group.SourceList, &gr.group.DisplayStatus); err != nil {
			return nil, err
		}
		groupRows = append(groupRows, gr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	groups := make([]models.ListingGroup, 0, len(groupRows))
	for _, gr := range groupRows {
		variants, err := s.groupVariants(ctx, gr.id)
		if err != nil {
			return nil, err
		}
		gr.group.Variants = variants
		groups = append(groups, gr.group)
	}
	return groups, nil
}

func (s *PostgresStore) groupVariants(ctx context.Context, groupID uuid.UUID) ([]models.NormalizedListing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT listing FROM listing_variants WHERE group_id = $1 ORDER BY position`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []models.NormalizedListing
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var listing models.NormalizedListing
		if err := json.Unmarshal(payload, &listing); err != nil {
			return nil, fmt.Errorf("decode variant: %w", err)
		}
		variants = append(variants, listing)
	}
	return variants, rows.Err()
}

// GroupCount returns the number of stored groups for an agency.
func (s *PostgresStore) GroupCount(ctx context.Context, agencyName string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM listing_groups WHERE agency_name = $1`, agencyName).Scan(&count)
	return count, err
}
