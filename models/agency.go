package models

import "time"

// Agency is one estate agency with its provider integrations. The key
// fields mirror the dashboard backend: an agency is looked up by any of
// its keys when a feed refresh is requested.
type Agency struct {
	ID             int64     `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	Address        string    `json:"address" db:"address"`
	Logo           string    `json:"logo" db:"logo"`
	Site           string    `json:"site" db:"site"`
	SiteName       string    `json:"site_name" db:"site_name"`
	SitePrefix     string    `json:"site_prefix" db:"site_prefix"`
	MyHomeAPIKey   string    `json:"myhome_api_key" db:"myhome_api_key"`
	MyHomeGroupID  int       `json:"myhome_group_id" db:"myhome_group_id"`
	DaftAPIKey     string    `json:"daft_api_key" db:"daft_api_key"`
	FourPMBranchID int       `json:"fourpm_branch_id" db:"fourpm_branch_id"`
	UniqueKey      string    `json:"key" db:"unique_key"`
	OfficeName     string    `json:"office_name" db:"office_name"`
	PrimarySource  string    `json:"primary_source" db:"primary_source"`
	WordPressURL   string    `json:"wordpress_url" db:"wordpress_url"`
	TotalProperties int      `json:"total_properties" db:"total_properties"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// AcquaintPrefix returns the site prefix used for the Acquaint datafeed,
// whichever field it was configured in.
func (a *Agency) AcquaintPrefix() string {
	if a.SitePrefix != "" {
		return a.SitePrefix
	}
	return a.SiteName
}

// Hint exposes the integration flags the normalizer uses as a source
// tie-breaker.
func (a *Agency) Hint() AgencyHint {
	return AgencyHint{
		HasMyHomeKey:      a.MyHomeAPIKey != "",
		HasAcquaintPrefix: a.AcquaintPrefix() != "",
	}
}

// MatchesKey reports whether any of the agency's keys equals the given
// lookup key.
func (a *Agency) MatchesKey(key string) bool {
	if key == "" {
		return false
	}
	return a.UniqueKey == key ||
		a.MyHomeAPIKey == key ||
		a.DaftAPIKey == key ||
		a.SitePrefix == key ||
		a.SiteName == key
}

// Connector directions.
const (
	ConnectorIn  = "IN"
	ConnectorOut = "OUT"
)

// Connector describes one feed integration type and the config fields it
// requires.
type Connector struct {
	ID           int64    `json:"id" db:"id"`
	Name         string   `json:"name" db:"name"`
	ConfigFields []string `json:"connector_config_fields" db:"connector_config_fields"`
	Description  string   `json:"description" db:"description"`
	Type         string   `json:"type" db:"type"`
}

// Pipeline is a named downstream push target.
type Pipeline struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	URL         string `json:"pipelineURL" db:"url"`
}
