package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CmdRefreshNow    CommandType = "refresh_now"
	CmdRefreshAgency CommandType = "refresh_agency"
	CmdPause         CommandType = "pause"
	CmdResume        CommandType = "resume"
	CmdRunSiteCheck  CommandType = "run_sitecheck"
	CmdRunWPProbe    CommandType = "run_wp_probe"
)

type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

type CommandParams struct {
	AgencyKey string `json:"agency_key,omitempty"`
	Sources   string `json:"sources,omitempty"`
}
