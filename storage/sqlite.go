package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"proplookup/models"
)

// SQLiteStore holds the daemon's operational state: import runs, their
// logs, and the command queue the dashboard writes into. Listing data
// itself lives in Postgres.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS import_runs (
		id INTEGER PRIMARY KEY,
		agency_name TEXT,
		source TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER,
		groups_built INTEGER,
		errors_count INTEGER,
		message TEXT
	);

	CREATE TABLE IF NOT EXISTS import_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		agency_key TEXT
	);

	CREATE TABLE IF NOT EXISTS commands (
		id INTEGER PRIMARY KEY,
		command TEXT,
		params JSON,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		processed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON import_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON import_logs(run_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_commands_pending ON commands(processed_at) WHERE processed_at IS NULL;
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.ImportRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO import_runs (agency_name, source, started_at, status, listings_found, groups_built, errors_count, message)
		VALUES (?, ?, ?, ?, 0, 0, 0, '')`,
		run.AgencyName, run.Source, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateRun(run *models.ImportRun) error {
	_, err := s.db.Exec(`
		UPDATE import_runs SET finished_at = ?, status = ?, listings_found = ?,
			groups_built = ?, errors_count = ?, message = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.GroupsBuilt,
		run.ErrorsCount, run.Message, run.ID)
	return err
}

// GetLastRun returns the most recently started run, or nil when none.
func (s *SQLiteStore) GetLastRun() (*models.ImportRun, error) {
	row := s.db.QueryRow(`
		SELECT id, agency_name, source, started_at, finished_at, status,
			listings_found, groups_built, errors_count, message
		FROM import_runs ORDER BY started_at DESC LIMIT 1`)

	var run models.ImportRun
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.AgencyName, &run.Source, &run.StartedAt, &finished,
		&run.Status, &run.ListingsFound, &run.GroupsBuilt, &run.ErrorsCount, &run.Message)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

func (s *SQLiteStore) GetRecentRuns(limit int) ([]models.ImportRun, error) {
	rows, err := s.db.Query(`
		SELECT id, agency_name, source, started_at, finished_at, status,
			listings_found, groups_built, errors_count, message
		FROM import_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ImportRun
	for rows.Next() {
		var run models.ImportRun
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.AgencyName, &run.Source, &run.StartedAt, &finished,
			&run.Status, &run.ListingsFound, &run.GroupsBuilt, &run.ErrorsCount, &run.Message); err != nil {
			return nil, err
		}
		if finished.Valid {
			run.FinishedAt = &finished.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, agencyKey string) error {
	_, err := s.db.Exec(`
		INSERT INTO import_logs (run_id, timestamp, level, message, agency_key)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, agencyKey)
	return err
}

func (s *SQLiteStore) EnqueueCommand(cmd models.CommandType, params *models.CommandParams) error {
	var raw []byte
	if params != nil {
		var err error
		raw, err = json.Marshal(params)
		if err != nil {
			return err
		}
	}
	_, err := s.db.Exec(`INSERT INTO commands (command, params) VALUES (?, ?)`, cmd, raw)
	return err
}

func (s *SQLiteStore) GetPendingCommands() ([]models.Command, error) {
	rows, err := s.db.Query(`
		SELECT id, command, params, created_at, processed_at
		FROM commands WHERE processed_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cmds []models.Command
	for rows.Next() {
		var cmd models.Command
		var params sql.NullString
		if err := rows.Scan(&cmd.ID, &cmd.Command, &params, &cmd.CreatedAt, &cmd.ProcessedAt); err != nil {
			return nil, err
		}
		if params.Valid {
			cmd.Params = json.RawMessage(params.String)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, rows.Err()
}

func (s *SQLiteStore) MarkCommandProcessed(id int64) error {
	_, err := s.db.Exec(`UPDATE commands SET processed_at = ? WHERE id = ?`, time.Now(), id)
	return err
}

func (s *SQLiteStore) ParseCommandParams(cmd *models.Command) (*models.CommandParams, error) {
	if cmd.Params == nil || string(cmd.Params) == "null" {
		return &models.CommandParams{}, nil
	}
	var params models.CommandParams
	if err := json.Unmarshal(cmd.Params, &params); err != nil {
		return nil, err
	}
	return &params, nil
}

// ResetAllData clears the operational tables. Used by the reset command
// before a full re-import.
func (s *SQLiteStore) ResetAllData() error {
	tables := []string{
		"import_logs",
		"import_runs",
		"commands",
	}

	for _, table := range tables {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	return nil
}
