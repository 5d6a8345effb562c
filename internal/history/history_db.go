package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/studiowebux/docportal/internal/migrations"
	"github.com/studiowebux/docportal/internal/types"
)

const timestampLayout = "2006-01-02 15:04:05"

// Manager stores try-it-out executions in SQLite
type Manager struct {
	db *sql.DB
}

// NewManager opens (and migrates) the history database at dbPath
func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

// DB exposes the connection so other components can share the file
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Record saves one execution
func (m *Manager) Record(entry types.HistoryEntry) error {
	headersJSON, err := json.Marshal(entry.Headers)
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}

	responseHeadersJSON, err := json.Marshal(entry.ResponseHeaders)
	if err != nil {
		return fmt.Errorf("failed to marshal response headers: %w", err)
	}

	timestamp := time.Now()
	if entry.Timestamp != "" {
		if parsed, err := time.Parse(time.RFC3339, entry.Timestamp); err == nil {
			timestamp = parsed
		}
	}

	query := `
		INSERT INTO history (
			timestamp, endpoint_id, environment, method, url, headers, body,
			response_status, response_status_text, response_headers, response_body,
			duration_ms, retried, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = m.db.Exec(query,
		timestamp.Local().Format(timestampLayout),
		entry.EndpointID,
		entry.Environment,
		entry.Method,
		entry.URL,
		string(headersJSON),
		entry.Body,
		entry.ResponseStatus,
		entry.ResponseStatusText,
		string(responseHeadersJSON),
		entry.ResponseBody,
		entry.Duration,
		entry.Retried,
		entry.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save history entry: %w", err)
	}

	return nil
}

const selectColumns = `
	SELECT id, timestamp, endpoint_id, COALESCE(environment, ''), method, url, headers, body,
	       response_status, response_status_text, response_headers, response_body,
	       duration_ms, retried, error
	FROM history
`

// Load returns the newest entries first. limit <= 0 means no limit.
func (m *Manager) Load(limit int) ([]types.HistoryEntry, error) {
	rows, err := m.db.Query(selectColumns+" ORDER BY timestamp DESC, id DESC LIMIT ?", sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

// LoadForEndpoint returns the newest entries for one endpoint id
func (m *Manager) LoadForEndpoint(endpointID string, limit int) ([]types.HistoryEntry, error) {
	rows, err := m.db.Query(
		selectColumns+" WHERE endpoint_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?",
		endpointID, sqlLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for endpoint: %w", err)
	}
	defer rows.Close()

	return m.scanEntries(rows)
}

// sqlLimit maps "no limit" to SQLite's -1
func sqlLimit(limit int) int {
	if limit <= 0 {
		return -1
	}
	return limit
}

func (m *Manager) scanEntries(rows *sql.Rows) ([]types.HistoryEntry, error) {
	entries := []types.HistoryEntry{}

	for rows.Next() {
		var (
			entry               types.HistoryEntry
			timestamp           string
			headersJSON         string
			body                sql.NullString
			responseHeadersJSON string
			errorMsg            sql.NullString
		)

		err := rows.Scan(
			&entry.ID,
			&timestamp,
			&entry.EndpointID,
			&entry.Environment,
			&entry.Method,
			&entry.URL,
			&headersJSON,
			&body,
			&entry.ResponseStatus,
			&entry.ResponseStatusText,
			&responseHeadersJSON,
			&entry.ResponseBody,
			&entry.Duration,
			&entry.Retried,
			&errorMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}

		if err := json.Unmarshal([]byte(headersJSON), &entry.Headers); err != nil {
			entry.Headers = make(map[string]string)
		}
		if err := json.Unmarshal([]byte(responseHeadersJSON), &entry.ResponseHeaders); err != nil {
			entry.ResponseHeaders = make(map[string]string)
		}

		parsedTime, err := time.ParseInLocation(timestampLayout, timestamp, time.Local)
		if err != nil {
			parsedTime, err = time.Parse(time.RFC3339, timestamp)
			if err != nil {
				parsedTime = time.Now()
			}
		}

		entry.Timestamp = parsedTime.Format(time.RFC3339)
		entry.Body = body.String
		entry.Error = errorMsg.String

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Clear deletes every entry
func (m *Manager) Clear() error {
	_, err := m.db.Exec("DELETE FROM history")
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Delete removes one entry
func (m *Manager) Delete(id int64) error {
	_, err := m.db.Exec("DELETE FROM history WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	return nil
}

// GetCount returns the number of stored entries
func (m *Manager) GetCount() (int, error) {
	var count int
	err := m.db.QueryRow("SELECT COUNT(*) FROM history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get history count: %w", err)
	}
	return count, nil
}

// Close closes the database
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
