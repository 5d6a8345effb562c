// Package analytics aggregates try-it-out history into per-endpoint usage
// statistics.
package analytics

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const timestampLayout = "2006-01-02 15:04:05"

// Stats summarizes the executions of one endpoint and method
type Stats struct {
	EndpointID    string      `json:"endpointId"`
	Method        string      `json:"method"`
	TotalCalls    int         `json:"totalCalls"`
	SuccessCount  int         `json:"successCount"`
	ErrorCount    int         `json:"errorCount"`
	NetworkErrors int         `json:"networkErrors"` // status 0: DNS, refused, timeout
	RetriedCount  int         `json:"retriedCount"`
	AvgDurationMs float64     `json:"avgDurationMs"`
	MinDurationMs int64       `json:"minDurationMs"`
	MaxDurationMs int64       `json:"maxDurationMs"`
	StatusCodes   map[int]int `json:"statusCodes"`
	LastCalled    time.Time   `json:"lastCalled"`
}

// SuccessRate is the share of 2xx responses, 0 when nothing was called
func (s Stats) SuccessRate() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalCalls)
}

// Manager reads the history table of a migrated database
type Manager struct {
	db *sql.DB
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// StatsPerEndpoint returns one row per endpoint and method, most recently
// called first. An empty environment covers every environment.
func (m *Manager) StatsPerEndpoint(environment string) ([]Stats, error) {
	query := `
		WITH status_codes_agg AS (
			SELECT
				endpoint_id,
				method,
				json_group_object(CAST(response_status AS TEXT), count) AS status_codes_json
			FROM (
				SELECT endpoint_id, method, response_status, COUNT(*) AS count
				FROM history
				WHERE ? = '' OR environment = ?
				GROUP BY endpoint_id, method, response_status
			)
			GROUP BY endpoint_id, method
		)
		SELECT
			h.endpoint_id,
			h.method,
			COUNT(*) AS total_calls,
			SUM(CASE WHEN h.response_status >= 200 AND h.response_status < 300 THEN 1 ELSE 0 END) AS success_count,
			SUM(CASE WHEN h.response_status >= 400 THEN 1 ELSE 0 END) AS error_count,
			SUM(CASE WHEN h.response_status = 0 THEN 1 ELSE 0 END) AS network_errors,
			SUM(CASE WHEN h.retried THEN 1 ELSE 0 END) AS retried_count,
			AVG(h.duration_ms) AS avg_duration,
			MIN(h.duration_ms) AS min_duration,
			MAX(h.duration_ms) AS max_duration,
			MAX(h.timestamp) AS last_called,
			COALESCE(s.status_codes_json, '{}') AS status_codes_json
		FROM history h
		LEFT JOIN status_codes_agg s ON h.endpoint_id = s.endpoint_id AND h.method = s.method
		WHERE ? = '' OR h.environment = ?
		GROUP BY h.endpoint_id, h.method
		ORDER BY last_called DESC, h.endpoint_id
	`

	rows, err := m.db.Query(query, environment, environment, environment, environment)
	if err != nil {
		return nil, fmt.Errorf("failed to get endpoint stats: %w", err)
	}
	defer rows.Close()

	statsList := []Stats{}
	for rows.Next() {
		var (
			s               Stats
			lastCalled      sql.NullString
			statusCodesJSON string
		)

		err := rows.Scan(
			&s.EndpointID,
			&s.Method,
			&s.TotalCalls,
			&s.SuccessCount,
			&s.ErrorCount,
			&s.NetworkErrors,
			&s.RetriedCount,
			&s.AvgDurationMs,
			&s.MinDurationMs,
			&s.MaxDurationMs,
			&lastCalled,
			&statusCodesJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}

		if lastCalled.Valid {
			s.LastCalled = parseTimestamp(lastCalled.String)
		}

		s.StatusCodes, err = decodeStatusCodes(statusCodesJSON)
		if err != nil {
			return nil, err
		}

		statsList = append(statsList, s)
	}

	return statsList, rows.Err()
}

// decodeStatusCodes turns {"200": 3} into map[200]3
func decodeStatusCodes(raw string) (map[int]int, error) {
	var byText map[string]int
	if err := json.Unmarshal([]byte(raw), &byText); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status codes: %w", err)
	}
	codes := make(map[int]int, len(byText))
	for text, count := range byText {
		if code, err := strconv.Atoi(text); err == nil {
			codes[code] = count
		}
	}
	return codes, nil
}

// parseTimestamp reads the local time written by the history recorder
func parseTimestamp(value string) time.Time {
	if t, err := time.ParseInLocation(timestampLayout, value, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	return time.Time{}
}
