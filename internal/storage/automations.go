package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/semantest/replay/internal/automation"
)

// timeLayout preserves sub-second precision so an export/import round trip
// reproduces timestamps exactly.
const timeLayout = time.RFC3339Nano

// automationColumns is the column list shared by every SELECT.
const automationColumns = `
	id, event_type, action, website, parameters, script, templated_script,
	recorded_at, last_used, use_count, actions_count, recording_duration_ms,
	confidence, user_notes, url_pattern, domain_pattern, exact_parameters,
	context_patterns, version
`

// Save upserts an automation keyed by id.
func (s *SQLiteStore) Save(a *automation.StoredAutomation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	params, err := json.Marshal(a.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	exactParams, err := json.Marshal(a.Matching.ExactParameters)
	if err != nil {
		return fmt.Errorf("failed to marshal exact parameters: %w", err)
	}

	var contextPatterns any
	if a.Matching.ContextPatterns != nil {
		data, err := json.Marshal(a.Matching.ContextPatterns)
		if err != nil {
			return fmt.Errorf("failed to marshal context patterns: %w", err)
		}
		contextPatterns = string(data)
	}

	var lastUsed any
	if a.Metadata.LastUsed != nil {
		lastUsed = a.Metadata.LastUsed.Format(timeLayout)
	}

	query := `
		INSERT INTO automations (` + automationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			event_type = excluded.event_type,
			action = excluded.action,
			website = excluded.website,
			parameters = excluded.parameters,
			script = excluded.script,
			templated_script = excluded.templated_script,
			recorded_at = excluded.recorded_at,
			last_used = excluded.last_used,
			use_count = excluded.use_count,
			actions_count = excluded.actions_count,
			recording_duration_ms = excluded.recording_duration_ms,
			confidence = excluded.confidence,
			user_notes = excluded.user_notes,
			url_pattern = excluded.url_pattern,
			domain_pattern = excluded.domain_pattern,
			exact_parameters = excluded.exact_parameters,
			context_patterns = excluded.context_patterns,
			version = excluded.version
	`

	_, err = s.db.Exec(query,
		a.ID,
		a.EventType,
		a.Action,
		a.Website,
		string(params),
		a.Script,
		a.TemplatedScript,
		a.Metadata.RecordedAt.Format(timeLayout),
		lastUsed,
		a.Metadata.UseCount,
		a.Metadata.ActionsCount,
		a.Metadata.RecordingDurationMs,
		a.Metadata.Confidence,
		a.Metadata.UserNotes,
		a.Matching.URLPattern,
		a.Matching.DomainPattern,
		string(exactParams),
		contextPatterns,
		a.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save automation %s: %w", a.ID, err)
	}

	return nil
}

// FindMatching reads candidates through the most specific applicable index,
// then refines and ranks them through the shared pipeline.
func (s *SQLiteStore) FindMatching(c automation.SearchCriteria) ([]*automation.StoredAutomation, error) {
	where := ""
	var args []any

	switch selectIndex(c) {
	case idxActionWebsite:
		where = "WHERE action = ? AND website = ?"
		args = []any{c.Action, c.Website}
	case idxAction:
		where = "WHERE action = ?"
		args = []any{c.Action}
	case idxWebsite:
		where = "WHERE website = ?"
		args = []any{c.Website}
	case idxEventType:
		where = "WHERE event_type = ?"
		args = []any{c.EventType}
	}

	s.mu.Lock()
	rows, err := s.db.Query("SELECT "+automationColumns+" FROM automations "+where, args...)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to query automations: %w", err)
	}

	candidates, err := scanAutomations(rows)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return refineAndRank(candidates, c), nil
}

// GetByID returns the automation or ErrNotFound.
func (s *SQLiteStore) GetByID(id string) (*automation.StoredAutomation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow("SELECT "+automationColumns+" FROM automations WHERE id = ?", id)

	a, err := scanAutomation(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load automation %s: %w", id, err)
	}
	return a, nil
}

// UpdateUsage records a successful reuse in a single UPDATE statement, so
// concurrent reuses of the same id never lose an increment.
func (s *SQLiteStore) UpdateUsage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE automations
		SET last_used = ?,
		    use_count = use_count + 1,
		    confidence = MIN(1.0, confidence + ?)
		WHERE id = ?
	`, time.Now().Format(timeLayout), UsageNudge, id)
	if err != nil {
		return fmt.Errorf("failed to update usage for %s: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check usage update for %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByID removes one automation; unknown ids are a no-op.
func (s *SQLiteStore) DeleteByID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM automations WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete automation %s: %w", id, err)
	}
	return nil
}

// Clear removes every automation.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM automations"); err != nil {
		return fmt.Errorf("failed to clear automations: %w", err)
	}
	return nil
}

// ExportAll returns every stored automation. Rows are scanned into fresh
// structs, so callers always receive independent copies.
func (s *SQLiteStore) ExportAll() ([]*automation.StoredAutomation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT " + automationColumns + " FROM automations")
	if err != nil {
		return nil, fmt.Errorf("failed to export automations: %w", err)
	}

	return scanAutomations(rows)
}

// Import upserts each record by id after checking schema versions.
func (s *SQLiteStore) Import(list []*automation.StoredAutomation) error {
	if err := checkImportVersions(list); err != nil {
		return err
	}

	for _, a := range list {
		if err := s.Save(a); err != nil {
			return err
		}
	}
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanAutomation.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanAutomation reads one automations row into a StoredAutomation.
func scanAutomation(row rowScanner) (*automation.StoredAutomation, error) {
	var (
		a               automation.StoredAutomation
		params          string
		exactParams     string
		recordedAt      string
		lastUsed        sql.NullString
		userNotes       sql.NullString
		urlPattern      sql.NullString
		domainPattern   sql.NullString
		contextPatterns sql.NullString
	)

	if err := row.Scan(
		&a.ID,
		&a.EventType,
		&a.Action,
		&a.Website,
		&params,
		&a.Script,
		&a.TemplatedScript,
		&recordedAt,
		&lastUsed,
		&a.Metadata.UseCount,
		&a.Metadata.ActionsCount,
		&a.Metadata.RecordingDurationMs,
		&a.Metadata.Confidence,
		&userNotes,
		&urlPattern,
		&domainPattern,
		&exactParams,
		&contextPatterns,
		&a.Version,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(params), &a.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	if err := json.Unmarshal([]byte(exactParams), &a.Matching.ExactParameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal exact parameters: %w", err)
	}
	if contextPatterns.Valid {
		if err := json.Unmarshal([]byte(contextPatterns.String), &a.Matching.ContextPatterns); err != nil {
			return nil, fmt.Errorf("failed to unmarshal context patterns: %w", err)
		}
	}

	t, err := time.Parse(timeLayout, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse recorded_at: %w", err)
	}
	a.Metadata.RecordedAt = t

	if lastUsed.Valid {
		t, err := time.Parse(timeLayout, lastUsed.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse last_used: %w", err)
		}
		a.Metadata.LastUsed = &t
	}

	a.Metadata.UserNotes = userNotes.String
	a.Matching.URLPattern = urlPattern.String
	a.Matching.DomainPattern = domainPattern.String

	return &a, nil
}

// scanAutomations drains a result set, closing it when done.
func scanAutomations(rows *sql.Rows) ([]*automation.StoredAutomation, error) {
	defer rows.Close()

	var out []*automation.StoredAutomation
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate automations: %w", err)
	}
	return out, nil
}
