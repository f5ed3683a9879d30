package database

import (
	"database/sql"
	"fmt"
)

func (s *MySql) prepareStmt(name, query string) (*sql.Stmt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stmt, ok := s.statements[name]; ok {
		return stmt, nil
	}

	stmt, err := s.db.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("prepare statement [%s]: %w", name, err)
	}

	s.statements[name] = stmt
	return stmt, nil
}

func (s *MySql) closeStmt() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name, stmt := range s.statements {
		_ = stmt.Close()
		delete(s.statements, name)
	}
}

func (s *MySql) stmtSelectCelebrantsByDate() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT
			id,
			name,
			event_type,
			event_date,
			year,
			spouse,
			contact_handle,
			active,
			created_at,
			updated_at
		 FROM %scelebrant
		 WHERE event_date = ? AND active = TRUE
		 ORDER BY id`,
		s.prefix,
	)
	return s.prepareStmt("selectCelebrantsByDate", query)
}

func (s *MySql) stmtSelectCelebrants() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT
			id,
			name,
			event_type,
			event_date,
			year,
			spouse,
			contact_handle,
			active,
			created_at,
			updated_at
		 FROM %scelebrant
		 ORDER BY id
		 LIMIT ? OFFSET ?`,
		s.prefix,
	)
	return s.prepareStmt("selectCelebrants", query)
}

func (s *MySql) stmtCountCelebrants() (*sql.Stmt, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %scelebrant`, s.prefix)
	return s.prepareStmt("countCelebrants", query)
}

func (s *MySql) stmtSelectCelebrantByKey() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT id FROM %scelebrant WHERE name = ? AND event_type = ?`,
		s.prefix,
	)
	return s.prepareStmt("selectCelebrantByKey", query)
}

func (s *MySql) stmtInsertCelebrant() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`INSERT INTO %scelebrant
			(name, event_type, event_date, year, spouse, contact_handle, active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.prefix,
	)
	return s.prepareStmt("insertCelebrant", query)
}

func (s *MySql) stmtUpdateCelebrant() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`UPDATE %scelebrant SET
			event_date = ?,
			year = ?,
			spouse = ?,
			contact_handle = ?,
			active = ?
		 WHERE id = ?`,
		s.prefix,
	)
	return s.prepareStmt("updateCelebrant", query)
}

func (s *MySql) stmtInsertMessageLog() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`INSERT INTO %smessage_log
			(celebrant_id, message_content, sent_date, success, error_message)
		 VALUES (?, ?, ?, ?, ?)`,
		s.prefix,
	)
	return s.prepareStmt("insertMessageLog", query)
}

func (s *MySql) stmtInsertCSVUpload() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`INSERT INTO %scsv_upload
			(filename, records_processed, records_added, records_updated, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.prefix,
	)
	return s.prepareStmt("insertCSVUpload", query)
}

func (s *MySql) stmtSelectRateLimit() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`SELECT
			identity,
			request_count,
			window_start,
			last_request_time
		 FROM %srate_limit
		 WHERE identity = ?`,
		s.prefix,
	)
	return s.prepareStmt("selectRateLimit", query)
}

func (s *MySql) stmtInsertRateLimit() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`INSERT INTO %srate_limit
			(identity, request_count, window_start, last_request_time)
		 VALUES (?, 1, ?, ?)`,
		s.prefix,
	)
	return s.prepareStmt("insertRateLimit", query)
}

func (s *MySql) stmtUpdateRateLimit() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`UPDATE %srate_limit SET
			request_count = ?,
			window_start = ?,
			last_request_time = ?
		 WHERE identity = ?`,
		s.prefix,
	)
	return s.prepareStmt("updateRateLimit", query)
}

func (s *MySql) stmtDeleteRateLimits() (*sql.Stmt, error) {
	query := fmt.Sprintf(
		`DELETE FROM %srate_limit WHERE last_request_time < ?`,
		s.prefix,
	)
	return s.prepareStmt("deleteRateLimits", query)
}
