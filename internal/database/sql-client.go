package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"churchhelper/entity"
	"churchhelper/internal/config"
	"churchhelper/internal/lib/sl"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

type MySql struct {
	db         *sql.DB
	prefix     string
	statements map[string]*sql.Stmt
	mu         sync.Mutex
	log        *slog.Logger
}

func NewSQLClient(conf *config.Config, log *slog.Logger) (*MySql, error) {
	if !conf.SQL.Enabled {
		return nil, fmt.Errorf("SQL client is disabled in configuration")
	}
	connectionURI := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		conf.SQL.UserName, conf.SQL.Password, conf.SQL.HostName, conf.SQL.Port, conf.SQL.Database)
	db, err := sql.Open("mysql", connectionURI)
	if err != nil {
		return nil, fmt.Errorf("sql connect: %w", err)
	}

	// try ping three times with 30 seconds interval; wait for database to start
	for i := 0; i < 3; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		if i == 2 {
			return nil, fmt.Errorf("ping database: %w", err)
		}
		time.Sleep(30 * time.Second)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &MySql{
		db:         db,
		prefix:     conf.SQL.Prefix,
		statements: make(map[string]*sql.Stmt),
		log:        log,
	}

	if err = sdb.ensureTables(); err != nil {
		return nil, err
	}

	return sdb, nil
}

func (s *MySql) ensureTables() error {
	tables := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %scelebrant (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			event_type VARCHAR(20) NOT NULL,
			event_date VARCHAR(5) NOT NULL,
			year INT NOT NULL DEFAULT 0,
			spouse VARCHAR(255) NOT NULL DEFAULT '',
			contact_handle VARCHAR(32) NOT NULL DEFAULT '',
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			UNIQUE KEY uq_celebrant (name, event_type),
			KEY idx_event_date (event_date, active)
		)`, s.prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %smessage_log (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			celebrant_id BIGINT NOT NULL,
			message_content TEXT NOT NULL,
			sent_date DATE NOT NULL,
			success BOOLEAN NOT NULL,
			error_message TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			KEY idx_celebrant (celebrant_id, sent_date)
		)`, s.prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %srate_limit (
			identity VARCHAR(64) PRIMARY KEY,
			request_count INT NOT NULL DEFAULT 1,
			window_start DATETIME NOT NULL,
			last_request_time DATETIME NOT NULL
		)`, s.prefix),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %scsv_upload (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			upload_date TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			records_processed INT NOT NULL,
			records_added INT NOT NULL,
			records_updated INT NOT NULL,
			success BOOLEAN NOT NULL,
			error_message TEXT
		)`, s.prefix),
	}

	for _, query := range tables {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("ensure table: %w", err)
		}
	}
	return nil
}

func (s *MySql) Close() {
	s.closeStmt()
	_ = s.db.Close()
}

// Stats returns database info only if there are connections inUse
func (s *MySql) Stats() string {
	stats := s.db.Stats()
	if stats.InUse > 0 {
		return fmt.Sprintf("open: %d, inuse: %d, idle: %d, stmts: %d",
			stats.OpenConnections,
			stats.InUse,
			stats.Idle,
			len(s.statements))
	}
	return ""
}

// Ping reports store reachability for health checks.
func (s *MySql) Ping() error {
	return s.db.Ping()
}

// GetCelebrantsByDate returns active celebrants whose recurring event date
// matches the given MM-DD value, in stored-identifier order.
func (s *MySql) GetCelebrantsByDate(date string) ([]*entity.Celebrant, error) {
	stmt, err := s.stmtSelectCelebrantsByDate()
	if err != nil {
		return nil, err
	}

	rows, err := stmt.Query(date)
	if err != nil {
		return nil, fmt.Errorf("select celebrants by date: %w", err)
	}
	defer rows.Close()

	return scanCelebrants(rows)
}

// GetAllCelebrants returns a page of celebrants plus the total count.
func (s *MySql) GetAllCelebrants(offset, limit int) ([]*entity.Celebrant, int, error) {
	stmt, err := s.stmtSelectCelebrants()
	if err != nil {
		return nil, 0, err
	}

	rows, err := stmt.Query(limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select celebrants: %w", err)
	}
	defer rows.Close()

	celebrants, err := scanCelebrants(rows)
	if err != nil {
		return nil, 0, err
	}

	countStmt, err := s.stmtCountCelebrants()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err = countStmt.QueryRow().Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count celebrants: %w", err)
	}

	return celebrants, total, nil
}

func scanCelebrants(rows *sql.Rows) ([]*entity.Celebrant, error) {
	var celebrants []*entity.Celebrant
	for rows.Next() {
		c := &entity.Celebrant{}
		err := rows.Scan(&c.Id, &c.Name, &c.EventType, &c.EventDate, &c.Year,
			&c.Spouse, &c.ContactHandle, &c.Active, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan celebrant: %w", err)
		}
		celebrants = append(celebrants, c)
	}
	return celebrants, rows.Err()
}

// UpsertCelebrant inserts or updates by the (name, event_type) key.
// Returns true when a new row was created.
func (s *MySql) UpsertCelebrant(c *entity.Celebrant) (bool, error) {
	selStmt, err := s.stmtSelectCelebrantByKey()
	if err != nil {
		return false, err
	}

	var existingId int64
	err = selStmt.QueryRow(c.Name, string(c.EventType)).Scan(&existingId)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("select celebrant: %w", err)
		}
		insStmt, err := s.stmtInsertCelebrant()
		if err != nil {
			return false, err
		}
		res, err := insStmt.Exec(c.Name, string(c.EventType), c.EventDate, c.Year, c.Spouse, c.ContactHandle, c.Active)
		if err != nil {
			return false, fmt.Errorf("insert celebrant: %w", err)
		}
		c.Id, _ = res.LastInsertId()
		return true, nil
	}

	updStmt, err := s.stmtUpdateCelebrant()
	if err != nil {
		return false, err
	}
	if _, err = updStmt.Exec(c.EventDate, c.Year, c.Spouse, c.ContactHandle, c.Active, existingId); err != nil {
		return false, fmt.Errorf("update celebrant: %w", err)
	}
	c.Id = existingId
	return false, nil
}

// AppendMessageLog writes one delivery-log entry. sentDate is YYYY-MM-DD.
func (s *MySql) AppendMessageLog(celebrantId int64, content, sentDate string, success bool, errorMessage string) error {
	stmt, err := s.stmtInsertMessageLog()
	if err != nil {
		return err
	}
	if _, err = stmt.Exec(celebrantId, content, sentDate, success, errorMessage); err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}
	return nil
}

// SaveCSVUpload records the outcome of one import run.
func (s *MySql) SaveCSVUpload(u *entity.CSVUpload) error {
	stmt, err := s.stmtInsertCSVUpload()
	if err != nil {
		return err
	}
	res, err := stmt.Exec(u.Filename, u.RecordsProcessed, u.RecordsAdded, u.RecordsUpdated, u.Success, u.ErrorMessage)
	if err != nil {
		return fmt.Errorf("insert csv upload: %w", err)
	}
	u.Id, _ = res.LastInsertId()
	return nil
}

// GetRateLimit fetches the quota record for one identity. Returns (nil, nil)
// when no record exists.
func (s *MySql) GetRateLimit(identity string) (*entity.RateLimitRecord, error) {
	stmt, err := s.stmtSelectRateLimit()
	if err != nil {
		return nil, err
	}

	rec := &entity.RateLimitRecord{}
	err = stmt.QueryRow(identity).Scan(&rec.Identity, &rec.RequestCount, &rec.WindowStart, &rec.LastRequestTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select rate limit: %w", err)
	}
	return rec, nil
}

func (s *MySql) CreateRateLimit(identity string, now time.Time) error {
	stmt, err := s.stmtInsertRateLimit()
	if err != nil {
		return err
	}
	if _, err = stmt.Exec(identity, now, now); err != nil {
		return fmt.Errorf("insert rate limit: %w", err)
	}
	return nil
}

func (s *MySql) UpdateRateLimit(identity string, count int, windowStart, lastRequest time.Time) error {
	stmt, err := s.stmtUpdateRateLimit()
	if err != nil {
		return err
	}
	if _, err = stmt.Exec(count, windowStart, lastRequest, identity); err != nil {
		return fmt.Errorf("update rate limit: %w", err)
	}
	return nil
}

// ResetRateLimit starts a fresh window for the identity with count 1.
func (s *MySql) ResetRateLimit(identity string, now time.Time) error {
	stmt, err := s.stmtUpdateRateLimit()
	if err != nil {
		return err
	}
	if _, err = stmt.Exec(1, now, now, identity); err != nil {
		return fmt.Errorf("reset rate limit: %w", err)
	}
	return nil
}

// PurgeRateLimits removes records whose last request is older than the cutoff.
func (s *MySql) PurgeRateLimits(olderThan time.Time) (int64, error) {
	stmt, err := s.stmtDeleteRateLimits()
	if err != nil {
		return 0, err
	}
	res, err := stmt.Exec(olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge rate limits: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		s.log.With(sl.Err(err)).Debug("rows affected unavailable")
		return 0, nil
	}
	return purged, nil
}
