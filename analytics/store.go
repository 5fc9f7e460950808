package analytics

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"
)

// Store provides database operations for analytics.
type Store struct {
	db   *sql.DB
	salt string
}

// NewStore opens (creating if needed) the analytics database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS page_views (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL,
			status INTEGER NOT NULL,
			ip_hash TEXT NOT NULL,
			visitor_id TEXT NOT NULL,
			browser TEXT NOT NULL,
			os TEXT NOT NULL,
			device TEXT NOT NULL,
			referrer TEXT NOT NULL DEFAULT '',
			visited_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			visited_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_page_views_visited_at ON page_views(visited_at);
		CREATE INDEX IF NOT EXISTS idx_page_views_path ON page_views(path);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_visited_at ON bot_visits(visited_at);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// currentSchemaVersion is the latest schema version. Increment when adding migrations.
const currentSchemaVersion = 1

func (s *Store) migrate() error {
	verStr, err := s.GetSetting("schema_version")
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	version := 0
	if verStr != "" {
		version, err = strconv.Atoi(verStr)
		if err != nil {
			return fmt.Errorf("parse schema version %q: %w", verStr, err)
		}
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	return s.SetSetting("schema_version", strconv.Itoa(currentSchemaVersion))
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	return err
}

// InitSalt loads or generates the installation's persistent salt for IP
// hashing. Call it once before recording visits.
func (s *Store) InitSalt() error {
	v, err := s.GetSetting("hash_salt")
	if err != nil {
		return fmt.Errorf("read hash salt: %w", err)
	}
	if v == "" {
		b := make([]byte, 32)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("generate salt: %w", err)
		}
		v = hex.EncodeToString(b)
		if err := s.SetSetting("hash_salt", v); err != nil {
			return fmt.Errorf("store hash salt: %w", err)
		}
	}
	s.salt = v
	return nil
}

// HashIP creates a salted SHA-256 hash of an IP address.
func (s *Store) HashIP(ip string) string {
	return s.hash(ip)
}

// VisitorID creates a salted visitor fingerprint from IP and User-Agent.
func (s *Store) VisitorID(ip, userAgent string) string {
	return s.hash(ip + "|" + userAgent)
}

func (s *Store) hash(v string) string {
	h := sha256.Sum256([]byte(s.salt + v))
	return hex.EncodeToString(h[:])[:16]
}

// SaveVisit stores a new page view.
func (s *Store) SaveVisit(ctx context.Context, v Visit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO page_views
		(path, status, ip_hash, visitor_id, browser, os, device, referrer, visited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Path, v.Status, v.IPHash, v.VisitorID, v.Browser, v.OS, v.Device, v.Referrer, v.Timestamp.Unix())
	return err
}

// SaveBotVisit stores a new crawler page view.
func (s *Store) SaveBotVisit(ctx context.Context, bv BotVisit) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO bot_visits
		(bot_name, ip_hash, user_agent, path, visited_at)
		VALUES (?, ?, ?, ?, ?)`,
		bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, bv.Timestamp.Unix())
	return err
}

// Summarize aggregates page views recorded at or after since. At most
// limit rows are returned per breakdown.
func (s *Store) Summarize(ctx context.Context, since time.Time, limit int) (*Summary, error) {
	sum := &Summary{
		Since:     since,
		TopPages:  []PageStat{},
		Browsers:  []DimensionStat{},
		Devices:   []DimensionStat{},
		Referrers: []DimensionStat{},
	}
	from := since.Unix()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT visitor_id)
			FROM page_views WHERE visited_at >= ?`, from).Scan(&sum.TotalViews, &sum.UniqueVisitors)
		if err != nil {
			return fmt.Errorf("count views: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bot_visits WHERE visited_at >= ?`, from).Scan(&sum.BotVisits)
		if err != nil {
			return fmt.Errorf("count bot visits: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		pages, err := s.TopPages(ctx, since, limit)
		if err != nil {
			return err
		}
		sum.TopPages = pages
		return nil
	})
	for _, d := range []struct {
		column string
		dst    *[]DimensionStat
	}{
		{"browser", &sum.Browsers},
		{"device", &sum.Devices},
		{"referrer", &sum.Referrers},
	} {
		g.Go(func() error {
			stats, err := s.dimension(ctx, d.column, from, limit)
			if err != nil {
				return fmt.Errorf("%s stats: %w", d.column, err)
			}
			*d.dst = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sum, nil
}

// TopPages returns the most viewed paths since the given time.
func (s *Store) TopPages(ctx context.Context, since time.Time, limit int) ([]PageStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, COUNT(*) AS views FROM page_views
		WHERE visited_at >= ? GROUP BY path ORDER BY views DESC, path ASC LIMIT ?`, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()

	pages := []PageStat{}
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, fmt.Errorf("top pages: %w", err)
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// dimension groups page views by one of a fixed set of columns.
func (s *Store) dimension(ctx context.Context, column string, from int64, limit int) ([]DimensionStat, error) {
	switch column {
	case "browser", "device", "os", "referrer":
	default:
		return nil, fmt.Errorf("unknown dimension %q", column)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+column+`, COUNT(*) AS n FROM page_views
		WHERE visited_at >= ? GROUP BY `+column+` ORDER BY n DESC, `+column+` ASC LIMIT ?`, from, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DimensionStat{}
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// CleanupOldVisits removes page views and bot visits older than the
// retention period.
func (s *Store) CleanupOldVisits(retentionDays int) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays).Unix()
	if _, err := s.db.Exec(`DELETE FROM page_views WHERE visited_at < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup page_views: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM bot_visits WHERE visited_at < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs periodic cleanup of old data. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldVisits(retentionDays); err != nil {
					log.Errorf("analytics cleanup: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
