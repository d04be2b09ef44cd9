package knownhosts

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/studiowebux/gemcli/internal/migrations"
)

// Manager is a Store backed by sqlite.
type Manager struct {
	db *sql.DB
}

func NewManager(dbPath string) (*Manager, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create known hosts directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open known hosts database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to known hosts database: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Manager{db: db}, nil
}

func (m *Manager) Lookup(host, port string) (Pin, bool, error) {
	row := m.db.QueryRow(`
		SELECT host, port, fingerprint, not_after, first_seen, last_seen
		FROM known_hosts
		WHERE host = ? AND port = ?
	`, host, port)

	pin, err := scanPin(row)
	if err == sql.ErrNoRows {
		return Pin{}, false, nil
	}
	if err != nil {
		return Pin{}, false, fmt.Errorf("failed to look up %s:%s: %w", host, port, err)
	}
	return pin, true, nil
}

// Save inserts or replaces the pin for (host, port).
func (m *Manager) Save(pin Pin) error {
	firstSeen := pin.FirstSeen
	if firstSeen.IsZero() {
		firstSeen = pin.LastSeen
	}

	_, err := m.db.Exec(`
		INSERT INTO known_hosts (host, port, fingerprint, not_after, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, port) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			not_after = excluded.not_after,
			first_seen = excluded.first_seen,
			last_seen = excluded.last_seen
	`,
		pin.Host,
		pin.Port,
		pin.Fingerprint,
		formatTime(pin.NotAfter),
		formatTime(firstSeen),
		formatTime(pin.LastSeen),
	)
	if err != nil {
		return fmt.Errorf("failed to save pin for %s:%s: %w", pin.Host, pin.Port, err)
	}
	return nil
}

func (m *Manager) List() ([]Pin, error) {
	rows, err := m.db.Query(`
		SELECT host, port, fingerprint, not_after, first_seen, last_seen
		FROM known_hosts
		ORDER BY host, port
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list known hosts: %w", err)
	}
	defer rows.Close()

	var pins []Pin
	for rows.Next() {
		pin, err := scanPin(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan known host: %w", err)
		}
		pins = append(pins, pin)
	}
	return pins, rows.Err()
}

// Forget removes every pin for host and returns how many were removed.
func (m *Manager) Forget(host string) (int64, error) {
	result, err := m.db.Exec("DELETE FROM known_hosts WHERE host = ?", host)
	if err != nil {
		return 0, fmt.Errorf("failed to forget %s: %w", host, err)
	}
	return result.RowsAffected()
}

func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPin(s scanner) (Pin, error) {
	var pin Pin
	var notAfter, firstSeen, lastSeen string

	if err := s.Scan(&pin.Host, &pin.Port, &pin.Fingerprint, &notAfter, &firstSeen, &lastSeen); err != nil {
		return Pin{}, err
	}

	pin.NotAfter = parseTime(notAfter)
	pin.FirstSeen = parseTime(firstSeen)
	pin.LastSeen = parseTime(lastSeen)
	return pin, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// sqlite3 driver may hand back its own layout for DATETIME columns
		t, err = time.Parse("2006-01-02 15:04:05", s)
		if err != nil {
			return time.Time{}
		}
	}
	return t
}
