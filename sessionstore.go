package rango

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/eringen/rango/visit"
)

// sessionValues exposes the session_values table as a visit.Store.
type sessionValues struct {
	db *sql.DB
}

// SessionValues returns a visit.Store persisting into this database.
func (s *Store) SessionValues() visit.Store {
	return sessionValues{db: s.db}
}

// Get implements visit.Store.
func (v sessionValues) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var val string
	err := v.db.QueryRowContext(ctx, `SELECT value FROM session_values WHERE session_id = ? AND key = ?`, sessionID, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set implements visit.Store.
func (v sessionValues) Set(ctx context.Context, sessionID, key, value string) error {
	_, err := v.db.ExecContext(ctx, `
INSERT INTO session_values (session_id, key, value, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT(session_id, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sessionID, key, value, time.Now().Unix())
	return err
}

// PurgeSessionValues deletes values of sessions not written since before.
// It returns the number of rows removed.
func (s *Store) PurgeSessionValues(before time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM session_values WHERE updated_at < ?`, before.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge session values: %w", err)
	}
	return res.RowsAffected()
}

// StartSessionCleanup purges session values idle for longer than maxAge
// every interval. Returns a stop function.
func (s *Store) StartSessionCleanup(maxAge, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := s.PurgeSessionValues(time.Now().Add(-maxAge)); err != nil {
					log.Printf("rango: session cleanup: %v", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
