package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Activity is one logged action.
type Activity struct {
	ID        int64
	Kind      string
	X, Y      int
	Amount    int
	Pose      string
	CreatedAt time.Time
}

// ActivityRepository records emitted actions.
type ActivityRepository struct {
	db *sql.DB
}

// Activity returns the activity repository for this store.
func (s *Store) Activity() *ActivityRepository {
	return &ActivityRepository{db: s.db}
}

// Record logs a. Cursor moves are dropped; it reports whether a row was
// written.
func (r *ActivityRepository) Record(a gesture.Action, pose gesture.Pose, at time.Time) (bool, error) {
	if a.Kind == gesture.ActionMoveCursor {
		return false, nil
	}

	_, err := r.db.Exec(
		`INSERT INTO activity (kind, x, y, amount, pose, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.Kind.String(), a.X, a.Y, a.Amount, pose.String(), at.UTC(),
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

// Recent returns up to limit entries, newest first.
func (r *ActivityRepository) Recent(limit int) ([]*Activity, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.Query(
		`SELECT id, kind, x, y, amount, pose, created_at
		 FROM activity ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*Activity
	for rows.Next() {
		e := &Activity{}
		if err := rows.Scan(&e.ID, &e.Kind, &e.X, &e.Y, &e.Amount, &e.Pose, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByKind returns the number of logged actions per kind name.
func (r *ActivityRepository) CountByKind() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT kind, COUNT(*) FROM activity GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[kind] = n
	}
	return counts, rows.Err()
}

// PruneBefore deletes entries older than cutoff and returns how many went.
func (r *ActivityRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM activity WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
