package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Kind distinguishes rest popups from meal popups.
type Kind string

const (
	KindRest Kind = "rest"
	KindMeal Kind = "meal"
)

// Session is one finished popup.
type Session struct {
	ID          string
	Kind        Kind
	Meal        string
	Reason      string
	Manual      bool
	StartedAt   time.Time
	EndedAt     time.Time
	Elapsed     time.Duration
	LevelBefore int
	LevelAfter  int
}

// Record inserts a session. An empty ID is replaced with a new UUID.
func (s *Store) Record(sess Session) (Session, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.Kind == "" {
		return sess, fmt.Errorf("record session: kind is required")
	}
	if sess.EndedAt.IsZero() {
		sess.EndedAt = sess.StartedAt.Add(sess.Elapsed)
	}

	manual := 0
	if sess.Manual {
		manual = 1
	}
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, kind, meal, reason, manual, started_at, ended_at, elapsed_seconds, level_before, level_after)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, string(sess.Kind), sess.Meal, sess.Reason, manual,
		sess.StartedAt.UTC().Format(time.RFC3339), sess.EndedAt.UTC().Format(time.RFC3339),
		int64(sess.Elapsed/time.Second), sess.LevelBefore, sess.LevelAfter,
	)
	if err != nil {
		return sess, fmt.Errorf("record session: %w", err)
	}
	return sess, nil
}

const sessionColumns = `id, kind, meal, reason, manual, started_at, ended_at, elapsed_seconds, level_before, level_after`

func scanSessions(rows *sql.Rows) ([]Session, error) {
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var (
			sess           Session
			kind           string
			manual         int
			started, ended string
			elapsed        int64
		)
		if err := rows.Scan(&sess.ID, &kind, &sess.Meal, &sess.Reason, &manual,
			&started, &ended, &elapsed, &sess.LevelBefore, &sess.LevelAfter); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Kind = Kind(kind)
		sess.Manual = manual != 0
		sess.StartedAt, _ = time.Parse(time.RFC3339, started)
		sess.EndedAt, _ = time.Parse(time.RFC3339, ended)
		sess.Elapsed = time.Duration(elapsed) * time.Second
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Recent returns up to limit sessions, newest first.
func (s *Store) Recent(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return scanSessions(rows)
}

// Since returns sessions started at or after t, oldest first.
func (s *Store) Since(t time.Time) ([]Session, error) {
	rows, err := s.db.Query(
		`SELECT `+sessionColumns+` FROM sessions WHERE started_at >= ? ORDER BY started_at ASC, rowid ASC`,
		t.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return scanSessions(rows)
}

// Totals aggregates sessions over a period.
type Totals struct {
	RestCount int
	RestTime  time.Duration
	MealCount int
	MealTime  time.Duration
	LevelUps  int
}

// TotalsSince aggregates sessions started at or after t.
func (s *Store) TotalsSince(t time.Time) (Totals, error) {
	var (
		tot                Totals
		restSecs, mealSecs int64
	)
	err := s.db.QueryRow(
		`SELECT
			COALESCE(SUM(CASE WHEN kind = 'rest' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'rest' THEN elapsed_seconds ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'meal' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'meal' THEN elapsed_seconds ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = 'rest' AND level_after > level_before THEN 1 ELSE 0 END), 0)
		 FROM sessions WHERE started_at >= ?`,
		t.UTC().Format(time.RFC3339),
	).Scan(&tot.RestCount, &restSecs, &tot.MealCount, &mealSecs, &tot.LevelUps)
	if err != nil {
		return Totals{}, fmt.Errorf("session totals: %w", err)
	}
	tot.RestTime = time.Duration(restSecs) * time.Second
	tot.MealTime = time.Duration(mealSecs) * time.Second
	return tot, nil
}

// DayTotal is the rest time for one local calendar day.
type DayTotal struct {
	Day      time.Time
	Count    int
	RestTime time.Duration
}

// DailyRest returns per-day rest totals for the last days days ending at
// now, oldest first. Days without rests are included with zero values.
func (s *Store) DailyRest(now time.Time, days int) ([]DayTotal, error) {
	if days <= 0 {
		days = 7
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	start := today.AddDate(0, 0, -(days - 1))

	sessions, err := s.Since(start)
	if err != nil {
		return nil, err
	}

	out := make([]DayTotal, days)
	for i := range out {
		out[i].Day = start.AddDate(0, 0, i)
	}
	for _, sess := range sessions {
		if sess.Kind != KindRest {
			continue
		}
		local := sess.StartedAt.In(now.Location())
		ly, lm, ld := local.Date()
		idx := int(time.Date(ly, lm, ld, 0, 0, 0, 0, now.Location()).Sub(start).Hours()/24 + 0.5)
		if idx < 0 || idx >= days {
			continue
		}
		out[idx].Count++
		out[idx].RestTime += sess.Elapsed
	}
	return out, nil
}
