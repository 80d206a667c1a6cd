package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"activities-cli/internal/model"

	_ "modernc.org/sqlite"
)

var (
	ErrActivityNotFound  = errors.New("activity not found")
	ErrAlreadyRegistered = errors.New("already signed up")
	ErrActivityFull      = errors.New("activity is full")
	ErrNotRegistered     = errors.New("not signed up")
)

const schema = `
CREATE TABLE IF NOT EXISTS activities (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	name             TEXT NOT NULL UNIQUE,
	description      TEXT NOT NULL DEFAULT '',
	schedule         TEXT NOT NULL DEFAULT '',
	max_participants INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS participants (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	activity_id INTEGER NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
	email       TEXT NOT NULL,
	UNIQUE (activity_id, email)
);
`

// Store keeps activities and rosters in sqlite. Activities list in insertion
// order and rosters in registration order.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path; an empty path is in-memory.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := strings.TrimSpace(path)
	if dsn == "" {
		dsn = ":memory:"
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// An in-memory database exists per connection; keep exactly one.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("devserver: %s: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("devserver: schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Seed inserts activities that do not exist yet, keeping their rosters.
func (s *Store) Seed(ctx context.Context, acts []model.Activity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range acts {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO activities (name, description, schedule, max_participants) VALUES (?, ?, ?, ?)
			 ON CONFLICT(name) DO NOTHING`,
			a.Name, a.Description, a.Schedule, a.MaxParticipants)
		if err != nil {
			return fmt.Errorf("seed %q: %w", a.Name, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		for _, p := range a.Participants {
			if _, err := tx.ExecContext(ctx, `INSERT INTO participants (activity_id, email) VALUES (?, ?)`, id, p); err != nil {
				return fmt.Errorf("seed %q participant %q: %w", a.Name, p, err)
			}
		}
	}
	return tx.Commit()
}

func (s *Store) List(ctx context.Context) (model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.name, a.description, a.schedule, a.max_participants, p.email
		FROM activities a
		LEFT JOIN participants p ON p.activity_id = a.id
		ORDER BY a.id, p.id`)
	if err != nil {
		return model.Snapshot{}, err
	}
	defer rows.Close()

	var acts []model.Activity
	for rows.Next() {
		var a model.Activity
		var email sql.NullString
		if err := rows.Scan(&a.Name, &a.Description, &a.Schedule, &a.MaxParticipants, &email); err != nil {
			return model.Snapshot{}, err
		}
		if n := len(acts); n == 0 || acts[n-1].Name != a.Name {
			a.Participants = []string{}
			acts = append(acts, a)
		}
		if email.Valid {
			last := &acts[len(acts)-1]
			last.Participants = append(last.Participants, email.String)
		}
	}
	if err := rows.Err(); err != nil {
		return model.Snapshot{}, err
	}
	return model.NewSnapshot(acts...), nil
}

func (s *Store) Signup(ctx context.Context, activity, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id, maxp int64
	err = tx.QueryRowContext(ctx, `SELECT id, max_participants FROM activities WHERE name = ?`, activity).Scan(&id, &maxp)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrActivityNotFound
	}
	if err != nil {
		return err
	}

	var exists, count int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FILTER (WHERE email = ?), COUNT(*) FROM participants WHERE activity_id = ?`,
		email, id).Scan(&exists, &count); err != nil {
		return err
	}
	if exists > 0 {
		return ErrAlreadyRegistered
	}
	if count >= maxp {
		return ErrActivityFull
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO participants (activity_id, email) VALUES (?, ?)`, id, email); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Unregister(ctx context.Context, activity, email string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM activities WHERE name = ?`, activity).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrActivityNotFound
	}
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM participants WHERE activity_id = ? AND email = ?`, id, email)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotRegistered
	}
	return tx.Commit()
}
