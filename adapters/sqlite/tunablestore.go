package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/pelagos/shoal/domain/tunable"
)

// TunableStore implements tunable.Store using SQLite.
type TunableStore struct {
	db *DB
}

// NewTunableStore creates a new tunable store.
func NewTunableStore(db *DB) *TunableStore {
	return &TunableStore{db: db}
}

// List returns all tunables ordered by id.
func (s *TunableStore) List(ctx context.Context) ([]tunable.Tunable, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT id, var, value, type, comment, enabled FROM tunables ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []tunable.Tunable
	for rows.Next() {
		t, err := scanTunable(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

// Get retrieves a tunable by id.
func (s *TunableStore) Get(ctx context.Context, id int64) (tunable.Tunable, error) {
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT id, var, value, type, comment, enabled FROM tunables WHERE id = ?`,
		id,
	)
	return scanTunable(row)
}

// GetByVar retrieves a tunable by its variable name.
func (s *TunableStore) GetByVar(ctx context.Context, name string) (tunable.Tunable, error) {
	row := s.db.DB.QueryRowContext(ctx,
		`SELECT id, var, value, type, comment, enabled FROM tunables WHERE var = ?`,
		name,
	)
	return scanTunable(row)
}

// Create stores a new tunable and returns its id.
func (s *TunableStore) Create(ctx context.Context, t tunable.Tunable) (int64, error) {
	result, err := s.db.DB.ExecContext(ctx,
		`INSERT INTO tunables (var, value, type, comment, enabled)
		VALUES (?, ?, ?, ?, ?)`,
		t.Var, t.Value, string(t.Type), t.Comment, boolToInt(t.Enabled),
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// Update modifies an existing tunable.
func (s *TunableStore) Update(ctx context.Context, t tunable.Tunable) error {
	result, err := s.db.DB.ExecContext(ctx,
		`UPDATE tunables SET var = ?, value = ?, type = ?, comment = ?, enabled = ?
		WHERE id = ?`,
		t.Var, t.Value, string(t.Type), t.Comment, boolToInt(t.Enabled), t.ID,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tunable.ErrNotFound
	}
	return nil
}

// Delete removes a tunable by id.
func (s *TunableStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.DB.ExecContext(ctx,
		`DELETE FROM tunables WHERE id = ?`,
		id,
	)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return tunable.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTunable(row rowScanner) (tunable.Tunable, error) {
	var t tunable.Tunable
	var typ string
	var enabled int

	err := row.Scan(&t.ID, &t.Var, &t.Value, &typ, &t.Comment, &enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tunable.Tunable{}, tunable.ErrNotFound
		}
		return tunable.Tunable{}, err
	}

	t.Type = tunable.Type(typ)
	t.Enabled = enabled != 0
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure interface compliance.
var _ tunable.Store = (*TunableStore)(nil)
