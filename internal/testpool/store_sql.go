package testpool

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// SQLStore implements Store on database/sql with one row per test case and
// the identity sets held as JSON columns. Placeholders are $1-style, which
// both the pgx and modernc sqlite drivers accept.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const testColumns = `id,name,author,description,definition_json,visibility,is_default,is_public,created_at,
times_ran,times_ran_successfully,num_students_ran,num_students_ran_successfully,
students_ran_json,students_ran_successfully_json,students_liked_json,students_disliked_json`

func (s *SQLStore) EnsurePool(ctx context.Context, pool string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pools (name, hidden, created_at) VALUES ($1, FALSE, $2)
		 ON CONFLICT (name) DO NOTHING`,
		pool, time.Now().Unix())
	if err != nil {
		return StoreError{Op: "ensure pool", Err: err}
	}
	return nil
}

func (s *SQLStore) ListPools(ctx context.Context, includeHidden bool) ([]Pool, error) {
	q := `SELECT name, hidden FROM pools ORDER BY name`
	if !includeHidden {
		q = `SELECT name, hidden FROM pools WHERE NOT hidden ORDER BY name`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, StoreError{Op: "list pools", Err: err}
	}
	defer rows.Close()
	var out []Pool
	for rows.Next() {
		var p Pool
		if err := rows.Scan(&p.Name, &p.Hidden); err != nil {
			return nil, StoreError{Op: "list pools", Err: err}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListPool(ctx context.Context, pool string) ([]TestCase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE pool=$1 ORDER BY created_at, id`, pool)
	if err != nil {
		return nil, StoreError{Op: "list tests", Err: err}
	}
	defer rows.Close()
	var out []TestCase
	for rows.Next() {
		tc, err := scanTest(rows, pool)
		if err != nil {
			return nil, StoreError{Op: "list tests", Err: err}
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}

func (s *SQLStore) FindByName(ctx context.Context, pool, name string) (TestCase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE pool=$1 AND name=$2`, pool, name)
	tc, err := scanTest(row, pool)
	if errors.Is(err, sql.ErrNoRows) {
		return TestCase{}, NotFoundError{Msg: "test not found: " + name}
	}
	if err != nil {
		return TestCase{}, StoreError{Op: "find test", Err: err}
	}
	return tc, nil
}

func (s *SQLStore) FindByID(ctx context.Context, pool, id string) (TestCase, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+testColumns+` FROM tests WHERE pool=$1 AND id=$2`, pool, id)
	tc, err := scanTest(row, pool)
	if errors.Is(err, sql.ErrNoRows) {
		return TestCase{}, NotFoundError{Msg: "test not found: " + id}
	}
	if err != nil {
		return TestCase{}, StoreError{Op: "find test", Err: err}
	}
	return tc, nil
}

// InsertBatch inserts row by row so a uniqueness race lost by one candidate
// degrades that candidate alone instead of aborting the batch.
func (s *SQLStore) InsertBatch(ctx context.Context, pool string, tcs []TestCase) []error {
	errs := make([]error, len(tcs))
	for i, tc := range tcs {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tests (`+testColumns+`,pool)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			tc.ID, tc.Name, tc.Author, tc.Description, rawOrEmpty(tc.Definition),
			string(tc.Visibility), tc.IsDefault, tc.IsPublic, tc.CreatedAt,
			tc.TimesRan, tc.TimesRanSuccessfully, tc.NumStudentsRan, tc.NumStudentsRanSuccessfully,
			setJSON(tc.StudentsRan), setJSON(tc.StudentsRanSuccessfully),
			setJSON(tc.StudentsLiked), setJSON(tc.StudentsDisliked),
			pool)
		if err != nil {
			if isUniqueViolation(err) {
				errs[i] = ConflictError{Reason: ReasonNameOwned}
			} else {
				errs[i] = StoreError{Op: "insert test", Err: err}
			}
		}
	}
	return errs
}

func (s *SQLStore) Update(ctx context.Context, pool string, tc TestCase) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tests SET description=$1, definition_json=$2, visibility=$3, is_default=$4, is_public=$5
		 WHERE pool=$6 AND id=$7`,
		tc.Description, rawOrEmpty(tc.Definition), string(tc.Visibility), tc.IsDefault, tc.IsPublic,
		pool, tc.ID)
	if err != nil {
		return StoreError{Op: "update test", Err: err}
	}
	return notFoundIfZero(res, tc.ID)
}

func (s *SQLStore) Delete(ctx context.Context, pool, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tests WHERE pool=$1 AND id=$2`, pool, id)
	if err != nil {
		return StoreError{Op: "delete test", Err: err}
	}
	return notFoundIfZero(res, id)
}

func (s *SQLStore) CountByAuthor(ctx context.Context, pool, author string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tests WHERE pool=$1 AND author=$2`, pool, author).Scan(&n)
	if err != nil {
		return 0, StoreError{Op: "count by author", Err: err}
	}
	return n, nil
}

// Increment is a single UPDATE, atomic on the store side.
func (s *SQLStore) Increment(ctx context.Context, pool, id string, field CounterField, delta int64) error {
	col, ok := counterColumns[field]
	if !ok {
		return StoreError{Op: "increment", Err: errors.New("unknown counter field: " + string(field))}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tests SET `+col+` = `+col+` + $1 WHERE pool=$2 AND id=$3`,
		delta, pool, id)
	if err != nil {
		return StoreError{Op: "increment", Err: err}
	}
	return notFoundIfZero(res, id)
}

// AddToSet reads and rewrites one set column inside a transaction and reports
// whether the member was actually added, collapsing check-then-act into a
// single store call.
func (s *SQLStore) AddToSet(ctx context.Context, pool, id string, field SetField, member string) (bool, error) {
	col, ok := setColumns[field]
	if !ok {
		return false, StoreError{Op: "add to set", Err: errors.New("unknown set field: " + string(field))}
	}
	var added bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		set, err := readSet(ctx, tx, col, pool, id, s.lockClause())
		if err != nil {
			return err
		}
		if contains(set, member) {
			return nil
		}
		set = append(set, member)
		added = true
		_, err = tx.ExecContext(ctx,
			`UPDATE tests SET `+col+` = $1 WHERE pool=$2 AND id=$3`,
			setJSON(set), pool, id)
		return err
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// RemoveFromSet is a no-op when the member is absent.
func (s *SQLStore) RemoveFromSet(ctx context.Context, pool, id string, field SetField, member string) error {
	col, ok := setColumns[field]
	if !ok {
		return StoreError{Op: "remove from set", Err: errors.New("unknown set field: " + string(field))}
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		set, err := readSet(ctx, tx, col, pool, id, s.lockClause())
		if err != nil {
			return err
		}
		kept := set[:0]
		for _, m := range set {
			if m != member {
				kept = append(kept, m)
			}
		}
		if len(kept) == len(set) {
			return nil
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE tests SET `+col+` = $1 WHERE pool=$2 AND id=$3`,
			setJSON(kept), pool, id)
		return err
	})
}

// ---- helpers ----

var counterColumns = map[CounterField]string{
	CounterTimesRan:                   "times_ran",
	CounterTimesRanSuccessfully:       "times_ran_successfully",
	CounterNumStudentsRan:             "num_students_ran",
	CounterNumStudentsRanSuccessfully: "num_students_ran_successfully",
}

var setColumns = map[SetField]string{
	SetStudentsRan:             "students_ran_json",
	SetStudentsRanSuccessfully: "students_ran_successfully_json",
	SetStudentsLiked:           "students_liked_json",
	SetStudentsDisliked:        "students_disliked_json",
}

func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StoreError{Op: "begin tx", Err: err}
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		var nf NotFoundError
		if errors.As(err, &nf) {
			return err
		}
		return StoreError{Op: "tx", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return StoreError{Op: "commit", Err: err}
	}
	return nil
}

// lockClause guards the read-modify-write of a set column against a
// concurrent transaction reading the same stale value. SQLite serializes
// writers on its own and rejects the syntax, so the clause is postgres-only.
func (s *SQLStore) lockClause() string {
	if s.driver == "postgres" {
		return " FOR UPDATE"
	}
	return ""
}

func readSet(ctx context.Context, tx *sql.Tx, col, pool, id, lock string) ([]string, error) {
	var raw string
	err := tx.QueryRowContext(ctx,
		`SELECT `+col+` FROM tests WHERE pool=$1 AND id=$2`+lock, pool, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NotFoundError{Msg: "test not found: " + id}
	}
	if err != nil {
		return nil, err
	}
	var set []string
	if err := json.Unmarshal([]byte(raw), &set); err != nil {
		return nil, err
	}
	return set, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTest(row rowScanner, pool string) (TestCase, error) {
	var tc TestCase
	var def, ran, ranOK, liked, disliked string
	var vis string
	if err := row.Scan(
		&tc.ID, &tc.Name, &tc.Author, &tc.Description, &def, &vis, &tc.IsDefault, &tc.IsPublic, &tc.CreatedAt,
		&tc.TimesRan, &tc.TimesRanSuccessfully, &tc.NumStudentsRan, &tc.NumStudentsRanSuccessfully,
		&ran, &ranOK, &liked, &disliked,
	); err != nil {
		return TestCase{}, err
	}
	tc.Pool = pool
	tc.Visibility = Visibility(vis)
	tc.Definition = json.RawMessage(def)
	for _, s := range []struct {
		raw string
		dst *[]string
	}{
		{ran, &tc.StudentsRan},
		{ranOK, &tc.StudentsRanSuccessfully},
		{liked, &tc.StudentsLiked},
		{disliked, &tc.StudentsDisliked},
	} {
		if err := json.Unmarshal([]byte(s.raw), s.dst); err != nil {
			return TestCase{}, err
		}
	}
	return tc, nil
}

func setJSON(set []string) string {
	if set == nil {
		set = []string{}
	}
	b, _ := json.Marshal(set)
	return string(b)
}

func rawOrEmpty(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func notFoundIfZero(res sql.Result, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return StoreError{Op: "rows affected", Err: err}
	}
	if n == 0 {
		return NotFoundError{Msg: "test not found: " + key}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") || // postgres
		strings.Contains(msg, "sqlstate 23505")
}
