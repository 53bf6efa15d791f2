package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/google/uuid"
)

// timestampLayout is fixed width so timestamps sort lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var _ gateway.Gateway = (*Store)(nil)

// Store is the sqlite-backed gateway. Rows are mapped into model types
// here and nowhere else.
type Store struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func New(sqldb *sql.DB, opts ...Option) *Store {
	s := &Store{db: sqldb, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) DB() *sql.DB { return s.db }

func formatTS(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTS(v string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, v)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: %w", v, err)
		}
	}
	return t, nil
}

func parseNullTS(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := parseTS(v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullTS(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTS(*t)
}

func nullString(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// containsPattern builds a LIKE pattern matched against fold(column).
func containsPattern(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + q + "%"
}

func orderKeyword(o gateway.Order) string {
	if o == gateway.OrderDesc {
		return "DESC"
	}
	return "ASC"
}

// updateBuilder collects SET clauses for partial updates.
type updateBuilder struct {
	sets []string
	args []any
}

func (b *updateBuilder) set(column string, value any) {
	b.sets = append(b.sets, column+" = ?")
	b.args = append(b.args, value)
}

func (b *updateBuilder) empty() bool { return len(b.sets) == 0 }

func (b *updateBuilder) clause() string { return strings.Join(b.sets, ", ") }

func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows for %s: %w", what, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, gateway.ErrNotFound)
	}
	return nil
}
