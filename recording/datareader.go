package recording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// QueryParams selects rows of a table.
type QueryParams struct {
	// Where is a condition without the WHERE keyword, for example
	// "Outcome = ? AND Iterations > ?".
	Where string

	// Args fill the placeholders of Where.
	Args []any

	// Limit caps the number of rows. 0 returns every row.
	Limit int

	// Offset skips rows before the first returned one.
	Offset int

	// OrderBy is a sort clause without the ORDER BY keywords, for example
	// "StartTime DESC".
	OrderBy string
}

func (p QueryParams) where() string {
	if p.Where == "" {
		return ""
	}

	return " WHERE " + p.Where
}

func (p QueryParams) tail() string {
	var b strings.Builder

	b.WriteString(p.where())

	if p.OrderBy != "" {
		b.WriteString(" ORDER BY " + p.OrderBy)
	}

	switch {
	case p.Limit > 0:
		fmt.Fprintf(&b, " LIMIT %d", p.Limit)
	case p.Offset > 0:
		// SQLite only accepts OFFSET after a LIMIT.
		b.WriteString(" LIMIT -1")
	}

	if p.Offset > 0 {
		fmt.Fprintf(&b, " OFFSET %d", p.Offset)
	}

	return b.String()
}

// DataReader reads back what a DataRecorder wrote.
type DataReader interface {
	// MapTable tells the reader which struct type the rows of a table decode
	// into. A table must be mapped before it is queried.
	MapTable(tableName string, sampleEntry any)

	// ListTables returns the mapped tables, sorted by name.
	ListTables() []string

	// Query returns pointers to the decoded rows that match params, and the
	// number of rows matching params.Where regardless of Limit and Offset.
	Query(ctx context.Context, tableName string, params QueryParams) (
		results []any,
		totalCount int,
		err error,
	)

	// Close closes the underlying database.
	Close() error
}

// A tableMapping decodes the rows of one table.
type tableMapping struct {
	entryType reflect.Type
	fieldOf   map[string]int
}

func newTableMapping(sampleEntry any) tableMapping {
	t := reflect.TypeOf(sampleEntry)

	m := tableMapping{
		entryType: t,
		fieldOf:   make(map[string]int, t.NumField()),
	}

	for i := 0; i < t.NumField(); i++ {
		m.fieldOf[t.Field(i).Name] = i
	}

	return m
}

// decode scans every remaining row. Columns without a matching field are
// read and dropped.
func (m tableMapping) decode(rows *sql.Rows) ([]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var (
		results []any
		discard any
	)

	targets := make([]any, len(columns))

	for rows.Next() {
		entry := reflect.New(m.entryType)

		for i, column := range columns {
			idx, ok := m.fieldOf[column]
			if !ok {
				targets[i] = &discard
				continue
			}

			targets[i] = entry.Elem().Field(idx).Addr().Interface()
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", m.entryType.Name(), err)
		}

		results = append(results, entry.Interface())
	}

	return results, rows.Err()
}

type sqliteReader struct {
	db     *sql.DB
	tables map[string]tableMapping
}

// NewReader opens a recording file.
func NewReader(dbFilename string) (DataReader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB creates a DataReader on an open database.
func NewReaderWithDB(db *sql.DB) DataReader {
	return &sqliteReader{
		db:     db,
		tables: make(map[string]tableMapping),
	}
}

func (r *sqliteReader) MapTable(tableName string, sampleEntry any) {
	r.tables[tableName] = newTableMapping(sampleEntry)
}

func (r *sqliteReader) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (r *sqliteReader) Query(
	ctx context.Context,
	tableName string,
	params QueryParams,
) ([]any, int, error) {
	mapping, ok := r.tables[tableName]
	if !ok {
		return nil, 0, fmt.Errorf("no mapping found for table: %s", tableName)
	}

	var total int

	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM "+tableName+params.where(),
		params.Args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT * FROM "+tableName+params.tail(),
		params.Args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	results, err := mapping.decode(rows)
	if err != nil {
		return nil, 0, err
	}

	return results, total, nil
}

func (r *sqliteReader) Close() error {
	return r.db.Close()
}

// queryEntries runs Query and copies the decoded rows out as values of T.
// The table must be mapped to T.
func queryEntries[T any](
	ctx context.Context,
	reader DataReader,
	tableName string,
	params QueryParams,
) ([]T, error) {
	results, _, err := reader.Query(ctx, tableName, params)
	if err != nil {
		return nil, err
	}

	entries := make([]T, 0, len(results))
	for _, res := range results {
		entry, ok := res.(*T)
		if !ok {
			return nil, fmt.Errorf("table %s is not mapped to %T", tableName,
				*new(T))
		}

		entries = append(entries, *entry)
	}

	return entries, nil
}
