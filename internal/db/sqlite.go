package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
	"strings"
	"time"
)

// SQLite keeps every collection in one table of JSON documents.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database file, %s: %w", "file://"+path, err)
	}
	// a single connection keeps :memory: databases shared and serializes writers
	conn.SetMaxOpenConns(1)

	_, err = conn.ExecContext(ctx, Schema)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &SQLite{db: conn}, nil
}

type jsonDoc []byte

func (d jsonDoc) Decode(out any) error {
	return json.Unmarshal(d, out)
}

func (s *SQLite) Put(ctx context.Context, collection string, id string, doc any) error {
	defer observe(time.Now())

	const put = `
INSERT INTO documents (collection, id, doc)
VALUES (?, ?, ?)
ON CONFLICT (collection, id) DO
	UPDATE
	SET doc = excluded.doc,
		updated_at = strftime('%s', 'now')
`
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, put, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, constraint(err))
	}
	return nil
}

func (s *SQLite) Insert(ctx context.Context, collection string, id string, doc any) error {
	defer observe(time.Now())

	const insert = `
INSERT INTO documents (collection, id, doc)
VALUES (?, ?, ?)
`
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insert, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, constraint(err))
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, collection string, id string) (Document, error) {
	defer observe(time.Now())

	const get = `
SELECT doc
FROM documents
WHERE collection = ? AND id = ?
`
	var data string
	err := s.db.QueryRowContext(ctx, get, collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return jsonDoc(data), nil
}

func (s *SQLite) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	defer observe(time.Now())

	where, args, err := sqliteWhere(collection, filter)
	if err != nil {
		return nil, err
	}

	query := "SELECT doc FROM documents WHERE " + where
	if opts.Sort != "" {
		err = validField(opts.Sort)
		if err != nil {
			return nil, err
		}
		dir := "ASC"
		if opts.Desc {
			dir = "DESC"
		}
		// times are stored as RFC 3339 text, julianday orders them chronologically
		query += fmt.Sprintf(" ORDER BY coalesce(julianday(json_extract(doc, ?)), json_extract(doc, ?)) %s, rowid %s", dir, dir)
		args = append(args, "$."+opts.Sort, "$."+opts.Sort)
	} else {
		query += " ORDER BY rowid"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, max(opts.Skip, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var data string
		err = rows.Scan(&data)
		if err != nil {
			return nil, fmt.Errorf("find %s: %w", collection, err)
		}
		docs = append(docs, jsonDoc(data))
	}
	return docs, rows.Err()
}

func (s *SQLite) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	defer observe(time.Now())

	where, args, err := sqliteWhere(collection, filter)
	if err != nil {
		return 0, err
	}
	var n int64
	err = s.db.QueryRowContext(ctx, "SELECT count(*) FROM documents WHERE "+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (s *SQLite) Delete(ctx context.Context, collection string, filter Filter) (int64, error) {
	defer observe(time.Now())

	where, args, err := sqliteWhere(collection, filter)
	if err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Close(context.Context) error {
	return s.db.Close()
}

func sqliteWhere(collection string, filter Filter) (string, []any, error) {
	clauses := []string{"collection = ?"}
	args := []any{collection}

	for _, c := range filter {
		err := validField(c.Field)
		if err != nil {
			return "", nil, err
		}
		var op string
		switch c.Op {
		case Eq:
			op = "="
		case Gte:
			op = ">="
		case Lte:
			op = "<="
		default:
			return "", nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		path := "$." + c.Field

		switch v := c.Value.(type) {
		case nil:
			if c.Op != Eq {
				return "", nil, fmt.Errorf("operator %q needs a value", c.Op)
			}
			clauses = append(clauses, "json_extract(doc, ?) IS NULL")
			args = append(args, path)
		case time.Time:
			clauses = append(clauses, fmt.Sprintf("julianday(json_extract(doc, ?)) %s julianday(?)", op))
			args = append(args, path, v.UTC().Format(time.RFC3339Nano))
		case bool:
			b := 0
			if v {
				b = 1
			}
			clauses = append(clauses, fmt.Sprintf("json_extract(doc, ?) %s ?", op))
			args = append(args, path, b)
		default:
			clauses = append(clauses, fmt.Sprintf("json_extract(doc, ?) %s ?", op))
			args = append(args, path, v)
		}
	}
	return strings.Join(clauses, " AND "), args, nil
}

func constraint(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
