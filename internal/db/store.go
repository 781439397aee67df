package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("document not found")
var ErrDuplicate = errors.New("duplicate document")

const (
	Users         = "users"
	HealthQueries = "health_queries"
	QueryLogs     = "query_logs"
	ErrorLogs     = "error_logs"
)

// Store is a document store keyed by collection and id. Field names in
// filters and sorting are the JSON names of the stored documents, nested
// fields are separated by dots.
type Store interface {
	// Put inserts or replaces the document with the given id.
	Put(ctx context.Context, collection string, id string, doc any) error
	// Insert fails with ErrDuplicate when id or a unique field already exists.
	Insert(ctx context.Context, collection string, id string, doc any) error
	Get(ctx context.Context, collection string, id string) (Document, error)
	Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error)
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Delete(ctx context.Context, collection string, filter Filter) (int64, error)
	Close(ctx context.Context) error
}

type Document interface {
	Decode(out any) error
}

type Op string

const (
	Eq  Op = "eq"
	Gte Op = "gte"
	Lte Op = "lte"
)

type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter matches documents satisfying every condition.
type Filter []Cond

func Where(field string, op Op, value any) Filter {
	return Filter{{Field: field, Op: op, Value: value}}
}

func (f Filter) And(field string, op Op, value any) Filter {
	return append(append(Filter{}, f...), Cond{Field: field, Op: op, Value: value})
}

type FindOptions struct {
	Sort  string
	Desc  bool
	Skip  int64
	Limit int64
}

// Open connects to MongoDB for mongodb:// and mongodb+srv:// URIs and opens
// a sqlite file otherwise.
func Open(ctx context.Context, dsn string, database string) (Store, error) {
	if strings.HasPrefix(dsn, "mongodb://") || strings.HasPrefix(dsn, "mongodb+srv://") {
		return OpenMongo(ctx, dsn, database)
	}
	return OpenSQLite(ctx, dsn)
}

// All decodes every document into a T.
func All[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var t T
		err := d.Decode(&t)
		if err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

func validField(field string) error {
	if field == "" {
		return fmt.Errorf("empty field name")
	}
	for _, part := range strings.Split(field, ".") {
		if part == "" {
			return fmt.Errorf("invalid field name %q", field)
		}
		for _, r := range part {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return fmt.Errorf("invalid field name %q", field)
			}
		}
	}
	return nil
}
