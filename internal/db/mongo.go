package db

import (
	"context"
	"errors"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

const DefaultDatabase = "apomuden"

// Mongo stores each collection as a MongoDB collection. Documents need bson
// tags matching their JSON names, with the id stored as _id.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func OpenMongo(ctx context.Context, uri string, database string) (*Mongo, error) {
	if database == "" {
		database = DefaultDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	err = client.Ping(ctx, nil)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	m := &Mongo{client: client, db: client.Database(database)}
	_, err = m.db.Collection(Users).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create user email index: %w", err)
	}
	for _, c := range []string{HealthQueries, QueryLogs, ErrorLogs} {
		_, err = m.db.Collection(c).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
		})
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to create %s index: %w", c, err)
		}
	}
	return m, nil
}

type bsonDoc bson.Raw

func (d bsonDoc) Decode(out any) error {
	return bson.Unmarshal(d, out)
}

func (m *Mongo) Put(ctx context.Context, collection string, id string, doc any) error {
	defer observe(time.Now())

	_, err := m.db.Collection(collection).ReplaceOne(ctx, bson.D{{Key: "_id", Value: id}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", collection, id, duplicate(err))
	}
	return nil
}

func (m *Mongo) Insert(ctx context.Context, collection string, id string, doc any) error {
	defer observe(time.Now())

	_, err := m.db.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert %s/%s: %w", collection, id, duplicate(err))
	}
	return nil
}

func (m *Mongo) Get(ctx context.Context, collection string, id string) (Document, error) {
	defer observe(time.Now())

	raw, err := m.db.Collection(collection).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return bsonDoc(raw), nil
}

func (m *Mongo) Find(ctx context.Context, collection string, filter Filter, opts FindOptions) ([]Document, error) {
	defer observe(time.Now())

	f, err := mongoFilter(filter)
	if err != nil {
		return nil, err
	}
	fo, err := mongoFindOptions(opts)
	if err != nil {
		return nil, err
	}

	cur, err := m.db.Collection(collection).Find(ctx, f, fo)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var docs []Document
	for cur.Next(ctx) {
		raw := make(bson.Raw, len(cur.Current))
		copy(raw, cur.Current)
		docs = append(docs, bsonDoc(raw))
	}
	return docs, cur.Err()
}

func (m *Mongo) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	defer observe(time.Now())

	f, err := mongoFilter(filter)
	if err != nil {
		return 0, err
	}
	n, err := m.db.Collection(collection).CountDocuments(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

func (m *Mongo) Delete(ctx context.Context, collection string, filter Filter) (int64, error) {
	defer observe(time.Now())

	f, err := mongoFilter(filter)
	if err != nil {
		return 0, err
	}
	res, err := m.db.Collection(collection).DeleteMany(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", collection, err)
	}
	return res.DeletedCount, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func mongoField(field string) string {
	if field == "id" {
		return "_id"
	}
	return field
}

// mongoFilter merges conditions on the same field, so a gte and an lte on
// timestamp become one range.
func mongoFilter(filter Filter) (bson.D, error) {
	f := bson.D{}
	ranges := map[string]int{}
	for _, c := range filter {
		err := validField(c.Field)
		if err != nil {
			return nil, err
		}
		field := mongoField(c.Field)

		var op string
		switch c.Op {
		case Eq:
			op = "$eq"
		case Gte:
			op = "$gte"
		case Lte:
			op = "$lte"
		default:
			return nil, fmt.Errorf("unsupported operator %q", c.Op)
		}
		if c.Value == nil && c.Op != Eq {
			return nil, fmt.Errorf("operator %q needs a value", c.Op)
		}

		if i, ok := ranges[field]; ok {
			f[i].Value = append(f[i].Value.(bson.D), bson.E{Key: op, Value: c.Value})
			continue
		}
		ranges[field] = len(f)
		f = append(f, bson.E{Key: field, Value: bson.D{{Key: op, Value: c.Value}}})
	}
	return f, nil
}

func mongoFindOptions(opts FindOptions) (*options.FindOptions, error) {
	fo := options.Find()
	if opts.Sort != "" {
		err := validField(opts.Sort)
		if err != nil {
			return nil, err
		}
		dir := 1
		if opts.Desc {
			dir = -1
		}
		fo.SetSort(bson.D{{Key: mongoField(opts.Sort), Value: dir}})
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	return fo, nil
}

func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
