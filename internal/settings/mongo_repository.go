package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoCollection holds one document per option.
const DefaultMongoCollection = "options"

// MongoRepository stores the record as a document keyed by option name.
type MongoRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoRepository(db *mongo.Database, collection string) *MongoRepository {
	if collection == "" {
		collection = DefaultMongoCollection
	}
	return &MongoRepository{collection: db.Collection(collection), now: time.Now}
}

type optionDocument struct {
	Name      string    `bson:"_id"`
	Providers Record    `bson:"providers"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func (r *MongoRepository) Load(ctx context.Context) (Record, error) {
	var doc optionDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": ProvidersOption}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: load providers option: %w", err)
	}
	return documentRecord(doc), nil
}

func (r *MongoRepository) Save(ctx context.Context, record Record) error {
	doc := optionDocument{
		Name:      ProvidersOption,
		Providers: record.Clone(),
		UpdatedAt: r.now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ProvidersOption}, doc, opts); err != nil {
		return fmt.Errorf("settings: save providers option: %w", err)
	}
	return nil
}

func documentRecord(doc optionDocument) Record {
	if doc.Providers == nil {
		return Record{}
	}
	return doc.Providers.Clone()
}
