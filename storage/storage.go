// Package storage persists tasks in a MongoDB collection with a unique
// index on the task id, optionally fronted by a Redis read cache.
package storage

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kanbanflow/domain"
)

// Store provides durable keyed storage of tasks.
type Store struct {
	col *mongo.Collection
}

// New connects to MongoDB and prepares the task collection. Index creation
// is best-effort so a temporarily unreachable store does not keep the
// process from starting; mutating calls will surface the real error.
func New(ctx context.Context, uri, database, collection string, logger *log.Logger) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10 * time.Second)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	s := &Store{col: client.Database(database).Collection(collection)}
	if err := s.ensureIndexes(ctx); err != nil {
		logger.WithError(err).Warn("storage: unable to create task id index")
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// GetAll returns every stored task, scoped to a board when boardID is
// non-empty. Order is stable across reads absent mutation.
func (s *Store) GetAll(ctx context.Context, boardID string) ([]domain.Task, error) {
	filter := bson.M{}
	if boardID != "" {
		filter["boardId"] = boardID
	}
	cur, err := s.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Create validates and persists a task, returning the stored record
// unchanged. A duplicate id yields a ConflictError.
func (s *Store) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	if err := t.Validate(); err != nil {
		return domain.Task{}, err
	}
	if _, err := s.col.InsertOne(ctx, t); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.Task{}, domain.ConflictError{ID: t.ID}
		}
		return domain.Task{}, err
	}
	return t, nil
}

// Update applies a partial update to the addressed task. Omitted fields
// retain their prior values; concurrent updates resolve last-write-wins by
// arrival order.
func (s *Store) Update(ctx context.Context, id string, p domain.Patch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}
	var current domain.Task
	err := s.col.FindOne(ctx, bson.M{"id": id}).Decode(&current)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Task{}, domain.NotFoundError{ID: id}
		}
		return domain.Task{}, err
	}
	updated := p.Apply(current)
	if _, err := s.col.ReplaceOne(ctx, bson.M{"id": id}, updated); err != nil {
		return domain.Task{}, err
	}
	return updated, nil
}

// Delete removes the addressed task.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.NotFoundError{ID: id}
	}
	return nil
}
