package session

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/flowboard/pkg/errors"
)

// MongoConfig configures a [MongoStore].
type MongoConfig struct {
	URI        string
	Database   string // defaults to "flowboard"
	Collection string // defaults to "boards"
}

// MongoStore keeps one document per project, keyed by project name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "flowboard"
	}
	if cfg.Collection == "" {
		cfg.Collection = "boards"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI).SetConnectTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	err = retry(ctx, connectAttempts, connectDelay, func() error {
		return transient(client.Ping(ctx, nil))
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, project string) (*State, error) {
	var st State
	err := s.coll.FindOne(ctx, bson.M{"_id": project}).Decode(&st)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "find board %s", project)
	}
	return &st, nil
}

func (s *MongoStore) Save(ctx context.Context, project string, st *State) error {
	if err := errors.ValidateProjectName(project); err != nil {
		return err
	}
	doc := *st
	doc.Project = project
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": project}, &doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save board %s", project)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, project string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": project}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete board %s", project)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
