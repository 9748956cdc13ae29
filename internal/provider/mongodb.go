package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/utils"
	"github.com/surendratiwari3/taskexec/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBProviderInterface defines the methods for interacting with MongoDB.
type MongoDBProviderInterface interface {
	Insert(ctx context.Context, collection string, document interface{}) error
	FindOne(ctx context.Context, collection string, filter interface{}, out interface{}) (bool, error)
	Delete(ctx context.Context, collection string, filter interface{}) (int64, error)
	Disconnect(ctx context.Context) error
}

type mongoDBClient struct {
	client      *mongo.Client
	mongoConfig config.MongoDBConfig
	maxRetries  int
}

// NewMongoDBClient connects to MongoDB and returns an interface to it.
func NewMongoDBClient(ctx context.Context, mongoConfig config.MongoDBConfig) (MongoDBProviderInterface, error) {
	client := &mongoDBClient{mongoConfig: mongoConfig, maxRetries: 5}
	if err := client.connect(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func (m *mongoDBClient) connect(ctx context.Context) error {
	clientOptions := options.Client().
		ApplyURI(m.mongoConfig.URI).
		SetMaxPoolSize(m.mongoConfig.MaxPoolSize)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("could not connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("could not ping MongoDB: %w", err)
	}
	m.client = client
	return nil
}

func (m *mongoDBClient) Disconnect(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

// reconnect retries with fibonacci backoff in seconds
func (m *mongoDBClient) reconnect(ctx context.Context) error {
	for attempt := 1; attempt <= m.maxRetries; attempt++ {
		if err := m.connect(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(utils.Fibonacci(attempt)) * time.Second):
		}
	}
	return fmt.Errorf("failed to reconnect to MongoDB after %d attempts", m.maxRetries)
}

func (m *mongoDBClient) Insert(ctx context.Context, collection string, document interface{}) error {
	if err := m.checkConnection(ctx); err != nil {
		return err
	}
	coll := m.client.Database(m.mongoConfig.DbName).Collection(collection)
	_, err := coll.InsertOne(ctx, document)
	return err
}

// FindOne decodes the first match into out; found is false when nothing matched.
func (m *mongoDBClient) FindOne(ctx context.Context, collection string, filter interface{}, out interface{}) (bool, error) {
	if err := m.checkConnection(ctx); err != nil {
		return false, err
	}
	coll := m.client.Database(m.mongoConfig.DbName).Collection(collection)
	err := coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *mongoDBClient) Delete(ctx context.Context, collection string, filter interface{}) (int64, error) {
	if err := m.checkConnection(ctx); err != nil {
		return 0, err
	}
	coll := m.client.Database(m.mongoConfig.DbName).Collection(collection)
	res, err := coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *mongoDBClient) checkConnection(ctx context.Context) error {
	if m.client != nil {
		if err := m.client.Ping(ctx, nil); err == nil {
			return nil
		}
	}
	logger.ApplicationLogger.Warn("mongodb connection lost, attempting to reconnect")
	return m.reconnect(ctx)
}
