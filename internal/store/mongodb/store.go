package mongodb

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/surendratiwari3/taskexec/config"
	"github.com/surendratiwari3/taskexec/internal/provider"
	"github.com/surendratiwari3/taskexec/internal/store"
	"github.com/surendratiwari3/taskexec/logger"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// Store keeps request records in a mongodb collection, keyed by request id
type Store struct {
	client     provider.MongoDBProviderInterface
	collection string
}

func NewMongoDBStore(client provider.MongoDBProviderInterface, mongoConfig *config.MongoDBConfig) (store.Backend, error) {
	if client == nil || mongoConfig == nil {
		return nil, appErrors.ErrNilConfig
	}
	return &Store{
		client:     client,
		collection: mongoConfig.Collection,
	}, nil
}

func (s *Store) InsertRequest(ctx context.Context, record *schema.RequestRecord) error {
	if record == nil || record.ID == "" {
		return appErrors.ErrInvalidRecord
	}
	if err := s.client.Insert(ctx, s.collection, record); err != nil {
		logger.ApplicationLogger.WithFields(logrus.Fields{"request": record.ID}).WithError(err).Error("failed to insert request record")
		return err
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*schema.RequestRecord, error) {
	record := &schema.RequestRecord{}
	found, err := s.client.FindOne(ctx, s.collection, bson.M{"_id": id}, record)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, appErrors.ErrRecordNotFound
	}
	return record, nil
}

func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	deleted, err := s.client.Delete(ctx, s.collection, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return appErrors.ErrRecordNotFound
	}
	return nil
}

func (s *Store) StoreType() string {
	return "mongodb"
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
