package null

import (
	"context"

	"github.com/surendratiwari3/taskexec/internal/store"
	"github.com/surendratiwari3/taskexec/schema"
	appErrors "github.com/surendratiwari3/taskexec/schema/errors"
)

// Store discards every record
type Store struct{}

func NewNullBackend() store.Backend {
	return &Store{}
}

func (s *Store) InsertRequest(ctx context.Context, record *schema.RequestRecord) error {
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*schema.RequestRecord, error) {
	return nil, appErrors.ErrRecordNotFound
}

func (s *Store) DeleteRequest(ctx context.Context, id string) error {
	return nil
}

func (s *Store) StoreType() string {
	return "null"
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}
