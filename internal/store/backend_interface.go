package store

import (
	"context"

	"github.com/surendratiwari3/taskexec/schema"
)

// Backend - a common interface for all result stores
type Backend interface {
	// InsertRequest persists the outcome of a finished execution request
	InsertRequest(ctx context.Context, record *schema.RequestRecord) error
	// GetRequest returns appErrors.ErrRecordNotFound when id is unknown
	GetRequest(ctx context.Context, id string) (*schema.RequestRecord, error)
	DeleteRequest(ctx context.Context, id string) error
	StoreType() string
	Close(ctx context.Context) error
}
