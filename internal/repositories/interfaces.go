package repositories

import (
	"context"
	"errors"

	"github.com/tablemate/tablemate/internal/models"
)

var ErrNotFound = errors.New("not found")

type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetActiveByChat(ctx context.Context, chat int64) (*models.Collection, error)
	GetByUUID(ctx context.Context, uuid string) (*models.Collection, error)
	SetActive(ctx context.Context, uuid string, active bool) error
	UpdateSettings(ctx context.Context, uuid string, settings models.Settings) error
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, uuid string) error
}

type OrderLineRepository interface {
	Create(ctx context.Context, line *models.OrderLine) error
	GetByCollection(ctx context.Context, collectionUUID string) ([]*models.OrderLine, error)
	DeleteLastByUser(ctx context.Context, collectionUUID, user string) error
	DeleteByCollection(ctx context.Context, collectionUUID string) error
	Count(ctx context.Context) (int, error)
}
