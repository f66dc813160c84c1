// Package memory provides in-memory repository implementations for one-shot
// CLI runs and tests, where no Postgres instance is configured.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/tablemate/tablemate/internal/models"
	"github.com/tablemate/tablemate/internal/repositories"
)

type CollectionRepository struct {
	mu          sync.RWMutex
	collections map[string]models.Collection
}

func NewCollectionRepository() *CollectionRepository {
	return &CollectionRepository{collections: make(map[string]models.Collection)}
}

func (r *CollectionRepository) Create(_ context.Context, collection *models.Collection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collections[collection.UUID] = *collection
	return nil
}

func (r *CollectionRepository) GetActiveByChat(_ context.Context, chat int64) (*models.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *models.Collection
	for uuid := range r.collections {
		c := r.collections[uuid]
		if c.Chat != chat || !c.Active {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = &c
		}
	}
	if latest == nil {
		return nil, repositories.ErrNotFound
	}
	return latest, nil
}

func (r *CollectionRepository) GetByUUID(_ context.Context, uuid string) (*models.Collection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collections[uuid]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r *CollectionRepository) SetActive(_ context.Context, uuid string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[uuid]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Active = active
	r.collections[uuid] = c
	return nil
}

func (r *CollectionRepository) UpdateSettings(_ context.Context, uuid string, settings models.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[uuid]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Settings = settings
	r.collections[uuid] = c
	return nil
}

func (r *CollectionRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.collections), nil
}

func (r *CollectionRepository) Delete(_ context.Context, uuid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collections, uuid)
	return nil
}

type OrderLineRepository struct {
	mu    sync.RWMutex
	lines []models.OrderLine
}

func NewOrderLineRepository() *OrderLineRepository {
	return &OrderLineRepository{}
}

func (r *OrderLineRepository) Create(_ context.Context, line *models.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, *line)
	return nil
}

func (r *OrderLineRepository) GetByCollection(_ context.Context, collectionUUID string) ([]*models.OrderLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*models.OrderLine
	for i := range r.lines {
		if r.lines[i].CollectionUUID == collectionUUID {
			line := r.lines[i]
			result = append(result, &line)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *OrderLineRepository) DeleteLastByUser(_ context.Context, collectionUUID, user string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.lines) - 1; i >= 0; i-- {
		if r.lines[i].CollectionUUID == collectionUUID && r.lines[i].User == user {
			r.lines = append(r.lines[:i], r.lines[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *OrderLineRepository) DeleteByCollection(_ context.Context, collectionUUID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.lines[:0]
	for _, line := range r.lines {
		if line.CollectionUUID != collectionUUID {
			kept = append(kept, line)
		}
	}
	r.lines = kept
	return nil
}

func (r *OrderLineRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lines), nil
}
