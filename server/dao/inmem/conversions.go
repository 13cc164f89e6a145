package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dekarrin/greibach/server/dao"
	"github.com/google/uuid"
)

func NewConversionsRepository() *InMemoryConversionsRepository {
	return &InMemoryConversionsRepository{
		convs: make(map[uuid.UUID]dao.Conversion),
	}
}

type InMemoryConversionsRepository struct {
	mtx   sync.RWMutex
	convs map[uuid.UUID]dao.Conversion
}

func (imcr *InMemoryConversionsRepository) Close() error {
	return nil
}

func (imcr *InMemoryConversionsRepository) Create(ctx context.Context, c dao.Conversion) (dao.Conversion, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Conversion{}, fmt.Errorf("could not generate ID: %w", err)
	}

	imcr.mtx.Lock()
	defer imcr.mtx.Unlock()

	c.ID = newUUID
	c.Created = time.Now()
	c.Outcomes = copyOutcomes(c.Outcomes)

	imcr.convs[c.ID] = c

	return c, nil
}

func (imcr *InMemoryConversionsRepository) GetAll(ctx context.Context) ([]dao.Conversion, error) {
	imcr.mtx.RLock()
	defer imcr.mtx.RUnlock()

	all := make([]dao.Conversion, 0, len(imcr.convs))
	for k := range imcr.convs {
		c := imcr.convs[k]
		c.Outcomes = copyOutcomes(c.Outcomes)
		all = append(all, c)
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].Created.Equal(all[j].Created) {
			return all[i].ID.String() < all[j].ID.String()
		}
		return all[i].Created.Before(all[j].Created)
	})

	return all, nil
}

func (imcr *InMemoryConversionsRepository) GetByID(ctx context.Context, id uuid.UUID) (dao.Conversion, error) {
	imcr.mtx.RLock()
	defer imcr.mtx.RUnlock()

	c, ok := imcr.convs[id]
	if !ok {
		return dao.Conversion{}, dao.ErrNotFound
	}
	c.Outcomes = copyOutcomes(c.Outcomes)

	return c, nil
}

func (imcr *InMemoryConversionsRepository) Delete(ctx context.Context, id uuid.UUID) (dao.Conversion, error) {
	imcr.mtx.Lock()
	defer imcr.mtx.Unlock()

	c, ok := imcr.convs[id]
	if !ok {
		return dao.Conversion{}, dao.ErrNotFound
	}
	delete(imcr.convs, id)

	return c, nil
}

// copyOutcomes copies the slices of outcomes; the grammars in them are
// immutable and can be shared.
func copyOutcomes(outcomes []dao.Outcome) []dao.Outcome {
	if outcomes == nil {
		return nil
	}
	cp := make([]dao.Outcome, len(outcomes))
	for i := range outcomes {
		cp[i] = outcomes[i]
		cp[i].Order = append([]string(nil), outcomes[i].Order...)
	}
	return cp
}
