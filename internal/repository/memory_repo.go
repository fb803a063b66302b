package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Werneck0live/cadastro-cnpj/internal/cnpj"
	"github.com/Werneck0live/cadastro-cnpj/internal/models"
	"github.com/Werneck0live/cadastro-cnpj/internal/sentinel"
)

// MemoryCompanyRepository keeps companies in process memory. Uniqueness of
// cnpj is checked under the same lock as the write, so it gives the same
// guarantee as the Mongo unique index. Used with STORAGE_DRIVER=memory and in
// tests.
type MemoryCompanyRepository struct {
	mu     sync.RWMutex
	byID   map[int64]models.Company
	byCNPJ map[string]int64
	lastID int64
	now    func() time.Time
}

func NewMemoryCompanyRepository() *MemoryCompanyRepository {
	return &MemoryCompanyRepository{
		byID:   make(map[int64]models.Company),
		byCNPJ: make(map[string]int64),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryCompanyRepository) FindByID(_ context.Context, id int64) (*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &c, nil
}

func (r *MemoryCompanyRepository) FindByCNPJ(_ context.Context, value cnpj.CNPJ) (*models.Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byCNPJ[value.String()]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	c := r.byID[id]
	return &c, nil
}

func (r *MemoryCompanyRepository) FindAll(_ context.Context, limit, skip int64) ([]models.Company, error) {
	r.mu.RLock()
	list := make([]models.Company, 0, len(r.byID))
	for _, c := range r.byID {
		list = append(list, c)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})

	if skip < 0 {
		skip = 0
	}
	if skip >= int64(len(list)) {
		return []models.Company{}, nil
	}
	list = list[skip:]
	if limit > 0 && limit < int64(len(list)) {
		list = list[:limit]
	}
	return list, nil
}

func (r *MemoryCompanyRepository) Save(_ context.Context, c *models.Company) (*models.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// mesma ordem do Mongo: replace de id inexistente é ErrNotFound
	prev, exists := r.byID[c.ID]
	if c.ID != 0 && !exists {
		return nil, sentinel.ErrNotFound
	}
	key := c.CNPJ.String()
	if holder, taken := r.byCNPJ[key]; taken && holder != c.ID {
		return nil, sentinel.ErrConflict
	}

	doc := *c
	if doc.ID == 0 {
		r.lastID++
		doc.ID = r.lastID
		doc.CreatedAt = r.now()
		doc.UpdatedAt = doc.CreatedAt
	} else {
		delete(r.byCNPJ, prev.CNPJ.String())
		doc.UpdatedAt = r.now()
	}

	r.byID[doc.ID] = doc
	r.byCNPJ[key] = doc.ID
	return &doc, nil
}

func (r *MemoryCompanyRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.byCNPJ, c.CNPJ.String())
	return nil
}
