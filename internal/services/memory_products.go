package services

import (
	"context"
	"sort"
	"sync"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
)

type productSnapshot struct {
	NextCode int             `json:"nextCode"`
	Products []storedProduct `json:"products"`
}

// storedProduct keeps the object key the public JSON hides.
type storedProduct struct {
	models.Product
	Key string `json:"imageKey,omitempty"`
}

// MemoryProductStore keeps listings in a map, optionally persisted to DATA_DIR.
type MemoryProductStore struct {
	mu       sync.RWMutex
	products map[int]*models.Product
	nextCode int
	snap     snapshot[productSnapshot]
}

func NewMemoryProductStore(dataDir string) (*MemoryProductStore, error) {
	snap, data, err := openSnapshot[productSnapshot](dataDir, "products.json")
	if err != nil {
		return nil, err
	}
	s := &MemoryProductStore{
		products: make(map[int]*models.Product),
		nextCode: data.NextCode,
		snap:     snap,
	}
	for _, sp := range data.Products {
		p := sp.Product
		p.ImageKey = sp.Key
		s.products[p.Code] = &p
		if p.Code > s.nextCode {
			s.nextCode = p.Code
		}
	}
	return s, nil
}

// persist must be called with mu held.
func (s *MemoryProductStore) persist() {
	list := make([]storedProduct, 0, len(s.products))
	for _, p := range s.products {
		list = append(list, storedProduct{Product: *p, Key: p.ImageKey})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	s.snap.save(productSnapshot{NextCode: s.nextCode, Products: list})
}

func (s *MemoryProductStore) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCode++
	cp := *p
	cp.Code = s.nextCode
	s.products[cp.Code] = &cp
	s.persist()

	out := cp
	return &out, nil
}

func (s *MemoryProductStore) Get(ctx context.Context, code int) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[code]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryProductStore) List(ctx context.Context, q ProductQuery) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Product, 0)
	for _, p := range s.products {
		if q.matches(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryProductStore) Update(ctx context.Context, p *models.Product, expected lifecycle.Status) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.products[p.Code]
	if !ok {
		return nil, ErrProductNotFound
	}
	if cur.Status != expected {
		return nil, ErrStatusConflict
	}
	cp := *p
	s.products[p.Code] = &cp
	s.persist()

	out := cp
	return &out, nil
}

func (s *MemoryProductStore) SetReview(ctx context.Context, code int, expected lifecycle.Status, r ReviewUpdate) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.products[code]
	if !ok {
		return nil, ErrProductNotFound
	}
	if cur.Status != expected {
		return nil, ErrStatusConflict
	}
	cur.Status, cur.Feedback, cur.UpdatedAt = r.Status, r.Feedback, r.UpdatedAt
	s.persist()

	out := *cur
	return &out, nil
}

func (s *MemoryProductStore) SetImage(ctx context.Context, code int, fromKey, path, key string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.products[code]
	if !ok {
		return nil, ErrProductNotFound
	}
	if cur.ImageKey != fromKey {
		return nil, ErrStatusConflict
	}
	cur.ImagePath, cur.ImageKey = path, key
	s.persist()

	out := *cur
	return &out, nil
}

func (s *MemoryProductStore) Delete(ctx context.Context, code int) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[code]
	if !ok {
		return nil, ErrProductNotFound
	}
	delete(s.products, code)
	s.persist()
	return p, nil
}

func (s *MemoryProductStore) DeleteBySeller(ctx context.Context, seller string) ([]*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []*models.Product
	for code, p := range s.products {
		if p.SellerUsername == seller {
			removed = append(removed, p)
			delete(s.products, code)
		}
	}
	if len(removed) > 0 {
		s.persist()
	}
	return removed, nil
}

func sortNewestFirst(list []*models.Product) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].Code > list[j].Code
	})
}
