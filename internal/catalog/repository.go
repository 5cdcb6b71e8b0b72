package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository defines read access to houses and promos.
type Repository interface {
	GetHouse(ctx context.Context, id int64) (*House, error)
	// ActiveHouses returns active houses, optionally filtered by a
	// case-insensitive location substring, capped at limit.
	ActiveHouses(ctx context.Context, location string, limit int) ([]House, error)
	// ActivePromo returns the single applicable promo for the house on the
	// given date. Tie-break is lowest promo id. ErrNoActivePromo when none.
	ActivePromo(ctx context.Context, houseID int64, on time.Time) (*Promo, error)
}

// InMemoryRepository backs the catalog with in-process maps. Used in tests
// and when no database is configured.
type InMemoryRepository struct {
	mu          sync.RWMutex
	houses      map[int64]House
	promos      map[int64]Promo
	promoHouses map[int64][]int64 // promo id -> house ids
}

// NewInMemoryRepository creates an empty in-memory catalog.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		houses:      make(map[int64]House),
		promos:      make(map[int64]Promo),
		promoHouses: make(map[int64][]int64),
	}
}

// PutHouse inserts or replaces a house.
func (r *InMemoryRepository) PutHouse(h House) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.houses[h.ID] = h
}

// PutPromo inserts or replaces a promo and its applicable houses.
func (r *InMemoryRepository) PutPromo(p Promo, houseIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promos[p.ID] = p
	r.promoHouses[p.ID] = append([]int64(nil), houseIDs...)
}

func (r *InMemoryRepository) GetHouse(ctx context.Context, id int64) (*House, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.houses[id]
	if !ok {
		return nil, ErrHouseNotFound
	}
	return &h, nil
}

func (r *InMemoryRepository) ActiveHouses(ctx context.Context, location string, limit int) ([]House, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []House
	for _, h := range r.houses {
		if !h.IsActive {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(h.Location), strings.ToLower(location)) {
			continue
		}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *InMemoryRepository) ActivePromo(ctx context.Context, houseID int64, on time.Time) (*Promo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *Promo
	for promoID, houseIDs := range r.promoHouses {
		p, ok := r.promos[promoID]
		if !ok || !p.AppliesOn(on) {
			continue
		}
		for _, id := range houseIDs {
			if id != houseID {
				continue
			}
			if best == nil || p.ID < best.ID {
				cp := p
				best = &cp
			}
		}
	}
	if best == nil {
		return nil, ErrNoActivePromo
	}
	return best, nil
}
