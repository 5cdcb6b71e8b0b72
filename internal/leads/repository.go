package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Repository defines the interface for lead storage
type Repository interface {
	// GetOrCreateByPSID returns the lead for the subscriber id, creating a
	// default COLD/START record atomically on first contact.
	GetOrCreateByPSID(ctx context.Context, psid string) (*Lead, error)
	// Update persists the mutable funnel fields. Last write wins.
	Update(ctx context.Context, lead *Lead) error
	// List returns leads ordered by recency for back-office reads.
	List(ctx context.Context, limit int) ([]Lead, error)
}

// InMemoryRepository is a Repository backed by in-process storage, used in
// tests and when no database is configured.
type InMemoryRepository struct {
	mu     sync.RWMutex
	nextID int64
	leads  map[string]*Lead
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{leads: make(map[string]*Lead)}
}

func (r *InMemoryRepository) GetOrCreateByPSID(ctx context.Context, psid string) (*Lead, error) {
	psid = strings.TrimSpace(psid)
	if psid == "" {
		return nil, ErrMissingPSID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if lead, ok := r.leads[psid]; ok {
		cp := *lead
		return &cp, nil
	}
	r.nextID++
	lead := &Lead{
		ID:          r.nextID,
		PSID:        psid,
		Status:      StatusCold,
		CurrentStep: StepStart,
		CreatedAt:   time.Now().UTC(),
	}
	r.leads[psid] = lead
	cp := *lead
	return &cp, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, lead *Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.leads[lead.PSID]
	if !ok {
		return ErrLeadNotFound
	}
	cp := *lead
	cp.ID = stored.ID
	cp.CreatedAt = stored.CreatedAt
	r.leads[lead.PSID] = &cp
	return nil
}

func (r *InMemoryRepository) List(ctx context.Context, limit int) ([]Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Lead, 0, len(r.leads))
	for _, lead := range r.leads {
		out = append(out, *lead)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
