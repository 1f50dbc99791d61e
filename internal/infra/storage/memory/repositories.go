package memory

import (
	"context"
	"sort"
	"sync"

	domainannouncements "tradeboard/internal/domain/announcements"
	domainavailability "tradeboard/internal/domain/availability"
	domaintransactions "tradeboard/internal/domain/transactions"
)

// AnnouncementRepository keeps announcements in a map. Reads return copies so
// callers never mutate stored state without Save.
type AnnouncementRepository struct {
	mu    sync.RWMutex
	items map[domainannouncements.ID]*domainannouncements.Announcement
}

func NewAnnouncementRepository() *AnnouncementRepository {
	return &AnnouncementRepository{items: make(map[domainannouncements.ID]*domainannouncements.Announcement)}
}

func (r *AnnouncementRepository) ByID(ctx context.Context, id domainannouncements.ID) (*domainannouncements.Announcement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.items[id]
	if !ok {
		return nil, domainannouncements.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *AnnouncementRepository) Save(ctx context.Context, a *domainannouncements.Announcement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.Version++
	r.items[a.ID] = a.Clone()
	return nil
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id domainannouncements.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainannouncements.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// CalendarRepository stores availability calendars with version checks on save.
type CalendarRepository struct {
	mu    sync.RWMutex
	items map[domainannouncements.ID]*domainavailability.Calendar
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{items: make(map[domainannouncements.ID]*domainavailability.Calendar)}
}

func (r *CalendarRepository) Calendar(ctx context.Context, id domainannouncements.ID) (*domainavailability.Calendar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cal, ok := r.items[id]
	if !ok {
		return nil, domainavailability.ErrCalendarNotFound
	}
	return cal.Clone(), nil
}

func (r *CalendarRepository) Save(ctx context.Context, cal *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[cal.AnnouncementID]; ok && current.Version != cal.Version {
		return domainavailability.ErrConcurrentUpdate
	}
	cal.Version++
	r.items[cal.AnnouncementID] = cal.Clone()
	return nil
}

func (r *CalendarRepository) Delete(ctx context.Context, id domainannouncements.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

// TransactionRepository stores transactions with version checks on save.
type TransactionRepository struct {
	mu    sync.RWMutex
	items map[domaintransactions.ID]*domaintransactions.Transaction
}

func NewTransactionRepository() *TransactionRepository {
	return &TransactionRepository{items: make(map[domaintransactions.ID]*domaintransactions.Transaction)}
}

func (r *TransactionRepository) ByID(ctx context.Context, id domaintransactions.ID) (*domaintransactions.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.items[id]
	if !ok {
		return nil, domaintransactions.ErrNotFound
	}
	return t.Clone(), nil
}

func (r *TransactionRepository) Save(ctx context.Context, t *domaintransactions.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.items[t.ID]; ok && current.Version != t.Version {
		return domaintransactions.ErrConcurrentUpdate
	}
	t.Version++
	r.items[t.ID] = t.Clone()
	return nil
}

func (r *TransactionRepository) ListByParty(ctx context.Context, customerID string) ([]*domaintransactions.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domaintransactions.Transaction, 0)
	for _, t := range r.items {
		if t.IsParty(customerID) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

var (
	_ domainannouncements.Repository = (*AnnouncementRepository)(nil)
	_ domainavailability.Repository  = (*CalendarRepository)(nil)
	_ domaintransactions.Repository  = (*TransactionRepository)(nil)
)
