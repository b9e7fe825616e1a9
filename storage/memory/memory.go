// Package memory is an in-process implementation of storage.IStorage. It
// backs local runs without Postgres and the service and API tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"
	"tripsettle/pkg/models"
	"tripsettle/storage"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	mu  sync.RWMutex
	seq int64
	now func() time.Time

	trips       map[int64]models.Trip
	settlements map[int64]models.Settlement
	tariffs     map[int64]models.TariffRule
	drivers     map[int64]models.Driver
	catalogs    map[models.CatalogKind]map[int64]models.CatalogEntry
}

func New() *Store {
	return &Store{
		now:         time.Now,
		trips:       make(map[int64]models.Trip),
		settlements: make(map[int64]models.Settlement),
		tariffs:     make(map[int64]models.TariffRule),
		drivers:     make(map[int64]models.Driver),
		catalogs:    make(map[models.CatalogKind]map[int64]models.CatalogEntry),
	}
}

func (s *Store) Trip() storage.ITripStorage             { return tripRepo{s} }
func (s *Store) Settlement() storage.ISettlementStorage { return settlementRepo{s} }
func (s *Store) Tariff() storage.ITariffStorage         { return tariffRepo{s} }
func (s *Store) Driver() storage.IDriverStorage         { return driverRepo{s} }
func (s *Store) Catalog() storage.ICatalogStorage       { return catalogRepo{s} }

func (s *Store) Close() {}

// GetPool returns nil; there is no database behind this store.
func (s *Store) GetPool() *pgxpool.Pool { return nil }

// Reset drops trips and settlements and keeps catalogs, drivers and tariffs.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trips = make(map[int64]models.Trip)
	s.settlements = make(map[int64]models.Settlement)
}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type tripRepo struct{ s *Store }

func (r tripRepo) Create(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	trip.ID = r.s.nextID()
	trip.CreatedAt = r.s.now()
	trip.UpdatedAt = trip.CreatedAt
	r.s.trips[trip.ID] = *trip
	out := *trip
	return &out, nil
}

func (r tripRepo) Update(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.trips[trip.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	trip.CreatedAt = prev.CreatedAt
	trip.UpdatedAt = r.s.now()
	r.s.trips[trip.ID] = *trip
	out := *trip
	return &out, nil
}

func (r tripRepo) GetByID(ctx context.Context, id int64) (*models.Trip, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.trips[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (r tripRepo) GetAll(ctx context.Context) ([]*models.Trip, error) {
	return r.filter(func(models.Trip) bool { return true }), nil
}

func (r tripRepo) GetByStatus(ctx context.Context, status models.TripStatus) ([]*models.Trip, error) {
	return r.filter(func(t models.Trip) bool { return t.Status == status }), nil
}

func (r tripRepo) filter(keep func(models.Trip) bool) []*models.Trip {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Trip
	ids := sortedIDs(r.s.trips)
	for i := len(ids) - 1; i >= 0; i-- {
		t := r.s.trips[ids[i]]
		if keep(t) {
			out = append(out, &t)
		}
	}
	return out
}

type settlementRepo struct{ s *Store }

func (r settlementRepo) Create(ctx context.Context, st *models.Settlement) (*models.Settlement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.settlements {
		if existing.SourceTripID == st.SourceTripID {
			return nil, storage.ErrConflict
		}
	}
	st.ID = r.s.nextID()
	st.CreatedAt = r.s.now()
	st.UpdatedAt = st.CreatedAt
	r.s.settlements[st.ID] = *st
	out := *st
	return &out, nil
}

func (r settlementRepo) Update(ctx context.Context, st *models.Settlement) (*models.Settlement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.settlements[st.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	st.SourceTripID = prev.SourceTripID
	st.CreatedAt = prev.CreatedAt
	st.UpdatedAt = r.s.now()
	r.s.settlements[st.ID] = *st
	out := *st
	return &out, nil
}

func (r settlementRepo) GetByID(ctx context.Context, id int64) (*models.Settlement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.settlements[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &st, nil
}

func (r settlementRepo) GetBySourceTrip(ctx context.Context, tripID int64) (*models.Settlement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, st := range r.s.settlements {
		if st.SourceTripID == tripID {
			return &st, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r settlementRepo) GetAll(ctx context.Context) ([]*models.Settlement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Settlement
	ids := sortedIDs(r.s.settlements)
	for i := len(ids) - 1; i >= 0; i-- {
		st := r.s.settlements[ids[i]]
		out = append(out, &st)
	}
	return out, nil
}

type tariffRepo struct{ s *Store }

func (r tariffRepo) GetAll(ctx context.Context) ([]*models.TariffRule, error) {
	return r.list(false), nil
}

func (r tariffRepo) GetActive(ctx context.Context) ([]*models.TariffRule, error) {
	return r.list(true), nil
}

func (r tariffRepo) list(activeOnly bool) []*models.TariffRule {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.TariffRule
	for _, id := range sortedIDs(r.s.tariffs) {
		t := r.s.tariffs[id]
		if activeOnly && !t.Active {
			continue
		}
		out = append(out, &t)
	}
	return out
}

func (r tariffRepo) GetByID(ctx context.Context, id int64) (*models.TariffRule, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.tariffs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (r tariffRepo) Create(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule.ID = r.s.nextID()
	rule.CreatedAt = r.s.now()
	rule.UpdatedAt = rule.CreatedAt
	r.s.tariffs[rule.ID] = *rule
	out := *rule
	return &out, nil
}

func (r tariffRepo) Update(ctx context.Context, rule *models.TariffRule) (*models.TariffRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	prev, ok := r.s.tariffs[rule.ID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	rule.CreatedAt = prev.CreatedAt
	rule.UpdatedAt = r.s.now()
	r.s.tariffs[rule.ID] = *rule
	out := *rule
	return &out, nil
}

func (r tariffRepo) SetActive(ctx context.Context, id int64, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tariffs[id]
	if !ok {
		return storage.ErrNotFound
	}
	t.Active = active
	t.UpdatedAt = r.s.now()
	r.s.tariffs[id] = t
	return nil
}

type driverRepo struct{ s *Store }

func (r driverRepo) GetActive(ctx context.Context) ([]*models.Driver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*models.Driver
	for _, id := range sortedIDs(r.s.drivers) {
		d := r.s.drivers[id]
		if d.Active {
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r driverRepo) GetByID(ctx context.Context, id int64) (*models.Driver, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	d, ok := r.s.drivers[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &d, nil
}

func (r driverRepo) Create(ctx context.Context, driver *models.Driver) (*models.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	driver.ID = r.s.nextID()
	driver.CreatedAt = r.s.now()
	r.s.drivers[driver.ID] = *driver
	out := *driver
	return &out, nil
}

func (r driverRepo) LastUnloadingCoordinates(ctx context.Context) (map[int64]models.Coordinate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type point struct {
		at    time.Time
		id    int64
		coord models.Coordinate
	}
	latest := make(map[int64]point)
	for _, t := range r.s.trips {
		if t.DriverID == nil || t.CompletedAt == nil || t.UnloadingCoordinate == nil || !t.Status.Completed() {
			continue
		}
		p, ok := latest[*t.DriverID]
		if ok && (p.at.After(*t.CompletedAt) || (p.at.Equal(*t.CompletedAt) && p.id > t.ID)) {
			continue
		}
		latest[*t.DriverID] = point{at: *t.CompletedAt, id: t.ID, coord: *t.UnloadingCoordinate}
	}

	out := make(map[int64]models.Coordinate, len(latest))
	for driverID, p := range latest {
		out[driverID] = p.coord
	}
	return out, nil
}

type catalogRepo struct{ s *Store }

func (r catalogRepo) GetAll(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error) {
	return r.list(kind, false), nil
}

func (r catalogRepo) GetActive(ctx context.Context, kind models.CatalogKind) ([]*models.CatalogEntry, error) {
	return r.list(kind, true), nil
}

func (r catalogRepo) list(kind models.CatalogKind, activeOnly bool) []*models.CatalogEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	entries := r.s.catalogs[kind]
	var out []*models.CatalogEntry
	for _, id := range sortedIDs(entries) {
		e := entries[id]
		if activeOnly && !e.Active {
			continue
		}
		out = append(out, &e)
	}
	return out
}

func (r catalogRepo) GetByID(ctx context.Context, kind models.CatalogKind, id int64) (*models.CatalogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.catalogs[kind][id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &e, nil
}

func (r catalogRepo) Create(ctx context.Context, entry *models.CatalogEntry) (*models.CatalogEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.catalogs[entry.Kind] == nil {
		r.s.catalogs[entry.Kind] = make(map[int64]models.CatalogEntry)
	}
	entry.ID = r.s.nextID()
	entry.CreatedAt = r.s.now()
	r.s.catalogs[entry.Kind][entry.ID] = *entry
	out := *entry
	return &out, nil
}
