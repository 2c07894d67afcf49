package registry

import (
	"errors"
	"fmt"
	"sync"
)

type Kind string

const (
	KindCar  Kind = "car"
	KindBike Kind = "bike"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusOccupied  Status = "occupied"
	StatusLocked    Status = "locked"
)

var (
	ErrSpotNotFound      = errors.New("spot not found")
	ErrSpotUnavailable   = errors.New("spot unavailable")
	ErrSpotLocked        = errors.New("spot is locked")
	ErrKindMismatch      = errors.New("vehicle kind does not match spot")
	ErrSequenceViolation = errors.New("an earlier spot of this kind is still available")
)

// Spot is one unit of parking inventory.
type Spot struct {
	ID        int    `json:"id"`
	Kind      Kind   `json:"kind"`
	Capacity  int    `json:"capacity"`
	Occupancy int    `json:"occupancy"`
	Status    Status `json:"status"`
	Label     string `json:"label,omitempty"`
}

type spotState struct {
	mu sync.Mutex
	Spot
}

// Registry owns all spot state. The spot set is fixed at construction;
// only occupancy and status change afterwards, each under its spot's
// own mutex.
//
// Allocation must check the sequential-fill rule and mutate the target
// under one serialization boundary, so Allocate locks every same-kind
// spot at or below the target's fill position, in ascending order.
// Ordered acquisition keeps concurrent allocations deadlock-free, and a
// release of a lower spot cannot interleave with the check because it
// needs that spot's lock too.
type Registry struct {
	spots map[int]*spotState
	order map[Kind][]int
}

func New(seed []Spot) *Registry {
	r := &Registry{
		spots: make(map[int]*spotState),
		order: make(map[Kind][]int),
	}
	for _, s := range seed {
		if s.Status == "" {
			s.Status = statusFor(s)
		}
		st := &spotState{Spot: s}
		r.spots[s.ID] = st
		if s.Status != StatusLocked {
			r.order[s.Kind] = append(r.order[s.Kind], s.ID)
		}
	}
	return r
}

// DefaultLot mirrors the physical layout: 8 car spots, 4 bike racks of 4
// places each, plus locked emergency and VIP rows that never enter the
// allocation order.
func DefaultLot() *Registry {
	var seed []Spot
	for i := 1; i <= 8; i++ {
		seed = append(seed, Spot{ID: i, Kind: KindCar, Capacity: 1})
	}
	for i := 9; i <= 12; i++ {
		seed = append(seed, Spot{ID: i, Kind: KindBike, Capacity: 4})
	}
	for i := 101; i <= 104; i++ {
		seed = append(seed, Spot{ID: i, Kind: KindCar, Capacity: 1, Occupancy: 1, Status: StatusLocked, Label: "Emergency"})
	}
	for i := 201; i <= 204; i++ {
		seed = append(seed, Spot{ID: i, Kind: KindCar, Capacity: 1, Occupancy: 1, Status: StatusLocked, Label: "VIP"})
	}
	return New(seed)
}

func statusFor(s Spot) Status {
	if s.Occupancy > 0 {
		return StatusOccupied
	}
	return StatusAvailable
}

// lockThrough locks every same-kind spot up to and including the target's
// fill position and returns the locked states in order. The caller must
// call the returned unlock function.
func (r *Registry) lockThrough(kind Kind, spotID int) ([]*spotState, func(), bool) {
	var locked []*spotState
	found := false
	for _, id := range r.order[kind] {
		locked = append(locked, r.spots[id])
		if id == spotID {
			found = true
			break
		}
	}
	if !found {
		return nil, nil, false
	}
	for _, st := range locked {
		st.mu.Lock()
	}
	unlock := func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].mu.Unlock()
		}
	}
	return locked, unlock, true
}

// Allocate grants one place on the spot, enforcing the sequential-fill
// rule: no lower-ordered spot of the same kind may still have a free
// place. A partially filled bike rack counts as free.
func (r *Registry) Allocate(spotID int, kind Kind) error {
	st, ok := r.spots[spotID]
	if !ok {
		return ErrSpotNotFound
	}
	if st.Kind != kind {
		return fmt.Errorf("%w: spot %d takes %s", ErrKindMismatch, spotID, st.Kind)
	}

	locked, unlock, ok := r.lockThrough(kind, spotID)
	if !ok {
		// Not in the fill order means the spot is a locked zone.
		return fmt.Errorf("%w: spot %d", ErrSpotLocked, spotID)
	}
	defer unlock()

	target := locked[len(locked)-1]
	if target.Status == StatusLocked {
		return fmt.Errorf("%w: spot %d", ErrSpotLocked, spotID)
	}
	for _, st := range locked[:len(locked)-1] {
		if st.Status != StatusLocked && st.Occupancy < st.Capacity {
			return fmt.Errorf("%w: spot %d is free", ErrSequenceViolation, st.ID)
		}
	}
	if target.Occupancy >= target.Capacity {
		return fmt.Errorf("%w: spot %d is full", ErrSpotUnavailable, spotID)
	}

	target.Occupancy++
	target.Status = StatusOccupied
	return nil
}

// Release frees count places on the spot, clamping occupancy at zero, and
// recomputes its status. Releasing an already-free spot is a no-op, which
// keeps release idempotent for the confirmation watcher.
func (r *Registry) Release(spotID, count int) error {
	st, ok := r.spots[spotID]
	if !ok {
		return ErrSpotNotFound
	}
	if count < 1 {
		count = 1
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	st.Occupancy -= count
	if st.Occupancy < 0 {
		st.Occupancy = 0
	}
	if st.Status != StatusLocked {
		st.Status = statusFor(st.Spot)
	}
	return nil
}

// Lock removes a spot from allocation. Only an admin operation reaches
// this state; normal transitions never produce it.
func (r *Registry) Lock(spotID int) error {
	st, ok := r.spots[spotID]
	if !ok {
		return ErrSpotNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Status = StatusLocked
	return nil
}

// Unlock returns a spot to the available/occupied pool based on its
// current occupancy. Spots seeded as locked zones (emergency, VIP) are
// not in the fill order and stay out of allocation even after Unlock.
func (r *Registry) Unlock(spotID int) error {
	st, ok := r.spots[spotID]
	if !ok {
		return ErrSpotNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.Status = statusFor(st.Spot)
	return nil
}

// Get returns a copy of one spot.
func (r *Registry) Get(spotID int) (Spot, error) {
	st, ok := r.spots[spotID]
	if !ok {
		return Spot{}, ErrSpotNotFound
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.Spot, nil
}

// lockAll takes every spot lock in canonical order so List and Stats see
// one consistent snapshot across spots, never a spot mid-transition.
func (r *Registry) lockAll() func() {
	ids := r.snapshotOrder()
	for _, id := range ids {
		r.spots[id].mu.Lock()
	}
	return func() {
		for i := len(ids) - 1; i >= 0; i-- {
			r.spots[ids[i]].mu.Unlock()
		}
	}
}

func (r *Registry) snapshotOrder() []int {
	var ids []int
	seen := make(map[int]bool)
	for _, kind := range []Kind{KindCar, KindBike} {
		for _, id := range r.order[kind] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	for id := range r.spots {
		if !seen[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// List returns a consistent snapshot of all spots in fill order, locked
// zones last.
func (r *Registry) List() []Spot {
	unlock := r.lockAll()
	defer unlock()

	var out []Spot
	for _, id := range r.snapshotOrder() {
		out = append(out, r.spots[id].Spot)
	}
	return out
}

// Stats summarizes the lot. TotalParked counts every occupied place,
// locked zones included.
type Stats struct {
	AvailableCars  int `json:"available_cars"`
	AvailableBikes int `json:"available_bikes"`
	TotalParked    int `json:"total_parked"`
}

func (r *Registry) Stats() Stats {
	unlock := r.lockAll()
	defer unlock()

	var st Stats
	for _, state := range r.spots {
		s := state.Spot
		st.TotalParked += s.Occupancy
		if s.Status == StatusLocked {
			continue
		}
		switch s.Kind {
		case KindCar:
			if s.Status == StatusAvailable {
				st.AvailableCars++
			}
		case KindBike:
			st.AvailableBikes += s.Capacity - s.Occupancy
		}
	}
	return st
}
