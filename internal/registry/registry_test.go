package registry

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLot() *Registry {
	return New([]Spot{
		{ID: 1, Kind: KindCar, Capacity: 1},
		{ID: 2, Kind: KindCar, Capacity: 1},
		{ID: 3, Kind: KindCar, Capacity: 1},
		{ID: 9, Kind: KindBike, Capacity: 4},
		{ID: 10, Kind: KindBike, Capacity: 4},
	})
}

func TestAllocateFirstSpot(t *testing.T) {
	r := testLot()
	require.NoError(t, r.Allocate(1, KindCar))

	spot, err := r.Get(1)
	require.NoError(t, err)
	assert.Equal(t, 1, spot.Occupancy)
	assert.Equal(t, StatusOccupied, spot.Status)
}

func TestSequentialFillViolation(t *testing.T) {
	r := testLot()

	err := r.Allocate(3, KindCar)
	require.ErrorIs(t, err, ErrSequenceViolation)

	// No side effects on the rejected spot.
	spot, _ := r.Get(3)
	assert.Equal(t, 0, spot.Occupancy)
	assert.Equal(t, StatusAvailable, spot.Status)
}

func TestSequentialFillAfterLowerSpotsTaken(t *testing.T) {
	r := testLot()
	require.NoError(t, r.Allocate(1, KindCar))
	require.NoError(t, r.Allocate(2, KindCar))
	require.NoError(t, r.Allocate(3, KindCar))
}

func TestSequenceIsPerKind(t *testing.T) {
	r := testLot()
	// Bike fill order ignores car availability.
	require.NoError(t, r.Allocate(9, KindBike))
	require.ErrorIs(t, r.Allocate(10, KindBike), ErrSequenceViolation)
}

func TestCarDoubleAllocate(t *testing.T) {
	r := testLot()
	require.NoError(t, r.Allocate(1, KindCar))
	require.ErrorIs(t, r.Allocate(1, KindCar), ErrSpotUnavailable)
}

func TestReleaseThenAllocateRecoversCapacity(t *testing.T) {
	r := testLot()
	require.NoError(t, r.Allocate(1, KindCar))
	require.NoError(t, r.Release(1, 1))
	require.NoError(t, r.Allocate(1, KindCar))
}

func TestBikeOccupancyCounting(t *testing.T) {
	r := testLot()
	for i := 0; i < 4; i++ {
		require.NoError(t, r.Allocate(9, KindBike))
	}
	require.ErrorIs(t, r.Allocate(9, KindBike), ErrSpotUnavailable)

	require.NoError(t, r.Release(9, 1))
	require.NoError(t, r.Release(9, 1))

	spot, _ := r.Get(9)
	assert.Equal(t, 2, spot.Occupancy)
	assert.Equal(t, StatusOccupied, spot.Status)

	// Partial occupancy is still occupied, never a distinct status.
	require.NoError(t, r.Release(9, 2))
	spot, _ = r.Get(9)
	assert.Equal(t, 0, spot.Occupancy)
	assert.Equal(t, StatusAvailable, spot.Status)
}

func TestReleaseClampsAtZero(t *testing.T) {
	r := testLot()
	require.NoError(t, r.Allocate(1, KindCar))
	require.NoError(t, r.Release(1, 5))

	spot, _ := r.Get(1)
	assert.Equal(t, 0, spot.Occupancy)
	assert.Equal(t, StatusAvailable, spot.Status)
}

func TestKindMismatch(t *testing.T) {
	r := testLot()
	require.ErrorIs(t, r.Allocate(1, KindBike), ErrKindMismatch)
	require.ErrorIs(t, r.Allocate(9, KindCar), ErrKindMismatch)
}

func TestSpotNotFound(t *testing.T) {
	r := testLot()
	require.ErrorIs(t, r.Allocate(99, KindCar), ErrSpotNotFound)
	require.ErrorIs(t, r.Release(99, 1), ErrSpotNotFound)
}

func TestLockedSpotExcludedFromAllocation(t *testing.T) {
	r := New([]Spot{
		{ID: 1, Kind: KindCar, Capacity: 1, Occupancy: 1, Status: StatusLocked, Label: "Emergency"},
		{ID: 2, Kind: KindCar, Capacity: 1},
	})

	require.ErrorIs(t, r.Allocate(1, KindCar), ErrSpotLocked)
	// The locked spot does not count as "available" for the sequence
	// check either.
	require.NoError(t, r.Allocate(2, KindCar))
}

func TestAdminLockBlocksAllocation(t *testing.T) {
	r := testLot()
	require.NoError(t, r.Lock(1))
	require.ErrorIs(t, r.Allocate(1, KindCar), ErrSpotLocked)

	// Spot 2 becomes the first fillable car spot while 1 is locked.
	require.NoError(t, r.Allocate(2, KindCar))

	require.NoError(t, r.Unlock(1))
	require.NoError(t, r.Allocate(1, KindCar))
}

func TestDefaultLotShape(t *testing.T) {
	r := DefaultLot()
	st := r.Stats()
	assert.Equal(t, 8, st.AvailableCars)
	assert.Equal(t, 16, st.AvailableBikes)
	// Emergency + VIP rows are seeded occupied.
	assert.Equal(t, 8, st.TotalParked)
}

func TestStatsAfterAllocations(t *testing.T) {
	r := testLot()
	require.NoError(t, r.Allocate(1, KindCar))
	require.NoError(t, r.Allocate(9, KindBike))

	st := r.Stats()
	assert.Equal(t, 2, st.AvailableCars)
	assert.Equal(t, 7, st.AvailableBikes)
	assert.Equal(t, 2, st.TotalParked)
}

// TestConcurrentCarAllocations fires many goroutines at a single-car
// spot and verifies exactly one wins.
func TestConcurrentCarAllocations(t *testing.T) {
	r := testLot()

	numRequests := 50
	var wg sync.WaitGroup
	wg.Add(numRequests)
	successes := make(chan struct{}, numRequests)

	for i := 0; i < numRequests; i++ {
		go func() {
			defer wg.Done()
			if err := r.Allocate(1, KindCar); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 1, count)

	spot, _ := r.Get(1)
	assert.Equal(t, 1, spot.Occupancy)
}

// TestConcurrentBikeAllocations checks that a bike rack never exceeds
// its capacity under contention.
func TestConcurrentBikeAllocations(t *testing.T) {
	r := testLot()

	numRequests := 40
	var wg sync.WaitGroup
	wg.Add(numRequests)
	successes := make(chan struct{}, numRequests)

	for i := 0; i < numRequests; i++ {
		go func() {
			defer wg.Done()
			if err := r.Allocate(9, KindBike); err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	count := 0
	for range successes {
		count++
	}
	assert.Equal(t, 4, count)

	spot, _ := r.Get(9)
	assert.Equal(t, 4, spot.Occupancy)
}

// TestConcurrentSequentialFill races allocations against different car
// spots and verifies the invariant holds in the final state: no car
// spot is occupied while a lower-ordered one is available.
func TestConcurrentSequentialFill(t *testing.T) {
	r := testLot()

	var wg sync.WaitGroup
	for round := 0; round < 10; round++ {
		for _, id := range []int{1, 2, 3} {
			wg.Add(1)
			go func(spotID int) {
				defer wg.Done()
				r.Allocate(spotID, KindCar)
			}(id)
		}
	}
	wg.Wait()

	spots := r.List()
	seenAvailable := false
	for _, s := range spots {
		if s.Kind != KindCar || s.Status == StatusLocked {
			continue
		}
		if s.Status == StatusAvailable {
			seenAvailable = true
		} else if seenAvailable {
			t.Fatalf("spot %d occupied while a lower-ordered car spot is available", s.ID)
		}
	}
}
