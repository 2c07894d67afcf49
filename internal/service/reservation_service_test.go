package service

import (
	"testing"
	"time"

	"smartparking/internal/entities"
	"smartparking/internal/pass"
	"smartparking/internal/registry"
	"smartparking/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRegistry() *registry.Registry {
	return registry.New([]registry.Spot{
		{ID: 1, Kind: registry.KindCar, Capacity: 1},
		{ID: 2, Kind: registry.KindCar, Capacity: 1},
		{ID: 3, Kind: registry.KindCar, Capacity: 1},
		{ID: 9, Kind: registry.KindBike, Capacity: 4},
	})
}

func testEngine() *ReservationService {
	limits := pass.Limits{MaxDailyWindow: 6 * time.Hour, MaxPassDays: 30}
	return NewReservationService(testRegistry(), limits, 366, repository.NewMemoryStore(), nil)
}

func carRequest(spotID int) *entities.CreateReservationRequest {
	return &entities.CreateReservationRequest{
		SpotID:    spotID,
		SpotType:  "car",
		Name:      "Priya",
		Email:     "priya@example.com",
		Password:  "hunter2",
		StartTime: "09:00",
		EndTime:   "12:00",
	}
}

func TestCreateReservation(t *testing.T) {
	s := testEngine()
	res, err := s.CreateReservation(carRequest(1))
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, TierSingle, res.Tier)
	assert.Equal(t, 3.0, res.DurationHours)
	// The stored credential is a hash, never the plain password.
	assert.NotContains(t, string(res.CredentialHash), "hunter2")

	spot, _ := s.Registry.Get(1)
	assert.Equal(t, registry.StatusOccupied, spot.Status)
}

func TestCreateReservationDayRollover(t *testing.T) {
	s := testEngine()
	req := carRequest(1)
	req.StartTime = "23:00"
	req.EndTime = "01:00"

	res, err := s.CreateReservation(req)
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.DurationHours)
}

func TestMonthlyTierRejectsRollover(t *testing.T) {
	s := testEngine()
	req := carRequest(1)
	req.Tier = "monthly"
	req.StartTime = "23:00"
	req.EndTime = "01:00"
	req.StartDate = "2024-01-01"
	req.EndDate = "2024-01-15"

	_, err := s.CreateReservation(req)
	require.ErrorIs(t, err, pass.ErrInvalidWindow)

	// Validation failed before allocation: no side effects.
	spot, _ := s.Registry.Get(1)
	assert.Equal(t, 0, spot.Occupancy)
}

func TestMonthlyTierCeilings(t *testing.T) {
	s := testEngine()
	req := carRequest(1)
	req.Tier = "monthly"
	req.StartTime = "08:00"
	req.EndTime = "15:00" // 7h > 6h ceiling
	req.StartDate = "2024-01-01"
	req.EndDate = "2024-01-15"

	_, err := s.CreateReservation(req)
	require.ErrorIs(t, err, pass.ErrWindowTooLong)

	req.EndTime = "14:00"
	req.EndDate = "2024-02-15" // 45 days > 30
	_, err = s.CreateReservation(req)
	require.ErrorIs(t, err, pass.ErrRangeTooLong)

	req.EndDate = "2024-01-31"
	res, err := s.CreateReservation(req)
	require.NoError(t, err)
	assert.Equal(t, TierMonthly, res.Tier)
}

func TestYearlyTierRange(t *testing.T) {
	s := testEngine()
	req := carRequest(1)
	req.Tier = "yearly"
	req.StartDate = "2024-01-01"
	req.EndDate = "2024-12-31"

	res, err := s.CreateReservation(req)
	require.NoError(t, err)
	assert.Equal(t, TierYearly, res.Tier)
}

func TestCreateReservationMissingFields(t *testing.T) {
	s := testEngine()
	req := carRequest(1)
	req.Password = ""
	_, err := s.CreateReservation(req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateReservationUnknownTier(t *testing.T) {
	s := testEngine()
	req := carRequest(1)
	req.Tier = "weekly"
	_, err := s.CreateReservation(req)
	require.ErrorIs(t, err, ErrValidation)
}

func TestCreateSurfacesSequenceViolation(t *testing.T) {
	s := testEngine()
	_, err := s.CreateReservation(carRequest(3))
	require.ErrorIs(t, err, registry.ErrSequenceViolation)
	assert.Equal(t, 0, s.ActiveOnSpot(3))
}

func TestBikeSpotHostsConcurrentReservations(t *testing.T) {
	s := testEngine()
	for i := 0; i < 4; i++ {
		req := carRequest(9)
		req.SpotType = "bike"
		_, err := s.CreateReservation(req)
		require.NoError(t, err)
	}
	assert.Equal(t, 4, s.ActiveOnSpot(9))

	req := carRequest(9)
	req.SpotType = "bike"
	_, err := s.CreateReservation(req)
	require.ErrorIs(t, err, registry.ErrSpotUnavailable)
}

func TestAuthenticateForSpot(t *testing.T) {
	s := testEngine()
	_, err := s.CreateReservation(carRequest(1))
	require.NoError(t, err)

	res, err := s.AuthenticateForSpot(1, "priya@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "Priya", res.Holder)

	_, err = s.AuthenticateForSpot(1, "priya@example.com", "wrong")
	require.ErrorIs(t, err, ErrAuth)

	// Unknown email gets the same error as a bad password.
	_, err = s.AuthenticateForSpot(1, "nobody@example.com", "hunter2")
	require.ErrorIs(t, err, ErrAuth)

	_, err = s.AuthenticateForSpot(2, "priya@example.com", "hunter2")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthenticateUnknownEmailStillCompares(t *testing.T) {
	s := testEngine()
	_, err := s.CreateReservation(carRequest(1))
	require.NoError(t, err)

	// An unknown email must cost a bcrypt round like a wrong password
	// does; a sub-millisecond rejection would betray that no hash was
	// checked.
	start := time.Now()
	_, err = s.AuthenticateForSpot(1, "nobody@example.com", "hunter2")
	elapsed := time.Since(start)
	require.ErrorIs(t, err, ErrAuth)
	assert.Greater(t, elapsed, time.Millisecond)
}

func TestReleaseIsIdempotent(t *testing.T) {
	s := testEngine()
	res, err := s.CreateReservation(carRequest(1))
	require.NoError(t, err)

	require.NoError(t, s.Release(res.ID, "cancelled"))
	require.NoError(t, s.Release(res.ID, "cancelled"))

	spot, _ := s.Registry.Get(1)
	assert.Equal(t, 0, spot.Occupancy)
	assert.Equal(t, registry.StatusAvailable, spot.Status)
	assert.Equal(t, 0, s.ActiveOnSpot(1))
}

func TestExtendReservation(t *testing.T) {
	s := testEngine()
	_, err := s.CreateReservation(carRequest(1))
	require.NoError(t, err)

	require.NoError(t, s.ExtendReservation(1, "priya@example.com"))
	require.ErrorIs(t, s.ExtendReservation(1, "other@example.com"), ErrAuth)
	require.ErrorIs(t, s.ExtendReservation(2, "priya@example.com"), ErrNotFound)
}

func creationDay(res *Reservation) time.Time {
	return time.Date(res.CreatedAt.Year(), res.CreatedAt.Month(), res.CreatedAt.Day(),
		0, 0, 0, 0, res.CreatedAt.Location())
}

func TestFinishExpired(t *testing.T) {
	s := testEngine()
	res, err := s.CreateReservation(carRequest(1))
	require.NoError(t, err)

	monthly := carRequest(2)
	monthly.Tier = "monthly"
	monthly.StartTime = "09:00"
	monthly.EndTime = "12:00"
	monthly.StartDate = "2024-01-01"
	monthly.EndDate = "2024-01-31"
	_, err = s.CreateReservation(monthly)
	require.NoError(t, err)

	// The window ends at the 12:00 wall clock of the creation day, no
	// matter when the reservation was created.
	end := creationDay(res).Add(12 * time.Hour)
	assert.Equal(t, 0, s.FinishExpired(end.Add(-time.Minute)))
	// Elapsed: only the single-session reservation finishes.
	assert.Equal(t, 1, s.FinishExpired(end.Add(time.Minute)))
	assert.Equal(t, 0, s.ActiveOnSpot(1))
	assert.Equal(t, 1, s.ActiveOnSpot(2))
}

func TestFinishExpiredRollover(t *testing.T) {
	s := testEngine()
	req := carRequest(1)
	req.StartTime = "23:00"
	req.EndTime = "01:00"
	res, err := s.CreateReservation(req)
	require.NoError(t, err)

	// Crossing midnight ends at 01:00 of the following day.
	end := creationDay(res).Add(25 * time.Hour)
	assert.Equal(t, 0, s.FinishExpired(end.Add(-time.Minute)))
	assert.Equal(t, 1, s.FinishExpired(end.Add(time.Minute)))
}

func TestListActiveOrdering(t *testing.T) {
	s := testEngine()
	_, err := s.CreateReservation(carRequest(1))
	require.NoError(t, err)
	_, err = s.CreateReservation(carRequest(2))
	require.NoError(t, err)

	active := s.ListActive()
	require.Len(t, active, 2)
	assert.Equal(t, 1, active[0].SpotID)
	assert.Equal(t, 2, active[1].SpotID)
}
