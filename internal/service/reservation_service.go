package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"smartparking/internal/entities"
	"smartparking/internal/pass"
	"smartparking/internal/registry"
	"smartparking/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrValidation = errors.New("invalid reservation request")
	ErrAuth       = errors.New("invalid credentials")
	ErrNotFound   = errors.New("no active reservation for this spot")
)

type Tier string

const (
	TierSingle  Tier = "single"
	TierMonthly Tier = "monthly"
	TierYearly  Tier = "yearly"
)

// rollover is the per-tier policy for a time window whose end is at or
// before its start. Single sessions cross midnight; a monthly pass's
// daily window is same-day only. The divergence is intentional, so it is
// named here rather than scattered through the code paths.
func (t Tier) rollover() pass.RolloverPolicy {
	if t == TierSingle {
		return pass.RolloverNextDay
	}
	return pass.RolloverReject
}

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierSingle, TierMonthly, TierYearly:
		return Tier(s), nil
	case "":
		return TierSingle, nil
	}
	return "", fmt.Errorf("%w: unknown tier %q", ErrValidation, s)
}

// Reservation is the engine's record of one active allocation. The
// credential hash is used only to authorize cancellation.
type Reservation struct {
	ID               string
	SpotID           int
	Kind             registry.Kind
	Holder           string
	Email            string
	CredentialHash   []byte
	StartTime        string
	EndTime          string
	StartDate        string
	EndDate          string
	DurationHours    float64
	Tier             Tier
	IdentityEvidence string
	CreatedAt        time.Time
}

// Notifier delivers out-of-band confirmations. The sender service backs
// it in production; tests plug a no-op.
type Notifier interface {
	ReservationConfirmed(res *Reservation)
	ReservationCancelled(res *Reservation, message string)
}

type noopNotifier struct{}

func (noopNotifier) ReservationConfirmed(*Reservation)         {}
func (noopNotifier) ReservationCancelled(*Reservation, string) {}

// NoopNotifier returns a Notifier that drops everything.
func NoopNotifier() Notifier { return noopNotifier{} }

// ReservationService orchestrates create/extend against the registry and
// the pass validators. It owns all Reservation state; spot occupancy is
// only ever touched through the registry's API.
type ReservationService struct {
	Registry *registry.Registry

	limits       pass.Limits
	yearlyLimits pass.Limits
	store        repository.Store
	notifier     Notifier

	mu     sync.Mutex
	bySpot map[int][]*Reservation
	byID   map[string]*Reservation
}

func NewReservationService(reg *registry.Registry, limits pass.Limits, yearlyMaxDays int, store repository.Store, notifier Notifier) *ReservationService {
	if notifier == nil {
		notifier = NoopNotifier()
	}
	return &ReservationService{
		Registry:     reg,
		limits:       limits,
		yearlyLimits: pass.Limits{MaxDailyWindow: limits.MaxDailyWindow, MaxPassDays: yearlyMaxDays},
		store:        store,
		notifier:     notifier,
		bySpot:       make(map[int][]*Reservation),
		byID:         make(map[string]*Reservation),
	}
}

// CreateReservation validates the window for the tier, allocates the
// spot, and records the reservation. Any failure before allocation
// leaves no side effects; an allocation failure is surfaced untouched.
func (s *ReservationService) CreateReservation(req *entities.CreateReservationRequest) (*Reservation, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	kind := registry.Kind(req.SpotType)
	if kind != registry.KindCar && kind != registry.KindBike {
		return nil, fmt.Errorf("%w: unknown spot type %q", ErrValidation, req.SpotType)
	}
	tier, err := ParseTier(req.Tier)
	if err != nil {
		return nil, err
	}

	hours, err := s.windowHours(tier, req)
	if err != nil {
		return nil, err
	}
	if err := s.validateRange(tier, req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	if err := s.Registry.Allocate(req.SpotID, kind); err != nil {
		return nil, err
	}

	res := &Reservation{
		ID:               uuid.NewString(),
		SpotID:           req.SpotID,
		Kind:             kind,
		Holder:           req.Name,
		Email:            req.Email,
		CredentialHash:   hash,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		DurationHours:    hours,
		Tier:             tier,
		IdentityEvidence: req.IdentityEvidence,
		CreatedAt:        time.Now().UTC(),
	}

	s.mu.Lock()
	s.bySpot[res.SpotID] = append(s.bySpot[res.SpotID], res)
	s.byID[res.ID] = res
	s.mu.Unlock()

	if err := s.store.SaveReservation(record(res)); err != nil {
		log.Printf("Error persisting reservation %s: %v", res.ID, err)
	}
	s.notifier.ReservationConfirmed(res)

	return res, nil
}

func (s *ReservationService) windowHours(tier Tier, req *entities.CreateReservationRequest) (float64, error) {
	if tier == TierMonthly {
		// The monthly daily window carries the recurring-exposure
		// ceiling; single sessions have no hour cap, only rollover.
		return s.limits.ValidateDailyWindow(req.StartTime, req.EndTime)
	}
	return pass.WindowHours(req.StartTime, req.EndTime, tier.rollover())
}

func (s *ReservationService) validateRange(tier Tier, req *entities.CreateReservationRequest) error {
	switch tier {
	case TierMonthly:
		_, err := s.limits.ValidateDateRange(req.StartDate, req.EndDate)
		return err
	case TierYearly:
		_, err := s.yearlyLimits.ValidateDateRange(req.StartDate, req.EndDate)
		return err
	}
	return nil
}

// ExtendReservation acknowledges an extension request. No window or
// occupancy change happens; the operation exists so the client flow has
// somewhere to land.
func (s *ReservationService) ExtendReservation(spotID int, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bySpot[spotID]) == 0 {
		return ErrNotFound
	}
	for _, res := range s.bySpot[spotID] {
		if res.Email == email {
			return nil
		}
	}
	return ErrAuth
}

// dummyCredentialHash is compared against when no reservation matches the
// presented email, so the miss path costs a bcrypt round too and timing
// does not reveal whether the email exists.
var dummyCredentialHash, _ = bcrypt.GenerateFromPassword([]byte("smartparking-dummy"), bcrypt.DefaultCost)

// AuthenticateForSpot finds the reservation on the spot whose holder
// presented matching credentials. NotFound means the spot has no active
// reservation at all; any credential mismatch is the same AuthError
// whether or not the email exists.
func (s *ReservationService) AuthenticateForSpot(spotID int, email, password string) (*Reservation, error) {
	s.mu.Lock()
	candidates := append([]*Reservation(nil), s.bySpot[spotID]...)
	s.mu.Unlock()

	if len(candidates) == 0 {
		return nil, ErrNotFound
	}
	compared := false
	for _, res := range candidates {
		if res.Email != email {
			continue
		}
		compared = true
		if bcrypt.CompareHashAndPassword(res.CredentialHash, []byte(password)) == nil {
			return res, nil
		}
	}
	if !compared {
		bcrypt.CompareHashAndPassword(dummyCredentialHash, []byte(password))
	}
	return nil, ErrAuth
}

// Release frees the reservation's place on its spot and removes the
// record. It is idempotent: releasing a reservation that is already gone
// is a no-op, so the watcher and a direct cancel can race safely.
func (s *ReservationService) Release(reservationID string, message string) error {
	s.mu.Lock()
	res, ok := s.byID[reservationID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	delete(s.byID, reservationID)
	remaining := s.bySpot[res.SpotID][:0]
	for _, r := range s.bySpot[res.SpotID] {
		if r.ID != reservationID {
			remaining = append(remaining, r)
		}
	}
	if len(remaining) == 0 {
		delete(s.bySpot, res.SpotID)
	} else {
		s.bySpot[res.SpotID] = remaining
	}
	s.mu.Unlock()

	if err := s.Registry.Release(res.SpotID, 1); err != nil {
		return fmt.Errorf("failed to release spot %d: %w", res.SpotID, err)
	}
	if err := s.store.DeleteReservation(reservationID); err != nil {
		log.Printf("Error removing persisted reservation %s: %v", reservationID, err)
	}
	if message != "" {
		s.notifier.ReservationCancelled(res, message)
	}
	return nil
}

// ReleaseSpot force-releases every reservation on a spot. Admin path;
// no credential check.
func (s *ReservationService) ReleaseSpot(spotID int) (int, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.bySpot[spotID]))
	for _, res := range s.bySpot[spotID] {
		ids = append(ids, res.ID)
	}
	s.mu.Unlock()

	if len(ids) == 0 {
		return 0, ErrNotFound
	}
	for _, id := range ids {
		if err := s.Release(id, ""); err != nil {
			return 0, err
		}
	}
	return len(ids), nil
}

// Get returns the reservation by ID, or nil.
func (s *ReservationService) Get(reservationID string) *Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[reservationID]
}

// ActiveOnSpot reports how many reservations the spot currently hosts.
func (s *ReservationService) ActiveOnSpot(spotID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bySpot[spotID])
}

// ListActive returns all active reservations ordered by spot.
func (s *ReservationService) ListActive() []Reservation {
	s.mu.Lock()
	out := make([]Reservation, 0, len(s.byID))
	for _, res := range s.byID {
		out = append(out, *res)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SpotID != out[j].SpotID {
			return out[i].SpotID < out[j].SpotID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// endOfWindow resolves the reservation's end to a point in time: the end
// clock time on the creation day, pushed to the next day when the window
// crosses midnight.
func (res *Reservation) endOfWindow() time.Time {
	startMin, startErr := pass.ParseClock(res.StartTime)
	endMin, endErr := pass.ParseClock(res.EndTime)
	if startErr != nil || endErr != nil {
		return res.CreatedAt.Add(time.Duration(res.DurationHours * float64(time.Hour)))
	}
	day := time.Date(res.CreatedAt.Year(), res.CreatedAt.Month(), res.CreatedAt.Day(),
		0, 0, 0, 0, res.CreatedAt.Location())
	end := day.Add(time.Duration(endMin) * time.Minute)
	if endMin <= startMin {
		end = end.Add(24 * time.Hour)
	}
	return end
}

// FinishExpired releases single-session reservations whose window end has
// passed. Pass-backed reservations recur daily and are left alone. Called
// from the cron sweeper.
func (s *ReservationService) FinishExpired(now time.Time) int {
	s.mu.Lock()
	var expired []string
	for id, res := range s.byID {
		if res.Tier != TierSingle {
			continue
		}
		if now.After(res.endOfWindow()) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	for _, id := range expired {
		if err := s.Release(id, "finished"); err != nil {
			log.Printf("Error finishing reservation %s: %v", id, err)
		}
	}
	return len(expired)
}

func record(res *Reservation) *repository.ReservationRecord {
	return &repository.ReservationRecord{
		ID:             res.ID,
		SpotID:         res.SpotID,
		Kind:           string(res.Kind),
		Holder:         res.Holder,
		Email:          res.Email,
		CredentialHash: string(res.CredentialHash),
		StartTime:      res.StartTime,
		EndTime:        res.EndTime,
		StartDate:      res.StartDate,
		EndDate:        res.EndDate,
		DurationHours:  res.DurationHours,
		Tier:           string(res.Tier),
		CreatedAt:      res.CreatedAt,
	}
}

// Response shapes a reservation for the API layer.
func Response(res *Reservation) entities.ReservationResponse {
	return entities.ReservationResponse{
		ReservationID: res.ID,
		SpotID:        res.SpotID,
		SpotType:      string(res.Kind),
		Name:          res.Holder,
		Email:         res.Email,
		StartTime:     res.StartTime,
		EndTime:       res.EndTime,
		StartDate:     res.StartDate,
		EndDate:       res.EndDate,
		DurationHours: res.DurationHours,
		Tier:          string(res.Tier),
		CreatedAt:     res.CreatedAt,
	}
}
