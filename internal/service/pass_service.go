package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"smartparking/internal/entities"
	"smartparking/internal/pass"
	"smartparking/internal/repository"

	"github.com/google/uuid"
)

// PassService registers monthly and yearly passes and answers the
// pass-holder lookups the cancellation policy depends on.
type PassService struct {
	limits       pass.Limits
	yearlyLimits pass.Limits
	store        repository.Store

	mu      sync.Mutex
	byEmail map[string]map[Tier]bool
}

func NewPassService(limits pass.Limits, yearlyMaxDays int, store repository.Store) *PassService {
	return &PassService{
		limits:       limits,
		yearlyLimits: pass.Limits{MaxDailyWindow: limits.MaxDailyWindow, MaxPassDays: yearlyMaxDays},
		store:        store,
		byEmail:      make(map[string]map[Tier]bool),
	}
}

// CreateMonthlyPass validates the recurring daily window and the pass
// date range against the monthly ceilings and registers the pass.
func (s *PassService) CreateMonthlyPass(req *entities.MonthlyPassRequest) (*repository.PassRecord, error) {
	if req.Name == "" || req.Email == "" || req.VehicleNumber == "" {
		return nil, fmt.Errorf("%w: name, email and vehicle number are required", ErrValidation)
	}
	if _, err := s.limits.ValidateDailyWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if _, err := s.limits.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	rec := &repository.PassRecord{
		ID:            uuid.NewString(),
		Tier:          string(TierMonthly),
		Name:          req.Name,
		Email:         req.Email,
		Age:           req.Age,
		VehicleNumber: req.VehicleNumber,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		CreatedAt:     time.Now().UTC(),
	}
	s.register(req.Email, TierMonthly)
	if err := s.store.SavePass(rec); err != nil {
		log.Printf("Error persisting monthly pass %s: %v", rec.ID, err)
	}
	return rec, nil
}

// CreateYearlyPass registers a yearly pass. The yearly tier has no daily
// window ceiling; only the date range is checked for shape and the
// yearly maximum.
func (s *PassService) CreateYearlyPass(req *entities.YearlyPassRequest) (*repository.PassRecord, error) {
	if req.Name == "" || req.Email == "" || req.VehicleNumber == "" {
		return nil, fmt.Errorf("%w: name, email and vehicle number are required", ErrValidation)
	}
	if req.StartDate != "" || req.EndDate != "" {
		if _, err := s.yearlyLimits.ValidateDateRange(req.StartDate, req.EndDate); err != nil {
			return nil, err
		}
	}

	rec := &repository.PassRecord{
		ID:            uuid.NewString(),
		Tier:          string(TierYearly),
		Name:          req.Name,
		Email:         req.Email,
		Age:           req.Age,
		VehicleNumber: req.VehicleNumber,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		CreatedAt:     time.Now().UTC(),
	}
	s.register(req.Email, TierYearly)
	if err := s.store.SavePass(rec); err != nil {
		log.Printf("Error persisting yearly pass %s: %v", rec.ID, err)
	}
	return rec, nil
}

func (s *PassService) register(email string, tier Tier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byEmail[email] == nil {
		s.byEmail[email] = make(map[Tier]bool)
	}
	s.byEmail[email][tier] = true
}

// IsPassHolder reports whether the email holds any pass.
func (s *PassService) IsPassHolder(email string) bool {
	_, ok := s.HolderTier(email)
	return ok
}

// HolderTier returns the highest pass tier held by the email, yearly
// before monthly.
func (s *PassService) HolderTier(email string) (Tier, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tiers := s.byEmail[email]
	if tiers[TierYearly] {
		return TierYearly, true
	}
	if tiers[TierMonthly] {
		return TierMonthly, true
	}
	return "", false
}
