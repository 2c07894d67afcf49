package service

import (
	"log"
	"time"
)

// JobService hosts the cron-driven sweeps: reservations past their
// window get finished and released, and terminal pending cancellations
// are dropped once their poll-retention window passes.
type JobService struct {
	engine  *ReservationService
	cancels *CancelService

	// Terminal pending records stay pollable this long after creation.
	PendingRetention time.Duration
}

func NewJobService(engine *ReservationService, cancels *CancelService, pendingRetention time.Duration) *JobService {
	return &JobService{engine: engine, cancels: cancels, PendingRetention: pendingRetention}
}

// FinishEndedReservations marks elapsed single-session reservations
// finished and frees their spots.
func (s *JobService) FinishEndedReservations() {
	n := s.engine.FinishExpired(time.Now().UTC())
	if n > 0 {
		log.Printf("Cron Job: finished %d elapsed reservations", n)
	}
}

// SweepPendingCancellations discards terminal pending-cancellation
// records past retention.
func (s *JobService) SweepPendingCancellations() {
	n := s.cancels.SweepTerminal(s.PendingRetention)
	if n > 0 {
		log.Printf("Cron Job: swept %d terminal pending cancellations", n)
	}
}
