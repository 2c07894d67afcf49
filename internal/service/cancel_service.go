package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"smartparking/internal/entities"
	"smartparking/internal/qr"
	"smartparking/internal/repository"

	"github.com/google/uuid"
)

const (
	PendingStatePending  = "pending"
	PendingStateScanned  = "scanned"
	PendingStateReleased = "released"
	PendingStateExpired  = "expired"
)

// CancelOutcome is what a waiting caller receives when a pending
// cancellation reaches a terminal state.
type CancelOutcome struct {
	SpotID   int    `json:"spot_id"`
	Released bool   `json:"released"`
	Message  string `json:"message"`
}

// PendingCancellation links a reservation awaiting physical departure
// confirmation to its single-use token. The scanned flag is the external
// signal; state moves pending → scanned → released, or pending →
// expired, exactly once.
type PendingCancellation struct {
	Token         string
	SpotID        int
	ReservationID string
	QRPath        string
	CreatedAt     time.Time

	mu      sync.Mutex
	scanned bool
	state   string
	// done is buffered so the watcher never blocks on a caller that
	// walked away; the record itself stays pollable afterwards.
	done chan CancelOutcome
}

func newPendingCancellation(spotID int, reservationID, qrPath string) *PendingCancellation {
	return &PendingCancellation{
		Token:         uuid.NewString(),
		SpotID:        spotID,
		ReservationID: reservationID,
		QRPath:        qrPath,
		CreatedAt:     time.Now().UTC(),
		state:         PendingStatePending,
		done:          make(chan CancelOutcome, 1),
	}
}

// MarkScanned records the external scan signal. It has no effect once
// the record is terminal.
func (p *PendingCancellation) MarkScanned() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == PendingStatePending {
		p.scanned = true
	}
}

func (p *PendingCancellation) ScannedFlag() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scanned
}

func (p *PendingCancellation) State() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// transition moves pending to a terminal-bound state and reports whether
// this call won. Exactly one of scanned/expired ever succeeds.
func (p *PendingCancellation) transition(to string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != PendingStatePending {
		return false
	}
	p.state = to
	return true
}

func (p *PendingCancellation) setState(to string) {
	p.mu.Lock()
	p.state = to
	p.mu.Unlock()
}

// Done yields the terminal outcome to at most one attached caller.
func (p *PendingCancellation) Done() <-chan CancelOutcome {
	return p.done
}

func (p *PendingCancellation) notify(out CancelOutcome) {
	select {
	case p.done <- out:
	default:
	}
}

// ConfirmationPolicy decides whether a cancellation needs a QR scan
// before the slot is freed. Returning false releases synchronously.
type ConfirmationPolicy func(res *Reservation) bool

// CancelService drives the cancellation protocol: credential check, then
// either a direct release or a QR hand-off watched for confirmation.
type CancelService struct {
	engine *ReservationService
	passes *PassService
	store  repository.Store
	qr     *qr.Generator
	policy ConfirmationPolicy

	pollInterval time.Duration
	confirmWait  time.Duration

	// pending holds each spot's cancellation records in creation order.
	// A bike spot hosts several reservations, so it can carry several
	// records at once; each is bound to one reservation and a physical
	// scan completes the oldest still-pending one.
	mu      sync.Mutex
	pending map[int][]*PendingCancellation
}

func NewCancelService(engine *ReservationService, passes *PassService, store repository.Store, gen *qr.Generator, pollInterval, confirmWait time.Duration) *CancelService {
	s := &CancelService{
		engine:       engine,
		passes:       passes,
		store:        store,
		qr:           gen,
		pollInterval: pollInterval,
		confirmWait:  confirmWait,
		pending:      make(map[int][]*PendingCancellation),
	}
	// Default deployment policy: pass holders have no physical-departure
	// check; everyone else must scan the code posted at the spot so the
	// place is not re-allocated while the vehicle is still there.
	s.policy = func(res *Reservation) bool {
		return !s.passes.IsPassHolder(res.Email)
	}
	return s
}

// SetPolicy overrides the confirmation policy.
func (s *CancelService) SetPolicy(p ConfirmationPolicy) { s.policy = p }

// RequestCancellation verifies the presented credential against the
// reservation on the spot and either releases immediately or issues a QR
// token and starts a watcher. No slot mutation happens on the QR path
// until the scan is confirmed.
func (s *CancelService) RequestCancellation(req *entities.CancelReservationRequest) (*entities.CancelReservationResponse, error) {
	if req.SpotID == 0 || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: spot_id, email and password are required", ErrValidation)
	}

	res, err := s.engine.AuthenticateForSpot(req.SpotID, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	if !s.policy(res) {
		message := "Reservation cancelled successfully!"
		if tier, ok := s.passes.HolderTier(res.Email); ok {
			message = fmt.Sprintf("Reservation cancelled. Thanks for being a %s Pass holder!", passTierLabel(tier))
		}
		if err := s.engine.Release(res.ID, "cancelled"); err != nil {
			return nil, err
		}
		return &entities.CancelReservationResponse{Success: message}, nil
	}

	// Render before taking the lock; the code is the same for every
	// reservation on the spot, so a concurrent request overwriting the
	// file is harmless.
	qrPath, err := s.qr.CancellationQR(req.SpotID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue cancellation code: %w", err)
	}

	s.mu.Lock()
	for _, p := range s.pending[req.SpotID] {
		if p.ReservationID == res.ID && p.State() == PendingStatePending {
			// Re-requesting while this reservation's confirmation is
			// outstanding returns the same token; the first scan wins
			// either way.
			s.mu.Unlock()
			return &entities.CancelReservationResponse{
				Success: "Scan the code at the spot to confirm cancellation.",
				Pending: true,
				Token:   p.Token,
				QR:      p.QRPath,
			}, nil
		}
	}
	p := newPendingCancellation(req.SpotID, res.ID, qrPath)
	s.pending[req.SpotID] = append(s.pending[req.SpotID], p)
	s.mu.Unlock()

	if err := s.store.SavePending(&repository.PendingRecord{
		Token:         p.Token,
		SpotID:        p.SpotID,
		ReservationID: p.ReservationID,
		CreatedAt:     p.CreatedAt,
	}); err != nil {
		log.Printf("Error persisting pending cancellation %s: %v", p.Token, err)
	}

	w := NewScanWatcher(p, s.pollInterval, s.confirmWait, s.completeScanned, s.completeExpired)
	go w.Run()

	return &entities.CancelReservationResponse{
		Success: "Scan the code at the spot to confirm cancellation.",
		Pending: true,
		Token:   p.Token,
		QR:      qrPath,
	}, nil
}

// oldestPending returns the spot's earliest still-pending record. The QR
// carries only the spot, so this is the record a physical scan completes.
func (s *CancelService) oldestPending(spotID int) *PendingCancellation {
	for _, p := range s.pending[spotID] {
		if p.State() == PendingStatePending {
			return p
		}
	}
	return nil
}

// current picks the spot's record of interest: the next scannable pending
// one, or the latest record when everything is terminal.
func (s *CancelService) current(spotID int) *PendingCancellation {
	if p := s.oldestPending(spotID); p != nil {
		return p
	}
	if records := s.pending[spotID]; len(records) > 0 {
		return records[len(records)-1]
	}
	return nil
}

// MarkScanned is the endpoint behind the QR code. It only flips the
// signal; the watcher performs the release from its own context. With
// several pendings on one spot, each scan confirms one departure, oldest
// first.
func (s *CancelService) MarkScanned(spotID int) error {
	s.mu.Lock()
	p := s.oldestPending(spotID)
	s.mu.Unlock()
	if p == nil {
		return ErrNotFound
	}
	p.MarkScanned()
	if err := s.store.MarkPendingScanned(p.Token); err != nil {
		log.Printf("Error persisting scan for token %s: %v", p.Token, err)
	}
	return nil
}

// Status reports the pending cancellation's state for client polling.
func (s *CancelService) Status(spotID int) (*entities.ScanStatusResponse, error) {
	s.mu.Lock()
	p := s.current(spotID)
	s.mu.Unlock()
	if p == nil {
		return nil, ErrNotFound
	}
	state := p.State()
	return &entities.ScanStatusResponse{
		SpotID:    spotID,
		Status:    state,
		IsScanned: state == PendingStateScanned || state == PendingStateReleased,
	}, nil
}

// Pending returns the spot's record of interest, if any. The watcher's
// done channel hangs off it.
func (s *CancelService) Pending(spotID int) (*PendingCancellation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.current(spotID)
	return p, p != nil
}

func (s *CancelService) completeScanned(p *PendingCancellation) {
	if err := s.engine.Release(p.ReservationID, "cancelled"); err != nil {
		log.Printf("Error releasing spot %d after scan: %v", p.SpotID, err)
	}
	p.setState(PendingStateReleased)
	if err := s.store.DeletePending(p.Token); err != nil {
		log.Printf("Error removing pending cancellation %s: %v", p.Token, err)
	}
	p.notify(CancelOutcome{SpotID: p.SpotID, Released: true, Message: "Reservation cancelled successfully!"})
}

func (s *CancelService) completeExpired(p *PendingCancellation) {
	// No release: the vehicle never confirmed departure. The slot stays
	// occupied and the holder must retry.
	if err := s.store.DeletePending(p.Token); err != nil {
		log.Printf("Error removing expired pending cancellation %s: %v", p.Token, err)
	}
	p.notify(CancelOutcome{SpotID: p.SpotID, Released: false, Message: "Confirmation not received. Please retry the cancellation."})
}

// SweepTerminal drops terminal pending records older than the retention
// window. They are kept around so a disconnected caller can still poll
// the outcome.
func (s *CancelService) SweepTerminal(retention time.Duration) int {
	cutoff := time.Now().UTC().Add(-retention)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for spotID, records := range s.pending {
		kept := records[:0]
		for _, p := range records {
			if p.State() != PendingStatePending && p.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, p)
		}
		if len(kept) == 0 {
			delete(s.pending, spotID)
		} else {
			s.pending[spotID] = kept
		}
	}
	return removed
}

func passTierLabel(t Tier) string {
	switch t {
	case TierMonthly:
		return "Monthly"
	case TierYearly:
		return "Yearly"
	}
	return string(t)
}
