package repository

import "sync"

// MemoryStore is the Store used when DATABASE_URL is not set, and by
// tests.
type MemoryStore struct {
	mu           sync.Mutex
	reservations map[string]ReservationRecord
	pending      map[string]PendingRecord
	passes       map[string]PassRecord
	employees    map[string]EmployeeRecord
	admins       map[string]Admin
	nextAdminID  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reservations: make(map[string]ReservationRecord),
		pending:      make(map[string]PendingRecord),
		passes:       make(map[string]PassRecord),
		employees:    make(map[string]EmployeeRecord),
		admins:       make(map[string]Admin),
		nextAdminID:  1,
	}
}

func (s *MemoryStore) SaveReservation(r *ReservationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reservations[r.ID] = *r
	return nil
}

func (s *MemoryStore) DeleteReservation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reservations, id)
	return nil
}

func (s *MemoryStore) ListReservations() ([]ReservationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReservationRecord, 0, len(s.reservations))
	for _, r := range s.reservations {
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) SavePending(p *PendingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[p.Token] = *p
	return nil
}

func (s *MemoryStore) MarkPendingScanned(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[token]; ok {
		p.Scanned = true
		s.pending[token] = p
	}
	return nil
}

func (s *MemoryStore) DeletePending(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, token)
	return nil
}

func (s *MemoryStore) SavePass(p *PassRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.passes[p.ID] = *p
	return nil
}

func (s *MemoryStore) SaveEmployee(e *EmployeeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID] = *e
	return nil
}

func (s *MemoryStore) GetAdminByEmail(email string) (*Admin, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.admins[email]; ok {
		return &a, nil
	}
	return nil, nil
}

func (s *MemoryStore) CreateAdmin(email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admins[email] = Admin{ID: s.nextAdminID, Email: email, PasswordHash: passwordHash}
	s.nextAdminID++
	return nil
}
