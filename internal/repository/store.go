package repository

import "time"

// ReservationRecord is the durable shape of a reservation. The engine's
// in-memory state stays authoritative; the store exists so an operator
// can inspect history and so records survive a restart for auditing.
type ReservationRecord struct {
	ID             string
	SpotID         int
	Kind           string
	Holder         string
	Email          string
	CredentialHash string
	StartTime      string
	EndTime        string
	StartDate      string
	EndDate        string
	DurationHours  float64
	Tier           string
	CreatedAt      time.Time
}

type PendingRecord struct {
	Token         string
	SpotID        int
	ReservationID string
	Scanned       bool
	CreatedAt     time.Time
}

type PassRecord struct {
	ID            string
	Tier          string
	Name          string
	Email         string
	Age           int
	VehicleNumber string
	StartTime     string
	EndTime       string
	StartDate     string
	EndDate       string
	CreatedAt     time.Time
}

type EmployeeRecord struct {
	ID        string
	Name      string
	Email     string
	Role      string
	CreatedAt time.Time
}

type Admin struct {
	ID           int
	Email        string
	PasswordHash string
}

// Store is the durability sink behind the services. Postgres backs it in
// production; the memory implementation serves DB-less runs and tests.
type Store interface {
	SaveReservation(r *ReservationRecord) error
	DeleteReservation(id string) error
	ListReservations() ([]ReservationRecord, error)

	SavePending(p *PendingRecord) error
	MarkPendingScanned(token string) error
	DeletePending(token string) error

	SavePass(p *PassRecord) error
	SaveEmployee(e *EmployeeRecord) error

	GetAdminByEmail(email string) (*Admin, error)
	CreateAdmin(email, passwordHash string) error
}
