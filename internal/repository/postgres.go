package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// PostgresStore persists records with lib/pq. Every method maps one
// record to one statement.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// EnsureSchema creates the tables if they do not exist yet. Called once
// at startup.
func (s *PostgresStore) EnsureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reservations (
			id TEXT PRIMARY KEY,
			spot_id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			holder TEXT NOT NULL,
			email TEXT NOT NULL,
			credential_hash TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			start_date TEXT,
			end_date TEXT,
			duration_hours DOUBLE PRECISION NOT NULL,
			tier TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pending_cancellations (
			token TEXT PRIMARY KEY,
			spot_id INTEGER NOT NULL,
			reservation_id TEXT NOT NULL,
			scanned BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS passes (
			id TEXT PRIMARY KEY,
			tier TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			age INTEGER,
			vehicle_number TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			start_date TEXT,
			end_date TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS employees (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			role TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS admins (
			id SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("error creating schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveReservation(r *ReservationRecord) error {
	query := `
		INSERT INTO reservations
		(id, spot_id, kind, holder, email, credential_hash, start_time, end_time, start_date, end_date, duration_hours, tier, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING`
	_, err := s.DB.Exec(query,
		r.ID, r.SpotID, r.Kind, r.Holder, r.Email, r.CredentialHash,
		r.StartTime, r.EndTime, r.StartDate, r.EndDate, r.DurationHours, r.Tier, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting reservation %s: %w", r.ID, err)
	}
	return nil
}

func (s *PostgresStore) DeleteReservation(id string) error {
	_, err := s.DB.Exec(`DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting reservation %s: %w", id, err)
	}
	return nil
}

func (s *PostgresStore) ListReservations() ([]ReservationRecord, error) {
	query := `
		SELECT id, spot_id, kind, holder, email, credential_hash, start_time, end_time, start_date, end_date, duration_hours, tier, created_at
		FROM reservations ORDER BY spot_id, created_at`
	rows, err := s.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying reservations: %w", err)
	}
	defer rows.Close()

	var out []ReservationRecord
	for rows.Next() {
		var r ReservationRecord
		if err := rows.Scan(&r.ID, &r.SpotID, &r.Kind, &r.Holder, &r.Email, &r.CredentialHash,
			&r.StartTime, &r.EndTime, &r.StartDate, &r.EndDate, &r.DurationHours, &r.Tier, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning reservation row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SavePending(p *PendingRecord) error {
	query := `
		INSERT INTO pending_cancellations (token, spot_id, reservation_id, scanned, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO NOTHING`
	_, err := s.DB.Exec(query, p.Token, p.SpotID, p.ReservationID, p.Scanned, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting pending cancellation: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkPendingScanned(token string) error {
	_, err := s.DB.Exec(`UPDATE pending_cancellations SET scanned = TRUE WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("error marking pending cancellation scanned: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePending(token string) error {
	_, err := s.DB.Exec(`DELETE FROM pending_cancellations WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("error deleting pending cancellation: %w", err)
	}
	return nil
}

func (s *PostgresStore) SavePass(p *PassRecord) error {
	query := `
		INSERT INTO passes (id, tier, name, email, age, vehicle_number, start_time, end_time, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := s.DB.Exec(query, p.ID, p.Tier, p.Name, p.Email, p.Age, p.VehicleNumber,
		p.StartTime, p.EndTime, p.StartDate, p.EndDate, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting %s pass: %w", p.Tier, err)
	}
	return nil
}

func (s *PostgresStore) SaveEmployee(e *EmployeeRecord) error {
	query := `INSERT INTO employees (id, name, email, role, created_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.Exec(query, e.ID, e.Name, e.Email, e.Role, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting employee: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetAdminByEmail(email string) (*Admin, error) {
	var admin Admin
	err := s.DB.QueryRow("SELECT id, email, password_hash FROM admins WHERE email = $1", email).
		Scan(&admin.ID, &admin.Email, &admin.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

func (s *PostgresStore) CreateAdmin(email, passwordHash string) error {
	_, err := s.DB.Exec("INSERT INTO admins (email, password_hash) VALUES ($1, $2)", email, passwordHash)
	return err
}
