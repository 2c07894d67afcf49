package entities

import "time"

type CreateReservationRequest struct {
	SpotID    int    `json:"spot_id"`
	SpotType  string `json:"spot_type"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Tier      string `json:"tier,omitempty"`
	// IdentityEvidence is the opaque result of the liveness capture step
	// ("acquired" or "unavailable"). The engine records it and never
	// inspects image data.
	IdentityEvidence string `json:"identity_evidence,omitempty"`
}

type ReservationResponse struct {
	ReservationID string    `json:"reservation_id"`
	SpotID        int       `json:"spot_id"`
	SpotType      string    `json:"spot_type"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	StartDate     string    `json:"start_date,omitempty"`
	EndDate       string    `json:"end_date,omitempty"`
	DurationHours float64   `json:"duration_hours"`
	Tier          string    `json:"tier"`
	CreatedAt     time.Time `json:"created_at"`
}

type ExtendReservationRequest struct {
	SpotID int    `json:"spot_id"`
	Email  string `json:"email"`
}
