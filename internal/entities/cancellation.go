package entities

type CancelReservationRequest struct {
	SpotID   int    `json:"spot_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CancelReservationResponse struct {
	Success string `json:"success"`
	Pending bool   `json:"pending"`
	Token   string `json:"token,omitempty"`
	QR      string `json:"qr,omitempty"`
}

type ScanStatusResponse struct {
	SpotID    int    `json:"spot_id"`
	Status    string `json:"status"`
	IsScanned bool   `json:"is_scanned"`
}
