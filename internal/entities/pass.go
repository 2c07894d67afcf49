package entities

type MonthlyPassRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Age           int    `json:"age"`
	VehicleNumber string `json:"vehicle_number"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

type YearlyPassRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Age           int    `json:"age"`
	VehicleNumber string `json:"vehicle_number"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
}

type PassResponse struct {
	PassID  string `json:"pass_id"`
	Tier    string `json:"tier"`
	Message string `json:"message"`
}

type EmployeeRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ReservationEmailData feeds the HTML confirmation template.
type ReservationEmailData struct {
	UserName      string
	ReservationID string
	SpotID        int
	SpotType      string
	StartTime     string
	EndTime       string
	DurationHours float64
	Status        string
	CurrentYear   int
}
