package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"smartparking/internal/entities"
	"smartparking/internal/repository"
	"smartparking/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AdminHandler struct {
	Reservations *service.ReservationService
	Store        repository.Store
}

func NewAdminHandler(reservations *service.ReservationService, store repository.Store) *AdminHandler {
	return &AdminHandler{Reservations: reservations, Store: store}
}

func (h *AdminHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	active := h.Reservations.ListActive()
	out := make([]entities.ReservationResponse, 0, len(active))
	for i := range active {
		out = append(out, service.Response(&active[i]))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// ForceRelease frees every reservation on a spot without a credential
// check.
func (h *AdminHandler) ForceRelease(w http.ResponseWriter, r *http.Request) {
	spotID, err := strconv.Atoi(mux.Vars(r)["spot_id"])
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}
	released, err := h.Reservations.ReleaseSpot(spotID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message":  "Spot released",
		"released": released,
	})
}

func (h *AdminHandler) LockSpot(w http.ResponseWriter, r *http.Request) {
	spotID, err := strconv.Atoi(mux.Vars(r)["spot_id"])
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}
	if err := h.Reservations.Registry.Lock(spotID); err != nil {
		writeDomainError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Spot locked"})
}

func (h *AdminHandler) UnlockSpot(w http.ResponseWriter, r *http.Request) {
	spotID, err := strconv.Atoi(mux.Vars(r)["spot_id"])
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}
	if err := h.Reservations.Registry.Unlock(spotID); err != nil {
		writeDomainError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Spot unlocked"})
}

func (h *AdminHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req entities.EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.Email == "" {
		http.Error(w, "Name and email are required", http.StatusBadRequest)
		return
	}
	rec := &repository.EmployeeRecord{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Role:      req.Role,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Store.SaveEmployee(rec); err != nil {
		http.Error(w, "Could not register employee", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"employee_id": rec.ID, "message": "Employee registered"})
}
