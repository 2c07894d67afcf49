package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"smartparking/internal/entities"
	apperrors "smartparking/internal/errors"
	"smartparking/internal/service"

	"github.com/gorilla/mux"
)

type UserReservationHandler struct {
	Reservations *service.ReservationService
	Cancels      *service.CancelService
	Passes       *service.PassService
}

func NewUserReservationHandler(reservations *service.ReservationService, cancels *service.CancelService, passes *service.PassService) *UserReservationHandler {
	return &UserReservationHandler{Reservations: reservations, Cancels: cancels, Passes: passes}
}

func writeDomainError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), apperrors.StatusFor(err))
}

func (h *UserReservationHandler) ListSpots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Reservations.Registry.List())
}

func (h *UserReservationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Reservations.Registry.Stats())
}

func (h *UserReservationHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	res, err := h.Reservations.CreateReservation(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(service.Response(res))
}

func (h *UserReservationHandler) ExtendReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.ExtendReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if err := h.Reservations.ExtendReservation(req.SpotID, req.Email); err != nil {
		writeDomainError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Extension request received"})
}

func (h *UserReservationHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var req entities.CancelReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	resp, err := h.Cancels.RequestCancellation(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (h *UserReservationHandler) CheckScanStatus(w http.ResponseWriter, r *http.Request) {
	spotID, err := strconv.Atoi(mux.Vars(r)["spot_id"])
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}
	status, err := h.Cancels.Status(spotID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

// MarkAsScanned is the endpoint the cancellation QR encodes. Phone
// cameras issue a GET when the link is opened, so the route accepts
// both methods.
func (h *UserReservationHandler) MarkAsScanned(w http.ResponseWriter, r *http.Request) {
	spotID, err := strconv.Atoi(mux.Vars(r)["spot_id"])
	if err != nil {
		http.Error(w, "Invalid spot id", http.StatusBadRequest)
		return
	}
	if err := h.Cancels.MarkScanned(spotID); err != nil {
		writeDomainError(w, err)
		return
	}
	json.NewEncoder(w).Encode(map[string]string{"message": "Scan confirmed. The spot will be released."})
}

func (h *UserReservationHandler) CreateMonthlyPass(w http.ResponseWriter, r *http.Request) {
	var req entities.MonthlyPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	rec, err := h.Passes.CreateMonthlyPass(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entities.PassResponse{PassID: rec.ID, Tier: rec.Tier, Message: "Monthly pass registered"})
}

func (h *UserReservationHandler) CreateYearlyPass(w http.ResponseWriter, r *http.Request) {
	var req entities.YearlyPassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	rec, err := h.Passes.CreateYearlyPass(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entities.PassResponse{PassID: rec.ID, Tier: rec.Tier, Message: "Yearly pass registered"})
}
