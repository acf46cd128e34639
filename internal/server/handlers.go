package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"parking-reservations/internal/parking"
)

type Handler struct {
	lot         *parking.InstrumentedLot
	serviceName string
}

func NewHandler(lot *parking.InstrumentedLot, serviceName string) *Handler {
	return &Handler{
		lot:         lot,
		serviceName: serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

// ListSpots returns every spot, or the search result when q or field is
// given.
func (h *Handler) ListSpots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")
	fieldParam := r.URL.Query().Get("field")

	if query != "" || fieldParam != "" {
		field := parking.ParseSearchField(fieldParam)
		spots := h.lot.Search(ctx, query, field)
		if spots == nil {
			spots = []parking.Spot{}
		}
		WriteSuccess(ctx, w, "Search completed", SearchResponse{
			Query: query,
			Field: string(field),
			Count: len(spots),
			Spots: spots,
		})
		return
	}

	reg := h.lot.Registry()
	WriteSuccess(ctx, w, "Spots retrieved successfully", SpotListResponse{
		Total:     reg.Len(),
		Occupied:  reg.Occupied(),
		Available: len(parking.AvailableSpots(reg, h.lot.Now())),
		Spots:     reg.List(),
	})
}

func (h *Handler) AvailableSpots(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	spots := h.lot.Available(ctx)
	if spots == nil {
		spots = []parking.Spot{}
	}

	WriteSuccess(ctx, w, "Available spots retrieved successfully", spots)
}

func (h *Handler) SpotDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		WriteError(ctx, w, http.StatusBadRequest, "Spot id must be a positive integer")
		return
	}

	details, err := h.lot.Details(ctx, id)
	if err != nil {
		WriteError(ctx, w, http.StatusNotFound, "Spot not found")
		return
	}

	WriteSuccess(ctx, w, "Spot details retrieved successfully", details)
}

func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req parking.ReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	confirmation, err := h.lot.Reserve(ctx, req)
	if err != nil {
		var missing *parking.MissingFieldError
		switch {
		case errors.As(err, &missing):
			WriteFieldError(ctx, w, "All fields are required", missing.Fields)
		case errors.Is(err, parking.ErrInvalidDuration):
			WriteError(ctx, w, http.StatusBadRequest, err.Error())
		case errors.Is(err, parking.ErrSpotNotFound):
			WriteError(ctx, w, http.StatusNotFound, err.Error())
		case errors.Is(err, parking.ErrSpotUnavailable):
			WriteError(ctx, w, http.StatusConflict, err.Error())
		default:
			WriteError(ctx, w, http.StatusInternalServerError, "Failed to reserve spot")
		}
		return
	}

	WriteSuccessStatus(ctx, w, http.StatusCreated, "Reservation confirmed", confirmation)
}

func (h *Handler) Durations(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Allowed durations", DurationsResponse{
		Minutes: parking.AllowedDurations(),
	})
}

func (h *Handler) Grid(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "Grid retrieved successfully", h.lot.Grid())
}
