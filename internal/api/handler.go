package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"tessera/internal/auth"
	"tessera/internal/checkout"
	"tessera/internal/logger"
	"tessera/internal/models"
	"tessera/internal/seating"
	"tessera/internal/sse"
	"tessera/internal/utils"

	"github.com/go-chi/chi/v5"
)

// CheckoutDriver is implemented by checkout.Coordinator.
type CheckoutDriver interface {
	Checkout(ctx context.Context, store checkout.HoldStore, seats []models.SeatID, ownerID string) (*checkout.Result, error)
	CheckoutHold(ctx context.Context, store checkout.HoldStore, holdID, ownerID string) (*checkout.Result, error)
}

type Handler struct {
	Registry    *seating.Registry
	Coordinator CheckoutDriver
	Emitter     *sse.SeatEventEmitter
	Logger      *logger.Logger
}

type holdRequest struct {
	Seats []string `json:"seats"`
}

type bestBlockRequest struct {
	Quantity int `json:"quantity"`
}

type blockResponse struct {
	Row        string   `json:"row"`
	Seats      []string `json:"seats"`
	PriceCents int64    `json:"price_cents"`
}

// RegisterRoutes mounts every endpoint. Buyer-facing routes (holds and
// checkout) sit behind the given auth middleware; seat map reads and the
// event stream are public.
func (h *Handler) RegisterRoutes(r chi.Router, authMW func(http.Handler) http.Handler) {
	r.Get("/events/{eventID}/seats", h.ListSeats)
	r.Post("/events/{eventID}/seats/generate", h.GenerateSeats)
	r.Post("/events/{eventID}/best-block", h.BestBlock)
	r.Get("/events/{eventID}/stream", h.StreamSeatEvents)

	r.Group(func(r chi.Router) {
		r.Use(authMW)
		r.Post("/events/{eventID}/holds", h.CreateHold)
		r.Post("/events/{eventID}/checkout", h.Checkout)
		r.Delete("/holds/{holdID}", h.ReleaseHold)
		r.Post("/holds/{holdID}/checkout", h.CheckoutHold)
	})
}

// ListSeats returns every seat with its current status and price.
func (h *Handler) ListSeats(w http.ResponseWriter, r *http.Request) {
	store, err := h.Registry.Event(chi.URLParam(r, "eventID"))
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Seats retrieved", store.Seats()))
}

// GenerateSeats creates the seat grid for a new event from a venue spec.
func (h *Handler) GenerateSeats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var spec models.VenueSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	store, err := h.Registry.CreateEvent(eventID, spec)
	if err != nil {
		if errors.Is(err, seating.ErrEventExists) {
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Event already exists", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not generate seats", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Seats generated", map[string]interface{}{
		"event_id": eventID,
		"seats":    len(store.Seats()),
	}))
}

// BestBlock returns the optimal contiguous block for a quantity, or 404
// when no row has a long enough run.
func (h *Handler) BestBlock(w http.ResponseWriter, r *http.Request) {
	store, err := h.Registry.Event(chi.URLParam(r, "eventID"))
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		return
	}

	var req bestBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if req.Quantity < 1 {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid quantity", "quantity must be >= 1"))
		return
	}

	block := store.BestBlock(req.Quantity)
	if block == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("No block available",
			fmt.Sprintf("no row has %d consecutive available seats", req.Quantity)))
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Best block found", blockResponse{
		Row:        block.Row,
		Seats:      models.SeatLabels(block.Seats),
		PriceCents: block.PriceCents,
	}))
}

// CreateHold places an all-or-nothing hold on an explicit seat set.
func (h *Handler) CreateHold(w http.ResponseWriter, r *http.Request) {
	store, err := h.Registry.Event(chi.URLParam(r, "eventID"))
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		return
	}

	ownerID, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "no authenticated user"))
		return
	}

	seats, err := decodeSeats(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	hold, err := store.TryHold(seats, ownerID)
	if err != nil {
		var conflict *seating.ConflictError
		if errors.As(err, &conflict) {
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Some seats unavailable", err.Error()))
			return
		}
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Could not hold seats", err.Error()))
		return
	}

	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Seats held", hold))
}

// ReleaseHold releases an active hold. Releasing an unknown hold is a
// no-op: the client's release races the sweeper's expiry by design.
func (h *Handler) ReleaseHold(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdID")

	ownerID, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "no authenticated user"))
		return
	}

	store, hold, err := h.Registry.FindHold(holdID)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if hold.OwnerID != ownerID {
		utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "hold belongs to another owner"))
		return
	}

	store.Release(holdID)
	w.WriteHeader(http.StatusNoContent)
}

// Checkout drives hold -> payment -> commit for an explicit seat set.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	store, err := h.Registry.Event(chi.URLParam(r, "eventID"))
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", err.Error()))
		return
	}

	ownerID, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "no authenticated user"))
		return
	}

	seats, err := decodeSeats(r)
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	result, err := h.Coordinator.Checkout(r.Context(), store, seats, ownerID)
	h.writeCheckoutResult(w, result, err)
}

// CheckoutHold drives an existing hold through payment and commit.
func (h *Handler) CheckoutHold(w http.ResponseWriter, r *http.Request) {
	holdID := chi.URLParam(r, "holdID")

	ownerID, ok := auth.UserID(r.Context())
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Unauthorized", "no authenticated user"))
		return
	}

	store, _, err := h.Registry.FindHold(holdID)
	if err != nil {
		utils.WriteJSON(w, http.StatusGone, utils.ErrorResponse("Hold expired or released",
			"re-run the hold and payment flow from the start"))
		return
	}

	result, err := h.Coordinator.CheckoutHold(r.Context(), store, holdID, ownerID)
	h.writeCheckoutResult(w, result, err)
}

func (h *Handler) writeCheckoutResult(w http.ResponseWriter, result *checkout.Result, err error) {
	if err == nil {
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Checkout complete", result))
		return
	}

	var conflict *seating.ConflictError
	var recon *checkout.ReconciliationError
	switch {
	case errors.As(err, &conflict):
		utils.WriteJSON(w, http.StatusConflict, utils.APIResponse{
			Success: false,
			Message: "Some seats unavailable",
			Error:   err.Error(),
			Data:    result,
		})
	case errors.As(err, &recon):
		// Fatal to the automated flow: the charge is captured but the sale
		// could not be applied. Surfaced for the operator path.
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Payment captured but sale could not be applied; reconciliation needed",
			Error:   err.Error(),
			Data:    result,
		})
	case errors.Is(err, checkout.ErrPaymentAuthFailed), errors.Is(err, checkout.ErrPaymentConfirmFailed):
		utils.WriteJSON(w, http.StatusPaymentRequired, utils.APIResponse{
			Success: false,
			Message: "Payment failed; hold released",
			Error:   err.Error(),
			Data:    result,
		})
	case errors.Is(err, seating.ErrHoldNotFound):
		utils.WriteJSON(w, http.StatusGone, utils.ErrorResponse("Hold expired or released",
			"re-run the hold and payment flow from the start"))
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Checkout failed", err.Error()))
	}
}

func decodeSeats(r *http.Request) ([]models.SeatID, error) {
	var req holdRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, err
	}
	if len(req.Seats) == 0 {
		return nil, errors.New("no seats provided")
	}
	seats := make([]models.SeatID, 0, len(req.Seats))
	for _, label := range req.Seats {
		id, err := models.ParseSeatID(label)
		if err != nil {
			return nil, err
		}
		seats = append(seats, id)
	}
	return seats, nil
}
