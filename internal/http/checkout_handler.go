package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/cart"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/checkout"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
)

type CheckoutHandler struct {
	store     *cart.Store
	submitter *checkout.Submitter
	status    *checkout.StatusMachine
}

func NewCheckoutHandler(store *cart.Store, submitter *checkout.Submitter, status *checkout.StatusMachine) *CheckoutHandler {
	return &CheckoutHandler{
		store:     store,
		submitter: submitter,
		status:    status,
	}
}

type SubmitResponseDTO struct {
	Status        string            `json:"status"`
	OrderID       string            `json:"order_id,omitempty"`
	International bool              `json:"international,omitempty"`
	Message       string            `json:"message,omitempty"`
	FieldErrors   map[string]string `json:"field_errors,omitempty"`
}

type StatusResponseDTO struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	var draft domain.CheckoutDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if draft.Country == "" {
		draft.Country = domain.HomeCountry
	}

	snapshot := h.store.Snapshot(r.Context(), sessionID)
	result := h.submitter.Submit(r.Context(), sessionID, draft, snapshot)

	log.Printf("checkout submit request %s for session %s finished in state %s",
		getRequestID(r.Context()), sessionID, result.State)

	switch result.State {
	case domain.SubmitStateSucceeded:
		respondJSON(w, http.StatusCreated, SubmitResponseDTO{
			Status:        result.State.String(),
			OrderID:       result.OrderID,
			International: result.International,
		})
	case domain.SubmitStateFailed:
		if len(result.FieldErrors) > 0 {
			respondJSON(w, http.StatusBadRequest, SubmitResponseDTO{
				Status:      result.State.String(),
				FieldErrors: result.FieldErrors,
			})
			return
		}
		respondJSON(w, http.StatusBadGateway, SubmitResponseDTO{
			Status:  result.State.String(),
			Message: result.Message,
		})
	default:
		// another submission for this session is still in flight
		respondJSON(w, http.StatusAccepted, SubmitResponseDTO{Status: result.State.String()})
	}
}

// GET /api/v1/checkout/status
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	status, message := h.status.Status(sessionID)
	respondJSON(w, http.StatusOK, StatusResponseDTO{
		Status:  status.String(),
		Message: message,
	})
}

// POST /api/v1/checkout/dismiss
func (h *CheckoutHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionID(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "no shopper session")
		return
	}

	if err := h.status.Dismiss(r.Context(), sessionID); err != nil {
		log.Printf("failed to clear cart on dismiss for session %s: %v", sessionID, err)
		respondError(w, http.StatusInternalServerError, "internal_error", "could not clear cart")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
