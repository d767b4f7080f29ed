package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"subscription-checkout/internal/domain"
	"subscription-checkout/internal/domain/model"
	"subscription-checkout/internal/domain/ports/adapter"
	"subscription-checkout/internal/usecase"
)

// sessionView is what every flow endpoint returns: enough for a client to
// decide which screen to render.
type sessionView struct {
	SessionID string                `json:"session_id"`
	Screen    model.Screen          `json:"screen"`
	Plan      *model.Plan           `json:"plan,omitempty"`
	Result    *model.CheckoutResult `json:"result,omitempty"`
}

func viewOf(state *model.CheckoutState) sessionView {
	return sessionView{
		SessionID: state.ID,
		Screen:    state.Screen,
		Plan:      state.Plan,
		Result:    state.Result,
	}
}

type errorResponse struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// writeDomainError maps domain errors to HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrNoPlanSelected),
		errors.Is(err, domain.ErrNoTransaction),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrBillingUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.catalog.Plans(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("plan listing failed")
		writeError(w, http.StatusBadGateway, "could not load plans")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleListCardFlags(w http.ResponseWriter, r *http.Request) {
	flags, err := s.catalog.CardFlags(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("card flag listing failed")
		writeError(w, http.StatusBadGateway, "could not load card flags")
		return
	}
	writeJSON(w, http.StatusOK, flags)
}

// handleGetSubscription backs the subscription history screen with the full
// record, transactions included.
func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid subscription id")
		return
	}
	sub, err := s.billing.GetSubscription(r.Context(), id)
	if err != nil {
		// An unknown id is not a billing outage.
		var apiErr *adapter.APIError
		if errors.Is(err, domain.ErrNotFound) ||
			(errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		s.log.Warn().Err(err).Int64("subscription_id", id).Msg("subscription fetch failed")
		writeError(w, http.StatusBadGateway, "could not load subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.flow.Start(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(state))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.flow.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state))
}

type selectPlanRequest struct {
	PlanID int64 `json:"plan_id"`
}

func (s *Server) handleSelectPlan(w http.ResponseWriter, r *http.Request) {
	var req selectPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := s.flow.SelectPlan(r.Context(), chi.URLParam(r, "id"), req.PlanID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state))
}

type couponRequest struct {
	Code string `json:"code"`
}

type couponResponse struct {
	Status  usecase.CouponStatus  `json:"status"`
	Coupon  *model.Coupon         `json:"coupon,omitempty"`
	Message string                `json:"message,omitempty"`
	Pricing *usecase.PricePreview `json:"pricing"`
}

func (s *Server) handleCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cs, preview, err := s.flow.ValidateCoupon(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, couponResponse{
		Status:  cs.Status,
		Coupon:  cs.Coupon,
		Message: cs.Message,
		Pricing: preview,
	})
}

type submitRequest struct {
	Email      string `json:"email" validate:"required,email"`
	ClientName string `json:"client_name" validate:"required,holdername"`
	CardNumber string `json:"card_number" validate:"required,cardnumber"`
	ExpireDate string `json:"expire_date" validate:"required,expdate"`
	CVC        string `json:"cvc" validate:"required,cvc"`
	CardFlagID int64  `json:"card_flag_id" validate:"required"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// Local validation never reaches the network; failures use the same
	// per-field shape the billing API's unprocessable responses do.
	if fieldErrs := s.validate.check(req); len(fieldErrs) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "Validation failed",
			Errors:  fieldErrs,
		})
		return
	}

	state, result, err := s.flow.Submit(r.Context(), chi.URLParam(r, "id"), usecase.CheckoutForm{
		Email:      req.Email,
		ClientName: req.ClientName,
		CardNumber: req.CardNumber,
		ExpireDate: req.ExpireDate,
		CVC:        req.CVC,
		CardFlagID: req.CardFlagID,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	if !result.Success {
		if len(result.FieldErrors) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Message: result.Message,
				Errors:  result.FieldErrors,
			})
			return
		}
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: result.Message})
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state))
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	state, err := s.flow.Back(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	state, err := s.flow.Reset(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state))
}

type navigateRequest struct {
	Screen model.Screen `json:"screen"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req navigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	state, err := s.flow.Navigate(r.Context(), chi.URLParam(r, "id"), req.Screen)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(state))
}
