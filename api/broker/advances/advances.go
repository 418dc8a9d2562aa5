package advances

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"BrokerLedger/api"
	"BrokerLedger/api/constants"
	"BrokerLedger/internal/ledger"
	"BrokerLedger/internal/store"
)

// CreateAdvance records an advance and posts its signed delta to the
// owner's ledger (given subtracts, received adds) in one transaction.
func CreateAdvance(advStore *store.AdvanceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID       string          `json:"user_id"`
			Counterparty string          `json:"counterparty"`
			Amount       decimal.Decimal `json:"amount"`
			Type         string          `json:"type"`
			Year         string          `json:"year"`
			Month        string          `json:"month"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if !req.Amount.IsPositive() {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrAmountRequired)
			return
		}
		if req.Year == "" || req.Month == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrYearMonthRequired)
			return
		}
		kind := ledger.AdvanceKind(strings.ToLower(req.Type))
		if kind != ledger.AdvanceGiven && kind != ledger.AdvanceReceived {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrAdvanceTypeInvalid)
			return
		}

		id, err := advStore.Create(r.Context(), store.Advance{
			UserID:       userID,
			Counterparty: req.Counterparty,
			Amount:       req.Amount,
			Type:         kind,
			Year:         req.Year,
			Month:        strings.ToLower(req.Month),
		})
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		api.RespondWithPayload(w, map[string]interface{}{"advance_id": id, "message": constants.SuccessCreated})
	}
}

// ToggleAdvance flips an advance between given and received, reversing the
// previous ledger delta and applying the opposite one.
func ToggleAdvance(advStore *store.AdvanceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID    string `json:"user_id"`
			AdvanceID string `json:"advance_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AdvanceID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		adv, err := advStore.Toggle(r.Context(), userID, req.AdvanceID)
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		api.RespondWithPayload(w, adv)
	}
}

// UpdateAdvance changes the amount and/or type of an advance; the ledger
// receives new-minus-old in a single increment.
func UpdateAdvance(advStore *store.AdvanceStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID    string          `json:"user_id"`
			AdvanceID string          `json:"advance_id"`
			Amount    decimal.Decimal `json:"amount"`
			Type      string          `json:"type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AdvanceID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if !req.Amount.IsPositive() {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrAmountRequired)
			return
		}
		kind := ledger.AdvanceKind(strings.ToLower(req.Type))
		if kind != ledger.AdvanceGiven && kind != ledger.AdvanceReceived {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrAdvanceTypeInvalid)
			return
		}

		adv, err := advStore.UpdateAmount(r.Context(), userID, req.AdvanceID, req.Amount, kind)
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		api.RespondWithPayload(w, adv)
	}
}
