package expenses

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"BrokerLedger/api"
	"BrokerLedger/api/constants"
	"BrokerLedger/internal/store"
)

// CreateExpense records an expense. Only expenses created straight into
// approved touch the ledger at create time.
func CreateExpense(expStore *store.ExpenseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID      string          `json:"user_id"`
			Description string          `json:"description"`
			Amount      decimal.Decimal `json:"amount"`
			Status      string          `json:"status"`
			Year        string          `json:"year"`
			Month       string          `json:"month"`
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

		id, err := expStore.Create(r.Context(), store.Expense{
			UserID:      userID,
			Description: req.Description,
			Amount:      req.Amount,
			Status:      strings.ToLower(req.Status),
			Year:        req.Year,
			Month:       strings.ToLower(req.Month),
		})
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		api.RespondWithPayload(w, map[string]interface{}{"expense_id": id, "message": constants.SuccessCreated})
	}
}

// SetExpenseStatus transitions an expense. Crossing the approved boundary
// posts the amount (entering) or reverses it (leaving); the row update and
// the ledger post are one transaction.
func SetExpenseStatus(expStore *store.ExpenseStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID    string `json:"user_id"`
			ExpenseID string `json:"expense_id"`
			Status    string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExpenseID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		exp, err := expStore.SetStatus(r.Context(), userID, req.ExpenseID, strings.ToLower(req.Status))
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		api.RespondWithPayload(w, exp)
	}
}
