package companies

import (
	"encoding/json"
	"net/http"
	"strings"

	"BrokerLedger/api"
	"BrokerLedger/api/constants"
	"BrokerLedger/internal/commission"
	"BrokerLedger/internal/store"
)

// CreateCompany registers a counterparty with its slab schedule. The
// schedule is validated before anything is written; a non-contiguous one
// blocks the whole create.
func CreateCompany(companyStore *store.CompanyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    string            `json:"user_id"`
			Name      string            `json:"name"`
			AccountNo string            `json:"account_no"`
			BankName  string            `json:"bank_name"`
			Slabs     []commission.Slab `json:"slabs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrCompanyNameRequired)
			return
		}

		schedule, err := commission.ValidateSchedule(req.Slabs)
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		id, err := companyStore.CreateCompany(r.Context(), req.Name, req.AccountNo, req.BankName, schedule)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrCompanyCreateFailed)
			return
		}
		api.RespondWithPayload(w, map[string]interface{}{"company_id": id, "message": constants.SuccessCreated})
	}
}

// ListCompanies returns the company master, engine fields only.
func ListCompanies(companyStore *store.CompanyStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := companyStore.ListCompanies(r.Context())
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed)
			return
		}
		api.RespondWithPayload(w, out)
	}
}
