package balances

import (
	"net/http"

	"BrokerLedger/api"
	"BrokerLedger/api/constants"
	"BrokerLedger/internal/ledger"
)

// GetLedger returns the caller's full year -> month -> net amount map.
func GetLedger(agg *ledger.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		l, err := agg.Read(r.Context(), userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed)
			return
		}
		api.RespondWithPayload(w, l)
	}
}
