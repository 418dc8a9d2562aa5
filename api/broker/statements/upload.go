package statements

import (
	"encoding/json"
	"net/http"

	"BrokerLedger/api"
	"BrokerLedger/api/constants"
	"BrokerLedger/internal/logger"
	"BrokerLedger/internal/statement"
	"BrokerLedger/internal/store"
)

// UploadStatement is the production JSON path: a full transaction batch in
// the body, validated, deduplicated, commission-resolved per counterparty
// and posted to the uploader's ledger in one run.
func UploadStatement(pipeline *statement.Pipeline) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID string `json:"user_id"`
			statement.Upload
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		rec, err := pipeline.Process(r.Context(), userID, req.Upload)
		if err != nil {
			// A failed record still comes back when the failure happened at
			// persist time; surface both the record and the message.
			if rec != nil {
				if logger.GlobalLogger != nil {
					logger.GlobalLogger.LogIngestion(userID, rec.ID, rec.Status)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(api.StatusForError(err))
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false,
					"error":   err.Error(),
					"data":    rec,
				})
				return
			}
			api.RespondWithEngineError(w, err)
			return
		}

		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogIngestion(userID, rec.ID, rec.Status)
		}
		api.LogInfo("statement %s processed for user %s: %s commission", rec.ID, userID, rec.TotalCommission.String())
		api.RespondWithPayload(w, rec)
	}
}

// ListStatements returns the caller's statement history, newest first.
func ListStatements(statements *store.StatementStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		recs, err := statements.ListByUser(r.Context(), userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrQueryFailed)
			return
		}
		api.RespondWithPayload(w, recs)
	}
}
