package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"BrokerLedger/internal/commission"
	"BrokerLedger/internal/ledger"
	"BrokerLedger/internal/statement"
)

// RespondWithError sends a consistent JSON error envelope.
func RespondWithError(w http.ResponseWriter, status int, errMsg string) {
	log.Println("[ERROR]", errMsg)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   errMsg,
	})
}

// RespondWithPayload sends a consistent JSON response and includes an
// arbitrary payload under `data`.
func RespondWithPayload(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	resp := map[string]interface{}{"success": true}
	if payload != nil {
		resp["data"] = payload
	}
	json.NewEncoder(w).Encode(resp)
}

// StatusForError maps engine errors onto HTTP status codes: validation and
// slab problems are the caller's to fix, duplicates are conflicts, missing
// references are 404s, ledger failures are server-side.
func StatusForError(err error) int {
	var vErr *statement.ValidationError
	var cErr *statement.ConflictError
	var nfErr *statement.NotFoundError
	var sErr *commission.SlabError
	var lErr *ledger.LedgerError
	switch {
	case errors.As(err, &vErr), errors.As(err, &sErr):
		return http.StatusBadRequest
	case errors.As(err, &cErr):
		return http.StatusConflict
	case errors.As(err, &nfErr):
		return http.StatusNotFound
	case errors.Is(err, commission.ErrNoApplicableSlab):
		return http.StatusBadRequest
	case errors.As(err, &lErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// RespondWithEngineError picks the status from the error type.
func RespondWithEngineError(w http.ResponseWriter, err error) {
	RespondWithError(w, StatusForError(err), err.Error())
}

// LogInfo logs an informational message (wrapper for consistent logging)
func LogInfo(msg string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[INFO] "+msg, args...)
	} else {
		log.Println("[INFO]", msg)
	}
}

// LogError logs an error message (wrapper for consistent logging)
func LogError(msg string, args ...interface{}) {
	if len(args) > 0 {
		log.Printf("[ERROR] "+msg, args...)
	} else {
		log.Println("[ERROR]", msg)
	}
}
