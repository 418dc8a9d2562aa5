package slabs

import (
	"encoding/json"
	"net/http"

	"BrokerLedger/api"
	"BrokerLedger/api/constants"
	"BrokerLedger/internal/commission"
	"BrokerLedger/internal/store"
)

// ReplaceSchedule swaps a slab schedule for a company or for the calling
// broker. The contiguity validator runs here, on the write path, so a
// broken schedule can never reach the resolver.
func ReplaceSchedule(slabStore *store.SlabStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID    string            `json:"user_id"`
			OwnerType string            `json:"owner_type"` // company | broker
			OwnerID   string            `json:"owner_id"`
			Slabs     []commission.Slab `json:"slabs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		ownerType := req.OwnerType
		ownerID := req.OwnerID
		if ownerType == store.SlabOwnerBroker {
			// Brokers may only edit their own schedule.
			ownerID = userID
		}
		if ownerType != store.SlabOwnerCompany && ownerType != store.SlabOwnerBroker {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrSlabsRequired)
			return
		}
		if ownerID == "" {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrSlabsRequired)
			return
		}

		schedule, err := commission.ValidateSchedule(req.Slabs)
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		if err := slabStore.ReplaceSchedule(r.Context(), ownerType, ownerID, schedule); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrScheduleUpdateFailed)
			return
		}
		api.RespondWithPayload(w, map[string]interface{}{"message": constants.SuccessUpdated, "slabs": schedule})
	}
}

// GetSchedule returns an owner's validated schedule.
func GetSchedule(slabStore *store.SlabStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID    string `json:"user_id"`
			OwnerType string `json:"owner_type"`
			OwnerID   string `json:"owner_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		ownerID := req.OwnerID
		if req.OwnerType == store.SlabOwnerBroker {
			ownerID = userID
		}

		schedule, err := slabStore.Schedule(r.Context(), req.OwnerType, ownerID)
		if err != nil {
			api.RespondWithEngineError(w, err)
			return
		}
		api.RespondWithPayload(w, schedule)
	}
}
