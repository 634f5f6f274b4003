package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/quizdash/quizdash-backend/models"
	"github.com/quizdash/quizdash-backend/responses"
	"github.com/quizdash/quizdash-backend/utils"
)

// The HTTP surface is a thin read over the room store; it carries no
// synchronization semantics of its own.

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	utils.HandleSuccess(w, models.SuccessResponse(map[string]interface{}{
		"status": "ok",
		"rooms":  store.Count(),
	}))
}

func RoomInfoHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gr, ok := store.Get(vars["id"])
	if !ok {
		utils.HandleError(w, responses.NotFoundError{Msg: "Room not found."})
		return
	}

	st := gr.state
	st.Mutex.Lock()
	summary := models.RoomSummary{
		ID:          st.ID,
		Started:     st.Started,
		Ended:       st.Ended,
		PlayerCount: len(st.Players),
		Players:     st.PlayersSnapshot(),
		CreatedAt:   st.CreatedAt,
	}
	st.Mutex.Unlock()

	utils.HandleSuccess(w, models.SuccessResponse(summary))
}

func FinalScoresHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gr, ok := store.Get(vars["id"])
	if !ok {
		utils.HandleError(w, responses.NotFoundError{Msg: "Room not found."})
		return
	}

	st := gr.state
	st.Mutex.Lock()
	finalScores := st.FinalScores
	st.Mutex.Unlock()

	if finalScores == nil {
		utils.HandleError(w, responses.NotFoundError{Msg: "Final scores not available."})
		return
	}

	utils.HandleSuccess(w, models.SuccessResponse(finalScores))
}
