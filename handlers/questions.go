package handlers

import (
	"log"

	"github.com/quizdash/quizdash-backend/models"
)

// HandleSaveQuestions stores the room's question set. The payload is opaque
// to the server; it only stores and relays what the host uploaded.
func (s *RoomStore) HandleSaveQuestions(c *Connection, req models.SaveQuestionsRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	defer st.Mutex.Unlock()

	if _, ok := st.Players[c.playerID]; !ok {
		return
	}

	st.Questions = req.Questions
	log.Printf("Room %s: %d questions saved", st.ID, len(st.Questions))

	c.sendMessage("questions-received", models.QuestionsReceived{RoomID: st.ID, Count: len(st.Questions)})
	gr.broadcastLocked(marshalMessage("questions-updated", models.QuestionsUpdated{
		RoomID:    st.ID,
		Questions: st.Questions,
		Count:     len(st.Questions),
	}), nil)
}

// HandleRequestQuestions returns the stored question set to the requester
// only.
func (s *RoomStore) HandleRequestQuestions(c *Connection, req models.RequestQuestionsRequest) {
	gr, ok := s.Get(c.roomID)
	if !ok {
		return
	}

	st := gr.state
	st.Mutex.Lock()
	payload := models.QuestionsUpdated{RoomID: st.ID, Questions: st.Questions, Count: len(st.Questions)}
	st.Mutex.Unlock()

	c.sendMessage("questions-updated", payload)
}
