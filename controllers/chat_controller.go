package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"am4m_server/services"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{ChatService: service}
}

// CreateMessage - Store a new message in a conversation
func (c *ChatController) CreateMessage(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ConnectionID string `json:"connectionId"`
		SenderID     string `json:"senderId"`
		Content      string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("📩 New message from %s in conversation %s", request.SenderID, request.ConnectionID)

	message, err := c.ChatService.SendMessage(r.Context(), request.ConnectionID, request.SenderID, request.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, message)
}

// GetMessages - Fetch a full conversation thread, oldest first
func (c *ChatController) GetMessages(w http.ResponseWriter, r *http.Request) {
	connectionID := r.URL.Query().Get("connectionId")
	if connectionID == "" {
		http.Error(w, `{"error": "Missing connectionId"}`, http.StatusBadRequest)
		return
	}

	messages, err := c.ChatService.ListMessages(r.Context(), connectionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messages)
}
