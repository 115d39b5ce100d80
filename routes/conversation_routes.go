package routes

import (
	"am4m_server/controllers"
	"am4m_server/services"

	"github.com/gorilla/mux"
)

// RegisterConversationRoutes sets up the conversation list and dashboard routes
func RegisterConversationRoutes(r *mux.Router, conversations *services.ConversationService, connections *services.ConnectionService, profiles *services.ProfileService) {
	controller := controllers.NewConversationController(conversations, connections, profiles)

	r.HandleFunc("/api/conversations/{userId}", controller.HandleGetConversations).Methods("GET")
	r.HandleFunc("/api/dashboard/{userId}", controller.HandleGetDashboardCounts).Methods("GET")
}
