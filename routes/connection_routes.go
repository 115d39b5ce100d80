package routes

import (
	"am4m_server/controllers"
	"am4m_server/services"

	"github.com/gorilla/mux"
)

// RegisterConnectionRoutes sets up routes for connection requests under /api/connections
func RegisterConnectionRoutes(r *mux.Router, connectionService *services.ConnectionService) {
	controller := controllers.NewConnectionController(connectionService)

	connectionRouter := r.PathPrefix("/api/connections").Subrouter()

	connectionRouter.HandleFunc("/request", controller.HandleRequestConnection).Methods("POST")
	connectionRouter.HandleFunc("/accept", controller.HandleAcceptConnection).Methods("POST")
	connectionRouter.HandleFunc("/decline", controller.HandleDeclineConnection).Methods("POST")
	connectionRouter.HandleFunc("/pending/{userId}", controller.HandleGetPendingConnections).Methods("GET")
	connectionRouter.HandleFunc("/accepted/{userId}", controller.HandleGetAcceptedConnections).Methods("GET")
}
