package routes

import (
	"am4m_server/controllers"
	"am4m_server/services"

	"github.com/gorilla/mux"
)

// RegisterMediaRoutes sets up routes for presigned media URLs
func RegisterMediaRoutes(r *mux.Router, mediaService *services.MediaService) {
	controller := controllers.NewMediaController(mediaService)

	r.HandleFunc("/api/media/upload-url", controller.GenerateUploadURL).Methods("POST")
	r.HandleFunc("/api/media/read-url", controller.GenerateReadURL).Methods("POST")
}
