package routes

import (
	"am4m_server/controllers"
	"am4m_server/services"

	"github.com/gorilla/mux"
)

// RegisterProfileRoutes sets up routes for profile operations under /api/profiles
func RegisterProfileRoutes(r *mux.Router, profileService *services.ProfileService) {
	controller := controllers.NewProfileController(profileService)

	profileRouter := r.PathPrefix("/api/profiles").Subrouter()

	profileRouter.HandleFunc("", controller.HandleSaveProfile).Methods("POST")
	profileRouter.HandleFunc("/search", controller.HandleSearchProfiles).Methods("POST")
	profileRouter.HandleFunc("/me/{userId}", controller.HandleGetOwnProfile).Methods("GET")
	profileRouter.HandleFunc("/{userId}", controller.HandleViewProfile).Methods("GET")
	profileRouter.HandleFunc("/{userId}", controller.HandleDeleteProfile).Methods("DELETE")
}
