package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"

	"am4m_server/routes"
	"am4m_server/services"
	"am4m_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	messageBus := services.NewMessageBus()
	connectionService := &services.ConnectionService{Dynamo: dynamoService}
	chatService := &services.ChatService{Dynamo: dynamoService, Connections: connectionService, Bus: messageBus}
	profileService := &services.ProfileService{Dynamo: dynamoService}
	conversationService := &services.ConversationService{
		Connections: connectionService,
		Profiles:    profileService,
		Chat:        chatService,
	}
	mediaService := services.NewMediaService()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to AM4M")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterProfileRoutes(r, profileService)
	routes.RegisterConnectionRoutes(r, connectionService)
	routes.RegisterChatRoutes(r, chatService)
	routes.RegisterConversationRoutes(r, conversationService, connectionService, profileService)
	routes.RegisterMediaRoutes(r, mediaService)

	// Start the Socket.IO server and bridge stored messages into rooms
	socketServer := socket.NewSocketServer()
	stopBridge := socket.Bridge(socketServer, messageBus)
	defer stopBridge()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Println("❌ Socket server error:", err)
		}
	}()
	defer socketServer.Close()
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
