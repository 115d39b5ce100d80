package socket

import (
	"log"

	"am4m_server/models"
	"am4m_server/services"

	socketio "github.com/googollee/go-socket.io"
)

// NewSocketServer builds the Socket.IO server. Clients join one room per
// connection id and receive "newMessage" events for that conversation;
// the bus bridge in Bridge feeds inserts into the rooms.
func NewSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, data map[string]string) {
		connectionID := data["connectionId"]
		if connectionID == "" {
			log.Println("❌ Invalid connectionId in join request")
			return
		}
		log.Printf("👥 Socket %s joined conversation %s\n", c.ID(), connectionID)
		c.Join(connectionID)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, data map[string]string) {
		connectionID := data["connectionId"]
		if connectionID == "" {
			return
		}
		log.Printf("👋 Socket %s left conversation %s\n", c.ID(), connectionID)
		c.Leave(connectionID)
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("⚠️ Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
	})

	return server
}

// Bridge mirrors every stored message into its conversation room and
// returns a cancel func.
func Bridge(server *socketio.Server, bus *services.MessageBus) func() {
	return bus.SubscribeAll(func(msg models.Message) {
		log.Printf("📩 Broadcasting message %s to conversation %s\n", msg.MessageID, msg.ConnectionID)
		server.BroadcastToRoom("/", msg.ConnectionID, "newMessage", msg)
	})
}
