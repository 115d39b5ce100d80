package models

// Connection is a directed request edge between two users. The edge is
// created by the requester and only ever mutated (status transition) by
// the receiver.
type Connection struct {
	PK           string `dynamodbav:"PK" json:"PK"`                     // ✅ Partition Key: "USER#requester"
	SK           string `dynamodbav:"SK" json:"SK"`                     // ✅ Sort Key: "CONN#receiver"
	ConnectionID string `dynamodbav:"connectionId" json:"connectionId"` // stable id used by messages and the UI
	RequesterID  string `dynamodbav:"requesterId" json:"requesterId"`
	ReceiverID   string `dynamodbav:"receiverId" json:"receiverId"`
	Status       string `dynamodbav:"status" json:"status"` // pending / accepted / declined
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`
	LastUpdated  string `dynamodbav:"lastUpdated" json:"lastUpdated"`
}

// OtherParty returns the counterpart of the given user on this edge.
func (c Connection) OtherParty(userID string) string {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// Involves reports whether the user sits on either side of the edge.
func (c Connection) Involves(userID string) bool {
	return c.RequesterID == userID || c.ReceiverID == userID
}

// ConnectionPK / ConnectionSK build the single-table key pair for an edge.
func ConnectionPK(requesterID string) string { return "USER#" + requesterID }
func ConnectionSK(receiverID string) string  { return "CONN#" + receiverID }

// ✅ Define table name
const ConnectionsTable = "Connections"

// ✅ GSI for querying edges where the user is the receiver
const ReceiverIDIndex = "receiverId-index" // PK: receiverId

// ✅ GSI for resolving an edge by its stable connection id
const ConnectionIDIndex = "connectionId-index" // PK: connectionId
