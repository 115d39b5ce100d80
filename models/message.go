package models

// Message is one chat message inside a connection thread. Messages are
// immutable once persisted; there is no edit or delete path.
type Message struct {
	ConnectionID string `dynamodbav:"connectionId" json:"connectionId"` // ✅ Partition Key
	CreatedAt    string `dynamodbav:"createdAt" json:"createdAt"`       // ✅ Sort Key (TimestampLayout)
	MessageID    string `dynamodbav:"messageId" json:"messageId"`
	SenderID     string `dynamodbav:"senderId" json:"senderId"`
	Content      string `dynamodbav:"content" json:"content"`
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
