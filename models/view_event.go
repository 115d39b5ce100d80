package models

// ProfileViewEvent records one profile view for the dashboard's
// "views in the last 7 days" tile. Inserts are best-effort.
type ProfileViewEvent struct {
	ViewedID  string `dynamodbav:"viewedId" json:"viewedId"`   // ✅ Partition Key
	CreatedAt string `dynamodbav:"createdAt" json:"createdAt"` // ✅ Sort Key
	ViewerID  string `dynamodbav:"viewerId" json:"viewerId"`
}

// ProfileViewEventsTable is the DynamoDB table name for profile view events
const ProfileViewEventsTable = "ProfileViewEvents"
