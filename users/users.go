package users

import "time"

// Record is a stored user profile keyed by the identity subject. Identity
// fields are written once, on first sight of the subject; display fields are
// client-updatable on every write.
type Record struct {
	UserID          string         `json:"userID" bson:"_id"`
	Email           string         `json:"email,omitempty" bson:"email,omitempty"`
	EmailVerified   *bool          `json:"emailVerified,omitempty" bson:"emailVerified,omitempty"`
	CognitoUsername string         `json:"cognitoUsername,omitempty" bson:"cognitoUsername,omitempty"`
	TokenUse        string         `json:"tokenUse,omitempty" bson:"tokenUse,omitempty"`
	DisplayName     string         `json:"displayName,omitempty" bson:"displayName,omitempty"`
	Profile         map[string]any `json:"profile,omitempty" bson:"profile,omitempty"`
	CreatedAt       time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt" bson:"updatedAt"`
}
