package domain

// DeviceToken is one installed app instance able to receive targeted pushes.
// It is stored as users/{userId}/fcm_tokens/{token}; the token string is the
// document ID.
type DeviceToken struct {
	Token    string `json:"-" firestore:"-"` // Don't expose token in JSON
	UserID   string `json:"user_id" firestore:"-"`
	Platform string `json:"platform,omitempty" firestore:"platform,omitempty"`
}
