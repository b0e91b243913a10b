package repository

import (
	"context"

	userdomain "eduapp-backend/internal/user/domain"
	"eduapp-backend/pkg/docstore"
)

const (
	usersCollection  = "users"
	tokensCollection = "fcm_tokens"
)

// TokenRepository defines the interface for device token operations
type TokenRepository interface {
	GetTokensByUserID(ctx context.Context, userID string) ([]userdomain.DeviceToken, error)
	DeleteToken(ctx context.Context, userID, token string) error
}

// tokenRepository implements TokenRepository on the document store
type tokenRepository struct {
	store docstore.Store
}

// NewTokenRepository creates a new instance of tokenRepository
func NewTokenRepository(store docstore.Store) TokenRepository {
	return &tokenRepository{
		store: store,
	}
}

// GetTokensByUserID returns all registered tokens of a user
func (r *tokenRepository) GetTokensByUserID(ctx context.Context, userID string) ([]userdomain.DeviceToken, error) {
	docs, err := r.store.List(ctx, docstore.Join(usersCollection, userID, tokensCollection))
	if err != nil {
		return nil, err
	}
	tokens := make([]userdomain.DeviceToken, 0, len(docs))
	for _, doc := range docs {
		var t userdomain.DeviceToken
		// registrations often carry no fields at all; the ID is what matters
		_ = doc.Decode(&t)
		t.Token = doc.ID
		t.UserID = userID
		tokens = append(tokens, t)
	}
	return tokens, nil
}

// DeleteToken removes a specific token registration
func (r *tokenRepository) DeleteToken(ctx context.Context, userID, token string) error {
	return r.store.Delete(ctx, docstore.Join(usersCollection, userID, tokensCollection, token))
}
