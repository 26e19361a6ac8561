package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/lazobello/cvagent/internal/domain"
)

const apiKeyPrefix = "cv_"

// APIKeyRepository defines persistence for API keys.
type APIKeyRepository interface {
	Create(ctx context.Context, key *domain.APIKey) error
	GetByHash(ctx context.Context, hash string) (*domain.APIKey, error)
	List(ctx context.Context) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id string) error
}

// AuthService mints and validates the API keys that gate the HTTP surface.
type AuthService struct {
	keyRepo APIKeyRepository
	uuidGen UUIDGenerator
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(keyRepo APIKeyRepository, uuidGen UUIDGenerator) *AuthService {
	return &AuthService{
		keyRepo: keyRepo,
		uuidGen: uuidGen,
	}
}

// CreateAPIKey mints a new key and returns its plaintext token. Only the
// SHA-256 hash is stored.
func (s *AuthService) CreateAPIKey(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}

	token, err := generateAPIToken()
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate API key", err)
	}

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		Name:      name,
		KeyHash:   hashToken(token),
		CreatedAt: time.Now().UTC(),
	}

	if err := domain.ValidateAPIKey(key); err != nil {
		return "", err
	}

	if err := s.keyRepo.Create(ctx, key); err != nil {
		return "", err
	}

	return token, nil
}

// CreateAPIKeyWithToken registers a caller-supplied token, used by the
// bootstrap path so deployments can pin a known key via environment.
func (s *AuthService) CreateAPIKeyWithToken(ctx context.Context, name, token string) error {
	if name == "" {
		return domain.NewDomainError(domain.ErrCodeValidation, "API key name is required")
	}
	if !IsValidAPIToken(token) {
		return domain.NewDomainError(domain.ErrCodeValidation, "invalid API key format (expected cv_<64 hex chars>)")
	}

	key := &domain.APIKey{
		ID:        s.uuidGen.NewString(),
		Name:      name,
		KeyHash:   hashToken(token),
		CreatedAt: time.Now().UTC(),
	}

	return s.keyRepo.Create(ctx, key)
}

// ValidateAPIKey checks a bearer token and returns the key ID it belongs
// to. Unknown and revoked keys both fail closed.
func (s *AuthService) ValidateAPIKey(ctx context.Context, token string) (string, error) {
	if !IsValidAPIToken(token) {
		return "", domain.ErrInvalidAPIKey
	}

	key, err := s.keyRepo.GetByHash(ctx, hashToken(token))
	if err != nil {
		if err == domain.ErrAPIKeyNotFound {
			return "", domain.ErrInvalidAPIKey
		}
		return "", err
	}

	if key.IsRevoked() {
		return "", domain.ErrAPIKeyRevoked
	}

	return key.ID, nil
}

// GetAPIKeyByToken returns the stored key matching a plaintext token.
func (s *AuthService) GetAPIKeyByToken(ctx context.Context, token string) (*domain.APIKey, error) {
	return s.keyRepo.GetByHash(ctx, hashToken(token))
}

// ListAPIKeys lists all keys.
func (s *AuthService) ListAPIKeys(ctx context.Context) ([]*domain.APIKey, error) {
	return s.keyRepo.List(ctx)
}

// RevokeAPIKey revokes a key by ID.
func (s *AuthService) RevokeAPIKey(ctx context.Context, id string) error {
	return s.keyRepo.Revoke(ctx, id)
}

// IsValidAPIToken reports whether a token has the cv_<64 hex> shape.
func IsValidAPIToken(token string) bool {
	if !strings.HasPrefix(token, apiKeyPrefix) {
		return false
	}

	hexPart := strings.TrimPrefix(token, apiKeyPrefix)
	if len(hexPart) != 64 {
		return false
	}

	_, err := hex.DecodeString(hexPart)
	return err == nil
}

func generateAPIToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
