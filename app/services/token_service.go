// Package services provides technical concerns used by the business flows: tokens, captcha and QR codes
package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amirphl/masuk10/utils"
	"github.com/golang-jwt/jwt/v5"
)

// Token service error constants
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token has been revoked")
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenService handles JWT token generation and validation for back-office users
type TokenService interface {
	GenerateUserTokens(userID uint, role string) (accessToken, refreshToken string, err error)
	ValidateUserToken(token string) (*UserTokenClaims, error)
	RefreshUserTokens(refreshToken string) (newAccessToken, newRefreshToken string, err error)
	RevokeToken(token string) error
	IsTokenRevoked(tokenID string) bool
	AccessTokenTTL() time.Duration
}

// UserTokenClaims represents the claims carried by a user JWT
type UserTokenClaims struct {
	UserID    uint      `json:"user_id"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TokenType string    `json:"token_type"` // "access" or "refresh"
	TokenID   string    `json:"jti"`        // JWT ID for token revocation
}

// TokenServiceImpl implements TokenService
type TokenServiceImpl struct {
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	signingMethod   jwt.SigningMethod
	privateKey      *rsa.PrivateKey
	publicKey       *rsa.PublicKey
	secretKey       []byte
	useRSAKeys      bool
	issuer          string
	audience        string

	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> token expiry
}

// NewTokenService creates a new token service
func NewTokenService(accessTokenTTL, refreshTokenTTL time.Duration, issuer, audience string, useRSAKeys bool, privateKeyPEM, publicKeyPEM, secretKey string) (TokenService, error) {
	var privateKey *rsa.PrivateKey
	var publicKey *rsa.PublicKey
	var secretKeyBytes []byte
	var signingMethod jwt.SigningMethod

	if useRSAKeys {
		var err error
		privateKey, publicKey, err = parseRSAKeys(privateKeyPEM, publicKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse RSA keys: %w", err)
		}
		signingMethod = jwt.SigningMethodRS256
	} else {
		if secretKey == "" {
			return nil, fmt.Errorf("secret key is required when not using RSA keys")
		}
		secretKeyBytes = []byte(secretKey)
		signingMethod = jwt.SigningMethodHS256
	}

	return &TokenServiceImpl{
		accessTokenTTL:  accessTokenTTL,
		refreshTokenTTL: refreshTokenTTL,
		signingMethod:   signingMethod,
		privateKey:      privateKey,
		publicKey:       publicKey,
		secretKey:       secretKeyBytes,
		useRSAKeys:      useRSAKeys,
		issuer:          issuer,
		audience:        audience,
		revoked:         make(map[string]time.Time),
	}, nil
}

// parseRSAKeys parses RSA private and public keys from PEM format
func parseRSAKeys(privateKeyPEM, publicKeyPEM string) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	if privateKeyPEM == "" || publicKeyPEM == "" {
		return nil, nil, fmt.Errorf("both private and public keys are required")
	}

	privateKeyBlock, _ := pem.Decode([]byte(privateKeyPEM))
	if privateKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode private key")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(privateKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicKeyBlock, _ := pem.Decode([]byte(publicKeyPEM))
	if publicKeyBlock == nil {
		return nil, nil, fmt.Errorf("failed to decode public key")
	}

	publicKey, err := x509.ParsePKIXPublicKey(publicKeyBlock.Bytes)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	rsaPublicKey, ok := publicKey.(*rsa.PublicKey)
	if !ok {
		return nil, nil, fmt.Errorf("public key is not RSA")
	}

	return privateKey, rsaPublicKey, nil
}

func (s *TokenServiceImpl) AccessTokenTTL() time.Duration { return s.accessTokenTTL }

// GenerateUserTokens generates access and refresh tokens carrying user id and role
func (s *TokenServiceImpl) GenerateUserTokens(userID uint, role string) (accessToken, refreshToken string, err error) {
	now := utils.UTCNow()

	accessTokenID, err := generateTokenID()
	if err != nil {
		return "", "", err
	}

	refreshTokenID, err := generateTokenID()
	if err != nil {
		return "", "", err
	}

	accessToken, err = s.generateToken(jwt.MapClaims{
		"user_id":    userID,
		"role":       role,
		"token_type": TokenTypeAccess,
		"jti":        accessTokenID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.accessTokenTTL).Unix(),
		"iss":        s.issuer,
		"aud":        s.audience,
	})
	if err != nil {
		return "", "", err
	}

	refreshToken, err = s.generateToken(jwt.MapClaims{
		"user_id":    userID,
		"role":       role,
		"token_type": TokenTypeRefresh,
		"jti":        refreshTokenID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.refreshTokenTTL).Unix(),
		"iss":        s.issuer,
		"aud":        s.audience,
	})
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

// ValidateUserToken validates a JWT and returns its claims
func (s *TokenServiceImpl) ValidateUserToken(token string) (*UserTokenClaims, error) {
	parsedToken, err := jwt.Parse(token, s.keyFunc, jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if !parsedToken.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	role, ok := claims["role"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	tokenType, ok := claims["token_type"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	tokenID, ok := claims["jti"].(string)
	if !ok {
		return nil, ErrTokenInvalid
	}
	issuedAt, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	expiresAt, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}

	if utils.UTCNow().After(time.Unix(int64(expiresAt), 0)) {
		return nil, ErrTokenExpired
	}
	if s.IsTokenRevoked(tokenID) {
		return nil, ErrTokenRevoked
	}

	return &UserTokenClaims{
		UserID:    uint(userID),
		Role:      role,
		TokenType: tokenType,
		TokenID:   tokenID,
		IssuedAt:  time.Unix(int64(issuedAt), 0),
		ExpiresAt: time.Unix(int64(expiresAt), 0),
	}, nil
}

// RefreshUserTokens rotates a refresh token into a new pair and revokes the old one
func (s *TokenServiceImpl) RefreshUserTokens(refreshToken string) (newAccessToken, newRefreshToken string, err error) {
	claims, err := s.ValidateUserToken(refreshToken)
	if err != nil {
		return "", "", fmt.Errorf("invalid refresh token: %w", err)
	}

	if claims.TokenType != TokenTypeRefresh {
		return "", "", fmt.Errorf("token is not a refresh token: %w", ErrTokenInvalid)
	}

	s.revoke(claims.TokenID, claims.ExpiresAt)
	return s.GenerateUserTokens(claims.UserID, claims.Role)
}

// RevokeToken records the token id until the token would have expired anyway
func (s *TokenServiceImpl) RevokeToken(token string) error {
	claims, err := s.ValidateUserToken(token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}
	s.revoke(claims.TokenID, claims.ExpiresAt)
	return nil
}

func (s *TokenServiceImpl) revoke(tokenID string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := utils.UTCNow()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
	s.revoked[tokenID] = expiresAt
}

// IsTokenRevoked checks if a token id has been revoked
func (s *TokenServiceImpl) IsTokenRevoked(tokenID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.revoked[tokenID]
	return ok
}

func (s *TokenServiceImpl) keyFunc(token *jwt.Token) (any, error) {
	if s.useRSAKeys {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.publicKey, nil
	}
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return s.secretKey, nil
}

// generateToken creates a signed JWT token
func (s *TokenServiceImpl) generateToken(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(s.signingMethod, claims)

	if s.useRSAKeys {
		return token.SignedString(s.privateKey)
	}
	return token.SignedString(s.secretKey)
}

// generateTokenID generates a unique token ID
func generateTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", bytes), nil
}
