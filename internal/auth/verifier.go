package auth

import (
	"context"
	"errors"
	"strings"

	apperr "wellnesshub/internal/errors"
)

// ErrAccountNotFound is returned by an AccountLookup when no account matches.
var ErrAccountNotFound = errors.New("account not found")

// AccountLookup resolves an account id to a principal.
type AccountLookup interface {
	PrincipalByID(ctx context.Context, id string) (*Principal, error)
}

// Verifier turns a bearer token into a Principal.
type Verifier struct {
	jwt      *JWTService
	tokens   TokenStoreInterface
	accounts AccountLookup
}

// NewVerifier builds a credential verifier. tokens may be nil when revocation is not used.
func NewVerifier(jwtService *JWTService, tokens TokenStoreInterface, accounts AccountLookup) *Verifier {
	return &Verifier{jwt: jwtService, tokens: tokens, accounts: accounts}
}

// Verify validates the token and loads the principal it names.
func (v *Verifier) Verify(ctx context.Context, token string) (*Principal, *Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, nil, apperr.Unauthenticated("no token provided")
	}

	claims, err := v.jwt.ValidateToken(token)
	if err != nil {
		return nil, nil, apperr.Unauthenticated("invalid token")
	}

	if v.tokens != nil {
		if revoked, _ := v.tokens.IsRevoked(ctx, claims.ID); revoked {
			return nil, nil, apperr.Unauthenticated("invalid token")
		}
	}

	principal, err := v.accounts.PrincipalByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, nil, apperr.Unauthenticated("user not found")
		}
		return nil, nil, apperr.Normalize(err)
	}

	if principal.Status != "" && principal.Status != StatusActive {
		return nil, nil, apperr.Unauthenticated("account is not active")
	}
	if principal.Status == "" {
		principal.Status = StatusActive
	}
	if principal.Permissions == nil {
		principal.Permissions = Permissions{}
	}

	return principal, claims, nil
}
