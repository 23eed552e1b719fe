package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
	"wellnesshub/internal/repository"
)

type principalLookup struct {
	accounts repository.AccountRepository
}

// NewPrincipalLookup resolves token subjects against stored accounts.
func NewPrincipalLookup(accounts repository.AccountRepository) auth.AccountLookup {
	return &principalLookup{accounts: accounts}
}

func (l *principalLookup) PrincipalByID(ctx context.Context, id string) (*auth.Principal, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, auth.ErrAccountNotFound
	}
	account, err := l.accounts.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrAccountNotFound
		}
		return nil, err
	}
	return account.Principal(), nil
}
