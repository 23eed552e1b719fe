package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
	"wellnesshub/internal/config"
	"wellnesshub/internal/db"
	"wellnesshub/internal/logger"
	"wellnesshub/internal/model"
	"wellnesshub/internal/repository"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()

	log.Info("starting seed")

	if cfg.SeedAdminPassword == "" {
		log.Fatal("SEED_ADMIN_PASSWORD must be set")
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN, db.PoolConfig{MaxOpenConns: 2, MaxIdleConns: 1})
	if err != nil {
		log.Fatal("connect to database", zap.Error(err))
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}
	log.Info("database migrations completed")

	repo := repository.NewAccountRepository(gormDB)
	created, err := seedAdmin(context.Background(), repo, cfg.SeedAdminName, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		log.Fatal("seed admin", zap.Error(err))
	}
	if created {
		log.Info("admin account created", zap.String("email", cfg.SeedAdminEmail))
	} else {
		log.Info("admin account already exists", zap.String("email", cfg.SeedAdminEmail))
	}
}

// seedAdmin creates the first administrator unless an account with email already exists.
func seedAdmin(ctx context.Context, repo repository.AccountRepository, name, email, password string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	existing, err := repo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("check account %s: %w", email, err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	admin := &model.Account{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         auth.RoleAdmin,
		Department:   "Administration",
		Permissions:  append(auth.Permissions{}, auth.AllPermissions...),
		Status:       auth.StatusActive,
	}
	if err := repo.Create(ctx, admin); err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}
	return true, nil
}
