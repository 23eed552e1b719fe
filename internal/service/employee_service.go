package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wellnesshub/internal/auth"
	apperr "wellnesshub/internal/errors"
	"wellnesshub/internal/model"
	"wellnesshub/internal/notify"
	"wellnesshub/internal/query"
	"wellnesshub/internal/repository"
)

const (
	employeeDefaultLimit = 20
	employeeMaxLimit     = 100

	tempPasswordLength   = 12
	tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@#$%"
)

// CreateEmployeeInput is the payload for creating an employee account.
type CreateEmployeeInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Email       string   `json:"email" validate:"required,email,max=255"`
	Password    string   `json:"password" validate:"required,min=8,max=128"`
	Role        string   `json:"role" validate:"required,oneof=admin manager staff support"`
	Department  string   `json:"department" validate:"omitempty,max=100"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,permission"`
	Phone       string   `json:"phone" validate:"omitempty,max=30"`
	Status      string   `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

// UpdateEmployeeInput carries only the fields to change.
type UpdateEmployeeInput struct {
	Name        *string   `json:"name" validate:"omitempty,max=100"`
	Email       *string   `json:"email" validate:"omitempty,email,max=255"`
	Role        *string   `json:"role" validate:"omitempty,oneof=admin manager staff support"`
	Department  *string   `json:"department" validate:"omitempty,max=100"`
	Permissions *[]string `json:"permissions" validate:"omitempty,dive,permission"`
	Phone       *string   `json:"phone" validate:"omitempty,max=30"`
	Status      *string   `json:"status" validate:"omitempty,oneof=active inactive suspended"`
}

// MasterCodeInput carries the server secret required by destructive operations.
type MasterCodeInput struct {
	MasterCode string `json:"masterCode" validate:"required"`
}

// ResetResult reports how a temporary credential was delivered. The credential itself is
// never returned to the caller.
type ResetResult struct {
	AccountID          uuid.UUID `json:"id"`
	Email              string    `json:"email"`
	DeliveredTo        string    `json:"deliveredTo"`
	MustChangePassword bool      `json:"mustChangePassword"`
}

// EmployeeService manages employee accounts.
type EmployeeService interface {
	List(ctx context.Context, f query.Filter) ([]model.Account, query.Pagination, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Account, error)
	Create(ctx context.Context, actor *auth.Principal, in CreateEmployeeInput) (*model.Account, error)
	Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateEmployeeInput) (*model.Account, error)
	Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID, masterCode string) error
	ResetPassword(ctx context.Context, actor *auth.Principal, id uuid.UUID, masterCode string) (*ResetResult, error)
}

type employeeService struct {
	repo       repository.AccountRepository
	notifier   notify.Notifier
	masterCode string
	logger     *zap.Logger
}

// NewEmployeeService builds the employee service. An empty masterCode makes every destructive
// operation fail with Forbidden.
func NewEmployeeService(repo repository.AccountRepository, notifier notify.Notifier, masterCode string, logger *zap.Logger) EmployeeService {
	return &employeeService{
		repo:       repo,
		notifier:   notifier,
		masterCode: masterCode,
		logger:     logger,
	}
}

// EmployeeFilter builds the employee listing filter from query parameters.
func EmployeeFilter(params url.Values) query.Filter {
	b := query.NewBuilder().
		Search(params.Get("search"), model.AccountColName, model.AccountColEmail, model.AccountColDepartment).
		In(model.AccountColStatus, query.Values(params, "status")...).
		In(model.AccountColDepartment, query.Values(params, "department")...)

	roles := make([]string, 0, len(auth.EmployeeRoles))
	for _, raw := range query.Values(params, "role") {
		if r, err := auth.ParseRole(raw); err == nil && r.IsEmployee() {
			roles = append(roles, string(r))
		}
	}
	if len(roles) == 0 {
		for _, r := range auth.EmployeeRoles {
			roles = append(roles, string(r))
		}
	}
	b.In(model.AccountColRole, roles...)

	return b.SortBy(query.Asc(model.AccountColName)).
		Page(params.Get("page"), params.Get("limit"), employeeDefaultLimit, employeeMaxLimit).
		Build()
}

func (s *employeeService) List(ctx context.Context, f query.Filter) ([]model.Account, query.Pagination, error) {
	accounts, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, query.Pagination{}, err
	}
	return emptyIfNil(accounts), f.Pagination(total), nil
}

func (s *employeeService) Get(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "employee")
	}
	if !account.IsEmployee() {
		return nil, apperr.NotFound("employee not found")
	}
	return account, nil
}

func (s *employeeService) Create(ctx context.Context, actor *auth.Principal, in CreateEmployeeInput) (*model.Account, error) {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManageUsers)).Err(); err != nil {
		return nil, err
	}
	role, err := auth.ParseRole(in.Role)
	if err != nil || !role.IsEmployee() {
		return nil, apperr.Validation("role must be one of: admin, manager, staff, support")
	}
	perms, err := parsePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	status := auth.StatusActive
	if in.Status != "" {
		status = auth.Status(in.Status)
	}

	email := normalizeEmail(in.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperr.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check account existence: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
		Department:   strings.TrimSpace(in.Department),
		Permissions:  perms,
		Status:       status,
		Phone:        in.Phone,
		CreatedBy:    actorID(actor),
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, conflictOr(err, apperr.ErrEmailTaken.Message)
	}

	s.logger.Info("employee created",
		zap.String("employee_id", account.ID.String()),
		zap.String("role", string(role)),
		zap.String("actor_id", actor.ID),
	)
	return account, nil
}

func (s *employeeService) Update(ctx context.Context, actor *auth.Principal, id uuid.UUID, in UpdateEmployeeInput) (*model.Account, error) {
	if err := auth.Authorize(actor, auth.HasPermission(auth.PermManageUsers)).Err(); err != nil {
		return nil, err
	}
	account, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		account.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email != account.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, apperr.ErrEmailTaken
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("check account existence: %w", err)
			}
			account.Email = email
		}
	}
	if in.Role != nil {
		role, err := auth.ParseRole(*in.Role)
		if err != nil || !role.IsEmployee() {
			return nil, apperr.Validation("role must be one of: admin, manager, staff, support")
		}
		if account.Role == auth.RoleAdmin && role != auth.RoleAdmin {
			if err := s.ensureOtherAdmin(ctx); errors.Is(err, apperr.ErrLastAdmin) {
				return nil, apperr.InvalidOperation("cannot demote the last admin")
			} else if err != nil {
				return nil, err
			}
		}
		account.Role = role
	}
	if in.Department != nil {
		account.Department = strings.TrimSpace(*in.Department)
	}
	if in.Permissions != nil {
		perms, err := parsePermissions(*in.Permissions)
		if err != nil {
			return nil, err
		}
		account.Permissions = perms
	}
	if in.Phone != nil {
		account.Phone = *in.Phone
	}
	if in.Status != nil {
		status := auth.Status(*in.Status)
		if !status.Valid() {
			return nil, apperr.Validation("status must be one of: active, inactive, suspended")
		}
		account.Status = status
	}
	account.UpdatedBy = actorID(actor)

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, conflictOr(err, apperr.ErrEmailTaken.Message)
	}
	return account, nil
}

// Delete removes an employee after the elevated permission, master code, self and last-admin checks.
func (s *employeeService) Delete(ctx context.Context, actor *auth.Principal, id uuid.UUID, masterCode string) error {
	if err := s.checkElevated(actor, auth.PermDeleteUsers, masterCode); err != nil {
		return err
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return notFoundOr(err, "employee")
	}
	if actor.ID == target.ID.String() {
		return apperr.ErrSelfDelete
	}
	if target.Role == auth.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "employee")
	}
	s.logger.Info("employee deleted",
		zap.String("employee_id", id.String()),
		zap.String("actor_id", actor.ID),
	)
	return nil
}

// ResetPassword replaces the target's password with a random temporary one, forces a change
// on next login and delivers the credential through the notifier.
func (s *employeeService) ResetPassword(ctx context.Context, actor *auth.Principal, id uuid.UUID, masterCode string) (*ResetResult, error) {
	if err := s.checkElevated(actor, auth.PermChangeUserPasswords, masterCode); err != nil {
		return nil, err
	}

	target, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}

	temp, err := generateTempPassword(tempPasswordLength)
	if err != nil {
		return nil, fmt.Errorf("generate temporary password: %w", err)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(temp), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
		"password_hash":        string(hashed),
		"must_change_password": true,
		"updated_by":           actorID(actor),
	}); err != nil {
		return nil, notFoundOr(err, "user")
	}

	sendErr := s.notifier.SendTemporaryPassword(ctx, notify.TemporaryPassword{
		Name:     target.Name,
		Email:    target.Email,
		Password: temp,
	})
	if sendErr != nil {
		// Roll back to the previous credential.
		if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{
			"password_hash":        target.PasswordHash,
			"must_change_password": target.MustChangePassword,
		}); err != nil {
			s.logger.Error("restore password after failed delivery", zap.String("account_id", id.String()), zap.Error(err))
		}
		return nil, apperr.Wrap(apperr.KindUnavailable, "temporary password could not be delivered", sendErr)
	}

	s.logger.Info("password reset",
		zap.String("account_id", id.String()),
		zap.String("actor_id", actor.ID),
	)
	return &ResetResult{
		AccountID:          id,
		Email:              target.Email,
		DeliveredTo:        target.Email,
		MustChangePassword: true,
	}, nil
}

func (s *employeeService) checkElevated(actor *auth.Principal, perm auth.Permission, masterCode string) error {
	if err := auth.Authorize(actor, auth.HasPermission(perm)).Err(); err != nil {
		return err
	}
	if !MasterCodeMatches(s.masterCode, masterCode) {
		return apperr.ErrInvalidMasterCode
	}
	return nil
}

func (s *employeeService) ensureOtherAdmin(ctx context.Context) error {
	admins, err := s.repo.CountByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return apperr.ErrLastAdmin
	}
	return nil
}

// MasterCodeMatches compares in constant time. An unset server code never matches.
func MasterCodeMatches(expected, supplied string) bool {
	if expected == "" || supplied == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}

func parsePermissions(raw []string) (auth.Permissions, error) {
	perms := make(auth.Permissions, 0, len(raw))
	for _, r := range raw {
		p, err := auth.ParsePermission(r)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		perms = append(perms, p)
	}
	return perms.Normalize(), nil
}

func generateTempPassword(n int) (string, error) {
	limit := big.NewInt(int64(len(tempPasswordAlphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = tempPasswordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
