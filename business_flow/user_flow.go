package businessflow

import (
	"context"
	"strings"

	"github.com/amirphl/masuk10/app/dto"
	"github.com/amirphl/masuk10/models"
	"github.com/amirphl/masuk10/repository"
	"github.com/amirphl/masuk10/utils"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID uint
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == utils.RoleAdmin }

// UserFlow manages back-office accounts. There is always at least one active ADMIN.
type UserFlow interface {
	List(ctx context.Context) (*dto.ListUsersResponse, error)
	Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserDTO, error)
	Get(ctx context.Context, id uint) (*dto.UserDTO, error)
	Update(ctx context.Context, id uint, req *dto.UpdateUserRequest) (*dto.UserDTO, error)
	Delete(ctx context.Context, id uint, actor Actor) error
	ChangePassword(ctx context.Context, id uint, req *dto.ChangePasswordRequest, actor Actor) error
}

type UserFlowImpl struct {
	userRepo          repository.UserRepository
	bcryptCost        int
	minPasswordLength int
	validate          *validator.Validate
	logger            *zap.Logger
}

func NewUserFlow(userRepo repository.UserRepository, bcryptCost, minPasswordLength int, logger *zap.Logger) UserFlow {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if minPasswordLength <= 0 {
		minPasswordLength = utils.MinPasswordLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserFlowImpl{
		userRepo:          userRepo,
		bcryptCost:        bcryptCost,
		minPasswordLength: minPasswordLength,
		validate:          validator.New(),
		logger:            logger,
	}
}

func (f *UserFlowImpl) List(ctx context.Context) (*dto.ListUsersResponse, error) {
	users, err := f.userRepo.ByFilter(ctx, models.UserFilter{}, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LIST_USERS_FAILED", "Failed to list users", err)
	}
	out := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserDTO(*u))
	}
	return &dto.ListUsersResponse{Users: out, Total: int64(len(out))}, nil
}

func (f *UserFlowImpl) Create(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserDTO, error) {
	if req == nil {
		return nil, NewBusinessError("VALIDATION_ERROR", "Request body is required", nil)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := f.validate.Var(email, "required,email"); err != nil {
		return nil, NewBusinessError("INVALID_EMAIL", "Invalid email address", ErrInvalidEmail)
	}
	if err := f.checkPassword(req.Password); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = utils.RoleEditor
	}
	if !models.ValidRole(role) {
		return nil, NewBusinessError("INVALID_ROLE", "Role must be ADMIN or EDITOR", ErrInvalidRole)
	}

	existing, err := f.userRepo.ByEmail(ctx, email)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if existing != nil {
		return nil, NewBusinessError("EMAIL_ALREADY_EXISTS", "A user with this email already exists", ErrEmailAlreadyExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), f.bcryptCost)
	if err != nil {
		return nil, NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}

	user := &models.User{
		Email:        email,
		Name:         trimmedPtr(req.Name),
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     utils.ToPtr(true),
	}
	if err := f.userRepo.Save(ctx, user); err != nil {
		return nil, NewBusinessError("CREATE_USER_FAILED", "Failed to create user", err)
	}

	f.logger.Info("user created", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) Get(ctx context.Context, id uint) (*dto.UserDTO, error) {
	user, err := f.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}
	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) Update(ctx context.Context, id uint, req *dto.UpdateUserRequest) (*dto.UserDTO, error) {
	if req == nil || (req.Name == nil && req.Role == nil) {
		return nil, NewBusinessError("VALIDATION_ERROR", "Nothing to update", nil)
	}
	user, err := f.mustGet(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, NewBusinessError("INVALID_ROLE", "Role must be ADMIN or EDITOR", ErrInvalidRole)
		}
		if user.IsActiveAdmin() && *req.Role != utils.RoleAdmin {
			if err := f.ensureNotLastAdmin(ctx); err != nil {
				return nil, err
			}
		}
		user.Role = *req.Role
	}
	if req.Name != nil {
		user.Name = trimmedPtr(req.Name)
	}

	if err := f.userRepo.Update(ctx, user); err != nil {
		return nil, NewBusinessError("UPDATE_USER_FAILED", "Failed to update user", err)
	}
	out := ToUserDTO(*user)
	return &out, nil
}

func (f *UserFlowImpl) Delete(ctx context.Context, id uint, actor Actor) error {
	if id == actor.UserID {
		return NewBusinessError("CANNOT_DELETE_SELF", "You cannot delete your own account", ErrCannotDeleteSelf)
	}
	user, err := f.mustGet(ctx, id)
	if err != nil {
		return err
	}
	if user.IsActiveAdmin() {
		if err := f.ensureNotLastAdmin(ctx); err != nil {
			return err
		}
	}
	if err := f.userRepo.Delete(ctx, user.ID); err != nil {
		return NewBusinessError("DELETE_USER_FAILED", "Failed to delete user", err)
	}
	f.logger.Info("user deleted", zap.Uint("user_id", user.ID), zap.Uint("deleted_by", actor.UserID))
	return nil
}

// ChangePassword lets an ADMIN reset anyone and everyone else only themselves.
func (f *UserFlowImpl) ChangePassword(ctx context.Context, id uint, req *dto.ChangePasswordRequest, actor Actor) error {
	if !actor.IsAdmin() && actor.UserID != id {
		return NewBusinessError("FORBIDDEN", "You can only change your own password", ErrForbidden)
	}
	if req == nil {
		return NewBusinessError("VALIDATION_ERROR", "Request body is required", nil)
	}
	if err := f.checkPassword(req.NewPassword); err != nil {
		return err
	}
	user, err := f.mustGet(ctx, id)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), f.bcryptCost)
	if err != nil {
		return NewBusinessError("PASSWORD_HASH_FAILED", "Failed to hash password", err)
	}
	if err := f.userRepo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return NewBusinessError("UPDATE_PASSWORD_FAILED", "Failed to update password", err)
	}
	return nil
}

func (f *UserFlowImpl) checkPassword(password string) error {
	if len(password) < f.minPasswordLength {
		return NewBusinessErrorf("PASSWORD_TOO_SHORT", "Password must be at least %d characters", ErrPasswordTooShort, f.minPasswordLength)
	}
	return nil
}

func (f *UserFlowImpl) ensureNotLastAdmin(ctx context.Context) error {
	role := utils.RoleAdmin
	active := true
	admins, err := f.userRepo.Count(ctx, models.UserFilter{Role: &role, IsActive: &active})
	if err != nil {
		return NewBusinessError("USER_LOOKUP_FAILED", "Failed to count admins", err)
	}
	if admins <= 1 {
		return NewBusinessError("LAST_ADMIN", "Cannot remove the last admin", ErrLastAdmin)
	}
	return nil
}

func (f *UserFlowImpl) mustGet(ctx context.Context, id uint) (*models.User, error) {
	user, err := f.userRepo.ByID(ctx, id)
	if err != nil {
		return nil, NewBusinessError("USER_LOOKUP_FAILED", "Failed to lookup user", err)
	}
	if user == nil {
		return nil, NewBusinessError("USER_NOT_FOUND", "User not found", ErrUserNotFound)
	}
	return user, nil
}
