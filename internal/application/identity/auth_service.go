package identity

import (
	"context"
	"time"

	"github.com/fabrictrade/backend/internal/domain/identity"
	"github.com/fabrictrade/backend/internal/domain/partner"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// BootstrapAdmin is the first admin account, created when no admin exists
type BootstrapAdmin struct {
	Username string
	Email    string
	Password string
}

// AuthService handles authentication and staff accounts
type AuthService struct {
	userRepo     identity.UserRepository
	customerRepo partner.CustomerRepository
	jwtService   *auth.JWTService
	revocations  auth.RevocationList
	logger       *zap.Logger
	now          func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	customerRepo partner.CustomerRepository,
	jwtService *auth.JWTService,
	revocations auth.RevocationList,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		customerRepo: customerRepo,
		jwtService:   jwtService,
		revocations:  revocations,
		logger:       logger,
		now:          time.Now,
	}
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	now := s.now()

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.logger.Warn("Login for unknown user", zap.String("username", input.Username))
		return nil, errInvalidCredentials
	}

	if !user.CanLogin(now) {
		if user.IsLocked(now) {
			s.logger.Warn("Login attempt for locked account", zap.String("username", user.Username))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
		}
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", user.Username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(now)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts", zap.String("username", user.Username))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("username", user.Username),
			zap.Int("failed_attempts", user.FailedAttempts))
		return nil, errInvalidCredentials
	}

	customerID, err := s.customerIDFor(ctx, user)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateAccessToken(auth.GenerateTokenInput{
		UserID:     user.ID,
		Username:   user.Username,
		Role:       string(user.Role),
		CustomerID: customerID,
	})
	if err != nil {
		s.logger.Error("Failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	user.RecordLoginSuccess(now)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the token is already valid; a stale last-login time is acceptable
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        toUserInfo(user, customerID),
	}, nil
}

// customerIDFor resolves the customer a customer-role user acts for
func (s *AuthService) customerIDFor(ctx context.Context, user *identity.User) (*uuid.UUID, error) {
	if user.Role != identity.RoleCustomer {
		return nil, nil
	}
	c, err := s.customerRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		s.logger.Error("Customer login without a customer record", zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account is not linked to a customer")
	}
	return &c.ID, nil
}

// Logout revokes the token until it would have expired anyway
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	ttl := input.ExpiresAt.Sub(s.now())
	if err := s.revocations.Revoke(ctx, input.TokenJTI, ttl); err != nil {
		s.logger.Error("Failed to revoke token", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to log out")
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser retrieves the caller's account
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "User not found")
	}
	customerID, err := s.customerIDFor(ctx, user)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(user, customerID)
	return &info, nil
}

// ChangePassword changes the caller's password after checking the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.NewDomainError("NOT_FOUND", "User not found")
	}
	if !user.VerifyPassword(input.CurrentPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	if err := user.SetPassword(input.NewPassword); err != nil {
		return err
	}
	return s.userRepo.Save(ctx, user)
}

// CreateStaffUser creates an admin or accountant login
func (s *AuthService) CreateStaffUser(ctx context.Context, input CreateStaffUserInput) (*UserInfo, error) {
	role := identity.Role(input.Role)
	if !role.IsStaff() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Staff users must be admin or accountant")
	}
	user, err := identity.NewUser(input.Username, input.Email, input.Password, role)
	if err != nil {
		return nil, err
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("Staff user created", zap.String("username", user.Username), zap.String("role", input.Role))
	info := toUserInfo(user, nil)
	return &info, nil
}

// EnsureAdmin creates the bootstrap admin when the system has no admin yet.
// Returns true if a user was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	count, err := s.userRepo.CountByRole(ctx, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if admin.Username == "" || admin.Password == "" {
		s.logger.Warn("No admin user exists and no bootstrap credentials are configured")
		return false, nil
	}
	user, err := identity.NewUser(admin.Username, admin.Email, admin.Password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap admin created", zap.String("username", user.Username))
	return true, nil
}
