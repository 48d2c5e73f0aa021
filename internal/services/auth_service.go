package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nourishtogether/donation-api/internal/auth"
	"github.com/nourishtogether/donation-api/internal/constants"
	"github.com/nourishtogether/donation-api/internal/models"
	"github.com/nourishtogether/donation-api/internal/policy"
	"github.com/nourishtogether/donation-api/internal/repository"
	"github.com/nourishtogether/donation-api/internal/storage"
	"github.com/nourishtogether/donation-api/internal/utils"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken              = errors.New("email already registered")
	ErrInvalidCredentials      = errors.New("invalid email or password")
	ErrPasswordTooShort        = errors.New("password too short")
	ErrInvalidRole             = errors.New("role must be one of donor, ngo, volunteer")
	ErrUserNotFound            = errors.New("user not found")
	ErrCannotDeleteSelf        = errors.New("admins cannot delete their own account")
	ErrFailedToHashPassword    = errors.New("failed to hash password")
	ErrImageStoreNotConfigured = errors.New("image storage is not configured")
)

// AuthService handles identity and profile business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.Tokens
	images   storage.ImageStore
}

// NewAuthService creates a new AuthService. images may be nil, in which
// case profile image uploads are refused.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.Tokens, images storage.ImageStore) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		images:   images,
	}
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates a self-service identity and returns it with a fresh
// token. An empty role defaults to donor; admin cannot be chosen.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	role := models.RoleDonor
	if strings.TrimSpace(input.Role) != "" {
		parsed, ok := models.ParseRole(input.Role)
		if !ok || !parsed.SelfRegistrable() {
			return nil, "", ErrInvalidRole
		}
		role = parsed
	}

	user, err := s.createUser(ctx, input.Name, input.Email, input.Password, role)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user.registered")
	return user, token, nil
}

// CreateAdmin creates an admin identity. It is reachable only from the CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, models.RoleAdmin)
}

func (s *AuthService) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "name is required")
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, invalid("email", "email is required")
	}
	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// A concurrent registration can win between the lookup and the insert.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the user with a fresh token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate resolves a bearer token to the current stored identity.
// A token for a deleted user is rejected like an invalid one.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ProfileInput carries the self-service fields. Empty values leave the
// stored value unchanged.
type ProfileInput struct {
	Name               string
	PhoneNumber        string
	Address            string
	Bio                string
	ProfileImage       string
	OrganizationName   string
	RegistrationNumber string
	Skills             []string
	Availability       string
}

// UpdateProfile applies the non-empty fields of input to the target user.
// Only the user itself may do so.
func (s *AuthService) UpdateProfile(ctx context.Context, actor policy.Actor, targetID string, input ProfileInput) (*models.User, error) {
	if err := policy.CanPerform(actor, policy.ActionUpdateOwnProfile, &policy.Target{OwnerID: targetID}).Err(policy.ActionUpdateOwnProfile); err != nil {
		return nil, err
	}

	user, err := s.GetUser(ctx, targetID)
	if err != nil {
		return nil, err
	}

	applyProfile(user, input)

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

func applyProfile(user *models.User, in ProfileInput) {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&user.Name, in.Name)
	set(&user.PhoneNumber, in.PhoneNumber)
	set(&user.Address, in.Address)
	set(&user.Bio, in.Bio)
	set(&user.ProfileImage, in.ProfileImage)
	set(&user.OrganizationName, in.OrganizationName)
	set(&user.RegistrationNumber, in.RegistrationNumber)
	set(&user.Availability, in.Availability)

	skills := make([]string, 0, len(in.Skills))
	for _, sk := range in.Skills {
		if sk = strings.TrimSpace(sk); sk != "" {
			skills = append(skills, sk)
		}
	}
	if len(skills) > 0 {
		user.Skills = skills
	}
}

// UploadProfileImage stores a new profile image for the actor and removes
// the previous one. A failed cleanup is logged, not returned.
func (s *AuthService) UploadProfileImage(ctx context.Context, actor policy.Actor, file io.Reader) (*models.User, error) {
	if err := policy.CanPerform(actor, policy.ActionUpdateOwnProfile, &policy.Target{OwnerID: actor.ID}).Err(policy.ActionUpdateOwnProfile); err != nil {
		return nil, err
	}
	if s.images == nil {
		return nil, ErrImageStoreNotConfigured
	}

	user, err := s.GetUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("user_%s_%d", user.ID, time.Now().Unix())
	url, err := s.images.Upload(ctx, file, name)
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile image: %w", err)
	}

	previous := user.ProfileImage
	user.ProfileImage = url
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if previous != "" && previous != url {
		if err := s.images.Delete(ctx, previous); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("image", previous).Msg("profile.image.cleanup_failed")
		}
	}
	return user, nil
}

// ListUsers returns one page of users for an admin.
func (s *AuthService) ListUsers(ctx context.Context, actor policy.Actor, page utils.PaginationParams) ([]models.User, int64, error) {
	if err := policy.CanPerform(actor, policy.ActionListUsers, nil).Err(policy.ActionListUsers); err != nil {
		return nil, 0, err
	}
	users, total, err := s.userRepo.List(ctx, page)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// DeleteUser removes an identity. Its donations stay and render the
// reference as absent.
func (s *AuthService) DeleteUser(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.CanPerform(actor, policy.ActionDeleteUser, nil).Err(policy.ActionDeleteUser); err != nil {
		return err
	}
	if id == actor.ID {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("deleted_user_id", id).Msg("user.deleted")
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
