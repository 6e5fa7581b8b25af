package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/validator"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AccessTokenIssuer signs bearer tokens for authenticated users.
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// BcryptHasher hashes with bcrypt at the given cost. Zero means bcrypt.DefaultCost.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type AccessToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type LoginResult struct {
	User  model.User  `json:"user"`
	Token AccessToken `json:"token"`
}

type AuthUsecase struct {
	users  repo.UserRepository
	hasher PasswordHasher
	tokens AccessTokenIssuer
	clock  Clock
	log    zerolog.Logger
}

func NewAuthUsecase(
	users repo.UserRepository,
	hasher PasswordHasher,
	tokens AccessTokenIssuer,
	clock Clock,
	logger zerolog.Logger,
) *AuthUsecase {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &AuthUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		clock:  clock,
		log:    logger.With().Str("usecase", "auth").Logger(),
	}
}

func (u *AuthUsecase) Register(ctx context.Context, email string, password string) (model.User, error) {
	email, err := validator.Email(email)
	if err != nil {
		return model.User{}, err
	}
	if err := validator.Password(password); err != nil {
		return model.User{}, err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.users.Create(ctx, model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return model.User{}, model.ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	u.log.Info().Int64("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login never tells the caller whether the email or the password was wrong.
func (u *AuthUsecase) Login(ctx context.Context, email string, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, model.InvalidInput("email and password are required")
	}

	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return LoginResult{}, model.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}

	if err := u.hasher.Compare(user.PasswordHash, password); err != nil {
		return LoginResult{}, model.ErrInvalidCredentials
	}

	token, expiresAt, err := u.tokens.Issue(user.ID, user.Role, u.clock.Now())
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	u.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	return LoginResult{
		User: user,
		Token: AccessToken{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresAt:   expiresAt,
		},
	}, nil
}
