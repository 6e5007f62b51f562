package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruizhu/shopapi/app/models"
	"github.com/ruizhu/shopapi/app/repositories"
	"github.com/ruizhu/shopapi/pkg/auth"
	"github.com/ruizhu/shopapi/pkg/logger"
)

const msgUserNotFound = "User not found"

type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	All(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u *models.User) error
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// TokenIssuer is satisfied by *auth.Issuer.
type TokenIssuer interface {
	Generate(userID uint, username string) (string, error)
}

type RegisterInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email"    validate:"required,email,max=100"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Token is the login response body.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UserService struct {
	users  UserStore
	tokens TokenIssuer
	ttl    int64
}

func NewUserService(users UserStore, issuer *auth.Issuer) *UserService {
	return &UserService{users: users, tokens: issuer, ttl: int64(issuer.TTL().Seconds())}
}

// Register creates an active user. A username or email already in use is
// a conflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict("User already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		HashedPassword: hash,
		IsActive:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, classify(err, "", "User already exists")
	}

	logger.WithCtx(ctx).Info("user registered", "user_id", u.ID)
	return u, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, classify(err, msgUserNotFound, "")
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// Login checks the credentials and returns a bearer token.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*Token, error) {
	u, err := s.users.FindByUsername(ctx, in.Username)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, unauthorized("Incorrect username or password")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.HashedPassword, in.Password) {
		return nil, unauthorized("Incorrect username or password")
	}
	if !u.IsActive {
		return nil, unauthorized("Inactive user")
	}

	token, err := s.tokens.Generate(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{AccessToken: token, TokenType: "bearer", ExpiresIn: s.ttl}, nil
}
