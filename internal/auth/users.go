package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"speakersite/internal/apperr"
	"speakersite/internal/models"
	"speakersite/internal/storage"
)

// Credentials is the register/login payload.
type Credentials struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

var credentialsValidator = validator.New()

// Register creates an account. Usernames listed as admins in the config get the admin role.
func (s *Service) Register(ctx context.Context, in Credentials) (*models.User, error) {
	const op = "auth.Register"
	in.Username = strings.TrimSpace(in.Username)
	if err := credentialsValidator.Struct(in); err != nil {
		return nil, apperr.E(apperr.CodeInvalidArgument, op, "username and a password of 8 to 72 characters are required", err)
	}
	if _, err := s.store.GetUserByUsername(ctx, in.Username); err == nil {
		return nil, apperr.Invalid(op, "username already taken")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	role := models.UserRoleUser
	if _, ok := s.admins[in.Username]; ok {
		role = models.UserRoleAdmin
	}
	user, err := s.store.CreateUser(ctx, in.Username, string(hash), role)
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("user registered")
	return user, nil
}

// Login validates credentials and returns the user profile.
func (s *Service) Login(ctx context.Context, in Credentials) (*models.User, error) {
	const op = "auth.Login"
	in.Username = strings.TrimSpace(in.Username)
	if in.Username == "" || in.Password == "" {
		return nil, apperr.Invalid(op, "username and password are required")
	}
	user, err := s.store.GetUserByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.E(apperr.CodeUnauthorized, op, "invalid credentials", nil)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperr.E(apperr.CodeUnauthorized, op, "invalid credentials", nil)
	}
	if err := s.store.TouchUserSignIn(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("record sign in")
	}
	return user, nil
}

// UserForToken resolves a session token to its user.
func (s *Service) UserForToken(ctx context.Context, token string) (*models.User, error) {
	const op = "auth.UserForToken"
	userID, err := s.ValidateToken(ctx, token)
	if err != nil {
		if errors.Is(err, errTokenRequired) || errors.Is(err, errTokenInvalid) || errors.Is(err, errTokenExpired) {
			return nil, unauthorized(op, err)
		}
		return nil, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, unauthorized(op, errTokenInvalid)
		}
		return nil, err
	}
	return user, nil
}
