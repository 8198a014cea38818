package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"clinic-api/internal/auth"
	"clinic-api/internal/domain"
	"clinic-api/internal/repository"
)

// TokenIssuer signs identity tokens for logged in users.
type TokenIssuer interface {
	Issue(id int64, username, email string) (string, error)
}

// RegisterInput carries the fields of a new account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Username  string
	Email     string
	Password  string
}

// UserService describes user lifecycle operations. Every returned user is a
// public projection without the password hash.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
	UpdatePassword(ctx context.Context, id int64, currentPassword, newPassword string) (*domain.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) (*domain.User, error)
	UpdateEmail(ctx context.Context, id int64, email string) (*domain.User, error)
	UpdateName(ctx context.Context, id int64, firstName, lastName string) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	tokens TokenIssuer
	// dummyHash is compared against when the username is unknown so both
	// login failures cost one bcrypt comparison.
	dummyHash string
}

func NewUserService(users repository.UserRepository, tokens TokenIssuer) (UserService, error) {
	dummy, err := auth.HashPassword("clinic-api-unknown-user")
	if err != nil {
		return nil, err
	}
	return &userService{
		users:     users,
		tokens:    tokens,
		dummyHash: dummy,
	}, nil
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	switch {
	case in.Username == "":
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	case in.Email == "":
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	case in.Password == "":
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	return user.Public(), nil
}

func (s *userService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			auth.VerifyPassword(password, s.dummyHash)
			return "", nil, ErrUserNotFound
		}
		return "", nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", nil, ErrInvalidPassword
	}

	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return "", nil, err
	}
	return token, user.Public(), nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	public := make([]domain.User, len(users))
	for i := range users {
		public[i] = *users[i].Public()
	}
	return public, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *userService) Delete(ctx context.Context, id int64) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) UpdatePassword(ctx context.Context, id int64, currentPassword, newPassword string) (*domain.User, error) {
	if newPassword == "" {
		return nil, fmt.Errorf("%w: new password is required", ErrValidation)
	}
	if err := checkPasswordLength(newPassword); err != nil {
		return nil, err
	}

	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if !auth.VerifyPassword(currentPassword, user.PasswordHash) {
		return nil, ErrInvalidPassword
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	return s.save(ctx, user)
}

func (s *userService) UpdateUsername(ctx context.Context, id int64, username string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Username = username
	return s.save(ctx, user)
}

func (s *userService) UpdateEmail(ctx context.Context, id int64, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Email = email
	return s.save(ctx, user)
}

func (s *userService) UpdateName(ctx context.Context, id int64, firstName, lastName string) (*domain.User, error) {
	user, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	user.FirstName = strings.TrimSpace(firstName)
	user.LastName = strings.TrimSpace(lastName)
	return s.save(ctx, user)
}

func (s *userService) lookup(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) save(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, ErrUserAlreadyExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.Public(), nil
}

func checkPasswordLength(password string) error {
	if len(password) > auth.MaxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrValidation, auth.MaxPasswordBytes)
	}
	return nil
}
