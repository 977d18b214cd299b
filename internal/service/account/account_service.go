package account

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Domenick1991/travelbooking/internal/auth"
	"github.com/Domenick1991/travelbooking/internal/domain"
	"github.com/Domenick1991/travelbooking/internal/logging"
	"github.com/Domenick1991/travelbooking/internal/repository"
)

const (
	maxUsernameLen  = 150
	maxNameLen      = 150
	maxEmailLen     = 254
	minPasswordLen  = 8
	maxPasswordLen  = 72 // bytes, the bcrypt input limit
	usernameHelpMsg = "enter a valid username: letters, digits and @/./+/-/_ only"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type AccountUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	GetProfile(ctx context.Context, principal domain.Principal) (*domain.User, error)
	UpdateProfile(ctx context.Context, principal domain.Principal, input ProfileInput) (*domain.User, error)
}

type RegisterInput struct {
	Username        string
	Password        string
	PasswordConfirm string
}

type ProfileInput struct {
	FirstName string
	LastName  string
	Email     string
}

type AccountService struct {
	users repository.UserRepository
	hash  func(string) (string, error)
}

func NewAccountService(users repository.UserRepository) *AccountService {
	return &AccountService{users: users, hash: auth.HashPassword}
}

func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	switch {
	case username == "":
		return nil, domain.ValidationError{Field: "username", Msg: "this field is required"}
	case utf8.RuneCountInString(username) > maxUsernameLen:
		return nil, domain.ValidationError{Field: "username", Msg: "ensure this value has at most 150 characters"}
	case !usernamePattern.MatchString(username):
		return nil, domain.ValidationError{Field: "username", Msg: usernameHelpMsg}
	}
	if err := validatePassword(input.Password, input.PasswordConfirm); err != nil {
		return nil, err
	}

	hash, err := s.hash(input.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func validatePassword(password, confirm string) error {
	switch {
	case password == "":
		return domain.ValidationError{Field: "password1", Msg: "this field is required"}
	case password != confirm:
		return domain.ValidationError{Field: "password2", Msg: "the two password fields didn't match"}
	case utf8.RuneCountInString(password) < minPasswordLen:
		return domain.ValidationError{Field: "password2", Msg: "this password is too short, it must contain at least 8 characters"}
	case len(password) > maxPasswordLen:
		return domain.ValidationError{Field: "password2", Msg: "this password is too long, it must contain at most 72 bytes"}
	case isNumeric(password):
		return domain.ValidationError{Field: "password2", Msg: "this password is entirely numeric"}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// Authenticate does not distinguish an unknown user from a wrong password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) GetProfile(ctx context.Context, p domain.Principal) (*domain.User, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}
	return s.users.GetByID(ctx, p.UserID)
}

// UpdateProfile replaces first name, last name and e-mail. Blank values clear the field.
func (s *AccountService) UpdateProfile(ctx context.Context, p domain.Principal, input ProfileInput) (*domain.User, error) {
	if !p.Authenticated() {
		return nil, domain.ErrUnauthenticated
	}

	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Email = strings.TrimSpace(input.Email)
	switch {
	case utf8.RuneCountInString(input.FirstName) > maxNameLen:
		return nil, domain.ValidationError{Field: "first_name", Msg: "ensure this value has at most 150 characters"}
	case utf8.RuneCountInString(input.LastName) > maxNameLen:
		return nil, domain.ValidationError{Field: "last_name", Msg: "ensure this value has at most 150 characters"}
	case len(input.Email) > maxEmailLen:
		return nil, domain.ValidationError{Field: "email", Msg: "ensure this value has at most 254 characters"}
	case input.Email != "" && !validEmail(input.Email):
		return nil, domain.ValidationError{Field: "email", Msg: "enter a valid email address"}
	}

	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Email = input.Email
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

var _ AccountUseCase = (*AccountService)(nil)
