package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedEmail     = errors.New("malformed email address")
)

// Credentials is what the sign-in form submits
type Credentials struct {
	Email       string
	Password    string
	DisplayName string
	PhotoURL    string
}

// StateListener is told when a user's session starts (signedIn) or ends
type StateListener func(user models.UserInfo, signedIn bool)

// IdentityProvider authenticates users. The application never sees how.
type IdentityProvider interface {
	SignIn(ctx context.Context, creds Credentials) (models.UserInfo, error)
	SignOut(ctx context.Context, user models.UserInfo) error
	OnAuthStateChange(fn StateListener)
}

// LocalProvider keeps bcrypt hashes in the users collection. The first sign-in for
// an email address registers it; later sign-ins must match the stored hash.
type LocalProvider struct {
	users store.UserStore
	cost  int

	mu        sync.RWMutex
	listeners []StateListener
}

func NewLocalProvider(users store.UserStore) *LocalProvider {
	return &LocalProvider{users: users, cost: bcrypt.DefaultCost}
}

// WithCost sets the bcrypt cost used for new registrations
func (p *LocalProvider) WithCost(cost int) *LocalProvider {
	p.cost = cost
	return p
}

var _ IdentityProvider = (*LocalProvider)(nil)

var emailValidator = validator.New()

func (p *LocalProvider) SignIn(ctx context.Context, creds Credentials) (models.UserInfo, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if err := emailValidator.Var(email, "required,email"); err != nil {
		return models.UserInfo{}, fmt.Errorf("%w: %q", ErrMalformedEmail, creds.Email)
	}
	if creds.Password == "" {
		return models.UserInfo{}, ErrInvalidCredentials
	}

	user, err := p.users.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		var createErr error
		user, createErr = p.register(ctx, email, creds)
		if createErr != nil {
			// a concurrent first sign-in may have registered the address meanwhile
			user, err = p.users.GetUserByEmail(ctx, email)
			if err != nil {
				return models.UserInfo{}, createErr
			}
			log.Printf("auth: %s was registered concurrently, checking password against it", email)
			if err := checkPassword(user, creds.Password); err != nil {
				return models.UserInfo{}, err
			}
		}
	case err != nil:
		return models.UserInfo{}, err
	default:
		if err := checkPassword(user, creds.Password); err != nil {
			return models.UserInfo{}, err
		}
	}

	info := user.Info()
	p.notify(info, true)
	return info, nil
}

func checkPassword(user models.User, password string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (p *LocalProvider) register(ctx context.Context, email string, creds Credentials) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), p.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	name := strings.TrimSpace(creds.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	user := models.User{
		UID:          uuid.NewString(),
		DisplayName:  name,
		Email:        email,
		PhotoURL:     creds.PhotoURL,
		PasswordHash: string(hash),
	}
	if err := p.users.CreateUser(ctx, user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (p *LocalProvider) SignOut(_ context.Context, user models.UserInfo) error {
	p.notify(user, false)
	return nil
}

func (p *LocalProvider) OnAuthStateChange(fn StateListener) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

func (p *LocalProvider) notify(user models.UserInfo, signedIn bool) {
	p.mu.RLock()
	listeners := append([]StateListener(nil), p.listeners...)
	p.mu.RUnlock()
	for _, fn := range listeners {
		fn(user, signedIn)
	}
}
