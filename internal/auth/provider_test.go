package auth

import (
	"context"
	"sync"
	"testing"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/store"
	"task-tracker-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newProvider(t *testing.T) (*LocalProvider, *store.GormStore) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	s := store.NewGormStore(db)
	p := NewLocalProvider(s)
	p.cost = bcrypt.MinCost
	return p, s
}

func TestSignIn_FirstSignInCreatesUserOnce(t *testing.T) {
	p, s := newProvider(t)
	ctx := context.Background()

	first, err := p.SignIn(ctx, Credentials{Email: "Alice@Example.com", Password: "pw"})
	require.NoError(t, err)
	require.NotEmpty(t, first.UID)
	require.Equal(t, "alice", first.DisplayName)
	require.Equal(t, "alice@example.com", first.Email)

	second, err := p.SignIn(ctx, Credentials{Email: "alice@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, first.UID, second.UID)

	stored, err := s.GetUser(ctx, first.UID)
	require.NoError(t, err)
	require.NotEqual(t, "pw", stored.PasswordHash)
}

func TestSignIn_WrongPassword(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	_, err := p.SignIn(ctx, Credentials{Email: "bob@example.com", Password: "right"})
	require.NoError(t, err)

	_, err = p.SignIn(ctx, Credentials{Email: "bob@example.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_MalformedEmail(t *testing.T) {
	p, _ := newProvider(t)
	_, err := p.SignIn(context.Background(), Credentials{Email: "not-an-email", Password: "pw"})
	require.ErrorIs(t, err, ErrMalformedEmail)
}

func TestAuthStateListeners(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	var events []bool
	p.OnAuthStateChange(func(_ models.UserInfo, signedIn bool) {
		events = append(events, signedIn)
	})

	user, err := p.SignIn(ctx, Credentials{Email: "carol@example.com", Password: "pw", DisplayName: "Carol"})
	require.NoError(t, err)
	require.Equal(t, "Carol", user.DisplayName)
	require.NoError(t, p.SignOut(ctx, user))

	require.Equal(t, []bool{true, false}, events)
}

// lateUsers misses the first email lookup after another sign-in has already
// registered the address, the way two concurrent first sign-ins interleave.
type lateUsers struct {
	*store.GormStore
	winner models.User
	once   sync.Once
}

func (l *lateUsers) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var missed bool
	l.once.Do(func() { missed = true })
	if missed {
		if err := l.GormStore.CreateUser(ctx, l.winner); err != nil {
			return models.User{}, err
		}
		return models.User{}, store.ErrNotFound
	}
	return l.GormStore.GetUserByEmail(ctx, email)
}

func newLateProvider(t *testing.T, password string) (*LocalProvider, models.User) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	winner := models.User{UID: "u-winner", DisplayName: "dave", Email: "dave@example.com", PasswordHash: string(hash)}

	p := NewLocalProvider(&lateUsers{GormStore: store.NewGormStore(db), winner: winner}).WithCost(bcrypt.MinCost)
	return p, winner
}

func TestSignIn_ConcurrentRegistrationSignsIntoWinner(t *testing.T) {
	p, winner := newLateProvider(t, "pw")

	user, err := p.SignIn(context.Background(), Credentials{Email: "dave@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, winner.UID, user.UID)
}

func TestSignIn_ConcurrentRegistrationChecksPassword(t *testing.T) {
	p, _ := newLateProvider(t, "pw")

	_, err := p.SignIn(context.Background(), Credentials{Email: "dave@example.com", Password: "other"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_EmailValidation(t *testing.T) {
	p, _ := newProvider(t)
	ctx := context.Background()

	for _, email := range []string{"", "   ", "dave", "dave@", "@example.com", "Dave <dave@example.com>"} {
		_, err := p.SignIn(ctx, Credentials{Email: email, Password: "pw"})
		require.ErrorIs(t, err, ErrMalformedEmail, "email %q", email)
	}
}
