package accounts

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asmi/skincare-advisor-backend/internal/models"
	"github.com/asmi/skincare-advisor-backend/internal/store"
)

// --- fakes ---

// fakeStore is an in-memory UserStore enforcing email uniqueness on
// insert, the way the real stores do via their indexes.
type fakeStore struct {
	mu     sync.Mutex
	nextID int
	users  map[string]*models.User

	insertErr error
	findErr   error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: make(map[string]*models.User)}
}

func (f *fakeStore) Insert(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return nil, store.ErrDuplicateEmail
		}
	}
	f.nextID++
	u := &models.User{
		ID:           strconv.Itoa(f.nextID),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	f.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateByID(ctx context.Context, id, username, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Username = username
	u.Email = email
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

type sentMail struct {
	to, subject, body string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (f *fakeMailer) Send(to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeMailer) {
	t.Helper()
	users := newFakeStore()
	mailer := &fakeMailer{}
	signer := NewSigner([]byte("test-secret"))
	svc := NewService(users, mailer, signer, time.Hour, 15*time.Minute, "http://localhost:3000")
	return svc, users, mailer
}

// --- tests ---

func TestRegisterThenLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "pw1", user.PasswordHash)

	token, err := svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	userID, err := svc.ValidateSession(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "mallory", "a@x.com", "pw2")
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Equal(t, 1, users.count(), "store must be left unchanged")
}

func TestRegister_StoreFailure(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.insertErr = errors.New("connection reset")

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "pw1")
	assert.ErrorIs(t, err, ErrStore)
}

func TestLogin_WrongPasswordAndUnknownEmailIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	_, errWrongPw := svc.Login(ctx, "a@x.com", "nope")
	_, errNoUser := svc.Login(ctx, "ghost@x.com", "pw1")

	assert.ErrorIs(t, errWrongPw, ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, ErrInvalidCredentials)
	assert.Equal(t, errWrongPw, errNoUser)
}

func TestValidateSession_MissingToken(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.ValidateSession("")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateSession_Expired(t *testing.T) {
	users := newFakeStore()
	signer := NewSigner([]byte("test-secret"))
	// Session TTL in the past: every issued token is already expired.
	svc := NewService(users, &fakeMailer{}, signer, -1*time.Second, 15*time.Minute, "http://localhost:3000")
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	token, err := svc.Login(ctx, "a@x.com", "pw1")
	require.NoError(t, err)

	_, err = svc.ValidateSession(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	got, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "a@x.com", got.Email)
}

func TestProfile_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Profile(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfile_StoreFailure(t *testing.T) {
	svc, users, _ := newTestService(t)
	users.findErr = errors.New("connection reset")

	_, err := svc.Profile(context.Background(), "1")
	assert.ErrorIs(t, err, ErrStore)
}

func TestForgotPassword(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(ctx, "a@x.com"))
	require.Len(t, mailer.sent, 1, "exactly one mail per successful call")

	msg := mailer.sent[0]
	assert.Equal(t, "a@x.com", msg.to)
	assert.Equal(t, "Password Reset Request", msg.subject)

	// The link embeds the raw reset token; it must verify and carry the
	// user's id, the reset purpose, and a 15-minute expiry.
	_, rest, found := strings.Cut(msg.body, "/reset-password/")
	require.True(t, found, "mail body must contain the reset link")
	claims, err := NewSigner([]byte("test-secret")).Verify(strings.TrimSpace(rest))
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, PurposeReset, claims.Purpose)
	remaining := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, remaining, 14*time.Minute)
	assert.LessOrEqual(t, remaining, 15*time.Minute)
}

func TestForgotPassword_UnknownEmail(t *testing.T) {
	svc, _, mailer := newTestService(t)

	err := svc.ForgotPassword(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Empty(t, mailer.sent)
}

func TestForgotPassword_MailFailure(t *testing.T) {
	svc, _, mailer := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	mailer.err = errors.New("smtp unreachable")
	err = svc.ForgotPassword(ctx, "a@x.com")
	assert.ErrorIs(t, err, ErrMailDispatch)
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	require.NoError(t, svc.UpdateProfile(ctx, user.ID, "alice2", "a2@x.com", "pw2"))

	// New credentials work, old ones don't.
	_, err = svc.Login(ctx, "a2@x.com", "pw2")
	assert.NoError(t, err)
	_, err = svc.Login(ctx, "a2@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "a@x.com", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)

	for _, tc := range []struct{ username, email, password string }{
		{"", "a@x.com", "pw1"},
		{"alice", "", "pw1"},
		{"alice", "a@x.com", ""},
	} {
		err := svc.UpdateProfile(ctx, user.ID, tc.username, tc.email, tc.password)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestUpdateProfile_AlwaysRehashes(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	before, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)

	// Same password: a fresh hash is still computed.
	require.NoError(t, svc.UpdateProfile(ctx, user.ID, "alice", "a@x.com", "pw1"))
	after, err := users.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, before.PasswordHash, after.PasswordHash)
}

func TestLogout_NoOp(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.NoError(t, svc.Logout())
}
