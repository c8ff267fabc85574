package session

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/remote"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockAuth struct {
	loginCalls    int
	lastCreds     remote.Credentials
	loginResult   remote.LoginResult
	loginErr      error
	registerCalls int
	lastRegister  remote.RegisterRequest
	registerRes   remote.RegisterResult
	registerErr   error
}

func (m *mockAuth) CheckLogin(_ context.Context, creds remote.Credentials) (remote.LoginResult, error) {
	m.loginCalls++
	m.lastCreds = creds
	return m.loginResult, m.loginErr
}

func (m *mockAuth) Register(_ context.Context, req remote.RegisterRequest) (remote.RegisterResult, error) {
	m.registerCalls++
	m.lastRegister = req
	return m.registerRes, m.registerErr
}

type failingSet struct {
	*storage.MemoryStore
}

func (f failingSet) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func testBypass(t *testing.T) *AdminBypass {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)
	b, err := NewAdminBypass("admin@bhagavathi.com", string(hash))
	require.NoError(t, err)
	return b
}

func completeUser() domain.UserSession {
	return domain.UserSession{
		Name:    "Asha",
		Email:   "asha@example.com",
		Phone:   "9876543210",
		Address: "12 Temple Road",
		Role:    domain.RoleCustomer,
	}
}

func TestAuthenticate_AdminBypassSkipsRemote(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	auth := &mockAuth{}
	s := NewStore(mem, auth, testBypass(t), logger.Discard())

	u, err := s.Authenticate(ctx, LoginForm{Email: " admin@bhagavathi.com ", Password: "admin123"})
	require.NoError(t, err)

	assert.Equal(t, 0, auth.loginCalls)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	assert.Equal(t, "admin@bhagavathi.com", u.Email)

	var stored domain.UserSession
	require.NoError(t, storage.LoadJSON(ctx, mem, storage.KeyUser, &stored))
	assert.Equal(t, u, stored)
}

func TestAuthenticate_BypassDisabledGoesRemote(t *testing.T) {
	auth := &mockAuth{loginResult: remote.LoginResult{Success: false}}
	s := NewStore(storage.NewMemoryStore(), auth, nil, nil)

	_, err := s.Authenticate(context.Background(), LoginForm{Email: "admin@bhagavathi.com", Password: "admin123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, auth.loginCalls)
}

func TestAuthenticate_WrongAdminPasswordGoesRemote(t *testing.T) {
	auth := &mockAuth{loginResult: remote.LoginResult{Success: false}}
	s := NewStore(storage.NewMemoryStore(), auth, testBypass(t), nil)

	_, err := s.Authenticate(context.Background(), LoginForm{Email: "admin@bhagavathi.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, auth.loginCalls)
}

func TestAuthenticate_RemoteSuccess(t *testing.T) {
	ctx := context.Background()
	want := completeUser()
	want.Role = ""
	auth := &mockAuth{loginResult: remote.LoginResult{Success: true, User: &want}}
	s := NewStore(storage.NewMemoryStore(), auth, testBypass(t), nil)

	u, err := s.Authenticate(ctx, LoginForm{Email: "asha@example.com ", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, "asha@example.com", auth.lastCreds.Email)
	assert.Equal(t, domain.RoleCustomer, u.Role)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, u, cur)
	_, ok = s.CheckoutUser()
	assert.True(t, ok)
}

func TestAuthenticate_UnknownRemoteRoleBecomesCustomer(t *testing.T) {
	ctx := context.Background()
	remoteUser := completeUser()
	remoteUser.Role = "root"
	auth := &mockAuth{loginResult: remote.LoginResult{Success: true, User: &remoteUser}}
	mem := storage.NewMemoryStore()
	s := NewStore(mem, auth, testBypass(t), nil)

	u, err := s.Authenticate(ctx, LoginForm{Email: "asha@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, u.Role)

	reloaded := NewStore(mem, auth, nil, nil)
	reloaded.Load(ctx)
	_, ok := reloaded.Current()
	assert.True(t, ok)
}

func TestAuthenticate_InvalidFormNoNetwork(t *testing.T) {
	auth := &mockAuth{}
	s := NewStore(storage.NewMemoryStore(), auth, nil, nil)

	_, err := s.Authenticate(context.Background(), LoginForm{Email: "not-an-email", Password: "x"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Invalid email format", verr.Message)
	assert.Equal(t, 0, auth.loginCalls)
}

func TestAuthenticate_RemoteError(t *testing.T) {
	auth := &mockAuth{loginErr: remote.ErrUnavailable}
	s := NewStore(storage.NewMemoryStore(), auth, nil, nil)

	_, err := s.Authenticate(context.Background(), LoginForm{Email: "a@b.co", Password: "x"})
	assert.ErrorIs(t, err, remote.ErrUnavailable)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestAuthenticate_PersistFailure(t *testing.T) {
	u := completeUser()
	auth := &mockAuth{loginResult: remote.LoginResult{Success: true, User: &u}}
	s := NewStore(failingSet{storage.NewMemoryStore()}, auth, nil, nil)

	_, err := s.Authenticate(context.Background(), LoginForm{Email: u.Email, Password: "x"})
	assert.ErrorIs(t, err, ErrSessionNotStored)
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		stored  []byte
		wantOK  bool
		wantKey bool
	}{
		{name: "absent", stored: nil, wantOK: false, wantKey: false},
		{name: "complete customer", stored: []byte(`{"LOGIN_NAME":"Asha","LOGIN_EMAIL":"a@b.co","LOGIN_PHONE":"9876543210","LOGIN_ADDRESS":"x"}`), wantOK: true, wantKey: true},
		{name: "missing address", stored: []byte(`{"LOGIN_NAME":"Asha","LOGIN_EMAIL":"a@b.co","LOGIN_PHONE":"9876543210"}`), wantOK: false, wantKey: false},
		{name: "admin email only", stored: []byte(`{"LOGIN_EMAIL":"admin@bhagavathi.com","role":"admin"}`), wantOK: true, wantKey: true},
		{name: "admin without email", stored: []byte(`{"role":"admin"}`), wantOK: false, wantKey: false},
		{name: "corrupt", stored: []byte(`{not json`), wantOK: false, wantKey: false},
		{name: "unknown role", stored: []byte(`{"LOGIN_NAME":"Asha","LOGIN_EMAIL":"a@b.co","LOGIN_PHONE":"9876543210","LOGIN_ADDRESS":"x","role":"root"}`), wantOK: false, wantKey: false},
		{name: "explicit customer", stored: []byte(`{"LOGIN_NAME":"Asha","LOGIN_EMAIL":"a@b.co","LOGIN_PHONE":"9876543210","LOGIN_ADDRESS":"x","role":"customer"}`), wantOK: true, wantKey: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := storage.NewMemoryStore()
			if tt.stored != nil {
				require.NoError(t, mem.Set(ctx, storage.KeyUser, tt.stored))
			}
			s := NewStore(mem, &mockAuth{}, nil, nil)
			s.Load(ctx)

			_, ok := s.Current()
			assert.Equal(t, tt.wantOK, ok)

			_, err := mem.Get(ctx, storage.KeyUser)
			assert.Equal(t, tt.wantKey, err == nil)
		})
	}
}

func TestCheckoutUser_AdminNotComplete(t *testing.T) {
	s := NewStore(storage.NewMemoryStore(), &mockAuth{}, testBypass(t), nil)
	_, err := s.Authenticate(context.Background(), LoginForm{Email: "admin@bhagavathi.com", Password: "admin123"})
	require.NoError(t, err)

	_, ok := s.CheckoutUser()
	assert.False(t, ok)
}

func TestLogout_ClearsUserAndToken(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	u := completeUser()
	auth := &mockAuth{loginResult: remote.LoginResult{Success: true, User: &u}}
	s := NewStore(mem, auth, nil, nil)

	_, err := s.Authenticate(ctx, LoginForm{Email: u.Email, Password: "x"})
	require.NoError(t, err)
	require.NoError(t, mem.Set(ctx, storage.KeyToken, []byte(`"tok"`)))

	s.Logout(ctx)

	_, ok := s.Current()
	assert.False(t, ok)
	_, err = mem.Get(ctx, storage.KeyUser)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = mem.Get(ctx, storage.KeyToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRegister(t *testing.T) {
	form := RegisterForm{
		Name:            " Asha ",
		Email:           " asha@example.com ",
		Phone:           "9876543210",
		Address:         "12 Temple Road",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	}

	t.Run("success returns trimmed email", func(t *testing.T) {
		auth := &mockAuth{registerRes: remote.RegisterResult{Success: true}}
		s := NewStore(storage.NewMemoryStore(), auth, nil, nil)

		email, err := s.Register(context.Background(), form)
		require.NoError(t, err)
		assert.Equal(t, "asha@example.com", email)
		assert.Equal(t, "Asha", auth.lastRegister.Name)
		assert.Equal(t, "secret1", auth.lastRegister.ConfirmPassword)
	})

	t.Run("service message surfaces", func(t *testing.T) {
		auth := &mockAuth{registerRes: remote.RegisterResult{Success: false, Message: "Email already registered"}}
		s := NewStore(storage.NewMemoryStore(), auth, nil, nil)

		_, err := s.Register(context.Background(), form)
		assert.EqualError(t, err, "Email already registered")
	})

	t.Run("invalid form never reaches service", func(t *testing.T) {
		auth := &mockAuth{}
		s := NewStore(storage.NewMemoryStore(), auth, nil, nil)

		bad := form
		bad.ConfirmPassword = "other"
		_, err := s.Register(context.Background(), bad)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "confirm_password", verr.Field)
		assert.Equal(t, 0, auth.registerCalls)
	})
}
