package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/IssueKeeper/internal/client/storage"
	"github.com/atinyakov/IssueKeeper/internal/models"
)

var ann = models.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: models.RoleAdmin}

func newStorage(t *testing.T) *storage.LocalStorage {
	t.Helper()
	return storage.New(filepath.Join(t.TempDir(), "session.json"))
}

func signed(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestStore_RoundTrip(t *testing.T) {
	ls := newStorage(t)
	s := NewStore(ls, nil)
	assert.True(t, s.Loading())
	require.NoError(t, s.Init())
	assert.False(t, s.Loading())
	assert.False(t, s.Authenticated())

	require.NoError(t, s.Login("opaque-token", ann))
	assert.Equal(t, "opaque-token", s.Token())

	reloaded := NewStore(storage.New(ls.Path()), nil)
	require.NoError(t, reloaded.Init())
	got, ok := reloaded.Snapshot()
	require.True(t, ok)
	assert.Equal(t, Session{User: ann, Token: "opaque-token"}, got)

	require.NoError(t, reloaded.Logout())
	assert.Equal(t, "", reloaded.Token())

	again := NewStore(storage.New(ls.Path()), nil)
	require.NoError(t, again.Init())
	_, ok = again.Snapshot()
	assert.False(t, ok)
}

func TestStore_InitClearsBadData(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{"malformed identity", "tok", "{not json"},
		{"identity without id", "tok", `{"name":"Ann"}`},
		{"token without identity", "tok", ""},
		{"identity without token", "", `{"_id":"u1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ls := newStorage(t)
			if tt.token != "" {
				ls.Set(KeyToken, tt.token)
			}
			if tt.user != "" {
				ls.Set(KeyUser, tt.user)
			}
			require.NoError(t, ls.Save())

			s := NewStore(storage.New(ls.Path()), nil)
			require.NoError(t, s.Init())
			assert.False(t, s.Authenticated())

			onDisk := storage.New(ls.Path())
			require.NoError(t, onDisk.Load())
			assert.Empty(t, onDisk.Keys())
		})
	}
}

func TestStore_InitCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0600))

	s := NewStore(storage.New(path), nil)
	require.NoError(t, s.Init())
	assert.False(t, s.Authenticated())
	assert.False(t, s.Loading())

	onDisk := storage.New(path)
	require.NoError(t, onDisk.Load())
	assert.Empty(t, onDisk.Keys())
}

func TestStore_JWTExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ls := newStorage(t)
	live := signed(t, now.Add(time.Hour))
	s := NewStore(ls, nil)
	require.NoError(t, s.Login(live, ann))
	exp, ok := s.ExpiresAt()
	require.True(t, ok)
	assert.True(t, exp.Equal(now.Add(time.Hour)))

	fresh := NewStore(storage.New(ls.Path()), nil)
	fresh.now = func() time.Time { return now }
	require.NoError(t, fresh.Init())
	assert.True(t, fresh.Authenticated())

	expired := NewStore(storage.New(ls.Path()), nil)
	expired.now = func() time.Time { return now.Add(2 * time.Hour) }
	require.NoError(t, expired.Init())
	assert.False(t, expired.Authenticated())
}

func TestStore_OpaqueTokenHasNoExpiry(t *testing.T) {
	s := NewStore(newStorage(t), nil)
	require.NoError(t, s.Login("opaque", ann))
	_, ok := s.ExpiresAt()
	assert.False(t, ok)
}

func TestStore_LoginRejectsHalfSession(t *testing.T) {
	s := NewStore(newStorage(t), nil)
	assert.ErrorIs(t, s.Login("", ann), ErrInvalid)
	assert.ErrorIs(t, s.Login("tok", models.User{Name: "no id"}), ErrInvalid)
	assert.False(t, s.Authenticated())
}

type failingStorage struct {
	*storage.LocalStorage
}

func (failingStorage) Save() error { return errors.New("disk full") }

func TestStore_LoginSaveError(t *testing.T) {
	s := NewStore(failingStorage{newStorage(t)}, nil)
	err := s.Login("tok", ann)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, s.Authenticated())
}
