package auth

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func testAccount(name string) *Account {
	return &Account{
		Name:      name,
		Cookie:    "sessionid=abcdef0123456789; ttwid=xyz",
		UserAgent: "TestAgent/1.0",
	}
}

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager, store := NewMockManager()

	require.NoError(t, manager.Store(testAccount("main")))
	assert.Equal(t, 1, store.Count())

	got, err := manager.Retrieve("main")
	require.NoError(t, err)
	assert.Equal(t, "sessionid=abcdef0123456789; ttwid=xyz", got.Cookie)
	assert.False(t, got.LastModified.IsZero())

	_, err = manager.Retrieve("missing")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	assert.Error(t, manager.Store(nil))
	assert.Error(t, manager.Store(&Account{Cookie: "x"}))
	assert.Error(t, manager.Store(&Account{Name: "main"}))
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	working := NewMockStore()
	manager := NewManagerWithStores(broken, working)

	require.NoError(t, manager.Store(testAccount("main")))
	assert.Zero(t, broken.Count())
	assert.Equal(t, 1, working.Count())
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()

	old := testAccount("main")
	old.Cookie = "old-cookie-value"
	old.LastModified = time.Now().Add(-time.Hour)
	require.NoError(t, older.Store(old))

	fresh := testAccount("main")
	fresh.LastModified = time.Now()
	require.NoError(t, newer.Store(fresh))

	other := testAccount("alt")
	other.LastModified = time.Now().Add(-2 * time.Hour)
	require.NoError(t, newer.Store(other))

	accounts, err := NewManagerWithStores(older, newer).List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "main", accounts[0].Name)
	assert.Equal(t, fresh.Cookie, accounts[0].Cookie)
	assert.Equal(t, "alt", accounts[1].Name)
}

func TestManagerDelete(t *testing.T) {
	manager, store := NewMockManager()
	require.NoError(t, manager.Store(testAccount("main")))

	require.NoError(t, manager.Delete("main"))
	assert.Zero(t, store.Count())

	assert.ErrorIs(t, manager.Delete("main"), ErrCredentialsNotFound)
}

func TestManagerResolve(t *testing.T) {
	t.Setenv(EnvCookie, "")
	manager, _ := NewMockManager()

	_, err := manager.Resolve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, manager.Store(testAccount("main")))

	got, err := manager.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)

	got, err = manager.Resolve("main")
	require.NoError(t, err)
	assert.Equal(t, "main", got.Name)
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(EnvCookie, "sessionid=fromenv")
	t.Setenv(EnvUserAgent, "EnvAgent/2.0")

	store := NewEnvironmentStore()
	assert.True(t, store.Exists(""))

	account, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, DefaultAccount, account.Name)
	assert.Equal(t, "sessionid=fromenv", account.Cookie)
	assert.Equal(t, "EnvAgent/2.0", account.UserAgent)

	_, err = store.Retrieve("someone-else")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	assert.ErrorIs(t, store.Store(testAccount("x")), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("x"), ErrStoreUnavailable)

	manager := NewManagerWithStores(NewMockStore(), store)
	got, err := manager.RetrieveDefault()
	require.NoError(t, err)
	assert.Equal(t, "sessionid=fromenv", got.Cookie)
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "creds", "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	_, err = store.Retrieve("main")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Store(testAccount("main")))
	require.NoError(t, store.Store(testAccount("alt")))
	assert.True(t, store.Exists("main"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sessionid", "cookie is not stored in clear text")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// a second store over the same directory reuses the saved passphrase
	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	got, err := reopened.Retrieve("main")
	require.NoError(t, err)
	assert.Equal(t, testAccount("main").Cookie, got.Cookie)

	accounts, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	require.NoError(t, reopened.Delete("main"))
	require.NoError(t, reopened.Delete("alt"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file removed with the last account")
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(PassphraseEnv, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(testAccount("main")))

	t.Setenv(PassphraseEnv, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve("main")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialsNotFound)
}

func TestKeyringStore(t *testing.T) {
	keyring.MockInit()

	store, err := NewKeyringStore()
	require.NoError(t, err)

	require.NoError(t, store.Store(testAccount("main")))
	require.NoError(t, store.Store(testAccount("alt")))
	require.NoError(t, store.Store(testAccount("main")))
	assert.True(t, store.Exists("main"))

	accounts, err := store.List()
	require.NoError(t, err)
	var names []string
	for _, a := range accounts {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"alt", "main"}, names)

	require.NoError(t, store.Delete("main"))
	assert.False(t, store.Exists("main"))
	assert.ErrorIs(t, store.Delete("main"), ErrCredentialsNotFound)

	accounts, err = store.List()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "alt", accounts[0].Name)
}

func TestAccountHeaders(t *testing.T) {
	headers, err := testAccount("main").Headers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"Cookie":     "sessionid=abcdef0123456789; ttwid=xyz",
		"User-Agent": "TestAgent/1.0",
	}, headers)

	headers, err = (&Account{Name: "bare", Cookie: "c=1"}).Headers(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, headers, "User-Agent")

	var missing *Account
	_, err = missing.Headers(context.Background())
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestSanitizeAccount(t *testing.T) {
	account := testAccount("main")
	sanitized := SanitizeAccount(account)

	assert.Equal(t, "sess...=xyz", sanitized.Cookie)
	assert.Equal(t, account.Name, sanitized.Name)
	assert.Nil(t, SanitizeAccount(nil))
	assert.Equal(t, "********", maskString("short"))
}

func TestCookieGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowCookieExtractionGuide(&buf)
	assert.Contains(t, buf.String(), "douyin.com")
	assert.Contains(t, buf.String(), "Cookie")

	buf.Reset()
	ShowQuickExtractGuide(&buf)
	assert.Contains(t, buf.String(), "Quick Guide")
}
