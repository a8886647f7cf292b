package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialManager(t *testing.T) {
	manager, store := NewMockManager()

	require.NoError(t, manager.Store(&Credential{Name: "main", APIKey: "0123456789ABCDEF0123456789ABCDEF"}))

	cred, err := manager.Retrieve("main")
	require.NoError(t, err)
	assert.Equal(t, "0123456789ABCDEF0123456789ABCDEF", cred.APIKey)
	assert.False(t, cred.LastModified.IsZero())

	creds, err := manager.List()
	require.NoError(t, err)
	assert.Len(t, creds, 1)

	require.NoError(t, manager.Delete("main"))
	_, err = manager.Retrieve("main")
	assert.True(t, errors.Is(err, ErrCredentialsNotFound))
	assert.Equal(t, 0, store.Count())
}

func TestManagerStoreDefaults(t *testing.T) {
	manager, store := NewMockManager()

	cred := &Credential{APIKey: "key"}
	require.NoError(t, manager.Store(cred))
	assert.Equal(t, DefaultName, cred.Name)
	assert.True(t, store.Exists(DefaultName))

	assert.Error(t, manager.Store(&Credential{Name: "empty"}))
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	working := NewMockStore()
	manager := NewManagerWithStores(broken, working)

	require.NoError(t, manager.Store(&Credential{Name: "main", APIKey: "key"}))
	assert.Equal(t, 0, broken.Count())
	assert.Equal(t, 1, working.Count())
}

func TestManagerAPIKey(t *testing.T) {
	manager, store := NewMockManager()

	_, err := manager.APIKey("")
	assert.True(t, errors.Is(err, ErrCredentialsNotFound))

	require.NoError(t, store.Store(&Credential{Name: "old", APIKey: "old-key", LastModified: time.Unix(100, 0)}))
	require.NoError(t, store.Store(&Credential{Name: "new", APIKey: "new-key", LastModified: time.Unix(200, 0)}))

	key, err := manager.APIKey("")
	require.NoError(t, err)
	assert.Equal(t, "new-key", key)

	key, err = manager.APIKey("old")
	require.NoError(t, err)
	assert.Equal(t, "old-key", key)

	require.NoError(t, store.Store(&Credential{Name: DefaultName, APIKey: "default-key"}))
	key, err = manager.APIKey("")
	require.NoError(t, err)
	assert.Equal(t, "default-key", key)
}

func TestManagerListKeepsNewest(t *testing.T) {
	a, b := NewMockStore(), NewMockStore()
	require.NoError(t, a.Store(&Credential{Name: "main", APIKey: "stale", LastModified: time.Unix(100, 0)}))
	require.NoError(t, b.Store(&Credential{Name: "main", APIKey: "fresh", LastModified: time.Unix(200, 0)}))

	creds, err := NewManagerWithStores(a, b).List()
	require.NoError(t, err)
	require.Len(t, creds, 1)
	assert.Equal(t, "fresh", creds[0].APIKey)
}

func TestSanitize(t *testing.T) {
	cred := &Credential{Name: "main", APIKey: "0123456789ABCDEF"}
	sanitized := Sanitize(cred)

	assert.Equal(t, "0123...CDEF", sanitized.APIKey)
	assert.Equal(t, "main", sanitized.Name)
	assert.Equal(t, "********", MaskKey("short"))
	assert.Nil(t, Sanitize(nil))
}

func TestEncryptedFileStore(t *testing.T) {
	t.Setenv(PassphraseEnv, "test_passphrase_123")
	path := filepath.Join(t.TempDir(), "credentials.enc")

	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Store(&Credential{Name: "main", APIKey: "secret_api_key_value"}))
	require.NoError(t, store.Store(&Credential{Name: "backup", APIKey: "other_api_key_value"}))

	cred, err := store.Retrieve("main")
	require.NoError(t, err)
	assert.Equal(t, "secret_api_key_value", cred.APIKey)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.False(t, bytes.Contains(content, []byte("secret_api_key_value")), "file contains plaintext key")

	reopened, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	creds, err := reopened.List()
	require.NoError(t, err)
	assert.Len(t, creds, 2)

	require.NoError(t, reopened.Delete("main"))
	require.NoError(t, reopened.Delete("backup"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestEncryptedFileStoreWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.enc")

	t.Setenv(PassphraseEnv, "first")
	store, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Store(&Credential{Name: "main", APIKey: "key"}))

	t.Setenv(PassphraseEnv, "second")
	other, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	_, err = other.Retrieve("main")
	assert.Error(t, err)
}

func TestEncryptedFileStoreGeneratesPassphrase(t *testing.T) {
	t.Setenv(PassphraseEnv, "")
	dir := t.TempDir()

	_, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	require.NoError(t, err)

	info, err := os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv(EnvKey, "env_key")
	store := NewEnvironmentStore()

	cred, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "env_key", cred.APIKey)
	assert.True(t, store.Exists(""))

	assert.Equal(t, ErrStoreUnavailable, store.Store(&Credential{Name: "x", APIKey: "y"}))
	assert.Equal(t, ErrStoreUnavailable, store.Delete("x"))
}

func TestMockStoreErrorInjection(t *testing.T) {
	store := NewMockStore()
	store.ListError = errors.New("injected error")

	_, err := store.List()
	assert.EqualError(t, err, "injected error")
}

func TestShowAPIKeyGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowAPIKeyGuide(&buf)
	assert.Contains(t, buf.String(), APIKeyURL)
}
