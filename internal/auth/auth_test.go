package auth

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/activity-heatmap/internal/logger"
)

func TestHashPassword(t *testing.T) {
	password := "MySecurePassword123"

	hash, err := HashPassword(password)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "got %s", hash)

	// Different salt every time.
	hash2, err := HashPassword(password)
	require.NoError(t, err)
	assert.NotEqual(t, hash, hash2)
}

func TestVerifyPassword(t *testing.T) {
	password := "MySecurePassword123"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		want     bool
		wantErr  bool
	}{
		{name: "Correct password", password: password, hash: hash, want: true},
		{name: "Wrong password", password: "WrongPassword456", hash: hash, want: false},
		{name: "Invalid hash format", password: password, hash: "invalid", wantErr: true},
		{name: "Wrong algorithm", password: password, hash: "$bcrypt$v=1$m=65536,t=1,p=4$salt$hash", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.hash)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCreateFile(t *testing.T) {
	authFile := filepath.Join(t.TempDir(), "auth.secret")
	var out bytes.Buffer

	t.Run("Create new file", func(t *testing.T) {
		require.NoError(t, CreateFile(authFile, "testuser", "TestPassword123456", false, strings.NewReader(""), &out))

		info, err := os.Stat(authFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0400), info.Mode().Perm())

		content, err := os.ReadFile(authFile)
		require.NoError(t, err)
		parts := strings.SplitN(strings.TrimSpace(string(content)), ":", 2)
		require.Len(t, parts, 2)
		assert.Equal(t, "testuser", parts[0])

		match, err := VerifyPassword("TestPassword123456", parts[1])
		require.NoError(t, err)
		assert.True(t, match)
	})

	t.Run("Declined overwrite", func(t *testing.T) {
		err := CreateFile(authFile, "other", "OtherPassword123", false, strings.NewReader("n\n"), &out)
		assert.ErrorIs(t, err, ErrAborted)

		content, _ := os.ReadFile(authFile)
		assert.True(t, strings.HasPrefix(string(content), "testuser:"))
	})

	t.Run("Confirmed overwrite", func(t *testing.T) {
		require.NoError(t, CreateFile(authFile, "second", "SecondPassword123", false, strings.NewReader("yes\n"), &out))

		content, _ := os.ReadFile(authFile)
		assert.True(t, strings.HasPrefix(string(content), "second:"))
	})

	t.Run("Overwrite with flag", func(t *testing.T) {
		require.NoError(t, CreateFile(authFile, "newuser", "NewPassword123456", true, strings.NewReader(""), &out))

		content, _ := os.ReadFile(authFile)
		assert.True(t, strings.HasPrefix(string(content), "newuser:"))
	})
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		setupFile func(string) error
		noPath    bool
		wantUser  string
		wantErr   bool
		wantNil   bool
	}{
		{
			name: "Valid auth file",
			setupFile: func(path string) error {
				hash, _ := HashPassword("TestPassword123456")
				return os.WriteFile(path, []byte("testuser:"+hash), 0600)
			},
			wantUser: "testuser",
		},
		{
			name:      "File not exists (dev mode)",
			setupFile: func(string) error { return nil },
			wantNil:   true,
		},
		{
			name:      "No path configured",
			setupFile: func(string) error { return nil },
			noPath:    true,
			wantNil:   true,
		},
		{
			name: "Invalid format (missing colon)",
			setupFile: func(path string) error {
				return os.WriteFile(path, []byte("invalidformat"), 0600)
			},
			wantErr: true,
			wantNil: true,
		},
		{
			name: "Invalid format (empty)",
			setupFile: func(path string) error {
				return os.WriteFile(path, []byte(""), 0600)
			},
			wantErr: true,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authFile := filepath.Join(t.TempDir(), "auth.secret")
			require.NoError(t, tt.setupFile(authFile))
			if tt.noPath {
				authFile = ""
			}

			creds, err := Load(authFile, logger.Test(t))
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			if tt.wantNil {
				assert.Nil(t, creds)
				return
			}
			require.NotNil(t, creds)
			assert.Equal(t, tt.wantUser, creds.User)
		})
	}
}

func TestCredentialsVerify(t *testing.T) {
	hash, err := HashPassword("TestPassword123456")
	require.NoError(t, err)
	creds := NewCredentials("admin", hash, logger.Test(t))

	assert.True(t, creds.Verify("admin", "TestPassword123456"))
	assert.False(t, creds.Verify("admin", "wrongpassword"))
	assert.False(t, creds.Verify("wronguser", "TestPassword123456"))
	assert.False(t, creds.Verify("", ""))

	broken := NewCredentials("admin", "not-a-hash", logger.Test(t))
	assert.False(t, broken.Verify("admin", "TestPassword123456"))
}

func TestArgon2idParameters(t *testing.T) {
	assert.GreaterOrEqual(t, argon2Memory, 64*1024, "memory should be at least 64MB (OWASP recommendation)")
	assert.GreaterOrEqual(t, argon2Time, 1)
	assert.GreaterOrEqual(t, argon2Threads, 1)
	assert.GreaterOrEqual(t, argon2KeyLen, 32)
	assert.GreaterOrEqual(t, saltLen, 16)
}
