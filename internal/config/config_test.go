package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONVERSATION_STORE_BACKEND", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "messaging-api", cfg.ServiceName)
	assert.Equal(t, ":8290", cfg.Addr())
	assert.Equal(t, StoreBackendMemory, cfg.StoreBackend)
	assert.True(t, cfg.IsS3Storage())
	assert.False(t, cfg.PurgeAttachmentsOnDelete)
	assert.Equal(t, int64(20*1024*1024), cfg.MaxAttachmentBytes)
	assert.Equal(t, []string{"staff"}, cfg.AuthStaffRoles)
	assert.Equal(t, []string{"admin", "owner"}, cfg.AuthPrivilegedRoles)
	assert.False(t, cfg.ProfileCacheEnabled())
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "postgres requires dsn",
			env:     map[string]string{"CONVERSATION_STORE_BACKEND": "postgres"},
			wantErr: "DB_POSTGRESQL_WRITE_DSN",
		},
		{
			name:    "mongo requires uri",
			env:     map[string]string{"CONVERSATION_STORE_BACKEND": "mongo"},
			wantErr: "MONGO_URI",
		},
		{
			name:    "unknown store backend",
			env:     map[string]string{"CONVERSATION_STORE_BACKEND": "cassandra"},
			wantErr: "CONVERSATION_STORE_BACKEND",
		},
		{
			name: "unknown attachment backend",
			env: map[string]string{
				"CONVERSATION_STORE_BACKEND": "memory",
				"ATTACHMENT_STORAGE_BACKEND": "gcs",
			},
			wantErr: "ATTACHMENT_STORAGE_BACKEND",
		},
		{
			name: "auth requires issuer",
			env: map[string]string{
				"CONVERSATION_STORE_BACKEND": "memory",
				"AUTH_ENABLED":               "true",
				"AUTH_JWKS_URL":              "http://keycloak/certs",
			},
			wantErr: "AUTH_ISSUER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ListsAreTrimmed(t *testing.T) {
	t.Setenv("CONVERSATION_STORE_BACKEND", "memory")
	t.Setenv("ATTACHMENT_ALLOWED_TYPES", " application/pdf , image/png ,")
	t.Setenv("AUTH_PRIVILEGED_ROLES", "admin, ")
	t.Setenv("ATTACHMENT_STORAGE_BACKEND", " LOCAL ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"application/pdf", "image/png"}, cfg.AllowedAttachmentTypes)
	assert.Equal(t, []string{"admin"}, cfg.AuthPrivilegedRoles)
	assert.True(t, cfg.IsLocalStorage())
}
