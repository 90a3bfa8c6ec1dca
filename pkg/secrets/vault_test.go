package secrets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader(cfg VaultConfig, env map[string]string) *VaultLoader {
	loader := NewVaultLoader(cfg)
	loader.lookupEnv = func(key string) string { return env[key] }
	loader.setEnv = func(key, value string) error {
		env[key] = value
		return nil
	}
	return loader
}

func TestVaultLoader_Disabled(t *testing.T) {
	env := map[string]string{}
	result, err := newTestLoader(VaultConfig{Enabled: false}, env).Apply(context.Background())

	require.NoError(t, err)
	assert.False(t, result.Enabled)
	assert.Empty(t, env)
}

func TestVaultLoader_IncompleteConfig(t *testing.T) {
	_, err := newTestLoader(VaultConfig{Enabled: true, Addr: "http://vault"}, map[string]string{}).Apply(context.Background())
	assert.Error(t, err)
}

func TestVaultLoader_ExportsKVv2Secrets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/food-discovery", r.URL.Path)
		assert.Equal(t, "root-token", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"data":{"JWT_SECRET":"s3cret","DB_PORT":5433,"REDIS_ENABLED":true,"DB_PASSWORD":"vault-pw"}}}`))
	}))
	defer server.Close()

	env := map[string]string{"DB_PASSWORD": "local-pw"}
	loader := newTestLoader(VaultConfig{
		Enabled:   true,
		Addr:      server.URL,
		Token:     "root-token",
		Mount:     "secret",
		Path:      "food-discovery",
		KVVersion: 2,
		Timeout:   time.Second,
	}, env)

	result, err := loader.Apply(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Loaded)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "s3cret", env["JWT_SECRET"])
	assert.Equal(t, "5433", env["DB_PORT"])
	assert.Equal(t, "true", env["REDIS_ENABLED"])
	assert.Equal(t, "local-pw", env["DB_PASSWORD"])
}

func TestVaultLoader_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "permission denied", http.StatusForbidden)
	}))
	defer server.Close()

	loader := newTestLoader(VaultConfig{
		Enabled: true, Addr: server.URL, Token: "t", Mount: "secret", Path: "p", KVVersion: 2, Timeout: time.Second,
	}, map[string]string{})

	_, err := loader.Apply(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestBuildVaultURL(t *testing.T) {
	url, err := buildVaultURL("http://vault:8200/", "/secret/", "/app", 1)
	require.NoError(t, err)
	assert.Equal(t, "http://vault:8200/v1/secret/app", url)

	_, err = buildVaultURL("", "secret", "app", 2)
	assert.Error(t, err)
}
