package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg, err := decode(v)

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 600, cfg.RateLimit.IdleTTLSec)
	assert.Equal(t, "https://wabaapi.com/", cfg.Gateway.BaseURL)
	assert.Equal(t, 30, cfg.Gateway.TimeoutSec)
	assert.Equal(t, "January 2, 2006", cfg.Shop.DateFormat)
	assert.Equal(t, "3:04 pm", cfg.Shop.TimeFormat)
	assert.Equal(t, "UTC", cfg.Shop.Timezone)
	assert.Equal(t, SettingsBackendStatic, cfg.Settings.Backend)
	assert.Equal(t, "wabalerts:settings", cfg.Settings.RedisKey)
	assert.Empty(t, cfg.Notifications)
}

func TestDecode_APIKeysFromString(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("auth.api_keys", "alpha, beta ,gamma")

	cfg, err := decode(v)

	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, cfg.Auth.APIKeys)
}

func TestDecode_UnknownBackend(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("settings.backend", "etcd")

	_, err := decode(v)

	assert.ErrorContains(t, err, `unsupported settings backend "etcd"`)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
gateway:
  user_id: shop
  password: from-file
  waba_number: "919000000000"
shop:
  name: Chai & Co
  timezone: Asia/Kolkata
admin:
  notify: true
  mobile: "+919999999999"
notifications:
  order_completed:
    enabled: true
    template_name: order_done
    body: "Thanks {BILLING_FNAME}, order #{ORDER_NUMBER} is {ORDER_STATUS}"
  coupon_announcement:
    enabled: false
    body: "Sale at {SHOP_NAME}"
`), 0o600))
	chdirForTest(t, dir)
	t.Setenv("WABALERTS_GATEWAY_PASSWORD", "from-env")
	t.Setenv("WABALERTS_SERVER_PORT", "9090")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "shop", cfg.Gateway.UserID)
	assert.Equal(t, "from-env", cfg.Gateway.Password)
	assert.Equal(t, "919000000000", cfg.Gateway.WabaNumber)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Asia/Kolkata", cfg.Shop.Timezone)
	assert.Equal(t, "January 2, 2006", cfg.Shop.DateFormat)
	assert.True(t, cfg.Admin.Notify)

	require.Contains(t, cfg.Notifications, "order_completed")
	rule := cfg.Notifications["order_completed"]
	assert.True(t, rule.Enabled)
	assert.Equal(t, "order_done", rule.TemplateName)
	assert.Equal(t, "Thanks {BILLING_FNAME}, order #{ORDER_NUMBER} is {ORDER_STATUS}", rule.Body)
	assert.False(t, cfg.Notifications["coupon_announcement"].Enabled)
}

func TestLoad_NoConfigFile(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("WABALERTS_SHOP_NAME", "Env Shop")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "Env Shop", cfg.Shop.Name)
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir on Go < 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restore working directory %s: %v", prev, err)
		}
	})
}
