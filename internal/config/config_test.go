package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("SHOP_DB_DSN", "user:pass@tcp(localhost:3306)/shop")
	t.Setenv("SHOP_STRIPE_SECRET_KEY", "sk_test_123")

	v := viper.New()
	v.AddConfigPath(t.TempDir())
	v.SetConfigName("config")

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, "user:pass@tcp(localhost:3306)/shop", cfg.DB.DSN)
	assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
	assert.Equal(t, "usd", cfg.Currency.Base)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "order.exchange", cfg.RabbitMQ.Exchange)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  addr: ":9000"
currency:
  base: eur
  rates:
    usd: "1.08"
smtp:
  host: smtp.example.com
  admin_email: admin@example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	v := viper.New()
	v.AddConfigPath(dir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	cfg, err := load(v)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "eur", cfg.Currency.Base)
	assert.Equal(t, "1.08", cfg.Currency.Rates["usd"])
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "admin@example.com", cfg.SMTP.AdminEmail)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db.dsn")
	assert.Contains(t, err.Error(), "stripe.webhook_secret")

	cfg.DB.DSN = "dsn"
	cfg.Stripe.SecretKey = "sk"
	cfg.Stripe.WebhookSecret = "whsec"
	cfg.Auth.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}
