package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "memory")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, GatewayStripe, cfg.Payment.Gateway)
	require.Equal(t, 10*time.Second, cfg.Payment.Timeout)
	require.Equal(t, "0 0 * * *", cfg.SweepSchedule)
	require.Equal(t, "0 9 * * *", cfg.OverdueSchedule)
	require.Equal(t, 256, cfg.Notify.Buffer)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DATABASE_URL", "postgres://localhost/cars")
	t.Setenv("PAYMENT_GATEWAY", "xendit")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TELEGRAM_ADMIN_CHAT_ID", "-100123")
	t.Setenv("NOTIFY_TIMEOUT", "2s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, GatewayXendit, cfg.Payment.Gateway)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Notify.KafkaBrokers)
	require.Equal(t, int64(-100123), cfg.Notify.AdminChatID)
	require.Equal(t, 2*time.Second, cfg.Notify.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	t.Setenv("DATABASE_URL", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("APP_ENV", "memory")
	t.Setenv("PAYMENT_GATEWAY", "paypal")
	_, err = Load()
	require.Error(t, err)
}
