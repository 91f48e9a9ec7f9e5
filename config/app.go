package config

import "time"

type App struct {
	Port      string `env:"APP_PORT" envDefault:"8080"`
	Env       string `env:"APP_ENV" envDefault:"dev"`
	JWTSecret string `env:"JWT_SECRET" envDefault:"local_dev_secret"`

	// DatabaseURL is required unless Env is "memory".
	DatabaseURL string `env:"DATABASE_URL"`

	Payment Payment
	Notify  Notify

	SweepSchedule   string `env:"SWEEP_SCHEDULE" envDefault:"0 0 * * *"`
	OverdueSchedule string `env:"OVERDUE_SCHEDULE" envDefault:"0 9 * * *"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

type Payment struct {
	Gateway      string        `env:"PAYMENT_GATEWAY" envDefault:"stripe"`
	StripeAPIKey string        `env:"STRIPE_API_KEY"`
	XenditAPIKey string        `env:"XENDIT_API_KEY"`
	SuccessURL   string        `env:"PAYMENT_SUCCESS_URL" envDefault:"http://localhost:8080/payments/success"`
	CancelURL    string        `env:"PAYMENT_CANCEL_URL" envDefault:"http://localhost:8080/payments/cancel"`
	Timeout      time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`
}

type Notify struct {
	TelegramToken string        `env:"TELEGRAM_BOT_TOKEN"`
	AdminChatID   int64         `env:"TELEGRAM_ADMIN_CHAT_ID"`
	KafkaBrokers  []string      `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic    string        `env:"KAFKA_TOPIC" envDefault:"carsharing.notifications"`
	Timeout       time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	Buffer        int           `env:"NOTIFY_BUFFER" envDefault:"256"`
}

const (
	GatewayStripe = "stripe"
	GatewayXendit = "xendit"
	EnvMemory     = "memory"
)
