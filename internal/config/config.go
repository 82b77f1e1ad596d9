package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"decor.db"`

	Payment Payment `envPrefix:"PAYMENT_"`
	Mail    Mail    `envPrefix:"MAIL_"`
	Pricing Pricing `envPrefix:"PRICING_"`
}

type Payment struct {
	BaseApiURL   string `env:"BASE_API_URL"`
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	WebhookID    string `env:"WEBHOOK_ID"`
	ReturnURL    string `env:"RETURN_URL"`
}

type Mail struct {
	BaseApiURL   string `env:"BASE_API_URL"`
	APIKey       string `env:"API_KEY"`
	Sender       string `env:"SENDER"`
	AdminAddress string `env:"ADMIN_ADDRESS"`
	MaxRetries   uint64 `env:"MAX_RETRIES" envDefault:"3"`
}

type Pricing struct {
	TaxRate     string `env:"TAX_RATE" envDefault:"0.08"`
	DepositRate string `env:"DEPOSIT_RATE" envDefault:"0.20"`
	Currency    string `env:"CURRENCY" envDefault:"USD"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
