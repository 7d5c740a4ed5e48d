package config

import (
	"errors"
	"flag"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerCfg struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}
type MysqlCfg struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Database     string `mapstructure:"database"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Charset      string `mapstructure:"charset"`
	MaxIdleConns int    `mapstructure:"maxIdleConns"`
	MaxOpenConns int    `mapstructure:"maxOpenConns"`
	LogLevel     string `mapstructure:"logLevel"`
	AutoMigrate  bool   `mapstructure:"autoMigrate"`
}
type RabbitCfg struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}
type RedisCfg struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}
type LogCfg struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

// FeeCfg overrides the default fee schedule. Rates are percentages, fixed is minor units.
type FeeCfg struct {
	ProcessorRatePct string `mapstructure:"processorRatePct"`
	ProcessorFixed   int64  `mapstructure:"processorFixed"`
	PlatformRatePct  string `mapstructure:"platformRatePct"`
}

type ProcessorCfg struct {
	ApiUrl        string `mapstructure:"apiUrl"`
	ApiKey        string `mapstructure:"apiKey"`
	Currency      string `mapstructure:"currency"`
	TimeoutSec    int    `mapstructure:"timeoutSec"`
	RetryTimes    int    `mapstructure:"retryTimes"`
	RetryInterval int    `mapstructure:"retryIntervalMs"`
	// HealthThreshold is the success rate below which captures are skipped; 0 disables tracking.
	HealthThreshold float64 `mapstructure:"healthThreshold"`
	HealthStrategy  string  `mapstructure:"healthStrategy"`
	HealthTTLSec    int     `mapstructure:"healthTtlSec"`
}

type WebhookCfg struct {
	BankSecret       string `mapstructure:"bankSecret"`
	CardSecret       string `mapstructure:"cardSecret"`
	CardToleranceSec int    `mapstructure:"cardToleranceSec"`
	SeenTTLHours     int    `mapstructure:"seenTtlHours"`
	TerminalGuard    bool   `mapstructure:"terminalGuard"`
}

type FeatureCfg struct {
	SplitsEnabled          bool `mapstructure:"splitsEnabled"`
	DistributionsEnabled   bool `mapstructure:"distributionsEnabled"`
	StrictSplitPercentages bool `mapstructure:"strictSplitPercentages"`
}

type DonationCfg struct {
	GuardTTLSec int `mapstructure:"guardTtlSec"`
}

type TelegramCfg struct {
	BotToken string `mapstructure:"botToken"`
	ChatID   string `mapstructure:"chatId"`
}

type Root struct {
	Server    ServerCfg    `mapstructure:"server"`
	Mysql     MysqlCfg     `mapstructure:"mysql"`
	RabbitMQ  RabbitCfg    `mapstructure:"rabbitmq"`
	Redis     RedisCfg     `mapstructure:"redis"`
	Log       LogCfg       `mapstructure:"log"`
	Fee       FeeCfg       `mapstructure:"fee"`
	Processor ProcessorCfg `mapstructure:"processor"`
	Webhook   WebhookCfg   `mapstructure:"webhook"`
	Features  FeatureCfg   `mapstructure:"features"`
	Donation  DonationCfg  `mapstructure:"donation"`
	Telegram  TelegramCfg  `mapstructure:"telegram"`
	NodeID    int64        `mapstructure:"nodeId"`
}

var C Root

// Init reads config/config.<env>.yaml, then environment overrides (SETTLE_ prefix).
func Init() {
	env := flag.String("env", "dev", "config env: dev|prod")
	flag.Parse()

	// secrets usually live in .env next to the binary
	_ = godotenv.Load()

	cfg, err := Load("config/config." + *env + ".yaml")
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	C = cfg
}

// Load reads one config file and applies defaults.
func Load(path string) (Root, error) {
	var root Root
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SETTLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// keys that usually come only from the environment must be known to viper
	for _, k := range []string{"processor.apiKey", "webhook.bankSecret", "webhook.cardSecret", "telegram.botToken", "mysql.password", "redis.password"} {
		_ = v.BindEnv(k)
	}
	if err := v.ReadInConfig(); err != nil {
		return root, err
	}
	if err := v.Unmarshal(&root); err != nil {
		return root, err
	}
	root.ApplyDefaults()
	return root, root.Validate()
}

// ApplyDefaults fills sane defaults for unset values.
func (r *Root) ApplyDefaults() {
	if strings.TrimSpace(r.Server.Port) == "" {
		r.Server.Port = "8080"
	}
	if r.Mysql.Charset == "" {
		r.Mysql.Charset = "utf8mb4"
	}
	if r.RabbitMQ.Exchange == "" {
		r.RabbitMQ.Exchange = "settlement_events"
	}
	if r.Redis.Prefix == "" {
		r.Redis.Prefix = "settle"
	}
	if r.Processor.Currency == "" {
		r.Processor.Currency = "usd"
	}
	if r.Processor.TimeoutSec <= 0 {
		r.Processor.TimeoutSec = 10
	}
	if r.Processor.RetryTimes <= 0 {
		r.Processor.RetryTimes = 3
	}
	if r.Processor.RetryInterval <= 0 {
		r.Processor.RetryInterval = 300
	}
	if r.Webhook.CardToleranceSec <= 0 {
		r.Webhook.CardToleranceSec = 300
	}
	if r.Processor.HealthTTLSec <= 0 {
		r.Processor.HealthTTLSec = 60
	}
	if r.Webhook.SeenTTLHours <= 0 {
		r.Webhook.SeenTTLHours = 72
	}
	if r.Donation.GuardTTLSec <= 0 {
		r.Donation.GuardTTLSec = 60
	}
}

// Validate rejects configs that cannot verify webhooks.
func (r *Root) Validate() error {
	if r.Webhook.BankSecret == "" || r.Webhook.CardSecret == "" {
		return errors.New("webhook.bankSecret and webhook.cardSecret are required")
	}
	if r.NodeID < 0 || r.NodeID > 1023 {
		return errors.New("nodeId must be within 0..1023")
	}
	return nil
}
