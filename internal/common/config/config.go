package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/karino-t/dining-concierge/internal/common/database"
	"github.com/karino-t/dining-concierge/internal/dialog"
)

// Config はアプリケーション全体の設定です
// すべて環境変数から読み込みます（ローカル実行時は.envを読み込みます）
type Config struct {
	Env string `envconfig:"ENV" default:"LOCAL"`

	// Queue は予約の引き渡しに使う永続キューの設定です
	Queue struct {
		URL             string `envconfig:"URL" required:"true"`
		BatchSize       int32  `split_words:"true" default:"5"`
		WaitTimeSeconds int32  `split_words:"true" default:"0"`
	}

	// Search はキュイジーヌ一致検索を行うランキングインデックスの設定です
	Search struct {
		Endpoint string `envconfig:"ENDPOINT"`
		Index    string `envconfig:"INDEX" default:"predictions"`
	}

	// Business は店舗レコードのキーバリューストアの設定です
	Business struct {
		TableName string `split_words:"true" default:"yelp-restaurants"`
	}

	// Notify はSMS通知の設定です
	// FallbackPhoneNumberが空の場合、候補ゼロ時の通知は送信せずログに残します
	Notify struct {
		CountryCode         string `split_words:"true" default:"+1"`
		FallbackPhoneNumber string `split_words:"true"`
	}

	// Dialog はスロット検証の業務ルールです
	Dialog struct {
		Cuisines           []string `default:"french,italian,chinese,thailand,japanese"`
		PopularCuisine     string   `split_words:"true" default:"Chinese"`
		Cities             []string `default:"new york"`
		CheckLocation      bool     `split_words:"true" default:"true"`
		AllowRelativeDates bool     `split_words:"true" default:"true"`
		OpenHour           int      `split_words:"true" default:"10"`
		CloseHour          int      `split_words:"true" default:"17"`
		MaxPartySize       int      `split_words:"true" default:"50"`
		TimeZone           string   `split_words:"true" default:"America/New_York"`
	}

	// DB は処理済みセット（冪等性チェック）用のPostgres設定です
	DB struct {
		Enabled  bool   `default:"false"`
		Host     string `default:"localhost"`
		Port     int    `default:"5432"`
		UserName string `envconfig:"USERNAME" default:"dining"`
		Password string `default:"password"`
		DBName   string `envconfig:"NAME" default:"dining"`
	}

	// Lock はバッチ多重起動を抑止する分散ロックの設定です
	// RedisURLが空の場合ロックは使用しません
	Lock struct {
		RedisURL   string `split_words:"true"`
		TTLSeconds int    `split_words:"true" default:"300"`
	}

	SFN struct {
		TaskToken string
	}

	EnableTracing bool
}

// LoadConfig は設定を読み込みます
// taskTokenはStep Functionsから起動された場合にのみ渡されます
func LoadConfig(taskToken string) (*Config, error) {
	// ローカル実行向け。.envが無い場合は環境変数のみで動かす
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("dining", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	cfg.SFN.TaskToken = taskToken

	// 環境変数[DINING_ENABLE_TRACING]を見てトレースを有効にする。対応しているTracingはAWS_XRAYのみ。
	// 環境変数[AWS_XRAY_SDK_DISABLED]がtrueの場合は必ずトレースを無効にする。
	enableKey := os.Getenv("DINING_ENABLE_TRACING")
	if !sdkDisabled() && (strings.ToLower(enableKey) == "true" || enableKey == "1") {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "FALSE")
		cfg.EnableTracing = true
	} else {
		os.Setenv("AWS_XRAY_SDK_DISABLED", "TRUE")
		cfg.EnableTracing = false
	}

	return cfg, nil
}

// DatabaseConfig は処理済みセット用のDB接続設定へ変換します
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Host:     c.DB.Host,
		Port:     c.DB.Port,
		UserName: c.DB.UserName,
		Password: c.DB.Password,
		DBName:   c.DB.DBName,
	}
}

// DialogPolicy はダイアログ状態機械用のポリシーへ変換します
func (c *Config) DialogPolicy() (dialog.Policy, error) {
	loc, err := time.LoadLocation(c.Dialog.TimeZone)
	if err != nil {
		return dialog.Policy{}, fmt.Errorf("invalid time zone %q: %w", c.Dialog.TimeZone, err)
	}

	return dialog.Policy{
		Cuisines:           lowerAll(c.Dialog.Cuisines),
		PopularCuisine:     c.Dialog.PopularCuisine,
		Cities:             lowerAll(c.Dialog.Cities),
		CheckLocation:      c.Dialog.CheckLocation,
		AllowRelativeDates: c.Dialog.AllowRelativeDates,
		DateLayout:         "2006-01-02",
		OpenHour:           c.Dialog.OpenHour,
		CloseHour:          c.Dialog.CloseHour,
		MaxPartySize:       c.Dialog.MaxPartySize,
		TimeZone:           loc,
	}, nil
}

// IsLocal はローカル実行かどうかを返します
func (c *Config) IsLocal() bool {
	return c.Env == "LOCAL"
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}

// Check if SDK is disabled
func sdkDisabled() bool {
	disableKey := os.Getenv("AWS_XRAY_SDK_DISABLED")
	return strings.ToLower(disableKey) == "true"
}
