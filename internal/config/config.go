// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Telegram                `yaml:"telegram"`
	Funnel                  `yaml:"funnel"`
	RabbitMQURL             string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries      int           `yaml:"rabbitmq_max_retries" env-default:"5"`
	RabbitMQRetryDelay      time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// HTTPServer структура для настройки сервера постбэков
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	// PublicBase публичный базовый URL для подписанных редиректов и постбэков
	PublicBase string `yaml:"public_base"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// Telegram структура с настройками бота и канала
type Telegram struct {
	BotToken   string  `yaml:"bot_token"`
	AdminIDs   []int64 `yaml:"admin_ids"`
	ChannelID  int64   `yaml:"channel_id"`
	ChannelURL string  `yaml:"channel_url"`
	SupportURL string  `yaml:"support_url"`
	// MiniAppURL и MiniAppPlatinumURL — web-app ссылки экрана доступа
	MiniAppURL         string `yaml:"mini_app_url"`
	MiniAppPlatinumURL string `yaml:"mini_app_platinum_url"`
	// AssetsDir каталог с картинками экранов, подкаталоги по языку
	AssetsDir string `yaml:"assets_dir" env-default:"assets"`
}

// Funnel дефолтные параметры воронки и партнёрские ссылки когорт A/B.
// Значения (кроме ссылок когорты B) могут быть переопределены через таблицу config.
type Funnel struct {
	RefRegA           string  `yaml:"ref_reg_a"`
	RefDepA           string  `yaml:"ref_dep_a"`
	RefRegB           string  `yaml:"ref_reg_b"`
	RefDepB           string  `yaml:"ref_dep_b"`
	PlatinumThreshold float64 `yaml:"platinum_threshold" env-default:"100"`
	FirstDepositMin   float64 `yaml:"first_deposit_min" env-default:"10"`
	PostbackSecret    string  `yaml:"postback_secret"`
	DefaultLang       string  `yaml:"default_lang" env-default:"en"`
}

// MustLoad функция для загрузки конфига, путь берётся из CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	cfg.PublicBase = strings.TrimRight(cfg.PublicBase, "/")
	return &cfg
}

// IsAdmin проверяет, входит ли telegram id в список админов.
func (c *Config) IsAdmin(id int64) bool {
	for _, admin := range c.AdminIDs {
		if admin == id {
			return true
		}
	}
	return false
}
