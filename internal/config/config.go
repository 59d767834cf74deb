package config

import (
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port string `mapstructure:"port"`
		Env  string `mapstructure:"env"`
	} `mapstructure:"app"`
	DB struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret     string        `mapstructure:"jwt_secret"`
		TokenLifespan time.Duration `mapstructure:"token_lifespan"`
	} `mapstructure:"auth"`
	TMDB struct {
		BaseURL      string        `mapstructure:"base_url"`
		APIKey       string        `mapstructure:"api_key"`
		ImageBaseURL string        `mapstructure:"image_base_url"`
		CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"tmdb"`
	Favorites struct {
		PageSize int `mapstructure:"page_size"`
	} `mapstructure:"favorites"`
	Tracing struct {
		OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	} `mapstructure:"tracing"`
}

// LoadConfig reads .env plus an optional config.yaml, with environment
// variables taking precedence. An optional path argument points at the
// directory holding both files (used by tests running outside the repo
// root).
func LoadConfig(path ...string) (cfg Config, err error) {
	dir := "."
	if len(path) > 0 {
		dir = path[0]
	}

	if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
		log.Println("warning: .env file not found, use environment variables only.")
	}

	viper.AddConfigPath(dir)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read environment only. Error: %v", err)
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("app.port", "APP_PORT")
	viper.BindEnv("app.env", "APP_ENV")
	viper.BindEnv("db.dsn", "DB_DSN")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("auth.jwt_secret", "JWT_SECRET")
	viper.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	viper.BindEnv("tmdb.base_url", "TMDB_BASE_URL")
	viper.BindEnv("tmdb.api_key", "TMDB_API_KEY")
	viper.BindEnv("tmdb.image_base_url", "TMDB_IMAGE_BASE_URL")
	viper.BindEnv("tmdb.cache_ttl", "TMDB_CACHE_TTL")
	viper.BindEnv("favorites.page_size", "FAVORITES_PER_PAGE_LIMIT")
	viper.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("auth.token_lifespan", 24*time.Hour)
	viper.SetDefault("tmdb.base_url", "https://api.themoviedb.org/3")
	viper.SetDefault("tmdb.image_base_url", "https://image.tmdb.org/t/p")
	viper.SetDefault("tmdb.cache_ttl", 10*time.Minute)
	viper.SetDefault("favorites.page_size", 12)

	err = viper.Unmarshal(&cfg)
	return
}
