package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env         string      `yaml:"env" env:"APP_ENV" env-default:"production"`
	PGSQL       PQSQL       `yaml:"pgsql"`
	Redis       Redis       `yaml:"redis"`
	MinIO       MinIO       `yaml:"minio"`
	HTTPServer  HTTPServer  `yaml:"http_server"`
	JWTSecret   string      `yaml:"jwt_secret" env:"JWT_SECRET" env-default:"super_secret_key"`
	Migration   Migration   `yaml:"migration"`
	AuditWorker AuditWorker `yaml:"audit_worker"`
}

type HTTPServer struct {
	Address string `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
}

type PQSQL struct {
	Host     string `yaml:"host" env:"PG_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"PG_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"PG_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"PG_PASSWORD" env-default:"password"`
	DBName   string `yaml:"dbname" env:"PG_DBNAME" env-default:"portal_db"`
	SSLMode  string `yaml:"sslmode" env:"PG_SSLMODE" env-default:"disable"`
}

type Redis struct {
	Address  string `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// MinIO is optional. An empty endpoint disables the storage-object check in audits.
type MinIO struct {
	Endpoint        string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKeyID     string `yaml:"access_key_id" env:"MINIO_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"MINIO_SECRET_ACCESS_KEY"`
	BucketName      string `yaml:"bucket_name" env:"MINIO_BUCKET" env-default:"media"`
	UseSSL          bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type Migration struct {
	MediaTable           string `yaml:"media_table" env:"MIGRATION_MEDIA_TABLE" env-default:"media"`
	SlidesTable          string `yaml:"slides_table" env:"MIGRATION_SLIDES_TABLE" env-default:"slides"`
	IndexedPrefix        string `yaml:"indexed_prefix" env:"MIGRATION_INDEXED_PREFIX"`
	RenumberDisplayOrder bool   `yaml:"renumber_display_order" env:"MIGRATION_RENUMBER_DISPLAY_ORDER" env-default:"true"`
	RateLimitPerHour     int64  `yaml:"rate_limit_per_hour" env:"MIGRATION_RATE_LIMIT_PER_HOUR" env-default:"3"`
}

type AuditWorker struct {
	Interval time.Duration `yaml:"interval" env:"AUDIT_WORKER_INTERVAL" env-default:"15m"`
}

// Load reads the YAML file at configPath and applies environment overrides.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist at path: %s", configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	var configPath string

	configPath = os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to config file")
		flag.Parse()
		configPath = *flags

		if configPath == "" {
			log.Fatal("config path must be provided")
		}
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
