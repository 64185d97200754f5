package config

import (
	"strings"
	"sync"

	"github.com/andresuchdata/kitchen-planner/internal/planner"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Planning PlanningConfig
	BOM      BOMConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type CacheConfig struct {
	Enabled        bool
	RedisURL       string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	PlanTTLSeconds int
}

// PlanningConfig carries the session's planning parameters as entered by the operator.
// The waste limit is a percentage, as on the ops dashboard.
type PlanningConfig struct {
	SafetyFactorNormal   float64
	SafetyFactorWeekend  float64
	MinStockDays         float64
	MaxStockDays         float64
	WasteLimitPercent    float64
	FillMissingInventory bool
	DefaultStockGrams    float64
	DefaultWasteGrams    float64
}

type BOMConfig struct {
	Source      string // static, file, postgres, s3 or drive
	File        string
	ObjectKey   string
	DriveFolder string
	DriveFile   string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsJSON string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration once per process from the environment and an optional .env file.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = FromViper(viper.GetViper())
	})

	return instance
}

// FromViper applies defaults to v and builds a Config from it.
func FromViper(v *viper.Viper) *Config {
	setDefaults(v)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins: v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Cache: CacheConfig{
			Enabled:        v.GetBool("CACHE_ENABLED"),
			RedisURL:       v.GetString("REDIS_URL"),
			RedisHost:      v.GetString("REDIS_HOST"),
			RedisPort:      v.GetString("REDIS_PORT"),
			RedisPassword:  v.GetString("REDIS_PASSWORD"),
			RedisDB:        v.GetInt("REDIS_DB"),
			PlanTTLSeconds: v.GetInt("CACHE_PLAN_TTL_SECONDS"),
		},
		Planning: PlanningConfig{
			SafetyFactorNormal:   v.GetFloat64("PLANNER_SAFETY_FACTOR_NORMAL"),
			SafetyFactorWeekend:  v.GetFloat64("PLANNER_SAFETY_FACTOR_WEEKEND"),
			MinStockDays:         v.GetFloat64("PLANNER_MIN_STOCK_DAYS"),
			MaxStockDays:         v.GetFloat64("PLANNER_MAX_STOCK_DAYS"),
			WasteLimitPercent:    v.GetFloat64("PLANNER_WASTE_LIMIT_PERCENT"),
			FillMissingInventory: v.GetBool("PLANNER_FILL_MISSING_INVENTORY"),
			DefaultStockGrams:    v.GetFloat64("PLANNER_DEFAULT_STOCK_G"),
			DefaultWasteGrams:    v.GetFloat64("PLANNER_DEFAULT_WASTE_G"),
		},
		BOM: BOMConfig{
			Source:      strings.ToLower(strings.TrimSpace(v.GetString("BOM_SOURCE"))),
			File:        v.GetString("BOM_FILE"),
			ObjectKey:   v.GetString("BOM_OBJECT_KEY"),
			DriveFolder: v.GetString("BOM_DRIVE_FOLDER"),
			DriveFile:   v.GetString("BOM_DRIVE_FILE"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		Drive: DriveConfig{
			CredentialsJSON: v.GetString("GOOGLE_DRIVE_CREDENTIALS_JSON"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 10)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "kitchen")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_PLAN_TTL_SECONDS", 60)

	defaults := planner.DefaultConfiguration()
	v.SetDefault("PLANNER_SAFETY_FACTOR_NORMAL", defaults.SafetyFactorNormal)
	v.SetDefault("PLANNER_SAFETY_FACTOR_WEEKEND", defaults.SafetyFactorWeekend)
	v.SetDefault("PLANNER_MIN_STOCK_DAYS", defaults.MinStockDays)
	v.SetDefault("PLANNER_MAX_STOCK_DAYS", defaults.MaxStockDays)
	v.SetDefault("PLANNER_WASTE_LIMIT_PERCENT", 5.0)
	v.SetDefault("PLANNER_FILL_MISSING_INVENTORY", false)
	v.SetDefault("PLANNER_DEFAULT_STOCK_G", planner.DefaultCurrentStock)
	v.SetDefault("PLANNER_DEFAULT_WASTE_G", planner.DefaultWaste)

	v.SetDefault("BOM_SOURCE", "static")
	v.SetDefault("BOM_FILE", "./data/bom.csv")
	v.SetDefault("BOM_OBJECT_KEY", "bom/menu_bom.csv")
	v.SetDefault("BOM_DRIVE_FOLDER", "")
	v.SetDefault("BOM_DRIVE_FILE", "menu_bom.xlsx")

	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
}

// Configuration converts the planning section into validated planner parameters.
func (p PlanningConfig) Configuration() (planner.Configuration, error) {
	ratio, err := planner.WasteLimitFromPercent(p.WasteLimitPercent)
	if err != nil {
		return planner.Configuration{}, err
	}

	cfg := planner.Configuration{
		SafetyFactorNormal:  p.SafetyFactorNormal,
		SafetyFactorWeekend: p.SafetyFactorWeekend,
		MinStockDays:        p.MinStockDays,
		MaxStockDays:        p.MaxStockDays,
		WasteLimitRatio:     ratio,
	}
	if err := cfg.Validate(); err != nil {
		return planner.Configuration{}, err
	}
	return cfg, nil
}
