package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strings"
	"time"

	"hrms-api/model"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Server struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey           string `mapstructure:"secret_key"`
		Issuer              string `mapstructure:"issuer"`
		Audience            string `mapstructure:"audience"`
		AccessTTLMinutes    int    `mapstructure:"access_ttl_minutes"`
		RefreshTTLDays      int    `mapstructure:"refresh_ttl_days"`
		RotateRefreshTokens bool   `mapstructure:"rotate_refresh_tokens"`
	} `mapstructure:"jwt"`
	Auth struct {
		DefaultRole         string   `mapstructure:"default_role"`
		SelfAssignableRoles []string `mapstructure:"self_assignable_roles"`
		BcryptCost          int      `mapstructure:"bcrypt_cost"`
		SeedUsersFile       string   `mapstructure:"seed_users_file"`
	} `mapstructure:"auth"`
	Redis struct {
		Enabled  bool   `mapstructure:"enabled"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`
	LoginThrottle struct {
		MaxAttempts   int `mapstructure:"max_attempts"`
		WindowMinutes int `mapstructure:"window_minutes"`
	} `mapstructure:"login_throttle"`
	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "hrms")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "hrms")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("server.port", "8080")
	v.SetDefault("jwt.secret_key", "")
	v.SetDefault("jwt.issuer", "hrms-api")
	v.SetDefault("jwt.audience", "hrms-clients")
	v.SetDefault("jwt.access_ttl_minutes", 15)
	v.SetDefault("jwt.refresh_ttl_days", 7)
	v.SetDefault("jwt.rotate_refresh_tokens", false)
	v.SetDefault("auth.default_role", string(model.RoleEmployee))
	v.SetDefault("auth.self_assignable_roles", []string{string(model.RoleEmployee)})
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.seed_users_file", "")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("login_throttle.max_attempts", 5)
	v.SetDefault("login_throttle.window_minutes", 15)
	v.SetDefault("log.level", "info")
}

// Load reads config.yml from path, applies environment overrides
// (JWT_SECRET_KEY, DATABASE_HOST, ...) and validates the result. A missing
// file is not an error; every key has a default or an env override.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads the process configuration into AppConfig and exits the
// process if it is unusable. A .env file in path, when present, is loaded
// into the environment first; variables already set win.
func LoadConfig(path string) {
	if err := godotenv.Load(filepath.Join(path, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Could not read .env file: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	AppConfig = *cfg
}

// Validate rejects configurations the server must not start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.SecretKey) == "" {
		return errors.New("jwt.secret_key is required")
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return errors.New("jwt.issuer and jwt.audience are required")
	}
	if c.JWT.AccessTTLMinutes <= 0 {
		return errors.New("jwt.access_ttl_minutes must be positive")
	}
	if c.JWT.RefreshTTLDays <= 0 {
		return errors.New("jwt.refresh_ttl_days must be positive")
	}
	if c.Auth.DefaultRole != "" {
		role, err := model.ParseRole(c.Auth.DefaultRole)
		if err != nil {
			return fmt.Errorf("auth.default_role: %w", err)
		}
		if role == model.RoleAdmin {
			return errors.New("auth.default_role must not be Admin")
		}
	}
	for _, name := range c.Auth.SelfAssignableRoles {
		role, err := model.ParseRole(name)
		if err != nil {
			return fmt.Errorf("auth.self_assignable_roles: %w", err)
		}
		if role == model.RoleAdmin {
			return errors.New("auth.self_assignable_roles must not contain Admin")
		}
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return errors.New("auth.bcrypt_cost must be between 4 and 31")
	}
	if c.Redis.Enabled && (c.LoginThrottle.MaxAttempts <= 0 || c.LoginThrottle.WindowMinutes <= 0) {
		return errors.New("login_throttle values must be positive when redis is enabled")
	}
	return nil
}

func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLMinutes) * time.Minute
}

func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLDays) * 24 * time.Hour
}

func (c *Config) ThrottleWindow() time.Duration {
	return time.Duration(c.LoginThrottle.WindowMinutes) * time.Minute
}

// DefaultRole returns the first-login role, or "" when auto-assignment is off.
func (c *Config) DefaultRole() model.Role {
	if c.Auth.DefaultRole == "" {
		return ""
	}
	role, _ := model.ParseRole(c.Auth.DefaultRole)
	return role
}

func (c *Config) SelfAssignableRoles() model.RoleSet {
	set := model.NewRoleSet()
	for _, name := range c.Auth.SelfAssignableRoles {
		if role, err := model.ParseRole(name); err == nil {
			set[role] = struct{}{}
		}
	}
	return set
}
