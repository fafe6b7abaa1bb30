package core

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host               string
		Port               string
		JWTAlgorithm       string
		JWTExpirationDelta time.Duration
		CORSOrigins        []string
	}

	DatabaseConfig struct {
		Engine         string
		Host           string
		Port           string
		User           string
		Password       string
		Name           string
		DisableTLS     bool
		PoolSize       int
		AcquireTimeout time.Duration
	}

	Config struct {
		Env       string // DEV (default) | TEST | PROD
		Debug     bool
		TestMode  bool
		AppName   string
		Build     string
		SecretKey string

		RollbarToken string

		Server   ServerConfig
		Database DatabaseConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// required in DEV; a fresh checkout must not silently run on built-in defaults.
var requiredVars = []string{
	"DATABASE_HOST",
	"DATABASE_USER",
	"DATABASE_PASSWORD",
	"DATABASE_NAME",
	"SECRET_KEY",
}

// Load builds the app Config from the environment, with an optional
// config/.env.<env> file loaded first (ignored if absent).
func Load() (*Config, error) {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Darasa")
	v.SetDefault("build", "develop")
	v.SetDefault("serverHost", "0.0.0.0")
	v.SetDefault("serverPort", "8000")
	v.SetDefault("jwtAlgorithm", "HS256")
	v.SetDefault("jwtExpirationDelta", 30*time.Minute)
	v.SetDefault("corsOrigins", "http://localhost:5000")
	v.SetDefault("databaseEngine", "postgres")
	v.SetDefault("databaseHost", "localhost")
	v.SetDefault("databasePort", "5432")
	v.SetDefault("databaseUser", "")
	v.SetDefault("databasePassword", "")
	v.SetDefault("databaseName", "darasa")
	v.SetDefault("databaseDisableTLS", true)
	v.SetDefault("databasePoolSize", 10)
	v.SetDefault("databaseAcquireTimeout", 5*time.Second)

	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "config.godotenv(%s)", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config.os.Stat(%s)", dotEnvPath)
	}
	v.AutomaticEnv()

	if env == "DEV" {
		if err := checkRequiredVars(env); err != nil {
			return nil, err
		}
	}

	conf := &Config{
		Env:          env,
		Debug:        v.GetBool("debug") && env != "PROD",
		TestMode:     env == "TEST",
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		RollbarToken: v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetString("serverPort"),
			JWTAlgorithm:       v.GetString("jwtAlgorithm"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
			CORSOrigins:        strings.Split(v.GetString("corsOrigins"), ","),
		},
		Database: DatabaseConfig{
			Engine:         v.GetString("databaseEngine"),
			Host:           v.GetString("databaseHost"),
			Port:           v.GetString("databasePort"),
			User:           v.GetString("databaseUser"),
			Password:       v.GetString("databasePassword"),
			Name:           v.GetString("databaseName"),
			DisableTLS:     v.GetBool("databaseDisableTLS"),
			PoolSize:       v.GetInt("databasePoolSize"),
			AcquireTimeout: v.GetDuration("databaseAcquireTimeout"),
		},
	}
	return conf, nil
}

func checkRequiredVars(env string) error {
	var missing []string
	for _, name := range requiredVars {
		if os.Getenv(env+"_"+name) == "" && os.Getenv(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
