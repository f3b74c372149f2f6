// Package config loads application configuration from environment
// variables.
package config

import (
	"log"
	"os"
	"strconv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreFile  = "file"
	StoreMySQL = "mysql"
)

// Config holds all runtime configuration values.  Each field corresponds
// to an environment variable.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	StoreDriver   string // snapshot store backend: "file" or "mysql"
	DataDir       string // directory for the JSON snapshots when using the file store
	DBUser        string // database username (mysql store only)
	DBPass        string // database password (optional)
	DBHost        string // database host address
	DBPort        string // database port number
	DBName        string // database name
	JWTSecret     string // secret used to sign admin JWTs
	AccessTTLMin  int    // admin access token time-to-live in minutes
	AdminUser     string // admin login name
	AdminPassHash string // bcrypt hash of the admin password
	AMQPURL       string // RabbitMQ URL; empty disables event publishing
}

// Load reads configuration from environment variables.  Required
// variables are enforced by must() and missing values cause the program
// to exit with a fatal log message.  The database block is only required
// when the MySQL store is selected.
func Load() Config {
	cfg := Config{
		Env:           must("APP_ENV"),
		Port:          must("APP_PORT"),
		StoreDriver:   envStr("STORE_DRIVER", StoreFile),
		DataDir:       envStr("DATA_DIR", "data"),
		DBPass:        os.Getenv("DB_PASS"),
		JWTSecret:     must("JWT_SECRET"),
		AccessTTLMin:  mustInt("ACCESS_TOKEN_TTL_MIN"),
		AdminUser:     must("ADMIN_USER"),
		AdminPassHash: must("ADMIN_PASSWORD_HASH"),
		AMQPURL:       os.Getenv("RABBITMQ_URL"),
	}
	if cfg.AMQPURL == "" {
		cfg.AMQPURL = os.Getenv("AMQP_URL")
	}
	if cfg.StoreDriver == StoreMySQL {
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// BcryptCost is the cost used when hashing an admin password with the
// -hash-admin-password flag.  It is optional; the default of 12 is
// fine for an interactive login.
func BcryptCost() int {
	return envInt("BCRYPT_COST", 12)
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and
// exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an
// integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
