package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"kos-backend-trusted/internal/domain"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Log       LogConfig       `yaml:"log"`
	Business  BusinessConfig  `yaml:"business"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Inventory []RoomConfig    `yaml:"inventory"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host            string `yaml:"host"`
	HTTPPort        int    `yaml:"http_port"`
	GRPCPort        int    `yaml:"grpc_port"`
	ShutdownTimeout int    `yaml:"shutdown_timeout_seconds"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
	Database     string `yaml:"database"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// StorageConfig selects the repository backend
type StorageConfig struct {
	Driver string `yaml:"driver"` // "memory" or "postgres"
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BusinessConfig holds property-wide rules.
type BusinessConfig struct {
	// Timezone decides which calendar day "today" is.
	Timezone      string `yaml:"timezone"`
	UpfrontMethod string `yaml:"upfront_method"`
}

// SchedulerConfig contains cron schedule settings (with seconds), evaluated in
// the business timezone.
type SchedulerConfig struct {
	PromoteDueBookings string `yaml:"promote_due_bookings"`
	OpenMonthlyCharges string `yaml:"open_monthly_charges"`
	ReportOverdueStays string `yaml:"report_overdue_stays"`
}

// RoomConfig describes one room of the property's fixed inventory.
type RoomConfig struct {
	Number     string   `yaml:"number"`
	Category   string   `yaml:"category"`
	BaseRate   int64    `yaml:"base_rate"`
	Floor      int32    `yaml:"floor"`
	Facilities []string `yaml:"facilities"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.HTTPPort)
	}
	if val := os.Getenv("GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}

	// Storage
	if val := os.Getenv("STORAGE_DRIVER"); val != "" {
		c.Storage.Driver = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Business
	if val := os.Getenv("BUSINESS_TIMEZONE"); val != "" {
		c.Business.Timezone = val
	}
}

// Validate checks if the configuration is valid and fills in defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.HTTPPort < 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http port: %d", c.Server.HTTPPort)
	}
	// A zero gRPC port disables the gRPC listener.
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.Server.GRPCPort)
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}

	// Storage validation
	c.Storage.Driver = strings.ToLower(c.Storage.Driver)
	switch c.Storage.Driver {
	case "":
		c.Storage.Driver = StorageMemory
	case StorageMemory:
	case StoragePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.Port == 0 {
			c.Database.Port = 5432
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown storage driver: %q", c.Storage.Driver)
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	// Business defaults
	if c.Business.Timezone == "" {
		c.Business.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("invalid business timezone %q: %w", c.Business.Timezone, err)
	}
	if c.Business.UpfrontMethod == "" {
		c.Business.UpfrontMethod = domain.PaymentMethodUpfront
	}

	// Scheduler defaults
	if c.Scheduler.PromoteDueBookings == "" {
		c.Scheduler.PromoteDueBookings = "0 5 0 * * *" // 00:05 daily
	}
	if c.Scheduler.OpenMonthlyCharges == "" {
		c.Scheduler.OpenMonthlyCharges = "0 0 1 1 * *" // 1st of month at 01:00
	}
	if c.Scheduler.ReportOverdueStays == "" {
		c.Scheduler.ReportOverdueStays = "0 0 13 * * *" // daily at 13:00
	}

	// Inventory validation
	seen := make(map[string]bool, len(c.Inventory))
	for i, room := range c.Inventory {
		if room.Number == "" {
			return fmt.Errorf("inventory[%d]: room number is required", i)
		}
		if seen[room.Number] {
			return fmt.Errorf("inventory[%d]: duplicate room number %q", i, room.Number)
		}
		seen[room.Number] = true
		if !domain.RoomCategory(room.Category).Valid() {
			return fmt.Errorf("inventory[%d]: invalid category %q", i, room.Category)
		}
		if room.BaseRate <= 0 {
			return fmt.Errorf("inventory[%d]: base rate must be positive", i)
		}
	}

	return nil
}

// Location returns the business timezone. Validate must have succeeded.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetHTTPAddress returns the HTTP listen address
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}

// GetGRPCAddress returns the gRPC listen address
func (c *Config) GetGRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// Rooms converts the configured inventory into domain rooms without ids.
func (c *Config) Rooms() []domain.Room {
	rooms := make([]domain.Room, 0, len(c.Inventory))
	for _, rc := range c.Inventory {
		floor := rc.Floor
		if floor == 0 {
			floor = 1
		}
		rooms = append(rooms, domain.Room{
			Number:     rc.Number,
			Category:   domain.RoomCategory(rc.Category),
			BaseRate:   rc.BaseRate,
			Floor:      floor,
			Facilities: append([]string(nil), rc.Facilities...),
		})
	}
	return rooms
}
