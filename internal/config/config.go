package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Storage     StorageConfig     `yaml:"storage"`
	Cluster     ClusterConfig     `yaml:"cluster"`
	Geolocation GeolocationConfig `yaml:"geolocation"`
	AWS         AWSConfig         `yaml:"aws"`
	APNS        APNSConfig        `yaml:"apns"`
	JWT         JWTConfig         `yaml:"jwt"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// StorageConfig selects where memories, users and friendships live
type StorageConfig struct {
	Driver   string `yaml:"driver"` // "memory" or "postgres"
	SeedFile string `yaml:"seed_file"`
}

// ClusterConfig holds clustering and nearby lookup settings
type ClusterConfig struct {
	ThresholdMeters    float64 `yaml:"threshold_meters"`
	NearbyRadiusMeters float64 `yaml:"nearby_radius_meters"`
	AreaResolution     int     `yaml:"area_resolution"`
}

// GeolocationConfig configures the server-side location provider
type GeolocationConfig struct {
	Mode           string  `yaml:"mode"` // "static" or "simulated"
	Latitude       float64 `yaml:"latitude"`
	Longitude      float64 `yaml:"longitude"`
	AccuracyMeters float64 `yaml:"accuracy_meters"`
}

// AWSConfig holds AWS configuration
type AWSConfig struct {
	Region    string `yaml:"region"`
	S3Bucket  string `yaml:"s3_bucket"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Endpoint  string `yaml:"endpoint"`
}

// APNSConfig holds push notification configuration; empty CertFile disables push
type APNSConfig struct {
	CertFile     string `yaml:"cert_file"`
	CertPassword string `yaml:"cert_password"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "memorymap",
			DBName:  "memorymap",
			SSLMode: "disable",
		},
		Storage: StorageConfig{Driver: "memory"},
		Cluster: ClusterConfig{
			ThresholdMeters:    30,
			NearbyRadiusMeters: 5000,
			AreaResolution:     7,
		},
		Geolocation: GeolocationConfig{
			Mode:           "static",
			Latitude:       -36.8485,
			Longitude:      174.7633,
			AccuracyMeters: 50,
		},
		AWS: AWSConfig{Region: "us-east-1"},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads configuration from a YAML file on top of the defaults. A missing
// file is not an error. Variables from a .env file next to the working
// directory, and then the process environment, override file values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	strVars := map[string]*string{
		"MEMORYMAP_DB_HOST":     &c.Database.Host,
		"MEMORYMAP_DB_USER":     &c.Database.User,
		"MEMORYMAP_DB_PASSWORD": &c.Database.Password,
		"MEMORYMAP_DB_NAME":     &c.Database.DBName,
		"MEMORYMAP_STORAGE":     &c.Storage.Driver,
		"MEMORYMAP_SEED_FILE":   &c.Storage.SeedFile,
		"MEMORYMAP_JWT_SECRET":  &c.JWT.Secret,
		"MEMORYMAP_LOG_LEVEL":   &c.Log.Level,
		"AWS_REGION":            &c.AWS.Region,
		"MEMORYMAP_S3_BUCKET":   &c.AWS.S3Bucket,
	}
	for key, dst := range strVars {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("MEMORYMAP_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid MEMORYMAP_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v, ok := os.LookupEnv("MEMORYMAP_CLUSTER_THRESHOLD"); ok {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid MEMORYMAP_CLUSTER_THRESHOLD %q: %w", v, err)
		}
		c.Cluster.ThresholdMeters = threshold
	}
	return nil
}

// Validate checks values the application cannot start without
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Geolocation.Mode {
	case "static", "simulated":
	default:
		return fmt.Errorf("unknown geolocation mode %q", c.Geolocation.Mode)
	}
	if c.Cluster.ThresholdMeters <= 0 {
		return fmt.Errorf("cluster.threshold_meters must be positive, got %v", c.Cluster.ThresholdMeters)
	}
	if c.Cluster.AreaResolution < 0 || c.Cluster.AreaResolution > 15 {
		return fmt.Errorf("cluster.area_resolution must be between 0 and 15, got %d", c.Cluster.AreaResolution)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
