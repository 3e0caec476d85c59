package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Kakao     KakaoConfig
	Registry  RegistryConfig
	Recommend RecommendConfig
	Jobs      JobsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	PoolMin  int
	PoolMax  int
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// KakaoConfig holds credentials and endpoints for the Kakao local API.
// AddressKey authorizes the reverse (coordinate-to-address) endpoint and
// CoordinateKey the forward (address-to-coordinate) endpoint.
type KakaoConfig struct {
	BaseURL       string
	AddressKey    string
	CoordinateKey string
	Timeout       time.Duration
}

// RegistryConfig holds credentials and the endpoint for the public
// building-registry API.
type RegistryConfig struct {
	BaseURL    string
	ServiceKey string
	Timeout    time.Duration
}

// RecommendConfig points at the remote recommendation-scoring service.
type RecommendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// JobsConfig holds batch sizes, run intervals, and spatial-join bounds for
// the scheduled enrichment jobs. Intervals are staggered in deployment config
// so the jobs do not all hit the store at once.
type JobsConfig struct {
	BatchSize         int
	BuildingBatchSize int

	BuildingInterval    time.Duration
	AddressInterval     time.Duration
	ResidentialInterval time.Duration
	FacilityInterval    time.Duration

	ProximityMeters      float64
	BoundingBoxExpansion float64
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "seoulbang")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	v.SetDefault("KAKAO_BASE_URL", "https://dapi.kakao.com")
	v.SetDefault("KAKAO_API_TIMEOUT", "10s")
	v.SetDefault("BUILDING_API_BASE_URL", "http://apis.data.go.kr/1613000/BldRgstHubService/getBrTitleInfo")
	v.SetDefault("BUILDING_API_TIMEOUT", "10s")
	v.SetDefault("RECOMMEND_API_TIMEOUT", "30s")

	v.SetDefault("BATCH_SIZE", 100)
	v.SetDefault("BUILDING_BATCH_SIZE", 50)
	v.SetDefault("BUILDING_JOB_INTERVAL", "24h")
	v.SetDefault("ADDRESS_JOB_INTERVAL", "24h")
	v.SetDefault("RESIDENTIAL_JOB_INTERVAL", "24h")
	v.SetDefault("FACILITY_JOB_INTERVAL", "24h")
	v.SetDefault("PROXIMITY_METERS", 1000.0)
	v.SetDefault("BOUNDING_BOX_EXPANSION", 0.01)

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			PoolMin:  v.GetInt("DB_POOL_MIN"),
			PoolMax:  v.GetInt("DB_POOL_MAX"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Kakao: KakaoConfig{
			BaseURL:       v.GetString("KAKAO_BASE_URL"),
			AddressKey:    v.GetString("KAKAO_ADDRESS_API_KEY"),
			CoordinateKey: v.GetString("KAKAO_COORDINATE_API_KEY"),
			Timeout:       v.GetDuration("KAKAO_API_TIMEOUT"),
		},
		Registry: RegistryConfig{
			BaseURL:    v.GetString("BUILDING_API_BASE_URL"),
			ServiceKey: v.GetString("BUILDING_API_SERVICE_KEY"),
			Timeout:    v.GetDuration("BUILDING_API_TIMEOUT"),
		},
		Recommend: RecommendConfig{
			BaseURL: v.GetString("RECOMMEND_API_URL"),
			Timeout: v.GetDuration("RECOMMEND_API_TIMEOUT"),
		},
		Jobs: JobsConfig{
			BatchSize:            v.GetInt("BATCH_SIZE"),
			BuildingBatchSize:    v.GetInt("BUILDING_BATCH_SIZE"),
			BuildingInterval:     v.GetDuration("BUILDING_JOB_INTERVAL"),
			AddressInterval:      v.GetDuration("ADDRESS_JOB_INTERVAL"),
			ResidentialInterval:  v.GetDuration("RESIDENTIAL_JOB_INTERVAL"),
			FacilityInterval:     v.GetDuration("FACILITY_JOB_INTERVAL"),
			ProximityMeters:      v.GetFloat64("PROXIMITY_METERS"),
			BoundingBoxExpansion: v.GetFloat64("BOUNDING_BOX_EXPANSION"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	// Validate external API config
	if c.Kakao.BaseURL == "" {
		return fmt.Errorf("KAKAO_BASE_URL is required")
	}
	if c.Registry.BaseURL == "" {
		return fmt.Errorf("BUILDING_API_BASE_URL is required")
	}
	if c.Kakao.Timeout <= 0 {
		return fmt.Errorf("KAKAO_API_TIMEOUT must be positive")
	}
	if c.Registry.Timeout <= 0 {
		return fmt.Errorf("BUILDING_API_TIMEOUT must be positive")
	}

	// Validate job config
	if c.Jobs.BatchSize < 1 {
		return fmt.Errorf("BATCH_SIZE must be at least 1")
	}
	if c.Jobs.BuildingBatchSize < 1 {
		return fmt.Errorf("BUILDING_BATCH_SIZE must be at least 1")
	}
	if c.Jobs.ProximityMeters <= 0 {
		return fmt.Errorf("PROXIMITY_METERS must be positive")
	}
	if c.Jobs.BoundingBoxExpansion <= 0 {
		return fmt.Errorf("BOUNDING_BOX_EXPANSION must be positive")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
