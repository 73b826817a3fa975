package configuration

import (
	"fmt"
	"os"
)

type Config struct {
	Database   DatabaseConfig
	MinIO      MinIOConfig
	Server     ServerConfig
	Upload     UploadConfig
	Processing ProcessingConfig
	NATSURL    string
	FFmpegPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MinIOConfig struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	Region     string
	UseSSL     bool
}

type ServerConfig struct {
	Port string
}

type UploadConfig struct {
	Port     string
	BasePath string
}

type ProcessingConfig struct {
	BaseURL string
	APIKey  string
}

func Load() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "scanuser"),
			Password: getEnv("DB_PASSWORD", "scanpassword"),
			DBName:   getEnv("DB_NAME", "scanservice"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		MinIO: MinIOConfig{
			Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
			BucketName: getEnv("MINIO_BUCKET", "scans"),
			Region:     getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:     getEnv("MINIO_USE_SSL", "false") == "true",
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Upload: UploadConfig{
			Port:     getEnv("UPLOAD_PORT", "1080"),
			BasePath: getEnv("UPLOAD_BASE_PATH", "/files/"),
		},
		Processing: ProcessingConfig{
			BaseURL: getEnv("PROCESSING_URL", "http://localhost:3030"),
			APIKey:  getEnv("PROCESSING_API_KEY", ""),
		},
		NATSURL:    getEnv("NATS_URL", "nats://localhost:4222"),
		FFmpegPath: getEnv("FFMPEG_PATH", "ffmpeg"),
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// EndpointURL is the MinIO endpoint with scheme, as the AWS SDK expects it.
func (c *MinIOConfig) EndpointURL() string {
	scheme := "http"
	if c.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, c.Endpoint)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
