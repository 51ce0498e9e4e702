package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Backend selectors for the client composition.
const (
	BackendGraphQL = "graphql"
	BackendMock    = "mock"
)

type Config struct {
	LOG_LEVEL string

	// Client side.
	BACKEND     string // "graphql" or "mock"
	GRAPHQL_URL string
	REFRESH_URL string
	UPLOAD_URL  string
	TOKEN_FILE  string

	// Dev server side.
	LISTEN_ADDR    string
	PUBLIC_URL     string
	DATABASE_DSN   string // postgres DSN; empty means sqlite
	SQLITE_PATH    string
	JWT_SECRET     string
	REFRESH_SECRET string
	UPLOAD_DIR     string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	ES_INDEX       string
	KAFKA_ADDRESS  string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		LOG_LEVEL:      getenv("LOG_LEVEL", "info"),
		BACKEND:        getenv("BACKEND", BackendGraphQL),
		GRAPHQL_URL:    getenv("GRAPHQL_URL", "http://localhost:3000/graphql"),
		REFRESH_URL:    getenv("REFRESH_URL", "http://localhost:3000/auth/refresh-token"),
		UPLOAD_URL:     getenv("UPLOAD_URL", "http://localhost:3000/uploads"),
		TOKEN_FILE:     getenv("TOKEN_FILE", ".storefront-tokens.json"),
		LISTEN_ADDR:    getenv("LISTEN_ADDR", ":3000"),
		PUBLIC_URL:     getenv("PUBLIC_URL", "http://localhost:3000"),
		DATABASE_DSN:   os.Getenv("DATABASE_DSN"),
		SQLITE_PATH:    getenv("SQLITE_PATH", "devserver.db"),
		JWT_SECRET:     getenv("JWT_SECRET", "dev-access-secret"),
		REFRESH_SECRET: getenv("REFRESH_SECRET", "dev-refresh-secret"),
		UPLOAD_DIR:     getenv("UPLOAD_DIR", "uploads"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		ES_INDEX:       getenv("ES_INDEX", "products"),
		KAFKA_ADDRESS:  os.Getenv("KAFKA_ADDRESS"),
	}

	return config, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
