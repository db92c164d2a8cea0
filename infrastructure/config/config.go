package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AppBaseURL is the public site, used in share pages and email links
	AppBaseURL string

	// AWS configuration
	AWSRegion      string
	DynamoDBTable  string
	FavoritesTable string
	SubsTable      string
	ProposalsTable string

	// GSI names on the main table
	TypeDateIndex   string // type + created_at, newest-first listing
	AuthorDateIndex string // author_normalized + created_at
	TagQuoteIndex   string // tag mappings

	// Messaging
	EventBusName  string
	ImageQueueURL string

	// Storage
	ImagesBucket string
	ExportBucket string

	// Email
	SenderEmail string
	SenderName  string

	// Identity
	UserPoolID string

	// OpenAI
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string
	ImageModel    string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string

	// Authentication
	JWTSecret    string
	JWTIssuer    string
	GatewayAuth  bool // tokens already validated by the API Gateway authorizer
	RatePerMin   int  // anonymous per-IP requests per minute
	UserRatePerMin int

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AppBaseURL:    getEnv("APP_BASE_URL", "https://quote-me.anystupididea.com"),
		AWSRegion:     getEnv("AWS_REGION", "us-east-1"),

		DynamoDBTable:  getEnv("TABLE_NAME", "quotes-optimized"),
		FavoritesTable: getEnv("FAVORITES_TABLE", "quote-favorites"),
		SubsTable:      getEnv("SUBSCRIPTIONS_TABLE", "daily-nugget-subscriptions"),
		ProposalsTable: getEnv("PROPOSALS_TABLE", "quote-proposals"),

		TypeDateIndex:   getEnv("TYPE_DATE_INDEX", "TypeDateIndex"),
		AuthorDateIndex: getEnv("AUTHOR_DATE_INDEX", "AuthorDateIndex"),
		TagQuoteIndex:   getEnv("TAG_QUOTE_INDEX", "TagQuoteIndex"),

		EventBusName:  getEnv("EVENT_BUS_NAME", "quoteme-events"),
		ImageQueueURL: getEnv("IMAGE_QUEUE_URL", ""),

		ImagesBucket: getEnv("QUOTE_IMAGES_BUCKET", ""),
		ExportBucket: getEnv("EXPORT_BUCKET", ""),

		SenderEmail: getEnv("SENDER_EMAIL", ""),
		SenderName:  getEnv("SENDER_NAME", "Quote Me Daily"),

		UserPoolID: getEnv("USER_POOL_ID", ""),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ChatModel:     getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
		ImageModel:    getEnv("OPENAI_IMAGE_MODEL", "gpt-image-1"),

		// Lambda configuration
		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),

		// Authentication
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", ""),
		GatewayAuth:    getEnvBool("GATEWAY_AUTH", false),
		RatePerMin:     getEnvInt("RATE_LIMIT_PER_MIN", 60),
		UserRatePerMin: getEnvInt("USER_RATE_LIMIT_PER_MIN", 120),

		// Logging and features
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.DynamoDBTable == "" {
			return fmt.Errorf("TABLE_NAME is required")
		}
		if !c.GatewayAuth && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production when the gateway authorizer is disabled")
		}
		if c.SenderEmail == "" {
			return fmt.Errorf("SENDER_EMAIL is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
