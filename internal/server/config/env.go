package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables recognized by the server. Token lifetimes are plain
// integers: minutes for the access token, days for the refresh token.
const (
	envAddress         = "ADDRESS"
	envDatabaseURL     = "DATABASE_URL"
	envJWTSecretKey    = "JWT_SECRET_KEY"
	envJWTAlgorithm    = "JWT_ALGORITHM"
	envAccessTTLMin    = "ACCESS_TOKEN_EXPIRE_MINUTES"
	envRefreshTTLDays  = "REFRESH_TOKEN_EXPIRE_DAYS"
	envEnvironmentName = "ENVIRONMENT"
)

// parseEnv overlays Config fields from environment variables. Unset variables
// leave the current value in place; unparsable numbers are ignored the same way.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(envAddress); ok {
		config.EndpointAddr = v
	}
	if v, ok := os.LookupEnv(envDatabaseURL); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(envJWTSecretKey); ok {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv(envJWTAlgorithm); ok {
		config.JWTAlgorithm = v
	}
	if v, ok := os.LookupEnv(envAccessTTLMin); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.AccessTokenTTL = time.Duration(n) * time.Minute
		}
	}
	if v, ok := os.LookupEnv(envRefreshTTLDays); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.RefreshTokenTTL = time.Duration(n) * 24 * time.Hour
		}
	}
	if v, ok := os.LookupEnv(envEnvironmentName); ok {
		config.Environment = v
	}
}
