package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	OAuth    OAuthConfig    `env:",prefix=OAUTH_"`
	Session  SessionConfig  `env:",prefix=SESSION_"`
	Platform PlatformConfig `env:",prefix=PLATFORM_"`
	Identity IdentityConfig `env:",prefix=IDENTITY_"`
	Security SecurityConfig `env:",prefix="`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type OAuthConfig struct {
	// Issuer is the externally visible base URL, used in the discovery
	// document and as the JWT issuer claim.
	Issuer            string   `env:"ISSUER,default=http://localhost:8080"`
	SigningSecret     string   `env:"SIGNING_SECRET,required"`
	AccessTokenExpiry Duration `env:"ACCESS_TOKEN_EXPIRY,default=1h"`
	AuthCodeExpiry    Duration `env:"AUTH_CODE_EXPIRY,default=10m"`
}

type SessionConfig struct {
	TTL Duration `env:"TTL,default=24h"`
}

type PlatformConfig struct {
	// BaseURL is the root of the downstream platform APIs; per-platform
	// endpoints hang off {BaseURL}/api/{platform}.
	BaseURL        string   `env:"BASE_URL,default=http://localhost:3000"`
	SigningSecret  string   `env:"SIGNING_SECRET,required"`
	DefaultLinkTTL Duration `env:"DEFAULT_LINK_TTL,default=24h"`
	RequestTimeout Duration `env:"REQUEST_TIMEOUT,default=10s"`
}

type IdentityConfig struct {
	// VerifierURL is the external identity-verification service.
	VerifierURL    string   `env:"VERIFIER_URL,default=https://auth.privy.io"`
	AppID          string   `env:"APP_ID,default="`
	AppSecret      string   `env:"APP_SECRET,default="`
	RequestTimeout Duration `env:"REQUEST_TIMEOUT,default=10s"`
}

type SecurityConfig struct {
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	RateLimitRequests int      `env:"RATE_LIMIT_REQUESTS,default=10"`
	RateLimitWindow   Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=*"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization"`
}

// Address returns the Redis connection address.
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables.
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if len(config.OAuth.SigningSecret) < 32 {
		return nil, fmt.Errorf("OAUTH_SIGNING_SECRET must be at least 32 characters long")
	}
	if len(config.Platform.SigningSecret) < 32 {
		return nil, fmt.Errorf("PLATFORM_SIGNING_SECRET must be at least 32 characters long")
	}
	if config.OAuth.SigningSecret == config.Platform.SigningSecret {
		return nil, fmt.Errorf("OAUTH_SIGNING_SECRET and PLATFORM_SIGNING_SECRET must differ")
	}

	return &config, nil
}
