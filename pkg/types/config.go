package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	DatabaseSchema  string `envconfig:"DATABASE_SCHEMA" default:"facilities"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"30"`

	// Auth. The identity provider is external; the engine only verifies tokens.
	AuthDisabled bool   `envconfig:"AUTH_DISABLED" default:"false"`
	JWKSURL      string `envconfig:"JWKS_URL"`
	CookieName   string `envconfig:"SESSION_COOKIE_NAME" default:"access_token"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes

	// Report artifacts
	ArtifactBackend  string `envconfig:"ARTIFACT_BACKEND" default:"s3"` // s3, supabase, memory
	S3Bucket         string `envconfig:"S3_BUCKET"`
	SupabaseProject  string `envconfig:"SUPABASE_PROJECT_ID"`
	SupabaseAPIKey   string `envconfig:"SUPABASE_API_KEY"`
	SupabaseBucket   string `envconfig:"SUPABASE_BUCKET" default:"assessment-reports"`
	RenderTimeoutSec uint   `envconfig:"RENDER_TIMEOUT_SEC" default:"20"`

	// Generate the report as soon as an assessment completes
	AutoGenerateReport bool `envconfig:"AUTO_GENERATE_REPORT" default:"true"`

	// Domain events
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"assessment.status"`
}
