package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	DBUrl       string
	FrontendURL string
	// Admin login
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string // bcrypt hash, preferred over AdminPassword when set
	JWTSecret         string
	JWTTTL            time.Duration
	CookieSecure      bool
	AuditPersist      bool // also store security events in Postgres
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	NotifyChannel        string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	RateLimitUploadThreshold int
	// Object storage
	StorageProvider string // s3, gdrive or none
	S3              S3Config
	GoogleDrive     GoogleDriveConfig
	// Screening
	PDFExtractTimeout time.Duration
	MaxUploadMB       int
	ShopifyRuleset    string
	RoleRulesFile     string
	// Malware scanning, disabled when ClamAVAddress is empty
	ClamAVAddress string
	ClamAVTimeout time.Duration
}

// S3Config configures S3-compatible storage (AWS or Wasabi).
type S3Config struct {
	Provider        string // aws or wasabi
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	WasabiEndpoint  string
	Folder          string
}

// GoogleDriveConfig configures uploads to a shared Drive folder through a
// service account.
type GoogleDriveConfig struct {
	CredentialsJSON string
	FolderID        string
}

func LoadConfig() (*Config, error) {
	// .env is only present locally; production relies on real env vars.
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		DBUrl:       getEnv("DATABASE_URL", ""),
		FrontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		// Admin login
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getEnvDuration("JWT_TTL", 24*time.Hour),
		CookieSecure:      getEnvBool("COOKIE_SECURE", true),
		AuditPersist:      getEnvBool("AUDIT_PERSIST", true),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		NotifyChannel:        getEnv("NOTIFY_CHANNEL", "cv:new"),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),   // 10 login attempts per window
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		RateLimitUploadThreshold: getEnvInt("RATE_LIMIT_UPLOAD_THRESHOLD", 30),  // 30 webhook calls per window
		// Object storage
		StorageProvider: strings.ToLower(getEnv("STORAGE_PROVIDER", "none")),
		S3: S3Config{
			Provider:        strings.ToLower(getEnv("S3_PROVIDER", "aws")),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			WasabiEndpoint:  getEnv("WASABI_ENDPOINT", ""),
			Folder:          strings.Trim(getEnv("S3_FOLDER", "cvs"), "/"),
		},
		GoogleDrive: GoogleDriveConfig{
			CredentialsJSON: getEnv("GOOGLE_DRIVE_CREDENTIALS_JSON", ""),
			FolderID:        getEnv("GOOGLE_DRIVE_FOLDER_ID", ""),
		},
		// Screening
		PDFExtractTimeout: getEnvDuration("PDF_EXTRACT_TIMEOUT", 20*time.Second),
		MaxUploadMB:       getEnvInt("MAX_UPLOAD_MB", 10),
		ShopifyRuleset:    strings.ToLower(getEnv("SHOPIFY_RULESET", "strict")),
		RoleRulesFile:     getEnv("ROLE_RULES_FILE", ""),
		// Malware scanning
		ClamAVAddress: getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout: getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}

	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting and notifications will stay in-process.")
	}

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is missing. Admin endpoints will reject every token.")
	}

	if cfg.AdminEmail == "" || (cfg.AdminPassword == "" && cfg.AdminPasswordHash == "") {
		log.Println("WARNING: Admin credentials not configured. Login will be unavailable.")
	}

	return cfg, nil
}

// MaxUploadBytes returns the webhook upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("30s") or a bare number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
