package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr string
	DSN  string

	// Object storage (Cloudflare R2 through the S3 API)
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	BucketName      string
	PublicURL       string

	SessionSecret string
	SecureCookies bool
	GoogleKey     string
	GoogleSecret  string
	CallbackURL   string
	AdminRedirect string

	ResendAPIKey string
	MailFrom     string
	MailTo       string

	UpstreamTimeout time.Duration
	UploadWorkers   int
	ImageMaxWidth   int
	ImageQuality    int
	ProcessImages   bool
	Placeholder     string
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{
		Addr:            getenv("ADDR", ":3000"),
		DSN:             os.Getenv("DSN"),
		AccountID:       os.Getenv("ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("ACCESS_KEY_ID"),
		AccessKeySecret: os.Getenv("ACCESS_KEY_SECRET"),
		BucketName:      os.Getenv("BUCKET_NAME"),
		PublicURL:       os.Getenv("PUBLIC_URL"),
		SessionSecret:   os.Getenv("SESSION_SECRET"),
		GoogleKey:       os.Getenv("GOOGLE_KEY"),
		GoogleSecret:    os.Getenv("GOOGLE_SECRET"),
		CallbackURL:     getenv("GOOGLE_CALLBACK_URL", "http://localhost:3000/auth/google/callback"),
		AdminRedirect:   getenv("ADMIN_REDIRECT", "/admin"),
		ResendAPIKey:    os.Getenv("RESEND_API_KEY"),
		MailFrom:        getenv("MAIL_FROM", "Website <website@resend.dev>"),
		MailTo:          os.Getenv("MAIL_TO"),
		Placeholder:     getenv("PLACEHOLDER_IMAGE", "/static/placeholder-car.jpg"),
	}

	var err error
	if cfg.SecureCookies, err = getBool("SECURE_COOKIES", false); err != nil {
		return nil, err
	}
	if cfg.ProcessImages, err = getBool("PROCESS_IMAGES", false); err != nil {
		return nil, err
	}
	if cfg.UpstreamTimeout, err = getDuration("UPSTREAM_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.UploadWorkers, err = getInt("UPLOAD_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.ImageMaxWidth, err = getInt("IMAGE_MAX_WIDTH", 1600); err != nil {
		return nil, err
	}
	if cfg.ImageQuality, err = getInt("IMAGE_QUALITY", 82); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports missing settings. In dev mode only the session secret is
// required; storage, database and mail are replaced by local stand-ins.
func (c *Config) Validate(dev bool) error {
	var missing []string
	need := func(name, v string) {
		if v == "" {
			missing = append(missing, name)
		}
	}
	need("SESSION_SECRET", c.SessionSecret)
	if !dev {
		need("DSN", c.DSN)
		need("ACCOUNT_ID", c.AccountID)
		need("ACCESS_KEY_ID", c.AccessKeyID)
		need("ACCESS_KEY_SECRET", c.AccessKeySecret)
		need("BUCKET_NAME", c.BucketName)
		need("PUBLIC_URL", c.PublicURL)
		need("RESEND_API_KEY", c.ResendAPIKey)
		need("MAIL_TO", c.MailTo)
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	if c.PublicURL != "" && strings.Count(c.PublicURL, "%s") != 1 {
		return fmt.Errorf("config: PUBLIC_URL must contain exactly one %%s, got %q", c.PublicURL)
	}
	if len(c.SessionSecret) < 32 {
		return errors.New("config: SESSION_SECRET must be at least 32 characters")
	}
	if c.UploadWorkers < 1 {
		return errors.New("config: UPLOAD_WORKERS must be at least 1")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
