package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AnshRaj112/nutrameter-backend/internal/insights"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	AnalyzerGemini = "gemini"
	AnalyzerOpenAI = "openai"

	defaultJWTSecret = "nutrameter_secret"
)

type Config struct {
	Environment string // ENV: production, development, etc.
	Port        string
	LogLevel    string
	Location    *time.Location // calendar-day boundaries for "today" and date filters

	StoreDriver        string
	MongoURI           string
	MongoDatabase      string
	PostgresURI        string
	RedisURI           string
	StoreTimeout       time.Duration // budget for a durable-store call before falling back
	FallbackMaxRecords int
	DemoSeed           bool

	JWTSecret string
	TokenTTL  time.Duration

	AllowedOrigins []string
	TrustProxy     bool // take client IPs from X-Forwarded-For for rate limiting

	AnalyzerProvider string
	GeminiAPIKey     string
	GeminiModel      string
	OpenAIAPIKey     string
	OpenAIModel      string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	Insights insights.Thresholds
}

// Load reads configuration from defaults, an optional config.yaml and the
// environment, in increasing order of precedence. Call godotenv.Load first so
// a .env file is visible here.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	setDefaults(v)
	v.AutomaticEnv()
	// MONGO_URI is accepted for compatibility with older deployments.
	_ = v.BindEnv("mongodb_uri", "MONGODB_URI", "MONGO_URI")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	loc := time.Local
	if tz := strings.TrimSpace(v.GetString("timezone")); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
		}
		loc = l
	}

	allowedOrigins := parseOrigins(v.GetString("allowed_origins"))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{v.GetString("frontend_url"), v.GetString("frontend_url_2")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	cfg := &Config{
		Environment: strings.ToLower(strings.TrimSpace(v.GetString("env"))),
		Port:        v.GetString("port"),
		LogLevel:    v.GetString("log_level"),
		Location:    loc,

		StoreDriver:        strings.ToLower(strings.TrimSpace(v.GetString("store_driver"))),
		MongoURI:           v.GetString("mongodb_uri"),
		MongoDatabase:      v.GetString("mongodb_database"),
		PostgresURI:        v.GetString("postgres_uri"),
		RedisURI:           v.GetString("redis_uri"),
		StoreTimeout:       v.GetDuration("store_timeout"),
		FallbackMaxRecords: v.GetInt("fallback_max_records"),

		JWTSecret: v.GetString("jwt_secret"),
		TokenTTL:  v.GetDuration("token_ttl"),

		AllowedOrigins: allowedOrigins,
		TrustProxy:     v.GetBool("trust_proxy"),

		AnalyzerProvider: strings.ToLower(strings.TrimSpace(v.GetString("analyzer_provider"))),
		GeminiAPIKey:     v.GetString("gemini_api_key"),
		GeminiModel:      v.GetString("gemini_model"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIModel:      v.GetString("openai_model"),

		CloudinaryName:      v.GetString("cloudinary_cloud_name"),
		CloudinaryAPIKey:    v.GetString("cloudinary_api_key"),
		CloudinaryAPISecret: v.GetString("cloudinary_api_secret"),
		CloudinaryFolder:    v.GetString("cloudinary_folder"),

		Insights: insights.Thresholds{
			CalorieOverRatio:     v.GetFloat64("insights_calorie_over_ratio"),
			CalorieUnderRatio:    v.GetFloat64("insights_calorie_under_ratio"),
			CalorieUnderMinMeals: v.GetInt("insights_calorie_under_min_meals"),
			ProteinCalorieShare:  v.GetFloat64("insights_protein_calorie_share"),
			KcalPerGramProtein:   v.GetFloat64("insights_kcal_per_gram_protein"),
			ProteinLowRatio:      v.GetFloat64("insights_protein_low_ratio"),
			ProteinHighRatio:     v.GetFloat64("insights_protein_high_ratio"),
			SodiumAlertMg:        v.GetFloat64("insights_sodium_alert_mg"),
			SodiumDailyLimitMg:   v.GetFloat64("insights_sodium_daily_limit_mg"),
			HealthHighScore:      v.GetFloat64("insights_health_high_score"),
			HealthLowScore:       v.GetFloat64("insights_health_low_score"),
			ConsistencyHighDays:  v.GetInt("insights_consistency_high_days"),
			ConsistencyLowDays:   v.GetInt("insights_consistency_low_days"),
			MaxAITips:            v.GetInt("insights_max_ai_tips"),
		},
	}

	// The demo login has a published password, so production only seeds it
	// when DEMO_SEED is set explicitly.
	cfg.DemoSeed = !cfg.IsProduction()
	if v.IsSet("demo_seed") {
		cfg.DemoSeed = v.GetBool("demo_seed")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "")

	v.SetDefault("store_driver", StoreMongo)
	v.SetDefault("mongodb_uri", "mongodb://localhost:27017/nutrameter")
	v.SetDefault("mongodb_database", "")
	v.SetDefault("postgres_uri", "postgres://localhost:5432/nutrameter?sslmode=disable")
	v.SetDefault("redis_uri", "")
	v.SetDefault("store_timeout", 3*time.Second)
	v.SetDefault("fallback_max_records", 5000)

	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("token_ttl", 7*24*time.Hour)

	v.SetDefault("allowed_origins", "")
	v.SetDefault("frontend_url", "http://localhost:3000")
	v.SetDefault("frontend_url_2", "")
	v.SetDefault("trust_proxy", false)

	v.SetDefault("analyzer_provider", AnalyzerGemini)
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openai_model", "gpt-4o-mini")

	v.SetDefault("cloudinary_cloud_name", "")
	v.SetDefault("cloudinary_api_key", "")
	v.SetDefault("cloudinary_api_secret", "")
	v.SetDefault("cloudinary_folder", "nutrameter")

	d := insights.DefaultThresholds()
	v.SetDefault("insights_calorie_over_ratio", d.CalorieOverRatio)
	v.SetDefault("insights_calorie_under_ratio", d.CalorieUnderRatio)
	v.SetDefault("insights_calorie_under_min_meals", d.CalorieUnderMinMeals)
	v.SetDefault("insights_protein_calorie_share", d.ProteinCalorieShare)
	v.SetDefault("insights_kcal_per_gram_protein", d.KcalPerGramProtein)
	v.SetDefault("insights_protein_low_ratio", d.ProteinLowRatio)
	v.SetDefault("insights_protein_high_ratio", d.ProteinHighRatio)
	v.SetDefault("insights_sodium_alert_mg", d.SodiumAlertMg)
	v.SetDefault("insights_sodium_daily_limit_mg", d.SodiumDailyLimitMg)
	v.SetDefault("insights_health_high_score", d.HealthHighScore)
	v.SetDefault("insights_health_low_score", d.HealthLowScore)
	v.SetDefault("insights_consistency_high_days", d.ConsistencyHighDays)
	v.SetDefault("insights_consistency_low_days", d.ConsistencyLowDays)
	v.SetDefault("insights_max_ai_tips", d.MaxAITips)
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo, StorePostgres, StoreMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q (want mongo, postgres or memory)", c.StoreDriver)
	}
	switch c.AnalyzerProvider {
	case AnalyzerGemini, AnalyzerOpenAI:
	default:
		return fmt.Errorf("invalid ANALYZER_PROVIDER %q (want gemini or openai)", c.AnalyzerProvider)
	}
	if c.StoreTimeout <= 0 {
		return errors.New("STORE_TIMEOUT must be positive")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.IsProduction() && (c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret) {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	return nil
}

// AnalyzerConfigured reports whether the selected AI provider has a usable key.
func (c *Config) AnalyzerConfigured() bool {
	switch c.AnalyzerProvider {
	case AnalyzerOpenAI:
		return c.OpenAIAPIKey != ""
	default:
		return c.GeminiAPIKey != "" && c.GeminiAPIKey != "your_api_key_here"
	}
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}
