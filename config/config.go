package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Oracle  OracleConfig  `yaml:"oracle"`
	Index   IndexConfig   `yaml:"index"`
	Archive ArchiveConfig `yaml:"archive"`
	Auth    AuthConfig    `yaml:"auth"`
	Bot     BotConfig     `yaml:"bot"`
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
	Users   []User        `yaml:"users"`
}

type ServerConfig struct {
	Port       int    `yaml:"port"`
	ScratchDir string `yaml:"scratch_dir"` // empty = os.TempDir()
}

type OracleConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	StrictSchema   bool    `yaml:"strict_schema"`
}

type IndexConfig struct {
	Enabled        bool   `yaml:"enabled"`
	QdrantURL      string `yaml:"qdrant_url"`
	Collection     string `yaml:"collection"`
	EmbeddingModel string `yaml:"embedding_model"`
	Dimensions     int    `yaml:"dimensions"`
	SampleContract string `yaml:"sample_contract"`
	SampleInvoice  string `yaml:"sample_invoice"`
	TopK           int    `yaml:"top_k"`
}

type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

type BotConfig struct {
	AppID string `yaml:"app_id"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StoreConfig struct {
	MaxAnalyses int `yaml:"max_analyses"`
}

type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Tenant   string `yaml:"tenant"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Secrets come from the environment when not set in the file
	if cfg.Oracle.APIKey == "" {
		cfg.Oracle.APIKey = firstEnv("OPENAI_API_KEY", "AZURE_OPENAI_API_KEY")
	}
	if cfg.Bot.AppID == "" {
		cfg.Bot.AppID = os.Getenv("MICROSOFT_APP_ID")
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3978
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "gpt-4.1"
	}
	if cfg.Oracle.TimeoutSeconds == 0 {
		cfg.Oracle.TimeoutSeconds = 120
	}
	if cfg.Index.QdrantURL == "" {
		cfg.Index.QdrantURL = "http://localhost:6333"
	}
	if cfg.Index.Collection == "" {
		cfg.Index.Collection = "syncsure_samples"
	}
	if cfg.Index.EmbeddingModel == "" {
		cfg.Index.EmbeddingModel = "text-embedding-3-large"
	}
	if cfg.Index.Dimensions == 0 {
		cfg.Index.Dimensions = 3072
	}
	if cfg.Index.TopK == 0 {
		cfg.Index.TopK = 5
	}
	if cfg.Archive.ExpireDays == 0 {
		cfg.Archive.ExpireDays = 7
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Store.MaxAnalyses == 0 {
		cfg.Store.MaxAnalyses = 100
	}

	return &cfg, nil
}

// AuthEnabled reports whether the API should require login.
func (c *Config) AuthEnabled() bool {
	return len(c.Users) > 0
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
