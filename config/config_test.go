package config

import (
	"os"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	configContent := `
server:
  port: 9090
oracle:
  base_url: "https://oracle.test/v1"
  api_key: "test-key"
  model: "gpt-4.1"
  timeout_seconds: 30
  strict_schema: true
index:
  enabled: true
  qdrant_url: "http://localhost:7333"
  collection: "test-samples"
  sample_contract: "data/contract.pdf"
  sample_invoice: "data/invoice.pdf"
archive:
  enabled: true
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "test-bucket"
  expire_days: 14
auth:
  jwt_secret: "test-secret"
  token_expire_hours: 48
log:
  level: "debug"
  format: "json"
store:
  max_analyses: 50
users:
  - username: "testuser"
    password: "testpass"
    tenant: "testtenant"
`
	cfg, err := Load(writeConfig(t, configContent))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Oracle.BaseURL != "https://oracle.test/v1" {
		t.Errorf("Expected oracle base URL, got %s", cfg.Oracle.BaseURL)
	}
	if cfg.Oracle.APIKey != "test-key" {
		t.Errorf("Expected API key from file, got %s", cfg.Oracle.APIKey)
	}
	if !cfg.Oracle.StrictSchema {
		t.Error("Expected strict_schema true")
	}
	if cfg.Index.Collection != "test-samples" {
		t.Errorf("Expected collection test-samples, got %s", cfg.Index.Collection)
	}
	if cfg.Archive.Bucket != "test-bucket" {
		t.Errorf("Expected bucket test-bucket, got %s", cfg.Archive.Bucket)
	}
	if cfg.Auth.TokenExpireHours != 48 {
		t.Errorf("Expected 48 token expire hours, got %d", cfg.Auth.TokenExpireHours)
	}
	if cfg.Store.MaxAnalyses != 50 {
		t.Errorf("Expected max_analyses 50, got %d", cfg.Store.MaxAnalyses)
	}
	if !cfg.AuthEnabled() {
		t.Error("Expected auth enabled with users configured")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  port: 0\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 3978 {
		t.Errorf("Expected default port 3978, got %d", cfg.Server.Port)
	}
	if cfg.Oracle.Model != "gpt-4.1" {
		t.Errorf("Expected default model gpt-4.1, got %s", cfg.Oracle.Model)
	}
	if cfg.Oracle.TimeoutSeconds != 120 {
		t.Errorf("Expected default timeout 120, got %d", cfg.Oracle.TimeoutSeconds)
	}
	if cfg.Index.QdrantURL != "http://localhost:6333" {
		t.Errorf("Expected default qdrant URL, got %s", cfg.Index.QdrantURL)
	}
	if cfg.Index.Dimensions != 3072 {
		t.Errorf("Expected default dimensions 3072, got %d", cfg.Index.Dimensions)
	}
	if cfg.Index.TopK != 5 {
		t.Errorf("Expected default top_k 5, got %d", cfg.Index.TopK)
	}
	if cfg.Store.MaxAnalyses != 100 {
		t.Errorf("Expected default max_analyses 100, got %d", cfg.Store.MaxAnalyses)
	}
	if cfg.AuthEnabled() {
		t.Error("Expected auth disabled with no users")
	}
}

func TestLoadAPIKeyFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	t.Setenv("AZURE_OPENAI_API_KEY", "azure-key")

	cfg, err := Load(writeConfig(t, "oracle:\n  model: gpt-4.1\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Oracle.APIKey != "env-key" {
		t.Errorf("Expected API key from OPENAI_API_KEY, got %s", cfg.Oracle.APIKey)
	}

	t.Setenv("OPENAI_API_KEY", "")
	cfg, err = Load(writeConfig(t, "oracle:\n  model: gpt-4.1\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Oracle.APIKey != "azure-key" {
		t.Errorf("Expected fallback to AZURE_OPENAI_API_KEY, got %s", cfg.Oracle.APIKey)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestFindUser(t *testing.T) {
	cfg := &Config{
		Users: []User{
			{Username: "alice", Password: "pw1", Tenant: "t1"},
			{Username: "bob", Password: "pw2", Tenant: "t2"},
		},
	}

	user := cfg.FindUser("bob")
	if user == nil || user.Tenant != "t2" {
		t.Errorf("Expected bob in tenant t2, got %+v", user)
	}

	if cfg.FindUser("carol") != nil {
		t.Error("Expected nil for unknown user")
	}
}
