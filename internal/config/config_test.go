package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	// テスト実行ディレクトリの.envを読まないよう存在しないパスを指定する
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DATABASE", "infectados")
	t.Setenv("JWT_SECRET", "test-jwt-secret")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MongoURI != "mongodb://localhost:27017" {
		t.Errorf("MongoURI = %q, want %q", cfg.MongoURI, "mongodb://localhost:27017")
	}
	if cfg.MongoDatabase != "infectados" {
		t.Errorf("MongoDatabase = %q, want %q", cfg.MongoDatabase, "infectados")
	}
	if cfg.JWTSecret != "test-jwt-secret" {
		t.Errorf("JWTSecret = %q, want %q", cfg.JWTSecret, "test-jwt-secret")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MongoTimeout != 10*time.Second {
		t.Errorf("MongoTimeout = %v, want %v", cfg.MongoTimeout, 10*time.Second)
	}
	if cfg.JWTIssuer != "infectados-api" || cfg.JWTAudience != "infectados-api" {
		t.Errorf("JWTIssuer/Audience = %q/%q, want infectados-api", cfg.JWTIssuer, cfg.JWTAudience)
	}
	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want %v", cfg.TokenTTL, 2*time.Hour)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want 10", cfg.BcryptCost)
	}
	if cfg.RateLimitGeneral != 120 {
		t.Errorf("RateLimitGeneral = %d, want 120", cfg.RateLimitGeneral)
	}
	if cfg.RateLimitAuth != 10 {
		t.Errorf("RateLimitAuth = %d, want 10", cfg.RateLimitAuth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.TrustProxyHeaders {
		t.Error("TrustProxyHeaders = true, want false")
	}
	if cfg.CORSAllowedOrigin != "http://localhost:3000" {
		t.Errorf("CORSAllowedOrigin = %q, want http://localhost:3000", cfg.CORSAllowedOrigin)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("BCRYPT_COST", "12")
	t.Setenv("RATE_LIMIT_AUTH", "3")
	t.Setenv("TRUST_PROXY_HEADERS", "true")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost = %d, want 12", cfg.BcryptCost)
	}
	if cfg.RateLimitAuth != 3 {
		t.Errorf("RateLimitAuth = %d, want 3", cfg.RateLimitAuth)
	}
	if !cfg.TrustProxyHeaders {
		t.Error("TrustProxyHeaders = false, want true")
	}
	if cfg.ServerPort != "9090" {
		t.Errorf("ServerPort = %q, want 9090", cfg.ServerPort)
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("TOKEN_TTL", "forever")
	t.Setenv("BCRYPT_COST", "high")
	t.Setenv("TRUST_PROXY_HEADERS", "maybe")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want default", cfg.TokenTTL)
	}
	if cfg.BcryptCost != 10 {
		t.Errorf("BcryptCost = %d, want default", cfg.BcryptCost)
	}
	if cfg.TrustProxyHeaders {
		t.Error("TrustProxyHeaders = true, want default false")
	}
}

func TestLoad_MissingRequiredVars_ListsAll(t *testing.T) {
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("MONGO_URI", "")
	t.Setenv("MONGO_DATABASE", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	for _, key := range []string{"MONGO_URI", "MONGO_DATABASE", "JWT_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

// .envファイルの値が読み込まれ、既存の環境変数は上書きされないことを検証
func TestLoad_ReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "MONGO_URI=mongodb://from-file:27017\nMONGO_DATABASE=from_file\nJWT_SECRET=file-secret\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("ENV_FILE", path)
	t.Setenv("MONGO_DATABASE", "from_env")
	// t.Setenvで登録しておくことで、godotenvが設定した値もテスト終了時に元へ戻る
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("MONGO_URI")
	os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.MongoURI != "mongodb://from-file:27017" {
		t.Errorf("MongoURI = %q, want value from file", cfg.MongoURI)
	}
	if cfg.MongoDatabase != "from_env" {
		t.Errorf("MongoDatabase = %q, want existing env value", cfg.MongoDatabase)
	}
	if cfg.JWTSecret != "file-secret" {
		t.Errorf("JWTSecret = %q, want value from file", cfg.JWTSecret)
	}
}
