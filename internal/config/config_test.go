package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.toml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAI.ChatModel != "gpt-4" {
		t.Fatalf("unexpected default chat model: %q", cfg.OpenAI.ChatModel)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Fatalf("unexpected default temperature: %v", cfg.OpenAI.Temperature)
	}
	if cfg.Ingest.ChunkSize != 1000 || cfg.Ingest.ChunkOverlap != 200 {
		t.Fatalf("unexpected default chunking: %+v", cfg.Ingest)
	}
	if cfg.HTTPAddr() != "0.0.0.0:8080" {
		t.Fatalf("unexpected default addr: %q", cfg.HTTPAddr())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.toml")
	t.Setenv("OPENAI_CHAT_MODEL", "gpt-4o-mini")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")
	t.Setenv("PINECONE_TOP_K", "8")
	t.Setenv("JWT_EXPIRE_HOUR", "24")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAI.ChatModel != "gpt-4o-mini" {
		t.Fatalf("chat model override not applied: %q", cfg.OpenAI.ChatModel)
	}
	if cfg.OpenAI.Temperature != 0.2 {
		t.Fatalf("temperature override not applied: %v", cfg.OpenAI.Temperature)
	}
	if cfg.Pinecone.TopK != 8 {
		t.Fatalf("top_k override not applied: %d", cfg.Pinecone.TopK)
	}
	if cfg.Auth.JWTExpireHour != 24 {
		t.Fatalf("jwt expiry override not applied: %d", cfg.Auth.JWTExpireHour)
	}
}

func TestLoadEnvOverridesIgnoreMalformedNumbers(t *testing.T) {
	t.Setenv("CONFIG_FILE", "testdata/does-not-exist.toml")
	t.Setenv("OPENAI_TEMPERATURE", "warm")
	t.Setenv("PINECONE_TOP_K", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.OpenAI.Temperature != 0.7 {
		t.Fatalf("malformed temperature should keep the default, got %v", cfg.OpenAI.Temperature)
	}
	if cfg.Pinecone.TopK != 5 {
		t.Fatalf("malformed top_k should keep the default, got %d", cfg.Pinecone.TopK)
	}
}
