package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("XAI_API_KEY", "")
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("expected memory store, got %q", cfg.StoreDriver)
	}
	if cfg.AI.Model != "grok-2-latest" {
		t.Fatalf("unexpected model %q", cfg.AI.Model)
	}
	if cfg.AI.BaseURL != "https://api.x.ai/v1" {
		t.Fatalf("unexpected base url %q", cfg.AI.BaseURL)
	}
	if cfg.RAG.Configured() {
		t.Fatalf("rag should not be configured without a project id")
	}
	if cfg.RAG.Location != "us-central1" || cfg.RAG.ChunkSize != 1024 || cfg.RAG.ChunkOverlap != 200 {
		t.Fatalf("unexpected rag defaults: %+v", cfg.RAG)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TZ", "UTC")
	t.Setenv("STORE_DRIVER", "MONGO")
	t.Setenv("MONGO_URI", "mongodb://db:27017/sales/extra")
	t.Setenv("MONGO_DB", "")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("GOOGLE_CLOUD_PROJECT_ID", "demo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.StoreDriver != StoreMongo {
		t.Fatalf("expected mongo store, got %q", cfg.StoreDriver)
	}
	if cfg.MongoDB != "sales" {
		t.Fatalf("expected db from uri, got %q", cfg.MongoDB)
	}
	if !cfg.CookieSecure {
		t.Fatalf("expected secure cookies")
	}
	if !cfg.RAG.Configured() {
		t.Fatalf("expected rag configured")
	}
}

func TestMongoDBFromURI(t *testing.T) {
	if got := mongoDBFromURI("mongodb://localhost:27017"); got != "" {
		t.Fatalf("expected empty db, got %q", got)
	}
	if got := mongoDBFromURI("mongodb+srv://u:p@cluster/app?retryWrites=true"); got != "app" {
		t.Fatalf("expected app, got %q", got)
	}
}
