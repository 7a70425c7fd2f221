package config

import "testing"

func TestValidate_MissingDataDir(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing data_dir")
	}
}

func TestValidate_InvalidLoggingLevel(t *testing.T) {
	cfg := Config{DataDir: t.TempDir(), Logging: LoggingConfig{Level: "verbose"}}
	cfg.Schema.PersistenceIntervalSeconds = 1
	cfg.Index.RefreshIntervalMillis = 500

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid logging level")
	}
}

func TestValidate_ValidLoggingLevels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error"} {
		t.Run("level="+level, func(t *testing.T) {
			cfg := Config{DataDir: t.TempDir(), Logging: LoggingConfig{Level: level}}
			cfg.Schema.PersistenceIntervalSeconds = 1
			cfg.Index.RefreshIntervalMillis = 500

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid level %q: %v", level, err)
			}
		})
	}
}

func TestValidate_NonPositiveIntervals(t *testing.T) {
	base := Config{DataDir: t.TempDir()}
	base.Schema.PersistenceIntervalSeconds = 1
	base.Index.RefreshIntervalMillis = 500

	withBadSchema := base
	withBadSchema.Schema.PersistenceIntervalSeconds = 0
	if err := withBadSchema.Validate(); err == nil {
		t.Fatal("expected error for non-positive schema persistence interval")
	}

	withBadIndex := base
	withBadIndex.Index.RefreshIntervalMillis = 0
	if err := withBadIndex.Validate(); err == nil {
		t.Fatal("expected error for non-positive refresh interval")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Schema.PersistenceIntervalSeconds != 1.0 {
		t.Errorf("expected PersistenceIntervalSeconds=1.0, got %f", cfg.Schema.PersistenceIntervalSeconds)
	}
	if cfg.Index.RefreshIntervalMillis != 500 {
		t.Errorf("expected RefreshIntervalMillis=500, got %d", cfg.Index.RefreshIntervalMillis)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected Level=info, got %q", cfg.Logging.Level)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Schema:  SchemaConfig{PersistenceIntervalSeconds: 5},
		Index:   IndexConfig{RefreshIntervalMillis: 1000},
		Logging: LoggingConfig{Level: "debug"},
	}
	cfg.ApplyDefaults()

	if cfg.Schema.PersistenceIntervalSeconds != 5 {
		t.Errorf("expected PersistenceIntervalSeconds=5, got %f", cfg.Schema.PersistenceIntervalSeconds)
	}
	if cfg.Index.RefreshIntervalMillis != 1000 {
		t.Errorf("expected RefreshIntervalMillis=1000, got %d", cfg.Index.RefreshIntervalMillis)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected Level=debug, got %q", cfg.Logging.Level)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DOCUDEX_DATA_DIR", "/tmp/docudex")

	in := []byte("data_dir: ${DOCUDEX_DATA_DIR}\nlogging:\n  level: ${DOCUDEX_LOG_LEVEL:-info}\n")
	out := string(expandEnvVars(in))

	want := "data_dir: /tmp/docudex\nlogging:\n  level: info\n"
	if out != want {
		t.Errorf("expandEnvVars mismatch:\ngot:  %q\nwant: %q", out, want)
	}
}
