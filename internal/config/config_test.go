package config

import (
	"os"
	"testing"
)

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 0},
		Vectors: VectorsConfig{Path: "glove/glove.6B.300d.txt"},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingVectorsPath(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 4001},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing vectors.path")
	}
}

func TestValidate_DefaultTopNAboveMax(t *testing.T) {
	cfg := Config{
		HTTP:    HTTPConfig{Port: 4001},
		Vectors: VectorsConfig{Path: "vectors.txt"},
		Query:   QueryConfig{DefaultTopN: 50, MaxTopN: 10},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for default_top_n above max_top_n")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{
		Vectors: VectorsConfig{Path: "glove/glove.6B.300d.txt"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Query.DefaultTopN != 5 {
		t.Errorf("expected DefaultTopN=5, got %d", cfg.Query.DefaultTopN)
	}
	if cfg.Query.MaxTopN != 100 {
		t.Errorf("expected MaxTopN=100, got %d", cfg.Query.MaxTopN)
	}
	if cfg.Vectors.ArchiveMember != "glove.6B.300d.txt" {
		t.Errorf("expected ArchiveMember derived from path, got %q", cfg.Vectors.ArchiveMember)
	}
}

func TestApplyDefaults_KeepsExplicitArchiveMember(t *testing.T) {
	cfg := Config{
		Vectors: VectorsConfig{Path: "glove/vectors.txt", ArchiveMember: "glove.6B.100d.txt"},
	}
	cfg.ApplyDefaults()

	if cfg.Vectors.ArchiveMember != "glove.6B.100d.txt" {
		t.Errorf("expected explicit ArchiveMember to survive, got %q", cfg.Vectors.ArchiveMember)
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("LEXIDEX_TEST_PATH", "/tmp/vectors.txt")
	defer os.Unsetenv("LEXIDEX_TEST_PATH")

	in := []byte("path: ${LEXIDEX_TEST_PATH}\nother: ${LEXIDEX_TEST_UNSET:-fallback}\n")
	out := string(expandEnvVars(in))

	want := "path: /tmp/vectors.txt\nother: fallback\n"
	if out != want {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, want)
	}
}
