package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestConfigFields(t *testing.T) {
	cfg := &Cfg{
		ContentDir:   "./content",
		TemplatesDir: "./templates",
		OutputDir:    "./public",
		SiteConfig:   "./site.yml",
		RecordsDB:    "./records.db",
		WorkerCount:  5,
		Force:        true,
		Serve:        true,
		Port:         "8080",
		BaseUrl:      "https://blog.example.com",
		Timezone:     "UTC",
		Debug:        true,
		Version:      "test-version",
	}

	if cfg.ContentDir != "./content" {
		t.Errorf("Expected content dir './content', got '%s'", cfg.ContentDir)
	}
	if cfg.OutputDir != "./public" {
		t.Errorf("Expected output dir './public', got '%s'", cfg.OutputDir)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.BaseUrl != "https://blog.example.com" {
		t.Errorf("Expected base URL 'https://blog.example.com', got '%s'", cfg.BaseUrl)
	}
	if cfg.WorkerCount != 5 {
		t.Errorf("Expected worker count 5, got %d", cfg.WorkerCount)
	}
	if !cfg.Force {
		t.Error("Expected force to be true")
	}
}

func TestSetForTesting(t *testing.T) {
	old := globalCfg
	defer func() { globalCfg = old }()

	SetForTesting(&Cfg{Port: "9999"})
	if Get().Port != "9999" {
		t.Errorf("Expected port '9999', got '%s'", Get().Port)
	}
}
