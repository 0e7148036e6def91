package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Site layout
	ContentDir   string `long:"content-dir" env:"CONTENT_DIR" default:"./content" description:"Directory containing markdown posts"`
	TemplatesDir string `long:"templates-dir" env:"TEMPLATES_DIR" default:"./templates" description:"Directory containing page templates (falls back to built-in templates)"`
	OutputDir    string `long:"output-dir" env:"OUTPUT_DIR" default:"./public" description:"Directory the site is baked into"`
	SiteConfig   string `long:"site-config" env:"SITE_CONFIG" default:"./site.yml" description:"Site configuration file"`

	// Build configuration
	RecordsDB   string `long:"records-db" env:"RECORDS_DB" default:"./.page-kiln/records.db" description:"Build record database path"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of bake workers in the writer queue"`
	Force       bool   `long:"force" env:"FORCE_BAKE" description:"Rebake every page regardless of build records"`

	// Preview server
	Serve   bool   `long:"serve" env:"SERVE" description:"Serve the baked output after the bake finishes"`
	Port    string `long:"port" env:"PORT" default:"8080" description:"Preview server port"`
	BaseUrl string `long:"base-url" env:"BASE_URL" description:"Public base URL for the site (e.g., https://blog.example.com)"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for post timestamps (e.g., UTC, America/New_York)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ContentDir:   raw.ContentDir,
		TemplatesDir: raw.TemplatesDir,
		OutputDir:    raw.OutputDir,
		SiteConfig:   raw.SiteConfig,
		RecordsDB:    raw.RecordsDB,
		WorkerCount:  raw.WorkerCount,
		Force:        raw.Force,
		Serve:        raw.Serve,
		Port:         raw.Port,
		BaseUrl:      raw.BaseUrl,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// SetForTesting installs a configuration without going through flag parsing.
func SetForTesting(cfg *Cfg) {
	globalCfg = cfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
