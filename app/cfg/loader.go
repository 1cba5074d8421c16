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
	// Data layout
	DataDir    string `long:"data-dir" env:"DATA_DIR" default:"./data" description:"Directory where dated digest files are written"`
	SourcesDir string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing per-source configuration files"`

	// HTTP server
	Port    string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://brief.example.com)"`

	// Generative backend
	GeminiAPIKey string `long:"gemini-api-key" env:"GEMINI_API_KEY" description:"Gemini API key (summaries degrade to canned responses when unset)"`
	GeminiModel  string `long:"gemini-model" env:"GEMINI_MODEL" default:"gemini-2.0-flash" description:"Gemini model used for summarization and chat"`

	// Reddit provider credentials
	RedditClientID     string `long:"reddit-client-id" env:"REDDIT_CLIENT_ID" description:"Reddit API client ID"`
	RedditClientSecret string `long:"reddit-client-secret" env:"REDDIT_CLIENT_SECRET" description:"Reddit API client secret"`
	RedditUserAgent    string `long:"reddit-user-agent" env:"REDDIT_USER_AGENT" description:"User agent registered with the Reddit API"`

	// Collection run
	CollectCron    string `long:"collect-cron" env:"COLLECT_CRON" default:"0 6 * * *" description:"Cron schedule for collection runs in server mode"`
	CollectTimeout int    `long:"collect-timeout" env:"COLLECT_TIMEOUT" default:"10" description:"Overall deadline for one collection run in minutes"`
	SourceWorkers  int    `long:"source-workers" env:"SOURCE_WORKERS" default:"3" description:"Number of sources collected in parallel"`
	CollectOnStart bool   `long:"collect-on-start" env:"COLLECT_ON_START" description:"Run a collection pass immediately on startup"`
	CollectAndExit bool   `long:"collect" description:"Run one collection pass and exit without starting the server"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"DailyBrief/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"Asia/Tokyo" description:"Timezone used for digest date keys (e.g., Asia/Tokyo, UTC)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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
		DataDir:            raw.DataDir,
		SourcesDir:         raw.SourcesDir,
		Port:               raw.Port,
		BaseUrl:            raw.BaseUrl,
		GeminiAPIKey:       raw.GeminiAPIKey,
		GeminiModel:        raw.GeminiModel,
		RedditClientID:     raw.RedditClientID,
		RedditClientSecret: raw.RedditClientSecret,
		RedditUserAgent:    raw.RedditUserAgent,
		CollectCron:        raw.CollectCron,
		CollectTimeout:     raw.CollectTimeout,
		SourceWorkers:      raw.SourceWorkers,
		CollectOnStart:     raw.CollectOnStart,
		CollectAndExit:     raw.CollectAndExit,
		UserAgent:          raw.UserAgent,
		Timezone:           raw.Timezone,
		Debug:              raw.Debug,
		Version:            GetVersion(),
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

// Location returns the timezone used for digest date keys. Collection runs
// stamp their output files in this calendar, not the host's.
func (c *Cfg) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
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
