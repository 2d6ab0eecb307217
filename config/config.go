package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Postgres  PostgresConfig
	Scheduler SchedulerConfig
	Feeds     FeedsConfig
	DBPath    string
	LogPath   string
	LogLevel  string
	Agencies  map[string]*AgencySeed
}

type PostgresConfig struct {
	DSN string
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type FeedsConfig struct {
	MyHomeBase         string
	AcquaintBase       string
	DaftBase           string
	TimeoutMS          int
	WordPressEndpoints string // path to a newline list of known WP feeds
}

// AgencySeed is one agency definition from config/agencies/*.yaml. Seeds
// are upserted into the store at startup so a fresh deployment has its
// agency book without manual API calls.
type AgencySeed struct {
	UniqueKey     string `yaml:"key"`
	Name          string `yaml:"name"`
	Address       string `yaml:"address"`
	Site          string `yaml:"site"`
	SiteName      string `yaml:"site_name"`
	SitePrefix    string `yaml:"site_prefix"`
	MyHomeAPIKey  string `yaml:"myhome_api_key"`
	MyHomeGroupID int    `yaml:"myhome_group_id"`
	DaftAPIKey    string `yaml:"daft_api_key"`
	PrimarySource string `yaml:"primary_source"`
	WordPressURL  string `yaml:"wordpress_url"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Postgres: PostgresConfig{
			DSN: os.Getenv("DATABASE_URL"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("REFRESH_CRON"),
		},
		Feeds: FeedsConfig{
			MyHomeBase:         os.Getenv("MYHOME_BASE_URL"),
			AcquaintBase:       os.Getenv("ACQUAINT_BASE_URL"),
			DaftBase:           os.Getenv("DAFT_BASE_URL"),
			TimeoutMS:          getEnvInt("FEED_TIMEOUT_MS", 30000),
			WordPressEndpoints: getEnv("WORDPRESS_ENDPOINTS_FILE", "config/wordpress_endpoints.txt"),
		},
		DBPath:   getEnv("DB_PATH", "proplookup.db"),
		LogPath:  getEnv("LOG_PATH", "proplookup.log"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Agencies: make(map[string]*AgencySeed),
	}

	if interval := os.Getenv("REFRESH_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadAgencySeeds(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadAgencySeeds() error {
	seedDir := "config/agencies"
	entries, err := os.ReadDir(seedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(seedDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var seed AgencySeed
		if err := yaml.Unmarshal(data, &seed); err != nil {
			return err
		}

		c.Agencies[seed.UniqueKey] = &seed
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
