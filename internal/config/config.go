package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything the BFF needs: where the upstream API lives, the
// third-party service keys, and how cookies and share links are stamped.
type Config struct {
	APIPort  int    `yaml:"apiPort"`
	SiteURL  string `yaml:"siteURL"`
	Upstream struct {
		BaseURL string `yaml:"baseURL"`
	} `yaml:"upstream"`
	Convert struct {
		Secret string `yaml:"secret"`
	} `yaml:"convert"`
	Vision struct {
		APIKey string `yaml:"apiKey"`
	} `yaml:"vision"`
	Cookies struct {
		Domain string `yaml:"domain"`
		Secure bool   `yaml:"secure"`
	} `yaml:"cookies"`
	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
	Archive struct {
		Endpoint        string `yaml:"endpoint"`
		Region          string `yaml:"region"`
		Bucket          string `yaml:"bucket"`
		AccessKeyID     string `yaml:"accessKeyId"`
		SecretAccessKey string `yaml:"secretAccessKey"`
	} `yaml:"archive"`
}

var ErrUpstreamNotConfigured = errors.New("upstream base URL is not configured")

// LoadConfig loads the configuration from file and environment variables.
// Missing third-party keys are not fatal here: the routes that need them
// answer a configuration-error response instead of crashing the process.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("QUICKIE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Bound explicitly so env vars work without a config file present.
	if s := v.GetString("UPSTREAM_BASEURL"); s != "" {
		cfg.Upstream.BaseURL = s
	}
	if s := v.GetString("CONVERT_SECRET"); s != "" {
		cfg.Convert.Secret = s
	}
	if s := v.GetString("VISION_APIKEY"); s != "" {
		cfg.Vision.APIKey = s
	}
	if s := v.GetString("SITE_URL"); s != "" {
		cfg.SiteURL = s
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8090
		log.Println("APIPort not specified, using default 8090")
	}

	if cfg.SiteURL == "" {
		cfg.SiteURL = "http://localhost:3000"
		log.Println("SiteURL not specified, using default http://localhost:3000")
	}
	cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")

	if len(cfg.CORS.Origins) == 0 {
		cfg.CORS.Origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	if cfg.Upstream.BaseURL == "" {
		log.Println("Warning: upstream base URL not configured; API routes will answer configuration errors")
	}
	cfg.Upstream.BaseURL = strings.TrimRight(cfg.Upstream.BaseURL, "/")

	log.Printf("Configuration loaded: port=%d upstream=%q site=%q", cfg.APIPort, cfg.Upstream.BaseURL, cfg.SiteURL)
	return &cfg, nil
}

// RequireUpstream reports whether the upstream API is reachable by config.
func (c *Config) RequireUpstream() error {
	if c.Upstream.BaseURL == "" {
		return ErrUpstreamNotConfigured
	}
	return nil
}

// ArchiveEnabled reports whether the extraction archive is fully configured.
func (c *Config) ArchiveEnabled() bool {
	a := c.Archive
	return a.Endpoint != "" && a.Region != "" && a.Bucket != "" && a.AccessKeyID != "" && a.SecretAccessKey != ""
}
