package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"matchharvest/pkg/filter"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/storage"
)

const envPrefix = "MATCHHARVEST_"

// Config holds all configuration options for matchharvest
type Config struct {
	// Steam Web API access
	Steam SteamConfig `yaml:"steam" json:"steam"`

	// OpenDota access, used to classify matches by patch
	OpenDota OpenDotaConfig `yaml:"opendota" json:"opendota"`

	// Call spacing and retry budgets
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Which matches to fetch
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Where data is written
	Output OutputConfig `yaml:"output" json:"output"`

	// Training data range
	Training TrainingConfig `yaml:"training" json:"training"`

	// S3 settings for s3:// output locations
	Mirror MirrorConfig `yaml:"mirror" json:"mirror"`

	// Logging configuration
	Logging logger.Config `yaml:"logging" json:"logging"`

	rules *filter.Rules
}

// SteamConfig holds Steam Web API settings
type SteamConfig struct {
	APIKey   string `yaml:"api_key" json:"api_key"`
	BaseURL  string `yaml:"base_url" json:"base_url"`
	Language string `yaml:"language" json:"language"`
}

// OpenDotaConfig holds OpenDota settings
type OpenDotaConfig struct {
	BaseURL string `yaml:"base_url" json:"base_url"`
}

// RateLimitConfig holds call spacing and retry configuration
type RateLimitConfig struct {
	SteamInterval    time.Duration `yaml:"steam_interval" json:"steam_interval"`
	OpenDotaInterval time.Duration `yaml:"opendota_interval" json:"opendota_interval"`
	Cooldown         time.Duration `yaml:"cooldown" json:"cooldown"`
	LookupAttempts   int           `yaml:"lookup_attempts" json:"lookup_attempts"`
	PageAttempts     int           `yaml:"page_attempts" json:"page_attempts"`
	RequestTimeout   time.Duration `yaml:"request_timeout" json:"request_timeout"`
}

// FetchConfig holds the match filters and crawl range
type FetchConfig struct {
	GameModes    []int    `yaml:"game_modes" json:"game_modes"`
	LobbyTypes   []int    `yaml:"lobby_types" json:"lobby_types"`
	HumanPlayers int      `yaml:"human_players" json:"human_players"`
	StartMatchID Selector `yaml:"start_match_id" json:"start_match_id"`
	EndMatchID   Selector `yaml:"end_match_id" json:"end_match_id"`
	PageSize     int      `yaml:"page_size" json:"page_size"`
	FlushEvery   int      `yaml:"flush_every" json:"flush_every"`
	// MaxMatchDuration is the longest plausible match in seconds. It pads the
	// sequence range on both sides.
	MaxMatchDuration  int64 `yaml:"max_match_duration" json:"max_match_duration"`
	BoundaryMaxProbes int   `yaml:"boundary_max_probes" json:"boundary_max_probes"`
}

// OutputConfig holds output file configuration
type OutputConfig struct {
	MatchFile    string `yaml:"match_file" json:"match_file"`
	TrainingFile string `yaml:"training_file" json:"training_file"`
	HeroFile     string `yaml:"hero_file" json:"hero_file"`
}

// TrainingConfig bounds the matches converted to training data. Zero leaves
// a side open.
type TrainingConfig struct {
	StartMatchID int64 `yaml:"start_match_id" json:"start_match_id"`
	EndMatchID   int64 `yaml:"end_match_id" json:"end_match_id"`
}

// MirrorConfig holds S3 settings
type MirrorConfig struct {
	Region   string `yaml:"region" json:"region"`
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Steam: SteamConfig{
			BaseURL:  "https://api.steampowered.com",
			Language: "english",
		},
		OpenDota: OpenDotaConfig{
			BaseURL: "https://api.opendota.com/api",
		},
		RateLimit: RateLimitConfig{
			SteamInterval:    time.Second,
			OpenDotaInterval: time.Second,
			Cooldown:         30 * time.Second,
			LookupAttempts:   5,
			PageAttempts:     20,
			RequestTimeout:   30 * time.Second,
		},
		Fetch: FetchConfig{
			GameModes:        []int{1, 22},
			LobbyTypes:       []int{0, 7},
			HumanPlayers:     10,
			StartMatchID:     Auto(),
			EndMatchID:       Latest(),
			PageSize:         100,
			FlushEvery:       1000,
			MaxMatchDuration: 18000,
		},
		Output: OutputConfig{
			MatchFile:    "matches.json",
			TrainingFile: "training_data.json",
			HeroFile:     "heroes.json",
		},
		Logging: logger.Config{
			Level: "info",
		},
	}
}

// Rules returns the match filters, resolved to tag sets once
func (c *Config) Rules() filter.Rules {
	if c.rules == nil {
		c.resolve()
	}
	return *c.rules
}

func (c *Config) resolve() {
	c.rules = &filter.Rules{
		GameModes:    filter.NewTagSet(c.Fetch.GameModes...),
		LobbyTypes:   filter.NewTagSet(c.Fetch.LobbyTypes...),
		HumanPlayers: c.Fetch.HumanPlayers,
	}
}

// StorageOptions returns the options for opening output locations
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{Region: c.Mirror.Region, Endpoint: c.Mirror.Endpoint}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	setString := func(name string, dst *string) {
		if v := os.Getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}
	setInt := func(name string, dst *int) {
		if v := os.Getenv(envPrefix + name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setDuration := func(name string, dst *time.Duration) {
		if v := os.Getenv(envPrefix + name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}
	setTags := func(name string, dst *[]int) {
		if v := os.Getenv(envPrefix + name); v != "" {
			tags, err := ParseTags(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = tags
		}
	}
	setSelector := func(name string, dst *Selector) {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			sel, err := ParseSelector(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = sel
		}
	}

	setString("STEAM_API_KEY", &c.Steam.APIKey)
	setString("STEAM_BASE_URL", &c.Steam.BaseURL)
	setString("LANGUAGE", &c.Steam.Language)
	setString("OPENDOTA_BASE_URL", &c.OpenDota.BaseURL)

	setDuration("STEAM_INTERVAL", &c.RateLimit.SteamInterval)
	setDuration("OPENDOTA_INTERVAL", &c.RateLimit.OpenDotaInterval)
	setDuration("COOLDOWN", &c.RateLimit.Cooldown)
	setDuration("REQUEST_TIMEOUT", &c.RateLimit.RequestTimeout)

	setTags("GAME_MODES", &c.Fetch.GameModes)
	setTags("LOBBY_TYPES", &c.Fetch.LobbyTypes)
	setInt("HUMAN_PLAYERS", &c.Fetch.HumanPlayers)
	setSelector("START_MATCH_ID", &c.Fetch.StartMatchID)
	setSelector("END_MATCH_ID", &c.Fetch.EndMatchID)

	setString("MATCH_FILE", &c.Output.MatchFile)
	setString("TRAINING_FILE", &c.Output.TrainingFile)
	setString("HERO_FILE", &c.Output.HeroFile)

	setString("S3_REGION", &c.Mirror.Region)
	setString("S3_ENDPOINT", &c.Mirror.Endpoint)

	setString("LOG_LEVEL", &c.Logging.Level)
	setString("LOG_FILE", &c.Logging.File)

	c.rules = nil
	return errors.Join(errs...)
}

// ParseTags parses a comma separated list of integer tags
func ParseTags(s string) ([]int, error) {
	var tags []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tag, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid tag %q", part)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	c.rules = nil
	return nil
}

// FindConfigFile searches for a config file in the standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".matchharvest.yaml",
		".matchharvest.yml",
		filepath.Join(home, ".config", "matchharvest", "config.yaml"),
		filepath.Join(home, ".config", "matchharvest", "config.yml"),
		filepath.Join(home, ".matchharvest.yaml"),
		filepath.Join(home, ".matchharvest.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// DefaultConfigPath is where config init writes
func DefaultConfigPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "matchharvest", "config.yaml")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Steam.BaseURL == "" {
		errs = append(errs, errors.New("steam base URL is required"))
	}
	if c.OpenDota.BaseURL == "" {
		errs = append(errs, errors.New("opendota base URL is required"))
	}

	if c.RateLimit.SteamInterval < 0 || c.RateLimit.OpenDotaInterval < 0 {
		errs = append(errs, errors.New("call intervals cannot be negative"))
	}
	if c.RateLimit.Cooldown <= 0 {
		errs = append(errs, errors.New("cooldown must be positive"))
	}
	if c.RateLimit.LookupAttempts <= 0 {
		errs = append(errs, errors.New("lookup attempts must be positive"))
	}
	if c.RateLimit.PageAttempts <= 0 {
		errs = append(errs, errors.New("page attempts must be positive"))
	}
	if c.RateLimit.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if len(c.Fetch.GameModes) == 0 {
		errs = append(errs, errors.New("at least one game mode is required"))
	}
	if len(c.Fetch.LobbyTypes) == 0 {
		errs = append(errs, errors.New("at least one lobby type is required"))
	}
	if c.Fetch.HumanPlayers < 1 || c.Fetch.HumanPlayers > 10 {
		errs = append(errs, errors.New("human players must be between 1 and 10"))
	}
	if c.Fetch.PageSize < 1 || c.Fetch.PageSize > 100 {
		errs = append(errs, errors.New("page size must be between 1 and 100"))
	}
	if c.Fetch.FlushEvery <= 0 {
		errs = append(errs, errors.New("flush threshold must be positive"))
	}
	if c.Fetch.MaxMatchDuration < 0 {
		errs = append(errs, errors.New("max match duration cannot be negative"))
	}
	if c.Fetch.BoundaryMaxProbes < 0 {
		errs = append(errs, errors.New("boundary probe budget cannot be negative"))
	}
	start, end := c.Fetch.StartMatchID, c.Fetch.EndMatchID
	if start.Kind == SelectorLiteral && end.Kind == SelectorLiteral && start.ID > end.ID {
		errs = append(errs, fmt.Errorf("start match ID %d is after end match ID %d", start.ID, end.ID))
	}

	if c.Output.MatchFile == "" {
		errs = append(errs, errors.New("match file is required"))
	}
	for _, location := range []string{c.Output.MatchFile, c.Output.TrainingFile, c.Output.HeroFile} {
		if strings.HasPrefix(location, "s3://") {
			if _, _, err := storage.ParseS3Location(location); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if c.Training.StartMatchID < 0 || c.Training.EndMatchID < 0 {
		errs = append(errs, errors.New("training match IDs cannot be negative"))
	}
	if c.Training.EndMatchID > 0 && c.Training.StartMatchID > c.Training.EndMatchID {
		errs = append(errs, errors.New("training start match ID is after end match ID"))
	}

	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Keys are flag names; only flags the user set should be passed.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) error {
	if v, ok := flags["api-key"].(string); ok && v != "" {
		c.Steam.APIKey = v
	}
	if v, ok := flags["language"].(string); ok && v != "" {
		c.Steam.Language = v
	}
	if v, ok := flags["match-file"].(string); ok && v != "" {
		c.Output.MatchFile = v
	}
	if v, ok := flags["training-file"].(string); ok && v != "" {
		c.Output.TrainingFile = v
	}
	if v, ok := flags["hero-file"].(string); ok && v != "" {
		c.Output.HeroFile = v
	}
	if v, ok := flags["game-modes"].([]int); ok && len(v) > 0 {
		c.Fetch.GameModes = v
	}
	if v, ok := flags["lobby-types"].([]int); ok && len(v) > 0 {
		c.Fetch.LobbyTypes = v
	}
	if v, ok := flags["human-players"].(int); ok && v > 0 {
		c.Fetch.HumanPlayers = v
	}
	if v, ok := flags["cooldown"].(time.Duration); ok && v > 0 {
		c.RateLimit.Cooldown = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}

	var errs []error
	if v, ok := flags["start"].(string); ok {
		sel, err := ParseSelector(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("--start: %w", err))
		} else {
			c.Fetch.StartMatchID = sel
		}
	}
	if v, ok := flags["end"].(string); ok {
		sel, err := ParseSelector(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("--end: %w", err))
		} else {
			c.Fetch.EndMatchID = sel
		}
	}

	c.rules = nil
	return errors.Join(errs...)
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".matchharvest.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := config.MergeCommandLineFlags(flags); err != nil {
		return nil, fmt.Errorf("invalid command line flags: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	config.resolve()
	return config, nil
}
