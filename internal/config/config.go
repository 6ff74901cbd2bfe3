// Package config loads the agent configuration: an optional YAML file
// merged over defaults, with environment overrides for the credential
// and data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML configs can say "90s" or "10m".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds all dobby configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Router  RouterConfig  `yaml:"router"`
	Memory  MemoryConfig  `yaml:"memory"`
	Scrape  ScrapeConfig  `yaml:"scrape"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig configures the Claude client used by the personas.
type LLMConfig struct {
	// APIKey is normally left empty here and supplied via the
	// ANTHROPIC_API_KEY environment variable.
	APIKey    string   `yaml:"api_key"`
	Model     string   `yaml:"model"`
	MaxTokens int64    `yaml:"max_tokens"`
	Timeout   Duration `yaml:"timeout"`
}

// RouterConfig configures intent routing. Scoring knobs are
// configuration on purpose: the weights are a chosen heuristic, not a
// verified constant.
type RouterConfig struct {
	// Threshold is the minimum winning confidence before the decision
	// falls back to the default persona. The default corresponds to
	// "at least one specific signal matched".
	Threshold float64 `yaml:"threshold"`

	// Default is the persona substituted on fallback.
	Default string `yaml:"default"`

	// BaseWeight is the confidence contributed by a matched
	// single-word signal; WordBonus is added per extra word in a
	// matched phrase (longer phrases are more specific).
	BaseWeight float64 `yaml:"base_weight"`
	WordBonus  float64 `yaml:"word_bonus"`

	// Personas is the static descriptor set, in registration order.
	Personas []PersonaConfig `yaml:"personas"`
}

// PersonaConfig describes one persona to the router: the intent
// signals it owns and its tie-break priority.
type PersonaConfig struct {
	ID       string   `yaml:"id"`
	Signals  []string `yaml:"signals"`
	Priority float64  `yaml:"priority"`
}

// MemoryConfig configures both persistence layers.
type MemoryConfig struct {
	// DataDir is the root for session files and the vector store.
	DataDir string `yaml:"data_dir"`

	// Collection names the long-term store's namespace.
	Collection string `yaml:"collection"`

	// MinSimilarity drops recall results below this cosine similarity.
	MinSimilarity float32 `yaml:"min_similarity"`

	// MaxRecall caps how many records a recall query returns.
	MaxRecall int `yaml:"max_recall"`

	// ContextTurns caps how many prior turns a persona sees.
	ContextTurns int `yaml:"context_turns"`
}

// ScrapeConfig configures the content extraction engine.
type ScrapeConfig struct {
	Timeout Duration `yaml:"timeout"`

	// MinContent is the sufficiency floor: a primary extraction
	// shorter than this (in runes) triggers the secondary extractor.
	MinContent int `yaml:"min_content"`

	// CacheTTL bounds how long a fetched page is reused.
	CacheTTL Duration `yaml:"cache_ttl"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Debug bool   `yaml:"debug"`
	File  string `yaml:"file"`
}

// Default returns the full working configuration, including the stock
// persona signal sets.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 4096,
			Timeout:   Duration(90 * time.Second),
		},
		Router: RouterConfig{
			Threshold:  0.4,
			Default:    "general",
			BaseWeight: 0.4,
			WordBonus:  0.15,
			Personas: []PersonaConfig{
				{
					ID:       "search",
					Priority: 0.6,
					Signals: []string{
						"search", "lookup", "latest news", "current price",
						"latest price", "search again", "what is", "tell me about",
					},
				},
				{
					ID:       "readle",
					Priority: 0.8,
					Signals: []string{
						"http", "https", "read this page", "read this url",
						"summarize this link", "summarize this page", "open url",
					},
				},
				{
					ID:       "context",
					Priority: 0.5,
					Signals: []string{
						"where is the source", "where is the link",
						"explain in more detail", "explain more", "why is that",
						"what does that mean",
					},
				},
				{
					ID:       "code",
					Priority: 0.7,
					Signals: []string{
						"write code", "generate code", "write a function",
						"write a script", "refactor", "fix this code", "code",
					},
				},
				{
					ID:       "wallet",
					Priority: 0.9,
					Signals: []string{
						"wallet", "analyze this address", "analyze address",
						"portfolio", "holdings", "on chain",
					},
				},
				{
					ID:       "recall",
					Priority: 0.9,
					Signals: []string{
						"do you remember", "we once discussed", "we discussed",
						"from our conversation", "remind me what we said",
					},
				},
				{
					ID:       "general",
					Priority: 0.1,
					Signals:  []string{"hello", "hi", "thanks", "thank you"},
				},
			},
		},
		Memory: MemoryConfig{
			DataDir:       defaultDataDir(),
			Collection:    "dobby-longterm",
			MinSimilarity: 0.35,
			MaxRecall:     5,
			ContextTurns:  8,
		},
		Scrape: ScrapeConfig{
			Timeout:    Duration(20 * time.Second),
			MinContent: 200,
			CacheTTL:   Duration(10 * time.Minute),
		},
		Logging: LoggingConfig{},
	}
}

// Load reads path (when non-empty) over the defaults, then applies
// environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}
	if dir := os.Getenv("DOBBY_DATA_DIR"); dir != "" {
		cfg.Memory.DataDir = dir
	}
	if os.Getenv("DOBBY_DEBUG") != "" {
		cfg.Logging.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks internal consistency.
func (c *Config) Validate() error {
	if c.Router.Default == "" {
		return fmt.Errorf("router: default persona is required")
	}
	found := false
	seen := map[string]bool{}
	for _, p := range c.Router.Personas {
		if p.ID == "" {
			return fmt.Errorf("router: persona with empty id")
		}
		if seen[p.ID] {
			return fmt.Errorf("router: duplicate persona %q", p.ID)
		}
		seen[p.ID] = true
		if p.ID == c.Router.Default {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("router: default persona %q is not registered", c.Router.Default)
	}
	if c.Router.Threshold < 0 || c.Router.Threshold > 1 {
		return fmt.Errorf("router: threshold must be in [0,1], got %v", c.Router.Threshold)
	}
	if c.Memory.MaxRecall <= 0 {
		return fmt.Errorf("memory: max_recall must be positive")
	}
	if c.Memory.DataDir == "" {
		return fmt.Errorf("memory: data_dir is required")
	}
	return nil
}

// SessionsDir returns where linear session files live.
func (c *Config) SessionsDir() string {
	return filepath.Join(c.Memory.DataDir, "sessions")
}

// VectorDir returns where the persistent vector store lives.
func (c *Config) VectorDir() string {
	return filepath.Join(c.Memory.DataDir, "chromem")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dobby"
	}
	return filepath.Join(home, ".dobby")
}
