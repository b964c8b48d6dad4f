package model

import "time"

// Config holds the complete runtime configuration
type Config struct {
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	Retrieval   RetrievalConfig   `yaml:"retrieval" mapstructure:"retrieval"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Judge       JudgeConfig       `yaml:"judge" mapstructure:"judge"`
	Experiments ExperimentsConfig `yaml:"experiments" mapstructure:"experiments"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Ingest      IngestConfig      `yaml:"ingest" mapstructure:"ingest"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Metrics     MetricsConfig     `yaml:"metrics" mapstructure:"metrics"`
}

// PathsConfig locates the input corpora and every output log
type PathsConfig struct {
	Corpora          []string `yaml:"corpora" mapstructure:"corpora"`
	EventsFile       string   `yaml:"events_file" mapstructure:"events_file"` // Empty = builtin registry
	Claims           string   `yaml:"claims" mapstructure:"claims"`
	Consistency      string   `yaml:"consistency" mapstructure:"consistency"`
	PromptRobustness string   `yaml:"prompt_robustness" mapstructure:"prompt_robustness"`
	SelfConsistency  string   `yaml:"self_consistency" mapstructure:"self_consistency"`
	InterRater       string   `yaml:"inter_rater" mapstructure:"inter_rater"`
	Kappa            string   `yaml:"kappa" mapstructure:"kappa"`
}

// RetrievalConfig controls chunking and ranking
type RetrievalConfig struct {
	MaxWords     int `yaml:"max_words" mapstructure:"max_words"`
	OverlapWords int `yaml:"overlap_words" mapstructure:"overlap_words"` // Must be < MaxWords
	TopK         int `yaml:"top_k" mapstructure:"top_k"`
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	MaxRetries        int     `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ExtractionConfig tunes the claim extraction stage
type ExtractionConfig struct {
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// JudgeConfig tunes the consistency judge
type JudgeConfig struct {
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
}

// ExperimentsConfig tunes the robustness experiments
type ExperimentsConfig struct {
	Temperature                float64 `yaml:"temperature" mapstructure:"temperature"` // Prompt robustness
	SelfConsistencyRuns        int     `yaml:"self_consistency_runs" mapstructure:"self_consistency_runs"`
	SelfConsistencyTemperature float64 `yaml:"self_consistency_temperature" mapstructure:"self_consistency_temperature"`
}

// CacheConfig controls the LLM response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// IngestConfig controls raw corpus acquisition and normalization
type IngestConfig struct {
	RawDir            string          `yaml:"raw_dir" mapstructure:"raw_dir"`
	GutenbergOut      string          `yaml:"gutenberg_out" mapstructure:"gutenberg_out"`
	LoCOut            string          `yaml:"loc_out" mapstructure:"loc_out"`
	UserAgent         string          `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout           time.Duration   `yaml:"timeout" mapstructure:"timeout"`
	MaxBodyBytes      int64           `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64         `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int             `yaml:"burst" mapstructure:"burst"`
	RespectRobots     bool            `yaml:"respect_robots" mapstructure:"respect_robots"`
	MaxRetries        int             `yaml:"max_retries" mapstructure:"max_retries"`
	HTTPProxy         string          `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string          `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string          `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	GutenbergBooks    []GutenbergBook `yaml:"gutenberg_books" mapstructure:"gutenberg_books"`
	LoCItems          []LoCItem       `yaml:"loc_items" mapstructure:"loc_items"`
}

// GutenbergBook identifies one Project Gutenberg ebook
type GutenbergBook struct {
	ID           string `yaml:"id" mapstructure:"id"`
	Title        string `yaml:"title" mapstructure:"title"`
	DocumentType string `yaml:"document_type" mapstructure:"document_type"`
}

// LoCItem identifies one Library of Congress item plus curated metadata.
// Curated fields only fill values that the raw item leaves empty.
type LoCItem struct {
	ID           string `yaml:"id" mapstructure:"id"`
	URL          string `yaml:"url" mapstructure:"url"`
	Title        string `yaml:"title,omitempty" mapstructure:"title"`
	Date         string `yaml:"date,omitempty" mapstructure:"date"`
	Place        string `yaml:"place,omitempty" mapstructure:"place"`
	DocumentType string `yaml:"document_type,omitempty" mapstructure:"document_type"`
	From         string `yaml:"from,omitempty" mapstructure:"from"`
	To           string `yaml:"to,omitempty" mapstructure:"to"`
}

// OutputConfig controls output log handling
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
	Fresh   bool `yaml:"fresh" mapstructure:"fresh"` // Truncate logs instead of resuming
}

// LoggingConfig controls the diagnostic logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// MetricsConfig controls metrics export
type MetricsConfig struct {
	File string `yaml:"file,omitempty" mapstructure:"file"` // Prometheus textfile, empty = disabled
}

// DefaultConfig returns the defaults used by every stage
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			Corpora: []string{
				"data/processed/gutenberg_lincoln.jsonl",
				"data/processed/loc_lincoln_improved.jsonl",
			},
			Claims:           "data/events/event_extractions.jsonl",
			Consistency:      "data/evals/event_consistency.jsonl",
			PromptRobustness: "data/evals/prompt_robustness.jsonl",
			SelfConsistency:  "data/evals/self_consistency.jsonl",
			InterRater:       "data/evals/inter_rater.jsonl",
			Kappa:            "data/evals/kappa_inter_rater.jsonl",
		},
		Retrieval: RetrievalConfig{
			MaxWords:     1000,
			OverlapWords: 150,
			TopK:         5,
		},
		LLM: LLMConfig{
			Provider:          "openai",
			Model:             "gpt-4o-mini",
			Timeout:           60,
			MaxTokens:         1500,
			RequestsPerSecond: 1,
			Burst:             1,
			MaxRetries:        3,
		},
		Extraction: ExtractionConfig{Temperature: 0.2},
		Judge:      JudgeConfig{Temperature: 0.2},
		Experiments: ExperimentsConfig{
			Temperature:                0.2,
			SelfConsistencyRuns:        5,
			SelfConsistencyTemperature: 0.7,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "data/cache/llm",
			MemoryTTL: time.Hour,
			DiskTTL:   30 * 24 * time.Hour,
		},
		Ingest: IngestConfig{
			RawDir:            "data/raw",
			GutenbergOut:      "data/processed/gutenberg_lincoln.jsonl",
			LoCOut:            "data/processed/loc_lincoln_improved.jsonl",
			UserAgent:         "Concordia/0.1 (+https://github.com/ppiankov/concordia)",
			Timeout:           60 * time.Second,
			MaxBodyBytes:      20_000_000,
			RequestsPerSecond: 1,
			Burst:             1,
			RespectRobots:     true,
			MaxRetries:        3,
			GutenbergBooks:    DefaultGutenbergBooks(),
			LoCItems:          DefaultLoCItems(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultGutenbergBooks returns the secondary-source books of the reference corpus
func DefaultGutenbergBooks() []GutenbergBook {
	return []GutenbergBook{
		{ID: "6812", Title: "Abraham Lincoln: A History, Volume 1", DocumentType: "Book"},
		{ID: "6811", Title: "Abraham Lincoln: A History, Volume 2", DocumentType: "Book"},
		{ID: "12801", Title: "Abraham Lincoln and the Union", DocumentType: "Book"},
		{ID: "14004", Title: "The Life and Public Service of Abraham Lincoln", DocumentType: "Book"},
		{ID: "18379", Title: "Abraham Lincoln: A History, Volume 3", DocumentType: "Book"},
	}
}

// DefaultLoCItems returns the primary-source items of the reference corpus
func DefaultLoCItems() []LoCItem {
	return []LoCItem{
		{
			ID:           "mal0440500",
			URL:          "https://www.loc.gov/item/mal0440500/",
			DocumentType: "Letter",
			From:         "Abraham Lincoln",
		},
		{
			ID:           "mal0882800",
			URL:          "https://www.loc.gov/resource/mal.0882800",
			Title:        "Robert S. Chew to Abraham Lincoln, April 8, 1861",
			Date:         "April 8, 1861",
			Place:        "Charleston, S.C.",
			DocumentType: "Letter",
			From:         "Robert S. Chew",
			To:           "Abraham Lincoln",
		},
		{
			ID:           "gettysburg_nicolay",
			URL:          "https://www.loc.gov/exhibits/gettysburg-address/ext/trans-nicolay-copy.html",
			Title:        "Gettysburg Address (Nicolay Copy)",
			Date:         "November 19, 1863",
			Place:        "Gettysburg, Pennsylvania",
			DocumentType: "Speech",
			From:         "Abraham Lincoln",
		},
		{
			ID:           "mal4361300",
			URL:          "https://www.loc.gov/resource/mal.4361300",
			Title:        "Second Inaugural Address",
			Date:         "March 4, 1865",
			Place:        "Washington, D.C.",
			DocumentType: "Speech",
			From:         "Abraham Lincoln",
		},
		{
			ID:           "mal4361800",
			URL:          "https://www.loc.gov/resource/mal.4361800/",
			Title:        "Last Public Address",
			Place:        "Washington, D.C.",
			DocumentType: "Speech",
			From:         "Abraham Lincoln",
		},
	}
}
