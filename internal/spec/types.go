package spec

import "time"

type Config struct {
	Version         int             `yaml:"version"`
	OutputDir       string          `yaml:"output_dir"`
	CasesFile       string          `yaml:"cases_file"`
	OverridesFile   string          `yaml:"overrides_file"`
	FewShotExamples string          `yaml:"few_shot_examples"`
	Baseline        string          `yaml:"baseline"`
	Techniques      []string        `yaml:"techniques"`
	RunsPerCase     int             `yaml:"runs_per_case"`
	Workers         int             `yaml:"workers"`
	LogLevel        string          `yaml:"log_level"`
	Backend         BackendConfig   `yaml:"backend"`
	Evaluator       EvaluatorConfig `yaml:"evaluator"`
	Store           StoreConfig     `yaml:"store"`
	// AppEnv selects console or JSON logging and comes from APP_ENV.
	AppEnv string `yaml:"-"`
}

type BackendConfig struct {
	Provider          string        `yaml:"provider"`
	BaseURL           string        `yaml:"base_url"`
	Model             string        `yaml:"model"`
	EmbeddingModel    string        `yaml:"embedding_model"`
	Temperature       float64       `yaml:"temperature"`
	MaxRetries        int           `yaml:"max_retries"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	RequestDelay      time.Duration `yaml:"request_delay"`
	RateLimitBackoff  time.Duration `yaml:"rate_limit_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	// APIKey is only ever read from the environment.
	APIKey string `yaml:"-"`
}

type EvaluatorConfig struct {
	Semantic          bool    `yaml:"semantic"`
	SemanticThreshold float64 `yaml:"semantic_threshold"`
}

type StoreConfig struct {
	DuckDBPath string `yaml:"duckdb_path"`
}
