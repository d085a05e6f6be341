package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the global application configuration loaded from the YAML
// config file and finalized by ValidateConfig.
type Config struct {
	Devguard   Devguard   `yaml:"devguard"`
	Logger     Logger     `yaml:"logger"`
	LLM        LLM        `yaml:"llm"`
	Scan       Scan       `yaml:"scan"`
	HTTPClient HTTPClient `yaml:"http_client"`
	GitClient  GitClient  `yaml:"git_client"`
	Storage    Storage    `yaml:"storage"`
}

// Devguard holds application-level folders and the run mode.
type Devguard struct {
	HomeFolder     string `yaml:"home_folder"`
	ProjectsFolder string `yaml:"projects_folder"`
	ResultsFolder  string `yaml:"results_folder"`
	TempFolder     string `yaml:"temp_folder"`
	Mode           string `yaml:"mode"`
}

// Logger holds logging options.
type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

// LLM holds settings for the external model API. Unset values fall back
// to the adapter defaults at client construction time.
type LLM struct {
	APIKey          string   `yaml:"api_key"`
	APIBase         string   `yaml:"api_base"`
	Model           string   `yaml:"model"`
	Temperature     float64  `yaml:"temperature"`
	TopP            float64  `yaml:"top_p"`
	MaxTokens       int      `yaml:"max_tokens"`
	PromptCharLimit int      `yaml:"prompt_char_limit"`
	MinCallInterval Duration `yaml:"min_call_interval"`
	BatchInterval   Duration `yaml:"batch_interval"`
	MaxRetries      int      `yaml:"max_retries"`
	RetryBackoff    Duration `yaml:"retry_backoff"`
}

// Scan holds tuning knobs for the scan pipeline.
type Scan struct {
	WindowSize      int   `yaml:"window_size"`
	BatchSize       int   `yaml:"batch_size"`
	ConfigChunkKeep int   `yaml:"config_chunk_keep"`
	SmallFileChunks int   `yaml:"small_file_chunks"`
	MaxTargetSize   int64 `yaml:"max_target_size"`
}

// HTTPClient holds settings for outgoing HTTP clients.
type HTTPClient struct {
	Debug            *bool    `yaml:"debug"`
	TLSVerify        *bool    `yaml:"tls_verify"`
	RetryCount       int      `yaml:"retry_count"`
	RetryWaitTime    Duration `yaml:"retry_wait_time"`
	RetryMaxWaitTime Duration `yaml:"retry_max_wait_time"`
	Timeout          Duration `yaml:"timeout"`
	Proxy            Proxy    `yaml:"proxy"`
}

// Proxy holds outgoing proxy settings.
type Proxy struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// GitClient holds settings for repository fetching.
type GitClient struct {
	Depth      int      `yaml:"depth"`
	Token      string   `yaml:"token"`
	SSHKeyPath string   `yaml:"ssh_key_path"`
	Timeout    Duration `yaml:"timeout"`
}

// Storage holds settings for the AWS persistence collaborators. An empty
// bucket or table name disables the corresponding store.
type Storage struct {
	S3Bucket      string   `yaml:"s3_bucket"`
	DynamoDBTable string   `yaml:"dynamodb_table"`
	Region        string   `yaml:"region"`
	PresignExpiry Duration `yaml:"presign_expiry"`
}

// Duration wraps time.Duration so the YAML config accepts duration values
// either as strings ("30s", "1m") or as plain integer seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	switch value := raw.(type) {
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
		*d = Duration(parsed)
	case int:
		*d = Duration(time.Duration(value) * time.Second)
	case float64:
		*d = Duration(time.Duration(value * float64(time.Second)))
	default:
		return fmt.Errorf("invalid duration value: %v", raw)
	}
	return nil
}

// Std returns the wrapped standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// LoadConfig reads and decodes the YAML config file at the given path.
func LoadConfig(path string) (*Config, error) {
	s, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if s.IsDir() {
		return nil, fmt.Errorf("%q is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := &Config{}
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %q: %w", path, err)
	}
	return cfg, nil
}

// GetDevguardHome returns the home folder from the configuration.
func GetDevguardHome(cfg *Config) string {
	return cfg.Devguard.HomeFolder
}

// GetProjectsHome returns the projects folder from the configuration.
func GetProjectsHome(cfg *Config) string {
	return cfg.Devguard.ProjectsFolder
}

// GetResultsHome returns the results folder from the configuration.
func GetResultsHome(cfg *Config) string {
	return cfg.Devguard.ResultsFolder
}

// GetTempHome returns the temp folder from the configuration.
func GetTempHome(cfg *Config) string {
	return cfg.Devguard.TempFolder
}

// IsCI reports whether the application is running in CI mode.
func IsCI(cfg *Config) bool {
	return cfg != nil && cfg.Devguard.Mode == "CI"
}
