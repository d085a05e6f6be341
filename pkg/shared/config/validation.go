package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/devguard-io/devguard/pkg/shared/files"
)

// ValidateConfig checks if the global configuration has valid values,
// applying environment overrides and folder defaults along the way.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("YAML global config: configuration object is nil")
	}
	if err := ValidateDevguardConfig(cfg); err != nil {
		return fmt.Errorf("YAML global config: devguard directive is invalid: %w", err)
	}
	if err := ValidateHTTPConfig(&cfg.HTTPClient); err != nil {
		return fmt.Errorf("YAML global config: http_client directive is invalid: %w", err)
	}
	if err := ValidateGitConfig(&cfg.GitClient); err != nil {
		return fmt.Errorf("YAML global config: git_client directive is invalid: %w", err)
	}
	if err := ValidateLLMConfig(&cfg.LLM); err != nil {
		return fmt.Errorf("YAML global config: llm directive is invalid: %w", err)
	}
	if err := ValidateScanConfig(&cfg.Scan); err != nil {
		return fmt.Errorf("YAML global config: scan directive is invalid: %w", err)
	}
	updateStorage(&cfg.Storage)
	return nil
}

// ValidateDevguardConfig checks if the Devguard configurations have valid values.
func ValidateDevguardConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("devguard configuration is nil")
	}
	if err := updateHome(cfg); err != nil {
		return fmt.Errorf("failed to update home folder: %w", err)
	}
	if err := updateFolder(&cfg.Devguard.ProjectsFolder, "DEVGUARD_PROJECTS_FOLDER", "projects", cfg); err != nil {
		return fmt.Errorf("failed to update projects folder: %w", err)
	}
	if err := updateFolder(&cfg.Devguard.ResultsFolder, "DEVGUARD_RESULTS_FOLDER", "results", cfg); err != nil {
		return fmt.Errorf("failed to update results folder: %w", err)
	}
	if err := updateFolder(&cfg.Devguard.TempFolder, "DEVGUARD_TEMP_FOLDER", "tmp", cfg); err != nil {
		return fmt.Errorf("failed to update temp folder: %w", err)
	}
	updateMode(cfg)

	return nil
}

// ValidateGitConfig checks if the Git configurations have valid values
// and applies the environment override for the access token.
func ValidateGitConfig(gitConfig *GitClient) error {
	if gitConfig == nil {
		return fmt.Errorf("git configuration is nil")
	}
	if token := os.Getenv("DEVGUARD_GIT_TOKEN"); token != "" {
		gitConfig.Token = token
	}
	if gitConfig.Depth < 0 {
		return fmt.Errorf("depth cannot be negative: %d", gitConfig.Depth)
	}
	if err := validateDuration(gitConfig.Timeout.Std(), "timeout", 1*time.Hour); err != nil {
		return err
	}
	return nil
}

// ValidateHTTPConfig checks if the HTTP configurations have valid values.
func ValidateHTTPConfig(httpConfig *HTTPClient) error {
	if httpConfig == nil {
		return fmt.Errorf("HTTP configuration is nil")
	}
	if httpConfig.RetryCount < 0 || httpConfig.RetryCount > 20 {
		return fmt.Errorf("retry_count must be between 0 and 20: %d", httpConfig.RetryCount)
	}

	durations := map[string]time.Duration{
		"RetryMaxWaitTime": httpConfig.RetryMaxWaitTime.Std(),
		"RetryWaitTime":    httpConfig.RetryWaitTime.Std(),
		"Timeout":          httpConfig.Timeout.Std(),
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 100*time.Second); err != nil {
			return err
		}
	}

	if err := validateProxy(&httpConfig.Proxy); err != nil {
		return err
	}

	return nil
}

// ValidateLLMConfig checks if the LLM configurations have valid values
// and applies environment overrides for the API credentials and endpoint.
func ValidateLLMConfig(llmConfig *LLM) error {
	if llmConfig == nil {
		return fmt.Errorf("LLM configuration is nil")
	}

	if apiKey := os.Getenv("DEVGUARD_LLM_API_KEY"); apiKey != "" {
		llmConfig.APIKey = apiKey
	}
	if model := os.Getenv("DEVGUARD_LLM_MODEL"); model != "" {
		llmConfig.Model = model
	}
	if apiBase := os.Getenv("DEVGUARD_LLM_API_BASE"); apiBase != "" {
		llmConfig.APIBase = apiBase
	}

	if llmConfig.Temperature < 0 || llmConfig.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2: %v", llmConfig.Temperature)
	}
	if llmConfig.TopP < 0 || llmConfig.TopP > 1 {
		return fmt.Errorf("top_p must be between 0 and 1: %v", llmConfig.TopP)
	}
	if llmConfig.MaxTokens < 0 {
		return fmt.Errorf("max_tokens cannot be negative: %d", llmConfig.MaxTokens)
	}
	if llmConfig.PromptCharLimit < 0 {
		return fmt.Errorf("prompt_char_limit cannot be negative: %d", llmConfig.PromptCharLimit)
	}
	if llmConfig.MaxRetries < 0 || llmConfig.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be between 0 and 10: %d", llmConfig.MaxRetries)
	}

	durations := map[string]time.Duration{
		"MinCallInterval": llmConfig.MinCallInterval.Std(),
		"BatchInterval":   llmConfig.BatchInterval.Std(),
		"RetryBackoff":    llmConfig.RetryBackoff.Std(),
	}
	for name, duration := range durations {
		if err := validateDuration(duration, name, 10*time.Minute); err != nil {
			return err
		}
	}

	return nil
}

// ValidateScanConfig checks if the scan pipeline configurations have valid values.
func ValidateScanConfig(scanConfig *Scan) error {
	if scanConfig == nil {
		return fmt.Errorf("scan configuration is nil")
	}
	counts := map[string]int{
		"window_size":       scanConfig.WindowSize,
		"batch_size":        scanConfig.BatchSize,
		"config_chunk_keep": scanConfig.ConfigChunkKeep,
		"small_file_chunks": scanConfig.SmallFileChunks,
	}
	for name, value := range counts {
		if value < 0 {
			return fmt.Errorf("%s cannot be negative: %d", name, value)
		}
	}
	if scanConfig.MaxTargetSize < 0 {
		return fmt.Errorf("max_target_size cannot be negative: %d", scanConfig.MaxTargetSize)
	}
	return nil
}

// validateDuration checks that a time.Duration is valid and within a specified maximum duration.
func validateDuration(d time.Duration, name string, max time.Duration) error {
	if d < 0 {
		return fmt.Errorf("invalid duration for %q: %v cannot be negative", name, d)
	}
	if d > max {
		return fmt.Errorf("%q duration is too long: %v exceeds maximum of %v", name, d, max)
	}
	return nil
}

// validateProxy checks if the given Proxy settings are valid.
func validateProxy(proxy *Proxy) error {
	if proxy == nil {
		return fmt.Errorf("proxy configuration is nil")
	}

	// If host or port is not set, skip further validation
	if proxy.Host == "" || proxy.Port == 0 {
		return nil
	}

	if err := validateHost(&proxy.Host); err != nil {
		return err
	}

	if err := validatePort(proxy.Port); err != nil {
		return err
	}

	return nil
}

// validateHost checks if the host part of the proxy configuration is valid.
// It ensures the host includes a scheme; adds "http" if missing.
func validateHost(host *string) error {
	if host == nil {
		return fmt.Errorf("host string pointer is nil")
	}

	if !strings.Contains(*host, "://") {
		*host = "http://" + *host
	}
	*host = strings.TrimRight(*host, "/")

	// TODO: Add domain or IP validation
	_, err := url.Parse(*host)
	if err != nil {
		return fmt.Errorf("invalid host URL: %w", err)
	}

	return nil
}

// validatePort checks if the port part of the proxy configuration is valid.
func validatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// updateHome updates the HomeFolder in the Devguard config from environment variables or sets a default value.
func updateHome(cfg *Config) error {
	if devguardHomeFolder := os.Getenv("DEVGUARD_HOME"); devguardHomeFolder != "" {
		cfg.Devguard.HomeFolder = devguardHomeFolder
	} else if cfg.Devguard.HomeFolder == "" {
		homeFolder, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to get user home folder: %w", err)
		}
		cfg.Devguard.HomeFolder = filepath.Join(homeFolder, ".devguard")
	}

	expandedHomePath, err := files.ExpandPath(cfg.Devguard.HomeFolder)
	if err != nil {
		return fmt.Errorf("failed to expand new home path %q: %w", cfg.Devguard.HomeFolder, err)
	}
	cfg.Devguard.HomeFolder = expandedHomePath

	if err := files.CreateFolderIfNotExists(expandedHomePath); err != nil {
		return fmt.Errorf("failed to create home folder %q: %w", cfg.Devguard.HomeFolder, err)
	}
	return nil
}

// updateFolder updates a folder path in the Devguard configuration.
func updateFolder(folder *string, envVar, defaultSubFolder string, cfg *Config) error {
	if envVarValue := os.Getenv(envVar); envVarValue != "" {
		*folder = envVarValue
	} else if *folder == "" {
		*folder = filepath.Join(GetDevguardHome(cfg), defaultSubFolder)
	}

	expandedHomePath, err := files.ExpandPath(*folder)
	if err != nil {
		return fmt.Errorf("failed to expand new home path %q: %w", *folder, err)
	}
	*folder = expandedHomePath

	if err := files.CreateFolderIfNotExists(expandedHomePath); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", expandedHomePath, err)
	}
	return nil
}

// updateMode updates the Mode field in the Devguard configuration based on environment variables.
func updateMode(cfg *Config) {
	if os.Getenv("DEVGUARD_MODE") == "CI" || os.Getenv("CI") == "true" {
		cfg.Devguard.Mode = "CI"
		return
	}

	if envVarValue := os.Getenv("DEVGUARD_MODE"); envVarValue != "" {
		cfg.Devguard.Mode = envVarValue
		return
	}

	cfg.Devguard.Mode = "user"
}

// updateStorage applies environment overrides for the AWS persistence settings.
func updateStorage(storageConfig *Storage) {
	if bucket := os.Getenv("DEVGUARD_S3_BUCKET"); bucket != "" {
		storageConfig.S3Bucket = bucket
	}
	if table := os.Getenv("DEVGUARD_DYNAMODB_TABLE"); table != "" {
		storageConfig.DynamoDBTable = table
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		storageConfig.Region = region
	}
}
