// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFile is read when LoadConfig is called without explicit files.
const DefaultEnvFile = ".env"

// Config holds all configuration parameters for the application.
type Config struct {
	Server      ServerConfig
	Log         LogConfig
	Jira        JiraConfig
	Slack       SlackConfig
	Webhook     WebhookConfig
	ProductName string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
	File   string
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL        string
	Username   string
	Token      string
	ProjectKey string

	// BrowseURL is the base of human-facing ticket links. Defaults to URL.
	BrowseURL string
}

// SlackConfig holds Slack specific configuration.
type SlackConfig struct {
	BotToken      string
	SigningSecret string

	// Channels are registered as notification endpoints at start-up.
	Channels []string
}

// WebhookConfig holds webhook processing configuration.
type WebhookConfig struct {
	// DedupWindow drops repeated status transitions seen within the window. Zero disables.
	DedupWindow time.Duration
}

type binding struct {
	key      string
	env      string
	fallback string
}

var bindings = []binding{
	{key: "server.addr", env: "SERVER_ADDR", fallback: ":5000"},
	{key: "log.level", env: "LOG_LEVEL", fallback: "info"},
	{key: "log.format", env: "LOG_FORMAT", fallback: "text"},
	{key: "log.file", env: "LOG_FILE"},
	{key: "jira.url", env: "JIRA_URL"},
	{key: "jira.username", env: "JIRA_USERNAME"},
	{key: "jira.token", env: "JIRA_TOKEN"},
	{key: "jira.project_key", env: "JIRA_PROJECT_KEY", fallback: "CST"},
	{key: "jira.browse_url", env: "JIRA_BROWSE_URL"},
	{key: "slack.bot_token", env: "SLACK_BOT_TOKEN"},
	{key: "slack.signing_secret", env: "SLACK_SIGNING_SECRET"},
	{key: "slack.channels", env: "SLACK_CHANNELS"},
	{key: "webhook.dedup_window", env: "WEBHOOK_DEDUP_WINDOW", fallback: "0s"},
	{key: "product_name", env: "PRODUCT_NAME", fallback: "MontyCloud"},
}

// LoadConfig initializes and loads configuration from environment variables.
// Values from envFiles (or DefaultEnvFile when none are given and it exists)
// fill in variables that are not set in the process environment.
func LoadConfig(envFiles ...string) (*Config, error) {
	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.env, err)
		}
		if value, ok := dotenv[b.env]; ok {
			v.SetDefault(b.key, value)
		} else if b.fallback != "" {
			v.SetDefault(b.key, b.fallback)
		}
	}

	window, err := time.ParseDuration(strings.TrimSpace(v.GetString("webhook.dedup_window")))
	if err != nil {
		return nil, fmt.Errorf("invalid WEBHOOK_DEDUP_WINDOW: %w", err)
	}
	if window < 0 {
		return nil, fmt.Errorf("invalid WEBHOOK_DEDUP_WINDOW: must not be negative, got %s", window)
	}

	config := &Config{
		Server: ServerConfig{
			Addr: v.GetString("server.addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: strings.ToLower(v.GetString("log.format")),
			File:   v.GetString("log.file"),
		},
		Jira: JiraConfig{
			URL:        strings.TrimRight(v.GetString("jira.url"), "/"),
			Username:   v.GetString("jira.username"),
			Token:      v.GetString("jira.token"),
			ProjectKey: v.GetString("jira.project_key"),
			BrowseURL:  strings.TrimRight(v.GetString("jira.browse_url"), "/"),
		},
		Slack: SlackConfig{
			BotToken:      v.GetString("slack.bot_token"),
			SigningSecret: v.GetString("slack.signing_secret"),
			Channels:      splitList(v.GetString("slack.channels")),
		},
		Webhook: WebhookConfig{
			DedupWindow: window,
		},
		ProductName: v.GetString("product_name"),
	}
	if config.Jira.BrowseURL == "" {
		config.Jira.BrowseURL = config.Jira.URL
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// readEnvFiles merges the given dotenv files, later files winning.
// A missing DefaultEnvFile is not an error; a missing explicit file is.
func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		files = []string{DefaultEnvFile}
	}

	values, err := godotenv.Read(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to read env file: %w", err)
	}
	return values, nil
}

// validateConfig ensures that the values that are always required are usable.
func validateConfig(config *Config) error {
	if config.Server.Addr == "" {
		return fmt.Errorf("missing required environment variables: [SERVER_ADDR]")
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: must be text or json", config.Log.Format)
	}
	return nil
}

// ValidateJiraConfig reports the JIRA variables that are not set.
func ValidateJiraConfig(jira JiraConfig) error {
	var missingVars []string

	if jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateSlackConfig reports the Slack variables that are not set.
func ValidateSlackConfig(slack SlackConfig) error {
	var missingVars []string

	if slack.BotToken == "" {
		missingVars = append(missingVars, "SLACK_BOT_TOKEN")
	}
	if slack.SigningSecret == "" {
		missingVars = append(missingVars, "SLACK_SIGNING_SECRET")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
