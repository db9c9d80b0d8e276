// Package config defines the fintel configuration model and its loader.
//
// Configuration comes from a YAML file with ${VAR} / ${VAR:-default}
// environment expansion, or from zero-config defaults when no file is
// given. Every section follows the SetDefaults/Validate convention.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the fintel server.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Logger   LoggerConfig   `yaml:"logger"`
	LLM      LLMConfig      `yaml:"llm"`
	Tools    ToolsConfig    `yaml:"tools"`
	Workflow WorkflowConfig `yaml:"workflow"`
}

// WorkflowConfig bounds a single workflow execution.
type WorkflowConfig struct {
	// Timeout is the overall deadline for one workflow in seconds.
	Timeout int `yaml:"timeout"`

	// MinAgents and MaxAgents bound the plan size the coordinator accepts.
	MinAgents int `yaml:"min_agents"`
	MaxAgents int `yaml:"max_agents"`
}

func (c *WorkflowConfig) SetDefaults() {
	if c.Timeout == 0 {
		c.Timeout = 300
	}
	if c.MinAgents == 0 {
		c.MinAgents = 2
	}
	if c.MaxAgents == 0 {
		c.MaxAgents = 3
	}
}

func (c *WorkflowConfig) Validate() error {
	if c.MinAgents < 1 {
		return fmt.Errorf("workflow.min_agents must be at least 1")
	}
	if c.MaxAgents < c.MinAgents {
		return fmt.Errorf("workflow.max_agents (%d) must be >= workflow.min_agents (%d)",
			c.MaxAgents, c.MinAgents)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("workflow.timeout cannot be negative")
	}
	return nil
}

// SetDefaults applies defaults to all sections.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Logger.SetDefaults()
	c.LLM.SetDefaults()
	c.Tools.SetDefaults()
	c.Workflow.SetDefaults()
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Tools.Validate(); err != nil {
		return err
	}
	return c.Workflow.Validate()
}

// Load reads a YAML config file, expanding environment variables in the
// raw document before unmarshaling. A .env file next to the process is
// honored first.
func Load(path string) (*Config, error) {
	LoadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// ZeroConfigOptions describe a configuration assembled from CLI flags
// alone, without a YAML file.
type ZeroConfigOptions struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// LoadOrDefault loads the config file when path is non-empty, otherwise
// builds a zero-config setup from the given options and environment.
func LoadOrDefault(path string, opts ZeroConfigOptions) (*Config, error) {
	if path != "" {
		return Load(path)
	}

	LoadEnvFiles()

	cfg := &Config{}
	cfg.LLM.Providers = DefaultProviders(opts)
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
