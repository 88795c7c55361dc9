// Copyright 2025 OmniQuery
// SPDX-License-Identifier: Apache-2.0
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads service configuration from an optional YAML file with
// environment-variable overrides. Environment always wins over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"omniquery/platform/marketdata"
)

// Configuration defaults
const (
	DefaultPort              = 8080
	DefaultSpecialistTimeout = 45 * time.Second
	DefaultAnthropicModel    = "claude-3-5-sonnet-20241022"
)

// Config is the full service configuration.
type Config struct {
	Server           ServerConfig                 `yaml:"server"`
	LLM              LLMConfig                    `yaml:"llm"`
	AgenticSelection AgenticSelectionConfig       `yaml:"agentic_selection"`
	Providers        []marketdata.ProviderConfig  `yaml:"providers"`
	RedisURL         string                       `yaml:"redis_url"`
	DatabaseURL      string                       `yaml:"database_url"`
	Auth             AuthConfig                   `yaml:"auth"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port                     int `yaml:"port"`
	SpecialistTimeoutSeconds int `yaml:"specialist_timeout_seconds"`
}

// SpecialistTimeout returns the per-specialist execution timeout.
func (s ServerConfig) SpecialistTimeout() time.Duration {
	if s.SpecialistTimeoutSeconds <= 0 {
		return DefaultSpecialistTimeout
	}
	return time.Duration(s.SpecialistTimeoutSeconds) * time.Second
}

// LLMConfig selects and configures the language model backend.
type LLMConfig struct {
	// Backend is "anthropic" (default) or "bedrock".
	Backend         string `yaml:"backend"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	Model           string `yaml:"model"`
	BedrockRegion   string `yaml:"bedrock_region"`
}

// AgenticSelectionConfig controls the intelligent provider selector.
// Selection is off by default; when a pick fails, fallback to the sequential
// chain is on by default.
type AgenticSelectionConfig struct {
	Enabled           bool  `yaml:"enabled"`
	FallbackOnFailure *bool `yaml:"fallback_on_failure"`
}

// FallbackEnabled resolves the fallback flag with its default of true.
func (a AgenticSelectionConfig) FallbackEnabled() bool {
	if a.FallbackOnFailure == nil {
		return true
	}
	return *a.FallbackOnFailure
}

// AuthConfig holds the bearer-token middleware settings. An empty secret
// disables authentication.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// Load reads configuration from path (may be empty for env-only operation)
// and applies environment overrides and defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SPECIALIST_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			c.Server.SpecialistTimeoutSeconds = secs
		}
	}
	if v := os.Getenv("LLM_BACKEND"); v != "" {
		c.LLM.Backend = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.LLM.AnthropicAPIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" && c.LLM.BedrockRegion == "" {
		c.LLM.BedrockRegion = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("AUTH_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("AGENTIC_SELECTION_ENABLED"); v != "" {
		c.AgenticSelection.Enabled = parseBool(v)
	}
	if v := os.Getenv("AGENTIC_SELECTION_FALLBACK"); v != "" {
		b := parseBool(v)
		c.AgenticSelection.FallbackOnFailure = &b
	}

	// Per-provider API keys may arrive via environment instead of the file
	c.applyProviderKey("alphavantage", os.Getenv("ALPHAVANTAGE_API_KEY"))
	c.applyProviderKey("finnhub", os.Getenv("FINNHUB_API_KEY"))
	c.applyProviderKey("twelvedata", os.Getenv("TWELVEDATA_API_KEY"))
}

// applyProviderKey fills the API key for providers of the given type that
// have none configured, creating a default entry when the type is absent.
func (c *Config) applyProviderKey(providerType, key string) {
	if key == "" {
		return
	}
	for i := range c.Providers {
		if c.Providers[i].Type == providerType {
			if c.Providers[i].APIKey == "" {
				c.Providers[i].APIKey = key
			}
			return
		}
	}
	c.Providers = append(c.Providers, marketdata.ProviderConfig{
		Name:     providerType,
		Type:     providerType,
		APIKey:   key,
		Enabled:  true,
		Priority: len(c.Providers) + 1,
	})
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.LLM.Backend == "" {
		c.LLM.Backend = "anthropic"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultAnthropicModel
	}
	for i := range c.Providers {
		if c.Providers[i].Name == "" {
			c.Providers[i].Name = c.Providers[i].Type
		}
	}
}

func (c *Config) validate() error {
	switch c.LLM.Backend {
	case "anthropic", "bedrock":
	default:
		return fmt.Errorf("unknown llm backend %q (want anthropic or bedrock)", c.LLM.Backend)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider name %q", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}
