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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultSpecialistTimeout, cfg.Server.SpecialistTimeout())
	assert.Equal(t, "anthropic", cfg.LLM.Backend)
	assert.False(t, cfg.AgenticSelection.Enabled, "agentic selection must default off")
	assert.True(t, cfg.AgenticSelection.FallbackEnabled(), "fallback must default on")
}

func TestLoadYAMLFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  specialist_timeout_seconds: 10
llm:
  backend: bedrock
  bedrock_region: us-east-1
agentic_selection:
  enabled: true
  fallback_on_failure: false
providers:
  - name: primary
    type: alphavantage
    api_key: key-1
    enabled: true
    priority: 1
  - name: backup
    type: finnhub
    api_key: key-2
    enabled: true
    priority: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.SpecialistTimeout())
	assert.Equal(t, "bedrock", cfg.LLM.Backend)
	assert.True(t, cfg.AgenticSelection.Enabled)
	assert.False(t, cfg.AgenticSelection.FallbackEnabled())
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "primary", cfg.Providers[0].Name)
	assert.Equal(t, 2, cfg.Providers[1].Priority)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
`)
	t.Setenv("PORT", "7070")
	t.Setenv("ANTHROPIC_API_KEY", "env-key")
	t.Setenv("AGENTIC_SELECTION_ENABLED", "true")
	t.Setenv("REDIS_URL", "redis://localhost:6379/2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port, "env must win over file")
	assert.Equal(t, "env-key", cfg.LLM.AnthropicAPIKey)
	assert.True(t, cfg.AgenticSelection.Enabled)
	assert.Equal(t, "redis://localhost:6379/2", cfg.RedisURL)
}

func TestLoadProviderKeyFromEnv(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "env-finnhub-key")

	cfg, err := Load("")
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "finnhub", cfg.Providers[0].Type)
	assert.Equal(t, "env-finnhub-key", cfg.Providers[0].APIKey)
	assert.True(t, cfg.Providers[0].Enabled)
}

func TestLoadProviderKeyDoesNotOverrideFile(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  - name: finnhub
    type: finnhub
    api_key: file-key
    enabled: true
    priority: 1
`)
	t.Setenv("FINNHUB_API_KEY", "env-key")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "file-key", cfg.Providers[0].APIKey)
}

func TestLoadRejectsBadBackend(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  backend: openai
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown llm backend")
}

func TestLoadRejectsDuplicateProviders(t *testing.T) {
	path := writeConfigFile(t, `
providers:
  - name: dup
    type: finnhub
  - name: dup
    type: twelvedata
`)
	_, err := Load(path)
	assert.ErrorContains(t, err, "duplicate provider")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}
