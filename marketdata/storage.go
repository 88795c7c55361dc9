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

package marketdata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
)

// Storage persists provider configurations.
type Storage interface {
	SaveProvider(ctx context.Context, config *ProviderConfig) error
	GetProvider(ctx context.Context, name string) (*ProviderConfig, error)
	ListProviders(ctx context.Context) ([]*ProviderConfig, error)
	DeleteProvider(ctx context.Context, name string) error
}

// PostgresStorage implements Storage using PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage creates a new PostgreSQL-backed storage.
func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// SaveProvider persists a provider configuration to the database.
func (s *PostgresStorage) SaveProvider(ctx context.Context, config *ProviderConfig) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	query := `
		INSERT INTO quote_providers (
			name, type, api_key_encrypted, endpoint,
			enabled, priority, rate_limit_per_minute
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE SET
			type = EXCLUDED.type,
			api_key_encrypted = EXCLUDED.api_key_encrypted,
			endpoint = EXCLUDED.endpoint,
			enabled = EXCLUDED.enabled,
			priority = EXCLUDED.priority,
			rate_limit_per_minute = EXCLUDED.rate_limit_per_minute,
			updated_at = NOW()
	`

	_, err := s.db.ExecContext(ctx, query,
		config.Name,
		config.Type,
		config.APIKey,
		config.Endpoint,
		config.Enabled,
		config.Priority,
		config.RateLimitPerMinute,
	)
	if err != nil {
		return fmt.Errorf("failed to save provider: %w", err)
	}

	return nil
}

// GetProvider retrieves one provider configuration by name.
func (s *PostgresStorage) GetProvider(ctx context.Context, name string) (*ProviderConfig, error) {
	query := `
		SELECT name, type, api_key_encrypted, endpoint,
		       enabled, priority, rate_limit_per_minute
		FROM quote_providers
		WHERE name = $1
	`

	var config ProviderConfig
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&config.Name,
		&config.Type,
		&config.APIKey,
		&config.Endpoint,
		&config.Enabled,
		&config.Priority,
		&config.RateLimitPerMinute,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("provider %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", err)
	}

	return &config, nil
}

// ListProviders retrieves all provider configurations ordered by priority.
func (s *PostgresStorage) ListProviders(ctx context.Context) ([]*ProviderConfig, error) {
	query := `
		SELECT name, type, api_key_encrypted, endpoint,
		       enabled, priority, rate_limit_per_minute
		FROM quote_providers
		ORDER BY priority ASC, name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list providers: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var configs []*ProviderConfig
	for rows.Next() {
		var config ProviderConfig
		if err := rows.Scan(
			&config.Name,
			&config.Type,
			&config.APIKey,
			&config.Endpoint,
			&config.Enabled,
			&config.Priority,
			&config.RateLimitPerMinute,
		); err != nil {
			return nil, fmt.Errorf("failed to scan provider row: %w", err)
		}
		configs = append(configs, &config)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate providers: %w", err)
	}

	return configs, nil
}

// DeleteProvider removes a provider configuration.
func (s *PostgresStorage) DeleteProvider(ctx context.Context, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM quote_providers WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("failed to delete provider: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("provider %q not found", name)
	}

	return nil
}

// NewProviderFromConfig instantiates the provider implementation named by
// the config's Type field.
func NewProviderFromConfig(cfg ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case "alphavantage":
		return NewAlphaVantageProvider(cfg), nil
	case "finnhub":
		return NewFinnhubProvider(cfg), nil
	case "twelvedata":
		return NewTwelveDataProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// BuildProviders instantiates every config, skipping unknown types.
func BuildProviders(configs []*ProviderConfig) []Provider {
	providers := make([]Provider, 0, len(configs))
	for _, cfg := range configs {
		p, err := NewProviderFromConfig(*cfg)
		if err != nil {
			log.Printf("[ProviderStorage] Skipping provider config %q: %v", cfg.Name, err)
			continue
		}
		providers = append(providers, p)
	}
	return providers
}
