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
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStorageSaveProvider(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := NewPostgresStorage(db)

	mock.ExpectExec("INSERT INTO quote_providers").
		WithArgs("alphavantage", "alphavantage", "key-123", "", true, 1, 5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = storage.SaveProvider(context.Background(), &ProviderConfig{
		Name:               "alphavantage",
		Type:               "alphavantage",
		APIKey:             "key-123",
		Enabled:            true,
		Priority:           1,
		RateLimitPerMinute: 5,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorageSaveNilConfig(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := NewPostgresStorage(db)
	assert.Error(t, storage.SaveProvider(context.Background(), nil))
}

func TestPostgresStorageGetProvider(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := NewPostgresStorage(db)

	rows := sqlmock.NewRows([]string{
		"name", "type", "api_key_encrypted", "endpoint",
		"enabled", "priority", "rate_limit_per_minute",
	}).AddRow("finnhub", "finnhub", "key-456", "https://finnhub.io/api/v1", true, 2, 60)

	mock.ExpectQuery("SELECT (.+) FROM quote_providers").
		WithArgs("finnhub").
		WillReturnRows(rows)

	config, err := storage.GetProvider(context.Background(), "finnhub")
	require.NoError(t, err)
	assert.Equal(t, "finnhub", config.Name)
	assert.Equal(t, 2, config.Priority)
	assert.Equal(t, 60, config.RateLimitPerMinute)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorageGetProviderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := NewPostgresStorage(db)

	mock.ExpectQuery("SELECT (.+) FROM quote_providers").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"name", "type", "api_key_encrypted", "endpoint",
			"enabled", "priority", "rate_limit_per_minute",
		}))

	_, err = storage.GetProvider(context.Background(), "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestPostgresStorageListProviders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := NewPostgresStorage(db)

	rows := sqlmock.NewRows([]string{
		"name", "type", "api_key_encrypted", "endpoint",
		"enabled", "priority", "rate_limit_per_minute",
	}).
		AddRow("alphavantage", "alphavantage", "k1", "", true, 1, 5).
		AddRow("finnhub", "finnhub", "k2", "", true, 2, 60)

	mock.ExpectQuery("SELECT (.+) FROM quote_providers").WillReturnRows(rows)

	configs, err := storage.ListProviders(context.Background())
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, "alphavantage", configs[0].Name)
	assert.Equal(t, "finnhub", configs[1].Name)
}

func TestPostgresStorageDeleteProvider(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	storage := NewPostgresStorage(db)

	mock.ExpectExec("DELETE FROM quote_providers").
		WithArgs("finnhub").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, storage.DeleteProvider(context.Background(), "finnhub"))

	mock.ExpectExec("DELETE FROM quote_providers").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorContains(t, storage.DeleteProvider(context.Background(), "missing"), "not found")
}

func TestNewProviderFromConfig(t *testing.T) {
	for _, typ := range []string{"alphavantage", "finnhub", "twelvedata"} {
		p, err := NewProviderFromConfig(ProviderConfig{Name: typ, Type: typ, Enabled: true})
		require.NoError(t, err)
		assert.Equal(t, typ, p.Name())
	}

	_, err := NewProviderFromConfig(ProviderConfig{Type: "bloomberg"})
	assert.Error(t, err)
}

func TestBuildProvidersSkipsUnknownTypes(t *testing.T) {
	providers := BuildProviders([]*ProviderConfig{
		{Name: "a", Type: "finnhub"},
		{Name: "b", Type: "bloomberg"},
		{Name: "c", Type: "twelvedata"},
	})
	require.Len(t, providers, 2)
	assert.Equal(t, "a", providers[0].Name())
	assert.Equal(t, "c", providers[1].Name())
}
