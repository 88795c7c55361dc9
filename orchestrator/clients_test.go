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

package orchestrator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherClientCurrentByLocation(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Berlin", r.URL.Query().Get("name"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"name": "Berlin", "latitude": 52.52, "longitude": 13.41, "country": "Germany"}]}`))
	}))
	defer geocode.Close()

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather": {"temperature": 18.5, "windspeed": 12.3, "weathercode": 2}}`))
	}))
	defer forecast.Close()

	client := NewWeatherClientWithURLs(geocode.URL, forecast.URL)
	report, err := client.CurrentByLocation(context.Background(), "Berlin")
	require.NoError(t, err)

	assert.Contains(t, report, "Berlin")
	assert.Contains(t, report, "partly cloudy")
	assert.Contains(t, report, "18.5")
}

func TestWeatherClientUnknownLocation(t *testing.T) {
	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer geocode.Close()

	client := NewWeatherClientWithURLs(geocode.URL, geocode.URL)
	_, err := client.CurrentByLocation(context.Background(), "Nowhereville")
	assert.ErrorContains(t, err, "no location found")
}

func TestWeatherClientEmptyArgs(t *testing.T) {
	client := NewWeatherClient()
	_, err := client.CurrentByLocation(context.Background(), "")
	assert.Error(t, err)
	_, err = client.CurrentByZip(context.Background(), "")
	assert.Error(t, err)
}

func TestNewsClientHeadlines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "business", r.URL.Query().Get("category"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "success", "results": [
			{"title": "Markets rally", "source_id": "example", "pubDate": "2025-06-01", "description": "Stocks up"}
		]}`))
	}))
	defer server.Close()

	client := NewNewsClientWithURL("test-key", server.URL)
	headlines, err := client.Headlines(context.Background(), "business")
	require.NoError(t, err)

	assert.Contains(t, headlines, "Markets rally")
	assert.Contains(t, headlines, "example")
}

func TestNewsClientRequiresAPIKey(t *testing.T) {
	client := NewNewsClient("")
	_, err := client.Headlines(context.Background(), "")
	assert.ErrorContains(t, err, "not configured")
}

func TestNewsClientRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewNewsClientWithURL("test-key", server.URL)
	_, err := client.Search(context.Background(), "anything")
	assert.ErrorContains(t, err, "rate limit")
}

func TestEmptySearcher(t *testing.T) {
	searcher := EmptySearcher{}

	result, err := searcher.Search(context.Background(), "portfolio")
	require.NoError(t, err)
	assert.Equal(t, NoDocumentsFound, result)

	result, err = searcher.SearchTimeRange(context.Background(), "portfolio", "2022")
	require.NoError(t, err)
	assert.Equal(t, NoDocumentsFound, result)
}
