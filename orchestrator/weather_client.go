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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	openMeteoGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// WeatherClient fetches current conditions from the Open-Meteo API, which
// requires no API key. Locations are resolved through its geocoding endpoint;
// US zip codes resolve through the same endpoint.
type WeatherClient struct {
	geocodeURL  string
	forecastURL string
	client      *http.Client
}

// NewWeatherClient creates an Open-Meteo weather client.
func NewWeatherClient() *WeatherClient {
	return &WeatherClient{
		geocodeURL:  openMeteoGeocodeURL,
		forecastURL: openMeteoForecastURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// NewWeatherClientWithURLs creates a client against custom endpoints. Test hook.
func NewWeatherClientWithURLs(geocodeURL, forecastURL string) *WeatherClient {
	return &WeatherClient{
		geocodeURL:  geocodeURL,
		forecastURL: forecastURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type geocodeResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Country   string  `json:"country"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WindSpeed   float64 `json:"windspeed"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// weatherCodeDescriptions maps WMO weather codes to text.
var weatherCodeDescriptions = map[int]string{
	0: "clear sky", 1: "mainly clear", 2: "partly cloudy", 3: "overcast",
	45: "fog", 48: "depositing rime fog",
	51: "light drizzle", 53: "moderate drizzle", 55: "dense drizzle",
	61: "slight rain", 63: "moderate rain", 65: "heavy rain",
	71: "slight snow", 73: "moderate snow", 75: "heavy snow",
	80: "rain showers", 81: "moderate rain showers", 82: "violent rain showers",
	95: "thunderstorm", 96: "thunderstorm with hail", 99: "thunderstorm with heavy hail",
}

// CurrentByLocation returns a one-line current-conditions summary for a named
// place (city, region, or "city, country").
func (w *WeatherClient) CurrentByLocation(ctx context.Context, location string) (string, error) {
	if location == "" {
		return "", fmt.Errorf("location cannot be empty")
	}
	return w.lookup(ctx, location)
}

// CurrentByZip returns current conditions for a US zip code.
func (w *WeatherClient) CurrentByZip(ctx context.Context, zip string) (string, error) {
	if zip == "" {
		return "", fmt.Errorf("zip code cannot be empty")
	}
	return w.lookup(ctx, zip)
}

func (w *WeatherClient) lookup(ctx context.Context, place string) (string, error) {
	endpoint := fmt.Sprintf("%s?name=%s&count=1", w.geocodeURL, url.QueryEscape(place))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create geocode request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("geocoding request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoding returned status %d", resp.StatusCode)
	}

	var geo geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&geo); err != nil {
		return "", fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(geo.Results) == 0 {
		return "", fmt.Errorf("no location found for %q", place)
	}

	loc := geo.Results[0]
	forecast, err := w.forecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return "", err
	}

	description := weatherCodeDescriptions[forecast.CurrentWeather.WeatherCode]
	if description == "" {
		description = "unknown conditions"
	}

	where := loc.Name
	if loc.Admin1 != "" {
		where = fmt.Sprintf("%s, %s", loc.Name, loc.Admin1)
	}
	return fmt.Sprintf("Current weather in %s (%s): %s, %.1f°C, wind %.1f km/h",
		where, loc.Country, description,
		forecast.CurrentWeather.Temperature, forecast.CurrentWeather.WindSpeed), nil
}

func (w *WeatherClient) forecast(ctx context.Context, lat, lon float64) (*forecastResponse, error) {
	endpoint := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&current_weather=true", w.forecastURL, lat, lon)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create forecast request: %w", err)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast returned status %d", resp.StatusCode)
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}
	return &forecast, nil
}
