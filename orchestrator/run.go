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
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"omniquery/platform/config"
	"omniquery/platform/marketdata"
	"omniquery/platform/memory"
	"omniquery/platform/orchestrator/llm"
)

// Server is the assembled orchestrator service.
type Server struct {
	cfg         *config.Config
	coordinator *Coordinator
	chain       *marketdata.Chain
	memoryStore *memory.Store
}

// NewServer wires the whole pipeline from configuration.
func NewServer(cfg *config.Config) (*Server, error) {
	client, err := buildLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	providers, err := buildProviders(cfg)
	if err != nil {
		return nil, err
	}

	chainOpts := []marketdata.ChainOption{}
	if cfg.AgenticSelection.Enabled {
		chainOpts = append(chainOpts,
			marketdata.WithSelector(marketdata.NewSelector(client)),
			marketdata.WithFallbackOnFailure(cfg.AgenticSelection.FallbackEnabled()),
		)
		log.Printf("[Server] Agentic provider selection enabled (fallback=%v)", cfg.AgenticSelection.FallbackEnabled())
	}
	chain := marketdata.NewChain(providers, marketdata.NewTracker(), chainOpts...)

	var memoryStore *memory.Store
	if cfg.RedisURL != "" {
		memoryStore, err = memory.NewStore(cfg.RedisURL)
		if err != nil {
			// Memory is best effort; the pipeline works without history
			log.Printf("[Server] Conversation memory unavailable: %v", err)
			memoryStore = nil
		}
	}

	fundamentals := marketdata.NewAlphaVantageFundamentals(alphaVantageKey(cfg))
	news := NewNewsClient(os.Getenv("NEWSDATA_API_KEY"))
	weather := NewWeatherClient()

	coordinator := NewCoordinator(
		NewQueryRouter(client),
		NewResultAggregator(client),
		NewFinancialAgent(client, chain, fundamentals),
		NewResearchAgent(client, EmptySearcher{}),
		NewNewsAgent(client, news),
		NewWeatherAgent(client, weather),
		memoryStore,
		cfg.Server.SpecialistTimeout(),
	)

	return &Server{
		cfg:         cfg,
		coordinator: coordinator,
		chain:       chain,
		memoryStore: memoryStore,
	}, nil
}

// buildLLMClient selects the configured text-generation backend.
func buildLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLM.Backend {
	case "bedrock":
		return llm.NewBedrockClient(cfg.LLM.BedrockRegion, cfg.LLM.Model)
	default:
		return llm.NewAnthropicClient(llm.AnthropicConfig{
			APIKey: cfg.LLM.AnthropicAPIKey,
			Model:  cfg.LLM.Model,
		})
	}
}

// buildProviders seeds the chain from Postgres when DATABASE_URL is set,
// otherwise from the static configuration.
func buildProviders(cfg *config.Config) ([]marketdata.Provider, error) {
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open provider database: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		configs, err := marketdata.NewPostgresStorage(db).ListProviders(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load providers from database: %w", err)
		}
		log.Printf("[Server] Loaded %d provider config(s) from database", len(configs))
		return marketdata.BuildProviders(configs), nil
	}

	configs := make([]*marketdata.ProviderConfig, len(cfg.Providers))
	for i := range cfg.Providers {
		configs[i] = &cfg.Providers[i]
	}
	log.Printf("[Server] Using %d provider config(s) from static configuration", len(configs))
	return marketdata.BuildProviders(configs), nil
}

func alphaVantageKey(cfg *config.Config) string {
	for _, p := range cfg.Providers {
		if p.Type == "alphavantage" {
			return p.APIKey
		}
	}
	return ""
}

// Routes builds the HTTP handler: REST API wrapped in CORS, with the
// Prometheus endpoint outside authentication.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/prometheus", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/ask", s.handleAsk).Methods("POST")
	api.HandleFunc("/providers/status", s.handleProviderStatus).Methods("GET")
	api.Use(func(next http.Handler) http.Handler {
		return authMiddleware(s.cfg.Auth.JWTSecret, next)
	})

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on :%d", s.cfg.Server.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Printf("[Server] Shutting down")
		if s.memoryStore != nil {
			_ = s.memoryStore.Close()
		}
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
