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
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"omniquery/platform/marketdata"
	"omniquery/platform/shared/types"
)

// askRequest is the /api/v1/ask request body.
type askRequest struct {
	Question       string `json:"question"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[HTTP] Failed to encode response: %v", err)
	}
}

// handleAsk answers one question.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question cannot be empty"})
		return
	}

	answer := s.coordinator.Ask(r.Context(), types.Question{
		Text:           req.Question,
		ConversationID: req.ConversationID,
	})
	writeJSON(w, http.StatusOK, answer)
}

// providerStatus is one row of the providers status response.
type providerStatus struct {
	Name      string                   `json:"name"`
	Priority  int                      `json:"priority"`
	Enabled   bool                     `json:"enabled"`
	Available bool                     `json:"available"`
	Usage     marketdata.UsageSnapshot `json:"usage"`
}

// handleProviderStatus reports the chain's try order and tracker state.
func (s *Server) handleProviderStatus(w http.ResponseWriter, _ *http.Request) {
	tracker := s.chain.Tracker()

	providers := s.chain.Providers()
	statuses := make([]providerStatus, 0, len(providers))
	for _, p := range providers {
		statuses = append(statuses, providerStatus{
			Name:      p.Name(),
			Priority:  p.Priority(),
			Enabled:   p.Enabled(),
			Available: p.IsAvailable(),
			Usage:     tracker.Snapshot(p.Name()),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"providers": statuses,
	})
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "omniquery-orchestrator",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
