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

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics
var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniquery_orchestrator_requests_total",
			Help: "Total number of questions processed",
		},
		[]string{"status"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "omniquery_orchestrator_request_duration_milliseconds",
			Help:    "Question processing duration in milliseconds",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"stage"},
	)
	agentExecutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniquery_orchestrator_agent_executions_total",
			Help: "Specialist executions by agent and outcome",
		},
		[]string{"agent", "status"},
	)
	synthesisFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "omniquery_orchestrator_synthesis_fallbacks_total",
			Help: "Times synthesis fell back to concatenation",
		},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestDuration)
	prometheus.MustRegister(agentExecutions)
	prometheus.MustRegister(synthesisFallbacks)
}
