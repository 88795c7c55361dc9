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

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics
var (
	providerAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "omniquery_marketdata_provider_attempts_total",
			Help: "Total provider quote attempts by outcome",
		},
		[]string{"provider", "outcome"},
	)
)

func init() {
	// Register Prometheus metrics
	prometheus.MustRegister(providerAttempts)
}
