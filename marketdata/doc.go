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

/*
Package marketdata provides the financial specialist's resilient quote
backend: a priority-ordered chain of upstream quote providers with
rate-limit-aware failover.

# Components

  - Provider: one upstream quote source (Alpha Vantage, Finnhub, Twelve
    Data) with a static priority and an enabled flag.
  - Tracker: per-provider usage counters and rate-limit cooldown state,
    safe under concurrent increments.
  - Chain: tries providers in ascending priority order, records every
    outcome into the Tracker, and returns the first valid quote or a
    single collective-failure quote. Chain.GetQuote never returns an
    error; failures are carried inside the quote's IsError/ErrorMessage.
  - Selector: optional LLM-backed provider pick consulted before the
    sequential fallback when agentic selection is enabled.
  - PostgresStorage: persistence for provider configurations.

# Failure semantics

A single provider failure is always recoverable by trying the next
provider. Error messages matching rate-limit heuristics are recorded as
rate-limit events rather than generic failures; the resulting 5-minute
cooldown is advisory state read by the Selector, never a hard circuit
breaker.
*/
package marketdata
