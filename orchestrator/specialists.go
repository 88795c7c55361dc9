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
	"omniquery/platform/marketdata"
	"omniquery/platform/orchestrator/llm"
)

// Specialist display names, used in AgentResults and aggregator output.
const (
	FinancialAgentName = "Financial Agent"
	ResearchAgentName  = "Research Agent"
	NewsAgentName      = "News Agent"
	WeatherAgentName   = "Weather Agent"
)

// NewFinancialAgent builds the financial specialist. Its quote tool is
// backed by the resilient provider chain; the other tools are single
// external calls.
func NewFinancialAgent(client llm.Client, chain *marketdata.Chain, fundamentals marketdata.FundamentalsClient) *SpecialistAgent {
	const prompt = `You are a financial data specialist. You answer questions about stock
prices, company fundamentals, market movers, and economic indicators using
your tools. Always state which data source a figure came from and note the
quote's trade time when relevant. Never invent prices.`

	return NewSpecialistAgent(FinancialAgentName, prompt, client, []Tool{
		newStockQuoteTool(chain),
		newFinancialRatiosTool(fundamentals),
		newHistoricalPricesTool(fundamentals),
		newMarketMoversTool(fundamentals),
		newEconomicIndicatorTool(fundamentals),
	})
}

// NewResearchAgent builds the research specialist over a document store.
func NewResearchAgent(client llm.Client, searcher DocumentSearcher) *SpecialistAgent {
	const prompt = `You are a research specialist. You answer general-knowledge questions
and questions about the user's documents. Search the document store before
answering document questions; when the store has nothing relevant, say so
and answer from general knowledge.`

	return NewSpecialistAgent(ResearchAgentName, prompt, client, []Tool{
		newDocumentSearchTool(searcher),
		newTemporalSearchTool(searcher),
	})
}

// NewNewsAgent builds the news specialist.
func NewNewsAgent(client llm.Client, news *NewsClient) *SpecialistAgent {
	const prompt = `You are a news specialist. You report current headlines and recent
events using your tools. Attribute stories to their source and include
publication dates. If the news service is unavailable, say you could not
retrieve live news rather than inventing stories.`

	return NewSpecialistAgent(NewsAgentName, prompt, client, []Tool{
		newHeadlinesTool(news),
		newNewsSearchTool(news),
	})
}

// NewWeatherAgent builds the weather specialist.
func NewWeatherAgent(client llm.Client, weather *WeatherClient) *SpecialistAgent {
	const prompt = `You are a weather specialist. You report current conditions using your
tools. Use weather_by_zip only for US zip codes, weather_by_location for
everything else. Include temperature and conditions in your answer.`

	return NewSpecialistAgent(WeatherAgentName, prompt, client, []Tool{
		newWeatherByLocationTool(weather),
		newWeatherByZipTool(weather),
	})
}
