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

// Package orchestrator runs the question pipeline: an LLM router classifies
// each question into specialist intents, the matched specialists execute
// concurrently with hard-bounded tool sets, and an aggregator synthesizes
// their results into one answer.
//
// Every stage degrades instead of failing: classification errors fail open
// to all specialists, specialist errors become failed results, and synthesis
// errors fall back to concatenation. A question always produces an answer.
package orchestrator
