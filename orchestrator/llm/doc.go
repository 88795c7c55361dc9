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

// Package llm provides the text-generation client used by the query router,
// the specialist agents, and the result aggregator.
//
// The pipeline treats the model as an opaque function: text in, text out,
// may fail or return malformed output. Callers are responsible for treating
// unparseable responses as failures, never as "empty but valid".
//
// Two production clients are provided: an Anthropic messages-API client over
// plain net/http and an AWS Bedrock client using the AWS SDK v2 with IAM
// authentication. MockClient supports tests.
package llm
