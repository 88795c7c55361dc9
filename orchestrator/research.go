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

import "context"

// NoDocumentsFound is the explicit marker a searcher returns when nothing
// matched. It is a success outcome, not an error; the research specialist
// answers from model knowledge when it sees it.
const NoDocumentsFound = "no relevant documents found"

// DocumentSearcher is the research specialist's document backend. The vector
// store behind it is pluggable; this package only forwards queries.
type DocumentSearcher interface {
	// Search returns free text describing matching documents, or
	// NoDocumentsFound.
	Search(ctx context.Context, query string) (string, error)

	// SearchTimeRange restricts the search to documents from a time period
	// described in free text (e.g. "2022", "last quarter").
	SearchTimeRange(ctx context.Context, query, period string) (string, error)
}

// EmptySearcher is a DocumentSearcher over no documents. It is the default
// backend when no document store is wired in.
type EmptySearcher struct{}

// Search always reports no matches.
func (EmptySearcher) Search(ctx context.Context, query string) (string, error) {
	return NoDocumentsFound, nil
}

// SearchTimeRange always reports no matches.
func (EmptySearcher) SearchTimeRange(ctx context.Context, query, period string) (string, error) {
	return NoDocumentsFound, nil
}
