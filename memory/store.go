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

package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DefaultTTL is how long a conversation survives without new turns.
	DefaultTTL = 24 * time.Hour

	// DefaultMaxTurns caps the history kept per conversation.
	DefaultMaxTurns = 20
)

// Turn is one question/answer exchange in a conversation.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Store keeps conversation history in Redis so follow-up questions can carry
// context across requests. Redis being unavailable is never fatal to a
// request; callers treat history as best effort.
type Store struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithTTL overrides the conversation expiry.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithMaxTurns overrides the per-conversation history cap.
func WithMaxTurns(n int) StoreOption {
	return func(s *Store) {
		s.maxTurns = n
	}
}

// NewStore connects to Redis at redisURL (redis://host:port/db) and verifies
// the connection.
func NewStore(redisURL string, opts ...StoreOption) (*Store, error) {
	redisOpts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewStoreWithClient(client, opts...), nil
}

// NewStoreWithClient wraps an existing Redis client. Test hook and
// dependency-injection entry point.
func NewStoreWithClient(client *redis.Client, opts ...StoreOption) *Store {
	s := &Store{
		client:   client,
		ttl:      DefaultTTL,
		maxTurns: DefaultMaxTurns,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func conversationKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:turns", conversationID)
}

// Append records one turn and refreshes the conversation TTL. History is
// trimmed to the newest maxTurns entries.
func (s *Store) Append(ctx context.Context, conversationID string, turn Turn) error {
	if conversationID == "" {
		return fmt.Errorf("conversation ID cannot be empty")
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}

	key := conversationKey(conversationID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}

	return nil
}

// History returns the conversation's turns, oldest first. An unknown
// conversation yields an empty history, not an error.
func (s *Store) History(ctx context.Context, conversationID string) ([]Turn, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("conversation ID cannot be empty")
	}

	raw, err := s.client.LRange(ctx, conversationKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	turns := make([]Turn, 0, len(raw))
	for _, item := range raw {
		var turn Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// Skip corrupt entries rather than losing the whole history
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear deletes a conversation's history.
func (s *Store) Clear(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, conversationKey(conversationID)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
