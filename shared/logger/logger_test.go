// Copyright 2025 OmniQuery
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

// TestNew tests logger initialization
func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		component      string
		instanceID     string
		expectedComp   string
		expectedInstID string
	}{
		{
			name:           "with instance ID set",
			component:      "orchestrator",
			instanceID:     "instance-123",
			expectedComp:   "orchestrator",
			expectedInstID: "instance-123",
		},
		{
			name:           "without instance ID",
			component:      "marketdata",
			instanceID:     "",
			expectedComp:   "marketdata",
			expectedInstID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.instanceID != "" {
				os.Setenv("INSTANCE_ID", tt.instanceID)
			} else {
				os.Unsetenv("INSTANCE_ID")
			}
			defer os.Unsetenv("INSTANCE_ID")

			l := New(tt.component)

			if l.Component != tt.expectedComp {
				t.Errorf("Component = %q, want %q", l.Component, tt.expectedComp)
			}
			if l.InstanceID != tt.expectedInstID {
				t.Errorf("InstanceID = %q, want %q", l.InstanceID, tt.expectedInstID)
			}
			if l.Container == "" {
				t.Error("Container should not be empty")
			}
		})
	}
}

// captureOutput redirects the standard logger while fn runs
func captureOutput(fn func()) string {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetFlags(0)
	defer func() {
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	}()
	fn()
	return buf.String()
}

func TestLogEntryFormat(t *testing.T) {
	l := New("orchestrator")

	out := captureOutput(func() {
		l.Info("conv-1", "req-1", "hello", map[string]interface{}{"agents": 2})
	})

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, out)
	}

	if entry.Level != INFO {
		t.Errorf("Level = %q, want INFO", entry.Level)
	}
	if entry.Component != "orchestrator" {
		t.Errorf("Component = %q, want orchestrator", entry.Component)
	}
	if entry.ConversationID != "conv-1" {
		t.Errorf("ConversationID = %q, want conv-1", entry.ConversationID)
	}
	if entry.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", entry.RequestID)
	}
	if entry.Message != "hello" {
		t.Errorf("Message = %q, want hello", entry.Message)
	}
	if entry.Fields["agents"] != float64(2) {
		t.Errorf("Fields[agents] = %v, want 2", entry.Fields["agents"])
	}
}

func TestInfoWithDuration(t *testing.T) {
	l := New("orchestrator")

	out := captureOutput(func() {
		l.InfoWithDuration("conv-1", "req-1", "done", 42.5, nil)
	})

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Fields["duration_ms"] != 42.5 {
		t.Errorf("duration_ms = %v, want 42.5", entry.Fields["duration_ms"])
	}
}

func TestErrorWithErr(t *testing.T) {
	l := New("marketdata")

	out := captureOutput(func() {
		l.ErrorWithErr("", "req-9", "provider failed", errors.New("boom"), nil)
	})

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != ERROR {
		t.Errorf("Level = %q, want ERROR", entry.Level)
	}
	if entry.Fields["error"] != "boom" {
		t.Errorf("Fields[error] = %v, want boom", entry.Fields["error"])
	}
	if entry.ConversationID != "" {
		t.Errorf("ConversationID should be omitted when empty, got %q", entry.ConversationID)
	}
}
