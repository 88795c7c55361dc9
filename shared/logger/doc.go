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

/*
Package logger provides structured JSON logging for OmniQuery components.

# Overview

The logger outputs single-line JSON to stdout, making logs directly
consumable by CloudWatch, ELK, or any other log aggregation system.

Each entry includes:
  - Timestamp (RFC3339Nano)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (orchestrator, marketdata, memory)
  - Instance ID and container name
  - Conversation ID (scopes entries to one user conversation)
  - Request ID (correlates one question across pipeline stages)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("orchestrator")

Log messages with conversation and request context:

	log.Info("conv-123", "req-456", "Dispatching specialists", map[string]interface{}{
	    "agents": []string{"financial", "news"},
	})

Log with duration tracking:

	start := time.Now()
	// ... do work ...
	log.InfoWithDuration("conv-123", "req-456", "Aggregation completed",
	    float64(time.Since(start).Milliseconds()), nil)

# Environment Variables

  - INSTANCE_ID: deployment instance identifier

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
