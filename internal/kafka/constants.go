// Package kafka provides shared Kafka utilities for the dispatcher and API.
package kafka

import "time"

const (
	// MaxPollWait is the maximum time a fetch blocks waiting for data.
	MaxPollWait = 1 * time.Second
	// CommitInterval of zero means synchronous commits: an offset is
	// acknowledged only when the loop explicitly commits it.
	CommitInterval = 0 * time.Second
	// WriteTimeout is the maximum time to wait for a Kafka write operation.
	WriteTimeout = 10 * time.Second
)
