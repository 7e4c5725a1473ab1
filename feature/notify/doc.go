// Package notify publishes a RunCompleted event to NATS JetStream after
// every run. The run id doubles as the message id, so a republished run is
// deduplicated by the stream.
package notify
