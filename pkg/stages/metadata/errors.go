package metadata

import (
	"errors"
	"fmt"
)

var (
	// ErrMetadata is the parent of every metadata resolution failure.
	ErrMetadata = errors.New("metadata error")

	// ErrInvalidInfo is returned when the log summary cannot be parsed.
	ErrInvalidInfo = fmt.Errorf("%w: invalid log summary", ErrMetadata)

	// ErrZeroDuration is returned when the log has no positive, finite duration.
	ErrZeroDuration = fmt.Errorf("%w: duration must be positive and finite", ErrMetadata)

	// ErrNoMessages is returned when the selected topic has no messages.
	ErrNoMessages = fmt.Errorf("%w: topic has no messages", ErrMetadata)

	// ErrTopicNotFound is returned when the requested topic is not in the log.
	ErrTopicNotFound = fmt.Errorf("%w: topic not found", ErrMetadata)

	// ErrAmbiguousTopic is returned when no topic was requested and the log
	// carries more than one image topic.
	ErrAmbiguousTopic = fmt.Errorf("%w: several image topics, choose one", ErrMetadata)

	// ErrNotImageTopic is returned when the selected topic does not carry images.
	ErrNotImageTopic = fmt.Errorf("%w: not an image topic", ErrMetadata)
)
