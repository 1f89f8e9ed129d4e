package rosbag

import "errors"

var (
	// ErrNotBag is returned when the file does not start with the bag magic.
	ErrNotBag = errors.New("not a rosbag file")

	// ErrUnsupportedVersion is returned for bag format versions other than 2.0.
	ErrUnsupportedVersion = errors.New("unsupported rosbag version")

	// ErrCorrupt is returned when a record cannot be parsed.
	ErrCorrupt = errors.New("corrupt rosbag record")

	// ErrUnsupportedCompression is returned for chunk compressions other than none, bz2 and lz4.
	ErrUnsupportedCompression = errors.New("unsupported chunk compression")

	// ErrUnknownTopic is returned when reading a topic that has no connection in the bag.
	ErrUnknownTopic = errors.New("topic not in bag")

	// ErrShortMessage is returned when a serialized message ends early.
	ErrShortMessage = errors.New("serialized message too short")
)
