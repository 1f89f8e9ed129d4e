// Package metadata implements the stage that derives log metadata from the
// log summary.
package metadata

import (
	"context"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/bagannotate/pkg/pipeline"
	"github.com/user/bagannotate/pkg/ports"
)

// Info is the log summary, shaped like `rosbag info --yaml`.
type Info struct {
	Path        string      `yaml:"path"`
	Version     float64     `yaml:"version"`
	Duration    float64     `yaml:"duration"`
	Start       float64     `yaml:"start"`
	End         float64     `yaml:"end"`
	Size        int64       `yaml:"size"`
	Messages    int         `yaml:"messages"`
	Compression string      `yaml:"compression"`
	Types       []TypeInfo  `yaml:"types"`
	Topics      []TopicInfo `yaml:"topics"`
}

// TypeInfo is one message type entry of the summary.
type TypeInfo struct {
	Type string `yaml:"type"`
	MD5  string `yaml:"md5"`
}

// TopicInfo is one topic entry of the summary.
type TopicInfo struct {
	Topic     string  `yaml:"topic"`
	Type      string  `yaml:"type"`
	Messages  int     `yaml:"messages"`
	Frequency float64 `yaml:"frequency"`
}

// ParseInfo parses a YAML log summary.
func ParseInfo(data []byte) (Info, error) {
	var info Info
	if len(strings.TrimSpace(string(data))) == 0 {
		return info, fmt.Errorf("%w: empty summary", ErrInvalidInfo)
	}
	if err := yaml.Unmarshal(data, &info); err != nil {
		return info, fmt.Errorf("%w: %v", ErrInvalidInfo, err)
	}
	return info, nil
}

// IsImageType reports whether msgType carries camera images.
func IsImageType(msgType string) bool {
	return msgType == ports.TypeImage || msgType == ports.TypeCompressedImage
}

// Stage resolves the metadata of the image topic.
type Stage struct {
	logger ports.Logger
}

// NewStage creates a new metadata stage.
func NewStage(logger ports.Logger) *Stage {
	return &Stage{
		logger: logger.WithComponent("metadata"),
	}
}

// Execute parses the summary, selects the image topic and derives the framerate.
func (s *Stage) Execute(ctx context.Context, input pipeline.MetadataInput) (pipeline.MetadataResult, error) {
	result := pipeline.MetadataResult{}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	info, err := ParseInfo(input.Info)
	if err != nil {
		return result, err
	}

	for _, t := range info.Topics {
		s.logger.Debug("Topic %s (%s) at %.2f Hz", t.Topic, t.Type, t.Frequency)
		result.Topics = append(result.Topics, pipeline.TopicSummary{
			Topic:     t.Topic,
			Type:      t.Type,
			Messages:  t.Messages,
			Frequency: t.Frequency,
		})
	}

	topic, err := selectTopic(info.Topics, input.Topic)
	if err != nil {
		return result, err
	}

	meta, err := Resolve(info.Duration, topic)
	if err != nil {
		return result, err
	}

	s.logger.Debug("Resolved %s: %d messages over %.3f s (%.2f fps)",
		meta.Topic, meta.MessageCount, meta.DurationSeconds, meta.Framerate)

	result.Metadata = meta
	return result, nil
}

// Resolve derives LogMetadata for topic from the log duration.
func Resolve(duration float64, topic TopicInfo) (pipeline.LogMetadata, error) {
	if !(duration > 0) || math.IsInf(duration, 0) {
		return pipeline.LogMetadata{}, fmt.Errorf("%w: %s has duration %v", ErrZeroDuration, topic.Topic, duration)
	}
	if topic.Messages <= 0 {
		return pipeline.LogMetadata{}, fmt.Errorf("%w: %s", ErrNoMessages, topic.Topic)
	}

	return pipeline.LogMetadata{
		Topic:           topic.Topic,
		MessageType:     topic.Type,
		MessageCount:    topic.Messages,
		DurationSeconds: duration,
		Compressed:      strings.Contains(topic.Type, "CompressedImage"),
		Framerate:       float64(topic.Messages) / duration,
	}, nil
}

func selectTopic(topics []TopicInfo, name string) (TopicInfo, error) {
	if name != "" {
		for _, t := range topics {
			if t.Topic == name {
				if !IsImageType(t.Type) {
					return TopicInfo{}, fmt.Errorf("%w: %s is %s", ErrNotImageTopic, t.Topic, t.Type)
				}
				return t, nil
			}
		}
		return TopicInfo{}, fmt.Errorf("%w: %s", ErrTopicNotFound, name)
	}

	var images []TopicInfo
	for _, t := range topics {
		if IsImageType(t.Type) {
			images = append(images, t)
		}
	}
	switch len(images) {
	case 0:
		return TopicInfo{}, fmt.Errorf("%w: no image topic in log", ErrTopicNotFound)
	case 1:
		return images[0], nil
	default:
		names := make([]string, len(images))
		for i, t := range images {
			names[i] = t.Topic
		}
		return TopicInfo{}, fmt.Errorf("%w: %s", ErrAmbiguousTopic, strings.Join(names, ", "))
	}
}
