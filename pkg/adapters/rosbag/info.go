package rosbag

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Summary mirrors the document printed by `rosbag info --yaml`.
type Summary struct {
	Path        string         `yaml:"path"`
	Version     float64        `yaml:"version"`
	Duration    float64        `yaml:"duration"`
	Start       float64        `yaml:"start"`
	End         float64        `yaml:"end"`
	Size        int64          `yaml:"size"`
	Messages    int            `yaml:"messages"`
	Compression string         `yaml:"compression"`
	Types       []TypeSummary  `yaml:"types"`
	Topics      []TopicSummary `yaml:"topics"`
}

// TypeSummary lists one message type and its checksum.
type TypeSummary struct {
	Type string `yaml:"type"`
	MD5  string `yaml:"md5"`
}

// TopicSummary lists one topic with its message count and mean frequency.
type TopicSummary struct {
	Topic     string  `yaml:"topic"`
	Type      string  `yaml:"type"`
	Messages  int     `yaml:"messages"`
	Frequency float64 `yaml:"frequency"`
}

// Summarize computes the bag summary from the scan.
func (b *Bag) Summarize() Summary {
	s := Summary{
		Path:        b.path,
		Version:     2.0,
		Size:        b.size,
		Messages:    b.messages,
		Compression: b.dominantCompression(),
	}
	if b.messages > 0 {
		s.Duration = b.end.Sub(b.start).Seconds()
		s.Start = unixSeconds(b.start)
		s.End = unixSeconds(b.end)
	}

	types := make(map[string]string)
	topics := make(map[string]*TopicSummary)
	firsts := make(map[string]time.Time)
	lasts := make(map[string]time.Time)

	for id, c := range b.conns {
		types[c.Type] = c.MD5Sum

		ts, ok := topics[c.Topic]
		if !ok {
			ts = &TopicSummary{Topic: c.Topic, Type: c.Type}
			topics[c.Topic] = ts
		}
		st, ok := b.stats[id]
		if !ok {
			continue
		}
		ts.Messages += st.count
		if f, ok := firsts[c.Topic]; !ok || st.first.Before(f) {
			firsts[c.Topic] = st.first
		}
		if l, ok := lasts[c.Topic]; !ok || st.last.After(l) {
			lasts[c.Topic] = st.last
		}
	}

	for name, ts := range topics {
		span := lasts[name].Sub(firsts[name]).Seconds()
		if ts.Messages > 1 && span > 0 {
			ts.Frequency = float64(ts.Messages-1) / span
		}
		s.Topics = append(s.Topics, *ts)
	}
	sort.Slice(s.Topics, func(i, j int) bool { return s.Topics[i].Topic < s.Topics[j].Topic })

	for name, md5 := range types {
		s.Types = append(s.Types, TypeSummary{Type: name, MD5: md5})
	}
	sort.Slice(s.Types, func(i, j int) bool { return s.Types[i].Type < s.Types[j].Type })

	return s
}

// Info returns the summary as YAML.
func (b *Bag) Info() ([]byte, error) {
	data, err := yaml.Marshal(b.Summarize())
	if err != nil {
		return nil, fmt.Errorf("marshal bag summary: %w", err)
	}
	return data, nil
}

func (b *Bag) dominantCompression() string {
	best, bestCount := CompressionNone, 0
	for name, n := range b.compressions {
		if n > bestCount || (n == bestCount && name < best) {
			best, bestCount = name, n
		}
	}
	return best
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1e9
}
