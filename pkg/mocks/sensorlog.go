// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"image"
	"sync"

	"github.com/user/bagannotate/pkg/ports"
)

// SensorLog is a mock implementation of ports.SensorLog that replays
// Messages for any topic they carry.
type SensorLog struct {
	mu sync.Mutex

	InfoData []byte
	InfoErr  error
	Messages []ports.LogMessage
	ReadErr  error // Returned after all messages were delivered

	Closed bool
}

func (m *SensorLog) Info() ([]byte, error) {
	return m.InfoData, m.InfoErr
}

func (m *SensorLog) ReadMessages(ctx context.Context, topic string, fn func(msg ports.LogMessage) error) error {
	for _, msg := range m.Messages {
		if msg.Topic != topic {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(msg); err != nil {
			return err
		}
	}
	return m.ReadErr
}

func (m *SensorLog) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

var _ ports.SensorLog = (*SensorLog)(nil)

// ImageDecoder is a mock implementation of ports.ImageDecoder.
type ImageDecoder struct {
	DecodeFunc func(data []byte, compressed bool) (image.Image, error)

	mu    sync.Mutex
	Calls int
}

func (m *ImageDecoder) Decode(data []byte, compressed bool) (image.Image, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.DecodeFunc != nil {
		return m.DecodeFunc(data, compressed)
	}
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

var _ ports.ImageDecoder = (*ImageDecoder)(nil)
