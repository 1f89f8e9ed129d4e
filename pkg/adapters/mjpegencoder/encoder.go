// Package mjpegencoder writes Motion JPEG video in a fragmented MP4 container.
//
// Every frame is JPEG-encoded independently and stored as one sync sample of
// a "jpeg" sample entry, so the encoder needs no external tools.
package mjpegencoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"math"
	"sync"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/bagannotate/pkg/ports"
)

// FourCC is the sample entry code written by this encoder.
const FourCC = "jpeg"

// DefaultQuality is used when EncoderOptions.Quality is outside 1-100.
const DefaultQuality = 90

// sampleDuration is the length of one frame in timescale units.
const sampleDuration = 1000

// Encoder implements ports.VideoEncoder.
type Encoder struct {
	mu sync.Mutex

	width   int
	height  int
	fps     float64
	quality int
	begun   bool

	samples [][]byte
}

// New creates a new MJPEG encoder.
func New() *Encoder {
	return &Encoder{}
}

// FourCC returns "jpeg".
func (e *Encoder) FourCC() string {
	return FourCC
}

// Begin initializes the encoder.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if width <= 0 || height <= 0 || width > math.MaxUint16 || height > math.MaxUint16 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidParameters, width, height)
	}
	if fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		return fmt.Errorf("%w: frame rate %v", ErrInvalidParameters, fps)
	}

	e.width = width
	e.height = height
	e.fps = fps
	e.quality = opts.Quality
	if e.quality < 1 || e.quality > 100 {
		e.quality = DefaultQuality
	}
	e.samples = nil
	e.begun = true
	return nil
}

// EncodeFrame JPEG-encodes a frame. Frames are placed at consecutive sample
// slots; timestampMs is not used to reorder or drop frames.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.begun {
		return ErrNotInitialized
	}

	src := img
	if b := img.Bounds(); b.Dx() != e.width || b.Dy() != e.height || b.Min != (image.Point{}) {
		rgba := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
		src = rgba
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: e.quality}); err != nil {
		return fmt.Errorf("encode frame at %dms: %w", timestampMs, err)
	}
	e.samples = append(e.samples, buf.Bytes())
	return nil
}

// End builds the MP4 file and resets the encoder.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.begun {
		return nil, ErrNotInitialized
	}
	defer func() {
		e.begun = false
		e.samples = nil
	}()

	if len(e.samples) == 0 {
		return nil, ErrNoFrames
	}
	return e.buildMP4()
}

// Timescale returns the track timescale used for fps: one frame lasts
// sampleDuration units, so fps = timescale / sampleDuration.
func Timescale(fps float64) uint32 {
	return uint32(math.Round(fps * sampleDuration))
}

func (e *Encoder) buildMP4() ([]byte, error) {
	timescale := Timescale(e.fps)
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "en")

	trak := init.Moov.Trak

	entry := mp4.CreateVisualSampleEntryBox(FourCC, uint16(e.width), uint16(e.height), nil)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)

	trak.Tkhd.Width = mp4.Fixed32(e.width << 16)
	trak.Tkhd.Height = mp4.Fixed32(e.height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	for i, data := range e.samples {
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(len(data)),
				Dur:   sampleDuration,
			},
			DecodeTime: uint64(i) * sampleDuration,
			Data:       data,
		})
	}

	var buf bytes.Buffer

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}

	return buf.Bytes(), nil
}

var _ ports.VideoEncoder = (*Encoder)(nil)
