// Package h264encoder encodes H.264 video into an MP4 container by piping
// raw RGBA frames to an ffmpeg process.
package h264encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/user/bagannotate/pkg/ports"
)

// FourCC is the sample entry code of the produced track.
const FourCC = "avc1"

// DefaultCRF is the x264 constant rate factor used when no quality is set.
const DefaultCRF = 23

// Encoder implements ports.VideoEncoder using an external ffmpeg process.
type Encoder struct {
	mu sync.Mutex

	ffmpegPath string
	width      int
	height     int

	cmd        *exec.Cmd
	stdin      io.WriteCloser
	stderr     bytes.Buffer
	tempPath   string
	frameCount int
}

// New creates a new H.264 encoder.
func New() *Encoder {
	return &Encoder{}
}

// FourCC returns "avc1".
func (e *Encoder) FourCC() string {
	return FourCC
}

// Args returns the ffmpeg arguments for encoding width x height RGBA frames
// at fps into output.
func Args(width, height int, fps float64, opts ports.EncoderOptions, output string) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-r", strconv.FormatFloat(fps, 'f', -1, 64),
		"-i", "pipe:0",
		"-c:v", "libx264",
		"-preset", "fast",
		// yuv420p needs even dimensions
		"-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2",
		"-pix_fmt", "yuv420p",
		"-tag:v", FourCC,
	}

	crf := DefaultCRF
	if opts.Quality > 0 && opts.Quality <= 51 {
		crf = opts.Quality
	}
	args = append(args, "-crf", strconv.Itoa(crf))

	if opts.Bitrate > 0 {
		args = append(args, "-b:v", fmt.Sprintf("%dk", opts.Bitrate))
	}

	return append(args, "-movflags", "+faststart", output)
}

// Begin starts ffmpeg.
func (e *Encoder) Begin(width, height int, fps float64, opts ports.EncoderOptions) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ffmpegPath, err := FindFFmpeg()
	if err != nil {
		return err
	}
	e.ffmpegPath = ffmpegPath
	e.width = width
	e.height = height
	e.frameCount = 0
	e.stderr.Reset()

	tmpFile, err := os.CreateTemp("", "h264encode_*.mp4")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	e.tempPath = tmpFile.Name()
	tmpFile.Close()

	e.cmd = exec.Command(e.ffmpegPath, Args(width, height, fps, opts, e.tempPath)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		os.Remove(e.tempPath)
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		os.Remove(e.tempPath)
		e.stdin = nil
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return nil
}

// EncodeFrame writes one frame to ffmpeg.
func (e *Encoder) EncodeFrame(img image.Image, timestampMs int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return ErrNotInitialized
	}

	rgba := image.NewRGBA(image.Rect(0, 0, e.width, e.height))
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	if _, err := e.stdin.Write(rgba.Pix); err != nil {
		return fmt.Errorf("%w: write frame at %dms: %v", ErrEncodingFailed, timestampMs, err)
	}

	e.frameCount++
	return nil
}

// End waits for ffmpeg and returns the MP4 data.
func (e *Encoder) End() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stdin == nil {
		return nil, ErrNotInitialized
	}

	e.stdin.Close()
	e.stdin = nil
	defer func() {
		os.Remove(e.tempPath)
		e.tempPath = ""
	}()

	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v\nstderr: %s", ErrEncodingFailed, err, e.stderr.String())
	}

	data, err := os.ReadFile(e.tempPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read output: %w", err)
	}

	return data, nil
}

var _ ports.VideoEncoder = (*Encoder)(nil)
