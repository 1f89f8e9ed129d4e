// Package codecdetect inspects MP4 files for the codec tag, frame size and
// sample count of their video track.
package codecdetect

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/Eyevinn/mp4ff/mp4"
)

// Codec represents a video codec family.
type Codec string

const (
	CodecH264    Codec = "h264"
	CodecMJPEG   Codec = "mjpeg"
	CodecAV1     Codec = "av1"
	CodecHEVC    Codec = "hevc"
	CodecUnknown Codec = "unknown"
)

// CodecForFourCC maps a sample entry code to its codec family.
func CodecForFourCC(fourcc string) Codec {
	switch fourcc {
	case "avc1", "avc3":
		return CodecH264
	case "jpeg", "mjpa", "mjpb":
		return CodecMJPEG
	case "av01":
		return CodecAV1
	case "hvc1", "hev1":
		return CodecHEVC
	default:
		return CodecUnknown
	}
}

// Info describes the first video track of an MP4 file.
type Info struct {
	FourCC     string
	Codec      Codec
	Width      int
	Height     int
	Frames     int
	Timescale  uint32
	Fragmented bool
}

// InspectFile inspects the MP4 file at path.
func InspectFile(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return InspectReader(f)
}

// InspectBytes inspects MP4 data held in memory.
func InspectBytes(data []byte) (Info, error) {
	return InspectReader(bytes.NewReader(data))
}

// InspectReader inspects MP4 data from r and rewinds it afterwards.
func InspectReader(reader io.ReadSeeker) (Info, error) {
	mp4File, err := mp4.DecodeFile(reader)
	if err != nil {
		return Info{}, fmt.Errorf("decode mp4: %w", err)
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("seek: %w", err)
	}

	return inspectMP4File(mp4File)
}

func inspectMP4File(mp4File *mp4.File) (Info, error) {
	if mp4File.IsFragmented() && mp4File.Init != nil && mp4File.Init.Moov != nil {
		for _, trak := range mp4File.Init.Moov.Traks {
			info, ok := inspectTrack(trak)
			if !ok {
				continue
			}
			info.Fragmented = true
			frames, err := countFragmentSamples(mp4File, trak.Tkhd.TrackID)
			if err != nil {
				return Info{}, err
			}
			info.Frames = frames
			return info, nil
		}
	}

	if mp4File.Moov != nil {
		for _, trak := range mp4File.Moov.Traks {
			info, ok := inspectTrack(trak)
			if !ok {
				continue
			}
			if stsz := trak.Mdia.Minf.Stbl.Stsz; stsz != nil {
				info.Frames = int(stsz.SampleNumber)
			}
			return info, nil
		}
	}

	return Info{}, fmt.Errorf("no video track found")
}

func inspectTrack(trak *mp4.TrakBox) (Info, bool) {
	if trak.Mdia == nil || trak.Mdia.Hdlr == nil {
		return Info{}, false
	}

	// Only process video tracks
	if trak.Mdia.Hdlr.HandlerType != "vide" {
		return Info{}, false
	}

	if trak.Mdia.Minf == nil || trak.Mdia.Minf.Stbl == nil || trak.Mdia.Minf.Stbl.Stsd == nil {
		return Info{}, false
	}

	info := Info{}
	if trak.Mdia.Mdhd != nil {
		info.Timescale = trak.Mdia.Mdhd.Timescale
	}
	if trak.Tkhd != nil {
		info.Width = int(uint32(trak.Tkhd.Width) >> 16)
		info.Height = int(uint32(trak.Tkhd.Height) >> 16)
	}

	for _, child := range trak.Mdia.Minf.Stbl.Stsd.Children {
		info.FourCC = child.Type()
		info.Codec = CodecForFourCC(info.FourCC)
		if vse, ok := child.(*mp4.VisualSampleEntryBox); ok {
			info.Width = int(vse.Width)
			info.Height = int(vse.Height)
		}
		return info, true
	}
	return Info{}, false
}

func countFragmentSamples(mp4File *mp4.File, trackID uint32) (int, error) {
	var trex *mp4.TrexBox
	if mvex := mp4File.Init.Moov.Mvex; mvex != nil {
		for _, t := range mvex.Trexs {
			if t.TrackID == trackID {
				trex = t
				break
			}
		}
	}
	if trex == nil {
		return 0, fmt.Errorf("no trex for track %d", trackID)
	}

	frames := 0
	for _, seg := range mp4File.Segments {
		for _, frag := range seg.Fragments {
			samples, err := frag.GetFullSamples(trex)
			if err != nil {
				return 0, fmt.Errorf("read fragment samples: %w", err)
			}
			frames += len(samples)
		}
	}
	return frames, nil
}
