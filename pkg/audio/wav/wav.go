// Package wav decodes and encodes RIFF/WAVE containers holding integer
// PCM audio.
//
// Decoding accepts 8, 16, 24, and 32-bit integer PCM in any channel
// layout and converts samples to signed 16-bit. Compressed formats
// (anything other than wFormatTag = 1, PCM) are rejected.
//
// Encoding always writes 16-bit PCM, matching the canonical clip format
// used throughout voicegate.
package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/voicegate/voicegate/pkg/audio"
)

// ErrFormat is returned when the input is not a decodable WAVE file.
var ErrFormat = errors.New("wav: invalid or unsupported format")

const (
	formatPCM = 1

	// headerLen is the fixed byte length of the header Encode writes:
	// RIFF chunk (12) + fmt chunk (24) + data chunk header (8).
	headerLen = 44
)

// IsWAV reports whether b starts with a RIFF/WAVE signature.
func IsWAV(b []byte) bool {
	return len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE"))
}

// Decode parses a WAVE file and returns its audio as a PCM16 clip.
// Returns an error wrapping [ErrFormat] if the data is not valid
// integer-PCM WAVE.
func Decode(b []byte) (*audio.Clip, error) {
	if !IsWAV(b) {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE signature", ErrFormat)
	}

	var (
		haveFmt    bool
		channels   int
		sampleRate int
		bitDepth   int
		data       []byte
	)

	// Walk chunks after the 12-byte RIFF header. Chunks are word-aligned.
	pos := 12
	for pos+8 <= len(b) {
		id := string(b[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(b[pos+4 : pos+8]))
		body := pos + 8
		if size < 0 || body+size > len(b) {
			// Tolerate a truncated final data chunk; some writers stream
			// without patching sizes.
			if id == "data" && body < len(b) {
				size = len(b) - body
			} else {
				return nil, fmt.Errorf("%w: chunk %q overruns file", ErrFormat, id)
			}
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrFormat)
			}
			tag := binary.LittleEndian.Uint16(b[body : body+2])
			if tag != formatPCM {
				return nil, fmt.Errorf("%w: format tag %d (only PCM supported)", ErrFormat, tag)
			}
			channels = int(binary.LittleEndian.Uint16(b[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(b[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(b[body+14 : body+16]))
			haveFmt = true
		case "data":
			data = b[body : body+size]
		}

		pos = body + size
		if size%2 == 1 {
			pos++ // pad byte
		}
	}

	if !haveFmt {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrFormat)
	}
	if data == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrFormat)
	}
	if channels <= 0 || sampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrFormat, channels, sampleRate)
	}

	samples, err := toInt16(data, bitDepth)
	if err != nil {
		return nil, err
	}
	return &audio.Clip{Samples: samples, SampleRate: sampleRate, Channels: channels}, nil
}

// toInt16 converts raw integer PCM bytes of the given bit depth to
// signed 16-bit samples.
func toInt16(data []byte, bitDepth int) ([]int16, error) {
	switch bitDepth {
	case 16:
		n := len(data) / 2
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(data[i*2]) | int16(data[i*2+1])<<8
		}
		return out, nil
	case 8:
		// 8-bit WAV is unsigned, biased at 128.
		out := make([]int16, len(data))
		for i, v := range data {
			out[i] = (int16(v) - 128) << 8
		}
		return out, nil
	case 24:
		n := len(data) / 3
		out := make([]int16, n)
		for i := range out {
			v := int32(data[i*3]) | int32(data[i*3+1])<<8 | int32(data[i*3+2])<<16
			if v&0x800000 != 0 {
				v |= ^int32(0xFFFFFF) // sign extend
			}
			out[i] = int16(v >> 8)
		}
		return out, nil
	case 32:
		n := len(data) / 4
		out := make([]int16, n)
		for i := range out {
			v := int32(binary.LittleEndian.Uint32(data[i*4 : i*4+4]))
			out[i] = int16(v >> 16)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %d-bit PCM not supported", ErrFormat, bitDepth)
	}
}

// Encode writes the clip to w as a 16-bit PCM WAVE file.
func Encode(w io.Writer, c *audio.Clip) error {
	if c.Channels <= 0 || c.SampleRate <= 0 {
		return fmt.Errorf("%w: %d channels at %d Hz", ErrFormat, c.Channels, c.SampleRate)
	}

	dataLen := len(c.Samples) * 2
	byteRate := c.SampleRate * c.Channels * 2
	blockAlign := c.Channels * 2

	var hdr [headerLen]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(headerLen-8+dataLen))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], formatPCM)
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(c.Channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(c.SampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], 16)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataLen))

	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(c.Bytes())
	return err
}

// Marshal returns the clip encoded as a 16-bit PCM WAVE file.
func Marshal(c *audio.Clip) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(c.Samples)*2)
	if err := Encode(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
