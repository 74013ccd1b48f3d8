package sound

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// pcmFormat describes signed 16-bit little-endian PCM.
type pcmFormat struct {
	SampleRate int
	Channels   int
}

var defaultFormat = pcmFormat{SampleRate: 44100, Channels: 1}

// parseWAV validates the RIFF header, reads the fmt chunk and returns the
// raw PCM from the data chunk. Only 16-bit integer PCM is accepted.
func parseWAV(wav []byte) (pcmFormat, []byte, error) {
	var format pcmFormat
	if len(wav) < 12 {
		return format, nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return format, nil, errors.New("not a valid WAV file")
	}

	haveFmt := false
	pos := 12
	for pos+8 <= len(wav) {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))
		start := pos + 8
		end := start + chunkSize
		if end > len(wav) {
			end = len(wav)
		}

		switch chunkID {
		case "fmt ":
			if end-start < 16 {
				return format, nil, errors.New("fmt chunk too short")
			}
			body := wav[start:end]
			audioFormat := binary.LittleEndian.Uint16(body[0:2])
			bits := binary.LittleEndian.Uint16(body[14:16])
			if audioFormat != 1 || bits != 16 {
				return format, nil, fmt.Errorf("unsupported WAV encoding (format=%d, bits=%d), want 16-bit PCM", audioFormat, bits)
			}
			format.Channels = int(binary.LittleEndian.Uint16(body[2:4]))
			format.SampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			haveFmt = true

		case "data":
			if !haveFmt {
				return format, nil, errors.New("data chunk before fmt chunk in WAV")
			}
			return format, wav[start:end], nil
		}

		pos = start + chunkSize
		// Chunks are word-aligned.
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return format, nil, errors.New("data chunk not found in WAV")
}

// synthTone renders a short bell-like ding: two sine partials under an
// exponential decay.
func synthTone(format pcmFormat) []byte {
	const (
		duration = 0.8 // seconds
		freq     = 880.0
		decay    = 5.0
		volume   = 0.4
	)

	n := int(duration * float64(format.SampleRate))
	out := make([]byte, 0, n*format.Channels*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(format.SampleRate)
		env := math.Exp(-decay * t)
		v := volume * env * (math.Sin(2*math.Pi*freq*t) + 0.3*math.Sin(2*math.Pi*2*freq*t)) / 1.3
		sample := int16(v * math.MaxInt16)
		for c := 0; c < format.Channels; c++ {
			out = binary.LittleEndian.AppendUint16(out, uint16(sample))
		}
	}
	return out
}
