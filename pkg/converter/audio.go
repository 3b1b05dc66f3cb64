package converter

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// audioInfo is what the header probe extracts from an audio file to fill
// in a clip duration and the Audio element attributes.
type audioInfo struct {
	sampleRate int
	channels   int
	duration   float64
}

// probeAudio reads a wav or aiff header and computes the stream duration
// from frame count and rate. Only these two containers are recognized;
// other lossless types return an error and the caller drops the
// duration.
func probeAudio(r io.Reader) (*audioInfo, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("audio header: %w", err)
	}
	switch {
	case string(header[0:4]) == "RIFF" && string(header[8:12]) == "WAVE":
		return probeWav(r)
	case string(header[0:4]) == "FORM" && (string(header[8:12]) == "AIFF" || string(header[8:12]) == "AIFC"):
		return probeAiff(r)
	}
	return nil, fmt.Errorf("unrecognized audio container %q", string(header[0:4]))
}

func probeWav(r io.Reader) (*audioInfo, error) {
	info := &audioInfo{}
	var byteRate, dataSize uint32
	haveFmt, haveData := false, false

	for {
		id, size, err := readChunkHeader(r, binary.LittleEndian)
		if err != nil {
			break
		}
		consumed := uint32(0)
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, errors.New("wav fmt chunk too short")
			}
			var body [16]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return nil, fmt.Errorf("wav fmt chunk: %w", err)
			}
			info.channels = int(binary.LittleEndian.Uint16(body[2:4]))
			info.sampleRate = int(binary.LittleEndian.Uint32(body[4:8]))
			byteRate = binary.LittleEndian.Uint32(body[8:12])
			haveFmt = true
			consumed = 16
		case "data":
			dataSize = size
			haveData = true
		}
		if haveFmt && haveData {
			break
		}
		if err := skipBytes(r, int64(size-consumed)+int64(size%2)); err != nil {
			break
		}
	}

	if !haveFmt || !haveData {
		return nil, errors.New("wav file is missing its fmt or data chunk")
	}
	if byteRate == 0 {
		return nil, errors.New("wav fmt chunk has no byte rate")
	}
	info.duration = float64(dataSize) / float64(byteRate)
	return info, nil
}

func probeAiff(r io.Reader) (*audioInfo, error) {
	for {
		id, size, err := readChunkHeader(r, binary.BigEndian)
		if err != nil {
			break
		}
		if id == "COMM" {
			if size < 18 {
				return nil, errors.New("aiff COMM chunk too short")
			}
			var body [18]byte
			if _, err := io.ReadFull(r, body[:]); err != nil {
				return nil, fmt.Errorf("aiff COMM chunk: %w", err)
			}
			rate := extended80(body[8:18])
			if rate <= 0 {
				return nil, errors.New("aiff COMM chunk has no sample rate")
			}
			frames := binary.BigEndian.Uint32(body[2:6])
			return &audioInfo{
				channels:   int(binary.BigEndian.Uint16(body[0:2])),
				sampleRate: int(math.Round(rate)),
				duration:   float64(frames) / rate,
			}, nil
		}
		if err := skipBytes(r, int64(size)+int64(size%2)); err != nil {
			break
		}
	}
	return nil, errors.New("aiff file is missing its COMM chunk")
}

// readChunkHeader reads one IFF-style chunk id and size.
func readChunkHeader(r io.Reader, order binary.ByteOrder) (string, uint32, error) {
	var chunk [8]byte
	if _, err := io.ReadFull(r, chunk[:]); err != nil {
		return "", 0, err
	}
	return string(chunk[0:4]), order.Uint32(chunk[4:8]), nil
}

func skipBytes(r io.Reader, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, r, n)
	return err
}

// extended80 decodes the 80-bit extended float AIFF uses for the sample
// rate.
func extended80(b []byte) float64 {
	exp := int(binary.BigEndian.Uint16(b[0:2]) & 0x7FFF)
	mantissa := binary.BigEndian.Uint64(b[2:10])
	if exp == 0 && mantissa == 0 {
		return 0
	}
	return math.Ldexp(float64(mantissa), exp-16383-63)
}
