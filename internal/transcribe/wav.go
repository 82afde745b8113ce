package transcribe

import (
	"encoding/binary"
	"io"
	"os"
)

// wavDuration returns the audio length of a WAV file in seconds by
// walking its RIFF chunks, or 0 when the file is not parseable WAV.
// Capture artifacts are WAV (pw-record/parec output, ffmpeg mix), so
// this covers everything the pipeline produces.
func wavDuration(path string) float64 {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return 0
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0
	}

	var byteRate uint32
	for {
		var header [8]byte
		if _, err := io.ReadFull(f, header[:]); err != nil {
			return 0
		}
		id := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])

		switch id {
		case "fmt ":
			if size < 16 {
				return 0
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return 0
			}
			byteRate = binary.LittleEndian.Uint32(fmtChunk[8:12])
			if skip := int64(size) - 16; skip > 0 {
				if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
					return 0
				}
			}
		case "data":
			if byteRate == 0 {
				return 0
			}
			return float64(size) / float64(byteRate)
		default:
			// Chunks are word-aligned; odd sizes carry a pad byte.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return 0
			}
		}
	}
}
