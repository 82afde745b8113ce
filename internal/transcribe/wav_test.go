package transcribe

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// writeWAV writes a minimal PCM WAV file whose duration is
// dataLen/byteRate seconds.
func writeWAV(t *testing.T, path string, byteRate, dataLen uint32) {
	t.Helper()

	var b bytes.Buffer
	b.WriteString("RIFF")
	binary.Write(&b, binary.LittleEndian, uint32(36+dataLen))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, binary.LittleEndian, uint32(16))
	binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&b, binary.LittleEndian, uint16(1)) // channels
	binary.Write(&b, binary.LittleEndian, uint32(48000))
	binary.Write(&b, binary.LittleEndian, byteRate)
	binary.Write(&b, binary.LittleEndian, uint16(2))  // block align
	binary.Write(&b, binary.LittleEndian, uint16(16)) // bits per sample
	b.WriteString("data")
	binary.Write(&b, binary.LittleEndian, dataLen)
	b.Write(make([]byte, dataLen))

	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWavDuration(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ten-seconds.wav")
	writeWAV(t, path, 96, 960)
	if d := wavDuration(path); d != 10.0 {
		t.Errorf("wavDuration = %v, want 10.0", d)
	}

	notWav := filepath.Join(dir, "noise.wav")
	if err := os.WriteFile(notWav, []byte("fakeaudio"), 0o644); err != nil {
		t.Fatal(err)
	}
	if d := wavDuration(notWav); d != 0 {
		t.Errorf("wavDuration on non-WAV = %v, want 0", d)
	}

	truncated := filepath.Join(dir, "cut.wav")
	if err := os.WriteFile(truncated, []byte("RIFF\x00\x00\x00\x00WAVE"), 0o644); err != nil {
		t.Fatal(err)
	}
	if d := wavDuration(truncated); d != 0 {
		t.Errorf("wavDuration on truncated WAV = %v, want 0", d)
	}

	if d := wavDuration(filepath.Join(dir, "missing.wav")); d != 0 {
		t.Errorf("wavDuration on missing file = %v, want 0", d)
	}
}

// A WAV artifact with trailing silence must shift the next artifact by
// its full audio length, not by the last spoken segment.
func TestTranscribeOffsetsUseArtifactDuration(t *testing.T) {
	fakeWhisper(t, fixtureJSON, false)

	dir := t.TempDir()
	first := filepath.Join(dir, "part1.wav")
	writeWAV(t, first, 96, 1200) // 12.5s of audio, speech ends at 7.2s

	second := filepath.Join(dir, "part2.wav")
	if err := os.WriteFile(second, []byte("fakeaudio"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, _ := NewWhisper("whisper", "base", discardLogger())
	tr, err := w.Transcribe(context.Background(), []string{first, second})
	if err != nil {
		t.Fatalf("Transcribe(): %v", err)
	}

	if len(tr.Segments) != 4 {
		t.Fatalf("got %d segments, want 4", len(tr.Segments))
	}
	if tr.Segments[2].Start != 12.5 {
		t.Errorf("segment[2].Start = %v, want 12.5", tr.Segments[2].Start)
	}
	if !tr.Ordered() {
		t.Error("concatenated segments out of order")
	}
}
