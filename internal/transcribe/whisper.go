// Package transcribe converts finished audio artifacts into
// timestamped transcripts using the Whisper CLI.
package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/raphaelgruber/meetnotes/internal/models"
)

// ErrTranscriptionFailed covers engine errors, unreadable audio and
// unusable output. Fatal for the session: no partial transcript is
// ever accepted.
var ErrTranscriptionFailed = errors.New("transcription failed")

// ModelSizes are the accepted Whisper model names.
var ModelSizes = []string{"tiny", "base", "small", "medium", "large"}

// Test hook.
var execCommand = exec.CommandContext

// Whisper invokes the whisper CLI on finished audio artifacts. The
// run is CPU-bound and can take multiples of the audio duration, so
// callers run it off the interactive goroutine.
type Whisper struct {
	bin   string
	model string
	log   *slog.Logger
}

// NewWhisper creates a transcriber for the given binary and model size.
func NewWhisper(bin, model string, log *slog.Logger) (*Whisper, error) {
	if !validModel(model) {
		return nil, fmt.Errorf("invalid whisper model %q (want one of %s)", model, strings.Join(ModelSizes, ", "))
	}
	if bin == "" {
		bin = "whisper"
	}
	return &Whisper{bin: bin, model: model, log: log}, nil
}

func validModel(model string) bool {
	for _, m := range ModelSizes {
		if m == model {
			return true
		}
	}
	return false
}

// whisperOutput matches the JSON the whisper CLI writes next to the
// audio file when run with --output_format json.
type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// Transcribe runs whisper on each artifact in order and concatenates
// the results, shifting timestamps so offsets stay monotonic across
// artifacts.
func (w *Whisper) Transcribe(ctx context.Context, audioPaths []string) (*models.Transcript, error) {
	if len(audioPaths) == 0 {
		return nil, fmt.Errorf("%w: no audio artifacts", ErrTranscriptionFailed)
	}

	tr := &models.Transcript{}
	var offset float64

	for _, path := range audioPaths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: audio file unreadable: %v", ErrTranscriptionFailed, err)
		}

		w.log.Info("transcribing", "audio", path, "model", w.model)

		out, err := w.run(ctx, path)
		if err != nil {
			return nil, err
		}

		if tr.Language == "" {
			tr.Language = out.Language
		}
		var last float64
		for _, seg := range out.Segments {
			tr.Segments = append(tr.Segments, models.Segment{
				Start: offset + seg.Start,
				End:   offset + seg.End,
				Text:  strings.TrimSpace(seg.Text),
			})
			last = seg.End
		}

		// Advance by the artifact's real audio length so trailing
		// silence does not compress the next artifact's timestamps.
		// Falls back to the last segment end for non-WAV input.
		if d := wavDuration(path); d > last {
			offset += d
		} else {
			offset += last
		}
	}

	w.log.Info("transcription complete",
		"segments", len(tr.Segments),
		"words", tr.WordCount(),
		"duration", tr.Duration(),
		"language", tr.Language)

	return tr, nil
}

func (w *Whisper) run(ctx context.Context, audioPath string) (*whisperOutput, error) {
	outDir, err := os.MkdirTemp("", "meetnotes-whisper-*")
	if err != nil {
		return nil, fmt.Errorf("%w: temp dir: %v", ErrTranscriptionFailed, err)
	}
	defer os.RemoveAll(outDir)

	cmd := execCommand(ctx, w.bin,
		audioPath,
		"--model", w.model,
		"--task", "transcribe",
		"--output_format", "json",
		"--output_dir", outDir,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%w: %v: %s", ErrTranscriptionFailed, err, tail(out, 300))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(outDir, base+".json")

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("%w: whisper produced no output: %v", ErrTranscriptionFailed, err)
	}

	var parsed whisperOutput
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse whisper output: %v", ErrTranscriptionFailed, err)
	}
	return &parsed, nil
}

func tail(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[len(b)-n:])
}
