package pipeline

import (
	"github.com/raphaelgruber/meetnotes/internal/audio"
	"github.com/raphaelgruber/meetnotes/internal/models"
)

// RecorderCapturer adapts the audio recorder to the pipeline's
// capture interfaces.
type RecorderCapturer struct {
	Recorder *audio.Recorder
}

func (r RecorderCapturer) Start(mode models.Mode, scratchDir string) (Capture, error) {
	h, err := r.Recorder.Start(mode, scratchDir)
	if err != nil {
		return nil, err
	}
	return &recorderCapture{rec: r.Recorder, handle: h}, nil
}

type recorderCapture struct {
	rec    *audio.Recorder
	handle *audio.Handle
}

func (c *recorderCapture) Failed() bool { return c.handle.Failed() }

func (c *recorderCapture) Stop() ([]string, error) { return c.rec.Stop(c.handle) }

func (c *recorderCapture) Cancel() { c.rec.Cancel(c.handle) }

var _ Capturer = RecorderCapturer{}
