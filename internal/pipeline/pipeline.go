// Package pipeline orchestrates a recording session from capture
// through transcription and summarization to the final note, enforcing
// the single-active-session rule and the lifecycle state machine.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raphaelgruber/meetnotes/internal/metrics"
	"github.com/raphaelgruber/meetnotes/internal/models"
	"github.com/raphaelgruber/meetnotes/internal/status"
)

// Capture is one in-flight audio capture, as seen by the pipeline.
type Capture interface {
	// Failed reports whether the capture died before a stop request.
	Failed() bool

	// Stop terminates gracefully and returns finished artifact paths.
	Stop() ([]string, error)

	// Cancel kills the capture and deletes its partial files.
	Cancel()
}

// Capturer starts audio captures.
type Capturer interface {
	Start(mode models.Mode, scratchDir string) (Capture, error)
}

// Transcriber turns audio artifacts into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPaths []string) (*models.Transcript, error)
}

// Summarizer produces a structured summary from transcript text.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, userNotes string) (*models.Summary, error)
	Name() string
}

// NoteWriter persists the finished note and returns its path.
type NoteWriter interface {
	Write(sess *models.Session, tr *models.Transcript, summary *models.Summary) (string, error)
}

// Result is delivered on Done() when processing finishes.
type Result struct {
	State    State
	NotePath string

	// Transcript and Summary stay populated even when persistence
	// fails, so the caller can surface the content anyway.
	Transcript *models.Transcript
	Summary    *models.Summary

	Err error
}

// Pipeline runs at most one session at a time.
type Pipeline struct {
	capturer Capturer
	trans    Transcriber
	summ     Summarizer
	notes    NoteWriter
	status   *status.Writer
	meters   *metrics.Collector
	log      *slog.Logger

	recordingsDir string
	keepArtifacts bool

	mu      sync.Mutex
	state   State
	sess    *models.Session
	capture Capture
	done    chan Result

	// gen counts started sessions. A processing goroutine carries the
	// generation it was spawned for; once Cancel has torn that session
	// down and a new one started, the stale goroutine's outcome is
	// discarded instead of being delivered to the wrong session.
	gen uint64
}

// New wires a pipeline from its collaborators. keepArtifacts preserves
// the session's audio files after a successful transcription.
func New(capturer Capturer, trans Transcriber, summ Summarizer, notes NoteWriter, st *status.Writer, recordingsDir string, keepArtifacts bool, log *slog.Logger) *Pipeline {
	return &Pipeline{
		capturer:      capturer,
		trans:         trans,
		summ:          summ,
		notes:         notes,
		status:        st,
		meters:        metrics.NewCollector(),
		log:           log,
		recordingsDir: recordingsDir,
		keepArtifacts: keepArtifacts,
		state:         StateIdle,
	}
}

// State returns the current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Session returns the active session, or nil when idle.
func (p *Pipeline) Session() *models.Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sess
}

// Elapsed returns the running duration of the active session.
func (p *Pipeline) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return 0
	}
	return p.sess.Duration()
}

// Done returns the channel delivering the processing result of the
// current session. Nil until Stop has been accepted.
func (p *Pipeline) Done() <-chan Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// CaptureFailed reports whether the live capture has died underneath
// us. Polled by the record view each tick.
func (p *Pipeline) CaptureFailed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.capture != nil && p.capture.Failed()
}

// Start begins a new recording session. Returns ErrSessionActive if a
// session is already running.
func (p *Pipeline) Start(title, userNotes string, mode models.Mode) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateIdle {
		return fmt.Errorf("%w: state is %s", models.ErrSessionActive, p.state)
	}

	scratch := filepath.Join(p.recordingsDir, time.Now().Format("20060102-150405")+"-"+uuid.NewString()[:8])
	sess := models.NewSession(mode, scratch)
	sess.Title = title
	sess.UserNotes = userNotes

	// The surface must show recording before capture begins so a
	// reader never sees idle while audio is being taken.
	if err := p.status.Publish(status.PhaseRecording, sess.DisplayTitle(), 0); err != nil {
		p.log.Warn("publish status", "error", err)
	}
	if err := status.WritePID(p.status.Path()); err != nil {
		p.log.Warn("write pid file", "error", err)
	}

	capture, err := p.capturer.Start(mode, scratch)
	if err != nil {
		p.clearStatus()
		return err
	}

	p.sess = sess
	p.capture = capture
	p.state = StateRecording
	p.done = make(chan Result, 1)
	p.gen++
	p.log.Info("session started", "mode", mode, "title", sess.DisplayTitle())
	return nil
}

// SetTitle updates the session title while recording.
func (p *Pipeline) SetTitle(title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess != nil {
		p.sess.Title = title
	}
}

// SetUserNotes updates the session's user notes while recording.
func (p *Pipeline) SetUserNotes(notes string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess != nil {
		p.sess.UserNotes = notes
	}
}

// PublishStatus refreshes the status surface with the current phase
// and elapsed time. Called by the record view each tick.
func (p *Pipeline) PublishStatus() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.sess == nil {
		return
	}
	if err := p.status.Publish(p.state.phase(), p.sess.DisplayTitle(), p.sess.Duration()); err != nil {
		p.log.Warn("publish status", "error", err)
	}
}

// Stop ends the recording and launches background processing. The
// outcome arrives on Done().
func (p *Pipeline) Stop(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.canTransition(StateStopping) {
		return fmt.Errorf("cannot stop in state %s", p.state)
	}
	p.state = StateStopping
	p.sess.StoppedAt = time.Now()
	p.publishLocked()

	go p.process(ctx, p.gen)
	return nil
}

// Cancel abandons the session: capture is killed, every partial file
// is removed and no note is written. Rejected once transcription has
// begun.
func (p *Pipeline) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateIdle {
		return nil
	}
	if !p.state.Cancelable() {
		return fmt.Errorf("cannot cancel in state %s", p.state)
	}

	p.capture.Cancel()
	p.log.Info("session cancelled", "title", p.sess.DisplayTitle())
	p.finishLocked(Result{State: StateCancelled})
	return nil
}

// process runs the post-recording phases for one session generation.
// Each phase publishes its status before doing work so observers never
// lag a phase behind. Every mutation is guarded by gen: if Cancel tore
// this session down (and possibly a new one started), the goroutine
// falls off without touching the pipeline again.
func (p *Pipeline) process(ctx context.Context, gen uint64) {
	sess, capture := p.snapshot(gen)
	if capture == nil {
		// Cancelled before processing could begin.
		return
	}

	artifacts, err := capture.Stop()
	if err != nil {
		p.fail(fmt.Errorf("stop capture: %w", err), gen)
		return
	}
	sess.ArtifactPaths = artifacts

	p.meters.RecordTiming(metrics.OpCapture, sess.Duration())

	if !p.advance(StateTranscribing, gen) {
		return
	}
	start := time.Now()
	tr, err := p.trans.Transcribe(ctx, artifacts)
	if err != nil {
		p.cleanupArtifacts(sess)
		p.fail(err, gen)
		return
	}

	p.meters.RecordWords(metrics.OpTranscribe, time.Since(start), tr.WordCount())

	if !p.keepArtifacts {
		p.cleanupArtifacts(sess)
	}

	if !p.advance(StateSummarizing, gen) {
		return
	}
	start = time.Now()
	summary, err := p.summ.Summarize(ctx, tr.Text(), sess.UserNotes)
	if err != nil {
		// Summarization failure is never fatal. The note is written
		// with the transcript and an unavailability marker.
		p.log.Warn("summarization failed, writing note without summary",
			"provider", p.summ.Name(), "error", err)
		summary = &models.Summary{}
	}
	p.meters.RecordWords(metrics.OpSummarize, time.Since(start), tr.WordCount())

	if !p.advance(StateWriting, gen) {
		return
	}
	start = time.Now()
	notePath, err := p.notes.Write(sess, tr, summary)
	if err != nil {
		// The transcript stays in the result so nothing is lost.
		p.finish(Result{State: StateFailed, Transcript: tr, Summary: summary, Err: err}, gen)
		return
	}

	p.meters.RecordTiming(metrics.OpWriteNote, time.Since(start))

	p.log.Info("session complete", "note", notePath, "words", tr.WordCount())
	p.logTimings()
	p.finish(Result{State: StateDone, NotePath: notePath, Transcript: tr, Summary: summary}, gen)
}

// snapshot returns the session and capture for the given generation,
// or nils when that generation is no longer the live one.
func (p *Pipeline) snapshot(gen uint64) (*models.Session, Capture) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return nil, nil
	}
	return p.sess, p.capture
}

// advance moves to the next phase and publishes it. Returns false when
// the goroutine's generation is stale or the transition is no longer
// legal, meaning a cancel won the race and processing must stop.
func (p *Pipeline) advance(to State, gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen || !p.state.canTransition(to) {
		return false
	}
	p.state = to
	p.publishLocked()
	return true
}

func (p *Pipeline) fail(err error, gen uint64) {
	p.log.Error("session failed", "error", err)
	p.finish(Result{State: StateFailed, Err: err}, gen)
}

// finish delivers a processing outcome, unless the goroutine outlived
// its session: a result for a superseded generation is dropped so it
// can never terminate a newer session.
func (p *Pipeline) finish(res Result, gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.log.Debug("discarding result from superseded session", "state", res.State)
		return
	}
	p.finishLocked(res)
}

// finishLocked records the terminal outcome, clears the status surface
// and returns the pipeline to idle so a new session may start.
func (p *Pipeline) finishLocked(res Result) {
	if p.state.Terminal() || p.state == StateIdle {
		return
	}
	p.state = res.State
	p.clearStatus()

	if p.done != nil {
		p.done <- res
	}

	p.sess = nil
	p.capture = nil
	p.state = StateIdle
}

func (p *Pipeline) clearStatus() {
	if err := p.status.Clear(); err != nil {
		p.log.Warn("clear status", "error", err)
	}
	status.RemovePID(p.status.Path())
}

// logTimings writes the per-phase timing summary for the session.
func (p *Pipeline) logTimings() {
	snap := p.meters.Snapshot()
	for phase, ps := range snap.Phases {
		attrs := []any{"avg_ms", ps.AvgTimeMs, "runs", ps.Count}
		if ps.WordsPerSecond > 0 {
			attrs = append(attrs, "words_per_second", ps.WordsPerSecond)
		}
		p.log.Debug("phase timing", append([]any{"phase", phase}, attrs...)...)
	}
}

// cleanupArtifacts removes the session's scratch directory. Artifact
// removal failures never fail the session.
func (p *Pipeline) cleanupArtifacts(sess *models.Session) {
	if sess.ScratchDir == "" {
		return
	}
	if err := os.RemoveAll(sess.ScratchDir); err != nil {
		p.log.Warn("remove session artifacts", "dir", sess.ScratchDir, "error", err)
	}
}

func (p *Pipeline) publishLocked() {
	var title string
	var elapsed time.Duration
	if p.sess != nil {
		title = p.sess.DisplayTitle()
		elapsed = p.sess.Duration()
	}
	if err := p.status.Publish(p.state.phase(), title, elapsed); err != nil {
		p.log.Warn("publish status", "error", err)
	}
}
