package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"parrot/history"
	"parrot/log"
	"parrot/score"
	"parrot/transcriber"
)

// State is the engine's position in one practice attempt.
type State int

const (
	StateIdle State = iota
	StatePermissionPending
	StateRecording
	StateStopping
	StateProcessing
	StateScored
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePermissionPending:
		return "permission_pending"
	case StateRecording:
		return "recording"
	case StateStopping:
		return "stopping"
	case StateProcessing:
		return "processing"
	case StateScored:
		return "scored"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ErrorKind classifies a failed attempt. Every kind is recoverable:
// the user can start over from the error state.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	PermissionDenied
	RecordingStartFailed
	TranscriptionFailed
	NoSpeechDetected
	PersistenceFailed
)

func (k ErrorKind) String() string {
	switch k {
	case PermissionDenied:
		return "permission_denied"
	case RecordingStartFailed:
		return "recording_start_failed"
	case TranscriptionFailed:
		return "transcription_failed"
	case NoSpeechDetected:
		return "no_speech_detected"
	case PersistenceFailed:
		return "persistence_failed"
	default:
		return "none"
	}
}

// ErrPermissionDenied must be wrapped by Recorder.Start when the
// platform refuses microphone access.
var ErrPermissionDenied = errors.New("microphone permission denied")

// ErrBusy is returned by Start while an attempt is recording or
// stopping; overlapping recordings are never allowed.
var ErrBusy = errors.New("a recording session is already active")

// ErrNotRecording is returned by Stop outside the recording state.
var ErrNotRecording = errors.New("no active recording")

// ErrNoSpeech reports a transcription that recognized nothing.
var ErrNoSpeech = errors.New("no speech detected")

// Recorder owns microphone capture for one attempt. Start acquires
// permission and begins capture; Stop ends capture and returns the
// encoded audio with its container format ("wav" or "flac").
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (audio []byte, format string, err error)
}

// EventSink abstracts the display layer so the Bubble Tea TUI (or any
// other shell) can observe session progress without the engine
// depending on a rendering package. Callbacks may arrive from engine
// or pacer goroutines and must not call back into the engine.
type EventSink interface {
	StateChanged(s State)
	WordAdvance(index int) // -1 clears the highlight
	Scored(r score.Result)
	SessionError(kind ErrorKind, err error)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) StateChanged(State)            {}
func (NopSink) WordAdvance(int)               {}
func (NopSink) Scored(score.Result)           {}
func (NopSink) SessionError(ErrorKind, error) {}

// Config wires the engine's collaborators.
type Config struct {
	Recorder     Recorder
	Transcriber  transcriber.Transcriber
	Store        *history.Store // nil disables persistence
	Sink         EventSink
	WordInterval time.Duration
}

// Engine is the practice session controller. One engine serves one
// user; at most one recording is active at a time.
type Engine struct {
	rec      Recorder
	tr       transcriber.Transcriber
	store    *history.Store
	sink     EventSink
	interval time.Duration

	mu        sync.Mutex
	state     State
	text      Text
	attempt   uint64
	pacer     *Pacer
	startTime time.Time
	endTime   time.Time
	result    score.Result
	hasResult bool
	lastKind  ErrorKind
	lastErr   error

	persist sync.WaitGroup
}

func New(cfg Config) *Engine {
	e := &Engine{
		rec:      cfg.Recorder,
		tr:       cfg.Transcriber,
		store:    cfg.Store,
		sink:     cfg.Sink,
		interval: cfg.WordInterval,
	}
	if e.sink == nil {
		e.sink = NopSink{}
	}
	if e.interval <= 0 {
		e.interval = DefaultWordInterval
	}
	return e
}

// Start begins a new attempt for text. Valid from idle, scored, and
// error states; also from processing, in which case the pending
// transcription result is abandoned and will be dropped on arrival.
// Returns ErrBusy while a recording is active.
func (e *Engine) Start(ctx context.Context, text Text) error {
	e.mu.Lock()
	switch e.state {
	case StatePermissionPending, StateRecording, StateStopping:
		e.mu.Unlock()
		return ErrBusy
	}
	e.attempt++
	attempt := e.attempt
	e.text = text
	e.result = score.Result{}
	e.hasResult = false
	e.lastKind = ErrorNone
	e.lastErr = nil
	e.startTime = time.Time{}
	e.endTime = time.Time{}
	e.setStateLocked(StatePermissionPending)
	e.mu.Unlock()

	log.SessionStart(e.tr.Name(), len(text.Words))

	if err := e.rec.Start(ctx); err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			return e.fail(attempt, PermissionDenied, err)
		}
		return e.fail(attempt, RecordingStartFailed, err)
	}

	e.mu.Lock()
	e.startTime = time.Now()
	e.setStateLocked(StateRecording)
	e.pacer = StartPacer(len(text.Words), e.interval, e.sink.WordAdvance)
	e.mu.Unlock()
	return nil
}

// Stop ends the recording and runs it through transcription, scoring,
// and persistence. Blocks until the attempt is scored or failed; the
// history write happens in the background and never affects the
// scored state.
func (e *Engine) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateRecording {
		e.mu.Unlock()
		return ErrNotRecording
	}
	attempt := e.attempt
	pacer := e.pacer
	e.pacer = nil
	e.endTime = time.Now()
	text := e.text
	start, end := e.startTime, e.endTime
	e.setStateLocked(StateStopping)
	e.mu.Unlock()

	pacer.Cancel()

	audio, format, err := e.rec.Stop()
	if err != nil {
		// No audio means nothing to submit; surfaced as a
		// transcription failure since the capture itself started fine.
		return e.fail(attempt, TranscriptionFailed, err)
	}

	e.mu.Lock()
	e.setStateLocked(StateProcessing)
	e.mu.Unlock()

	entries, err := e.tr.Transcribe(ctx, audio, format)
	if err != nil {
		return e.fail(attempt, TranscriptionFailed, err)
	}
	if len(entries) == 0 {
		return e.fail(attempt, NoSpeechDetected, ErrNoSpeech)
	}

	result := score.Grade(entries, len(text.Words), start, end)

	e.mu.Lock()
	if e.attempt != attempt || e.state != StateProcessing {
		// A newer attempt owns the engine; drop this result.
		e.mu.Unlock()
		return nil
	}
	e.result = result
	e.hasResult = true
	e.setStateLocked(StateScored)
	e.mu.Unlock()

	e.sink.Scored(result)
	log.SessionScored(result.Score, len(result.Words), result.WPM, result.HasWPM)

	if e.store == nil {
		return nil
	}
	rec := history.Record{
		ID:         uuid.NewString(),
		Text:       text.Raw,
		Score:      result.Score,
		Date:       time.Now().UTC(),
		Feedback:   result.Feedback,
		WordScores: result.Words,
	}
	e.persist.Add(1)
	go func() {
		defer e.persist.Done()
		// A failed write is logged and swallowed; the user still sees
		// the score, the stored history just misses this attempt.
		if err := e.store.Append(rec); err != nil {
			log.PersistenceError(err)
		}
	}()
	return nil
}

// Abort cancels an in-progress recording without scoring it: the pacer
// stops, captured audio is discarded, and the engine returns to idle.
// Used on shell teardown. A no-op outside the recording state.
func (e *Engine) Abort() {
	e.mu.Lock()
	if e.state != StateRecording {
		e.mu.Unlock()
		return
	}
	e.attempt++
	pacer := e.pacer
	e.pacer = nil
	e.setStateLocked(StateIdle)
	e.mu.Unlock()

	pacer.Cancel()
	if _, _, err := e.rec.Stop(); err != nil {
		log.Errorf("discarding aborted recording: %v", err)
	}
}

// Flush waits for any in-flight history write. Call before shutdown
// and in tests that assert on the store.
func (e *Engine) Flush() {
	e.persist.Wait()
}

func (e *Engine) fail(attempt uint64, kind ErrorKind, err error) error {
	e.mu.Lock()
	if e.attempt != attempt {
		// Stale failure from a superseded attempt.
		e.mu.Unlock()
		return err
	}
	e.lastKind = kind
	e.lastErr = err
	e.setStateLocked(StateError)
	e.mu.Unlock()

	e.sink.SessionError(kind, err)
	log.SessionError(kind.String(), err)
	return err
}

// setStateLocked must be called with e.mu held.
func (e *Engine) setStateLocked(s State) {
	e.state = s
	e.sink.StateChanged(s)
}

// State returns the engine's current state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Result returns the last scored result, if the current attempt
// reached the scored state.
func (e *Engine) Result() (score.Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, e.hasResult
}

// LastError returns the classification of the last failed attempt.
func (e *Engine) LastError() (ErrorKind, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastKind, e.lastErr
}
