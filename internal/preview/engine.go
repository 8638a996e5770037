package preview

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"tonehub/internal/catalog"
	"tonehub/internal/logging"
	"tonehub/internal/services"
)

// Phase is the engine's session state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePlaying
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// Status is the synchronous outcome of Start.
type Status string

const (
	// StatusLoading means a new session began loading.
	StatusLoading Status = "loading"
	// StatusStopped means Start toggled the active session off.
	StatusStopped Status = "stopped"
)

// Session describes the live preview.
type Session struct {
	ID        string
	ItemID    string
	Name      string
	Phase     Phase
	StartedAt time.Time
	// Duration is known once Playing.
	Duration time.Duration
}

// EventKind distinguishes engine notifications.
type EventKind int

const (
	EventPhase EventKind = iota
	EventError
)

// Event is published on every phase change and asynchronous failure.
type Event struct {
	Kind    EventKind
	Session Session
	Phase   Phase
	Err     error
	// Reason explains a return to Idle ("toggled", "superseded", "stopped",
	// "finished", "failed", "closed").
	Reason string
}

// Options configures an Engine.
type Options struct {
	Factory          ContextFactory
	Fetcher          Fetcher
	Decoder          Decoder
	Synth            SynthConfig
	PreviewableTypes []catalog.Type
	Logger           *slog.Logger
}

type session struct {
	Session
	token  uint64
	cancel context.CancelFunc
	voice  *onceVoice
	timer  *time.Timer
}

// Engine is the preview state machine. It is safe for concurrent use.
type Engine struct {
	audio       Context
	unsupported error
	fetcher     Fetcher
	decoder     Decoder
	synth       SynthConfig
	previewable []catalog.Type
	logger      *slog.Logger

	mu          sync.Mutex
	token       uint64
	current     *session
	closed      bool
	subscribers map[int]func(Event)
	nextSub     int
	closeOnce   sync.Once
	closeErr    error
	loads       sync.WaitGroup
}

// New opens the audio context through opts.Factory. A factory failure does
// not fail New: the engine reports Supported() == false and rejects every
// Start with KindUnsupportedEngine.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		fetcher:     opts.Fetcher,
		decoder:     opts.Decoder,
		synth:       opts.Synth,
		previewable: slices.Clone(opts.PreviewableTypes),
		logger:      logging.NewComponentLogger(logger, "preview"),
		subscribers: make(map[int]func(Event)),
	}
	if e.fetcher == nil {
		e.fetcher = &HTTPFetcher{}
	}
	if e.decoder == nil {
		e.decoder = WAVDecoder{}
	}
	if len(e.previewable) == 0 {
		e.previewable = []catalog.Type{catalog.TypeIR}
	}

	if opts.Factory == nil {
		e.unsupported = errors.New("no audio context factory")
	} else if audio, err := opts.Factory(); err != nil {
		e.unsupported = err
	} else if audio == nil {
		e.unsupported = errors.New("audio context factory returned nil")
	} else {
		e.audio = audio
	}
	if e.unsupported != nil {
		logging.WarnWithContext(e.logger, "audio preview unavailable", "preview_unsupported",
			logging.Error(e.unsupported),
			logging.String(logging.FieldErrorHint, "check the audio output device"),
			logging.String(logging.FieldImpact, "previews are disabled; downloads still work"))
	}
	return e
}

// Supported reports whether an audio context is available.
func (e *Engine) Supported() bool { return e.unsupported == nil }

// Current returns the live session, if any.
func (e *Engine) Current() (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return Session{}, false
	}
	return e.current.Session, true
}

// Subscribe registers fn for engine events and returns a function that
// removes it. fn is called without engine locks held.
func (e *Engine) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subscribers[id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subscribers, id)
		e.mu.Unlock()
	}
}

// Start begins previewing item, or stops it when it is already the active
// session. Fetch and decode run asynchronously; their failures arrive as
// EventError and leave the engine Idle.
func (e *Engine) Start(ctx context.Context, item catalog.Item) (Status, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrClosed
	}
	if e.unsupported != nil {
		e.mu.Unlock()
		return "", &Error{Kind: KindUnsupportedEngine, ItemID: item.ID, Name: item.Name, Err: e.unsupported}
	}

	if cur := e.current; cur != nil && cur.ItemID == item.ID {
		ended := e.stopLocked()
		e.mu.Unlock()
		e.publish(idleEvent(ended, "toggled"))
		return StatusStopped, nil
	}
	// A rejected request leaves the active preview playing.
	if err := e.checkPreviewable(item); err != nil {
		e.mu.Unlock()
		return "", err
	}

	var events []Event
	if e.current != nil {
		events = append(events, idleEvent(e.stopLocked(), "superseded"))
	}

	e.token++
	token := e.token
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sess := &session{
		Session: Session{
			ID:        uuid.NewString(),
			ItemID:    item.ID,
			Name:      item.Name,
			Phase:     PhaseLoading,
			StartedAt: time.Now(),
		},
		token:  token,
		cancel: cancel,
	}
	e.current = sess
	snapshot := sess.Session
	e.loads.Add(1)
	e.mu.Unlock()

	runCtx = services.WithSessionID(services.WithItemID(runCtx, item.ID), snapshot.ID)
	logging.WithContext(runCtx, e.logger).Debug("preview loading", logging.String("location", item.Location.Raw))

	events = append(events, Event{Kind: EventPhase, Session: snapshot, Phase: PhaseLoading})
	e.publish(events...)

	go e.load(runCtx, token, item)
	return StatusLoading, nil
}

// Stop silences the live session. It reports whether one was active.
func (e *Engine) Stop() bool {
	e.mu.Lock()
	if e.current == nil {
		e.mu.Unlock()
		return false
	}
	ended := e.stopLocked()
	e.mu.Unlock()
	e.publish(idleEvent(ended, "stopped"))
	return true
}

// Close stops any session, waits for in-flight loads and releases the
// audio context. Only the first call has effect.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		var events []Event
		if e.current != nil {
			events = append(events, idleEvent(e.stopLocked(), "closed"))
		}
		e.mu.Unlock()
		e.publish(events...)

		e.loads.Wait()
		if e.audio != nil {
			e.closeErr = e.audio.Close()
		}
	})
	return e.closeErr
}

func (e *Engine) checkPreviewable(item catalog.Item) error {
	return Previewable(item, e.previewable)
}

// Previewable reports why item cannot be auditioned, or nil when its type is
// in types and it has an http(s) location.
func Previewable(item catalog.Item, types []catalog.Type) error {
	if !slices.Contains(types, item.Type) {
		return &Error{Kind: KindNotPreviewable, ItemID: item.ID, Name: item.Name}
	}
	if !item.Location.IsHTTP() {
		return &Error{Kind: KindNoNetworkLocation, ItemID: item.ID, Name: item.Name}
	}
	return nil
}

func (e *Engine) load(ctx context.Context, token uint64, item catalog.Item) {
	defer e.loads.Done()
	logger := logging.WithContext(ctx, e.logger)

	data, err := e.fetcher.Fetch(ctx, item.Location.Raw)
	if err != nil {
		e.fail(token, logger, &Error{Kind: KindFetchFailed, ItemID: item.ID, Name: item.Name, Err: err})
		return
	}
	rate := e.audio.SampleRate()
	ir, err := e.decoder.Decode(data, rate)
	if err != nil {
		e.fail(token, logger, &Error{Kind: KindDecodeFailed, ItemID: item.ID, Name: item.Name, Err: err})
		return
	}
	samples, err := Render(ir, rate, e.synth)
	if err != nil {
		e.fail(token, logger, &Error{Kind: KindDecodeFailed, ItemID: item.ID, Name: item.Name, Err: err})
		return
	}

	e.mu.Lock()
	if e.stale(token) {
		e.mu.Unlock()
		logger.Debug("discarding stale preview buffer")
		return
	}
	cur := e.current
	voice, err := e.audio.Play(samples, func() {
		go e.finish(token, "finished")
	})
	if err != nil {
		ended := e.stopLocked()
		e.mu.Unlock()
		perr := &Error{Kind: KindPlaybackFailed, ItemID: item.ID, Name: item.Name, Err: err}
		e.logFailure(logger, perr)
		e.publish(Event{Kind: EventError, Session: ended, Phase: PhaseIdle, Err: perr, Reason: "failed"})
		return
	}
	duration := PlaybackDuration(len(samples), rate)
	cur.voice = &onceVoice{voice: voice}
	cur.Phase = PhasePlaying
	cur.Duration = duration
	cur.timer = time.AfterFunc(duration, func() { e.finish(token, "finished") })
	snapshot := cur.Session
	e.mu.Unlock()

	logger.Info("preview playing",
		logging.String("name", item.Name),
		logging.Duration("duration", duration),
		logging.Int("ir_samples", len(ir)))
	e.publish(Event{Kind: EventPhase, Session: snapshot, Phase: PhasePlaying})
}

func (e *Engine) finish(token uint64, reason string) {
	e.mu.Lock()
	if e.stale(token) {
		e.mu.Unlock()
		return
	}
	ended := e.stopLocked()
	e.mu.Unlock()
	e.publish(idleEvent(ended, reason))
}

func (e *Engine) fail(token uint64, logger *slog.Logger, perr *Error) {
	e.mu.Lock()
	if e.stale(token) {
		e.mu.Unlock()
		logger.Debug("discarding stale preview failure", logging.Error(perr))
		return
	}
	ended := e.stopLocked()
	e.mu.Unlock()
	e.logFailure(logger, perr)
	e.publish(Event{Kind: EventError, Session: ended, Phase: PhaseIdle, Err: perr, Reason: "failed"})
}

func (e *Engine) logFailure(logger *slog.Logger, perr *Error) {
	logging.WarnWithContext(logger, "preview failed", "preview_"+perr.Kind.String(),
		logging.Error(perr),
		logging.String(logging.FieldErrorHint, "try another item or download it"),
		logging.String(logging.FieldImpact, "preview skipped"))
}

// stale reports whether token no longer identifies the live session.
func (e *Engine) stale(token uint64) bool {
	return e.current == nil || e.current.token != token
}

// stopLocked tears down the live session and returns its final snapshot.
// Callers hold e.mu and must ensure e.current is non-nil.
func (e *Engine) stopLocked() Session {
	cur := e.current
	e.current = nil
	if cur.cancel != nil {
		cur.cancel()
	}
	if cur.timer != nil {
		cur.timer.Stop()
	}
	cur.voice.Stop()
	return cur.Session
}

func idleEvent(ended Session, reason string) Event {
	return Event{Kind: EventPhase, Session: ended, Phase: PhaseIdle, Reason: reason}
}

func (e *Engine) publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	e.mu.Lock()
	subs := make([]func(Event), 0, len(e.subscribers))
	for _, fn := range e.subscribers {
		subs = append(subs, fn)
	}
	e.mu.Unlock()
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}
