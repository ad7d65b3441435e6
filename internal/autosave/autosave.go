// Package autosave coalesces bursts of party form edits into single profile
// upserts.
//
// Every edit to a customer or company form field reschedules a timer for that
// session, kind and field. When a timer fires the latest snapshot of the form
// is saved. A session remembers the profile it saved first and keeps updating
// that record, so renaming a party mid-edit does not spawn a second profile.
package autosave

import (
	"context"
	"strings"
	"sync"
	"time"

	"invoicer/internal/apperr"
	"invoicer/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MinNameLength is the shortest party name worth saving
const MinNameLength = 2

// DefaultDelay applies when a Debouncer is built with a non-positive delay
const DefaultDelay = time.Second

// DefaultSessionTTL is how long an idle session keeps its remembered profiles
const DefaultSessionTTL = 30 * time.Minute

type Status string

const (
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// Event is published for every save attempt
type Event struct {
	Session   string `json:"session"`
	Kind      string `json:"kind"`
	Field     string `json:"field"`
	Status    Status `json:"status"`
	ProfileID string `json:"profile_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Saver persists a party snapshot. A non-nil id is the profile to update.
type Saver interface {
	SaveParty(ctx context.Context, kind string, id uuid.UUID, snap model.PartySnapshot) (uuid.UUID, error)
}

// Reporter receives save status events. Report must not block.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

type timerKey struct {
	session string
	kind    string
	field   string
}

type pending struct {
	timer *time.Timer
}

type session struct {
	ctx      context.Context
	cancel   context.CancelFunc
	latest   map[string]model.PartySnapshot
	profiles map[string]uuid.UUID

	// timers waiting plus saves running; only idle sessions are evicted
	active   int
	lastSeen time.Time
}

// Option configures a Debouncer
type Option func(*Debouncer)

// WithSessionTTL sets how long a session with nothing pending is kept.
// Non-positive values keep DefaultSessionTTL.
func WithSessionTTL(ttl time.Duration) Option {
	return func(d *Debouncer) {
		if ttl > 0 {
			d.ttl = ttl
		}
	}
}

// Debouncer schedules delayed saves. It is safe for concurrent use.
type Debouncer struct {
	saver    Saver
	reporter Reporter
	delay    time.Duration
	ttl      time.Duration
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	timers   map[timerKey]*pending
	sessions map[string]*session

	// saves run one at a time so a session never creates two profiles
	saveMu sync.Mutex
	wg     sync.WaitGroup
}

// New starts a Debouncer and its idle session janitor. Close stops both.
func New(saver Saver, reporter Reporter, delay time.Duration, log *zap.Logger, opts ...Option) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if reporter == nil {
		reporter = ReporterFunc(func(Event) {})
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Debouncer{
		saver:    saver,
		reporter: reporter,
		delay:    delay,
		ttl:      DefaultSessionTTL,
		log:      log.Named("autosave"),
		ctx:      ctx,
		cancel:   cancel,
		timers:   make(map[timerKey]*pending),
		sessions: make(map[string]*session),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.wg.Add(1)
	go d.janitor()
	return d
}

// Schedule records the latest snapshot for the session and restarts the
// timer for the edited field. It reports false when the name is too short
// to save; nothing is scheduled then.
func (d *Debouncer) Schedule(sessionID, kind, field string, snap model.PartySnapshot) (bool, error) {
	if kind != model.PartyCustomer && kind != model.PartyCompany {
		return false, apperr.Validationf("unknown party kind %q", kind)
	}
	if strings.TrimSpace(sessionID) == "" {
		return false, apperr.Validation("session is required")
	}
	if len([]rune(strings.TrimSpace(snap.Name))) < MinNameLength {
		return false, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false, apperr.New("autosave is shut down").WithHint("autosave is unavailable").Mark(apperr.ErrSystem)
	}

	sess := d.sessionLocked(sessionID)
	sess.latest[kind] = snap
	sess.lastSeen = time.Now()

	key := timerKey{session: sessionID, kind: kind, field: field}
	if old, ok := d.timers[key]; ok {
		old.timer.Stop()
	} else {
		sess.active++
	}
	p := &pending{}
	p.timer = time.AfterFunc(d.delay, func() { d.fire(key, p) })
	d.timers[key] = p
	return true, nil
}

// Pending counts the timers waiting for a session
func (d *Debouncer) Pending(sessionID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for k := range d.timers {
		if k.session == sessionID {
			n++
		}
	}
	return n
}

// ProfileID returns the profile a session has been saving for kind
func (d *Debouncer) ProfileID(sessionID, kind string) (uuid.UUID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sess, ok := d.sessions[sessionID]
	if !ok {
		return uuid.Nil, false
	}
	id, ok := sess.profiles[kind]
	return id, ok
}

// Sessions counts the sessions currently remembered
func (d *Debouncer) Sessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// CancelSession drops every pending save of an abandoned form and forgets
// the profiles it was editing. A save already running is cancelled through
// its context. It returns the number of timers stopped.
func (d *Debouncer) CancelSession(sessionID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	stopped := 0
	for k, p := range d.timers {
		if k.session != sessionID {
			continue
		}
		p.timer.Stop()
		delete(d.timers, k)
		stopped++
	}
	if sess, ok := d.sessions[sessionID]; ok {
		sess.cancel()
		delete(d.sessions, sessionID)
	}
	return stopped
}

// Close stops all timers, cancels running saves and waits for them to
// return. Schedule fails afterwards.
func (d *Debouncer) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for k, p := range d.timers {
		p.timer.Stop()
		delete(d.timers, k)
	}
	d.sessions = make(map[string]*session)
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}

func (d *Debouncer) sessionLocked(id string) *session {
	if sess, ok := d.sessions[id]; ok {
		return sess
	}
	ctx, cancel := context.WithCancel(d.ctx)
	sess := &session{
		ctx:      ctx,
		cancel:   cancel,
		latest:   make(map[string]model.PartySnapshot),
		profiles: make(map[string]uuid.UUID),
	}
	d.sessions[id] = sess
	return sess
}

func (d *Debouncer) fire(key timerKey, p *pending) {
	d.mu.Lock()
	// a newer edit or a cancel replaced this timer
	if d.timers[key] != p {
		d.mu.Unlock()
		return
	}
	delete(d.timers, key)
	sess, ok := d.sessions[key.session]
	if !ok {
		d.mu.Unlock()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()
	defer d.wg.Done()

	d.save(key, sess)

	d.mu.Lock()
	sess.active--
	sess.lastSeen = time.Now()
	d.mu.Unlock()
}

func (d *Debouncer) janitor() {
	defer d.wg.Done()

	ticker := time.NewTicker(max(d.ttl/2, time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-d.ctx.Done():
			return
		case now := <-ticker.C:
			if n := d.evictIdle(now); n > 0 {
				d.log.Debug("evicted idle autosave sessions", zap.Int("count", n))
			}
		}
	}
}

// evictIdle forgets sessions with nothing pending that were last touched
// at least one ttl before now
func (d *Debouncer) evictIdle(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	evicted := 0
	for id, sess := range d.sessions {
		if sess.active > 0 || now.Sub(sess.lastSeen) < d.ttl {
			continue
		}
		sess.cancel()
		delete(d.sessions, id)
		evicted++
	}
	return evicted
}

func (d *Debouncer) save(key timerKey, sess *session) {
	d.saveMu.Lock()
	defer d.saveMu.Unlock()

	if sess.ctx.Err() != nil {
		return
	}

	d.mu.Lock()
	snap := sess.latest[key.kind]
	known := sess.profiles[key.kind]
	d.mu.Unlock()

	event := Event{Session: key.session, Kind: key.kind, Field: key.field}
	d.publish(event, StatusSaving)

	id, err := d.saver.SaveParty(sess.ctx, key.kind, known, snap)
	if err != nil {
		d.log.Warn("autosave failed",
			zap.String("session", key.session),
			zap.String("kind", key.kind),
			zap.String("name", snap.Name),
			zap.Error(err),
		)
		event.Error = apperr.Hint(err)
		d.publish(event, StatusError)
		return
	}

	d.mu.Lock()
	sess.profiles[key.kind] = id
	d.mu.Unlock()

	event.ProfileID = id.String()
	d.publish(event, StatusSaved)
}

func (d *Debouncer) publish(e Event, status Status) {
	e.Status = status
	d.reporter.Report(e)
}
