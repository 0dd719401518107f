package dialogue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sweetlayer/cakeshop/backend/internal/models"
	"github.com/sweetlayer/cakeshop/backend/internal/search"
)

var (
	ErrSessionNotFound = errors.New("dialogue session not found")
	ErrNotAtConfirm    = errors.New("dialogue is not at the confirmation step")
	ErrBookingInFlight = errors.New("a booking is already being submitted")
)

// BookingService submits a finished draft as an order.
type BookingService interface {
	Create(ctx context.Context, draft models.BookingDraft, userID string) (*models.Order, error)
}

// ProductGetter resolves the product a dialogue is started for.
type ProductGetter interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
}

// Searcher lets a user discover products mid-conversation.
type Searcher interface {
	Search(ctx context.Context, text string, sortOpt search.Sort) search.Result
}

type session struct {
	id         string
	userID     string
	state      State
	booking    bool   // one submission in flight at a time
	searchSeq  uint64 // latest issued search, for stale-response discard
	resetTimer *time.Timer
	lastActive time.Time
}

// Manager owns all live dialogue sessions. Each session is cooperative:
// one step at a time, nothing shared between sessions, and nothing durable
// until a booking succeeds.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*session

	booking  BookingService
	catalog  ProductGetter
	searcher Searcher

	displayWindow time.Duration // how long the booked screen shows before reset
	sessionTTL    time.Duration // idle sessions are discarded after this
	log           *slog.Logger
	now           func() time.Time
	done          chan struct{}
}

// NewManager creates a session manager and starts its expiry janitor.
func NewManager(booking BookingService, catalog ProductGetter, searcher Searcher, displayWindow, sessionTTL time.Duration, log *slog.Logger) *Manager {
	m := &Manager{
		sessions:      make(map[string]*session),
		booking:       booking,
		catalog:       catalog,
		searcher:      searcher,
		displayWindow: displayWindow,
		sessionTTL:    sessionTTL,
		log:           log,
		now:           time.Now,
		done:          make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Close stops the expiry janitor.
func (m *Manager) Close() {
	close(m.done)
}

// Start opens a new dialogue for a product and returns the session ID, the
// current step and the first prompt.
func (m *Manager) Start(ctx context.Context, userID, productID string) (string, Step, string, error) {
	product, err := m.catalog.GetByID(ctx, productID)
	if err != nil {
		return "", StepIdle, "", err
	}

	s := &session{
		id:         uuid.New().String(),
		userID:     userID,
		state:      Start(*product),
		lastActive: m.now(),
	}

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	return s.id, s.state.Step, "Lovely choice! Which area should we serve?", nil
}

// Advance feeds one input into a session and returns the resulting step and
// reply. Validation failures keep the step and preserve the draft.
func (m *Manager) Advance(ctx context.Context, sessionID, userID, input string) (Step, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(sessionID, userID)
	if err != nil {
		return StepIdle, "", err
	}

	next, reply := Advance(s.state, input, m.now())
	s.state = next
	s.lastActive = m.now()
	return next.Step, reply, nil
}

// Summary renders the confirmation summary for a session sitting at the
// confirm step.
func (m *Manager) Summary(ctx context.Context, sessionID, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(sessionID, userID)
	if err != nil {
		return "", err
	}
	if s.state.Step != StepConfirm {
		return "", ErrNotAtConfirm
	}
	return Confirm(s.state.Draft), nil
}

// Step reports where a session's conversation currently is.
func (m *Manager) Step(sessionID, userID string) (Step, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(sessionID, userID)
	if err != nil {
		return StepIdle, err
	}
	return s.state.Step, nil
}

// SetCoupon attaches a coupon code to the draft; it is validated and
// consumed only when the order is created.
func (m *Manager) SetCoupon(ctx context.Context, sessionID, userID, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.lookup(sessionID, userID)
	if err != nil {
		return err
	}
	s.state.Draft.CouponCode = code
	s.lastActive = m.now()
	return nil
}

// Book submits the draft. Only one submission may be in flight per session;
// a second call while the first is pending gets ErrBookingInFlight. On
// failure the dialogue stays at confirm with the draft intact; on success it
// moves to booked and resets to idle after the display window.
func (m *Manager) Book(ctx context.Context, sessionID, userID string) (*models.Order, error) {
	m.mu.Lock()
	s, err := m.lookup(sessionID, userID)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.state.Step != StepConfirm {
		m.mu.Unlock()
		return nil, ErrNotAtConfirm
	}
	if s.booking {
		m.mu.Unlock()
		return nil, ErrBookingInFlight
	}
	s.booking = true
	draft := s.state.Draft
	m.mu.Unlock()

	order, err := m.booking.Create(ctx, draft, userID)

	m.mu.Lock()
	defer m.mu.Unlock()
	s.booking = false
	s.lastActive = m.now()
	if err != nil {
		// Stay at confirm; nothing collected is lost.
		return nil, err
	}

	s.state.Step = StepBooked
	s.resetTimer = time.AfterFunc(m.displayWindow, func() { m.reset(sessionID) })
	return order, nil
}

// Search runs a product search on behalf of a session. Responses that come
// back after a newer search was issued are discarded; the second return
// value reports whether the result is current.
func (m *Manager) Search(ctx context.Context, sessionID, userID, text string, sortOpt search.Sort) (search.Result, bool, error) {
	m.mu.Lock()
	s, err := m.lookup(sessionID, userID)
	if err != nil {
		m.mu.Unlock()
		return search.Result{}, false, err
	}
	s.searchSeq++
	seq := s.searchSeq
	s.lastActive = m.now()
	m.mu.Unlock()

	result := m.searcher.Search(ctx, text, sortOpt)

	m.mu.Lock()
	defer m.mu.Unlock()
	if seq != s.searchSeq {
		return search.Result{}, false, nil
	}
	return result, true, nil
}

// Abandon discards a session and its draft.
func (m *Manager) Abandon(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		if s.resetTimer != nil {
			s.resetTimer.Stop()
		}
		delete(m.sessions, sessionID)
	}
}

// lookup must be called with m.mu held.
func (m *Manager) lookup(sessionID, userID string) (*session, error) {
	s, ok := m.sessions[sessionID]
	if !ok || s.userID != userID {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

func (m *Manager) reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok || s.state.Step != StepBooked {
		return
	}
	s.state = State{Step: StepIdle}
}

func (m *Manager) janitor() {
	interval := m.sessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			cutoff := m.now().Add(-m.sessionTTL)
			m.mu.Lock()
			for id, s := range m.sessions {
				if s.lastActive.Before(cutoff) && !s.booking {
					delete(m.sessions, id)
					m.log.Debug("expired idle dialogue session", "session_id", id)
				}
			}
			m.mu.Unlock()
		}
	}
}
