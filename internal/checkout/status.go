package checkout

import (
	"context"
	"log"
	"sync"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
)

// CartClearer empties a session's cart. The status machine holds one so
// that "order accepted" and "cart emptied" stay decoupled: the cart is
// cleared only when the shopper dismisses the success view, which lets the
// confirmation screen still show what was just bought.
type CartClearer interface {
	Clear(ctx context.Context, sessionID string) error
}

// StatusMachine tracks the shopper-visible checkout status per session:
// closed -> processing -> success | error -> closed. Terminal statuses hold
// until dismissed. Each processing window carries a generation number so a
// submission result that arrives after the shopper navigated away is
// dropped instead of reopening the view.
type StatusMachine struct {
	clearer CartClearer

	mu       sync.Mutex
	sessions map[string]*sessionStatus
}

type sessionStatus struct {
	status     domain.CheckoutStatus
	message    string
	generation uint64
}

func NewStatusMachine(clearer CartClearer) *StatusMachine {
	return &StatusMachine{
		clearer:  clearer,
		sessions: make(map[string]*sessionStatus),
	}
}

// Status returns the session's current status and, for errors, the message
// to show.
func (m *StatusMachine) Status(sessionID string) (domain.CheckoutStatus, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok {
		return domain.CheckoutStatusClosed, ""
	}
	return st.status, st.message
}

// Begin opens the processing view the instant a submission starts and
// returns the generation token the eventual result must present.
func (m *StatusMachine) Begin(sessionID string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok {
		st = &sessionStatus{}
		m.sessions[sessionID] = st
	}

	st.generation++
	st.status = domain.CheckoutStatusProcessing
	st.message = ""
	return st.generation
}

// Finish applies a submission outcome. A stale generation (the shopper
// dismissed the view or started over in the meantime) is ignored.
func (m *StatusMachine) Finish(sessionID string, generation uint64, status domain.CheckoutStatus, message string) {
	if !status.IsTerminal() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[sessionID]
	if !ok || st.generation != generation || st.status != domain.CheckoutStatusProcessing {
		log.Printf("dropping stale checkout result for session %s (status %s)", sessionID, status)
		return
	}

	st.status = status
	st.message = message
}

// Dismiss closes the status view. Dismissing a success clears the cart;
// dismissing an error returns to the form with the draft intact.
// Dismissing while still processing closes the view and invalidates the
// in-flight generation so the late result is ignored.
func (m *StatusMachine) Dismiss(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	st, ok := m.sessions[sessionID]
	if !ok || st.status == domain.CheckoutStatusClosed {
		m.mu.Unlock()
		return nil
	}

	wasSuccess := st.status == domain.CheckoutStatusSuccess
	st.status = domain.CheckoutStatusClosed
	st.message = ""
	st.generation++
	m.mu.Unlock()

	if wasSuccess {
		if err := m.clearer.Clear(ctx, sessionID); err != nil {
			return err
		}
	}
	return nil
}
