package checkout

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/orderclient"
	"github.com/shopspring/decimal"
)

// DeliveryFee is the flat surcharge added to every order total (RSD,
// cash on delivery).
var DeliveryFee = decimal.NewFromInt(400)

var (
	ErrEmptyCart         = errors.New("cart is empty, nothing to submit")
	ErrIllegalTransition = errors.New("illegal transition of submit state")
)

const genericFailureMessage = "order could not be submitted, please try again"

// OrderService submits one order and returns the confirmed order id.
type OrderService interface {
	SubmitOrder(ctx context.Context, sub domain.OrderSubmission) (string, error)
}

// Notifier is told about confirmed orders, fire-and-forget.
type Notifier interface {
	OrderSubmitted(ctx context.Context, sessionID, orderID string, snapshot domain.CartSnapshot)
}

// Result is the outcome of one submit attempt.
type Result struct {
	State         domain.SubmitState
	FieldErrors   map[string]string
	Message       string
	OrderID       string
	International bool
}

// Submitter runs the checkout pipeline: validate the draft, build the order
// payload from the cart snapshot, issue exactly one request, and report the
// outcome through the status machine. It never clears the cart; that
// happens when the shopper dismisses the success view. At most one
// submission per session is in flight; a second submit while one is running
// is a no-op.
type Submitter struct {
	orders   OrderService
	status   *StatusMachine
	notifier Notifier
	fee      decimal.Decimal

	mu     sync.Mutex
	states map[string]domain.SubmitState
}

func NewSubmitter(orders OrderService, status *StatusMachine, notifier Notifier) *Submitter {
	return &Submitter{
		orders:   orders,
		status:   status,
		notifier: notifier,
		fee:      DeliveryFee,
		states:   make(map[string]domain.SubmitState),
	}
}

func (s *Submitter) Submit(ctx context.Context, sessionID string, draft domain.CheckoutDraft, snapshot domain.CartSnapshot) Result {
	s.mu.Lock()
	if cur := s.states[sessionID]; cur == domain.SubmitStateValidating || cur == domain.SubmitStateSubmitting {
		s.mu.Unlock()
		// A submission is already on its way; a double click must not
		// create a second order.
		return Result{State: cur}
	}
	s.states[sessionID] = domain.SubmitStateValidating
	s.mu.Unlock()

	// The processing view opens before validation so feedback is immediate.
	generation := s.status.Begin(sessionID)

	if fieldErrs := Validate(draft); len(fieldErrs) > 0 {
		s.setState(sessionID, domain.SubmitStateFailed)
		s.status.Finish(sessionID, generation, domain.CheckoutStatusError, "please check the delivery details")
		return Result{State: domain.SubmitStateFailed, FieldErrors: fieldErrs}
	}

	if snapshot.Empty() {
		s.setState(sessionID, domain.SubmitStateFailed)
		s.status.Finish(sessionID, generation, domain.CheckoutStatusError, ErrEmptyCart.Error())
		return Result{State: domain.SubmitStateFailed, Message: ErrEmptyCart.Error()}
	}

	s.setState(sessionID, domain.SubmitStateSubmitting)

	submission := BuildSubmission(draft, snapshot, s.fee)
	orderID, err := s.orders.SubmitOrder(ctx, submission)
	if err != nil {
		message := genericFailureMessage
		var se *orderclient.ServerError
		if errors.As(err, &se) && se.Message != "" {
			message = se.Message
		}
		log.Printf("order submission for session %s failed: %v", sessionID, err)

		s.setState(sessionID, domain.SubmitStateFailed)
		s.status.Finish(sessionID, generation, domain.CheckoutStatusError, message)
		return Result{State: domain.SubmitStateFailed, Message: message}
	}

	s.setState(sessionID, domain.SubmitStateSucceeded)
	s.status.Finish(sessionID, generation, domain.CheckoutStatusSuccess, "")

	if s.notifier != nil {
		s.notifier.OrderSubmitted(ctx, sessionID, orderID, snapshot)
	}

	return Result{
		State:         domain.SubmitStateSucceeded,
		OrderID:       orderID,
		International: draft.International(),
	}
}

// State reports the session's most recent submit state.
func (s *Submitter) State(sessionID string) domain.SubmitState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[sessionID]
	if !ok {
		return domain.SubmitStateIdle
	}
	return state
}

func (s *Submitter) setState(sessionID string, to domain.SubmitState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.states[sessionID]
	if !domain.CanTransitionTo(from, to) {
		log.Printf("%v: session %s, %s -> %s", ErrIllegalTransition, sessionID, from, to)
		return
	}
	s.states[sessionID] = to
}

// BuildSubmission maps the cart snapshot and draft to the wire shape the
// order service expects. The total adds the flat delivery fee on top of the
// snapshot total.
func BuildSubmission(draft domain.CheckoutDraft, snapshot domain.CartSnapshot, fee decimal.Decimal) domain.OrderSubmission {
	items := make([]domain.OrderItem, len(snapshot.Lines))
	for i, line := range snapshot.Lines {
		items[i] = domain.OrderItem{
			ProductID: line.ProductID,
			Size:      line.Size,
			Color:     line.Color,
			Quantity:  line.Quantity,
			Price:     line.UnitPrice,
		}
	}

	return domain.OrderSubmission{
		Email:       draft.Email,
		Phone:       draft.Phone,
		FirstName:   draft.FirstName,
		LastName:    draft.LastName,
		Country:     draft.Country,
		City:        draft.City,
		Street:      draft.Street,
		HouseNumber: draft.HouseNumber,
		Floor:       draft.Floor,
		Apartment:   draft.Apartment,
		PostalCode:  draft.PostalCode,
		Note:        draft.Note,
		Items:       items,
		Total:       snapshot.Total.Add(fee),
	}
}
