package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/BirtasevicLazar/avlasti-storefront/internal/orderclient"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockOrderService struct {
	mu       sync.Mutex
	calls    int
	delay    time.Duration
	orderID  string
	err      error
	lastSent domain.OrderSubmission
}

func (m *mockOrderService) SubmitOrder(_ context.Context, sub domain.OrderSubmission) (string, error) {
	m.mu.Lock()
	m.calls++
	m.lastSent = sub
	delay, orderID, err := m.delay, m.orderID, m.err
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return orderID, err
}

func (m *mockOrderService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockNotifier struct {
	mu          sync.Mutex
	notified    int
	lastOrderID string
}

func (m *mockNotifier) OrderSubmitted(_ context.Context, _, orderID string, _ domain.CartSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified++
	m.lastOrderID = orderID
}

func testSnapshot() domain.CartSnapshot {
	lines := []domain.CartLine{
		{ProductID: 7, Name: "Oversized hoodie", UnitPrice: decimal.NewFromInt(2500), Size: "M", Color: "crna", Quantity: 2},
	}
	return domain.CartSnapshot{Lines: lines, Total: domain.RecomputeTotal(lines)}
}

func newTestSubmitter(orders OrderService, notifier Notifier) (*Submitter, *StatusMachine, *mockClearer) {
	clearer := &mockClearer{}
	status := NewStatusMachine(clearer)
	return NewSubmitter(orders, status, notifier), status, clearer
}

func TestSubmit_Success(t *testing.T) {
	orders := &mockOrderService{orderID: "ord-77"}
	notifier := &mockNotifier{}
	submitter, status, clearer := newTestSubmitter(orders, notifier)

	result := submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())

	assert.Equal(t, domain.SubmitStateSucceeded, result.State)
	assert.Equal(t, "ord-77", result.OrderID)
	assert.False(t, result.International)
	assert.Equal(t, 1, orders.callCount())

	st, _ := status.Status("s1")
	assert.Equal(t, domain.CheckoutStatusSuccess, st)
	assert.Zero(t, clearer.clearedCount(), "submitter must not clear the cart itself")

	assert.Equal(t, 1, notifier.notified)
	assert.Equal(t, "ord-77", notifier.lastOrderID)

	// cart is emptied only after the confirmation view is dismissed
	require.NoError(t, status.Dismiss(context.Background(), "s1"))
	assert.Equal(t, 1, clearer.clearedCount())
}

func TestSubmit_TotalIncludesDeliveryFee(t *testing.T) {
	orders := &mockOrderService{}
	submitter, _, _ := newTestSubmitter(orders, nil)

	snapshot := testSnapshot()
	submitter.Submit(context.Background(), "s1", validDraft(), snapshot)

	want := snapshot.Total.Add(DeliveryFee)
	assert.True(t, orders.lastSent.Total.Equal(want),
		"submitted total %s should be snapshot total plus delivery fee", orders.lastSent.Total)

	require.Len(t, orders.lastSent.Items, 1)
	item := orders.lastSent.Items[0]
	assert.Equal(t, int64(7), item.ProductID)
	assert.Equal(t, "M", item.Size)
	assert.Equal(t, "crna", item.Color)
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.Price.Equal(decimal.NewFromInt(2500)))
}

func TestSubmit_ValidationFailureSkipsNetwork(t *testing.T) {
	orders := &mockOrderService{}
	submitter, status, clearer := newTestSubmitter(orders, nil)

	draft := validDraft()
	draft.Email = "bad"
	draft.Phone = "123"

	result := submitter.Submit(context.Background(), "s1", draft, testSnapshot())

	assert.Equal(t, domain.SubmitStateFailed, result.State)
	assert.Contains(t, result.FieldErrors, "email")
	assert.Contains(t, result.FieldErrors, "phone")
	assert.Zero(t, orders.callCount(), "invalid draft must never reach the order service")
	assert.Zero(t, clearer.clearedCount())

	st, _ := status.Status("s1")
	assert.Equal(t, domain.CheckoutStatusError, st)
}

func TestSubmit_EmptyCart(t *testing.T) {
	orders := &mockOrderService{}
	submitter, _, _ := newTestSubmitter(orders, nil)

	result := submitter.Submit(context.Background(), "s1", validDraft(), domain.CartSnapshot{Total: decimal.Zero})

	assert.Equal(t, domain.SubmitStateFailed, result.State)
	assert.Equal(t, ErrEmptyCart.Error(), result.Message)
	assert.Zero(t, orders.callCount())
}

func TestSubmit_ServerMessageSurfacedVerbatim(t *testing.T) {
	orders := &mockOrderService{err: &orderclient.ServerError{StatusCode: 409, Message: "Stock unavailable"}}
	submitter, status, clearer := newTestSubmitter(orders, nil)

	result := submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())

	assert.Equal(t, domain.SubmitStateFailed, result.State)
	assert.Equal(t, "Stock unavailable", result.Message)

	st, message := status.Status("s1")
	assert.Equal(t, domain.CheckoutStatusError, st)
	assert.Equal(t, "Stock unavailable", message)
	assert.Zero(t, clearer.clearedCount(), "cart untouched on failure")
}

func TestSubmit_GenericMessageOnTransportFailure(t *testing.T) {
	orders := &mockOrderService{err: errors.New("dial tcp: connection refused")}
	submitter, _, _ := newTestSubmitter(orders, nil)

	result := submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())

	assert.Equal(t, domain.SubmitStateFailed, result.State)
	assert.Equal(t, genericFailureMessage, result.Message)
}

func TestSubmit_DoubleSubmitIsNoOp(t *testing.T) {
	orders := &mockOrderService{delay: 100 * time.Millisecond}
	submitter, _, _ := newTestSubmitter(orders, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())
	}()

	time.Sleep(20 * time.Millisecond)
	result := submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())
	assert.Equal(t, domain.SubmitStateSubmitting, result.State)

	wg.Wait()
	assert.Equal(t, 1, orders.callCount(), "double click must not create a second order")
}

func TestSubmit_ConcurrentSessionsDoNotBlockEachOther(t *testing.T) {
	orders := &mockOrderService{delay: 50 * time.Millisecond}
	submitter, _, _ := newTestSubmitter(orders, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())
	}()

	time.Sleep(10 * time.Millisecond)
	result := submitter.Submit(context.Background(), "s2", validDraft(), testSnapshot())
	assert.Equal(t, domain.SubmitStateSucceeded, result.State)

	wg.Wait()
	assert.Equal(t, 2, orders.callCount())
}

func TestSubmit_ResubmitAfterFailure(t *testing.T) {
	orders := &mockOrderService{err: &orderclient.ServerError{StatusCode: 503, Message: "try later"}}
	submitter, status, _ := newTestSubmitter(orders, nil)

	first := submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())
	assert.Equal(t, domain.SubmitStateFailed, first.State)

	orders.mu.Lock()
	orders.err = nil
	orders.orderID = "ord-2"
	orders.mu.Unlock()

	second := submitter.Submit(context.Background(), "s1", validDraft(), testSnapshot())
	assert.Equal(t, domain.SubmitStateSucceeded, second.State)
	assert.Equal(t, "ord-2", second.OrderID)
	assert.Equal(t, 2, orders.callCount())

	st, _ := status.Status("s1")
	assert.Equal(t, domain.CheckoutStatusSuccess, st)
}

func TestSubmit_InternationalFlag(t *testing.T) {
	orders := &mockOrderService{}
	submitter, _, _ := newTestSubmitter(orders, nil)

	draft := validDraft()
	draft.Country = "DE"

	result := submitter.Submit(context.Background(), "s1", draft, testSnapshot())
	assert.Equal(t, domain.SubmitStateSucceeded, result.State)
	assert.True(t, result.International)
}
