package storage

import (
	"context"
	"errors"

	"github.com/BirtasevicLazar/avlasti-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// CartStorage is the durable copy of a session's cart. It keeps two named
// entries per session: the JSON-encoded line list and the total as a
// decimal string. The stored total is a read optimization only; callers
// recompute it from the lines after loading.
type CartStorage interface {
	Load(ctx context.Context, sessionID string) ([]domain.CartLine, decimal.Decimal, error)
	Save(ctx context.Context, sessionID string, lines []domain.CartLine, total decimal.Decimal) error
	Clear(ctx context.Context, sessionID string) error
}

var ErrNotFound = errors.New("no stored cart")
