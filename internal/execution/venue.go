package execution

import (
	"context"

	"simbot-go/internal/exchange"
)

// ClientVenue adapts the REST client to the Venue interface.
type ClientVenue struct {
	*exchange.Client
}

// SubmitOrder forwards a typed order to the venue's order-entry endpoint.
func (v ClientVenue) SubmitOrder(ctx context.Context, order Order) error {
	return v.Client.SubmitOrder(ctx, order.Symbol, string(order.Side), string(order.Type), order.Qty, order.Price)
}
