package payment

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/aq2208/storefront-api/internal/usecase"
)

// Intent creation runs while the placement transaction holds stock row
// locks, so it is bounded tighter than the request deadline.
const intentTimeout = 5 * time.Second

// RazorpayGateway opens payment intents against the Razorpay Orders API.
type RazorpayGateway struct {
	client *razorpay.Client
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateIntent registers the order with the gateway and returns its id. The
// SDK call has no context plumbing, so the call runs in a goroutine and the
// caller's deadline wins the race.
func (g *RazorpayGateway) CreateIntent(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, intentTimeout)
	defer cancel()

	type result struct {
		id  string
		err error
	}
	ch := make(chan result, 1)

	go func() {
		data := map[string]interface{}{
			"amount":   amountMinor,
			"currency": currency,
			"receipt":  receipt,
		}
		body, err := g.client.Order.Create(data, nil)
		if err != nil {
			ch <- result{err: fmt.Errorf("razorpay order create: %w", err)}
			return
		}
		id, ok := body["id"].(string)
		if !ok || id == "" {
			ch <- result{err: fmt.Errorf("razorpay order create: response missing id")}
			return
		}
		ch <- result{id: id}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		return res.id, res.err
	}
}

var _ usecase.PaymentGateway = (*RazorpayGateway)(nil)
