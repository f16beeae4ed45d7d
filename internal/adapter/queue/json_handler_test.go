package queue

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/require"

	"github.com/aq2208/storefront-api/internal/usecase"
)

func TestJSONHandlerDecodes(t *testing.T) {
	var got usecase.OrderEventMsg
	h := JSONHandler[usecase.OrderEventMsg]{
		HandleFunc: func(_ context.Context, msg usecase.OrderEventMsg) error {
			got = msg
			return nil
		},
	}

	d := amqp.Delivery{
		RoutingKey: usecase.EventOrderPaid,
		Body:       []byte(`{"orderId":"o1","userId":"u1","type":"order.paid","status":"Processing"}`),
	}
	require.NoError(t, h.Handle(context.Background(), d))
	require.Equal(t, "o1", got.OrderID)
	require.Equal(t, usecase.EventOrderPaid, got.Type)
}

func TestJSONHandlerRejectsBadBody(t *testing.T) {
	h := JSONHandler[usecase.OrderEventMsg]{
		HandleFunc: func(_ context.Context, _ usecase.OrderEventMsg) error {
			t.Fatal("handler must not run on a decode failure")
			return nil
		},
	}

	d := amqp.Delivery{RoutingKey: usecase.EventOrderPaid, Body: []byte(`{not json`)}
	err := h.Handle(context.Background(), d)
	require.Error(t, err)
	require.Contains(t, err.Error(), usecase.EventOrderPaid)
}
