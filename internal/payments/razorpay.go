package payments

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Razorpay implements Gateway with the Razorpay Orders and Payments APIs.
type Razorpay struct {
	client *razorpay.Client
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	return &Razorpay{client: razorpay.NewClient(keyID, keySecret)}
}

func (r *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, &GatewayError{Op: "create order", Err: err}
	}

	body, err := r.client.Order.Create(map[string]interface{}{
		"amount":   req.AmountMinor,
		"currency": req.Currency,
		"receipt":  req.Receipt,
	}, nil)
	if err != nil {
		return nil, &GatewayError{Op: "create order", Err: err}
	}
	return Order(body), nil
}

func (r *Razorpay) FetchPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, &GatewayError{Op: "fetch payment", Err: err}
	}

	body, err := r.client.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, &GatewayError{Op: "fetch payment", Err: err}
	}
	p, err := parsePayment(body)
	if err != nil {
		return nil, &GatewayError{Op: "fetch payment", Err: err}
	}
	return p, nil
}

// parsePayment reads the fields verification needs from a decoded payment
// entity. JSON numbers arrive as float64.
func parsePayment(body map[string]interface{}) (*Payment, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("payment entity without id")
	}
	p := &Payment{ID: id}
	p.OrderID, _ = body["order_id"].(string)
	p.Status, _ = body["status"].(string)
	p.Currency, _ = body["currency"].(string)

	switch v := body["amount"].(type) {
	case float64:
		p.AmountMinor = int64(v)
	case int64:
		p.AmountMinor = v
	case int:
		p.AmountMinor = int64(v)
	default:
		return nil, fmt.Errorf("payment %s: unexpected amount %T", id, body["amount"])
	}
	return p, nil
}
