// Package payments talks to the external payment gateway. The service
// never handles card data: it creates orders for the client-side checkout
// and reads payments back to verify what the client reports.
package payments

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrGateway marks any failure of a gateway round trip.
var ErrGateway = errors.New("payment gateway request failed")

// GatewayError wraps the underlying provider error with the failed operation.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

func (e *GatewayError) Is(target error) bool { return target == ErrGateway }

// Order is the gateway's order descriptor, passed to the client verbatim.
type Order map[string]interface{}

// ID returns the gateway order id, if present.
func (o Order) ID() string {
	id, _ := o["id"].(string)
	return id
}

// OrderRequest describes a charge in the currency's minor unit.
type OrderRequest struct {
	AmountMinor int64
	Currency    string
	Receipt     string
}

// Payment is the subset of a gateway payment needed for verification.
type Payment struct {
	ID          string
	OrderID     string
	Status      string
	Currency    string
	AmountMinor int64
}

// Settled reports whether the payment reached a state where funds are held
// or collected.
func (p Payment) Settled() bool {
	return p.Status == "authorized" || p.Status == "captured"
}

// Gateway is the external payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*Payment, error)
}

const minorPerUnit = 100

// MaxAmount is the largest whole-unit amount whose minor value fits in int64.
const MaxAmount = math.MaxInt64 / minorPerUnit

// ErrAmountOutOfRange is returned for amounts that cannot be charged.
var ErrAmountOutOfRange = errors.New("amount out of range")

// ToMinor converts whole currency units to the minor unit (paise, cents).
func ToMinor(amount int64) (int64, error) {
	if amount <= 0 || amount > MaxAmount {
		return 0, fmt.Errorf("%w: %d", ErrAmountOutOfRange, amount)
	}
	return amount * minorPerUnit, nil
}
