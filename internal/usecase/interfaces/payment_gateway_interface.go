package interfaces

import (
	"context"
	"encoding/json"
)

//go:generate mockgen -source=payment_gateway_interface.go -destination=mocks/payment_gateway_interface_mock.go -package=mock_interfaces

// IPaymentGateway abstracts external card payment providers (e.g. Mercado Pago).
//
// The ledger uses it to charge card payments and keeps the provider reference
// on the finance record for reconciliation. RefundPayment reverses a charge that
// could not be recorded.
type IPaymentGateway interface {
	CreatePayment(ctx context.Context, requestPayload json.RawMessage) (providerPaymentID string, providerStatus string, providerResponse json.RawMessage, err error)
	RefundPayment(ctx context.Context, providerPaymentID string) (refundStatus string, err error)
}
