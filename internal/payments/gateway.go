package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// GatewayStatus is the normalized state of a transaction at the gateway.
type GatewayStatus string

const (
	GatewayCaptured   GatewayStatus = "captured"
	GatewayAuthorized GatewayStatus = "authorized"
	GatewayPending    GatewayStatus = "pending"
	GatewayFailed     GatewayStatus = "failed"
)

// Accepted reports whether the money is secured.
func (s GatewayStatus) Accepted() bool {
	return s == GatewayCaptured || s == GatewayAuthorized
}

// GatewayPayment is what the gateway reports for one payment reference.
type GatewayPayment struct {
	Reference     string
	Status        GatewayStatus
	Amount        float64
	Method        string
	TransactionID string
}

var ErrReferenceNotFound = errors.New("payment reference not found at gateway")

// Gateway fetches the authoritative state of a payment.
type Gateway interface {
	FetchPayment(ctx context.Context, reference string) (*GatewayPayment, error)
}

// statusChecker is the part of coreapi.Client the gateway needs.
type statusChecker interface {
	CheckTransaction(param string) (*coreapi.TransactionStatusResponse, *midtrans.Error)
}

// MidtransGateway looks references up with the Midtrans Core API status endpoint.
type MidtransGateway struct {
	client statusChecker
}

func NewMidtransGateway(serverKey string, isProduction bool) *MidtransGateway {
	env := midtrans.Sandbox
	if isProduction {
		env = midtrans.Production
	}

	var client coreapi.Client
	client.New(serverKey, env)
	return &MidtransGateway{client: &client}
}

func (g *MidtransGateway) FetchPayment(ctx context.Context, reference string) (*GatewayPayment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, midErr := g.client.CheckTransaction(reference)
	if midErr != nil {
		if midErr.StatusCode == 404 {
			return nil, ErrReferenceNotFound
		}
		return nil, fmt.Errorf("midtrans status check failed: %s", midErr.GetMessage())
	}
	if resp == nil {
		return nil, ErrReferenceNotFound
	}

	amount, err := strconv.ParseFloat(resp.GrossAmount, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid gross amount %q: %w", resp.GrossAmount, err)
	}

	return &GatewayPayment{
		Reference:     reference,
		Status:        midtransStatus(resp.TransactionStatus, resp.FraudStatus),
		Amount:        amount,
		Method:        resp.PaymentType,
		TransactionID: resp.TransactionID,
	}, nil
}

// midtransStatus maps Midtrans transaction_status values. A capture that
// the fraud check challenged is not treated as captured.
func midtransStatus(status, fraud string) GatewayStatus {
	switch status {
	case "capture":
		if fraud == "" || fraud == "accept" {
			return GatewayCaptured
		}
		return GatewayPending
	case "settlement":
		return GatewayCaptured
	case "authorize":
		return GatewayAuthorized
	case "pending":
		return GatewayPending
	default: // deny, cancel, expire, failure, refund
		return GatewayFailed
	}
}

// StaticGateway serves payments from memory. Used by tests and local runs.
type StaticGateway struct {
	mu       sync.RWMutex
	payments map[string]GatewayPayment
	Err      error
}

func NewStaticGateway(payments ...GatewayPayment) *StaticGateway {
	g := &StaticGateway{payments: make(map[string]GatewayPayment)}
	for _, p := range payments {
		g.Put(p)
	}
	return g
}

func (g *StaticGateway) Put(p GatewayPayment) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.payments[strings.TrimSpace(p.Reference)] = p
}

func (g *StaticGateway) FetchPayment(_ context.Context, reference string) (*GatewayPayment, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.Err != nil {
		return nil, g.Err
	}
	p, ok := g.payments[reference]
	if !ok {
		return nil, ErrReferenceNotFound
	}
	return &p, nil
}
