package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/utils/money"
)

const (
	paypalTransmissionIDHeader   = "Paypal-Transmission-Id"
	paypalTransmissionTimeHeader = "Paypal-Transmission-Time"
	paypalTransmissionSigHeader  = "Paypal-Transmission-Sig"
)

// PayPal verifies Paypal-Transmission-Sig as the base64 HMAC-SHA256 of
// "<transmission id>|<transmission time>|<body>" keyed with the webhook secret.
// Deliveries reach us through the signing relay in front of this service;
// PayPal's certificate-chain check needs an outbound call and lives there.
type PayPal struct {
	secret string
}

func NewPayPal(secret string) *PayPal {
	return &PayPal{secret: secret}
}

func (p *PayPal) Name() string     { return domain.ProviderPayPal }
func (p *PayPal) Configured() bool { return p.secret != "" }

func (p *PayPal) Verify(headers http.Header, rawBody []byte) bool {
	if !p.Configured() {
		return false
	}
	transmissionID := headers.Get(paypalTransmissionIDHeader)
	transmissionTime := headers.Get(paypalTransmissionTimeHeader)
	if transmissionID == "" || transmissionTime == "" {
		return false
	}
	signature, err := base64.StdEncoding.DecodeString(strings.TrimSpace(headers.Get(paypalTransmissionSigHeader)))
	if err != nil {
		return false
	}
	return hmacEqual(PayPalSignature(p.secret, transmissionID, transmissionTime, rawBody), signature)
}

// PayPalSignature computes the relay signature; exported for the relay and tests.
func PayPalSignature(secret, transmissionID, transmissionTime string, rawBody []byte) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(transmissionID + "|" + transmissionTime + "|"))
	mac.Write(rawBody)
	return mac.Sum(nil)
}

func (p *PayPal) Identify(_ http.Header, rawBody []byte) (domain.EventIdentity, error) {
	return identify(rawBody, "id", "event_type")
}

func (p *PayPal) Normalize(rawBody []byte) (domain.ProviderEvent, error) {
	doc, err := parse(rawBody)
	if err != nil {
		return domain.ProviderEvent{}, err
	}
	resource := doc.Get("resource")
	event := domain.ProviderEvent{
		EventID:   doc.Get("id").String(),
		EventType: doc.Get("event_type").String(),
		Purchase:  resource.Get("custom_id").String(),
	}

	switch t := event.EventType; {
	case t == "PAYMENT.CAPTURE.COMPLETED":
		event.Kind = domain.EventPaymentSucceeded
		event.Reference = firstString(resource, "invoice_id", "id")
	case t == "PAYMENT.CAPTURE.REFUNDED":
		event.Kind = domain.EventPaymentRefunded
		event.Reference = firstString(resource, "invoice_id", "id")
		if amount := resource.Get("amount.value").String(); amount != "" {
			minor, err := money.ParseMajor(amount, resource.Get("amount.currency_code").String())
			if err != nil {
				return event, err
			}
			event.AmountMinor = minor
		}
	case t == "PAYMENT.PAYOUTS-ITEM.SUCCEEDED":
		event.Kind = domain.EventPayoutCompleted
		event.Reference = firstString(resource, "payout_item.sender_item_id", "payout_item_id")
	case t == "PAYMENT.PAYOUTS-ITEM.FAILED" || t == "PAYMENT.PAYOUTS-ITEM.RETURNED":
		event.Kind = domain.EventPayoutFailed
		event.Reference = firstString(resource, "payout_item.sender_item_id", "payout_item_id")
		event.FailureReason = firstString(resource, "errors.message", "errors.name", "transaction_status")
	case strings.HasPrefix(t, "BILLING.SUBSCRIPTION."):
		event.Kind = domain.EventSubscriptionChanged
	default:
		event.Kind = domain.EventIgnored
	}
	return requireReference(event)
}
