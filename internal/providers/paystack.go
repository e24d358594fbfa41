package providers

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/SscSPs/payledger/internal/core/domain"
)

const paystackSignatureHeader = "X-Paystack-Signature"

// Paystack verifies x-paystack-signature, the hex HMAC-SHA512 of the body
// keyed with the account secret key.
type Paystack struct {
	secret string
}

func NewPaystack(secret string) *Paystack {
	return &Paystack{secret: secret}
}

func (p *Paystack) Name() string     { return domain.ProviderPaystack }
func (p *Paystack) Configured() bool { return p.secret != "" }

func (p *Paystack) Verify(headers http.Header, rawBody []byte) bool {
	if !p.Configured() {
		return false
	}
	signature, err := hex.DecodeString(strings.TrimSpace(headers.Get(paystackSignatureHeader)))
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.secret))
	mac.Write(rawBody)
	return hmacEqual(mac.Sum(nil), signature)
}

// Identify combines the event name with the data id: Paystack has no
// top-level event id, and one transaction emits several events.
func (p *Paystack) Identify(_ http.Header, rawBody []byte) (domain.EventIdentity, error) {
	identity, err := identify(rawBody, "data.id", "event")
	if err != nil {
		return identity, err
	}
	if !strings.HasPrefix(identity.EventID, "sha256:") {
		identity.EventID = identity.EventType + ":" + identity.EventID
	}
	return identity, nil
}

func (p *Paystack) Normalize(rawBody []byte) (domain.ProviderEvent, error) {
	doc, err := parse(rawBody)
	if err != nil {
		return domain.ProviderEvent{}, err
	}
	data := doc.Get("data")
	event := domain.ProviderEvent{
		EventType: doc.Get("event").String(),
		Purchase:  data.Get("metadata.purchase_type").String(),
	}
	if id := data.Get("id").String(); id != "" {
		event.EventID = event.EventType + ":" + id
	}

	switch t := event.EventType; {
	case t == "charge.success":
		event.Kind = domain.EventPaymentSucceeded
		event.Reference = data.Get("reference").String()
	case t == "refund.processed":
		event.Kind = domain.EventPaymentRefunded
		event.Reference = firstString(data, "transaction_reference", "transaction.reference")
		event.AmountMinor = data.Get("amount").Int()
	case t == "transfer.success":
		event.Kind = domain.EventPayoutCompleted
		event.Reference = data.Get("reference").String()
	case t == "transfer.failed" || t == "transfer.reversed":
		event.Kind = domain.EventPayoutFailed
		event.Reference = data.Get("reference").String()
		event.FailureReason = firstString(data, "reason", "gateway_response")
		if event.FailureReason == "" {
			event.FailureReason = t
		}
	case strings.HasPrefix(t, "subscription."):
		event.Kind = domain.EventSubscriptionChanged
	default:
		event.Kind = domain.EventIgnored
	}
	return requireReference(event)
}
