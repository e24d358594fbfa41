package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SscSPs/payledger/internal/core/domain"
)

const (
	stripeSignatureHeader = "Stripe-Signature"
	stripeTolerance       = 5 * time.Minute
)

// Stripe verifies the Stripe-Signature header: an HMAC-SHA256 over
// "<timestamp>.<body>" with the endpoint secret, rejected when the timestamp is
// outside the tolerance window.
type Stripe struct {
	secret string
	now    func() time.Time
}

func NewStripe(secret string, now func() time.Time) *Stripe {
	return &Stripe{secret: secret, now: now}
}

func (s *Stripe) Name() string     { return domain.ProviderStripe }
func (s *Stripe) Configured() bool { return s.secret != "" }

func (s *Stripe) Verify(headers http.Header, rawBody []byte) bool {
	if !s.Configured() {
		return false
	}
	var timestamp string
	var signatures []string
	for _, part := range strings.Split(headers.Get(stripeSignatureHeader), ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return false
	}
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	if age := s.now().Sub(time.Unix(ts, 0)); age > stripeTolerance || age < -stripeTolerance {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(rawBody)
	expected := mac.Sum(nil)
	for _, sig := range signatures {
		decoded, err := hex.DecodeString(sig)
		if err == nil && hmacEqual(expected, decoded) {
			return true
		}
	}
	return false
}

func (s *Stripe) Identify(_ http.Header, rawBody []byte) (domain.EventIdentity, error) {
	return identify(rawBody, "id", "type")
}

func (s *Stripe) Normalize(rawBody []byte) (domain.ProviderEvent, error) {
	doc, err := parse(rawBody)
	if err != nil {
		return domain.ProviderEvent{}, err
	}
	obj := doc.Get("data.object")
	event := domain.ProviderEvent{
		EventID:   doc.Get("id").String(),
		EventType: doc.Get("type").String(),
		Purchase:  obj.Get("metadata.purchase_type").String(),
	}

	switch t := event.EventType; {
	case t == "payment_intent.succeeded" || t == "checkout.session.completed" || t == "charge.succeeded":
		event.Kind = domain.EventPaymentSucceeded
		event.Reference = firstString(obj, "metadata.transaction_reference", "payment_intent", "id")
	case t == "charge.refunded":
		event.Kind = domain.EventPaymentRefunded
		event.Reference = firstString(obj, "metadata.transaction_reference", "payment_intent", "id")
		event.AmountMinor = obj.Get("amount_refunded").Int()
	case t == "payout.paid":
		event.Kind = domain.EventPayoutCompleted
		event.Reference = obj.Get("id").String()
	case t == "payout.failed":
		event.Kind = domain.EventPayoutFailed
		event.Reference = obj.Get("id").String()
		event.FailureReason = firstString(obj, "failure_message", "failure_code")
	case strings.HasPrefix(t, "customer.subscription."):
		event.Kind = domain.EventSubscriptionChanged
	default:
		event.Kind = domain.EventIgnored
	}
	return requireReference(event)
}
