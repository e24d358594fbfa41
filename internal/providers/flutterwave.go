package providers

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/SscSPs/payledger/internal/core/domain"
	"github.com/SscSPs/payledger/internal/utils/money"
)

const flutterwaveHashHeader = "Verif-Hash"

// Flutterwave sends the configured secret hash verbatim in verif-hash.
type Flutterwave struct {
	hash string
}

func NewFlutterwave(hash string) *Flutterwave {
	return &Flutterwave{hash: hash}
}

func (f *Flutterwave) Name() string     { return domain.ProviderFlutterwave }
func (f *Flutterwave) Configured() bool { return f.hash != "" }

func (f *Flutterwave) Verify(headers http.Header, _ []byte) bool {
	if !f.Configured() {
		return false
	}
	got := headers.Get(flutterwaveHashHeader)
	return got != "" && subtle.ConstantTimeCompare([]byte(got), []byte(f.hash)) == 1
}

func (f *Flutterwave) Identify(_ http.Header, rawBody []byte) (domain.EventIdentity, error) {
	identity, err := identify(rawBody, "data.id", "event")
	if err != nil {
		return identity, err
	}
	if !strings.HasPrefix(identity.EventID, "sha256:") {
		identity.EventID = identity.EventType + ":" + identity.EventID
	}
	return identity, nil
}

// Normalize reads amounts in major units, as Flutterwave sends them.
func (f *Flutterwave) Normalize(rawBody []byte) (domain.ProviderEvent, error) {
	doc, err := parse(rawBody)
	if err != nil {
		return domain.ProviderEvent{}, err
	}
	data := doc.Get("data")
	event := domain.ProviderEvent{
		EventType: doc.Get("event").String(),
		Purchase:  firstString(data, "meta.purchase_type", "meta_data.purchase_type"),
	}
	if id := data.Get("id").String(); id != "" {
		event.EventID = event.EventType + ":" + id
	}
	status := strings.ToLower(data.Get("status").String())

	switch t := event.EventType; {
	case t == "charge.completed" && status == "successful":
		event.Kind = domain.EventPaymentSucceeded
		event.Reference = data.Get("tx_ref").String()
	case t == "refund.completed":
		event.Kind = domain.EventPaymentRefunded
		event.Reference = firstString(data, "tx_ref", "flw_ref")
		if amount := data.Get("amount_refunded").String(); amount != "" {
			minor, err := money.ParseMajor(amount, data.Get("currency").String())
			if err != nil {
				return event, err
			}
			event.AmountMinor = minor
		}
	case t == "transfer.completed" && status == "successful":
		event.Kind = domain.EventPayoutCompleted
		event.Reference = data.Get("reference").String()
	case t == "transfer.completed" && status == "failed":
		event.Kind = domain.EventPayoutFailed
		event.Reference = data.Get("reference").String()
		event.FailureReason = firstString(data, "complete_message", "status")
	case strings.HasPrefix(t, "subscription."):
		event.Kind = domain.EventSubscriptionChanged
	default:
		event.Kind = domain.EventIgnored
	}
	return requireReference(event)
}
