// Package providers adapts each payment provider's webhook format to the
// provider-independent ProviderEvent. Adapters never trust a payload before
// Verify succeeds and read only the few fields the dispatcher needs.
package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
)

// ErrEmptyBody is returned by Identify for a request without a body.
var ErrEmptyBody = errors.New("empty webhook body")

// ErrMalformedPayload is returned by Normalize for bodies that are not JSON.
var ErrMalformedPayload = errors.New("malformed webhook payload")

// Secrets holds the verification secret of every provider.
type Secrets struct {
	Stripe      string
	Paystack    string
	Flutterwave string
	PayPal      string
}

// NewAdapters returns one adapter per supported provider. Providers without a
// secret are still returned so that their endpoint can answer 503.
func NewAdapters(secrets Secrets, now func() time.Time) []portssvc.ProviderAdapter {
	if now == nil {
		now = time.Now
	}
	return []portssvc.ProviderAdapter{
		NewStripe(secrets.Stripe, now),
		NewPaystack(secrets.Paystack),
		NewFlutterwave(secrets.Flutterwave),
		NewPayPal(secrets.PayPal),
	}
}

// identify reads the event id and type. A body without a usable id still gets
// a stable identity derived from its bytes, so a corrupt delivery can be
// claimed and its failure recorded.
func identify(rawBody []byte, idPath, typePath string) (domain.EventIdentity, error) {
	if len(rawBody) == 0 {
		return domain.EventIdentity{}, ErrEmptyBody
	}
	identity := domain.EventIdentity{EventType: "unknown"}
	if gjson.ValidBytes(rawBody) {
		identity.EventID = gjson.GetBytes(rawBody, idPath).String()
		if t := gjson.GetBytes(rawBody, typePath).String(); t != "" {
			identity.EventType = t
		}
	}
	if identity.EventID == "" {
		identity.EventID = bodyDigest(rawBody)
	}
	return identity, nil
}

func bodyDigest(rawBody []byte) string {
	sum := sha256.Sum256(rawBody)
	return "sha256:" + hex.EncodeToString(sum[:])
}

func parse(rawBody []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(rawBody) {
		return gjson.Result{}, ErrMalformedPayload
	}
	return gjson.ParseBytes(rawBody), nil
}

// firstString returns the first non-empty string among the paths.
func firstString(doc gjson.Result, paths ...string) string {
	for _, p := range paths {
		if v := doc.Get(p).String(); v != "" {
			return v
		}
	}
	return ""
}

func hmacEqual(expected, actual []byte) bool {
	return len(actual) > 0 && hmac.Equal(expected, actual)
}

func requireReference(event domain.ProviderEvent) (domain.ProviderEvent, error) {
	switch event.Kind {
	case domain.EventSubscriptionChanged, domain.EventIgnored:
		return event, nil
	}
	if event.Reference == "" {
		return event, fmt.Errorf("%w: %s event without a reference", ErrMalformedPayload, event.EventType)
	}
	return event, nil
}
