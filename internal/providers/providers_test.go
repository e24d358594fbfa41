package providers

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/payledger/internal/core/domain"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func stripeHeader(secret string, at time.Time, body []byte) http.Header {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	h := http.Header{}
	h.Set("Stripe-Signature", "t="+ts+",v1="+hex.EncodeToString(mac.Sum(nil)))
	return h
}

func TestStripe_Verify(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"charge.succeeded"}`)
	s := NewStripe("whsec_test", func() time.Time { return fixedNow })

	assert.True(t, s.Verify(stripeHeader("whsec_test", fixedNow, body), body))
	assert.False(t, s.Verify(stripeHeader("other", fixedNow, body), body), "wrong secret")
	assert.False(t, s.Verify(stripeHeader("whsec_test", fixedNow.Add(-10*time.Minute), body), body), "stale timestamp")
	assert.False(t, s.Verify(stripeHeader("whsec_test", fixedNow, body), []byte(`{"id":"evt_2"}`)), "tampered body")
	assert.False(t, s.Verify(http.Header{}, body), "missing header")

	unconfigured := NewStripe("", time.Now)
	assert.False(t, unconfigured.Configured())
	assert.False(t, unconfigured.Verify(stripeHeader("", fixedNow, body), body))
}

func TestStripe_Normalize(t *testing.T) {
	s := NewStripe("whsec_test", time.Now)

	tests := []struct {
		name      string
		body      string
		kind      domain.EventKind
		reference string
		amount    int64
		purchase  string
	}{
		{
			name:      "payment intent uses metadata reference",
			body:      `{"id":"evt_1","type":"payment_intent.succeeded","data":{"object":{"id":"pi_1","metadata":{"transaction_reference":"txn_ref_1"}}}}`,
			kind:      domain.EventPaymentSucceeded,
			reference: "txn_ref_1",
		},
		{
			name:      "charge falls back to payment intent",
			body:      `{"id":"evt_2","type":"charge.succeeded","data":{"object":{"id":"ch_1","payment_intent":"pi_9"}}}`,
			kind:      domain.EventPaymentSucceeded,
			reference: "pi_9",
		},
		{
			name:      "credit bundle checkout",
			body:      `{"id":"evt_3","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"purchase_type":"drop_in_credit"}}}}`,
			kind:      domain.EventPaymentSucceeded,
			reference: "cs_1",
			purchase:  "drop_in_credit",
		},
		{
			name:      "partial refund",
			body:      `{"id":"evt_4","type":"charge.refunded","data":{"object":{"id":"ch_1","payment_intent":"pi_9","amount_refunded":250}}}`,
			kind:      domain.EventPaymentRefunded,
			reference: "pi_9",
			amount:    250,
		},
		{
			name:      "payout paid",
			body:      `{"id":"evt_5","type":"payout.paid","data":{"object":{"id":"po_1"}}}`,
			kind:      domain.EventPayoutCompleted,
			reference: "po_1",
		},
		{
			name: "subscription",
			body: `{"id":"evt_6","type":"customer.subscription.updated","data":{"object":{"id":"sub_1"}}}`,
			kind: domain.EventSubscriptionChanged,
		},
		{
			name: "unhandled type",
			body: `{"id":"evt_7","type":"invoice.created","data":{"object":{"id":"in_1"}}}`,
			kind: domain.EventIgnored,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			event, err := s.Normalize([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.kind, event.Kind)
			assert.Equal(t, tc.reference, event.Reference)
			assert.Equal(t, tc.amount, event.AmountMinor)
			assert.Equal(t, tc.purchase, event.Purchase)
		})
	}
}

func TestStripe_NormalizeFailedPayout(t *testing.T) {
	s := NewStripe("whsec_test", time.Now)
	event, err := s.Normalize([]byte(`{"id":"evt_8","type":"payout.failed","data":{"object":{"id":"po_2","failure_message":"account closed"}}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventPayoutFailed, event.Kind)
	assert.Equal(t, "account closed", event.FailureReason)
}

func TestIdentify(t *testing.T) {
	s := NewStripe("whsec_test", time.Now)

	identity, err := s.Identify(nil, []byte(`{"id":"evt_1","type":"charge.succeeded"}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", identity.EventID)
	assert.Equal(t, "charge.succeeded", identity.EventType)

	garbage := []byte("not json at all")
	identity, err = s.Identify(nil, garbage)
	require.NoError(t, err)
	assert.Equal(t, bodyDigest(garbage), identity.EventID)
	assert.Equal(t, "unknown", identity.EventType)

	again, err := s.Identify(nil, garbage)
	require.NoError(t, err)
	assert.Equal(t, identity.EventID, again.EventID, "digest is stable")

	_, err = s.Identify(nil, nil)
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestNormalize_MalformedAndMissingReference(t *testing.T) {
	s := NewStripe("whsec_test", time.Now)

	_, err := s.Normalize([]byte("{broken"))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = s.Normalize([]byte(`{"id":"evt_1","type":"payout.paid","data":{"object":{}}}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestPaystack(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"id":302961,"reference":"ref_abc","metadata":{"purchase_type":"photo"}}}`)
	p := NewPaystack("sk_test")

	mac := hmac.New(sha512.New, []byte("sk_test"))
	mac.Write(body)
	h := http.Header{}
	h.Set("x-paystack-signature", hex.EncodeToString(mac.Sum(nil)))

	assert.True(t, p.Verify(h, body))
	assert.False(t, p.Verify(h, append([]byte{' '}, body...)))

	identity, err := p.Identify(h, body)
	require.NoError(t, err)
	assert.Equal(t, "charge.success:302961", identity.EventID)

	event, err := p.Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaymentSucceeded, event.Kind)
	assert.Equal(t, "ref_abc", event.Reference)
	assert.Equal(t, identity.EventID, event.EventID)

	event, err = p.Normalize([]byte(`{"event":"transfer.reversed","data":{"id":7,"reference":"payout_ref"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventPayoutFailed, event.Kind)
	assert.Equal(t, "transfer.reversed", event.FailureReason)

	event, err = p.Normalize([]byte(`{"event":"refund.processed","data":{"id":8,"amount":1500,"transaction_reference":"ref_abc"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaymentRefunded, event.Kind)
	assert.EqualValues(t, 1500, event.AmountMinor)
}

func TestFlutterwave(t *testing.T) {
	f := NewFlutterwave("my-hash")
	h := http.Header{}
	h.Set("verif-hash", "my-hash")
	assert.True(t, f.Verify(h, nil))
	h.Set("verif-hash", "nope")
	assert.False(t, f.Verify(h, nil))

	event, err := f.Normalize([]byte(`{"event":"charge.completed","data":{"id":1,"tx_ref":"tx-1","status":"successful","meta":{"purchase_type":"drop_in_credit"}}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaymentSucceeded, event.Kind)
	assert.Equal(t, "tx-1", event.Reference)
	assert.Equal(t, "drop_in_credit", event.Purchase)

	event, err = f.Normalize([]byte(`{"event":"charge.completed","data":{"id":2,"tx_ref":"tx-2","status":"failed"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventIgnored, event.Kind)

	event, err = f.Normalize([]byte(`{"event":"refund.completed","data":{"id":3,"tx_ref":"tx-1","amount_refunded":"12.50","currency":"USD"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaymentRefunded, event.Kind)
	assert.EqualValues(t, 1250, event.AmountMinor)

	event, err = f.Normalize([]byte(`{"event":"transfer.completed","data":{"id":4,"reference":"po-1","status":"FAILED","complete_message":"insufficient balance"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.EventPayoutFailed, event.Kind)
	assert.Equal(t, "insufficient balance", event.FailureReason)
}

func TestPayPal(t *testing.T) {
	body := []byte(`{"id":"WH-1","event_type":"PAYMENT.CAPTURE.REFUNDED","resource":{"id":"cap_1","invoice_id":"inv_1","amount":{"value":"5.00","currency_code":"EUR"}}}`)
	p := NewPayPal("pp_secret")

	h := http.Header{}
	h.Set("Paypal-Transmission-Id", "tx-1")
	h.Set("Paypal-Transmission-Time", "2026-03-01T12:00:00Z")
	h.Set("Paypal-Transmission-Sig", base64.StdEncoding.EncodeToString(PayPalSignature("pp_secret", "tx-1", "2026-03-01T12:00:00Z", body)))
	assert.True(t, p.Verify(h, body))

	h.Set("Paypal-Transmission-Id", "tx-2")
	assert.False(t, p.Verify(h, body), "transmission id is signed")

	event, err := p.Normalize(body)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPaymentRefunded, event.Kind)
	assert.Equal(t, "inv_1", event.Reference)
	assert.EqualValues(t, 500, event.AmountMinor)
}

func TestNewAdapters(t *testing.T) {
	adapters := NewAdapters(Secrets{Stripe: "a", Paystack: "b"}, nil)
	require.Len(t, adapters, 4)

	configured := map[string]bool{}
	for _, a := range adapters {
		configured[a.Name()] = a.Configured()
	}
	assert.Equal(t, map[string]bool{
		domain.ProviderStripe:      true,
		domain.ProviderPaystack:    true,
		domain.ProviderFlutterwave: false,
		domain.ProviderPayPal:      false,
	}, configured)
}
