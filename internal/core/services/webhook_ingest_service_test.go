package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SscSPs/payledger/internal/apperrors"
	"github.com/SscSPs/payledger/internal/core/domain"
	portssvc "github.com/SscSPs/payledger/internal/core/ports/services"
	"github.com/SscSPs/payledger/internal/core/services"
	"github.com/SscSPs/payledger/internal/platform/config"
	"github.com/SscSPs/payledger/internal/repositories/memory"
)

const testProvider = "testpay"

// fakeAdapter accepts any body whose X-Test-Signature header is "ok" and
// always normalises to the configured event.
type fakeAdapter struct {
	configured   bool
	event        domain.ProviderEvent
	normalizeErr error
}

func (a *fakeAdapter) Name() string     { return testProvider }
func (a *fakeAdapter) Configured() bool { return a.configured }

func (a *fakeAdapter) Verify(headers http.Header, _ []byte) bool {
	return headers.Get("X-Test-Signature") == "ok"
}

func (a *fakeAdapter) Identify(_ http.Header, _ []byte) (domain.EventIdentity, error) {
	return domain.EventIdentity{EventID: a.event.EventID, EventType: a.event.EventType}, nil
}

func (a *fakeAdapter) Normalize(_ []byte) (domain.ProviderEvent, error) {
	if a.normalizeErr != nil {
		return domain.ProviderEvent{}, a.normalizeErr
	}
	return a.event, nil
}

type ingestFixture struct {
	store     *memory.Store
	adapter   *fakeAdapter
	container *portssvc.ServiceContainer
}

func newIngestFixture() *ingestFixture {
	store := memory.New()
	adapter := &fakeAdapter{
		configured: true,
		event: domain.ProviderEvent{
			Kind:      domain.EventPaymentSucceeded,
			EventID:   "evt_100",
			EventType: "payment.succeeded",
			Reference: "ref_100",
		},
	}
	cfg := &config.Config{WebhookClaimLease: time.Minute}
	container := services.NewServiceContainer(cfg, store.Provider(), []portssvc.ProviderAdapter{adapter})

	txn := photoPurchase("txn_100")
	txn.Status = domain.TransactionPending
	txn.Provider = testProvider
	txn.ProviderReference = "ref_100"
	store.PutTransaction(txn)

	return &ingestFixture{store: store, adapter: adapter, container: container}
}

func signed() http.Header {
	h := http.Header{}
	h.Set("X-Test-Signature", "ok")
	return h
}

func TestWebhookIngest_ProcessesAndDeduplicates(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	body := []byte(`{"id":"evt_100"}`)

	res, err := f.container.WebhookIngest.Ingest(ctx, testProvider, signed(), body)
	require.NoError(t, err)
	assert.Equal(t, "evt_100", res.EventID)
	assert.Equal(t, domain.WebhookProcessed, res.Status)
	assert.False(t, res.Duplicate)

	txn, err := f.store.FindTransactionByID(ctx, "txn_100")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionSucceeded, txn.Status)
	assert.Equal(t, 1, f.store.JournalCount())

	row, err := f.store.FindEventByID(ctx, res.RowID)
	require.NoError(t, err)
	assert.True(t, row.SignatureVerified)
	assert.Equal(t, string(body), row.Payload)

	dup, err := f.container.WebhookIngest.Ingest(ctx, testProvider, signed(), body)
	require.NoError(t, err)
	assert.True(t, dup.Duplicate)
	assert.Equal(t, res.RowID, dup.RowID)
	assert.Equal(t, 1, f.store.JournalCount())
}

func TestWebhookIngest_BadSignatureClaimsNothing(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()

	_, err := f.container.WebhookIngest.Ingest(ctx, testProvider, http.Header{}, []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSignature)
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))

	claim, err := f.container.WebhookLedger.Claim(ctx, domain.ClaimRequest{Provider: testProvider, EventID: "evt_100"})
	require.NoError(t, err)
	assert.True(t, claim.Inserted)
}

func TestWebhookIngest_UnconfiguredProvider(t *testing.T) {
	f := newIngestFixture()
	f.adapter.configured = false

	_, err := f.container.WebhookIngest.Ingest(context.Background(), testProvider, signed(), []byte(`{}`))
	assert.ErrorIs(t, err, apperrors.ErrConfiguration)
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.HTTPStatus(err))
}

func TestWebhookIngest_UnknownProvider(t *testing.T) {
	f := newIngestFixture()

	_, err := f.container.WebhookIngest.Ingest(context.Background(), "venmo", signed(), []byte(`{}`))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestWebhookIngest_InFlightDelivery(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()

	_, err := f.container.WebhookLedger.Claim(ctx, domain.ClaimRequest{Provider: testProvider, EventID: "evt_100"})
	require.NoError(t, err)

	res, err := f.container.WebhookIngest.Ingest(ctx, testProvider, signed(), []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, res.InFlight)
	assert.False(t, res.Duplicate)
	assert.Zero(t, f.store.JournalCount())
}

func TestWebhookIngest_DispatchFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.adapter.event.Reference = "ref_unknown"

	res, err := f.container.WebhookIngest.Ingest(ctx, testProvider, signed(), []byte(`{}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	require.NotNil(t, res)
	assert.Equal(t, domain.WebhookFailed, res.Status)

	row, err := f.store.FindEventByID(ctx, res.RowID)
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookFailed, row.Status)
	assert.Contains(t, row.LastError, "ref_unknown")

	f.adapter.event.Reference = "ref_100"
	retry, err := f.container.WebhookIngest.Ingest(ctx, testProvider, signed(), []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.WebhookProcessed, retry.Status)

	row, err = f.store.FindEventByID(ctx, res.RowID)
	require.NoError(t, err)
	assert.Equal(t, 2, row.Attempts)
}

func TestWebhookIngest_MalformedPayloadMarksFailed(t *testing.T) {
	ctx := context.Background()
	f := newIngestFixture()
	f.adapter.normalizeErr = errors.New("missing data object")

	res, err := f.container.WebhookIngest.Ingest(ctx, testProvider, signed(), []byte(`{}`))
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	require.NotNil(t, res)
	assert.Equal(t, domain.WebhookFailed, res.Status)
}
