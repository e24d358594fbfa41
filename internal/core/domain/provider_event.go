package domain

// EventKind is the provider-independent meaning of a webhook event.
type EventKind string

const (
	EventPaymentSucceeded        EventKind = "payment_succeeded"
	EventPaymentRefunded         EventKind = "payment_refunded"
	EventPayoutCompleted         EventKind = "payout_completed"
	EventPayoutFailed            EventKind = "payout_failed"
	EventCreditPurchaseActivated EventKind = "credit_purchase_activated"
	EventSubscriptionChanged     EventKind = "subscription_changed"
	EventIgnored                 EventKind = "ignored"
)

// EventIdentity is what is needed to claim an event before its payload is trusted.
type EventIdentity struct {
	EventID   string
	EventType string
}

// ProviderEvent is a webhook payload reduced to the fields the dispatcher acts on.
type ProviderEvent struct {
	Kind      EventKind
	EventID   string
	EventType string
	// Reference is the provider reference of the transaction, payout or
	// credit purchase the event is about.
	Reference string
	// AmountMinor is set for partial refunds; zero means "full amount".
	AmountMinor   int64
	FailureReason string
	// Purchase distinguishes a credit bundle payment from a photo/tip payment
	// when both arrive as the same provider event type.
	Purchase string
}
