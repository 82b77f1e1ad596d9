package model

type ProviderLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type ProviderAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type ProviderSessionResult struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Links  []ProviderLink `json:"links"`
}

// ProviderResource carries the payment session the event refers to.
type ProviderResource struct {
	ID     string         `json:"id"`
	Status string         `json:"status"`
	Amount ProviderAmount `json:"amount"`
}

// ProviderEvent is the verified form of one webhook delivery.
type ProviderEvent struct {
	ID         string           `json:"id"`
	EventType  string           `json:"event_type"`
	CreateTime string           `json:"create_time"`
	Resource   ProviderResource `json:"resource"`
}

const (
	EventSessionCompleted = "PAYMENT.SESSION.COMPLETED"
	EventSessionFailed    = "PAYMENT.SESSION.FAILED"
)
