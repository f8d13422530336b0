package types

// LineItem amounts are in the currency's minor unit (centavos).
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64
	Quantity    int64
}

type CheckoutSessionRequest struct {
	Currency          string
	CustomerEmail     string
	ClientReferenceID string
	SuccessURL        string
	CancelURL         string
	LineItems         []LineItem
	Metadata          map[string]string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// ProviderSession is a checkout session as reported back by the payment provider.
type ProviderSession struct {
	ID              string
	PaymentStatus   string
	Metadata        map[string]string
	CustomerID      string
	CustomerEmail   string
	PaymentIntentID string
	AmountTotal     int64
	Currency        string
}

type NotificationTemplate string

const (
	TEMPLATE_SALE_CONFIRMATION   NotificationTemplate = "sale_confirmation"
	TEMPLATE_WITHDRAWAL_REJECTED NotificationTemplate = "withdrawal_rejected"
	TEMPLATE_WITHDRAWAL_COMPLETE NotificationTemplate = "withdrawal_completed"
)

type Notification struct {
	To       string
	ToName   string
	Template NotificationTemplate
	Subject  string
	Fields   map[string]any
	QRCodes  []string
}
