package invoice

import "time"

type InvoiceStatus string

const (
	StatusDraft InvoiceStatus = "draft"
	StatusSent  InvoiceStatus = "sent"
	StatusPaid  InvoiceStatus = "paid"
	StatusVoid  InvoiceStatus = "void"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusVoid:
		return true
	}
	return false
}

type Item struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	Position    int     `json:"position"`
}

func (i Item) Amount() float64 {
	return i.Quantity * i.UnitPrice
}

type Invoice struct {
	ID           string        `json:"id"`
	CompanyID    string        `json:"companyId"`
	Number       string        `json:"number"`
	CustomerName string        `json:"customerName"`
	IssuedOn     time.Time     `json:"issuedOn"`
	DueOn        *time.Time    `json:"dueOn,omitempty"`
	Status       InvoiceStatus `json:"status"`
	Currency     string        `json:"currency"`
	Total        float64       `json:"total"`
	CreatedBy    string        `json:"createdBy"`
	Items        []Item        `json:"items"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

type ItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

type CreateInput struct {
	Number       string      `json:"number"`
	CustomerName string      `json:"customerName"`
	IssuedOn     time.Time   `json:"-"`
	DueOn        *time.Time  `json:"-"`
	Currency     string      `json:"currency"`
	Items        []ItemInput `json:"items"`
}

// Total sums the line amounts; it is frozen on the invoice row so listings
// never have to join the items table.
func Total(items []ItemInput) float64 {
	var total float64
	for _, item := range items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}
