package models

import "time"

// Invoice is the structured record the PDF formatter lays out
type Invoice struct {
	ID       string        `json:"id"`
	Number   string        `json:"number"`
	IssuedAt time.Time     `json:"issuedAt"`
	DueAt    time.Time     `json:"dueAt"`
	Currency string        `json:"currency"`
	BillTo   BillTo        `json:"billTo"`
	Lines    []InvoiceLine `json:"lines"`
	Notes    string        `json:"notes,omitempty"`
	PaidAt   *time.Time    `json:"paidAt,omitempty"`
	Bank     BankDetails   `json:"bank"`
}

// BillTo is the customer block
type BillTo struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Address string `json:"address"`
	Zip     string `json:"zip"`
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
	VATNo   string `json:"vatNo,omitempty"`
	Email   string `json:"email,omitempty"`
}

// BankDetails is printed under the totals
type BankDetails struct {
	BankName string `json:"bankName"`
	RegNo    string `json:"regNo"`
	Account  string `json:"account"`
	IBAN     string `json:"iban,omitempty"`
	SWIFT    string `json:"swift,omitempty"`
}

// InvoiceLine is one row of the line-item table.
// Prices are in whole currency units with two decimals.
type InvoiceLine struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	VATPercent  float64 `json:"vatPercent"`
}

// CreateInvoiceLine is a line of a create request. A nil VATPercent takes the default rate,
// an explicit 0 is a VAT exempt line.
type CreateInvoiceLine struct {
	Description string   `json:"description"`
	Quantity    int      `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	VATPercent  *float64 `json:"vatPercent,omitempty"`
}

// CreateInvoiceRequest represents the request body for creating an invoice
type CreateInvoiceRequest struct {
	Number   string              `json:"number"`
	IssuedAt *time.Time          `json:"issuedAt,omitempty"`
	DueDays  int                 `json:"dueDays"`
	Currency string              `json:"currency"`
	BillTo   BillTo              `json:"billTo"`
	Lines    []CreateInvoiceLine `json:"lines"`
	Notes    string              `json:"notes,omitempty"`
}
