package sitedata

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DocumentType distinguishes invoices from quotations.
type DocumentType string

const (
	Invoice   DocumentType = "Invoice"
	Quotation DocumentType = "Quotation"
)

// LineItem is one billable row of a document.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

// Document is a generated invoice or quotation kept in the document history.
type Document struct {
	ID             string       `json:"id"`
	DocumentType   DocumentType `json:"documentType"`
	DocumentNumber string       `json:"documentNumber"`
	ClientName     string       `json:"clientName"`
	ClientEmail    string       `json:"clientEmail"`
	ClientAddress  string       `json:"clientAddress"`
	ContactNumber  string       `json:"contactNumber"`
	Currency       string       `json:"currency"`
	IssueDate      string       `json:"issueDate"`
	SecondaryDate  string       `json:"secondaryDate,omitempty"`
	LineItems      []LineItem   `json:"lineItems"`
	TaxRate        float64      `json:"taxRate"`
	Notes          string       `json:"notes,omitempty"`
	Subtotal       float64      `json:"subtotal"`
	TaxAmount      float64      `json:"taxAmount"`
	Total          float64      `json:"total"`
	CreatedAt      time.Time    `json:"createdAt"`
}

func (d Document) Identity() string { return d.ID }

func (d Document) clone() Document {
	d.LineItems = slices.Clone(d.LineItems)
	return d
}

// NewDocument is the input accepted when saving a document.
type NewDocument struct {
	DocumentType   DocumentType `json:"documentType"`
	DocumentNumber string       `json:"documentNumber"`
	ClientName     string       `json:"clientName"`
	ClientEmail    string       `json:"clientEmail"`
	ClientAddress  string       `json:"clientAddress"`
	ContactNumber  string       `json:"contactNumber"`
	Currency       string       `json:"currency"`
	IssueDate      string       `json:"issueDate"`
	SecondaryDate  string       `json:"secondaryDate,omitempty"`
	LineItems      []LineItem   `json:"lineItems"`
	TaxRate        float64      `json:"taxRate"`
	Notes          string       `json:"notes,omitempty"`
}

// Totals computes subtotal, tax and grand total of d.
func (d NewDocument) Totals() (subtotal, tax, total float64) {
	for _, it := range d.LineItems {
		subtotal += it.Quantity * it.Price
	}
	tax = subtotal * d.TaxRate / 100
	return subtotal, tax, subtotal + tax
}

// FormatCurrency renders amount in the given ISO currency, falling back to
// USD for unknown codes.
func FormatCurrency(amount float64, code string) string {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		unit = currency.USD
	}
	p := message.NewPrinter(language.AmericanEnglish)
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}

// Documents is the invoice and quotation history. Documents are immutable
// once saved: they can be added and deleted but not edited.
type Documents struct {
	c *Collection[Document, NewDocument]
}

func (d *Documents) All() []Document { return d.c.All() }
func (d *Documents) Get(id string) (Document, bool) { return d.c.Get(id) }
func (d *Documents) Add(ctx context.Context, nd NewDocument) error {
	return d.c.Add(ctx, nd)
}
func (d *Documents) Create(ctx context.Context, nd NewDocument) (Document, error) {
	return d.c.Create(ctx, nd)
}
func (d *Documents) Delete(ctx context.Context, id string) error { return d.c.Delete(ctx, id) }

// Filter returns documents of docType ("" or "All" for any) whose client
// name or number contains search, case-insensitively.
func (d *Documents) Filter(docType, search string) []Document {
	search = strings.ToLower(strings.TrimSpace(search))
	var out []Document
	for _, doc := range d.c.All() {
		if docType != "" && docType != "All" && string(doc.DocumentType) != docType {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(doc.ClientName), search) &&
			!strings.Contains(strings.ToLower(doc.DocumentNumber), search) {
			continue
		}
		out = append(out, doc)
	}
	return out
}

var documentSpec = kindSpec[Document, NewDocument]{
	kind: KindDocuments,
	build: func(id string, d NewDocument, now time.Time) Document {
		subtotal, tax, total := d.Totals()
		cur := strings.ToUpper(strings.TrimSpace(d.Currency))
		if cur == "" {
			cur = "USD"
		}
		return Document{
			ID:             id,
			DocumentType:   d.DocumentType,
			DocumentNumber: d.DocumentNumber,
			ClientName:     d.ClientName,
			ClientEmail:    d.ClientEmail,
			ClientAddress:  d.ClientAddress,
			ContactNumber:  d.ContactNumber,
			Currency:       cur,
			IssueDate:      d.IssueDate,
			SecondaryDate:  d.SecondaryDate,
			LineItems:      d.LineItems,
			TaxRate:        d.TaxRate,
			Notes:          d.Notes,
			Subtotal:       subtotal,
			TaxAmount:      tax,
			Total:          total,
			CreatedAt:      now.UTC(),
		}
	},
	withID: func(d Document, id string) Document { d.ID = id; return d },
	clone:  Document.clone,
}
