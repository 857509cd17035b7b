// Package receipt turns a persisted order into a downloadable PDF receipt.
// Rendering is a pure function of the order: no clock reads, no I/O besides
// the destination writer.
package receipt

import (
	"fmt"
	"strings"

	"shop-service/internal/domain"
)

type Merchant struct {
	Name    string
	Address string
	Email   string
	Phone   string
}

type Line struct {
	Quantity    int
	Description string
	UnitPrice   string
	Amount      string
}

// Receipt is the formatted content of one receipt, before layout.
type Receipt struct {
	Number    string
	IssueDate string
	Merchant  Merchant
	BillTo    []string
	Lines     []Line
	Subtotal  string
	Shipping  string
	Total     string
}

func Number(orderID uint64) string {
	return fmt.Sprintf("%06d", orderID)
}

func Filename(orderID uint64) string {
	return fmt.Sprintf("receipt_%d.pdf", orderID)
}

// Build formats the order. Subtotal is total minus shipping, matching what
// the customer was charged rather than a recomputation from items.
func Build(o *domain.Order, m Merchant) Receipt {
	cur := o.Currency
	r := Receipt{
		Number:    Number(o.ID),
		IssueDate: o.CreatedAt.Format("January 2, 2006"),
		Merchant:  m,
		Subtotal:  domain.FormatMoney(o.Subtotal(), cur),
		Shipping:  domain.FormatMoney(o.Shipping, cur),
		Total:     domain.FormatMoney(o.Total, cur),
	}

	r.BillTo = nonEmpty(
		o.CustomerName(),
		o.Address,
		strings.TrimSpace(o.City+" "+o.PostalCode),
		o.Country,
		o.Email,
		o.Phone,
	)

	for _, it := range o.Items {
		r.Lines = append(r.Lines, Line{
			Quantity:    it.Quantity,
			Description: it.Name,
			UnitPrice:   domain.FormatMoney(it.Price, cur),
			Amount:      domain.FormatMoney(it.LineTotal(), cur),
		})
	}
	return r
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
