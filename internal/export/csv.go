// Package export renders order sets as CSV for spreadsheet import.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/go-faster/errors"

	"github.com/tamilyouth/preorder-api/internal/domain/order"
)

var header = []string{
	"Bestellnummer",
	"Datum",
	"Zeit",
	"Status",
	"Kunde",
	"Telefon",
	"E-Mail",
	"Lieferung",
	"Adresse",
	"Artikel",
	"Menge",
	"Einzelpreis",
	"Zwischensumme",
	"Liefergebühr",
	"Gesamtbetrag",
}

// WriteCSV writes orders as CSV. Each line item gets its own row; the
// order-level columns are filled only on the first row of an order so the
// sheet reads as grouped blocks.
func WriteCSV(w io.Writer, orders []order.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i := range orders {
		if err := writeOrder(cw, &orders[i]); err != nil {
			return errors.Wrapf(err, "write order %s", orders[i].OrderID)
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeOrder(cw *csv.Writer, o *order.Order) error {
	date := o.CreatedAt.Format("02.01.2006")
	clock := o.CreatedAt.Format("15:04")

	delivery := "Nein"
	if o.Delivery.Enabled {
		delivery = "Ja"
	}

	head := []string{
		o.OrderID,
		date,
		clock,
		string(o.Status),
		o.Customer.Name,
		o.Customer.Phone,
		o.Customer.Email,
		delivery,
		o.Delivery.Address.Display(),
	}
	foot := []string{
		o.Subtotal.StringFixed(2),
		o.DeliveryFee.StringFixed(2),
		o.Total.StringFixed(2),
	}

	if len(o.Items) == 0 {
		row := append(append(append([]string{}, head...), "", "", ""), foot...)
		return cw.Write(row)
	}

	blank := make([]string, len(head))
	for i, it := range o.Items {
		row := make([]string, 0, len(header))
		if i == 0 {
			row = append(row, head...)
		} else {
			row = append(row, blank...)
		}
		row = append(row,
			it.Name,
			strconv.Itoa(it.Quantity),
			it.UnitPrice.StringFixed(2),
		)
		if i == 0 {
			row = append(row, foot...)
		} else {
			row = append(row, "", "", "")
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}
