package folders

import (
	"fmt"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

// State is a level of the folder browser.
type State int

const (
	StateRoot State = iota
	StateCompanyList
	StateInvoiceList
	StateDocumentList
)

func (s State) String() string {
	switch s {
	case StateRoot:
		return "root"
	case StateCompanyList:
		return "companies"
	case StateInvoiceList:
		return "invoices"
	case StateDocumentList:
		return "documents"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText renders the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Cursor is the browser's current selection. It is a plain value: every
// transition returns a new cursor and the zero Cursor is the root.
type Cursor struct {
	State      State            `json:"state"`
	Direction  models.Direction `json:"direction,omitempty"`
	Company    string           `json:"company,omitempty"`
	InvoiceKey string           `json:"invoiceKey,omitempty"`
}

// SelectDirection moves from the root to the company list for direction.
func (c Cursor) SelectDirection(direction models.Direction) (Cursor, error) {
	if c.State != StateRoot {
		return c, fmt.Errorf("%w: select direction from %s", models.ErrInvalidTransition, c.State)
	}
	if !direction.Valid() {
		return c, fmt.Errorf("%w: %q", models.ErrInvalidDirection, direction)
	}
	return Cursor{State: StateCompanyList, Direction: direction}, nil
}

// SelectCompany moves from the company list to the company's invoices.
func (c Cursor) SelectCompany(name string) (Cursor, error) {
	if c.State != StateCompanyList {
		return c, fmt.Errorf("%w: select company from %s", models.ErrInvalidTransition, c.State)
	}
	c.State = StateInvoiceList
	c.Company = name
	return c, nil
}

// SelectInvoice moves from the invoice list to the documents of one folder.
// The empty key is a real folder (records without invoice numbers).
func (c Cursor) SelectInvoice(key string) (Cursor, error) {
	if c.State != StateInvoiceList {
		return c, fmt.Errorf("%w: select invoice from %s", models.ErrInvalidTransition, c.State)
	}
	c.State = StateDocumentList
	c.InvoiceKey = key
	return c, nil
}

// Back moves up one level, clearing the selection made at that level.
// Returning to the root clears everything.
func (c Cursor) Back() (Cursor, error) {
	switch c.State {
	case StateDocumentList:
		c.State = StateInvoiceList
		c.InvoiceKey = ""
	case StateInvoiceList:
		c.State = StateCompanyList
		c.Company = ""
	case StateCompanyList:
		return Cursor{}, nil
	default:
		return c, fmt.Errorf("%w: back from %s", models.ErrInvalidTransition, c.State)
	}
	return c, nil
}

// Resume rebuilds a cursor from request parameters by replaying the forward
// transitions. An empty direction stops at the root, an empty company stops at
// the company list. hasInvoice distinguishes "no invoice selected" from the
// empty invoice key.
func Resume(direction, companyName, invoiceKey string, hasInvoice bool) (Cursor, error) {
	var c Cursor
	if direction == "" {
		if companyName != "" || hasInvoice {
			return c, fmt.Errorf("%w: company or invoice without direction", models.ErrInvalidTransition)
		}
		return c, nil
	}
	d, err := models.ParseDirection(direction)
	if err != nil {
		return c, err
	}
	if c, err = c.SelectDirection(d); err != nil {
		return c, err
	}
	if companyName == "" {
		if hasInvoice {
			return c, fmt.Errorf("%w: invoice without company", models.ErrInvalidTransition)
		}
		return c, nil
	}
	if c, err = c.SelectCompany(companyName); err != nil {
		return c, err
	}
	if !hasInvoice {
		return c, nil
	}
	return c.SelectInvoice(invoiceKey)
}

// View is what the browser shows for a cursor.
type View struct {
	Cursor      Cursor             `json:"cursor"`
	Directions  []models.Direction `json:"directions,omitempty"`
	Companies   []string           `json:"companies,omitempty"`
	InvoiceKeys []string           `json:"invoiceKeys,omitempty"`
	Documents   []Entry            `json:"documents,omitempty"`
}

// Project derives the view for cursor from tree.
func Project(tree *Tree, cursor Cursor) View {
	v := View{Cursor: cursor}
	switch cursor.State {
	case StateRoot:
		v.Directions = append([]models.Direction(nil), models.Directions...)
	case StateCompanyList:
		v.Companies = tree.CompaniesFor(cursor.Direction)
	case StateInvoiceList:
		v.InvoiceKeys = tree.InvoiceKeysFor(cursor.Company)
	case StateDocumentList:
		v.Documents = tree.DocumentsFor(cursor.Company, cursor.InvoiceKey)
	}
	return v
}
