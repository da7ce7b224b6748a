package models

// These structs define the JSON payloads exchanged between the document
// browser UI and the HTTP functions.

// UploadStatus is the outcome of adding a document to an invoice folder.
type UploadStatus string

const (
	UploadSucceeded UploadStatus = "success"
	UploadFailed    UploadStatus = "failed"
)

// UploadResult reports one upload. A failed result carries the reason; a
// successful one carries the updated record and its categories.
type UploadResult struct {
	Status     UploadStatus    `json:"status"`
	Filename   string          `json:"filename,omitempty"`
	RecordID   string          `json:"recordId,omitempty"`
	Categories []string        `json:"categories,omitempty"`
	Record     *DocumentRecord `json:"record,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

// Succeeded reports whether the upload was attached to a record.
func (r UploadResult) Succeeded() bool {
	return r.Status == UploadSucceeded
}

// DashboardRequest is the input for the dashboard function.
type DashboardRequest struct {
	Direction string `json:"direction"`
}

// BrowseRequest selects a view of the folder tree. InvoiceKey is a pointer
// because the empty key is a real folder.
type BrowseRequest struct {
	Direction  string  `json:"direction,omitempty"`
	Company    string  `json:"company,omitempty"`
	InvoiceKey *string `json:"invoiceKey,omitempty"`
}

// DeleteRequest removes a whole record, one extracted document (RecordID and
// Index), or every record of an invoice folder (Company and InvoiceKey).
type DeleteRequest struct {
	RecordID   string  `json:"recordId,omitempty"`
	Index      *int    `json:"index,omitempty"`
	Company    string  `json:"company,omitempty"`
	InvoiceKey *string `json:"invoiceKey,omitempty"`
}

// DeleteStatus is the outcome reported by a successful delete. Failed deletes
// answer with an HTTP error instead of a body.
type DeleteStatus string

const DeleteSucceeded DeleteStatus = "success"

// DeleteResponse lists the records touched by a delete.
type DeleteResponse struct {
	Status    DeleteStatus `json:"status"`
	RecordIDs []string     `json:"recordIds"`
}
