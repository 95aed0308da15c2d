package models

// DocumentMetadata describes the structural properties of an inspected PDF.
// JSON keys match the authenticity report format consumed downstream.
type DocumentMetadata struct {
	// Document information dictionary
	Title        string `json:"title"`         // Document title (may be empty)
	Author       string `json:"author"`        // Document author
	Creator      string `json:"creator"`       // Application that created the original document
	Producer     string `json:"producer"`      // Application that produced the PDF
	CreationDate string `json:"creation_date"` // Raw creation date string as stored in the PDF
	ModDate      string `json:"mod_date"`      // Raw modification date string as stored in the PDF

	// Structural properties
	TotalPages   int  `json:"total_pages"`   // Number of pages
	HasSignature bool `json:"has_signature"` // Digital signature field present
	IsEncrypted  bool `json:"is_encrypted"`  // Document is encrypted
}
