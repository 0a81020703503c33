package models

import "io"

// Upload is an attachment received with an entry form, before it is stored.
type Upload struct {
	// Filename is the client-side name; only its extension is kept.
	Filename string
	// ContentType is the MIME type reported by the client.
	ContentType string
	// Size is the payload length in bytes.
	Size int64
	// Body streams the payload.
	Body io.Reader
}
