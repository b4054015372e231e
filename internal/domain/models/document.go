// internal/domain/models/document.go
package models

import "time"

// Document is an uploaded verification document (licence, id, certificate).
type Document struct {
	ID                 string
	Type               *string
	FileName           *string
	OwnerName          *string
	OwnerEmail         *string
	VerificationStatus *string // pending | verified | rejected
	Notes              *string
	UploadedAt         *time.Time
}

// DocumentFromRaw maps a backend payload to a Document.
func DocumentFromRaw(r Raw) Document {
	d := Document{
		ID:                 r.ID(),
		Type:               optString(r, "type", "document_type"),
		FileName:           optString(r, "file_name", "filename", "original_name"),
		VerificationStatus: optString(r, "verification_status", "status"),
		Notes:              optString(r, "verification_notes", "notes", "rejection_reason"),
		UploadedAt:         optTime(r, "uploaded_at", "created_at"),
	}
	if owner, ok := r.Object("user"); ok {
		d.OwnerName = personName(owner)
		d.OwnerEmail = optString(owner, "email")
	} else {
		d.OwnerName = optString(r, "user_name", "owner_name")
		d.OwnerEmail = optString(r, "user_email", "owner_email")
	}
	return d
}
