package domain

import "time"

// Attachment is a document stored in object storage for a patient.
type Attachment struct {
	Key          string
	Name         string
	Size         int64
	LastModified *time.Time
	URL          string
}
