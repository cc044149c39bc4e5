package domain

import (
	"time"

	"github.com/google/uuid"
)

type RecipientKind string

const (
	RecipientTo RecipientKind = "to"
	RecipientCc RecipientKind = "cc"
)

type Report struct {
	ID         uuid.UUID `json:"id"`
	Reporter   string    `json:"reporter"`
	ReportTime time.Time `json:"report_time"`
	EmailID    string    `json:"email_id"`
}

// Email is keyed by the message id supplied by the reporter, not by a generated id.
type Email struct {
	ID            string `json:"id"`
	Sender        string `json:"sender"`
	Subject       string `json:"subject"`
	PreferredBody string `json:"preferred_body"`
	PlaintextBody string `json:"plaintext_body"`
	HTMLBody      string `json:"html_body"`
	RTFBody       string `json:"rtf_body"`
}

type EmailAddress struct {
	Email string `json:"email"`
}

type EmailHeader struct {
	ID      int64  `json:"id"`
	EmailID string `json:"email_id"`
	Index   int    `json:"index"`
	Key     string `json:"key"`
	Value   string `json:"value"`
}

type EmailAttachment struct {
	ID       int64      `json:"id"`
	EmailID  string     `json:"email_id"`
	Filename string     `json:"filename"`
	Mimetype string     `json:"mimetype"`
	File     []byte     `json:"file"`
	Hashes   []FileHash `json:"hashes,omitempty"`
}

// FileHash rows are never written by ingestion.
type FileHash struct {
	ID        int64  `json:"id"`
	FileID    int64  `json:"file_id"`
	HashType  string `json:"hash_type"`
	HashValue []byte `json:"hash_value"`
}

// EmailRecord is an Email with everything it owns, headers sorted by index.
type EmailRecord struct {
	Email
	Headers     []EmailHeader     `json:"headers"`
	Tos         []EmailAddress    `json:"tos"`
	Ccs         []EmailAddress    `json:"ccs"`
	Attachments []EmailAttachment `json:"attachments"`
}

type ReportSummary struct {
	Report
	Subject string `json:"subject"`
	Sender  string `json:"sender"`
}
