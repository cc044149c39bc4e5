package domain

// ReportSubmission is the decoded body of a phishing report. The email payload
// sits at the top level of the document next to the report metadata.
type ReportSubmission struct {
	Reporter   string `json:"reporter" validate:"required"`
	ReportTime string `json:"report_time" validate:"required"`
	MessageID  string `json:"message_id" validate:"required"`
	EmailPayload
}

type EmailPayload struct {
	Sender      string              `json:"sender" validate:"required"`
	Subject     string              `json:"subject"`
	Body        EmailBody           `json:"body"`
	Headers     []HeaderPair        `json:"headers"`
	Tos         []string            `json:"tos" validate:"dive,required"`
	Ccs         []string            `json:"ccs" validate:"dive,required"`
	Attachments []AttachmentPayload `json:"attachments" validate:"dive"`
}

type EmailBody struct {
	Preferred string `json:"preferred"`
	Plaintext string `json:"plaintext"`
	HTML      string `json:"html"`
	RTF       string `json:"rtf"`
}

// HeaderPair is a [key, value] header as it appears in the report.
type HeaderPair [2]string

func (h HeaderPair) Key() string   { return h[0] }
func (h HeaderPair) Value() string { return h[1] }

type AttachmentPayload struct {
	Filename string `json:"filename"`
	Mimetype string `json:"mimetype"`
	Blob     string `json:"blob"` // standard base64
}
