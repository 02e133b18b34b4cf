package mailer

// Attachment content is base64-encoded, matching the delivery API's wire
// format and the QR data-URL payload.
type Attachment struct {
	Filename string
	Content  string
}

type Service interface {
	Enabled() bool
	Send(toEmail, toName, subject, text, html string, attachments ...Attachment) (string, error)
}
