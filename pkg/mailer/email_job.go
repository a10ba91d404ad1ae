package mailer

// Known job types the worker can render a subject/body for.
const (
	JobWelcome         = "welcome"
	JobPasswordChanged = "password_changed"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Subject/Text/HTML override the defaults derived from Type.
type EmailJob struct {
	To      string         `json:"to"`
	Type    string         `json:"type,omitempty"`
	Subject string         `json:"subject,omitempty"`
	Text    string         `json:"text,omitempty"`
	HTML    string         `json:"html,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}
