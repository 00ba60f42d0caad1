package email

// Email is one outbound message.
type Email struct {
	From     string
	To       []string
	Cc       []string
	Bcc      []string
	Subject  string
	Body     string
	HTMLBody string
}

// TemplateData feeds the HTML template renderer.
type TemplateData map[string]interface{}
