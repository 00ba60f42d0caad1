package app

import "ged_backend/internal/email"

// NopEmailProvider drops outbound mail. Used when SMTP is not configured.
type NopEmailProvider struct{}

func (m *NopEmailProvider) Send(email *email.Email) error { return nil }
func (m *NopEmailProvider) SendWithTemplate(templateName string, data email.TemplateData, emailMsg *email.Email) error {
	return nil
}
func (m *NopEmailProvider) Validate() error { return nil }
func (m *NopEmailProvider) Close() error    { return nil }
