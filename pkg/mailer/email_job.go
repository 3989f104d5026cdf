package mailer

import "github.com/google/uuid"

// EmailJob is one queued email. Either Template (with Data) or a literal
// Subject/Text/HTML is set.
type EmailJob struct {
	ID       string         `json:"id"`
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	// Ref ties the email to a domain record, e.g. an order id.
	Ref string `json:"ref,omitempty"`
}

// NewTemplateJob builds a job rendered by the worker from a named template.
func NewTemplateJob(to, template string, data map[string]any, ref string) EmailJob {
	return EmailJob{ID: uuid.NewString(), To: to, Template: template, Data: data, Ref: ref}
}

// Tags are attached to the outgoing message for provider-side analytics.
func (j EmailJob) Tags() []string {
	var tags []string
	if j.Template != "" {
		tags = append(tags, j.Template)
	}
	return tags
}
