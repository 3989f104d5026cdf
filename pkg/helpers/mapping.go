package helpers

import (
	"fmt"

	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ecommerce-backend/pkg/mailer/templates"
)

// EnsureRecipientAndEmail backfills the recipient fields templates rely on.
func EnsureRecipientAndEmail(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}

// FallbackSubject is used for raw jobs that arrive without a subject.
func FallbackSubject(job *mailer.EmailJob) string {
	if job.Subject != "" {
		return job.Subject
	}
	switch job.Template {
	case mailtpl.Welcome:
		return "Welcome"
	case mailtpl.OrderConfirmation:
		return "Order received"
	case mailtpl.OrderCancelled:
		return "Order cancelled"
	default:
		return "Notification"
	}
}
