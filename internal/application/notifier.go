package application

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer"
	mailtpl "github.com/oksasatya/go-ecommerce-backend/pkg/mailer/templates"
)

// Notifier enqueues transactional emails. Every method is best-effort:
// failures are logged and never returned.
type Notifier struct {
	Jobs   JobPublisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewNotifier(jobs JobPublisher, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{Jobs: jobs, Cfg: cfg, Logger: logger}
}

func (n *Notifier) enabled() bool {
	return n != nil && n.Jobs != nil && n.Cfg != nil && n.Cfg.MailSendEnabled
}

func (n *Notifier) Welcome(ctx context.Context, u *entity.User) {
	if !n.enabled() || u == nil {
		return
	}
	data := mailtpl.NewWelcomeData(n.Cfg, displayName(u), u.Email, mailtpl.WithTime(time.Now()))
	n.publish(ctx, mailer.NewTemplateJob(u.Email, mailtpl.Welcome, data, u.ID))
}

func (n *Notifier) OrderPlaced(ctx context.Context, u *entity.User, o *entity.Order) {
	n.orderEmail(ctx, mailtpl.OrderConfirmation, u, o)
}

func (n *Notifier) OrderCancelled(ctx context.Context, u *entity.User, o *entity.Order) {
	n.orderEmail(ctx, mailtpl.OrderCancelled, u, o)
}

func (n *Notifier) orderEmail(ctx context.Context, template string, u *entity.User, o *entity.Order) {
	if !n.enabled() || u == nil || o == nil {
		return
	}
	lines := make([]mailtpl.OrderLine, 0, len(o.Items))
	for _, it := range o.Items {
		name := it.ProductID
		if it.Product != nil && it.Product.Title != "" {
			name = it.Product.Title
		}
		lines = append(lines, mailtpl.OrderLine{
			Name:      name,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			LineTotal: money(entity.LineTotal(it.UnitPrice, it.Quantity)),
		})
	}
	opts := []mailtpl.Option{
		mailtpl.WithTime(o.CreatedAt),
		mailtpl.WithOrder(o.ID, string(o.Status), string(o.PaymentMethod), money(o.TotalAmount), n.Cfg.PaymentCurrency, shipTo(o.ShippingAddress), lines),
	}

	var data map[string]any
	if template == mailtpl.OrderCancelled {
		data = mailtpl.NewOrderCancelledData(n.Cfg, displayName(u), u.Email, opts...)
	} else {
		data = mailtpl.NewOrderConfirmationData(n.Cfg, displayName(u), u.Email, opts...)
	}
	n.publish(ctx, mailer.NewTemplateJob(u.Email, template, data, o.ID))
}

func (n *Notifier) publish(ctx context.Context, job mailer.EmailJob) {
	if err := n.Jobs.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithFields(logrus.Fields{"job_id": job.ID, "template": job.Template, "ref": job.Ref}).Warn("failed to publish email job")
	}
}

func displayName(u *entity.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.UserName
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func shipTo(a entity.ShippingAddress) string {
	parts := []string{a.FullName, a.Address, a.City, a.State, a.PostalCode, a.Country}
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ", ")
}
