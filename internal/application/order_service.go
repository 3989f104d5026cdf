package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ecommerce-backend/config"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	repo "github.com/oksasatya/go-ecommerce-backend/internal/domain/repository"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
)

type OrderService struct {
	Orders   repo.OrderRepository
	Carts    repo.CartRepository
	Users    repo.UserRepository
	Payments PaymentGateway // nil disables ONLINE orders
	Notifier *Notifier
	Cfg      *config.Config
	Logger   *logrus.Logger
}

func NewOrderService(orders repo.OrderRepository, carts repo.CartRepository, users repo.UserRepository, payments PaymentGateway, notifier *Notifier, cfg *config.Config, logger *logrus.Logger) *OrderService {
	return &OrderService{Orders: orders, Carts: carts, Users: users, Payments: payments, Notifier: notifier, Cfg: cfg, Logger: logger}
}

type PlaceOrderInput struct {
	Shipping       entity.ShippingAddress
	PaymentMethod  string
	IdempotencyKey string
}

type PlaceOrderResult struct {
	Order       *entity.Order
	CheckoutURL string
	SessionID   string
	// Replayed is set when the idempotency key matched an earlier order.
	Replayed bool
}

// Place turns the user's cart into an order. Stock is reserved and the cart
// emptied in one transaction; ONLINE orders then get a hosted checkout session.
// The transaction only commits if the cart is unchanged since it was read, so
// an item added concurrently is either ordered or left in the cart.
func (s *OrderService) Place(ctx context.Context, userID string, in PlaceOrderInput) (*PlaceOrderResult, error) {
	addr := trimAddress(in.Shipping)
	if missing := addr.MissingFields(s.requireFullName()); len(missing) > 0 {
		return nil, apperror.MissingFields(missing)
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if prev, err := s.Orders.GetByIdempotencyKey(ctx, userID, key); err == nil {
			return replayed(prev), nil
		} else if !errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.Internal("lookup idempotency key", err)
		}
	}

	var (
		order *entity.Order
		err   error
	)
	for attempt := 1; attempt <= maxCartAttempts; attempt++ {
		order, err = s.placeFromCart(ctx, userID, addr, in.PaymentMethod, key)
		if !errors.Is(err, repo.ErrVersionConflict) {
			break
		}
		// a concurrent request with the same key may have emptied the cart
		if key != "" {
			if prev, gErr := s.Orders.GetByIdempotencyKey(ctx, userID, key); gErr == nil {
				return replayed(prev), nil
			}
		}
	}
	switch {
	case err == nil:
	case errors.Is(err, repo.ErrVersionConflict):
		return nil, apperror.Conflict("Cart changed while placing the order, please retry")
	case errors.Is(err, repo.ErrDuplicate) && key != "":
		prev, gErr := s.Orders.GetByIdempotencyKey(ctx, userID, key)
		if gErr != nil {
			return nil, apperror.Internal("lookup idempotency key", gErr)
		}
		return replayed(prev), nil
	default:
		return nil, err
	}

	if order.PaymentMethod == entity.PaymentCOD {
		s.notify(ctx, order, false)
		return &PlaceOrderResult{Order: order}, nil
	}
	return s.startCheckout(ctx, order)
}

// placeFromCart reads the cart and commits one placement attempt. Version
// conflicts and idempotency duplicates come back as repository errors.
func (s *OrderService) placeFromCart(ctx context.Context, userID string, addr entity.ShippingAddress, rawMethod, key string) (*entity.Order, error) {
	cart, err := s.Carts.GetByUser(ctx, userID, true)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, apperror.Internal("load cart", err)
	}
	if cart.IsEmpty() {
		return nil, apperror.EmptyCart()
	}

	method := entity.PaymentMethod(strings.ToUpper(strings.TrimSpace(rawMethod)))
	if method == "" {
		method = entity.PaymentCOD
	}
	if !method.Valid() {
		return nil, apperror.Validation("Invalid payment method", nil)
	}
	if method == entity.PaymentOnline && s.Payments == nil {
		return nil, apperror.Unprocessable("Online payment is not available")
	}

	items, total := entity.ItemsFromCart(cart)
	for i := range items {
		items[i].Product = cart.Items[i].Product
	}
	order := &entity.Order{
		UserID:          userID,
		ShippingAddress: addr,
		PaymentMethod:   method,
		Status:          entity.OrderPending,
		PaymentStatus:   entity.PaymentUnpaid,
		TotalAmount:     total,
		Items:           items,
		IdempotencyKey:  key,
	}

	if err := s.Orders.PlaceFromCart(ctx, order, cart.Version); err != nil {
		var stockErr *repo.StockError
		switch {
		case errors.As(err, &stockErr):
			return nil, apperror.InsufficientStock("Insufficient stock for " + productName(cart, stockErr.ProductID))
		case errors.Is(err, repo.ErrVersionConflict), errors.Is(err, repo.ErrDuplicate):
			return nil, err
		default:
			return nil, apperror.Internal("place order", err)
		}
	}
	return order, nil
}

// replayed answers a repeated idempotency key with the order it created. A
// still pending ONLINE order gets its checkout URL back so the client can pay.
func replayed(prev *entity.Order) *PlaceOrderResult {
	res := &PlaceOrderResult{Order: prev, SessionID: prev.PaymentSessionID, Replayed: true}
	if prev.Status == entity.OrderPending && prev.PaymentStatus == entity.PaymentUnpaid {
		res.CheckoutURL = prev.CheckoutURL
	}
	return res
}

func (s *OrderService) startCheckout(ctx context.Context, order *entity.Order) (*PlaceOrderResult, error) {
	req := CheckoutRequest{OrderID: order.ID, Lines: make([]CheckoutLine, 0, len(order.Items))}
	if u, err := s.Users.GetByID(ctx, order.UserID); err == nil {
		req.Email = u.Email
	}
	for _, it := range order.Items {
		name := it.ProductID
		if it.Product != nil {
			name = it.Product.Title
		}
		req.Lines = append(req.Lines, CheckoutLine{Name: name, UnitAmount: entity.MinorUnits(it.UnitPrice), Quantity: int64(it.Quantity)})
	}

	sess, err := s.Payments.CreateCheckoutSession(ctx, req)
	if err != nil {
		// compensate: release the reservation so stock is not held by a dead order
		if cErr := s.Orders.UpdateStatus(ctx, order.ID, entity.OrderPending, entity.OrderCancelled, entity.PaymentFailed, true); cErr != nil {
			s.warn(cErr, order.ID, "order compensation failed")
		}
		return nil, apperror.Gateway("Payment session could not be created", err)
	}

	if err := s.Orders.SetPaymentSession(ctx, order.ID, sess.ID, sess.URL); err != nil {
		// the webhook can still resolve the order from client_reference_id
		s.warn(err, order.ID, "store payment session failed")
	}
	order.PaymentSessionID, order.CheckoutURL = sess.ID, sess.URL
	return &PlaceOrderResult{Order: order, CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

// ListOrders returns the user's orders newest first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]entity.Order, error) {
	orders, err := s.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("list orders", err)
	}
	if len(orders) == 0 {
		return nil, apperror.NotFound("No orders found")
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	if !validID(orderID) {
		return nil, apperror.NotFound("Order not found")
	}
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, apperror.Internal("load order", err)
	}
	if o.UserID != userID {
		return nil, apperror.NotFound("Order not found")
	}
	return o, nil
}

// CancelOrder cancels a pending, unpaid order and returns its stock. An open
// checkout session is expired first; if the gateway refuses, the customer may
// already be paying and the order stays as it is.
func (s *OrderService) CancelOrder(ctx context.Context, userID, orderID string) (*entity.Order, error) {
	o, err := s.GetOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != entity.OrderPending || o.PaymentStatus == entity.PaymentPaid {
		return nil, apperror.Validation("Order can no longer be cancelled", map[string]any{"status": o.Status})
	}
	if o.PaymentSessionID != "" {
		if s.Payments == nil {
			return nil, apperror.Validation("Order is awaiting online payment", nil)
		}
		if err := s.Payments.ExpireCheckoutSession(ctx, o.PaymentSessionID); err != nil {
			s.warn(err, o.ID, "expire checkout session failed")
			return nil, apperror.Validation("Order is awaiting online payment", nil)
		}
	}

	err = s.Orders.UpdateStatus(ctx, o.ID, entity.OrderPending, entity.OrderCancelled, o.PaymentStatus, true)
	if err != nil {
		if errors.Is(err, repo.ErrVersionConflict) {
			return nil, apperror.Conflict("Order status changed, please retry")
		}
		return nil, apperror.Internal("cancel order", err)
	}
	o.Status = entity.OrderCancelled
	s.notify(ctx, o, true)
	return o, nil
}

// HandlePaymentWebhook verifies a gateway notification and finalizes the
// referenced order. Events for orders that already left Pending are ignored,
// except a completed payment for a cancelled order, which is flagged for refund.
func (s *OrderService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.Payments == nil {
		return apperror.Unprocessable("Online payment is not available")
	}
	ev, err := s.Payments.ParseWebhook(payload, signature)
	if err != nil {
		return apperror.Validation("Invalid webhook payload", nil)
	}
	if ev.Type == PaymentEventIgnored {
		return nil
	}

	o, err := s.orderForEvent(ctx, ev)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.warn(err, ev.OrderID, "webhook for unknown order")
			return nil
		}
		return apperror.Internal("load order", err)
	}
	if o.Status == entity.OrderCancelled && ev.Type == PaymentEventCompleted {
		return s.flagRefund(ctx, o)
	}
	if o.Status != entity.OrderPending {
		return nil
	}

	switch ev.Type {
	case PaymentEventCompleted:
		err = s.Orders.UpdateStatus(ctx, o.ID, entity.OrderPending, entity.OrderConfirmed, entity.PaymentPaid, false)
		o.Status, o.PaymentStatus = entity.OrderConfirmed, entity.PaymentPaid
	case PaymentEventExpired:
		err = s.Orders.UpdateStatus(ctx, o.ID, entity.OrderPending, entity.OrderCancelled, entity.PaymentFailed, true)
		o.Status, o.PaymentStatus = entity.OrderCancelled, entity.PaymentFailed
	default:
		return nil
	}
	if errors.Is(err, repo.ErrVersionConflict) {
		return nil
	}
	if err != nil {
		return apperror.Internal("update order status", err)
	}

	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"order_id": o.ID, "status": o.Status}).Info("payment event applied")
	}
	s.notify(ctx, o, o.Status == entity.OrderCancelled)
	return nil
}

func (s *OrderService) flagRefund(ctx context.Context, o *entity.Order) error {
	if o.PaymentStatus == entity.PaymentRefundDue {
		return nil
	}
	err := s.Orders.UpdateStatus(ctx, o.ID, entity.OrderCancelled, entity.OrderCancelled, entity.PaymentRefundDue, false)
	if err != nil && !errors.Is(err, repo.ErrVersionConflict) {
		return apperror.Internal("flag refund", err)
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"order_id":   o.ID,
			"session_id": o.PaymentSessionID,
			"amount":     o.TotalAmount,
		}).Warn("payment completed for cancelled order, refund required")
	}
	return nil
}

func (s *OrderService) orderForEvent(ctx context.Context, ev *PaymentEvent) (*entity.Order, error) {
	if ev.SessionID != "" {
		o, err := s.Orders.GetByPaymentSession(ctx, ev.SessionID)
		if err == nil || !errors.Is(err, repo.ErrNotFound) {
			return o, err
		}
	}
	if ev.OrderID == "" || !validID(ev.OrderID) {
		return nil, repo.ErrNotFound
	}
	return s.Orders.GetByID(ctx, ev.OrderID)
}

func (s *OrderService) notify(ctx context.Context, o *entity.Order, cancelled bool) {
	if s.Notifier == nil || !s.Notifier.enabled() {
		return
	}
	u, err := s.Users.GetByID(ctx, o.UserID)
	if err != nil {
		s.warn(err, o.ID, "load order owner for email")
		return
	}
	if cancelled {
		s.Notifier.OrderCancelled(ctx, u, o)
		return
	}
	s.Notifier.OrderPlaced(ctx, u, o)
}

func (s *OrderService) requireFullName() bool {
	return s.Cfg == nil || s.Cfg.OrderRequireFullName
}

func (s *OrderService) warn(err error, orderID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("order_id", orderID).Warn(msg)
	}
}

func trimAddress(a entity.ShippingAddress) entity.ShippingAddress {
	return entity.ShippingAddress{
		FullName:   strings.TrimSpace(a.FullName),
		Address:    strings.TrimSpace(a.Address),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.TrimSpace(a.Country),
		Phone:      strings.TrimSpace(a.Phone),
	}
}

func productName(c *entity.Cart, productID string) string {
	if i := c.Find(productID); i >= 0 && c.Items[i].Product != nil {
		return c.Items[i].Product.Title
	}
	return "product " + productID
}
