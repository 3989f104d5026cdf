package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/oksasatya/go-ecommerce-backend/internal/application"
	"github.com/oksasatya/go-ecommerce-backend/internal/domain/entity"
	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
)

type stubOrders struct {
	in       application.PlaceOrderInput
	replayed bool
	err      error
}

func (s *stubOrders) Place(_ context.Context, _ string, in application.PlaceOrderInput) (*application.PlaceOrderResult, error) {
	s.in = in
	if s.err != nil {
		return nil, s.err
	}
	o := &entity.Order{
		ID:              "o1",
		ShippingAddress: in.Shipping,
		PaymentMethod:   entity.PaymentMethod(in.PaymentMethod),
		Status:          entity.OrderPending,
		PaymentStatus:   entity.PaymentUnpaid,
		TotalAmount:     15.3,
		Items:           []entity.OrderItem{{ProductID: "p1", Quantity: 2, UnitPrice: 7.65, Product: &entity.Post{Title: "Mug"}}},
	}
	res := &application.PlaceOrderResult{Order: o, Replayed: s.replayed}
	if o.PaymentMethod == entity.PaymentOnline {
		res.CheckoutURL, res.SessionID = "https://checkout.example/cs_1", "cs_1"
	}
	return res, nil
}

func (s *stubOrders) ListOrders(context.Context, string) ([]entity.Order, error) {
	return []entity.Order{{ID: "o1"}, {ID: "o2"}}, s.err
}

func (s *stubOrders) GetOrder(_ context.Context, _, orderID string) (*entity.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Order{ID: orderID}, nil
}

func (s *stubOrders) CancelOrder(_ context.Context, _, orderID string) (*entity.Order, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Order{ID: orderID, Status: entity.OrderCancelled}, nil
}

func orderEngine(svc OrderUseCase) http.Handler {
	h := NewOrderHandler(svc, quietLogger())
	r := newEngine()
	r.POST("/api/orders", h.Place)
	r.GET("/api/orders", h.List)
	r.GET("/api/orders/:id", h.Get)
	r.POST("/api/orders/:id/cancel", h.Cancel)
	return r
}

var shippingBody = map[string]any{
	"fullName": "Jane Doe",
	"address":  "1 Main St",
	"city":     "Springfield",
	"country":  "US",
	"phone":    "555-0100",
}

func withMethod(m string) map[string]any {
	out := map[string]any{"paymentMethod": m}
	for k, v := range shippingBody {
		out[k] = v
	}
	return out
}

func TestPlaceCODOrder(t *testing.T) {
	svc := &stubOrders{}
	r := orderEngine(svc)

	w, env := do(t, r, http.MethodPost, "/api/orders", withMethod("COD"), map[string]string{IdempotencyKeyHeader: "key-1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d %s", w.Code, w.Body.String())
	}
	if svc.in.IdempotencyKey != "key-1" || svc.in.Shipping.City != "Springfield" || svc.in.PaymentMethod != "COD" {
		t.Fatalf("service got %+v", svc.in)
	}
	var o orderResponse
	decode(t, env.Data, &o)
	if o.ID != "o1" || len(o.Items) != 1 || o.Items[0].Title != "Mug" || o.Items[0].Price != 7.65 {
		t.Fatalf("order = %+v", o)
	}
}

func TestPlaceOrderReplay(t *testing.T) {
	r := orderEngine(&stubOrders{replayed: true})
	w, env := do(t, r, http.MethodPost, "/api/orders", withMethod("COD"), map[string]string{IdempotencyKeyHeader: "key-1"})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var meta map[string]bool
	decode(t, env.Meta, &meta)
	if !meta["replayed"] {
		t.Fatalf("meta = %s", env.Meta)
	}
}

func TestPlaceOnlineOrder(t *testing.T) {
	r := orderEngine(&stubOrders{})
	w, env := do(t, r, http.MethodPost, "/api/orders", withMethod("ONLINE"), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var data struct {
		URL       string        `json:"url"`
		SessionID string        `json:"sessionId"`
		Order     orderResponse `json:"order"`
	}
	decode(t, env.Data, &data)
	if data.URL == "" || data.SessionID != "cs_1" || data.Order.ID != "o1" {
		t.Fatalf("data = %+v", data)
	}
}

func TestPlaceOrderErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperror.EmptyCart(), http.StatusBadRequest},
		{apperror.MissingFields([]string{"city"}), http.StatusBadRequest},
		{apperror.Gateway("Payment provider unavailable", nil), http.StatusBadGateway},
	}
	for _, tc := range cases {
		w, env := do(t, orderEngine(&stubOrders{err: tc.err}), http.MethodPost, "/api/orders", withMethod("COD"), nil)
		if w.Code != tc.want || env.Message != apperror.From(tc.err).Message {
			t.Fatalf("%v: status %d message %q", tc.err, w.Code, env.Message)
		}
	}
}

func TestOrderReads(t *testing.T) {
	r := orderEngine(&stubOrders{})

	_, env := do(t, r, http.MethodGet, "/api/orders", nil, nil)
	var meta map[string]int
	decode(t, env.Meta, &meta)
	if meta["count"] != 2 {
		t.Fatalf("meta = %s", env.Meta)
	}

	w, env := do(t, r, http.MethodPost, "/api/orders/o9/cancel", nil, nil)
	var o orderResponse
	decode(t, env.Data, &o)
	if w.Code != http.StatusOK || o.ID != "o9" || o.Status != entity.OrderCancelled {
		t.Fatalf("cancel: %d %+v", w.Code, o)
	}

	w, _ = do(t, orderEngine(&stubOrders{err: apperror.NotFound("Order not found")}), http.MethodGet, "/api/orders/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing order: %d", w.Code)
	}
}
