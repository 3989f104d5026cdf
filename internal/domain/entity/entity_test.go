package entity

import (
	"errors"
	"testing"
)

func TestComputeDiscountedPrice(t *testing.T) {
	got, err := ComputeDiscountedPrice(100, 0)
	if err != nil || got != 100 {
		t.Fatalf("0%%: got %v, %v", got, err)
	}
	got, err = ComputeDiscountedPrice(100, 25)
	if err != nil || got != 75.00 {
		t.Fatalf("25%%: got %v, %v", got, err)
	}
	if _, err := ComputeDiscountedPrice(100, 101); !errors.Is(err, ErrDiscountPercentRange) {
		t.Fatalf("101%% should be rejected, got %v", err)
	}
	if _, err := ComputeDiscountedPrice(100, -1); !errors.Is(err, ErrDiscountPercentRange) {
		t.Fatalf("-1%% should be rejected, got %v", err)
	}
	// 19.99 * 15% = 2.9985 -> 16.9915 -> 16.99
	got, _ = ComputeDiscountedPrice(19.99, 15)
	if got != 16.99 {
		t.Fatalf("rounding: got %v", got)
	}
	// 10.05 * 50% = 5.025 -> half-up -> 5.03
	got, _ = ComputeDiscountedPrice(10.05, 50)
	if got != 5.03 {
		t.Fatalf("half-up rounding: got %v", got)
	}
}

func TestApplyDiscountCollapsesToPrice(t *testing.T) {
	p := &Post{Price: 40}
	if err := p.ApplyDiscount(0); err != nil {
		t.Fatal(err)
	}
	if p.DiscountPrice != 40 {
		t.Fatalf("no discount should collapse to price, got %v", p.DiscountPrice)
	}
	if err := p.ApplyDiscount(100); err != nil {
		t.Fatal(err)
	}
	if p.DiscountPrice != 0 || p.EffectivePrice() != 40 {
		t.Fatalf("100%% discount: discount=%v effective=%v", p.DiscountPrice, p.EffectivePrice())
	}
	if err := p.ApplyDiscount(10); err != nil {
		t.Fatal(err)
	}
	if p.DiscountPrice != 36 || p.EffectivePrice() != 36 {
		t.Fatalf("10%% discount: %v", p.DiscountPrice)
	}
}

func TestRepriceScalesDiscount(t *testing.T) {
	p := &Post{Price: 100}
	if err := p.ApplyDiscount(25); err != nil {
		t.Fatal(err)
	}
	p.Reprice(200)
	if p.Price != 200 || p.DiscountPrice != 150 {
		t.Fatalf("repriced = %v/%v, want 200/150", p.Price, p.DiscountPrice)
	}
	p.Reprice(9.99)
	if p.DiscountPrice != 7.49 {
		t.Fatalf("discount = %v, want 7.49", p.DiscountPrice)
	}

	plain := &Post{Price: 10}
	plain.Reprice(20)
	if plain.DiscountPrice != 0 || plain.EffectivePrice() != 20 {
		t.Fatalf("undiscounted post = %+v", plain)
	}

	free := &Post{Price: 0, DiscountPrice: 0}
	free.Reprice(5)
	if free.Price != 5 || free.DiscountPrice != 0 {
		t.Fatalf("free post = %+v", free)
	}
}

func TestOrderStatusTransitions(t *testing.T) {
	if !OrderPending.CanTransitionTo(OrderConfirmed) || !OrderPending.CanTransitionTo(OrderCancelled) {
		t.Fatal("pending should confirm or cancel")
	}
	if !OrderShipped.CanTransitionTo(OrderDelivered) {
		t.Fatal("shipped should deliver")
	}
	if OrderDelivered.CanTransitionTo(OrderCancelled) || OrderCancelled.CanTransitionTo(OrderPending) {
		t.Fatal("terminal states must not move")
	}
	if OrderPending.CanTransitionTo(OrderDelivered) {
		t.Fatal("cannot skip states")
	}
}

func TestItemsFromCartSnapshotsPrices(t *testing.T) {
	cart := &Cart{Items: []CartItem{
		{ProductID: "a", Quantity: 2, Product: &Post{Price: 10, DiscountPrice: 7.5}},
		{ProductID: "b", Quantity: 3, Product: &Post{Price: 0.1}},
	}}
	items, total := ItemsFromCart(cart)
	if len(items) != 2 {
		t.Fatalf("items = %d", len(items))
	}
	if items[0].UnitPrice != 7.5 || items[1].UnitPrice != 0.1 {
		t.Fatalf("unit prices %v %v", items[0].UnitPrice, items[1].UnitPrice)
	}
	if total != 15.3 {
		t.Fatalf("total = %v, want 15.3", total)
	}
	cart.Items[0].Product.DiscountPrice = 1
	if items[0].UnitPrice != 7.5 {
		t.Fatal("snapshot must not follow the live product")
	}
}

func TestShippingAddressMissingFields(t *testing.T) {
	a := ShippingAddress{Address: "1 Main", City: "X", Country: "Y"}
	missing := a.MissingFields(true)
	if len(missing) != 2 || missing[0] != "fullName" || missing[1] != "phone" {
		t.Fatalf("missing = %v", missing)
	}
	missing = a.MissingFields(false)
	if len(missing) != 1 || missing[0] != "phone" {
		t.Fatalf("missing without full name = %v", missing)
	}
}

func TestMinorUnitsAndLineTotal(t *testing.T) {
	if MinorUnits(19.995) != 2000 {
		t.Fatalf("minor units = %d", MinorUnits(19.995))
	}
	if MinorUnits(12.34) != 1234 {
		t.Fatalf("minor units = %d", MinorUnits(12.34))
	}
	if LineTotal(0.1, 3) != 0.3 {
		t.Fatalf("line total = %v", LineTotal(0.1, 3))
	}
}

func TestCartHelpers(t *testing.T) {
	c := &Cart{Items: []CartItem{{ProductID: "a", Quantity: 1}, {ProductID: "b", Quantity: 2}}}
	if c.Find("b") != 1 || c.Find("z") != -1 {
		t.Fatal("find mismatch")
	}
	c.Remove("a")
	if len(c.Items) != 1 || c.Items[0].ProductID != "b" {
		t.Fatalf("remove left %v", c.Items)
	}
	var nilCart *Cart
	if !nilCart.IsEmpty() {
		t.Fatal("nil cart is empty")
	}
}
