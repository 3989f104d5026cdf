package application

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ecommerce-backend/pkg/apperror"
)

func newCartFixture() (*memDB, *CartService) {
	db := newMemDB()
	return db, NewCartService(memCarts{db}, memPosts{db}, quietLogger())
}

func TestAddItemMergesExistingLine(t *testing.T) {
	db, svc := newCartFixture()
	p := db.addPost("seller", "Mug", 10, 0, 5)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", p.ID, 2); err != nil {
		t.Fatal(err)
	}
	cart, err := svc.AddItem(ctx, "u1", p.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 3 {
		t.Fatalf("items = %+v", cart.Items)
	}
	if db.stock(p.ID) != 5 {
		t.Fatal("adding to cart must not touch stock")
	}
}

func TestAddItemInsufficientStockLeavesCartUnchanged(t *testing.T) {
	db, svc := newCartFixture()
	p := db.addPost("seller", "Mug", 10, 0, 3)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", p.ID, 2); err != nil {
		t.Fatal(err)
	}
	_, err := svc.AddItem(ctx, "u1", p.ID, 2)
	if !apperror.Is(err, apperror.KindInsufficientStock) {
		t.Fatalf("want insufficient stock, got %v", err)
	}
	if got := db.cartOf("u1").Items[0].Quantity; got != 2 {
		t.Fatalf("quantity changed to %d", got)
	}

	_, err = svc.AddItem(ctx, "u2", p.ID, 4)
	if !apperror.Is(err, apperror.KindInsufficientStock) {
		t.Fatalf("want insufficient stock for a new line, got %v", err)
	}
	if db.cartOf("u2") != nil {
		t.Fatal("cart must not be created on failure")
	}
}

func TestAddItemClampsQuantity(t *testing.T) {
	db, svc := newCartFixture()
	p := db.addPost("seller", "Mug", 10, 0, 3)

	cart, err := svc.AddItem(context.Background(), "u1", p.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if cart.Items[0].Quantity != 1 {
		t.Fatalf("quantity = %d, want 1", cart.Items[0].Quantity)
	}
	cart, _ = svc.AddItem(context.Background(), "u1", p.ID, -4)
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("quantity = %d, want 2", cart.Items[0].Quantity)
	}
}

func TestAddItemRejectsBadProduct(t *testing.T) {
	_, svc := newCartFixture()
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "u1", "not-an-id", 1); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("malformed id: %v", err)
	}
	if _, err := svc.AddItem(ctx, "u1", uuid.NewString(), 1); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("unknown product: %v", err)
	}
}

func TestAddItemRetriesVersionConflicts(t *testing.T) {
	db, svc := newCartFixture()
	p := db.addPost("seller", "Mug", 10, 0, 3)
	ctx := context.Background()

	db.saveConflicts = maxCartAttempts - 1
	if _, err := svc.AddItem(ctx, "u1", p.ID, 1); err != nil {
		t.Fatalf("should succeed on the last attempt: %v", err)
	}

	db.saveConflicts = maxCartAttempts
	if _, err := svc.AddItem(ctx, "u1", p.ID, 1); !apperror.Is(err, apperror.KindConflict) {
		t.Fatalf("want conflict after %d attempts, got %v", maxCartAttempts, err)
	}
	if got := db.cartOf("u1").Items[0].Quantity; got != 1 {
		t.Fatalf("quantity = %d after failed add", got)
	}
}

func TestRemoveItem(t *testing.T) {
	db, svc := newCartFixture()
	a := db.addPost("seller", "A", 10, 0, 10)
	b := db.addPost("seller", "B", 10, 0, 10)
	ctx := context.Background()

	if _, err := svc.RemoveItem(ctx, "u1", a.ID, 1, false); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("no cart: %v", err)
	}

	_, _ = svc.AddItem(ctx, "u1", a.ID, 3)
	_, _ = svc.AddItem(ctx, "u1", b.ID, 1)

	cart, err := svc.RemoveItem(ctx, "u1", a.ID, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if cart.Items[0].Quantity != 2 {
		t.Fatalf("default decrement: %+v", cart.Items)
	}

	cart, err = svc.RemoveItem(ctx, "u1", a.ID, 5, false)
	if err != nil {
		t.Fatal(err)
	}
	if cart.Find(a.ID) != -1 {
		t.Fatal("decrement past zero should drop the line")
	}

	cart, err = svc.RemoveItem(ctx, "u1", b.ID, 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if !cart.IsEmpty() {
		t.Fatalf("removeEntirely left %+v", cart.Items)
	}

	if _, err := svc.RemoveItem(ctx, "u1", b.ID, 1, false); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("absent line: %v", err)
	}
}

func TestListCartTotals(t *testing.T) {
	db, svc := newCartFixture()
	a := db.addPost("seller", "A", 10, 7.5, 10)
	b := db.addPost("seller", "B", 0.1, 0, 10)
	ctx := context.Background()

	if _, err := svc.ListCart(ctx, "u1"); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("no cart: %v", err)
	}

	_, _ = svc.AddItem(ctx, "u1", a.ID, 2)
	_, _ = svc.AddItem(ctx, "u1", b.ID, 3)

	view, err := svc.ListCart(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(view.Lines) != 2 {
		t.Fatalf("lines = %d", len(view.Lines))
	}
	if view.Lines[0].TotalPrice != 15 || view.Lines[1].TotalPrice != 0.3 {
		t.Fatalf("line totals %v %v", view.Lines[0].TotalPrice, view.Lines[1].TotalPrice)
	}
	if view.TotalAmount != 15.3 {
		t.Fatalf("total = %v", view.TotalAmount)
	}
	if db.stock(a.ID) != 10 {
		t.Fatal("listing must not touch stock")
	}
}
