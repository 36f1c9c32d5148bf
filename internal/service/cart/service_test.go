package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"eventhub/internal/domain"
	cartrepo "eventhub/internal/repository/cart"
)

// memoryRepo keeps one cart per user and mirrors the replace-on-add rule.
type memoryRepo struct {
	carts  map[int64]*domain.Cart
	prices map[int64]int64
	nextID int64
	last   cartrepo.UpsertItemInput
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{carts: map[int64]*domain.Cart{}, prices: map[int64]int64{10: 10000, 20: 2500}}
}

func (r *memoryRepo) cart(userID int64) *domain.Cart {
	c, ok := r.carts[userID]
	if !ok {
		r.nextID++
		c = &domain.Cart{ID: r.nextID, UserID: userID, Items: []domain.CartItem{}}
		r.carts[userID] = c
	}
	return c
}

func (r *memoryRepo) GetOrCreate(_ context.Context, userID int64) (*domain.Cart, error) {
	return r.cart(userID), nil
}

func (r *memoryRepo) UpsertItem(_ context.Context, userID int64, in cartrepo.UpsertItemInput) (*domain.Cart, error) {
	r.last = in
	price, ok := r.prices[in.EventID]
	if !ok {
		return nil, domain.NotFound("event not found")
	}
	if in.PriceCents != nil {
		price = *in.PriceCents
	}
	c := r.cart(userID)
	line := domain.CartItem{CartID: c.ID, EventID: in.EventID, Quantity: in.Quantity, PriceCents: price, CustomizedItems: in.CustomizedItems}
	for i := range c.Items {
		if c.Items[i].EventID == in.EventID {
			line.ID = c.Items[i].ID
			c.Items[i] = line
			return c, nil
		}
	}
	r.nextID++
	line.ID = r.nextID
	c.Items = append(c.Items, line)
	return c, nil
}

func (r *memoryRepo) RemoveItem(_ context.Context, userID, cartItemID int64) (*domain.Cart, error) {
	c := r.cart(userID)
	for i := range c.Items {
		if c.Items[i].ID == cartItemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return c, nil
		}
	}
	return nil, domain.NotFound("cart item not found")
}

func (r *memoryRepo) Clear(_ context.Context, userID int64) (*domain.Cart, error) {
	c := r.cart(userID)
	c.Items = []domain.CartItem{}
	return c, nil
}

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func TestAddItemReplacesExistingLine(t *testing.T) {
	svc := New(newMemoryRepo())
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, 1, AddItemInput{EventID: 10, Quantity: intPtr(2)}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	v, err := svc.AddItem(ctx, 1, AddItemInput{
		EventID:          10,
		Quantity:         intPtr(1),
		CustomPriceCents: int64Ptr(9000),
		CustomizedItems:  json.RawMessage(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("AddItem again: %v", err)
	}
	if len(v.Items) != 1 {
		t.Fatalf("expected one line, got %d", len(v.Items))
	}
	if v.Items[0].Quantity != 1 || v.Items[0].PriceCents != 9000 || v.TotalCents != 9000 {
		t.Fatalf("line not replaced: %+v total=%d", v.Items[0], v.TotalCents)
	}
	if string(v.Items[0].CustomizedItems) != `{"a":1}` {
		t.Fatalf("customization changed: %s", v.Items[0].CustomizedItems)
	}
}

func TestAddItemUsesCatalogPriceAndComputesTotal(t *testing.T) {
	svc := New(newMemoryRepo())
	ctx := context.Background()
	if _, err := svc.AddItem(ctx, 1, AddItemInput{EventID: 10, Quantity: intPtr(2)}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	v, err := svc.AddItem(ctx, 1, AddItemInput{EventID: 20, Quantity: intPtr(1)})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if v.TotalCents != 22500 {
		t.Fatalf("expected 22500, got %d", v.TotalCents)
	}
}

func TestAddItemValidation(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo)
	ctx := context.Background()

	cases := []struct {
		name string
		in   AddItemInput
		kind error
	}{
		{"missing event", AddItemInput{Quantity: intPtr(1)}, domain.ErrInvalidInput},
		{"missing quantity", AddItemInput{EventID: 10}, domain.ErrInvalidInput},
		{"zero quantity", AddItemInput{EventID: 10, Quantity: intPtr(0)}, domain.ErrInvalidInput},
		{"negative price", AddItemInput{EventID: 10, Quantity: intPtr(1), CustomPriceCents: int64Ptr(-1)}, domain.ErrInvalidInput},
		{"quantity over int4", AddItemInput{EventID: 10, Quantity: intPtr(3000000000)}, domain.ErrInvalidInput},
		{"quantity over limit", AddItemInput{EventID: 10, Quantity: intPtr(domain.MaxQuantity + 1)}, domain.ErrInvalidInput},
		{"huge price", AddItemInput{EventID: 10, Quantity: intPtr(1), CustomPriceCents: int64Ptr(domain.MaxPriceCents + 1)}, domain.ErrInvalidInput},
		{"bad json", AddItemInput{EventID: 10, Quantity: intPtr(1), CustomizedItems: json.RawMessage(`{`)}, domain.ErrInvalidInput},
		{"unknown event", AddItemInput{EventID: 404, Quantity: intPtr(1)}, domain.ErrNotFound},
	}
	for _, tc := range cases {
		_, err := svc.AddItem(ctx, 1, tc.in)
		if !errors.Is(err, tc.kind) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.kind, err)
		}
	}

	v, _ := svc.Get(ctx, 1)
	if len(v.Items) != 0 {
		t.Fatalf("rejected adds must not create lines")
	}
}

func TestNullCustomizationIsAbsent(t *testing.T) {
	repo := newMemoryRepo()
	svc := New(repo)
	if _, err := svc.AddItem(context.Background(), 1, AddItemInput{EventID: 10, Quantity: intPtr(1), CustomizedItems: json.RawMessage(" null ")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if repo.last.CustomizedItems != nil {
		t.Fatalf("expected nil customization, got %q", repo.last.CustomizedItems)
	}
}

func TestRemoveAndClear(t *testing.T) {
	svc := New(newMemoryRepo())
	ctx := context.Background()
	v, _ := svc.AddItem(ctx, 1, AddItemInput{EventID: 10, Quantity: intPtr(1)})
	lineID := v.Items[0].ID

	if _, err := svc.RemoveItem(ctx, 2, lineID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for another user's line, got %v", err)
	}
	v, err := svc.RemoveItem(ctx, 1, lineID)
	if err != nil || len(v.Items) != 0 {
		t.Fatalf("RemoveItem: %v %+v", err, v)
	}
	for i := 0; i < 2; i++ {
		v, err = svc.Clear(ctx, 1)
		if err != nil || v.TotalCents != 0 {
			t.Fatalf("Clear: %v %+v", err, v)
		}
	}
}
