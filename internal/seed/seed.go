package seed

import (
	"context"
	"fmt"
	"io"
	"log"

	"eventhub/internal/domain"
	eventrepo "eventhub/internal/repository/event"
	"golang.org/x/crypto/bcrypt"
)

type EventWriter interface {
	UpsertBySlug(ctx context.Context, in eventrepo.EventInput, items []eventrepo.ItemInput) (*domain.Event, error)
}

type AdminWriter interface {
	EnsureAdmin(ctx context.Context, u domain.User) (*domain.User, error)
}

type eventSeed struct {
	event eventrepo.EventInput
	items []eventrepo.ItemInput
}

var catalog = []eventSeed{
	{
		event: eventrepo.EventInput{
			Slug:        "royal-wedding-package",
			Title:       "Royal Wedding Package",
			Description: "Decor, catering and photography for a full wedding day",
			ImageURL:    "https://images.example.com/events/royal-wedding.jpg",
			Location:    "Jaipur",
			Date:        "2025-12-14",
			Category:    "wedding",
			PriceCents:  4999900,
		},
		items: []eventrepo.ItemInput{
			{Name: "Floral Mandap", Description: "Fresh flower canopy", Quantity: 1, PriceCents: 1500000, Category: "decor"},
			{Name: "Stage Lighting", Quantity: 1, PriceCents: 450000, Category: "decor"},
			{Name: "Welcome Drinks", Description: "Per guest", Quantity: 200, PriceCents: 15000, Category: "catering"},
			{Name: "Dinner Buffet", Description: "Per guest", Quantity: 200, PriceCents: 85000, Category: "catering"},
			{Name: "Candid Photography", Quantity: 1, PriceCents: 900000, Category: "photography"},
		},
	},
	{
		event: eventrepo.EventInput{
			Slug:        "kids-birthday-bash",
			Title:       "Kids Birthday Bash",
			Description: "Balloons, cake and games for up to 30 kids",
			ImageURL:    "https://images.example.com/events/birthday-bash.jpg",
			Location:    "Bengaluru",
			Date:        "2025-11-02",
			Category:    "birthday",
			PriceCents:  1499900,
		},
		items: []eventrepo.ItemInput{
			{Name: "Balloon Arch", Quantity: 1, PriceCents: 250000, Category: "decor"},
			{Name: "Theme Cake", Description: "2 kg", Quantity: 1, PriceCents: 300000, Category: "catering"},
			{Name: "Magician", Description: "One hour show", Quantity: 1, PriceCents: 600000, Category: "entertainment"},
			{Name: "Return Gifts", Quantity: 30, PriceCents: 20000},
		},
	},
	{
		event: eventrepo.EventInput{
			Slug:        "housewarming-celebration",
			Title:       "Housewarming Celebration",
			Description: "Traditional puja setup with lunch for family and friends",
			ImageURL:    "https://images.example.com/events/housewarming.jpg",
			Location:    "Pune",
			Date:        "2026-01-18",
			Category:    "housewarming",
			PriceCents:  999900,
		},
		items: []eventrepo.ItemInput{
			{Name: "Puja Kit", Quantity: 1, PriceCents: 150000, Category: "rituals"},
			{Name: "Marigold Garlands", Quantity: 10, PriceCents: 8000, Category: "decor"},
			{Name: "Lunch Thali", Description: "Per guest", Quantity: 50, PriceCents: 45000, Category: "catering"},
		},
	},
}

// Apply writes the sample catalog and the admin account. It is idempotent:
// events upsert by slug and the admin upserts by email.
func Apply(ctx context.Context, events EventWriter, users AdminWriter, logger *log.Logger, adminEmail, adminPassword string) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	for _, s := range catalog {
		e, err := events.UpsertBySlug(ctx, s.event, s.items)
		if err != nil {
			return fmt.Errorf("upsert event %s: %w", s.event.Slug, err)
		}
		logger.Printf("seeded event %d %s with %d items", e.ID, s.event.Slug, len(s.items))
	}

	if adminEmail == "" || adminPassword == "" {
		logger.Println("admin credentials not set, skipping admin user")
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin, err := users.EnsureAdmin(ctx, domain.User{
		Email:        adminEmail,
		PasswordHash: string(hash),
		FirstName:    "Admin",
		LastName:     "User",
		Phone:        "0000000000",
		TermsAgreed:  true,
		IsAdmin:      true,
	})
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	logger.Printf("admin user %s ready (id %d)", admin.Email, admin.ID)
	return nil
}
