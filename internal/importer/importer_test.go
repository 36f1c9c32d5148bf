package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"eventhub/internal/domain"
	eventrepo "eventhub/internal/repository/event"
)

type upsert struct {
	event eventrepo.EventInput
	items []eventrepo.ItemInput
}

type stubEventRepo struct {
	calls []upsert
	err   error
}

func (s *stubEventRepo) UpsertBySlug(_ context.Context, in eventrepo.EventInput, items []eventrepo.ItemInput) (*domain.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.calls = append(s.calls, upsert{event: in, items: items})
	return &domain.Event{ID: int64(len(s.calls)), Slug: in.Slug, Title: in.Title}, nil
}

const header = "slug,title,description,category,location,date,price_cents,image_url,item_name,item_description,item_quantity,item_price_cents,item_image_url,item_category\n"

func TestCSVImporter_Run(t *testing.T) {
	csvData := header +
		`,Royal Wedding,Full service,Wedding,Jaipur,2025-12-01,4999900,https://example.com/w.jpg,Welcome Drink,,100,2500,,beverages
,,,,,,,,Floral Arch,Roses and lilies,1,150000,,decor
,,,,,,,,Photo Booth,,,80000,,
bday-bash,Birthday Bash,,birthday,,,99900,,,,,,,`

	repo := &stubEventRepo{}
	imp := NewCSVImporter(strings.NewReader(csvData), repo)

	count, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("import run: %v", err)
	}
	if count != 2 || len(repo.calls) != 2 {
		t.Fatalf("expected 2 events imported, got %d (%d calls)", count, len(repo.calls))
	}

	wedding := repo.calls[0]
	if wedding.event.Slug != "royal-wedding" || wedding.event.Category != "wedding" || wedding.event.PriceCents != 4999900 {
		t.Fatalf("unexpected event data: %+v", wedding.event)
	}
	if len(wedding.items) != 3 {
		t.Fatalf("expected 3 items on first event, got %d", len(wedding.items))
	}
	if wedding.items[0].Name != "Welcome Drink" || wedding.items[0].Quantity != 100 || wedding.items[0].Category != "beverages" {
		t.Fatalf("unexpected first item: %+v", wedding.items[0])
	}
	if wedding.items[2].Quantity != 1 || wedding.items[2].PriceCents != 80000 {
		t.Fatalf("expected default quantity 1, got %+v", wedding.items[2])
	}

	bday := repo.calls[1]
	if bday.event.Slug != "bday-bash" || len(bday.items) != 0 {
		t.Fatalf("explicit slug should be kept and no items attached: %+v", bday)
	}
}

func TestCSVImporter_ItemBeforeEvent(t *testing.T) {
	csvData := header + `,,,,,,,,Orphan Item,,1,100,,`
	imp := NewCSVImporter(strings.NewReader(csvData), &stubEventRepo{})
	if _, err := imp.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "before any event row") {
		t.Fatalf("expected orphan item error, got %v", err)
	}
}

func TestCSVImporter_InvalidPrice(t *testing.T) {
	csvData := header + `,Party,,birthday,,,12.50,,,,,,,`
	imp := NewCSVImporter(strings.NewReader(csvData), &stubEventRepo{})
	_, err := imp.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line-tagged error, got %v", err)
	}
}

func TestCSVImporter_MissingCategory(t *testing.T) {
	csvData := header + `,Party,,,,,100,,,,,,,`
	imp := NewCSVImporter(strings.NewReader(csvData), &stubEventRepo{})
	if _, err := imp.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "no category") {
		t.Fatalf("expected missing category error, got %v", err)
	}
}

func TestCSVImporter_RepoError(t *testing.T) {
	csvData := header + `,Party,,birthday,,,100,,,,,,,`
	repo := &stubEventRepo{err: errors.New("db down")}
	count, err := NewCSVImporter(strings.NewReader(csvData), repo).Run(context.Background())
	if err == nil || count != 0 {
		t.Fatalf("expected repo error with zero count, got %d %v", count, err)
	}
}
