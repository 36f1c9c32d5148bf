package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"eventhub/internal/domain"
	eventrepo "eventhub/internal/repository/event"
)

type EventWriter interface {
	UpsertBySlug(ctx context.Context, in eventrepo.EventInput, items []eventrepo.ItemInput) (*domain.Event, error)
}

// CSVImporter reads catalog exports and inserts/updates events with their items.
type CSVImporter struct {
	reader *csv.Reader
	events EventWriter
}

func NewCSVImporter(r io.Reader, events EventWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, events: events}
}

type pendingEvent struct {
	line  int
	event eventrepo.EventInput
	items []eventrepo.ItemInput
}

// Run parses CSV rows and upserts events grouped by title rows. A row with a
// title starts a new event; rows with an empty title add items to it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *pendingEvent
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		if title := pick(record, index, "title"); title != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			ev, err := parseEvent(record, index)
			if err != nil {
				return imported, fmt.Errorf("line %d: %w", line, err)
			}
			current = &pendingEvent{line: line, event: ev}
		}

		item, ok, err := parseItem(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		if current == nil {
			return imported, fmt.Errorf("line %d: item %q appears before any event row", line, item.Name)
		}
		current.items = append(current.items, item)
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, p *pendingEvent) error {
	if p.event.Category == "" {
		return fmt.Errorf("line %d: event %q has no category", p.line, p.event.Title)
	}
	if p.event.Slug == "" {
		p.event.Slug = domain.Slugify(p.event.Title)
	}
	if _, err := i.events.UpsertBySlug(ctx, p.event, p.items); err != nil {
		return fmt.Errorf("upsert event %q: %w", p.event.Slug, err)
	}
	return nil
}

func parseEvent(record []string, index map[string]int) (eventrepo.EventInput, error) {
	price, err := cents(pick(record, index, "price_cents"))
	if err != nil {
		return eventrepo.EventInput{}, fmt.Errorf("price_cents: %w", err)
	}
	return eventrepo.EventInput{
		Slug:        pick(record, index, "slug"),
		Title:       pick(record, index, "title"),
		Description: pick(record, index, "description"),
		ImageURL:    pick(record, index, "image_url"),
		Location:    pick(record, index, "location"),
		Date:        pick(record, index, "date"),
		Category:    strings.ToLower(pick(record, index, "category")),
		PriceCents:  price,
	}, nil
}

func parseItem(record []string, index map[string]int) (eventrepo.ItemInput, bool, error) {
	name := pick(record, index, "item_name")
	if name == "" {
		return eventrepo.ItemInput{}, false, nil
	}
	price, err := cents(pick(record, index, "item_price_cents"))
	if err != nil {
		return eventrepo.ItemInput{}, false, fmt.Errorf("item_price_cents: %w", err)
	}
	qty := 1
	if raw := pick(record, index, "item_quantity"); raw != "" {
		qty, err = strconv.Atoi(raw)
		if err != nil || qty < 1 {
			return eventrepo.ItemInput{}, false, fmt.Errorf("item_quantity: invalid value %q", raw)
		}
	}
	return eventrepo.ItemInput{
		Name:        name,
		Description: pick(record, index, "item_description"),
		Quantity:    qty,
		PriceCents:  price,
		ImageURL:    pick(record, index, "item_image_url"),
		Category:    pick(record, index, "item_category"),
	}, true, nil
}

func cents(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid value %q", raw)
	}
	return v, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
