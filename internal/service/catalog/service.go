package catalog

import (
	"context"
	"io"
	"log"
	"strings"

	"eventhub/internal/domain"
	eventrepo "eventhub/internal/repository/event"
)

type eventRepo interface {
	List(ctx context.Context, category string) ([]domain.Event, error)
	Get(ctx context.Context, id int64) (*domain.Event, error)
	Create(ctx context.Context, in eventrepo.EventInput) (*domain.Event, error)
	Update(ctx context.Context, id int64, p eventrepo.EventPatch) (*domain.Event, error)
	Delete(ctx context.Context, id int64) error
	AddItem(ctx context.Context, eventID int64, in eventrepo.ItemInput) (*domain.EventItem, error)
	UpdateItem(ctx context.Context, eventID, itemID int64, p eventrepo.ItemPatch) (*domain.EventItem, error)
	DeleteItem(ctx context.Context, eventID, itemID int64) error
}

// eventCache is optional; a nil cache disables caching.
type eventCache interface {
	Get(ctx context.Context, id int64) (*domain.Event, bool)
	Set(ctx context.Context, ev *domain.Event)
	Invalidate(ctx context.Context, id int64)
}

type Service struct {
	repo   eventRepo
	cache  eventCache
	logger *log.Logger
}

func New(repo eventRepo, cache eventCache, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ItemGroup is a display bucket of event items sharing a category.
type ItemGroup struct {
	Key   string             `json:"key"`
	Name  string             `json:"name"`
	Items []domain.EventItem `json:"items"`
}

// Detail is an event plus its items grouped for display.
type Detail struct {
	*domain.Event
	ItemGroups []ItemGroup `json:"item_groups"`
}

type EventInput struct {
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	ImageURL        string                  `json:"image_url"`
	Location        string                  `json:"location"`
	Date            string                  `json:"date"`
	Category        string                  `json:"category"`
	PriceCents      *int64                  `json:"price_cents"`
	DeliveryOptions []domain.DeliveryOption `json:"delivery_options"`
}

type EventPatch struct {
	Title           *string                  `json:"title"`
	Description     *string                  `json:"description"`
	ImageURL        *string                  `json:"image_url"`
	Location        *string                  `json:"location"`
	Date            *string                  `json:"date"`
	Category        *string                  `json:"category"`
	PriceCents      *int64                   `json:"price_cents"`
	DeliveryOptions *[]domain.DeliveryOption `json:"delivery_options"`
}

type ItemInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
}

type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Quantity    *int    `json:"quantity"`
	PriceCents  *int64  `json:"price_cents"`
	ImageURL    *string `json:"image_url"`
	Category    *string `json:"category"`
}

// List returns events in category; "" and "all" return every event.
func (s *Service) List(ctx context.Context, category string) ([]domain.Event, error) {
	category = strings.TrimSpace(category)
	if strings.EqualFold(category, "all") {
		category = ""
	}
	events, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	for i := range events {
		withDefaultDelivery(&events[i])
	}
	return events, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Detail, error) {
	if s.cache != nil {
		if ev, ok := s.cache.Get(ctx, id); ok {
			return detail(ev), nil
		}
	}
	ev, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	withDefaultDelivery(ev)
	if s.cache != nil {
		s.cache.Set(ctx, ev)
	}
	return detail(ev), nil
}

func (s *Service) Create(ctx context.Context, in EventInput) (*domain.Event, error) {
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		return nil, domain.InvalidInput("title is required")
	case strings.TrimSpace(in.Category) == "":
		return nil, domain.InvalidInput("category is required")
	case in.PriceCents == nil:
		return nil, domain.InvalidInput("price_cents is required")
	case *in.PriceCents < 0:
		return nil, domain.InvalidInput("price_cents must not be negative")
	case *in.PriceCents > domain.MaxPriceCents:
		return nil, domain.InvalidInput("price_cents is out of range")
	}
	slug := domain.Slugify(title)
	if slug == "" {
		return nil, domain.InvalidInput("title must contain letters or digits")
	}
	ev, err := s.repo.Create(ctx, eventrepo.EventInput{
		Slug:            slug,
		Title:           title,
		Description:     in.Description,
		ImageURL:        in.ImageURL,
		Location:        in.Location,
		Date:            in.Date,
		Category:        strings.ToLower(strings.TrimSpace(in.Category)),
		PriceCents:      *in.PriceCents,
		DeliveryOptions: in.DeliveryOptions,
	})
	if err != nil {
		return nil, err
	}
	withDefaultDelivery(ev)
	return ev, nil
}

func (s *Service) Update(ctx context.Context, id int64, p EventPatch) (*domain.Event, error) {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, domain.InvalidInput("title must not be empty")
	}
	if err := checkPrice(p.PriceCents); err != nil {
		return nil, err
	}
	if p.Category != nil {
		c := strings.ToLower(strings.TrimSpace(*p.Category))
		if c == "" {
			return nil, domain.InvalidInput("category must not be empty")
		}
		p.Category = &c
	}
	ev, err := s.repo.Update(ctx, id, eventrepo.EventPatch{
		Title:           p.Title,
		Description:     p.Description,
		ImageURL:        p.ImageURL,
		Location:        p.Location,
		Date:            p.Date,
		Category:        p.Category,
		PriceCents:      p.PriceCents,
		DeliveryOptions: p.DeliveryOptions,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	withDefaultDelivery(ev)
	return ev, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) AddItem(ctx context.Context, eventID int64, in ItemInput) (*domain.EventItem, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.InvalidInput("name is required")
	}
	if err := checkPrice(&in.PriceCents); err != nil {
		return nil, err
	}
	if in.Quantity < 0 || in.Quantity > domain.MaxQuantity {
		return nil, domain.InvalidInput("quantity must be between 0 and %d", domain.MaxQuantity)
	}
	it, err := s.repo.AddItem(ctx, eventID, eventrepo.ItemInput{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Quantity:    in.Quantity,
		PriceCents:  in.PriceCents,
		ImageURL:    in.ImageURL,
		Category:    in.Category,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, eventID)
	return it, nil
}

func (s *Service) UpdateItem(ctx context.Context, eventID, itemID int64, p ItemPatch) (*domain.EventItem, error) {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, domain.InvalidInput("name must not be empty")
	}
	if p.Quantity != nil && *p.Quantity < 1 {
		return nil, domain.InvalidInput("quantity must be at least 1")
	}
	if p.Quantity != nil && *p.Quantity > domain.MaxQuantity {
		return nil, domain.InvalidInput("quantity must be at most %d", domain.MaxQuantity)
	}
	if err := checkPrice(p.PriceCents); err != nil {
		return nil, err
	}
	it, err := s.repo.UpdateItem(ctx, eventID, itemID, eventrepo.ItemPatch{
		Name:        p.Name,
		Description: p.Description,
		Quantity:    p.Quantity,
		PriceCents:  p.PriceCents,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, eventID)
	return it, nil
}

// ListItems returns the items of one event in insertion order.
func (s *Service) ListItems(ctx context.Context, eventID int64) ([]domain.EventItem, error) {
	ev, err := s.repo.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Items == nil {
		return []domain.EventItem{}, nil
	}
	return ev.Items, nil
}

func (s *Service) DeleteItem(ctx context.Context, eventID, itemID int64) error {
	if err := s.repo.DeleteItem(ctx, eventID, itemID); err != nil {
		return err
	}
	s.invalidate(ctx, eventID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, id)
	}
}

func checkPrice(p *int64) error {
	switch {
	case p == nil:
		return nil
	case *p < 0:
		return domain.InvalidInput("price_cents must not be negative")
	case *p > domain.MaxPriceCents:
		return domain.InvalidInput("price_cents is out of range")
	}
	return nil
}

func withDefaultDelivery(ev *domain.Event) {
	if len(ev.DeliveryOptions) == 0 {
		ev.DeliveryOptions = domain.DefaultDeliveryOptions()
	}
}

func detail(ev *domain.Event) *Detail {
	return &Detail{Event: ev, ItemGroups: GroupItems(ev.Items)}
}

// GroupItems buckets items by category. Items without a category land in
// "default"; display names replace underscores and title-case each word.
// Groups keep the order in which their first item appears.
func GroupItems(items []domain.EventItem) []ItemGroup {
	groups := []ItemGroup{}
	index := map[string]int{}
	for _, it := range items {
		key := strings.ToLower(strings.TrimSpace(it.Category))
		if key == "" {
			key = "default"
		}
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ItemGroup{Key: key, Name: displayName(key)})
		}
		groups[i].Items = append(groups[i].Items, it)
	}
	return groups
}

func displayName(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
