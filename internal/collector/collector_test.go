package collector

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tablemate/tablemate/internal/models"
	"github.com/tablemate/tablemate/internal/repositories/memory"
	"github.com/tablemate/tablemate/internal/vendor"
)

type stubVendor struct {
	store   *vendor.Store
	menu    *models.Menu
	details map[string]models.DealDetail
}

func (s *stubVendor) ClosestStore(_ context.Context, _ string) (*vendor.Store, error) {
	if s.store == nil {
		return nil, vendor.ErrNoStores
	}
	return s.store, nil
}

func (s *stubVendor) Menu(_ context.Context, _ string) (*models.Menu, error) {
	return s.menu, nil
}

func (s *stubVendor) DealDetail(_ context.Context, _, dealID string) (models.DealDetail, error) {
	detail, ok := s.details[dealID]
	if !ok {
		return models.DealDetail{}, errors.New("no detail")
	}
	return detail, nil
}

func (s *stubVendor) Validate(_ context.Context, env *vendor.OrderEnvelope) (*vendor.OrderEnvelope, error) {
	return env, nil
}

func (s *stubVendor) Price(_ context.Context, env *vendor.OrderEnvelope) (*vendor.OrderEnvelope, error) {
	price := decimal.RequireFromString("15.9")
	for i := range env.Order.Products {
		env.Order.Products[i].Price = &price
	}
	return env, nil
}

type captureOutput struct {
	messages map[string][][]byte
}

func newCaptureOutput() *captureOutput {
	return &captureOutput{messages: make(map[string][][]byte)}
}

func (c *captureOutput) WriteMessage(topic string, msg []byte) error {
	c.messages[topic] = append(c.messages[topic], msg)
	return nil
}

func (c *captureOutput) Close() error { return nil }

type archivingOutput struct {
	captureOutput
	archived []*models.OrderLine
}

func (a *archivingOutput) BatchInsertOrderLines(lines []*models.OrderLine) error {
	a.archived = append(a.archived, lines...)
	return nil
}

func collectorMenu() *models.Menu {
	return models.NewMenu(
		map[string]models.MenuProduct{
			"PEP": {Name: "Pepperoni", ProductType: "Pizza",
				Variants: []string{"25HTPEP", "30HTPEP", "35HTPEP"}, DefaultToppings: "TOMS=1"},
			"MRG": {Name: "Margherita", ProductType: "Pizza",
				Variants: []string{"25HTMRG", "30HTMRG", "35HTMRG"}, DefaultToppings: "TOMS=1"},
		},
		map[string]models.Topping{
			"ONION": {Name: "Onion"},
			"TOMS":  {Name: "Tomato Sauce", Tags: models.ToppingTags{Sauce: true}},
		},
		map[string]models.Deal{
			"N051": {Name: "Pizza Duo - two pizzas for less", Tags: models.DealTags{
				ValidServiceMethods: models.ServiceMethods{models.ServiceMethodCarryout, models.ServiceMethodDelivery},
			}},
		},
	)
}

func newTestCollector(t *testing.T, output OutputDestination) (*Collector, *stubVendor) {
	t.Helper()
	cfg := &models.Config{
		ServiceMethod: models.ServiceMethodCarryout,
		DealPriority:  []string{"N051"},
	}
	v := &stubVendor{
		store: &vendor.Store{StoreID: "63402", StoreName: "Zürich City"},
		menu:  collectorMenu(),
		details: map[string]models.DealDetail{
			"N051": {Code: "N051", ProductGroups: []models.ProductGroup{
				{RequiredQty: 2, ProductCodes: []string{"30HTPEP", "30HTMRG", "35HTPEP", "35HTMRG"}},
			}},
		},
	}
	c := New(cfg, memory.NewCollectionRepository(), memory.NewOrderLineRepository(), v, output)
	c.Now = func() time.Time {
		return time.Date(2024, time.March, 4, 18, 30, 0, 0, time.UTC) // a Monday
	}
	return c, v
}

func TestSubmitFullFlow(t *testing.T) {
	ctx := context.Background()
	output := newCaptureOutput()
	c, _ := newTestCollector(t, output)

	collection, err := c.StartCollection(ctx, 42)
	if err != nil {
		t.Fatalf("StartCollection: %v", err)
	}
	if _, err := c.SetStore(ctx, collection, "Zürich"); err != nil {
		t.Fatalf("SetStore: %v", err)
	}
	if _, err := c.AddOrderLine(ctx, collection, "alice", "large pepperoni, no onion\nthanks!"); err != nil {
		t.Fatalf("AddOrderLine: %v", err)
	}
	if _, err := c.AddOrderLine(ctx, collection, "bob", "margherita"); err != nil {
		t.Fatalf("AddOrderLine: %v", err)
	}

	receipt, err := c.Submit(ctx, collection)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	products := receipt.Envelope.Order.Products
	if len(products) != 2 {
		t.Fatalf("Products = %+v, want 2", products)
	}
	if products[0].Code != "35HTPEP" {
		t.Errorf("first product = %s, want the large pepperoni variant", products[0].Code)
	}
	if products[1].Code != "30HTMRG" {
		t.Errorf("second product = %s, want the standard margherita", products[1].Code)
	}
	if !products[0].Options["ONION"].IsRemoved() {
		t.Error("onion removal lost on the way to the envelope")
	}

	if len(receipt.Selections) != 1 || receipt.Selections[0].Code != "N051" {
		t.Errorf("Selections = %+v, want the duo deal once", receipt.Selections)
	}
	if len(receipt.Envelope.Order.Coupons) != 1 {
		t.Errorf("Coupons = %+v, deal must be attached to the priced order", receipt.Envelope.Order.Coupons)
	}

	if !strings.Contains(receipt.Summary, "Pizza Duo") {
		t.Errorf("summary misses the deal name:\n%s", receipt.Summary)
	}
	if strings.Contains(receipt.Summary, "two pizzas for less") {
		t.Errorf("deal name must be cut at the dash:\n%s", receipt.Summary)
	}
	if !strings.Contains(receipt.Summary, "15.9 CHF") {
		t.Errorf("summary misses prices:\n%s", receipt.Summary)
	}
	if !strings.Contains(receipt.Summary, "no Onion") {
		t.Errorf("summary misses customizations:\n%s", receipt.Summary)
	}

	if got := len(output.messages[TopicOrderCollected]); got != 2 {
		t.Errorf("order_collected events = %d, want 2", got)
	}
	for _, topic := range []string{TopicOrderInterpreted, TopicDealsSelected, TopicOrderSubmitted} {
		if got := len(output.messages[topic]); got != 1 {
			t.Errorf("%s events = %d, want 1", topic, got)
		}
	}

	var interpreted models.OrderInterpretedEvent
	if err := json.Unmarshal(output.messages[TopicOrderInterpreted][0], &interpreted); err != nil {
		t.Fatalf("decoding interpreted event: %v", err)
	}
	if interpreted.Matched != 2 || interpreted.Unmatched != 0 {
		t.Errorf("interpreted event = %+v", interpreted)
	}
	if interpreted.OrderText != "large pepperoni, no onion;margherita" {
		t.Errorf("OrderText = %q, comment lines must be dropped", interpreted.OrderText)
	}
}

func TestSubmitWithoutStore(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCollector(t, nil)

	collection, err := c.StartCollection(ctx, 42)
	if err != nil {
		t.Fatalf("StartCollection: %v", err)
	}
	if _, err := c.Submit(ctx, collection); !errors.Is(err, ErrNoStore) {
		t.Errorf("err = %v, want ErrNoStore", err)
	}
}

func TestSubmitWithoutLines(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCollector(t, nil)

	collection, _ := c.StartCollection(ctx, 42)
	if _, err := c.SetStore(ctx, collection, "Zürich"); err != nil {
		t.Fatalf("SetStore: %v", err)
	}
	if _, err := c.Submit(ctx, collection); !errors.Is(err, ErrNothingCollected) {
		t.Errorf("err = %v, want ErrNothingCollected", err)
	}
}

func TestClosedCollectionRejectsLines(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCollector(t, nil)

	collection, _ := c.StartCollection(ctx, 42)
	if err := c.CloseCollection(ctx, collection); err != nil {
		t.Fatalf("CloseCollection: %v", err)
	}
	if _, err := c.AddOrderLine(ctx, collection, "alice", "pepperoni"); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("err = %v, want ErrSessionFinished", err)
	}
	if err := c.CloseCollection(ctx, collection); !errors.Is(err, ErrSessionFinished) {
		t.Errorf("second close err = %v, want ErrSessionFinished", err)
	}
}

func TestCloseCollectionArchivesLines(t *testing.T) {
	ctx := context.Background()
	output := &archivingOutput{captureOutput: *newCaptureOutput()}
	c, _ := newTestCollector(t, output)

	collection, _ := c.StartCollection(ctx, 42)
	if _, err := c.AddOrderLine(ctx, collection, "alice", "pepperoni"); err != nil {
		t.Fatalf("AddOrderLine: %v", err)
	}
	if _, err := c.AddOrderLine(ctx, collection, "bob", "margherita"); err != nil {
		t.Fatalf("AddOrderLine: %v", err)
	}

	if err := c.CloseCollection(ctx, collection); err != nil {
		t.Fatalf("CloseCollection: %v", err)
	}
	if len(output.archived) != 2 {
		t.Fatalf("archived %d lines, want 2", len(output.archived))
	}
	if output.archived[0].User != "alice" || output.archived[1].Text != "margherita" {
		t.Errorf("archived = %+v, %+v", output.archived[0], output.archived[1])
	}
}

func TestActiveCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCollector(t, nil)

	if _, err := c.ActiveCollection(ctx, 42); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("err = %v, want ErrNoActiveSession", err)
	}

	started, _ := c.StartCollection(ctx, 42)
	active, err := c.ActiveCollection(ctx, 42)
	if err != nil {
		t.Fatalf("ActiveCollection: %v", err)
	}
	if active.UUID != started.UUID {
		t.Errorf("ActiveCollection = %s, want %s", active.UUID, started.UUID)
	}

	if err := c.CloseCollection(ctx, active); err != nil {
		t.Fatalf("CloseCollection: %v", err)
	}
	if _, err := c.ActiveCollection(ctx, 42); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("closed session still active: %v", err)
	}
}

func TestSetServiceMethod(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCollector(t, nil)

	collection, _ := c.StartCollection(ctx, 42)
	if err := c.SetServiceMethod(ctx, collection, models.ServiceMethodDelivery); err != nil {
		t.Fatalf("SetServiceMethod: %v", err)
	}
	if collection.Settings.ServiceMethod != models.ServiceMethodDelivery {
		t.Errorf("ServiceMethod = %s", collection.Settings.ServiceMethod)
	}
	if err := c.SetServiceMethod(ctx, collection, "Teleport"); err == nil {
		t.Error("unknown service method must be rejected")
	}
}

func TestSetSetting(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCollector(t, nil)

	collection, _ := c.StartCollection(ctx, 42)
	if err := c.SetSetting(ctx, collection, "name", "Alice"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := c.SetSetting(ctx, collection, "service_method", models.ServiceMethodDelivery); err != nil {
		t.Fatalf("SetSetting service_method: %v", err)
	}
	if collection.Settings.Name != "Alice" || collection.Settings.ServiceMethod != models.ServiceMethodDelivery {
		t.Errorf("Settings = %+v", collection.Settings)
	}

	stored, err := c.ActiveCollection(ctx, 42)
	if err != nil {
		t.Fatalf("ActiveCollection: %v", err)
	}
	if stored.Settings.Name != "Alice" {
		t.Errorf("stored Settings = %+v, update not persisted", stored.Settings)
	}

	if err := c.SetSetting(ctx, collection, "favourite_colour", "green"); err == nil {
		t.Error("unknown setting must be rejected")
	}
}

func TestJoinOrderText(t *testing.T) {
	lines := []*models.OrderLine{
		{Text: "pepperoni, extra ham\nand a beer please"},
		{Text: "margherita"},
	}
	got := joinOrderText(lines)
	if got != "pepperoni, extra ham;margherita" {
		t.Errorf("joinOrderText = %q", got)
	}
}

func TestCustomizationString(t *testing.T) {
	menu := collectorMenu()
	options := map[string]models.OptionValue{
		"ONION": models.Removed(),
		"HAM":   models.Quantity(decimal.RequireFromString("1.5")),
		"TOMS":  models.Quantity(decimal.NewFromInt(1)),
	}
	got := CustomizationString(options, menu)
	if got != "extra HAM, no Onion, Tomato Sauce" {
		t.Errorf("CustomizationString = %q", got)
	}
}

func TestRenderSummaryStatusItems(t *testing.T) {
	menu := collectorMenu()
	env := &vendor.OrderEnvelope{Order: vendor.Order{
		Products: []vendor.Product{
			{OrderItem: models.OrderItem{Code: "30HTPEP"}, AutoRemove: true},
			{OrderItem: models.OrderItem{Code: "30HTMRG"}, Name: "Margherita 30cm",
				StatusItems: []vendor.StatusItem{{Code: "PosUnavailable"}}},
		},
		StatusItems: []vendor.StatusItem{{Code: "StoreClosed"}},
	}}

	summary := RenderSummary(env, menu)
	if strings.Contains(summary, "30HTPEP") {
		t.Errorf("auto-removed product must not be listed:\n%s", summary)
	}
	if !strings.Contains(summary, "Margherita 30cm") || !strings.Contains(summary, "-- CHF") {
		t.Errorf("unpriced product rendering off:\n%s", summary)
	}
	if !strings.Contains(summary, "PosUnavailable") || !strings.Contains(summary, "StoreClosed") {
		t.Errorf("status codes missing:\n%s", summary)
	}
}
