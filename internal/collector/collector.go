// Package collector runs order-gathering sessions for chat rooms: it stores
// collected order lines, drives the interpreter and deal optimizer against
// the store's menu at submission time, and emits lifecycle events.
package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lucsky/cuid"
	"github.com/tablemate/tablemate/internal/deals"
	"github.com/tablemate/tablemate/internal/interpret"
	"github.com/tablemate/tablemate/internal/models"
	"github.com/tablemate/tablemate/internal/repositories"
	"github.com/tablemate/tablemate/internal/vendor"
)

var (
	ErrNoStore          = errors.New("collection has no store configured")
	ErrNoActiveSession  = errors.New("no active collection for this chat")
	ErrSessionFinished  = errors.New("collection is already closed")
	ErrNothingCollected = errors.New("collection has no order lines")
)

// Vendor is the slice of the vendor API the collector needs.
type Vendor interface {
	ClosestStore(ctx context.Context, query string) (*vendor.Store, error)
	Menu(ctx context.Context, storeID string) (*models.Menu, error)
	DealDetail(ctx context.Context, storeID, dealID string) (models.DealDetail, error)
	Validate(ctx context.Context, env *vendor.OrderEnvelope) (*vendor.OrderEnvelope, error)
	Price(ctx context.Context, env *vendor.OrderEnvelope) (*vendor.OrderEnvelope, error)
}

type Collector struct {
	cfg         *models.Config
	collections repositories.CollectionRepository
	lines       repositories.OrderLineRepository
	vendor      Vendor
	optimizer   *deals.Optimizer
	output      OutputDestination

	// Now supplies the weekday for deal gating. Overridable in tests.
	Now func() time.Time
}

func New(cfg *models.Config, collections repositories.CollectionRepository, lines repositories.OrderLineRepository, v Vendor, output OutputDestination) *Collector {
	return &Collector{
		cfg:         cfg,
		collections: collections,
		lines:       lines,
		vendor:      v,
		optimizer:   deals.NewOptimizer(cfg.DealPriority),
		output:      output,
		Now:         time.Now,
	}
}

// StartCollection opens a fresh collection for a chat, carrying over the
// configured default service method.
func (c *Collector) StartCollection(ctx context.Context, chat int64) (*models.Collection, error) {
	collection := &models.Collection{
		ID:     cuid.New(),
		Chat:   chat,
		UUID:   uuid.NewString(),
		Active: true,
		Settings: models.Settings{
			ServiceMethod: c.cfg.ServiceMethod,
		},
		CreatedAt: c.Now(),
	}
	if err := c.collections.Create(ctx, collection); err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	return collection, nil
}

// ActiveCollection returns the chat's open collection or ErrNoActiveSession.
func (c *Collector) ActiveCollection(ctx context.Context, chat int64) (*models.Collection, error) {
	collection, err := c.collections.GetActiveByChat(ctx, chat)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNoActiveSession
	}
	return collection, err
}

func (c *Collector) CloseCollection(ctx context.Context, collection *models.Collection) error {
	if !collection.Active {
		return ErrSessionFinished
	}
	collection.Active = false
	if err := c.collections.SetActive(ctx, collection.UUID, false); err != nil {
		return err
	}
	c.archiveLines(ctx, collection)
	return nil
}

// LineArchiver is the optional sink capability for bulk-loading a session's
// collected lines. The Postgres sink implements it.
type LineArchiver interface {
	BatchInsertOrderLines(lines []*models.OrderLine) error
}

// archiveLines drains the closed session's lines into the sink. Archive
// failures are logged, not returned: the session is already closed.
func (c *Collector) archiveLines(ctx context.Context, collection *models.Collection) {
	archiver, ok := c.output.(LineArchiver)
	if !ok {
		return
	}
	lines, err := c.lines.GetByCollection(ctx, collection.UUID)
	if err != nil {
		log.Printf("Failed to load order lines for archiving: %v", err)
		return
	}
	if len(lines) == 0 {
		return
	}
	if err := archiver.BatchInsertOrderLines(lines); err != nil {
		log.Printf("Failed to archive order lines: %v", err)
	}
}

// AddOrderLine records one chat message in the collection. Only the first
// text line is ever interpreted; the rest stays as commentary.
func (c *Collector) AddOrderLine(ctx context.Context, collection *models.Collection, user, text string) (*models.OrderLine, error) {
	if !collection.Active {
		return nil, ErrSessionFinished
	}
	line := &models.OrderLine{
		ID:             cuid.New(),
		CollectionUUID: collection.UUID,
		User:           user,
		Text:           text,
		CreatedAt:      c.Now(),
	}
	if err := c.lines.Create(ctx, line); err != nil {
		return nil, fmt.Errorf("storing order line: %w", err)
	}
	c.emit(TopicOrderCollected, models.OrderCollectedEvent{
		BaseEvent: c.baseEvent("ORDER_COLLECTED", collection),
		User:      user,
		Text:      text,
	})
	return line, nil
}

func (c *Collector) RemoveLastOrderLine(ctx context.Context, collection *models.Collection, user string) error {
	return c.lines.DeleteLastByUser(ctx, collection.UUID, user)
}

// SetStore resolves a location query to the closest store and pins the
// collection to it.
func (c *Collector) SetStore(ctx context.Context, collection *models.Collection, query string) (*vendor.Store, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("store query must not be empty")
	}
	store, err := c.vendor.ClosestStore(ctx, query)
	if err != nil {
		return nil, err
	}
	collection.Settings.StoreID = store.StoreID
	if err := c.collections.UpdateSettings(ctx, collection.UUID, collection.Settings); err != nil {
		return nil, fmt.Errorf("saving store: %w", err)
	}
	return store, nil
}

func (c *Collector) SetServiceMethod(ctx context.Context, collection *models.Collection, method string) error {
	if method != models.ServiceMethodCarryout && method != models.ServiceMethodDelivery {
		return fmt.Errorf("unknown service method %q", method)
	}
	collection.Settings.ServiceMethod = method
	return c.collections.UpdateSettings(ctx, collection.UUID, collection.Settings)
}

// SetSetting updates one collection setting by key. Store and service method
// route through their dedicated setters so their validation applies.
func (c *Collector) SetSetting(ctx context.Context, collection *models.Collection, key, value string) error {
	switch key {
	case "store":
		_, err := c.SetStore(ctx, collection, value)
		return err
	case "service_method":
		return c.SetServiceMethod(ctx, collection, value)
	case "address":
		collection.Settings.Address = value
	case "name":
		collection.Settings.Name = value
	case "phone":
		collection.Settings.Phone = value
	case "email":
		collection.Settings.Email = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return c.collections.UpdateSettings(ctx, collection.UUID, collection.Settings)
}

// Receipt is the outcome of one submission: the priced envelope, the applied
// deals and a human-readable summary for the chat.
type Receipt struct {
	Envelope   *vendor.OrderEnvelope
	Selections []models.DealSelection
	Summary    string
}

// Submit interprets the collected order lines against the store's current
// menu, validates the order with the vendor, layers the optimized deals on
// top and prices the result.
func (c *Collector) Submit(ctx context.Context, collection *models.Collection) (*Receipt, error) {
	if collection.Settings.StoreID == "" {
		return nil, ErrNoStore
	}
	lines, err := c.lines.GetByCollection(ctx, collection.UUID)
	if err != nil {
		return nil, fmt.Errorf("loading order lines: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrNothingCollected
	}
	orderText := joinOrderText(lines)

	menu, err := c.vendor.Menu(ctx, collection.Settings.StoreID)
	if err != nil {
		return nil, fmt.Errorf("loading menu: %w", err)
	}

	items := interpret.ParseOrders(orderText, menu)
	c.emitInterpreted(collection, orderText, items)

	serviceMethod := collection.Settings.ServiceMethod
	if serviceMethod == "" {
		serviceMethod = c.cfg.ServiceMethod
	}
	env := vendor.NewEnvelope(c.cfg, collection.Settings.StoreID, serviceMethod, items)
	validated, err := c.vendor.Validate(ctx, env)
	if err != nil {
		return nil, err
	}

	dealCtx := deals.Context{
		Weekday:       c.Now().Format("Mon"),
		ServiceMethod: validated.Order.ServiceMethod,
	}
	detail := func(code string) (models.DealDetail, error) {
		return c.vendor.DealDetail(ctx, collection.Settings.StoreID, code)
	}
	selections := c.optimizer.Select(validated.Items(), menu.Deals(), detail, dealCtx)
	c.emitDeals(collection, selections, dealCtx)

	validated.Order.Coupons = selections
	revalidated, err := c.vendor.Validate(ctx, validated)
	if err != nil {
		return nil, err
	}
	priced, err := c.vendor.Price(ctx, revalidated)
	if err != nil {
		return nil, err
	}

	c.emit(TopicOrderSubmitted, models.OrderSubmittedEvent{
		BaseEvent: c.baseEvent("ORDER_SUBMITTED", collection),
		StoreID:   collection.Settings.StoreID,
		Products:  int32(len(priced.Order.Products)),
		Coupons:   int32(len(priced.Order.Coupons)),
	})

	return &Receipt{
		Envelope:   priced,
		Selections: selections,
		Summary:    RenderSummary(priced, menu),
	}, nil
}

// joinOrderText joins the first line of every collected message with
// semicolons, the interpreter's sub-order separator.
func joinOrderText(lines []*models.OrderLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		first, _, _ := strings.Cut(line.Text, "\n")
		parts = append(parts, first)
	}
	return strings.Join(parts, ";")
}

func (c *Collector) baseEvent(eventType string, collection *models.Collection) models.BaseEvent {
	return models.BaseEvent{
		Timestamp:    c.Now().Unix(),
		EventType:    eventType,
		Chat:         collection.Chat,
		CollectionID: collection.UUID,
	}
}

func (c *Collector) emitInterpreted(collection *models.Collection, orderText string, items []*models.OrderItem) {
	var codes []string
	var unmatched int32
	for _, item := range items {
		if item == nil {
			unmatched++
			continue
		}
		codes = append(codes, item.Code)
	}
	c.emit(TopicOrderInterpreted, models.OrderInterpretedEvent{
		BaseEvent: c.baseEvent("ORDER_INTERPRETED", collection),
		OrderText: orderText,
		ItemCodes: strings.Join(codes, ","),
		Matched:   int32(len(codes)),
		Unmatched: unmatched,
	})
}

func (c *Collector) emitDeals(collection *models.Collection, selections []models.DealSelection, ctx deals.Context) {
	codes := make([]string, len(selections))
	for i, s := range selections {
		codes[i] = s.Code
	}
	c.emit(TopicDealsSelected, models.DealsSelectedEvent{
		BaseEvent:     c.baseEvent("DEALS_SELECTED", collection),
		DealCodes:     strings.Join(codes, ","),
		ServiceMethod: ctx.ServiceMethod,
		Weekday:       ctx.Weekday,
	})
}

func (c *Collector) emit(topic string, event interface{}) {
	if c.output == nil {
		return
	}
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to encode %s event: %v", topic, err)
		return
	}
	if err := c.output.WriteMessage(topic, msg); err != nil {
		log.Printf("Failed to write %s event: %v", topic, err)
	}
}
