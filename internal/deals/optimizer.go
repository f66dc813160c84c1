// Package deals selects promotional bundle deals for a set of ordered items.
package deals

import (
	"strings"

	"github.com/tablemate/tablemate/internal/models"
)

// Context gates deal eligibility: the current weekday as a 3-letter
// abbreviation ("Mon".."Sun") and the order's service method. Both are
// injected by the caller so selection stays deterministic and testable.
type Context struct {
	Weekday       string
	ServiceMethod string
}

// DetailFunc resolves a deal code to its product groups. The collector backs
// it with the vendor API; tests use in-memory catalogs. An error means the
// deal is skipped, not that optimization fails.
type DetailFunc func(code string) (models.DealDetail, error)

// Optimizer assembles a maximal set of satisfiable deals by walking a fixed
// priority list and greedily staffing deal instances from the pool of ordered
// items. Each item is claimed by at most one deal instance. The result is a
// deterministic heuristic, not a globally optimal packing.
type Optimizer struct {
	priority []string
}

// NewOptimizer builds an optimizer for the given deal priority order. An
// empty list falls back to the vendor-profile default.
func NewOptimizer(priority []string) *Optimizer {
	if len(priority) == 0 {
		priority = models.DefaultDealPriority
	}
	return &Optimizer{priority: priority}
}

// Select picks the deals to apply to the given items. Deals are tried in
// priority order; a deal may be selected multiple times as long as full
// instances can still be staffed from unclaimed items.
func (o *Optimizer) Select(items []models.OrderItem, catalog map[string]models.Deal, detail DetailFunc, ctx Context) []models.DealSelection {
	pool := make([]string, 0, len(items))
	for _, item := range items {
		pool = append(pool, item.Code)
	}

	var selected []models.DealSelection
	for _, code := range o.priority {
		deal, ok := catalog[code]
		if !ok {
			continue
		}
		if len(deal.Tags.Days) > 0 && !dayAllowed(deal.Tags.Days, ctx.Weekday) {
			continue
		}
		if !deal.Tags.ValidServiceMethods.Allows(ctx.ServiceMethod) {
			continue
		}
		info, err := detail(code)
		if err != nil {
			continue
		}
		// A detail that claims no items would staff instances forever.
		if totalRequired(info.ProductGroups) == 0 {
			continue
		}
		for {
			remaining, ok := staffInstance(info.ProductGroups, pool)
			if !ok {
				break
			}
			pool = remaining
			selected = append(selected, models.DealSelection{Code: code, Qty: 1})
		}
	}
	return selected
}

func totalRequired(groups []models.ProductGroup) int {
	total := 0
	for _, group := range groups {
		total += group.RequiredQty
	}
	return total
}

func dayAllowed(days []string, weekday string) bool {
	for _, day := range days {
		if strings.HasPrefix(weekday, day) {
			return true
		}
	}
	return false
}

// staffInstance tries to fill every slot of one deal instance from the pool,
// claiming the first eligible item per slot. If any slot stays empty the
// attempt fails and the pool is returned untouched, so tentatively claimed
// items are available to other deals again.
func staffInstance(groups []models.ProductGroup, pool []string) ([]string, bool) {
	remaining := append([]string(nil), pool...)
	for _, group := range groups {
		eligible := make(map[string]bool, len(group.ProductCodes))
		for _, code := range group.ProductCodes {
			eligible[code] = true
		}
		for i := 0; i < group.RequiredQty; i++ {
			claimed := -1
			for j, code := range remaining {
				if eligible[code] {
					claimed = j
					break
				}
			}
			if claimed < 0 {
				return pool, false
			}
			remaining = append(remaining[:claimed], remaining[claimed+1:]...)
		}
	}
	return remaining, true
}
