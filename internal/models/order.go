package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OptionValue is one topping customization on an order item. The legacy
// pricing contract encodes it as either the bare number 0 (topping removed)
// or an object {"1/1": "<qty>"} where qty is a decimal string, 1.5 meaning
// "extra". The tagged form here keeps downstream handling exhaustive instead
// of switching on raw JSON shapes.
type OptionValue struct {
	removed bool
	qty     decimal.Decimal
}

func Removed() OptionValue {
	return OptionValue{removed: true}
}

func Quantity(qty decimal.Decimal) OptionValue {
	if qty.IsZero() {
		return OptionValue{removed: true}
	}
	return OptionValue{qty: qty}
}

func (v OptionValue) IsRemoved() bool { return v.removed }

func (v OptionValue) Qty() decimal.Decimal { return v.qty }

func (v OptionValue) MarshalJSON() ([]byte, error) {
	if v.removed {
		return []byte("0"), nil
	}
	return json.Marshal(map[string]string{"1/1": v.qty.String()})
}

func (v *OptionValue) UnmarshalJSON(data []byte) error {
	var obj map[string]string
	if err := json.Unmarshal(data, &obj); err == nil {
		qty, err := decimal.NewFromString(obj["1/1"])
		if err != nil {
			return fmt.Errorf("invalid option quantity %q: %w", obj["1/1"], err)
		}
		*v = Quantity(qty)
		return nil
	}
	var n decimal.Decimal
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid option value %s: %w", data, err)
	}
	if !n.IsZero() {
		return fmt.Errorf("invalid bare option value %s, only 0 is allowed", data)
	}
	*v = Removed()
	return nil
}

// OrderItem is one structured item produced by the interpreter, in the shape
// the vendor's validate/price endpoints expect. ID and IsNew are bookkeeping
// attached when the item is placed into an order envelope.
type OrderItem struct {
	Code    string                 `json:"Code"`
	Qty     int                    `json:"Qty"`
	Options map[string]OptionValue `json:"Options"`
	ID      int                    `json:"ID"`
	IsNew   bool                   `json:"isNew"`
}

// DealSelection is one applied deal instance. A deal claimed twice appears as
// two entries with Qty 1 each.
type DealSelection struct {
	Code string `json:"Code"`
	Qty  int    `json:"Qty"`
}
