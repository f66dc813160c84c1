package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestOptionValueMarshal(t *testing.T) {
	cases := []struct {
		name  string
		value OptionValue
		want  string
	}{
		{"removed", Removed(), `0`},
		{"default qty", Quantity(decimal.NewFromInt(1)), `{"1/1":"1"}`},
		{"extra qty", Quantity(decimal.RequireFromString("1.5")), `{"1/1":"1.5"}`},
		{"zero qty collapses to removed", Quantity(decimal.Zero), `0`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.value)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(data) != tc.want {
				t.Errorf("Marshal = %s, want %s", data, tc.want)
			}
		})
	}
}

func TestOptionValueUnmarshal(t *testing.T) {
	var removed OptionValue
	if err := json.Unmarshal([]byte(`0`), &removed); err != nil {
		t.Fatalf("Unmarshal 0: %v", err)
	}
	if !removed.IsRemoved() {
		t.Error("bare 0 should decode as removed")
	}

	var extra OptionValue
	if err := json.Unmarshal([]byte(`{"1/1":"1.5"}`), &extra); err != nil {
		t.Fatalf("Unmarshal object: %v", err)
	}
	if extra.IsRemoved() || !extra.Qty().Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("object form decoded to %+v", extra)
	}

	var bad OptionValue
	if err := json.Unmarshal([]byte(`2`), &bad); err == nil {
		t.Error("bare non-zero number must be rejected")
	}
}

func TestOrderItemJSON(t *testing.T) {
	item := OrderItem{
		Code: "30HTPEP",
		Qty:  1,
		Options: map[string]OptionValue{
			"TOMS":  Quantity(decimal.NewFromInt(1)),
			"ONION": Removed(),
		},
	}
	data, err := json.Marshal(item)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	// The submission contract always carries ID, position 0 included.
	if !strings.Contains(string(data), `"ID":0`) {
		t.Errorf("Marshal = %s, want an explicit ID field", data)
	}

	var decoded OrderItem
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Code != "30HTPEP" || decoded.Qty != 1 {
		t.Errorf("round trip lost item fields: %+v", decoded)
	}
	if !decoded.Options["ONION"].IsRemoved() {
		t.Error("removed topping lost in round trip")
	}
	if !decoded.Options["TOMS"].Qty().Equal(decimal.NewFromInt(1)) {
		t.Errorf("topping quantity lost in round trip: %+v", decoded.Options["TOMS"])
	}
}

func TestServiceMethodsUnmarshal(t *testing.T) {
	var fromString ServiceMethods
	if err := json.Unmarshal([]byte(`"Carryout"`), &fromString); err != nil {
		t.Fatalf("Unmarshal string: %v", err)
	}
	if !fromString.Allows(ServiceMethodCarryout) || fromString.Allows(ServiceMethodDelivery) {
		t.Errorf("string form decoded to %v", fromString)
	}

	var fromArray ServiceMethods
	if err := json.Unmarshal([]byte(`["Carryout","Delivery"]`), &fromArray); err != nil {
		t.Fatalf("Unmarshal array: %v", err)
	}
	if !fromArray.Allows(ServiceMethodDelivery) {
		t.Errorf("array form decoded to %v", fromArray)
	}

	// A malformed tag decodes to nil instead of failing the menu parse.
	var fromGarbage ServiceMethods
	if err := json.Unmarshal([]byte(`{"Carryout":true}`), &fromGarbage); err != nil {
		t.Fatalf("Unmarshal object: %v", err)
	}
	if fromGarbage != nil || fromGarbage.Allows(ServiceMethodCarryout) {
		t.Errorf("malformed form decoded to %v, want nil", fromGarbage)
	}
}

func TestMenuDeterministicOrdering(t *testing.T) {
	menu := NewMenu(
		map[string]MenuProduct{
			"B": {Name: "Bianca"},
			"A": {Name: "Arrabbiata"},
			"C": {Name: "Calzone"},
		},
		map[string]Topping{
			"Z":    {Name: "Zucchini"},
			"M":    {Name: "Mushroom"},
			"TOMS": {Name: "Tomato Sauce", Tags: ToppingTags{Sauce: true}},
		},
		nil,
	)

	products := menu.ProductList()
	for i, want := range []string{"A", "B", "C"} {
		if products[i].Code != want {
			t.Fatalf("ProductList[%d] = %s, want %s", i, products[i].Code, want)
		}
	}

	toppings := menu.NonSauceToppings()
	if len(toppings) != 2 || toppings[0].Code != "M" || toppings[1].Code != "Z" {
		t.Errorf("NonSauceToppings = %+v, want sauces excluded and codes sorted", toppings)
	}
}
