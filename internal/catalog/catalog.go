// Package catalog holds the fixed set of flavors sold during a session.
package catalog

import "fmt"

// FlavorID identifies one of the five flavors on sale.
type FlavorID string

const (
	Normal     FlavorID = "normal"
	SugarFree  FlavorID = "sugarfree"
	Watermelon FlavorID = "watermelon"
	Tropical   FlavorID = "tropical"
	Curuba     FlavorID = "curuba"
)

// Flavor is a catalog entry as shown on the counter.
type Flavor struct {
	ID          FlavorID `json:"id"`
	DisplayName string   `json:"display_name"`
	ColorTag    string   `json:"color_tag"`
}

var flavors = [...]Flavor{
	{ID: Normal, DisplayName: "ED", ColorTag: "redbull-normal"},
	{ID: SugarFree, DisplayName: "SF", ColorTag: "redbull-sugarfree"},
	{ID: Watermelon, DisplayName: "RED", ColorTag: "redbull-watermelon"},
	{ID: Tropical, DisplayName: "YELLOW", ColorTag: "redbull-tropical"},
	{ID: Curuba, DisplayName: "GREEN", ColorTag: "redbull-curuba"},
}

// Flavors returns the catalog in display order. The slice is a copy.
func Flavors() []Flavor {
	out := make([]Flavor, len(flavors))
	copy(out, flavors[:])
	return out
}

// IDs returns the flavor identifiers in display order.
func IDs() []FlavorID {
	ids := make([]FlavorID, len(flavors))
	for i, f := range flavors {
		ids[i] = f.ID
	}
	return ids
}

// Size is the number of flavors in the catalog.
func Size() int {
	return len(flavors)
}

func Lookup(id FlavorID) (Flavor, bool) {
	for _, f := range flavors {
		if f.ID == id {
			return f, true
		}
	}
	return Flavor{}, false
}

func Valid(id FlavorID) bool {
	_, ok := Lookup(id)
	return ok
}

// ParseFlavorID converts raw input (request bodies, persisted keys) into a FlavorID.
func ParseFlavorID(raw string) (FlavorID, error) {
	id := FlavorID(raw)
	if !Valid(id) {
		return "", fmt.Errorf("unknown flavor %q", raw)
	}
	return id, nil
}
