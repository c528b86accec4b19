package enums

import "fmt"

// ItemType identifies the major engine component group an order item covers.
type ItemType string

const (
	ItemTypeCylinderHead   ItemType = "cylinder_head"
	ItemTypeEngineBlock    ItemType = "engine_block"
	ItemTypeCrankshaft     ItemType = "crankshaft"
	ItemTypeConnectingRods ItemType = "connecting_rods"
	ItemTypeOther          ItemType = "other"
)

var validItemTypes = []ItemType{
	ItemTypeCylinderHead,
	ItemTypeEngineBlock,
	ItemTypeCrankshaft,
	ItemTypeConnectingRods,
	ItemTypeOther,
}

var itemTypeLabels = map[ItemType]string{
	ItemTypeCylinderHead:   "Cylinder Head",
	ItemTypeEngineBlock:    "Engine Block",
	ItemTypeCrankshaft:     "Crankshaft",
	ItemTypeConnectingRods: "Connecting Rods",
	ItemTypeOther:          "Other",
}

// String implements fmt.Stringer.
func (i ItemType) String() string {
	return string(i)
}

// Label returns the human-facing display label.
func (i ItemType) Label() string {
	if label, ok := itemTypeLabels[i]; ok {
		return label
	}
	return string(i)
}

// IsValid reports whether the value is a known ItemType.
func (i ItemType) IsValid() bool {
	for _, candidate := range validItemTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseItemType converts raw input into an ItemType.
func ParseItemType(value string) (ItemType, error) {
	for _, candidate := range validItemTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item type %q", value)
}
