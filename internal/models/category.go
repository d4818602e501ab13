package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ARGB is a packed 32-bit color, alpha in the high byte.
type ARGB uint32

// Hex renders the color as #AARRGGBB.
func (c ARGB) Hex() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// RGBHex renders the color as #RRGGBB, dropping alpha.
func (c ARGB) RGBHex() string {
	return fmt.Sprintf("#%06X", uint32(c)&0xFFFFFF)
}

// ParseARGB accepts #AARRGGBB, #RRGGBB (opaque) or a decimal value.
func ParseARGB(s string) (ARGB, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") || strings.HasPrefix(strings.ToLower(s), "0x") {
		hex := strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(s, "#"), "0x"), "0X")
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid color %q: %w", s, err)
		}
		switch len(hex) {
		case 6:
			return ARGB(0xFF000000 | uint32(v)), nil
		case 8:
			return ARGB(v), nil
		default:
			return 0, fmt.Errorf("invalid color %q: want 6 or 8 hex digits", s)
		}
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return ARGB(v), nil
}

// IconID indexes into Icons.
type IconID int

const (
	IconEco IconID = iota
	IconEgg
	IconRestaurantMenu
	IconBreakfastDining
	IconLocalDrink
	IconAcUnit
	IconCookie
	IconCleaningServices
	IconPets
	IconSpa
	IconFastfood
	IconLocalCafe
	IconKitchen
	IconCake
	IconLocalPizza
	IconIcecream
	IconSetMeal
	IconLiquor
)

// IconNone marks a category without a chosen icon.
const IconNone IconID = -1

// Icons is the fixed icon set; an IconID is an index into it.
var Icons = []string{
	"eco", "egg", "restaurant_menu", "breakfast_dining", "local_drink", "ac_unit",
	"cookie", "cleaning_services", "pets", "spa", "fastfood", "local_cafe",
	"kitchen", "cake", "local_pizza", "icecream", "set_meal", "liquor",
}

// Valid reports whether the id points into Icons.
func (id IconID) Valid() bool {
	return id >= 0 && int(id) < len(Icons)
}

func (id IconID) String() string {
	if !id.Valid() {
		return "category"
	}
	return Icons[id]
}

// IconByName resolves an icon name to its id.
func IconByName(name string) (IconID, bool) {
	for i, n := range Icons {
		if n == name {
			return IconID(i), true
		}
	}
	return IconNone, false
}

const (
	ColorGray ARGB = 0xFF888888

	TileColorVeg    ARGB = 0xFFC8E6C9
	TileColorDairy  ARGB = 0xFFFFE0B2
	TileColorMeat   ARGB = 0xFFE57373
	TileColorFrozen ARGB = 0xFFBBDEFB
	TileColorBread  ARGB = 0xFFD7CCC8
	TileColorDrinks ARGB = 0xFFB2DFDB
	TileColorOther  ARGB = 0xFFE1BEE7
)

// Palette is offered for new categories and assigned by position to
// registered categories without a stored color.
var Palette = []ARGB{
	TileColorVeg, TileColorDairy, TileColorMeat, TileColorFrozen,
	TileColorBread, TileColorDrinks, TileColorOther,
	0xFFFFF9C4, 0xFFF8BBD0, 0xFFF0F4C3,
}

// DefaultCategories is the category order used on first run.
var DefaultCategories = []string{
	"Fruit & Vegetables", "Dairy", "Meat", "Bread", "Drinks", "Frozen", "Other",
}

// DefaultCategoryColors seeds colors for DefaultCategories.
var DefaultCategoryColors = map[string]ARGB{
	"Fruit & Vegetables": TileColorVeg,
	"Dairy":              TileColorDairy,
	"Meat":               TileColorMeat,
	"Bread":              TileColorBread,
	"Drinks":             TileColorDrinks,
	"Frozen":             TileColorFrozen,
	"Other":              TileColorOther,
}

// CategoryAttributes is the persisted per-category record.
type CategoryAttributes struct {
	Color ARGB   `json:"color"`
	Icon  IconID `json:"icon"`
}

// CategorySummary is a category tile: registry position plus item count.
type CategorySummary struct {
	Name  string `json:"name"`
	Color ARGB   `json:"color"`
	Icon  string `json:"icon"`
	Count int64  `json:"count"`
}
