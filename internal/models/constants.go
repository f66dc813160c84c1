package models

// Pizza sizes as the vendor encodes them: the numeric diameter in cm is the
// leading component of every variant code.
const (
	SizeSmall    = 25
	SizeStandard = 30
	SizeLarge    = 35
)

// CrustMarker follows the size prefix in pizza variant codes. H = standard
// crust; only one crust type exists on this vendor profile.
const CrustMarker = "HT"

const (
	ServiceMethodCarryout = "Carryout"
	ServiceMethodDelivery = "Delivery"
)

// Size synonym tokens recognised in order text. Matching happens on
// normalized (lowercased, accent-stripped) words.
var (
	SynonymsStandard = []string{"standard", "normal", "regular", "medium", "m", "30cm"}
	SynonymsSmall    = []string{"small", "s", "25cm"}
	SynonymsLarge    = []string{"large", "big", "l", "xl", "35cm"}
)

// DefaultDealPriority is the vendor-profile deal order: weekday specials
// first, then carryout bundles, then the size-specific double deals. The
// optimizer walks this list top to bottom, so earlier deals claim items first.
var DefaultDealPriority = []string{
	"N054", // Crazy Weekday
	"L097", // Take 3 Away
	"N050", // Double Deal S
	"N051", // Double Deal M
	"N052", // Double Deal L
}
