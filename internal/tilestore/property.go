package tilestore

// PropertyType is the closed set of tag keys understood by the renderer.
// The declaration order is the classification priority order.
type PropertyType uint8

const (
	PropHighway PropertyType = iota
	PropWater
	PropBoundary
	PropAdminLevel
	PropPlace
	PropRailway
	PropNatural
	PropLanduse
	PropBuilding
	PropLeisure
	PropAmenity
	PropName

	numPropertyTypes
)

var propertyTypeNames = [numPropertyTypes]string{
	PropHighway:    "highway",
	PropWater:      "water",
	PropBoundary:   "boundary",
	PropAdminLevel: "admin_level",
	PropPlace:      "place",
	PropRailway:    "railway",
	PropNatural:    "natural",
	PropLanduse:    "landuse",
	PropBuilding:   "building",
	PropLeisure:    "leisure",
	PropAmenity:    "amenity",
	PropName:       "name",
}

var propertyTypeByName = func() map[string]PropertyType {
	m := make(map[string]PropertyType, numPropertyTypes)
	for i, name := range propertyTypeNames {
		m[name] = PropertyType(i)
	}
	return m
}()

func (t PropertyType) String() string {
	if t < numPropertyTypes {
		return propertyTypeNames[t]
	}
	return "unknown"
}

// ParsePropertyType resolves a key string. The lookup does not allocate.
func ParsePropertyType(key []byte) (PropertyType, bool) {
	t, ok := propertyTypeByName[string(key)]
	return t, ok
}

// ValueCode is a dense code over the closed value vocabulary. Ranges used by
// the classifier (road classes, land-use groups) are contiguous.
type ValueCode uint8

const (
	ValueUnknown ValueCode = iota

	// road classes
	ValueMotorway
	ValueMotorwayLink
	ValueTrunk
	ValueTrunkLink
	ValuePrimary
	ValuePrimaryLink
	ValueSecondary
	ValueSecondaryLink
	ValueTertiary
	ValueTertiaryLink
	ValueUnclassified
	ValueRoad
	// residential closes the road range and opens the built-up land-use range
	ValueResidential
	ValueCemetery
	ValueIndustrial
	ValueCommercial
	ValueSquare
	ValueConstruction
	ValueMilitary
	ValueQuarry
	ValueBrownfield

	// open land
	ValueFarm
	ValueMeadow
	ValueGrass
	ValueGreenfield
	ValueRecreationGround
	ValueWinterSports
	ValueAllotments

	ValueReservoir
	ValueBasin

	ValueForest
	ValueOrchard

	ValueAdministrative

	// place sizes
	ValueCity
	ValueTown
	ValueVillage
	ValueLocality
	ValueHamlet
	ValueSuburb

	// natural kinds
	ValueWood
	ValueScrub
	ValueWater
	ValueWetland
	ValueBay
	ValueGrassland
	ValueHeath
	ValueBeach
	ValueSand
	ValueBareRock

	// ValueTwo is the literal "2", kept apart for admin_level checks.
	ValueTwo

	// ValueFreeform marks a value carrying its raw string.
	ValueFreeform

	numValueCodes
)

var valueNames = [numValueCodes]string{
	ValueUnknown:          "",
	ValueMotorway:         "motorway",
	ValueMotorwayLink:     "motorway_link",
	ValueTrunk:            "trunk",
	ValueTrunkLink:        "trunk_link",
	ValuePrimary:          "primary",
	ValuePrimaryLink:      "primary_link",
	ValueSecondary:        "secondary",
	ValueSecondaryLink:    "secondary_link",
	ValueTertiary:         "tertiary",
	ValueTertiaryLink:     "tertiary_link",
	ValueUnclassified:     "unclassified",
	ValueRoad:             "road",
	ValueResidential:      "residential",
	ValueCemetery:         "cemetery",
	ValueIndustrial:       "industrial",
	ValueCommercial:       "commercial",
	ValueSquare:           "square",
	ValueConstruction:     "construction",
	ValueMilitary:         "military",
	ValueQuarry:           "quarry",
	ValueBrownfield:       "brownfield",
	ValueFarm:             "farm",
	ValueMeadow:           "meadow",
	ValueGrass:            "grass",
	ValueGreenfield:       "greenfield",
	ValueRecreationGround: "recreation_ground",
	ValueWinterSports:     "winter_sports",
	ValueAllotments:       "allotments",
	ValueReservoir:        "reservoir",
	ValueBasin:            "basin",
	ValueForest:           "forest",
	ValueOrchard:          "orchard",
	ValueAdministrative:   "administrative",
	ValueCity:             "city",
	ValueTown:             "town",
	ValueVillage:          "village",
	ValueLocality:         "locality",
	ValueHamlet:           "hamlet",
	ValueSuburb:           "suburb",
	ValueWood:             "wood",
	ValueScrub:            "scrub",
	ValueWater:            "water",
	ValueWetland:          "wetland",
	ValueBay:              "bay",
	ValueGrassland:        "grassland",
	ValueHeath:            "heath",
	ValueBeach:            "beach",
	ValueSand:             "sand",
	ValueBareRock:         "bare_rock",
	ValueTwo:              "2",
	ValueFreeform:         "",
}

// vocabulary excludes "2" and the sentinels; those are resolved separately.
var valueByName = func() map[string]ValueCode {
	m := make(map[string]ValueCode, numValueCodes)
	for code := ValueMotorway; code < ValueTwo; code++ {
		m[valueNames[code]] = code
	}
	return m
}()

func (c ValueCode) String() string {
	switch {
	case c == ValueFreeform:
		return "freeform"
	case c < numValueCodes:
		return valueNames[c]
	default:
		return "unknown"
	}
}

// Between reports whether c lies in the inclusive vocabulary range [lo, hi].
func (c ValueCode) Between(lo, hi ValueCode) bool {
	return c >= lo && c <= hi
}

// PropertyValue is either a known vocabulary code or a freeform string
// owned by the value.
type PropertyValue struct {
	code ValueCode
	text string
}

// Known wraps a vocabulary code.
func Known(code ValueCode) PropertyValue {
	return PropertyValue{code: code}
}

// Freeform wraps a raw string that is not part of the vocabulary.
func Freeform(text string) PropertyValue {
	return PropertyValue{code: ValueFreeform, text: text}
}

func (v PropertyValue) Code() ValueCode { return v.code }

func (v PropertyValue) IsFreeform() bool { return v.code == ValueFreeform }

// Text returns the freeform payload, or the vocabulary spelling for known values.
func (v PropertyValue) Text() string {
	if v.code == ValueFreeform {
		return v.text
	}
	return v.code.String()
}

// ParsePropertyValue resolves a value string. Exactly one case applies:
// a vocabulary entry, the literal "2", or a freeform copy of raw.
// Values of the name key are always freeform.
func ParsePropertyValue(key PropertyType, raw []byte) PropertyValue {
	if key == PropName {
		return Freeform(string(raw))
	}
	if code, ok := valueByName[string(raw)]; ok {
		return Known(code)
	}
	if len(raw) == 1 && raw[0] == '2' {
		return Known(ValueTwo)
	}
	return Freeform(string(raw))
}

// Properties maps each PropertyType to at most one value. Iteration with
// Each follows PropertyType order.
type Properties struct {
	set    uint16
	values [numPropertyTypes]PropertyValue
}

// Set stores v under t unless t already holds a value. It reports whether
// the value was stored.
func (p *Properties) Set(t PropertyType, v PropertyValue) bool {
	if t >= numPropertyTypes || p.Has(t) {
		return false
	}
	p.set |= 1 << t
	p.values[t] = v
	return true
}

func (p *Properties) Has(t PropertyType) bool {
	return t < numPropertyTypes && p.set&(1<<t) != 0
}

func (p *Properties) Get(t PropertyType) (PropertyValue, bool) {
	if !p.Has(t) {
		return PropertyValue{}, false
	}
	return p.values[t], true
}

// Len returns the number of distinct keys present.
func (p *Properties) Len() int {
	n := 0
	for s := p.set; s != 0; s &= s - 1 {
		n++
	}
	return n
}

// Each calls fn for every present key in PropertyType order until fn
// returns false.
func (p *Properties) Each(fn func(PropertyType, PropertyValue) bool) {
	for t := PropertyType(0); t < numPropertyTypes; t++ {
		if p.set&(1<<t) == 0 {
			continue
		}
		if !fn(t, p.values[t]) {
			return
		}
	}
}

// Reset clears all keys.
func (p *Properties) Reset() {
	*p = Properties{}
}
