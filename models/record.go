package models

// PartLink is a clickable element believed to represent a named part,
// matched by text pattern within a buyers-guide row.
type PartLink struct {
	// Text is the link's visible text, trimmed.
	Text string

	// Href is the raw href/target of the element, possibly relative.
	// Empty for buttons and script-driven anchors.
	Href string
}

// PartRecord is the extracted detail for one part of a row.
// A row with no matching link still yields a PartRecord with all
// fields empty — never a nil record.
type PartRecord struct {
	// Part is the link's visible text (e.g. the SKP part number).
	Part string

	// URL is the absolute detail-page URL, or "" if resolution failed.
	URL string

	// Description is the normalized "Description" field of the detail page.
	Description string

	// Specs is the rendered specification map: "key: value | key: value",
	// in discovery order.
	Specs string
}

// OutputRow is one flattened record of the emitted dataset: the vehicle
// and engine read from the buyers-guide row plus the two part records.
type OutputRow struct {
	Vehicle     string
	Engine      string
	SKP         PartRecord
	Interchange PartRecord
}

// Header is the exact CSV header contract, in column order.
var Header = []string{
	"vehicle", "engine",
	"skpPart", "skpUrl", "skpDescription", "skpSpecs",
	"interchangePart", "interchangeUrl", "interchangeDescription", "interchangeSpecs",
}

// Fields flattens the row into the ten CSV columns, matching Header.
func (r OutputRow) Fields() []string {
	return []string{
		r.Vehicle, r.Engine,
		r.SKP.Part, r.SKP.URL, r.SKP.Description, r.SKP.Specs,
		r.Interchange.Part, r.Interchange.URL, r.Interchange.Description, r.Interchange.Specs,
	}
}
