package extract

import (
	"github.com/use-agent/buyersguide/dom"
	"github.com/use-agent/buyersguide/models"
)

// SpecTablePattern matches the specification table by its visible text.
const SpecTablePattern = `spec`

// Specifications merges all discoverable key/value specification pairs
// on the detail surface into one ordered map.
//
// Source 1 is the first table whose visible text matches "spec": every
// row with at least two cells contributes cell 0 as key and cell 1 as
// value. Source 2 is definition-list markup: each dt's value is its
// immediately following sibling's text. Source 2 is applied second, so
// on key conflict the definition list wins.
func Specifications(s dom.Surface) *models.SpecMap {
	specs := models.NewSpecMap()
	re := dom.Pattern(SpecTablePattern)

	for _, tbl := range s.Find("table") {
		if !re.MatchString(tbl.Text()) {
			continue
		}
		for _, row := range tbl.Find("tr") {
			cells := row.Find("th, td")
			if len(cells) < 2 {
				continue
			}
			key := dom.NormalizeSpace(cells[0].Text())
			if key == "" {
				continue
			}
			specs.Set(key, dom.NormalizeSpace(cells[1].Text()))
		}
		break
	}

	for _, dt := range s.Find("dt") {
		key := dom.NormalizeSpace(dt.Text())
		if key == "" {
			continue
		}
		value := ""
		if sib, ok := dt.Next(); ok {
			value = dom.NormalizeSpace(sib.Text())
		}
		specs.Set(key, value)
	}

	return specs
}
