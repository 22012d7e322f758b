package extract

import "testing"

func firstRow(t *testing.T, htmlStr string) Table {
	t.Helper()
	s := parse(t, htmlStr)
	tbl := ResolveTable(s)
	if len(tbl.Rows) == 0 {
		t.Fatal("fixture yielded no rows")
	}
	return tbl
}

func TestFindPartLink_AnchorWholeWord(t *testing.T) {
	tbl := firstRow(t, `
<html><body><table><tbody>
<tr>
  <td>Vehicle here</td>
  <td><a href="/parts/991">SKP 991</a> <a href="/x">Interchange 45</a></td>
</tr>
</tbody></table></body></html>`)

	link := FindPartLink(tbl.Rows[0], SKPPattern)
	if link == nil {
		t.Fatal("expected a link")
	}
	if link.Text != "SKP 991" || link.Href != "/parts/991" {
		t.Errorf("link = %+v", link)
	}

	inter := FindPartLink(tbl.Rows[0], InterchangePattern)
	if inter == nil || inter.Href != "/x" {
		t.Fatalf("interchange link = %+v", inter)
	}
}

func TestFindPartLink_NoWholeWordMatch(t *testing.T) {
	// "SKP12345" has no word boundary between the label and the digits.
	tbl := firstRow(t, `
<html><body><table><tbody>
<tr><td><a href="/p">SKP12345</a></td></tr>
</tbody></table></body></html>`)

	if link := FindPartLink(tbl.Rows[0], SKPPattern); link != nil {
		t.Errorf("expected nil, got %+v", link)
	}
}

func TestFindPartLink_AnchorPreferredOverButton(t *testing.T) {
	tbl := firstRow(t, `
<html><body><table><tbody>
<tr><td><button>SKP open</button><a href="/p/9">SKP 9</a></td></tr>
</tbody></table></body></html>`)

	link := FindPartLink(tbl.Rows[0], SKPPattern)
	if link == nil || link.Href != "/p/9" {
		t.Fatalf("expected the anchor, got %+v", link)
	}
}

func TestFindPartLink_ButtonFallbackHasNoHref(t *testing.T) {
	tbl := firstRow(t, `
<html><body><table><tbody>
<tr><td><button>SKP 77</button></td></tr>
</tbody></table></body></html>`)

	link := FindPartLink(tbl.Rows[0], SKPPattern)
	if link == nil {
		t.Fatal("expected the button fallback")
	}
	if link.Text != "SKP 77" || link.Href != "" {
		t.Errorf("link = %+v", link)
	}
}

func TestFindPartLink_Absent(t *testing.T) {
	tbl := firstRow(t, `
<html><body><table><tbody>
<tr><td>no links at all</td></tr>
</tbody></table></body></html>`)

	if link := FindPartLink(tbl.Rows[0], SKPPattern); link != nil {
		t.Errorf("expected nil, got %+v", link)
	}
}

func TestExpandHidden_IgnoresStaticClickFailures(t *testing.T) {
	tbl := firstRow(t, `
<html><body><table><tbody>
<tr>
  <td><button class="collapsed">Expand</button><a href="/p/3">SKP 3</a></td>
</tr>
</tbody></table></body></html>`)

	// Static surfaces reject clicks; that must never be fatal.
	ExpandHidden(tbl.Rows[0])

	if link := FindPartLink(tbl.Rows[0], SKPPattern); link == nil {
		t.Error("row should still resolve after a failed expand")
	}
}
