package dom

import (
	"strings"
	"testing"
)

func parseTest(t *testing.T, html string) Surface {
	t.Helper()
	s, err := ParseSurface("https://example.com/page", strings.NewReader(html))
	if err != nil {
		t.Fatalf("ParseSurface: %v", err)
	}
	return s
}

func TestNormalizeSpace(t *testing.T) {
	cases := []struct{ in, want string }{
		{"  a  b ", "a b"},
		{"a\n\tb\r\nc", "a b c"},
		{"", ""},
		{"   ", ""},
		{"single", "single"},
	}
	for _, c := range cases {
		if got := NormalizeSpace(c.in); got != c.want {
			t.Errorf("NormalizeSpace(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestPatternCaseInsensitive(t *testing.T) {
	re := Pattern(`\bskp\b`)
	if !re.MatchString("SKP 100") {
		t.Error("pattern must match regardless of case")
	}
	if re.MatchString("SKP100") {
		t.Error("whole-word pattern must not match inside a token")
	}
}

func TestPatternInvalidMatchesNothing(t *testing.T) {
	re := Pattern(`[unclosed`)
	if re.MatchString("anything at all") {
		t.Error("invalid pattern must match nothing")
	}
}

func TestFindDocumentOrder(t *testing.T) {
	s := parseTest(t, `<html><body>
		<div><span id="a">one</span></div>
		<span id="b">two</span>
		<p><span id="c">three</span></p>
	</body></html>`)

	spans := s.Find("span")
	if len(spans) != 3 {
		t.Fatalf("found %d spans, want 3", len(spans))
	}
	want := []string{"a", "b", "c"}
	for i, n := range spans {
		if n.Attr("id") != want[i] {
			t.Errorf("span %d id = %q, want %q", i, n.Attr("id"), want[i])
		}
	}
}

func TestSelectorGroups(t *testing.T) {
	s := parseTest(t, `<html><body>
		<a href="/x">link</a>
		<button>press</button>
	</body></html>`)

	if got := len(s.Find("a, button")); got != 2 {
		t.Errorf("grouped selector found %d, want 2", got)
	}
}

func TestTextAndAttr(t *testing.T) {
	s := parseTest(t, `<html><body><a href="/parts/1">SKP <b>100</b></a></body></html>`)

	a, ok := s.First("a")
	if !ok {
		t.Fatal("anchor not found")
	}
	if got := NormalizeSpace(a.Text()); got != "SKP 100" {
		t.Errorf("Text = %q, want descendant text included", got)
	}
	if a.Attr("href") != "/parts/1" {
		t.Errorf("href = %q", a.Attr("href"))
	}
	if a.Attr("missing") != "" {
		t.Errorf("absent attribute must be empty, got %q", a.Attr("missing"))
	}
}

func TestSiblingAndParentWalk(t *testing.T) {
	s := parseTest(t, `<html><body><table><tr><th>Bore</th><td>35mm</td></tr></table></body></html>`)

	th, ok := s.First("th")
	if !ok {
		t.Fatal("th not found")
	}

	next, ok := th.Next()
	if !ok {
		t.Fatal("th must have a td sibling")
	}
	if NormalizeSpace(next.Text()) != "35mm" {
		t.Errorf("sibling text = %q", next.Text())
	}

	parent, ok := th.Parent()
	if !ok {
		t.Fatal("th must have a parent")
	}
	if !parent.Matches("tr") {
		t.Errorf("parent should match tr")
	}

	if _, ok := next.Next(); ok {
		t.Error("last cell must have no next sibling")
	}
}

func TestFindExcludesSelf(t *testing.T) {
	s := parseTest(t, `<html><body><div class="row"><div class="row">inner</div></div></body></html>`)

	outer := s.Find(".row")[0]
	matches := outer.Find(".row")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want only the descendant", len(matches))
	}
	if NormalizeSpace(matches[0].Text()) != "inner" {
		t.Errorf("matched %q, want inner", matches[0].Text())
	}
}

func TestStaticClickUnsupported(t *testing.T) {
	s := parseTest(t, `<html><body><button>go</button></body></html>`)

	b, _ := s.First("button")
	if err := b.Click(); err != ErrNoInteraction {
		t.Errorf("Click = %v, want ErrNoInteraction", err)
	}
}

func TestSurfaceURL(t *testing.T) {
	s := parseTest(t, `<html><body></body></html>`)
	if s.URL() != "https://example.com/page" {
		t.Errorf("URL = %q", s.URL())
	}
}
