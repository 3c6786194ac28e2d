package eu

import (
	"strings"
	"testing"

	"github.com/go-test/deep"
)

const mapIndex = `<!DOCTYPE html>
<html><body>
<table>
<tr><td><a href="?map=12">Boombox</a></td><td>CTF</td></tr>
<tr><td><a href="?map=7">Gamepad &amp; Co</a></td><td>CTF</td></tr>
<tr><td><a href="?map=7&amp;page=2">duplicate</a></td></tr>
<tr><td><a href="?match=3000">not a map</a></td></tr>
<tr><td><a href="?map=x">bad id</a></td></tr>
</table>
</body></html>`

func TestParseMapHTML(t *testing.T) {
	names, err := parseMapHTML(strings.NewReader(mapIndex))
	if err != nil {
		t.Fatal(err)
	}
	expected := map[int]string{
		12: "Boombox",
		7:  "Gamepad & Co",
	}
	if diff := deep.Equal(names, expected); diff != nil {
		t.Error(diff)
	}
}

func TestParseMapHTMLNoLinks(t *testing.T) {
	if _, err := parseMapHTML(strings.NewReader("<html><body><p>maintenance</p></body></html>")); err == nil {
		t.Error("expected an error for a page without map links")
	}
}
