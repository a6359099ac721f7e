package forge

import (
	"testing"
	"time"
)

func TestDefaultSite_ProbeIsFractionOfTimeout(t *testing.T) {
	s := DefaultSite(15 * time.Second)
	if s.ProbeTimeout != 3*time.Second {
		t.Fatalf("probe timeout = %s", s.ProbeTimeout)
	}
	if DefaultSite(0).Timeout != 15*time.Second {
		t.Fatalf("expected default timeout")
	}
}

func TestSiteItemLink(t *testing.T) {
	s := DefaultSite(time.Second)
	tests := []struct {
		id   string
		want string
	}{
		{"1234", `//a[@data-item-id='1234']`},
		{`it's`, `//a[@data-item-id="it's"]`},
		{`a'b"c`, `//a[@data-item-id=concat('a',"'",'b"c')]`},
	}
	for _, tt := range tests {
		got := s.ItemLink(tt.id)
		if !got.XPath || got.Expr != tt.want {
			t.Errorf("ItemLink(%q) = %+v, want %s", tt.id, got, tt.want)
		}
	}
}

func TestLocatorString(t *testing.T) {
	if got := CSS("#a").String(); got != "css:#a" {
		t.Fatalf("got %q", got)
	}
	if got := XPath("//a").String(); got != "xpath://a" {
		t.Fatalf("got %q", got)
	}
}
