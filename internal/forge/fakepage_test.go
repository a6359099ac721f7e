package forge

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type selection struct {
	loc  Locator
	nth  int
	text string
}

// fakePage is a scripted Page. Elements listed in present satisfy every wait;
// everything else times out.
type fakePage struct {
	present map[string]bool
	texts   map[string]string
	widths  []string
	options map[string][]string
	navErr  error

	calls    []string
	keys     map[string]string
	clicks   []Locator
	submits  []Locator
	selected []selection
	uploads  [][]string
}

func newFakePage() *fakePage {
	return &fakePage{
		present: map[string]bool{},
		texts:   map[string]string{},
		options: map[string][]string{},
		keys:    map[string]string{},
	}
}

func (p *fakePage) with(locs ...Locator) *fakePage {
	for _, l := range locs {
		p.present[l.String()] = true
	}
	return p
}

func (p *fakePage) record(format string, args ...any) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakePage) wait(kind string, loc Locator) error {
	p.record("%s %s", kind, loc)
	if p.present[loc.String()] {
		return nil
	}
	return ErrElementTimeout
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.record("navigate %s", url)
	return p.navErr
}

func (p *fakePage) WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) error {
	return p.wait("present", loc)
}

func (p *fakePage) WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) error {
	return p.wait("visible", loc)
}

func (p *fakePage) WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) error {
	return p.wait("clickable", loc)
}

func (p *fakePage) SendKeys(ctx context.Context, loc Locator, text string) error {
	p.record("keys %s", loc)
	p.keys[loc.String()] = text
	return nil
}

func (p *fakePage) Submit(ctx context.Context, loc Locator) error {
	p.record("submit %s", loc)
	p.submits = append(p.submits, loc)
	return nil
}

func (p *fakePage) Click(ctx context.Context, loc Locator) error {
	p.record("click %s", loc)
	p.clicks = append(p.clicks, loc)
	return nil
}

func (p *fakePage) SelectOption(ctx context.Context, loc Locator, nth int, text string) error {
	p.record("select %s[%d]=%s", loc, nth, text)
	for _, o := range p.options[loc.String()] {
		if o == text {
			p.selected = append(p.selected, selection{loc: loc, nth: nth, text: text})
			return nil
		}
	}
	return ErrNoSuchOption
}

func (p *fakePage) Text(ctx context.Context, loc Locator) (string, error) {
	p.record("text %s", loc)
	t, ok := p.texts[loc.String()]
	if !ok {
		return "", ErrNoSuchElement
	}
	return t, nil
}

func (p *fakePage) InlineStyle(ctx context.Context, loc Locator, property string) (string, error) {
	p.record("style %s %s", loc, property)
	if len(p.widths) == 0 {
		return "", ErrNoSuchElement
	}
	w := p.widths[0]
	if len(p.widths) > 1 {
		p.widths = p.widths[1:]
	}
	return w, nil
}

func (p *fakePage) SetUploadFiles(ctx context.Context, loc Locator, files []string) error {
	p.record("upload %s", loc)
	p.uploads = append(p.uploads, files)
	return nil
}

func (p *fakePage) count(prefix string) int {
	n := 0
	for _, c := range p.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

var _ Page = (*fakePage)(nil)
