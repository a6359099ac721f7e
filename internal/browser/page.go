package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"forge-build-publisher/internal/forge"
)

// Page drives a chromedp tab. Every call is bounded by either the wait
// ceiling it is given or actionTimeout, and by the caller's ctx.
type Page struct {
	ctx           context.Context
	actionTimeout time.Duration
}

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, p.actionTimeout, chromedp.Navigate(url))
}

func (p *Page) WaitPresent(ctx context.Context, loc forge.Locator, timeout time.Duration) error {
	return p.wait(ctx, timeout, chromedp.WaitReady(loc.Expr, queryOpts(loc)...))
}

func (p *Page) WaitVisible(ctx context.Context, loc forge.Locator, timeout time.Duration) error {
	return p.wait(ctx, timeout, chromedp.WaitVisible(loc.Expr, queryOpts(loc)...))
}

func (p *Page) WaitClickable(ctx context.Context, loc forge.Locator, timeout time.Duration) error {
	return p.wait(ctx, timeout,
		chromedp.WaitVisible(loc.Expr, queryOpts(loc)...),
		chromedp.WaitEnabled(loc.Expr, queryOpts(loc)...),
	)
}

func (p *Page) SendKeys(ctx context.Context, loc forge.Locator, text string) error {
	return p.run(ctx, p.actionTimeout, chromedp.SendKeys(loc.Expr, text, queryOpts(loc)...))
}

func (p *Page) Submit(ctx context.Context, loc forge.Locator) error {
	return p.run(ctx, p.actionTimeout, chromedp.Submit(loc.Expr, queryOpts(loc)...))
}

func (p *Page) Click(ctx context.Context, loc forge.Locator) error {
	opts := append(queryOpts(loc), chromedp.NodeVisible)
	return p.run(ctx, p.actionTimeout, chromedp.Click(loc.Expr, opts...))
}

func (p *Page) SelectOption(ctx context.Context, loc forge.Locator, nth int, text string) error {
	var res evalResult
	if err := p.run(ctx, p.actionTimeout, chromedp.Evaluate(selectOptionJS(loc, nth, text), &res)); err != nil {
		return err
	}
	switch {
	case !res.Found:
		return fmt.Errorf("%s[%d]: %w", loc, nth, forge.ErrNoSuchElement)
	case res.Value != "ok":
		return fmt.Errorf("%s[%d] option %q: %w", loc, nth, text, forge.ErrNoSuchOption)
	}
	return nil
}

func (p *Page) Text(ctx context.Context, loc forge.Locator) (string, error) {
	var res evalResult
	if err := p.run(ctx, p.actionTimeout, chromedp.Evaluate(textJS(loc), &res)); err != nil {
		return "", err
	}
	if !res.Found {
		return "", fmt.Errorf("%s: %w", loc, forge.ErrNoSuchElement)
	}
	return res.Value, nil
}

func (p *Page) InlineStyle(ctx context.Context, loc forge.Locator, property string) (string, error) {
	var res evalResult
	if err := p.run(ctx, p.actionTimeout, chromedp.Evaluate(inlineStyleJS(loc, property), &res)); err != nil {
		return "", err
	}
	if !res.Found {
		return "", fmt.Errorf("%s: %w", loc, forge.ErrNoSuchElement)
	}
	return res.Value, nil
}

func (p *Page) SetUploadFiles(ctx context.Context, loc forge.Locator, files []string) error {
	return p.run(ctx, p.actionTimeout, chromedp.SetUploadFiles(loc.Expr, files, queryOpts(loc)...))
}

// wait maps the wait ceiling elapsing to forge.ErrElementTimeout. A cancelled
// caller ctx is reported as such.
func (p *Page) wait(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	err := p.run(ctx, timeout, actions...)
	if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return forge.ErrElementTimeout
	}
	return err
}

func (p *Page) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

func queryOpts(loc forge.Locator) []chromedp.QueryOption {
	if loc.XPath {
		return []chromedp.QueryOption{chromedp.BySearch}
	}
	return []chromedp.QueryOption{chromedp.ByQuery}
}

type evalResult struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

// collectJS evaluates to an array of the elements matching loc, in document order.
func collectJS(loc forge.Locator) string {
	q := jsString(loc.Expr)
	if loc.XPath {
		return `(function(){const r=document.evaluate(` + q + `,document,null,XPathResult.ORDERED_NODE_SNAPSHOT_TYPE,null);` +
			`const a=[];for(let i=0;i<r.snapshotLength;i++){a.push(r.snapshotItem(i));}return a;})()`
	}
	return `Array.from(document.querySelectorAll(` + q + `))`
}

func selectOptionJS(loc forge.Locator, nth int, text string) string {
	return fmt.Sprintf(`(function(){
const el=%s[%d];
if(!el){return {found:false,value:""};}
const opt=Array.from(el.options||[]).find(o=>o.text.trim()===%s);
if(!opt){return {found:true,value:"missing"};}
el.value=opt.value;
el.dispatchEvent(new Event("input",{bubbles:true}));
el.dispatchEvent(new Event("change",{bubbles:true}));
return {found:true,value:"ok"};
})()`, collectJS(loc), nth, jsString(text))
}

func textJS(loc forge.Locator) string {
	return fmt.Sprintf(`(function(){const el=%s[0];return el?{found:true,value:(el.innerText||el.textContent||"").trim()}:{found:false,value:""};})()`,
		collectJS(loc))
}

func inlineStyleJS(loc forge.Locator, property string) string {
	return fmt.Sprintf(`(function(){const el=%s[0];return el?{found:true,value:el.style.getPropertyValue(%s)}:{found:false,value:""};})()`,
		collectJS(loc), jsString(property))
}

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

var _ forge.Page = (*Page)(nil)
