package forge

import (
	"fmt"
	"strings"
	"time"
)

// Locator addresses elements either by CSS selector or by XPath.
type Locator struct {
	Expr  string
	XPath bool
}

func CSS(expr string) Locator   { return Locator{Expr: expr} }
func XPath(expr string) Locator { return Locator{Expr: expr, XPath: true} }

func (l Locator) String() string {
	if l.XPath {
		return "xpath:" + l.Expr
	}
	return "css:" + l.Expr
}

// Site is every wait ceiling and selector the publisher depends on. The forge
// markup is an unversioned contract; when it changes, this is the one place to edit.
type Site struct {
	Timeout      time.Duration
	ProbeTimeout time.Duration
	PollInterval time.Duration

	LoginForm     Locator
	LoginUsername Locator
	LoginPassword Locator

	ItemsTableLength Locator
	ItemsPerPage     string

	// ItemLinkXPath is formatted with an XPath string literal of the item id.
	ItemLinkXPath string

	DropzoneInput     Locator
	SubmitBuild       Locator
	ToastError        Locator
	ToastMessage      Locator
	DropzoneError     Locator
	DropzoneErrorText Locator
	UploadProgress    Locator
	UploadComplete    string

	ChannelSelect Locator
}

func DefaultSite(timeout time.Duration) Site {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return Site{
		Timeout:      timeout,
		ProbeTimeout: timeout / 5,
		PollInterval: 250 * time.Millisecond,

		LoginForm:     CSS("#login-form"),
		LoginUsername: CSS(`input[name="vb_login_username"]`),
		LoginPassword: CSS(`input[name="vb_login_password"]`),

		ItemsTableLength: CSS(`select[name="items-table_length"]`),
		ItemsPerPage:     "100",

		ItemLinkXPath: "//a[@data-item-id=%s]",

		DropzoneInput:     CSS("input.dz-hidden-input"),
		SubmitBuild:       CSS("#submit-build-button"),
		ToastError:        CSS(".toast-error"),
		ToastMessage:      CSS(".toast-error .toast-message"),
		DropzoneError:     CSS(".dz-error-message"),
		DropzoneErrorText: CSS(".dz-error-message span"),
		UploadProgress:    CSS(".dz-upload"),
		UploadComplete:    "100%",

		ChannelSelect: XPath("//select[@class='form-control item-build-channel item-build-option']"),
	}
}

func (s Site) ItemLink(itemID string) Locator {
	return XPath(fmt.Sprintf(s.ItemLinkXPath, xpathLiteral(itemID)))
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, 2*len(parts))
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ",") + ")"
}
