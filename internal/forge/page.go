package forge

import (
	"context"
	"time"
)

// Page is the slice of a browser tab the publisher drives. Waits return
// ErrElementTimeout when the element does not reach the wanted state in time.
type Page interface {
	Navigate(ctx context.Context, url string) error

	WaitPresent(ctx context.Context, loc Locator, timeout time.Duration) error
	WaitVisible(ctx context.Context, loc Locator, timeout time.Duration) error
	WaitClickable(ctx context.Context, loc Locator, timeout time.Duration) error

	SendKeys(ctx context.Context, loc Locator, text string) error
	Submit(ctx context.Context, loc Locator) error
	Click(ctx context.Context, loc Locator) error
	// SelectOption picks the option whose visible text is text in the nth
	// element matching loc. Other matches are left alone.
	SelectOption(ctx context.Context, loc Locator, nth int, text string) error
	Text(ctx context.Context, loc Locator) (string, error)
	InlineStyle(ctx context.Context, loc Locator, property string) (string, error)
	SetUploadFiles(ctx context.Context, loc Locator, files []string) error
}
