package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"forge-build-publisher/internal/pkg/chromedevtools"
)

// Session owns one Chrome tab. Close must be called on every path; it is safe
// to call more than once.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	page        *Page
	logger      *zap.SugaredLogger
	closed      bool
}

func Open(ctx context.Context, o Options, logger *zap.SugaredLogger) (*Session, error) {
	var (
		allocCtx    context.Context
		allocCancel context.CancelFunc
	)

	if o.RemoteURL != "" {
		if err := checkRemote(ctx, o.RemoteURL); err != nil {
			return nil, err
		}
		logger.Infow("chrome_connect_remote", "url", o.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, o.RemoteURL)
	} else {
		if o.ProfileDir != "" {
			if err := os.MkdirAll(o.ProfileDir, 0o755); err != nil {
				return nil, fmt.Errorf("create chrome profile dir: %w", err)
			}
		}
		logger.Infow("chrome_launch", "headless", o.Headless, "window", fmt.Sprintf("%dx%d", o.WindowWidth, o.WindowHeight))
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execAllocatorOptions(o)...)
	}

	tabCtx, tabCancel := chromedp.NewContext(allocCtx, chromedp.WithErrorf(logger.Debugf))
	acceptDialogs(tabCtx, logger)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	s := &Session{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		logger:      logger,
	}
	s.page = &Page{ctx: tabCtx, actionTimeout: o.ActionTimeout}
	return s, nil
}

func (s *Session) Page() *Page { return s.page }

func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	closeCtx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	err := chromedp.Cancel(closeCtx)
	s.cancel()
	s.allocCancel()
	if err != nil {
		s.logger.Debugw("chrome_close_failed", "err", err)
		return fmt.Errorf("close chrome: %w", err)
	}
	s.logger.Debugw("chrome_closed")
	return nil
}

// acceptDialogs dismisses alert/confirm dialogs, which would otherwise block
// every later action on the tab.
func acceptDialogs(tabCtx context.Context, logger *zap.SugaredLogger) {
	chromedp.ListenTarget(tabCtx, func(ev any) {
		e, ok := ev.(*cdppage.EventJavascriptDialogOpening)
		if !ok {
			return
		}
		logger.Warnw("chrome_dialog_accepted", "type", string(e.Type), "message", e.Message)
		go func() {
			if err := chromedp.Run(tabCtx, cdppage.HandleJavaScriptDialog(true)); err != nil {
				logger.Debugw("chrome_dialog_accept_failed", "err", err)
			}
		}()
	})
}

// checkRemote fails fast with a readable error when nothing listens at url.
func checkRemote(ctx context.Context, url string) error {
	versionURL := chromedevtools.VersionURLFromBase(url)
	if versionURL == "" {
		return nil
	}
	if _, err := chromedevtools.CheckReachable(ctx, versionURL, 3*time.Second); err != nil {
		return fmt.Errorf("Chrome DevTools not reachable at %s: %w", url, err)
	}
	return nil
}
