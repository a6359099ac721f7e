package forge

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Manager runs the item-management steps against one browser page. Steps are
// not retried; the first failure ends the run.
type Manager struct {
	page   Page
	site   Site
	urls   URLs
	logger *zap.SugaredLogger
}

func NewManager(page Page, site Site, urls URLs, logger *zap.SugaredLogger) *Manager {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Manager{page: page, site: site, urls: urls, logger: logger}
}

// Login opens the manage-craft page and signs in if the login form shows up.
// When no form appears within the wait ceiling the session is assumed to be
// authenticated already; nothing verifies that afterwards.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	if err := m.navigate(ctx, m.urls.ManageCraft); err != nil {
		return err
	}

	err := m.page.WaitPresent(ctx, m.site.LoginForm, m.site.Timeout)
	if errors.Is(err, ErrElementTimeout) {
		m.logger.Debugw("forge_login_form_absent", "timeout", m.site.Timeout)
		return nil
	}
	if err != nil {
		return fmt.Errorf("wait for login form: %w", err)
	}

	if err := m.page.SendKeys(ctx, m.site.LoginUsername, creds.Username); err != nil {
		return newError(KindLoginFormIncomplete, "could not fill the login username field", err)
	}
	if err := m.page.SendKeys(ctx, m.site.LoginPassword, creds.Password); err != nil {
		return newError(KindLoginFormIncomplete, "could not fill the login password field", err)
	}
	if err := m.page.Submit(ctx, m.site.LoginPassword); err != nil {
		return newError(KindLoginFormIncomplete, "could not submit the login form", err)
	}

	m.logger.Infow("forge_login_submitted", "user_id", creds.UserID)
	return nil
}

// OpenItemsList opens the manage-craft page and widens the items table so the
// target item is on the first page.
func (m *Manager) OpenItemsList(ctx context.Context) error {
	if err := m.navigate(ctx, m.urls.ManageCraft); err != nil {
		return err
	}

	if err := m.page.WaitPresent(ctx, m.site.ItemsTableLength, m.site.Timeout); err != nil {
		return newError(KindItemTableNotFound, "could not load the manage craft page", err)
	}
	if err := m.page.SelectOption(ctx, m.site.ItemsTableLength, 0, m.site.ItemsPerPage); err != nil {
		return newError(KindItemTableNotFound, "could not show "+m.site.ItemsPerPage+" items per page", err)
	}

	m.logger.Debugw("forge_items_list_opened", "per_page", m.site.ItemsPerPage)
	return nil
}

// OpenItemPage clicks the link for itemID in the items table.
func (m *Manager) OpenItemPage(ctx context.Context, itemID string) error {
	link := m.site.ItemLink(itemID)

	if err := m.page.WaitClickable(ctx, link, m.site.Timeout); err != nil {
		return newError(KindItemLinkNotFound, "could not find item page, is FG_ITEM_ID correct?", err)
	}
	if err := m.page.Click(ctx, link); err != nil {
		return newError(KindItemLinkNotFound, "could not open item page", err)
	}

	m.logger.Infow("forge_item_page_opened", "item_id", itemID)
	return nil
}

// AddBuild drops file onto the build upload widget, submits it and checks the
// page for upload failures in order: toast, drop zone, then progress.
func (m *Manager) AddBuild(ctx context.Context, file string) error {
	if err := m.dropBuild(ctx, file); err != nil {
		return err
	}

	if err := m.page.WaitClickable(ctx, m.site.SubmitBuild, m.site.Timeout); err != nil {
		return newError(KindSubmitNotFound, "could not find the submit build button", err)
	}
	if err := m.page.Click(ctx, m.site.SubmitBuild); err != nil {
		return newError(KindSubmitNotFound, "could not click the submit build button", err)
	}

	checks := dropzoneChecks{page: m.page, site: m.site}
	if err := checks.toastError(ctx); err != nil {
		return err
	}
	if err := checks.uploadError(ctx); err != nil {
		return err
	}
	if err := checks.uploadPercentage(ctx); err != nil {
		return err
	}

	m.logger.Infow("forge_build_uploaded", "file", file)
	return nil
}

// SetLatestBuildChannel assigns channel to the newest build, which is the
// first channel select on the item page.
func (m *Manager) SetLatestBuildChannel(ctx context.Context, channel ReleaseChannel) error {
	if err := m.page.WaitPresent(ctx, m.site.ChannelSelect, m.site.Timeout); err != nil {
		return newError(KindChannelSelectNotFound, "could not find the build channel selector, is FG_ITEM_ID correct?", err)
	}
	if err := m.page.SelectOption(ctx, m.site.ChannelSelect, 0, channel.String()); err != nil {
		if errors.Is(err, ErrNoSuchOption) {
			return newError(KindChannelOptionNotFound, fmt.Sprintf("build channel %q is not offered", channel), err)
		}
		return newError(KindChannelSelectNotFound, "could not set the build channel", err)
	}

	m.logger.Infow("forge_build_channel_set", "channel", channel.String())
	return nil
}

// SetLatestBuildLive is SetLatestBuildChannel(ctx, ChannelLive).
func (m *Manager) SetLatestBuildLive(ctx context.Context) error {
	return m.SetLatestBuildChannel(ctx, ChannelLive)
}

// UploadAndPublish runs login, items list, item page, upload and channel
// selection in that order.
func (m *Manager) UploadAndPublish(ctx context.Context, item Item, file string, channel ReleaseChannel) error {
	if err := m.Login(ctx, item.Creds); err != nil {
		return err
	}
	if err := m.OpenItemsList(ctx); err != nil {
		return err
	}
	if err := m.OpenItemPage(ctx, item.ID); err != nil {
		return err
	}
	if err := m.AddBuild(ctx, file); err != nil {
		return err
	}
	return m.SetLatestBuildChannel(ctx, channel)
}

func (m *Manager) navigate(ctx context.Context, url string) error {
	if err := m.page.Navigate(ctx, url); err != nil {
		return newError(KindNavigationFailed, "could not open "+url, err)
	}
	return nil
}
