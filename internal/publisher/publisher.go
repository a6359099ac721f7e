package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"forge-build-publisher/config"
	"forge-build-publisher/db"
	"forge-build-publisher/internal/browser"
	"forge-build-publisher/internal/forge"
	"forge-build-publisher/internal/history"
	"forge-build-publisher/internal/lock"
	"forge-build-publisher/internal/notify"
)

// Session is an open browser tab that must be closed on every path.
type Session interface {
	Page() forge.Page
	Close() error
}

type OpenSessionFunc func(ctx context.Context, logger *zap.SugaredLogger) (Session, error)

type chromeSession struct{ *browser.Session }

func (s chromeSession) Page() forge.Page { return s.Session.Page() }

// ChromeOpener launches or attaches to Chrome according to the Chrome config.
func ChromeOpener(cfg config.ChromeConfig) OpenSessionFunc {
	return func(ctx context.Context, logger *zap.SugaredLogger) (Session, error) {
		opts, err := browser.OptionsFromConfig(cfg)
		if err != nil {
			return nil, err
		}
		s, err := browser.Open(ctx, opts, logger)
		if err != nil {
			return nil, err
		}
		return chromeSession{s}, nil
	}
}

// Request overrides the configured target. Empty fields keep the config value.
type Request struct {
	ItemID    string
	BuildFile string
	BuildDir  string
	Channel   string
}

type Result struct {
	RunID     string
	ItemID    string
	BuildFile string
	Channel   forge.ReleaseChannel
	Duration  time.Duration
}

type buildNotifier interface {
	BuildPublished(ctx context.Context, data notify.BuildPublishedData) error
}

type Publisher struct {
	cfg      *config.Config
	locker   *lock.Locker
	store    *history.Store
	notifier buildNotifier
	logger   *zap.SugaredLogger

	openSession OpenSessionFunc
	site        func(timeout time.Duration) forge.Site
}

type NewParams struct {
	fx.In

	Cfg      *config.Config
	Locker   *lock.Locker
	Store    *history.Store
	Notifier *notify.Notifier
	Logger   *zap.SugaredLogger
}

func New(p NewParams) *Publisher {
	return &Publisher{
		cfg:         p.Cfg,
		locker:      p.Locker,
		store:       p.Store,
		notifier:    p.Notifier,
		logger:      p.Logger,
		openSession: ChromeOpener(p.Cfg.Chrome),
		site:        forge.DefaultSite,
	}
}

// target merges the request into the configured forge values.
func (p *Publisher) target(req Request) config.ForgeConfig {
	f := p.cfg.Forge
	if req.ItemID != "" {
		f.ItemID = req.ItemID
	}
	if req.BuildFile != "" {
		f.BuildFile = req.BuildFile
	}
	if req.BuildDir != "" {
		f.BuildDir = req.BuildDir
	}
	if req.Channel != "" {
		f.Channel = req.Channel
	}
	return f
}

// Publish uploads the build to the item and sets its release channel. The
// per-item lock and the run record span the browser work, so a browser that
// fails to start still leaves a failed run.
func (p *Publisher) Publish(ctx context.Context, req Request) (Result, error) {
	f := p.target(req)
	if err := f.Validate(); err != nil {
		return Result{}, err
	}

	creds, err := forge.NewCredentials(f.UserID, f.Username, f.Password, f.PasswordMD5)
	if err != nil {
		return Result{}, err
	}
	item, err := forge.NewItem(creds, f.ItemID)
	if err != nil {
		return Result{}, err
	}
	channel, err := forge.ParseReleaseChannel(f.Channel)
	if err != nil {
		return Result{}, err
	}

	file, err := forge.ResolveBuildFile(f.BuildDir, f.BuildFile)
	if err != nil {
		return Result{}, err
	}

	lease, err := p.locker.Acquire(ctx, item.ID)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := lease.Release(context.WithoutCancel(ctx)); err != nil {
			p.logger.Warnw("publish_lock_release_failed", "item_id", item.ID, "err", err)
		}
	}()

	run, err := p.store.Start(ctx, history.StartInput{ItemID: item.ID, BuildFile: file, Channel: channel.String()})
	if err != nil {
		return Result{}, fmt.Errorf("record run start: %w", err)
	}

	started := time.Now()
	p.logger.Infow("publish_started",
		"run_id", run.ID,
		"item_id", item.ID,
		"build_file", file,
		"channel", channel,
		"creds", creds,
	)

	runErr := p.drive(ctx, item, file, channel, f)
	res := Result{
		RunID:     run.ID,
		ItemID:    item.ID,
		BuildFile: file,
		Channel:   channel,
		Duration:  time.Since(started),
	}

	if _, err := p.store.Finish(context.WithoutCancel(ctx), run.ID, runErr); err != nil && !errors.Is(err, db.ErrHistoryDisabled) {
		p.logger.Errorw("history_finish_failed", "run_id", run.ID, "err", err)
	}

	if runErr != nil {
		p.logger.Errorw("publish_failed",
			"run_id", run.ID,
			"item_id", item.ID,
			"kind", string(forge.KindOf(runErr)),
			"duration", res.Duration.String(),
			"err", runErr,
		)
		return res, runErr
	}

	p.logger.Infow("publish_succeeded", "run_id", run.ID, "item_id", item.ID, "channel", channel, "duration", res.Duration.String())

	if err := p.notifier.BuildPublished(ctx, notify.BuildPublishedData{
		ItemID:    item.ID,
		BuildFile: file,
		Channel:   channel.String(),
		RunID:     run.ID,
	}); err != nil {
		p.logger.Errorw("notify_failed", "run_id", run.ID, "err", err)
	}
	return res, nil
}

func (p *Publisher) drive(ctx context.Context, item forge.Item, file string, channel forge.ReleaseChannel, f config.ForgeConfig) error {
	session, err := p.openSession(ctx, p.logger)
	if err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			p.logger.Warnw("browser_close_failed", "err", err)
		}
	}()

	urls := forge.URLs{ManageCraft: f.ManageURL, APICrafterItems: f.ItemsAPIURL}
	m := forge.NewManager(session.Page(), p.site(f.Timeout), urls, p.logger)
	return m.UploadAndPublish(ctx, item, file, channel)
}
