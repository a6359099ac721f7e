package forge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// dropBuild hands file to the drop zone's hidden file input, which is what a
// drag-and-drop onto the widget feeds as well.
func (m *Manager) dropBuild(ctx context.Context, file string) error {
	if err := m.page.WaitPresent(ctx, m.site.DropzoneInput, m.site.Timeout); err != nil {
		return newError(KindDropzoneNotFound, "could not find the build upload drop zone", err)
	}
	if err := m.page.SetUploadFiles(ctx, m.site.DropzoneInput, []string{file}); err != nil {
		return newError(KindDropzoneNotFound, "could not add the build to the drop zone", err)
	}
	m.logger.Debugw("forge_build_dropped", "file", file)
	return nil
}

type dropzoneChecks struct {
	page Page
	site Site
}

// toastError fails when an error toast shows up shortly after submitting.
func (c dropzoneChecks) toastError(ctx context.Context) error {
	err := c.page.WaitVisible(ctx, c.site.ToastError, c.site.ProbeTimeout)
	if errors.Is(err, ErrElementTimeout) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check upload toast: %w", err)
	}
	msg, _ := c.page.Text(ctx, c.site.ToastMessage)
	return newError(KindUploadToastError, "upload failed: "+describe(msg, "the forge reported an error"), nil)
}

// uploadError fails when the drop zone marks the file as rejected.
func (c dropzoneChecks) uploadError(ctx context.Context) error {
	err := c.page.WaitVisible(ctx, c.site.DropzoneError, c.site.ProbeTimeout)
	if errors.Is(err, ErrElementTimeout) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("check drop zone error: %w", err)
	}
	msg, _ := c.page.Text(ctx, c.site.DropzoneErrorText)
	return newError(KindUploadRejected, "build rejected by the drop zone: "+describe(msg, "no reason given"), nil)
}

// uploadPercentage waits for the progress bar to reach UploadComplete.
func (c dropzoneChecks) uploadPercentage(ctx context.Context) error {
	deadline := time.Now().Add(c.site.Timeout)
	ticker := time.NewTicker(c.site.PollInterval)
	defer ticker.Stop()

	last := ""
	var lastErr error
	for {
		width, err := c.page.InlineStyle(ctx, c.site.UploadProgress, "width")
		if err == nil {
			last = strings.TrimSpace(width)
			if last == c.site.UploadComplete {
				return nil
			}
		}
		lastErr = err

		if !time.Now().Before(deadline) {
			msg := fmt.Sprintf("build upload did not complete (progress %s)", describe(last, "unknown"))
			return newError(KindUploadIncomplete, msg, lastErr)
		}
		select {
		case <-ctx.Done():
			return newError(KindUploadIncomplete, "build upload interrupted", ctx.Err())
		case <-ticker.C:
		}
	}
}

func describe(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
