// Package browser owns the shared headless Chrome process. One browser and
// one browsing context are kept alive and reused across fetches; each fetch
// gets its own tab so navigations stay isolated from each other.
package browser

import (
	"context"
	"errors"
	"sync"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"
)

// Session manages a lazily launched browser process. Browser startup is the
// dominant latency cost of a fetch, so the process is reused until it
// disconnects, at which point the next acquisition relaunches it.
type Session struct {
	mu        sync.Mutex
	userAgent string

	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	closed        bool
}

func NewSession(userAgent string) *Session {
	return &Session{userAgent: userAgent}
}

// NewTab returns a fresh tab context bound to the shared browsing context,
// launching or relaunching the browser first if needed. The caller must
// invoke the returned cancel on every exit path.
func (s *Session) NewTab() (context.Context, context.CancelFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, errors.New("browser session is shut down")
	}
	if err := s.ensureBrowserLocked(); err != nil {
		return nil, nil, err
	}
	tab, cancel := chromedp.NewContext(s.browserCtx)
	return tab, cancel, nil
}

func (s *Session) ensureBrowserLocked() error {
	if s.browserCtx != nil && s.browserCtx.Err() == nil {
		return nil
	}
	if s.browserCtx != nil {
		logrus.Warn("browser disconnected, relaunching")
		s.teardownLocked()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(s.userAgent),
	)
	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), opts...)
	s.browserCtx, s.browserCancel = chromedp.NewContext(s.allocCtx)

	// Run with no actions forces the browser process to start now, so a
	// broken Chrome install surfaces here instead of mid-fetch.
	if err := chromedp.Run(s.browserCtx); err != nil {
		s.teardownLocked()
		return err
	}
	logrus.Info("launched headless browser")
	return nil
}

func (s *Session) teardownLocked() {
	if s.browserCancel != nil {
		s.browserCancel()
		s.browserCancel = nil
		s.browserCtx = nil
	}
	if s.allocCancel != nil {
		s.allocCancel()
		s.allocCancel = nil
		s.allocCtx = nil
	}
}

// Shutdown closes the browsing context, then the browser process. Safe to
// call more than once and before the browser was ever launched.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.teardownLocked()
	logrus.Info("browser session shut down")
}
