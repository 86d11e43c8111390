// Package rod implements the rendered fetch path on a single DevTools
// session driven by go-rod.
package rod

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fwojciec/coinscrape"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// DefaultMaxNavigations is the default number of loads before the session
// page is replaced.
const DefaultMaxNavigations = 50

// Session owns one renderer connection and one page. Navigations are
// serialised by a mutex, so a Session is safe to share but never loads two
// pages at once.
//
// The page is replaced after maxNavigations loads and after any failed
// load. Failing to connect or to create a page returns ERENDERER.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page

	controlURL     string
	headless       bool
	stealth        bool
	settle         time.Duration
	maxNavigations int
	navigations    int

	mu     sync.Mutex
	closed atomic.Bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithControlURL connects to an already running renderer instead of
// launching a local browser. Accepts a ws:// DevTools URL or an http://
// endpoint that resolves to one.
func WithControlURL(u string) SessionOption {
	return func(s *Session) {
		s.controlURL = u
	}
}

// WithHeadless controls whether a locally launched browser is headless.
func WithHeadless(headless bool) SessionOption {
	return func(s *Session) {
		s.headless = headless
	}
}

// WithStealth injects the stealth evasions into every page the session
// creates.
func WithStealth(enabled bool) SessionOption {
	return func(s *Session) {
		s.stealth = enabled
	}
}

// WithMaxNavigations sets the number of loads before the page is replaced.
func WithMaxNavigations(n int) SessionOption {
	return func(s *Session) {
		s.maxNavigations = n
	}
}

// WithSettle adds a wait after the load event for client side rendering.
func WithSettle(d time.Duration) SessionOption {
	return func(s *Session) {
		s.settle = d
	}
}

// NewSession connects to the renderer and opens the session page.
// Close must be called when the Session is no longer needed.
func NewSession(opts ...SessionOption) (*Session, error) {
	s := &Session{
		headless:       true,
		maxNavigations: DefaultMaxNavigations,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.connect(); err != nil {
		return nil, err
	}
	if err := s.openPage(); err != nil {
		_ = s.closeBrowser()
		return nil, err
	}
	return s, nil
}

// Navigate loads url in the session page and returns the rendered source.
func (s *Session) Navigate(ctx context.Context, url string) (string, error) {
	if s.closed.Load() {
		return "", coinscrape.Errorf(coinscrape.EINVALID, "session closed")
	}
	if err := ctx.Err(); err != nil {
		return "", contextError(err, url)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return "", coinscrape.Errorf(coinscrape.EINVALID, "session closed")
	}

	if s.page == nil || (s.maxNavigations > 0 && s.navigations >= s.maxNavigations) {
		s.closePage()
		if err := s.openPage(); err != nil {
			return "", err
		}
	}

	html, err := s.load(ctx, url)
	if err != nil {
		// The page may be mid-navigation; start the next load on a fresh one.
		s.closePage()
		return "", err
	}
	s.navigations++
	return html, nil
}

// Close releases the page, the connection and any launched browser.
// Close is safe to call multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closePage()
	return s.closeBrowser()
}

// LauncherPID returns the process ID of a locally launched browser, or 0.
// This method exists for testing purposes to verify proper cleanup.
func (s *Session) LauncherPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.launcher == nil {
		return 0
	}
	return s.launcher.PID()
}

// load must be called with mu held.
func (s *Session) load(ctx context.Context, url string) (string, error) {
	page := s.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", navigationError(ctx, err, url)
	}
	if err := page.WaitLoad(); err != nil {
		return "", navigationError(ctx, err, url)
	}

	if s.settle > 0 {
		t := time.NewTimer(s.settle)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", contextError(ctx.Err(), url)
		case <-t.C:
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", navigationError(ctx, err, url)
	}
	return html, nil
}

func (s *Session) connect() error {
	u := s.controlURL
	if u != "" {
		resolved, err := launcher.ResolveURL(u)
		if err != nil {
			return coinscrape.WrapError(coinscrape.ERENDERER, err, "failed to resolve renderer at %s", u)
		}
		u = resolved
	} else {
		l := launcher.New().
			Set("disable-background-timer-throttling").
			Set("disable-backgrounding-occluded-windows").
			Set("disable-renderer-backgrounding").
			Set("disable-dev-shm-usage").
			Leakless(true).
			Headless(s.headless)

		launched, err := l.Launch()
		if err != nil {
			return coinscrape.WrapError(coinscrape.ERENDERER, err, "failed to launch browser")
		}
		s.launcher = l
		u = launched
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		if s.launcher != nil {
			s.launcher.Kill()
			s.launcher = nil
		}
		return coinscrape.WrapError(coinscrape.ERENDERER, err, "failed to connect to renderer")
	}
	s.browser = browser
	return nil
}

// openPage must be called with mu held or before the session is shared.
func (s *Session) openPage() error {
	var (
		page *rod.Page
		err  error
	)
	if s.stealth {
		page, err = stealth.Page(s.browser)
	} else {
		page, err = s.browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return coinscrape.WrapError(coinscrape.ERENDERER, err, "failed to open renderer page")
	}
	s.page = page
	s.navigations = 0
	return nil
}

func (s *Session) closePage() {
	if s.page != nil {
		_ = s.page.Close()
		s.page = nil
	}
}

func (s *Session) closeBrowser() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	return err
}

func navigationError(ctx context.Context, err error, url string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return contextError(ctxErr, url)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return coinscrape.WrapError(coinscrape.ETIMEOUT, err, "timed out rendering %s", url)
	}
	return coinscrape.WrapError(coinscrape.EFETCH, err, "failed to render %s", url)
}

func contextError(err error, url string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return coinscrape.WrapError(coinscrape.ETIMEOUT, err, "timed out rendering %s", url)
	}
	return coinscrape.WrapError(coinscrape.EFETCH, err, "canceled rendering %s", url)
}
