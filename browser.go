package qmd

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-qmd/internal/process"
)

// browser is a lazily launched headless Chrome shared by the PDF printer
// and the KaTeX renderer of one Converter.
// Rod automatically downloads Chromium on first run if not found.
type browser struct {
	timeout time.Duration

	mu       sync.Mutex
	launcher *launcher.Launcher
	rod      *rod.Browser
}

func newBrowser(timeout time.Duration) *browser {
	return &browser{timeout: timeout}
}

// ensure launches and connects to the browser on first use.
func (b *browser) ensure() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rod != nil {
		return b.rod, nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r := rod.New().ControlURL(u)
	if err := r.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.launcher = l
	b.rod = r
	return r, nil
}

// openFile loads a local HTML file and waits for the load event.
// The caller closes the returned page.
func (b *browser) openFile(ctx context.Context, filePath string) (*rod.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r, err := b.ensure()
	if err != nil {
		return nil, err
	}

	timeout, err := b.pageTimeout(ctx)
	if err != nil {
		return nil, err
	}

	page, err := r.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		_ = page.Close()
		return nil, err
	}
	return page, nil
}

// pageTimeout returns the time left before the context deadline, or the
// configured timeout when the context has none.
func (b *browser) pageTimeout(ctx context.Context) (time.Duration, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return b.timeout, nil
	}
	timeout := time.Until(deadline)
	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}
	return timeout, nil
}

// Close disconnects from the browser and kills its process tree.
func (b *browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.rod == nil {
		return nil
	}

	err := b.rod.Close()
	if pid := b.launcher.PID(); pid > 0 {
		process.KillProcessGroup(pid)
	}
	b.launcher.Kill()

	b.rod = nil
	b.launcher = nil
	return err
}
