package document

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeConverter converts markup to PDF through a headless Chrome
// instance driven over the DevTools protocol.
type ChromeConverter struct {
	execPath string
	timeout  time.Duration
}

// NewChromeConverter creates a converter. execPath may be empty to use the
// chrome binary found on PATH.
func NewChromeConverter(execPath string, timeout time.Duration) *ChromeConverter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeConverter{execPath: execPath, timeout: timeout}
}

// Ensure ChromeConverter implements Converter
var _ Converter = (*ChromeConverter)(nil)

// Convert renders the markup in a fresh browser context and prints it to
// PDF. Each call gets its own context so a hung page cannot poison later
// conversions.
func (c *ChromeConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if c.execPath != "" {
		opts = append(opts, chromedp.ExecPath(c.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, c.timeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("chrome conversion failed: %w", err)
	}

	return pdf, nil
}
