// Package scraper drives the field-audit site through a headless browser
// to export the evaluation data the lake flow ingests.
package scraper

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/fieldscope/portal/config"
	"github.com/fieldscope/portal/internal/logger"
)

// Site URLs
const (
	loginURL       = "https://spa.checklistfacil.com.br/login?lang=pt-br"
	evaluationsURL = "https://app.checklistfacil.com.br/evaluations"
)

// dateLayout is the dd/mm/yyyy format the site's date inputs expect
const dateLayout = "02/01/2006"

// selectorTimeout bounds every wait on a page element
const selectorTimeout = 30 * time.Second

// Scraper exports evaluation data from the audit site
type Scraper struct {
	username string
	password string
}

// New creates a scraper with the given site credentials
func New(cfg config.Scraper) *Scraper {
	return &Scraper{
		username: cfg.Username,
		password: cfg.Password,
	}
}

// Export logs into the audit site, filters evaluations to the given date
// range, triggers the CSV export and saves the download into downloadDir.
// It returns the path of the downloaded file.
func (s *Scraper) Export(startDate, endDate time.Time, downloadDir string) (string, error) {
	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("failed to start browser driver: %w", err)
	}
	defer func() { _ = pw.Stop() }()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to launch browser: %w", err)
	}
	defer func() { _ = browser.Close() }()

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		AcceptDownloads: playwright.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create browser context: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}

	if err := s.login(page); err != nil {
		return "", err
	}

	if _, err := page.Goto(evaluationsURL); err != nil {
		return "", fmt.Errorf("failed to open evaluations page: %w", err)
	}
	if _, err := page.WaitForSelector("#start_date input.mdc-text-field__input", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(selectorTimeout.Seconds() * 1000),
	}); err != nil {
		return "", fmt.Errorf("evaluations filter did not appear: %w", err)
	}

	if err := page.Fill("#start_date input.mdc-text-field__input", startDate.Format(dateLayout)); err != nil {
		return "", fmt.Errorf("failed to fill start date: %w", err)
	}
	if err := page.Fill("#end_date input.mdc-text-field__input", endDate.Format(dateLayout)); err != nil {
		return "", fmt.Errorf("failed to fill end date: %w", err)
	}
	if err := page.Click("button:has-text('Filtrar')"); err != nil {
		return "", fmt.Errorf("failed to apply filter: %w", err)
	}

	// The export button only appears once the filtered list has rendered;
	// waiting on the download event replaces the fixed sleep this flow
	// previously relied on.
	download, err := page.ExpectDownload(func() error {
		return page.Click("button:has-text('Exportar')")
	})
	if err != nil {
		return "", fmt.Errorf("export download did not start: %w", err)
	}

	target := filepath.Join(downloadDir, download.SuggestedFilename())
	if err := download.SaveAs(target); err != nil {
		return "", fmt.Errorf("failed to save export: %w", err)
	}

	logger.InfoWithFields("Evaluation export downloaded", map[string]interface{}{
		"file":       target,
		"start_date": startDate.Format(dateLayout),
		"end_date":   endDate.Format(dateLayout),
	})
	return target, nil
}

// login performs the site's two-step login dialog
func (s *Scraper) login(page playwright.Page) error {
	if _, err := page.Goto(loginURL); err != nil {
		return fmt.Errorf("failed to open login page: %w", err)
	}

	if _, err := page.WaitForSelector("#mat-input-1", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(selectorTimeout.Seconds() * 1000),
	}); err != nil {
		return fmt.Errorf("login form did not appear: %w", err)
	}
	if err := page.Fill("#mat-input-1", s.username); err != nil {
		return fmt.Errorf("failed to fill username: %w", err)
	}
	if err := page.Click("button:has-text('Continuar')"); err != nil {
		return fmt.Errorf("failed to submit username: %w", err)
	}

	if _, err := page.WaitForSelector("#mat-input-0", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(selectorTimeout.Seconds() * 1000),
	}); err != nil {
		return fmt.Errorf("password form did not appear: %w", err)
	}
	if err := page.Fill("#mat-input-0", s.password); err != nil {
		return fmt.Errorf("failed to fill password: %w", err)
	}
	if err := page.Click("button:has-text('Entrar')"); err != nil {
		return fmt.Errorf("failed to submit password: %w", err)
	}

	// Login is complete once the app shell navigation renders.
	if _, err := page.WaitForSelector("nav", playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(selectorTimeout.Seconds() * 1000),
	}); err != nil {
		return fmt.Errorf("login did not complete: %w", err)
	}
	return nil
}
