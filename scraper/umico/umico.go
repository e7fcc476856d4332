package umico

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"umico-analytics/config"
	"umico-analytics/models"
	"umico-analytics/utils"
)

// Scraper orchestrates the catalog crawl: page-count discovery from the
// first page's metadata, concurrent page fetches through the worker
// pool, and duplicate suppression across pages.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	client  *Client
	pool    *utils.WorkerPool
	seenIDs *utils.IDSet
	retry   *utils.RetryConfig

	mu       sync.Mutex
	listings []*models.RawListing
	failed   []int
}

// New creates a ready-to-use catalog Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	httpClient := &http.Client{
		Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
	}

	return &Scraper{
		cfg:     cfg,
		logger:  logger,
		client:  NewClient(httpClient, cfg.APIBaseURL),
		pool:    utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seenIDs: utils.NewIDSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make([]*models.RawListing, 0),
	}
}

// Scrape is the entry point that drives the full category crawl. It
// returns every unique raw listing collected plus the run's provenance
// record. Individual page failures are logged and counted, not fatal;
// only a failed first page (no page count) aborts the crawl.
func (s *Scraper) Scrape(ctx context.Context) ([]*models.RawListing, *models.IngestRun, error) {
	run := &models.IngestRun{
		RunID:      uuid.NewString(),
		BaseURL:    s.cfg.APIBaseURL,
		CategoryID: s.cfg.CategoryID,
		StartedAt:  time.Now().UTC(),
	}

	s.logger.Info("[umico] Starting crawl — category %d, %d products/page, sort=%s",
		s.cfg.CategoryID, s.cfg.PerPage, s.cfg.SortOrder)

	first, err := s.fetchPage(ctx, 1)
	if err != nil {
		return nil, nil, fmt.Errorf("first page: %w", err)
	}

	total := first.total
	pages := (total + s.cfg.PerPage - 1) / s.cfg.PerPage
	if s.cfg.PageCap > 0 && pages > s.cfg.PageCap {
		s.logger.Warn("[umico] Capping crawl at %d of %d pages", s.cfg.PageCap, pages)
		pages = s.cfg.PageCap
	}

	run.TotalAdvertised = total
	run.PagesTotal = pages

	s.logger.Info("[umico] Catalog advertises %d products across %d pages", total, pages)

	s.collect(first.listings)

	for page := 2; page <= pages; page++ {
		p := page
		s.pool.Submit(func() {
			if ctx.Err() != nil {
				return
			}

			result, err := s.fetchPage(ctx, p)
			if err != nil {
				s.logger.Error("[umico] Page %d failed: %v", p, err)
				s.recordFailure(p)
				return
			}

			collected := s.collect(result.listings)
			if collected%100 == 0 {
				s.logger.Debug("[umico] Progress: %d unique products collected", collected)
			}
		})
	}
	s.pool.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	run.PagesFailed = len(s.failed)
	run.ProductsParsed = len(s.listings)
	run.FinishedAt = time.Now().UTC()

	s.logger.Info("[umico] Crawl complete — %d unique products from %d pages (%d failed) in %v",
		len(s.listings), pages, len(s.failed), run.Duration().Round(time.Second))

	return s.listings, run, nil
}

type pageResult struct {
	listings []*models.RawListing
	total    int
}

// fetchPage retrieves and parses one catalog page, retrying transient
// failures with back-off.
func (s *Scraper) fetchPage(ctx context.Context, page int) (*pageResult, error) {
	var result *pageResult

	err := s.retry.Do(ctx, fmt.Sprintf("page-%d", page), func() error {
		resp, err := s.client.ProductsPage(ctx, s.cfg.CategoryID, page, s.cfg.PerPage, s.cfg.SortOrder)
		if err != nil {
			return err
		}

		fetchedAt := time.Now().UTC()
		listings := make([]*models.RawListing, 0, len(resp.Products))
		for i := range resp.Products {
			listings = append(listings, resp.Products[i].toRawListing(page, fetchedAt))
		}

		result = &pageResult{listings: listings, total: resp.Meta.Total}
		return nil
	})

	return result, err
}

// collect appends listings not seen on an earlier page and returns the
// running unique total. Popularity-sorted pagination shifts while the
// crawl runs, so the same product can appear on two pages.
func (s *Scraper) collect(listings []*models.RawListing) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, l := range listings {
		if l.ID != 0 && !s.seenIDs.Add(l.ID) {
			continue
		}
		s.listings = append(s.listings, l)
	}
	return len(s.listings)
}

func (s *Scraper) recordFailure(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, page)
}
