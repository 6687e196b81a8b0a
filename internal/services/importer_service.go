package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/cache"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// FeedLoader fetches a feed document by locator. Injectable so tests can
// serve documents from memory.
type FeedLoader interface {
	Load(ctx context.Context, locator string) ([]byte, error)
}

// HTTPFileFeedLoader loads feeds from http(s) URLs or from files under a base
// directory.
type HTTPFileFeedLoader struct {
	BaseDir string
	Client  *http.Client
}

// NewFeedLoader creates the default feed loader
func NewFeedLoader(baseDir string) *HTTPFileFeedLoader {
	return &HTTPFileFeedLoader{
		BaseDir: baseDir,
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches the document. Locators starting with http:// or https:// are
// fetched over the network; anything else is treated as a file path, resolved
// against BaseDir when relative.
func (l *HTTPFileFeedLoader) Load(ctx context.Context, locator string) ([]byte, error) {
	if strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
		if err != nil {
			return nil, err
		}
		resp, err := l.Client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch feed %s: %w", locator, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch feed %s: status %d", locator, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	path := locator
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.BaseDir, path)
	}
	return os.ReadFile(path)
}

// ImporterService reconciles external feed documents into the catalog store
type ImporterService interface {
	// ImportShop synchronizes one shop from a feed document. The locator may
	// be empty, in which case the shop's persisted feed URL is used.
	// Returns models.ErrNotFound for an unknown shop and models.ErrMalformedFeed
	// for an unparseable document; reconciliation failures are reported in the
	// result, not as an error.
	ImportShop(ctx context.Context, shopID uuid.UUID, feedLocator string) (*models.ImportResult, error)

	// ImportAllShops runs one independent import per active shop. A failing
	// shop never aborts the others.
	ImportAllShops(ctx context.Context) (*models.BatchImportResult, error)
}

type importerService struct {
	repo        repository.CatalogRepository
	loader      FeedLoader
	invalidator cache.Invalidator
	logger      *logrus.Entry
}

// NewImporterService creates a new importer service
func NewImporterService(repo repository.CatalogRepository, loader FeedLoader, invalidator cache.Invalidator, logger *logrus.Logger) ImporterService {
	return &importerService{
		repo:        repo,
		loader:      loader,
		invalidator: invalidator,
		logger:      logger.WithField("component", "importer-service"),
	}
}

func (s *importerService) ImportShop(ctx context.Context, shopID uuid.UUID, feedLocator string) (*models.ImportResult, error) {
	shop, err := s.repo.GetShopByID(shopID)
	if err != nil {
		return nil, err
	}

	locator := feedLocator
	if locator == "" {
		locator = shop.FeedURL
	}
	if locator == "" {
		return nil, fmt.Errorf("%w: shop %s has no feed URL and none was provided", models.ErrMalformedFeed, shop.Name)
	}

	data, err := s.loader.Load(ctx, locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrMalformedFeed, err)
	}

	doc, err := models.ParseFeed(data)
	if err != nil {
		return nil, err
	}

	result := &models.ImportResult{ShopID: shop.ID, ShopName: shop.Name}
	var touched []uuid.UUID

	// One transaction per shop: a failing upsert rolls back the whole import
	// and leaves the store unchanged for this shop.
	err = s.repo.WithTransaction(func(tx repository.CatalogRepository) error {
		var txErr error
		touched, txErr = s.reconcile(tx, shop, doc, result)
		return txErr
	})
	if err != nil {
		s.logger.WithError(err).WithField("shop", shop.Name).Error("Shop import failed, rolled back")
		result.Status = models.ImportStatusError
		result.Message = fmt.Sprintf("import failed for shop %s: %v", shop.Name, err)
		return result, nil
	}

	if feedLocator != "" && feedLocator != shop.FeedURL {
		if err := s.repo.UpdateShopFeedURL(shop.ID, feedLocator); err != nil {
			s.logger.WithError(err).Warn("Failed to persist shop feed URL")
		}
	}

	for _, id := range touched {
		s.invalidator.InvalidateProduct(ctx, id)
	}

	result.Status = models.ImportStatusSuccess
	result.Message = fmt.Sprintf("imported %d categories, %d products, %d product infos for shop %s (%d entries skipped)",
		result.Categories, result.Products, result.ProductInfos, shop.Name, result.Skipped)
	return result, nil
}

// reconcile walks the feed tree and upserts every complete entry. Entries
// missing required fields are skipped with a warning; they never fail the
// import.
func (s *importerService) reconcile(tx repository.CatalogRepository, shop *models.Shop, doc *models.FeedDocument, result *models.ImportResult) ([]uuid.UUID, error) {
	var touched []uuid.UUID

	for _, feedCategory := range doc.Categories {
		if feedCategory.Name == "" {
			s.logger.WithField("shop", shop.Name).Warn("Skipping category without a name")
			result.Skipped++
			continue
		}

		category, err := tx.UpsertCategory(feedCategory.Name, feedCategory.Description)
		if err != nil {
			return nil, fmt.Errorf("upsert category %q: %w", feedCategory.Name, err)
		}
		if err := tx.AddShopToCategory(category.ID, shop.ID); err != nil {
			return nil, fmt.Errorf("associate shop with category %q: %w", feedCategory.Name, err)
		}
		result.Categories++

		for _, feedProduct := range feedCategory.Products {
			if feedProduct.Name == "" {
				s.logger.WithField("category", feedCategory.Name).Warn("Skipping product without a name")
				result.Skipped++
				continue
			}

			product, err := tx.UpsertProduct(feedProduct.Name, category.ID)
			if err != nil {
				return nil, fmt.Errorf("upsert product %q: %w", feedProduct.Name, err)
			}
			result.Products++

			for _, feedInfo := range feedProduct.ProductInfos {
				if !feedInfo.Complete() {
					s.logger.WithFields(logrus.Fields{
						"product": feedProduct.Name,
						"info":    feedInfo.Name,
					}).Warn("Skipping product info with missing fields")
					result.Skipped++
					continue
				}

				info, err := tx.UpsertProductInfo(&models.ProductInfo{
					ProductID: product.ID,
					ShopID:    shop.ID,
					Name:      feedInfo.Name,
					Price:     feedInfo.Price,
					PriceRRC:  feedInfo.PriceRRC,
					Quantity:  feedInfo.Quantity,
				})
				if err != nil {
					return nil, fmt.Errorf("upsert product info %q: %w", feedInfo.Name, err)
				}
				result.ProductInfos++
				touched = append(touched, info.ID)

				for _, feedParam := range feedInfo.Parameters {
					if !feedParam.Complete() {
						s.logger.WithField("product", feedProduct.Name).
							Warn("Skipping parameter with missing name or value")
						result.Skipped++
						continue
					}

					parameter, err := tx.UpsertParameter(feedParam.Name)
					if err != nil {
						return nil, fmt.Errorf("upsert parameter %q: %w", feedParam.Name, err)
					}
					if err := tx.UpsertProductParameter(info.ID, parameter.ID, feedParam.Value); err != nil {
						return nil, fmt.Errorf("bind parameter %q: %w", feedParam.Name, err)
					}
				}
			}
		}
	}

	return touched, nil
}

func (s *importerService) ImportAllShops(ctx context.Context) (*models.BatchImportResult, error) {
	shops, err := s.repo.ListActiveShops()
	if err != nil {
		return nil, err
	}

	batch := &models.BatchImportResult{Details: make([]models.ImportResult, 0, len(shops))}
	for _, shop := range shops {
		result, err := s.ImportShop(ctx, shop.ID, "")
		if err != nil {
			// Loader/parse failures are per-shop results at the batch boundary.
			result = &models.ImportResult{
				ShopID:   shop.ID,
				ShopName: shop.Name,
				Status:   models.ImportStatusError,
				Message:  err.Error(),
			}
		}
		if result.Status == models.ImportStatusSuccess {
			batch.Succeeded++
		} else {
			batch.Failed++
		}
		batch.Details = append(batch.Details, *result)
	}

	switch {
	case batch.Failed == 0:
		batch.Status = models.ImportStatusSuccess
	case batch.Succeeded == 0 && batch.Failed > 0:
		batch.Status = models.ImportStatusError
	default:
		batch.Status = models.ImportStatusPartialSuccess
	}
	return batch, nil
}
