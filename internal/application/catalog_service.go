package application

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/andriansp/gocommerce/internal/domain/entity"
	repo "github.com/andriansp/gocommerce/internal/domain/repository"
	"github.com/andriansp/gocommerce/pkg/helpers"
)

const (
	relatedLimit    = 4
	similarLimit    = 6
	featuredLimit   = 6
	suggestionLimit = 5

	// Similar products sit within 30% of the reference price, either way.
	// The bounds are computed in floating point from the fixed-point price
	// on purpose; the imprecision is accepted.
	similarPriceLow  = 0.7
	similarPriceHigh = 1.3

	minSuggestionQuery = 2

	featuredCacheKey = "catalog:featured"
	featuredCacheTTL = time.Minute
)

// CatalogService is the read-heavy product/category surface plus the
// back-office product writes.
type CatalogService struct {
	Products   repo.ProductRepository
	Categories repo.CategoryRepository
	Redis      *redis.Client
	Logger     *logrus.Logger
	ES         *elasticsearch.Client
	ESIndex    string
}

func NewCatalogService(products repo.ProductRepository, categories repo.CategoryRepository, rdb *redis.Client, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *CatalogService {
	return &CatalogService{
		Products:   products,
		Categories: categories,
		Redis:      rdb,
		Logger:     logger,
		ES:         es,
		ESIndex:    esIndex,
	}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	return s.Categories.List(ctx)
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*entity.Category, error) {
	return s.Categories.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter) ([]entity.Product, error) {
	return s.Products.List(ctx, f)
}

// GetProduct returns the product together with up to 4 related products:
// same category, excluding itself, no further ranking.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*entity.Product, []entity.Product, error) {
	p, err := s.Products.GetActiveByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	related, err := s.Products.Related(ctx, p.CategoryID, p.ID, relatedLimit)
	if err != nil {
		return nil, nil, err
	}
	return p, related, nil
}

type ProductInput struct {
	CategoryID    string
	Name          string
	Description   string
	Price         float64
	StockQuantity int
	IsActive      bool
	ImageURL      string
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	cat, err := s.Categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, FieldErrors{"category": "invalid category"}
		}
		return nil, err
	}

	p := &entity.Product{
		CategoryID:    cat.ID,
		CategoryName:  cat.Name,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		IsActive:      in.IsActive,
		ImageURL:      in.ImageURL,
	}
	if err := s.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateFeatured(ctx)
	_ = s.indexProduct(ctx, p)
	return p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (*entity.Product, error) {
	cat, err := s.Categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, FieldErrors{"category": "invalid category"}
		}
		return nil, err
	}

	p := &entity.Product{
		ID:            id,
		CategoryID:    cat.ID,
		CategoryName:  cat.Name,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		IsActive:      in.IsActive,
		ImageURL:      in.ImageURL,
	}
	if err := s.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	s.invalidateFeatured(ctx)
	_ = s.indexProduct(ctx, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateFeatured(ctx)
	s.deleteProductDoc(ctx, id)
	return nil
}

// Similar returns active products of the same category priced within
// [price*0.7, price*1.3], excluding the product itself, capped at 6.
func (s *CatalogService) Similar(ctx context.Context, id string) ([]entity.Product, error) {
	p, err := s.Products.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	priceMin := p.Price * similarPriceLow
	priceMax := p.Price * similarPriceHigh
	return s.Products.SimilarByPrice(ctx, p.CategoryID, p.ID, priceMin, priceMax, similarLimit)
}

// Featured serves from the Redis cache when possible. The underlying query
// keeps the inherited OR condition whose second arm is always true; see the
// repository for the note.
func (s *CatalogService) Featured(ctx context.Context) ([]entity.Product, error) {
	if s.Redis != nil {
		var cached []entity.Product
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, featuredCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	products, err := s.Products.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, featuredCacheKey, products, featuredCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("featured cache write failed")
		}
	}
	return products, nil
}

func (s *CatalogService) invalidateFeatured(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, featuredCacheKey).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("featured cache invalidation failed")
	}
}

// SearchSuggestions returns up to 5 product names matching the query as a
// case-insensitive substring. Queries shorter than 2 characters return an
// empty list without touching the database.
func (s *CatalogService) SearchSuggestions(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSuggestionQuery {
		return []string{}, nil
	}
	return s.Products.NameSuggestions(ctx, query, suggestionLimit)
}

// SearchProducts performs a full-text multi_match over the product index.
// Returns an empty result when Elasticsearch is not configured; the SQL
// `search` filter on the list endpoint is the baseline search path.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  q,
						"fields": []string{"name^2", "description"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"is_active": true},
				},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

func (s *CatalogService) indexProduct(ctx context.Context, p *entity.Product) error {
	if s.ES == nil || s.ESIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":            p.ID,
		"category_id":   p.CategoryID,
		"category_name": p.CategoryName,
		"name":          p.Name,
		"description":   p.Description,
		"price":         p.Price,
		"is_active":     p.IsActive,
		"created_at":    p.CreatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", p.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("product_id", p.ID).Warn("es index response error")
	}
	return nil
}

func (s *CatalogService) deleteProductDoc(ctx context.Context, id string) {
	if s.ES == nil || s.ESIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("product_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}
