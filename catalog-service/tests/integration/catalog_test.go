//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/config"
	"catalogadmin/catalog-service/internal/app/catalog/entity"
	"catalogadmin/catalog-service/internal/app/catalog/handler"
	"catalogadmin/catalog-service/internal/app/catalog/hub"
	"catalogadmin/catalog-service/internal/app/catalog/repository"
	"catalogadmin/catalog-service/internal/app/catalog/service"
	"catalogadmin/catalog-service/internal/app/catalog/util"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// CatalogIntegrationTestSuite интеграционные тесты catalog-service
// Использует sqlite в temp директории, miniredis и настоящий live hub
type CatalogIntegrationTestSuite struct {
	suite.Suite
	database  *repository.Database
	miniRedis *miniredis.Miniredis
	cache     *util.RedisClient
	liveHub   *hub.Hub
	stopHub   context.CancelFunc
	server    *httptest.Server
}

func TestCatalogIntegrationSuite(t *testing.T) {
	suite.Run(t, new(CatalogIntegrationTestSuite))
}

// SetupSuite выполняется один раз перед всеми тестами
func (s *CatalogIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	var err error
	s.database, err = repository.Open(context.Background(), config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(s.T().TempDir(), "catalog.db"),
	})
	require.NoError(s.T(), err)
	require.NoError(s.T(), repository.Migrate(s.database.DB))

	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)
	s.cache = util.NewRedisClientFromClient(redis.NewClient(&redis.Options{Addr: s.miniRedis.Addr()}))

	s.liveHub = hub.NewHub(16)
	var hubCtx context.Context
	hubCtx, s.stopHub = context.WithCancel(context.Background())
	go s.liveHub.Run(hubCtx)

	catalogService := service.NewCatalogService(
		repository.NewCategoryRepository(s.database.DB),
		repository.NewProductRepository(s.database.DB),
		s.cache,
		s.liveHub,
	)

	router := handler.SetupRoutes(
		handler.NewCatalogHandler(catalogService),
		handler.NewLiveHandler(s.liveHub, nil),
		nil,
	)
	s.server = httptest.NewServer(router)
}

// TearDownSuite выполняется один раз после всех тестов
func (s *CatalogIntegrationTestSuite) TearDownSuite() {
	s.stopHub()
	<-s.liveHub.Done()
	s.server.Close()
	s.cache.Close()
	s.miniRedis.Close()
	s.database.Close()
}

// SetupTest очищает данные перед каждым тестом
func (s *CatalogIntegrationTestSuite) SetupTest() {
	s.database.DB.Exec("DELETE FROM products")
	s.database.DB.Exec("DELETE FROM categories")
	s.miniRedis.FlushAll()
}

func (s *CatalogIntegrationTestSuite) do(method, path string, body interface{}) (*http.Response, []byte) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/ld+json")

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	s.Require().NoError(err)
	return resp, buf.Bytes()
}

func (s *CatalogIntegrationTestSuite) createCategory(name string) entity.CategoryResource {
	resp, body := s.do(http.MethodPost, "/categories", entity.CategoryInput{Name: name})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	var category entity.CategoryResource
	s.Require().NoError(json.Unmarshal(body, &category))
	return category
}

func (s *CatalogIntegrationTestSuite) createProduct(name string, price float64, categoryIRI string) entity.ProductResource {
	resp, body := s.do(http.MethodPost, "/products", entity.ProductInput{
		Name:        name,
		Description: "Integration test product",
		Price:       price,
		Category:    categoryIRI,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode, string(body))

	var product entity.ProductResource
	s.Require().NoError(json.Unmarshal(body, &product))
	return product
}

// ==================== Category Tests ====================

func (s *CatalogIntegrationTestSuite) TestCategoryLifecycle() {
	category := s.createCategory("Electronics")
	assert.Equal(s.T(), "Electronics", category.Name)
	assert.Empty(s.T(), category.Products)

	resp, body := s.do(http.MethodPut, category.IRI, entity.CategoryInput{Name: "Gadgets"})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	resp, body = s.do(http.MethodGet, category.IRI, nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), string(body), `"name":"Gadgets"`)
	assert.Equal(s.T(), `</.well-known/updates>; rel="updates"`, resp.Header.Get("Link"))

	resp, _ = s.do(http.MethodDelete, category.IRI, nil)
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(http.MethodGet, category.IRI, nil)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
}

func (s *CatalogIntegrationTestSuite) TestCategoryDuplicateName() {
	s.createCategory("Books")

	resp, _ := s.do(http.MethodPost, "/categories", entity.CategoryInput{Name: "books"})

	assert.Equal(s.T(), http.StatusConflict, resp.StatusCode)
}

func (s *CatalogIntegrationTestSuite) TestListCategories_CachedAndInvalidated() {
	s.createCategory("Books")
	s.createCategory("Games")

	resp, body := s.do(http.MethodGet, "/categories?itemsPerPage=1", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	assert.Contains(s.T(), string(body), `"totalItems":2`)
	assert.Contains(s.T(), string(body), `"next":"/categories?page=2&itemsPerPage=1"`)
	assert.True(s.T(), s.miniRedis.Exists("categories:all"))

	s.createCategory("Music")
	assert.False(s.T(), s.miniRedis.Exists("categories:all"))

	_, body = s.do(http.MethodGet, "/categories", nil)
	assert.Contains(s.T(), string(body), `"totalItems":3`)
}

// ==================== Product Tests ====================

func (s *CatalogIntegrationTestSuite) TestProductLifecycle() {
	category := s.createCategory("Electronics")
	product := s.createProduct("Laptop", 1299.99, category.IRI)

	assert.Equal(s.T(), category.IRI, product.Category)
	createdAt := product.CreatedAt

	// Категория видит товар в обратной связи
	_, body := s.do(http.MethodGet, category.IRI, nil)
	var withProducts entity.CategoryResource
	s.Require().NoError(json.Unmarshal(body, &withProducts))
	assert.Equal(s.T(), []string{product.IRI}, withProducts.Products)

	resp, body := s.do(http.MethodPut, product.IRI, entity.ProductInput{
		Name:        "Laptop Pro",
		Description: "Integration test product",
		Price:       1499,
		Category:    category.IRI,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode, string(body))

	var updated entity.ProductResource
	s.Require().NoError(json.Unmarshal(body, &updated))
	assert.Equal(s.T(), 1499.0, updated.Price)
	assert.True(s.T(), createdAt.Equal(updated.CreatedAt))

	// Категорию с товаром удалить нельзя
	resp, _ = s.do(http.MethodDelete, category.IRI, nil)
	assert.Equal(s.T(), http.StatusConflict, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, product.IRI, nil)
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)

	resp, _ = s.do(http.MethodDelete, category.IRI, nil)
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)
}

func (s *CatalogIntegrationTestSuite) TestCreateProduct_Violations() {
	resp, body := s.do(http.MethodPost, "/products", map[string]interface{}{
		"name":        "X",
		"description": "short",
		"price":       0,
		"category":    "/categories/00000000-0000-0000-0000-000000000000",
	})

	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)

	var problem entity.ErrorResponse
	s.Require().NoError(json.Unmarshal(body, &problem))
	assert.Equal(s.T(), "ConstraintViolationList", problem.Type)

	paths := make([]string, 0, len(problem.Violations))
	for _, v := range problem.Violations {
		paths = append(paths, v.PropertyPath)
	}
	assert.Equal(s.T(), []string{"name", "description", "price"}, paths)
}

func (s *CatalogIntegrationTestSuite) TestListProducts_NewestFirst() {
	category := s.createCategory("Electronics")
	s.createProduct("First product", 10, category.IRI)
	time.Sleep(5 * time.Millisecond)
	second := s.createProduct("Second product", 20, category.IRI)

	_, body := s.do(http.MethodGet, "/products", nil)

	var collection struct {
		Member     []entity.ProductResource `json:"member"`
		TotalItems int64                    `json:"totalItems"`
	}
	s.Require().NoError(json.Unmarshal(body, &collection))
	assert.Equal(s.T(), int64(2), collection.TotalItems)
	s.Require().Len(collection.Member, 2)
	assert.Equal(s.T(), second.IRI, collection.Member[0].IRI)
}

// ==================== Live Update Tests ====================

func (s *CatalogIntegrationTestSuite) TestLiveUpdates_DeliveredToSubscriber() {
	wsURL := "ws" + strings.TrimPrefix(s.server.URL, "http") + handler.UpdatesPath + "?topic=/products"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	s.Require().NoError(err)
	defer conn.Close()

	s.Require().Eventually(func() bool { return s.liveHub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	category := s.createCategory("Electronics")
	product := s.createProduct("Laptop", 1299.99, category.IRI)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	s.Require().NoError(err)

	var event entity.ChangeEvent
	s.Require().NoError(json.Unmarshal(payload, &event))
	assert.Equal(s.T(), entity.EventUpdate, event.Type)
	assert.Equal(s.T(), product.IRI, event.Topic)

	s.do(http.MethodDelete, product.IRI, nil)

	_, payload, err = conn.ReadMessage()
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal(payload, &event))
	assert.Equal(s.T(), entity.EventDelete, event.Type)
	assert.Equal(s.T(), map[string]interface{}{"@id": product.IRI}, event.Data)
}
