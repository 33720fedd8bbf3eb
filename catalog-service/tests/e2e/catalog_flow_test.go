//go:build e2e

package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// baseURL адрес запущенного catalog-service
// Для E2E тестов сервис должен быть запущен через docker-compose
func baseURL() string {
	if url := os.Getenv("CATALOG_BASE_URL"); url != "" {
		return url
	}
	return "http://localhost:8081"
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}, out interface{}) int {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/ld+json")

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// TestFullCatalogFlow тестирует полный цикл работы с каталогом:
// 1. Подписка на live обновления товаров
// 2. Создание категории и товара
// 3. Получение события об изменении товара
// 4. Обновление и удаление товара
// 5. Удаление категории
func TestFullCatalogFlow(t *testing.T) {
	client := &http.Client{Timeout: 10 * time.Second}
	base := baseURL()

	// ==================== Step 1: Subscribe ====================
	t.Log("Step 1: Subscribing to product updates")

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/.well-known/updates?topic=/products"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// ==================== Step 2: Create Category ====================
	t.Log("Step 2: Creating category")

	var category entity.CategoryResource
	status := doJSON(t, client, http.MethodPost, base+"/categories",
		entity.CategoryInput{Name: fmt.Sprintf("E2E Category %d", time.Now().UnixNano())}, &category)
	require.Equal(t, http.StatusCreated, status)

	// ==================== Step 3: Create Product ====================
	t.Log("Step 3: Creating product")

	var product entity.ProductResource
	status = doJSON(t, client, http.MethodPost, base+"/products", entity.ProductInput{
		Name:        "E2E Laptop",
		Description: "Created by the end-to-end flow",
		Price:       999.99,
		Category:    category.IRI,
	}, &product)
	require.Equal(t, http.StatusCreated, status)

	// ==================== Step 4: Receive live update ====================
	t.Log("Step 4: Waiting for live update")

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var event entity.ChangeEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, product.IRI, event.Topic)

	// ==================== Step 5: Update Product ====================
	t.Log("Step 5: Updating product price")

	var updated entity.ProductResource
	status = doJSON(t, client, http.MethodPut, base+product.IRI, entity.ProductInput{
		Name:        product.Name,
		Description: product.Description,
		Price:       899.99,
		Category:    category.IRI,
	}, &updated)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 899.99, updated.Price)
	assert.True(t, product.CreatedAt.Equal(updated.CreatedAt))

	// ==================== Step 6: Delete ====================
	t.Log("Step 6: Deleting product and category")

	assert.Equal(t, http.StatusConflict, doJSON(t, client, http.MethodDelete, base+category.IRI, nil, nil))
	assert.Equal(t, http.StatusNoContent, doJSON(t, client, http.MethodDelete, base+product.IRI, nil, nil))
	assert.Equal(t, http.StatusNoContent, doJSON(t, client, http.MethodDelete, base+category.IRI, nil, nil))
	assert.Equal(t, http.StatusNotFound, doJSON(t, client, http.MethodGet, base+product.IRI, nil, nil))
}
