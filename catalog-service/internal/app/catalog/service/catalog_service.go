package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalogadmin/catalog-service/internal/app/catalog/entity"
	"catalogadmin/catalog-service/internal/app/catalog/repository"
	"catalogadmin/catalog-service/internal/app/catalog/util"
	"catalogadmin/pkg/logger"
	"catalogadmin/pkg/metrics"
	"catalogadmin/pkg/schema"

	"github.com/google/uuid"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound      = errors.New("category not found")
	ErrProductNotFound       = errors.New("product not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
	ErrCategoryHasProducts   = errors.New("category still has products")
)

const (
	resourceCategory = "category"
	resourceProduct  = "product"

	categoriesCacheTTL = time.Hour
)

// ValidationError нарушения правил schema для входных данных
// Handler превращает его в ConstraintViolationList (422)
type ValidationError struct {
	Fields schema.FieldErrors
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Fields.Error()
}

// CatalogService обрабатывает бизнес-логику каталога
// Координирует работу репозиториев, Redis кеша и публикацию событий изменений
type CatalogService struct {
	categoryRepo repository.CategoryRepository // Репозиторий категорий
	productRepo  repository.ProductRepository  // Репозиторий товаров
	cache        util.CategoryCache            // Кеш списка категорий, может быть nil
	publisher    util.EventPublisher           // Kafka producer или локальный hub
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	cache util.CategoryCache,
	publisher util.EventPublisher,
) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		cache:        cache,
		publisher:    publisher,
	}
}

// === CATEGORIES ===

// ListCategories возвращает страницу категорий
// Полный упорядоченный список берется из кеша Redis, страница вырезается из него
func (s *CatalogService) ListCategories(ctx context.Context, page entity.Page) (*entity.CategoryPage, error) {
	if s.cache == nil {
		return s.listCategoriesFromDB(ctx, page)
	}

	all, err := s.allCategories(ctx)
	if err != nil {
		return nil, err
	}

	start := min(page.Offset(), len(all))
	end := min(start+page.Size, len(all))

	return &entity.CategoryPage{
		Items: all[start:end],
		Total: int64(len(all)),
	}, nil
}

// listCategoriesFromDB пагинирует категории запросом к БД, когда кеш не настроен
func (s *CatalogService) listCategoriesFromDB(ctx context.Context, page entity.Page) (*entity.CategoryPage, error) {
	total, err := s.categoryRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	categories, err := s.categoryRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	items, err := s.categoryResources(ctx, categories)
	if err != nil {
		return nil, err
	}

	return &entity.CategoryPage{Items: items, Total: total}, nil
}

// GetCategory получает категорию по ID вместе с IRI ее товаров
// Не использует кеш, так как запрашивается конкретная категория
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.CategoryResource, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	return s.categoryResource(ctx, category)
}

// CreateCategory создает новую категорию, инвалидирует кеш и публикует событие
func (s *CatalogService) CreateCategory(ctx context.Context, in entity.CategoryInput) (*entity.CategoryResource, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(resourceCategory, schema.Category, in.Values()); err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, in.Name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &entity.Category{
		ID:        uuid.New(),
		Name:      in.Name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			return nil, ErrCategoryAlreadyExists
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	metrics.RecordCatalogWrite(resourceCategory, "create")
	s.invalidateCategories(ctx)

	resource := entity.NewCategoryResource(category, nil)
	s.publish(ctx, entity.EventUpdate, resource.IRI, resource)

	return &resource, nil
}

// UpdateCategory переименовывает категорию
// Проверяет существование категории перед обновлением
func (s *CatalogService) UpdateCategory(ctx context.Context, id uuid.UUID, in entity.CategoryInput) (*entity.CategoryResource, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate(resourceCategory, schema.Category, in.Values()); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if err := s.ensureUniqueName(ctx, in.Name, category.ID); err != nil {
		return nil, err
	}

	category.Name = in.Name

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			return nil, ErrCategoryAlreadyExists
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	metrics.RecordCatalogWrite(resourceCategory, "update")
	s.invalidateCategories(ctx)

	resource, err := s.categoryResource(ctx, category)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, entity.EventUpdate, resource.IRI, resource)

	return resource, nil
}

// DeleteCategory удаляет категорию без товаров
// Категория с товарами не удаляется каскадно, возвращается ErrCategoryHasProducts
func (s *CatalogService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	productCount, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check products in category: %w", err)
	}
	if productCount > 0 {
		return ErrCategoryHasProducts
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			return ErrCategoryNotFound
		case errors.Is(err, repository.ErrCategoryHasProducts):
			return ErrCategoryHasProducts
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}

	metrics.RecordCatalogWrite(resourceCategory, "delete")
	s.invalidateCategories(ctx)

	iri := entity.CategoryIRI(id)
	s.publish(ctx, entity.EventDelete, iri, map[string]string{"@id": iri})

	return nil
}

// WarmCategoryCache перечитывает список категорий из БД и кладет его в кеш
// Вызывается по расписанию cron
func (s *CatalogService) WarmCategoryCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	all, err := s.loadCategories(ctx)
	if err != nil {
		return err
	}

	if err := s.cache.SetCategories(ctx, all, categoriesCacheTTL); err != nil {
		return fmt.Errorf("failed to warm categories cache: %w", err)
	}

	return nil
}

// === PRODUCTS ===

// ListProducts возвращает страницу товаров, новые первыми
func (s *CatalogService) ListProducts(ctx context.Context, page entity.Page) (*entity.ProductPage, error) {
	total, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	products, err := s.productRepo.List(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	items := make([]entity.ProductResource, 0, len(products))
	for i := range products {
		items = append(items, entity.NewProductResource(&products[i]))
	}

	return &entity.ProductPage{Items: items, Total: total}, nil
}

// GetProduct получает товар по ID
func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.ProductResource, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	resource := entity.NewProductResource(product)
	return &resource, nil
}

// CreateProduct создает новый товар
// Категория передается IRI и должна существовать
func (s *CatalogService) CreateProduct(ctx context.Context, in entity.ProductInput) (*entity.ProductResource, error) {
	categoryID, err := s.resolveCategory(ctx, &in)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{
		ID:          uuid.New(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  categoryID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, categoryViolation()
		}
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	metrics.RecordCatalogWrite(resourceProduct, "create")
	// Список товаров категории изменился
	s.invalidateCategories(ctx)

	resource := entity.NewProductResource(product)
	s.publish(ctx, entity.EventUpdate, resource.IRI, resource)
	s.publishCategory(ctx, categoryID)

	return &resource, nil
}

// UpdateProduct полностью заменяет редактируемые поля товара
// createdAt сохраняется, категория остается обязательной
func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in entity.ProductInput) (*entity.ProductResource, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	categoryID, err := s.resolveCategory(ctx, &in)
	if err != nil {
		return nil, err
	}

	oldCategoryID := product.CategoryID
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.CategoryID = categoryID

	if err := s.productRepo.Update(ctx, product); err != nil {
		switch {
		case errors.Is(err, repository.ErrProductNotFound):
			return nil, ErrProductNotFound
		case errors.Is(err, repository.ErrCategoryNotFound):
			return nil, categoryViolation()
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	metrics.RecordCatalogWrite(resourceProduct, "update")

	resource := entity.NewProductResource(product)
	s.publish(ctx, entity.EventUpdate, resource.IRI, resource)

	if oldCategoryID != categoryID {
		s.invalidateCategories(ctx)
		s.publishCategory(ctx, oldCategoryID)
		s.publishCategory(ctx, categoryID)
	}

	return &resource, nil
}

// DeleteProduct удаляет товар
// Проверяет существование товара перед удалением
func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to get product: %w", err)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	metrics.RecordCatalogWrite(resourceProduct, "delete")
	s.invalidateCategories(ctx)

	iri := entity.ProductIRI(id)
	s.publish(ctx, entity.EventDelete, iri, map[string]string{"@id": iri})
	s.publishCategory(ctx, product.CategoryID)

	return nil
}

// === helpers ===

// resolveCategory проверяет поля товара и находит категорию по IRI
// Неверный или несуществующий IRI категории считается нарушением правила поля category
func (s *CatalogService) resolveCategory(ctx context.Context, in *entity.ProductInput) (uuid.UUID, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)

	if err := validate(resourceProduct, schema.Product, in.Values()); err != nil {
		return uuid.Nil, err
	}

	categoryID, err := entity.ParseIRI(entity.CategoriesPath, in.Category)
	if err != nil {
		return uuid.Nil, categoryViolation()
	}

	if _, err := s.categoryRepo.GetByID(ctx, categoryID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return uuid.Nil, categoryViolation()
		}
		return uuid.Nil, fmt.Errorf("failed to verify category: %w", err)
	}

	return categoryID, nil
}

// ensureUniqueName проверяет, что имя не занято другой категорией (без учета регистра)
// UNIQUE индекс в БД остается последней линией защиты от гонки
func (s *CatalogService) ensureUniqueName(ctx context.Context, name string, selfID uuid.UUID) error {
	existing, err := s.categoryRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil
		}
		return fmt.Errorf("failed to check category name: %w", err)
	}
	if existing.ID != selfID {
		return ErrCategoryAlreadyExists
	}
	return nil
}

func categoryViolation() error {
	metrics.CatalogValidationFailures.WithLabelValues(resourceProduct, "category").Inc()
	return &ValidationError{Fields: schema.FieldErrors{{
		Field:   "category",
		Tag:     "exists",
		Message: "Item not found for the given category IRI.",
	}}}
}

func validate(resource string, rules schema.Rules, values map[string]any) error {
	fields := rules.Validate(values)
	if len(fields) == 0 {
		return nil
	}

	for _, f := range fields {
		metrics.CatalogValidationFailures.WithLabelValues(resource, f.Field).Inc()
	}
	return &ValidationError{Fields: fields}
}

// allCategories возвращает все категории из кеша или из БД при cache miss
func (s *CatalogService) allCategories(ctx context.Context) ([]entity.CategoryResource, error) {
	if s.cache != nil {
		categories, err := s.cache.GetCategories(ctx)
		if err == nil && categories != nil {
			return categories, nil
		}
		if err != nil {
			// Проблемы с кешем не критичны, читаем из БД
			logger.Warn().Err(err).Msg("Failed to read categories cache")
		}
	}

	categories, err := s.loadCategories(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCategories(ctx, categories, categoriesCacheTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache categories")
		}
	}

	return categories, nil
}

func (s *CatalogService) loadCategories(ctx context.Context) ([]entity.CategoryResource, error) {
	categories, err := s.categoryRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	return s.categoryResources(ctx, categories)
}

// categoryResources собирает представления категорий одним запросом за товарами
func (s *CatalogService) categoryResources(ctx context.Context, categories []entity.Category) ([]entity.CategoryResource, error) {
	ids := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}

	productIDs, err := s.categoryRepo.ProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get category products: %w", err)
	}

	result := make([]entity.CategoryResource, 0, len(categories))
	for i := range categories {
		result = append(result, entity.NewCategoryResource(&categories[i], productIDs[categories[i].ID]))
	}

	return result, nil
}

func (s *CatalogService) categoryResource(ctx context.Context, category *entity.Category) (*entity.CategoryResource, error) {
	productIDs, err := s.categoryRepo.ProductIDs(ctx, []uuid.UUID{category.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to get category products: %w", err)
	}

	resource := entity.NewCategoryResource(category, productIDs[category.ID])
	return &resource, nil
}

func (s *CatalogService) invalidateCategories(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteCategories(ctx); err != nil {
		// Запись уже сохранена, проблемы с кешем не критичны
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

// publishCategory публикует актуальное представление категории после изменения ее товаров
func (s *CatalogService) publishCategory(ctx context.Context, id uuid.UUID) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		logger.Warn().Err(err).Str("category_id", id.String()).Msg("Failed to load category for change event")
		return
	}

	resource, err := s.categoryResource(ctx, category)
	if err != nil {
		logger.Warn().Err(err).Str("category_id", id.String()).Msg("Failed to load category for change event")
		return
	}

	s.publish(ctx, entity.EventUpdate, resource.IRI, resource)
}

// publish отправляет событие изменения
// Ошибка публикации не откатывает уже сохраненную запись
func (s *CatalogService) publish(ctx context.Context, kind, topic string, data any) {
	if s.publisher == nil {
		return
	}

	event := entity.ChangeEvent{
		Type:      kind,
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("topic", topic).Str("type", kind).Msg("Failed to publish change event")
	}
}
