package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/cloudinary/cloudinary-go"
	"github.com/cloudinary/cloudinary-go/api/uploader"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Salisuili/rest-backend/cache"
	"github.com/Salisuili/rest-backend/models"
	"github.com/Salisuili/rest-backend/pkg/apperrors"
	"github.com/Salisuili/rest-backend/repository"
)

type MenuItemRequest struct {
	Name        string  `form:"name" binding:"required"`
	Description string  `form:"description"`
	Price       float64 `form:"price" binding:"required,gt=0"`
	CategoryID  string  `form:"category_id" binding:"required"`
	IsAvailable *bool   `form:"is_available"`
}

type MenuListResult struct {
	Items []models.MenuItem `json:"items"`
	Meta  MetaData          `json:"meta"`
}

// MenuService handles menu item and category management, including image
// uploads and the best-effort listing cache (both optional at wiring time).
type MenuService struct {
	menu       repository.MenuRepository
	categories repository.CategoryRepository
	cld        *cloudinary.Cloudinary
	cache      *cache.MenuCache
	log        *zap.Logger
}

func NewMenuService(
	menu repository.MenuRepository,
	categories repository.CategoryRepository,
	cld *cloudinary.Cloudinary,
	menuCache *cache.MenuCache,
	log *zap.Logger,
) *MenuService {
	return &MenuService{
		menu:       menu,
		categories: categories,
		cld:        cld,
		cache:      menuCache,
		log:        log,
	}
}

func (s *MenuService) ListItems(ctx context.Context, page, limit int, categoryID uuid.UUID) (*MenuListResult, *apperrors.Error) {
	cacheKey := fmt.Sprintf("list:%d:%d:%s", page, limit, categoryID)
	if s.cache != nil {
		var cached MenuListResult
		if s.cache.Get(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	items, total, err := s.menu.List(ctx, page, limit, categoryID)
	if err != nil {
		s.log.Error("Menu listing failed", zap.Error(err))
		return nil, apperrors.Upstream("Failed to fetch menu", err)
	}

	result := &MenuListResult{
		Items: items,
		Meta: MetaData{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: calculateTotalPages(total, limit),
			HasMore:    total > int64(page*limit),
		},
	}
	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, result)
	}
	return result, nil
}

func (s *MenuService) GetItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, *apperrors.Error) {
	item, err := s.menu.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Menu item not found")
		}
		return nil, apperrors.Upstream("Failed to fetch menu item", err)
	}
	return item, nil
}

func (s *MenuService) CreateItem(ctx context.Context, req *MenuItemRequest, image *multipart.FileHeader) (*models.MenuItem, *apperrors.Error) {
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apperrors.Validation("Invalid category ID")
	}
	if _, err := s.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Validation("Category does not exist")
		}
		return nil, apperrors.Upstream("Failed to resolve category", err)
	}

	item := &models.MenuItem{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  categoryID,
		IsAvailable: true,
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if image != nil {
		url, appErr := s.uploadImage(ctx, image)
		if appErr != nil {
			return nil, appErr
		}
		item.ImageURL = url
	}

	if err := s.menu.Create(ctx, item); err != nil {
		s.log.Error("Menu item insert failed", zap.Error(err))
		return nil, apperrors.Upstream("Failed to create menu item", err)
	}

	s.invalidateCache(ctx)
	return item, nil
}

func (s *MenuService) UpdateItem(ctx context.Context, id uuid.UUID, req *MenuItemRequest, image *multipart.FileHeader) (*models.MenuItem, *apperrors.Error) {
	item, appErr := s.GetItem(ctx, id)
	if appErr != nil {
		return nil, appErr
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return nil, apperrors.Validation("Invalid category ID")
	}

	item.Name = req.Name
	item.Description = req.Description
	item.Price = req.Price
	item.CategoryID = categoryID
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if image != nil {
		url, appErr := s.uploadImage(ctx, image)
		if appErr != nil {
			return nil, appErr
		}
		item.ImageURL = url
	}

	if err := s.menu.Update(ctx, item); err != nil {
		s.log.Error("Menu item update failed", zap.Error(err))
		return nil, apperrors.Upstream("Failed to update menu item", err)
	}

	s.invalidateCache(ctx)
	return item, nil
}

func (s *MenuService) DeleteItem(ctx context.Context, id uuid.UUID) *apperrors.Error {
	if _, appErr := s.GetItem(ctx, id); appErr != nil {
		return appErr
	}
	if err := s.menu.Delete(ctx, id); err != nil {
		return apperrors.Upstream("Failed to delete menu item", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *MenuService) ListCategories(ctx context.Context) ([]models.Category, *apperrors.Error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Upstream("Failed to fetch categories", err)
	}
	return categories, nil
}

func (s *MenuService) CreateCategory(ctx context.Context, category *models.Category) *apperrors.Error {
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("Category already exists")
		}
		return apperrors.Upstream("Failed to create category", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, category *models.Category) *apperrors.Error {
	if _, err := s.categories.FindByID(ctx, category.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Category not found")
		}
		return apperrors.Upstream("Failed to fetch category", err)
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return apperrors.Upstream("Failed to update category", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, id uuid.UUID) *apperrors.Error {
	if _, err := s.categories.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Category not found")
		}
		return apperrors.Upstream("Failed to fetch category", err)
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return apperrors.Upstream("Failed to delete category", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *MenuService) uploadImage(ctx context.Context, fileHeader *multipart.FileHeader) (string, *apperrors.Error) {
	if s.cld == nil {
		return "", apperrors.Upstream("Image storage is not configured", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", apperrors.Validation("Could not read uploaded image")
	}
	defer file.Close()

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:   "menu",
		PublicID: uuid.New().String(),
	})
	if err != nil {
		s.log.Error("Image upload failed", zap.Error(err))
		return "", apperrors.Upstream("Image upload failed", err)
	}
	return result.SecureURL, nil
}

func (s *MenuService) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
