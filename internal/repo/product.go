package repo

import (
	"context"

	"github.com/Skotchmaster/inventory/internal/models"
)

// ListProducts reads the whole products table. Columns missing from the
// physical table are left at their zero values. On error the returned slice
// is empty but never nil.
func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	items := make([]models.Product, 0)
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&items).Error; err != nil {
		return []models.Product{}, err
	}
	return items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) (*models.Product, error) {
	if err := r.DB.WithContext(ctx).Create(prod).Error; err != nil {
		return nil, err
	}
	return prod, nil
}

// DeleteProduct removes the row with the given id. A missing id is not an error.
func (r *GormRepo) DeleteProduct(ctx context.Context, id int) error {
	return r.DB.WithContext(ctx).Delete(&models.Product{}, id).Error
}
