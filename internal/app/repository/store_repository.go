package repository

import (
	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
	"gorm.io/gorm"
)

type StoreFilter struct {
	ActiveOnly bool
	Search     string
}

type StoreRepository interface {
	Create(store *model.Store) error
	Update(store *model.Store) error
	Delete(id string) error
	FindAll(filter StoreFilter) ([]model.Store, error)
	FindByID(id string) (*model.Store, error)
	FindByCode(code string) (*model.Store, error)
}

type storeRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(store *model.Store) error {
	logger.Debug("Creating store in database", map[string]interface{}{
		"code": store.Code,
		"name": store.Name,
	})

	if err := r.db.Create(store).Error; err != nil {
		logger.Error("Failed to create store in database", err, map[string]interface{}{
			"code": store.Code,
			"name": store.Name,
		})
		return err
	}

	logger.Debug("Store created in database", map[string]interface{}{
		"store_id": store.ID,
		"code":     store.Code,
	})
	return nil
}

func (r *storeRepository) Update(store *model.Store) error {
	logger.Debug("Updating store in database", map[string]interface{}{
		"store_id": store.ID,
		"code":     store.Code,
	})

	if err := r.db.Save(store).Error; err != nil {
		logger.Error("Failed to update store in database", err, map[string]interface{}{
			"store_id": store.ID,
			"code":     store.Code,
		})
		return err
	}
	return nil
}

func (r *storeRepository) Delete(id string) error {
	logger.Debug("Deleting store from database", map[string]interface{}{
		"store_id": id,
	})

	if err := r.db.Delete(&model.Store{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete store from database", err, map[string]interface{}{
			"store_id": id,
		})
		return err
	}
	return nil
}

func (r *storeRepository) FindAll(filter StoreFilter) ([]model.Store, error) {
	query := r.db.Model(&model.Store{})

	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", like, like)
	}

	var stores []model.Store
	if err := query.Order("code ASC").Find(&stores).Error; err != nil {
		logger.Error("Failed to find stores", err, map[string]interface{}{
			"active_only": filter.ActiveOnly,
			"search":      filter.Search,
		})
		return nil, err
	}

	logger.Debug("Stores found", map[string]interface{}{
		"count": len(stores),
	})
	return stores, nil
}

func (r *storeRepository) FindByID(id string) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *storeRepository) FindByCode(code string) (*model.Store, error) {
	var store model.Store
	if err := r.db.First(&store, "code = ?", model.NormalizeStoreCode(code)).Error; err != nil {
		return nil, err
	}
	return &store, nil
}
