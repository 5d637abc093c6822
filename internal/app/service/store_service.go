package service

import (
	"context"
	"errors"

	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/internal/app/repository"
	apperrors "github.com/ladybird-ops/ladybird-backend/internal/errors"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
	"github.com/ladybird-ops/ladybird-backend/pkg/redis"
	"gorm.io/gorm"
)

type StoreListOptions struct {
	ActiveOnly bool
	Search     string
}

// StoreMutation carries a partial store update; nil fields are left as-is.
type StoreMutation struct {
	Code     *string
	Name     *string
	Timezone *string
	IsActive *bool
	Emails   []string
}

type StoreService interface {
	ListStores(opts StoreListOptions) ([]model.Store, error)
	GetStoreByID(id string) (*model.Store, error)
	GetStoreByCode(code string) (*model.Store, error)
	CreateStore(store *model.Store) (*model.Store, error)
	UpdateStore(id string, input StoreMutation) (*model.Store, error)
	DeleteStore(id string) error
}

type storeService struct {
	storeRepo repository.StoreRepository
}

func NewStoreService(storeRepo repository.StoreRepository) StoreService {
	return &storeService{storeRepo: storeRepo}
}

func (s *storeService) ListStores(opts StoreListOptions) ([]model.Store, error) {
	logger.Debug("Listing stores", map[string]interface{}{
		"active_only": opts.ActiveOnly,
		"search":      opts.Search,
	})

	return s.storeRepo.FindAll(repository.StoreFilter{
		ActiveOnly: opts.ActiveOnly,
		Search:     opts.Search,
	})
}

func (s *storeService) GetStoreByID(id string) (*model.Store, error) {
	ctx := context.Background()

	var cached model.Store
	if redis.GetCachedStore(ctx, id, &cached) {
		logger.Debug("Store cache hit", map[string]interface{}{
			"store_id": id,
		})
		return &cached, nil
	}

	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Store not found", map[string]interface{}{
				"store_id": id,
			})
			return nil, apperrors.NotFound("store", id)
		}
		logger.Error("Failed to fetch store", err, map[string]interface{}{
			"store_id": id,
		})
		return nil, err
	}

	redis.CacheStore(ctx, store.ID, store)
	return store, nil
}

func (s *storeService) GetStoreByCode(code string) (*model.Store, error) {
	store, err := s.storeRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("store", code)
		}
		return nil, err
	}
	return store, nil
}

func (s *storeService) CreateStore(store *model.Store) (*model.Store, error) {
	if store.Code == "" {
		return nil, apperrors.Validation("code", "")
	}
	if store.Name == "" {
		return nil, apperrors.Validation("name", "")
	}

	store.Code = model.NormalizeStoreCode(store.Code)

	if _, err := s.storeRepo.FindByCode(store.Code); err == nil {
		logger.Warn("Store code already exists", map[string]interface{}{
			"code": store.Code,
		})
		return nil, apperrors.Conflict("store code", store.Code)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.storeRepo.Create(store); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("store code", store.Code)
		}
		return nil, err
	}

	logger.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"code":     store.Code,
	})
	return store, nil
}

func (s *storeService) UpdateStore(id string, input StoreMutation) (*model.Store, error) {
	store, err := s.GetStoreByID(id)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		normalized := model.NormalizeStoreCode(*input.Code)
		if normalized != store.Code {
			if _, err := s.storeRepo.FindByCode(normalized); err == nil {
				return nil, apperrors.Conflict("store code", normalized)
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			store.Code = normalized
		}
	}
	if input.Name != nil {
		store.Name = *input.Name
	}
	if input.Timezone != nil {
		store.Timezone = *input.Timezone
	}
	if input.IsActive != nil {
		store.IsActive = *input.IsActive
	}
	if input.Emails != nil {
		store.Emails = model.StringArray(input.Emails)
	}

	if err := s.storeRepo.Update(store); err != nil {
		if apperrors.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("store code", store.Code)
		}
		return nil, err
	}

	redis.InvalidateStore(context.Background(), store.ID)

	logger.Info("Store updated", map[string]interface{}{
		"store_id": store.ID,
		"code":     store.Code,
	})
	return store, nil
}

func (s *storeService) DeleteStore(id string) error {
	if _, err := s.GetStoreByID(id); err != nil {
		return err
	}

	if err := s.storeRepo.Delete(id); err != nil {
		return err
	}

	redis.InvalidateStore(context.Background(), id)

	logger.Info("Store deleted", map[string]interface{}{
		"store_id": id,
	})
	return nil
}
