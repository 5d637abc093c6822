package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/internal/app/service"
	apperrors "github.com/ladybird-ops/ladybird-backend/internal/errors"
	"github.com/ladybird-ops/ladybird-backend/internal/middleware"
)

type StoreController struct {
	storeService service.StoreService
}

func NewStoreController(storeService service.StoreService) *StoreController {
	return &StoreController{storeService: storeService}
}

type StoreRequest struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Timezone string   `json:"timezone"`
	IsActive *bool    `json:"is_active"`
	Emails   []string `json:"emails"`
}

type StoreUpdateRequest struct {
	Code     *string  `json:"code"`
	Name     *string  `json:"name"`
	Timezone *string  `json:"timezone"`
	IsActive *bool    `json:"is_active"`
	Emails   []string `json:"emails"`
}

func (ctrl *StoreController) ListStores(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	activeOnly := strings.EqualFold(c.DefaultQuery("active", "false"), "true")
	stores, err := ctrl.storeService.ListStores(service.StoreListOptions{
		ActiveOnly: activeOnly,
		Search:     c.Query("search"),
	})
	if err != nil {
		log.Error("Failed to list stores", err, nil)
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stores,
		"count":   len(stores),
	})
}

func (ctrl *StoreController) GetStoreByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	store, err := ctrl.storeService.GetStoreByID(c.Param("id"))
	if err != nil {
		log.Warn("Failed to fetch store", map[string]interface{}{
			"store_id": c.Param("id"),
			"error":    err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    store,
	})
}

func (ctrl *StoreController) CreateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid store creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request data")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	store, err := ctrl.storeService.CreateStore(&model.Store{
		Code:     req.Code,
		Name:     req.Name,
		Timezone: req.Timezone,
		IsActive: isActive,
		Emails:   model.StringArray(req.Emails),
	})
	if err != nil {
		log.Warn("Failed to create store", map[string]interface{}{
			"code":  req.Code,
			"error": err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	log.Info("Store created", map[string]interface{}{
		"store_id": store.ID,
		"code":     store.Code,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    store,
		"message": "Store created successfully",
	})
}

func (ctrl *StoreController) UpdateStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req StoreUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request data")
		return
	}

	store, err := ctrl.storeService.UpdateStore(c.Param("id"), service.StoreMutation{
		Code:     req.Code,
		Name:     req.Name,
		Timezone: req.Timezone,
		IsActive: req.IsActive,
		Emails:   req.Emails,
	})
	if err != nil {
		log.Warn("Failed to update store", map[string]interface{}{
			"store_id": c.Param("id"),
			"error":    err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    store,
		"message": "Store updated successfully",
	})
}

func (ctrl *StoreController) DeleteStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.storeService.DeleteStore(c.Param("id")); err != nil {
		log.Warn("Failed to delete store", map[string]interface{}{
			"store_id": c.Param("id"),
			"error":    err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Store deleted successfully",
	})
}
