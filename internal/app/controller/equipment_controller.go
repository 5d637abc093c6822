package controller

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ladybird-ops/ladybird-backend/internal/app/service"
	apperrors "github.com/ladybird-ops/ladybird-backend/internal/errors"
	"github.com/ladybird-ops/ladybird-backend/internal/export"
	"github.com/ladybird-ops/ladybird-backend/internal/middleware"
)

type EquipmentController struct {
	equipmentService service.EquipmentService
}

func NewEquipmentController(equipmentService service.EquipmentService) *EquipmentController {
	return &EquipmentController{equipmentService: equipmentService}
}

type EquipmentRequest struct {
	StoreID  string `json:"store_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	YearCode string `json:"year_code"`
	IsDown   bool   `json:"is_down"`
}

type EquipmentUpdateRequest struct {
	StoreID  *string `json:"store_id"`
	Name     *string `json:"name"`
	Type     *string `json:"type"`
	YearCode *string `json:"year_code"`
	IsDown   *bool   `json:"is_down"`
}

func listOptionsFromQuery(c *gin.Context) service.EquipmentListOptions {
	opts := service.EquipmentListOptions{
		StoreID: c.Query("store_id"),
		Type:    c.Query("type"),
	}
	if raw, ok := c.GetQuery("is_down"); ok {
		isDown := strings.EqualFold(raw, "true")
		opts.IsDown = &isDown
	}
	return opts
}

func (ctrl *EquipmentController) ListEquipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	items, err := ctrl.equipmentService.ListEquipment(listOptionsFromQuery(c))
	if err != nil {
		log.Error("Failed to list equipment", err, nil)
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

func (ctrl *EquipmentController) ListEquipmentByStore(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := listOptionsFromQuery(c)
	opts.StoreID = c.Param("id")

	items, err := ctrl.equipmentService.ListEquipment(opts)
	if err != nil {
		log.Error("Failed to list store equipment", err, map[string]interface{}{
			"store_id": opts.StoreID,
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"count":   len(items),
	})
}

func (ctrl *EquipmentController) GetEquipmentByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	equipment, err := ctrl.equipmentService.GetEquipmentByID(c.Param("id"))
	if err != nil {
		log.Warn("Failed to fetch equipment", map[string]interface{}{
			"equipment_id": c.Param("id"),
			"error":        err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

func (ctrl *EquipmentController) ListTypes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	types, err := ctrl.equipmentService.ListTypes()
	if err != nil {
		log.Error("Failed to list equipment types", err, nil)
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    types,
	})
}

func (ctrl *EquipmentController) CreateEquipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req EquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid equipment creation request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request data")
		return
	}

	equipment, err := ctrl.equipmentService.CreateEquipment(service.CreateEquipmentInput{
		StoreID:  req.StoreID,
		Name:     req.Name,
		Type:     req.Type,
		YearCode: req.YearCode,
		IsDown:   req.IsDown,
	})
	if err != nil {
		log.Warn("Failed to create equipment", map[string]interface{}{
			"store_id": req.StoreID,
			"name":     req.Name,
			"error":    err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	log.Info("Equipment created", map[string]interface{}{
		"equipment_id":   equipment.ID,
		"equipment_code": equipment.EquipmentCode,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    equipment,
		"message": "Equipment created successfully",
	})
}

func (ctrl *EquipmentController) UpdateEquipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req EquipmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid request data")
		return
	}

	equipment, err := ctrl.equipmentService.UpdateEquipment(c.Param("id"), service.UpdateEquipmentInput{
		StoreID:  req.StoreID,
		Name:     req.Name,
		Type:     req.Type,
		YearCode: req.YearCode,
		IsDown:   req.IsDown,
	})
	if err != nil {
		log.Warn("Failed to update equipment", map[string]interface{}{
			"equipment_id": c.Param("id"),
			"error":        err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
		"message": "Equipment updated successfully",
	})
}

func (ctrl *EquipmentController) DeleteEquipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	if err := ctrl.equipmentService.DeleteEquipment(c.Param("id")); err != nil {
		log.Warn("Failed to delete equipment", map[string]interface{}{
			"equipment_id": c.Param("id"),
			"error":        err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Equipment deleted successfully",
	})
}

func (ctrl *EquipmentController) MarkAsDown(c *gin.Context) {
	ctrl.setStatus(c, true)
}

func (ctrl *EquipmentController) MarkAsOperational(c *gin.Context) {
	ctrl.setStatus(c, false)
}

func (ctrl *EquipmentController) setStatus(c *gin.Context, isDown bool) {
	log := middleware.GetLoggerFromContext(c)

	equipment, err := ctrl.equipmentService.SetDownStatus(c.Param("id"), isDown)
	if err != nil {
		log.Warn("Failed to update equipment status", map[string]interface{}{
			"equipment_id": c.Param("id"),
			"is_down":      isDown,
			"error":        err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    equipment,
	})
}

func (ctrl *EquipmentController) ListTransfers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	transfers, err := ctrl.equipmentService.ListTransfers(c.Param("id"))
	if err != nil {
		log.Warn("Failed to list equipment transfers", map[string]interface{}{
			"equipment_id": c.Param("id"),
			"error":        err.Error(),
		})
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    transfers,
		"count":   len(transfers),
	})
}

func (ctrl *EquipmentController) ExportEquipment(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	items, err := ctrl.equipmentService.ListEquipment(listOptionsFromQuery(c))
	if err != nil {
		log.Error("Failed to load equipment for export", err, nil)
		apperrors.Respond(c, err)
		return
	}

	workbook, err := export.BuildEquipmentWorkbook(items)
	if err != nil {
		log.Error("Failed to build equipment workbook", err, nil)
		apperrors.InternalError(c, "failed to build export")
		return
	}
	defer workbook.Close()

	filename := fmt.Sprintf("equipment-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := workbook.Write(c.Writer); err != nil {
		log.Error("Failed to stream equipment workbook", err, nil)
	}
}
