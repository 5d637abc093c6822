package service

import (
	"errors"
	"fmt"

	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/internal/app/repository"
	apperrors "github.com/ladybird-ops/ladybird-backend/internal/errors"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
	"gorm.io/gorm"
)

// Event types pushed to the status feed.
const (
	EventEquipmentCreated       = "equipment_created"
	EventEquipmentStatusChanged = "equipment_status_changed"
	EventEquipmentTransferred   = "equipment_transferred"
)

// EquipmentEvent is a change notification for dashboard subscribers.
type EquipmentEvent struct {
	Type        string           `json:"type"`
	Equipment   *model.Equipment `json:"equipment"`
	FromStoreID string           `json:"from_store_id,omitempty"`
}

// EquipmentNotifier receives equipment change events. Implementations must
// not block; the websocket hub buffers and drops slow subscribers.
type EquipmentNotifier interface {
	Notify(event EquipmentEvent)
}

type CreateEquipmentInput struct {
	StoreID  string
	Name     string
	Type     string
	YearCode string
	IsDown   bool
}

// UpdateEquipmentInput carries a partial update; nil fields keep their
// existing values. A differing StoreID triggers the transfer protocol.
type UpdateEquipmentInput struct {
	StoreID  *string
	Name     *string
	Type     *string
	YearCode *string
	IsDown   *bool
}

type EquipmentListOptions struct {
	StoreID string
	Type    string
	IsDown  *bool
}

type EquipmentService interface {
	ListEquipment(opts EquipmentListOptions) ([]model.Equipment, error)
	GetEquipmentByID(id string) (*model.Equipment, error)
	CreateEquipment(input CreateEquipmentInput) (*model.Equipment, error)
	UpdateEquipment(id string, input UpdateEquipmentInput) (*model.Equipment, error)
	SetDownStatus(id string, isDown bool) (*model.Equipment, error)
	DeleteEquipment(id string) error
	ListTypes() ([]string, error)
	ListTransfers(equipmentID string) ([]model.TransferRecord, error)
}

type equipmentService struct {
	db            *gorm.DB
	equipmentRepo repository.EquipmentRepository
	storeRepo     repository.StoreRepository
	notifier      EquipmentNotifier
}

// NewEquipmentService builds the lifecycle manager. notifier may be nil.
func NewEquipmentService(
	db *gorm.DB,
	equipmentRepo repository.EquipmentRepository,
	storeRepo repository.StoreRepository,
	notifier EquipmentNotifier,
) EquipmentService {
	return &equipmentService{
		db:            db,
		equipmentRepo: equipmentRepo,
		storeRepo:     storeRepo,
		notifier:      notifier,
	}
}

func (s *equipmentService) notify(event EquipmentEvent) {
	if s.notifier != nil {
		s.notifier.Notify(event)
	}
}

func (s *equipmentService) ListEquipment(opts EquipmentListOptions) ([]model.Equipment, error) {
	return s.equipmentRepo.FindAll(repository.EquipmentFilter{
		StoreID: opts.StoreID,
		Type:    opts.Type,
		IsDown:  opts.IsDown,
	})
}

func (s *equipmentService) GetEquipmentByID(id string) (*model.Equipment, error) {
	equipment, err := s.equipmentRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Equipment not found", map[string]interface{}{
				"equipment_id": id,
			})
			return nil, apperrors.NotFound("equipment", id)
		}
		logger.Error("Failed to fetch equipment", err, map[string]interface{}{
			"equipment_id": id,
		})
		return nil, err
	}
	return equipment, nil
}

func (s *equipmentService) CreateEquipment(input CreateEquipmentInput) (*model.Equipment, error) {
	if input.StoreID == "" {
		return nil, apperrors.Validation("store_id", "")
	}
	if input.Name == "" {
		return nil, apperrors.Validation("name", "")
	}
	if input.Type == "" {
		return nil, apperrors.Validation("type", "")
	}
	if input.YearCode == "" {
		return nil, apperrors.Validation("year_code", "")
	}

	store, err := s.resolveStore(input.StoreID)
	if err != nil {
		return nil, err
	}

	logger.Info("Creating equipment", map[string]interface{}{
		"store_id":   store.ID,
		"store_code": store.Code,
		"name":       input.Name,
		"type":       input.Type,
	})

	// A duplicate generated code is the one condition worth a single local
	// retry: re-running allocation picks up the sequence the winner took.
	var created *model.Equipment
	for attempt := 1; ; attempt++ {
		created, err = s.createOnce(store, input)
		if err == nil {
			break
		}
		if _, ok := apperrors.AsConflict(err); ok && attempt == 1 {
			logger.Warn("Code allocation conflict, retrying once", map[string]interface{}{
				"store_id": store.ID,
				"name":     input.Name,
			})
			continue
		}
		return nil, err
	}

	hydrated, err := s.GetEquipmentByID(created.ID)
	if err != nil {
		return nil, err
	}

	logger.Info("Equipment created", map[string]interface{}{
		"equipment_id":   hydrated.ID,
		"equipment_code": hydrated.EquipmentCode,
		"seq":            hydrated.Seq,
	})
	s.notify(EquipmentEvent{Type: EventEquipmentCreated, Equipment: hydrated})
	return hydrated, nil
}

// createOnce allocates a sequence and persists the row in one transaction,
// so concurrent creations in the same (store, initials) scope are strictly
// ordered by the counter's row lock.
func (s *equipmentService) createOnce(store *model.Store, input CreateEquipmentInput) (*model.Equipment, error) {
	initials := model.ComputeInitials(input.Name)

	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during equipment creation, rolling back",
				fmt.Errorf("panic: %v", r), map[string]interface{}{
					"store_id": store.ID,
					"name":     input.Name,
				})
		}
	}()

	seq, err := s.equipmentRepo.NextSequence(tx, store.ID, initials)
	if err != nil {
		tx.Rollback()
		if apperrors.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("sequence scope", store.ID+"/"+initials)
		}
		return nil, err
	}

	code := model.FormatCode(store.Code, initials, input.YearCode, seq)
	equipment := &model.Equipment{
		StoreID:       store.ID,
		EquipmentCode: code,
		Type:          input.Type,
		Name:          input.Name,
		YearCode:      input.YearCode,
		Seq:           seq,
		IsDown:        input.IsDown,
		QRCodeText:    model.FormatQRText(code),
	}

	if err := s.equipmentRepo.Create(tx, equipment); err != nil {
		tx.Rollback()
		if apperrors.IsDuplicateKey(err) {
			return nil, apperrors.Conflict("equipment code", code)
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return equipment, nil
}

func (s *equipmentService) UpdateEquipment(id string, input UpdateEquipmentInput) (*model.Equipment, error) {
	existing, err := s.GetEquipmentByID(id)
	if err != nil {
		return nil, err
	}

	// Merge supplied fields over the existing row; absent fields never
	// overwrite stored values.
	merged := *existing
	merged.Store = nil
	if input.Name != nil {
		merged.Name = *input.Name
	}
	if input.Type != nil {
		merged.Type = *input.Type
	}
	if input.YearCode != nil {
		merged.YearCode = *input.YearCode
	}
	if input.IsDown != nil {
		merged.IsDown = *input.IsDown
	}

	if input.StoreID != nil && *input.StoreID != existing.StoreID {
		if err := s.transfer(&merged, existing.StoreID, *input.StoreID); err != nil {
			return nil, err
		}

		hydrated, err := s.GetEquipmentByID(id)
		if err != nil {
			return nil, err
		}
		s.notify(EquipmentEvent{
			Type:        EventEquipmentTransferred,
			Equipment:   hydrated,
			FromStoreID: existing.StoreID,
		})
		return hydrated, nil
	}

	if err := s.equipmentRepo.Save(s.db, &merged); err != nil {
		return nil, err
	}

	logger.Info("Equipment updated", map[string]interface{}{
		"equipment_id":   merged.ID,
		"equipment_code": merged.EquipmentCode,
	})
	return s.GetEquipmentByID(id)
}

// transfer moves the asset into the new store's scope: ledger append, fresh
// sequence, regenerated code and QR payload, all in one transaction. The old
// code is permanently retired.
func (s *equipmentService) transfer(equipment *model.Equipment, fromStoreID, toStoreID string) error {
	newStore, err := s.resolveStore(toStoreID)
	if err != nil {
		return err
	}

	logger.Info("Transferring equipment", map[string]interface{}{
		"equipment_id":  equipment.ID,
		"from_store_id": fromStoreID,
		"to_store_id":   newStore.ID,
	})

	for attempt := 1; ; attempt++ {
		err = s.transferOnce(equipment, fromStoreID, newStore)
		if err == nil {
			return nil
		}
		if _, ok := apperrors.AsConflict(err); ok && attempt == 1 {
			logger.Warn("Code allocation conflict during transfer, retrying once", map[string]interface{}{
				"equipment_id": equipment.ID,
				"to_store_id":  newStore.ID,
			})
			continue
		}
		return err
	}
}

func (s *equipmentService) transferOnce(equipment *model.Equipment, fromStoreID string, newStore *model.Store) error {
	tx := s.db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during equipment transfer, rolling back",
				fmt.Errorf("panic: %v", r), map[string]interface{}{
					"equipment_id": equipment.ID,
				})
		}
	}()

	// Ledger append and state change commit or roll back together; a
	// transfer record without the matching row update must never be
	// observable.
	if err := s.equipmentRepo.AppendTransfer(tx, equipment.ID, fromStoreID, newStore.ID); err != nil {
		tx.Rollback()
		return err
	}

	initials := model.ComputeInitials(equipment.Name)
	seq, err := s.equipmentRepo.NextSequence(tx, newStore.ID, initials)
	if err != nil {
		tx.Rollback()
		if apperrors.IsDuplicateKey(err) {
			return apperrors.Conflict("sequence scope", newStore.ID+"/"+initials)
		}
		return err
	}

	code := model.FormatCode(newStore.Code, initials, equipment.YearCode, seq)
	equipment.StoreID = newStore.ID
	equipment.Seq = seq
	equipment.EquipmentCode = code
	equipment.QRCodeText = model.FormatQRText(code)

	if err := s.equipmentRepo.Save(tx, equipment); err != nil {
		tx.Rollback()
		if apperrors.IsDuplicateKey(err) {
			return apperrors.Conflict("equipment code", code)
		}
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Info("Equipment transferred", map[string]interface{}{
		"equipment_id":   equipment.ID,
		"equipment_code": code,
		"seq":            seq,
		"to_store_id":    newStore.ID,
	})
	return nil
}

func (s *equipmentService) SetDownStatus(id string, isDown bool) (*model.Equipment, error) {
	if _, err := s.GetEquipmentByID(id); err != nil {
		return nil, err
	}

	if err := s.equipmentRepo.SetDownStatus(id, isDown); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("equipment", id)
		}
		return nil, err
	}

	equipment, err := s.GetEquipmentByID(id)
	if err != nil {
		return nil, err
	}

	logger.Info("Equipment status updated", map[string]interface{}{
		"equipment_id":   equipment.ID,
		"equipment_code": equipment.EquipmentCode,
		"status":         equipment.Status(),
	})
	s.notify(EquipmentEvent{Type: EventEquipmentStatusChanged, Equipment: equipment})
	return equipment, nil
}

func (s *equipmentService) DeleteEquipment(id string) error {
	if _, err := s.GetEquipmentByID(id); err != nil {
		return err
	}

	if err := s.equipmentRepo.Delete(id); err != nil {
		return err
	}

	logger.Info("Equipment deleted", map[string]interface{}{
		"equipment_id": id,
	})
	return nil
}

func (s *equipmentService) ListTypes() ([]string, error) {
	return s.equipmentRepo.Types()
}

func (s *equipmentService) ListTransfers(equipmentID string) ([]model.TransferRecord, error) {
	if _, err := s.GetEquipmentByID(equipmentID); err != nil {
		return nil, err
	}
	return s.equipmentRepo.TransfersByEquipmentID(equipmentID)
}

func (s *equipmentService) resolveStore(id string) (*model.Store, error) {
	store, err := s.storeRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Store not found", map[string]interface{}{
				"store_id": id,
			})
			return nil, apperrors.NotFound("store", id)
		}
		return nil, err
	}
	return store, nil
}
