package repository

import (
	"errors"

	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EquipmentFilter struct {
	StoreID string
	Type    string
	IsDown  *bool
}

// EquipmentRepository is the persistence boundary for equipment rows, the
// per-scope sequence counters and the transfer ledger. Methods that must
// participate in the caller's transaction take the transaction handle
// explicitly; the rest run on the repository's own handle.
type EquipmentRepository interface {
	FindAll(filter EquipmentFilter) ([]model.Equipment, error)
	FindByID(id string) (*model.Equipment, error)
	Create(tx *gorm.DB, equipment *model.Equipment) error
	Save(tx *gorm.DB, equipment *model.Equipment) error
	SetDownStatus(id string, isDown bool) error
	Delete(id string) error
	Types() ([]string, error)

	// MaxSequence returns the highest sequence ever assigned in the
	// (storeID, initials) scope, soft-deleted rows included, or 0.
	MaxSequence(tx *gorm.DB, storeID, initials string) (int, error)

	// NextSequence allocates the next sequence for the scope. It must run
	// inside the same transaction that persists the equipment row, and it
	// never returns a sequence at or below the scope's historical maximum.
	NextSequence(tx *gorm.DB, storeID, initials string) (int, error)

	AppendTransfer(tx *gorm.DB, equipmentID, fromStoreID, toStoreID string) error
	TransfersByEquipmentID(equipmentID string) ([]model.TransferRecord, error)
}

type equipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) FindAll(filter EquipmentFilter) ([]model.Equipment, error) {
	query := r.db.Model(&model.Equipment{}).Preload("Store")

	if filter.StoreID != "" {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.IsDown != nil {
		query = query.Where("is_down = ?", *filter.IsDown)
	}

	var items []model.Equipment
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		logger.Error("Failed to find equipment", err, map[string]interface{}{
			"store_id": filter.StoreID,
			"type":     filter.Type,
		})
		return nil, err
	}

	logger.Debug("Equipment found", map[string]interface{}{
		"count": len(items),
	})
	return items, nil
}

func (r *equipmentRepository) FindByID(id string) (*model.Equipment, error) {
	var equipment model.Equipment
	if err := r.db.Preload("Store").First(&equipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

func (r *equipmentRepository) Create(tx *gorm.DB, equipment *model.Equipment) error {
	logger.Debug("Creating equipment in database", map[string]interface{}{
		"equipment_code": equipment.EquipmentCode,
		"store_id":       equipment.StoreID,
		"seq":            equipment.Seq,
	})

	if err := tx.Create(equipment).Error; err != nil {
		logger.Error("Failed to create equipment in database", err, map[string]interface{}{
			"equipment_code": equipment.EquipmentCode,
			"store_id":       equipment.StoreID,
		})
		return err
	}
	return nil
}

func (r *equipmentRepository) Save(tx *gorm.DB, equipment *model.Equipment) error {
	logger.Debug("Updating equipment in database", map[string]interface{}{
		"equipment_id":   equipment.ID,
		"equipment_code": equipment.EquipmentCode,
	})

	// Save writes every column so partial inputs must be merged by the
	// caller before this point; it never touches soft-deleted rows.
	if err := tx.Omit("Store").Save(equipment).Error; err != nil {
		logger.Error("Failed to update equipment in database", err, map[string]interface{}{
			"equipment_id": equipment.ID,
		})
		return err
	}
	return nil
}

func (r *equipmentRepository) SetDownStatus(id string, isDown bool) error {
	result := r.db.Model(&model.Equipment{}).Where("id = ?", id).Update("is_down", isDown)
	if result.Error != nil {
		logger.Error("Failed to update equipment status", result.Error, map[string]interface{}{
			"equipment_id": id,
			"is_down":      isDown,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *equipmentRepository) Delete(id string) error {
	logger.Debug("Deleting equipment from database", map[string]interface{}{
		"equipment_id": id,
	})

	// Soft delete: the row keeps its seq and code so future allocations in
	// the scope never reuse them.
	if err := r.db.Delete(&model.Equipment{}, "id = ?", id).Error; err != nil {
		logger.Error("Failed to delete equipment from database", err, map[string]interface{}{
			"equipment_id": id,
		})
		return err
	}
	return nil
}

func (r *equipmentRepository) Types() ([]string, error) {
	var types []string
	if err := r.db.Model(&model.Equipment{}).
		Distinct("type").
		Order("type ASC").
		Pluck("type", &types).Error; err != nil {
		logger.Error("Failed to list equipment types", err)
		return nil, err
	}
	return types, nil
}

func (r *equipmentRepository) MaxSequence(tx *gorm.DB, storeID, initials string) (int, error) {
	var max int
	err := tx.Model(&model.Equipment{}).
		Unscoped().
		Select("COALESCE(MAX(seq), 0)").
		Where("store_id = ? AND equipment_code LIKE ?", storeID, "%-"+initials+"-%").
		Scan(&max).Error
	if err != nil {
		logger.Error("Failed to read max sequence", err, map[string]interface{}{
			"store_id": storeID,
			"initials": initials,
		})
		return 0, err
	}
	return max, nil
}

func (r *equipmentRepository) NextSequence(tx *gorm.DB, storeID, initials string) (int, error) {
	var counter model.CodeSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ? AND initials = ?", storeID, initials).
		First(&counter).Error

	switch {
	case err == nil:
		// A counter can trail the rows it guards (manual imports, restored
		// backups, a rolled-back increment). Advance past the historical
		// maximum as well, so a stale counter never re-issues a sequence a
		// row already holds and a re-run allocation picks a fresh value.
		max, err := r.MaxSequence(tx, storeID, initials)
		if err != nil {
			return 0, err
		}
		next := counter.LastSeq + 1
		if max >= next {
			next = max + 1
		}
		counter.LastSeq = next
		if err := tx.Save(&counter).Error; err != nil {
			return 0, err
		}
		return next, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		// First allocation for this scope. Seed the counter from the
		// historical maximum so legacy rows and retired codes still count.
		max, err := r.MaxSequence(tx, storeID, initials)
		if err != nil {
			return 0, err
		}
		counter = model.CodeSequence{
			StoreID:  storeID,
			Initials: initials,
			LastSeq:  max + 1,
		}
		// Two transactions racing here collide on the unique scope index;
		// the loser surfaces as a conflict and the service retries once.
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
		return counter.LastSeq, nil

	default:
		logger.Error("Failed to lock sequence counter", err, map[string]interface{}{
			"store_id": storeID,
			"initials": initials,
		})
		return 0, err
	}
}

func (r *equipmentRepository) AppendTransfer(tx *gorm.DB, equipmentID, fromStoreID, toStoreID string) error {
	record := model.TransferRecord{
		EquipmentID: equipmentID,
		FromStoreID: fromStoreID,
		ToStoreID:   toStoreID,
	}
	if err := tx.Create(&record).Error; err != nil {
		logger.Error("Failed to append transfer record", err, map[string]interface{}{
			"equipment_id":  equipmentID,
			"from_store_id": fromStoreID,
			"to_store_id":   toStoreID,
		})
		return err
	}
	return nil
}

func (r *equipmentRepository) TransfersByEquipmentID(equipmentID string) ([]model.TransferRecord, error) {
	var records []model.TransferRecord
	if err := r.db.
		Where("equipment_id = ?", equipmentID).
		Order("created_at ASC, id ASC").
		Find(&records).Error; err != nil {
		logger.Error("Failed to list transfer records", err, map[string]interface{}{
			"equipment_id": equipmentID,
		})
		return nil, err
	}
	return records, nil
}
