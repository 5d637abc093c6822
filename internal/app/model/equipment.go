package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QRPrefix is the fixed scan-payload prefix for equipment QR labels.
const QRPrefix = "LADYBIRD-EQ:"

// FallbackInitials is used when an equipment name is empty.
const FallbackInitials = "XX"

// Equipment is a physical asset tracked at a store. Its code and sequence
// are generated, never user-supplied, and are regenerated when the asset
// transfers to another store. The old code is retired, not recycled.
type Equipment struct {
	ID      string `gorm:"type:uuid;primarykey" json:"id"`
	StoreID string `gorm:"type:uuid;index;not null" json:"store_id"`
	Store   *Store `gorm:"foreignKey:StoreID" json:"store,omitempty"`

	// Format: "{storeCode}-{initials}-{yy}-{seq}", e.g. "ST001-TP-25-01".
	EquipmentCode string `gorm:"uniqueIndex;not null" json:"equipment_code"`
	Type          string `gorm:"index;not null" json:"type"`
	Name          string `gorm:"not null" json:"name"`
	YearCode      string `gorm:"type:varchar(8)" json:"year_code"`
	Seq           int    `gorm:"not null" json:"seq"`
	IsDown        bool   `gorm:"default:false;index" json:"is_down"`
	QRCodeText    string `gorm:"not null" json:"qr_code_text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// BeforeCreate assigns a UUID primary key.
func (e *Equipment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Status returns the operational label for the down flag.
func (e *Equipment) Status() string {
	if e.IsDown {
		return "DOWN"
	}
	return "OPERATIONAL"
}

// FullName returns the code-prefixed label used in lists and reports.
func (e *Equipment) FullName() string {
	return e.EquipmentCode + " - " + e.Name
}

// ComputeInitials derives the two-letter scope key from an equipment name:
// first letters of the first two words, or the first two characters of a
// single-word name. Always upper-case, always deterministic.
func ComputeInitials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return FallbackInitials
	}
	if len(words) >= 2 {
		first := []rune(words[0])
		second := []rune(words[1])
		return strings.ToUpper(string(first[0]) + string(second[0]))
	}

	runes := []rune(words[0])
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

// FormatCode renders the final equipment code. Only the last two characters
// of year are used, so both "2025" and "25" yield "25". The sequence is
// zero-padded to a minimum of two digits; values >= 100 render unpadded.
func FormatCode(storeCode, initials, year string, seq int) string {
	shortYear := year
	if len(year) > 2 {
		shortYear = year[len(year)-2:]
	}
	return fmt.Sprintf("%s-%s-%s-%02d", storeCode, initials, shortYear, seq)
}

// FormatQRText renders the scan payload for a generated code.
func FormatQRText(code string) string {
	return QRPrefix + code
}

// CodeSequence is the per-(store, initials) allocation counter. Rows are
// read under a row lock inside the transaction that persists the equipment
// row, so concurrent allocations within one scope are strictly ordered.
type CodeSequence struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	StoreID  string `gorm:"type:uuid;not null;index:idx_code_sequences_scope,unique" json:"store_id"`
	Initials string `gorm:"type:varchar(2);not null;index:idx_code_sequences_scope,unique" json:"initials"`
	LastSeq  int    `gorm:"not null" json:"last_seq"`

	UpdatedAt time.Time `json:"updated_at"`
}

func (CodeSequence) TableName() string {
	return "code_sequences"
}

// TransferRecord is one entry in the append-only store-transfer ledger.
// Rows are never updated or deleted.
type TransferRecord struct {
	ID          uint   `gorm:"primarykey" json:"id"`
	EquipmentID string `gorm:"type:uuid;index;not null" json:"equipment_id"`
	FromStoreID string `gorm:"type:uuid;not null" json:"from_store_id"`
	ToStoreID   string `gorm:"type:uuid;not null" json:"to_store_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (TransferRecord) TableName() string {
	return "equipment_transfers"
}
