package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringArray stores an ordered string list as a JSON-encoded TEXT column so
// it behaves the same on postgres and the sqlite test database.
type StringArray []string

// Value implements database/sql/driver.Valuer
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements database/sql.Scanner
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("failed to scan StringArray")
	}
}

// Store is a retail location that owns equipment. Equipment references it by
// id only; store attributes are never denormalized onto equipment rows.
type Store struct {
	ID       string      `gorm:"type:uuid;primarykey" json:"id"`
	Code     string      `gorm:"uniqueIndex;not null" json:"code"` // upper-case, e.g. "ST001"
	Name     string      `gorm:"not null" json:"name"`
	Timezone string      `gorm:"type:varchar(64)" json:"timezone"`
	IsActive bool        `gorm:"default:true;index" json:"is_active"`
	Emails   StringArray `gorm:"type:text" json:"emails"` // ordered contact addresses

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// BeforeCreate assigns a UUID primary key.
func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// NormalizeStoreCode trims and upper-cases a store code before storage or
// lookup. Store codes are compared case-insensitively everywhere.
func NormalizeStoreCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DisplayName returns the code-prefixed label used in lists and reports.
func (s *Store) DisplayName() string {
	return s.Code + " - " + s.Name
}
