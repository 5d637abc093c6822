package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTaggedVariants(t *testing.T) {
	validation := Validation("year_code", "")
	assert.Equal(t, "year_code is required", validation.Error())

	withReason := Validation("year_code", "must be numeric")
	assert.Equal(t, "year_code: must be numeric", withReason.Error())

	notFound := NotFound("store", "abc")
	assert.Equal(t, "store abc not found", notFound.Error())

	conflict := Conflict("equipment code", "ST001-TP-25-01")
	assert.Equal(t, `equipment code "ST001-TP-25-01" already exists`, conflict.Error())
}

func TestAsHelpers(t *testing.T) {
	var err error = Validation("name", "")

	v, ok := AsValidation(err)
	assert.True(t, ok)
	assert.Equal(t, "name", v.Field)

	_, ok = AsNotFound(err)
	assert.False(t, ok)

	// Wrapped errors still match
	wrapped := fmt.Errorf("create failed: %w", Conflict("store code", "ST001"))
	c, ok := AsConflict(wrapped)
	assert.True(t, ok)
	assert.Equal(t, "ST001", c.Value)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.False(t, IsDuplicateKey(errors.New("connection refused")))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))

	// Untranslated driver messages
	assert.True(t, IsDuplicateKey(errors.New(`duplicate key value violates unique constraint "idx_code_sequences_scope"`)))
	assert.True(t, IsDuplicateKey(errors.New("UNIQUE constraint failed: equipment.equipment_code")))
}
