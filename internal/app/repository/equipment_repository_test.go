package repository

import (
	"testing"

	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEquipmentRepositoryTest(t *testing.T) (*gorm.DB, EquipmentRepository, *model.Store) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	store := &model.Store{Code: "ST001", Name: "Austin Kitchen", IsActive: true}
	require.NoError(t, testDB.Create(store).Error)

	return testDB, NewEquipmentRepository(testDB), store
}

func createEquipment(t *testing.T, testDB *gorm.DB, repo EquipmentRepository, store *model.Store, name string, seq int) *model.Equipment {
	t.Helper()

	initials := model.ComputeInitials(name)
	code := model.FormatCode(store.Code, initials, "2025", seq)
	equipment := &model.Equipment{
		StoreID:       store.ID,
		EquipmentCode: code,
		Type:          "Kitchen",
		Name:          name,
		YearCode:      "2025",
		Seq:           seq,
		QRCodeText:    model.FormatQRText(code),
	}
	require.NoError(t, repo.Create(testDB, equipment))
	return equipment
}

func TestEquipmentRepository_MaxSequence(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	// Empty scope
	max, err := repo.MaxSequence(testDB, store.ID, "TP")
	require.NoError(t, err)
	assert.Equal(t, 0, max)

	createEquipment(t, testDB, repo, store, "Tortilla Press", 1)
	createEquipment(t, testDB, repo, store, "Tortilla Press", 2)
	createEquipment(t, testDB, repo, store, "Tamale Cooker", 1)

	max, err = repo.MaxSequence(testDB, store.ID, "TP")
	require.NoError(t, err)
	assert.Equal(t, 2, max)

	// Other scopes do not bleed in
	max, err = repo.MaxSequence(testDB, store.ID, "TC")
	require.NoError(t, err)
	assert.Equal(t, 1, max)
}

func TestEquipmentRepository_MaxSequenceCountsSoftDeleted(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	equipment := createEquipment(t, testDB, repo, store, "Tortilla Press", 3)
	require.NoError(t, repo.Delete(equipment.ID))

	// The retired code still holds its sequence
	max, err := repo.MaxSequence(testDB, store.ID, "TP")
	require.NoError(t, err)
	assert.Equal(t, 3, max)
}

func TestEquipmentRepository_NextSequence(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	runInTx := func(fn func(tx *gorm.DB) (int, error)) (int, error) {
		tx := testDB.Begin()
		require.NoError(t, tx.Error)
		seq, err := fn(tx)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		require.NoError(t, tx.Commit().Error)
		return seq, nil
	}

	seq, err := runInTx(func(tx *gorm.DB) (int, error) {
		return repo.NextSequence(tx, store.ID, "TP")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	seq, err = runInTx(func(tx *gorm.DB) (int, error) {
		return repo.NextSequence(tx, store.ID, "TP")
	})
	require.NoError(t, err)
	assert.Equal(t, 2, seq)

	// A different initials scope starts over
	seq, err = runInTx(func(tx *gorm.DB) (int, error) {
		return repo.NextSequence(tx, store.ID, "TC")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seq)
}

func TestEquipmentRepository_NextSequenceHealsStaleCounter(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	// A counter left behind the rows it guards must not re-issue seq 1
	createEquipment(t, testDB, repo, store, "Tortilla Press", 1)
	createEquipment(t, testDB, repo, store, "Tortilla Press", 2)
	require.NoError(t, testDB.Create(&model.CodeSequence{
		StoreID:  store.ID,
		Initials: "TP",
		LastSeq:  0,
	}).Error)

	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	seq, err := repo.NextSequence(tx, store.ID, "TP")
	require.NoError(t, err)
	require.NoError(t, tx.Commit().Error)
	assert.Equal(t, 3, seq)

	// A counter ahead of the rows keeps its own pace
	tx = testDB.Begin()
	require.NoError(t, tx.Error)
	seq, err = repo.NextSequence(tx, store.ID, "TP")
	require.NoError(t, err)
	require.NoError(t, tx.Commit().Error)
	assert.Equal(t, 4, seq)
}

func TestEquipmentRepository_NextSequenceSeedsFromExistingRows(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	// Rows that predate the counter table
	createEquipment(t, testDB, repo, store, "Tortilla Press", 1)
	createEquipment(t, testDB, repo, store, "Tortilla Press", 2)

	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	seq, err := repo.NextSequence(tx, store.ID, "TP")
	require.NoError(t, err)
	require.NoError(t, tx.Commit().Error)

	assert.Equal(t, 3, seq)
}

func TestEquipmentRepository_FindAll(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	press := createEquipment(t, testDB, repo, store, "Tortilla Press", 1)
	require.NoError(t, repo.SetDownStatus(press.ID, true))
	createEquipment(t, testDB, repo, store, "Tamale Cooker", 1)

	all, err := repo.FindAll(EquipmentFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	// Ordered by name
	assert.Equal(t, "Tamale Cooker", all[0].Name)
	assert.Equal(t, "Tortilla Press", all[1].Name)
	// Store preloaded
	require.NotNil(t, all[0].Store)
	assert.Equal(t, "ST001", all[0].Store.Code)

	down := true
	downOnly, err := repo.FindAll(EquipmentFilter{IsDown: &down})
	require.NoError(t, err)
	require.Len(t, downOnly, 1)
	assert.Equal(t, press.ID, downOnly[0].ID)

	byType, err := repo.FindAll(EquipmentFilter{Type: "Kitchen", StoreID: store.ID})
	require.NoError(t, err)
	assert.Len(t, byType, 2)
}

func TestEquipmentRepository_SetDownStatus(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	equipment := createEquipment(t, testDB, repo, store, "Tortilla Press", 1)

	require.NoError(t, repo.SetDownStatus(equipment.ID, true))

	found, err := repo.FindByID(equipment.ID)
	require.NoError(t, err)
	assert.True(t, found.IsDown)
	// The code never changes with status
	assert.Equal(t, equipment.EquipmentCode, found.EquipmentCode)

	err = repo.SetDownStatus("00000000-0000-0000-0000-000000000000", true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestEquipmentRepository_Delete(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	equipment := createEquipment(t, testDB, repo, store, "Tortilla Press", 1)
	require.NoError(t, repo.Delete(equipment.ID))

	_, err := repo.FindByID(equipment.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Row survives as soft-deleted
	var count int64
	require.NoError(t, testDB.Unscoped().Model(&model.Equipment{}).
		Where("id = ?", equipment.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestEquipmentRepository_Types(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	for i, spec := range []struct {
		name string
		typ  string
	}{
		{"Tortilla Press", "Kitchen"},
		{"Tamale Cooker", "Kitchen"},
		{"Walk-in Freezer", "Refrigeration"},
	} {
		initials := model.ComputeInitials(spec.name)
		code := model.FormatCode(store.Code, initials, "2025", i+1)
		require.NoError(t, repo.Create(testDB, &model.Equipment{
			StoreID:       store.ID,
			EquipmentCode: code,
			Type:          spec.typ,
			Name:          spec.name,
			YearCode:      "2025",
			Seq:           i + 1,
			QRCodeText:    model.FormatQRText(code),
		}))
	}

	types, err := repo.Types()
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen", "Refrigeration"}, types)
}

func TestEquipmentRepository_Transfers(t *testing.T) {
	testDB, repo, store := setupEquipmentRepositoryTest(t)

	other := &model.Store{Code: "ST002", Name: "Dallas Kitchen", IsActive: true}
	require.NoError(t, testDB.Create(other).Error)

	equipment := createEquipment(t, testDB, repo, store, "Tortilla Press", 1)

	records, err := repo.TransfersByEquipmentID(equipment.ID)
	require.NoError(t, err)
	assert.Len(t, records, 0)

	require.NoError(t, repo.AppendTransfer(testDB, equipment.ID, store.ID, other.ID))
	require.NoError(t, repo.AppendTransfer(testDB, equipment.ID, other.ID, store.ID))

	records, err = repo.TransfersByEquipmentID(equipment.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, store.ID, records[0].FromStoreID)
	assert.Equal(t, other.ID, records[0].ToStoreID)
	assert.Equal(t, other.ID, records[1].FromStoreID)
	assert.Equal(t, store.ID, records[1].ToStoreID)
}
