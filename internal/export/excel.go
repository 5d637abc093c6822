package export

import (
	"fmt"

	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const equipmentSheet = "Equipment"

// BuildEquipmentWorkbook renders the equipment inventory as an XLSX
// workbook for the operations team. The caller owns the returned file and
// must Close it.
func BuildEquipmentWorkbook(items []model.Equipment) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(equipmentSheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headers := []string{"Equipment Code", "Name", "Type", "Store", "Status", "Year", "QR Payload", "Created At"}
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(equipmentSheet, cell, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	for row, item := range items {
		storeLabel := item.StoreID
		if item.Store != nil {
			storeLabel = item.Store.DisplayName()
		}
		values := []interface{}{
			item.EquipmentCode,
			item.Name,
			item.Type,
			storeLabel,
			item.Status(),
			item.YearCode,
			item.QRCodeText,
			item.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(equipmentSheet, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	return f, nil
}
