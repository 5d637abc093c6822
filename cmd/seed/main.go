package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ladybird-ops/ladybird-backend/config"
	"github.com/ladybird-ops/ladybird-backend/internal/app/model"
	"github.com/ladybird-ops/ladybird-backend/internal/app/repository"
	"github.com/ladybird-ops/ladybird-backend/internal/app/service"
	"github.com/ladybird-ops/ladybird-backend/internal/db"
	apperrors "github.com/ladybird-ops/ladybird-backend/internal/errors"
	"github.com/xuri/excelize/v2"
)

// Seeds stores and equipment from an XLSX workbook. Equipment is created
// through the lifecycle service so codes and sequences are generated the
// same way as in production.
//
// Expected sheets:
//   Stores:    code | name | timezone | emails (comma-separated) | active
//   Equipment: store_code | name | type | year_code

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	storeRepo := repository.NewStoreRepository(db.GetDB())
	equipmentRepo := repository.NewEquipmentRepository(db.GetDB())
	storeService := service.NewStoreService(storeRepo)
	equipmentService := service.NewEquipmentService(db.GetDB(), equipmentRepo, storeRepo, nil)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	stores, err := seedStores(f, storeService)
	if err != nil {
		log.Fatal("Failed to seed stores:", err)
	}
	fmt.Printf("Stores imported: %d\n", len(stores))

	count, err := seedEquipment(f, storeService, equipmentService)
	if err != nil {
		log.Fatal("Failed to seed equipment:", err)
	}
	fmt.Printf("Equipment imported: %d\n", count)

	fmt.Println("Import completed successfully!")
}

func seedStores(f *excelize.File, storeService service.StoreService) ([]model.Store, error) {
	rows, err := f.GetRows("Stores")
	if err != nil {
		return nil, fmt.Errorf("failed to read Stores sheet: %w", err)
	}

	var stores []model.Store
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			// Header row
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[0]) == "" {
			skipped++
			continue
		}

		store := model.Store{
			Code:     strings.TrimSpace(row[0]),
			Name:     strings.TrimSpace(row[1]),
			IsActive: true,
		}
		if len(row) > 2 {
			store.Timezone = strings.TrimSpace(row[2])
		}
		if len(row) > 3 && strings.TrimSpace(row[3]) != "" {
			for _, email := range strings.Split(row[3], ",") {
				if trimmed := strings.TrimSpace(email); trimmed != "" {
					store.Emails = append(store.Emails, trimmed)
				}
			}
		}
		if len(row) > 4 {
			store.IsActive = !strings.EqualFold(strings.TrimSpace(row[4]), "false")
		}

		created, err := storeService.CreateStore(&store)
		if err != nil {
			if _, ok := apperrors.AsConflict(err); ok {
				fmt.Printf("Store %s already exists, skipping\n", store.Code)
				skipped++
				continue
			}
			return nil, err
		}
		stores = append(stores, *created)
	}

	if skipped > 0 {
		fmt.Printf("Stores skipped: %d\n", skipped)
	}
	return stores, nil
}

func seedEquipment(
	f *excelize.File,
	storeService service.StoreService,
	equipmentService service.EquipmentService,
) (int, error) {
	rows, err := f.GetRows("Equipment")
	if err != nil {
		// The Equipment sheet is optional.
		fmt.Println("No Equipment sheet found, skipping equipment import")
		return 0, nil
	}

	count := 0
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 4 || strings.TrimSpace(row[0]) == "" {
			skipped++
			continue
		}

		store, err := storeService.GetStoreByCode(strings.TrimSpace(row[0]))
		if err != nil {
			fmt.Printf("Row %d: unknown store code %q, skipping\n", i+1, row[0])
			skipped++
			continue
		}

		_, err = equipmentService.CreateEquipment(service.CreateEquipmentInput{
			StoreID:  store.ID,
			Name:     strings.TrimSpace(row[1]),
			Type:     strings.TrimSpace(row[2]),
			YearCode: strings.TrimSpace(row[3]),
		})
		if err != nil {
			return count, fmt.Errorf("row %d: %w", i+1, err)
		}
		count++
	}

	if skipped > 0 {
		fmt.Printf("Equipment rows skipped: %d\n", skipped)
	}
	return count, nil
}
