package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/construtorcheck/construtorcheck-backend/config"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/repository"
	"github.com/construtorcheck/construtorcheck-backend/internal/app/service"
	"github.com/construtorcheck/construtorcheck-backend/internal/db"
)

// Imports a company directory export into the registry. Expected columns:
// name | district | city | categories (semicolon separated). Rows resolve
// through the same slug path as user submissions, so re-running the import
// is safe: existing companies are left untouched.
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

	companyRepo := repository.NewCompanyRepository(db.GetDB())
	companyService := service.NewCompanyService(companyRepo)

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	rows, err := readRows(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Total rows to import: %d\n", len(rows))
	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	imported := 0
	skipped := 0
	for _, row := range rows {
		name := strings.TrimSpace(row[0])
		if name == "" {
			skipped++
			continue
		}

		var district, city string
		var categories []string
		if len(row) > 1 {
			district = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			city = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			for _, cat := range strings.Split(row[3], ";") {
				if cat = strings.TrimSpace(cat); cat != "" {
					categories = append(categories, cat)
				}
			}
		}

		if _, err := companyService.Resolve(name, district, city, categories); err != nil {
			fmt.Printf("Skipping %q: %v\n", name, err)
			skipped++
			continue
		}
		imported++
	}

	fmt.Printf("Import finished: %d resolved, %d skipped\n", imported, skipped)
}

func readRows(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows found in XLSX file")
	}

	// First row is the header.
	return rows[1:], nil
}
