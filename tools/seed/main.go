// Command seed imports zones, slots and users from an XLSX workbook
// into the database. The workbook carries three sheets: zones (id,
// name, hourly_rate), slots (id, sensor_id, label, zone_id) and users
// (id, sso_id, full_name, role).
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	accounts "campus-parking/internal/accounts/domain"
	accountspg "campus-parking/internal/accounts/infrastructure/postgres"
	parking "campus-parking/internal/parking/domain"
	parkingpg "campus-parking/internal/parking/infrastructure/postgres"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	file := flag.String("file", "", "path to the XLSX workbook")
	dsn := flag.String("dsn", "", "database DSN (defaults to DATABASE_URL or PG_DSN)")
	flag.Parse()

	if *file == "" {
		log.Fatal("-file is required")
	}
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}
	if *dsn == "" {
		*dsn = os.Getenv("PG_DSN")
	}
	if *dsn == "" {
		log.Fatal("-dsn, DATABASE_URL or PG_DSN is required")
	}

	workbook, err := excelize.OpenFile(*file)
	if err != nil {
		log.Fatalf("open workbook: %v", err)
	}
	defer workbook.Close()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	ctx := context.Background()
	zones := parkingpg.NewZoneRates(db)
	slots := parkingpg.NewSlotStore(db)
	users := accountspg.NewUserRepository(db)

	zoneCount, err := importZones(ctx, workbook, zones)
	if err != nil {
		log.Fatalf("import zones: %v", err)
	}
	slotCount, err := importSlots(ctx, workbook, slots)
	if err != nil {
		log.Fatalf("import slots: %v", err)
	}
	userCount, err := importUsers(ctx, workbook, users)
	if err != nil {
		log.Fatalf("import users: %v", err)
	}

	log.Printf("imported %d zones, %d slots, %d users", zoneCount, slotCount, userCount)
}

func sheetRows(workbook *excelize.File, sheet string) ([][]string, error) {
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	// Skip the header row.
	return rows[1:], nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func importZones(ctx context.Context, workbook *excelize.File, zones *parkingpg.ZoneRates) (int, error) {
	rows, err := sheetRows(workbook, "zones")
	if err != nil {
		return 0, err
	}
	count := 0
	for i, row := range rows {
		id := cell(row, 0)
		if id == "" {
			continue
		}
		rate, err := strconv.ParseInt(cell(row, 2), 10, 64)
		if err != nil {
			return count, fmt.Errorf("zones row %d: bad hourly_rate: %w", i+2, err)
		}
		zone := parking.Zone{ID: id, Name: cell(row, 1), HourlyRate: rate}
		if err := zones.InsertZone(ctx, zone); err != nil {
			return count, fmt.Errorf("zones row %d: %w", i+2, err)
		}
		count++
	}
	return count, nil
}

func importSlots(ctx context.Context, workbook *excelize.File, slots *parkingpg.SlotStore) (int, error) {
	rows, err := sheetRows(workbook, "slots")
	if err != nil {
		return 0, err
	}
	count := 0
	for i, row := range rows {
		id := cell(row, 0)
		if id == "" {
			continue
		}
		slot := parking.Slot{
			ID:       id,
			SensorID: cell(row, 1),
			Label:    cell(row, 2),
			ZoneID:   cell(row, 3),
			Status:   parking.StatusUnknown,
		}
		if err := slots.Insert(ctx, slot); err != nil {
			return count, fmt.Errorf("slots row %d: %w", i+2, err)
		}
		count++
	}
	return count, nil
}

func importUsers(ctx context.Context, workbook *excelize.File, users *accountspg.UserRepository) (int, error) {
	rows, err := sheetRows(workbook, "users")
	if err != nil {
		return 0, err
	}
	count := 0
	for i, row := range rows {
		id := cell(row, 0)
		if id == "" {
			continue
		}
		user := accounts.User{
			ID:       id,
			SSOID:    cell(row, 1),
			FullName: cell(row, 2),
			Role:     cell(row, 3),
		}
		if err := users.Save(ctx, &user); err != nil {
			return count, fmt.Errorf("users row %d: %w", i+2, err)
		}
		count++
	}
	return count, nil
}
