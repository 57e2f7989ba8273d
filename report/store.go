package report

import (
	"fmt"

	"github.com/cepro/spiceev/scenario"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Store persists a finished run's time series to a local sqlite file, the
// same cgo-free glebarez/sqlite + gorm pairing the teacher's Repository uses
// ahead of an upload step.
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if necessary) the sqlite database at path and
// migrates the report schema.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open report database: %w", err)
	}
	if err := db.AutoMigrate(&StoredGCRow{}, &StoredVehicleRow{}); err != nil {
		return nil, fmt.Errorf("migrate report database: %w", err)
	}
	return &Store{db: db}, nil
}

// PersistTimeSeries writes every row of ts to the database in one
// transaction, flattening each StepRecord's per-GC and per-vehicle maps into
// StoredGCRow/StoredVehicleRow rows.
func (s *Store) PersistTimeSeries(ts *scenario.TimeSeries) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range ts.Rows {
			gcRows := make([]StoredGCRow, 0, len(row.GCs))
			for gcID, r := range row.GCs {
				gcRows = append(gcRows, newStoredGCRow(row.StepIndex, row.Time, gcID, r))
			}
			if len(gcRows) > 0 {
				if err := tx.Create(&gcRows).Error; err != nil {
					return fmt.Errorf("store step %d gc rows: %w", row.StepIndex, err)
				}
			}

			vehicleRows := make([]StoredVehicleRow, 0, len(row.VehicleSoc))
			for vehicleID, soc := range row.VehicleSoc {
				vehicleRows = append(vehicleRows, newStoredVehicleRow(row.StepIndex, row.Time, vehicleID, soc))
			}
			if len(vehicleRows) > 0 {
				if err := tx.Create(&vehicleRows).Error; err != nil {
					return fmt.Errorf("store step %d vehicle rows: %w", row.StepIndex, err)
				}
			}
		}
		return nil
	})
}

// GCRows returns every stored reading for gcID, oldest first.
func (s *Store) GCRows(gcID string) ([]StoredGCRow, error) {
	var rows []StoredGCRow
	result := s.db.Where("grid_connector_id = ?", gcID).Order("step_index asc").Find(&rows)
	return rows, result.Error
}

// VehicleRows returns every stored SoC reading for vehicleID, oldest first.
func (s *Store) VehicleRows(vehicleID string) ([]StoredVehicleRow, error) {
	var rows []StoredVehicleRow
	result := s.db.Where("vehicle_id = ?", vehicleID).Order("step_index asc").Find(&rows)
	return rows, result.Error
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
