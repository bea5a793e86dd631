package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kavia-common/netwatch/internal/model"
)

// ErrDeviceNotFound is returned when a device id does not exist
var ErrDeviceNotFound = errors.New("device not found")

// ListQuery holds optional device list criteria
type ListQuery struct {
	Type   string
	Status string
	Sort   model.SortKey
}

// Storage is the persistence interface used by the API handlers
type Storage interface {
	ListDevices(q ListQuery) ([]model.Device, error)
	GetDevice(id string) (*model.Device, error)
	CreateDevice(device *model.Device) error
	UpdateDevice(device *model.Device) error
	DeleteDevice(id string) error
	SetDeviceStatus(id, status string, checkedAt time.Time) error
	Close() error
}

// SQLiteStorage persists devices in a SQLite database
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// NewStorage opens (creating if needed) the device database in dataDir
func NewStorage(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "netwatch.db"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ss := &SQLiteStorage{db: db}
	if err := ss.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return ss, nil
}

func (ss *SQLiteStorage) initSchema() error {
	_, err := ss.db.Exec(`
		CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			type TEXT NOT NULL,
			location TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			last_checked TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating devices table: %w", err)
	}

	_, err = ss.db.Exec(`CREATE INDEX IF NOT EXISTS idx_devices_name ON devices(name)`)
	if err != nil {
		return fmt.Errorf("creating devices index: %w", err)
	}
	return nil
}

// sortColumns whitelists ORDER BY targets; anything else falls back to
// name.
var sortColumns = map[model.SortKey]string{
	model.SortByName:     "name",
	model.SortByType:     "type",
	model.SortByStatus:   "status",
	model.SortByLocation: "location",
}

// ListDevices returns devices matching the query, ordered by the sort
// key (name when unset)
func (ss *SQLiteStorage) ListDevices(q ListQuery) ([]model.Device, error) {
	query := `SELECT id, name, ip_address, type, location, status, last_checked FROM devices`
	var conds []string
	var args []any
	if q.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, q.Type)
	}
	if q.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, q.Status)
	}
	for i, cond := range conds {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	column, ok := sortColumns[q.Sort]
	if !ok {
		column = "name"
	}
	query += " ORDER BY " + column + " COLLATE NOCASE ASC"

	rows, err := ss.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	devices := []model.Device{}
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *device)
	}
	return devices, rows.Err()
}

// GetDevice returns the device with the given id
func (ss *SQLiteStorage) GetDevice(id string) (*model.Device, error) {
	row := ss.db.QueryRow(
		`SELECT id, name, ip_address, type, location, status, last_checked FROM devices WHERE id = ?`, id)
	device, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return device, nil
}

// CreateDevice inserts a new device
func (ss *SQLiteStorage) CreateDevice(device *model.Device) error {
	_, err := ss.db.Exec(
		`INSERT INTO devices (id, name, ip_address, type, location, status, last_checked)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		device.ID, device.Name, device.IPAddress, device.Type, device.Location,
		device.Status, nullableTime(device.LastChecked))
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

// UpdateDevice replaces the editable fields of an existing device;
// status and last_checked are left alone
func (ss *SQLiteStorage) UpdateDevice(device *model.Device) error {
	res, err := ss.db.Exec(
		`UPDATE devices SET name = ?, ip_address = ?, type = ?, location = ? WHERE id = ?`,
		device.Name, device.IPAddress, device.Type, device.Location, device.ID)
	if err != nil {
		return fmt.Errorf("updating device: %w", err)
	}
	return requireRow(res)
}

// DeleteDevice removes a device
func (ss *SQLiteStorage) DeleteDevice(id string) error {
	res, err := ss.db.Exec(`DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return requireRow(res)
}

// SetDeviceStatus writes a status check result; status and
// last_checked always change together
func (ss *SQLiteStorage) SetDeviceStatus(id, status string, checkedAt time.Time) error {
	res, err := ss.db.Exec(
		`UPDATE devices SET status = ?, last_checked = ? WHERE id = ?`,
		status, checkedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("setting device status: %w", err)
	}
	return requireRow(res)
}

func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*model.Device, error) {
	var device model.Device
	var checked sql.NullString
	if err := row.Scan(&device.ID, &device.Name, &device.IPAddress,
		&device.Type, &device.Location, &device.Status, &checked); err != nil {
		return nil, err
	}
	if checked.Valid && checked.String != "" {
		t, err := time.Parse(time.RFC3339, checked.String)
		if err != nil {
			return nil, fmt.Errorf("parsing last_checked: %w", err)
		}
		device.LastChecked = &t
	}
	return &device, nil
}
