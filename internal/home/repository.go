package home

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/argentmirror/argent-core/internal/infrastructure/database"
)

// Repository defines persistence operations for rooms and devices.
//
// Implementations must be safe for concurrent use.
type Repository interface {
	// CreateRoom persists a new room.
	CreateRoom(ctx context.Context, room *Room) error

	// GetRoom retrieves a room by ID, without its devices.
	GetRoom(ctx context.Context, id string) (*Room, error)

	// ListRooms returns all rooms ordered by sort order then name,
	// each populated with its devices.
	ListRooms(ctx context.Context) ([]*Room, error)

	// UpdateRoom updates a room's name, slug and sort order.
	UpdateRoom(ctx context.Context, room *Room) error

	// DeleteRoom removes a room and, via cascade, its devices.
	DeleteRoom(ctx context.Context, id string) error

	// CreateDevice persists a new device.
	CreateDevice(ctx context.Context, device *Device) error

	// GetDevice retrieves a device by ID.
	GetDevice(ctx context.Context, id string) (*Device, error)

	// ListDevices returns all devices for a room ordered by name.
	ListDevices(ctx context.Context, roomID string) ([]*Device, error)

	// UpdateDeviceState applies a partial state change to a device.
	UpdateDeviceState(ctx context.Context, id string, change StateChange) error

	// DeleteDevice removes a device.
	DeleteDevice(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository backed by the embedded SQLite
// database.
type SQLiteRepository struct {
	db *database.DB
}

// NewSQLiteRepository creates a repository using the given database.
func NewSQLiteRepository(db *database.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// CreateRoom persists a new room. The ID and slug are generated when
// absent.
func (r *SQLiteRepository) CreateRoom(ctx context.Context, room *Room) error {
	if room.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}
	if room.ID == "" {
		room.ID = GenerateID()
	}
	if room.Slug == "" {
		room.Slug = GenerateSlug(room.Name)
	}

	now := time.Now().UTC()
	room.CreatedAt = now
	room.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, slug, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.Slug, room.SortOrder, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q", ErrRoomExists, room.Slug)
		}
		return fmt.Errorf("creating room: %w", err)
	}
	return nil
}

// GetRoom retrieves a room by ID, without its devices.
func (r *SQLiteRepository) GetRoom(ctx context.Context, id string) (*Room, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, slug, sort_order, created_at, updated_at
		FROM rooms WHERE id = ?`, id)

	room, err := scanRoom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
		}
		return nil, fmt.Errorf("getting room: %w", err)
	}
	return room, nil
}

// ListRooms returns all rooms with their devices.
func (r *SQLiteRepository) ListRooms(ctx context.Context) ([]*Room, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, slug, sort_order, created_at, updated_at
		FROM rooms ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var rooms []*Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rooms: %w", err)
	}

	for _, room := range rooms {
		devices, err := r.ListDevices(ctx, room.ID)
		if err != nil {
			return nil, err
		}
		room.Devices = make([]Device, len(devices))
		for i, d := range devices {
			room.Devices[i] = *d
		}
	}

	return rooms, nil
}

// UpdateRoom updates a room's name, slug and sort order.
func (r *SQLiteRepository) UpdateRoom(ctx context.Context, room *Room) error {
	if room.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRoom)
	}
	if room.Slug == "" {
		room.Slug = GenerateSlug(room.Name)
	}
	room.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, `
		UPDATE rooms SET name = ?, slug = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`,
		room.Name, room.Slug, room.SortOrder, room.UpdatedAt, room.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: slug %q", ErrRoomExists, room.Slug)
		}
		return fmt.Errorf("updating room: %w", err)
	}
	return checkAffected(result, ErrRoomNotFound, room.ID)
}

// DeleteRoom removes a room and its devices.
func (r *SQLiteRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting room: %w", err)
	}
	return checkAffected(result, ErrRoomNotFound, id)
}

// CreateDevice persists a new device. The ID is generated when absent.
func (r *SQLiteRepository) CreateDevice(ctx context.Context, device *Device) error {
	if device.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDevice)
	}
	if device.RoomID == "" {
		return fmt.Errorf("%w: room_id is required", ErrInvalidDevice)
	}
	if device.ID == "" {
		device.ID = GenerateID()
	}

	now := time.Now().UTC()
	device.CreatedAt = now
	device.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (
			id, room_id, name, type, on_state,
			temperature, brightness, speed, position,
			state_updated_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		device.ID, device.RoomID, device.Name, string(device.Type),
		boolToInt(device.On),
		device.Temperature, device.Brightness, device.Speed, device.Position,
		device.StateUpdatedAt, now, now,
	)
	if err != nil {
		return fmt.Errorf("creating device: %w", err)
	}
	return nil
}

// GetDevice retrieves a device by ID.
func (r *SQLiteRepository) GetDevice(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, room_id, name, type, on_state,
		       temperature, brightness, speed, position,
		       state_updated_at, created_at, updated_at
		FROM devices WHERE id = ?`, id)

	device, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, id)
		}
		return nil, fmt.Errorf("getting device: %w", err)
	}
	return device, nil
}

// ListDevices returns all devices for a room ordered by name.
func (r *SQLiteRepository) ListDevices(ctx context.Context, roomID string) ([]*Device, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, room_id, name, type, on_state,
		       temperature, brightness, speed, position,
		       state_updated_at, created_at, updated_at
		FROM devices WHERE room_id = ? ORDER BY name`, roomID)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var devices []*Device
	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, device)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// UpdateDeviceState applies a partial state change to a device.
//
// Only the fields set on the change are written; everything else keeps
// its stored value.
func (r *SQLiteRepository) UpdateDeviceState(ctx context.Context, id string, change StateChange) error {
	if change.IsZero() {
		return ErrEmptyChange
	}

	now := time.Now().UTC()
	query := `UPDATE devices SET state_updated_at = ?, updated_at = ?`
	args := []interface{}{now, now}

	if change.On != nil {
		query += `, on_state = ?`
		args = append(args, boolToInt(*change.On))
	}
	if change.Temperature != nil {
		query += `, temperature = ?`
		args = append(args, *change.Temperature)
	}
	if change.Brightness != nil {
		query += `, brightness = ?`
		args = append(args, *change.Brightness)
	}
	if change.Speed != nil {
		query += `, speed = ?`
		args = append(args, *change.Speed)
	}
	if change.Position != nil {
		query += `, position = ?`
		args = append(args, *change.Position)
	}

	query += ` WHERE id = ?`
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating device state: %w", err)
	}
	return checkAffected(result, ErrDeviceNotFound, id)
}

// DeleteDevice removes a device.
func (r *SQLiteRepository) DeleteDevice(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return checkAffected(result, ErrDeviceNotFound, id)
}

// scanner abstracts sql.Row and sql.Rows for the scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(s scanner) (*Room, error) {
	var room Room
	err := s.Scan(
		&room.ID, &room.Name, &room.Slug, &room.SortOrder,
		&room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func scanDevice(s scanner) (*Device, error) {
	var (
		device  Device
		typ     string
		onState int
	)
	err := s.Scan(
		&device.ID, &device.RoomID, &device.Name, &typ, &onState,
		&device.Temperature, &device.Brightness, &device.Speed, &device.Position,
		&device.StateUpdatedAt, &device.CreatedAt, &device.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	device.Type = DeviceType(typ)
	device.On = onState != 0
	device.Sync = SyncSynced
	return &device, nil
}

func checkAffected(result sql.Result, notFound error, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isUniqueViolation reports whether the error is a SQLite unique
// constraint failure. String matching avoids importing driver internals.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
