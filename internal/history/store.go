package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/tellstick-core/internal/infrastructure/database"
	"github.com/nerrad567/tellstick-core/internal/tellcore"
)

// ErrNoSamples indicates no stored reading matched the query.
var ErrNoSamples = errors.New("history: no samples")

// Sample is one stored sensor reading.
type Sample struct {
	Protocol   string
	Model      string
	SensorID   int
	DataType   tellcore.SensorDataType
	Value      string
	RecordedAt time.Time
}

// DeviceEvent is one stored device state change.
type DeviceEvent struct {
	DeviceID   int
	Method     tellcore.Method
	Data       string
	RecordedAt time.Time
}

// Store persists sensor samples and device events in SQLite.
//
// All timestamps are stored as RFC3339 UTC strings, matching the rest
// of the schema.
type Store struct {
	db *database.DB
}

// NewStore creates a store over an open, migrated database.
func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// InsertSample stores one sensor reading.
func (s *Store) InsertSample(ctx context.Context, sample Sample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sensor_samples (protocol, model, sensor_id, data_type, value, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sample.Protocol,
		sample.Model,
		sample.SensorID,
		int(sample.DataType),
		sample.Value,
		sample.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting sample: %w", err)
	}
	return nil
}

// Latest returns the most recent reading for one sensor series.
// Returns ErrNoSamples if nothing has been recorded yet.
func (s *Store) Latest(ctx context.Context, protocol, model string, sensorID int, dataType tellcore.SensorDataType) (Sample, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT value, recorded_at FROM sensor_samples
		WHERE protocol = ? AND model = ? AND sensor_id = ? AND data_type = ?
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`,
		protocol, model, sensorID, int(dataType),
	)

	sample := Sample{
		Protocol: protocol,
		Model:    model,
		SensorID: sensorID,
		DataType: dataType,
	}
	var recordedAt string
	if err := row.Scan(&sample.Value, &recordedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Sample{}, ErrNoSamples
		}
		return Sample{}, fmt.Errorf("querying latest sample: %w", err)
	}

	sample.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // Format is controlled
	return sample, nil
}

// Range returns readings for one sensor series between from and to
// (inclusive), oldest first.
func (s *Store) Range(ctx context.Context, protocol, model string, sensorID int, dataType tellcore.SensorDataType, from, to time.Time) ([]Sample, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT value, recorded_at FROM sensor_samples
		WHERE protocol = ? AND model = ? AND sensor_id = ? AND data_type = ?
		  AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY recorded_at ASC, id ASC`,
		protocol, model, sensorID, int(dataType),
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("querying sample range: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		sample := Sample{
			Protocol: protocol,
			Model:    model,
			SensorID: sensorID,
			DataType: dataType,
		}
		var recordedAt string
		if err := rows.Scan(&sample.Value, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning sample row: %w", err)
		}
		sample.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // Format is controlled
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sample rows: %w", err)
	}
	return samples, nil
}

// Prune deletes samples and device events recorded before the cutoff.
// Returns the number of rows removed.
func (s *Store) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	cutoff := olderThan.UTC().Format(time.RFC3339)

	var total int64
	for _, query := range []string{
		"DELETE FROM sensor_samples WHERE recorded_at < ?",
		"DELETE FROM device_events WHERE recorded_at < ?",
	} {
		result, err := s.db.ExecContext(ctx, query, cutoff)
		if err != nil {
			return total, fmt.Errorf("pruning history: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("counting pruned rows: %w", err)
		}
		total += n
	}
	return total, nil
}

// InsertDeviceEvent stores one device state change.
func (s *Store) InsertDeviceEvent(ctx context.Context, event DeviceEvent) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO device_events (device_id, method, data, recorded_at)
		VALUES (?, ?, ?, ?)`,
		event.DeviceID,
		int(event.Method),
		event.Data,
		event.RecordedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting device event: %w", err)
	}
	return nil
}

// DeviceEvents returns state changes for one device between from and to
// (inclusive), oldest first.
func (s *Store) DeviceEvents(ctx context.Context, deviceID int, from, to time.Time) ([]DeviceEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT method, data, recorded_at FROM device_events
		WHERE device_id = ? AND recorded_at >= ? AND recorded_at <= ?
		ORDER BY recorded_at ASC, id ASC`,
		deviceID,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("querying device events: %w", err)
	}
	defer rows.Close()

	var events []DeviceEvent
	for rows.Next() {
		event := DeviceEvent{DeviceID: deviceID}
		var method int
		var recordedAt string
		if err := rows.Scan(&method, &event.Data, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning device event row: %w", err)
		}
		event.Method = tellcore.Method(method)
		event.RecordedAt, _ = time.Parse(time.RFC3339, recordedAt) //nolint:errcheck // Format is controlled
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device event rows: %w", err)
	}
	return events, nil
}
