package history

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/tellstick-core/internal/infrastructure/logging"
	"github.com/nerrad567/tellstick-core/internal/tellcore"
	"github.com/nerrad567/tellstick-core/internal/telldus"
)

// pollTimeout bounds the database work done by one poll cycle.
const pollTimeout = 30 * time.Second

// allDataTypes lists every value kind a sensor can report, in reporting
// order.
var allDataTypes = []tellcore.SensorDataType{
	tellcore.SensorTemperature,
	tellcore.SensorHumidity,
	tellcore.SensorRainRate,
	tellcore.SensorRainTotal,
	tellcore.SensorWindDirection,
	tellcore.SensorWindAverage,
	tellcore.SensorWindGust,
}

// Reading is one polled sensor value with its native timestamp.
type Reading struct {
	Protocol  string
	Model     string
	SensorID  int
	DataType  tellcore.SensorDataType
	Value     string
	Timestamp int64
}

// source yields the current reading of every known sensor.
type source interface {
	Readings() ([]Reading, error)
}

// coreSource polls sensors through the telldus core.
type coreSource struct{ c *telldus.Core }

// Readings enumerates sensors and reads every data type each one has
// reported. Individual read failures are skipped; the value will be
// retried on the next poll.
func (s coreSource) Readings() ([]Reading, error) {
	sensors, err := s.c.Sensors()
	if err != nil {
		return nil, err
	}

	var readings []Reading
	for _, sensor := range sensors {
		for _, dataType := range allDataTypes {
			if !sensor.Has(dataType) {
				continue
			}
			value, err := sensor.Value(dataType)
			if err != nil {
				continue
			}
			readings = append(readings, Reading{
				Protocol:  sensor.Protocol,
				Model:     sensor.Model,
				SensorID:  sensor.ID,
				DataType:  dataType,
				Value:     value.Value,
				Timestamp: value.Timestamp,
			})
		}
	}
	return readings, nil
}

// mirror receives numeric readings alongside the SQLite store.
// *influxdb.Client satisfies it.
type mirror interface {
	WriteSensorValue(protocol, model string, sensorID int, kind string, value float64, timestamp time.Time)
}

// Options configures optional recorder behaviour.
type Options struct {
	// Interval is how often sensors are polled. Defaults to 5 minutes.
	Interval time.Duration

	// Retention is how long samples are kept. Zero disables pruning.
	Retention time.Duration

	// Mirror, if set, receives each new numeric reading.
	Mirror mirror
}

// defaultInterval is used when Options.Interval is unset.
const defaultInterval = 5 * time.Minute

// Recorder polls sensors on an interval and persists new readings.
//
// The native service keeps one value per sensor series; the recorder
// remembers the last stored timestamp per series and only inserts when
// a fresh radio frame has arrived, so the poll interval can be much
// shorter than the sensors' reporting interval.
type Recorder struct {
	source    source
	store     *Store
	log       *logging.Logger
	interval  time.Duration
	retention time.Duration
	mirror    mirror

	// lastSeen maps a series key to the native timestamp last stored.
	lastSeen map[string]int64

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// New creates a recorder polling the given core.
// Call Start to begin recording.
func New(core *telldus.Core, store *Store, log *logging.Logger, opts Options) *Recorder {
	return newRecorder(coreSource{core}, store, log, opts)
}

func newRecorder(src source, store *Store, log *logging.Logger, opts Options) *Recorder {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Recorder{
		source:    src,
		store:     store,
		log:       log,
		interval:  interval,
		retention: opts.Retention,
		mirror:    opts.Mirror,
		lastSeen:  make(map[string]int64),
	}
}

// Start launches the poll loop. The first poll runs immediately.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.stop = make(chan struct{})
	r.wg.Add(1)
	go r.loop()

	r.log.Info("sensor recorder started",
		"poll_interval", r.interval.String(),
		"retention", r.retention.String(),
	)
}

// Close stops the poll loop and waits for an in-flight poll to finish.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return nil
	}
	r.started = false
	close(r.stop)
	r.mu.Unlock()

	r.wg.Wait()
	r.log.Info("sensor recorder stopped")
	return nil
}

func (r *Recorder) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.poll()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.poll()
		}
	}
}

// poll reads every sensor once, stores fresh readings and prunes
// expired history.
func (r *Recorder) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	readings, err := r.source.Readings()
	if err != nil {
		r.log.Error("enumerating sensors", "error", err)
		return
	}

	now := time.Now().UTC()
	stored := 0
	for _, reading := range readings {
		key := seriesKey(reading)
		if reading.Timestamp != 0 && r.lastSeen[key] == reading.Timestamp {
			continue // Same radio frame as last poll.
		}

		recordedAt := now
		if reading.Timestamp != 0 {
			recordedAt = time.Unix(reading.Timestamp, 0).UTC()
		}

		err := r.store.InsertSample(ctx, Sample{
			Protocol:   reading.Protocol,
			Model:      reading.Model,
			SensorID:   reading.SensorID,
			DataType:   reading.DataType,
			Value:      reading.Value,
			RecordedAt: recordedAt,
		})
		if err != nil {
			r.log.Error("storing sensor sample", "series", key, "error", err)
			continue
		}

		r.lastSeen[key] = reading.Timestamp
		stored++

		if r.mirror != nil {
			if value, err := strconv.ParseFloat(reading.Value, 64); err == nil {
				r.mirror.WriteSensorValue(reading.Protocol, reading.Model, reading.SensorID,
					reading.DataType.String(), value, recordedAt)
			}
		}
	}

	if stored > 0 {
		r.log.Debug("stored sensor samples", "count", stored)
	}

	if r.retention > 0 {
		pruned, err := r.store.Prune(ctx, now.Add(-r.retention))
		if err != nil {
			r.log.Error("pruning sensor history", "error", err)
		} else if pruned > 0 {
			r.log.Debug("pruned expired history", "rows", pruned)
		}
	}
}

func seriesKey(r Reading) string {
	return fmt.Sprintf("%s/%s/%d/%d", r.Protocol, r.Model, r.SensorID, int(r.DataType))
}
