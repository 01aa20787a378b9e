package telldus

import (
	"github.com/nerrad567/tellstick-core/internal/tellcore"
)

// Sensor identifies one sensor by its protocol, model and id triplet.
// DataTypes holds the value kinds the sensor has reported.
type Sensor struct {
	Protocol  string
	Model     string
	ID        int
	DataTypes tellcore.SensorDataType

	lib library
}

// Value returns the latest reading of the given kind.
func (s *Sensor) Value(dataType tellcore.SensorDataType) (tellcore.SensorReading, error) {
	return s.lib.SensorValue(s.Protocol, s.Model, s.ID, dataType)
}

// Has reports whether the sensor has reported values of the given kind.
func (s *Sensor) Has(dataType tellcore.SensorDataType) bool {
	return s.DataTypes&dataType != 0
}

// HasTemperature reports whether the sensor reports temperatures.
func (s *Sensor) HasTemperature() bool { return s.Has(tellcore.SensorTemperature) }

// HasHumidity reports whether the sensor reports humidity.
func (s *Sensor) HasHumidity() bool { return s.Has(tellcore.SensorHumidity) }

// Temperature returns the latest temperature reading.
func (s *Sensor) Temperature() (tellcore.SensorReading, error) {
	return s.Value(tellcore.SensorTemperature)
}

// Humidity returns the latest humidity reading.
func (s *Sensor) Humidity() (tellcore.SensorReading, error) {
	return s.Value(tellcore.SensorHumidity)
}
