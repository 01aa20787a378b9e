package telldus

import (
	"errors"
	"reflect"
	"testing"
)

func TestDeviceParameterUnknown(t *testing.T) {
	dev := &Device{id: 3, lib: &fakeLib{}} // fake returns the default back

	_, err := dev.Parameter("house")
	if !errors.Is(err, ErrUnknownParameter) {
		t.Errorf("Parameter() error = %v, want ErrUnknownParameter", err)
	}
}

func TestDeviceParametersSkipsUnknown(t *testing.T) {
	values := map[string]string{"house": "12345", "unit": "1"}
	lib := &fakeLib{
		deviceParameterFn: func(deviceID int, name, defaultValue string) (string, error) {
			if v, ok := values[name]; ok {
				return v, nil
			}
			return defaultValue, nil
		},
	}
	dev := &Device{id: 3, lib: lib}

	params, err := dev.Parameters()
	if err != nil {
		t.Fatalf("Parameters() error = %v", err)
	}
	if !reflect.DeepEqual(params, values) {
		t.Errorf("Parameters() = %v, want %v", params, values)
	}
}

func TestDeviceParametersPropagatesErrors(t *testing.T) {
	callErr := errors.New("service gone")
	lib := &fakeLib{
		deviceParameterFn: func(int, string, string) (string, error) { return "", callErr },
	}
	dev := &Device{id: 3, lib: lib}

	if _, err := dev.Parameters(); !errors.Is(err, callErr) {
		t.Errorf("Parameters() error = %v, want %v", err, callErr)
	}
}

func TestDeviceCommandsUseDeviceID(t *testing.T) {
	lib := &fakeLib{}
	dev := &Device{id: 9, lib: lib}

	if err := dev.TurnOn(); err != nil {
		t.Fatalf("TurnOn() error = %v", err)
	}
	if err := dev.Dim(128); err != nil {
		t.Fatalf("Dim() error = %v", err)
	}
	if err := dev.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	want := []string{"TurnOn(9)", "Dim(9,128)", "RemoveDevice(9)"}
	if !reflect.DeepEqual(lib.calls, want) {
		t.Errorf("calls = %v, want %v", lib.calls, want)
	}
}
