package telldus

import (
	"errors"
	"fmt"

	"github.com/nerrad567/tellstick-core/internal/tellcore"
)

// ErrUnknownProperty reports a controller property the controller does not
// support.
var ErrUnknownProperty = errors.New("telldus: unknown controller property")

// Controller is one known TellStick. Available is false for controllers the
// service remembers but that are currently unplugged.
type Controller struct {
	ID        int
	Type      tellcore.ControllerType
	Name      string
	Available bool

	lib library
}

// Value returns a named controller property, or an error wrapping
// ErrUnknownProperty when the controller has no such property.
func (c *Controller) Value(name string) (string, error) {
	value, err := c.lib.ControllerValue(c.ID, name)
	if tellcore.IsCode(err, tellcore.CodeMethodNotSupported) {
		return "", fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return value, err
}

// SetValue writes a named controller property, or returns an error wrapping
// ErrUnknownProperty when the property is not writable on this controller.
func (c *Controller) SetValue(name, value string) error {
	err := c.lib.SetControllerValue(c.ID, name, value)
	if tellcore.IsCode(err, tellcore.CodeSyntax) {
		return fmt.Errorf("%w: %s", ErrUnknownProperty, name)
	}
	return err
}

// Serial returns the controller's serial number.
func (c *Controller) Serial() (string, error) { return c.Value("serial") }

// Firmware returns the controller's firmware version.
func (c *Controller) Firmware() (string, error) { return c.Value("firmware") }

// Remove forgets an unavailable controller. The service refuses to remove a
// connected one.
func (c *Controller) Remove() error { return c.lib.RemoveController(c.ID) }
