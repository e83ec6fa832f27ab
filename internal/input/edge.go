// Package input delivers the record toggle command from a GPIO push
// button.
package input

// Detector reduces a stream of sampled button levels to discrete press
// events. The previous level is held explicitly so repeated reports of the
// same level (chatter surviving the kernel debounce) never fire twice.
type Detector struct {
	pressed bool
}

// Press folds in one sample and reports whether it is a new press
// (released → pressed transition).
func (d *Detector) Press(pressed bool) bool {
	was := d.pressed
	d.pressed = pressed
	return pressed && !was
}
