package mixer

// Unsupported is the Backend for platforms without an audio adapter. Every
// call fails with ErrUnsupported.
type Unsupported struct{}

func (Unsupported) DefaultInputDevice() (DeviceID, error) { return InvalidDevice, ErrUnsupported }
func (Unsupported) Muted(DeviceID) (bool, error) { return false, ErrUnsupported }
func (Unsupported) SetMuted(DeviceID, bool) error { return ErrUnsupported }
func (Unsupported) Volume(DeviceID) (float32, error) { return 0, ErrUnsupported }
func (Unsupported) SetVolume(DeviceID, float32) error { return ErrUnsupported }
func (Unsupported) DeviceName(DeviceID) (string, error) { return "", ErrUnsupported }
func (Unsupported) Close() error { return nil }

func (Unsupported) AddListener(DeviceID, Property, func()) (func(), error) {
	return nil, ErrUnsupported
}
