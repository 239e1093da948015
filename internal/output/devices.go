package output

// Manager seeds a small static device capability table, substituting for
// native device enumeration, which oto/v3 does not expose. Entries model
// the kind of host APIs a real Windows audio stack reports: WASAPI
// entries are exclusive-capable, DirectSound/other entries are not. See
// DESIGN.md for why a native-enumeration library (portaudio) was not
// adopted in its place.
type Manager struct {
	devices []Device
}

// NewManager builds a Manager with the default capability table.
func NewManager() *Manager {
	return &Manager{
		devices: []Device{
			{ID: 1, Name: "Default Output Device", HostAPI: "WASAPI", MaxOutputChannels: 2, DefaultSampleRate: 48000},
			{ID: 2, Name: "Default Output Device (Exclusive)", HostAPI: "WASAPI Exclusive", MaxOutputChannels: 2, DefaultSampleRate: 48000},
			{ID: 3, Name: "Default Output Device", HostAPI: "DirectSound", MaxOutputChannels: 2, DefaultSampleRate: 44100},
		},
	}
}

// Devices returns all known devices.
func (m *Manager) Devices() []Device {
	return m.devices
}

// Grouped splits devices by host-API exclusive-capability, matching the
// GET /devices {wasapi, other} response shape.
func (m *Manager) Grouped() (wasapi, other []Device) {
	for _, d := range m.devices {
		if d.ExclusiveCapable() {
			wasapi = append(wasapi, d)
		} else {
			other = append(other, d)
		}
	}
	return wasapi, other
}

// Default returns the default device (the first entry).
func (m *Manager) Default() Device {
	return m.devices[0]
}

// ByID looks up a device by ID. ok is false when no device has that ID;
// it does not fall back to the default device.
func (m *Manager) ByID(id int) (Device, bool) {
	for _, d := range m.devices {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

// ProbeDefaultSampleRate reports the device's default sample rate when it
// is exclusive-capable, per §4.5 step 4's host-API capability probe.
func (m *Manager) ProbeDefaultSampleRate(d Device) (int, bool) {
	if !d.ExclusiveCapable() || d.DefaultSampleRate <= 0 {
		return 0, false
	}
	return d.DefaultSampleRate, true
}
