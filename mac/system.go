package mac

import "github.com/dragino-lora/devmac"

// Identity is the device's join-time identity, provisioned by the host.
type Identity struct {
	DevEUI  devmac.EUI64
	JoinEUI devmac.EUI64
}

// System is the host-platform capability: tick source, entropy,
// battery level, ISR latency compensation, identity storage, and
// session persistence.
type System interface {
	Ticks() uint32
	EPS() uint32 // crystal error, ticks/second
	Rand() uint8
	BatteryLevel() uint8
	Advance() uint32 // ISR-latency compensation, ticks

	Identity() Identity

	RestoreSession() (Session, bool)
	SaveSession(Session)

	// CriticalSection runs fn with interrupts (or the radio ISR path)
	// held off, the only primitive the timer/input machinery needs to
	// be safe against a concurrent radio_event call.
	CriticalSection(fn func())
}
