// Package mac implements the class-A scheduler: the state machine that
// drives join and data operations through TX, RX1, RX2 and retry, the
// persisted session it operates on, and the timer/input machinery that
// keeps it safe against a radio ISR.
package mac

import "github.com/dragino-lora/devmac"

// ChannelSlot is one of a session's up to 16 device-managed channel
// slots (EU-style dynamic plans only; fixed plans use the region's
// built-in channel table and only the Mask bits here apply).
type ChannelSlot struct {
	FreqHz int
	MinDR  uint8
	MaxDR  uint8
}

// Session is the part of a device's state that survives a reboot. It
// carries no secrets; the session keys are held by the Scheduler, not here.
type Session struct {
	UpCounter       uint32
	NwkDownCounter  uint32
	AppDownCounter  uint32

	DevAddr devmac.DevAddr
	NetID   devmac.NetID

	Channels []ChannelSlot  // dynamic-plan slots; nil on a fixed plan
	ChMask   [72 / 8]uint8  // 72-bit mask over channel indices

	Rate          uint8
	TXPower       uint8
	MaxDutyCycle  uint8
	NbTrans       uint8
	RX1DROffset   uint8
	RX1Delay      uint8 // seconds
	RX2Rate       uint8
	RX2FreqHz     int

	Joined  bool
	ADR     bool
	Version devmac.MACVersion
}

// ChannelMasked reports whether channel index i is masked off.
func (s *Session) ChannelMasked(i int) bool {
	if i < 0 || i >= 72 {
		return true
	}
	return s.ChMask[i/8]&(1<<uint(i%8)) != 0
}

// SetChannelMask sets or clears the mask bit for channel index i.
func (s *Session) SetChannelMask(i int, masked bool) {
	if i < 0 || i >= 72 {
		return
	}
	if masked {
		s.ChMask[i/8] |= 1 << uint(i%8)
	} else {
		s.ChMask[i/8] &^= 1 << uint(i%8)
	}
}

// resolveDownCounter32 implements the monotone-counter-recovery
// invariant: given the stored 32-bit counter and a freshly received
// 16-bit counter c, it returns the smallest 32-bit value >= stored whose
// low 16 bits equal c, wrapping the high bits forward when c has lapped.
func resolveDownCounter32(stored uint32, c uint16) uint32 {
	storedLow := uint16(stored)
	high := stored &^ 0xffff
	if c < storedLow {
		high += 1 << 16
	}
	return high | uint32(c)
}
