package mac

import (
	"math"

	"github.com/dragino-lora/devmac/band"
)

// SetRate sets the uplink data rate, validated against the region's
// data-rate table. Grounded on LDL_MAC_setRate (include/lora_mac.h:665).
func (m *Scheduler) SetRate(rate uint8) bool {
	if _, ok := m.Runtime.Region.DataRates[rate]; !ok {
		m.Runtime.Errno = ErrRate
		return false
	}
	m.Session.Rate = rate
	return true
}

// GetRate returns the current uplink data rate. Grounded on
// LDL_MAC_getRate (include/lora_mac.h:674).
func (m *Scheduler) GetRate() uint8 { return m.Session.Rate }

// SetPower sets the transmit power index. Grounded on LDL_MAC_setPower
// (include/lora_mac.h:687).
func (m *Scheduler) SetPower(power uint8) bool {
	if int(power) >= len(m.Runtime.Region.TXPowerOffsetsDB) {
		m.Runtime.Errno = ErrPower
		return false
	}
	m.Session.TXPower = power
	return true
}

// GetPower returns the current transmit power index. Grounded on
// LDL_MAC_getPower (include/lora_mac.h:696).
func (m *Scheduler) GetPower() uint8 { return m.Session.TXPower }

// EnableADR and DisableADR toggle adaptive data rate. Grounded on
// LDL_MAC_enableADR/disableADR (include/lora_mac.h:703-715).
func (m *Scheduler) EnableADR()  { m.Session.ADR = true }
func (m *Scheduler) DisableADR() { m.Session.ADR = false }

// ADR reports whether adaptive data rate is enabled. Grounded on
// LDL_MAC_adr (include/lora_mac.h:723).
func (m *Scheduler) ADR() bool { return m.Session.ADR }

// Joined reports whether the session has completed a join. Grounded on
// LDL_MAC_joined (include/lora_mac.h:762).
func (m *Scheduler) Joined() bool { return m.Session.Joined }

// Ready reports whether the scheduler is idle and able to accept a new
// OTAA/Unconfirmed/Confirmed call. Grounded on LDL_MAC_ready
// (include/lora_mac.h:772).
func (m *Scheduler) Ready() bool { return m.Runtime.State == StateIdle }

// MTU returns the usable MACPayload size at the session's current rate.
// Grounded on LDL_MAC_mtu (include/lora_mac.h:805).
func (m *Scheduler) MTU() int { return m.mtu(m.Session.Rate) }

// TimeSinceValidDownlink returns seconds since the last downlink that
// passed MIC verification, or math.MaxUint32 if none has ever been
// received. Grounded on LDL_MAC_timeSinceValidDownlink
// (include/lora_mac.h:819).
func (m *Scheduler) TimeSinceValidDownlink() uint32 {
	if !m.Runtime.HasValidDownlink {
		return math.MaxUint32
	}
	elapsed := m.System.Ticks() - m.Runtime.LastValidDownlinkTick
	return elapsed / m.Runtime.TPS
}

// SetMaxDCycle sets the aggregated duty-cycle limit, expressed the way
// DutyCycleReq carries it: the limit is 1/2^maxDCycle. Grounded on
// LDL_MAC_setMaxDCycle (include/lora_mac.h:830).
func (m *Scheduler) SetMaxDCycle(maxDCycle uint8) { m.Session.MaxDutyCycle = maxDCycle }

// GetMaxDCycle returns the aggregated duty-cycle limit. Grounded on
// LDL_MAC_getMaxDCycle (include/lora_mac.h:840).
func (m *Scheduler) GetMaxDCycle() uint8 { return m.Session.MaxDutyCycle }

// SetNbTrans sets uplink transmission redundancy; zero leaves the
// current setting unchanged, matching the C reference's note that a
// zero value is a no-op rather than "send zero times". Grounded on
// LDL_MAC_setNbTrans (include/lora_mac.h:852).
func (m *Scheduler) SetNbTrans(nbTrans uint8) {
	if nbTrans == 0 {
		return
	}
	const redundancyMax = 15
	if nbTrans > redundancyMax {
		nbTrans = redundancyMax
	}
	m.Session.NbTrans = nbTrans
}

// GetNbTrans returns the current transmission redundancy. Grounded on
// LDL_MAC_getNbTrans (include/lora_mac.h:862).
func (m *Scheduler) GetNbTrans() uint8 { return m.Session.NbTrans }

// Priority reports whether the scheduler expects a time-sensitive event
// (an armed timer) within interval seconds, so a host with long-running
// application tasks can avoid starving it. Grounded on LDL_MAC_priority
// (include/lora_mac.h:909).
func (m *Scheduler) Priority(interval uint8) bool {
	wait := m.TicksUntilNextEvent()
	if wait == math.MaxUint32 {
		return false
	}
	return wait <= uint32(interval)*m.Runtime.TPS
}

// AddChannel adds or replaces a device-managed channel slot on a
// dynamic-plan region. Fixed-plan regions manage their channels
// through ChMaskCntl/NewChannelReq instead and reject this call.
// Grounded on LDL_MAC_addChannel (include/lora_mac.h:913).
func (m *Scheduler) AddChannel(index int, freqHz int, minRate, maxRate uint8) bool {
	if m.Runtime.Region.Plan != band.DynamicPlan || index < 0 || index >= 16 {
		return false
	}
	for len(m.Session.Channels) <= index {
		m.Session.Channels = append(m.Session.Channels, ChannelSlot{})
	}
	m.Session.Channels[index] = ChannelSlot{FreqHz: freqHz, MinDR: minRate, MaxDR: maxRate}
	m.Session.SetChannelMask(index, false)
	return true
}

// RemoveChannel clears a device-managed channel slot. Grounded on
// LDL_MAC_removeChannel (include/lora_mac.h:914).
func (m *Scheduler) RemoveChannel(index int) {
	if index < 0 || index >= len(m.Session.Channels) {
		return
	}
	m.Session.Channels[index] = ChannelSlot{}
	m.Session.SetChannelMask(index, true)
}

// MaskChannel and UnmaskChannel toggle a channel's mask bit without
// disturbing its configuration. Grounded on LDL_MAC_maskChannel/
// unmaskChannel (include/lora_mac.h:915-916).
func (m *Scheduler) MaskChannel(index int) bool {
	if index < 0 || index >= 72 {
		return false
	}
	m.Session.SetChannelMask(index, true)
	return true
}

func (m *Scheduler) UnmaskChannel(index int) bool {
	if index < 0 || index >= 72 {
		return false
	}
	m.Session.SetChannelMask(index, false)
	return true
}

// Errno reports the last error recorded against the in-flight
// operation. Grounded on LDL_MAC_errno (include/lora_mac.h:729).
func (m *Scheduler) Errno() Errno { return m.Runtime.Errno }

// State reports the scheduler's top-level state. Grounded on
// LDL_MAC_state (include/lora_mac.h:753).
func (m *Scheduler) State() State { return m.Runtime.State }

// Op reports the public operation currently in flight, if any.
// Grounded on LDL_MAC_op (include/lora_mac.h:743).
func (m *Scheduler) Op() Op { return m.Runtime.Op }
