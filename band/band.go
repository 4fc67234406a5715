// Package band provides the per-region constants a class-A device needs:
// the channel plan, the data-rate table, the TX-power table, the RX1
// offset table, RX-window timing defaults, and the sub-band duty-cycle
// table. It has no join-retry rate schedule; the mac scheduler joins and
// retries at data rate 0. Each region is a plain value
// returned by Get; nothing here mutates shared state, unlike a
// network-server's per-device channel bookkeeping.
package band

import (
	"fmt"
	"time"
)

// Name identifies one of the four regions this stack supports.
type Name string

// Supported regions (§6 of the spec this module implements).
const (
	EU863870 Name = "EU_863_870"
	EU433    Name = "EU_433"
	US902928 Name = "US_902_928"
	AU915928 Name = "AU_915_928"
)

// Modulation is the PHY modulation a data-rate uses.
type Modulation string

// Supported modulations.
const (
	LoRaModulation Modulation = "LORA"
	FSKModulation  Modulation = "FSK"
)

// DataRate describes one entry of a region's data-rate table: its
// (SF, BW) or bit-rate parameters and the maximum MACPayload size (MTU)
// it can carry.
type DataRate struct {
	Modulation   Modulation
	SpreadFactor int // LoRa only
	Bandwidth    int // kHz, LoRa only
	BitRate      int // bps, FSK only
	MTU          int // maximum MACPayload size in bytes
}

// ChannelPlan distinguishes EU-style device-managed channel lists from
// US/AU-style fixed 72-channel plans.
type ChannelPlan int

// Supported channel-plan shapes.
const (
	// DynamicPlan: up to 16 device-managed channel slots (§3), mutated by
	// NewChannelReq / DLChannelReq.
	DynamicPlan ChannelPlan = iota
	// FixedPlan: 72 preassigned channels; ChMaskCntl 6/7 all-on/all-off.
	FixedPlan
)

// Channel is one entry of a region's default channel plan: a frequency
// and the data-rate bracket it may be used at.
type Channel struct {
	FreqHz int
	MinDR  uint8
	MaxDR  uint8
}

// DutyCycleBand is one sub-band of the per-region duty-cycle table
// (component G): transmissions whose frequency falls in
// [MinFreqHz, MaxFreqHz) accrue off-time of OffTimeFactor times their
// airtime (a duty cycle of 1/OffTimeFactor). A factor of 0 means no duty-cycle restriction applies (as on
// the US/AU fixed plans, which are instead dwell-time limited).
type DutyCycleBand struct {
	MinFreqHz     int
	MaxFreqHz     int
	OffTimeFactor uint32
}

// Defaults carries the region's fixed RX/join timing and RX2 channel.
type Defaults struct {
	RX2FreqHz        int
	RX2DataRate      uint8
	RX1Delay         time.Duration
	RX2Delay         time.Duration
	JoinAcceptDelay1 time.Duration
	JoinAcceptDelay2 time.Duration
	MaxEIRP          float32
}

// Region is the complete, static description of one regional channel
// plan, as consulted by the scheduler and the duty-cycle accountant.
type Region struct {
	Name              Name
	Plan              ChannelPlan
	NumChannels       int // 16 for a dynamic plan, 72 for a fixed plan
	DataRates         map[uint8]DataRate
	RX1DROffsetTable  map[uint8][]uint8 // [uplinkDR][offset] -> rx1 DR
	TXPowerOffsetsDB  []int             // index -> dB offset from MaxEIRP
	DefaultChannels   []Channel
	DutyCycleBands    []DutyCycleBand // matched in order; last entry is the catch-all
	MaxDCycleOffLimit uint32          // §4.5 retry-of-unconfirmed limit, ms
	Defaults          Defaults
}

var registry = map[Name]func() Region{
	EU863870: newEU863870,
	EU433:    newEU433,
	US902928: newUS902928,
	AU915928: newAU915928,
}

// Get returns the static table for the named region.
func Get(name Name) (Region, error) {
	f, ok := registry[name]
	if !ok {
		return Region{}, fmt.Errorf("band: unsupported region %q", name)
	}
	return f(), nil
}

// RX1DataRate returns the RX1 data-rate index for an uplink at txDR with
// the given offset, clamped to the table's span as the region defines
// it (offsets beyond the table repeat the lowest data-rate).
func (r Region) RX1DataRate(txDR, offset uint8) (uint8, error) {
	row, ok := r.RX1DROffsetTable[txDR]
	if !ok {
		return 0, fmt.Errorf("band: no RX1 data-rate row for uplink DR %d", txDR)
	}
	if int(offset) >= len(row) {
		return row[len(row)-1], nil
	}
	return row[offset], nil
}

// MTU returns the maximum MACPayload size at the given data-rate.
func (r Region) MTU(dr uint8) (int, error) {
	d, ok := r.DataRates[dr]
	if !ok {
		return 0, fmt.Errorf("band: unknown data-rate %d", dr)
	}
	return d.MTU, nil
}

// OffTimeFactor returns the duty-cycle off-time factor (§4.5) that
// applies to a transmission at freqHz, or 0 if the region imposes none.
func (r Region) OffTimeFactor(freqHz int) uint32 {
	for _, b := range r.DutyCycleBands {
		if freqHz >= b.MinFreqHz && freqHz < b.MaxFreqHz {
			return b.OffTimeFactor
		}
	}
	if len(r.DutyCycleBands) > 0 {
		return r.DutyCycleBands[len(r.DutyCycleBands)-1].OffTimeFactor
	}
	return 0
}

// BandIndex returns which of the region's duty-cycle bands (0-based,
// matching Band1..Band5 of the runtime's seven off-time counters)
// covers freqHz, or -1 if none does (no duty-cycle restriction).
func (r Region) BandIndex(freqHz int) int {
	for i, b := range r.DutyCycleBands {
		if freqHz >= b.MinFreqHz && freqHz < b.MaxFreqHz {
			return i
		}
	}
	return -1
}
