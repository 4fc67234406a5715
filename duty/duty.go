// Package duty tracks the seven off-time counters a class-A device
// spends down as it transmits, and answers which channels are free to
// use at a given data rate (component G).
package duty

import "math"

// BandIndex names one of the seven off-time counters. Band1..Band5 are
// region-specific sub-bands; Global accrues whenever the device is
// joined and operating under a network-imposed max_duty_cycle; Retry
// is a counter slot that RecordTransmission never accrues into (the mac
// scheduler times its confirmed-uplink retries separately).
type BandIndex int

// The seven counters.
const (
	Band1 BandIndex = iota
	Band2
	Band3
	Band4
	Band5
	Global
	Retry
	numBands
)

// Channel is one channel of the accountant's view of the active channel
// plan: its data-rate bracket, its mask bit, and which band (if any) its
// off-time accrues against. BandIndex of -1 means the channel is not
// subject to a regional duty-cycle limit (as on the US/AU fixed plans).
type Channel struct {
	FreqHz    int
	MinDR     uint8
	MaxDR     uint8
	BandIndex int
	Masked    bool
}

// Accountant holds the seven saturating off-time counters and the tick
// bookkeeping needed to decay them.
type Accountant struct {
	bands        [numBands]uint32
	tps          uint32
	lastPollTick uint32
}

// NewAccountant creates an accountant for a tick counter running at tps
// Hz, initialized as though polled at tick 0.
func NewAccountant(tps uint32) *Accountant {
	return &Accountant{tps: tps}
}

// Band returns the current value of the named counter.
func (a *Accountant) Band(b BandIndex) uint32 {
	return a.bands[b]
}

func saturatingAdd(x, y uint32) uint32 {
	if math.MaxUint32-x < y {
		return math.MaxUint32
	}
	return x + y
}

func saturatingSub(x, y uint32) uint32 {
	if y > x {
		return 0
	}
	return x - y
}

// RecordTransmission accounts for a transmission of airtimeMs on the
// band bandIdx, and additionally against Global when the device is
// joined and the network has set a nonzero max_duty_cycle. bandIdx < 0
// means the channel carries no regional duty-cycle restriction.
func (a *Accountant) RecordTransmission(bandIdx int, offTimeFactor uint32, airtimeMs uint32, joined bool, maxDutyCycle uint8) {
	mul := func(x, y uint32) uint32 {
		if p := uint64(x) * uint64(y); p <= math.MaxUint32 {
			return uint32(p)
		}
		return math.MaxUint32
	}
	if bandIdx >= 0 && offTimeFactor > 0 {
		a.bands[bandIdx] = saturatingAdd(a.bands[bandIdx], mul(airtimeMs, offTimeFactor))
	}
	if joined && maxDutyCycle > 0 {
		a.bands[Global] = saturatingAdd(a.bands[Global], mul(airtimeMs, 1<<maxDutyCycle))
	}
}

// ProcessBands decays every counter by the number of whole milliseconds
// elapsed since the last call (or since construction), as measured
// against the tick counter's current value nowTick.
func (a *Accountant) ProcessBands(nowTick uint32) {
	elapsedTicks := nowTick - a.lastPollTick // wraps correctly for uint32
	elapsedMs := uint32(uint64(elapsedTicks) * 1000 / uint64(a.tps))
	if elapsedMs == 0 {
		return
	}
	for i := range a.bands {
		a.bands[i] = saturatingSub(a.bands[i], elapsedMs)
	}
	ticksConsumed := uint32(uint64(elapsedMs) * uint64(a.tps) / 1000)
	a.lastPollTick += ticksConsumed
}

// Available reports whether ch may be used at rate, given bandLimit (the
// maximum tolerable off-time counter value; 0 for the normal path,
// region_max_dcycle_off_limit for retry-of-unconfirmed).
func (a *Accountant) Available(ch Channel, rate uint8, bandLimit uint32) bool {
	if ch.Masked {
		return false
	}
	if rate < ch.MinDR || rate > ch.MaxDR {
		return false
	}
	if ch.BandIndex < 0 {
		return true
	}
	return a.bands[ch.BandIndex] <= bandLimit
}

// SelectChannel enumerates the channels available at rate under
// bandLimit, uniformly samples one via randByte (preferring any channel
// other than prevIdx when more than one qualifies), and returns its
// index into channels and its frequency. ok is false if none qualify.
func (a *Accountant) SelectChannel(channels []Channel, rate uint8, prevIdx int, bandLimit uint32, randByte func() uint8) (idx int, freqHz int, ok bool) {
	var candidates []int
	for i, ch := range channels {
		if a.Available(ch, rate, bandLimit) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return 0, 0, false
	}

	if len(candidates) > 1 {
		filtered := candidates[:0]
		for _, c := range candidates {
			if c != prevIdx {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	choice := candidates[int(randByte())%len(candidates)]
	return choice, channels[choice].FreqHz, true
}

// MsUntilNextChannel returns the minimum, over every channel whose mask
// and rate bracket admit rate, of max(band[channel], band[Global]), or
// UINT32_MAX if no channel admits rate regardless of its off-time.
func (a *Accountant) MsUntilNextChannel(channels []Channel, rate uint8) uint32 {
	best := uint32(math.MaxUint32)
	any := false
	for _, ch := range channels {
		if ch.Masked || rate < ch.MinDR || rate > ch.MaxDR {
			continue
		}
		any = true
		wait := a.bands[Global]
		if ch.BandIndex >= 0 && a.bands[ch.BandIndex] > wait {
			wait = a.bands[ch.BandIndex]
		}
		if wait < best {
			best = wait
		}
	}
	if !any {
		return math.MaxUint32
	}
	return best
}
