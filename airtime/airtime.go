// Package airtime computes LoRa on-air time in ticks of the host's free-
// running tick counter, rather than wall-clock time.Duration, so the
// scheduler can arm its watchdog timers directly against the same clock
// it already counts ticks on. The formula follows Semtech's LoRa design
// guide, adapted from nanoseconds to ticks at an arbitrary tick rate.
package airtime

import (
	"errors"
	"math"
)

// CodingRate is the LoRa forward-error-correction rate.
type CodingRate int

// Available coding rates.
const (
	CodingRate45 CodingRate = 1
	CodingRate46 CodingRate = 2
	CodingRate47 CodingRate = 3
	CodingRate48 CodingRate = 4
)

// SymbolPeriodTicks returns the duration of one LoRa symbol, in ticks of
// a counter running at tps Hz, for spreading factor sf at bandwidth
// bwHz.
func SymbolPeriodTicks(sf, bwHz int, tps uint32) uint32 {
	return uint32((uint64(1) << uint(sf)) * uint64(tps) / uint64(bwHz))
}

// PreambleTicks returns the preamble duration for a LoRaWAN frame (a
// fixed 12.25 symbols) given its symbol period.
func PreambleTicks(symbolPeriod uint32) uint32 {
	return uint32(uint64(symbolPeriod) * 1225 / 100)
}

// PayloadSymbols returns the number of symbols needed to carry a payload
// of size payloadSize at spreading factor sf and coding rate cr. The
// explicit header is always present on a LoRaWAN frame.
func PayloadSymbols(payloadSize, sf int, cr CodingRate, crcEnabled, lowDataRateOptimize bool) (int, error) {
	if cr < CodingRate45 || cr > CodingRate48 {
		return 0, errors.New("airtime: coding rate must be between 1 and 4")
	}

	var crcBit, ldo float64
	if crcEnabled {
		crcBit = 1
	}
	if lowDataRateOptimize {
		ldo = 1
	}

	const ih = 0 // explicit header always present

	pl := float64(payloadSize)
	sfF := float64(sf)
	crF := float64(cr) + 4

	numerator := 8*pl - 4*sfF + 28 + 16*crcBit - 20*ih
	denominator := 4 * (sfF - 2*ldo)

	return int(8 + math.Max(math.Ceil(numerator/denominator)*crF, 0)), nil
}

// Calculate returns the total on-air time of a LoRa frame, in ticks of a
// counter running at tps Hz. crcEnabled should be true for uplinks
// (which carry a CRC) and false for downlinks (which do not).
func Calculate(payloadSize, sf, bwHz int, tps uint32, cr CodingRate, crcEnabled, lowDataRateOptimize bool) (uint32, error) {
	symbolPeriod := SymbolPeriodTicks(sf, bwHz, tps)
	preamble := PreambleTicks(symbolPeriod)

	nPayload, err := PayloadSymbols(payloadSize, sf, cr, crcEnabled, lowDataRateOptimize)
	if err != nil {
		return 0, err
	}

	return preamble + uint32(nPayload)*symbolPeriod, nil
}

// LowDataRateOptimize reports whether the mandatory low-data-rate
// optimization applies for the given bandwidth and spreading factor, per
// LoRaWAN regional parameters (bw=125kHz and sf in {11,12}).
func LowDataRateOptimize(bwHz, sf int) bool {
	return bwHz == 125000 && (sf == 11 || sf == 12)
}
