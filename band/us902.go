package band

import "time"

func newUS902928() Region {
	r := Region{
		Name:        US902928,
		Plan:        FixedPlan,
		NumChannels: 72,
		DataRates: map[uint8]DataRate{
			0: {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 125, MTU: 19},
			1: {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 125, MTU: 61},
			2: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 125, MTU: 133},
			3: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 125, MTU: 250},
			4: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 500, MTU: 250},
			// DR5/6 are LR-FHSS, uplink-only; no device-side MAC handling yet.
			8:  {Modulation: LoRaModulation, SpreadFactor: 12, Bandwidth: 500, MTU: 61},
			9:  {Modulation: LoRaModulation, SpreadFactor: 11, Bandwidth: 500, MTU: 137},
			10: {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 500, MTU: 250},
			11: {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 500, MTU: 250},
			12: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 500, MTU: 250},
			13: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 500, MTU: 250},
		},
		RX1DROffsetTable: map[uint8][]uint8{
			0: {10, 9, 8, 8},
			1: {11, 10, 9, 8},
			2: {12, 11, 10, 9},
			3: {13, 12, 11, 10},
			4: {13, 13, 12, 11},
		},
		TXPowerOffsetsDB: []int{0, -2, -4, -6, -8, -10, -12, -14, -16, -18, -20},
		// No regulatory duty cycle under FCC 15.247; the fixed plan is
		// dwell-time limited instead, which the scheduler enforces directly
		// against the data-rate table rather than through off-time bands.
		DutyCycleBands:    nil,
		MaxDCycleOffLimit: 0,
		Defaults: Defaults{
			RX2FreqHz:        923300000,
			RX2DataRate:      8,
			RX1Delay:         time.Second,
			RX2Delay:         2 * time.Second,
			JoinAcceptDelay1: 5 * time.Second,
			JoinAcceptDelay2: 6 * time.Second,
			MaxEIRP:          30,
		},
	}

	for i := 0; i < 64; i++ {
		r.DefaultChannels = append(r.DefaultChannels, Channel{
			FreqHz: 902300000 + i*200000,
			MinDR:  0,
			MaxDR:  3,
		})
	}
	for i := 0; i < 8; i++ {
		r.DefaultChannels = append(r.DefaultChannels, Channel{
			FreqHz: 903000000 + i*1600000,
			MinDR:  4,
			MaxDR:  4,
		})
	}

	return r
}

// US902DownlinkChannel returns the fixed downlink channel frequency (one
// of 8, 923.3-927.5 MHz at 600 kHz spacing) paired with uplink channel
// index uplinkChan, per the 8:1 join of the 64+8 uplink channels onto 8
// downlink channels.
func US902DownlinkChannel(uplinkChan int) int {
	return 923300000 + (uplinkChan%8)*600000
}

// US902PingSlotChannel returns the downlink channel used for class-B ping
// slots, selected from the device address and current beacon period.
func US902PingSlotChannel(devAddr uint32, beaconPeriod uint32) int {
	return US902DownlinkChannel(int((devAddr + beaconPeriod) % 8))
}
