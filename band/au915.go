package band

import "time"

func newAU915928() Region {
	r := Region{
		Name:        AU915928,
		Plan:        FixedPlan,
		NumChannels: 72,
		DataRates: map[uint8]DataRate{
			0: {Modulation: LoRaModulation, SpreadFactor: 12, Bandwidth: 125, MTU: 59},
			1: {Modulation: LoRaModulation, SpreadFactor: 11, Bandwidth: 125, MTU: 59},
			2: {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 125, MTU: 123},
			3: {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 125, MTU: 123},
			4: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 125, MTU: 230},
			5: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 125, MTU: 230},
			6: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 500, MTU: 230},
			// DR7 unused.
			8:  {Modulation: LoRaModulation, SpreadFactor: 12, Bandwidth: 500, MTU: 41},
			9:  {Modulation: LoRaModulation, SpreadFactor: 11, Bandwidth: 500, MTU: 117},
			10: {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 500, MTU: 230},
			11: {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 500, MTU: 230},
			12: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 500, MTU: 230},
			13: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 500, MTU: 230},
		},
		RX1DROffsetTable: map[uint8][]uint8{
			0: {8, 8, 8, 8, 8, 8},
			1: {9, 8, 8, 8, 8, 8},
			2: {10, 9, 8, 8, 8, 8},
			3: {11, 10, 9, 8, 8, 8},
			4: {12, 11, 10, 9, 8, 8},
			5: {13, 12, 11, 10, 9, 8},
			6: {13, 13, 12, 11, 10, 9},
		},
		TXPowerOffsetsDB: []int{0, -2, -4, -6, -8, -10, -12, -14, -16, -18, -20},
		DutyCycleBands:    nil, // dwell-time limited, like US_902_928
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
			FreqHz: 915200000 + i*200000,
			MinDR:  0,
			MaxDR:  5,
		})
	}
	for i := 0; i < 8; i++ {
		r.DefaultChannels = append(r.DefaultChannels, Channel{
			FreqHz: 915900000 + i*1600000,
			MinDR:  6,
			MaxDR:  6,
		})
	}

	return r
}

// AU915DownlinkChannel mirrors US902DownlinkChannel: 8 downlink channels
// at 600 kHz spacing starting at the RX2 default frequency.
func AU915DownlinkChannel(uplinkChan int) int {
	return 923300000 + (uplinkChan%8)*600000
}
