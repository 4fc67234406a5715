package band

import "time"

func newEU863870() Region {
	return Region{
		Name:        EU863870,
		Plan:        DynamicPlan,
		NumChannels: 16,
		DataRates: map[uint8]DataRate{
			0: {Modulation: LoRaModulation, SpreadFactor: 12, Bandwidth: 125, MTU: 59},
			1: {Modulation: LoRaModulation, SpreadFactor: 11, Bandwidth: 125, MTU: 59},
			2: {Modulation: LoRaModulation, SpreadFactor: 10, Bandwidth: 125, MTU: 59},
			3: {Modulation: LoRaModulation, SpreadFactor: 9, Bandwidth: 125, MTU: 123},
			4: {Modulation: LoRaModulation, SpreadFactor: 8, Bandwidth: 125, MTU: 230},
			5: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 125, MTU: 230},
			6: {Modulation: LoRaModulation, SpreadFactor: 7, Bandwidth: 250, MTU: 230},
			7: {Modulation: FSKModulation, BitRate: 50000, MTU: 230},
		},
		RX1DROffsetTable: map[uint8][]uint8{
			0: {0, 0, 0, 0, 0, 0},
			1: {1, 0, 0, 0, 0, 0},
			2: {2, 1, 0, 0, 0, 0},
			3: {3, 2, 1, 0, 0, 0},
			4: {4, 3, 2, 1, 0, 0},
			5: {5, 4, 3, 2, 1, 0},
			6: {6, 5, 4, 3, 2, 1},
			7: {7, 6, 5, 4, 3, 2},
		},
		TXPowerOffsetsDB: []int{0, -2, -4, -6, -8, -10, -12, -14},
		DefaultChannels: []Channel{
			{FreqHz: 868100000, MinDR: 0, MaxDR: 5},
			{FreqHz: 868300000, MinDR: 0, MaxDR: 5},
			{FreqHz: 868500000, MinDR: 0, MaxDR: 5},
		},
		// ETSI EN 300 220 sub-bands g/g1/g2/g3 (§4.5 duty-cycle bands).
		DutyCycleBands: []DutyCycleBand{
			{MinFreqHz: 863000000, MaxFreqHz: 868000000, OffTimeFactor: 100},
			{MinFreqHz: 868000000, MaxFreqHz: 868600000, OffTimeFactor: 100},
			{MinFreqHz: 868700000, MaxFreqHz: 869200000, OffTimeFactor: 1000},
			{MinFreqHz: 869400000, MaxFreqHz: 869650000, OffTimeFactor: 10},
			{MinFreqHz: 869700000, MaxFreqHz: 870000000, OffTimeFactor: 100},
		},
		MaxDCycleOffLimit: 1 << 32 - 1,
		Defaults: Defaults{
			RX2FreqHz:        869525000,
			RX2DataRate:      0,
			RX1Delay:         time.Second,
			RX2Delay:         2 * time.Second,
			JoinAcceptDelay1: 5 * time.Second,
			JoinAcceptDelay2: 6 * time.Second,
			MaxEIRP:          16,
		},
	}
}
