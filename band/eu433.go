package band

import "time"

func newEU433() Region {
	return Region{
		Name:        EU433,
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
		TXPowerOffsetsDB: []int{0, -2, -4, -6, -8, -10},
		DefaultChannels: []Channel{
			{FreqHz: 433175000, MinDR: 0, MaxDR: 5},
			{FreqHz: 433375000, MinDR: 0, MaxDR: 5},
			{FreqHz: 433575000, MinDR: 0, MaxDR: 5},
		},
		// Region 433 MHz ISM band carries no regulatory sub-band split;
		// treat the whole plan as one duty-cycle band at the ETSI default.
		DutyCycleBands: []DutyCycleBand{
			{MinFreqHz: 433050000, MaxFreqHz: 434790000, OffTimeFactor: 100},
		},
		MaxDCycleOffLimit: 1 << 32 - 1,
		Defaults: Defaults{
			RX2FreqHz:        434665000,
			RX2DataRate:      0,
			RX1Delay:         time.Second,
			RX2Delay:         2 * time.Second,
			JoinAcceptDelay1: 5 * time.Second,
			JoinAcceptDelay2: 6 * time.Second,
			MaxEIRP:          12.15,
		},
	}
}
