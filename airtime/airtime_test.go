package airtime

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSymbolPeriodTicks(t *testing.T) {
	Convey("Given a test-table", t, func() {
		tests := []struct {
			SF       int
			BWHz     int
			TPS      uint32
			Expected uint32
		}{
			{SF: 12, BWHz: 125000, TPS: 1000000, Expected: 32768},
			{SF: 9, BWHz: 125000, TPS: 1000000, Expected: 4096},
			{SF: 9, BWHz: 500000, TPS: 1000000, Expected: 1024},
		}

		for i, test := range tests {
			Convey(fmt.Sprintf("Test: %d", i), func() {
				So(SymbolPeriodTicks(test.SF, test.BWHz, test.TPS), ShouldEqual, test.Expected)
			})
		}
	})
}

func TestPreambleTicks(t *testing.T) {
	Convey("Given a symbol period of 32768 ticks", t, func() {
		So(PreambleTicks(32768), ShouldEqual, uint32(401408))
	})
}

func TestPayloadSymbols(t *testing.T) {
	Convey("Given a test-table", t, func() {
		tests := []struct {
			PayloadSize int
			SF          int
			CR          CodingRate
			LDO         bool
			Expected    int
		}{
			{PayloadSize: 13, SF: 12, CR: CodingRate45, LDO: false, Expected: 23},
			{PayloadSize: 13, SF: 12, CR: CodingRate46, LDO: false, Expected: 26},
			{PayloadSize: 50, SF: 12, CR: CodingRate45, LDO: true, Expected: 58},
		}

		for i, test := range tests {
			Convey(fmt.Sprintf("Test: %d", i), func() {
				n, err := PayloadSymbols(test.PayloadSize, test.SF, test.CR, true, test.LDO)
				So(err, ShouldBeNil)
				So(n, ShouldEqual, test.Expected)
			})
		}
	})

	Convey("Given an out-of-range coding rate", t, func() {
		_, err := PayloadSymbols(13, 12, 0, true, false)
		Convey("Then it is rejected", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestCalculate(t *testing.T) {
	Convey("Given a 13-byte SF12/125kHz uplink at a 1 MHz tick rate", t, func() {
		ticks, err := Calculate(13, 12, 125000, 1000000, CodingRate45, true, false)

		Convey("Then the total airtime in ticks matches the reference calculation", func() {
			So(err, ShouldBeNil)
			So(ticks, ShouldEqual, uint32(1155072))
		})
	})
}

func TestLowDataRateOptimize(t *testing.T) {
	Convey("Given the mandatory LDO thresholds", t, func() {
		So(LowDataRateOptimize(125000, 11), ShouldBeTrue)
		So(LowDataRateOptimize(125000, 12), ShouldBeTrue)
		So(LowDataRateOptimize(125000, 10), ShouldBeFalse)
		So(LowDataRateOptimize(500000, 12), ShouldBeFalse)
	})
}
