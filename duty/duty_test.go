package duty

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRecordTransmission(t *testing.T) {
	Convey("Given an accountant ticking at 1 kHz", t, func() {
		a := NewAccountant(1000)

		Convey("Then a 1000ms transmission on a band with factor 100 sets band to 100000", func() {
			a.RecordTransmission(int(Band1), 100, 1000, false, 0)
			So(a.Band(Band1), ShouldEqual, uint32(100000))
		})

		Convey("Then 60 seconds of decay subtracts 60000", func() {
			a.RecordTransmission(int(Band1), 100, 1000, false, 0)
			a.ProcessBands(60000)
			So(a.Band(Band1), ShouldEqual, uint32(40000))
		})

		Convey("Then a joined device with max_duty_cycle>0 also accrues Global", func() {
			a.RecordTransmission(int(Band1), 100, 1000, true, 1)
			So(a.Band(Global), ShouldEqual, uint32(2000))
		})

		Convey("Then accrual saturates at UINT32_MAX", func() {
			a.RecordTransmission(int(Band1), math.MaxUint32, math.MaxUint32, false, 0)
			a.RecordTransmission(int(Band1), math.MaxUint32, math.MaxUint32, false, 0)
			So(a.Band(Band1), ShouldEqual, uint32(math.MaxUint32))
		})

		Convey("Then decay never underflows below zero", func() {
			a.RecordTransmission(int(Band1), 1, 10, false, 0)
			a.ProcessBands(100000)
			So(a.Band(Band1), ShouldEqual, uint32(0))
		})
	})
}

func TestAvailable(t *testing.T) {
	Convey("Given a masked and an unmasked channel on a saturated band", t, func() {
		a := NewAccountant(1000)
		a.RecordTransmission(int(Band1), 100, 1000, false, 0)

		open := Channel{FreqHz: 868100000, MinDR: 0, MaxDR: 5, BandIndex: int(Band1)}
		masked := Channel{FreqHz: 868300000, MinDR: 0, MaxDR: 5, BandIndex: int(Band1), Masked: true}
		wrongRate := Channel{FreqHz: 868500000, MinDR: 3, MaxDR: 5, BandIndex: int(Band1)}

		Convey("Then the saturated band makes it unavailable under the normal limit", func() {
			So(a.Available(open, 0, 0), ShouldBeFalse)
		})

		Convey("Then a higher retry limit admits it", func() {
			So(a.Available(open, 0, 200000), ShouldBeTrue)
		})

		Convey("Then the masked channel is never available", func() {
			So(a.Available(masked, 0, 200000), ShouldBeFalse)
		})

		Convey("Then a rate outside the bracket is unavailable", func() {
			So(a.Available(wrongRate, 0, 200000), ShouldBeFalse)
		})

		Convey("Then a channel with no regional band (BandIndex -1) is always available", func() {
			fixed := Channel{FreqHz: 902300000, MinDR: 0, MaxDR: 3, BandIndex: -1}
			So(a.Available(fixed, 0, 0), ShouldBeTrue)
		})
	})
}

func TestSelectChannel(t *testing.T) {
	Convey("Given three available channels and a deterministic entropy source", t, func() {
		a := NewAccountant(1000)
		channels := []Channel{
			{FreqHz: 1, MinDR: 0, MaxDR: 5, BandIndex: -1},
			{FreqHz: 2, MinDR: 0, MaxDR: 5, BandIndex: -1},
			{FreqHz: 3, MinDR: 0, MaxDR: 5, BandIndex: -1},
		}

		Convey("Then it avoids prevIdx when more than one channel qualifies", func() {
			idx, _, ok := a.SelectChannel(channels, 0, 0, 0, func() uint8 { return 0 })
			So(ok, ShouldBeTrue)
			So(idx, ShouldNotEqual, 0)
		})

		Convey("Then it returns the sole qualifying channel even if it equals prevIdx", func() {
			masked := []Channel{
				{FreqHz: 1, MinDR: 0, MaxDR: 5, BandIndex: -1},
				{FreqHz: 2, MinDR: 0, MaxDR: 5, BandIndex: -1, Masked: true},
				{FreqHz: 3, MinDR: 0, MaxDR: 5, BandIndex: -1, Masked: true},
			}
			idx, freq, ok := a.SelectChannel(masked, 0, 0, 0, func() uint8 { return 0 })
			So(ok, ShouldBeTrue)
			So(idx, ShouldEqual, 0)
			So(freq, ShouldEqual, 1)
		})

		Convey("Then no qualifying channel reports ok=false", func() {
			allMasked := []Channel{{FreqHz: 1, MinDR: 0, MaxDR: 5, Masked: true}}
			_, _, ok := a.SelectChannel(allMasked, 0, -1, 0, func() uint8 { return 0 })
			So(ok, ShouldBeFalse)
		})
	})
}

func TestMsUntilNextChannel(t *testing.T) {
	Convey("Given one channel on a saturated band and one with no band", t, func() {
		a := NewAccountant(1000)
		a.RecordTransmission(int(Band1), 100, 1000, false, 0)

		Convey("Then the minimum wait is the lesser of the two", func() {
			channels := []Channel{
				{FreqHz: 1, MinDR: 0, MaxDR: 5, BandIndex: int(Band1)},
				{FreqHz: 2, MinDR: 0, MaxDR: 5, BandIndex: -1},
			}
			So(a.MsUntilNextChannel(channels, 0), ShouldEqual, uint32(0))
		})

		Convey("Then no channel admitting the rate returns UINT32_MAX", func() {
			channels := []Channel{{FreqHz: 1, MinDR: 3, MaxDR: 5, BandIndex: -1}}
			So(a.MsUntilNextChannel(channels, 0), ShouldEqual, uint32(math.MaxUint32))
		})
	})
}
