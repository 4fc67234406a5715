package mac

import (
	"testing"

	"github.com/dragino-lora/devmac"
	. "github.com/smartystreets/goconvey/convey"
)

func availableRateAny(uint8) bool { return true }

func TestLinkADRBatch(t *testing.T) {
	Convey("Given a shadow session and a run of three consecutive LinkADR commands", t, func() {
		session := &Session{Rate: 0, TXPower: 0, NbTrans: 1}
		shadow := newShadow(session)

		var batch linkADRBatch
		numChannels := 8

		cmds := []*devmac.LinkADRReqPayload{
			{DataRate: 3, TXPower: 1, ChMask: [16]bool{true, true}, Redundancy: devmac.Redundancy{ChMaskCntl: 0, NbTrans: 2}},
			{DataRate: 3, TXPower: 1, ChMask: [16]bool{false, false, true, true}, Redundancy: devmac.Redundancy{ChMaskCntl: 0, NbTrans: 2}},
			{DataRate: 3, TXPower: 1, ChMask: [16]bool{true, true, true, true}, Redundancy: devmac.Redundancy{ChMaskCntl: 0, NbTrans: 2}},
		}
		for _, c := range cmds {
			batch.applyLinkADR(c, numChannels, availableRateAny)
		}

		Convey("Then the batch commits the final mask and a single successful answer", func() {
			ans := batch.commit(shadow)
			So(ans.ChannelMaskACK, ShouldBeTrue)
			So(ans.DataRateACK, ShouldBeTrue)
			So(ans.PowerACK, ShouldBeTrue)
			So(shadow.Rate, ShouldEqual, uint8(3))
			So(shadow.NbTrans, ShouldEqual, uint8(2))
			for i := 0; i < 4; i++ {
				So(shadow.ChannelMasked(i), ShouldBeFalse)
			}
			for i := 4; i < numChannels; i++ {
				So(shadow.ChannelMasked(i), ShouldBeTrue)
			}
		})
	})

	Convey("Given a LinkADR command that masks every channel off", t, func() {
		session := &Session{}
		shadow := newShadow(session)
		var batch linkADRBatch
		batch.applyLinkADR(&devmac.LinkADRReqPayload{
			DataRate:   3,
			Redundancy: devmac.Redundancy{ChMaskCntl: 7},
		}, 8, availableRateAny)

		Convey("Then the batch is rejected and the shadow is left untouched", func() {
			ans := batch.commit(shadow)
			So(ans.ChannelMaskACK, ShouldBeFalse)
			So(shadow.Rate, ShouldEqual, session.Rate)
		})
	})

	Convey("Given a LinkADR command requesting an unsupported data rate", t, func() {
		session := &Session{Rate: 2}
		shadow := newShadow(session)
		var batch linkADRBatch
		batch.applyLinkADR(&devmac.LinkADRReqPayload{
			DataRate:   9,
			ChMask:     [16]bool{true},
			Redundancy: devmac.Redundancy{ChMaskCntl: 0},
		}, 8, func(uint8) bool { return false })

		Convey("Then the answer rejects the whole batch though the mask was well formed", func() {
			ans := batch.commit(shadow)
			So(ans.DataRateACK, ShouldBeFalse)
			So(ans.ChannelMaskACK, ShouldBeFalse)
			So(shadow.Rate, ShouldEqual, session.Rate)
		})
	})

	Convey("Given a ChMaskCntl 6 all-channels-on command", t, func() {
		session := &Session{}
		session.SetChannelMask(0, true)
		session.SetChannelMask(3, true)
		shadow := newShadow(session)
		var batch linkADRBatch
		batch.applyLinkADR(&devmac.LinkADRReqPayload{
			DataRate:   0,
			Redundancy: devmac.Redundancy{ChMaskCntl: 6},
		}, 8, availableRateAny)

		Convey("Then every channel in range is unmasked", func() {
			ans := batch.commit(shadow)
			So(ans.ChannelMaskACK, ShouldBeTrue)
			for i := 0; i < 8; i++ {
				So(shadow.ChannelMasked(i), ShouldBeFalse)
			}
		})
	})
}
