package devmac

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLinkADRReqPayload(t *testing.T) {
	Convey("Given a LinkADRReqPayload", t, func() {
		p := LinkADRReqPayload{
			DataRate: 5,
			TXPower:  3,
			ChMask:   ChMask{true, true, false},
			Redundancy: Redundancy{
				ChMaskCntl: 1,
				NbTrans:    4,
			},
		}

		Convey("Then it round-trips", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)
			So(len(b), ShouldEqual, 4)

			var out LinkADRReqPayload
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out, ShouldResemble, p)
		})
	})
}

func TestDevStatusAnsPayload(t *testing.T) {
	Convey("Given a DevStatusAnsPayload with a negative margin", t, func() {
		p := DevStatusAnsPayload{Battery: 200, Margin: -10}

		Convey("Then it round-trips through the 6-bit signed wire field", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)

			var out DevStatusAnsPayload
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out, ShouldResemble, p)
		})
	})
}

func TestParseMACCommands(t *testing.T) {
	Convey("Given a buffer with three consecutive downlink commands", t, func() {
		var buf []byte
		dutyCycle, _ := MACCommand{CID: CIDDutyCycle, Payload: &DutyCycleReqPayload{MaxDCycle: 4}}.MarshalBinary()
		rxTiming, _ := MACCommand{CID: CIDRXTimingSetup, Payload: &RXTimingSetupReqPayload{Delay: 2}}.MarshalBinary()
		linkADR, _ := MACCommand{CID: CIDLinkADR, Payload: &LinkADRReqPayload{DataRate: 1, TXPower: 1, Redundancy: Redundancy{NbTrans: 1}}}.MarshalBinary()
		buf = append(buf, dutyCycle...)
		buf = append(buf, rxTiming...)
		buf = append(buf, linkADR...)

		Convey("Then ParseMACCommands decodes all three in order", func() {
			cmds, err := ParseMACCommands(false, buf)
			So(err, ShouldBeNil)
			So(cmds, ShouldHaveLength, 3)
			So(cmds[0].CID, ShouldEqual, CIDDutyCycle)
			So(cmds[1].CID, ShouldEqual, CIDRXTimingSetup)
			So(cmds[2].CID, ShouldEqual, CIDLinkADR)
		})
	})

	Convey("Given a LinkCheckReq with no payload", t, func() {
		buf := []byte{byte(CIDLinkCheck)}

		Convey("Then it parses to a bare command", func() {
			cmds, err := ParseMACCommands(true, buf)
			So(err, ShouldBeNil)
			So(cmds, ShouldHaveLength, 1)
			So(cmds[0].Payload, ShouldBeNil)
		})
	})

	Convey("Given a truncated command", t, func() {
		buf := []byte{byte(CIDLinkADR), 1, 2} // LinkADRReq wants 4 bytes

		Convey("Then ParseMACCommands returns the parse error", func() {
			_, err := ParseMACCommands(false, buf)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an unknown CID for the given direction", t, func() {
		buf := []byte{0x7f}

		Convey("Then ParseMACCommands returns an error", func() {
			_, err := ParseMACCommands(false, buf)
			So(err, ShouldNotBeNil)
		})
	})
}
