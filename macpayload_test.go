package devmac

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMACPayload(t *testing.T) {
	Convey("Given a MACPayload with FPort 10 and a payload", t, func() {
		port := uint8(10)
		p := MACPayload{
			FHDR:       FHDR{DevAddr: DevAddr(0x01020304), FCnt: 1},
			FPort:      &port,
			FRMPayload: []byte("hello"),
		}

		Convey("Then it round-trips", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)

			var out MACPayload
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out, ShouldResemble, p)
		})
	})

	Convey("Given a MACPayload with FPort 0 and nonempty FOpts", t, func() {
		port := uint8(0)
		p := MACPayload{
			FHDR:  FHDR{FOpts: []byte{0x02}},
			FPort: &port,
		}
		_, err := p.MarshalBinary()
		Convey("Then MarshalBinary rejects it", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a wire frame with FPort 0 and a nonzero FOptsLen", t, func() {
		raw := []byte{1, 2, 3, 4, 0x01, 0, 0, 0x02, 0}
		var p MACPayload
		err := p.UnmarshalBinary(raw)
		Convey("Then UnmarshalBinary rejects it as malformed", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an FHDR with no payload following it", t, func() {
		p := MACPayload{FHDR: FHDR{DevAddr: DevAddr(1), FCnt: 2}}
		b, err := p.MarshalBinary()
		So(err, ShouldBeNil)
		So(len(b), ShouldEqual, 7)

		var out MACPayload
		So(out.UnmarshalBinary(b), ShouldBeNil)
		So(out.FPort, ShouldBeNil)
	})
}
