package devmac

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMHDR(t *testing.T) {
	Convey("Given an MHDR for UnconfirmedDataUp / LoRaWANR1", t, func() {
		h := MHDR{MType: UnconfirmedDataUp, Major: LoRaWANR1}

		Convey("Then it marshals to the expected byte", func() {
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)
			So(b, ShouldResemble, []byte{0x40})
		})

		Convey("Then round-tripping through Unmarshal recovers the same value", func() {
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)

			var out MHDR
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out, ShouldResemble, h)
		})
	})

	Convey("Given an MHDR byte with a nonzero reserved field", t, func() {
		var h MHDR
		err := h.UnmarshalBinary([]byte{0x04})
		Convey("Then UnmarshalBinary rejects it", func() {
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given each defined MType", t, func() {
		for _, mt := range []MType{JoinRequest, JoinAccept, UnconfirmedDataUp, UnconfirmedDataDown, ConfirmedDataUp, ConfirmedDataDown} {
			h := MHDR{MType: mt, Major: LoRaWANR1}
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)

			var out MHDR
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out.MType, ShouldEqual, mt)
		}
	})
}
