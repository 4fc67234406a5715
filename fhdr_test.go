package devmac

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFCtrl(t *testing.T) {
	Convey("Given an FCtrl with every flag set and FOptsLen 5", t, func() {
		c := FCtrl{ADR: true, ADRAckReq: true, ACK: true, Pending: true, FOptsLen: 5}

		Convey("Then it marshals to 0xF5", func() {
			b, err := c.MarshalBinary()
			So(err, ShouldBeNil)
			So(b, ShouldResemble, []byte{0xf5})
		})

		Convey("Then it round-trips", func() {
			b, _ := c.MarshalBinary()
			var out FCtrl
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out, ShouldResemble, c)
		})
	})

	Convey("Given an FOptsLen over 15", t, func() {
		c := FCtrl{FOptsLen: 16}
		_, err := c.MarshalBinary()
		Convey("Then MarshalBinary rejects it", func() {
			So(err, ShouldNotBeNil)
		})
	})
}

func TestFHDR(t *testing.T) {
	Convey("Given an FHDR with three bytes of FOpts", t, func() {
		h := FHDR{
			DevAddr: DevAddr(0x01020304),
			FCtrl:   FCtrl{ADR: true},
			FCnt:    7,
			FOpts:   []byte{0xAA, 0xBB, 0xCC},
		}

		Convey("Then FOptsLen is recomputed on marshal", func() {
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)
			So(len(b), ShouldEqual, 10)
			So(b[4], ShouldEqual, 0x80|0x03)
		})

		Convey("Then it round-trips", func() {
			b, err := h.MarshalBinary()
			So(err, ShouldBeNil)

			var out FHDR
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out, ShouldResemble, h)
		})
	})

	Convey("Given FOpts longer than 15 bytes", t, func() {
		h := FHDR{FOpts: make([]byte, 16)}
		_, err := h.MarshalBinary()
		Convey("Then MarshalBinary rejects it", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
