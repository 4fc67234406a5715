package devmac

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJoinRequestPayload(t *testing.T) {
	Convey("Given a join-request payload", t, func() {
		p := JoinRequestPayload{
			JoinEUI:  EUI64{0, 0, 0, 0, 0, 0, 0, 2},
			DevEUI:   EUI64{0, 0, 0, 0, 0, 0, 0, 1},
			DevNonce: 0x1234,
		}

		Convey("Then it encodes to 18 bytes with EUIs reversed on the wire", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)
			So(len(b), ShouldEqual, 18)
			So(b[0:8], ShouldResemble, []byte{2, 0, 0, 0, 0, 0, 0, 0})
			So(b[8:16], ShouldResemble, []byte{1, 0, 0, 0, 0, 0, 0, 0})
			So(b[16:18], ShouldResemble, []byte{0x34, 0x12})
		})

		Convey("Then it round-trips", func() {
			b, err := p.MarshalBinary()
			So(err, ShouldBeNil)

			var out JoinRequestPayload
			So(out.UnmarshalBinary(b), ShouldBeNil)
			So(out, ShouldResemble, p)
		})
	})
}
