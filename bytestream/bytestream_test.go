package bytestream

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestStreamReadWrite(t *testing.T) {
	Convey("Given a read/write stream over an 8-byte buffer", t, func() {
		buf := make([]byte, 8)
		var s Stream
		So(NewReadWriter(&s, buf), ShouldBeNil)

		Convey("Then little-endian integers round-trip", func() {
			s.WriteUint16(0x1234)
			s.WriteUint24(0x0a0b0c)
			s.WriteByte(0xff)
			So(s.Err(), ShouldBeNil)

			var r Stream
			So(NewReader(&r, buf), ShouldBeNil)
			So(r.ReadUint16(), ShouldEqual, uint16(0x1234))
			So(r.ReadUint24(), ShouldEqual, uint32(0x0a0b0c))
			So(r.ReadByte(), ShouldEqual, byte(0xff))
			So(r.Err(), ShouldBeNil)
		})

		Convey("Then writing past the end sets a sticky error", func() {
			s.WriteBytes(make([]byte, 9))
			So(s.Err(), ShouldNotBeNil)

			s.WriteByte(1)
			So(s.Err(), ShouldNotBeNil)
		})

		Convey("Then Peek does not advance the cursor", func() {
			s.WriteByte(0x42)
			var r Stream
			So(NewReader(&r, buf), ShouldBeNil)
			b, err := r.Peek()
			So(err, ShouldBeNil)
			So(b, ShouldEqual, byte(0x42))
			So(r.Tell(), ShouldEqual, 0)
		})

		Convey("Then SeekCur moves the cursor by a signed offset", func() {
			s.WriteBytes([]byte{1, 2, 3, 4})
			s.SeekCur(-2)
			So(s.Tell(), ShouldEqual, 2)
			So(s.Remaining(), ShouldEqual, 6)
		})

		Convey("Then an EUI is reversed on write and restored on read", func() {
			eui := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
			s.WriteEUI(eui)

			var r Stream
			So(NewReader(&r, buf), ShouldBeNil)
			So(r.ReadEUI(), ShouldResemble, eui)
		})
	})

	Convey("Given a read-only stream", t, func() {
		var s Stream
		So(NewReader(&s, []byte{1, 2, 3}), ShouldBeNil)

		Convey("Then writing to it sets the sticky error", func() {
			s.WriteByte(1)
			So(s.Err(), ShouldNotBeNil)
		})
	})

	Convey("Given a buffer larger than MaxLen", t, func() {
		var s Stream
		err := NewReadWriter(&s, make([]byte, MaxLen+1))
		Convey("Then initialization fails", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
