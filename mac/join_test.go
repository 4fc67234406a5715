package mac

import (
	"crypto/aes"
	"testing"

	"github.com/dragino-lora/devmac"
	"github.com/dragino-lora/devmac/crypto"
	. "github.com/smartystreets/goconvey/convey"
)

// ecbDecryptBlocks is the join-server side of the join-accept's inverted
// ECB convention: the device recovers plaintext by AES-encrypting the
// ciphertext, so the server must AES-decrypt the plaintext to produce
// wire bytes the device's DecryptJoinAccept will correctly invert.
func ecbDecryptBlocks(t *testing.T, key devmac.AES128Key, plaintext []byte) []byte {
	t.Helper()
	if len(plaintext)%16 != 0 {
		t.Fatalf("join-accept plaintext must be a multiple of 16 bytes, got %d", len(plaintext))
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	out := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext)/16; i++ {
		off := i * 16
		block.Decrypt(out[off:off+16], plaintext[off:off+16])
	}
	return out
}

// buildJoinAcceptFrame plays the join-server role for a 1.0 activation:
// it decodes the device's join-request to recover the DevNonce, then
// encodes and encrypts a matching join-accept.
func buildJoinAcceptFrame(t *testing.T, raw []byte, nwkKey devmac.AES128Key, netID devmac.NetID, joinNonce devmac.JoinNonce, devAddr devmac.DevAddr) []byte {
	t.Helper()
	sec := crypto.Default{}

	var frame devmac.PHYPayload
	if err := frame.UnmarshalBinary(raw); err != nil {
		t.Fatalf("unmarshal join-request: %v", err)
	}
	req, ok := frame.MACPayload.(*devmac.JoinRequestPayload)
	if !ok {
		t.Fatalf("decoded frame is not a join-request")
	}

	accept := devmac.JoinAcceptPayload{
		JoinNonce: joinNonce,
		NetID:     netID,
		DevAddr:   devAddr,
		DLSettings: devmac.DLSettings{
			RX1DROffset: 0,
			RX2DataRate: 0,
		},
		RxDelay: 1,
	}
	acceptFrame := devmac.PHYPayload{
		MHDR:       devmac.MHDR{MType: devmac.JoinAccept, Major: devmac.LoRaWANR1},
		MACPayload: &accept,
	}
	body, err := acceptFrame.MarshalForMIC()
	if err != nil {
		t.Fatalf("marshal join-accept body: %v", err)
	}
	mic, err := sec.ComputeJoinAcceptMIC(devmac.MACVersion1_0, 0xff, devmac.EUI64{}, req.DevNonce, body, nwkKey, devmac.AES128Key{})
	if err != nil {
		t.Fatalf("compute join-accept MIC: %v", err)
	}

	plaintext := append(append([]byte{}, body[1:]...), mic[:]...)
	ciphertext := ecbDecryptBlocks(t, nwkKey, plaintext)
	return append([]byte{body[0]}, ciphertext...)
}

func TestOTAARoundTrip(t *testing.T) {
	Convey("Given a scheduler mid-join and a join server that accepts it", t, func() {
		m, sys, radio, events := newTestScheduler()
		runInit(m, sys)

		nwkKey := devmac.AES128Key{0x2b, 0x7e, 0x15, 0x16, 0x28, 0xae, 0xd2, 0xa6, 0xab, 0xf7, 0x15, 0x88, 0x09, 0xcf, 0x4f, 0x3c}
		m.nwkKey = nwkKey
		netID := devmac.NetID{0x00, 0x00, 0x01}
		devAddr := devmac.DevAddr(0x11223344)

		So(m.OTAA(), ShouldBeNil)
		sys.tick = m.Runtime.TimerA.Tick // fast-forward to the randomized send delay

		m.Process() // transmits the join-request
		So(m.Runtime.State, ShouldEqual, StateTx)
		So(radio.transmits, ShouldEqual, 1)

		accept := buildJoinAcceptFrame(t, radio.transmitted, nwkKey, netID, devmac.JoinNonce(1), devAddr)

		txDoneTick := sys.tick
		m.RadioEvent(RadioTxComplete)
		m.Process() // schedules RX windows
		So(m.Runtime.State, ShouldEqual, StateWaitRx1)

		joinDelay := uint32(m.Runtime.Region.Defaults.JoinAcceptDelay1.Seconds())
		sys.tick = txDoneTick + joinDelay*tps
		m.Process() // opens RX1
		So(m.Runtime.State, ShouldEqual, StateRx1)

		radio.collectBuf = accept
		m.RadioEvent(RadioRxReady)

		Convey("Then processing the received join-accept completes the join with the server's DevAddr", func() {
			m.Process()
			So(m.Runtime.State, ShouldEqual, StateIdle)
			So(m.Runtime.Op, ShouldEqual, OpNone)
			So(m.Session.Joined, ShouldBeTrue)
			So(m.Session.DevAddr, ShouldEqual, devAddr)
			So(m.Session.NetID, ShouldEqual, netID)
			So(m.Session.UpCounter, ShouldEqual, uint32(0))
			So(events.has(EventJoinComplete), ShouldBeTrue)
		})
	})
}
