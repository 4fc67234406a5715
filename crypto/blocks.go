package crypto

import (
	"encoding/binary"

	"github.com/dragino-lora/devmac"
)

// b0b1 builds the 16-byte B0/B1 authentication block shared by the
// uplink and downlink MIC families: 0x49, four bytes that carry either
// zero (B0) or the confirmed counter plus TX parameters (B1), the
// direction, the device address, the frame counter, a reserved byte and
// the message length.
func b0b1(dir byte, devAddr devmac.DevAddr, fCnt uint32, msgLen int) []byte {
	b := make([]byte, 16)
	b[0] = 0x49
	b[5] = dir
	devAddrB, _ := devAddr.MarshalBinary()
	copy(b[6:10], devAddrB)
	binary.LittleEndian.PutUint32(b[10:14], fCnt)
	b[15] = byte(msgLen)
	return b
}

// b0Up builds B0 for a 1.0 uplink MIC: dir=0, bytes 1..4 zero.
func b0Up(devAddr devmac.DevAddr, fCnt uint32, msgLen int) []byte {
	return b0b1(0, devAddr, fCnt, msgLen)
}

// b1Up builds B1 for a 1.1 uplink MIC: dir=0, bytes 1..4 carry the
// confirmed downlink frame counter, TX data-rate and TX channel.
func b1Up(devAddr devmac.DevAddr, fCnt uint32, confFCntDown uint32, txDR, txCh uint8, msgLen int) []byte {
	b := b0b1(0, devAddr, fCnt, msgLen)
	binary.LittleEndian.PutUint16(b[1:3], uint16(confFCntDown))
	b[3] = txDR
	b[4] = txCh
	return b
}

// b0Down builds B0 for a downlink MIC: dir=1, bytes 1..4 zero.
func b0Down(devAddr devmac.DevAddr, fCnt uint32, msgLen int) []byte {
	return b0b1(1, devAddr, fCnt, msgLen)
}

// b1Down builds B1 for a 1.1 downlink MIC with ACK set: dir=1, bytes
// 1..2 carry the confirmed uplink frame counter.
func b1Down(devAddr devmac.DevAddr, fCnt uint32, confFCntUp uint32, msgLen int) []byte {
	b := b0b1(1, devAddr, fCnt, msgLen)
	binary.LittleEndian.PutUint16(b[1:3], uint16(confFCntUp))
	return b
}

// aBlock builds the 16-byte A-block used as the AES-CTR IV prefix for
// FRMPayload and FOpts encryption. Its last byte holds the 1-based
// counter block index; it is left at 0 here and encryptCTR fills it in
// per block.
func aBlock(uplink bool, devAddr devmac.DevAddr, fCnt uint32) []byte {
	a := make([]byte, 16)
	a[0] = 0x01
	if !uplink {
		a[5] = 0x01
	}
	devAddrB, _ := devAddr.MarshalBinary()
	copy(a[6:10], devAddrB)
	binary.LittleEndian.PutUint32(a[10:14], fCnt)
	return a
}
