package crypto

import (
	"crypto/aes"

	"github.com/pkg/errors"

	"github.com/dragino-lora/devmac"
)

// ComputeJoinRequestMIC computes the MIC of an uplink join-request:
// CMAC(NwkKey, MHDR‖JoinRequestPayload) truncated to four bytes.
func (Default) ComputeJoinRequestMIC(mhdr, payload []byte, nwkKey devmac.AES128Key) (devmac.MIC, error) {
	var mic devmac.MIC
	sum, err := cmacSum(nwkKey, mhdr, payload)
	if err != nil {
		return mic, err
	}
	copy(mic[:], sum[:4])
	return mic, nil
}

// ComputeJoinAcceptMIC computes the MIC of a join-accept. plaintext is
// MHDR‖JoinAcceptPayload with the MIC field omitted. In 1.0, the MIC is
// CMAC(NwkKey, plaintext); in 1.1 it additionally covers a prefix of
// joinReqType‖JoinEUI‖DevNonce and is keyed by JSIntKey instead.
func (Default) ComputeJoinAcceptMIC(macVersion devmac.MACVersion, joinReqType byte, joinEUI devmac.EUI64, devNonce devmac.DevNonce, plaintext []byte, nwkKey, jsIntKey devmac.AES128Key) (devmac.MIC, error) {
	var mic devmac.MIC

	if macVersion == devmac.MACVersion1_0 {
		sum, err := cmacSum(nwkKey, plaintext)
		if err != nil {
			return mic, err
		}
		copy(mic[:], sum[:4])
		return mic, nil
	}

	prefix := make([]byte, 0, 11)
	prefix = append(prefix, joinReqType)
	prefix = append(prefix, joinEUI[:]...)
	prefix = append(prefix, devNonceLE(devNonce)...)

	sum, err := cmacSum(jsIntKey, prefix, plaintext)
	if err != nil {
		return mic, err
	}
	copy(mic[:], sum[:4])
	return mic, nil
}

// DecryptJoinAccept applies AES-ECB with key to every 16-byte block of
// ciphertext, reversing the network's AES-decrypt "encryption" of the
// join-accept so the device recovers the plaintext with AES-encrypt.
func (Default) DecryptJoinAccept(key devmac.AES128Key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%16 != 0 {
		return nil, errors.New("crypto: join-accept ciphertext must be a multiple of 16 bytes")
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "crypto: new cipher")
	}

	pt := make([]byte, len(ciphertext))
	for i := 0; i < len(pt)/16; i++ {
		off := i * 16
		block.Encrypt(pt[off:off+16], ciphertext[off:off+16])
	}
	return pt, nil
}

// ComputeUplinkDataMIC computes the MIC of an uplink data frame. msg is
// MHDR‖MACPayload. confFCntDown and the TX parameters are only
// meaningful for a 1.1 session; pass zero values otherwise.
func (Default) ComputeUplinkDataMIC(macVersion devmac.MACVersion, confFCntDown uint32, txDR, txCh uint8, devAddr devmac.DevAddr, fCntUp uint32, ack bool, msg []byte, fNwkSIntKey, sNwkSIntKey devmac.AES128Key) (devmac.MIC, error) {
	var mic devmac.MIC

	if !ack {
		confFCntDown = 0
	}
	confFCntDown %= 1 << 16

	cmacF, err := cmacSum(fNwkSIntKey, b0Up(devAddr, fCntUp, len(msg)), msg)
	if err != nil {
		return mic, err
	}

	if macVersion == devmac.MACVersion1_0 {
		copy(mic[:], cmacF[:4])
		return mic, nil
	}

	cmacS, err := cmacSum(sNwkSIntKey, b1Up(devAddr, fCntUp, confFCntDown, txDR, txCh, len(msg)), msg)
	if err != nil {
		return mic, err
	}

	copy(mic[0:2], cmacS[0:2])
	copy(mic[2:4], cmacF[0:2])
	return mic, nil
}

// ComputeDownlinkDataMIC computes the MIC of a downlink data frame. msg
// is MHDR‖MACPayload. confFCntUp is only folded in when macVersion is
// 1.1 and the frame carries ACK.
func (Default) ComputeDownlinkDataMIC(macVersion devmac.MACVersion, confFCntUp uint32, devAddr devmac.DevAddr, fCntDown uint32, ack bool, msg []byte, sNwkSIntKey devmac.AES128Key) (devmac.MIC, error) {
	var mic devmac.MIC

	if macVersion == devmac.MACVersion1_0 || !ack {
		confFCntUp = 0
	}
	confFCntUp %= 1 << 16

	sum, err := cmacSum(sNwkSIntKey, b1Down(devAddr, fCntDown, confFCntUp, len(msg)), msg)
	if err != nil {
		return mic, err
	}
	copy(mic[:], sum[:4])
	return mic, nil
}

// EncryptFRMPayload runs AES-CTR over data using the A-block IV; the
// same call encrypts and decrypts since CTR is its own inverse. key is
// NwkSEncKey for FPort=0 or AppSKey otherwise.
func (Default) EncryptFRMPayload(key devmac.AES128Key, uplink bool, devAddr devmac.DevAddr, fCnt uint32, data []byte) ([]byte, error) {
	return encryptCTR(key, aBlock(uplink, devAddr, fCnt), data)
}

// EncryptFOpts runs AES-CTR over the mac-command bytes carried in FOpts,
// using the A-block IV with aFCntDown selecting dir for the downlink
// FPort>0 case (§4.4). It shares EncryptFRMPayload's self-inverse
// property.
func (Default) EncryptFOpts(nwkSEncKey devmac.AES128Key, aFCntDown, uplink bool, devAddr devmac.DevAddr, fCnt uint32, data []byte) ([]byte, error) {
	if len(data) > 15 {
		return nil, errors.New("crypto: FOpts payload must be at most 15 bytes")
	}
	a := aBlock(uplink, devAddr, fCnt)
	if aFCntDown {
		a[5] = 0x01
	}
	return encryptCTR(nwkSEncKey, a, data)
}

// encryptCTR XORs data against AES-ECB(key, a) keystream blocks, with
// the low byte of a incrementing per 16-byte block, matching LoRaWAN's
// AES-CTR construction.
func encryptCTR(key devmac.AES128Key, a []byte, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "crypto: new cipher")
	}

	out := make([]byte, len(data))
	s := make([]byte, 16)
	full := len(data) / 16
	for i := 0; i < full; i++ {
		a[15] = byte(i + 1)
		block.Encrypt(s, a)
		for j := 0; j < 16; j++ {
			out[i*16+j] = data[i*16+j] ^ s[j]
		}
	}
	if rem := len(data) % 16; rem > 0 {
		a[15] = byte(full + 1)
		block.Encrypt(s, a)
		off := full * 16
		for j := 0; j < rem; j++ {
			out[off+j] = data[off+j] ^ s[j]
		}
	}
	return out, nil
}
