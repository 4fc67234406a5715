package crypto

import (
	"encoding/binary"

	"github.com/dragino-lora/devmac"
)

func joinNonceLE(n devmac.JoinNonce) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(n))
	return b[:3]
}

func devNonceLE(n devmac.DevNonce) []byte {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(n))
	return b[:]
}

// deriveKey10 builds the 1.0 derivation input tag‖JoinNonce(3)‖NetID(3)‖
// DevNonce(2)‖0x00·7 and AES-ECB-encrypts it under nwkKey.
func deriveKey10(nwkKey devmac.AES128Key, tag byte, netID devmac.NetID, joinNonce devmac.JoinNonce, devNonce devmac.DevNonce) (devmac.AES128Key, error) {
	in := make([]byte, 16)
	in[0] = tag
	copy(in[1:4], joinNonceLE(joinNonce))
	netIDB, _ := netID.MarshalBinary()
	copy(in[4:7], netIDB)
	copy(in[7:9], devNonceLE(devNonce))
	return ecbEncryptBlock(nwkKey, in)
}

// DeriveSessionKeys10 derives the 1.0 session keys, where FNwkSIntKey,
// SNwkSIntKey and NwkSEncKey all equal the legacy NwkSKey.
func (Default) DeriveSessionKeys10(nwkKey devmac.AES128Key, netID devmac.NetID, joinNonce devmac.JoinNonce, devNonce devmac.DevNonce) (SessionKeys, error) {
	var out SessionKeys

	nwkSKey, err := deriveKey10(nwkKey, 0x01, netID, joinNonce, devNonce)
	if err != nil {
		return out, err
	}
	appSKey, err := deriveKey10(nwkKey, 0x02, netID, joinNonce, devNonce)
	if err != nil {
		return out, err
	}

	out.FNwkSIntKey = nwkSKey
	out.SNwkSIntKey = nwkSKey
	out.NwkSEncKey = nwkSKey
	out.AppSKey = appSKey
	return out, nil
}

// deriveKey11 builds the 1.1 session-key derivation input
// tag‖JoinNonce(3)‖JoinEUI(8 MSB-first)‖DevNonce(2)‖0x00·2 and
// AES-ECB-encrypts it under nwkKey (tag 2, AppSKey, is derived from
// appKey instead, per the 1.1 key hierarchy).
func deriveKey11(rootKey devmac.AES128Key, tag byte, joinEUI devmac.EUI64, joinNonce devmac.JoinNonce, devNonce devmac.DevNonce) (devmac.AES128Key, error) {
	in := make([]byte, 16)
	in[0] = tag
	copy(in[1:4], joinNonceLE(joinNonce))
	copy(in[4:12], joinEUI[:])
	copy(in[12:14], devNonceLE(devNonce))
	return ecbEncryptBlock(rootKey, in)
}

// DeriveSessionKeys11 derives the 1.1 session keys from both NwkKey and
// AppKey.
func (Default) DeriveSessionKeys11(nwkKey, appKey devmac.AES128Key, joinEUI devmac.EUI64, joinNonce devmac.JoinNonce, devNonce devmac.DevNonce) (SessionKeys, error) {
	var out SessionKeys
	var err error

	out.FNwkSIntKey, err = deriveKey11(nwkKey, 0x01, joinEUI, joinNonce, devNonce)
	if err != nil {
		return out, err
	}
	out.AppSKey, err = deriveKey11(appKey, 0x02, joinEUI, joinNonce, devNonce)
	if err != nil {
		return out, err
	}
	out.SNwkSIntKey, err = deriveKey11(nwkKey, 0x03, joinEUI, joinNonce, devNonce)
	if err != nil {
		return out, err
	}
	out.NwkSEncKey, err = deriveKey11(nwkKey, 0x04, joinEUI, joinNonce, devNonce)
	if err != nil {
		return out, err
	}
	return out, nil
}

// DeriveJoinKeys11 derives the 1.1 join-server keys JSEncKey (tag 5) and
// JSIntKey (tag 6) from tag‖DevEUI(8 MSB-first)‖0x00·7.
func (Default) DeriveJoinKeys11(nwkKey devmac.AES128Key, devEUI devmac.EUI64) (JoinKeys, error) {
	var out JoinKeys

	build := func(tag byte) []byte {
		in := make([]byte, 16)
		in[0] = tag
		copy(in[1:9], devEUI[:])
		return in
	}

	jsEnc, err := ecbEncryptBlock(nwkKey, build(0x05))
	if err != nil {
		return out, err
	}
	jsInt, err := ecbEncryptBlock(nwkKey, build(0x06))
	if err != nil {
		return out, err
	}

	out.JSEncKey = jsEnc
	out.JSIntKey = jsInt
	return out, nil
}
