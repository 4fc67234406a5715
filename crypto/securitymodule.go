// Package crypto implements the authentication blocks, key derivation,
// and MIC/encryption operations a class-A device needs to run OTAA and
// exchange data frames, built on AES-128 ECB, CTR and CMAC.
package crypto

import (
	"crypto/aes"

	keywrap "github.com/NickBall/go-aes-key-wrap"
	"github.com/jacobsa/crypto/cmac"
	"github.com/pkg/errors"

	"github.com/dragino-lora/devmac"
)

// SessionKeys bundles the keys derived at join time. On a 1.0 device
// FNwkSIntKey, SNwkSIntKey and NwkSEncKey are all equal to the legacy
// NwkSKey.
type SessionKeys struct {
	FNwkSIntKey devmac.AES128Key
	SNwkSIntKey devmac.AES128Key
	NwkSEncKey  devmac.AES128Key
	AppSKey     devmac.AES128Key
}

// JoinKeys bundles the 1.1 join-server keys derived from NwkKey.
type JoinKeys struct {
	JSEncKey devmac.AES128Key
	JSIntKey devmac.AES128Key
}

// SecurityModule performs every cryptographic operation the MAC layer
// needs. Keys are passed in by the caller on every call and derived
// keys are returned to it; the interface does not hold or hide key
// material itself. A hardware- or secure-element-backed implementation
// can satisfy the same interface.
type SecurityModule interface {
	DeriveSessionKeys10(nwkKey devmac.AES128Key, netID devmac.NetID, joinNonce devmac.JoinNonce, devNonce devmac.DevNonce) (SessionKeys, error)
	DeriveSessionKeys11(nwkKey, appKey devmac.AES128Key, joinEUI devmac.EUI64, joinNonce devmac.JoinNonce, devNonce devmac.DevNonce) (SessionKeys, error)
	DeriveJoinKeys11(nwkKey devmac.AES128Key, devEUI devmac.EUI64) (JoinKeys, error)

	ComputeJoinRequestMIC(mhdr, payload []byte, nwkKey devmac.AES128Key) (devmac.MIC, error)
	ComputeJoinAcceptMIC(macVersion devmac.MACVersion, joinReqType byte, joinEUI devmac.EUI64, devNonce devmac.DevNonce, plaintext []byte, nwkKey, jsIntKey devmac.AES128Key) (devmac.MIC, error)
	DecryptJoinAccept(key devmac.AES128Key, ciphertext []byte) ([]byte, error)

	ComputeUplinkDataMIC(macVersion devmac.MACVersion, confFCntDown uint32, txDR, txCh uint8, devAddr devmac.DevAddr, fCntUp uint32, ack bool, msg []byte, fNwkSIntKey, sNwkSIntKey devmac.AES128Key) (devmac.MIC, error)
	ComputeDownlinkDataMIC(macVersion devmac.MACVersion, confFCntUp uint32, devAddr devmac.DevAddr, fCntDown uint32, ack bool, msg []byte, sNwkSIntKey devmac.AES128Key) (devmac.MIC, error)

	EncryptFRMPayload(key devmac.AES128Key, uplink bool, devAddr devmac.DevAddr, fCnt uint32, data []byte) ([]byte, error)
	EncryptFOpts(nwkSEncKey devmac.AES128Key, aFCntDown, uplink bool, devAddr devmac.DevAddr, fCnt uint32, data []byte) ([]byte, error)

	WrapSessionKey(kek, key devmac.AES128Key) ([]byte, error)
	UnwrapSessionKey(kek devmac.AES128Key, wrapped []byte) (devmac.AES128Key, error)
}

// Default is the software SecurityModule implementation, used unless a
// secure-element-backed one is wired in its place.
type Default struct{}

var _ SecurityModule = Default{}

func cmacSum(key devmac.AES128Key, parts ...[]byte) ([]byte, error) {
	h, err := cmac.New(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "crypto: new cmac")
	}
	for _, p := range parts {
		if _, err := h.Write(p); err != nil {
			return nil, errors.Wrap(err, "crypto: cmac write")
		}
	}
	return h.Sum(nil), nil
}

func ecbEncryptBlock(key devmac.AES128Key, plaintext []byte) (devmac.AES128Key, error) {
	var out devmac.AES128Key
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return out, errors.Wrap(err, "crypto: new cipher")
	}
	if len(plaintext) != block.BlockSize() {
		return out, errors.Errorf("crypto: expected a %d byte block", block.BlockSize())
	}
	block.Encrypt(out[:], plaintext)
	return out, nil
}

// WrapSessionKey wraps key under kek using RFC 3394 AES key-wrap, for
// handing a derived session key to a join server over an untrusted
// transport.
func (Default) WrapSessionKey(kek, key devmac.AES128Key) ([]byte, error) {
	block, err := aes.NewCipher(kek[:])
	if err != nil {
		return nil, errors.Wrap(err, "crypto: new cipher")
	}
	wrapped, err := keywrap.Wrap(block, key[:])
	if err != nil {
		return nil, errors.Wrap(err, "crypto: key wrap")
	}
	return wrapped, nil
}

// UnwrapSessionKey reverses WrapSessionKey.
func (Default) UnwrapSessionKey(kek devmac.AES128Key, wrapped []byte) (devmac.AES128Key, error) {
	var key devmac.AES128Key
	block, err := aes.NewCipher(kek[:])
	if err != nil {
		return key, errors.Wrap(err, "crypto: new cipher")
	}
	pt, err := keywrap.Unwrap(block, wrapped)
	if err != nil {
		return key, errors.Wrap(err, "crypto: key unwrap")
	}
	if len(pt) != len(key) {
		return key, errors.Errorf("crypto: unwrapped key has unexpected length %d", len(pt))
	}
	copy(key[:], pt)
	return key, nil
}
