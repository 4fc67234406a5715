package main

import (
	"crypto/aes"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dragino-lora/devmac"
	"github.com/dragino-lora/devmac/crypto"
)

// networkServer plays both the join-server and network-server roles the
// real infrastructure on the other end of the radio link would: it
// accepts the raw frames simRadio hands it on Transmit and, when it can
// answer, returns the raw bytes of a join-accept or a data-down frame.
// It is a simulation aid, not a model of a real network server's state
// machine (no roaming, no multi-gateway dedup, no real NetID allocation).
type networkServer struct {
	log *logrus.Logger

	nwkKey devmac.AES128Key
	appKey devmac.AES128Key
	netID  devmac.NetID

	version devmac.MACVersion

	nextJoinNonce devmac.JoinNonce
	nextDevAddr   devmac.DevAddr

	joined  bool
	devAddr devmac.DevAddr
	keys    crypto.SessionKeys

	fCntDown uint32
}

func newNetworkServer(log *logrus.Logger, nwkKey, appKey devmac.AES128Key, netID devmac.NetID, version devmac.MACVersion) *networkServer {
	return &networkServer{
		log:           log,
		nwkKey:        nwkKey,
		appKey:        appKey,
		netID:         netID,
		version:       version,
		nextJoinNonce: 1,
		nextDevAddr:   devmac.DevAddr(0x26011000),
	}
}

// Uplink processes one raw PHYPayload transmitted by the device and
// returns the raw bytes of a response frame, or nil if this uplink
// draws no reply (an unconfirmed uplink the server has nothing to say
// back to).
func (ns *networkServer) Uplink(raw []byte) ([]byte, error) {
	var frame devmac.PHYPayload
	if err := frame.UnmarshalBinary(raw); err != nil {
		return nil, errors.Wrap(err, "networkserver: unmarshal uplink")
	}

	switch frame.MHDR.MType {
	case devmac.JoinRequest:
		return ns.joinAccept(&frame)
	case devmac.UnconfirmedDataUp, devmac.ConfirmedDataUp:
		return ns.dataUplink(&frame)
	default:
		return nil, errors.Errorf("networkserver: unexpected uplink MType %v", frame.MHDR.MType)
	}
}

func (ns *networkServer) joinAccept(frame *devmac.PHYPayload) ([]byte, error) {
	req, ok := frame.MACPayload.(*devmac.JoinRequestPayload)
	if !ok {
		return nil, errors.New("networkserver: join-request did not decode to a JoinRequestPayload")
	}

	joinNonce := ns.nextJoinNonce
	ns.nextJoinNonce++
	devAddr := ns.nextDevAddr
	ns.nextDevAddr++

	sec := crypto.Default{}
	var keys crypto.SessionKeys
	var err error
	if ns.version == devmac.MACVersion1_1 {
		keys, err = sec.DeriveSessionKeys11(ns.nwkKey, ns.appKey, req.JoinEUI, joinNonce, req.DevNonce)
	} else {
		keys, err = sec.DeriveSessionKeys10(ns.nwkKey, ns.netID, joinNonce, req.DevNonce)
	}
	if err != nil {
		return nil, errors.Wrap(err, "networkserver: derive session keys")
	}

	accept := devmac.JoinAcceptPayload{
		JoinNonce: joinNonce,
		NetID:     ns.netID,
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
		return nil, errors.Wrap(err, "networkserver: marshal join-accept body")
	}
	var jsIntKey devmac.AES128Key
	if ns.version == devmac.MACVersion1_1 {
		jk, err := sec.DeriveJoinKeys11(ns.nwkKey, req.DevEUI)
		if err != nil {
			return nil, errors.Wrap(err, "networkserver: derive join keys")
		}
		jsIntKey = jk.JSIntKey
	}
	mic, err := sec.ComputeJoinAcceptMIC(ns.version, 0xff, req.JoinEUI, req.DevNonce, body, ns.nwkKey, jsIntKey)
	if err != nil {
		return nil, errors.Wrap(err, "networkserver: compute join-accept MIC")
	}

	plaintext := append(append([]byte{}, body[1:]...), mic[:]...)
	ciphertext, err := ecbDecryptBlocks(ns.nwkKey, plaintext)
	if err != nil {
		return nil, errors.Wrap(err, "networkserver: encrypt join-accept")
	}

	ns.joined = true
	ns.devAddr = devAddr
	ns.keys = keys
	ns.fCntDown = 0

	ns.log.WithFields(logrus.Fields{"devaddr": devAddr, "netid": ns.netID, "joinnonce": joinNonce}).
		Info("networkserver: accepted join")

	return append([]byte{body[0]}, ciphertext...), nil
}

func (ns *networkServer) dataUplink(frame *devmac.PHYPayload) ([]byte, error) {
	mp, ok := frame.MACPayload.(*devmac.MACPayload)
	if !ok {
		return nil, errors.New("networkserver: data uplink did not decode to a MACPayload")
	}
	if !ns.joined || mp.FHDR.DevAddr != ns.devAddr {
		return nil, errors.New("networkserver: uplink from an unknown DevAddr")
	}

	var payload []byte
	if len(mp.FRMPayload) > 0 {
		key := ns.keys.AppSKey
		if mp.FPort != nil && *mp.FPort == 0 {
			key = ns.keys.NwkSEncKey
		}
		sec := crypto.Default{}
		pt, err := sec.EncryptFRMPayload(key, true, mp.FHDR.DevAddr, uint32(mp.FHDR.FCnt), mp.FRMPayload)
		if err != nil {
			return nil, errors.Wrap(err, "networkserver: decrypt uplink FRMPayload")
		}
		payload = pt
	}

	port := uint8(0)
	if mp.FPort != nil {
		port = *mp.FPort
	}
	ns.log.WithFields(logrus.Fields{"fcnt": mp.FHDR.FCnt, "port": port, "size": len(payload)}).
		Info("networkserver: received uplink")

	if frame.MHDR.MType != devmac.ConfirmedDataUp {
		return nil, nil
	}
	return ns.buildAck(mp.FHDR.FCnt)
}

// buildAck answers a confirmed uplink with an empty confirmed-down
// frame carrying the network ACK bit.
func (ns *networkServer) buildAck(upFCnt uint16) ([]byte, error) {
	down := &devmac.MACPayload{
		FHDR: devmac.FHDR{
			DevAddr: ns.devAddr,
			FCtrl:   devmac.FCtrl{ACK: true},
			FCnt:    uint16(ns.fCntDown),
		},
	}
	frame := devmac.PHYPayload{
		MHDR:       devmac.MHDR{MType: devmac.ConfirmedDataDown, Major: devmac.LoRaWANR1},
		MACPayload: down,
	}
	body, err := frame.MarshalForMIC()
	if err != nil {
		return nil, errors.Wrap(err, "networkserver: marshal downlink body")
	}
	sec := crypto.Default{}
	mic, err := sec.ComputeDownlinkDataMIC(ns.version, uint32(upFCnt), ns.devAddr, ns.fCntDown, true, body, ns.keys.SNwkSIntKey)
	if err != nil {
		return nil, errors.Wrap(err, "networkserver: compute downlink MIC")
	}
	frame.MIC = mic
	ns.fCntDown++
	return frame.MarshalBinary()
}

// ecbDecryptBlocks performs the join-accept's inverted-ECB encryption
// step: the device recovers plaintext by AES-encrypting the wire bytes,
// so the server must AES-decrypt its plaintext to produce bytes the
// device's DecryptJoinAccept correctly inverts. SecurityModule does not
// expose this server-side direction, so it is done directly against the
// standard library here, the same as any join-server implementation
// outside this module's device-side scope would have to.
func ecbDecryptBlocks(key devmac.AES128Key, plaintext []byte) ([]byte, error) {
	if len(plaintext)%16 != 0 {
		return nil, errors.Errorf("networkserver: join-accept plaintext must be a multiple of 16 bytes, got %d", len(plaintext))
	}
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, errors.Wrap(err, "networkserver: new cipher")
	}
	out := make([]byte, len(plaintext))
	for i := 0; i < len(plaintext)/16; i++ {
		off := i * 16
		block.Decrypt(out[off:off+16], plaintext[off:off+16])
	}
	return out, nil
}
