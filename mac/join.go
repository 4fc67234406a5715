package mac

import (
	"github.com/dragino-lora/devmac"
	"github.com/dragino-lora/devmac/band"
)

// buildJoinRequest encodes a fresh JoinRequest PHYPayload, picking a new
// random DevNonce and computing its MIC under NwkKey.
func (m *Scheduler) buildJoinRequest() ([]byte, error) {
	nonce := devmac.DevNonce(uint16(m.System.Rand()) | uint16(m.System.Rand())<<8)
	m.Runtime.joinDevNonce = nonce

	id := m.System.Identity()
	payload := devmac.JoinRequestPayload{
		JoinEUI:  id.JoinEUI,
		DevEUI:   id.DevEUI,
		DevNonce: nonce,
	}
	frame := devmac.PHYPayload{
		MHDR:       devmac.MHDR{MType: devmac.JoinRequest, Major: devmac.LoRaWANR1},
		MACPayload: &payload,
	}

	body, err := frame.MarshalForMIC()
	if err != nil {
		return nil, err
	}
	mic, err := m.Security.ComputeJoinRequestMIC(body[:1], body[1:], m.nwkKey)
	if err != nil {
		return nil, err
	}
	frame.MIC = mic
	return frame.MarshalBinary()
}

// joinRate is the fixed data rate join requests and retries transmit
// at; regions with more elaborate join-rate schedules are free to vary
// this, but a single conservative rate is always valid.
func (m *Scheduler) joinRate() uint8 {
	return 0
}

// handleJoinAccept decodes and validates a received JoinAccept frame,
// deriving session keys and moving the session to joined on success.
func (m *Scheduler) handleJoinAccept(raw []byte) error {
	if len(raw) < 5 {
		return errJoinAccept
	}
	mhdrByte := raw[0]
	var mhdr devmac.MHDR
	if err := mhdr.UnmarshalBinary([]byte{mhdrByte}); err != nil {
		return err
	}
	if mhdr.MType != devmac.JoinAccept {
		return errJoinAccept
	}

	ciphertext := raw[1:]
	plaintext, err := m.Security.DecryptJoinAccept(m.nwkKey, ciphertext)
	if err != nil {
		return err
	}

	body := append([]byte{mhdrByte}, plaintext[:len(plaintext)-4]...)
	var mic devmac.MIC
	copy(mic[:], plaintext[len(plaintext)-4:])

	var accept devmac.JoinAcceptPayload
	if err := accept.UnmarshalBinary(body[1:]); err != nil {
		return err
	}

	var jsIntKey devmac.AES128Key
	if m.version == devmac.MACVersion1_1 {
		jk, err := m.Security.DeriveJoinKeys11(m.nwkKey, m.System.Identity().DevEUI)
		if err != nil {
			return err
		}
		m.jsKeys = jk
		jsIntKey = jk.JSIntKey
	}

	wantMIC, err := m.Security.ComputeJoinAcceptMIC(m.version, 0xff, m.System.Identity().JoinEUI, m.Runtime.joinDevNonce, body, m.nwkKey, jsIntKey)
	if err != nil {
		return err
	}
	if wantMIC != mic {
		return errJoinAcceptMIC
	}

	if m.version == devmac.MACVersion1_0 {
		m.keys, err = m.Security.DeriveSessionKeys10(m.nwkKey, accept.NetID, accept.JoinNonce, m.Runtime.joinDevNonce)
	} else {
		m.keys, err = m.Security.DeriveSessionKeys11(m.nwkKey, m.appKey, m.System.Identity().JoinEUI, accept.JoinNonce, m.Runtime.joinDevNonce)
	}
	if err != nil {
		return err
	}

	m.Session.DevAddr = accept.DevAddr
	m.Session.NetID = accept.NetID
	m.Session.RX1DROffset = accept.DLSettings.RX1DROffset
	m.Session.RX2Rate = accept.DLSettings.RX2DataRate
	m.Session.RX1Delay = accept.EffectiveRxDelay()
	m.Session.UpCounter = 0
	m.Session.NwkDownCounter = 0
	m.Session.AppDownCounter = 0
	m.Session.Joined = true

	if accept.CFList != nil {
		m.applyCFList(*accept.CFList)
	}

	m.System.SaveSession(m.Session)
	m.emit(Event{Kind: EventSessionUpdated, Session: m.Session})
	return nil
}

// applyCFList extends a dynamic-plan session's channel slots from the
// join-accept's optional CFList: five extra 24-bit frequencies (in
// units of 100 Hz) packed little-endian. Fixed-plan regions encode a
// channel mask instead and are left to region-specific handling.
func (m *Scheduler) applyCFList(cf devmac.CFList) {
	if m.Runtime.Region.Plan != band.DynamicPlan {
		return
	}
	for i := 0; i < 5; i++ {
		b := cf[i*3 : i*3+3]
		freqHz := (int(b[0]) | int(b[1])<<8 | int(b[2])<<16) * 100
		if freqHz == 0 {
			continue
		}
		m.Session.Channels = append(m.Session.Channels, ChannelSlot{FreqHz: freqHz, MinDR: 0, MaxDR: 5})
	}
}

var (
	errJoinAccept    = devmacError("mac: malformed JoinAccept")
	errJoinAcceptMIC = devmacError("mac: JoinAccept MIC mismatch")
)
