package mac

import "github.com/dragino-lora/devmac"

// queuedCommands returns the MAC commands (CID plus payload) waiting to
// ride out on the next uplink's FOpts, in the fixed order the scheduler
// accumulates them.
func (m *Scheduler) queuedCommands() []devmac.MACCommand {
	var cmds []devmac.MACCommand
	p := &m.Runtime.Pending
	if p.LinkCheckReq {
		cmds = append(cmds, devmac.MACCommand{CID: devmac.CIDLinkCheck})
	}
	if p.LinkADRAns != nil {
		cmds = append(cmds, devmac.MACCommand{CID: devmac.CIDLinkADR, Payload: p.LinkADRAns})
	}
	if p.RXParamSetupAns != nil {
		cmds = append(cmds, devmac.MACCommand{CID: devmac.CIDRXParamSetup, Payload: p.RXParamSetupAns})
	}
	if p.DLChannelAns != nil {
		cmds = append(cmds, devmac.MACCommand{CID: devmac.CIDDLChannel, Payload: p.DLChannelAns})
	}
	if p.RXTimingSetupAns {
		cmds = append(cmds, devmac.MACCommand{CID: devmac.CIDRXTimingSetup})
	}
	return cmds
}

func (m *Scheduler) clearQueuedCommands() {
	m.Runtime.Pending = pendingAnswers{}
}

// encodeFOpts serializes cmds, returning an error if the total exceeds
// the 15-byte FOpts budget.
func encodeFOpts(cmds []devmac.MACCommand) ([]byte, error) {
	var b []byte
	for _, c := range cmds {
		enc, err := c.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = append(b, enc...)
	}
	if len(b) > 15 {
		return nil, errOverflow
	}
	return b, nil
}

var errOverflow = devmacError("mac: queued MAC-command answers overflow FOpts")

// buildUplink encodes the next uplink frame per the scheduler's current
// operation, applying ADR bookkeeping and the FOpts/FPort0 overflow
// policy of §4.6. It returns the wire bytes ready for Radio.Transmit.
func (m *Scheduler) buildUplink() ([]byte, error) {
	s := &m.Session
	cmds := m.queuedCommands()
	fOpts, err := encodeFOpts(cmds)
	if err != nil && err != errOverflow {
		return nil, err
	}

	adrAckReq, txPowerReset, rate, unmaskAll := evaluateADR(s, m.Runtime.ADRAckCounter)
	if s.ADR {
		m.Runtime.ADRAckReq = adrAckReq
		if txPowerReset {
			s.TXPower = 0
		}
		s.Rate = rate
		if unmaskAll {
			for i := range s.ChMask {
				s.ChMask[i] = 0
			}
		}
	}

	fCntUp := s.UpCounter
	devAddr := s.DevAddr

	var fPort *uint8
	var frmPayload []byte
	overflow := err == errOverflow

	if overflow {
		m.Runtime.Errno = ErrOverflow
		zero := uint8(0)
		fPort = &zero
		var cmdBytes []byte
		for _, c := range cmds {
			enc, e := c.MarshalBinary()
			if e != nil {
				return nil, e
			}
			cmdBytes = append(cmdBytes, enc...)
		}
		frmPayload, err = m.Security.EncryptFRMPayload(m.keys.NwkSEncKey, true, devAddr, fCntUp, cmdBytes)
		if err != nil {
			return nil, err
		}
		fOpts = nil
		m.clearQueuedCommands()
	} else {
		m.clearQueuedCommands()
		if len(m.Runtime.TX.Buf) > 0 || m.Runtime.TX.Port != 0 {
			port := m.Runtime.TX.Port
			fPort = &port
			key := m.keys.AppSKey
			if port == 0 {
				key = m.keys.NwkSEncKey
			}
			frmPayload, err = m.Security.EncryptFRMPayload(key, true, devAddr, fCntUp, m.Runtime.TX.Buf)
			if err != nil {
				return nil, err
			}
		}
		if len(fOpts) > 0 {
			fOpts, err = m.Security.EncryptFOpts(m.keys.NwkSEncKey, false, true, devAddr, fCntUp, fOpts)
			if err != nil {
				return nil, err
			}
		}
	}

	mtype := devmac.UnconfirmedDataUp
	if !overflow && m.Runtime.TX.Confirm {
		mtype = devmac.ConfirmedDataUp
	}

	ack := m.Runtime.AckPending
	macPayload := devmac.MACPayload{
		FHDR: devmac.FHDR{
			DevAddr: devAddr,
			FCtrl: devmac.FCtrl{
				ADR:       s.ADR,
				ADRAckReq: m.Runtime.ADRAckReq,
				ACK:       ack,
			},
			FCnt:  uint16(fCntUp),
			FOpts: fOpts,
		},
		FPort:      fPort,
		FRMPayload: frmPayload,
	}
	m.Runtime.AckPending = false

	frame := devmac.PHYPayload{
		MHDR:       devmac.MHDR{MType: mtype, Major: devmac.LoRaWANR1},
		MACPayload: &macPayload,
	}
	body, err := frame.MarshalForMIC()
	if err != nil {
		return nil, err
	}

	confFCntDown := uint32(0)
	if ack {
		confFCntDown = s.NwkDownCounter
	}
	mic, err := m.Security.ComputeUplinkDataMIC(s.Version, confFCntDown, s.Rate, 0, devAddr, fCntUp, macPayload.FHDR.FCtrl.ACK, body, m.keys.FNwkSIntKey, m.keys.SNwkSIntKey)
	if err != nil {
		return nil, err
	}
	frame.MIC = mic

	s.UpCounter++
	m.Runtime.onUplinkSent()

	return frame.MarshalBinary()
}
