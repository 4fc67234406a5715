package mac

import "github.com/dragino-lora/devmac"

// handleDownlink validates and applies a received data-down frame.
// Returns false (not an error) when the frame fails DevAddr or MIC
// validation, which the caller treats the same as an RxTimeout.
func (m *Scheduler) handleDownlink(raw []byte) (bool, error) {
	var frame devmac.PHYPayload
	if err := frame.UnmarshalBinary(raw); err != nil {
		return false, nil
	}
	if frame.MHDR.MType != devmac.UnconfirmedDataDown && frame.MHDR.MType != devmac.ConfirmedDataDown {
		return false, nil
	}
	mp, ok := frame.MACPayload.(*devmac.MACPayload)
	if !ok {
		return false, nil
	}
	if mp.FHDR.DevAddr != m.Session.DevAddr {
		return false, nil
	}

	isAppCounter := mp.FPort != nil && *mp.FPort != 0
	stored := m.Session.NwkDownCounter
	if m.Session.Version == devmac.MACVersion1_1 && isAppCounter {
		stored = m.Session.AppDownCounter
	}
	fCnt32 := resolveDownCounter32(stored, mp.FHDR.FCnt)

	confFCntUp := uint32(0)
	if mp.FHDR.FCtrl.ACK {
		confFCntUp = m.Session.UpCounter - 1
	}

	body, err := frame.MarshalForMIC()
	if err != nil {
		return false, nil
	}
	wantMIC, err := m.Security.ComputeDownlinkDataMIC(m.Session.Version, confFCntUp, mp.FHDR.DevAddr, fCnt32, mp.FHDR.FCtrl.ACK, body, m.keys.SNwkSIntKey)
	if err != nil {
		return false, err
	}
	if wantMIC != frame.MIC {
		return false, nil
	}

	if m.Session.Version == devmac.MACVersion1_1 && isAppCounter {
		m.Session.AppDownCounter = fCnt32
	} else {
		m.Session.NwkDownCounter = fCnt32
	}

	fOpts := mp.FHDR.FOpts
	if m.Session.Version == devmac.MACVersion1_1 && len(fOpts) > 0 {
		fOpts, err = m.Security.EncryptFOpts(m.keys.NwkSEncKey, true, false, mp.FHDR.DevAddr, fCnt32, fOpts)
		if err != nil {
			return false, err
		}
	}

	var cmdSource []byte
	if mp.FPort != nil && *mp.FPort == 0 {
		pt, err := m.Security.EncryptFRMPayload(m.keys.NwkSEncKey, false, mp.FHDR.DevAddr, fCnt32, mp.FRMPayload)
		if err != nil {
			return false, err
		}
		cmdSource = pt
	} else {
		cmdSource = fOpts
	}
	m.applyDownlinkCommands(cmdSource)

	if mp.FPort != nil && *mp.FPort != 0 {
		data, err := m.Security.EncryptFRMPayload(m.keys.AppSKey, false, mp.FHDR.DevAddr, fCnt32, mp.FRMPayload)
		if err != nil {
			return false, err
		}
		m.emit(Event{Kind: EventRx, Port: *mp.FPort, Counter: fCnt32, Data: data})
	}

	m.Runtime.onValidDownlink()
	m.Runtime.LastValidDownlinkTick = m.System.Ticks()
	m.Runtime.HasValidDownlink = true
	if frame.MHDR.MType == devmac.ConfirmedDataDown {
		m.Runtime.AckPending = true
	}

	m.System.SaveSession(m.Session)
	m.emit(Event{Kind: EventSessionUpdated, Session: m.Session})
	return true, nil
}

// applyDownlinkCommands parses cmdBytes as a run of MAC commands and
// applies them to a shadow session, atomically committing on success.
// A LinkADR run (one or more consecutive LinkADR commands) is folded
// into a single batch so only one LinkADRAns is queued.
func (m *Scheduler) applyDownlinkCommands(cmdBytes []byte) {
	if len(cmdBytes) == 0 {
		return
	}
	cmds, _ := devmac.ParseMACCommands(false, cmdBytes)
	shadow := newShadow(&m.Session)

	var batch linkADRBatch
	flushBatch := func() {
		if !batch.active {
			return
		}
		ans := batch.commit(shadow)
		m.Runtime.Pending.LinkADRAns = &ans
		batch = linkADRBatch{}
	}

	numChannels := m.Runtime.Region.NumChannels
	availableRate := func(dr uint8) bool {
		_, err := m.Runtime.Region.MTU(dr)
		return err == nil
	}

	for _, cmd := range cmds {
		if cmd.CID != devmac.CIDLinkADR {
			flushBatch()
		}
		switch cmd.CID {
		case devmac.CIDLinkADR:
			p, ok := cmd.Payload.(*devmac.LinkADRReqPayload)
			if !ok {
				continue
			}
			batch.applyLinkADR(p, numChannels, availableRate)
		case devmac.CIDDutyCycle:
			if p, ok := cmd.Payload.(*devmac.DutyCycleReqPayload); ok {
				shadow.MaxDutyCycle = p.MaxDCycle
			}
		case devmac.CIDRXParamSetup:
			if p, ok := cmd.Payload.(*devmac.RXParamSetupReqPayload); ok {
				shadow.RX1DROffset = p.DLSettings.RX1DROffset
				shadow.RX2Rate = p.DLSettings.RX2DataRate
				shadow.RX2FreqHz = int(p.Frequency) * 100
				m.Runtime.Pending.RXParamSetupAns = &devmac.RXParamSetupAnsPayload{
					ChannelACK:     true,
					RX2DataRateACK: true,
					RX1DROffsetACK: true,
				}
			}
		case devmac.CIDRXTimingSetup:
			if p, ok := cmd.Payload.(*devmac.RXTimingSetupReqPayload); ok {
				d := p.Delay
				if d == 0 {
					d = 1
				}
				shadow.RX1Delay = d
				m.Runtime.Pending.RXTimingSetupAns = true
			}
		case devmac.CIDDLChannel:
			if p, ok := cmd.Payload.(*devmac.DLChannelReqPayload); ok {
				freqHz := int(p.Freq) * 100
				if int(p.ChIndex) < len(shadow.Channels) {
					shadow.Channels[p.ChIndex].FreqHz = freqHz
				}
				m.Runtime.Pending.DLChannelAns = &devmac.DLChannelAnsPayload{ChannelFreqOK: true, UplinkFreqOK: true}
			}
		}
	}
	flushBatch()

	m.Session = *shadow
}
