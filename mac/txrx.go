package mac

import (
	"github.com/dragino-lora/devmac/airtime"
	"github.com/dragino-lora/devmac/band"
	"github.com/dragino-lora/devmac/duty"
)

// buildChannelList converts the session's channel plan into the flat
// list the duty-cycle accountant enumerates over: the device-managed
// slots on a dynamic plan, or the region's fixed 72-channel table.
func (m *Scheduler) buildChannelList() []duty.Channel {
	r := m.Runtime.Region
	if r.Plan == band.DynamicPlan {
		out := make([]duty.Channel, len(m.Session.Channels))
		for i, c := range m.Session.Channels {
			out[i] = duty.Channel{
				FreqHz:    c.FreqHz,
				MinDR:     c.MinDR,
				MaxDR:     c.MaxDR,
				BandIndex: r.BandIndex(c.FreqHz),
				Masked:    m.Session.ChannelMasked(i),
			}
		}
		return out
	}
	out := make([]duty.Channel, len(r.DefaultChannels))
	for i, c := range r.DefaultChannels {
		out[i] = duty.Channel{
			FreqHz:    c.FreqHz,
			MinDR:     c.MinDR,
			MaxDR:     c.MaxDR,
			BandIndex: -1,
			Masked:    m.Session.ChannelMasked(i),
		}
	}
	return out
}

func (m *Scheduler) dataRateParams(dr uint8) (sf, bwHz int) {
	d, ok := m.Runtime.Region.DataRates[dr]
	if !ok {
		return 7, 125000
	}
	return d.SpreadFactor, d.Bandwidth * 1000
}

func (m *Scheduler) airtimeTicks(dr uint8, payloadLen int, crc bool) uint32 {
	d, ok := m.Runtime.Region.DataRates[dr]
	if !ok {
		return m.Runtime.TPS / 10
	}
	bwHz := d.Bandwidth * 1000
	lowDR := airtime.LowDataRateOptimize(bwHz, d.SpreadFactor)
	t, err := airtime.Calculate(payloadLen, d.SpreadFactor, bwHz, m.Runtime.TPS, airtime.CodingRate45, crc, lowDR)
	if err != nil {
		return m.Runtime.TPS / 10
	}
	return t
}

func (m *Scheduler) processWaitTx(now uint32) {
	expired, _ := m.Runtime.TimerA.Expired(now)
	if !expired {
		return
	}

	channels := m.buildChannelList()
	rate := m.Session.Rate
	bandLimit := uint32(0)
	if m.Runtime.Op == OpJoining {
		rate = m.joinRate()
	}

	idx, freqHz, ok := m.Runtime.Duty.SelectChannel(channels, rate, m.Runtime.TX.ChIndex, bandLimit, m.System.Rand)
	if !ok {
		m.Runtime.Errno = ErrNoChannel
		m.Runtime.TimerA.Disarm()
		m.Runtime.State = StateIdle
		m.Runtime.Op = OpNone
		return
	}

	var payload []byte
	var err error
	if m.Runtime.Op == OpJoining {
		payload, err = m.buildJoinRequest()
	} else {
		payload, err = m.buildUplink()
	}
	if err != nil {
		m.Runtime.Errno = ErrInternal
		m.Runtime.State = StateIdle
		m.Runtime.Op = OpNone
		return
	}

	sf, bwHz := m.dataRateParams(rate)
	txTime := m.airtimeTicks(rate, len(payload), true)

	m.Runtime.TX.ChIndex = idx
	m.Runtime.TX.FreqHz = freqHz
	m.Runtime.TX.Rate = rate
	m.Runtime.TX.Buf = payload
	m.Runtime.TxTick = now

	m.Runtime.Input.Arm(MaskTxComplete)
	if err := m.Radio.Transmit(TxSettings{FreqHz: freqHz, BWHz: bwHz, SF: sf, DBm: int(m.Session.TXPower)}, payload); err != nil {
		m.enterRecovery()
		return
	}
	m.Runtime.TimerA.Arm(now + 2*txTime)
	m.Runtime.State = StateTx

	bandIdx := m.Runtime.Region.BandIndex(freqHz)
	offTimeFactor := m.Runtime.Region.OffTimeFactor(freqHz)
	m.Runtime.Duty.RecordTransmission(bandIdx, offTimeFactor, m.msForTicks(txTime), m.Session.Joined, m.Session.MaxDutyCycle)

	m.emit(Event{Kind: EventTxBegin, FreqHz: freqHz, SF: sf, BWHz: bwHz, Power: int(m.Session.TXPower), Size: len(payload)})
}

func (m *Scheduler) processTx(now uint32) {
	if fired, tick := m.Runtime.Input.Take(MaskTxComplete); fired {
		m.Runtime.Input.Disarm(MaskTxComplete)
		m.emit(Event{Kind: EventTxComplete})
		m.scheduleRxWindows(tick)
		return
	}
	if expired, _ := m.Runtime.TimerA.Expired(now); expired {
		m.enterRecovery()
	}
}

// scheduleRxWindows arms RX1/RX2 per §4.6, using the session's RX1Delay
// (or the region's join-accept delay while joining) as the RX1 offset
// and RX1Delay+1s as the RX2 offset.
func (m *Scheduler) scheduleRxWindows(txDoneTick uint32) {
	var delaySeconds uint32
	if m.Runtime.Op == OpJoining {
		delaySeconds = uint32(m.Runtime.Region.Defaults.JoinAcceptDelay1.Seconds())
	} else {
		delaySeconds = uint32(m.Session.RX1Delay)
	}
	wait := m.ticksForSeconds(delaySeconds)

	m.Runtime.TimerB.Arm(txDoneTick + wait + m.ticksForSeconds(1))
	m.Runtime.TimerA.Arm(txDoneTick + wait)
	m.Runtime.State = StateWaitRx1
}

func (m *Scheduler) processWaitRx1(now uint32) {
	expired, lateTicks := m.Runtime.TimerA.Expired(now)
	if !expired {
		return
	}
	_ = lateTicks
	m.openRxWindow(now, true)
}

func (m *Scheduler) processWaitRx2(now uint32) {
	expired, _ := m.Runtime.TimerB.Expired(now)
	if !expired {
		return
	}
	m.Runtime.TimerB.Disarm()
	m.openRxWindow(now, false)
}

func (m *Scheduler) openRxWindow(now uint32, isRx1 bool) {
	var freqHz, sf, bwHz int
	var rate uint8
	if isRx1 {
		rate, _ = m.Runtime.Region.RX1DataRate(m.Runtime.TX.Rate, m.Session.RX1DROffset)
		freqHz = m.Runtime.TX.FreqHz
	} else {
		rate = m.Session.RX2Rate
		freqHz = m.Session.RX2FreqHz
	}
	sf, bwHz = m.dataRateParams(rate)
	mtu, _ := m.Runtime.Region.MTU(rate)

	if err := m.Radio.Receive(RxSettings{FreqHz: freqHz, BWHz: bwHz, SF: sf, SymbolTimeout: 8, MaxLen: mtu + 13}); err != nil {
		m.enterRecovery()
		return
	}
	m.Runtime.Input.Arm(MaskRxReady | MaskRxTimeout)
	m.Runtime.TimerA.Arm(now + m.ticksForSeconds(16))

	if isRx1 {
		m.Runtime.State = StateRx1
		m.emit(Event{Kind: EventRx1Slot, FreqHz: freqHz, SF: sf, BWHz: bwHz})
	} else {
		m.Runtime.State = StateRx2
		m.emit(Event{Kind: EventRx2Slot, FreqHz: freqHz, SF: sf, BWHz: bwHz})
	}
}

func (m *Scheduler) processRx(now uint32, state State) {
	if ready, _ := m.Runtime.Input.Take(MaskRxReady); ready {
		m.Runtime.Input.Disarm(MaskRxReady | MaskRxTimeout)
		m.Runtime.TimerA.Disarm()

		buf := make([]byte, 256)
		var meta RxMeta
		n, err := m.Radio.Collect(&meta, buf)
		if err != nil || n == 0 {
			m.onRxMiss(state)
			return
		}
		raw := buf[:n]
		m.emit(Event{Kind: EventDownstream, RSSI: meta.RSSI, SNR: meta.SNR, Size: n})

		if m.Runtime.Op == OpJoining {
			if err := m.handleJoinAccept(raw); err != nil {
				m.onRxMiss(state)
				return
			}
			m.Runtime.State = StateIdle
			m.Runtime.Op = OpNone
			m.emit(Event{Kind: EventJoinComplete})
			return
		}

		valid, err := m.handleDownlink(raw)
		if err != nil || !valid {
			m.onRxMiss(state)
			return
		}
		m.finishUplinkOp(true)
		return
	}

	if timeout, _ := m.Runtime.Input.Take(MaskRxTimeout); timeout {
		m.Runtime.Input.Disarm(MaskRxReady | MaskRxTimeout)
		m.Runtime.TimerA.Disarm()
		m.onRxMiss(state)
		return
	}

	if expired, _ := m.Runtime.TimerA.Expired(now); expired {
		m.Runtime.Input.Disarm(MaskRxReady | MaskRxTimeout)
		m.onRxMiss(state)
	}
}

func (m *Scheduler) onRxMiss(state State) {
	m.Radio.ClearInterrupt()
	if state == StateRx1 {
		m.Runtime.State = StateWaitRx2
		return
	}
	m.enterRx2Lockout()
}

func (m *Scheduler) enterRx2Lockout() {
	m.Radio.Sleep()
	mtu, _ := m.Runtime.Region.MTU(m.Session.RX2Rate)
	guard := m.airtimeTicks(m.Session.RX2Rate, mtu, false)
	m.Runtime.TimerA.Arm(m.System.Ticks() + guard)
	m.Runtime.State = StateRx2Lockout
}

func (m *Scheduler) processRx2Lockout(now uint32) {
	expired, _ := m.Runtime.TimerA.Expired(now)
	if !expired {
		return
	}
	m.Runtime.TimerA.Disarm()
	m.runDownlinkMissingHandler()
}

// runDownlinkMissingHandler implements §4.6's retry policy after a
// class-A window pair closes with nothing valid received.
func (m *Scheduler) runDownlinkMissingHandler() {
	switch m.Runtime.Op {
	case OpJoining:
		m.emit(Event{Kind: EventJoinTimeout})
		m.Runtime.TX.Trials++
		m.Runtime.State = StateWaitTx
		delay := uint32(m.System.Rand()) * 60 / 255
		m.Runtime.TimerA.Arm(m.System.Ticks() + m.ticksForSeconds(delay))
	case OpDataConfirmed:
		if m.Runtime.TX.Trials+1 < m.Session.NbTrans || m.Session.NbTrans == 0 {
			m.Runtime.TX.Trials++
			ageSeconds := m.msForTicks(m.System.Ticks()-m.Runtime.ServiceStartTick) / 1000
			txTimeMs := m.msForTicks(m.airtimeTicks(m.Runtime.TX.Rate, len(m.Runtime.TX.Buf), true))
			m.Runtime.RetryMs = txTimeMs * retryDuty(ageSeconds)
			m.Runtime.State = StateWaitRetry
			m.Runtime.TimerA.Arm(m.System.Ticks() + m.ticksForMillis(m.Runtime.RetryMs))
		} else {
			m.finishUplinkOp(false)
			m.emit(Event{Kind: EventDataTimeout})
		}
	default: // unconfirmed
		if m.Runtime.TX.Trials+1 < m.Session.NbTrans || m.Session.NbTrans == 0 {
			m.Runtime.TX.Trials++
			m.Runtime.State = StateWaitTx
			m.Runtime.TimerA.Arm(m.System.Ticks())
		} else {
			m.finishUplinkOp(true)
		}
	}
}

func (m *Scheduler) processWaitRetry(now uint32) {
	if m.Runtime.RetryMs > 0 {
		elapsedMs := m.msForTicks(now - m.Runtime.TxTick)
		if elapsedMs < m.Runtime.RetryMs {
			return
		}
	}
	expired, _ := m.Runtime.TimerA.Expired(now)
	if !expired {
		return
	}
	m.Runtime.TimerA.Disarm()
	m.Runtime.State = StateWaitTx
	m.Runtime.TimerA.Arm(now)
}

func (m *Scheduler) finishUplinkOp(success bool) {
	m.Runtime.State = StateIdle
	m.Runtime.Op = OpNone
	m.Runtime.TX = txDescriptor{}
	if success {
		m.emit(Event{Kind: EventDataComplete})
	} else {
		m.emit(Event{Kind: EventDataNak})
	}
}
