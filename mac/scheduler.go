package mac

import (
	"math"

	"github.com/dragino-lora/devmac"
	"github.com/dragino-lora/devmac/band"
	"github.com/dragino-lora/devmac/crypto"
	"github.com/dragino-lora/devmac/duty"
)

// Confirmed-uplink retry duty ladder, §4.6.
const (
	retryDutyUnder1h  = 100
	retryDutyUnder11h = 1000
	retryDutyElse     = 10000
)

func retryDuty(ageSeconds uint32) uint32 {
	switch {
	case ageSeconds <= 3600:
		return retryDutyUnder1h
	case ageSeconds <= 11*3600:
		return retryDutyUnder11h
	default:
		return retryDutyElse
	}
}

// Config bundles everything New needs to construct a Scheduler: the
// region table, the tick rate, the root keys provisioned at
// manufacture, and the three host capabilities.
type Config struct {
	Region  band.Region
	TPS     uint32 // ticks/second, 10 kHz..1 MHz per the System capability
	Version devmac.MACVersion
	NwkKey  devmac.AES128Key
	AppKey  devmac.AES128Key

	Radio    Radio
	System   System
	Security crypto.SecurityModule
	Events   EventSink
}

// Scheduler is the top-level class-A state machine: the public entry
// point for joining, sending data, and pumping the radio and timers.
// Everything that touches the session, band counters, timers or the
// radio is reached exclusively through a Scheduler.
type Scheduler struct {
	Session Session
	Runtime Runtime

	Radio    Radio
	System   System
	Security crypto.SecurityModule
	Events   EventSink

	version devmac.MACVersion
	nwkKey  devmac.AES128Key
	appKey  devmac.AES128Key
	keys    crypto.SessionKeys
	jsKeys  crypto.JoinKeys // 1.1 only
}

// New constructs a Scheduler, ready to run Process from StateInit.
func New(cfg Config) *Scheduler {
	m := &Scheduler{
		Radio:    cfg.Radio,
		System:   cfg.System,
		Security: cfg.Security,
		Events:   cfg.Events,
		version:  cfg.Version,
		nwkKey:   cfg.NwkKey,
		appKey:   cfg.AppKey,
	}
	m.Runtime.Region = cfg.Region
	m.Runtime.TPS = cfg.TPS
	m.Runtime.Duty = duty.NewAccountant(cfg.TPS)
	if s, ok := cfg.System.RestoreSession(); ok {
		m.Session = s
	} else {
		m.applyRegionDefaults()
	}
	m.Session.Version = cfg.Version
	return m
}

func (m *Scheduler) ticksForSeconds(s uint32) uint32 { return s * m.Runtime.TPS }
func (m *Scheduler) ticksForMillis(ms uint32) uint32 { return ms * m.Runtime.TPS / 1000 }
func (m *Scheduler) ticksForMicros(us uint32) uint32 {
	return uint32(uint64(us) * uint64(m.Runtime.TPS) / 1000000)
}
func (m *Scheduler) msForTicks(ticks uint32) uint32 {
	return uint32(uint64(ticks) * 1000 / uint64(m.Runtime.TPS))
}

func (m *Scheduler) applyRegionDefaults() {
	m.Session = Session{
		RX1DROffset: 0,
		RX1Delay:    uint8(m.Runtime.Region.Defaults.RX1Delay.Seconds()),
		RX2Rate:     m.Runtime.Region.Defaults.RX2DataRate,
		RX2FreqHz:   m.Runtime.Region.Defaults.RX2FreqHz,
		ADR:         true,
	}
	if m.Session.RX1Delay == 0 {
		m.Session.RX1Delay = 1 // RX1 delay 0 is coerced to 1s, §4.3.
	}
	if m.Runtime.Region.Plan == band.DynamicPlan {
		for _, c := range m.Runtime.Region.DefaultChannels {
			m.Session.Channels = append(m.Session.Channels, ChannelSlot{FreqHz: c.FreqHz, MinDR: c.MinDR, MaxDR: c.MaxDR})
		}
	}
}

func (m *Scheduler) emit(e Event) {
	if m.Events != nil {
		m.Events.Emit(e)
	}
}

// Cancel returns the scheduler to Idle from any non-reset state and
// sleeps the radio. It is a no-op during the reset/entropy sequence.
func (m *Scheduler) Cancel() {
	switch m.Runtime.State {
	case StateInit, StateInitReset, StateInitLockout, StateEntropy,
		StateRecoveryReset, StateRecoveryLockout:
		return
	}
	m.Radio.Sleep()
	m.Runtime.TimerA.Disarm()
	m.Runtime.TimerB.Disarm()
	m.Runtime.State = StateIdle
	m.Runtime.Op = OpNone
}

// Forget cancels any in-flight operation and clears the joined session,
// reapplying regional defaults.
func (m *Scheduler) Forget() {
	m.Cancel()
	m.applyRegionDefaults()
	m.System.SaveSession(m.Session)
	m.emit(Event{Kind: EventSessionUpdated, Session: m.Session})
}

// OTAA starts a join procedure if the scheduler is Idle.
func (m *Scheduler) OTAA() error {
	if m.Runtime.State != StateIdle {
		return errBusy
	}
	m.Runtime.Op = OpJoining
	m.Runtime.JoinStartTick = m.System.Ticks()
	m.Runtime.State = StateWaitTx
	delay := uint32(m.System.Rand()) * 60 / 255
	m.Runtime.TimerA.Arm(m.System.Ticks() + m.ticksForSeconds(delay))
	return nil
}

// Unconfirmed queues an unconfirmed uplink on the given port.
func (m *Scheduler) Unconfirmed(port uint8, data []byte) error {
	return m.startUplink(port, data, false)
}

// Confirmed queues a confirmed uplink on the given port.
func (m *Scheduler) Confirmed(port uint8, data []byte) error {
	return m.startUplink(port, data, true)
}

func (m *Scheduler) startUplink(port uint8, data []byte, confirm bool) error {
	if m.Runtime.State != StateIdle {
		return errBusy
	}
	if !m.Session.Joined {
		return errNotJoined
	}
	if len(data) > m.mtu(m.Session.Rate) {
		return errSize
	}

	m.Runtime.TX.Buf = append([]byte(nil), data...)
	m.Runtime.TX.Confirm = confirm
	m.Runtime.TX.Trials = 0
	m.Runtime.TX.Port = port

	if confirm {
		m.Runtime.Op = OpDataConfirmed
	} else {
		m.Runtime.Op = OpDataUnconfirmed
	}
	m.Runtime.State = StateWaitTx
	m.Runtime.TimerA.Arm(m.System.Ticks())
	return nil
}

var (
	errBusy      = devmacError("mac: scheduler is busy")
	errNotJoined = devmacError("mac: session is not joined")
	errSize      = devmacError("mac: payload exceeds the data-rate MTU")
)

type devmacError string

func (e devmacError) Error() string { return string(e) }

// mtu returns the usable MACPayload size at rate, per §4.6: the
// region's MTU minus frame overhead, pending command bytes, and the
// link-check-request byte if queued.
func (m *Scheduler) mtu(rate uint8) int {
	regionMTU, err := m.Runtime.Region.MTU(rate)
	if err != nil {
		return 0
	}
	const frameOverhead = 13 // FHDR(7)+FPort(1)+MHDR(1)+MIC(4)
	usable := regionMTU - frameOverhead - m.pendingCommandBytes()
	if m.Runtime.Pending.LinkCheckReq {
		usable--
	}
	if usable < 0 {
		return 0
	}
	return usable
}

func (m *Scheduler) pendingCommandBytes() int {
	n := 0
	if m.Runtime.Pending.LinkADRAns != nil {
		n += 2
	}
	if m.Runtime.Pending.RXParamSetupAns != nil {
		n += 2
	}
	if m.Runtime.Pending.DLChannelAns != nil {
		n += 2
	}
	if m.Runtime.Pending.RXTimingSetupAns {
		n++
	}
	return n
}

// TicksUntilNextEvent reports how long the caller may safely sleep
// before the scheduler next needs to run, so process() is never polled
// needlessly.
func (m *Scheduler) TicksUntilNextEvent() uint32 {
	now := m.System.Ticks()
	best := uint32(math.MaxUint32)
	for _, t := range []*Timer{&m.Runtime.TimerA, &m.Runtime.TimerB} {
		if !t.Armed {
			continue
		}
		if int32(t.Tick-now) < 0 {
			return 0
		}
		if d := t.Tick - now; d < best {
			best = d
		}
	}
	return best
}

// RadioEvent is called from ISR context when the radio raises e.
func (m *Scheduler) RadioEvent(e RadioEvent) {
	m.System.CriticalSection(func() {
		m.Runtime.Input.Signal(e, m.System.Ticks())
	})
}

// Process performs at most one state transition and one radio I/O
// operation, then returns. It never blocks.
func (m *Scheduler) Process() {
	now := m.System.Ticks()
	m.Runtime.Duty.ProcessBands(now)

	switch m.Runtime.State {
	case StateInit:
		m.processInit(now)
	case StateInitReset, StateInitLockout, StateEntropy:
		m.processInitSequence(now)
	case StateIdle:
		// nothing to do until a public call moves us out
	case StateWaitTx:
		m.processWaitTx(now)
	case StateTx:
		m.processTx(now)
	case StateWaitRx1:
		m.processWaitRx1(now)
	case StateRx1:
		m.processRx(now, StateRx1)
	case StateWaitRx2:
		m.processWaitRx2(now)
	case StateRx2:
		m.processRx(now, StateRx2)
	case StateRx2Lockout:
		m.processRx2Lockout(now)
	case StateWaitRetry:
		m.processWaitRetry(now)
	case StateRecoveryReset, StateRecoveryLockout:
		m.processRecovery(now)
	}
}

func (m *Scheduler) processInit(now uint32) {
	m.Radio.Reset(true)
	m.Runtime.TimerA.Arm(now + m.ticksForMillis(10))
	m.Runtime.State = StateInitReset
}

func (m *Scheduler) processInitSequence(now uint32) {
	expired, _ := m.Runtime.TimerA.Expired(now)
	if !expired {
		return
	}
	switch m.Runtime.State {
	case StateInitReset:
		m.Radio.Reset(false)
		m.Runtime.TimerA.Arm(now + m.ticksForMicros(100))
		m.Runtime.State = StateInitLockout
	case StateInitLockout:
		m.Runtime.TimerA.Arm(now + m.ticksForMillis(10))
		m.Runtime.State = StateEntropy
		m.Radio.EntropyBegin()
	case StateEntropy:
		entropy := m.Radio.EntropyEnd()
		m.Runtime.TimerA.Disarm()
		m.Runtime.State = StateIdle
		m.Runtime.ServiceStartTick = now
		m.emit(Event{Kind: EventStartup, Entropy: entropy})
	}
}

func (m *Scheduler) processRecovery(now uint32) {
	expired, _ := m.Runtime.TimerA.Expired(now)
	if !expired {
		return
	}
	if m.Runtime.State == StateRecoveryReset {
		m.Runtime.TimerA.Arm(now + m.ticksForSeconds(60))
		m.Runtime.State = StateRecoveryLockout
		return
	}
	m.Runtime.TimerA.Disarm()
	m.Runtime.State = StateIdle
	m.Runtime.Op = OpNone
	m.emit(Event{Kind: EventReset})
}

func (m *Scheduler) enterRecovery() {
	m.Radio.Sleep()
	m.Runtime.TimerA.Arm(m.System.Ticks())
	m.Runtime.State = StateRecoveryReset
	m.emit(Event{Kind: EventChipError})
}
