package mac

import (
	"testing"

	"github.com/dragino-lora/devmac"
	"github.com/dragino-lora/devmac/band"
	"github.com/dragino-lora/devmac/crypto"
	. "github.com/smartystreets/goconvey/convey"
)

const tps = 1000 // 1 kHz tick counter for all scheduler tests

func newTestScheduler() (*Scheduler, *fakeSystem, *fakeRadio, *fakeEvents) {
	region, err := band.Get(band.EU863870)
	if err != nil {
		panic(err)
	}
	sys := newFakeSystem()
	radio := &fakeRadio{}
	events := &fakeEvents{}
	sched := New(Config{
		Region:   region,
		TPS:      tps,
		Version:  devmac.MACVersion1_0,
		NwkKey:   devmac.AES128Key{0x01},
		AppKey:   devmac.AES128Key{0x02},
		Radio:    radio,
		System:   sys,
		Security: crypto.Default{},
		Events:   events,
	})
	return sched, sys, radio, events
}

func runInit(m *Scheduler, sys *fakeSystem) {
	for m.Runtime.State != StateIdle {
		m.Process()
		sys.advance(tps) // 1 second per tick, more than any init timer needs
	}
}

func TestSchedulerInitSequence(t *testing.T) {
	Convey("Given a freshly constructed scheduler with no stored session", t, func() {
		m, sys, radio, events := newTestScheduler()

		Convey("Then it starts in StateInit and regional defaults are applied", func() {
			So(m.Runtime.State, ShouldEqual, StateInit)
			So(m.Session.RX1Delay, ShouldEqual, uint8(1))
			So(m.Session.RX2FreqHz, ShouldEqual, 869525000)
		})

		Convey("Then running Process through the reset/entropy sequence reaches Idle and emits Startup", func() {
			runInit(m, sys)
			So(m.Runtime.State, ShouldEqual, StateIdle)
			So(radio.resetCalls, ShouldBeGreaterThanOrEqualTo, 2)
			So(events.has(EventStartup), ShouldBeTrue)
		})
	})
}

func TestSchedulerBusyAndGuardErrors(t *testing.T) {
	Convey("Given a scheduler parked in Idle but not yet joined", t, func() {
		m, sys, _, _ := newTestScheduler()
		runInit(m, sys)

		Convey("Then Unconfirmed is refused for lack of a session", func() {
			err := m.Unconfirmed(1, []byte("hi"))
			So(err, ShouldEqual, errNotJoined)
		})

		Convey("Then OTAA starts a join and a second OTAA call is refused as busy", func() {
			So(m.OTAA(), ShouldBeNil)
			So(m.Runtime.State, ShouldEqual, StateWaitTx)
			So(m.OTAA(), ShouldEqual, errBusy)
		})
	})

	Convey("Given a joined scheduler", t, func() {
		m, sys, _, _ := newTestScheduler()
		runInit(m, sys)
		m.Session.Joined = true
		m.Session.Rate = 5

		Convey("Then an oversized payload is rejected before anything is scheduled", func() {
			big := make([]byte, 300)
			err := m.Unconfirmed(1, big)
			So(err, ShouldEqual, errSize)
			So(m.Runtime.State, ShouldEqual, StateIdle)
		})

		Convey("Then a payload within the MTU is accepted and arms immediate transmission", func() {
			err := m.Unconfirmed(1, []byte("hello"))
			So(err, ShouldBeNil)
			So(m.Runtime.State, ShouldEqual, StateWaitTx)
			So(m.Runtime.TimerA.Armed, ShouldBeTrue)
		})
	})
}

func TestRX1WindowTiming(t *testing.T) {
	Convey("Given a joined scheduler with an uplink queued", t, func() {
		m, sys, radio, events := newTestScheduler()
		runInit(m, sys)

		m.Session.Joined = true
		m.Session.DevAddr = devmac.DevAddr(0x01020304)
		m.keys.FNwkSIntKey = devmac.AES128Key{0xaa}
		m.keys.SNwkSIntKey = devmac.AES128Key{0xaa}
		m.keys.NwkSEncKey = devmac.AES128Key{0xaa}
		m.keys.AppSKey = devmac.AES128Key{0xbb}
		radio.collectErr = errCollectEmpty

		So(m.Unconfirmed(10, []byte("ping")), ShouldBeNil)

		Convey("Then processing the armed TimerA transmits and opens RX1 exactly rx1_delay ticks after TxComplete", func() {
			m.Process() // consumes the immediate TimerA, transmits
			So(m.Runtime.State, ShouldEqual, StateTx)
			So(radio.transmits, ShouldEqual, 1)

			txDoneTick := sys.tick
			m.RadioEvent(RadioTxComplete)
			m.Process() // observes TxComplete, schedules RX windows
			So(m.Runtime.State, ShouldEqual, StateWaitRx1)
			So(events.has(EventTxComplete), ShouldBeTrue)

			wantRx1Tick := txDoneTick + uint32(m.Session.RX1Delay)*tps
			So(m.Runtime.TimerA.Tick, ShouldEqual, wantRx1Tick)

			sys.tick = wantRx1Tick
			m.Process() // RX1 deadline reached, opens the window
			So(m.Runtime.State, ShouldEqual, StateRx1)
			So(radio.receives, ShouldEqual, 1)
			rx1SlotTick := sys.tick
			So(rx1SlotTick-txDoneTick, ShouldEqual, uint32(m.Session.RX1Delay)*tps)
		})

		Convey("Then a missed RX1 falls through to RX2 at RX1Delay+1s after TxComplete", func() {
			m.Process()
			txDoneTick := sys.tick
			m.RadioEvent(RadioTxComplete)
			m.Process()

			sys.tick = txDoneTick + uint32(m.Session.RX1Delay)*tps
			m.Process() // opens RX1
			So(m.Runtime.State, ShouldEqual, StateRx1)

			m.RadioEvent(RadioRxTimeout)
			m.Process() // RX1 misses, falls to WaitRx2
			So(m.Runtime.State, ShouldEqual, StateWaitRx2)

			wantRx2Tick := txDoneTick + uint32(m.Session.RX1Delay)*tps + tps
			So(m.Runtime.TimerB.Tick, ShouldEqual, wantRx2Tick)

			sys.tick = wantRx2Tick
			m.Process() // opens RX2
			So(m.Runtime.State, ShouldEqual, StateRx2)
			So(radio.receives, ShouldEqual, 2)
		})
	})
}

var errCollectEmpty = devmacError("test: nothing to collect")
