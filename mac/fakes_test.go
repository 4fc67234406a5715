package mac

import "github.com/dragino-lora/devmac"

// fakeSystem is a deterministic System double: ticks advance only when
// the test calls advance, Rand returns a fixed script, and sessions are
// held in memory.
type fakeSystem struct {
	tick     uint32
	randSeq  []uint8
	randPos  int
	identity Identity
	saved    Session
	hasSaved bool
}

func newFakeSystem() *fakeSystem {
	return &fakeSystem{
		identity: Identity{
			DevEUI:  devmac.EUI64{1, 2, 3, 4, 5, 6, 7, 8},
			JoinEUI: devmac.EUI64{8, 7, 6, 5, 4, 3, 2, 1},
		},
	}
}

func (s *fakeSystem) Ticks() uint32    { return s.tick }
func (s *fakeSystem) EPS() uint32      { return 20 }
func (s *fakeSystem) BatteryLevel() uint8 { return 200 }
func (s *fakeSystem) Advance() uint32  { return 0 }
func (s *fakeSystem) Identity() Identity { return s.identity }

func (s *fakeSystem) Rand() uint8 {
	if s.randPos >= len(s.randSeq) {
		return 0
	}
	v := s.randSeq[s.randPos]
	s.randPos++
	return v
}

func (s *fakeSystem) RestoreSession() (Session, bool) { return s.saved, s.hasSaved }
func (s *fakeSystem) SaveSession(sess Session) {
	s.saved = sess
	s.hasSaved = true
}

func (s *fakeSystem) CriticalSection(fn func()) { fn() }

func (s *fakeSystem) advance(ticks uint32) { s.tick += ticks }

// fakeRadio is a Radio double that records every call and lets the test
// script the bytes a subsequent Collect returns.
type fakeRadio struct {
	transmitted  []byte
	transmits    int
	receives     int
	txErr        error
	rxErr        error
	collectBuf   []byte
	collectErr   error
	sleepCalls   int
	resetCalls   int
	lastRxWindow RxSettings
}

func (r *fakeRadio) Reset(hold bool)     { r.resetCalls++ }
func (r *fakeRadio) Sleep()              { r.sleepCalls++ }
func (r *fakeRadio) ClearInterrupt()     {}
func (r *fakeRadio) EntropyBegin()       {}
func (r *fakeRadio) EntropyEnd() uint32  { return 0xA5A5A5A5 }
func (r *fakeRadio) MinSNR(sf int) float32 { return -20 }

func (r *fakeRadio) Transmit(settings TxSettings, payload []byte) error {
	r.transmits++
	r.transmitted = append([]byte(nil), payload...)
	return r.txErr
}

func (r *fakeRadio) Receive(settings RxSettings) error {
	r.receives++
	r.lastRxWindow = settings
	return r.rxErr
}

func (r *fakeRadio) Collect(meta *RxMeta, buf []byte) (int, error) {
	if r.collectErr != nil {
		return 0, r.collectErr
	}
	n := copy(buf, r.collectBuf)
	meta.RSSI = -80
	meta.SNR = 7.5
	return n, nil
}

// fakeEvents records every emitted event in order.
type fakeEvents struct {
	events []Event
}

func (f *fakeEvents) Emit(e Event) { f.events = append(f.events, e) }

func (f *fakeEvents) has(kind EventKind) bool {
	for _, e := range f.events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func (f *fakeEvents) last(kind EventKind) (Event, bool) {
	for i := len(f.events) - 1; i >= 0; i-- {
		if f.events[i].Kind == kind {
			return f.events[i], true
		}
	}
	return Event{}, false
}
