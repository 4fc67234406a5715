package main

import (
	"crypto/rand"
	"encoding/json"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/dragino-lora/devmac/mac"
)

var (
	_ mac.System = (*simSystem)(nil)
	_ mac.Radio  = (*simRadio)(nil)
)

// simSystem is the mac.System capability for the simulator: ticks are
// advanced explicitly by the command loop rather than a real clock, and
// the session persists to a JSON file so separate devmac-sim
// invocations see a continuous device.
type simSystem struct {
	log      *logrus.Logger
	identity mac.Identity
	tick     uint32

	store      mac.MemorySessionStore
	statePath  string
}

func newSimSystem(log *logrus.Logger, identity mac.Identity, statePath string) *simSystem {
	s := &simSystem{log: log, identity: identity, statePath: statePath}
	if sess, ok := loadSession(statePath); ok {
		s.store.SaveSession(sess)
	}
	return s
}

func (s *simSystem) Ticks() uint32      { return s.tick }
func (s *simSystem) EPS() uint32        { return 20 }
func (s *simSystem) BatteryLevel() uint8 { return 255 }
func (s *simSystem) Advance() uint32    { return 0 }
func (s *simSystem) Identity() mac.Identity { return s.identity }

func (s *simSystem) Rand() uint8 {
	var b [1]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	return b[0]
}

func (s *simSystem) RestoreSession() (mac.Session, bool) { return s.store.RestoreSession() }

func (s *simSystem) SaveSession(sess mac.Session) {
	s.store.SaveSession(sess)
	if err := saveSession(s.statePath, sess); err != nil {
		s.log.WithError(err).Warn("simsystem: failed to persist session")
	}
}

// CriticalSection runs fn inline: the simulator is single-threaded, so
// there is no ISR to hold off.
func (s *simSystem) CriticalSection(fn func()) { fn() }

func (s *simSystem) advance(ticks uint32) { s.tick += ticks }

func loadSession(path string) (mac.Session, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return mac.Session{}, false
	}
	var sess mac.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return mac.Session{}, false
	}
	return sess, true
}

func saveSession(path string, sess mac.Session) error {
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// rxOutcome is the result simRadio decides synchronously, the instant a
// receive window opens, since the loopback network server already
// produced (or declined to produce) its answer when the matching
// uplink was transmitted.
type rxOutcome int

const (
	rxNone rxOutcome = iota
	rxReady
	rxTimeout
)

// simRadio is the mac.Radio capability for the simulator: airtime is
// instantaneous and every transmitted frame is handed straight to an
// in-process networkServer instead of an SDR.
type simRadio struct {
	log *logrus.Logger
	ns  *networkServer

	txFired bool

	outcome    rxOutcome
	collectBuf []byte

	pendingResponse []byte
}

func newSimRadio(log *logrus.Logger, ns *networkServer) *simRadio {
	return &simRadio{log: log, ns: ns}
}

func (r *simRadio) Reset(hold bool) {
	r.log.WithField("hold", hold).Debug("radio: reset")
}

func (r *simRadio) Sleep() {
	r.log.Debug("radio: sleep")
}

func (r *simRadio) ClearInterrupt() {}

func (r *simRadio) EntropyBegin() {}

func (r *simRadio) EntropyEnd() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

func (r *simRadio) Transmit(settings mac.TxSettings, payload []byte) error {
	r.log.WithFields(logrus.Fields{"freq": settings.FreqHz, "sf": settings.SF, "bw": settings.BWHz, "size": len(payload)}).
		Info("radio: transmit")
	resp, err := r.ns.Uplink(payload)
	if err != nil {
		r.log.WithError(err).Warn("radio: network server rejected the uplink")
		resp = nil
	}
	r.pendingResponse = resp
	r.txFired = true
	return nil
}

func (r *simRadio) Receive(settings mac.RxSettings) error {
	r.log.WithFields(logrus.Fields{"freq": settings.FreqHz, "sf": settings.SF, "bw": settings.BWHz}).
		Debug("radio: open receive window")
	if r.pendingResponse != nil {
		r.collectBuf = r.pendingResponse
		r.pendingResponse = nil
		r.outcome = rxReady
	} else {
		r.outcome = rxTimeout
	}
	return nil
}

func (r *simRadio) Collect(meta *mac.RxMeta, buf []byte) (int, error) {
	n := copy(buf, r.collectBuf)
	meta.RSSI = -60
	meta.SNR = 9.5
	return n, nil
}

func (r *simRadio) MinSNR(sf int) float32 { return -20 }

// pump drains whatever radio event simRadio decided on during the Process
// call that just ran, feeding it back to the scheduler. It returns true
// if an event was delivered, so the caller can keep looping without
// burning a tick on a no-op Process call.
func (r *simRadio) pump(m *mac.Scheduler) bool {
	if r.txFired {
		r.txFired = false
		m.RadioEvent(mac.RadioTxComplete)
		return true
	}
	switch r.outcome {
	case rxReady:
		r.outcome = rxNone
		m.RadioEvent(mac.RadioRxReady)
		return true
	case rxTimeout:
		r.outcome = rxNone
		m.RadioEvent(mac.RadioRxTimeout)
		return true
	}
	return false
}
