// devmac-sim drives a mac.Scheduler against an in-memory radio and
// loopback network server, for exploring join and uplink behavior
// without real hardware. Each invocation is a single step (otaa, send,
// or tick); device state persists between invocations in a small JSON
// file so a sequence of commands behaves like one continuously running
// node.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dragino-lora/devmac"
	"github.com/dragino-lora/devmac/band"
	"github.com/dragino-lora/devmac/crypto"
	"github.com/dragino-lora/devmac/mac"
)

const ticksPerSecond = 1000

var (
	statePath  string
	devEUIHex  string
	joinEUIHex string
	nwkKeyHex  string
	appKeyHex  string
	netIDHex   string
	regionName string
	verbose    bool

	log = logrus.New()

	rootCmd = &cobra.Command{
		Use:   "devmac-sim",
		Short: "Interactive simulator for the devmac class-A scheduler",
		Long:  "devmac-sim drives a mac.Scheduler against a loopback radio and network server, for manual exploration of join and uplink behavior.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}

	otaaCmd = &cobra.Command{
		Use:   "otaa",
		Short: "Run an over-the-air activation against the loopback join server",
		RunE:  runOTAA,
	}

	sendCmd = &cobra.Command{
		Use:   "send [data]",
		Short: "Send an uplink on the joined session",
		Args:  cobra.ExactArgs(1),
		RunE:  runSend,
	}

	tickCmd = &cobra.Command{
		Use:   "tick [n]",
		Short: "Advance the device's tick counter by n (default 1000, one second) and pump the scheduler",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTick,
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Print the persisted session",
		RunE:  runStatus,
	}

	sendPort    uint8
	sendConfirm bool
	maxTicks    uint32
)

func init() {
	home, _ := os.UserHomeDir()
	defaultState := "devmac-sim.json"
	if home != "" {
		defaultState = home + "/.devmac-sim.json"
	}

	rootCmd.PersistentFlags().StringVar(&statePath, "state", defaultState, "path to the persisted session file")
	rootCmd.PersistentFlags().StringVar(&devEUIHex, "deveui", "0102030405060708", "device EUI, 8 bytes hex")
	rootCmd.PersistentFlags().StringVar(&joinEUIHex, "joineui", "0807060504030201", "join EUI, 8 bytes hex")
	rootCmd.PersistentFlags().StringVar(&nwkKeyHex, "nwkkey", "2b7e151628aed2a6abf7158809cf4f3c", "network root key, 16 bytes hex")
	rootCmd.PersistentFlags().StringVar(&appKeyHex, "appkey", "2b7e151628aed2a6abf7158809cf4f3c", "application root key, 16 bytes hex")
	rootCmd.PersistentFlags().StringVar(&netIDHex, "netid", "000001", "network ID, 3 bytes hex")
	rootCmd.PersistentFlags().StringVar(&regionName, "region", string(band.EU863870), "region: EU_863_870, EU_433, US_902_928, AU_915_928")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	sendCmd.Flags().Uint8Var(&sendPort, "port", 1, "FPort")
	sendCmd.Flags().BoolVar(&sendConfirm, "confirm", false, "send a confirmed uplink")

	otaaCmd.Flags().Uint32Var(&maxTicks, "max-ticks", 120*ticksPerSecond, "safety bound on scheduler iterations pumped while waiting for a terminal event")
	sendCmd.Flags().Uint32Var(&maxTicks, "max-ticks", 120*ticksPerSecond, "safety bound on scheduler iterations pumped while waiting for a terminal event")

	rootCmd.AddCommand(otaaCmd, sendCmd, tickCmd, statusCmd)
}

func main() {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseKey(s string) (devmac.AES128Key, error) {
	var k devmac.AES128Key
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(k) {
		return k, errors.Errorf("expected %d hex bytes, got %q", len(k), s)
	}
	copy(k[:], b)
	return k, nil
}

func parseEUI(s string) (devmac.EUI64, error) {
	var e devmac.EUI64
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(e) {
		return e, errors.Errorf("expected %d hex bytes, got %q", len(e), s)
	}
	copy(e[:], b)
	return e, nil
}

func parseNetID(s string) (devmac.NetID, error) {
	var n devmac.NetID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(n) {
		return n, errors.Errorf("expected %d hex bytes, got %q", len(n), s)
	}
	copy(n[:], b)
	return n, nil
}

// buildScheduler wires a Scheduler against the persisted session and a
// fresh loopback radio/network-server pair for one command invocation.
func buildScheduler() (*mac.Scheduler, *simSystem, *simRadio, error) {
	devEUI, err := parseEUI(devEUIHex)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "deveui")
	}
	joinEUI, err := parseEUI(joinEUIHex)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "joineui")
	}
	nwkKey, err := parseKey(nwkKeyHex)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "nwkkey")
	}
	appKey, err := parseKey(appKeyHex)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "appkey")
	}
	netID, err := parseNetID(netIDHex)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "netid")
	}
	region, err := band.Get(band.Name(regionName))
	if err != nil {
		return nil, nil, nil, err
	}

	sys := newSimSystem(log, mac.Identity{DevEUI: devEUI, JoinEUI: joinEUI}, statePath)
	ns := newNetworkServer(log, nwkKey, appKey, netID, devmac.MACVersion1_0)
	radio := newSimRadio(log, ns)
	events := &cliEventSink{log: log}

	sched := mac.New(mac.Config{
		Region:   region,
		TPS:      ticksPerSecond,
		Version:  devmac.MACVersion1_0,
		NwkKey:   nwkKey,
		AppKey:   appKey,
		Radio:    radio,
		System:   sys,
		Security: crypto.Default{},
		Events:   events,
	})
	return sched, sys, radio, nil
}

// pump drains timers and radio events until the scheduler returns to
// Idle with no operation in flight, or until limit iterations have run.
func pump(m *mac.Scheduler, sys *simSystem, radio *simRadio, limit uint32) {
	for i := uint32(0); i < limit; i++ {
		m.Process()
		if radio.pump(m) {
			continue
		}
		if m.Runtime.Op == mac.OpNone {
			return
		}
		wait := m.TicksUntilNextEvent()
		if wait == 0 {
			wait = 1
		}
		sys.advance(wait)
	}
	log.Warn("pump: exhausted the tick budget before the scheduler returned to idle")
}

func runInitSequence(m *mac.Scheduler, sys *simSystem, radio *simRadio) {
	for m.Runtime.State != mac.StateIdle {
		m.Process()
		if radio.pump(m) {
			continue
		}
		wait := m.TicksUntilNextEvent()
		if wait == 0 {
			wait = 1
		}
		sys.advance(wait)
	}
}

func runOTAA(cmd *cobra.Command, args []string) error {
	m, sys, radio, err := buildScheduler()
	if err != nil {
		return err
	}
	runInitSequence(m, sys, radio)

	if m.Session.Joined {
		log.Info("otaa: session is already joined, forgetting it first")
		m.Forget()
	}
	if err := m.OTAA(); err != nil {
		return err
	}
	pump(m, sys, radio, maxTicksDefault())

	if !m.Session.Joined {
		return errors.New("otaa: did not complete, see log for the last errno")
	}
	log.WithFields(logrus.Fields{"devaddr": m.Session.DevAddr, "netid": m.Session.NetID}).Info("otaa: joined")
	return nil
}

func runSend(cmd *cobra.Command, args []string) error {
	m, sys, radio, err := buildScheduler()
	if err != nil {
		return err
	}
	runInitSequence(m, sys, radio)

	if !m.Session.Joined {
		return errors.New("send: not joined, run otaa first")
	}

	data := []byte(args[0])
	if sendConfirm {
		err = m.Confirmed(sendPort, data)
	} else {
		err = m.Unconfirmed(sendPort, data)
	}
	if err != nil {
		return err
	}
	pump(m, sys, radio, maxTicksDefault())
	return nil
}

func runTick(cmd *cobra.Command, args []string) error {
	n := uint32(ticksPerSecond)
	if len(args) == 1 {
		var parsed int
		if _, err := fmt.Sscanf(args[0], "%d", &parsed); err != nil || parsed < 0 {
			return errors.Errorf("tick: invalid tick count %q", args[0])
		}
		n = uint32(parsed)
	}

	m, sys, radio, err := buildScheduler()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		m.Process()
		radio.pump(m)
		sys.advance(1)
	}
	log.WithField("ticks", n).Info("tick: advanced")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	sys := newSimSystem(log, mac.Identity{}, statePath)
	sess, ok := sys.RestoreSession()
	if !ok {
		fmt.Println("no session persisted yet")
		return nil
	}
	fmt.Printf("joined=%v devaddr=%v netid=%v upcounter=%d downcounter=%d rate=%d\n",
		sess.Joined, sess.DevAddr, sess.NetID, sess.UpCounter, sess.NwkDownCounter, sess.Rate)
	return nil
}

func maxTicksDefault() uint32 {
	if maxTicks == 0 {
		return 120 * ticksPerSecond
	}
	return maxTicks
}

// cliEventSink logs every scheduler event at a level matching its
// severity, the same role a host application's event callback plays in
// firmware.
type cliEventSink struct {
	log *logrus.Logger
}

func (c *cliEventSink) Emit(e mac.Event) {
	fields := logrus.Fields{"kind": e.Kind}
	switch e.Kind {
	case mac.EventRx:
		fields["port"] = e.Port
		fields["counter"] = e.Counter
		fields["data"] = string(e.Data)
		c.log.WithFields(fields).Info("event: downlink application data")
	case mac.EventJoinComplete, mac.EventDataComplete, mac.EventSessionUpdated:
		c.log.WithFields(fields).Info("event")
	case mac.EventJoinTimeout, mac.EventDataTimeout, mac.EventDataNak, mac.EventChipError:
		c.log.WithFields(fields).Warn("event")
	default:
		c.log.WithFields(fields).Debug("event")
	}
}
