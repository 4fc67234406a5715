package mac

import (
	"github.com/dragino-lora/devmac"
	"github.com/dragino-lora/devmac/band"
	"github.com/dragino-lora/devmac/duty"
)

// State is a node of the scheduler's top-level state machine.
type State int

// Scheduler states.
const (
	StateInit State = iota
	StateInitReset
	StateInitLockout
	StateRecoveryReset
	StateRecoveryLockout
	StateEntropy
	StateIdle
	StateWaitTx
	StateTx
	StateWaitRx1
	StateRx1
	StateWaitRx2
	StateRx2
	StateRx2Lockout
	StateWaitRetry
)

// Op names the public operation currently in flight, if any.
type Op int

// Supported operations.
const (
	OpNone Op = iota
	OpJoining
	OpRejoining
	OpDataUnconfirmed
	OpDataConfirmed
	OpReset
)

// Errno is the last error the scheduler recorded against the
// in-flight operation.
type Errno int

// Supported error codes.
const (
	ErrNone Errno = iota
	ErrNoChannel
	ErrSize
	ErrRate
	ErrPort
	ErrBusy
	ErrNotJoined
	ErrPower
	ErrInternal
	ErrOverflow // queued MAC-command answers no longer fit FOpts; user data was dropped
)

// txDescriptor describes the frame currently being transmitted or about
// to be.
type txDescriptor struct {
	ChIndex  int
	FreqHz   int
	Rate     uint8
	Power    uint8
	Port     uint8
	Buf      []byte
	Confirm  bool
	Trials   uint8
	IsJoin   bool
	DevNonce uint16
}

// pendingAnswers tracks MAC-command answers queued for the next uplink
// that are not themselves carried on the FOpts round trip of the
// command that requested them.
type pendingAnswers struct {
	LinkCheckReq     bool
	LinkADRAns       *devmac.LinkADRAnsPayload
	RXParamSetupAns  *devmac.RXParamSetupAnsPayload
	DLChannelAns     *devmac.DLChannelAnsPayload
	RXTimingSetupAns bool
}

// Runtime is the scheduler's volatile state: zeroed at init, never
// persisted. Everything the radio ISR can touch is confined to Timers
// and Input; all of it is read/written only inside System.CriticalSection.
type Runtime struct {
	State State
	Op    Op
	Errno Errno

	TX txDescriptor

	Pending pendingAnswers

	ADRAckCounter uint32
	ADRAckReq     bool
	AckPending    bool // set when the last accepted downlink was confirmed-down

	Duty *duty.Accountant
	TPS  uint32 // ticks per second, fixed at construction

	LastValidDownlinkTick uint32
	HasValidDownlink      bool
	ServiceStartTick      uint32
	JoinStartTick         uint32
	TxTick                uint32
	RetryMs               uint32

	TimerA Timer
	TimerB Timer
	Input  InputSlot

	Region band.Region

	joinDevNonce devmac.DevNonce
}
