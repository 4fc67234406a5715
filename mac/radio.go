package mac

// TxSettings describes a transmission the Radio capability must carry
// out.
type TxSettings struct {
	FreqHz int
	BWHz   int
	SF     int
	DBm    int
}

// RxSettings describes a receive window the Radio capability must open.
type RxSettings struct {
	FreqHz        int
	BWHz          int
	SF            int
	SymbolTimeout int
	MaxLen        int
}

// RxMeta is populated by Collect on a successful receive.
type RxMeta struct {
	RSSI   int
	SNR    float32
	FreqHz int
	BWHz   int
	SF     int
}

// Radio is the transceiver capability the scheduler drives. It owns no
// MAC state of its own; every call is synchronous from the foreground
// except the event callback, which fires from ISR context.
type Radio interface {
	Reset(hold bool)
	Sleep()
	ClearInterrupt()

	EntropyBegin()
	EntropyEnd() uint32

	Transmit(settings TxSettings, payload []byte) error
	Receive(settings RxSettings) error
	Collect(meta *RxMeta, buf []byte) (int, error)

	MinSNR(sf int) float32
}
