package devmac

import (
	"fmt"

	"github.com/dragino-lora/devmac/bytestream"
)

// CID identifies a MAC command. The same tag is reused for a command's
// request (network→device) and answer (device→network) forms; direction
// is implicit in which payload type the caller chooses.
type CID byte

// MAC commands implemented by this stack (§4.3).
const (
	CIDLinkCheck       CID = 0x02
	CIDLinkADR         CID = 0x03
	CIDDutyCycle       CID = 0x04
	CIDRXParamSetup    CID = 0x05
	CIDDevStatus       CID = 0x06
	CIDNewChannel      CID = 0x07
	CIDRXTimingSetup   CID = 0x08
	CIDTXParamSetup    CID = 0x09
	CIDDLChannel       CID = 0x0A
	CIDPingSlotInfo    CID = 0x10
	CIDPingSlotChannel CID = 0x11
	CIDBeaconTiming    CID = 0x12
	CIDBeaconFreq      CID = 0x13
)

func (c CID) String() string {
	switch c {
	case CIDLinkCheck:
		return "LinkCheck"
	case CIDLinkADR:
		return "LinkADR"
	case CIDDutyCycle:
		return "DutyCycle"
	case CIDRXParamSetup:
		return "RXParamSetup"
	case CIDDevStatus:
		return "DevStatus"
	case CIDNewChannel:
		return "NewChannel"
	case CIDRXTimingSetup:
		return "RXTimingSetup"
	case CIDTXParamSetup:
		return "TXParamSetup"
	case CIDDLChannel:
		return "DLChannel"
	case CIDPingSlotInfo:
		return "PingSlotInfo"
	case CIDPingSlotChannel:
		return "PingSlotChannel"
	case CIDBeaconTiming:
		return "BeaconTiming"
	case CIDBeaconFreq:
		return "BeaconFreq"
	default:
		return fmt.Sprintf("CID(0x%02x)", byte(c))
	}
}

// MACCommandPayload is implemented by every typed MAC command payload.
type MACCommandPayload interface {
	MarshalBinary() ([]byte, error)
	UnmarshalBinary([]byte) error
}

type macCmdInfo struct {
	size int // payload size in bytes, 0 for commands with no payload
	new  func() MACCommandPayload
}

// macCommandRegistry maps [uplink][CID] to how to construct and size
// that command's payload. A command with a zero-length payload is listed
// with a nil constructor, for which GetMACPayloadAndSize returns
// (nil, 0, nil); a CID missing from a direction's map is reported as an
// unknown-CID error.
var macCommandRegistry = map[bool]map[CID]macCmdInfo{
	// downlink: network → device (Req payloads device must parse)
	false: {
		CIDLinkADR:         {4, func() MACCommandPayload { return &LinkADRReqPayload{} }},
		CIDDutyCycle:       {1, func() MACCommandPayload { return &DutyCycleReqPayload{} }},
		CIDRXParamSetup:    {4, func() MACCommandPayload { return &RXParamSetupReqPayload{} }},
		CIDNewChannel:      {5, func() MACCommandPayload { return &NewChannelReqPayload{} }},
		CIDRXTimingSetup:   {1, func() MACCommandPayload { return &RXTimingSetupReqPayload{} }},
		CIDTXParamSetup:    {1, func() MACCommandPayload { return &TXParamSetupReqPayload{} }},
		CIDDLChannel:       {4, func() MACCommandPayload { return &DLChannelReqPayload{} }},
		CIDPingSlotChannel: {4, func() MACCommandPayload { return &PingSlotChannelReqPayload{} }},
		CIDBeaconTiming:    {3, func() MACCommandPayload { return &BeaconTimingAnsPayload{} }},
		CIDBeaconFreq:      {3, func() MACCommandPayload { return &BeaconFreqReqPayload{} }},
	},
	// uplink: device → network (Ans payloads the device emits)
	true: {
		CIDLinkCheck:       {0, nil}, // LinkCheckReq carries no payload
		CIDLinkADR:         {1, func() MACCommandPayload { return &LinkADRAnsPayload{} }},
		CIDRXParamSetup:    {1, func() MACCommandPayload { return &RXParamSetupAnsPayload{} }},
		CIDDevStatus:       {2, func() MACCommandPayload { return &DevStatusAnsPayload{} }},
		CIDNewChannel:      {1, func() MACCommandPayload { return &NewChannelAnsPayload{} }},
		CIDDLChannel:       {1, func() MACCommandPayload { return &DLChannelAnsPayload{} }},
		CIDPingSlotInfo:    {1, func() MACCommandPayload { return &PingSlotInfoReqPayload{} }},
		CIDPingSlotChannel: {1, func() MACCommandPayload { return &PingSlotChannelAnsPayload{} }},
		CIDBeaconFreq:      {1, func() MACCommandPayload { return &BeaconFreqAnsPayload{} }},
	},
}

// GetMACPayloadAndSize returns a fresh payload value and its wire size
// for the given CID and direction. A size of 0 with a nil payload means
// the command carries no payload at all.
func GetMACPayloadAndSize(uplink bool, c CID) (MACCommandPayload, int, error) {
	dir, ok := macCommandRegistry[uplink]
	if !ok {
		return nil, 0, fmt.Errorf("devmac: unknown direction uplink=%v", uplink)
	}
	info, ok := dir[c]
	if !ok {
		return nil, 0, fmt.Errorf("devmac: unknown CID %s for uplink=%v", c, uplink)
	}
	if info.new == nil {
		return nil, 0, nil
	}
	return info.new(), info.size, nil
}

// MACCommand is a single parsed (or about to be encoded) MAC command:
// its CID tag plus an optional typed payload.
type MACCommand struct {
	CID     CID
	Payload MACCommandPayload
}

// MarshalBinary encodes the command as CID ‖ payload.
func (m MACCommand) MarshalBinary() ([]byte, error) {
	b := []byte{byte(m.CID)}
	if m.Payload == nil {
		return b, nil
	}
	p, err := m.Payload.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return append(b, p...), nil
}

// ParseNextMACCommand reads one MAC command from s, in the given
// direction, advancing the cursor past it. It returns io-style errors
// through s.Err() on overrun; the returned error reports CID lookup
// failures.
func ParseNextMACCommand(uplink bool, s *bytestream.Stream) (MACCommand, error) {
	cid := CID(s.ReadByte())
	if err := s.Err(); err != nil {
		return MACCommand{}, err
	}

	payload, size, err := GetMACPayloadAndSize(uplink, cid)
	if err != nil {
		return MACCommand{}, err
	}
	if size == 0 {
		return MACCommand{CID: cid}, nil
	}

	raw := s.ReadBytes(size)
	if err := s.Err(); err != nil {
		return MACCommand{}, err
	}
	if err := payload.UnmarshalBinary(raw); err != nil {
		return MACCommand{}, err
	}
	return MACCommand{CID: cid, Payload: payload}, nil
}

// ParseMACCommands decodes every command in buf for the given direction,
// stopping cleanly when the buffer is exhausted. It returns whatever
// commands parsed successfully before a malformed command was hit,
// together with the error that stopped it (nil if the buffer was
// exhausted cleanly).
func ParseMACCommands(uplink bool, buf []byte) ([]MACCommand, error) {
	var s bytestream.Stream
	if err := bytestream.NewReader(&s, buf); err != nil {
		return nil, err
	}

	var out []MACCommand
	for s.Remaining() > 0 {
		cmd, err := ParseNextMACCommand(uplink, &s)
		if err != nil {
			return out, err
		}
		out = append(out, cmd)
	}
	return out, nil
}

// ChMask is a 16-channel bitmask as used by LinkADRReq and similar
// commands; bit i (LSB first) enables channel i.
type ChMask [16]bool

// MarshalBinary encodes the mask little-endian over two bytes.
func (m ChMask) MarshalBinary() ([]byte, error) {
	b := make([]byte, 2)
	for i, set := range m {
		if set {
			b[i/8] |= 1 << uint(i%8)
		}
	}
	return b, nil
}

// UnmarshalBinary decodes a two-byte channel mask.
func (m *ChMask) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return errLen("ChMask", 2)
	}
	for i := range m {
		m[i] = data[i/8]&(1<<uint(i%8)) != 0
	}
	return nil
}

// Redundancy packs LinkADRReq's channel-mask-control and requested
// transmission count.
type Redundancy struct {
	ChMaskCntl uint8 // 0..7
	NbTrans    uint8 // 0..15
}

// MarshalBinary encodes Redundancy into its single wire byte.
func (r Redundancy) MarshalBinary() ([]byte, error) {
	if r.ChMaskCntl > 7 {
		return nil, fmt.Errorf("devmac: ChMaskCntl must be <= 7, got %d", r.ChMaskCntl)
	}
	if r.NbTrans > 15 {
		return nil, fmt.Errorf("devmac: NbTrans must be <= 15, got %d", r.NbTrans)
	}
	return []byte{r.NbTrans | r.ChMaskCntl<<4}, nil
}

// UnmarshalBinary decodes Redundancy.
func (r *Redundancy) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("Redundancy", 1)
	}
	r.NbTrans = data[0] & 0x0f
	r.ChMaskCntl = (data[0] >> 4) & 0x07
	return nil
}

// LinkADRReqPayload is LinkADRReq's payload.
type LinkADRReqPayload struct {
	DataRate   uint8
	TXPower    uint8
	ChMask     ChMask
	Redundancy Redundancy
}

// MarshalBinary encodes the payload.
func (p LinkADRReqPayload) MarshalBinary() ([]byte, error) {
	if p.DataRate > 15 || p.TXPower > 15 {
		return nil, fmt.Errorf("devmac: DataRate and TXPower must be <= 15")
	}
	cm, err := p.ChMask.MarshalBinary()
	if err != nil {
		return nil, err
	}
	r, err := p.Redundancy.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b := []byte{p.TXPower | p.DataRate<<4}
	b = append(b, cm...)
	return append(b, r...), nil
}

// UnmarshalBinary decodes the payload.
func (p *LinkADRReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errLen("LinkADRReqPayload", 4)
	}
	p.TXPower = data[0] & 0x0f
	p.DataRate = (data[0] >> 4) & 0x0f
	if err := p.ChMask.UnmarshalBinary(data[1:3]); err != nil {
		return err
	}
	return p.Redundancy.UnmarshalBinary(data[3:4])
}

// LinkADRAnsPayload is LinkADRAns's payload.
type LinkADRAnsPayload struct {
	ChannelMaskACK bool
	DataRateACK    bool
	PowerACK       bool
}

// MarshalBinary encodes the payload.
func (p LinkADRAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelMaskACK {
		b |= 1 << 0
	}
	if p.DataRateACK {
		b |= 1 << 1
	}
	if p.PowerACK {
		b |= 1 << 2
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the payload.
func (p *LinkADRAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("LinkADRAnsPayload", 1)
	}
	p.ChannelMaskACK = data[0]&(1<<0) != 0
	p.DataRateACK = data[0]&(1<<1) != 0
	p.PowerACK = data[0]&(1<<2) != 0
	return nil
}

// DutyCycleReqPayload is DutyCycleReq's payload: the maximum aggregated
// duty-cycle exponent (duty = 1/2^MaxDCycle; 0 means no limit, 255
// means the band is off).
type DutyCycleReqPayload struct {
	MaxDCycle uint8
}

func (p DutyCycleReqPayload) MarshalBinary() ([]byte, error) { return []byte{p.MaxDCycle}, nil }

func (p *DutyCycleReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("DutyCycleReqPayload", 1)
	}
	p.MaxDCycle = data[0]
	return nil
}

// RXParamSetupReqPayload is RXParamSetup's Req payload.
type RXParamSetupReqPayload struct {
	DLSettings DLSettings
	Frequency  uint32 // 24-bit, in units of 100 Hz
}

// MarshalBinary encodes the payload.
func (p RXParamSetupReqPayload) MarshalBinary() ([]byte, error) {
	dl, err := p.DLSettings.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b := dl
	b = append(b, byte(p.Frequency), byte(p.Frequency>>8), byte(p.Frequency>>16))
	return b, nil
}

// UnmarshalBinary decodes the payload.
func (p *RXParamSetupReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errLen("RXParamSetupReqPayload", 4)
	}
	if err := p.DLSettings.UnmarshalBinary(data[0:1]); err != nil {
		return err
	}
	p.Frequency = uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16
	return nil
}

// RXParamSetupAnsPayload is RXParamSetup's Ans payload.
type RXParamSetupAnsPayload struct {
	ChannelACK     bool
	RX2DataRateACK bool
	RX1DROffsetACK bool
}

// MarshalBinary encodes the payload.
func (p RXParamSetupAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelACK {
		b |= 1 << 0
	}
	if p.RX2DataRateACK {
		b |= 1 << 1
	}
	if p.RX1DROffsetACK {
		b |= 1 << 2
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the payload.
func (p *RXParamSetupAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("RXParamSetupAnsPayload", 1)
	}
	p.ChannelACK = data[0]&(1<<0) != 0
	p.RX2DataRateACK = data[0]&(1<<1) != 0
	p.RX1DROffsetACK = data[0]&(1<<2) != 0
	return nil
}

// DevStatusAnsPayload is DevStatusAns's payload.
type DevStatusAnsPayload struct {
	Battery uint8
	Margin  int8 // -32..31, 6-bit two's complement on the wire
}

// MarshalBinary encodes the payload.
func (p DevStatusAnsPayload) MarshalBinary() ([]byte, error) {
	if p.Margin < -32 || p.Margin > 31 {
		return nil, fmt.Errorf("devmac: DevStatus Margin out of range: %d", p.Margin)
	}
	return []byte{p.Battery, byte(p.Margin) & 0x3f}, nil
}

// UnmarshalBinary decodes the payload.
func (p *DevStatusAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 2 {
		return errLen("DevStatusAnsPayload", 2)
	}
	p.Battery = data[0]
	v := data[1] & 0x3f
	if v&0x20 != 0 {
		v |= 0xc0 // sign-extend 6-bit to 8-bit
	}
	p.Margin = int8(v)
	return nil
}

// NewChannelReqPayload is NewChannelReq's payload.
type NewChannelReqPayload struct {
	ChIndex   uint8
	Freq      uint32 // 24-bit, units of 100 Hz
	MinDR     uint8
	MaxDR     uint8
}

// MarshalBinary encodes the payload.
func (p NewChannelReqPayload) MarshalBinary() ([]byte, error) {
	if p.MinDR > 15 || p.MaxDR > 15 {
		return nil, fmt.Errorf("devmac: MinDR/MaxDR must be <= 15")
	}
	b := []byte{p.ChIndex, byte(p.Freq), byte(p.Freq >> 8), byte(p.Freq >> 16)}
	return append(b, p.MinDR|p.MaxDR<<4), nil
}

// UnmarshalBinary decodes the payload.
func (p *NewChannelReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 5 {
		return errLen("NewChannelReqPayload", 5)
	}
	p.ChIndex = data[0]
	p.Freq = uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16
	p.MinDR = data[4] & 0x0f
	p.MaxDR = (data[4] >> 4) & 0x0f
	return nil
}

// NewChannelAnsPayload is NewChannelAns's payload.
type NewChannelAnsPayload struct {
	ChannelFreqOK   bool
	DataRateRangeOK bool
}

// MarshalBinary encodes the payload.
func (p NewChannelAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelFreqOK {
		b |= 1 << 0
	}
	if p.DataRateRangeOK {
		b |= 1 << 1
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the payload.
func (p *NewChannelAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("NewChannelAnsPayload", 1)
	}
	p.ChannelFreqOK = data[0]&(1<<0) != 0
	p.DataRateRangeOK = data[0]&(1<<1) != 0
	return nil
}

// RXTimingSetupReqPayload is RXTimingSetupReq's payload.
type RXTimingSetupReqPayload struct {
	Delay uint8 // 0..15 seconds; 0 means 1 second
}

func (p RXTimingSetupReqPayload) MarshalBinary() ([]byte, error) { return []byte{p.Delay & 0x0f}, nil }

func (p *RXTimingSetupReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("RXTimingSetupReqPayload", 1)
	}
	p.Delay = data[0] & 0x0f
	return nil
}

// TXParamSetupReqPayload is TXParamSetupReq's payload.
type TXParamSetupReqPayload struct {
	DownlinkDwellTime bool
	UplinkDwellTime   bool
	MaxEIRP           uint8 // 4-bit index into a region-defined table
}

// MarshalBinary encodes the payload.
func (p TXParamSetupReqPayload) MarshalBinary() ([]byte, error) {
	b := p.MaxEIRP & 0x0f
	if p.UplinkDwellTime {
		b |= 1 << 4
	}
	if p.DownlinkDwellTime {
		b |= 1 << 5
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the payload.
func (p *TXParamSetupReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("TXParamSetupReqPayload", 1)
	}
	p.MaxEIRP = data[0] & 0x0f
	p.UplinkDwellTime = data[0]&(1<<4) != 0
	p.DownlinkDwellTime = data[0]&(1<<5) != 0
	return nil
}

// DLChannelReqPayload is DLChannelReq's payload.
type DLChannelReqPayload struct {
	ChIndex uint8
	Freq    uint32 // 24-bit, units of 100 Hz
}

// MarshalBinary encodes the payload.
func (p DLChannelReqPayload) MarshalBinary() ([]byte, error) {
	return []byte{p.ChIndex, byte(p.Freq), byte(p.Freq >> 8), byte(p.Freq >> 16)}, nil
}

// UnmarshalBinary decodes the payload.
func (p *DLChannelReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errLen("DLChannelReqPayload", 4)
	}
	p.ChIndex = data[0]
	p.Freq = uint32(data[1]) | uint32(data[2])<<8 | uint32(data[3])<<16
	return nil
}

// DLChannelAnsPayload is DLChannelAns's payload.
type DLChannelAnsPayload struct {
	ChannelFreqOK bool
	UplinkFreqOK  bool
}

// MarshalBinary encodes the payload.
func (p DLChannelAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelFreqOK {
		b |= 1 << 0
	}
	if p.UplinkFreqOK {
		b |= 1 << 1
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the payload.
func (p *DLChannelAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("DLChannelAnsPayload", 1)
	}
	p.ChannelFreqOK = data[0]&(1<<0) != 0
	p.UplinkFreqOK = data[0]&(1<<1) != 0
	return nil
}

// PingSlotInfoReqPayload is PingSlotInfoReq's uplink payload.
type PingSlotInfoReqPayload struct {
	Periodicity uint8 // 0..7
}

func (p PingSlotInfoReqPayload) MarshalBinary() ([]byte, error) { return []byte{p.Periodicity & 0x07}, nil }

func (p *PingSlotInfoReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("PingSlotInfoReqPayload", 1)
	}
	p.Periodicity = data[0] & 0x07
	return nil
}

// PingSlotChannelReqPayload is PingSlotChannelReq's downlink payload.
type PingSlotChannelReqPayload struct {
	Freq uint32 // 24-bit, units of 100 Hz
	DR   uint8  // 4-bit
}

// MarshalBinary encodes the payload.
func (p PingSlotChannelReqPayload) MarshalBinary() ([]byte, error) {
	return []byte{byte(p.Freq), byte(p.Freq >> 8), byte(p.Freq >> 16), p.DR & 0x0f}, nil
}

// UnmarshalBinary decodes the payload.
func (p *PingSlotChannelReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 4 {
		return errLen("PingSlotChannelReqPayload", 4)
	}
	p.Freq = uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	p.DR = data[3] & 0x0f
	return nil
}

// PingSlotChannelAnsPayload is PingSlotChannelAns's uplink payload.
type PingSlotChannelAnsPayload struct {
	ChannelFreqOK bool
	DataRateOK    bool
}

// MarshalBinary encodes the payload.
func (p PingSlotChannelAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.ChannelFreqOK {
		b |= 1 << 0
	}
	if p.DataRateOK {
		b |= 1 << 1
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the payload.
func (p *PingSlotChannelAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("PingSlotChannelAnsPayload", 1)
	}
	p.ChannelFreqOK = data[0]&(1<<0) != 0
	p.DataRateOK = data[0]&(1<<1) != 0
	return nil
}

// BeaconTimingAnsPayload is the legacy (1.0) BeaconTimingAns downlink
// payload: time remaining to the next beacon in 30ms units, plus the
// channel it will be broadcast on.
type BeaconTimingAnsPayload struct {
	TimeToBeacon  uint16
	ChannelIndex  uint8
}

// MarshalBinary encodes the payload.
func (p BeaconTimingAnsPayload) MarshalBinary() ([]byte, error) {
	return []byte{byte(p.TimeToBeacon), byte(p.TimeToBeacon >> 8), p.ChannelIndex}, nil
}

// UnmarshalBinary decodes the payload.
func (p *BeaconTimingAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 3 {
		return errLen("BeaconTimingAnsPayload", 3)
	}
	p.TimeToBeacon = uint16(data[0]) | uint16(data[1])<<8
	p.ChannelIndex = data[2]
	return nil
}

// BeaconFreqReqPayload is BeaconFreqReq's downlink payload.
type BeaconFreqReqPayload struct {
	Freq uint32 // 24-bit, units of 100 Hz
}

// MarshalBinary encodes the payload.
func (p BeaconFreqReqPayload) MarshalBinary() ([]byte, error) {
	return []byte{byte(p.Freq), byte(p.Freq >> 8), byte(p.Freq >> 16)}, nil
}

// UnmarshalBinary decodes the payload.
func (p *BeaconFreqReqPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 3 {
		return errLen("BeaconFreqReqPayload", 3)
	}
	p.Freq = uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
	return nil
}

// BeaconFreqAnsPayload is BeaconFreqAns's uplink payload.
type BeaconFreqAnsPayload struct {
	FreqOK bool
}

// MarshalBinary encodes the payload.
func (p BeaconFreqAnsPayload) MarshalBinary() ([]byte, error) {
	var b byte
	if p.FreqOK {
		b = 1
	}
	return []byte{b}, nil
}

// UnmarshalBinary decodes the payload.
func (p *BeaconFreqAnsPayload) UnmarshalBinary(data []byte) error {
	if len(data) != 1 {
		return errLen("BeaconFreqAnsPayload", 1)
	}
	p.FreqOK = data[0] != 0
	return nil
}
