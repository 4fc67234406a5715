package devmac

import "errors"

// MACPayload is the MACPayload of a data up/down frame: an FHDR followed
// by an optional FPort and FRMPayload. FPort is nil when no payload
// follows the FHDR at all.
type MACPayload struct {
	FHDR       FHDR
	FPort      *uint8
	FRMPayload []byte
}

// MarshalBinary encodes the MACPayload. If FPort is set to 0, FOpts must
// be empty (port 0 carries MAC commands as FRMPayload instead).
func (p MACPayload) MarshalBinary() ([]byte, error) {
	if p.FPort != nil && *p.FPort == 0 && len(p.FHDR.FOpts) != 0 {
		return nil, errors.New("devmac: FPort 0 cannot be combined with FOpts")
	}

	b, err := p.FHDR.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if p.FPort != nil {
		b = append(b, *p.FPort)
		b = append(b, p.FRMPayload...)
	}
	return b, nil
}

// UnmarshalBinary decodes a MACPayload. data must already exclude MHDR
// and MIC.
func (p *MACPayload) UnmarshalBinary(data []byte) error {
	if len(data) < 7 {
		return errors.New("devmac: MACPayload shorter than a bare FHDR")
	}
	fOptsLen := int(data[4] & 0x0f)
	fhdrLen := 7 + fOptsLen
	if len(data) < fhdrLen {
		return errors.New("devmac: MACPayload truncated before end of FHDR")
	}
	if err := p.FHDR.UnmarshalBinary(data[:fhdrLen]); err != nil {
		return err
	}

	rest := data[fhdrLen:]
	if len(rest) == 0 {
		p.FPort = nil
		p.FRMPayload = nil
		return nil
	}

	port := rest[0]
	if port == 0 && fOptsLen != 0 {
		return errors.New("devmac: FPort 0 is malformed when FOptsLen is nonzero")
	}
	p.FPort = &port
	p.FRMPayload = append([]byte(nil), rest[1:]...)
	return nil
}
