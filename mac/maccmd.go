package mac

import "github.com/dragino-lora/devmac"

// linkADRBatch accumulates the channel-mask, rate, power and nb_trans
// state as a run of consecutive LinkADR commands is applied to a shadow
// session, so that a single LinkADRAns can reflect the cumulative
// evaluation of the whole run rather than one per command.
type linkADRBatch struct {
	active  bool
	ok      bool
	rate    uint8
	power   uint8
	nbTrans uint8
	mask    [72]bool
}

func newShadow(s *Session) *Session {
	cp := *s
	cp.Channels = append([]ChannelSlot(nil), s.Channels...)
	return &cp
}

// applyLinkADR folds one LinkADRReqPayload into the in-progress batch,
// evaluating the channel-mask control code against the region's channel
// count. Malformed combinations mark the batch failed; the batch is
// only committed to the shadow session once the run ends.
func (b *linkADRBatch) applyLinkADR(p *devmac.LinkADRReqPayload, numChannels int, availableRate func(uint8) bool) {
	if !b.active {
		b.active = true
		b.ok = true
	}

	switch p.Redundancy.ChMaskCntl {
	case 6:
		for i := 0; i < numChannels; i++ {
			b.mask[i] = true
		}
	case 7:
		for i := 0; i < numChannels; i++ {
			b.mask[i] = false
		}
	default:
		base := int(p.Redundancy.ChMaskCntl) * 16
		for i, enabled := range p.ChMask {
			idx := base + i
			if idx >= numChannels {
				if enabled {
					b.ok = false
				}
				continue
			}
			b.mask[idx] = enabled
		}
	}

	if !availableRate(p.DataRate) {
		b.ok = false
	} else {
		b.rate = p.DataRate
	}

	b.power = p.TXPower
	if p.Redundancy.NbTrans > 0 {
		b.nbTrans = p.Redundancy.NbTrans
	} else {
		b.nbTrans = 1
	}

	anyEnabled := false
	for i := 0; i < numChannels; i++ {
		if b.mask[i] {
			anyEnabled = true
			break
		}
	}
	if !anyEnabled {
		b.ok = false
	}
}

// commit applies the batch to the shadow session if it succeeded, or
// leaves the shadow untouched (rollback) if it failed.
func (b *linkADRBatch) commit(shadow *Session) devmac.LinkADRAnsPayload {
	ans := devmac.LinkADRAnsPayload{
		ChannelMaskACK: b.ok,
		DataRateACK:    b.ok,
		PowerACK:       b.ok,
	}
	if !b.ok {
		return ans
	}

	shadow.Rate = b.rate
	shadow.TXPower = b.power
	shadow.NbTrans = b.nbTrans
	for i := 0; i < 72; i++ {
		shadow.SetChannelMask(i, !b.mask[i])
	}
	return ans
}
