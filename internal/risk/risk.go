package risk

// Limits encodes the hard guard-rails for order submission.
type Limits struct {
	MaxOrderSize int
	MaxPosition  int
}

// ClampQty caps a requested order size at the per-order ceiling.
func (l Limits) ClampQty(qty int) int {
	if l.MaxOrderSize > 0 && qty > l.MaxOrderSize {
		return l.MaxOrderSize
	}
	return qty
}

// SizeWithin returns how much of the per-order size fits under the position
// cap given the current net exposure. Never negative.
func (l Limits) SizeWithin(net int) int {
	if net < 0 {
		net = -net
	}
	room := l.MaxPosition - net
	if room <= 0 {
		return 0
	}
	if l.MaxOrderSize > 0 && room > l.MaxOrderSize {
		return l.MaxOrderSize
	}
	return room
}
