package indicator

// crossedAbove reports whether series a crossed above series b at the most
// recent point: prevA <= prevB and curA > curB. Both series need valid
// values at the last two positions; otherwise no crossover is reported.
func crossedAbove(a, b []float64) bool {
	curA, prevA := last(a), secondLast(a)
	curB, prevB := last(b), secondLast(b)
	if curA == nil || prevA == nil || curB == nil || prevB == nil {
		return false
	}
	return *prevA <= *prevB && *curA > *curB
}

// crossedBelow is the bearish mirror: prevA >= prevB and curA < curB.
func crossedBelow(a, b []float64) bool {
	curA, prevA := last(a), secondLast(a)
	curB, prevB := last(b), secondLast(b)
	if curA == nil || prevA == nil || curB == nil || prevB == nil {
		return false
	}
	return *prevA >= *prevB && *curA < *curB
}
