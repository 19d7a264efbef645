package formula

// ConsecutiveWinsLosses tracks the longest streaks of winning and losing
// trades by the sign of each P&L ratio. A zero return breaks neither streak.
type ConsecutiveWinsLosses struct {
	currentWins   int
	currentLosses int
	mostWins      int
	mostLosses    int
}

func NewConsecutiveWinsLosses() *ConsecutiveWinsLosses {
	return &ConsecutiveWinsLosses{
		currentWins:   0,
		currentLosses: 0,
		mostWins:      0,
		mostLosses:    0,
	}
}

func (c *ConsecutiveWinsLosses) Allocate(plRatio float64) {
	switch {
	case plRatio > 0:
		c.currentWins++
		c.currentLosses = 0

		if c.currentWins > c.mostWins {
			c.mostWins = c.currentWins
		}
	case plRatio < 0:
		c.currentLosses++
		c.currentWins = 0

		if c.currentLosses > c.mostLosses {
			c.mostLosses = c.currentLosses
		}
	}
}

func (c *ConsecutiveWinsLosses) MostWins() int {
	return c.mostWins
}

func (c *ConsecutiveWinsLosses) MostLosses() int {
	return c.mostLosses
}
