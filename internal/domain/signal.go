package domain

type SignalAction string

const (
	SignalAction_Buy  SignalAction = "BUY"
	SignalAction_Sell SignalAction = "SELL"
	SignalAction_Hold SignalAction = "HOLD"
)

// Signal is the per symbol decision for one run. Action is derived from
// the scores, see NewSignal
type Signal struct {
	Symbol    string       `json:"symbol"`
	Action    SignalAction `json:"action"`
	BuyScore  int          `json:"buyScore"`
	SellScore int          `json:"sellScore"`
	Reasons   []string     `json:"reasons,omitempty"`
	Error     *string      `json:"error,omitempty"`
}

func NewSignal(symbol string, buyScore, sellScore int, reasons []string) Signal {
	action := SignalAction_Hold
	if buyScore > sellScore {
		action = SignalAction_Buy
	} else if sellScore > buyScore {
		action = SignalAction_Sell
	}
	return Signal{
		Symbol:    symbol,
		Action:    action,
		BuyScore:  buyScore,
		SellScore: sellScore,
		Reasons:   reasons,
	}
}

// NewHoldSignal is used when no data could be loaded for the symbol
func NewHoldSignal(symbol string, err error) Signal {
	s := NewSignal(symbol, 0, 0, nil)
	if err != nil {
		msg := err.Error()
		s.Error = &msg
	}
	return s
}

func (s Signal) Actionable() bool {
	return s.Action == SignalAction_Buy || s.Action == SignalAction_Sell
}
