package exchangerate

import "time"

// Rate is one currency's conversion value for one calendar month, expressed as
// units of that currency per one unit of the base currency.
type Rate struct {
	Currency string
	Month    int
	Year     int
	Value    float64
}

// Conversion is the transient result of converting an amount into the base currency.
type Conversion struct {
	Date   time.Time
	Rate   float64
	Amount float64
}
