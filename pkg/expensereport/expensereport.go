package expensereport

import (
	"time"

	"github.com/reisegeld/reisegeld/pkg/exchangerate"
)

type State string

const (
	StateRejected         State = "rejected"
	StateInProgress       State = "inProgress"
	StateUnderExamination State = "underExamination"
	StateRefunded         State = "refunded"
)

// Cost is a claimed amount in some currency, optionally backed by receipts
// and a resolved conversion into the base currency.
type Cost struct {
	Amount       float64
	Currency     string
	Date         time.Time
	Receipts     []int
	ExchangeRate *exchangerate.Conversion
}

type Expense struct {
	ID          int
	Description string
	Cost        Cost
}

type ExpenseReport struct {
	ID       int
	UID      string
	OwnerID  int
	EditorID int
	Name     string
	Comment  string
	State    State
	Expenses []Expense
	Historic bool
	History  []int
}
