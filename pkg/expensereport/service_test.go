package expensereport

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/reisegeld/reisegeld/pkg/exchangerate"
	"github.com/reisegeld/reisegeld/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	claimant = user.User{Id: 1, Uid: "claimant-uid", Name: "Claimant"}
	examiner = user.User{Id: 2, Uid: "examiner-uid", Name: "Examiner", Access: user.Access{Examine: true}}
)

func asUser(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

// stubConverter resolves currencies from a fixed rate table and reports no
// conversion for anything else.
type stubConverter struct {
	rates map[string]float64
}

func (s stubConverter) Convert(_ context.Context, date time.Time, amount float64, from, _ string) (*exchangerate.Conversion, error) {
	rate, ok := s.rates[strings.ToUpper(from)]
	if !ok {
		return nil, nil
	}
	return &exchangerate.Conversion{Date: date, Rate: rate, Amount: math.Round(amount/rate*100) / 100}, nil
}

func newTestService(rates map[string]float64) (*ServiceImpl, *StubRepo) {
	repo := NewStubRepo()
	return NewService(repo, stubConverter{rates: rates}), repo
}

func createReport(t *testing.T, service *ServiceImpl, expenses []Expense) ExpenseReport {
	t.Helper()
	created, err := service.Create(asUser(claimant), ExpenseReport{Name: "Conference receipts"})
	require.NoError(t, err)

	created.Expenses = expenses
	updated, err := service.Update(asUser(claimant), created)
	require.NoError(t, err)
	return updated
}

func TestCreate_StartsInProgress(t *testing.T) {
	service, _ := newTestService(nil)

	created, err := service.Create(asUser(claimant), ExpenseReport{
		Name:  "Conference receipts",
		State: StateRefunded,
	})

	require.NoError(t, err)
	assert.Equal(t, StateInProgress, created.State)
	assert.Equal(t, claimant.Id, created.OwnerID)
	assert.NotEmpty(t, created.UID)
}

func TestUpdate_OnlyOwnerMayEdit(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)

	report.Name = "Renamed"
	_, err := service.Update(asUser(examiner), report)

	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestUpdate_RejectsMissingCostDate(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)

	report.Expenses = []Expense{
		{Description: "Taxi", Cost: Cost{Amount: 25, Currency: "NOK"}},
	}
	_, err := service.Update(asUser(claimant), report)

	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdate_RejectsFutureCostDate(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)

	report.Expenses = []Expense{
		{Description: "Hotel", Cost: Cost{Amount: 100, Currency: "NOK", Date: time.Now().AddDate(0, 0, 7)}},
	}
	_, err := service.Update(asUser(claimant), report)

	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUpdate_RejectedWhenUnderExamination(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)
	_, err := service.SubmitForExamination(asUser(claimant), report.ID)
	require.NoError(t, err)

	report.Name = "Renamed"
	_, err = service.Update(asUser(claimant), report)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSubmitForExamination_RejectsMissingCostDate(t *testing.T) {
	service, repo := newTestService(nil)
	report := createReport(t, service, nil)

	// an undated expense that slipped into storage must still block submission
	report.Expenses = []Expense{
		{Description: "Taxi", Cost: Cost{Amount: 25, Currency: "NOK"}},
	}
	require.NoError(t, repo.Update(context.Background(), report))

	_, err := service.SubmitForExamination(asUser(claimant), report.ID)

	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestSubmitForExamination_ConvertsForeignCosts(t *testing.T) {
	service, _ := newTestService(map[string]float64{"NOK": 11.37})
	date := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)
	report := createReport(t, service, []Expense{
		{Description: "Hotel Oslo", Cost: Cost{Amount: 100, Currency: "NOK", Date: date}},
	})

	submitted, err := service.SubmitForExamination(asUser(claimant), report.ID)

	require.NoError(t, err)
	assert.Equal(t, StateUnderExamination, submitted.State)
	require.NotNil(t, submitted.Expenses[0].Cost.ExchangeRate)
	assert.InDelta(t, 8.8, submitted.Expenses[0].Cost.ExchangeRate.Amount, 0.001)
	assert.Equal(t, 100.0, submitted.Expenses[0].Cost.Amount)
}

func TestSubmitForExamination_UnresolvedCurrencyStaysUnconverted(t *testing.T) {
	service, _ := newTestService(nil)
	date := time.Date(2023, 3, 10, 0, 0, 0, 0, time.UTC)
	report := createReport(t, service, []Expense{
		{Description: "Taxi", Cost: Cost{Amount: 25, Currency: "XXX", Date: date}},
	})

	submitted, err := service.SubmitForExamination(asUser(claimant), report.ID)

	require.NoError(t, err)
	assert.Nil(t, submitted.Expenses[0].Cost.ExchangeRate)
	assert.Equal(t, 25.0, submitted.Expenses[0].Cost.Amount)
}

func TestSubmitForExamination_ArchivesInProgressVersion(t *testing.T) {
	service, repo := newTestService(nil)
	report := createReport(t, service, nil)

	submitted, err := service.SubmitForExamination(asUser(claimant), report.ID)

	require.NoError(t, err)
	require.Len(t, submitted.History, 1)

	snapshot, err := repo.Get(context.Background(), submitted.History[0])
	require.NoError(t, err)
	assert.True(t, snapshot.Historic)
	assert.Equal(t, StateInProgress, snapshot.State)
	assert.Empty(t, snapshot.History)
	assert.NotEqual(t, submitted.UID, snapshot.UID)
}

func TestReject_KeepsCommentWithoutArchiving(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)
	_, err := service.SubmitForExamination(asUser(claimant), report.ID)
	require.NoError(t, err)

	rejected, err := service.Reject(asUser(examiner), report.ID, "receipt 3 is unreadable")

	require.NoError(t, err)
	assert.Equal(t, StateRejected, rejected.State)
	assert.Equal(t, "receipt 3 is unreadable", rejected.Comment)
	// submission archived once, rejection must not add another snapshot
	assert.Len(t, rejected.History, 1)
}

func TestReject_RequiresExaminer(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)
	_, err := service.SubmitForExamination(asUser(claimant), report.ID)
	require.NoError(t, err)

	_, err = service.Reject(asUser(claimant), report.ID, "")

	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestRefund_ArchivesExaminedVersion(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)
	_, err := service.SubmitForExamination(asUser(claimant), report.ID)
	require.NoError(t, err)

	refunded, err := service.Refund(asUser(examiner), report.ID, "paid out")

	require.NoError(t, err)
	assert.Equal(t, StateRefunded, refunded.State)
	assert.Equal(t, examiner.Id, refunded.EditorID)
	// one snapshot per audited transition
	assert.Len(t, refunded.History, 2)
}

func TestRefund_RequiresExaminationState(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)

	_, err := service.Refund(asUser(examiner), report.ID, "")

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestGetAll_RequiresExaminer(t *testing.T) {
	service, _ := newTestService(nil)
	createReport(t, service, nil)

	_, err := service.GetAll(asUser(claimant))
	assert.ErrorIs(t, err, ErrNotAllowed)

	reports, err := service.GetAll(asUser(examiner))
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestGetOwn_ExcludesHistoricSnapshots(t *testing.T) {
	service, _ := newTestService(nil)
	report := createReport(t, service, nil)
	_, err := service.SubmitForExamination(asUser(claimant), report.ID)
	require.NoError(t, err)

	reports, err := service.GetOwn(asUser(claimant))

	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.False(t, reports[0].Historic)
}
