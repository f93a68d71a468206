package travel

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/reisegeld/reisegeld/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var traveler = user.User{Id: 1, Uid: uuid.NewString(), Name: "Tina Traveler", Email: "tina@example.org"}
var editor = user.User{Id: 2, Uid: uuid.NewString(), Name: "Eddie Editor", Email: "eddie@example.org",
	Access: user.Access{ApproveTravel: true}}
var examiner = user.User{Id: 3, Uid: uuid.NewString(), Name: "Exa Miner", Email: "exa@example.org",
	Access: user.Access{Examine: true}}

func setupServiceTest() (*ServiceImpl, *StubRepo) {
	repo := NewStubRepo()
	return NewService(repo), repo
}

func asUser(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

func newTravel(t *testing.T, service *ServiceImpl) Travel {
	t.Helper()
	created, err := service.Create(asUser(traveler), Travel{
		Name:             "Conference trip",
		Reason:           "annual conference",
		DestinationPlace: "Oslo",
		InsideOfEU:       false,
		StartDate:        time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		Advance:          Cost{Amount: 100, Currency: "EUR"},
	})
	require.NoError(t, err)
	return created
}

func TestCreate_StartsAsAppliedFor(t *testing.T) {
	service, _ := setupServiceTest()
	created := newTravel(t, service)

	assert.Equal(t, StateAppliedFor, created.State)
	assert.Equal(t, traveler.Id, created.TravelerID)
	assert.False(t, created.Historic)
	assert.NotEmpty(t, created.UID)
}

func TestUpdate_ReconcilesCateringDays(t *testing.T) {
	service, _ := setupServiceTest()
	created := newTravel(t, service)

	created.Records = []Record{{
		Type:      RecordTypeStay,
		Location:  "Oslo",
		StartDate: time.Date(2023, 1, 1, 8, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2023, 1, 3, 18, 0, 0, 0, time.UTC),
	}}
	updated, err := service.Update(asUser(traveler), created)
	require.NoError(t, err)
	require.Len(t, updated.CateringNoRefund, 3)

	// flag a provided lunch the way a PUT does: the DTO round trip detaches
	// the submitted travel from anything the repository holds
	submitted := dtoToTravel(travelToDTO(updated))
	submitted.CateringNoRefund[1].Lunch = true
	saved, err := service.Update(asUser(traveler), submitted)
	require.NoError(t, err)
	require.Len(t, saved.CateringNoRefund, 3)
	assert.True(t, saved.CateringNoRefund[1].Lunch)

	stored, err := service.Get(asUser(traveler), saved.ID)
	require.NoError(t, err)
	require.Len(t, stored.CateringNoRefund, 3)
	assert.True(t, stored.CateringNoRefund[1].Lunch)

	// shorten the stay: the flagged day is still spanned and must survive
	shortenedDTO := travelToDTO(stored)
	shortenedDTO.Records[0].EndDate = time.Date(2023, 1, 2, 18, 0, 0, 0, time.UTC)
	shortened, err := service.Update(asUser(traveler), dtoToTravel(shortenedDTO))
	require.NoError(t, err)
	require.Len(t, shortened.CateringNoRefund, 2)
	assert.True(t, shortened.CateringNoRefund[1].Lunch)
}

func TestUpdate_RejectsUnorderedRecords(t *testing.T) {
	service, _ := setupServiceTest()
	created := newTravel(t, service)

	created.Records = []Record{
		{Type: RecordTypeStay, StartDate: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)},
		{Type: RecordTypeRoute, StartDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	_, err := service.Update(asUser(traveler), created)
	assert.ErrorIs(t, err, ErrRecordsOutOfOrder)
}

func TestUpdate_OnlyTravelerMayEdit(t *testing.T) {
	service, _ := setupServiceTest()
	created := newTravel(t, service)

	_, err := service.Update(asUser(editor), created)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestApprove_ArchivesAppliedForVersion(t *testing.T) {
	service, repo := setupServiceTest()
	created := newTravel(t, service)

	approved, err := service.Approve(asUser(editor), created.ID, "looks fine")
	require.NoError(t, err)
	assert.Equal(t, StateApproved, approved.State)
	assert.Equal(t, editor.Id, approved.EditorID)
	require.Len(t, approved.History, 1)

	historic, err := repo.Get(context.Background(), approved.History[0])
	require.NoError(t, err)
	assert.True(t, historic.Historic)
	assert.Equal(t, StateAppliedFor, historic.State)
	assert.NotEqual(t, created.ID, historic.ID)
	assert.NotEqual(t, created.UID, historic.UID)
	assert.Empty(t, historic.History)
}

func TestReject_KeepsCommentWithoutArchiving(t *testing.T) {
	service, _ := setupServiceTest()
	created := newTravel(t, service)

	rejected, err := service.Reject(asUser(editor), created.ID, "not business related")
	require.NoError(t, err)
	assert.Equal(t, StateRejected, rejected.State)
	assert.Equal(t, "not business related", rejected.Comment)
	assert.Empty(t, rejected.History)
}

func TestSubmitForExamination_SnapshotClearsComment(t *testing.T) {
	service, repo := setupServiceTest()
	created := newTravel(t, service)

	approved, err := service.Approve(asUser(editor), created.ID, "ok, but keep it cheap")
	require.NoError(t, err)
	assert.Equal(t, "ok, but keep it cheap", approved.Comment)
	historyBefore := len(approved.History)

	submitted, err := service.SubmitForExamination(asUser(traveler), created.ID)
	require.NoError(t, err)
	assert.Equal(t, StateUnderExamination, submitted.State)
	assert.Empty(t, submitted.Comment)
	assert.Len(t, submitted.History, historyBefore+1)

	historic, err := repo.Get(context.Background(), submitted.History[historyBefore])
	require.NoError(t, err)
	assert.True(t, historic.Historic)
	assert.Equal(t, StateApproved, historic.State)
}

func TestRefund_RequiresExaminerAndExaminationState(t *testing.T) {
	service, _ := setupServiceTest()
	created := newTravel(t, service)

	_, err := service.Refund(asUser(examiner), created.ID, "")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = service.Approve(asUser(editor), created.ID, "")
	require.NoError(t, err)
	_, err = service.SubmitForExamination(asUser(traveler), created.ID)
	require.NoError(t, err)

	_, err = service.Refund(asUser(traveler), created.ID, "")
	assert.ErrorIs(t, err, ErrNotAllowed)

	refunded, err := service.Refund(asUser(examiner), created.ID, "transferred")
	require.NoError(t, err)
	assert.Equal(t, StateRefunded, refunded.State)
	// one snapshot per audited transition: applied-for, approved, under examination
	assert.Len(t, refunded.History, 3)
}

func TestGetAll_RequiresEditorOrExaminer(t *testing.T) {
	service, _ := setupServiceTest()
	newTravel(t, service)

	_, err := service.GetAll(asUser(traveler))
	assert.ErrorIs(t, err, ErrNotAllowed)

	travels, err := service.GetAll(asUser(editor))
	require.NoError(t, err)
	assert.Len(t, travels, 1)
}

func TestGetAll_ExcludesHistoricSnapshots(t *testing.T) {
	service, _ := setupServiceTest()
	created := newTravel(t, service)

	_, err := service.Approve(asUser(editor), created.ID, "")
	require.NoError(t, err)

	travels, err := service.GetAll(asUser(editor))
	require.NoError(t, err)
	assert.Len(t, travels, 1)
}
