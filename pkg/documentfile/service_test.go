package documentfile

import (
	"context"
	"testing"

	"github.com/reisegeld/reisegeld/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner    = user.User{Id: 1, Uid: "owner-uid", Name: "Owner"}
	stranger = user.User{Id: 2, Uid: "stranger-uid", Name: "Stranger"}
	examiner = user.User{Id: 3, Uid: "examiner-uid", Name: "Examiner", Access: user.Access{Examine: true}}
)

func asUser(u user.User) context.Context {
	return user.WithUser(context.Background(), u)
}

func TestUpload_RejectsUnsupportedType(t *testing.T) {
	service := NewService(NewStubRepo())

	_, err := service.Upload(asUser(owner), "notes.txt", "text/plain", []byte("hello"))

	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestUpload_StoresFileWithOwner(t *testing.T) {
	service := NewService(NewStubRepo())

	file, err := service.Upload(asUser(owner), "receipt.pdf", "application/pdf", []byte("%PDF-1.4"))

	require.NoError(t, err)
	assert.NotEmpty(t, file.UID)
	assert.Equal(t, owner.Id, file.OwnerID)

	stored, err := service.Get(asUser(owner), file.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), stored.Data)
}

func TestGet_StrangerIsForbidden(t *testing.T) {
	service := NewService(NewStubRepo())
	file, err := service.Upload(asUser(owner), "receipt.png", "image/png", []byte{0x89, 0x50})
	require.NoError(t, err)

	_, err = service.Get(asUser(stranger), file.ID)

	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestGet_ExaminerMayRead(t *testing.T) {
	service := NewService(NewStubRepo())
	file, err := service.Upload(asUser(owner), "receipt.jpg", "image/jpeg", []byte{0xff, 0xd8})
	require.NoError(t, err)

	got, err := service.Get(asUser(examiner), file.ID)

	require.NoError(t, err)
	assert.Equal(t, "receipt.jpg", got.Name)
}

func TestDelete_OnlyOwnerMayDelete(t *testing.T) {
	service := NewService(NewStubRepo())
	file, err := service.Upload(asUser(owner), "receipt.pdf", "application/pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	err = service.Delete(asUser(examiner), file.ID)
	assert.ErrorIs(t, err, ErrNotAllowed)

	require.NoError(t, service.Delete(asUser(owner), file.ID))
	_, err = service.Get(asUser(owner), file.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
