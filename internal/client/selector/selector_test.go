package selector

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophupload/internal/client/models"
	"github.com/dmitrijs2005/gophupload/internal/client/validation"
	"github.com/dmitrijs2005/gophupload/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mb = 1 << 20

type fakePreviews struct {
	created []string
	revoked []string
	failOn  string
}

func (f *fakePreviews) Create(h models.FileHandle) (string, error) {
	if h.Name == f.failOn {
		return "", errors.New("boom")
	}
	if !validation.IsImage(h.Name, h.MIMEType) {
		return "", nil
	}
	url := fmt.Sprintf("blob:%d", len(f.created))
	f.created = append(f.created, url)
	return url, nil
}

func (f *fakePreviews) Revoke(url string) {
	f.revoked = append(f.revoked, url)
}

func newSelector(t *testing.T, maxFiles int) (*Selector, *fakePreviews) {
	t.Helper()
	p := &fakePreviews{}
	opts := validation.DefaultBatchOptions()
	opts.MaxFiles = maxFiles
	s := New(validation.NewValidator(nil, nil), p, opts)
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s, p
}

func fh(name string, size int64) models.FileHandle {
	return models.FileHandle{Name: name, Size: size}
}

func TestDrop_AppendsInOrderWithPreviews(t *testing.T) {
	s, p := newSelector(t, 10)

	added, r, err := s.Drop([]models.FileHandle{fh("a.pdf", mb), fh("b.png", mb)}, nil)
	require.NoError(t, err)
	require.True(t, r.Valid)
	require.Len(t, added, 2)

	_, r, err = s.Drop([]models.FileHandle{fh("c.jpg", mb)}, nil)
	require.NoError(t, err)
	require.True(t, r.Valid)

	files := s.Files()
	require.Len(t, files, 3)
	assert.Equal(t, []string{"id-1", "id-2", "id-3"}, []string{files[0].ID, files[1].ID, files[2].ID})
	assert.Equal(t, "a.pdf", files[0].File.Name)
	assert.False(t, files[0].HasPreview())
	assert.True(t, files[1].HasPreview())
	assert.True(t, files[2].HasPreview())
	assert.Len(t, p.created, 2)
}

func TestDrop_ExceedingMaxFilesDiscardsWholeIncomingSet(t *testing.T) {
	s, p := newSelector(t, 3)

	_, _, err := s.Drop([]models.FileHandle{fh("a.pdf", mb), fh("b.pdf", mb)}, nil)
	require.NoError(t, err)

	added, r, err := s.Drop([]models.FileHandle{fh("c.png", mb), fh("d.png", mb)}, nil)
	require.NoError(t, err)

	assert.Nil(t, added)
	assert.Equal(t, validation.CodeMaxFilesExceeded, r.Code)
	assert.Equal(t, "You can upload at most 3 files.", r.Message)
	assert.Equal(t, 2, s.Len(), "nothing trimmed in")
	assert.Empty(t, p.created)
}

func TestDrop_WidgetRejectionSurfacesFirstReasonOnly(t *testing.T) {
	s, _ := newSelector(t, 10)

	rejected := []Rejection{
		{File: fh("a.exe", mb), Code: validation.CodeInvalidType, Message: "first"},
		{File: fh("b.iso", 90*mb), Code: validation.CodeFileTooLarge, Message: "second"},
	}

	added, r, err := s.Drop([]models.FileHandle{fh("ok.pdf", mb)}, rejected)
	require.NoError(t, err)

	assert.Nil(t, added)
	assert.Equal(t, validation.Result{Code: validation.CodeInvalidType, Message: "first"}, r)
	assert.Zero(t, s.Len())
}

func TestDrop_InvalidFileRejectsSelection(t *testing.T) {
	s, p := newSelector(t, 10)

	added, r, err := s.Drop([]models.FileHandle{fh("a.png", mb), fh("b.pdf", 11*mb)}, nil)
	require.NoError(t, err)

	assert.Nil(t, added)
	assert.Equal(t, validation.CodeFileTooLarge, r.Code)
	assert.Zero(t, s.Len())
	assert.Empty(t, p.created)
}

func TestDrop_TotalSizeCountsExistingSelection(t *testing.T) {
	s, _ := newSelector(t, 10)

	_, r, err := s.Drop([]models.FileHandle{fh("a.pdf", 9*mb), fh("b.pdf", 9*mb), fh("c.pdf", 9*mb)}, nil)
	require.NoError(t, err)
	require.True(t, r.Valid)

	_, r, err = s.Drop([]models.FileHandle{fh("d.pdf", 9*mb), fh("e.pdf", 9*mb), fh("f.pdf", 9*mb)}, nil)
	require.NoError(t, err)

	assert.Equal(t, validation.CodeTotalSizeExceeded, r.Code)
	assert.Equal(t, 3, s.Len())
}

func TestDrop_PreviewFailureRollsBack(t *testing.T) {
	s, p := newSelector(t, 10)
	p.failOn = "c.png"

	_, _, err := s.Drop([]models.FileHandle{fh("a.png", mb), fh("b.png", mb), fh("c.png", mb)}, nil)

	require.Error(t, err)
	assert.Zero(t, s.Len())
	assert.ElementsMatch(t, p.created, p.revoked)
}

func TestRemove_RevokesExactlyOnce(t *testing.T) {
	s, p := newSelector(t, 10)
	added, _, err := s.Drop([]models.FileHandle{fh("a.png", mb), fh("b.pdf", mb), fh("c.png", mb)}, nil)
	require.NoError(t, err)

	require.NoError(t, s.Remove(added[0].ID))
	require.NoError(t, s.Remove(added[1].ID))
	assert.ErrorIs(t, s.Remove(added[0].ID), common.ErrorNotFound)

	assert.Equal(t, []string{added[0].PreviewURL}, p.revoked)
	files := s.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "c.png", files[0].File.Name)
}

func TestLock_BlocksMutationUntilUnlock(t *testing.T) {
	s, _ := newSelector(t, 10)

	_, err := s.Lock()
	assert.ErrorIs(t, err, common.ErrEmptySelection)

	added, _, err := s.Drop([]models.FileHandle{fh("a.pdf", mb)}, nil)
	require.NoError(t, err)

	locked, err := s.Lock()
	require.NoError(t, err)
	assert.Equal(t, added, locked)

	_, err = s.Lock()
	assert.ErrorIs(t, err, common.ErrSessionBusy)
	_, _, err = s.Drop([]models.FileHandle{fh("b.pdf", mb)}, nil)
	assert.ErrorIs(t, err, common.ErrSessionBusy)
	assert.ErrorIs(t, s.Remove(added[0].ID), common.ErrSessionBusy)

	s.Unlock()
	require.NoError(t, s.Remove(added[0].ID))
}

func TestClear_RevokesAllPreviews(t *testing.T) {
	s, p := newSelector(t, 10)
	_, _, err := s.Drop([]models.FileHandle{fh("a.png", mb), fh("b.pdf", mb), fh("c.gif", mb)}, nil)
	require.NoError(t, err)

	s.Clear()

	assert.Zero(t, s.Len())
	assert.ElementsMatch(t, p.created, p.revoked)
}

func TestPartition(t *testing.T) {
	s, _ := newSelector(t, 10)

	accepted, rejected := s.Partition([]models.FileHandle{fh("a.pdf", mb), fh("b.exe", mb), fh("c.png", 0)})

	require.Len(t, accepted, 1)
	assert.Equal(t, "a.pdf", accepted[0].Name)
	require.Len(t, rejected, 2)
	assert.Equal(t, validation.CodeInvalidType, rejected[0].Code)
	assert.Equal(t, validation.CodeEmptyFile, rejected[1].Code)
	assert.True(t, strings.Contains(rejected[1].Message, "c.png"))
}
