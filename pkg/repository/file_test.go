package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PianoRoster/pkg/model"
)

func TestFilePersister_EmptySlot(t *testing.T) {
	p := NewFilePersister(t.TempDir(), DefaultSlot)

	_, err := p.Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFilePersister_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir, DefaultSlot)
	ctx := context.Background()

	snapshot := &model.Snapshot{Students: SeedStudents()}
	require.NoError(t, p.Save(ctx, snapshot))

	assert.Equal(t, filepath.Join(dir, "student-storage.json"), p.Path())
	_, err := os.Stat(p.Path() + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot, loaded)
}

func TestFilePersister_EnvelopeLayout(t *testing.T) {
	p := NewFilePersister(t.TempDir(), "slot")
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, &model.Snapshot{Students: []model.Student{{ID: 1, Name: "A", ParentName: "P", Amount: model.Amount10000}}}))

	data, err := os.ReadFile(p.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"students":[{"id":1,"name":"A","parentName":"P","phone":"","email":"","amount":"10000","avatar":""}]}`, string(data))
}

func TestFilePersister_CorruptSlot(t *testing.T) {
	dir := t.TempDir()
	p := NewFilePersister(dir, "slot")
	require.NoError(t, os.WriteFile(p.Path(), []byte("{not json"), 0o644))

	_, err := p.Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFilePersister_StoreRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(ctx, NewFilePersister(dir, DefaultSlot), SeedStudents(), nil)
	require.NoError(t, err)
	_, err = s.Create(ctx, model.StudentFields{Name: "X", ParentName: "Y", Phone: "1", Amount: model.Amount5000})
	require.NoError(t, err)

	restarted, err := NewStore(ctx, NewFilePersister(dir, DefaultSlot), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, s.List(), restarted.List())
}

func TestFilePersister_Ping(t *testing.T) {
	p := NewFilePersister(filepath.Join(t.TempDir(), "nested"), "slot")
	assert.NoError(t, p.Ping(context.Background()))
}
