package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/credstore"
	"taskdesk/internal/notice"
	"taskdesk/internal/routing"
	"taskdesk/internal/service"
	"taskdesk/internal/storage"
	"taskdesk/internal/testutil"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProfile() service.Profile {
	return service.Profile{
		ID:        "u1",
		Email:     "ada@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Roles:     []string{"Worker"},
	}
}

func newManager(kv storage.KV) (*Manager, *routing.History, *notice.Recorder) {
	nav := &routing.History{}
	notes := &notice.Recorder{}
	return New(credstore.New(kv, quietLogger()), nav, notes, quietLogger()), nav, notes
}

func TestNew_StartsLoading(t *testing.T) {
	m, _, _ := newManager(storage.NewMemory())
	st := m.State()
	assert.True(t, st.Loading)
	assert.False(t, st.LoggedIn)

	st = m.Hydrate(context.Background())
	assert.False(t, st.Loading)
	assert.False(t, st.LoggedIn)
	assert.Nil(t, st.User)
}

func TestSignIn_SurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	db, err := storage.OpenSQLite(path)
	require.NoError(t, err)
	m, _, _ := newManager(db)
	m.Hydrate(ctx)
	require.NoError(t, m.SignIn(ctx, testProfile(), "tok-1"))
	require.NoError(t, db.Close())

	db, err = storage.OpenSQLite(path)
	require.NoError(t, err)
	defer db.Close()
	fresh, _, _ := newManager(db)
	st := fresh.Hydrate(ctx)

	require.True(t, st.LoggedIn)
	assert.Equal(t, "tok-1", st.Token)
	assert.Equal(t, testProfile(), *st.User)
}

func TestSignUp_PublishesState(t *testing.T) {
	m, _, _ := newManager(storage.NewMemory())
	require.NoError(t, m.SignUp(context.Background(), testProfile(), "tok"))

	st := m.State()
	assert.True(t, st.LoggedIn)
	assert.Equal(t, []string{"Worker"}, st.Roles())
}

func TestSignIn_Validation(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	m, _, _ := newManager(kv)

	assert.ErrorIs(t, m.SignIn(ctx, testProfile(), ""), ErrEmptyToken)

	p := testProfile()
	p.Roles = nil
	assert.ErrorIs(t, m.SignIn(ctx, p, "tok"), routing.ErrNoRoles)

	assert.Zero(t, kv.Len())
	assert.False(t, m.State().LoggedIn)
}

func TestSignIn_WriteFailureLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	kv.SetErr = errors.New("disk full")
	m, _, _ := newManager(kv)
	m.Hydrate(ctx)

	err := m.SignIn(ctx, testProfile(), "tok")
	var serr *credstore.StorageError
	require.ErrorAs(t, err, &serr)
	assert.False(t, m.State().LoggedIn)
}

func TestSignOut_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	m, nav, notes := newManager(kv)
	require.NoError(t, m.SignIn(ctx, testProfile(), "tok"))

	require.NoError(t, m.SignOut(ctx))

	st := m.State()
	assert.False(t, st.LoggedIn)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)
	assert.Equal(t, routing.SignIn, nav.Current())
	assert.Equal(t, []notice.Notice{SignedOutNotice}, notes.Notices())

	store := credstore.New(kv, quietLogger())
	_, ok := store.Token(ctx)
	assert.False(t, ok)
	_, ok = store.Profile(ctx)
	assert.False(t, ok)

	fresh, _, _ := newManager(kv)
	assert.False(t, fresh.Hydrate(ctx).LoggedIn)
}

func TestSignOut_Idempotent(t *testing.T) {
	ctx := context.Background()
	m, nav, _ := newManager(storage.NewMemory())

	require.NoError(t, m.SignOut(ctx))
	require.NoError(t, m.SignOut(ctx))
	assert.False(t, m.State().LoggedIn)
	assert.Equal(t, []routing.Screen{routing.SignIn, routing.SignIn}, nav.Screens())
}

func TestSignOut_ClearFailureStillResetsState(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	m, _, _ := newManager(kv)
	require.NoError(t, m.SignIn(ctx, testProfile(), "tok"))

	kv.RemoveErr = errors.New("locked")
	err := m.SignOut(ctx)
	require.Error(t, err)
	assert.False(t, m.State().LoggedIn)
}

func TestHydrate_DoesNotOverrideSignIn(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	seed := credstore.New(kv, quietLogger())
	other := testProfile()
	other.Email = "old@example.com"
	require.NoError(t, seed.SetProfile(ctx, other))
	require.NoError(t, seed.SetToken(ctx, "old"))

	m, _, _ := newManager(storage.NewMemory())
	require.NoError(t, m.SignIn(ctx, testProfile(), "new"))
	st := m.Hydrate(ctx)
	assert.Equal(t, "new", st.Token)
	assert.False(t, st.Loading)
}

func TestHydrate_Concurrent(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	seed := credstore.New(kv, quietLogger())
	require.NoError(t, seed.SetProfile(ctx, testProfile()))
	require.NoError(t, seed.SetToken(ctx, "tok"))

	m, _, _ := newManager(kv)
	var wg sync.WaitGroup
	results := make([]State, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Hydrate(ctx)
		}(i)
	}
	wg.Wait()
	for _, st := range results {
		assert.True(t, st.LoggedIn)
		assert.False(t, st.Loading)
	}
}

func TestState_IsACopy(t *testing.T) {
	m, _, _ := newManager(storage.NewMemory())
	require.NoError(t, m.SignIn(context.Background(), testProfile(), "tok"))

	st := m.State()
	st.User.Roles[0] = "Admin"
	assert.Equal(t, "Worker", m.State().User.PrimaryRole())
}

func TestSignIn_ProfileWrittenBeforeToken(t *testing.T) {
	ctx := context.Background()
	kv := &testutil.MockKV{}
	kv.On("Set", mock.Anything, credstore.ProfileKey, mock.Anything).Return(errors.New("read-only")).Once()

	m, _, _ := newManager(kv)
	require.Error(t, m.SignIn(ctx, testProfile(), "tok"))

	kv.AssertExpectations(t)
	kv.AssertNotCalled(t, "Set", mock.Anything, credstore.TokenKey, mock.Anything)
	assert.False(t, m.State().LoggedIn)
}

func TestSignOut_RemovesBothKeys(t *testing.T) {
	ctx := context.Background()
	kv := &testutil.MockKV{}
	kv.On("Remove", mock.Anything, []string{credstore.TokenKey, credstore.ProfileKey}).Return(nil).Once()

	m, _, _ := newManager(kv)
	require.NoError(t, m.SignOut(ctx))
	kv.AssertExpectations(t)
}

// tokenWritesFail is a Memory whose token writes fail.
type tokenWritesFail struct {
	*storage.Memory
}

func (kv tokenWritesFail) Set(ctx context.Context, key, value string) error {
	if key == credstore.TokenKey {
		return errors.New("disk full")
	}
	return kv.Memory.Set(ctx, key, value)
}

func TestSignIn_TokenWriteFailureDropsMixedRecord(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemory()
	alice := testProfile()
	alice.Email = "alice@example.com"
	alice.Roles = []string{"Worker"}

	first, _, _ := newManager(mem)
	require.NoError(t, first.SignIn(ctx, alice, "tokA"))

	bob := testProfile()
	bob.Email = "bob@example.com"
	bob.Roles = []string{"Admin"}
	m, _, _ := newManager(tokenWritesFail{mem})
	m.Hydrate(ctx)
	require.True(t, m.State().LoggedIn)

	err := m.SignIn(ctx, bob, "tokB")
	var serr *credstore.StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, credstore.TokenKey, serr.Key)
	assert.False(t, m.State().LoggedIn)

	restarted, _, _ := newManager(mem)
	st := restarted.Hydrate(ctx)
	assert.False(t, st.LoggedIn)
	assert.Zero(t, mem.Len())
}

func TestSignIn_TokenWriteFailureClearsProfile(t *testing.T) {
	ctx := context.Background()
	kv := &testutil.MockKV{}
	kv.On("Set", mock.Anything, credstore.ProfileKey, mock.Anything).Return(nil).Once()
	kv.On("Set", mock.Anything, credstore.TokenKey, "tok").Return(errors.New("disk full")).Once()
	kv.On("Remove", mock.Anything, []string{credstore.TokenKey, credstore.ProfileKey}).Return(nil).Once()

	m, _, _ := newManager(kv)
	require.Error(t, m.SignUp(ctx, testProfile(), "tok"))
	kv.AssertExpectations(t)
}
