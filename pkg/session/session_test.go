package session

import (
	"gatepass/pkg/model"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func newState(t *testing.T) (*State, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	return New(path), path
}

func TestState_HydrateMissingFile(t *testing.T) {
	s, _ := newState(t)

	require.NoError(t, s.Hydrate())
	require.False(t, s.Authenticated())
	require.Equal(t, ThemeLight, s.Theme())
	require.Empty(t, s.Visitors())
}

func TestState_LoginPersistsAcrossInstances(t *testing.T) {
	s, path := newState(t)
	require.NoError(t, s.Login("tok", User{Name: "Guard", Email: "guard@example.com"}))
	require.NoError(t, s.SetTheme(ThemeDark))
	require.NoError(t, s.SetVisitors([]model.VisitorGroup{{GroupID: "AB12"}}))

	restored := New(path)
	require.NoError(t, restored.Hydrate())

	require.True(t, restored.Authenticated())
	require.Equal(t, "tok", restored.Token())
	user, ok := restored.User()
	require.True(t, ok)
	require.Equal(t, "guard@example.com", user.Email)
	require.Equal(t, ThemeDark, restored.Theme())
	require.Len(t, restored.Visitors(), 1)
}

func TestState_Logout(t *testing.T) {
	s, path := newState(t)
	require.NoError(t, s.Login("tok", User{Name: "Guard"}))

	require.NoError(t, s.Logout())
	require.False(t, s.Authenticated())
	_, ok := s.User()
	require.False(t, ok)
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))

	// Logging out twice is fine.
	require.NoError(t, s.Logout())
}

func TestState_Validation(t *testing.T) {
	s, _ := newState(t)
	require.Error(t, s.Login("", User{}))
	require.Error(t, s.SetTheme("sepia"))
}

func TestState_HydrateCorruptFile(t *testing.T) {
	s, path := newState(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o700))
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	require.Error(t, s.Hydrate())
}

func TestState_VisitorsReturnsCopy(t *testing.T) {
	s, _ := newState(t)
	require.NoError(t, s.SetVisitors([]model.VisitorGroup{{GroupID: "AB12"}}))

	got := s.Visitors()
	got[0].GroupID = "ZZZZ"

	require.Equal(t, "AB12", s.Visitors()[0].GroupID)
}

func TestState_ConcurrentAccess(t *testing.T) {
	s, _ := newState(t)
	require.NoError(t, s.Login("tok", User{Name: "Guard"}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.SetVisitors([]model.VisitorGroup{{GroupID: "AB12"}})
		}()
		go func() {
			defer wg.Done()
			_ = s.Authenticated()
			_ = s.Visitors()
		}()
	}
	wg.Wait()
	require.True(t, s.Authenticated())
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvSessionFile, "/tmp/custom.json")
	p, err := DefaultPath()
	require.NoError(t, err)
	require.Equal(t, "/tmp/custom.json", p)
}
