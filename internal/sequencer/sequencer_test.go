package sequencer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequencer_FinalCTACompletesOnce(t *testing.T) {
	calls := 0
	s, err := New(NarrativeOnboarding(), func() error { calls++; return nil },
		WithBackLock(NarrativeBackLock))
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		done, err := s.Continue()
		require.NoError(t, err)
		assert.False(t, done)
	}
	assert.Equal(t, 4, s.Index())
	assert.True(t, s.IsLast())
	assert.Equal(t, 0, calls)

	for i := 0; i < 3; i++ {
		done, err := s.Continue()
		require.NoError(t, err)
		assert.True(t, done)
	}
	assert.Equal(t, 1, calls)
	assert.Equal(t, 4, s.Index())
	assert.True(t, s.Completed())
}

func TestSequencer_CompletionErrorAllowsRetry(t *testing.T) {
	calls := 0
	s, err := New([]Step{{Key: "only"}}, func() error {
		calls++
		if calls == 1 {
			return errors.New("boom")
		}
		return nil
	})
	require.NoError(t, err)

	_, err = s.Continue()
	require.Error(t, err)
	assert.False(t, s.Completed())

	done, err := s.Continue()
	require.NoError(t, err)
	assert.True(t, done)
	_, _ = s.Continue()
	assert.Equal(t, 2, calls)
}

func TestSequencer_BackLock(t *testing.T) {
	s, err := New(NarrativeOnboarding(), nil, WithBackLock(NarrativeBackLock))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Back(), ErrBackDisabled)

	_, _ = s.Continue()
	_, _ = s.Continue()
	require.Equal(t, 2, s.Index())
	assert.True(t, s.CanGoBack())
	require.NoError(t, s.Back())
	assert.Equal(t, 1, s.Index())

	_, _ = s.Continue()
	_, _ = s.Continue()
	require.Equal(t, 3, s.Index())
	assert.False(t, s.CanGoBack())
	assert.ErrorIs(t, s.Back(), ErrBackDisabled)
	assert.Equal(t, 3, s.Index())
}

func TestSequencer_Hooks(t *testing.T) {
	var log []string
	s, err := New(CreationWizard(), nil, WithHooks(Hooks{
		OnExit:  func(i int, st Step) { log = append(log, "exit:"+st.Key) },
		OnEnter: func(i int, st Step) { log = append(log, "enter:"+st.Key) },
	}))
	require.NoError(t, err)

	_, _ = s.Continue()
	require.NoError(t, s.Back())
	assert.Equal(t, []string{"exit:intention", "enter:category", "exit:category", "enter:intention"}, log)
	assert.Equal(t, "intention", s.Current().Key)
}

func TestSequencer_CallbacksCanReadState(t *testing.T) {
	steps := []Step{{Key: "a"}, {Key: "b"}}
	var s *Sequencer
	var seen []string
	hooks := Hooks{
		OnExit:  func(i int, st Step) { seen = append(seen, "exit:"+s.Current().Key) },
		OnEnter: func(i int, st Step) { seen = append(seen, "enter:"+s.Current().Key) },
	}
	var completedDuring bool
	s, err := New(steps, func() error {
		completedDuring = s.Completed()
		seen = append(seen, "complete:"+s.Current().Key)
		return nil
	}, WithHooks(hooks))
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Continue()
		_, _ = s.Continue()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("callback reading the sequencer blocked")
	}

	assert.Equal(t, []string{"exit:a", "enter:b", "complete:b"}, seen)
	assert.False(t, completedDuring)
	assert.True(t, s.Completed())
}

func TestNew_NoSteps(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoSteps)
}
