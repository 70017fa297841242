package banner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowThenAutoHide(t *testing.T) {
	p := New(30 * time.Millisecond)
	defer p.Close()

	p.Show("ALARM SET ✅", "Reminder at 07:30")
	st := p.State()
	assert.True(t, st.Visible)
	assert.Equal(t, "ALARM SET ✅", st.Title)

	require.Eventually(t, func() bool { return !p.State().Visible }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Reminder at 07:30", p.State().Message)
}

func TestNewerBannerSurvivesStaleTimer(t *testing.T) {
	p := New(80 * time.Millisecond)
	defer p.Close()

	p.Show("first", "one")
	time.Sleep(50 * time.Millisecond)
	p.Show("second", "two")
	time.Sleep(50 * time.Millisecond)

	st := p.State()
	assert.True(t, st.Visible, "first timer must not hide the second banner")
	assert.Equal(t, "second", st.Title)

	require.Eventually(t, func() bool { return !p.State().Visible }, time.Second, 5*time.Millisecond)
}

func TestHideKeepsContent(t *testing.T) {
	p := New(time.Hour)
	defer p.Close()

	p.Show("MISSION COMPLETE! 🎉", "Good job, Agent!")
	p.Hide()
	assert.Equal(t, State{Visible: false, Title: "MISSION COMPLETE! 🎉", Message: "Good job, Agent!"}, p.State())
}

func TestChangesLatestWins(t *testing.T) {
	p := New(time.Hour)
	defer p.Close()

	p.Show("a", "1")
	p.Show("b", "2")
	p.Show("c", "3")

	select {
	case st := <-p.Changes():
		assert.Equal(t, "c", st.Title)
	default:
		t.Fatal("expected a pending change")
	}
	select {
	case st := <-p.Changes():
		t.Fatalf("unexpected extra change %+v", st)
	default:
	}
}

func TestCloseStopsUpdates(t *testing.T) {
	p := New(time.Hour)
	p.Close()
	p.Close()
	p.Show("x", "y")

	_, ok := <-p.Changes()
	assert.False(t, ok)
	assert.False(t, p.State().Visible)
}

func TestDefaultDelay(t *testing.T) {
	p := New(0)
	defer p.Close()
	assert.Equal(t, DefaultDelay, p.delay)
}
