package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const addrA = "0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa"

func TestManager_Add(t *testing.T) {
	m := NewManager()
	s, err := m.Add(addrA, "c1")
	require.NoError(t, err)
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", s.Address)
	assert.Equal(t, "c1", s.ConnID)
	assert.False(t, s.LoggedInAt.IsZero())
	assert.Equal(t, 1, m.Count())
}

func TestManager_AddDuplicate(t *testing.T) {
	m := NewManager()
	_, err := m.Add(addrA, "c1")
	require.NoError(t, err)

	_, err = m.Add(" "+addrA+" ", "c2")
	require.ErrorIs(t, err, ErrAlreadyConnected)
	assert.Contains(t, err.Error(), "c1")
}

func TestManager_Remove(t *testing.T) {
	m := NewManager()
	_, err := m.Add(addrA, "c1")
	require.NoError(t, err)
	require.NoError(t, m.SetMatch(addrA, "m1"))

	require.NoError(t, m.Remove(addrA))
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, m.InBattle())
	assert.NotContains(t, m.matches, "m1")

	assert.ErrorIs(t, m.Remove(addrA), ErrNotConnected)
}

func TestManager_SetMatch(t *testing.T) {
	m := NewManager()
	_, err := m.Add(addrA, "c1")
	require.NoError(t, err)

	require.NoError(t, m.SetMatch(addrA, "m1"))
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", m.matches["m1"])

	require.NoError(t, m.SetMatch(addrA, "m2"))
	assert.NotContains(t, m.matches, "m1")
	assert.Equal(t, 1, m.InBattle())

	require.NoError(t, m.SetMatch(addrA, ""))
	assert.Equal(t, 0, m.InBattle())
	s, ok := m.Get(addrA)
	require.True(t, ok)
	assert.Empty(t, s.MatchID)

	assert.ErrorIs(t, m.SetMatch("0xnobody", "m3"), ErrNotConnected)
}

func TestManager_All(t *testing.T) {
	m := NewManager()
	for _, a := range []string{"0xcc", "0xaa", "0xbb"} {
		_, err := m.Add(a, "conn-"+a)
		require.NoError(t, err)
	}
	all := m.All()
	require.Len(t, all, 3)
	assert.Equal(t, "0xaa", all[0].Address)
	assert.Equal(t, "0xcc", all[2].Address)
}

func TestManager_ConcurrentAddRemove(t *testing.T) {
	m := NewManager()
	const n = 100
	var wg sync.WaitGroup

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			addr := fmt.Sprintf("0x%d", i)
			_, _ = m.Add(addr, addr)
			_ = m.SetMatch(addr, fmt.Sprintf("m%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, m.Count())
	assert.Equal(t, n, m.InBattle())

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = m.Remove(fmt.Sprintf("0x%d", i))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, m.Count())
	assert.Equal(t, 0, m.InBattle())
}

func TestPropertyMatchMembershipConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := NewManager()
		numTrainers := rapid.IntRange(1, 20).Draw(t, "num_trainers")
		for i := 0; i < numTrainers; i++ {
			_, _ = m.Add(fmt.Sprintf("0x%d", i), "c")
		}

		numOps := rapid.IntRange(0, numTrainers*3).Draw(t, "num_ops")
		for i := 0; i < numOps; i++ {
			addr := fmt.Sprintf("0x%d", rapid.IntRange(0, numTrainers-1).Draw(t, "trainer"))
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				_ = m.SetMatch(addr, fmt.Sprintf("m%d", i))
			case 1:
				_ = m.SetMatch(addr, "")
			case 2:
				_ = m.Remove(addr)
			}
		}

		inMatch := 0
		for _, s := range m.All() {
			if s.MatchID == "" {
				continue
			}
			inMatch++
			addr, ok := m.matches[s.MatchID]
			if !ok || addr != s.Address {
				t.Fatalf("match %s maps to %q, want %q", s.MatchID, addr, s.Address)
			}
		}
		if inMatch != m.InBattle() {
			t.Fatalf("sessions in a match %d != InBattle %d", inMatch, m.InBattle())
		}
	})
}
