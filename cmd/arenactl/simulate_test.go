package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRoster = `pets:
  - id: drake
    owner: "0x1111111111111111111111111111111111111111"
    name: Drake
    hunger: 0
    happiness: 100
    stage: 3
  - id: pebble
    owner: "0x2222222222222222222222222222222222222222"
    name: Pebble
    hunger: 100
    happiness: 0
    stage: 0
`

func writeRoster(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testRoster), 0o644))
	return path
}

func executeCommand(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSimulateCommand_Text(t *testing.T) {
	out, err := executeCommand("simulate", writeRoster(t), "drake", "pebble")
	require.NoError(t, err)
	assert.Contains(t, out, "Battle start! Drake vs Pebble!")
	assert.Contains(t, out, "110 ATK - 10 DEF = 80 damage dealt!")
	assert.Contains(t, out, "Victory! Drake defeated Pebble!")
	assert.Contains(t, out, "3 rounds, Drake left at 95 HP")
	assert.NotContains(t, out, "Reward:")
}

func TestSimulateCommand_JSONWithRewards(t *testing.T) {
	out, err := executeCommand("simulate", writeRoster(t), "pebble", "drake",
		"--scripts", filepath.Join("..", "..", "content", "scripts"), "--json")
	require.NoError(t, err)

	var sim simulation
	require.NoError(t, json.Unmarshal([]byte(out), &sim))
	assert.Equal(t, "Pebble", sim.Self)
	assert.Equal(t, "Drake", sim.Winner)
	assert.Equal(t, 4, sim.Rounds)
	assert.Empty(t, sim.Reward)
	require.Len(t, sim.Log, 6)
	assert.Equal(t, "Pebble has been defeated! Drake wins!", sim.Log[5].Message)
}

func TestSimulateCommand_RewardScript(t *testing.T) {
	out, err := executeCommand("simulate", writeRoster(t), "drake", "pebble",
		"--scripts", filepath.Join("..", "..", "content", "scripts"))
	require.NoError(t, err)
	assert.Contains(t, out, "Reward: Battle Medal: Drake defeated Pebble")
}

func TestSimulateCommand_UnknownPet(t *testing.T) {
	_, err := executeCommand("simulate", writeRoster(t), "drake", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "selecting the opponent")
	assert.Contains(t, err.Error(), `"ghost"`)
}

func TestSimulateCommand_RequiresTwoPets(t *testing.T) {
	_, err := executeCommand("simulate", writeRoster(t), "drake")
	require.Error(t, err)
}

func TestStatsCommand_Table(t *testing.T) {
	out, err := executeCommand("stats", writeRoster(t))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "ATK")
	assert.Regexp(t, `Drake\s+Adult\s+100\s+100\s+110\s+39`, lines[1])
	assert.Regexp(t, `Pebble\s+Egg\s+0\s+0\s+20\s+10`, lines[2])
}

func TestSimulateCommand_BundledRoster(t *testing.T) {
	out, err := executeCommand("simulate", filepath.Join("..", "..", "content", "pets", "roster.yaml"), "pet-ember", "pet-bolt")
	require.NoError(t, err)
	assert.Contains(t, out, "Battle start! Ember vs Bolt!")
}

func TestRecordCommand_RejectsBadAddress(t *testing.T) {
	_, err := executeCommand("record", "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validating address")
}
