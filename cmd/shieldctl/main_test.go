package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "shieldctl.yaml")
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestZeroRoot(t *testing.T) {
	out, err := run(t, "zero-root", "--height", "5")
	require.NoError(t, err)
	require.Contains(t, out, "root:   19712377064642672829441595136074946683621277828620209496774504837737984048981")
	require.Contains(t, out, "height: 5")

	out, err = run(t, "zero-root", "--height", "20")
	require.NoError(t, err)
	require.Contains(t, out, "root:   15019797232609675441998260052101280400536945603062888308240081994073687793470")
}

func TestPlanSend(t *testing.T) {
	out, err := run(t, "plan-send", "--target", "1200000000",
		"250000000", "1000000000", "100000000", "500000000")
	require.NoError(t, err)
	require.Contains(t, out, "selection: [1000000000, 500000000] (total 1500000000, change 300000000)")
	require.Contains(t, out, "staged plan: 2 steps, sending 1200000000")
	require.Contains(t, out, "2. 200000000 of note 500000000 (partial)")

	out, err = run(t, "plan-send", "--target", "1700000000", "--max-notes", "2",
		"250000000", "1000000000", "100000000", "500000000")
	require.NoError(t, err)
	require.Contains(t, out, "insufficient funds")

	_, err = run(t, "plan-send", "--target", "1", "--max-notes", "0", "5")
	require.ErrorContains(t, err, "max notes must be positive")

	_, err = run(t, "plan-send", "--target", "5", "abc")
	require.Error(t, err)
}

func TestPlanConsolidate(t *testing.T) {
	out, err := run(t, "plan-consolidate", "300")
	require.NoError(t, err)
	require.Contains(t, out, "notes: 300, batch: 8, rounds: 3")
	require.Contains(t, out, "round 1: 300 notes -> 38")
	require.Contains(t, out, "round 3: 5 notes -> 1")

	_, err = run(t, "plan-consolidate", "-3")
	require.Error(t, err)

	out, err = run(t, "plan-consolidate", "5", "--batch", "2")
	require.NoError(t, err)
	require.Contains(t, out, "notes: 5, batch: 2, rounds: 3")
	require.Contains(t, out, "round 3: 2 notes -> 1")

	// batches the consolidate circuit cannot take
	for _, batch := range []string{"1", "0", "-2", "9", "100"} {
		_, err = run(t, "plan-consolidate", "300", "--batch="+batch)
		require.ErrorContains(t, err, "batch must be in [2, 8]", batch)
	}
}

func TestVKParity(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.bin")
	b := filepath.Join(dir, "b.hex")
	c := filepath.Join(dir, "c.bin")
	blob := bytes.Repeat([]byte{0x11}, 40)
	require.NoError(t, os.WriteFile(a, blob, 0644))
	require.NoError(t, os.WriteFile(b, []byte(hexutil.Encode(blob)+"\n"), 0644))
	other := append([]byte(nil), blob...)
	other[7] ^= 1
	require.NoError(t, os.WriteFile(c, other, 0644))

	out, err := run(t, "vk-parity", a, b)
	require.NoError(t, err)
	require.Contains(t, out, "verifying keys match (40 bytes)")

	out, err = run(t, "vk-parity", a, c)
	require.Error(t, err)
	require.Contains(t, out, "first at [7]")
}
