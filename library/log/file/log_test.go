package file

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFileLog(t *testing.T) {
	dir := t.TempDir()
	logs := map[int]*Log{}
	for i := 0; i < 4; i++ {
		logs[i] = NewFileLog(filepath.Join(dir, fmt.Sprintf("match_%d.log", i)))
	}

	logs[0].WriteLog("[roll] color=%s dice=%d", "RED", 6)
	logs[0].WriteLog("[move] color=%s token=%d %d->%d", "RED", 0, -1, 0)
	for _, l := range logs {
		require.NoError(t, l.Close())
	}

	data, err := os.ReadFile(filepath.Join(dir, "match_0.log"))
	require.NoError(t, err)
	require.Contains(t, string(data), "[roll] color=RED dice=6")
	require.Contains(t, string(data), "[move] color=RED token=0 -1->0")
}
