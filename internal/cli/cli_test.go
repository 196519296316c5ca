package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, name string, v any) string {
	t.Helper()
	var data []byte
	var err error
	switch filepath.Ext(name) {
	case ".json":
		data, err = json.Marshal(v)
	default:
		data, err = yaml.Marshal(v)
	}
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

type row = map[string]any

func streakRows() []row {
	return []row{
		{"user_id": "alice", "date": "2024-03-01", "mood_score": 1},
		{"user_id": "alice", "date": "2024-03-08", "mood_score": 0},
		{"user_id": "alice", "date": "2024-03-09", "mood_score": 2},
		{"user_id": "alice", "date": "2024-03-10", "mood_score": 1},
		{"user_id": "bob", "date": "2024-02-01", "mood_score": -1},
	}
}

func cycleRows() []row {
	var rows []row
	for _, start := range []string{"2024-01-01", "2024-01-29", "2024-02-26"} {
		for _, d := range consecutive(start, 5) {
			rows = append(rows, row{"date": d, "period": true})
		}
	}
	return rows
}

func consecutive(start string, n int) []string {
	first, err := time.Parse("2006-01-02", start)
	if err != nil {
		panic(err)
	}
	out := make([]string, n)
	for i := range out {
		out[i] = first.AddDate(0, 0, i).Format("2006-01-02")
	}
	return out
}

func TestStreaks_JSONOutput(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows())

	out, err := run(t, "streaks", "--file", path, "--user", "alice", "--today", "2024-03-10", "-o", "json")
	require.NoError(t, err)

	var got analytics.StreakInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Current)
	assert.Equal(t, 3, got.Longest)
	require.NotNil(t, got.LastCheckinDate)
	assert.Equal(t, "2024-03-10", *got.LastCheckinDate)
}

func TestStreaks_UserFilter(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows())

	out, err := run(t, "streaks", "--file", path, "--user", "bob", "--today", "2024-03-10", "-o", "json")
	require.NoError(t, err)

	var got analytics.StreakInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 0, got.Current)
	assert.Equal(t, 1, got.Longest)
}

func TestStreaks_Text(t *testing.T) {
	path := writeFile(t, "checkins.yaml", streakRows())

	out, err := run(t, "streaks", "-f", path, "--user", "alice", "--today", "2024-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Current streak: 3 days")
	assert.Contains(t, out, "Last check-in:  2024-03-10")
}

func TestCycle_YAMLInputText(t *testing.T) {
	path := writeFile(t, "periods.yml", cycleRows())

	out, err := run(t, "cycle", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Next period:    2024-03-25")
	assert.Contains(t, out, "Average cycle:  28 days")
}

func TestCycle_NotEnoughData(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows())

	out, err := run(t, "cycle", "--file", path, "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "null\n", out)
}

func TestTrends_YAMLOutput(t *testing.T) {
	path := writeFile(t, "checkins.json", []row{
		{"date": "2024-03-02", "energy_score": -1},
		{"date": "2024-03-01", "energy_score": 2},
	})

	out, err := run(t, "trends", "--file", path, "--today", "2024-03-10",
		"--metric", "energy", "--window", "2", "-o", "yaml")
	require.NoError(t, err)

	var got []analytics.MovingAveragePoint
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-01", got[0].Date)
	assert.InDelta(t, 2.0, got[0].Average, 1e-9)
	assert.InDelta(t, 0.5, got[1].Average, 1e-9)
}

func TestTrends_RangeExcludesOldCheckins(t *testing.T) {
	path := writeFile(t, "checkins.json", []row{
		{"date": "2023-01-01", "mood_score": 2},
		{"date": "2024-03-09", "mood_score": 1},
	})

	out, err := run(t, "trends", "--file", path, "--today", "2024-03-10", "--range", "7d", "-o", "json")
	require.NoError(t, err)

	var got []analytics.MovingAveragePoint
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03-09", got[0].Date)
}

func TestTrends_Errors(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows())

	_, err := run(t, "trends", "--file", path, "--metric", "happiness")
	assert.Error(t, err)

	_, err = run(t, "trends", "--file", path, "--window", "0")
	assert.Error(t, err)

	_, err = run(t, "trends", "--file", path, "--range", "fortnight")
	assert.Error(t, err)
}

func TestCorrelations_EmptyText(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows()[:1])

	out, err := run(t, "correlations", "--file", path, "--range", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "No correlations yet")
}

func TestCorrelations_EmptyJSONIsArray(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows()[:1])

	out, err := run(t, "correlations", "--file", path, "--range", "all", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestSummary_Text(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows())

	out, err := run(t, "summary", "--file", path, "--user", "alice", "--today", "2024-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "Range: 30d (4 check-ins)")
	assert.Contains(t, out, "Longest streak: 3 days")
	assert.Contains(t, out, "Not enough period data")
}

func TestEnvOverridesFlags(t *testing.T) {
	path := writeFile(t, "checkins.json", streakRows())
	t.Setenv("WELLCTL_FILE", path)
	t.Setenv("WELLCTL_OUTPUT", "json")
	t.Setenv("WELLCTL_TODAY", "2024-03-10")
	t.Setenv("WELLCTL_USER", "alice")

	out, err := run(t, "streaks")
	require.NoError(t, err)

	var got analytics.StreakInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 3, got.Current)
}

func TestInputErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(t *testing.T) []string
	}{
		{"no file", func(t *testing.T) []string { return []string{"streaks"} }},
		{"missing file", func(t *testing.T) []string {
			return []string{"streaks", "--file", filepath.Join(t.TempDir(), "nope.json")}
		}},
		{"unsupported extension", func(t *testing.T) []string {
			return []string{"streaks", "--file", writeFile(t, "checkins.csv", streakRows())}
		}},
		{"bad output", func(t *testing.T) []string {
			return []string{"streaks", "--file", writeFile(t, "c.json", streakRows()), "-o", "xml"}
		}},
		{"bad today", func(t *testing.T) []string {
			return []string{"streaks", "--file", writeFile(t, "c.json", streakRows()), "--today", "03/10/2024"}
		}},
		{"bad timezone", func(t *testing.T) []string {
			return []string{"streaks", "--file", writeFile(t, "c.json", streakRows()), "--timezone", "Mars/Olympus"}
		}},
		{"malformed stored date", func(t *testing.T) []string {
			return []string{"streaks", "--file", writeFile(t, "c.json", []row{{"date": "2024/03/10"}})}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args(t)...)
			assert.Error(t, err)
		})
	}
}
