package archive

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/flatwatch/flatwatch/internal/config"
	offerdomain "github.com/flatwatch/flatwatch/internal/offer/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOffers() []offerdomain.Offer {
	return []offerdomain.Offer{
		{
			ID:            "1",
			Price:         300,
			OriginalPrice: "300 dollars",
			Lat:           20,
			Lon:           30,
			Rooms:         1,
			Address:       "street name, 12",
			URL:           "https://www.example.com/1",
		},
		{
			ID:            "2",
			Price:         400,
			OriginalPrice: "400 dollars",
			Lat:           21,
			Lon:           31,
			Rooms:         2,
			Address:       "street name, 13",
			URL:           "https://www.example.com/2",
		},
	}
}

func TestAppend_WritesOneLinePerOffer(t *testing.T) {
	dir := t.TempDir()
	a := New(config.Config{DataDir: dir})

	snapTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	require.NoError(t, a.Append("city1", sampleOffers(), snapTime, now))

	f, err := os.Open(filepath.Join(dir, "2024-05.jsonl"))
	require.NoError(t, err)
	defer f.Close()

	var lines []Line
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line Line
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, lines, 2)
	assert.Equal(t, "city1", lines[0].Provider)
	assert.Equal(t, "2024-05-01T12:00:00Z", lines[0].TS)
	assert.Equal(t, "1", lines[0].ID)
	assert.Equal(t, float64(300), lines[0].Price)
	assert.Equal(t, "2", lines[1].ID)
}

func TestAppend_AccumulatesWithinTheMonth(t *testing.T) {
	dir := t.TempDir()
	a := New(config.Config{DataDir: dir})

	snapTime := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, a.Append("city1", sampleOffers()[:1], snapTime, snapTime))
	require.NoError(t, a.Append("city2", sampleOffers()[1:], snapTime.Add(24*time.Hour), snapTime.Add(24*time.Hour)))

	data, err := os.ReadFile(filepath.Join(dir, "2024-05.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
	assert.Contains(t, string(data), `"provider":"city1"`)
	assert.Contains(t, string(data), `"provider":"city2"`)
}

func TestAppend_SplitsByMonth(t *testing.T) {
	dir := t.TempDir()
	a := New(config.Config{DataDir: dir})

	may := time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)
	june := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	require.NoError(t, a.Append("city1", sampleOffers()[:1], may, may))
	require.NoError(t, a.Append("city1", sampleOffers()[1:], june, june))

	_, err := os.Stat(filepath.Join(dir, "2024-05.jsonl"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "2024-06.jsonl"))
	assert.NoError(t, err)
}

func TestAppend_NoFileForEmptySnapshot(t *testing.T) {
	dir := t.TempDir()
	a := New(config.Config{DataDir: dir})

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, a.Append("city1", nil, now, now))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStamps(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-05", MonthlyStamp(ts))
	assert.Equal(t, "2024-05-01", DailyStamp(ts))
}
