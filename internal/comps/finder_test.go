package comps

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricing-cli/internal/geo"
	"github.com/sells-group/pricing-cli/internal/model"
)

func ptr(v float64) *float64 { return &v }

// record places a centre latOffset degrees north of the test origin, so
// larger offsets are strictly farther away.
func record(id string, latOffset, price float64) model.CentreRecord {
	return model.CentreRecord{
		CentreID:  id,
		Region:    "USA",
		Latitude:  ptr(40.0 + latOffset),
		Longitude: ptr(-74.0),
		Price:     ptr(price),
	}
}

var origin = model.Coordinates{Latitude: 40.0, Longitude: -74.0}

func TestFind_ScenarioAverageOneHundred(t *testing.T) {
	// Five centres at increasing distances with prices averaging 100.
	refs := []model.CentreRecord{
		record("C1", 0.01, 100),
		record("C2", 0.02, 120),
		record("C3", 0.03, 110),
		record("C4", 0.04, 90),
		record("C5", 0.05, 80),
	}

	res, err := Find(origin, refs, Options{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	assert.Equal(t, 5, res.WindowSize)
	assert.Equal(t, 100.0, res.AveragePrice)

	// Nearest centre: price equals the average exactly.
	first := res.Entries[0]
	assert.Equal(t, "C1", first.CentreID)
	assert.Equal(t, QualitySame, first.Quality)
	assert.Equal(t, DiffSameAsAverage, first.DiffLabel)
	assert.Equal(t, geo.FormatMiles(first.Distance), first.DistanceLabel)
	assert.True(t, first.Populated)

	// Second nearest: 20% above average, higher quality.
	second := res.Entries[1]
	assert.Equal(t, "C2", second.CentreID)
	assert.Equal(t, QualityHigher, second.Quality)
	assert.Equal(t, "20.0% higher", second.DiffLabel)
	assert.GreaterOrEqual(t, second.Distance, first.Distance)
}

func TestFind_LowerPriceIsLesserQuality(t *testing.T) {
	refs := []model.CentreRecord{
		record("LOW", 0.01, 50),
		record("HIGH", 0.02, 150),
	}

	res, err := Find(origin, refs, Options{})
	require.NoError(t, err)

	// avg = 100; nearest is 50% below.
	assert.Equal(t, QualityLesser, res.Entries[0].Quality)
	assert.Equal(t, "50.0% lower", res.Entries[0].DiffLabel)
	assert.Equal(t, QualityHigher, res.Entries[1].Quality)
	assert.Equal(t, "50.0% higher", res.Entries[1].DiffLabel)
}

func TestFind_WindowCappedAtFiveNearest(t *testing.T) {
	// The sixth, farthest centre has an extreme price that must not
	// contaminate the average.
	refs := []model.CentreRecord{
		record("C1", 0.01, 100),
		record("C2", 0.02, 100),
		record("C3", 0.03, 100),
		record("C4", 0.04, 100),
		record("C5", 0.05, 100),
		record("FAR", 1.0, 100000),
	}

	res, err := Find(origin, refs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, res.WindowSize)
	assert.Equal(t, 100.0, res.AveragePrice)
}

func TestFind_SinglePointPadsSecondSlot(t *testing.T) {
	refs := []model.CentreRecord{record("ONLY", 0.01, 250)}

	res, err := Find(origin, refs, Options{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	assert.Equal(t, 1, res.WindowSize)
	assert.Equal(t, 250.0, res.AveragePrice)
	assert.Equal(t, QualitySame, res.Entries[0].Quality)

	// Second slot present but blank.
	second := res.Entries[1]
	assert.False(t, second.Populated)
	assert.Empty(t, second.CentreID)
	assert.Empty(t, second.DistanceLabel)
	assert.Empty(t, second.Quality)
	assert.Empty(t, second.DiffLabel)
}

func TestFind_ExcludesSentinelAndIncompleteRecords(t *testing.T) {
	refs := []model.CentreRecord{
		{CentreID: "ZERO", Latitude: ptr(0), Longitude: ptr(0), Price: ptr(10)},
		{CentreID: "ZLAT", Latitude: ptr(0), Longitude: ptr(-74.0), Price: ptr(10)},
		{CentreID: "ZLON", Latitude: ptr(40.0), Longitude: ptr(0), Price: ptr(10)},
		{CentreID: "NOPRICE", Latitude: ptr(40.01), Longitude: ptr(-74.0)},
		{CentreID: "NOCOORD", Price: ptr(10)},
		record("GOOD", 0.01, 100),
	}

	res, err := Find(origin, refs, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.WindowSize)
	assert.Equal(t, "GOOD", res.Entries[0].CentreID)
}

func TestFind_EmptyAfterFiltering(t *testing.T) {
	refs := []model.CentreRecord{
		{CentreID: "ZERO", Latitude: ptr(0), Longitude: ptr(0), Price: ptr(10)},
	}

	_, err := Find(origin, refs, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoReferenceData)
}

func TestFind_DistancesMonotonic(t *testing.T) {
	refs := []model.CentreRecord{
		record("A", 0.05, 100),
		record("B", 0.01, 100),
		record("C", 0.03, 100),
		record("D", 0.02, 100),
	}

	res, err := Find(origin, refs, Options{Report: 4})
	require.NoError(t, err)
	for i := 1; i < len(res.Entries); i++ {
		assert.GreaterOrEqual(t, res.Entries[i].Distance, res.Entries[i-1].Distance)
	}
	assert.Equal(t, "B", res.Entries[0].CentreID)
}

func TestFind_Idempotent(t *testing.T) {
	refs := []model.CentreRecord{
		record("C1", 0.01, 100),
		record("C2", 0.02, 120),
		record("C3", 0.03, 110),
	}

	first, err := Find(origin, refs, Options{})
	require.NoError(t, err)
	second, err := Find(origin, refs, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFind_CustomWindowAndReport(t *testing.T) {
	refs := []model.CentreRecord{
		record("C1", 0.01, 90),
		record("C2", 0.02, 110),
		record("C3", 0.03, 400),
	}

	res, err := Find(origin, refs, Options{Window: 2, Report: 1})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, 2, res.WindowSize)
	assert.Equal(t, 100.0, res.AveragePrice)
	assert.Equal(t, "10.0% lower", res.Entries[0].DiffLabel)
}
