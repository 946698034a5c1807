package poi

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricing-cli/internal/model"
)

var center = model.Coordinates{Latitude: 40.0, Longitude: -74.0}

// point places a named POI latOffset degrees north of center.
func point(name string, latOffset float64) Point {
	return Point{Name: name, Latitude: 40.0 + latOffset, Longitude: -74.0}
}

// scripted returns a QueryFunc serving canned results per radius and
// records the radii queried.
func scripted(results map[int][]Point, calls *[]int) QueryFunc {
	return func(_ context.Context, _ model.Coordinates, radius int) ([]Point, error) {
		*calls = append(*calls, radius)
		return results[radius], nil
	}
}

func TestFind_ExpandsUntilEnoughResults(t *testing.T) {
	var calls []int
	query := scripted(map[int][]Point{
		10000: {},
		20000: {point("Alpha", 0.03), point("Beta", 0.01), point("Gamma", 0.02)},
	}, &calls)

	spaces := Find(context.Background(), center, query, Options{StartRadius: 10000, Step: 10000, MaxRadius: 50000})

	// Exactly two queries: the empty first radius, then the productive one.
	assert.Equal(t, []int{10000, 20000}, calls)

	require.Len(t, spaces, 2)
	assert.Equal(t, "Beta", spaces[0].Name)
	assert.Equal(t, "Gamma", spaces[1].Name)
	assert.True(t, spaces[0].Found)
	assert.LessOrEqual(t, spaces[0].Distance, spaces[1].Distance)
}

func TestFind_StopsAtFirstRadiusWhenSatisfied(t *testing.T) {
	var calls []int
	query := scripted(map[int][]Point{
		10000: {point("Alpha", 0.01), point("Beta", 0.02)},
	}, &calls)

	spaces := Find(context.Background(), center, query, Options{})
	assert.Equal(t, []int{10000}, calls)
	assert.Equal(t, "Alpha", spaces[0].Name)
}

func TestFind_DedupKeepsClosestPerName(t *testing.T) {
	var calls []int
	query := scripted(map[int][]Point{
		10000: {point("Alpha", 0.05)},
		20000: {point("Alpha", 0.01), point("Beta", 0.03)},
	}, &calls)

	spaces := Find(context.Background(), center, query, Options{})
	require.Len(t, spaces, 2)
	assert.Equal(t, "Alpha", spaces[0].Name)
	assert.Equal(t, "Beta", spaces[1].Name)
	// Alpha's closer occurrence from the second round wins.
	assert.Less(t, spaces[0].Distance, spaces[1].Distance)
}

func TestFind_UnnamedPointsDiscarded(t *testing.T) {
	var calls []int
	query := scripted(map[int][]Point{
		10000: {{Latitude: 40.01, Longitude: -74.0}, point("Named", 0.02)},
	}, &calls)

	spaces := Find(context.Background(), center, query, Options{StartRadius: 10000, Step: 10000, MaxRadius: 10000})
	assert.Equal(t, "Named", spaces[0].Name)
	assert.Equal(t, NoSpaceFound, spaces[1].Name)
}

func TestFind_AllRadiiEmptyReturnsSentinels(t *testing.T) {
	var calls []int
	query := scripted(map[int][]Point{}, &calls)

	spaces := Find(context.Background(), center, query, Options{StartRadius: 10000, Step: 10000, MaxRadius: 30000})

	// Every radius up to the cap is tried.
	assert.Equal(t, []int{10000, 20000, 30000}, calls)

	require.Len(t, spaces, 2)
	for _, s := range spaces {
		assert.Equal(t, NoSpaceFound, s.Name)
		assert.Equal(t, 0.0, s.Distance)
		assert.False(t, s.Found)
	}
}

func TestFind_QueryErrorTreatedAsEmptyRadius(t *testing.T) {
	var calls []int
	query := func(_ context.Context, _ model.Coordinates, radius int) ([]Point, error) {
		calls = append(calls, radius)
		if radius == 10000 {
			return nil, eris.New("service unavailable")
		}
		return []Point{point("Alpha", 0.01), point("Beta", 0.02)}, nil
	}

	spaces := Find(context.Background(), center, query, Options{})
	assert.Equal(t, []int{10000, 20000}, calls)
	assert.Equal(t, "Alpha", spaces[0].Name)
	assert.True(t, spaces[1].Found)
}

func TestFind_SingleResultPaddedToTarget(t *testing.T) {
	var calls []int
	query := scripted(map[int][]Point{
		10000: {point("Only", 0.01)},
	}, &calls)

	spaces := Find(context.Background(), center, query, Options{StartRadius: 10000, Step: 10000, MaxRadius: 20000})
	require.Len(t, spaces, 2)
	assert.Equal(t, "Only", spaces[0].Name)
	assert.Equal(t, NoSpaceFound, spaces[1].Name)
}

func TestFind_TargetBoundsResultCount(t *testing.T) {
	var calls []int
	query := scripted(map[int][]Point{
		10000: {point("A", 0.01), point("B", 0.02), point("C", 0.03), point("D", 0.04)},
	}, &calls)

	spaces := Find(context.Background(), center, query, Options{Target: 3})
	require.Len(t, spaces, 3)
	assert.Equal(t, "A", spaces[0].Name)
	assert.Equal(t, "C", spaces[2].Name)
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	acc := map[string]Space{
		"Alpha": {Name: "Alpha", Distance: 5.0, Found: true},
	}
	out := merge(center, acc, []Point{point("Alpha", 0.01)})

	assert.Equal(t, 5.0, acc["Alpha"].Distance)
	assert.Less(t, out["Alpha"].Distance, 5.0)
}
