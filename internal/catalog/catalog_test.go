package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogWater(t *testing.T) {
	c := Default()

	water, ok := c.Element("water")
	require.True(t, ok)
	assert.Equal(t, WaterElementID, water.ID)
	assert.Equal(t, "#00A9FF", water.Color)

	missions := c.Missions(WaterElementID)
	require.Len(t, missions, 4)
	var costs []int64
	for i, m := range missions {
		assert.Equal(t, i+1, m.Order)
		costs = append(costs, m.LightCost)
		_, ok := c.Artifact(m.ArtifactID)
		assert.True(t, ok, "mission %s artifact must exist", m.ID)
	}
	assert.Equal(t, []int64{0, 100, 150, 200}, costs)
}

func TestFirstMissionGrantsPearl(t *testing.T) {
	a, ok := Default().ArtifactForMission(FirstWaterMissionID)
	require.True(t, ok)
	assert.Equal(t, "Жемчужина Чуткости", a.Name)
	assert.EqualValues(t, 10, a.LightValue)
}

func TestNextMission(t *testing.T) {
	c := Default()
	next, ok := c.NextMission(FirstWaterMissionID)
	require.True(t, ok)
	assert.Equal(t, 2, next.Order)

	last := c.Missions(WaterElementID)[3]
	_, ok = c.NextMission(last.ID)
	assert.False(t, ok)

	_, ok = c.NextMission("missing")
	assert.False(t, ok)
}

func TestTotalSteps(t *testing.T) {
	c := Default()
	m, _ := c.Mission(FirstWaterMissionID)
	assert.Equal(t, 5, m.TotalSteps())
	m, _ = c.Mission("b2e3f8a0-cb3a-4c9c-8f1a-6d5b7a8e9c0e")
	assert.Equal(t, 6, m.TotalSteps())
	m, _ = c.Mission("c3e4f9a1-db4a-5c9d-9f2a-7d6b8a9e0c1f")
	assert.Equal(t, 5, m.TotalSteps())
}

func TestUnknownArtifactPlaceholder(t *testing.T) {
	a := Default().ArtifactOrUnknown("nope")
	assert.Equal(t, "Unknown Artifact", a.Name)
	assert.Equal(t, "nope", a.ID)
}

func TestFreeMissionIDs(t *testing.T) {
	assert.Equal(t, []string{FirstWaterMissionID}, Default().FreeMissionIDs())
}

func TestElementsOrdered(t *testing.T) {
	els := Default().Elements()
	require.Len(t, els, 4)
	assert.Equal(t, "water", els[0].Slug)
	assert.Equal(t, "earth", els[3].Slug)
	_, ok := Default().Element(FireElementID)
	assert.True(t, ok)
}
