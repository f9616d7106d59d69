// Package catalog holds the static content of the app: elements, missions
// and the artifacts they award.
package catalog

import (
	"sort"

	"alchemy_webapp/internal/domain"
)

const (
	WaterElementID = domain.DefaultElementID
	FireElementID  = "a1b2c3d4-e5f6-7890-1234-567890abcdef"
	AirElementID   = "b2c3d4e5-f6a7-8901-2345-678901bcdef0"
	EarthElementID = "c3d4e5f6-a7b8-9012-3456-789012cdef01"

	FirstWaterMissionID = "d9e3f8a0-cb3a-4c9c-8f1a-6d5b7a8e9c0d"
	PearlArtifactID     = "c1d2e3f4-a5b6-4c7d-8e9f-0a1b2c3d4e5f"
)

type Catalog struct {
	elements  []domain.Element
	missions  []domain.Mission
	artifacts map[string]domain.Artifact
}

// New indexes the given content; missions are kept sorted by element then order.
func New(elements []domain.Element, missions []domain.Mission, artifacts []domain.Artifact) *Catalog {
	c := &Catalog{
		elements:  append([]domain.Element(nil), elements...),
		missions:  append([]domain.Mission(nil), missions...),
		artifacts: make(map[string]domain.Artifact, len(artifacts)),
	}
	sort.SliceStable(c.elements, func(i, j int) bool { return c.elements[i].Order < c.elements[j].Order })
	sort.SliceStable(c.missions, func(i, j int) bool {
		if c.missions[i].ElementID != c.missions[j].ElementID {
			return c.missions[i].ElementID < c.missions[j].ElementID
		}
		return c.missions[i].Order < c.missions[j].Order
	})
	for _, a := range artifacts {
		c.artifacts[a.ID] = a
	}
	return c
}

func (c *Catalog) Elements() []domain.Element {
	return append([]domain.Element(nil), c.elements...)
}

// Element looks an element up by id or slug ("water").
func (c *Catalog) Element(idOrSlug string) (domain.Element, bool) {
	for _, e := range c.elements {
		if e.ID == idOrSlug || e.Slug == idOrSlug {
			return e, true
		}
	}
	return domain.Element{}, false
}

func (c *Catalog) Missions(elementID string) []domain.Mission {
	var out []domain.Mission
	for _, m := range c.missions {
		if m.ElementID == elementID {
			out = append(out, m)
		}
	}
	return out
}

func (c *Catalog) AllMissions() []domain.Mission {
	return append([]domain.Mission(nil), c.missions...)
}

func (c *Catalog) Mission(id string) (domain.Mission, bool) {
	for _, m := range c.missions {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Mission{}, false
}

func (c *Catalog) Artifact(id string) (domain.Artifact, bool) {
	a, ok := c.artifacts[id]
	return a, ok
}

// ArtifactOrUnknown never fails: ids missing from the catalog get a placeholder.
func (c *Catalog) ArtifactOrUnknown(id string) domain.Artifact {
	if a, ok := c.artifacts[id]; ok {
		return a
	}
	return domain.Artifact{
		ID:          id,
		Name:        "Unknown Artifact",
		Description: "Artifact not found",
		ImageURL:    "/images/artifacts/default.jpg",
		Rarity:      domain.RarityCommon,
	}
}

func (c *Catalog) ArtifactForMission(missionID string) (domain.Artifact, bool) {
	m, ok := c.Mission(missionID)
	if !ok || m.ArtifactID == "" {
		return domain.Artifact{}, false
	}
	return c.Artifact(m.ArtifactID)
}

// NextMission returns the mission after missionID within the same element.
func (c *Catalog) NextMission(missionID string) (domain.Mission, bool) {
	m, ok := c.Mission(missionID)
	if !ok {
		return domain.Mission{}, false
	}
	for _, next := range c.Missions(m.ElementID) {
		if next.Order > m.Order {
			return next, true
		}
	}
	return domain.Mission{}, false
}

// FreeMissionIDs - миссии, доступные без покупки
func (c *Catalog) FreeMissionIDs() []string {
	var ids []string
	for _, m := range c.missions {
		if m.Free() {
			ids = append(ids, m.ID)
		}
	}
	return ids
}
