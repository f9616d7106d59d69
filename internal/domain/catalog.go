package domain

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

type Element struct {
	ID          string `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Emoji       string `json:"emoji"`
	Description string `json:"description"`
	Color       string `json:"color"`
	ImageURL    string `json:"image_url"`
	UnlockLevel int    `json:"unlock_level"`
	Order       int    `json:"order"`
}

type MissionStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Seconds     int    `json:"seconds"`
}

type Mission struct {
	ID              string        `json:"id"`
	ElementID       string        `json:"element_id"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Order           int           `json:"order"`
	DurationMinutes int           `json:"duration_minutes"`
	LightCost       int64         `json:"light_cost"`
	ArtifactID      string        `json:"artifact_id,omitempty"`
	Steps           []MissionStep `json:"steps"`
}

func (m Mission) TotalSteps() int {
	if len(m.Steps) == 0 {
		return DefaultTotalSteps
	}
	return len(m.Steps)
}

func (m Mission) Free() bool { return m.LightCost <= 0 }

type Artifact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Rarity      Rarity `json:"rarity"`
	ElementID   string `json:"element_id"`
	LightValue  int64  `json:"light_value"`
}
