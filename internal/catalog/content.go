package catalog

import "alchemy_webapp/internal/domain"

var defaultCatalog = New(builtinElements, builtinMissions, builtinArtifacts)

// Default returns the built-in content.
func Default() *Catalog { return defaultCatalog }

var builtinElements = []domain.Element{
	{
		ID:          WaterElementID,
		Slug:        "water",
		Name:        "Вода",
		Emoji:       "🌊",
		Description: "Принятие и понимание своих эмоций",
		Color:       "#00A9FF",
		ImageURL:    "/images/elements/water_card.png",
		UnlockLevel: 1,
		Order:       1,
	},
	{
		ID:          FireElementID,
		Slug:        "fire",
		Name:        "Огонь",
		Emoji:       "🔥",
		Description: "Трансформация и страсть",
		Color:       "#FF4500",
		ImageURL:    "/images/elements/fire_card.png",
		UnlockLevel: 5,
		Order:       2,
	},
	{
		ID:          AirElementID,
		Slug:        "air",
		Name:        "Воздух",
		Emoji:       "🌪️",
		Description: "Ясность мысли и легкость",
		Color:       "#87CEEB",
		ImageURL:    "/images/elements/air_card.png",
		UnlockLevel: 10,
		Order:       3,
	},
	{
		ID:          EarthElementID,
		Slug:        "earth",
		Name:        "Земля",
		Emoji:       "🌍",
		Description: "Стабильность и заземление",
		Color:       "#8B4513",
		ImageURL:    "/images/elements/earth_card.png",
		UnlockLevel: 15,
		Order:       4,
	},
}

var builtinMissions = []domain.Mission{
	{
		ID:              FirstWaterMissionID,
		ElementID:       WaterElementID,
		Title:           "Погружение",
		Description:     "Первая медитация. Вход в стихию воды.",
		Order:           1,
		DurationMinutes: 5,
		LightCost:       0,
		ArtifactID:      PearlArtifactID,
		Steps: []domain.MissionStep{
			{Title: "Интро", Description: "Вход в стихию Воды", Seconds: 30},
			{Title: "Дыхание", Description: "Техника расслабления", Seconds: 50},
			{Title: "Погружение", Description: "Визуализация воды", Seconds: 100},
			{Title: "Метафора тела", Description: "Работа с эмоциями", Seconds: 60},
			{Title: "Завершение", Description: "Закрепление состояния", Seconds: 60},
		},
	},
	{
		ID:              "b2e3f8a0-cb3a-4c9c-8f1a-6d5b7a8e9c0e",
		ElementID:       WaterElementID,
		Title:           "Растворение",
		Description:     "Освобождение от страхов и тревог через технику растворения.",
		Order:           2,
		DurationMinutes: 7,
		LightCost:       100,
		ArtifactID:      "c2d3e4f5-b6c7-4d8e-9f0a-1b2c3d4e5f60",
		Steps: []domain.MissionStep{
			{Title: "Вход в поток", Description: "Настройка на глубокое принятие", Seconds: 40},
			{Title: "Дыхание принятия", Description: "Осознанное дыхание для принятия себя", Seconds: 60},
			{Title: "Погружение в чувства", Description: "Работа с внутренними ощущениями", Seconds: 90},
			{Title: "Визуализация воды", Description: "Образ воды, растворяющей напряжение", Seconds: 60},
			{Title: "Аффирмации принятия", Description: "Повторение фраз принятия", Seconds: 80},
			{Title: "Завершение", Description: "Закрепление состояния спокойствия", Seconds: 90},
		},
	},
	{
		ID:              "c3e4f9a1-db4a-5c9d-9f2a-7d6b8a9e0c1f",
		ElementID:       WaterElementID,
		Title:           "Течение",
		Description:     "Глубокая практика принятия жизни такой, какая она есть.",
		Order:           3,
		DurationMinutes: 10,
		LightCost:       150,
		ArtifactID:      "c3d4e5f6-c7d8-4e9f-a01b-2c3d4e5f6071",
	},
	{
		ID:              "d4e5f0a2-ec5b-6d0e-0f3b-8e7c9b0f1d2g",
		ElementID:       WaterElementID,
		Title:           "Глубина",
		Description:     "Самая глубокая медитация стихии Воды.",
		Order:           4,
		DurationMinutes: 12,
		LightCost:       200,
		ArtifactID:      "c4d5e6f7-d8e9-4f0a-b12c-3d4e5f607182",
	},
}

var builtinArtifacts = []domain.Artifact{
	{
		ID:          PearlArtifactID,
		Name:        "Жемчужина Чуткости",
		Description: "Символ глубокого понимания эмоций и принятия себя.",
		ImageURL:    "/images/artifacts/pearl.jpg",
		Rarity:      domain.RarityCommon,
		ElementID:   WaterElementID,
		LightValue:  10,
	},
	{
		ID:          "c2d3e4f5-b6c7-4d8e-9f0a-1b2c3d4e5f60",
		Name:        "Кристалл Принятия",
		Description: "Кристалл эмпатии. Способность чувствовать связь с другими через принятие.",
		ImageURL:    "/images/artifacts/crystal.jpg",
		Rarity:      domain.RarityRare,
		ElementID:   WaterElementID,
		LightValue:  20,
	},
	{
		ID:          "c3d4e5f6-c7d8-4e9f-a01b-2c3d4e5f6071",
		Name:        "Лунный Камень",
		Description: "Камень внутренней мудрости. Дарует силу принимать жизнь и находить покой.",
		ImageURL:    "/images/artifacts/moonstone.jpg",
		Rarity:      domain.RarityEpic,
		ElementID:   WaterElementID,
		LightValue:  30,
	},
	{
		ID:          "c4d5e6f7-d8e9-4f0a-b12c-3d4e5f607182",
		Name:        "Морская Звезда",
		Description: "Символ регенерации. Помогает исцелить душевные раны и обрести целостность.",
		ImageURL:    "/images/artifacts/starfish.jpg",
		Rarity:      domain.RarityLegendary,
		ElementID:   WaterElementID,
		LightValue:  50,
	},
}
