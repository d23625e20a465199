package models

// Topic groups presets by curriculum area (e.g., written-addition, algebra-basics)
type Topic struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Grade        int    `json:"grade,omitempty"`
	PresetsCount int    `json:"presetsCount"`
}

// Preset is a ready-made problem configuration for one engine
type Preset struct {
	ID          string         `json:"id"`   // "written-addition/two-carries"
	Code        string         `json:"code"` // "two-carries"
	TopicID     string         `json:"topicId"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	EngineID    string         `json:"engineId"`
	Params      map[string]any `json:"params"`
	Difficulty  string         `json:"difficulty"` // easy | medium | hard
	Skills      []string       `json:"skills"`
}
