package models

// Answer payload shapes accepted by the scoring engine, one per gradable kind.
// Multiple choice answers are a single choice id (single-select) or a list of
// ids (multi-select); true/false answers are a plain bool.

type MultipleChoiceAnswer []string

type DragDropAnswer map[string][]string // zoneId -> itemIds

type HotspotClick struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type HotspotAnswer []HotspotClick

type GapFillAnswer []string // one entry per blank, in text order

type MatchAnswer map[string]string // left -> right
