package entities

// Level identifies one of the three nested levels of the anatomical
// topography hierarchy.
type Level int

const (
	LevelMacrogrouping Level = iota + 1
	LevelGroup
	LevelSite
)

// String returns the lowercase level name used in URLs and JSON.
func (l Level) String() string {
	switch l {
	case LevelMacrogrouping:
		return "macrogrouping"
	case LevelGroup:
		return "group"
	case LevelSite:
		return "site"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level. The second return value
// is false for unrecognized names.
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "macrogrouping":
		return LevelMacrogrouping, true
	case "group":
		return LevelGroup, true
	case "site":
		return LevelSite, true
	default:
		return 0, false
	}
}

// FilterNode is one node of the Macrogrouping > Group > Site hierarchy.
// Node IDs are dense handles assigned at build time, 1-based. ParentID
// is 0 for macrogroupings.
type FilterNode struct {
	ID       int32  `json:"id"`
	Level    Level  `json:"level"`
	Name     string `json:"name"`
	ParentID int32  `json:"parentId,omitempty"`
}

// TopographyRow is one raw row of the topography reference file: an
// ICD-O-3 code expression and the three hierarchy names it belongs to.
type TopographyRow struct {
	ICDO3         string `json:"icdo3"`
	Site          string `json:"site"`
	Group         string `json:"group"`
	Macrogrouping string `json:"macrogrouping"`
}
