package domain

// Segment is a contiguous run of dialogue text attributed to one voice.
type Segment struct {
	Voice string
	Text  string
}
