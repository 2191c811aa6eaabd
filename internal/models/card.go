package models

import "time"

// CreatedDateLayout is the short date stamped on new cards (e.g. 10/18/2026)
const CreatedDateLayout = "1/2/2006"

// Card is a single question/answer study unit.
// JSON field names match the persisted storage record and the export file.
type Card struct {
	ID           int64  `json:"id"`
	Category     string `json:"category"`
	Difficulty   string `json:"difficulty"`
	Question     string `json:"question"`
	Answer       string `json:"answer"`
	Created      string `json:"created"`
	TimesStudied int    `json:"timesStudied"`
}

// CreatedDate formats t the way new cards record their creation date
func CreatedDate(t time.Time) string {
	return t.Format(CreatedDateLayout)
}

// Face is the side of a card currently shown
type Face int

const (
	FaceQuestion Face = iota
	FaceAnswer
)

func (f Face) String() string {
	if f == FaceAnswer {
		return "answer"
	}
	return "question"
}

// Text returns the card text for the given face
func (c Card) Text(f Face) string {
	if f == FaceAnswer {
		return c.Answer
	}
	return c.Question
}
