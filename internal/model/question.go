package model

import "time"

// ChoiceCount is the fixed number of choices every question carries.
const ChoiceCount = 4

// Question is a multiple-choice quiz question with exactly four choices.
type Question struct {
	ID                 string           `json:"question_id"`
	Text               string           `json:"question_text"`
	ImagePath          *string          `json:"question_image,omitempty"`
	CorrectChoiceIndex int              `json:"correct_choice_index"`
	IsEnabled          bool             `json:"is_enabled"`
	SortOrder          int              `json:"sort_order"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Choices            []QuestionChoice `json:"choices"`
}

// QuestionChoice is a single selectable option, ordered by ChoiceIndex.
type QuestionChoice struct {
	ID          string  `json:"-"`
	QuestionID  string  `json:"-"`
	ChoiceIndex int     `json:"choice_index"`
	Text        string  `json:"text"`
	ImagePath   *string `json:"image,omitempty"`
}

// QuestionPublic is the participant-facing view of a question. The correct
// choice index is withheld until the admin reveals it.
type QuestionPublic struct {
	QuestionID         string           `json:"question_id"`
	Text               string           `json:"question_text"`
	ImagePath          *string          `json:"question_image,omitempty"`
	Choices            []QuestionChoice `json:"choices"`
	CorrectChoiceIndex *int             `json:"correct_choice_index,omitempty"`
}

// Public renders the participant view. includeAnswer controls whether the
// correct choice index is exposed (post-reveal only).
func (q *Question) Public(includeAnswer bool) QuestionPublic {
	pub := QuestionPublic{
		QuestionID: q.ID,
		Text:       q.Text,
		ImagePath:  q.ImagePath,
		Choices:    q.Choices,
	}
	if includeAnswer {
		correct := q.CorrectChoiceIndex
		pub.CorrectChoiceIndex = &correct
	}
	return pub
}
