package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/model"
)

// RankingService computes standings from the answer ledger. Only accepted
// answers count: rejected rows sit in the ledger for auditing but never
// score.
type RankingService struct {
	events       EventStore
	participants ParticipantStore
	answers      AnswerStore
	log          zerolog.Logger
}

// NewRankingService creates a RankingService.
func NewRankingService(events EventStore, participants ParticipantStore, answers AnswerStore, log zerolog.Logger) *RankingService {
	return &RankingService{
		events:       events,
		participants: participants,
		answers:      answers,
		log:          log.With().Str("component", "ranking_service").Logger(),
	}
}

// RankingEntry is one row of the standings.
type RankingEntry struct {
	Rank          string `json:"rank"`
	UserID        string `json:"user_id"`
	DisplayName   string `json:"display_name"`
	DisplaySuffix string `json:"display_suffix"`
	CorrectCount  int    `json:"correct_count"`
	// UnansweredCount tallies the questions of the event's sequence this
	// participant never submitted for. A rejected submission is answered,
	// just not correct.
	UnansweredCount int `json:"unanswered_count"`
	// Accuracy is correct over the event's full question count, four
	// decimals. Zero when the event has no questions.
	Accuracy float64 `json:"accuracy"`
	// TotalTimeSec sums the response times of correct answers, one decimal.
	TotalTimeSec float64 `json:"total_time_sec"`
}

// RankingResult carries the standings plus the event state they describe.
type RankingResult struct {
	EventID string           `json:"event_id"`
	State   model.EventState `json:"state"`
	Entries []RankingEntry   `json:"rankings"`
}

// Calculate builds the standings: more correct answers rank higher, ties
// break on the lower summed response time over correct answers. Equal
// (correct, time) pairs share a rank and the following rank is skipped —
// competition ranking, 1-2-2-4. Every participant is scored against the
// event's full question sequence, so accuracy divides by the total question
// count, not by how many submissions the ledger holds.
func (s *RankingService) Calculate(ctx context.Context, eventID string) (*RankingResult, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	questionIDs, err := s.events.QuestionIDs(ctx, eventID)
	if err != nil {
		return nil, err
	}
	users, err := s.participants.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	type answerKey struct {
		questionID string
		userID     string
	}
	byKey := make(map[answerKey]model.Answer, len(answers))
	for _, a := range answers {
		byKey[answerKey{a.QuestionID, a.UserID}] = a
	}

	entries := make([]RankingEntry, 0, len(users))
	for _, u := range users {
		var correct, unanswered int
		var timeSum float64
		for _, qid := range questionIDs {
			a, ok := byKey[answerKey{qid, u.ID}]
			switch {
			case !ok:
				unanswered++
			case a.Accepted && a.IsCorrect != nil && *a.IsCorrect:
				correct++
				if a.ResponseTimeSec != nil {
					timeSum += *a.ResponseTimeSec
				}
			}
		}
		accuracy := 0.0
		if len(questionIDs) > 0 {
			accuracy = math.Round(float64(correct)/float64(len(questionIDs))*10000) / 10000
		}
		entries = append(entries, RankingEntry{
			UserID:          u.ID,
			DisplayName:     u.DisplayName,
			DisplaySuffix:   u.DisplaySuffix,
			CorrectCount:    correct,
			UnansweredCount: unanswered,
			Accuracy:        accuracy,
			TotalTimeSec:    math.Round(timeSum*10) / 10,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CorrectCount != entries[j].CorrectCount {
			return entries[i].CorrectCount > entries[j].CorrectCount
		}
		if entries[i].TotalTimeSec != entries[j].TotalTimeSec {
			return entries[i].TotalTimeSec < entries[j].TotalTimeSec
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})

	for i := range entries {
		if i > 0 && sameStanding(entries[i], entries[i-1]) {
			entries[i].Rank = entries[i-1].Rank
		} else {
			entries[i].Rank = fmt.Sprintf("%d", i+1)
		}
	}

	return &RankingResult{EventID: eventID, State: event.State, Entries: entries}, nil
}

func sameStanding(a, b RankingEntry) bool {
	return a.CorrectCount == b.CorrectCount && a.TotalTimeSec == b.TotalTimeSec
}

// csvBOM is the UTF-8 byte order mark. Excel mojibakes the export without
// it.
var csvBOM = []byte{0xEF, 0xBB, 0xBF}

// ExportCSV renders the standings as UTF-8 CSV with a leading BOM.
func (s *RankingService) ExportCSV(ctx context.Context, eventID string) ([]byte, error) {
	result, err := s.Calculate(ctx, eventID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(csvBOM)

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"rank", "display_name", "correct_count", "unanswered_count", "accuracy", "total_time_sec"}); err != nil {
		return nil, err
	}
	for _, e := range result.Entries {
		record := []string{
			e.Rank,
			fmt.Sprintf("%s#%s", e.DisplayName, e.DisplaySuffix),
			fmt.Sprintf("%d", e.CorrectCount),
			fmt.Sprintf("%d", e.UnansweredCount),
			// Spreadsheet-friendly percentage, one decimal.
			fmt.Sprintf("%.1f%%", e.Accuracy*100),
			fmt.Sprintf("%.1f", e.TotalTimeSec),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
