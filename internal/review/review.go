// Package review assembles the quiz-review payload from four upstream
// resources that are keyed inconsistently: questions and answers by note id,
// the test record by its own generated id. The two id schemes are not
// guaranteed consistent upstream, so resolution is best effort with one
// explicit fallback per fetch.
package review

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/quickie-study/quickie/internal/upstream"
)

// Fetcher is the slice of the upstream client the aggregator needs.
type Fetcher interface {
	ListQuizzes(ctx context.Context, access string) ([]upstream.Quiz, error)
	QuizDetail(ctx context.Context, access, id string) (json.RawMessage, error)
	QuestionsByNote(ctx context.Context, access, noteID string) ([]upstream.Question, error)
	ChoicesByQuestion(ctx context.Context, access, questionID string) (json.RawMessage, error)
	AnswersByNote(ctx context.Context, access, noteID string) (json.RawMessage, error)
}

// Result is the composed review payload.
type Result struct {
	UserTest          json.RawMessage            `json:"userTest"`
	Questions         []upstream.Question        `json:"questions"`
	ChoicesByQuestion map[string]json.RawMessage `json:"choicesByQuestion"`
	AnswersByNote     json.RawMessage            `json:"answersByNote"`
}

// emptyList is what a failed choice fetch degrades to.
var emptyList = json.RawMessage("[]")

// ResolveTestID scans the user's quiz list for an entry whose note reference
// matches noteID and adopts that entry's own id as the test id. When nothing
// matches, the note id itself is used as the test id.
func ResolveTestID(quizzes []upstream.Quiz, noteID string) string {
	for _, q := range quizzes {
		if ref := q.NoteRef(); ref != "" && ref == noteID {
			return q.ID.String()
		}
	}
	return noteID
}

// Build runs the aggregation. The test-detail fetch tries the resolved id
// first and retries once with the raw note id; the answers fetch does the
// mirror image. When the resolved id equals the note id there is nothing to
// fall back to, so each fetch is attempted exactly once.
func Build(ctx context.Context, f Fetcher, access, noteID string) (*Result, error) {
	quizzes, err := f.ListQuizzes(ctx, access)
	if err != nil {
		return nil, err
	}
	testID := ResolveTestID(quizzes, noteID)

	userTest, err := f.QuizDetail(ctx, access, testID)
	if err != nil && testID != noteID {
		log.Printf("[REVIEW] test detail by resolved id %s failed, retrying with note id %s: %v", testID, noteID, err)
		userTest, err = f.QuizDetail(ctx, access, noteID)
	}
	if err != nil {
		return nil, err
	}

	questions, err := f.QuestionsByNote(ctx, access, noteID)
	if err != nil {
		return nil, err
	}

	// Per-question choice fetches run in parallel, one goroutine each. A
	// failed branch degrades to an empty list instead of failing the build.
	choices := make(map[string]json.RawMessage, len(questions))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, q := range questions {
		wg.Add(1)
		go func(questionID string) {
			defer wg.Done()
			list, err := f.ChoicesByQuestion(ctx, access, questionID)
			if err != nil || len(list) == 0 {
				if err != nil {
					log.Printf("[REVIEW] choices for question %s failed: %v", questionID, err)
				}
				list = emptyList
			}
			mu.Lock()
			choices[questionID] = list
			mu.Unlock()
		}(q.ID)
	}
	wg.Wait()

	answers, err := f.AnswersByNote(ctx, access, noteID)
	if err != nil && testID != noteID {
		log.Printf("[REVIEW] answers by note id %s failed, retrying with test id %s: %v", noteID, testID, err)
		answers, err = f.AnswersByNote(ctx, access, testID)
	}
	if err != nil {
		return nil, err
	}

	if questions == nil {
		questions = []upstream.Question{}
	}
	return &Result{
		UserTest:          userTest,
		Questions:         questions,
		ChoicesByQuestion: choices,
		AnswersByNote:     answers,
	}, nil
}
