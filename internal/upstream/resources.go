package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// apiPrefix is the versioned prefix all domain resources live under.
const apiPrefix = "/api/v1"

// Quiz is one entry in the user's quiz (usertest) list. The upstream is
// inconsistent about the note reference: sometimes a bare id, sometimes a
// nested note object, so it stays raw until resolution time.
type Quiz struct {
	ID   json.Number     `json:"id"`
	Note json.RawMessage `json:"note"`
}

// NoteRef extracts the quiz's note reference as a string: a bare number or
// string id directly, or the id of a nested note object. Empty when the shape
// is unrecognized.
func (q Quiz) NoteRef() string {
	if len(q.Note) == 0 {
		return ""
	}
	var id json.Number
	if err := json.Unmarshal(q.Note, &id); err == nil {
		return id.String()
	}
	var s string
	if err := json.Unmarshal(q.Note, &s); err == nil {
		return s
	}
	var obj struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(q.Note, &obj); err == nil {
		return obj.ID.String()
	}
	return ""
}

// Question is one quiz question. The full upstream body is preserved for the
// client; only the id is pulled out for the per-question choice fan-out.
type Question struct {
	ID  string
	Raw json.RawMessage
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var head struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	q.ID = head.ID.String()
	q.Raw = append(q.Raw[:0], data...)
	return nil
}

func (q Question) MarshalJSON() ([]byte, error) {
	return q.Raw, nil
}

// PomodoroSettings is a row in the upstream's settings collection. The
// upstream only exposes it as a list, so callers resolve the row id first.
type PomodoroSettings struct {
	ID  string
	Raw json.RawMessage
}

func (p *PomodoroSettings) UnmarshalJSON(data []byte) error {
	var head struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	p.ID = head.ID.String()
	p.Raw = append(p.Raw[:0], data...)
	return nil
}

func (p PomodoroSettings) MarshalJSON() ([]byte, error) {
	return p.Raw, nil
}

// ListQuizzes fetches the authenticated user's quiz list.
func (c *Client) ListQuizzes(ctx context.Context, access string) ([]Quiz, error) {
	var quizzes []Quiz
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/usertest/", access, nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// QuizDetail fetches one quiz by id, body kept verbatim.
func (c *Client) QuizDetail(ctx context.Context, access, id string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/usertest/"+url.PathEscape(id)+"/", access, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// QuestionsByNote fetches the question list for a note. Questions are always
// keyed by note id upstream.
func (c *Client) QuestionsByNote(ctx context.Context, access, noteID string) ([]Question, error) {
	var questions []Question
	path := apiPrefix + "/questions/?note=" + url.QueryEscape(noteID)
	if err := c.do(ctx, http.MethodGet, path, access, nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// ChoicesByQuestion fetches the choice list for one question, body verbatim.
func (c *Client) ChoicesByQuestion(ctx context.Context, access, questionID string) (json.RawMessage, error) {
	var raw json.RawMessage
	path := apiPrefix + "/choices/?question=" + url.QueryEscape(questionID)
	if err := c.do(ctx, http.MethodGet, path, access, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// AnswersByNote fetches the answer list for a note, body verbatim.
func (c *Client) AnswersByNote(ctx context.Context, access, noteID string) (json.RawMessage, error) {
	var raw json.RawMessage
	path := apiPrefix + "/answers/?note=" + url.QueryEscape(noteID)
	if err := c.do(ctx, http.MethodGet, path, access, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// ListPomodoroSettings fetches the settings collection.
func (c *Client) ListPomodoroSettings(ctx context.Context, access string) ([]PomodoroSettings, error) {
	var settings []PomodoroSettings
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/pomodoro/settings/", access, nil, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}
