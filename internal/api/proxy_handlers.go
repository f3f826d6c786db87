package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
)

const upstreamPrefix = "/api/v1"

// relay forwards the request body and access token to a fixed upstream path
// and mirrors the upstream status and body back verbatim.
func (api *Api) relay(w http.ResponseWriter, r *http.Request, method, path string) {
	if !api.requireUpstream(w) {
		return
	}
	token, ok := api.requireAccess(w, r)
	if !ok {
		return
	}

	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
	}

	status, data, err := api.upstream.DoRaw(r.Context(), method, path, token, body)
	if err != nil {
		log.Printf("[PROXY] %s %s failed: %v", method, path, err)
		writeMessage(w, http.StatusInternalServerError, genericServerError)
		return
	}
	writeRaw(w, status, data)
}

// checkExists normalizes "does this resource exist yet" lookups: any upstream
// failure or an empty list means {exists:false}, never an error, so a not-yet
// created resource doesn't read as a hard failure.
func (api *Api) checkExists(w http.ResponseWriter, r *http.Request, path string) {
	if !api.requireUpstream(w) {
		return
	}
	token, ok := api.requireAccess(w, r)
	if !ok {
		return
	}

	status, data, err := api.upstream.DoRaw(r.Context(), http.MethodGet, path, token, nil)
	if err != nil || status < 200 || status >= 300 {
		writeJSON(w, http.StatusOK, map[string]bool{"exists": false})
		return
	}

	var list []struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &list); err != nil || len(list) == 0 {
		writeJSON(w, http.StatusOK, map[string]bool{"exists": false})
		return
	}
	resp := map[string]interface{}{"exists": true}
	if id := rawIDString(list[0].ID); id != "" {
		resp["id"] = id
	}
	writeJSON(w, http.StatusOK, resp)
}

// rawIDString tolerates the upstream's mixed id encodings, bare numbers
// and strings both.
func rawIDString(raw json.RawMessage) string {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func pathParam(r *http.Request, name string) string {
	return url.PathEscape(chi.URLParam(r, name))
}

func queryParam(r *http.Request, name string) string {
	return url.QueryEscape(r.URL.Query().Get(name))
}

// Notes

func (api *Api) ListNotesHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodGet, upstreamPrefix+"/notes/")
}

func (api *Api) CreateNoteHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodPost, upstreamPrefix+"/notes/")
}

func (api *Api) NoteDetailHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodGet, upstreamPrefix+"/notes/"+pathParam(r, "id")+"/")
}

func (api *Api) UpdateNoteHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodPut, upstreamPrefix+"/notes/"+pathParam(r, "id")+"/")
}

func (api *Api) DeleteNoteHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodDelete, upstreamPrefix+"/notes/"+pathParam(r, "id")+"/")
}

// Flashcards

func (api *Api) ListFlashcardSetsHandler(w http.ResponseWriter, r *http.Request) {
	path := upstreamPrefix + "/flashcard-sets/"
	if note := queryParam(r, "note"); note != "" {
		path += "?note=" + note
	}
	api.relay(w, r, http.MethodGet, path)
}

func (api *Api) CreateFlashcardSetHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodPost, upstreamPrefix+"/flashcard-sets/")
}

func (api *Api) FlashcardSetDetailHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodGet, upstreamPrefix+"/flashcard-sets/"+pathParam(r, "id")+"/")
}

func (api *Api) DeleteFlashcardSetHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodDelete, upstreamPrefix+"/flashcard-sets/"+pathParam(r, "id")+"/")
}

func (api *Api) ListFlashcardsHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodGet, upstreamPrefix+"/flashcards/?set="+pathParam(r, "id"))
}

func (api *Api) CheckFlashcardSetHandler(w http.ResponseWriter, r *http.Request) {
	api.checkExists(w, r, upstreamPrefix+"/flashcard-sets/?note="+pathParam(r, "noteID"))
}

// Questions

func (api *Api) ListQuestionsHandler(w http.ResponseWriter, r *http.Request) {
	path := upstreamPrefix + "/questions/"
	if note := queryParam(r, "note"); note != "" {
		path += "?note=" + note
	}
	api.relay(w, r, http.MethodGet, path)
}

// Answers

func (api *Api) CheckAnswersHandler(w http.ResponseWriter, r *http.Request) {
	api.checkExists(w, r, upstreamPrefix+"/answers/?note="+pathParam(r, "noteID"))
}

// Quizzes

func (api *Api) CreateQuizHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodPost, upstreamPrefix+"/usertest/")
}

func (api *Api) SubmitQuizHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodPost, upstreamPrefix+"/usertest/submit/")
}

func (api *Api) QuizDetailHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodGet, upstreamPrefix+"/usertest/"+pathParam(r, "id")+"/")
}

func (api *Api) CheckQuizHandler(w http.ResponseWriter, r *http.Request) {
	api.checkExists(w, r, upstreamPrefix+"/usertest/?note="+pathParam(r, "noteID"))
}

// Achievements

func (api *Api) ListAchievementsHandler(w http.ResponseWriter, r *http.Request) {
	api.relay(w, r, http.MethodGet, upstreamPrefix+"/achievements/")
}

// Pomodoro. The upstream only exposes settings as a collection, so both
// routes resolve the single row's id from the list before the detail call.

func (api *Api) PomodoroSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}
	token, ok := api.requireAccess(w, r)
	if !ok {
		return
	}

	settings, err := api.upstream.ListPomodoroSettings(r.Context(), token)
	if err != nil {
		log.Printf("[PROXY] pomodoro settings list failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, genericServerError)
		return
	}
	if len(settings) == 0 {
		writeMessage(w, http.StatusNotFound, "No pomodoro settings found.")
		return
	}

	path := upstreamPrefix + "/pomodoro/settings/" + url.PathEscape(settings[0].ID) + "/"
	status, data, err := api.upstream.DoRaw(r.Context(), http.MethodGet, path, token, nil)
	if err != nil {
		log.Printf("[PROXY] pomodoro settings detail failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, genericServerError)
		return
	}
	writeRaw(w, status, data)
}

func (api *Api) UpdatePomodoroSettingsHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}
	token, ok := api.requireAccess(w, r)
	if !ok {
		return
	}

	settings, err := api.upstream.ListPomodoroSettings(r.Context(), token)
	if err != nil {
		log.Printf("[PROXY] pomodoro settings list failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, genericServerError)
		return
	}
	if len(settings) == 0 {
		writeMessage(w, http.StatusNotFound, "No pomodoro settings found.")
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	path := upstreamPrefix + "/pomodoro/settings/" + url.PathEscape(settings[0].ID) + "/"
	status, data, err := api.upstream.DoRaw(r.Context(), http.MethodPatch, path, token, body)
	if err != nil {
		log.Printf("[PROXY] pomodoro settings update failed: %v", err)
		writeMessage(w, http.StatusInternalServerError, genericServerError)
		return
	}
	writeRaw(w, status, data)
}
