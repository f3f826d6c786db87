package api

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quickie-study/quickie/internal/review"
)

// QuizReviewHandler assembles the review payload for a note's quiz: the test
// record, its questions, each question's choices and the user's answers, all
// in one response.
func (api *Api) QuizReviewHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}
	token, ok := api.requireAccess(w, r)
	if !ok {
		return
	}

	noteID := chi.URLParam(r, "noteID")
	result, err := review.Build(r.Context(), api.upstream, token, noteID)
	if err != nil {
		log.Printf("[REVIEW] build for note %s failed: %v", noteID, err)
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
