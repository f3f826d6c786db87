package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/quickie-study/quickie/internal/docs"
)

// maxUploadBytes caps document uploads at 25MB.
const maxUploadBytes = 25 << 20

// ExtractDocumentHandler runs an uploaded document through the
// conversion-then-OCR pipeline and returns the concatenated text.
func (api *Api) ExtractDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.requireAccess(w, r); !ok {
		return
	}
	if api.pipeline == nil {
		log.Printf("Error: document pipeline not configured")
		writeMessage(w, http.StatusInternalServerError, configErrorMessage)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "A file upload is required.")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "A file upload is required.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to read the uploaded file.")
		return
	}

	text, err := api.pipeline.Extract(r.Context(), header.Filename, header.Header.Get("Content-Type"), data)
	switch {
	case errors.Is(err, docs.ErrUnsupportedType):
		writeCode(w, http.StatusBadRequest, "UNSUPPORTED_TYPE", "That file type is not supported.")
		return
	case errors.Is(err, docs.ErrNoText):
		writeCode(w, http.StatusUnprocessableEntity, "NO_TEXT", "No text could be found in that document.")
		return
	case err != nil:
		log.Printf("[DOCS] extraction of %q failed: %v", header.Filename, err)
		writeMessage(w, http.StatusInternalServerError, "Failed to process the document.")
		return
	}

	jobID := uuid.NewString()
	if api.archive != nil {
		if key, err := api.archive.StoreExtraction(r.Context(), jobID, text); err != nil {
			log.Printf("[DOCS] archive of extraction %s failed: %v", jobID, err)
		} else {
			log.Printf("[DOCS] archived extraction %s as %s", jobID, key)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":   jobID,
		"text": text,
	})
}
