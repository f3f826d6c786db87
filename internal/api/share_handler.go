package api

import (
	"log"
	"net/http"

	"github.com/quickie-study/quickie/internal/share"
)

// ShareQRHandler returns a study resource's public share link together with a
// base64 PNG QR code of it.
func (api *Api) ShareQRHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := api.requireAccess(w, r); !ok {
		return
	}

	kind := r.URL.Query().Get("kind")
	id := r.URL.Query().Get("id")

	shareURL, err := share.ShareURL(api.Config.SiteURL, kind, id)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Unknown resource to share.")
		return
	}

	qr, err := share.QRCodePNG(shareURL)
	if err != nil {
		log.Printf("[SHARE] QR generation for %s failed: %v", shareURL, err)
		writeMessage(w, http.StatusInternalServerError, genericServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": shareURL,
		"qr":  qr,
	})
}
