package server

import (
	"net/http"

	"github.com/rasnovtravel/townhunt/internal/hunt"
	"github.com/rasnovtravel/townhunt/internal/progress"
)

// The site keeps hunt progress in browser storage with a cookie mirror.
// These handlers serve the mirror: saving refreshes the cookie, loading
// lets the site rebuild local state after storage loss.

func handleSaveProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p hunt.Progress
		if err := readJSON(r, &p); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if p.Username == "" {
			writeError(w, http.StatusBadRequest, "username is required")
			return
		}

		c, err := progress.BackupCookie(&p, r.TLS != nil)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		http.SetCookie(w, c)
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleLoadProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(progress.StorageKey)
		if err != nil {
			writeError(w, http.StatusNotFound, "no stored progress")
			return
		}
		p, err := progress.ParseBackupCookie(c)
		if err != nil {
			writeError(w, http.StatusNotFound, "no stored progress")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}
