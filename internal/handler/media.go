package handler

import (
	"io"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
)

var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// GetMedia handles GET /media/*, streaming a stored photo.
// Photo keys change on every upload (or carry a version query), so responses
// may be cached for a long time.
func (s *Server) GetMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	rc, err := s.media.Open(r.Context(), key)
	if err != nil {
		s.respondError(w, r, err, "photo")
		return
	}
	defer rc.Close()

	ct, ok := mediaTypes[path.Ext(key)]
	if !ok {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		s.log.WarnContext(r.Context(), "media stream interrupted", "key", key, "error", err)
	}
}
