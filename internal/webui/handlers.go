package webui

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/ziadkadry99/contractqa/internal/backend"
	"github.com/ziadkadry99/contractqa/internal/viewer"
)

type errorResponse struct {
	Error  string         `json:"error"`
	Notice *viewer.Notice `json:"notice,omitempty"`
}

func (u *UI) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxUpload)

	f := &viewer.File{}
	file, hdr, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "reading upload: " + err.Error()})
			return
		}
		f.Name, f.Data = hdr.Filename, data
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// Leave f empty; the controller reports the missing file.
	default:
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "parsing upload: " + err.Error()})
		return
	}

	if err := u.controller.Upload(r.Context(), f); err != nil {
		writeJSON(w, uploadStatus(err), uploadError(err))
		return
	}
	writeJSON(w, http.StatusOK, u.controller.Session())
}

func uploadStatus(err error) int {
	var inputErr *viewer.InputError
	var statusErr *backend.StatusError
	switch {
	case errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &statusErr), errors.Is(err, backend.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func uploadError(err error) errorResponse {
	var inputErr *viewer.InputError
	if errors.As(err, &inputErr) {
		n := inputErr.Notice()
		return errorResponse{Error: inputErr.Message, Notice: &n}
	}
	return errorResponse{Error: err.Error()}
}

func (u *UI) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, u.controller.Session())
}

func (u *UI) handleCanvas(w http.ResponseWriter, r *http.Request) {
	if u.frame.Empty() {
		http.Error(w, "no page rendered", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := u.frame.EncodePNG(w); err != nil {
		u.logger.Warn("encoding canvas", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
