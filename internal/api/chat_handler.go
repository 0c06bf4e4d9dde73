package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	errx "github.com/Chative-core-poc-v1/intake/internal/core/error"
	"github.com/Chative-core-poc-v1/intake/internal/intake/validate"
	logx "github.com/Chative-core-poc-v1/intake/pkg/logger"
)

type chatRequest struct {
	CID     string `json:"cid"`
	Message string `json:"message"`
}

type chatResponse struct {
	CID      string   `json:"cid"`
	Stage    string   `json:"stage"`
	Messages []string `json:"messages"`
	Response string   `json:"response"`
}

type suggestItem struct {
	Name string `json:"name"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var (
		req        chatRequest
		attachment string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
		if err := r.ParseMultipartForm(s.maxUpload); err != nil {
			writeError(w, http.StatusBadRequest, fmt.Errorf("failed to parse upload form: %w", err))
			return
		}
		defer r.MultipartForm.RemoveAll()
		req.CID = r.FormValue("cid")
		req.Message = r.FormValue("message")

		file, header, err := r.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			writeError(w, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
			return
		default:
			defer file.Close()
			path, err := s.saveUpload(file, header)
			if err != nil {
				status := errx.StatusOf(err)
				writeError(w, status, err)
				return
			}
			attachment = path
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("decode chat request: %w", err))
			return
		}
	}

	res, err := s.intake.HandleTurn(r.Context(), req.CID, req.Message, attachment)
	if err != nil {
		writeError(w, errx.StatusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{
		CID:      res.CID,
		Stage:    string(res.Stage),
		Messages: res.Messages,
		Response: res.Response(),
	})
}

// saveUpload stores an allowed attachment under the upload dir with a random prefix.
func (s *Server) saveUpload(file multipart.File, header *multipart.FileHeader) (string, error) {
	if !validate.AllowedAttachment(header.Filename) {
		return "", errx.Input("Unsupported file type. Upload a PDF, image, DOCX or TXT file.")
	}
	name := uuid.NewString()[:8] + "_" + validate.SafeFilename(header.Filename)
	dest := filepath.Join(s.uploadDir, name)
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return "", errx.Internal(fmt.Errorf("create upload: %w", err))
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		_ = os.Remove(dest)
		return "", errx.Internal(fmt.Errorf("write upload: %w", err))
	}
	logx.Info().Str("path", dest).Int64("bytes", header.Size).Msg("Attachment stored")
	return dest, nil
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	names, err := s.intake.SuggestEntity(kind, r.URL.Query().Get("q"))
	if err != nil {
		writeError(w, errx.StatusOf(err), err)
		return
	}
	items := make([]suggestItem, 0, len(names))
	for _, n := range names {
		items = append(items, suggestItem{Name: n})
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
