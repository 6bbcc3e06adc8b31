package server

import (
	"encoding/json"
	"errors"
	"fmt"
	stdimage "image"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jmylchreest/palettevision/internal/colour"
	"github.com/jmylchreest/palettevision/internal/image"
	"github.com/jmylchreest/palettevision/internal/version"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// base64Request is the body of POST /dominant-colors/base64. Absent fields,
// and zero k or top_n, take the server defaults.
type base64Request struct {
	ImageBase64       string  `json:"image_base64"`
	Format            *string `json:"format"`
	Algorithm         *string `json:"algorithm"`
	K                 *int    `json:"k"`
	TopN              *int    `json:"top_n"`
	IncludePercentage *bool   `json:"include_percentage"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/healthz", http.StatusTemporaryRedirect)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Version: version.Short()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.loader.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge, s.tooLargeDetail("File"))
			return
		}
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.loader.MaxBytes()+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to read file: %v", err))
		return
	}
	if len(data) == 0 {
		s.writeError(w, http.StatusBadRequest, "Empty file")
		return
	}
	if int64(len(data)) > s.loader.MaxBytes() {
		s.writeError(w, http.StatusRequestEntityTooLarge, s.tooLargeDetail("File"))
		return
	}

	opts, err := s.formOptions(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, err := s.loader.Decode(data)
	if err != nil {
		s.writeExtractError(w, err)
		return
	}
	s.extract(w, r, img, opts)
}

func (s *Server) handleBase64(w http.ResponseWriter, r *http.Request) {
	// Base64 inflates the payload by a third.
	r.Body = http.MaxBytesReader(w, r.Body, s.loader.MaxBytes()*4/3+multipartOverhead)

	var req base64Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, http.StatusRequestEntityTooLarge, s.tooLargeDetail("Image"))
			return
		}
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.ImageBase64 == "" {
		s.writeError(w, http.StatusBadRequest, "image_base64 is required")
		return
	}

	opts := s.defaults
	if req.Format != nil && *req.Format != "" {
		opts.Format = colour.Format(*req.Format)
	}
	if req.Algorithm != nil && *req.Algorithm != "" {
		opts.Algorithm = colour.Algorithm(*req.Algorithm)
	}
	if req.K != nil && *req.K != 0 {
		opts.K = *req.K
	}
	if req.TopN != nil && *req.TopN != 0 {
		opts.TopN = *req.TopN
	}
	if req.IncludePercentage != nil {
		opts.IncludePercentage = *req.IncludePercentage
	}
	opts, err := opts.Normalize()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	img, err := s.loader.DecodeBase64(req.ImageBase64)
	if err != nil {
		s.writeExtractError(w, err)
		return
	}
	s.extract(w, r, img, opts)
}

func (s *Server) extract(w http.ResponseWriter, r *http.Request, img stdimage.Image, opts colour.Options) {
	result, err := s.extractor.ExtractImage(r.Context(), img, opts)
	if err != nil {
		s.writeExtractError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// formOptions reads the extraction options from multipart form fields.
func (s *Server) formOptions(r *http.Request) (colour.Options, error) {
	opts := s.defaults
	if v := r.FormValue("format"); v != "" {
		opts.Format = colour.Format(v)
	}
	if v := r.FormValue("algorithm"); v != "" {
		opts.Algorithm = colour.Algorithm(v)
	}
	if v := r.FormValue("k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%w: k must be an integer, got %q", colour.ErrInvalidOption, v)
		}
		opts.K = k
	}
	if v := r.FormValue("top_n"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%w: top_n must be an integer, got %q", colour.ErrInvalidOption, v)
		}
		opts.TopN = n
	}
	if v := r.FormValue("include_percentage"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return opts, err
		}
		opts.IncludePercentage = b
	}
	return opts.Normalize()
}

// parseBool accepts the boolean spellings common in HTML forms.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	}
	return false, fmt.Errorf("%w: include_percentage must be a boolean, got %q", colour.ErrInvalidOption, v)
}

// statusFor maps an extraction pipeline error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, image.ErrTooLarge),
		errors.Is(err, image.ErrTooManyPixels):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, image.ErrEmptyImage),
		errors.Is(err, image.ErrInvalidBase64),
		errors.Is(err, image.ErrInvalidDataURL),
		errors.Is(err, image.ErrUndecodable),
		errors.Is(err, colour.ErrInvalidOption),
		errors.Is(err, colour.ErrEmptyInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeExtractError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("extraction failed", "error", err)
		detail = fmt.Sprintf("Color extraction failed: %v", err)
	}
	s.writeError(w, status, detail)
}

func (s *Server) tooLargeDetail(what string) string {
	limit := s.loader.MaxBytes()
	if limit%(1<<20) == 0 {
		return fmt.Sprintf("%s size exceeds %d MB limit", what, limit>>20)
	}
	return fmt.Sprintf("%s size exceeds %d byte limit", what, limit)
}

func (s *Server) writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
