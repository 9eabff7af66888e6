package images

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/JaimeStill/unpdf/internal/output"
	"github.com/JaimeStill/unpdf/pkg/handlers"
	"github.com/JaimeStill/unpdf/pkg/routes"
)

// HeaderImageIndex carries the index of the returned image.
const HeaderImageIndex = "X-Image-Index"

// Handler provides HTTP endpoints for image extraction.
type Handler struct {
	sys    System
	cfg    Config
	logger *slog.Logger
}

// NewHandler creates a new images HTTP handler.
func NewHandler(sys System, cfg Config, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		cfg:    cfg,
		logger: logger.With("handler", "images"),
	}
}

// Routes returns the route configuration for image endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix:      "",
		Description: "Embedded image extraction",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/extract", Handler: h.Extract},
		},
	}
}

// Extract handles POST /extract. The request body is the document; the
// response is its first image that converts to the requested format. Images
// that fail to extract or convert are skipped, and X-Image-Index reports the
// discovery index of the image returned.
// Query parameters: format, quality, pages, policy.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	opts, err := h.options(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if h.cfg.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize)
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			err = fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, err)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	contentType := DetectContentType(r.Header.Get("Content-Type"), data)

	doc, err := OpenDocument(data, contentType)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer doc.Close()

	result, err := h.sys.First(r.Context(), doc, opts)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", result.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set(HeaderImageIndex, strconv.Itoa(result.Index))
	w.WriteHeader(http.StatusOK)

	sink := output.NewStreamSink(w)
	if err := sink.Emit(r.Context(), result.Index, result.Data, result.Ext); err != nil {
		h.logger.Error("response write failed", "index", result.Index, "error", err)
	}
}

func (h *Handler) options(r *http.Request) (Options, error) {
	opts := h.cfg.Defaults.withDefaults()
	q := r.URL.Query()

	if v := q.Get("format"); v != "" {
		format, err := ParseFormat(v)
		if err != nil {
			return opts, err
		}
		opts.Format = format
	}

	if v := q.Get("quality"); v != "" {
		quality, err := strconv.Atoi(v)
		if err != nil {
			return opts, fmt.Errorf("%w: quality %q is not a number", ErrInvalidFormat, v)
		}
		if opts.Format, err = opts.Format.WithQuality(quality); err != nil {
			return opts, err
		}
	}

	if v := q.Get("pages"); v != "" {
		opts.Pages = v
	}

	if v := q.Get("policy"); v != "" {
		policy, err := ParsePolicy(v)
		if err != nil {
			return opts, err
		}
		opts.Policy = policy
	}

	return opts, nil
}
