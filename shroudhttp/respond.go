package shroudhttp

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/zoobzio/shroud"
)

// ErrUnsupportedMediaType is returned by Decode for an unknown Content-Type.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// DefaultMaxBodySize bounds request bodies read by Decode.
const DefaultMaxBodySize = 1 << 20

// Responder encodes responses with the codec the client accepts, masked for
// the caller in the request context.
type Responder struct {
	codecs  []shroud.Codec
	opts    []shroud.Option
	logger  *slog.Logger
	maxBody int64
}

// NewResponder creates a Responder. The first codec is the default when the
// client states no preference.
func NewResponder(logger *slog.Logger, codecs []shroud.Codec, opts ...shroud.Option) *Responder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Responder{
		codecs:  codecs,
		opts:    opts,
		logger:  logger,
		maxBody: DefaultMaxBodySize,
	}
}

// Negotiate picks the codec for an Accept header value.
// Returns false when the header names nothing this responder can produce.
func (rs *Responder) Negotiate(accept string) (shroud.Codec, bool) {
	if len(rs.codecs) == 0 {
		return nil, false
	}
	if strings.TrimSpace(accept) == "" {
		return rs.codecs[0], true
	}
	for _, want := range parseAccept(accept) {
		for _, c := range rs.codecs {
			if matchMediaType(want, c.ContentType()) {
				return c, true
			}
		}
	}
	return nil, false
}

// Respond masks v for the caller and writes it with the negotiated codec.
func (rs *Responder) Respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	codec, ok := rs.Negotiate(r.Header.Get("Accept"))
	if !ok {
		writeError(w, http.StatusNotAcceptable, "not acceptable")
		return
	}

	data, err := shroud.Marshal(r.Context(), codec, v, rs.opts...)
	if err != nil {
		rs.logger.Error("encode response",
			slog.String("path", r.URL.Path),
			slog.String("content_type", codec.ContentType()),
			slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", codec.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		rs.logger.Warn("write response", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
}

// Error writes a JSON error body.
func (rs *Responder) Error(w http.ResponseWriter, status int, msg string) {
	writeError(w, status, msg)
}

// Decode reads the request body into v using the codec matching its
// Content-Type. Decoding never masks; v receives exactly what was sent.
func (rs *Responder) Decode(r *http.Request, v any) error {
	codec, err := rs.codecFor(r.Header.Get("Content-Type"))
	if err != nil {
		return err
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, rs.maxBody+1))
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > rs.maxBody {
		return fmt.Errorf("read body: exceeds %d bytes", rs.maxBody)
	}
	return shroud.Unmarshal(r.Context(), codec, data, v, rs.opts...)
}

func (rs *Responder) codecFor(contentType string) (shroud.Codec, error) {
	if contentType == "" {
		if len(rs.codecs) == 0 {
			return nil, ErrUnsupportedMediaType
		}
		return rs.codecs[0], nil
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, contentType)
	}
	for _, c := range rs.codecs {
		if strings.EqualFold(mt, c.ContentType()) {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mt)
}

type acceptRange struct {
	mediaType string
	q         float64
}

// parseAccept returns the acceptable media ranges, best first.
func parseAccept(header string) []string {
	var ranges []acceptRange
	for _, part := range strings.Split(header, ",") {
		mt, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := 1.0
		if raw, ok := params["q"]; ok {
			if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
				q = parsed
			}
		}
		if q <= 0 {
			continue
		}
		ranges = append(ranges, acceptRange{mediaType: mt, q: q})
	}
	sort.SliceStable(ranges, func(i, j int) bool {
		return ranges[i].q > ranges[j].q
	})
	out := make([]string, len(ranges))
	for i, r := range ranges {
		out[i] = r.mediaType
	}
	return out
}

func matchMediaType(want, have string) bool {
	if want == "*/*" {
		return true
	}
	if strings.HasSuffix(want, "/*") {
		return strings.HasPrefix(have, strings.TrimSuffix(want, "*"))
	}
	return strings.EqualFold(want, have)
}
