package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"

	"github.com/templui/filebox/internal/domain"
	"github.com/templui/filebox/internal/logger"
	"github.com/templui/filebox/internal/model"
	"github.com/templui/filebox/internal/storage"
)

// StreamResult is the outcome of a content request. Body is nil for 416.
type StreamResult struct {
	Status int
	Header http.Header
	Body   io.ReadCloser
	Length int64
}

// Close releases the body if there is one
func (r *StreamResult) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

// Streamer delivers file bytes, honoring byte ranges for stored content.
// Inline content is always sent whole.
type Streamer struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewStreamer(storage storage.Storage) *Streamer {
	return &Streamer{
		storage: storage,
		logger:  logger.Component("stream"),
	}
}

var rangePattern = regexp.MustCompile(`^bytes=(\d*)-(\d*)$`)

// ByteRange is an inclusive byte window
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// ParseRange resolves a single-range header against the total size. A missing
// start means 0, a missing or oversized end means the last byte. ok is false when
// the header does not name a byte range; satisfiable is false when the window
// lies outside the content.
func ParseRange(header string, size int64) (r ByteRange, ok bool, satisfiable bool) {
	match := rangePattern.FindStringSubmatch(header)
	if match == nil {
		return ByteRange{}, false, false
	}

	last := size - 1
	r = ByteRange{Start: 0, End: last}

	if match[1] != "" {
		start, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			// only digits match, so this is an overflow: past any real size
			return r, true, false
		}
		r.Start = start
	}
	if match[2] != "" {
		end, err := strconv.ParseInt(match[2], 10, 64)
		if err == nil && end < last {
			r.End = end
		}
	}

	if r.Start >= size || r.End < r.Start {
		return r, true, false
	}
	return r, true, true
}

// Stream prepares the response for file. Missing or unreadable stored bytes
// yield an IOError.
func (s *Streamer) Stream(ctx context.Context, file *model.File, rangeHeader string) (*StreamResult, error) {
	header := http.Header{}
	header.Set("Content-Type", file.ContentType())

	if file.IsInline() {
		header.Set("Content-Length", strconv.Itoa(len(file.Data)))
		return &StreamResult{
			Status: http.StatusOK,
			Header: header,
			Body:   io.NopCloser(bytes.NewReader(file.Data)),
			Length: int64(len(file.Data)),
		}, nil
	}

	key := *file.StoragePath
	size, err := s.storage.Size(ctx, key)
	if err != nil {
		return nil, &domain.IOError{Path: key, Err: err}
	}

	header.Set("Accept-Ranges", "bytes")

	if rangeHeader != "" {
		window, ok, satisfiable := ParseRange(rangeHeader, size)
		if ok && !satisfiable {
			header.Del("Content-Type")
			header.Set("Content-Range", fmt.Sprintf("bytes */%d", size))
			return &StreamResult{Status: http.StatusRequestedRangeNotSatisfiable, Header: header}, nil
		}
		if ok {
			body, err := s.storage.Open(ctx, key, window.Start, window.Length())
			if err != nil {
				return nil, &domain.IOError{Path: key, Err: err}
			}
			header.Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", window.Start, window.End, size))
			header.Set("Content-Length", strconv.FormatInt(window.Length(), 10))
			return &StreamResult{
				Status: http.StatusPartialContent,
				Header: header,
				Body:   body,
				Length: window.Length(),
			}, nil
		}
	}

	body, err := s.storage.Open(ctx, key, 0, -1)
	if err != nil {
		return nil, &domain.IOError{Path: key, Err: err}
	}
	header.Set("Content-Length", strconv.FormatInt(size, 10))

	return &StreamResult{
		Status: http.StatusOK,
		Header: header,
		Body:   body,
		Length: size,
	}, nil
}

// Serve writes file to w. Errors before the first byte are returned for the
// caller to report. After headers are sent, a read failure aborts the
// connection so the client never mistakes a truncated body for a complete
// one; a write failure means the client went away and only stops the copy.
func (s *Streamer) Serve(w http.ResponseWriter, r *http.Request, file *model.File) error {
	ctx := r.Context()

	result, err := s.Stream(ctx, file, r.Header.Get("Range"))
	if err != nil {
		downloadsTotal.WithLabelValues(strconv.Itoa(http.StatusInternalServerError)).Inc()
		return err
	}
	defer result.Close()

	for k, v := range result.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(result.Status)
	downloadsTotal.WithLabelValues(strconv.Itoa(result.Status)).Inc()

	if result.Body == nil || r.Method == http.MethodHead {
		return nil
	}

	activeStreams.Inc()
	defer activeStreams.Dec()

	src := &trackingReader{ctx: ctx, r: result.Body}
	written, err := io.Copy(w, src)
	downloadBytesTotal.Add(float64(written))

	switch {
	case err == nil && written < result.Length:
		s.logger.Error("stored content shorter than declared", "file_id", file.ID, "written", written, "expected", result.Length)
		panic(http.ErrAbortHandler)
	case err == nil:
		return nil
	case src.err != nil && !errors.Is(src.err, context.Canceled):
		s.logger.Error("content read failed mid-stream", "file_id", file.ID, "written", written, "error", src.err)
		panic(http.ErrAbortHandler)
	default:
		s.logger.Debug("client stopped reading", "file_id", file.ID, "written", written, "error", err)
		return nil
	}
}

// trackingReader stops once the request context is done and remembers read
// errors so they can be told apart from write errors.
type trackingReader struct {
	ctx context.Context
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	if err := t.ctx.Err(); err != nil {
		t.err = err
		return 0, err
	}

	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}
