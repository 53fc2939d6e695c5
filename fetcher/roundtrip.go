package fetcher

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/requester/middleware"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// UserAgent sets the User-Agent header on every outgoing request.
func UserAgent(ua string) middleware.RoundTripperHandler {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req.Header.Set("User-Agent", ua)
			return next.RoundTrip(req)
		})
	}
}

// RoundTripperOpts contains options for the round-trip logger.
type RoundTripperOpts struct {
	Level         zerolog.Level
	SecretHeaders []string
}

// LoggingRoundTripper logs every request and the response it got back.
// Bodies are logged up to trimBodyAt bytes and passed on untouched. When
// opts.Level is disabled for lg the request goes straight through.
func LoggingRoundTripper(lg zerolog.Logger, opts RoundTripperOpts) middleware.RoundTripperHandler {
	return func(next http.RoundTripper) http.RoundTripper {
		return middleware.RoundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if lg.GetLevel() > opts.Level || zerolog.GlobalLevel() > opts.Level {
				return next.RoundTrip(req)
			}

			lg.WithLevel(opts.Level).
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Interface("headers", maskHeaders(req.Header, opts.SecretHeaders)).
				Msg("request sent")

			start := time.Now()
			resp, err := next.RoundTrip(req)
			elapsed := time.Since(start)

			if err != nil {
				lg.WithLevel(opts.Level).
					Str("url", req.URL.String()).
					Dur("elapsed", elapsed).
					Err(err).
					Msg("request failed")
				return resp, err
			}

			var preview string
			resp.Body, preview = copyAndTrim(resp.Body)

			lg.WithLevel(opts.Level).
				Str("url", req.URL.String()).
				Int("status", resp.StatusCode).
				Interface("headers", maskHeaders(resp.Header, opts.SecretHeaders)).
				Str("body", preview).
				Dur("elapsed", elapsed).
				Msg("response received")

			return resp, nil
		})
	}
}

func maskHeaders(h http.Header, secret []string) map[string]string {
	res := make(map[string]string, len(h))
	for k, vals := range h {
		if lo.Contains(secret, k) {
			res[k] = "***"
			continue
		}
		res[k] = strings.Join(vals, ",")
	}
	return res
}

const trimBodyAt = 1024

func copyAndTrim(r io.ReadCloser) (rd io.ReadCloser, result string) {
	if r == nil {
		return nil, ""
	}

	// one byte past the limit tells a long body from one of exactly trimBodyAt
	rd, result, read := readPortion(r, trimBodyAt+1)
	if read > trimBodyAt {
		result = result[:trimBodyAt] + "..."
	}
	result = strings.ReplaceAll(result, "\n", "")
	result = strings.ReplaceAll(result, "\t", "")

	return rd, result
}

// readPortion reads up to limit bytes from src and returns a reader that
// replays them before the rest of src. A read error other than EOF is
// returned by the replaying reader once the buffered bytes are consumed.
func readPortion(src io.ReadCloser, limit int64) (rd io.ReadCloser, portion string, read int64) {
	buf := &bytes.Buffer{}

	read, err := io.CopyN(buf, src, limit)
	portion = buf.String()

	switch {
	case err == nil:
		return &closer{rd: io.MultiReader(buf, src), closeFn: src.Close}, portion, read
	case errors.Is(err, io.EOF):
		return &closer{rd: buf, closeFn: src.Close}, portion, read
	default:
		return &closer{rd: io.MultiReader(buf, errReader{err: err}), closeFn: src.Close}, portion, read
	}
}

type closer struct {
	rd      io.Reader
	closeFn func() error
}

func (c *closer) Read(p []byte) (n int, err error) { return c.rd.Read(p) }
func (c *closer) Close() error                     { return c.closeFn() }

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
