package storage

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/httputil"
)

const backendHTTP = "http"

// HTTPStore talks to the layout endpoints of a remote `gridlayout serve`.
// Reads retry transient failures; saves are sent exactly once.
type HTTPStore struct {
	base    string
	http    *httputil.Client
	backoff httputil.Backoff
}

// HTTPOptions configures [NewHTTPStore].
type HTTPOptions struct {
	URL        string
	Token      string        // sent as a bearer token when set
	Client     *http.Client  // nil selects httputil defaults
	Attempts   int           // read attempts; httputil.DefaultBackoff when zero
	RetryDelay time.Duration // initial backoff; httputil.DefaultBackoff when zero
}

// NewHTTPStore creates a store for the server at opts.URL.
func NewHTTPStore(opts HTTPOptions) (*HTTPStore, error) {
	if err := errors.ValidateURL(opts.URL); err != nil {
		return nil, err
	}
	var headers map[string]string
	if opts.Token != "" {
		headers = map[string]string{"Authorization": "Bearer " + opts.Token}
	}
	s := &HTTPStore{
		base:    strings.TrimRight(opts.URL, "/"),
		http:    httputil.NewClient(opts.Client, headers),
		backoff: httputil.Backoff{Attempts: opts.Attempts, Delay: opts.RetryDelay},
	}
	return s, nil
}

func (s *HTTPStore) layoutURL(id string) string {
	return s.base + "/layouts/" + url.PathEscape(id)
}

func (s *HTTPStore) Get(ctx context.Context, id string) (l *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, backendHTTP, id, start, err) }()
	if err := errors.ValidateLayoutID(id); err != nil {
		return nil, err
	}

	var out grid.Layout
	err = s.backoff.Do(ctx, func() error {
		return s.http.GetJSON(ctx, s.layoutURL(id), &out)
	})
	if err != nil {
		return nil, remoteError(err, "read", id)
	}
	return &out, nil
}

// Save sends the full document with PUT and returns the server's copy.
func (s *HTTPStore) Save(ctx context.Context, l *grid.Layout) (out *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeSave(ctx, backendHTTP, layoutID(l), start, err) }()

	doc, err := prepare(l)
	if err != nil {
		return nil, err
	}
	var stored grid.Layout
	if err := s.http.SendJSON(ctx, http.MethodPut, s.layoutURL(doc.ID), doc, &stored); err != nil {
		return nil, remoteError(err, "save", doc.ID)
	}
	return &stored, nil
}

func (s *HTTPStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateLayoutID(id); err != nil {
		return err
	}
	err := s.http.SendJSON(ctx, http.MethodDelete, s.layoutURL(id), nil, nil)
	if stderrors.Is(err, httputil.ErrNotFound) {
		return nil
	}
	return remoteError(err, "delete", id)
}

func (s *HTTPStore) List(ctx context.Context) ([]Summary, error) {
	var out []Summary
	err := s.backoff.Do(ctx, func() error {
		return s.http.GetJSON(ctx, s.base+"/layouts", &out)
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list layouts at %s", s.base)
	}
	return out, nil
}

func (s *HTTPStore) Close() error { return nil }

func remoteError(err error, op, id string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, httputil.ErrNotFound):
		return NotFound(id)
	case stderrors.Is(err, httputil.ErrUnauthorized):
		return errors.Wrap(errors.ErrCodeUnauthorized, err, "%s layout %q: server rejected the token", op, id)
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.Wrap(errors.ErrCodeTimeout, err, "%s layout %q", op, id)
	case stderrors.Is(err, httputil.ErrNetwork):
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s layout %q", op, id)
	}
	return storageError(err, op, id)
}

var _ Store = (*HTTPStore)(nil)
