package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"pdfcollab/internal/storage"
)

// ProxyResult is the outcome of a proxied byte fetch: either verified (or
// best-effort) PDF bytes to stream inline, or a redirect to a presigned URL
// on the object store when the fetched payload is unusable.
type ProxyResult struct {
	Data        []byte
	ContentType string
	RedirectURL string
}

// Redirect reports whether the caller should be redirected instead of served bytes.
func (r *ProxyResult) Redirect() bool {
	return r.RedirectURL != ""
}

// ProxyService streams validated PDF bytes for a blob reference, enforcing
// the access rules before any fetch.
type ProxyService interface {
	// Fetch authorizes the request, retrieves the object and verifies it.
	// Denials surface ErrForbidden without touching the blob store; an
	// unusable or failed fetch degrades to a presigned redirect before giving
	// up with ErrNotFound.
	Fetch(ctx context.Context, blobRef, userID, accessToken string) (*ProxyResult, error)
}

type proxyService struct {
	access        AccessService
	store         storage.Storage
	fetchTimeout  time.Duration
	presignExpiry time.Duration
}

// NewProxyService constructs a ProxyService.
func NewProxyService(access AccessService, store storage.Storage, fetchTimeout, presignExpiry time.Duration) ProxyService {
	return &proxyService{
		access:        access,
		store:         store,
		fetchTimeout:  fetchTimeout,
		presignExpiry: presignExpiry,
	}
}

func (s *proxyService) Fetch(ctx context.Context, blobRef, userID, accessToken string) (*ProxyResult, error) {
	if _, err := s.access.AuthorizeProxy(ctx, blobRef, userID, accessToken); err != nil {
		return nil, err
	}

	// The store sits behind a gateway that can answer with an HTML error page
	// and a 200 status, so the fetch is bounded and the payload is verified by
	// signature rather than by the reported content type.
	fctx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fctx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}

	rc, info, err := s.store.Get(fctx, blobRef)
	if err != nil {
		return s.fallback(ctx, blobRef, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return s.fallback(ctx, blobRef, err)
	}

	if len(data) >= len(pdfMagic) && string(data[:len(pdfMagic)]) == pdfMagic {
		return &ProxyResult{Data: data, ContentType: "application/pdf"}, nil
	}

	// No PDF signature. An HTML or plain-text payload means the store answered
	// with an error/login page; send the caller to a presigned direct URL.
	ct := strings.ToLower(info.ContentType)
	if strings.Contains(ct, "text/html") || strings.Contains(ct, "text/plain") {
		return s.fallback(ctx, blobRef, fmt.Errorf("unexpected content type %q", info.ContentType))
	}

	// Best effort: pass the bytes through as a PDF anyway.
	return &ProxyResult{Data: data, ContentType: "application/pdf"}, nil
}

// fallback attempts the presigned direct-URL redirect once before giving up.
func (s *proxyService) fallback(ctx context.Context, blobRef string, cause error) (*ProxyResult, error) {
	u, err := s.store.PresignGet(ctx, blobRef, s.presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch failed (%v), no fallback (%v)", ErrNotFound, cause, err)
	}
	return &ProxyResult{RedirectURL: u}, nil
}
