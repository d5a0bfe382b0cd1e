package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/handiism/dash-downloader/internal/model"
	"github.com/handiism/dash-downloader/internal/resolve/dto"
)

// ErrCollection is returned by Resolve when the identifier names several items.
var ErrCollection = errors.New("identifier names a collection")

// Error is a failed resolution.
type Error struct {
	Identifier string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Identifier, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Resolver yields the content behind an identifier.
type Resolver interface {
	Resolve(ctx context.Context, identifier string) (model.ContentDescriptor, error)
	ResolveCollection(ctx context.Context, identifier string) (model.Collection, error)
}

// Getter fetches a small document over HTTP. *http.Client implements it.
type Getter interface {
	GetBytes(ctx context.Context, url string) ([]byte, error)
}

// ManifestResolver reads JSON manifests from files, URLs or stdin ("-").
type ManifestResolver struct {
	getter Getter
	stdin  io.Reader
}

// NewManifestResolver creates a resolver. getter may be nil when only local
// manifests are used.
func NewManifestResolver(getter Getter) *ManifestResolver {
	return &ManifestResolver{getter: getter, stdin: os.Stdin}
}

// Resolve returns the single item named by identifier.
func (r *ManifestResolver) Resolve(ctx context.Context, identifier string) (model.ContentDescriptor, error) {
	coll, err := r.ResolveCollection(ctx, identifier)
	if err != nil {
		return model.ContentDescriptor{}, err
	}
	if coll.IsBatch() {
		return model.ContentDescriptor{}, &Error{Identifier: identifier, Err: ErrCollection}
	}
	return coll.Items[0], nil
}

// ResolveCollection returns every item named by identifier. A single-item
// manifest yields a collection of one.
func (r *ManifestResolver) ResolveCollection(ctx context.Context, identifier string) (model.Collection, error) {
	data, err := r.read(ctx, identifier)
	if err != nil {
		return model.Collection{}, &Error{Identifier: identifier, Err: err}
	}

	coll, err := Parse(data)
	if err != nil {
		return model.Collection{}, &Error{Identifier: identifier, Err: err}
	}
	return coll, nil
}

func (r *ManifestResolver) read(ctx context.Context, identifier string) ([]byte, error) {
	switch {
	case identifier == "-":
		return io.ReadAll(r.stdin)
	case strings.HasPrefix(identifier, "http://"), strings.HasPrefix(identifier, "https://"):
		if r.getter == nil {
			return nil, errors.New("no HTTP client configured")
		}
		return r.getter.GetBytes(ctx, identifier)
	default:
		return os.ReadFile(identifier)
	}
}

// Parse decodes a manifest document and checks that every item is usable.
func Parse(data []byte) (model.Collection, error) {
	var manifest dto.JSONManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return model.Collection{}, fmt.Errorf("parse manifest: %w", err)
	}

	coll := manifest.ToCollection()
	for i, item := range coll.Items {
		if strings.TrimSpace(item.Title) == "" {
			return model.Collection{}, fmt.Errorf("item %d has no title", i+1)
		}
		if len(item.Streams) == 0 {
			return model.Collection{}, fmt.Errorf("item %q: %w", item.Title, model.ErrNoStreams)
		}
	}
	return coll, nil
}
