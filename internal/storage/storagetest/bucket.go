// Package storagetest provides an in-memory storage.Bucket for tests.
package storagetest

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"sync"

	"github.com/tomasbasham/stdlib-upload/internal/storage"
)

// Object is a stored object.
type Object struct {
	Content     []byte
	ContentType string
	Metadata    map[string]string
	Public      bool
}

// Bucket is a storage.Bucket backed by a map. Keys are listed in the order
// they were first written, or as seeded with Seed.
type Bucket struct {
	mu      sync.Mutex
	name    string
	keys    []string
	objects map[string]*Object

	// Calls records every method invocation, e.g. "list", "upload:key".
	Calls []string

	// ListErr, if set, is yielded after all stored keys.
	ListErr error

	// UploadErr and PublicErr fail the operation for the given key.
	UploadErr map[string]error
	PublicErr map[string]error
}

var _ storage.Bucket = (*Bucket)(nil)

// New returns an empty bucket.
func New(name string) *Bucket {
	return &Bucket{
		name:      name,
		objects:   make(map[string]*Object),
		UploadErr: make(map[string]error),
		PublicErr: make(map[string]error),
	}
}

// Seed stores empty objects at keys, in order, without recording calls.
func (b *Bucket) Seed(keys ...string) *Bucket {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		b.store(k, &Object{})
	}
	return b
}

// Object returns the object stored at key.
func (b *Bucket) Object(key string) (*Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	obj, ok := b.objects[key]
	return obj, ok
}

// Keys returns every stored key in listing order.
func (b *Bucket) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keys...)
}

func (b *Bucket) Name() string {
	return b.name
}

func (b *Bucket) List(_ context.Context, prefix string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		b.mu.Lock()
		b.Calls = append(b.Calls, "list")
		keys := append([]string(nil), b.keys...)
		listErr := b.ListErr
		b.mu.Unlock()

		for _, k := range keys {
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			if !yield(k, nil) {
				return
			}
		}
		if listErr != nil {
			yield("", listErr)
		}
	}
}

func (b *Bucket) Upload(_ context.Context, req *storage.UploadRequest) (*storage.UploadResult, error) {
	b.mu.Lock()
	b.Calls = append(b.Calls, "upload:"+req.ObjectName)
	err := b.UploadErr[req.ObjectName]
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}

	content, err := io.ReadAll(req.Content)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.store(req.ObjectName, &Object{
		Content:     content,
		ContentType: req.ContentType,
		Metadata:    req.Metadata,
	})
	return &storage.UploadResult{
		ObjectName: req.ObjectName,
		URL:        "mem://" + b.name + "/" + req.ObjectName,
	}, nil
}

func (b *Bucket) MakePublic(_ context.Context, objectName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Calls = append(b.Calls, "public:"+objectName)
	if err := b.PublicErr[objectName]; err != nil {
		return err
	}
	obj, ok := b.objects[objectName]
	if !ok {
		return errors.New("object not found")
	}
	obj.Public = true
	return nil
}

func (b *Bucket) store(key string, obj *Object) {
	if _, ok := b.objects[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.objects[key] = obj
}
