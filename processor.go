package shroud

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/zoobzio/sentinel"
)

// Processor encodes responses of type T with role-aware masking and decodes
// requests of type T untouched.
//
// Processors are safe for concurrent use. The caller's roles are read from the
// context passed to each call (see WithRoles).
type Processor[T any] struct {
	codec    Codec
	settings settings
	desc     *Descriptor
	typeName string
}

// NewProcessor creates a Processor for type T.
// Masking declarations on T are validated here; a malformed tag is returned
// as a *ConfigError rather than surfacing on the first response.
func NewProcessor[T any](codec Codec, opts ...Option) (*Processor[T], error) {
	rt := reflect.TypeFor[T]()
	if rt.Kind() == reflect.Struct {
		// Caches metadata for T and the module types it reaches; descriptor
		// builds read their tags back from sentinel by type name.
		sentinel.Scan[T]()
	}

	desc, err := Describe(rt)
	if err != nil {
		return nil, err
	}

	return &Processor[T]{
		codec:    codec,
		settings: resolve(opts),
		desc:     desc,
		typeName: desc.TypeName,
	}, nil
}

// Descriptor returns the cached descriptor for T.
func (p *Processor[T]) Descriptor() *Descriptor {
	return p.desc
}

// Send masks obj for the caller in ctx and marshals the result.
// Use for data going to external destinations (API responses, events).
func (p *Processor[T]) Send(ctx context.Context, obj *T) ([]byte, error) {
	start := time.Now()
	emitSendStart(ctx, p.codec.ContentType(), p.typeName)

	var (
		retErr  error
		retData []byte
		masked  int
	)
	defer func() {
		emitSendComplete(ctx, p.codec.ContentType(), p.typeName,
			len(retData), time.Since(start), masked, retErr)
	}()

	if obj == nil {
		retData, retErr = p.marshal(nil)
		return retData, retErr
	}

	// Ordinary encoding when nothing in T can need masking
	if p.desc.Passthrough() {
		retData, retErr = p.marshal(obj)
		return retData, retErr
	}

	tree, n, err := encode(ctx, obj, p.settings)
	if err != nil {
		retErr = fmt.Errorf("mask: %w", err)
		return nil, retErr
	}
	masked = n

	retData, retErr = p.marshal(tree)
	return retData, retErr
}

// Write masks obj and writes the encoded bytes to w.
// Nothing is written if encoding fails.
func (p *Processor[T]) Write(ctx context.Context, w io.Writer, obj *T) error {
	data, err := p.Send(ctx, obj)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Receive unmarshals data into a new T. Masking never participates: the codec
// decodes exactly as it would without any mask declarations on T.
func (p *Processor[T]) Receive(ctx context.Context, data []byte) (*T, error) {
	start := time.Now()
	emitReceiveStart(ctx, p.codec.ContentType(), p.typeName)

	var retErr error
	defer func() {
		emitReceiveComplete(ctx, p.codec.ContentType(), p.typeName,
			len(data), time.Since(start), retErr)
	}()

	var obj T
	if err := p.codec.Unmarshal(data, &obj); err != nil {
		cerr := newCodecError(ErrUnmarshal, err)
		cerr.Snippet = decodeSnippet(ctx, data, err, p.settings.snippetSize)
		retErr = cerr
		return nil, retErr
	}
	return &obj, nil
}

func (p *Processor[T]) marshal(v any) ([]byte, error) {
	data, err := p.codec.Marshal(v)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}

// Marshal masks v for the caller in ctx and encodes it with codec.
// It is the type-erased entry point for frameworks that hold values as any.
func Marshal(ctx context.Context, codec Codec, v any, opts ...Option) ([]byte, error) {
	tree, _, err := encode(ctx, v, resolve(opts))
	if err != nil {
		return nil, fmt.Errorf("mask: %w", err)
	}
	data, err := codec.Marshal(tree)
	if err != nil {
		return nil, newCodecError(ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes data into v with codec, attaching a payload snippet to failures.
func Unmarshal(ctx context.Context, codec Codec, data []byte, v any, opts ...Option) error {
	if err := codec.Unmarshal(data, v); err != nil {
		s := resolve(opts)
		cerr := newCodecError(ErrUnmarshal, err)
		cerr.Snippet = decodeSnippet(ctx, data, err, s.snippetSize)
		return cerr
	}
	return nil
}
