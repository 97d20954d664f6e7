package shroud

import (
	"context"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	descriptors   = make(map[reflect.Type]*Descriptor)
	descriptorsMu sync.RWMutex
	builds        singleflight.Group
)

// Describe returns the cached descriptor for rt, building it on first use.
// Concurrent first calls for the same type share one build; the descriptor
// is published only once complete.
func Describe(rt reflect.Type) (*Descriptor, error) {
	// Fast path: read-lock cache check
	descriptorsMu.RLock()
	if desc, ok := descriptors[rt]; ok {
		descriptorsMu.RUnlock()
		return desc, nil
	}
	descriptorsMu.RUnlock()

	v, err, _ := builds.Do(buildKey(rt), func() (any, error) {
		// Double-check: a concurrent build may have published already
		descriptorsMu.RLock()
		desc, ok := descriptors[rt]
		descriptorsMu.RUnlock()
		if ok {
			return desc, nil
		}

		desc, err := buildDescriptor(rt)
		if err != nil {
			return nil, err
		}

		descriptorsMu.Lock()
		if existing, ok := descriptors[rt]; ok {
			desc = existing
		} else {
			descriptors[rt] = desc
		}
		descriptorsMu.Unlock()

		emitDescriptorBuilt(context.Background(), desc)
		return desc, nil
	})
	if err != nil {
		return nil, err
	}

	desc := v.(*Descriptor)
	if desc.Type != rt {
		// Distinct types that share a build key; build directly.
		return describeUncoalesced(rt)
	}
	return desc, nil
}

// DescribeFor returns the descriptor for T.
func DescribeFor[T any]() (*Descriptor, error) {
	return Describe(reflect.TypeFor[T]())
}

func describeUncoalesced(rt reflect.Type) (*Descriptor, error) {
	desc, err := buildDescriptor(rt)
	if err != nil {
		return nil, err
	}
	descriptorsMu.Lock()
	defer descriptorsMu.Unlock()
	if existing, ok := descriptors[rt]; ok {
		return existing, nil
	}
	descriptors[rt] = desc
	return desc, nil
}

// buildKey names a type for build coalescing.
func buildKey(rt reflect.Type) string {
	return rt.PkgPath() + "|" + rt.String()
}

// registryKey combines type and codec for processor lookup.
type registryKey struct {
	typ         reflect.Type
	contentType string
}

var (
	registry   = make(map[registryKey]any)
	registryMu sync.RWMutex
)

// Use returns a cached processor or builds a new one.
// The processor is cached by type and codec content type; options apply
// only when the processor is first built.
func Use[T any](codec Codec, opts ...Option) (*Processor[T], error) {
	typ := reflect.TypeFor[T]()
	key := registryKey{typ: typ, contentType: codec.ContentType()}

	// Fast path: read-lock cache check
	registryMu.RLock()
	if cached, ok := registry[key]; ok {
		registryMu.RUnlock()
		return cached.(*Processor[T]), nil
	}
	registryMu.RUnlock()

	// Slow path: build and cache with write-lock
	registryMu.Lock()
	defer registryMu.Unlock()

	// Double-check pattern
	if cached, ok := registry[key]; ok {
		return cached.(*Processor[T]), nil
	}

	processor, err := NewProcessor[T](codec, opts...)
	if err != nil {
		return nil, err
	}

	registry[key] = processor
	return processor, nil
}

// Reset clears the processor registry and the descriptor cache.
// This is primarily useful for test isolation.
func Reset() {
	registryMu.Lock()
	registry = make(map[registryKey]any)
	registryMu.Unlock()

	descriptorsMu.Lock()
	descriptors = make(map[reflect.Type]*Descriptor)
	descriptorsMu.Unlock()
}
