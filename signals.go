package shroud

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for masking events.
var (
	SignalDescriptorBuilt  = capitan.NewSignal("shroud.descriptor.built", "Type mask descriptor cached")
	SignalSendStart        = capitan.NewSignal("shroud.send.start", "Masked encode beginning")
	SignalSendComplete     = capitan.NewSignal("shroud.send.complete", "Masked encode finished")
	SignalReceiveStart     = capitan.NewSignal("shroud.receive.start", "Pass-through decode beginning")
	SignalReceiveComplete  = capitan.NewSignal("shroud.receive.complete", "Pass-through decode finished")
	SignalDiagnosticFailed = capitan.NewSignal("shroud.diagnostic.failed", "Decode diagnostic extraction failed")
)

// Keys for typed event data.
var (
	KeyContentType   = capitan.NewStringKey("content_type")
	KeyTypeName      = capitan.NewStringKey("type_name")
	KeySize          = capitan.NewIntKey("size")
	KeyDuration      = capitan.NewDurationKey("duration")
	KeyError         = capitan.NewErrorKey("error")
	KeyMaskedCount   = capitan.NewIntKey("masked_count")
	KeyFieldCount    = capitan.NewIntKey("field_count")
	KeyMaskableCount = capitan.NewIntKey("maskable_count")
)

// emitDescriptorBuilt emits an event when a descriptor is first cached.
func emitDescriptorBuilt(ctx context.Context, desc *Descriptor) {
	maskable := 0
	for _, f := range desc.Fields {
		if f.Candidate {
			maskable++
		}
	}
	capitan.Emit(ctx, SignalDescriptorBuilt,
		KeyTypeName.Field(desc.TypeName),
		KeyFieldCount.Field(len(desc.Fields)),
		KeyMaskableCount.Field(maskable),
	)
}

// emitSendStart emits an event when a masked encode begins.
func emitSendStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalSendStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitSendComplete emits an event when a masked encode finishes.
func emitSendComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, masked int, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
		KeyMaskedCount.Field(masked),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSendComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSendComplete, fields...)
	}
}

// emitReceiveStart emits an event when a decode begins.
func emitReceiveStart(ctx context.Context, contentType, typeName string) {
	capitan.Emit(ctx, SignalReceiveStart,
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
	)
}

// emitReceiveComplete emits an event when a decode finishes.
func emitReceiveComplete(ctx context.Context, contentType, typeName string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyContentType.Field(contentType),
		KeyTypeName.Field(typeName),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalReceiveComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalReceiveComplete, fields...)
	}
}

// emitDiagnosticFailed reports a swallowed diagnostic failure.
func emitDiagnosticFailed(ctx context.Context, err error) {
	capitan.Error(ctx, SignalDiagnosticFailed, KeyError.Field(err))
}
