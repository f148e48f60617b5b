package span

import "go.opentelemetry.io/otel/trace"

// Kind describes the role of a span in a trace.
type Kind int

const (
	// KindInternal marks an operation internal to the process.
	KindInternal Kind = iota
	// KindServer marks the handling of a remote request.
	KindServer
	// KindClient marks an outgoing remote request.
	KindClient
	// KindProducer marks the creation of an asynchronous message.
	KindProducer
	// KindConsumer marks the processing of an asynchronous message.
	KindConsumer
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindServer:
		return "server"
	case KindClient:
		return "client"
	case KindProducer:
		return "producer"
	case KindConsumer:
		return "consumer"
	default:
		return "unknown"
	}
}

func (k Kind) otel() trace.SpanKind {
	switch k {
	case KindServer:
		return trace.SpanKindServer
	case KindClient:
		return trace.SpanKindClient
	case KindProducer:
		return trace.SpanKindProducer
	case KindConsumer:
		return trace.SpanKindConsumer
	default:
		return trace.SpanKindInternal
	}
}
