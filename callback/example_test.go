package callback_test

import (
	"context"
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/jonwraymond/callspan/callback"
	"github.com/jonwraymond/callspan/span"
)

func onLoaded(sender string) {
	fmt.Println("loaded:", sender)
}

func ExampleWrapper_Wrap() {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	w := callback.New(span.NewSource(tp, "example"))

	// An interception adapter only sees an untyped value.
	var cb any = onLoaded
	cb = w.Wrap(cb)
	cb.(func(string))("window")

	for _, s := range recorder.Ended() {
		fmt.Println("span:", s.Name())
	}
	// Output:
	// loaded: window
	// span: callback_test.onLoaded
}

func ExampleFunc2() {
	w := callback.New(nil)
	add := callback.Func2(w, func(a, b int) int { return a + b })
	fmt.Println(add(2, 3))
	// Output:
	// 5
}
