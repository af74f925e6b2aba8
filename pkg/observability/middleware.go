package observability

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// recordingWriter remembers the first status code written.
type recordingWriter struct {
	http.ResponseWriter

	status int
}

func (rw *recordingWriter) WriteHeader(code int) {
	if rw.status == 0 {
		rw.status = code
	}

	rw.ResponseWriter.WriteHeader(code)
}

func (rw *recordingWriter) Write(buf []byte) (int, error) {
	if rw.status == 0 {
		rw.status = http.StatusOK
	}

	return rw.ResponseWriter.Write(buf) //nolint:wrapcheck // passthrough writer.
}

func (rw *recordingWriter) code() int {
	if rw.status == 0 {
		return http.StatusOK
	}

	return rw.status
}

// HTTPMiddleware wraps next with one server span per request, named
// "METHOD /path", and RED metrics when red is non-nil. Only 5xx responses
// count as errors.
func HTTPMiddleware(tracer trace.Tracer, red *REDMetrics, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		op := req.Method + " " + req.URL.Path
		parent := otel.GetTextMapPropagator().Extract(req.Context(), propagation.HeaderCarrier(req.Header))

		ctx, span := tracer.Start(parent, op,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPRequestMethodKey.String(req.Method),
				attribute.String("http.target", req.URL.Path),
			),
		)
		defer span.End()

		finish := red.Begin(ctx, op)
		rec := &recordingWriter{ResponseWriter: w}

		next.ServeHTTP(rec, req.WithContext(ctx))

		code := rec.code()
		span.SetAttributes(semconv.HTTPResponseStatusCode(code))

		if code >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(code))
			finish(StatusError)

			return
		}

		finish(StatusOK)
	})
}
