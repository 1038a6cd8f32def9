package core

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("github.com/hyperledger-labs/namada-relayer/core")
)

// StartQueryTrace creates a span with the attributes of the query height and proof flag.
func StartQueryTrace(ctx context.Context, tracer trace.Tracer, spanName string, height QueryHeight, includeProof IncludeProof, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts, trace.WithAttributes(QueryAttributes(height, includeProof)...))
	return tracer.Start(ctx, spanName, opts...)
}

// QueryAttributes returns the attributes of a query grouped under "query"
func QueryAttributes(height QueryHeight, includeProof IncludeProof) []attribute.KeyValue {
	return AttributeGroup("query",
		AttributeKeyLatest.Bool(height.IsLatest()),
		// Convert revision_number and revision_height to string because the attribute package does not support uint64
		AttributeKeyRevisionNumber.String(fmt.Sprint(height.Height().GetRevisionNumber())),
		AttributeKeyRevisionHeight.String(fmt.Sprint(height.Height().GetRevisionHeight())),
		AttributeKeyProof.Bool(bool(includeProof)),
	)
}

// WithPackage adds the package name of the function/method `v`
func WithPackage(v any) trace.SpanStartOption {
	return trace.WithAttributes(AttributeKeyPackage.String(getPackageName(v)))
}

func getPackageName(v any) string {
	if v == nil {
		return ""
	}

	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	return rt.PkgPath()
}
