// Package tracing 提供基于OpenTelemetry的链路追踪
//
// 一次收银请求的典型链路：
//
//	HTTP POST /api/v1/line-items          (otelgin中间件创建根Span)
//	└─ Ledger.CreateLineItem              (StartSpan)
//	   └─ 事务：锁定销售单、锁定商品、扣减库存、写明细、更新合计
//
// 导出协议支持两种：
//   - grpc（默认端口4317）：otlptracegrpc
//   - http（默认端口4318）：otlptracehttp
//
// 未启用追踪时全局TracerProvider是no-op实现，StartSpan依然可以安全调用。
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Options 追踪初始化参数
type Options struct {
	ServiceName string
	Protocol    string  // grpc | http
	Endpoint    string  // host:port，不含协议前缀
	SampleRatio float64 // 采样比例，<=0或>=1表示全采样
}

// InitTracer 初始化全局Tracer Provider
//
// 返回shutdown函数，程序退出时调用以刷新未发送的Span。
//
// 示例：
//
//	shutdown, err := tracing.InitTracer(tracing.Options{
//	    ServiceName: "licoreria-api",
//	    Protocol:    "grpc",
//	    Endpoint:    "localhost:4317",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer shutdown(context.Background())
func InitTracer(opts Options) (func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 1. 创建Exporter
	exporter, err := newExporter(ctx, opts)
	if err != nil {
		return nil, err
	}

	// 2. 资源属性（service.name用于在Jaeger中分组）
	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(opts.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("创建资源属性失败: %w", err)
	}

	// 3. 采样策略
	sampler := sdktrace.AlwaysSample()
	if opts.SampleRatio > 0 && opts.SampleRatio < 1 {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.SampleRatio))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sampler),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	// 4. 设置全局Provider与传播器（W3C traceparent + baggage）
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)

	shutdown := func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}

	return shutdown, nil
}

// newExporter 根据协议创建OTLP Exporter
func newExporter(ctx context.Context, opts Options) (sdktrace.SpanExporter, error) {
	switch opts.Protocol {
	case "", "grpc":
		exporter, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(opts.Endpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("创建OTLP gRPC exporter失败: %w", err)
		}
		return exporter, nil
	case "http":
		exporter, err := otlptracehttp.New(
			ctx,
			otlptracehttp.WithEndpoint(opts.Endpoint),
			otlptracehttp.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("创建OTLP HTTP exporter失败: %w", err)
		}
		return exporter, nil
	default:
		return nil, fmt.Errorf("不支持的追踪协议: %s", opts.Protocol)
	}
}

// StartSpan 创建一个新的Span
// 必须使用返回的ctx调用下游函数，否则无法构建调用树
func StartSpan(ctx context.Context, tracerName, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName)
}

// EndSpan 根据err设置Span状态并结束
// 用法：defer func() { tracing.EndSpan(span, err) }()
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ExtractTraceID 从Context提取TraceID（用于关联日志）
func ExtractTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().TraceID().String()
}

// ExtractSpanID 从Context提取SpanID
func ExtractSpanID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return ""
	}
	return span.SpanContext().SpanID().String()
}
