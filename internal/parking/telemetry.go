package parking

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "parking-lot"
	serviceVersion      = "1.0.0"
)

type TelemetryProvider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	loggerProvider *sdklog.LoggerProvider
	tracer         trace.Tracer
	meter          metric.Meter
}

// NewTelemetryProvider exports traces, metrics and logs over OTLP/HTTP and
// installs the providers globally.
func NewTelemetryProvider(ctx context.Context, serviceName, otlpEndpoint, environment string) (*TelemetryProvider, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
			semconv.DeploymentEnvironmentName(environment),
		),
		resource.WithFromEnv(),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpointURL(otlpEndpoint+"/v1/traces"),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	metricExporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpointURL(otlpEndpoint+"/v1/metrics"),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter,
			sdkmetric.WithInterval(5*time.Second),
		)),
	)

	logExporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpointURL(otlpEndpoint+"/v1/logs"),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	global.SetLoggerProvider(loggerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &TelemetryProvider{
		tracerProvider: tracerProvider,
		meterProvider:  meterProvider,
		loggerProvider: loggerProvider,
		tracer:         tracerProvider.Tracer(instrumentationName),
		meter:          meterProvider.Meter(instrumentationName),
	}, nil
}

// NewTelemetryProviderFrom wraps providers owned by the caller. Shutdown leaves
// them alone.
func NewTelemetryProviderFrom(tp trace.TracerProvider, mp metric.MeterProvider) *TelemetryProvider {
	return &TelemetryProvider{
		tracer: tp.Tracer(instrumentationName),
		meter:  mp.Meter(instrumentationName),
	}
}

func (tp *TelemetryProvider) Tracer() trace.Tracer {
	return tp.tracer
}

func (tp *TelemetryProvider) Meter() metric.Meter {
	return tp.meter
}

func (tp *TelemetryProvider) Shutdown(ctx context.Context) error {
	var errs []error
	if tp.tracerProvider != nil {
		errs = append(errs, tp.tracerProvider.Shutdown(ctx))
	}
	if tp.meterProvider != nil {
		errs = append(errs, tp.meterProvider.Shutdown(ctx))
	}
	if tp.loggerProvider != nil {
		errs = append(errs, tp.loggerProvider.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
