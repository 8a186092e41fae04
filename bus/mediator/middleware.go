package mediator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/goccy/go-reflect"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/x-research-team/dtx-mediator/bus/message"
	"github.com/x-research-team/dtx-mediator/bus/result"
)

const (
	instrumentationName    = "github.com/x-research-team/dtx-mediator/bus/mediator"
	instrumentationVersion = "0.1.0"
	metricKeyPrefix        = "messaging."

	statusSuccess = "success"
	statusFailure = "failure"
)

// Middleware определяет интерфейс для middleware медиатора.
// Middleware наблюдает за диспетчеризацией и не должен подменять исход обработчика.
type Middleware interface {
	Wrap(next Provider) Provider
}

// MiddlewareFunc является адаптером, позволяющим использовать обычные функции как middleware.
type MiddlewareFunc func(next Provider) Provider

// Wrap реализует интерфейс Middleware.
func (f MiddlewareFunc) Wrap(next Provider) Provider {
	return f(next)
}

// ProviderFunc является адаптером, позволяющим использовать обычные функции как Provider.
type ProviderFunc func(ctx context.Context, msg message.Message) result.Result[any]

// Dispatch реализует интерфейс Provider.
func (f ProviderFunc) Dispatch(ctx context.Context, msg message.Message) result.Result[any] {
	return f(ctx, msg)
}

// loggingMiddleware реализует Middleware для логирования диспетчеризации.
type loggingMiddleware struct {
	logger *slog.Logger
}

// NewLoggingMiddleware создает новое middleware для логирования.
// Если логгер не предоставлен (nil), возвращается no-op middleware.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		return &noopMiddleware{}
	}
	return &loggingMiddleware{
		logger: logger,
	}
}

// Wrap оборачивает провайдер для добавления логирования.
func (m *loggingMiddleware) Wrap(next Provider) Provider {
	return &loggingProvider{
		next:   next,
		logger: m.logger,
	}
}

// loggingProvider - это обертка над провайдером, которая добавляет логирование.
type loggingProvider struct {
	next   Provider
	logger *slog.Logger
}

// Dispatch логирует и отправляет сообщение.
func (p *loggingProvider) Dispatch(ctx context.Context, msg message.Message) result.Result[any] {
	kind, msgType, msgID := describe(msg)
	p.logger.InfoContext(ctx, "отправка сообщения",
		slog.String("message_kind", kind),
		slog.String("message_type", msgType),
		slog.String("message_id", msgID),
	)

	startTime := time.Now()
	res := p.next.Dispatch(ctx, msg)
	duration := time.Since(startTime)

	if err := res.Err(); err != nil {
		p.logger.ErrorContext(ctx, "ошибка обработки сообщения",
			slog.String("message_kind", kind),
			slog.String("message_type", msgType),
			slog.String("message_id", msgID),
			slog.Any("error", err),
			slog.Duration("duration", duration),
		)
		return res
	}

	p.logger.DebugContext(ctx, "сообщение обработано",
		slog.String("message_kind", kind),
		slog.String("message_type", msgType),
		slog.String("message_id", msgID),
		slog.Duration("duration", duration),
	)
	return res
}

// metricsMiddleware реализует Middleware для сбора метрик OpenTelemetry.
type metricsMiddleware struct {
	meter               metric.Meter
	dispatchCounter     metric.Int64Counter
	processDurationHist metric.Float64Histogram
}

// NewMetricsMiddleware создает новое middleware для сбора метрик.
func NewMetricsMiddleware(provider metric.MeterProvider) Middleware {
	if provider == nil {
		return &noopMiddleware{}
	}

	meter := provider.Meter(instrumentationName)

	dispatchCounter, err := meter.Int64Counter(
		metricKeyPrefix+"dispatch.count",
		metric.WithDescription("Количество отправленных сообщений"),
		metric.WithUnit("{messages}"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать счетчик dispatch.count: %v", err))
	}

	processDurationHist, err := meter.Float64Histogram(
		metricKeyPrefix+"process.duration",
		metric.WithDescription("Длительность обработки сообщения"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic(fmt.Sprintf("не удалось создать гистограмму process.duration: %v", err))
	}

	return &metricsMiddleware{
		meter:               meter,
		dispatchCounter:     dispatchCounter,
		processDurationHist: processDurationHist,
	}
}

// Wrap оборачивает провайдер для добавления сбора метрик.
func (m *metricsMiddleware) Wrap(next Provider) Provider {
	return &metricsProvider{
		next:                next,
		dispatchCounter:     m.dispatchCounter,
		processDurationHist: m.processDurationHist,
	}
}

// metricsProvider - это обертка над провайдером, которая собирает метрики.
type metricsProvider struct {
	next                Provider
	dispatchCounter     metric.Int64Counter
	processDurationHist metric.Float64Histogram
}

// Dispatch собирает метрики и отправляет сообщение.
func (p *metricsProvider) Dispatch(ctx context.Context, msg message.Message) result.Result[any] {
	startTime := time.Now()
	res := p.next.Dispatch(ctx, msg)
	duration := float64(time.Since(startTime).Milliseconds())

	status := statusSuccess
	if res.IsFailure() {
		status = statusFailure
	}
	kind, msgType, _ := describe(msg)

	attrs := metric.WithAttributes(
		attribute.String("message.kind", kind),
		attribute.String("message.type", msgType),
		attribute.String("status", status),
	)
	p.dispatchCounter.Add(ctx, 1, attrs)
	p.processDurationHist.Record(ctx, duration, attrs)

	return res
}

// tracingMiddleware реализует Middleware для распределенной трассировки OpenTelemetry.
type tracingMiddleware struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewTracingMiddleware создает новое middleware для трассировки.
func NewTracingMiddleware(tp trace.TracerProvider, p propagation.TextMapPropagator) Middleware {
	if tp == nil {
		return &noopMiddleware{}
	}

	if p == nil {
		p = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}

	return &tracingMiddleware{
		tracer: tp.Tracer(
			instrumentationName,
			trace.WithInstrumentationVersion(instrumentationVersion),
		),
		propagator: p,
	}
}

// Wrap оборачивает провайдер для добавления логики трассировки.
func (m *tracingMiddleware) Wrap(next Provider) Provider {
	return &tracingProvider{
		next:       next,
		tracer:     m.tracer,
		propagator: m.propagator,
	}
}

// tracingProvider - это обертка над провайдером, которая управляет спанами трассировки.
type tracingProvider struct {
	next       Provider
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// Dispatch извлекает контекст трассировки из метаданных сообщения и создает спан обработки.
func (p *tracingProvider) Dispatch(ctx context.Context, msg message.Message) result.Result[any] {
	if !isNil(msg) && msg.Metadata() != nil {
		ctx = p.propagator.Extract(ctx, propagation.MapCarrier(msg.Metadata()))
	}

	kind, msgType, msgID := describe(msg)
	spanName := fmt.Sprintf("%s process", msgType)

	ctx, span := p.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.message.kind", kind),
			attribute.String("messaging.message.id", msgID),
		),
	)
	defer span.End()

	res := p.next.Dispatch(ctx, msg)
	if err := res.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return res
}

// InjectTraceContext записывает контекст трассировки из ctx в метаданные сообщения,
// чтобы tracingMiddleware продолжил ту же трассу.
func InjectTraceContext(ctx context.Context, propagator propagation.TextMapPropagator, msg message.Metadatable) {
	if isNil(msg) || msg.Metadata() == nil {
		return
	}
	if propagator == nil {
		propagator = propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{})
	}
	propagator.Inject(ctx, propagation.MapCarrier(msg.Metadata()))
}

// applyMiddlewares применяет цепочку middleware к базовому провайдеру.
// Первый middleware в списке оказывается внешним.
func applyMiddlewares(provider Provider, middlewares ...Middleware) Provider {
	p := provider
	for i := len(middlewares) - 1; i >= 0; i-- {
		p = middlewares[i].Wrap(p)
	}
	return p
}

// noopMiddleware представляет собой пустое middleware.
type noopMiddleware struct{}

// Wrap просто возвращает следующий провайдер без изменений.
func (m *noopMiddleware) Wrap(next Provider) Provider {
	return next
}

// describe извлекает вид, тег типа и идентификатор сообщения для наблюдаемости.
func describe(msg message.Message) (kind, msgType, msgID string) {
	if isNil(msg) {
		return "unknown", "unknown", "unknown"
	}
	return string(msg.Kind()), msg.Type(), msg.ID().String()
}

// getHandlerName извлекает имя обработчика.
func getHandlerName(handler any) string {
	v := reflect.ValueOf(handler)
	if v.Kind() == reflect.Func {
		if pc := v.Pointer(); pc != 0 {
			if f := runtime.FuncForPC(pc); f != nil {
				return f.Name()
			}
		}
	}
	return reflect.TypeOf(handler).String()
}
