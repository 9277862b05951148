package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"salesreport/internal/infrastructure"
)

// Manager executes the registered steps of an operation in order
type Manager struct {
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *infrastructure.ReportMetrics
}

// NewManager creates a new operation manager.
// A nil tracer disables tracing; nil metrics disables metric recording.
func NewManager(registry *Registry, logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.ReportMetrics) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("operations")
	}
	return &Manager{
		registry: registry,
		logger:   infrastructure.WithComponent(logger, "operations"),
		tracer:   tracer,
		metrics:  metrics,
	}
}

// RegisterStage adds a Step to the manager's registry
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// Execute runs every registered Step in order and stops at the first failure.
// Steps after a failed one are marked skipped. A request without an ID takes the
// context's trace id, which is generated when the caller did not set one.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	ctx = infrastructure.EnsureTraceID(ctx)
	if req.ID == "" {
		req.ID = infrastructure.GetTraceID(ctx)
	}

	state := NewOperationState(req.ID)

	steps := m.registry.List()
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.Start(ctx, "operation",
		trace.WithAttributes(
			attribute.String("operation.id", req.ID),
			attribute.Int("operation.steps", len(steps)),
		))
	defer span.End()

	m.logger.InfoContext(ctx, "operation_started",
		slog.String("operation_id", req.ID),
		slog.Int("step_count", len(steps)))

	state.Start()
	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
		m.logger.InfoContext(ctx, "operation_completed",
			slog.String("operation_id", req.ID),
			slog.Duration("duration", state.Duration()))
	case ctx.Err() != nil:
		state.Cancel(err)
		infrastructure.RecordError(ctx, err)
		m.logger.WarnContext(ctx, "operation_cancelled",
			slog.String("operation_id", req.ID),
			slog.String("error", err.Error()))
	default:
		state.Fail(err)
		infrastructure.RecordError(ctx, err)
		m.logger.ErrorContext(ctx, "operation_failed",
			slog.String("operation_id", req.ID),
			slog.String("error", err.Error()))
	}

	return m.createResponse(state), err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_stage",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("stage_number", i+1),
			slog.Int("total_stages", len(steps)))

		if err := m.executeStage(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("Previous Step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStage validates and runs a single Step inside its own span
func (m *Manager) executeStage(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())

	ctx, span := m.tracer.Start(ctx, "step."+step.ID(),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		))
	defer span.End()

	if err := step.Validate(state); err != nil {
		m.logger.ErrorContext(ctx, "validation_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.String("error", err.Error()))
		stepState.Fail(err)
		infrastructure.RecordError(ctx, err)
		infrastructure.RecordStepMetrics(ctx, m.metrics, step.ID(), 0, err)
		return NewValidationError(step.ID(), err)
	}

	stepState.Start()
	startTime := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(startTime)

	infrastructure.RecordStepMetrics(ctx, m.metrics, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		infrastructure.RecordError(ctx, err)
		m.logger.ErrorContext(ctx, "stage_execution_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "stage_completed_successfully",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// skipRemaining marks every pending Step in steps as skipped
func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if stepState := state.GetStage(step.ID()); stepState != nil && stepState.GetStatus() == StepStatusPending {
			stepState.Skip(reason)
		}
	}
}

// createResponse creates a operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
		State:    state,
	}

	if state.Error != nil {
		resp.Error = state.Error.Error()
	}

	return resp
}
