package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/semantest/replay/internal/automation"
	"github.com/semantest/replay/internal/storage"
)

// ExecuteAutomation runs a stored automation by id and returns a timed
// result envelope. Execution failure is an expected, user-visible outcome,
// so every failure mode — unknown id, storage trouble, runner error — is
// converted into the envelope rather than returned as an error.
//
// Usage is recorded before the runner is invoked, so the confidence nudge
// and use count reflect the decision to reuse, not the runner's fortunes.
func (m *Manager) ExecuteAutomation(ctx context.Context, id string, params map[string]any, execContext map[string]any) *automation.ExecutionResult {
	start := time.Now()

	fail := func(msg string) *automation.ExecutionResult {
		return &automation.ExecutionResult{
			Success:         false,
			Error:           msg,
			ExecutionTimeMs: time.Since(start).Milliseconds(),
			AutomationID:    id,
		}
	}

	a, err := m.store.GetByID(id)
	if errors.Is(err, storage.ErrNotFound) {
		return fail(fmt.Sprintf("automation not found: %s", id))
	}
	if err != nil {
		return fail(err.Error())
	}

	if err := m.store.UpdateUsage(id); err != nil {
		return fail(err.Error())
	}

	result, err := m.runSafely(ctx, a, params, execContext)
	if err != nil {
		return fail(err.Error())
	}

	return &automation.ExecutionResult{
		Success:         true,
		Result:          result,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		AutomationID:    id,
	}
}

// runSafely invokes the runner, converting a panic into an error so a
// misbehaving execution collaborator cannot crash the engine.
func (m *Manager) runSafely(ctx context.Context, a *automation.StoredAutomation, params, execContext map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("execution panicked: %v", r)
		}
	}()
	return m.runner.Run(ctx, a, params, execContext)
}
