package manager

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"survivald/internal/model"
	"survivald/internal/schema"
	"survivald/pkg/types"
)

// PredictSurvival is the request path: readiness is checked first, then the
// raw JSON payload is validated, then the predictor runs on the single-row
// table. The predictor is never invoked when readiness or validation fails.
func (m *Manager) PredictSurvival(ctx context.Context, payload []byte) (types.PredictResponse, error) {
	lm, err := m.admit()
	if err != nil {
		return types.PredictResponse{}, err
	}
	p, err := schema.DecodePassenger(payload)
	if err != nil {
		m.rejectInvalid(ctx, err)
		return types.PredictResponse{}, err
	}
	return m.predict(ctx, lm, p)
}

// Predict runs an already typed record, as decoded by the CLI predict command.
func (m *Manager) Predict(ctx context.Context, p types.Passenger) (types.PredictResponse, error) {
	lm, err := m.admit()
	if err != nil {
		return types.PredictResponse{}, err
	}
	if err := schema.Check(p); err != nil {
		m.rejectInvalid(ctx, err)
		return types.PredictResponse{}, err
	}
	return m.predict(ctx, lm, p)
}

// CheckReady returns a ServiceNotReadyError unless the model is ready. The
// HTTP layer calls it before looking at the request so that every request
// made while not ready gets the same answer.
func (m *Manager) CheckReady() error {
	_, err := m.admit()
	return err
}

// admit is acquire plus not-ready accounting.
func (m *Manager) admit() (*loadedModel, error) {
	lm, err := m.acquire()
	if err != nil {
		m.notReady.Add(1)
		predictionsTotal.WithLabelValues(outcomeNotReady).Inc()
	}
	return lm, err
}

func (m *Manager) rejectInvalid(ctx context.Context, err error) {
	m.validationErrs.Add(1)
	predictionsTotal.WithLabelValues(outcomeValidation).Inc()
	m.logger(ctx).Debug().Err(err).Msg("request rejected")
}

func (m *Manager) predict(ctx context.Context, lm *loadedModel, p types.Passenger) (types.PredictResponse, error) {
	label, err := invoke(lm.predictor, schema.Row(p))
	if err == nil {
		status, ok := m.labels.Status(label)
		if ok {
			m.predictions.Add(1)
			predictionsTotal.WithLabelValues(outcomeOK).Inc()
			return types.PredictResponse{Prediction: label, SurvivalStatus: status}, nil
		}
		err = fmt.Errorf("predictor returned label %d with no status mapping", label)
	}
	m.predictErrs.Add(1)
	predictionsTotal.WithLabelValues(outcomePrediction).Inc()
	m.logger(ctx).Error().Err(err).Msg("prediction failed")
	return types.PredictResponse{}, &PredictionError{Err: err}
}

// invoke calls the predictor, turning a panic into an error.
func invoke(p model.Predictor, row model.Row) (label int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predictor panic: %v", r)
		}
	}()
	return p.Predict(row)
}

// logger prefers a request-scoped logger carried in ctx.
func (m *Manager) logger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &m.log
}
