package main

import (
	"context"
	"encoding/json"
	"fmt"

	"provenance-backend/application/commands"
	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
	"provenance-backend/domain/events"

	awsevents "github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

const (
	// DetailTypeRegenerate is the EventBridge detail type that requests a rebuild
	DetailTypeRegenerate = "summaries.regenerate"
	detailTypeScheduled  = "Scheduled Event"
)

// RegenerateRequest selects the filter for one rebuild. Both fields empty
// rebuilds everything.
type RegenerateRequest struct {
	CCIR   string `json:"ccir,omitempty"`
	CCIRID *int64 `json:"ccir_id,omitempty"`
}

// RegenerateResponse summarizes a rebuild for the invoker
type RegenerateResponse struct {
	Trigger        string   `json:"trigger"`
	Keywords       []string `json:"keywords,omitempty"`
	UnitsProcessed int      `json:"units_processed"`
	BulletsCreated int      `json:"bullets_created"`
}

// Worker rebuilds summaries in response to schedules, new raw facts and
// explicit requests
type Worker struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

func NewWorker(commandBus *bus.CommandBus, logger *zap.Logger) *Worker {
	return &Worker{commandBus: commandBus, logger: logger}
}

// Handle accepts an EventBridge event or a bare RegenerateRequest
func (w *Worker) Handle(ctx context.Context, payload json.RawMessage) (*RegenerateResponse, error) {
	trigger, req, err := parsePayload(payload)
	if err != nil {
		return nil, err
	}

	result, err := w.commandBus.Send(ctx, commands.RegenerateSummariesCommand{Keyword: req.CCIR, CCIRID: req.CCIRID})
	if err != nil {
		w.logger.Error("Regeneration failed", zap.String("trigger", trigger), zap.Error(err))
		return nil, err
	}

	r := result.(*services.RegenerationResult)
	w.logger.Info("Regeneration completed",
		zap.String("trigger", trigger),
		zap.Int("units", r.UnitsProcessed),
		zap.Int("bullets", r.BulletsCreated),
	)
	return &RegenerateResponse{
		Trigger:        trigger,
		Keywords:       r.Keywords,
		UnitsProcessed: r.UnitsProcessed,
		BulletsCreated: r.BulletsCreated,
	}, nil
}

func parsePayload(payload json.RawMessage) (string, RegenerateRequest, error) {
	var req RegenerateRequest

	var evt awsevents.CloudWatchEvent
	if err := json.Unmarshal(payload, &evt); err == nil && evt.DetailType != "" {
		switch evt.DetailType {
		case detailTypeScheduled:
			return "schedule", req, nil
		case events.TypeRawFactCreated:
			return "raw_fact", req, nil
		case DetailTypeRegenerate:
			if len(evt.Detail) > 0 {
				if err := json.Unmarshal(evt.Detail, &req); err != nil {
					return "", req, fmt.Errorf("invalid %s detail: %w", DetailTypeRegenerate, err)
				}
			}
			return "request", req, nil
		default:
			return "", req, fmt.Errorf("unsupported event detail type %q", evt.DetailType)
		}
	}

	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return "", req, fmt.Errorf("invalid regenerate request: %w", err)
		}
	}
	return "invoke", req, nil
}
