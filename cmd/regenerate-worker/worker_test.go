package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"provenance-backend/application/commands"
	"provenance-backend/application/commands/bus"
	"provenance-backend/application/services"
	"provenance-backend/infrastructure/persistence/sqlstore/sqlstoretest"
	pkgerrors "provenance-backend/pkg/errors"
)

func newWorker(t *testing.T) *Worker {
	t.Helper()
	store := sqlstoretest.New(t)
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	catalog := services.NewCatalogService(store, nil, logger, nil)
	b := bus.NewCommandBus()
	require.NoError(t, commands.RegisterHandlers(b,
		catalog,
		services.NewProvenanceService(store, nil, logger, nil),
		services.NewInvalidationService(store, nil, logger, nil),
		services.NewRegenerationService(store, nil, logger, nil, nil),
	))

	brigade, err := catalog.CreateUnit(ctx, "1st Brigade", "brigade", nil)
	require.NoError(t, err)
	parent := brigade.ID()
	company, err := catalog.CreateUnit(ctx, "A Company", "company", &parent)
	require.NoError(t, err)
	_, err = catalog.CreateRawFact(ctx, company.ID(), "enemy armor spotted", "")
	require.NoError(t, err)
	_, err = catalog.CreateRawFact(ctx, company.ID(), "supply route open", "")
	require.NoError(t, err)
	_, err = catalog.CreateCCIR(ctx, brigade.ID(), "Armor", []string{"armor"}, true)
	require.NoError(t, err)

	return NewWorker(b, logger)
}

func TestWorker_Handle(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		trigger  string
		bullets  int
		keywords []string
	}{
		{
			name:    "scheduled event",
			payload: `{"source":"aws.events","detail-type":"Scheduled Event","detail":{}}`,
			trigger: "schedule",
			bullets: 4,
		},
		{
			name:    "raw fact created",
			payload: `{"source":"provenance-backend","detail-type":"raw_fact.created","detail":{"raw_fact_id":2}}`,
			trigger: "raw_fact",
			bullets: 4,
		},
		{
			name:     "regenerate request with keyword",
			payload:  `{"source":"ops","detail-type":"summaries.regenerate","detail":{"ccir":"armor"}}`,
			trigger:  "request",
			bullets:  2,
			keywords: []string{"armor"},
		},
		{
			name:     "direct invocation with ccir id",
			payload:  `{"ccir_id":1}`,
			trigger:  "invoke",
			bullets:  2,
			keywords: []string{"armor"},
		},
		{
			name:    "empty direct invocation",
			payload: `{}`,
			trigger: "invoke",
			bullets: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorker(t)
			resp, err := w.Handle(context.Background(), json.RawMessage(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.trigger, resp.Trigger)
			assert.Equal(t, 2, resp.UnitsProcessed)
			assert.Equal(t, tt.bullets, resp.BulletsCreated)
			assert.Equal(t, tt.keywords, resp.Keywords)
		})
	}
}

func TestWorker_HandleErrors(t *testing.T) {
	w := newWorker(t)
	ctx := context.Background()

	_, err := w.Handle(ctx, json.RawMessage(`{"detail-type":"unit.created","detail":{}}`))
	assert.ErrorContains(t, err, "unsupported event detail type")

	_, err = w.Handle(ctx, json.RawMessage(`{"ccir_id":99}`))
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = w.Handle(ctx, json.RawMessage(`{"ccir":"armor","ccir_id":1}`))
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = w.Handle(ctx, json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}
