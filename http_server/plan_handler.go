package http_server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/floedb/floe/parquettable"
	"github.com/floedb/floe/partition"
	"github.com/floedb/floe/plan"
	"github.com/floedb/floe/utils"
	"github.com/rs/zerolog"
)

type (
	PlanReqBody struct {
		// Glob patterns handed to read_parquet, in argument order.
		Patterns []string `validate:"required,min=1"`
		Database *string
		// Zero-based column indices to project. Omitted means all columns.
		Projection []int
		// Optional predicate source text, forwarded opaquely.
		Filter *string
		Limit  *uint64
	}

	PlanResBody struct {
		PlanID    string
		TableName string
		Stats     plan.Statistics
		// Partitions are tagged envelopes, decodable by any worker that
		// registered the kind.
		Partitions []json.RawMessage
	}
)

func (s *HTTPServer) PlanHandler(c *CustomContext) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), time.Second*60)
	defer cancel()

	logger := zerolog.Ctx(ctx)

	var reqBody PlanReqBody
	if err := ValidateRequest(c, &reqBody); err != nil {
		return c.String(http.StatusBadRequest, err.Error())
	}

	tableID, err := s.catalog.NextTableID(ctx)
	if err != nil {
		return c.InternalError(err, "error getting next table id")
	}

	args := make([]any, len(reqBody.Patterns))
	for i, p := range reqBody.Patterns {
		args[i] = p
	}

	table, err := parquettable.Create(
		ctx,
		utils.Deref(reqBody.Database, "default"),
		parquettable.FunctionName,
		tableID,
		args,
		s.security,
		s.operator,
	)
	if errors.Is(err, parquettable.ErrInsecureDisabled) {
		return c.String(http.StatusForbidden, err.Error())
	}
	if errors.Is(err, parquettable.ErrNeedsArguments) ||
		errors.Is(err, parquettable.ErrStringArgsOnly) ||
		errors.Is(err, parquettable.ErrNoFilesMatched) ||
		errors.Is(err, parquettable.ErrGlobFailed) {
		return c.String(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return c.InternalError(err, "error creating table function")
	}

	var pushDown *plan.PushDown
	if reqBody.Projection != nil || reqBody.Filter != nil || reqBody.Limit != nil {
		pushDown = &plan.PushDown{
			Projection: reqBody.Projection,
			Limit:      reqBody.Limit,
		}
		if reqBody.Filter != nil {
			pushDown.Filter = plan.RawExpression(*reqBody.Filter)
		}
	}

	stats, parts, err := table.ReadPartitions(ctx, pushDown)
	if err != nil {
		return c.InternalError(err, "error reading partitions")
	}

	res := PlanResBody{
		PlanID:     utils.GenKSortedID("plan_"),
		TableName:  table.TableInfo().Name,
		Stats:      stats,
		Partitions: make([]json.RawMessage, 0, len(parts)),
	}
	for _, p := range parts {
		b, err := partition.Encode(p)
		if err != nil {
			return c.InternalError(err, "error encoding partition")
		}
		res.Partitions = append(res.Partitions, b)
	}

	logger.Debug().Str("planID", res.PlanID).Int("partitions", len(parts)).Uint64("readRows", stats.ReadRows).Msg("planned scan")

	return c.JSON(http.StatusOK, res)
}
