package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"kanbanflow/domain"
)

// taskBodyMaxSize bounds create/update payloads.
const taskBodyMaxSize = 1 << 20

// Register wires up all API routes on the provided Echo instance.
//
// Mutating handlers deliberately do not publish realtime notifications:
// publishing on the fan-out channel is the mutating client's responsibility.
func Register(e *echo.Echo, store Store, logger *log.Logger) {
	e.GET("/api/tasks", listTasks(store, logger))
	e.POST("/api/tasks", createTask(store))
	e.PUT("/api/tasks/:id", updateTask(store))
	e.DELETE("/api/tasks/:id", deleteTask(store))
	e.GET("/api/health", health)
	e.GET("/api/boards", listBoards)
}

func listTasks(store Store, logger *log.Logger) echo.HandlerFunc {
	return func(c echo.Context) (err error) {
		ctx := c.Request().Context()
		metrics, spanCtx := newTaskRequestMetrics(ctx, logger)
		if spanCtx != nil {
			c.SetRequest(c.Request().WithContext(spanCtx))
			ctx = spanCtx
		}
		defer func() {
			metrics.Log(c.Response().Status, err)
		}()

		boardID := c.QueryParam("board")
		metrics.SetBoard(boardID)

		fetchStart := time.Now()
		tasks, fetchErr := store.GetAll(ctx, boardID)
		metrics.ObserveFetch(time.Since(fetchStart))
		if fetchErr != nil {
			metrics.SetErrorStage("storage")
			c.Logger().Error(fetchErr)
			err = c.JSON(http.StatusInternalServerError, errorResponse{Error: "storage unavailable"})
			return err
		}
		metrics.SetTasksReturned(len(tasks))

		encodeStart := time.Now()
		err = c.JSON(http.StatusOK, tasks)
		metrics.ObserveEncode(time.Since(encodeStart))
		if err != nil {
			metrics.SetErrorStage("encode_response")
		}
		return err
	}
}

func createTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		lr := io.LimitReader(c.Request().Body, taskBodyMaxSize)
		var in domain.Task
		if err := sonic.ConfigStd.NewDecoder(lr).Decode(&in); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		created, err := store.Create(ctx, domain.NewTask(in))
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func updateTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		lr := io.LimitReader(c.Request().Body, taskBodyMaxSize)
		var patch domain.Patch
		if err := sonic.ConfigStd.NewDecoder(lr).Decode(&patch); err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid body"})
		}

		updated, err := store.Update(ctx, c.Param("id"), patch)
		if err != nil {
			return writeStoreError(c, err)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func deleteTask(store Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := store.Delete(c.Request().Context(), c.Param("id")); err != nil {
			return writeStoreError(c, err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// writeStoreError maps typed store errors onto the REST surface.
func writeStoreError(c echo.Context, err error) error {
	var ve domain.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "validation failed", Field: ve.Field, Reason: ve.Reason})
	}
	var nf domain.NotFoundError
	if errors.As(err, &nf) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: nf.Error()})
	}
	var conflict domain.ConflictError
	if errors.As(err, &conflict) {
		return c.JSON(http.StatusConflict, errorResponse{Error: conflict.Error()})
	}
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "storage unavailable"})
}

// health is a liveness probe: it must answer even when the store is down,
// so it takes no dependencies at all.
func health(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:    "OK",
		Message:   "Backend is running",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// listBoards returns the demo board catalogue. Boards have no stored
// representation of their own; they exist as task and channel scopes.
func listBoards(c echo.Context) error {
	return c.JSON(http.StatusOK, []boardSummary{
		{ID: domain.DefaultBoardID, Title: "Projet Principal", TaskCount: 5},
		{ID: "sprint", Title: "Sprint Actuel", TaskCount: 3},
	})
}
