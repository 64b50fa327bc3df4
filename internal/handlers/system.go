package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var errPostgresNotConfigured = errors.New("postgres not configured")

// InstallDatabase installs the Postgres and ClickHouse schemas
// @Summary Install Database Schema
// @Description Executes SQL migrations for ClickHouse and PostgreSQL
// @Tags System
// @Produce json
// @Security AdminToken
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /system/install [post]
func (h *Handler) InstallDatabase(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	results := make(map[string]string)
	hasError := false

	// 1. ClickHouse: prediction history
	chSchemaPath := filepath.Join(h.migrationsDir, "clickhouse", "001_predictions.sql")
	if err := h.executeClickHouseSQL(ctx, chSchemaPath); err != nil {
		results["clickhouse"] = "failed: " + err.Error()
		hasError = true
	} else {
		results["clickhouse"] = "success"
	}

	// 2. PostgreSQL: fighter cards, skipped when cards come from CSV
	pgSchemaPath := filepath.Join(h.migrationsDir, "postgres", "001_fighters.sql")
	switch err := h.executePostgresSQL(ctx, pgSchemaPath); {
	case errors.Is(err, errPostgresNotConfigured):
		results["postgres"] = "skipped"
	case err != nil:
		results["postgres"] = "failed: " + err.Error()
		hasError = true
	default:
		results["postgres"] = "success"
	}

	statusCode := http.StatusOK
	if hasError {
		statusCode = http.StatusInternalServerError
	}

	h.jsonResponse(w, statusCode, map[string]interface{}{
		"status":  "completed",
		"results": results,
		"error":   hasError,
	})
}

// executePostgresSQL reads a SQL file and executes it on Postgres
func (h *Handler) executePostgresSQL(ctx context.Context, path string) error {
	if h.pg == nil {
		return errPostgresNotConfigured
	}
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "PostgreSQL", "path", path, "error", err)
		return err
	}

	if _, err := h.pg.Exec(ctx, string(content)); err != nil {
		h.logger.Errorw("failed to execute schema", "db", "PostgreSQL", "error", err)
		return err
	}

	h.logger.Infow("successfully installed schema", "db", "PostgreSQL")
	return nil
}

// executeClickHouseSQL runs a SQL file on ClickHouse one statement at a time
func (h *Handler) executeClickHouseSQL(ctx context.Context, path string) error {
	if h.ch == nil {
		return errors.New("clickhouse not configured")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		h.logger.Errorw("failed to read schema file", "db", "ClickHouse", "path", path, "error", err)
		return err
	}

	for _, stmt := range strings.Split(string(content), ";") {
		trimmed := strings.TrimSpace(stmt)
		if trimmed == "" {
			continue
		}

		if err := h.ch.Exec(ctx, trimmed); err != nil {
			h.logger.Warnw("statement execution failed", "db", "ClickHouse", "error", err, "statement", trimmed[:min(len(trimmed), 50)]+"...")
			return err
		}
	}

	h.logger.Infow("successfully installed schema", "db", "ClickHouse")
	return nil
}
