package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lib/pq"
)

// handleStorageError maps a storage error to an HTTP response. Returns true
// if the error was handled, false when err is nil.
func handleStorageError(w http.ResponseWriter, err error, resource, resourceID string) bool {
	if err == nil {
		return false
	}

	slog.Error("Storage error", "error", err, "resource", resource, "resource_id", resourceID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			http.Error(w, resource+" already exists", http.StatusConflict)
			return true
		case "23503": // foreign_key_violation
			http.Error(w, "Request references a missing "+resource, http.StatusBadRequest)
			return true
		}
	}

	errStr := err.Error()
	if strings.Contains(errStr, "not found") {
		http.Error(w, resource+" not found", http.StatusNotFound)
		return true
	}
	if strings.Contains(errStr, "already exists") {
		http.Error(w, resource+" already exists", http.StatusConflict)
		return true
	}

	http.Error(w, "Failed to access "+resource, http.StatusInternalServerError)
	return true
}
