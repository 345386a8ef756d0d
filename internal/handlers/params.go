package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nkiryanov/booklend/internal/handlers/render"
	"github.com/nkiryanov/booklend/internal/handlers/userctx"
	"github.com/nkiryanov/booklend/internal/models"
)

// Read positive integer id from the path, render 400 if it is not
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		render.ServiceError(w, "Invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// Principal put by auth middleware
// Missing principal means route registered without middleware
func principal(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	p, ok := userctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
	}
	return p, ok
}

// Dates are validated with 'datetime=2006-01-02' tag before parsing
func parseDate(value *string) *time.Time {
	if value == nil {
		return nil
	}
	dt, err := time.Parse(time.DateOnly, *value)
	if err != nil {
		return nil
	}
	return &dt
}

func formatDate(dt *time.Time) *string {
	if dt == nil {
		return nil
	}
	s := dt.Format(time.DateOnly)
	return &s
}
