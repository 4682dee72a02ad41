package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

type ctxKey int

const profileKey ctxKey = 0

// requireProfile resolves the calling party from the profile_id
// header and rejects with 401 when it cannot. Identity resolution
// always completes here, before any handler opens a lock or a
// transaction.
func (s *Server) requireProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.Header.Get("profile_id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
			return
		}
		party, err := s.store.GetParty(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusUnauthorized, models.ErrUnauthenticated.Error())
			return
		}
		ctx := context.WithValue(r.Context(), profileKey, party)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func profileFrom(r *http.Request) (models.Party, bool) {
	party, ok := r.Context().Value(profileKey).(models.Party)
	return party, ok
}

// requestLogger logs one line per request with status and duration.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
