package handler

import (
	"net/http"

	"github.com/josh-kwaku/ledger-mapping-engine/internal/auth"
	"github.com/josh-kwaku/ledger-mapping-engine/internal/domain"
)

// periodFromPath reads {period}, which is either a period id or "latest".
func periodFromPath(r *http.Request) (domain.PeriodRef, *AppError) {
	ref, err := domain.ParsePeriodRef(r.PathValue("period"))
	if err != nil {
		return domain.PeriodRef{}, ErrPeriodNotFound
	}
	return ref, nil
}

func subjectFromRequest(r *http.Request) *string {
	s, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		return nil
	}
	return &s
}
