package middleware

import (
	"net/http"

	"github.com/billbatista/acasinha-splitter/eventlogger"
	chimiddleware "github.com/go-chi/chi/middleware"
)

const (
	MetaRequestID  = "request_id"
	MetaRemoteAddr = "remote_addr"
	MetaSource     = "source"
)

// EventMetadata records where a request came from in its context so that
// ledger events raised while serving it can be traced back. It must run
// after chimiddleware.RequestID.
func EventMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		md := map[string]string{
			MetaSource:     "web",
			MetaRemoteAddr: r.RemoteAddr,
		}
		if id := chimiddleware.GetReqID(r.Context()); id != "" {
			md[MetaRequestID] = id
		}
		ctx := eventlogger.ContextWithMetadata(r.Context(), md)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID extracts the request id recorded by EventMetadata.
func RequestID(r *http.Request) (string, bool) {
	id, ok := eventlogger.MetadataFromContext(r.Context())[MetaRequestID]
	return id, ok
}
