package utils

import pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"

// ResponseData is the envelope returned by the ancillary REST responses
// (the health endpoint, the catch-all not-found handler and the recovery
// middleware) that sit alongside the JSON-RPC facade.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded converts a non-nil error into a panic carrying a
// pkgError.GenericError, so the recovery middleware can render it as a
// typed response instead of a bare 500.
func PanicIfNeeded(err error) {
	if err == nil {
		return
	}
	if _, ok := err.(pkgError.GenericError); ok {
		panic(err)
	}
	panic(pkgError.InternalError(err.Error()))
}
