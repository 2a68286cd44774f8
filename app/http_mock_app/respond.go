package http_mock_app

import (
	"net/http"
	"runtime/debug"

	"mock_env_server/internal/domain/errs"
	"mock_env_server/utils"

	rf "github.com/go-chassis/go-chassis/v2/server/restful"
	"github.com/sirupsen/logrus"
)

const jsonContentType = "application/json"

type okResponse struct {
	OK     bool        `json:"ok"`
	Result interface{} `json:"result,omitempty"`
}

type failResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// statusFor maps an error kind to the response status.
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUnauthorized:
		return http.StatusUnauthorized
	case errs.KindForbidden:
		return http.StatusForbidden
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure answers {ok:false, error}. Errors that map to 500 get the generic
// prefix with the underlying message appended.
func writeFailure(b *rf.Context, err error, generic string) {
	status := statusFor(errs.KindOf(err))
	msg := err.Error()
	if status == http.StatusInternalServerError && generic != "" {
		msg = generic + ": " + msg
	}
	writeJSON(b, status, failResponse{Error: msg})
}

func writeOK(b *rf.Context, result interface{}) {
	writeJSON(b, http.StatusOK, okResponse{OK: true, Result: result})
}

func writeJSON(b *rf.Context, status int, body interface{}) {
	if err := b.WriteHeaderAndJSON(status, body, jsonContentType); err != nil {
		utils.GetLogger().Errorf("write response err: %v", err)
	}
}

// recoverHandler must be deferred directly by the handler.
func recoverHandler(b *rf.Context) {
	if err := recover(); err != nil {
		utils.GetLogger().WithFields(logrus.Fields{
			"panic": err,
			"stack": string(debug.Stack()),
			"path":  b.ReadRequest().URL.Path,
		}).Error("handle request panic")
		writeJSON(b, http.StatusInternalServerError, failResponse{Error: "Internal server error"})
	}
}
