package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var ErrUnavailable = errors.New("storefront api unavailable")

const defaultErrorMessage = "Something went wrong"

// APIError is a non-2xx answer from the remote API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// NotFound reports whether err is an APIError with status 404.
func NotFound(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

func Unauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// The API reports failures either as {"msg": "..."} or as a validator
// result {"errors": [{"msg": "..."}]}.
type errorBody struct {
	Msg    string `json:"msg"`
	Errors []struct {
		Msg string `json:"msg"`
	} `json:"errors"`
}

func newAPIError(status int, raw []byte) *APIError {
	msg := defaultErrorMessage
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		switch {
		case body.Msg != "":
			msg = body.Msg
		case len(body.Errors) > 0 && body.Errors[0].Msg != "":
			msg = body.Errors[0].Msg
		}
	}
	return &APIError{Status: status, Message: msg}
}
