package zerror

import (
	"errors"
	"fmt"
	"strings"
)

// ZError is a classified domain error. Code is stable and machine readable
// (e.g. VOUCHER_EXPIRED), Msg is shown to API clients.
type ZError struct {
	parent error
	status Status
	code   string
	msg    string
}

func New(status Status, code, msg string) ZError {
	return ZError{status: status, code: code, msg: msg}
}

func (e ZError) Error() string {
	var b strings.Builder
	b.WriteString(e.status.String())
	b.WriteString(" ")
	b.WriteString(e.code)
	b.WriteString(": ")
	b.WriteString(e.msg)
	if e.parent != nil {
		b.WriteString(": ")
		b.WriteString(e.parent.Error())
	}
	return b.String()
}

// WrapParent returns a copy of e carrying parent as its cause. The receiver
// is left untouched so package level errors can be reused.
func (e ZError) WrapParent(parent error) ZError {
	if parent == nil {
		return e
	}
	e.parent = parent
	return e
}

// WithMsgf returns a copy of e with a formatted client message, keeping code
// and status so errors.Is still matches e.
func (e ZError) WithMsgf(format string, args ...any) ZError {
	e.msg = fmt.Sprintf(format, args...)
	return e
}

func (e ZError) Unwrap() error {
	return e.parent
}

// Is matches on code only.
func (e ZError) Is(target error) bool {
	t, ok := target.(ZError)
	return ok && e.code == t.code
}

func (e ZError) Status() Status { return e.status }
func (e ZError) Code() string   { return e.code }
func (e ZError) Msg() string    { return e.msg }
func (e ZError) Parent() error  { return e.parent }

// As returns the outermost ZError in err's chain.
func As(err error) (ZError, bool) {
	var zErr ZError
	ok := errors.As(err, &zErr)
	return zErr, ok
}

// StatusOf classifies err, reporting StatusUnknown for unclassified errors.
func StatusOf(err error) Status {
	if zErr, ok := As(err); ok {
		return zErr.status
	}
	return StatusUnknown
}

func NewUnauthorized(code, msg string) ZError {
	return New(StatusUnauthorized, code, msg)
}

func NewNotFound(code, msg string) ZError {
	return New(StatusNotFound, code, msg)
}

func NewUnprocessableEntity(code, msg string) ZError {
	return New(StatusUnprocessableEntity, code, msg)
}

func NewConflict(code, msg string) ZError {
	return New(StatusConflict, code, msg)
}

func NewTooManyRequests(code, msg string) ZError {
	return New(StatusTooManyRequests, code, msg)
}

func NewBadRequest(code, msg string) ZError {
	return New(StatusBadRequest, code, msg)
}

func NewValidationFailed(code, msg string) ZError {
	return New(StatusValidationFailed, code, msg)
}

func NewBadGateway(code, msg string) ZError {
	return New(StatusBadGateway, code, msg)
}
