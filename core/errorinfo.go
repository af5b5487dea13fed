package core

import (
	"fmt"
	"go/token"
	"reflect"

	"github.com/cockroachdb/errors"
)

// ErrorInfo describes an error attached to an exception record.
type ErrorInfo struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// namer lets an error choose the name reported for it.
type namer interface {
	ErrorName() string
}

// NewErrorInfo derives an ErrorInfo from err. Name is the innermost exported
// type name in the chain with pointer indirection stripped, "Error" when the
// chain has none, unless some error in the chain implements ErrorName. Message is err.Error(). Stack is set when
// the verbose rendering of err carries more than the message, as it does
// for errors created with github.com/cockroachdb/errors.
func NewErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	info := &ErrorInfo{
		Name:    errorName(err),
		Message: err.Error(),
	}
	if verbose := fmt.Sprintf("%+v", err); verbose != info.Message {
		info.Stack = verbose
	}
	return info
}

// fallbackErrorName names errors whose chain holds no exported type, such
// as those built by errors.New.
const fallbackErrorName = "Error"

func errorName(err error) string {
	var n namer
	if errors.As(err, &n) {
		if name := n.ErrorName(); name != "" {
			return name
		}
	}
	name := ""
	for e := err; e != nil; e = errors.UnwrapOnce(e) {
		if tn := TypeName(e); token.IsExported(tn) {
			name = tn
		}
	}
	if name == "" {
		return fallbackErrorName
	}
	return name
}

// TypeName returns the name of v's dynamic type with pointer indirection
// stripped. It never calls methods on v.
func TypeName(v any) string {
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
