// Package funcname derives a short display name for a Go func value.
package funcname

import (
	"reflect"
	"runtime"
	"strings"
)

// Of returns the short name of fn: the package path and package name are
// dropped, so "example.com/app/jobs.Rebuild" becomes "Rebuild". Method values
// yield the method name and generic instantiations lose their "[...]".
// Anything that is not a non-nil func yields "".
func Of(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return Short(f.Name())
}

// Short trims a fully qualified runtime function name.
func Short(full string) string {
	name := full
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.ReplaceAll(name, "[...]", "")
	if method, ok := strings.CutSuffix(name, "-fm"); ok {
		name = method
		if i := strings.LastIndex(name, "."); i >= 0 {
			name = name[i+1:]
		}
	}
	return name
}
