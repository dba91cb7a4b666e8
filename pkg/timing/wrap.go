package timing

import "github.com/psantana5/ct/internal/funcname"

// Option customises a wrapper.
type Option func(*options)

type options struct {
	name string
}

// WithName overrides the function name shown in the report.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

func nameOf(fn any, opts []Option) string {
	o := options{name: funcname.Of(fn)}
	for _, opt := range opts {
		opt(&o)
	}
	return o.name
}

// Wrap returns fn timed by r. The result and error of fn are returned
// unchanged; a report is printed only when fn returns a nil error.
// A nil r means Default().
func Wrap[A, R any](r *Reporter, fn func(A) (R, error), opts ...Option) func(A) (R, error) {
	r = orDefault(r)
	msg := finishedMessage(nameOf(fn, opts))
	return func(a A) (R, error) {
		var res R
		err := r.measure(msg, func() error {
			var err error
			res, err = fn(a)
			return err
		})
		return res, err
	}
}

// Wrap0 is Wrap for functions without arguments.
func Wrap0[R any](r *Reporter, fn func() (R, error), opts ...Option) func() (R, error) {
	r = orDefault(r)
	msg := finishedMessage(nameOf(fn, opts))
	return func() (R, error) {
		var res R
		err := r.measure(msg, func() error {
			var err error
			res, err = fn()
			return err
		})
		return res, err
	}
}

// Wrap2 is Wrap for functions of two arguments.
func Wrap2[A, B, R any](r *Reporter, fn func(A, B) (R, error), opts ...Option) func(A, B) (R, error) {
	r = orDefault(r)
	msg := finishedMessage(nameOf(fn, opts))
	return func(a A, b B) (R, error) {
		var res R
		err := r.measure(msg, func() error {
			var err error
			res, err = fn(a, b)
			return err
		})
		return res, err
	}
}

// WrapErr times a function that only reports an error.
func WrapErr(r *Reporter, fn func() error, opts ...Option) func() error {
	r = orDefault(r)
	msg := finishedMessage(nameOf(fn, opts))
	return func() error {
		return r.measure(msg, fn)
	}
}

// WrapFunc times a plain func(). It always logs unless fn panics.
func WrapFunc(r *Reporter, fn func(), opts ...Option) func() {
	r = orDefault(r)
	msg := finishedMessage(nameOf(fn, opts))
	return func() {
		r.measure(msg, func() error {
			fn()
			return nil
		})
	}
}
