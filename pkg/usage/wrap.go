package usage

import (
	"github.com/psantana5/ct/internal/funcname"
	"github.com/psantana5/ct/internal/report"
)

const bytesPerMB = 1024 * 1024

// Option customises a wrapper.
type Option func(*options)

type options struct {
	name string
}

// WithName overrides the function name substituted for {name}.
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

// metric is one of the two measured quantities.
type metric struct {
	placeholder string
	format      func(*Config) string
	read        func(Sampler) (float64, error)
}

var cpuMetric = metric{
	placeholder: "cpu_usage",
	format:      (*Config).CPUFormat,
	read: func(s Sampler) (float64, error) {
		return s.CPUPercent()
	},
}

var ramMetric = metric{
	placeholder: "ram_usage",
	format:      (*Config).RAMFormat,
	read: func(s Sampler) (float64, error) {
		rss, err := s.RSSBytes()
		return float64(rss) / bytesPerMB, err
	},
}

// measure samples m before and after call and logs the delta. An error from
// call is returned untouched with nothing logged. Sampling and template
// errors are returned after a successful call.
func (c *Config) measure(m metric, name string, call func() error) error {
	sampler, err := c.Sampler()
	if err != nil {
		return err
	}
	before, err := m.read(sampler)
	if err != nil {
		return err
	}

	if err := call(); err != nil {
		return err
	}

	after, err := m.read(sampler)
	if err != nil {
		return err
	}
	u := report.NewUsage(name, before, after)
	msg, err := render(m.format(c), u.Name, m.placeholder, u.Delta())
	if err != nil {
		return err
	}
	c.Log(msg)
	return nil
}

func orDefault(c *Config) *Config {
	if c == nil {
		return defaultConfig
	}
	return c
}

func wrap1[A, R any](c *Config, m metric, fn func(A) (R, error), opts []Option) func(A) (R, error) {
	c = orDefault(c)
	name := nameOf(fn, opts)
	return func(a A) (R, error) {
		var res R
		err := c.measure(m, name, func() error {
			var err error
			res, err = fn(a)
			return err
		})
		return res, err
	}
}

func wrap0[R any](c *Config, m metric, fn func() (R, error), opts []Option) func() (R, error) {
	c = orDefault(c)
	name := nameOf(fn, opts)
	return func() (R, error) {
		var res R
		err := c.measure(m, name, func() error {
			var err error
			res, err = fn()
			return err
		})
		return res, err
	}
}

func wrap2[A, B, R any](c *Config, m metric, fn func(A, B) (R, error), opts []Option) func(A, B) (R, error) {
	c = orDefault(c)
	name := nameOf(fn, opts)
	return func(a A, b B) (R, error) {
		var res R
		err := c.measure(m, name, func() error {
			var err error
			res, err = fn(a, b)
			return err
		})
		return res, err
	}
}

func wrapErr(c *Config, m metric, fn func() error, opts []Option) func() error {
	c = orDefault(c)
	name := nameOf(fn, opts)
	return func() error {
		return c.measure(m, name, fn)
	}
}

// wrapFunc has no error channel, so a sampling or template failure panics.
func wrapFunc(c *Config, m metric, fn func(), opts []Option) func() {
	c = orDefault(c)
	name := nameOf(fn, opts)
	return func() {
		err := c.measure(m, name, func() error {
			fn()
			return nil
		})
		if err != nil {
			panic(err)
		}
	}
}

// WrapCPU returns fn instrumented with a CPU utilisation report. The result
// and error of fn are returned unchanged; nothing is logged when fn fails.
// A nil c means Default().
func WrapCPU[A, R any](c *Config, fn func(A) (R, error), opts ...Option) func(A) (R, error) {
	return wrap1(c, cpuMetric, fn, opts)
}

// WrapCPU0 is WrapCPU for functions without arguments.
func WrapCPU0[R any](c *Config, fn func() (R, error), opts ...Option) func() (R, error) {
	return wrap0(c, cpuMetric, fn, opts)
}

// WrapCPU2 is WrapCPU for functions of two arguments.
func WrapCPU2[A, B, R any](c *Config, fn func(A, B) (R, error), opts ...Option) func(A, B) (R, error) {
	return wrap2(c, cpuMetric, fn, opts)
}

// WrapCPUErr is WrapCPU for functions that only return an error.
func WrapCPUErr(c *Config, fn func() error, opts ...Option) func() error {
	return wrapErr(c, cpuMetric, fn, opts)
}

// WrapCPUFunc is WrapCPU for a plain func(). It panics if the report
// cannot be produced.
func WrapCPUFunc(c *Config, fn func(), opts ...Option) func() {
	return wrapFunc(c, cpuMetric, fn, opts)
}

// WrapRAM returns fn instrumented with a resident memory report in MB.
// The result and error of fn are returned unchanged; nothing is logged when
// fn fails. A nil c means Default().
func WrapRAM[A, R any](c *Config, fn func(A) (R, error), opts ...Option) func(A) (R, error) {
	return wrap1(c, ramMetric, fn, opts)
}

// WrapRAM0 is WrapRAM for functions without arguments.
func WrapRAM0[R any](c *Config, fn func() (R, error), opts ...Option) func() (R, error) {
	return wrap0(c, ramMetric, fn, opts)
}

// WrapRAM2 is WrapRAM for functions of two arguments.
func WrapRAM2[A, B, R any](c *Config, fn func(A, B) (R, error), opts ...Option) func(A, B) (R, error) {
	return wrap2(c, ramMetric, fn, opts)
}

// WrapRAMErr is WrapRAM for functions that only return an error.
func WrapRAMErr(c *Config, fn func() error, opts ...Option) func() error {
	return wrapErr(c, ramMetric, fn, opts)
}

// WrapRAMFunc is WrapRAM for a plain func(). It panics if the report
// cannot be produced.
func WrapRAMFunc(c *Config, fn func(), opts ...Option) func() {
	return wrapFunc(c, ramMetric, fn, opts)
}
