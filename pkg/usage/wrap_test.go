package usage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// fakeSampler returns scripted readings in order.
type fakeSampler struct {
	cpu    []float64
	rss    []uint64
	cpuErr error
	rssErr error
	reads  int
}

func (f *fakeSampler) CPUPercent() (float64, error) {
	if f.cpuErr != nil {
		return 0, f.cpuErr
	}
	v := f.cpu[f.reads%len(f.cpu)]
	f.reads++
	return v, nil
}

func (f *fakeSampler) RSSBytes() (uint64, error) {
	if f.rssErr != nil {
		return 0, f.rssErr
	}
	v := f.rss[f.reads%len(f.rss)]
	f.reads++
	return v, nil
}

type captureSink struct {
	messages []string
}

func (c *captureSink) Log(message string) {
	c.messages = append(c.messages, message)
}

func testConfig(s Sampler, opts ...ConfigOption) (*Config, *bytes.Buffer) {
	var stdout bytes.Buffer
	c := NewConfig(append([]ConfigOption{WithSampler(s)}, opts...)...)
	c.stdout = &stdout
	return c, &stdout
}

func work(n int) (int, error) {
	return n + 1, nil
}

func TestWrapCPUPrintsToStdoutByDefault(t *testing.T) {
	c, stdout := testConfig(&fakeSampler{cpu: []float64{10, 35.5}})

	got, err := WrapCPU(c, work)(1)

	require.NoError(t, err)
	assert.Equal(t, 2, got)
	assert.Equal(t, "Function work: CPU usage=25.5%\n", stdout.String())
}

func TestWrapRAMReportsMegabytes(t *testing.T) {
	c, stdout := testConfig(&fakeSampler{rss: []uint64{100 << 20, 100<<20 + 512<<10}})

	_, err := WrapRAM(c, work)(1)

	require.NoError(t, err)
	assert.Equal(t, "Function work: RAM usage=0.5MB\n", stdout.String())
}

func TestCustomFormatAndSink(t *testing.T) {
	sink := &captureSink{}
	c, stdout := testConfig(&fakeSampler{cpu: []float64{1, 3}})
	c.SetCPUFormat("{name}|{cpu_usage}")
	c.SetCustomLogger(sink)

	_, err := WrapCPU(c, work)(1)

	require.NoError(t, err)
	assert.Equal(t, []string{"work|2.0"}, sink.messages)
	assert.Empty(t, stdout.String())
}

func TestConfigChangesApplyToExistingWrappers(t *testing.T) {
	sink := &captureSink{}
	c, _ := testConfig(&fakeSampler{rss: []uint64{0, 1 << 20}}, WithSink(sink))
	wrapped := WrapRAM(c, work, WithName("job"))

	_, err := wrapped(1)
	require.NoError(t, err)
	c.SetRAMFormat("{name} grew {ram_usage:.2f} MB")
	_, err = wrapped(1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Function job: RAM usage=1.0MB",
		"job grew 1.00 MB",
	}, sink.messages)
}

func TestSinkFuncAndWriterSink(t *testing.T) {
	var got string
	var buf bytes.Buffer
	c, _ := testConfig(&fakeSampler{cpu: []float64{0}}, WithSink(SinkFunc(func(m string) { got = m })))

	require.NoError(t, WrapCPUErr(c, func() error { return nil }, WithName("noop"))())
	assert.Equal(t, "Function noop: CPU usage=0.0%", got)

	c.SetCustomLogger(WriterSink{W: &buf})
	require.NoError(t, WrapCPUErr(c, func() error { return nil }, WithName("noop"))())
	assert.Equal(t, "Function noop: CPU usage=0.0%\n", buf.String())
}

func TestWrappedErrorSkipsLogging(t *testing.T) {
	sampler := &fakeSampler{cpu: []float64{5}}
	c, stdout := testConfig(sampler)

	_, err := WrapCPU0(c, func() (string, error) { return "", errBoom })()

	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, sampler.reads, "only the before sample is taken")
	assert.Empty(t, stdout.String())
}

func TestWrappedPanicSkipsLogging(t *testing.T) {
	c, stdout := testConfig(&fakeSampler{rss: []uint64{1}})

	assert.PanicsWithValue(t, "kaboom", func() {
		WrapRAMFunc(c, func() { panic("kaboom") })()
	})
	assert.Empty(t, stdout.String())
}

func TestBadTemplateFailsAtLogTime(t *testing.T) {
	c, stdout := testConfig(&fakeSampler{cpu: []float64{1}})
	c.SetCPUFormat("{name} {nope}")
	calls := 0

	got, err := WrapCPU(c, func(n int) (int, error) {
		calls++
		return n, nil
	})(9)

	assert.ErrorIs(t, err, ErrFormat)
	assert.Equal(t, 9, got)
	assert.Equal(t, 1, calls)
	assert.Empty(t, stdout.String())
}

func TestWrapFuncPanicsOnBadTemplate(t *testing.T) {
	c, _ := testConfig(&fakeSampler{rss: []uint64{1}})
	c.SetRAMFormat("{name")

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrFormat)
	}()
	WrapRAMFunc(c, func() {})()
	t.Fatal("expected panic")
}

func TestSamplerErrorBeforeCall(t *testing.T) {
	c, _ := testConfig(&fakeSampler{cpuErr: ErrSample})
	called := false

	err := WrapCPUErr(c, func() error {
		called = true
		return nil
	})()

	assert.ErrorIs(t, err, ErrSample)
	assert.False(t, called)
}

func TestWrap2AndNames(t *testing.T) {
	sink := &captureSink{}
	c, _ := testConfig(&fakeSampler{cpu: []float64{0, 50}}, WithSink(sink))

	sum, err := WrapCPU2(c, func(a, b int) (int, error) { return a + b, nil }, WithName("sum"))(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, sum)

	_, err = WrapRAM2(NewConfig(WithSampler(&fakeSampler{rss: []uint64{0}}), WithSink(sink)),
		func(a, b string) (string, error) { return a + b, nil }, WithName("concat"))("a", "b")
	require.NoError(t, err)

	_, err = WrapRAM0(NewConfig(WithSampler(&fakeSampler{rss: []uint64{0}}), WithSink(sink)),
		func() (int, error) { return 0, nil }, WithName("zero"))()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Function sum: CPU usage=50.0%",
		"Function concat: RAM usage=0.0MB",
		"Function zero: RAM usage=0.0MB",
	}, sink.messages)
}

func TestWrapCPUFuncAndRAMErr(t *testing.T) {
	sink := &captureSink{}
	c, _ := testConfig(&fakeSampler{cpu: []float64{2, 2}, rss: []uint64{2, 2}}, WithSink(sink))

	WrapCPUFunc(c, func() {}, WithName("a"))()
	require.NoError(t, WrapRAMErr(c, func() error { return nil }, WithName("b"))())
	assert.ErrorIs(t, WrapRAMErr(c, func() error { return errBoom }, WithName("c"))(), errBoom)

	assert.Equal(t, []string{
		"Function a: CPU usage=0.0%",
		"Function b: RAM usage=0.0MB",
	}, sink.messages)
}

func TestDefaultConfigSetters(t *testing.T) {
	sink := &captureSink{}
	Default().SetSampler(&fakeSampler{cpu: []float64{1, 4}})
	defer Default().Reset()

	SetCustomLogger(sink)
	SetCPUFormat("{name}={cpu_usage:.1f}")
	SetRAMFormat("unused")

	_, err := WrapCPU(nil, work)(0)

	require.NoError(t, err)
	assert.Equal(t, []string{"work=3.0"}, sink.messages)
	assert.Equal(t, "unused", Default().RAMFormat())
}

func TestReset(t *testing.T) {
	c := NewConfig(WithCPUFormat("x"), WithRAMFormat("y"), WithSink(&captureSink{}))

	c.Reset()

	assert.Equal(t, DefaultCPUFormat, c.CPUFormat())
	assert.Equal(t, DefaultRAMFormat, c.RAMFormat())
	assert.Nil(t, c.sink)
}
