package ecmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sgcd/core"
	"sgcd/protocol"
)

type sentCommand struct {
	header  []byte
	timeout uint16
	opts    core.Option
	text    string
}

type fakeDisplay struct {
	state    core.State
	result   core.Result
	power    []bool
	contrast byte
	penSize  byte
	font     core.FontSetting
	sleep    []byte
	idle     uint8
	sent     []sentCommand
	err      error
	trace    []core.TraceEvent
}

func (f *fakeDisplay) RequestPowerState(on bool) error {
	f.power = append(f.power, on)
	return f.err
}
func (f *fakeDisplay) PowerState() core.State  { return f.state }
func (f *fakeDisplay) LastResult() core.Result { return f.result }
func (f *fakeDisplay) SetContrast(level byte) error {
	f.contrast = level
	return f.err
}
func (f *fakeDisplay) SetPenSize(size byte) error {
	f.penSize = size
	return f.err
}
func (f *fakeDisplay) SetFont(font core.FontSetting) error {
	f.font = font
	return f.err
}
func (f *fakeDisplay) Font() core.FontSetting { return f.font }
func (f *fakeDisplay) Sleep(mode byte) error {
	f.sleep = append(f.sleep, mode)
	return f.err
}
func (f *fakeDisplay) SetIdleTimeout(minutes uint8) { f.idle = minutes }
func (f *fakeDisplay) SendCommand(header []byte, timeout uint16, opts core.Option, text []byte) error {
	f.sent = append(f.sent, sentCommand{header, timeout, opts, string(text)})
	return f.err
}
func (f *fakeDisplay) Trace() []core.TraceEvent { return f.trace }

type fakeTargets struct {
	target string
}

func (f *fakeTargets) SetTarget(target string) error {
	f.target = target
	return nil
}
func (f *fakeTargets) Target() string { return f.target }

func newSGC() (*Registry, *fakeDisplay, *fakeTargets) {
	r := NewRegistry()
	d := &fakeDisplay{state: core.StateShutdown, font: core.DefaultFont}
	tg := &fakeTargets{}
	RegisterSGC(r, d, tg)
	return r, d, tg
}

func run(t *testing.T, r *Registry, line string) string {
	t.Helper()
	reply, err := r.Dispatch(line)
	require.NoError(t, err, line)
	return reply
}

func TestSGCPower(t *testing.T) {
	r, d, _ := newSGC()

	assert.Equal(t, "SHUTDOWN", run(t, r, "sgc_pwr"))
	assert.Equal(t, "OK", run(t, r, "sgc_pwr 1"))
	assert.Equal(t, "OK", run(t, r, "sgc_pwr off"))
	assert.Equal(t, []bool{true, false}, d.power)

	_, err := r.Dispatch("sgc_pwr 2")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestSGCBusy(t *testing.T) {
	r, d, _ := newSGC()
	d.err = protocol.ErrBusy

	_, err := r.Dispatch("sgc_contrast 3")
	assert.ErrorIs(t, err, protocol.ErrBusy)
}

func TestSGCResult(t *testing.T) {
	r, d, _ := newSGC()
	d.result = core.ResultFromReset
	assert.Equal(t, "FROM_RESET", run(t, r, "sgc_result"))
}

func TestSGCSettings(t *testing.T) {
	r, d, _ := newSGC()

	run(t, r, "sgc_contrast 0x0a")
	run(t, r, "sgc_pensize 1")
	run(t, r, "sgc_sleep 0")
	run(t, r, "sgc_timeout 5")

	assert.Equal(t, byte(10), d.contrast)
	assert.Equal(t, byte(1), d.penSize)
	assert.Equal(t, []byte{0}, d.sleep)
	assert.Equal(t, uint8(5), d.idle)

	_, err := r.Dispatch("sgc_contrast 256")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestSGCFont(t *testing.T) {
	r, d, _ := newSGC()

	assert.Equal(t, "0 255 255", run(t, r, "sgc_font"))

	run(t, r, "sgc_font 2")
	assert.Equal(t, core.FontSetting{ID: 2, Color0: 0xFF, Color1: 0xFF}, d.font)

	run(t, r, "sgc_font 1 0x12 0x34")
	assert.Equal(t, core.FontSetting{ID: 1, Color0: 0x12, Color1: 0x34}, d.font)

	_, err := r.Dispatch("sgc_font 1 2")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestSGCRawCommand(t *testing.T) {
	r, d, _ := newSGC()

	run(t, r, "sgc_cmd 25 59 03 01")
	require.Len(t, d.sent, 1)
	assert.Equal(t, []byte{0x59, 0x03, 0x01}, d.sent[0].header)
	assert.Equal(t, uint16(25), d.sent[0].timeout)
	assert.Equal(t, core.OptNormal, d.sent[0].opts)

	_, err := r.Dispatch("sgc_cmd 25 5")
	assert.Error(t, err)
}

func TestSGCText(t *testing.T) {
	r, d, _ := newSGC()

	run(t, r, "sgc_text 1 2 0 0xff 0xe0 hello world")
	require.Len(t, d.sent, 1)
	assert.Equal(t, protocol.TextHeader(1, 2, 0, 0xFFE0), d.sent[0].header)
	assert.Equal(t, core.OptString, d.sent[0].opts)
	assert.Equal(t, "hello world", d.sent[0].text)
}

func TestSGCTargetAndTrace(t *testing.T) {
	r, d, tg := newSGC()

	run(t, r, "sgc_ip 192.168.1.10:2701")
	assert.Equal(t, "192.168.1.10:2701", tg.target)
	assert.Equal(t, "192.168.1.10:2701", run(t, r, "sgc_ip"))

	d.trace = []core.TraceEvent{{Kind: core.TraceTx, Tick: 3, State: core.StateAutoBaud, Value: 0x55}}
	assert.Equal(t, d.trace[0].Format(), run(t, r, "sgc_trace"))
}

func TestSGCNoTargets(t *testing.T) {
	r := NewRegistry()
	RegisterSGC(r, &fakeDisplay{}, nil)
	_, ok := r.Lookup("sgc_ip")
	assert.False(t, ok)
}
