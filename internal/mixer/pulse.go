package mixer

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// pulseVolumeNorm is PA_VOLUME_NORM, the raw volume for 100%.
const pulseVolumeNorm = 65536

// commandRunner runs a pactl invocation and returns its stdout.
type commandRunner func(ctx context.Context, args ...string) ([]byte, error)

// subscribeFunc starts `pactl subscribe` and returns its event stream. The
// stream ends when ctx is cancelled.
type subscribeFunc func(ctx context.Context) (io.ReadCloser, error)

// Pulse is a Backend driving PulseAudio (or PipeWire's pulse server)
// through the pactl command. Device IDs are source indexes.
type Pulse struct {
	run       commandRunner
	subscribe subscribeFunc
	logger    *log.Logger

	mu        sync.Mutex
	nextID    int
	listeners map[int]*pulseListener
	cancel    context.CancelFunc
	done      chan struct{}
}

type pulseListener struct {
	target DeviceID
	prop   Property
	fn     func()
	last   string
}

// NewPulse creates a pactl backend.
func NewPulse(logger *log.Logger) *Pulse {
	return newPulse(execPactl, execSubscribe, logger)
}

func newPulse(run commandRunner, sub subscribeFunc, logger *log.Logger) *Pulse {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Pulse{
		run:       run,
		subscribe: sub,
		logger:    logger,
		listeners: make(map[int]*pulseListener),
	}
}

func pactlCommand(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "pactl", args...)
	// pactl localizes its output; parsing relies on the C locale.
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	return cmd
}

func execPactl(ctx context.Context, args ...string) ([]byte, error) {
	return pactlCommand(ctx, args...).Output()
}

type cmdStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (s *cmdStream) Close() error {
	_ = s.ReadCloser.Close()
	return s.cmd.Wait()
}

func execSubscribe(ctx context.Context) (io.ReadCloser, error) {
	cmd := pactlCommand(ctx, "subscribe")
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, classifyPactlError(err)
	}
	return &cmdStream{ReadCloser: out, cmd: cmd}, nil
}

// classifyPactlError maps pactl failures onto the mixer error taxonomy.
func classifyPactlError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("pactl not installed: %w", ErrUnsupported)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := strings.TrimSpace(string(exitErr.Stderr))
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "no such entity"):
			return fmt.Errorf("pactl: %s: %w", msg, ErrNoDevice)
		case strings.Contains(lower, "access denied"):
			return fmt.Errorf("pactl: %s: %w", msg, ErrPermission)
		case strings.Contains(lower, "not supported"), strings.Contains(lower, "connection refused"):
			return fmt.Errorf("pactl: %s: %w", msg, ErrUnsupported)
		}
		if msg != "" {
			return fmt.Errorf("pactl: %s", msg)
		}
	}
	return fmt.Errorf("pactl: %w", err)
}

func (p *Pulse) pactl(args ...string) (string, error) {
	out, err := p.run(context.Background(), args...)
	if err != nil {
		return "", classifyPactlError(err)
	}
	return string(out), nil
}

// DefaultInputDevice resolves the default source to its index. Monitor
// sources capture playback, not a microphone, and are treated as no device.
func (p *Pulse) DefaultInputDevice() (DeviceID, error) {
	out, err := p.pactl("get-default-source")
	if err != nil {
		return InvalidDevice, err
	}
	name := strings.TrimSpace(out)
	if name == "" || strings.HasSuffix(name, ".monitor") {
		return InvalidDevice, ErrNoDevice
	}

	out, err = p.pactl("list", "short", "sources")
	if err != nil {
		return InvalidDevice, err
	}
	id, ok := parseSourceIndex(out, name)
	if !ok {
		return InvalidDevice, fmt.Errorf("source %q not listed: %w", name, ErrNoDevice)
	}
	return id, nil
}

// parseSourceIndex finds name in `pactl list short sources` output.
func parseSourceIndex(out, name string) (DeviceID, bool) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 || fields[1] != name {
			continue
		}
		idx, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return InvalidDevice, false
		}
		return DeviceID(idx), true
	}
	return InvalidDevice, false
}

func (p *Pulse) Muted(id DeviceID) (bool, error) {
	out, err := p.pactl("get-source-mute", id.String())
	if err != nil {
		return false, err
	}
	return parseMute(out)
}

func parseMute(out string) (bool, error) {
	v, ok := strings.CutPrefix(strings.TrimSpace(out), "Mute:")
	if !ok {
		return false, fmt.Errorf("unexpected pactl mute output %q", strings.TrimSpace(out))
	}
	switch strings.TrimSpace(v) {
	case "yes":
		return true, nil
	case "no":
		return false, nil
	}
	return false, fmt.Errorf("unexpected pactl mute value %q", strings.TrimSpace(v))
}

func (p *Pulse) SetMuted(id DeviceID, muted bool) error {
	arg := "0"
	if muted {
		arg = "1"
	}
	_, err := p.pactl("set-source-mute", id.String(), arg)
	return err
}

// rawVolumeRe matches the raw part of "front-left: 42597 /  65% / -11.23 dB".
var rawVolumeRe = regexp.MustCompile(`(\d+)\s*/\s*\d+%`)

func (p *Pulse) Volume(id DeviceID) (float32, error) {
	out, err := p.pactl("get-source-volume", id.String())
	if err != nil {
		return 0, err
	}
	return parseVolume(out)
}

// parseVolume returns the first channel's volume as a scalar. Volumes above
// 100% are reported as 1.
func parseVolume(out string) (float32, error) {
	m := rawVolumeRe.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("unexpected pactl volume output %q", strings.TrimSpace(out))
	}
	raw, err := strconv.ParseUint(m[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parse raw volume %q: %w", m[1], err)
	}
	return clampVolume(float32(raw) / pulseVolumeNorm), nil
}

func (p *Pulse) SetVolume(id DeviceID, volume float32) error {
	raw := int(math.Round(float64(clampVolume(volume)) * pulseVolumeNorm))
	_, err := p.pactl("set-source-volume", id.String(), strconv.Itoa(raw))
	return err
}

func (p *Pulse) DeviceName(id DeviceID) (string, error) {
	out, err := p.pactl("list", "sources")
	if err != nil {
		return "", err
	}
	desc, ok := parseSourceDescription(out, id)
	if !ok {
		return "", fmt.Errorf("source #%s: %w", id, ErrNoDevice)
	}
	return desc, nil
}

// parseSourceDescription extracts "Description:" of block "Source #<id>"
// from `pactl list sources` output.
func parseSourceDescription(out string, id DeviceID) (string, bool) {
	header := "Source #" + id.String()
	inSource := false
	for _, line := range strings.Split(out, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "Source #") {
			inSource = trimmed == header
			continue
		}
		if inSource && strings.HasPrefix(trimmed, "Description: ") {
			return strings.TrimPrefix(trimmed, "Description: "), true
		}
	}
	return "", false
}

// AddListener registers fn for prop on target. All listeners share one
// `pactl subscribe` process. pactl only reports that a source changed, so a
// listener fires when the value it observes differs from the last one seen.
func (p *Pulse) AddListener(target DeviceID, prop Property, fn func()) (func(), error) {
	l := &pulseListener{target: target, prop: prop, fn: fn}
	l.last, _ = p.observe(l)

	p.mu.Lock()
	if p.cancel == nil {
		ctx, cancel := context.WithCancel(context.Background())
		stream, err := p.subscribe(ctx)
		if err != nil {
			cancel()
			p.mu.Unlock()
			return nil, fmt.Errorf("pactl subscribe: %w", err)
		}
		p.cancel = cancel
		p.done = make(chan struct{})
		go p.eventLoop(stream, p.done)
		p.logger.Printf("pulse: subscribed to server events")
	}
	id := p.nextID
	p.nextID++
	p.listeners[id] = l
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { p.removeListener(id) })
	}, nil
}

func (p *Pulse) removeListener(id int) {
	p.mu.Lock()
	delete(p.listeners, id)
	if len(p.listeners) > 0 || p.cancel == nil {
		p.mu.Unlock()
		return
	}
	// Removal may happen from inside a listener on the event loop, so the
	// loop is not awaited here; Close waits for it.
	cancel := p.cancel
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	cancel()
	p.logger.Printf("pulse: unsubscribed from server events")
}

// observe reads the current value of the property a listener watches,
// formatted for change comparison.
func (p *Pulse) observe(l *pulseListener) (string, error) {
	switch l.prop {
	case PropDefaultInputDevice:
		id, err := p.DefaultInputDevice()
		if err != nil && !errors.Is(err, ErrNoDevice) {
			return "", err
		}
		return id.String(), nil
	case PropMute:
		m, err := p.Muted(l.target)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(m), nil
	case PropVolume:
		v, err := p.Volume(l.target)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(float64(v), 'f', 4, 32), nil
	}
	return "", ErrUnsupported
}

// subscribeEventRe matches lines like "Event 'change' on source #52".
var subscribeEventRe = regexp.MustCompile(`^Event '(\w+)' on ([\w-]+) #(-?\d+)$`)

type pulseEvent struct {
	kind     string
	facility string
	index    int64
}

func parseSubscribeEvent(line string) (pulseEvent, bool) {
	m := subscribeEventRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return pulseEvent{}, false
	}
	idx, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return pulseEvent{}, false
	}
	return pulseEvent{kind: m[1], facility: m[2], index: idx}, true
}

func (p *Pulse) eventLoop(stream io.ReadCloser, done chan struct{}) {
	defer close(done)
	scanner := bufio.NewScanner(stream)
	for scanner.Scan() {
		ev, ok := parseSubscribeEvent(scanner.Text())
		if !ok {
			continue
		}
		p.dispatch(ev)
	}
	if err := stream.Close(); err != nil {
		p.logger.Printf("pulse: subscribe exited: %v", err)
	}
}

// dispatchRank orders the listeners woken by one event: the default device
// first, then volume, then mute. A mute toggle writes the volume before the
// mute flag and delegates rely on seeing them in that order.
func dispatchRank(prop Property) int {
	switch prop {
	case PropDefaultInputDevice:
		return 0
	case PropVolume:
		return 1
	case PropMute:
		return 2
	}
	return 3
}

// dispatch fires the listeners affected by ev.
func (p *Pulse) dispatch(ev pulseEvent) {
	type candidate struct {
		id int
		l  *pulseListener
	}
	var candidates []candidate
	p.mu.Lock()
	for id, l := range p.listeners {
		switch {
		case l.prop == PropDefaultInputDevice:
			// Default changes arrive as server events; a removed or added
			// source can also change the default.
			if ev.facility == "server" || ev.facility == "source" {
				candidates = append(candidates, candidate{id, l})
			}
		case ev.facility == "source" && ev.kind == "change" && int64(l.target) == ev.index:
			candidates = append(candidates, candidate{id, l})
		}
	}
	p.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool {
		ri, rj := dispatchRank(candidates[i].l.prop), dispatchRank(candidates[j].l.prop)
		if ri != rj {
			return ri < rj
		}
		return candidates[i].id < candidates[j].id
	})

	for _, c := range candidates {
		l := c.l
		val, err := p.observe(l)
		if err != nil {
			p.logger.Printf("pulse: read %s on %s: %v", l.prop, l.target, err)
			continue
		}
		p.mu.Lock()
		live := p.isRegistered(l)
		changed := live && val != l.last
		if changed {
			l.last = val
		}
		p.mu.Unlock()
		if changed {
			l.fn()
		}
	}
}

func (p *Pulse) isRegistered(l *pulseListener) bool {
	for _, r := range p.listeners {
		if r == l {
			return true
		}
	}
	return false
}

// Close stops the subscribe process and drops all listeners.
func (p *Pulse) Close() error {
	p.mu.Lock()
	p.listeners = make(map[int]*pulseListener)
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	return nil
}
