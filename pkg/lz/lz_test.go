package lz

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

type sliceSource struct {
	data []byte
	pos  int
}

func (s *sliceSource) Fill(buf []byte) int {
	n := copy(buf, s.data[s.pos:])
	s.pos += n
	return n
}

type event struct {
	distance int
	length   int
	literal  byte
}

// recorder rebuilds the input from the events it receives.
type recorder struct {
	t       *testing.T
	out     []byte
	events  []event
	reject  func(distance, length int) bool
	onEvent func()
	maxDist int
}

func (r *recorder) Match(distance, length int) bool {
	if r.reject != nil && r.reject(distance, length) {
		return false
	}
	if distance <= 0 || distance > len(r.out) {
		r.t.Fatalf("match distance %d outside output of %d bytes", distance, len(r.out))
	}
	if r.maxDist > 0 && distance > r.maxDist {
		r.t.Fatalf("match distance %d exceeds %d", distance, r.maxDist)
	}
	start := len(r.out) - distance
	for i := 0; i < length; i++ {
		r.out = append(r.out, r.out[start+i])
	}
	r.events = append(r.events, event{distance: distance, length: length})
	if r.onEvent != nil {
		r.onEvent()
	}
	return true
}

func (r *recorder) Literal(c byte) {
	r.out = append(r.out, c)
	r.events = append(r.events, event{length: 1, literal: c})
	if r.onEvent != nil {
		r.onEvent()
	}
}

func testConfig() Config {
	return Config{Window: 1 << 15, MaxDist: 1<<15 - 3, MaxMatch: 257, MinMatch: 2, FrameSize: 1 << 15}
}

func testInputs() []struct {
	name string
	data []byte
} {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 70000)
	rng.Read(random)

	pattern := make([]byte, 5000)
	for i := range pattern {
		pattern[i] = byte(i % 17)
	}

	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog; "), 1000)

	return []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "single-byte", data: []byte{0x42}},
		{name: "repeated-300", data: bytes.Repeat([]byte{'a'}, 300)},
		{name: "random-70000", data: random},
		{name: "period-17", data: pattern},
		{name: "text", data: text},
		{name: "zeros-40000", data: make([]byte, 40000)},
	}
}

func runMatcher(t *testing.T, cfg Config, data []byte, budget int, rec *recorder) *Matcher {
	t.Helper()
	rec.t = t
	m, err := New(cfg, &sliceSource{data: data}, rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for guard := 0; m.LeftToProcess() > 0 || !m.AtEOF(); guard++ {
		if guard > len(data)+10 {
			t.Fatal("matcher made no progress")
		}
		m.Compress(budget)
	}
	return m
}

func TestCompress_ReconstructsInput(t *testing.T) {
	for _, in := range testInputs() {
		for _, budget := range []int{1 << 15, 3000} {
			t.Run(fmt.Sprintf("%s/budget%d", in.name, budget), func(t *testing.T) {
				cfg := testConfig()
				rec := &recorder{maxDist: cfg.MaxDist}
				m := runMatcher(t, cfg, in.data, budget, rec)
				if !bytes.Equal(rec.out, in.data) {
					t.Fatalf("reconstruction mismatch: got %d bytes, want %d", len(rec.out), len(in.data))
				}
				if m.Position() != int64(len(in.data)) {
					t.Fatalf("position %d, want %d", m.Position(), len(in.data))
				}
			})
		}
	}
}

func TestCompress_MatchesStayInsideFrames(t *testing.T) {
	cfg := testConfig()
	cfg.FrameSize = 1000
	data := bytes.Repeat([]byte("abcdefgh"), 4000)
	rec := &recorder{maxDist: cfg.MaxDist}
	runMatcher(t, cfg, data, 1<<15, rec)

	pos := 0
	for _, ev := range rec.events {
		if ev.length > 1 && pos/cfg.FrameSize != (pos+ev.length-1)/cfg.FrameSize {
			t.Fatalf("match at %d length %d crosses a frame boundary", pos, ev.length)
		}
		if ev.length > cfg.MaxMatch {
			t.Fatalf("match length %d exceeds %d", ev.length, cfg.MaxMatch)
		}
		pos += ev.length
	}
	if !bytes.Equal(rec.out, data) {
		t.Fatal("reconstruction mismatch")
	}
}

func TestCompress_MaxDistance(t *testing.T) {
	cfg := Config{Window: 4096, MaxDist: 100, MaxMatch: 64, MinMatch: 3}
	block := make([]byte, 200)
	rand.New(rand.NewSource(3)).Read(block)
	data := append(append([]byte{}, block...), block...)

	rec := &recorder{maxDist: cfg.MaxDist}
	runMatcher(t, cfg, data, 4096, rec)
	if !bytes.Equal(rec.out, data) {
		t.Fatal("reconstruction mismatch")
	}
	matched := 0
	for _, ev := range rec.events {
		if ev.length > 1 {
			matched += ev.length
		}
	}
	if matched >= len(block)/2 {
		t.Fatalf("%d bytes matched, the repeat lies beyond the 100 byte window", matched)
	}
}

func TestCompress_RejectedMatchesBecomeLiterals(t *testing.T) {
	data := bytes.Repeat([]byte("xyz"), 1000)
	rec := &recorder{reject: func(int, int) bool { return true }}
	runMatcher(t, testConfig(), data, 1<<15, rec)

	if !bytes.Equal(rec.out, data) {
		t.Fatal("reconstruction mismatch")
	}
	if len(rec.events) != len(data) {
		t.Fatalf("got %d events, want %d literals", len(rec.events), len(data))
	}
}

func TestCompress_LazyMatch(t *testing.T) {
	// At 15 "Qabc" matches 4 bytes, but 16 starts a 7 byte match of
	// "abcdefg"; the finder must emit 'Q' as a literal first.
	data := []byte("Qabc--abcdefg--Qabcdefg")
	rec := &recorder{}
	runMatcher(t, testConfig(), data, 1<<15, rec)
	if !bytes.Equal(rec.out, data) {
		t.Fatal("reconstruction mismatch")
	}

	pos := 0
	for _, ev := range rec.events {
		switch pos {
		case 15:
			if ev.length != 1 {
				t.Fatalf("event at 15 has length %d, want a literal", ev.length)
			}
		case 16:
			if ev.length != 7 || ev.distance != 10 {
				t.Fatalf("event at 16 = (%d,%d), want distance 10 length 7", ev.distance, ev.length)
			}
		}
		pos += ev.length
	}
}

func TestCompress_LongestMatchFound(t *testing.T) {
	// Only the second earlier copy of "abcdef" continues with "gh".
	data := []byte("abcdefXXabcdefghYYabcdefgh")
	rec := &recorder{}
	runMatcher(t, testConfig(), data, 1<<15, rec)

	pos := 0
	for _, ev := range rec.events {
		if pos == 18 {
			if ev.length != 8 || ev.distance != 10 {
				t.Fatalf("match at 18 = (%d,%d), want distance 10 length 8", ev.distance, ev.length)
			}
		}
		pos += ev.length
	}
}

func TestStop_KeepsState(t *testing.T) {
	data := bytes.Repeat([]byte("stop and go "), 2000)
	rec := &recorder{}
	rec.t = t
	m, err := New(testConfig(), &sliceSource{data: data}, rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	events := 0
	rec.onEvent = func() {
		events++
		if events%10 == 0 {
			m.Stop()
		}
	}

	calls := 0
	for m.LeftToProcess() > 0 || !m.AtEOF() {
		before := len(rec.events)
		m.Compress(1 << 15)
		calls++
		if len(rec.events)-before > 10 {
			t.Fatalf("call %d emitted %d events after Stop", calls, len(rec.events)-before)
		}
	}
	if calls < 2 {
		t.Fatal("Stop did not interrupt Compress")
	}
	if !bytes.Equal(rec.out, data) {
		t.Fatal("reconstruction mismatch after stops")
	}
}

func TestReset_DropsHistory(t *testing.T) {
	block := bytes.Repeat([]byte("0123456789"), 10)
	data := append(append([]byte{}, block...), block...)
	rec := &recorder{}
	rec.t = t
	m, err := New(testConfig(), &sliceSource{data: data}, rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	m.Compress(len(block))
	if m.Position() != int64(len(block)) {
		t.Fatalf("position %d after first half, want %d", m.Position(), len(block))
	}
	m.Reset()
	resetAt := len(rec.out)
	for m.LeftToProcess() > 0 || !m.AtEOF() {
		m.Compress(1 << 15)
	}
	if !bytes.Equal(rec.out, data) {
		t.Fatal("reconstruction mismatch")
	}

	pos := 0
	for _, ev := range rec.events {
		if pos >= resetAt && ev.length > 1 && pos-ev.distance < resetAt {
			t.Fatalf("match at %d reaches back across the reset to %d", pos, pos-ev.distance)
		}
		pos += ev.length
	}
}

func TestFindMatchAt(t *testing.T) {
	data := []byte("abcdXabcdYabcd")
	var found []bool
	rec := &recorder{}
	rec.t = t
	var m *Matcher
	rec.reject = func(distance, length int) bool {
		found = append(found,
			m.FindMatchAt(10, length, distance),
			m.FindMatchAt(distance, length, distance),
			m.FindMatchAt(2, length, distance),
			m.FindMatchAt(100, length, distance))
		return false
	}
	m, err := New(testConfig(), &sliceSource{data: data}, rec)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	for m.LeftToProcess() > 0 || !m.AtEOF() {
		m.Compress(1 << 15)
	}

	// Offers come at 5, 6, 10 and 11, all at distance 5. Only the last two
	// can look back 10 bytes.
	want := []bool{
		false, false, false, false,
		false, false, false, false,
		true, false, false, false,
		true, false, false, false,
	}
	if len(found) != len(want) {
		t.Fatalf("got %d probes, want %d", len(found), len(want))
	}
	for i := range want {
		if found[i] != want[i] {
			t.Fatalf("probe %d = %v, want %v", i, found[i], want[i])
		}
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Config{Window: 0, MaxDist: -1, MaxMatch: 0}, &sliceSource{}, &recorder{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	_, err = New(Config{Window: 1024, MaxDist: 1000, MaxMatch: 2, MinMatch: 3}, &sliceSource{}, &recorder{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for min above max, got %v", err)
	}

	m, err := New(Config{Window: 1024, MaxDist: 1000, MaxMatch: 16, MinMatch: 1}, &sliceSource{}, &recorder{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if m.MinMatch() != 3 {
		t.Fatalf("MinMatch = %d, want 3", m.MinMatch())
	}
}
