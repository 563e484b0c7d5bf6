package mnac

import (
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestRecordRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))

	for n := range 50 {
		g := New(Config{NoMiddleStart: true, StartGrid: StartChoose}, rng)
		RandomPlayout(g, rng, n)

		back, err := Deserialize(g.Serialize())
		if err != nil {
			t.Fatalf("Deserialize after %d moves: %v", n, err)
		}
		if back.Fingerprint() != g.Fingerprint() {
			t.Errorf("fingerprint changed after round trip at %d moves", n)
		}
		if back.Board() != g.Board() {
			t.Errorf("board changed after round trip at %d moves", n)
		}
		if back.Winner() != g.Winner() || back.Moves() != g.Moves() || back.NoMiddleStart() != g.NoMiddleStart() {
			t.Errorf("state changed after round trip at %d moves", n)
		}
	}
}

func TestRecordEncodings(t *testing.T) {
	g := New(Config{StartGrid: 2}, nil)
	mustPlay(t, g, 2, 6)
	rec := g.Serialize()

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var decoded Record
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		back, err := Deserialize(decoded)
		if err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if back.Fingerprint() != g.Fingerprint() {
			t.Error("fingerprint changed through json")
		}
	})

	t.Run("yaml", func(t *testing.T) {
		data, err := yaml.Marshal(rec)
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		var decoded Record
		if err := yaml.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		back, err := Deserialize(decoded)
		if err != nil {
			t.Fatalf("Deserialize failed: %v", err)
		}
		if back.Fingerprint() != g.Fingerprint() {
			t.Error("fingerprint changed through yaml")
		}
	})
}

func TestDeserializeRecomputesStatus(t *testing.T) {
	rec := Record{Version: RecordVersion, Phase: PhaseInner, Player: Nought, ActiveGrid: intPtr(1)}
	rec.Grids[0] = [9]Mark{Cross, Empty, Empty, Empty, Cross, Empty, Empty, Empty, Cross}

	g, err := Deserialize(rec)
	if err != nil {
		t.Fatalf("Deserialize failed: %v", err)
	}
	b := g.Board()
	if b.SubStatus(0) != CrossesWin {
		t.Errorf("SubStatus(0) = %v, want Crosses", b.SubStatus(0))
	}
}

func TestDeserializeFinishedGame(t *testing.T) {
	rng := rand.New(rand.NewSource(21))

	for n := range 20 {
		g := New(DefaultConfig(), rng)
		RandomPlayout(g, rng, 0)

		back, err := Deserialize(g.Serialize())
		if err != nil {
			t.Fatalf("game %d: Deserialize of finished game: %v", n, err)
		}
		if back.Winner() != g.Winner() {
			t.Errorf("game %d: Winner() = %v, want %v", n, back.Winner(), g.Winner())
		}
	}
}

func TestDeserializeRejects(t *testing.T) {
	valid := func() Record {
		return Record{Version: RecordVersion, Phase: PhaseInner, Player: Nought, ActiveGrid: intPtr(0)}
	}

	tests := []struct {
		name   string
		modify func(*Record)
	}{
		{"version", func(r *Record) { r.Version = 99 }},
		{"player empty", func(r *Record) { r.Player = Empty }},
		{"phase", func(r *Record) { r.Phase = Phase(7) }},
		{"inner without grid", func(r *Record) { r.ActiveGrid = nil }},
		{"begin with grid", func(r *Record) { r.Phase = PhaseBegin }},
		{"grid out of range", func(r *Record) { r.ActiveGrid = intPtr(9) }},
		{"last placed out of range", func(r *Record) { r.LastPlaced = &Placement{Grid: 0, Cell: 12} }},
		{"bad cell", func(r *Record) { r.Grids[3][3] = Mark(5) }},
		{"inner on decided grid", func(r *Record) { r.Grids[0] = [9]Mark{Cross, Cross, Cross} }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := valid()
			tc.modify(&rec)
			if _, err := Deserialize(rec); !errors.Is(err, ErrInvalidRecord) {
				t.Errorf("Deserialize error = %v, want ErrInvalidRecord", err)
			}
		})
	}
}

func TestFingerprint(t *testing.T) {
	a := New(Config{StartGrid: 0}, nil)
	b := New(Config{StartGrid: 0}, nil)
	if a.Fingerprint() != b.Fingerprint() {
		t.Error("equal games have different fingerprints")
	}

	mustPlay(t, a, 5)
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different games share a fingerprint")
	}

	// The house rule is not part of the board view.
	c := New(Config{NoMiddleStart: false, StartGrid: 0}, nil)
	if c.Fingerprint() != b.Fingerprint() {
		t.Error("house rule changed the fingerprint")
	}

	parsed, err := ParseFingerprint(a.Fingerprint().String())
	if err != nil {
		t.Fatalf("ParseFingerprint failed: %v", err)
	}
	if parsed != a.Fingerprint() {
		t.Errorf("ParseFingerprint = %v, want %v", parsed, a.Fingerprint())
	}
	if _, err := ParseFingerprint("not-hex"); err == nil {
		t.Error("ParseFingerprint accepted garbage")
	}
}

func TestCanonical(t *testing.T) {
	g := New(Config{StartGrid: 0}, nil)
	mustPlay(t, g, 4)

	want := "a4;l0,4;p2;sinner;c000010000" + strings.Repeat("0", 72)
	if got := g.Canonical(); got != want {
		t.Errorf("Canonical() = %q, want %q", got, want)
	}
}
