package cache

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goliatone/go-kvcache/codec"
	"github.com/goliatone/go-kvcache/pkg/testsupport"
)

var testStart = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func newTestEngine(t *testing.T, prefix string) (*Engine, *testsupport.MemStore, *testsupport.Clock) {
	t.Helper()

	store := testsupport.NewMemStore()
	clock := testsupport.NewClock(testStart)

	cfg := DefaultConfig()
	cfg.Prefix = prefix

	engine, err := New(store, cfg, WithClock(clock.Now), WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return engine, store, clock
}

type rate struct {
	Pair  string  `json:"pair" msgpack:"pair"`
	Price float64 `json:"price" msgpack:"price"`
	Tags  []string
}

func TestEngine_RoundTrip(t *testing.T) {
	engine, _, _ := newTestEngine(t, "app_")

	t.Run("int", func(t *testing.T) {
		if !engine.Set("n", 42, time.Minute) {
			t.Fatal("Set returned false")
		}
		got, ok := Get[int](engine, "n")
		if !ok || got != 42 {
			t.Errorf("expected 42, got %v (ok=%v)", got, ok)
		}
	})

	t.Run("struct", func(t *testing.T) {
		in := rate{Pair: "BTC/USD", Price: 64123.5, Tags: []string{"spot"}}
		engine.Set("rate", in, time.Minute)
		got, ok := Get[rate](engine, "rate")
		if !ok || !reflect.DeepEqual(in, got) {
			t.Errorf("expected %+v, got %+v (ok=%v)", in, got, ok)
		}
	})

	t.Run("map", func(t *testing.T) {
		in := map[string]any{"theme": "dark", "compact": true}
		engine.Set("prefs", in, time.Minute)
		got, ok := Get[map[string]any](engine, "prefs")
		if !ok || !reflect.DeepEqual(in, got) {
			t.Errorf("expected %v, got %v (ok=%v)", in, got, ok)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		engine.Set("n", 1, time.Minute)
		engine.Set("n", 2, time.Minute)
		if got, _ := Get[int](engine, "n"); got != 2 {
			t.Errorf("expected overwrite to 2, got %d", got)
		}
	})
}

func TestEngine_ExpiryScenario(t *testing.T) {
	engine, store, clock := newTestEngine(t, "app_")

	engine.Set("a", 42, 1000*time.Millisecond)
	if got, ok := Get[int](engine, "a"); !ok || got != 42 {
		t.Fatalf("expected 42 before expiry, got %v (ok=%v)", got, ok)
	}

	clock.Advance(1100 * time.Millisecond)

	if _, ok := Get[int](engine, "a"); ok {
		t.Error("expected miss after ttl elapsed")
	}
	if keys := engine.Keys(); len(keys) != 0 {
		t.Errorf("expected no keys after lazy expiry, got %v", keys)
	}
	if _, ok := store.Raw("app_a"); ok {
		t.Error("expired entry should be removed from the store")
	}
}

func TestEngine_ExpiryBoundary(t *testing.T) {
	engine, _, clock := newTestEngine(t, "app_")

	engine.Set("k", "v", time.Second)

	clock.Advance(time.Second)
	if !engine.Has("k") {
		t.Fatal("entry must still be live at exactly expiresAt")
	}

	clock.Advance(time.Millisecond)
	if engine.Has("k") {
		t.Error("entry must be expired one millisecond after expiresAt")
	}
}

func TestEngine_DefaultAndNoExpiry(t *testing.T) {
	engine, store, clock := newTestEngine(t, "app_")

	engine.Set("default", "v", 0)
	engine.Set("forever", "v", NoExpiry)

	raw, _ := store.Raw("app_forever")
	if strings.Contains(raw, "expiresAt") {
		t.Errorf("NoExpiry entry must not carry expiresAt: %s", raw)
	}

	clock.Advance(DefaultTTL - time.Second)
	if !engine.Has("default") {
		t.Error("default ttl entry expired too early")
	}

	clock.Advance(2 * time.Second)
	if engine.Has("default") {
		t.Error("default ttl entry should be expired")
	}
	if !engine.Has("forever") {
		t.Error("NoExpiry entry must never expire")
	}
}

func TestEngine_WireFormat(t *testing.T) {
	engine, store, _ := newTestEngine(t, "app_")

	engine.Set("token", map[string]string{"access_token": "abc"}, time.Hour)

	raw, ok := store.Raw("app_token")
	if !ok {
		t.Fatal("expected namespaced physical key app_token")
	}

	want := `{"value":{"access_token":"abc"},"timestamp":1709294400000,"expiresAt":1709298000000}`
	if raw != want {
		t.Errorf("unexpected wire format:\n got %s\nwant %s", raw, want)
	}
}

func TestEngine_Cleanup(t *testing.T) {
	engine, store, clock := newTestEngine(t, "app_")

	engine.Set("short", 1, time.Second)
	engine.Set("shorter", 2, 500*time.Millisecond)
	engine.Set("long", 3, time.Hour)
	engine.Set("forever", 4, NoExpiry)
	store.Put("app_corrupt", "{not json")
	store.Put("app_bad_timestamp", string(testsupport.LoadFixture(t, testsupport.FixturePath("corrupt_timestamp.json"))))
	store.Put("app_bad_expiry", string(testsupport.LoadFixture(t, testsupport.FixturePath("corrupt_expiry.json"))))
	store.Put("other_short", `{"value":1,"timestamp":0,"expiresAt":1}`)

	clock.Advance(2 * time.Second)

	if removed := engine.Cleanup(); removed != 5 {
		t.Errorf("expected 5 removed (2 expired + 3 corrupt), got %d", removed)
	}

	want := []string{"forever", "long"}
	if got := engine.Keys(); !reflect.DeepEqual(want, got) {
		t.Errorf("expected keys %v, got %v", want, got)
	}

	if _, ok := store.Raw("other_short"); !ok {
		t.Error("cleanup must not touch other namespaces")
	}

	if removed := engine.Cleanup(); removed != 0 {
		t.Errorf("second cleanup should remove nothing, got %d", removed)
	}
}

func TestEngine_KeysDoNotExpire(t *testing.T) {
	engine, _, clock := newTestEngine(t, "app_")

	engine.Set("a", 1, time.Second)
	clock.Advance(time.Minute)

	if got := engine.Keys(); !reflect.DeepEqual([]string{"a"}, got) {
		t.Errorf("Keys must list expired entries until they are removed, got %v", got)
	}
	if st := engine.Stats(); st.Keys != 1 || st.Expired != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
	if got := engine.Keys(); len(got) != 1 {
		t.Errorf("Stats must not remove entries, got %v", got)
	}
}

func TestEngine_StatsAgreeWithGet(t *testing.T) {
	engine, store, clock := newTestEngine(t, "app_")

	engine.Set("live", 1, time.Hour)
	engine.Set("stale", 2, time.Second)
	store.Put("app_garbage", "{oops")
	store.Put("app_bad_timestamp", string(testsupport.LoadFixture(t, testsupport.FixturePath("corrupt_timestamp.json"))))
	store.Put("app_bad_expiry", string(testsupport.LoadFixture(t, testsupport.FixturePath("corrupt_expiry.json"))))
	clock.Advance(time.Minute)

	st := engine.Stats()
	if st.Keys != 5 || st.Expired != 1 || st.Corrupt != 3 {
		t.Errorf("expected 5 keys, 1 expired, 3 corrupt, got %+v", st)
	}

	for _, key := range []string{"garbage", "bad_timestamp", "bad_expiry"} {
		if engine.Has(key) {
			t.Errorf("%s is counted corrupt and must be absent for Has", key)
		}
	}
}

func TestEngine_NamespaceIsolation(t *testing.T) {
	store := testsupport.NewMemStore()

	newEngine := func(prefix string) *Engine {
		cfg := DefaultConfig()
		cfg.Prefix = prefix
		e, err := New(store, cfg, WithLogger(quietLogger()))
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		return e
	}

	left := newEngine("left:")
	right := newEngine("right:")

	left.Set("shared", "L", time.Minute)
	left.Set("only-left", 1, time.Minute)
	right.Set("shared", "R", time.Minute)

	if got := left.Keys(); !reflect.DeepEqual([]string{"only-left", "shared"}, got) {
		t.Errorf("left keys: %v", got)
	}
	if got := right.Keys(); !reflect.DeepEqual([]string{"shared"}, got) {
		t.Errorf("right keys: %v", got)
	}
	if v, _ := Get[string](right, "shared"); v != "R" {
		t.Errorf("right must read its own value, got %q", v)
	}

	if !left.Clear() {
		t.Fatal("Clear returned false")
	}
	if got := left.Keys(); len(got) != 0 {
		t.Errorf("left should be empty after Clear, got %v", got)
	}
	if v, ok := Get[string](right, "shared"); !ok || v != "R" {
		t.Error("Clear on one engine deleted entries of another")
	}
}

func TestEngine_Size(t *testing.T) {
	engine, store, _ := newTestEngine(t, "app_")

	if engine.Size() != 0 {
		t.Errorf("expected empty size 0, got %d", engine.Size())
	}

	engine.Set("a", "short", time.Minute)
	engine.Set("b", strings.Repeat("x", 100), time.Minute)
	store.Put("foreign", strings.Repeat("y", 1000))

	expected := 0
	for _, k := range []string{"app_a", "app_b"} {
		raw, _ := store.Raw(k)
		expected += len(raw)
	}

	if got := engine.Size(); got != expected {
		t.Errorf("expected size %d, got %d", expected, got)
	}
	if st := engine.Stats(); st.Bytes != expected {
		t.Errorf("expected stats bytes %d, got %d", expected, st.Bytes)
	}

	engine.Remove("b")
	raw, _ := store.Raw("app_a")
	if got := engine.Size(); got != len(raw) {
		t.Errorf("expected size %d after remove, got %d", len(raw), got)
	}
}

func TestEngine_RemoveAndHas(t *testing.T) {
	engine, _, _ := newTestEngine(t, "app_")

	engine.Set("k", true, time.Minute)
	if !engine.Has("k") {
		t.Error("expected Has true")
	}
	if !engine.Remove("k") {
		t.Error("expected Remove true")
	}
	if engine.Has("k") {
		t.Error("expected Has false after Remove")
	}
	if !engine.Remove("k") {
		t.Error("removing a missing key should still succeed")
	}
}

func TestEngine_CorruptEntries(t *testing.T) {
	engine, store, _ := newTestEngine(t, "app_")

	store.Put("app_bad", "{oops")
	if _, ok := Get[string](engine, "bad"); ok {
		t.Error("corrupt entry must be a miss")
	}
	if _, ok := store.Raw("app_bad"); ok {
		t.Error("corrupt entry must be removed by Get")
	}
	if !errors.Is(engine.LastError(), ErrDeserialization) {
		t.Errorf("expected ErrDeserialization, got %v", engine.LastError())
	}

	store.Put("app_bad2", `"just a string"`)
	if engine.Has("bad2") {
		t.Error("Has must report corrupt entries absent")
	}
	if _, ok := store.Raw("app_bad2"); ok {
		t.Error("corrupt entry must be removed by Has")
	}
}

func TestEngine_TypeMismatchKeepsEntry(t *testing.T) {
	engine, _, _ := newTestEngine(t, "app_")

	engine.Set("k", "text", time.Minute)
	if _, ok := Get[int](engine, "k"); ok {
		t.Error("decoding a string into an int must miss")
	}
	if !engine.Has("k") {
		t.Error("a type mismatch must not delete the entry")
	}
	if v, _ := Get[string](engine, "k"); v != "text" {
		t.Errorf("expected text, got %q", v)
	}
}

func TestEngine_SerializationFailure(t *testing.T) {
	type node struct {
		Next *node
	}
	cyclic := &node{}
	cyclic.Next = cyclic

	selfMap := map[string]any{}
	selfMap["self"] = selfMap

	values := map[string]any{
		"channel":   make(chan int),
		"cycle":     cyclic,
		"map_cycle": selfMap,
		"func":      func() {},
	}

	for _, codecName := range []string{codec.NameJSON, codec.NameMsgpack} {
		t.Run(codecName, func(t *testing.T) {
			store := testsupport.NewMemStore()
			cfg := DefaultConfig()
			cfg.Prefix = "app_"
			cfg.Codec = codecName

			engine, err := New(store, cfg, WithLogger(quietLogger()))
			if err != nil {
				t.Fatalf("New() failed: %v", err)
			}

			for name, v := range values {
				t.Run(name, func(t *testing.T) {
					if engine.Set(name, v, time.Minute) {
						t.Error("Set must return false for unserializable values")
					}
					if !errors.Is(engine.LastError(), ErrSerialization) {
						t.Errorf("expected ErrSerialization, got %v", engine.LastError())
					}
					if _, ok := store.Raw("app_" + name); ok {
						t.Error("nothing should be written for unserializable values")
					}
				})
			}
		})
	}
}

func TestEngine_StoreFailures(t *testing.T) {
	engine, store, _ := newTestEngine(t, "app_")
	engine.Set("k", 1, time.Minute)

	store.FailGet(testsupport.ErrInjected)
	if _, ok := Get[int](engine, "k"); ok {
		t.Error("Get must miss when the store fails")
	}
	if engine.Size() != 0 {
		t.Error("Size must be 0 when the store fails")
	}
	if engine.Cleanup() != 0 {
		t.Error("Cleanup must be 0 when the store fails")
	}
	if !errors.Is(engine.LastError(), ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", engine.LastError())
	}
	store.FailGet(nil)

	store.FailKeys(testsupport.ErrInjected)
	if keys := engine.Keys(); keys == nil || len(keys) != 0 {
		t.Errorf("Keys must return an empty slice on failure, got %v", keys)
	}
	if engine.Clear() {
		t.Error("Clear must return false when keys cannot be listed")
	}
	store.FailKeys(nil)

	store.FailRemove(testsupport.ErrInjected)
	if engine.Remove("k") {
		t.Error("Remove must return false when the store fails")
	}
	store.FailRemove(nil)

	if v, ok := Get[int](engine, "k"); !ok || v != 1 {
		t.Errorf("engine should recover after failures clear, got %v (ok=%v)", v, ok)
	}
}

func TestEngine_ProbeIsCached(t *testing.T) {
	engine, store, _ := newTestEngine(t, "app_")
	probes := func() int { return store.CountCalls("Set:" + probeKeyPrefix) }

	if probes() != 0 {
		t.Fatal("New must not probe")
	}

	engine.Set("a", 1, time.Minute)
	engine.Get("a", new(int))
	engine.Has("a")
	engine.Keys()
	engine.Size()
	engine.Cleanup()

	if got := probes(); got != 1 {
		t.Errorf("expected a single probe across operations, got %d", got)
	}
	if store.Len() != 1 {
		t.Errorf("probe sentinel must be removed, store has %d keys", store.Len())
	}

	store.FailGet(testsupport.ErrInjected)
	engine.Has("a")
	store.FailGet(nil)

	engine.Has("a")
	engine.Has("a")
	if got := probes(); got != 2 {
		t.Errorf("expected exactly one re-probe after a failure, got %d probes", got)
	}
}

func TestEngine_FailedProbeIsTransient(t *testing.T) {
	engine, store, _ := newTestEngine(t, "app_")

	store.FailSet(testsupport.ErrInjected)
	if engine.Set("a", 1, time.Minute) {
		t.Error("Set must fail while the store rejects writes")
	}
	if engine.Has("a") {
		t.Error("Has must fail while the probe fails")
	}
	if !errors.Is(engine.LastError(), ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", engine.LastError())
	}

	store.FailSet(nil)
	if !engine.Set("a", 1, time.Minute) {
		t.Error("Set must succeed once the store recovers")
	}
}

func TestEngine_MsgpackCodec(t *testing.T) {
	store := testsupport.NewMemStore()
	cfg := DefaultConfig()
	cfg.Codec = codec.NameMsgpack
	cfg.CompressionLevel = 3

	engine, err := New(store, cfg, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if engine.Codec().Name() != "msgpack+zstd" {
		t.Errorf("unexpected codec %s", engine.Codec().Name())
	}

	in := rate{Pair: "ETH/USD", Price: 3100.25}
	engine.Set("rate", in, time.Minute)
	got, ok := Get[rate](engine, "rate")
	if !ok || !reflect.DeepEqual(in, got) {
		t.Errorf("expected %+v, got %+v", in, got)
	}

	if !engine.Set("nothing", nil, time.Minute) {
		t.Fatal("Set(nil) failed")
	}
	if v, ok := Get[any](engine, "nothing"); !ok || v != nil {
		t.Errorf("expected a stored nil to be a hit, got %v, %v", v, ok)
	}
	if !engine.Has("nothing") {
		t.Error("a stored nil must not be treated as corrupt")
	}

	store.Put(DefaultPrefix+"junk", "junk")
	if removed := engine.Cleanup(); removed != 1 {
		t.Errorf("expected corrupt msgpack entry removed, got %d", removed)
	}
}

func TestEngine_MemoryStore(t *testing.T) {
	store, err := NewMemoryStore(DefaultMemoryStoreConfig())
	if err != nil {
		t.Fatalf("NewMemoryStore() failed: %v", err)
	}

	engine, err := NewWithDefaults(store, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewWithDefaults() failed: %v", err)
	}

	engine.Set("a", "x", time.Minute)
	_ = store.Set("unrelated", "y")

	if got := engine.Keys(); !reflect.DeepEqual([]string{"a"}, got) {
		t.Errorf("expected [a], got %v", got)
	}
}

func TestNew_Invalid(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); err == nil {
		t.Error("expected error for nil store")
	}

	cfg := DefaultConfig()
	cfg.Prefix = ""
	var cfgErr *ConfigError
	if _, err := New(testsupport.NewMemStore(), cfg); !errors.As(err, &cfgErr) || cfgErr.Field != "Prefix" {
		t.Errorf("expected Prefix ConfigError, got %v", err)
	}
}
