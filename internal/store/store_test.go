package store

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

func setupTestStores(t *testing.T) map[string]Store {
	t.Helper()

	stores := make(map[string]Store)

	for _, kind := range []string{KindBolt, KindSQLite} {
		s, err := Open(kind, t.TempDir())
		require.NoError(t, err, "open %s", kind)

		t.Cleanup(func() {
			if err := s.Close(); err != nil {
				t.Logf("failed to close %s store: %v", kind, err)
			}
		})

		stores[kind] = s
	}

	return stores
}

func TestStore_GetMissing(t *testing.T) {
	for kind, s := range setupTestStores(t) {
		t.Run(kind, func(t *testing.T) {
			_, ok, err := s.Get("workspaces.43")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_NestedSetAndGet(t *testing.T) {
	for kind, s := range setupTestStores(t) {
		t.Run(kind, func(t *testing.T) {
			require.NoError(t, s.Set("workspaces.43.a", record{ID: "a", Order: 0}))
			require.NoError(t, s.Set("workspaces.43.b", record{ID: "b", Order: 1}))

			var all map[string]record
			ok, err := GetInto(s, "workspaces.43", &all)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, map[string]record{"a": {ID: "a"}, "b": {ID: "b", Order: 1}}, all)

			var one record
			ok, err = GetInto(s, "workspaces.43.b", &one)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, 1, one.Order)

			// numeric schema segment must be an object key, not an array index
			raw, ok, err := s.Get("workspaces")
			require.NoError(t, err)
			require.True(t, ok)

			var doc map[string]json.RawMessage
			require.NoError(t, json.Unmarshal(raw, &doc))
			assert.Contains(t, doc, "43")
		})
	}
}

func TestStore_SetWholeMappingReplaces(t *testing.T) {
	for kind, s := range setupTestStores(t) {
		t.Run(kind, func(t *testing.T) {
			require.NoError(t, s.Set("workspaces.43.a", record{ID: "a"}))
			require.NoError(t, s.Set("workspaces.43", map[string]record{"z": {ID: "z", Order: 9}}))

			var all map[string]record
			_, err := GetInto(s, "workspaces.43", &all)
			require.NoError(t, err)
			assert.Equal(t, map[string]record{"z": {ID: "z", Order: 9}}, all)
		})
	}
}

func TestStore_Unset(t *testing.T) {
	for kind, s := range setupTestStores(t) {
		t.Run(kind, func(t *testing.T) {
			require.NoError(t, s.Set("workspaces.43.a", record{ID: "a"}))
			require.NoError(t, s.Set("workspaces.14.b", record{ID: "b"}))

			require.NoError(t, s.Unset("workspaces.43.a"))
			_, ok, err := s.Get("workspaces.43.a")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Unset("workspaces.14"))
			_, ok, err = s.Get("workspaces.14")
			require.NoError(t, err)
			assert.False(t, ok)

			// missing keys are fine
			require.NoError(t, s.Unset("workspaces.99.nope"))
			require.NoError(t, s.Unset("nothing"))

			_, ok, err = s.Get("workspaces.43")
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for kind, s := range setupTestStores(t) {
		t.Run(kind, func(t *testing.T) {
			for _, key := range []string{"", "a..b", ".a", "a."} {
				_, _, err := s.Get(key)
				require.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
				require.ErrorIs(t, s.Set(key, 1), ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestStore_Persists(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(KindBolt, dir)
	require.NoError(t, err)
	require.NoError(t, s.Set("workspaces.43.a", record{ID: "a", Order: 4}))
	require.NoError(t, s.Close())

	s, err = Open(KindBolt, dir)
	require.NoError(t, err)

	defer func() { _ = s.Close() }()

	var r record
	ok, err := GetInto(s, "workspaces.43.a", &r)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, r.Order)
}

func TestOpen_UnknownKind(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestStore_DottedSegment(t *testing.T) {
	for kind, s := range setupTestStores(t) {
		t.Run(kind, func(t *testing.T) {
			require.NoError(t, s.Set(Key("workspaces", "43", "x.y"), record{ID: "x.y"}))
			require.NoError(t, s.Set(Key("workspaces", "43", "z"), record{ID: "z"}))

			var all map[string]record
			ok, err := GetInto(s, "workspaces.43", &all)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Contains(t, all, "x.y")

			require.NoError(t, s.Unset(Key("workspaces", "43", "x.y")))

			all = nil
			_, err = GetInto(s, "workspaces.43", &all)
			require.NoError(t, err)
			assert.Equal(t, map[string]record{"z": {ID: "z"}}, all)
		})
	}
}

func TestStore_Ping(t *testing.T) {
	for kind, s := range setupTestStores(t) {
		t.Run(kind, func(t *testing.T) {
			assert.NoError(t, s.Ping())
		})
	}
}
