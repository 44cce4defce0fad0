package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspace_JSONFieldNames(t *testing.T) {
	w := Workspace{
		ID:          "abc",
		Name:        "Work",
		Order:       2,
		Active:      true,
		PicturePath: "/data/pictures/p.png",
		PictureID:   "p",
		AccountInfo: &AccountInfo{Name: "Ann", Email: "ann@example.com", PictureURL: "https://example.com/a.png"},
	}

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{"id", "name", "order", "active", "hibernated", "picturePath", "pictureId", "accountInfo"} {
		assert.Contains(t, raw, key)
	}

	assert.NotContains(t, raw, "preferences")
	assert.Equal(t, "https://example.com/a.png", raw["accountInfo"].(map[string]any)["pictureUrl"])
}

func TestWorkspace_DecodeDropsUnknownPicture(t *testing.T) {
	var w Workspace
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x","order":3,"picture":"/tmp/a.png"}`), &w))

	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"picture"`)
}

func TestWorkspaces_Sorted(t *testing.T) {
	ws := Workspaces{
		"c": {ID: "c", Order: 5},
		"a": {ID: "a", Order: 0},
		"b": {ID: "b", Order: 2},
		"d": {ID: "d", Order: 2},
	}

	list := ws.Sorted()
	require.Len(t, list, 4)

	ids := make([]string, 0, len(list))
	for _, w := range list {
		ids = append(ids, w.ID)
	}

	assert.Equal(t, []string{"a", "b", "d", "c"}, ids)
	assert.Equal(t, 5, ws.MaxOrder())
	assert.Equal(t, 0, Workspaces{}.MaxOrder())
}

func TestPatch_Apply(t *testing.T) {
	base := Workspace{
		ID:          "w1",
		Name:        "old",
		Order:       1,
		AccountInfo: &AccountInfo{Name: "Ann"},
		Preferences: map[string]any{"a": 1},
	}

	t.Run("shallow merge", func(t *testing.T) {
		got := Patch{Name: Ptr("new"), Hibernated: Ptr(true)}.Apply(base)

		assert.Equal(t, "new", got.Name)
		assert.True(t, got.Hibernated)
		assert.Equal(t, 1, got.Order)
		assert.Equal(t, "old", base.Name)
	})

	t.Run("id is not applied", func(t *testing.T) {
		got := Patch{ID: Ptr("other")}.Apply(base)
		assert.Equal(t, "w1", got.ID)
	})

	t.Run("clear account info", func(t *testing.T) {
		got := Patch{ClearAccountInfo: true, AccountInfo: &AccountInfo{Name: "Bob"}}.Apply(base)
		assert.Nil(t, got.AccountInfo)
		assert.NotNil(t, base.AccountInfo)
	})

	t.Run("account info is copied", func(t *testing.T) {
		info := &AccountInfo{Name: "Bob"}
		got := Patch{AccountInfo: info}.Apply(base)
		info.Name = "changed"
		assert.Equal(t, "Bob", got.AccountInfo.Name)
	})

	t.Run("preferences replaced", func(t *testing.T) {
		got := Patch{Preferences: map[string]any{"b": true}}.Apply(base)
		assert.Equal(t, map[string]any{"b": true}, got.Preferences)
	})
}

func TestAccountInfo_SameIdentity(t *testing.T) {
	var nilInfo *AccountInfo
	assert.True(t, nilInfo.SameIdentity(AccountInfo{}))
	assert.False(t, nilInfo.SameIdentity(AccountInfo{Email: "a@b.c"}))

	info := &AccountInfo{Name: "Ann", Email: "a@b.c", PictureURL: "u", PicturePath: "/p"}
	assert.True(t, info.SameIdentity(AccountInfo{Name: "Ann", Email: "a@b.c", PictureURL: "u"}))
	assert.False(t, info.SameIdentity(AccountInfo{Name: "Ann", Email: "a@b.c", PictureURL: "v"}))
}
