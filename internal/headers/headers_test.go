package headers

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidesk/internal/model"
	"apidesk/internal/storage"
)

func TestValidKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"Authorization", true},
		{"X-Request-Id", true},
		{"X-令牌", false},
		{"", false},
		{"Bad Key", false},
		{"Colon:", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidKey(tt.key))
		})
	}
}

func TestEncodeValue(t *testing.T) {
	assert.Equal(t, "", EncodeValue(""))
	assert.Equal(t, "Bearer abc def", EncodeValue("Bearer abc def"))
	assert.Equal(t, "%E4%BD%A0%E5%A5%BD%20x", EncodeValue("你好 x"))
	assert.Equal(t, "a-_.!~*'()%2F%3F", EscapeComponent("a-_.!~*'()/?"))
}

func TestUpsert(t *testing.T) {
	list := []model.Header{{Key: "A", Value: "1"}}
	list = Upsert(list, "B", "2")
	list = Upsert(list, "A", "3")
	assert.Equal(t, []model.Header{{Key: "A", Value: "3"}, {Key: "B", Value: "2"}}, list)
}

func TestActive(t *testing.T) {
	list := []model.Header{
		{Key: "Authorization", Value: "Bearer x"},
		{Key: "X-Empty", Value: ""},
		{Key: "", Value: "orphan"},
		{Key: "X-令牌", Value: "v"},
		{Key: "X-Name", Value: "名字"},
		{Key: "X-Newline", Value: "a\nb"},
	}
	assert.Equal(t, []model.Header{
		{Key: "Authorization", Value: "Bearer x"},
		{Key: "X-Name", Value: "%E5%90%8D%E5%AD%97"},
	}, Active(list))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "Bearer****cdef", Mask("Authorization", "Bearer 0123456789abcdef"))
	assert.Equal(t, "****", Mask("X-Api-Key", "short"))
	assert.Equal(t, "plain-value-long", Mask("X-Trace", "plain-value-long"))
}

func TestNormalize(t *testing.T) {
	got, err := Normalize([]model.Header{{Key: " A ", Value: "1"}, {}, {Key: "", Value: "v"}})
	require.NoError(t, err)
	assert.Equal(t, []model.Header{{Key: "A", Value: "1"}, {Key: "", Value: "v"}}, got)

	_, err = Normalize([]model.Header{{Key: "X-令牌", Value: "v"}, {Key: "ok", Value: "v"}})
	var ike *InvalidKeysError
	require.ErrorAs(t, err, &ike)
	assert.Equal(t, []string{"X-令牌"}, ike.Keys)
}

func TestStoreDefaultsAndSave(t *testing.T) {
	kv := storage.NewMemory()
	s := NewStore(kv, zerolog.Nop(), []model.Header{{Key: "X-Default", Value: "d"}})

	assert.Equal(t, []model.Header{{Key: "X-Default", Value: "d"}}, s.Load())

	saved, err := s.Save([]model.Header{{Key: "Authorization", Value: "t"}, {}})
	require.NoError(t, err)
	assert.Equal(t, []model.Header{{Key: "Authorization", Value: "t"}}, saved)
	assert.Equal(t, saved, s.Load())

	_, err = s.Save([]model.Header{{Key: "X-令牌", Value: "v"}})
	assert.Error(t, err)
	assert.Equal(t, saved, s.Load(), "rejected save leaves stored list untouched")

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Load())
}

func TestStoreDropsInvalidDefaults(t *testing.T) {
	s := NewStore(storage.NewMemory(), zerolog.Nop(), []model.Header{
		{Key: "X-令牌", Value: "v"},
		{Key: " X-Team ", Value: "core"},
		{},
	})
	assert.Equal(t, []model.Header{{Key: "X-Team", Value: "core"}}, s.Load())

	saved, err := s.Save(Upsert(s.Load(), "Authorization", "t"))
	require.NoError(t, err)
	assert.Equal(t, []model.Header{{Key: "X-Team", Value: "core"}, {Key: "Authorization", Value: "t"}}, saved)
}
