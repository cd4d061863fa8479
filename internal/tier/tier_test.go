package tier

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCovers(t *testing.T) {
	cases := []struct {
		have     Tier
		required Tier
		want     bool
	}{
		{Free, Free, true},
		{Free, Starter, false},
		{Free, Pro, false},
		{Starter, Free, true},
		{Starter, Pro, false},
		{Pro, Pro, true},
		{Pro, Business, false},
		{Business, Free, true},
		{Business, Pro, true},
		{Business, Business, true},
	}

	for _, c := range cases {
		assert.Equalf(t, c.want, c.have.Covers(c.required),
			"%s covers %s", c.have, c.required)
	}
}

func TestParse(t *testing.T) {
	for _, tr := range All() {
		got, err := Parse(tr.String())
		require.NoError(t, err)
		assert.Equal(t, tr, got)
	}

	// Empty means free (unstored default).
	got, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, Free, got)

	_, err = Parse("platinum")
	assert.Error(t, err)
}

func TestRequesterKey(t *testing.T) {
	uid := uuid.New()
	kid := uuid.New()

	// Identity takes precedence over network address.
	r := Requester{UserID: &uid, APIKeyID: &kid, IP: "203.0.113.5"}
	assert.Equal(t, "user:"+uid.String(), r.Key())

	r = Requester{APIKeyID: &kid, IP: "203.0.113.5"}
	assert.Equal(t, "key:"+kid.String(), r.Key())

	r = Requester{IP: "203.0.113.5"}
	assert.Equal(t, "ip:203.0.113.5", r.Key())
	assert.True(t, r.Anonymous())
	assert.True(t, r.Valid())

	assert.False(t, Requester{}.Valid())
}
