package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Software Engineering":     "software-engineering",
		"  Health & Care  ":        "health-and-care",
		"Remote / Hybrid":          "remote-hybrid",
		"Senior Go Developer (5+)": "senior-go-developer-5",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"go-developer": true, "go-developer-2": true}

	got, err := UniqueSlug("go-developer", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "go-developer-3", got)

	got, err = UniqueSlug("designer", func(s string) (bool, error) { return taken[s], nil })
	require.NoError(t, err)
	assert.Equal(t, "designer", got)
}

func TestUniqueSlug_Errors(t *testing.T) {
	_, err := UniqueSlug("", func(string) (bool, error) { return false, nil })
	assert.Error(t, err)

	boom := errors.New("db down")
	_, err = UniqueSlug("x", func(string) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)

	_, err = UniqueSlug("x", func(string) (bool, error) { return true, nil })
	assert.Error(t, err)
}
