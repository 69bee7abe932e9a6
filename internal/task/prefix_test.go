package task

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrefixesEmpty(t *testing.T) {
	require.Empty(t, Prefixes(nil))
	require.Empty(t, Prefixes([]string{}))
}

func TestPrefixesSingleID(t *testing.T) {
	got := Prefixes([]string{"abc123"})
	require.Equal(t, map[string]string{"abc123": "a"}, got)
}

func TestPrefixesDistinctFirstCharacters(t *testing.T) {
	got := Prefixes([]string{"a1f2", "b9c3", "c000"})
	require.Equal(t, map[string]string{
		"a1f2": "a",
		"b9c3": "b",
		"c000": "c",
	}, got)
}

func TestPrefixesSharedStem(t *testing.T) {
	got := Prefixes([]string{"abc123", "abc999"})
	require.Equal(t, map[string]string{
		"abc123": "abc1",
		"abc999": "abc9",
	}, got)
}

func TestPrefixesDivergeAtLastCharacter(t *testing.T) {
	// No prefix shorter than the whole id tells these two apart.
	got := Prefixes([]string{"xaa", "xab"})
	require.Equal(t, map[string]string{
		"xaa": "xaa",
		"xab": "xab",
	}, got)
}

func TestPrefixesIDIsLeadingSubstringOfAnother(t *testing.T) {
	// Neither id can be shortened: "abc" would shadow any prefix of
	// "abcdef" and vice versa.
	got := Prefixes([]string{"abc", "abcdef"})
	require.Equal(t, map[string]string{
		"abc":    "abc",
		"abcdef": "abcdef",
	}, got)
}

func TestPrefixesNestedAndUnrelatedMix(t *testing.T) {
	got := Prefixes([]string{"abc", "abcdef", "zx9"})
	require.Equal(t, "abc", got["abc"])
	require.Equal(t, "abcdef", got["abcdef"])
	require.Equal(t, "z", got["zx9"])
}

func TestPrefixesContract(t *testing.T) {
	ids := []string{
		"da39a3ee5e6b4b0d3255bfef95601890afd80709",
		"da39b1204a6d92c1b1a5e7b4f6f1f4c9f0a1b2c3",
		"356a192b7913b04c54574d18c28d46e6395428ab",
		"356a192b7913b04c54574d18c28d46e6395428ac",
		"77de68daecd823babbb58edb1c8e14d7106e83bb",
	}
	got := Prefixes(ids)
	require.Len(t, got, len(ids))
	for id, prefix := range got {
		require.True(t, strings.HasPrefix(id, prefix), "prefix %q not a leading substring of %q", prefix, id)
		// Each prefix must single out its id.
		matches := 0
		for _, other := range ids {
			if strings.HasPrefix(other, prefix) {
				matches++
			}
		}
		require.Equal(t, 1, matches, "prefix %q matches %d ids", prefix, matches)
	}
}

func TestPrefixesDeterministic(t *testing.T) {
	ids := []string{"abc123", "abc999", "abd000", "xyz"}
	first := Prefixes(ids)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, Prefixes(ids))
	}
}
