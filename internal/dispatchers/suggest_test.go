package dispatchers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical strings", "publish_dafsa", "publish_dafsa", 0},
		{"one character difference", "sync_megaphone", "sync_megaphones", 1},
		{"typo - transposition", "refresh", "rferesh", 2},
		{"completely different", "abc", "xyz123", 6},
		{"empty string a", "", "help", 4},
		{"empty string b", "help", "", 4},
		{"both empty", "", "", 0},
		{"case insensitive", "PUBLISH_DAFSA", "publish_dafsa", 0},
		{"dash equals underscore", "sync-megaphone", "sync_megaphone", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, levenshtein(tt.a, tt.b))
		})
	}
}

var knownNames = []string{
	"backport_records",
	"blockpages_generator",
	"publish_dafsa",
	"refresh_signature",
	"sync_megaphone",
}

func TestFindSimilarCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"typo", "publish_dafas", []string{"publish_dafsa"}},
		{"dashes", "refresh-signature", []string{"refresh_signature"}},
		{"missing letter", "sync_megaphne", []string{"sync_megaphone"}},
		{"nothing close", "bogus", []string{}},
		{"exact match is not a suggestion", "publish_dafsa", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FindSimilarCommands(tt.input, knownNames, 3))
		})
	}
}

func TestFindSimilarCommands_LimitAndOrder(t *testing.T) {
	names := []string{"abd", "abc", "abe", "xyz", "ab"}

	got := FindSimilarCommands("abx", names, 2)

	require.Equal(t, []string{"ab", "abc"}, got)
}

func TestFindSimilarCommands_NoNames(t *testing.T) {
	require.Empty(t, FindSimilarCommands("anything", nil, 3))
}
