package testutil

// Words is a small word list for tests. It contains the two-letter words
// that racks drawn from an unshuffled bag can form (AA, AB, AD, BA, ...).
var Words = []string{
	// 2-letter words
	"aa", "ab", "ad", "ae", "ba", "be", "da", "de", "ea", "ed",
	"at", "do", "go", "he", "if", "in", "is", "it", "me", "my",
	"no", "of", "on", "or", "so", "to", "up", "us", "we",
	// 3-letter words
	"abe", "add", "bad", "bed", "cab", "cad", "dab", "dad", "ace", "act",
	"bag", "bat", "cat", "dog", "ear", "eat", "egg", "end", "era", "fed",
	// 4-letter words
	"abed", "aced", "bead", "dace", "dead", "deed", "cede", "face", "fade",
	// 5-letter words
	"added", "ceded", "decade", "faced",
}
