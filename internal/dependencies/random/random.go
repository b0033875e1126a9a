package random

import "math/rand/v2"

// CodeAlphabet is the alphabet of session join codes. It leaves out 0/O
// and 1/I so codes survive being read aloud.
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Random is the source of bag draws and session codes
type Random interface {
	// Intn returns an int in [0, n), or 0 when n <= 0
	Intn(n int) int

	// String returns length characters picked from alphabet
	String(length int, alphabet string) string
}

// SystemRandom draws from the runtime's OS-seeded generator. Safe for
// concurrent use.
type SystemRandom struct{}

var _ Random = SystemRandom{}

// New returns the system source
func New() SystemRandom {
	return SystemRandom{}
}

func (SystemRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return rand.IntN(n)
}

func (r SystemRandom) String(length int, alphabet string) string {
	if length <= 0 || alphabet == "" {
		return ""
	}
	code := make([]byte, length)
	for i := range code {
		code[i] = alphabet[r.Intn(len(alphabet))]
	}
	return string(code)
}
