package names

import (
	"testing"

	"pgregory.net/rapid"
)

// nameGen 生成贴近真实选手名的字符集（含折叠表内外的重音字母与常见标点）。
func nameGen() *rapid.Generator[string] {
	chars := []rune(
		"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789" +
			" -.'\"(),:" +
			"éèêëáàâãíìîïóòôõúùûüñçøšž" +
			"ÉÈÁÀÍÓÚÑÇØŠŽ" +
			"łŁßđřčćÄÖ" +
			"АБВабв",
	)
	return rapid.StringOfN(rapid.SampledFrom(chars), 0, 60, -1)
}

func TestPropertyNormalizeIdempotent(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := nameGen().Draw(t, "name")
		once := Normalize(s)
		if twice := Normalize(once); twice != once {
			t.Fatalf("Normalize 不幂等：%q -> %q -> %q", s, once, twice)
		}
	})
}

func TestPropertyNormalizeAlphabet(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "any")
		for _, r := range Normalize(s) {
			if disallowed(r) {
				t.Fatalf("Normalize(%q) 含非法字符 %q", s, r)
			}
		}
	})
}
