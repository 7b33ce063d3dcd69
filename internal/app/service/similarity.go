package service

import (
	"math"
	"strings"

	"github.com/xrash/smetrics"

	"github.com/jose-valero/guildrules-bot/internal/domain"
)

// maxScoredRunes acota el costo de comparar mensajes muy largos.
const maxScoredRunes = 4000

// NormalizeText pasa a minúsculas y colapsa los espacios.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Similarity devuelve un score en [0,100] de qué tan contenida está phrase en
// text: el mejor ratio de Levenshtein entre la frase y cualquier ventana del
// texto del mismo largo. Sólo texto idéntico (normalizado) da 100; contener
// la frase tal cual da 99. La distancia se mide en runas, no en bytes. La
// frase se corta en domain.MaxPhraseRunes y el texto en maxScoredRunes.
func Similarity(phrase, text string) int {
	p := NormalizeText(phrase)
	t := NormalizeText(text)
	if p == t {
		return 100
	}
	if p == "" || t == "" {
		return 0
	}

	pr := []rune(p)
	if len(pr) > domain.MaxPhraseRunes {
		pr = pr[:domain.MaxPhraseRunes]
	}
	tr := []rune(t)
	if len(tr) > maxScoredRunes {
		tr = tr[:maxScoredRunes]
	}
	pe, te := encodeRunes(pr, tr)
	if len(te) <= len(pe) {
		return min(ratio(pe, te), 99)
	}

	best := 0
	for i := 0; i+len(pe) <= len(te); i++ {
		if s := ratio(pe, te[i:i+len(pe)]); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return min(best, 99)
}

// encodeRunes pasa cada runa a un byte para que WagnerFischer cuente una
// edición por runa. Las runas de la frase toman códigos 1..n (n ≤
// MaxPhraseRunes); toda runa del texto que no está en la frase toma el 0. Nunca
// coincide con la frase, así que la distancia no cambia.
func encodeRunes(phrase, text []rune) (string, string) {
	codes := make(map[rune]byte, len(phrase))
	pe := make([]byte, len(phrase))
	for i, r := range phrase {
		c, ok := codes[r]
		if !ok {
			c = byte(len(codes) + 1)
			codes[r] = c
		}
		pe[i] = c
	}
	te := make([]byte, len(text))
	for i, r := range text {
		te[i] = codes[r]
	}
	return string(pe), string(te)
}

func ratio(a, b string) int {
	if a == b {
		return 100
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 100
	}
	d := smetrics.WagnerFischer(a, b, 1, 1, 1)
	score := int(math.Round(100 * (1 - float64(d)/float64(longest))))
	return min(max(score, 0), 99)
}
