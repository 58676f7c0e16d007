package draft

import (
	"slices"
	"unicode/utf16"
)

// utf16Offsets возвращает префиксные суммы: offsets[i] - длина первых i рун в единицах UTF-16.
func utf16Offsets(runes []rune) []int {
	offsets := make([]int, len(runes)+1)
	n := 0
	for i, r := range runes {
		l := utf16.RuneLen(r)
		if l < 0 {
			l = 1
		}
		n += l
		offsets[i+1] = n
	}
	return offsets
}

// runeIndex переводит смещение UTF-16 в индекс руны. Смещение внутри суррогатной пары
// округляется вниз, смещение за концом текста обрезается.
func runeIndex(offsets []int, unit int) int {
	pos, found := slices.BinarySearch(offsets, unit)
	if found {
		return pos
	}
	return max(0, pos-1)
}
