package deck

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveName(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	generated := "deck-2024-03-09-14-05-07"

	tests := []struct {
		name      string
		requested string
		want      string
	}{
		{"valid name", "mono-red", "mono-red"},
		{"trimmed", "  burn  ", "burn"},
		{"empty", "", generated},
		{"whitespace only", "   ", generated},
		{"inner spaces kept", "Mono Red Burn", "Mono Red Burn"},
		{"control character", "mono\tred", generated},
		{"path separator", "../etc", generated},
		{"reserved character", "deck?", generated},
		{"dot", ".", generated},
		{"too long", strings.Repeat("a", 65), generated},
		{"at the limit", strings.Repeat("a", 64), strings.Repeat("a", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveName(tt.requested, 64, now))
		})
	}
}

func TestCardLabel(t *testing.T) {
	assert.Equal(t, "Island", source(1, "Island", "", "").Label())
	assert.Equal(t, "Opt (ELD 59)", source(1, "Opt", "eld", "59").Label())
}

func TestRecount(t *testing.T) {
	d := New("test")
	d.Cards = []*Card{source(4, "Island", "", ""), source(3, "Opt", "", "")}
	d.Recount()
	assert.Equal(t, 7, d.Size)

	d.Cards = d.Cards[:1]
	d.Recount()
	assert.Equal(t, 4, d.Size)
}
