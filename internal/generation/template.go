package generation

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"penora-write/internal/domain"
)

// Template - офлайн-генератор для dev-сервера и тестов.
// Собирает текст из заготовок, результат детерминирован для одного seed.
type Template struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

var _ Generator = (*Template)(nil)

func NewTemplate(seed int64) *Template {
	return &Template{rnd: rand.New(rand.NewSource(seed))}
}

var (
	openings = map[domain.Tone][]string{
		domain.ToneNeutral: {
			"It began on an ordinary morning, with %s.",
			"Nobody expected much from %s, at first.",
		},
		domain.ToneSerious: {
			"The weight of %s settled over everyone who knew of it.",
			"There was no turning back from %s.",
		},
		domain.ToneHumorous: {
			"In hindsight, %s was always going to end in a spectacular mess.",
			"Everyone agreed that %s was a terrible idea, which is exactly why it happened.",
		},
		domain.ToneRomantic: {
			"Their eyes met somewhere between the rain and %s.",
			"It was %s that first brought them together.",
		},
	}
	middles = []string{
		"Days folded into one another, and small choices began to matter more than anyone admitted.",
		"A stranger arrived with questions that had no easy answers.",
		"The plan changed twice before noon and once more after dark.",
		"What had seemed simple revealed a second shape beneath the first.",
		"Old promises surfaced, demanding to be kept or broken.",
		"Somewhere a door closed, and somewhere else another opened.",
	}
	endings = map[domain.Tone]string{
		domain.ToneNeutral:  "And so the day ended, not quite as it had started.",
		domain.ToneSerious:  "In the silence that followed, the cost of it all became clear.",
		domain.ToneHumorous: "Nobody learned anything, but the story made for excellent dinner conversation.",
		domain.ToneRomantic: "Under the last of the light, they finally said what mattered.",
	}
)

// Generate собирает текст нужного объема. Ошибку возвращает только на невалидный запрос или отмену контекста.
func (g *Template) Generate(ctx context.Context, req Request) (string, error) {
	started := time.Now()
	if err := req.Validate(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", &domain.GenerationError{Message: "canceled", Err: err}
	}

	idea := strings.TrimSpace(req.Idea)

	g.mu.Lock()
	var text string
	if req.StoryType == domain.StoryTypePoem {
		text = g.poem(idea, req)
	} else {
		text = g.prose(idea, req)
	}
	g.mu.Unlock()

	observe(BackendTemplate, "success", started)
	generatedWords.WithLabelValues(BackendTemplate, string(req.Length)).Observe(float64(len(strings.Fields(text))))
	return text, nil
}

func (g *Template) prose(idea string, req Request) string {
	opts := openings[req.Tone]
	var paragraphs []string
	if req.StoryType == domain.StoryTypeChapter {
		paragraphs = append(paragraphs, fmt.Sprintf("Chapter %d", g.rnd.Intn(12)+1))
	}
	paragraphs = append(paragraphs, fmt.Sprintf(opts[g.rnd.Intn(len(opts))], idea))

	target := req.Length.TargetWords()
	words := len(strings.Fields(strings.Join(paragraphs, " ")))
	for words < target {
		var sentences []string
		for i := 0; i < 4; i++ {
			sentences = append(sentences, middles[g.rnd.Intn(len(middles))])
		}
		p := strings.Join(sentences, " ")
		paragraphs = append(paragraphs, p)
		words += len(strings.Fields(p))
	}
	paragraphs = append(paragraphs, endings[req.Tone])
	return strings.Join(paragraphs, "\n\n")
}

func (g *Template) poem(idea string, req Request) string {
	stanzas := map[domain.Length]int{
		domain.LengthShort:  2,
		domain.LengthMedium: 4,
		domain.LengthLong:   8,
	}[req.Length]

	lines := []string{fmt.Sprintf("Of %s I sing,", idea)}
	var out []string
	for i := 0; i < stanzas; i++ {
		for len(lines) < 4 {
			m := middles[g.rnd.Intn(len(middles))]
			lines = append(lines, strings.TrimSuffix(m, "."))
		}
		out = append(out, strings.Join(lines, "\n"))
		lines = nil
	}
	out = append(out, endings[req.Tone])
	return strings.Join(out, "\n\n")
}
