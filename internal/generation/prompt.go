package generation

import (
	"fmt"
	"strings"

	"penora-write/internal/domain"
)

const systemPrompt = "You are Penora, a creative writing assistant. " +
	"Write original, vivid prose or verse exactly in the requested form. " +
	"Return only the text of the piece, without commentary or headings."

var typeDescriptions = map[domain.StoryType]string{
	domain.StoryTypeShort:   "a short story",
	domain.StoryTypeNovel:   "the opening of a novel",
	domain.StoryTypeChapter: "a single chapter of a longer work",
	domain.StoryTypePoem:    "a poem",
}

// buildUserPrompt собирает пользовательский промпт из параметров запроса
func buildUserPrompt(req Request) string {
	form, ok := typeDescriptions[req.StoryType]
	if !ok {
		form = "a short story"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write %s based on this idea: %s\n", form, strings.TrimSpace(req.Idea))
	fmt.Fprintf(&b, "Tone: %s.\n", req.Tone)
	if req.StoryType == domain.StoryTypePoem {
		// Для стихов число слов - слишком жесткий ориентир
		fmt.Fprintf(&b, "Length: %s.\n", req.Length)
	} else {
		fmt.Fprintf(&b, "Length: about %d words.\n", req.Length.TargetWords())
	}
	return b.String()
}

// maxTokensFor оценивает лимит токенов ответа по желаемому объему
func maxTokensFor(l domain.Length) int {
	// ~1.4 токена на слово плюс запас
	return l.TargetWords()*14/10 + 200
}
