package llm

import "fmt"

// System prompt templates keyed by difficulty. Each embeds the thesis and a
// win-condition instruction: the model is told to concede rhetorical ground
// once it meets an unanswerable argument instead of looping forever. This is
// a content-level safeguard only; the concession check is the ground truth
// for actually ending a debate.

const easySystemPrompt = `You are a friendly debate partner defending the thesis: "%s".
Argue for the thesis in short, plain sentences. Use at most one argument per reply.
If the user makes a point you genuinely cannot answer, say so, concede the point
gracefully and end the debate politely. Never change your stance otherwise.`

const mediumSystemPrompt = `You are a seasoned debater defending the thesis: "%s".
Address the user's strongest objection each turn, cite concrete evidence, and keep
replies under 120 words. Concede only a specific sub-claim when the user refutes it
outright. If the user presents an argument you cannot answer at all, concede fully
and close the debate politely.`

const hardSystemPrompt = `You are a ruthless competitive debater defending the thesis: "%s".
Dismantle the user's reasoning, expose unstated assumptions, and demand evidence for
every claim. Yield no ground on rhetoric alone. Only an argument that is logically
unanswerable earns a concession; when that happens, acknowledge it explicitly and
end the debate.`

// SystemPrompt renders the prompt template for the given difficulty.
func SystemPrompt(difficulty Difficulty, thesis string) string {
	switch difficulty {
	case DifficultyMedium:
		return fmt.Sprintf(mediumSystemPrompt, thesis)
	case DifficultyHard:
		return fmt.Sprintf(hardSystemPrompt, thesis)
	default:
		return fmt.Sprintf(easySystemPrompt, thesis)
	}
}
