package scaffold

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
)

// tripleQuotes delimits expert instructions and final answers inside
// conductor replies.
const tripleQuotes = `"""`

// runCodeTrigger is the phrase an Expert Python reply must contain for
// its code block to be executed.
const runCodeTrigger = "Please run this code!"

// expertHeaderRE matches an expert-invocation header: an expert name of
// up to five words followed by a colon, e.g. "Expert Mathematician:".
var expertHeaderRE = regexp.MustCompile(`Expert ((?:\w+ ?){1,5}):\n`)

// Action is the parsed form of one conductor reply.
type Action interface {
	isAction()
}

// FinalAnswer means the reply contained the final-answer marker; Text
// is the extracted answer.
type FinalAnswer struct {
	Text string
}

// CallExperts means the reply requested one or more expert
// consultations.
type CallExperts struct {
	Requests []ExpertRequest
}

// Continue means the reply neither answered nor called an expert; the
// conductor needs to be nudged with the error message.
type Continue struct{}

func (FinalAnswer) isAction() {}
func (CallExperts) isAction() {}
func (Continue) isAction()    {}

// ExpertRequest is one expert consultation extracted from a conductor
// reply: the expert's name and the triple-quoted instruction addressed
// to it.
type ExpertRequest struct {
	Name        string
	Instruction string
}

// ParseReply classifies a conductor reply. Expert requests win over a
// final-answer marker appearing in the same reply: the conductor is
// still delegating, so the dialogue continues.
func ParseReply(reply string, finalAnswerIndicator string) Action {
	if expertHeaderRE.MatchString(reply) {
		if reqs := parseExpertRequests(reply); len(reqs) > 0 {
			return CallExperts{Requests: reqs}
		}
	}
	if strings.Contains(reply, finalAnswerIndicator) {
		return FinalAnswer{Text: ExtractFinalAnswer(reply, finalAnswerIndicator)}
	}
	return Continue{}
}

// parseExpertRequests splits a reply on triple quotes: odd segments are
// instructions, and the last line of the preceding segment names the
// expert the instruction is addressed to.
func parseExpertRequests(reply string) []ExpertRequest {
	splits := strings.Split(reply, tripleQuotes)

	var reqs []ExpertRequest
	for i := 1; i < len(splits); i += 2 {
		preceding := strings.TrimSpace(splits[i-1])
		lines := strings.Split(preceding, "\n")
		name := strings.TrimSpace(lines[len(lines)-1])
		name = strings.TrimSuffix(name, ":")

		if !strings.Contains(name, "Expert ") {
			continue
		}

		reqs = append(reqs, ExpertRequest{
			Name:        name,
			Instruction: strings.TrimSpace(splits[i]),
		})
	}
	return reqs
}

// ExtractFinalAnswer returns the text following the last occurrence of
// the marker, unwrapping an optional triple-quote fence and trimming
// whitespace. Returns "" when the marker is absent.
func ExtractFinalAnswer(reply string, marker string) string {
	idx := strings.LastIndex(reply, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(reply[idx+len(marker):])

	if strings.HasPrefix(rest, tripleQuotes) {
		rest = rest[len(tripleQuotes):]
		if end := strings.Index(rest, tripleQuotes); end >= 0 {
			rest = rest[:end]
		}
	}
	return strings.TrimSpace(rest)
}

var markdown = goldmark.New()

// ExtractCodeBlock returns the contents of the last fenced code block
// in a markdown reply. The fence language is not checked: experts fence
// their code as ```python, plain ```, and occasionally ```py.
func ExtractCodeBlock(reply string) (string, bool) {
	src := []byte(reply)
	doc := markdown.Parser().Parse(gmtext.NewReader(src))

	var code string
	found := false

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var b strings.Builder
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.Write(seg.Value(src))
		}
		code = strings.TrimSpace(b.String())
		found = true
		return ast.WalkContinue, nil
	})

	return code, found
}
