package prompts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultQuestionSuffix is appended to the seeded question unless the
// experiment overrides it.
const DefaultQuestionSuffix = "\n\nLet's first come up with a list of experts you may want to consult for this problem and then immediately start solving it."

// Descriptions maps task names to the instruction text placed in front
// of each example input.
var Descriptions = map[string]string{
	"word_sorting":             "Sort a list of words alphabetically, placing them in a single line of text separated by spaces.",
	"multistep_arithmetic_two": "Solve multi-step arithmetic problems.",
	"geometric_shapes":         "Name geometric shapes from their SVG paths.",
	"test":                     "Please complete the task correctly.",
	"GameOf24":                 "Let's play a game called 24. You'll be given four integers, and your objective is to use each number only once, combined with any of the four arithmetic operations (addition, subtraction, multiplication, and division) and parentheses, to achieve a total of 24. For example, if the input is 4, 7, 8, and 8, the output could be (7 - (8 / 8)) * 4 = 24.",
	"CheckmateInOne":           "Given a series of chess moves written in Standard Algebraic Notation (SAN), determine the next move that will result in a checkmate.",
	"MGSM_SW":                  "Please answer the following question.",
	"MGSM_JA":                  "Please answer the following question.",
	"MGSM_BN":                  "Please answer the following question.",
	"MGSM_DE":                  "Please answer the following question.",
	"MGSM_ES":                  "Please answer the following question.",
	"MGSM_FR":                  "Please answer the following question.",
	"MGSM_RU":                  "Please answer the following question.",
	"MGSM_TE":                  "Please answer the following question.",
	"MGSM_TH":                  "Please answer the following question.",
	"MGSM_ZH":                  "Please answer the following question.",
	"P3_Test":                  "Given a Python function \"sat\", the goal is to find an input or a set of inputs that makes \"sat\" return \"True\" and then include your input inside a function called \"solution()\".\n\nFor example, if the function was defined like this:\n\n```python\ndef sat(s: str, t:int):\n    return s == \"0123456789\" and t==10\n```\n\nOne correct final answer is:\n\n```python\ndef solution():\n    return \"0123456789\", 10\n```\n\nNow, to find a suitable input for a given \"sat\" function, you need to analyze the function and determine the conditions that make it return \"True\". Then, put your answer inside the \"solution\" function with that input as the argument. The final answer should be a self-contained, executable Python code containing only the answer, similar to the example above.",
	"Sonnets-Standard":         "Write a sonnet that adheres strictly to the specified rhyme scheme and includes the given words.",
}

// Description looks up the instruction text for a task.
func Description(task string) (string, error) {
	desc, ok := Descriptions[task]
	if !ok {
		return "", fmt.Errorf("unknown task %q (known tasks: %s)", task, strings.Join(TaskNames(), ", "))
	}
	return desc, nil
}

// TaskNames returns all known task names, sorted.
func TaskNames() []string {
	names := make([]string, 0, len(Descriptions))
	for name := range Descriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveTextOrPath interprets a question prefix/suffix value: a value
// ending in ".txt" is a file path (relative paths resolve against
// baseDir) whose contents replace the value; anything else is literal
// text.
func ResolveTextOrPath(value string, baseDir string) (string, error) {
	if !strings.HasSuffix(value, ".txt") {
		return value, nil
	}
	path := value
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
