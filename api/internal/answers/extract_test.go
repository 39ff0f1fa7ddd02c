package answers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sky-answers-bot/api/internal/markup"
)

func extract(t *testing.T, raw string) (string, []string) {
	t.Helper()
	doc, err := markup.Parse(raw)
	require.NoError(t, err)
	return Extract(context.Background(), doc)
}

func TestExtractRules(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "no widgets",
			raw:  `<div><p>Solve 2+2</p></div>`,
			want: []string{},
		},
		{
			name: "direct-correct test items",
			raw: `<vim-test-item correct="true">4</vim-test-item>
			      <vim-test-item correct="false">5</vim-test-item>
			      <vim-test-item>6</vim-test-item>`,
			want: []string{"4"},
		},
		{
			name: "order sentence items need no correctness flag",
			raw: `<vim-order-sentence-verify-item>I</vim-order-sentence-verify-item>
			      <vim-order-sentence-verify-item>am</vim-order-sentence-verify-item>`,
			want: []string{"I", "am"},
		},
		{
			name: "free input takes first nested item only",
			raw: `<vim-input-answers><vim-input-item>cat</vim-input-item><vim-input-item>cats</vim-input-item></vim-input-answers>
			      <vim-input-answers><vim-input-item>dog</vim-input-item></vim-input-answers>
			      <vim-input-answers></vim-input-answers>`,
			want: []string{"cat", "dog"},
		},
		{
			name: "select items",
			raw: `<vim-select><vim-select-item correct="false">is</vim-select-item>
			      <vim-select-item correct="true">are</vim-select-item></vim-select>`,
			want: []string{"are"},
		},
		{
			name: "image items get correctness suffix",
			raw: `<vim-test-image-item correct="true">Picture 2</vim-test-image-item>
			      <vim-test-image-item correct="false">Picture 1</vim-test-image-item>`,
			want: []string{"Picture 2 - Correct"},
		},
		{
			name: "drag and drop join in drag-ids order",
			raw: `<vim-dnd-text-drop drag-ids="b,a"></vim-dnd-text-drop>
			      <vim-dnd-text-drag answer-id="a">X</vim-dnd-text-drag>
			      <vim-dnd-text-drag answer-id="b">Y</vim-dnd-text-drag>`,
			want: []string{"Y", "X"},
		},
		{
			name: "drag and drop unknown id contributes nothing",
			raw: `<vim-dnd-text-drop drag-ids="a, zz ,b"></vim-dnd-text-drop>
			      <vim-dnd-text-drag answer-id="a">X</vim-dnd-text-drag>
			      <vim-dnd-text-drag answer-id="b">Y</vim-dnd-text-drag>`,
			want: []string{"X", "Y"},
		},
		{
			name: "drag and drop without drags",
			raw:  `<vim-dnd-text-drop drag-ids="a"></vim-dnd-text-drop>`,
			want: []string{},
		},
		{
			name: "math input answers",
			raw:  `<math-input><math-input-answer>3/4</math-input-answer></math-input>`,
			want: []string{"3/4"},
		},
		{
			name: "grouping items are base64",
			raw:  `<vim-groups-item text="SGVsbG8="></vim-groups-item><vim-groups-item text="0J/RgNC40LLQtdGC"></vim-groups-item>`,
			want: []string{"Hello", "Привет"},
		},
		{
			name: "bad grouping items are skipped",
			raw: `<vim-groups-item text="!!!not base64"></vim-groups-item>
			      <vim-groups-item text="//4="></vim-groups-item>
			      <vim-groups-item text="V29ybGQ="></vim-groups-item>
			      <vim-groups-item>no payload</vim-groups-item>`,
			want: []string{"World"},
		},
		{
			name: "answer text is kept verbatim",
			raw:  `<vim-test-item correct="true"> x <i>y</i></vim-test-item>`,
			want: []string{" x y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := extract(t, tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractConcatenatesInRuleOrder(t *testing.T) {
	// Document order is the reverse of rule order.
	raw := `
<vim-groups-item text="Zw=="></vim-groups-item>
<math-input-answer>m</math-input-answer>
<vim-dnd-text-drop drag-ids="d"></vim-dnd-text-drop><vim-dnd-text-drag answer-id="d">dnd</vim-dnd-text-drag>
<vim-test-image-item correct="true">img</vim-test-image-item>
<vim-select-item correct="true">sel</vim-select-item>
<vim-input-answers><vim-input-item>in</vim-input-item></vim-input-answers>
<vim-order-sentence-verify-item>ord</vim-order-sentence-verify-item>
<vim-test-item correct="true">t</vim-test-item>`

	_, got := extract(t, raw)
	assert.Equal(t, []string{"t", "ord", "in", "sel", "img - Correct", "dnd", "m", "g"}, got)
}

func TestExtractIndependentRules(t *testing.T) {
	_, got := extract(t, `<math-input-answer>42</math-input-answer><vim-test-item correct="true">yes</vim-test-item>`)
	assert.Equal(t, []string{"yes", "42"}, got)
}

func TestExtractQuestion(t *testing.T) {
	question, answers := extract(t, "<div>Choose\n\n\nthe answer</div>\n<vim-test-item correct=\"true\">B</vim-test-item>\n\n")
	assert.Equal(t, "Choose\nthe answer\nB", question)
	assert.Equal(t, []string{"B"}, answers)

	question, answers = extract(t, "")
	assert.Empty(t, question)
	assert.Empty(t, answers)
}

func TestNormalizeQuestion(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  a\n\n\nb\n  ", want: "a\nb"},
		{in: "\n\n\n", want: ""},
		{in: "one line", want: "one line"},
		{in: "a\nb\n\nc", want: "a\nb\nc"},
		{in: "a  \n\n  b", want: "a  \n  b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeQuestion(tt.in), "input %q", tt.in)
	}
}

func TestDecodeGroupText(t *testing.T) {
	got, err := decodeGroupText("SGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)

	_, err = decodeGroupText("%%%")
	var decErr *DecodeError
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "%%%", decErr.Value)

	_, err = decodeGroupText("//4=")
	require.ErrorAs(t, err, &decErr)
	assert.True(t, errors.Is(err, errInvalidUTF8))
}
