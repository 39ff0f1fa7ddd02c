package answers

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"sky-answers-bot/api/internal/markup"
	"sky-answers-bot/api/internal/metrics"
)

var errInvalidUTF8 = errors.New("decoded bytes are not valid UTF-8")

// DecodeError is a grouping item whose payload could not be decoded.
type DecodeError struct {
	Value string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode grouping item %q: %v", e.Value, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// rule collects answers for one widget type.
type rule struct {
	name    string
	collect func(ctx context.Context, doc markup.Node) []string
}

// rules run in this order; their results are concatenated.
var rules = []rule{
	{name: "test", collect: textOf(`vim-test-item[correct="true"]`)},
	{name: "order_sentence", collect: textOf(`vim-order-sentence-verify-item`)},
	{name: "input", collect: firstNested(`vim-input-answers`, `vim-input-item`)},
	{name: "select", collect: textOf(`vim-select-item[correct="true"]`)},
	{name: "test_image", collect: suffixed(`vim-test-image-item[correct="true"]`, " - Correct")},
	{name: "dnd_text", collect: dragDropJoin},
	{name: "math_input", collect: textOf(`math-input-answer`)},
	{name: "groups", collect: base64Groups},
}

// Extract returns the normalized question text and the answers found in doc.
// No rule matching is not an error: the answer list is just empty.
func Extract(ctx context.Context, doc markup.Node) (string, []string) {
	answers := make([]string, 0)
	for _, r := range rules {
		got := r.collect(ctx, doc)
		if len(got) == 0 {
			continue
		}
		metrics.Answers.WithLabelValues(r.name).Add(float64(len(got)))
		answers = append(answers, got...)
	}
	return NormalizeQuestion(doc.Text()), answers
}

var reNewlines = regexp.MustCompile(`\n+`)

// NormalizeQuestion trims s and collapses every run of newlines into one.
func NormalizeQuestion(s string) string {
	return reNewlines.ReplaceAllString(strings.TrimSpace(s), "\n")
}

func textOf(selector string) func(context.Context, markup.Node) []string {
	return func(_ context.Context, doc markup.Node) []string {
		var out []string
		for _, n := range doc.Find(selector) {
			out = append(out, n.Text())
		}
		return out
	}
}

func suffixed(selector, suffix string) func(context.Context, markup.Node) []string {
	return func(_ context.Context, doc markup.Node) []string {
		var out []string
		for _, n := range doc.Find(selector) {
			out = append(out, n.Text()+suffix)
		}
		return out
	}
}

// firstNested takes only the first item of each container; the platform
// renders the canonical answer first and echoes after it.
func firstNested(container, item string) func(context.Context, markup.Node) []string {
	return func(_ context.Context, doc markup.Node) []string {
		var out []string
		for _, c := range doc.Find(container) {
			if items := c.Find(item); len(items) > 0 {
				out = append(out, items[0].Text())
			}
		}
		return out
	}
}

// dragDropJoin resolves every id of a drop's drag-ids through the drag
// element with the same answer-id. Unknown ids contribute nothing.
func dragDropJoin(_ context.Context, doc markup.Node) []string {
	drops := doc.Find(`vim-dnd-text-drop[drag-ids]`)
	if len(drops) == 0 {
		return nil
	}

	drags := make(map[string]string)
	for _, d := range doc.Find(`vim-dnd-text-drag[answer-id]`) {
		id, _ := d.Attr("answer-id")
		if _, seen := drags[id]; !seen {
			drags[id] = d.Text()
		}
	}

	var out []string
	for _, drop := range drops {
		ids, _ := drop.Attr("drag-ids")
		for _, id := range strings.Split(ids, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if text, ok := drags[id]; ok {
				out = append(out, text)
			}
		}
	}
	return out
}

func base64Groups(ctx context.Context, doc markup.Node) []string {
	var out []string
	for _, n := range doc.Find(`vim-groups-item[text]`) {
		encoded, _ := n.Attr("text")
		text, err := decodeGroupText(encoded)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("answers: skip grouping item")
			continue
		}
		out = append(out, text)
	}
	return out
}

func decodeGroupText(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return "", &DecodeError{Value: encoded, Err: err}
	}
	if !utf8.Valid(b) {
		return "", &DecodeError{Value: encoded, Err: errInvalidUTF8}
	}
	return string(b), nil
}
