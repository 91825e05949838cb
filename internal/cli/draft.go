package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jontk/ctb/internal/builder"
	"github.com/jontk/ctb/internal/errors"
	"github.com/jontk/ctb/internal/formmodal"
	"github.com/jontk/ctb/internal/navigation"
	"github.com/jontk/ctb/internal/schema"
)

// keys whose --set value is a comma separated list
var listKeys = map[string]bool{
	"enum":       true,
	"components": true,
}

// keys whose --set value is a number
var numberKeys = map[string]bool{
	"min":       true,
	"max":       true,
	"minLength": true,
	"maxLength": true,
}

// parseSet splits a key=value flag and converts the value to the type the
// form expects.
func parseSet(kv string) (string, any, error) {
	key, raw, ok := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, errors.Invalidf("--set expects key=value, got %q", kv)
	}
	last := key[strings.LastIndex(key, ".")+1:]
	if listKeys[last] {
		var items []string
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		return key, items, nil
	}
	if numberKeys[last] {
		return key, formmodal.ParseNumber(raw), nil
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return key, b, nil
	}
	return key, raw, nil
}

// parseCondition turns "status==draft" into a conditions object
func parseCondition(expr string) (map[string]any, error) {
	cond, ok := schema.ParseVisibleWhen(expr)
	if !ok {
		return nil, errors.Invalidf("--visible-when expects field==value or field!=value, got %q", expr)
	}
	return cond, nil
}

// applySets feeds every --set pair into the draft
func applySets(b *builder.Builder, sets []string) error {
	for _, kv := range sets {
		key, value, err := parseSet(kv)
		if err != nil {
			return err
		}
		b.HandleChange(key, value)
	}
	return nil
}

// navigate dispatches events, failing on the first unhandled one
func navigate(b *builder.Builder, events ...navigation.Event) error {
	for _, ev := range events {
		if _, err := b.Navigate(ev); err != nil {
			return fmt.Errorf("%s: %w", navigation.EventName(ev), err)
		}
	}
	return nil
}

// submitDraft submits the open form. A breaking edit is applied only with
// confirm; otherwise its warning is printed and the draft dropped.
func submitDraft(ctx context.Context, w io.Writer, b *builder.Builder, confirm bool) (builder.Outcome, error) {
	out, err := b.Submit(ctx, false)
	if err != nil {
		return out, err
	}

	switch out.Status {
	case builder.StatusInvalid:
		printFormErrors(w, out)
		return out, errors.Newf(errors.ErrorTypeValidation, "%d invalid field(s)", len(out.Errors))

	case builder.StatusNeedsConfirmation:
		fmt.Fprintf(w, "⚠️  %s\n", out.Breakage.Message())
		if !confirm {
			b.CancelConfirm()
			return out, fmt.Errorf("%w: %w; rerun with --confirm to apply it anyway", errors.Aborted("edit"), out.Breakage)
		}
		return b.Confirm(ctx)

	case builder.StatusRejected:
		return out, errors.New(errors.ErrorTypeConflict, "the change was rejected")
	}
	return out, nil
}

func printFormErrors(w io.Writer, out builder.Outcome) {
	fields := make([]string, 0, len(out.Errors))
	for field := range out.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(w, "   • %s: %s\n", field, out.Errors[field])
	}
}
